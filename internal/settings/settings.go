// Package settings holds the user-facing toggles that control automatic
// sorting. Callers read them through a Store on every decision so a change
// takes effect on the next event without a restart.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Keys as they appear in settings files and tables.
const (
	KeyAutoFolderSorting = "auto_folder_sorting"
	KeySortByUse         = "sort_by_use"
)

// Settings controls the automatic sorting features.
type Settings struct {
	AutoFolderSorting bool `koanf:"auto_folder_sorting" yaml:"auto_folder_sorting"`
	SortByUse         bool `koanf:"sort_by_use" yaml:"sort_by_use"`
}

// Defaults returns the settings used when nothing has been stored yet.
func Defaults() Settings {
	return Settings{
		AutoFolderSorting: true,
		SortByUse:         true,
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	AutoFolderSorting *bool
	SortByUse         *bool
}

// Apply returns s with the patch applied.
func (p Patch) Apply(s Settings) Settings {
	if p.AutoFolderSorting != nil {
		s.AutoFolderSorting = *p.AutoFolderSorting
	}
	if p.SortByUse != nil {
		s.SortByUse = *p.SortByUse
	}
	return s
}

// Store reads and writes settings.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Set(ctx context.Context, patch Patch) error
}

// ParsePatch builds a single-key patch from user input. Both snake_case and
// camelCase key spellings are accepted.
func ParsePatch(key, value string) (Patch, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return Patch{}, fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}

	switch normalizeKey(key) {
	case KeyAutoFolderSorting:
		return Patch{AutoFolderSorting: &b}, nil
	case KeySortByUse:
		return Patch{SortByUse: &b}, nil
	default:
		return Patch{}, fmt.Errorf("unknown setting %q", key)
	}
}

// Value returns the setting named key.
func (s Settings) Value(key string) (bool, error) {
	switch normalizeKey(key) {
	case KeyAutoFolderSorting:
		return s.AutoFolderSorting, nil
	case KeySortByUse:
		return s.SortByUse, nil
	default:
		return false, fmt.Errorf("unknown setting %q", key)
	}
}

func normalizeKey(key string) string {
	switch strings.ToLower(strings.ReplaceAll(key, "-", "_")) {
	case "auto_folder_sorting", "autofoldersorting":
		return KeyAutoFolderSorting
	case "sort_by_use", "sortbyuse":
		return KeySortByUse
	}
	return key
}
