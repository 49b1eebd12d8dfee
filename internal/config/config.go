// Package config loads bmtidy's runtime configuration.
//
// Values are layered, lowest to highest precedence: built-in defaults, the
// YAML config file, BMTIDY_* environment variables, then command-line flags
// that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/nikbrunner/bmtidy/internal/deadlink"
	"github.com/nikbrunner/bmtidy/internal/sorter"
	"github.com/nikbrunner/bmtidy/internal/storage"
)

// EnvPrefix is stripped from environment variables before they are mapped
// to keys: BMTIDY_BATCH_SIZE -> batch_size.
const EnvPrefix = "BMTIDY_"

// FileName is the config file looked up in the data directory.
const FileName = "config.yaml"

// SettingsFileName holds the sorting toggles for the JSON backend.
const SettingsFileName = "settings.yaml"

// Config is the resolved configuration.
type Config struct {
	// Backend is "json", "sqlite" or empty to pick SQLite when its database
	// already exists.
	Backend        string        `koanf:"backend"`
	DataDir        string        `koanf:"data_dir"`
	BatchSize      int           `koanf:"batch_size"`
	Timeout        time.Duration `koanf:"timeout"`
	Locale         string        `koanf:"locale"`
	ExcludeDomains []string      `koanf:"exclude_domains"`
	LogLevel       string        `koanf:"log_level"`
	Verbose        bool          `koanf:"verbose"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// Load resolves the configuration. cfgFile overrides the default
// <data dir>/config.yaml; a missing default file is not an error, a missing
// explicit one is. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defaultDir, err := storage.DefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"backend":         "",
		"data_dir":        defaultDir,
		"batch_size":      deadlink.DefaultBatchSize,
		"timeout":         deadlink.DefaultTimeout.String(),
		"locale":          sorter.DefaultLocale,
		"exclude_domains": []string{},
		"log_level":       "info",
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := cfgFile != ""
	if !explicit {
		cfgFile = filepath.Join(defaultDir, FileName)
	}
	used := ""
	if _, err := os.Stat(cfgFile); err == nil {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		used = cfgFile
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case "", storage.BackendJSON, storage.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("backend must be %q or %q, got %q", storage.BackendJSON, storage.BackendSQLite, c.Backend))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch_size must be positive, got %d", c.BatchSize))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Level is the slog level to log at. Verbose forces debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// SettingsPath is where the JSON backend keeps settings.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, SettingsFileName)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
