package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// FileStore keeps settings in a YAML file. Missing files and missing keys
// fall back to Defaults.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore for the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the settings file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the file on every call.
func (s *FileStore) Get(_ context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (Settings, error) {
	defaults := Defaults()
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		KeyAutoFolderSorting: defaults.AutoFolderSorting,
		KeySortByUse:         defaults.SortByUse,
	}, "."), nil); err != nil {
		return Settings{}, fmt.Errorf("load settings defaults: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("read settings %s: %w", s.path, err)
		}
	}

	var out Settings
	if err := k.Unmarshal("", &out); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

// Set merges patch into the stored settings and writes the file.
// Creates the directory if it doesn't exist.
func (s *FileStore) Set(_ context.Context, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return err
	}
	next := patch.Apply(current)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := yamlv3.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// MemoryStore keeps settings in memory. Used by tests and as a fallback.
type MemoryStore struct {
	mu       sync.Mutex
	settings Settings
}

// NewMemoryStore creates a MemoryStore holding s.
func NewMemoryStore(s Settings) *MemoryStore {
	return &MemoryStore{settings: s}
}

// Get returns the current settings.
func (m *MemoryStore) Get(_ context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

// Set applies patch.
func (m *MemoryStore) Set(_ context.Context, patch Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = patch.Apply(m.settings)
	return nil
}
