package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmtidy/internal/config"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("backend", "", "")
	fs.String("data-dir", "", "")
	fs.Int("batch-size", 0, "")
	fs.Duration("timeout", 0, "")
	fs.BoolP("verbose", "v", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	home := withHome(t)

	cfg, err := config.Load("", nil)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Backend, "")
	assert.Equal(t, cfg.DataDir, filepath.Join(home, ".config", "bmtidy"))
	assert.Equal(t, cfg.BatchSize, 20)
	assert.Equal(t, cfg.Timeout, 10*time.Second)
	assert.Equal(t, cfg.Locale, "en")
	assert.Equal(t, len(cfg.ExcludeDomains), 0)
	assert.Equal(t, cfg.Level(), slog.LevelInfo)
	assert.Equal(t, cfg.FileUsed, "")
}

func TestLoad_Precedence(t *testing.T) {
	withHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(`
backend: sqlite
batch_size: 5
timeout: 3s
exclude_domains:
  - intranet.example
log_level: warn
`), 0o644))

	t.Setenv("BMTIDY_BATCH_SIZE", "7")

	fs := newFlags()
	assert.NilError(t, fs.Parse([]string{"--timeout", "1s"}))

	cfg, err := config.Load(path, fs)
	assert.NilError(t, err)
	assert.Equal(t, cfg.FileUsed, path)
	assert.Equal(t, cfg.Backend, "sqlite")
	assert.Equal(t, cfg.BatchSize, 7)
	assert.Equal(t, cfg.Timeout, time.Second)
	assert.DeepEqual(t, cfg.ExcludeDomains, []string{"intranet.example"})
	assert.Equal(t, cfg.Level(), slog.LevelWarn)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	withHome(t)
	t.Setenv("BMTIDY_BACKEND", "json")

	fs := newFlags()
	assert.NilError(t, fs.Parse(nil))

	cfg, err := config.Load("", fs)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Backend, "json")
	assert.Equal(t, cfg.BatchSize, 20)
}

func TestLoad_VerboseForcesDebug(t *testing.T) {
	withHome(t)
	fs := newFlags()
	assert.NilError(t, fs.Parse([]string{"-v"}))

	cfg, err := config.Load("", fs)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Level(), slog.LevelDebug)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	withHome(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorContains(t, err, "nope.yaml")
}

func TestLoad_Invalid(t *testing.T) {
	withHome(t)
	fs := newFlags()
	assert.NilError(t, fs.Parse([]string{"--backend", "postgres", "--batch-size=-1"}))

	_, err := config.Load("", fs)
	assert.ErrorContains(t, err, "backend must be")
	assert.ErrorContains(t, err, "batch_size must be positive")
}
