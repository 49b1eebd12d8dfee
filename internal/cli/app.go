package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/nikbrunner/bmtidy/internal/config"
	"github.com/nikbrunner/bmtidy/internal/lookup"
	"github.com/nikbrunner/bmtidy/internal/settings"
	"github.com/nikbrunner/bmtidy/internal/sorter"
	"github.com/nikbrunner/bmtidy/internal/storage"
	"github.com/nikbrunner/bmtidy/internal/store"
	"github.com/nikbrunner/bmtidy/internal/tree"
	"github.com/nikbrunner/bmtidy/internal/watch"
)

// app bundles the collaborators a command works with.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	backend   storage.Storage
	bookmarks *store.Local
	settings  settings.Store
}

// openApp loads the bookmark store and picks the settings store matching
// the backend: the SQLite settings table, or settings.yaml next to the
// JSON file.
func openApp(ctx context.Context) (*app, error) {
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	backend, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	bm, err := store.Open(backend, logger)
	if err != nil {
		_ = storage.CloseStorage(backend)
		return nil, err
	}

	var st settings.Store
	if db, ok := storage.IsSQLite(backend); ok {
		st = db
	} else {
		st = settings.NewFileStore(cfg.SettingsPath())
	}
	logger.Debug("opened bookmarks", "backend", fmt.Sprintf("%T", backend), "data_dir", cfg.DataDir)

	return &app{
		cfg:       cfg,
		logger:    logger,
		backend:   backend,
		bookmarks: bm,
		settings:  st,
	}, nil
}

// Close saves pending changes and releases the backend.
func (a *app) Close() error {
	return errors.Join(a.bookmarks.Save(), storage.CloseStorage(a.backend))
}

func (a *app) sorter() *sorter.Sorter {
	return sorter.New(a.bookmarks, a.settings, a.cfg.Locale, a.logger)
}

func (a *app) finder() *lookup.Finder {
	return lookup.New(a.bookmarks, a.logger)
}

// watch keeps folders sorted while the command mutates the store.
func (a *app) watch(ctx context.Context) (detach func()) {
	return watch.New(ctx, a.sorter(), a.logger).Attach(a.bookmarks)
}

func (a *app) snapshot(ctx context.Context) (tree.Snapshot, error) {
	roots, err := a.bookmarks.GetTree(ctx)
	if err != nil {
		return tree.Snapshot{}, fmt.Errorf("read bookmarks: %w", err)
	}
	return tree.Flatten(roots), nil
}

// removeAll removes each id, logging and skipping failures. It returns how
// many were removed.
func (a *app) removeAll(ctx context.Context, ids []string) int {
	removed := 0
	for _, id := range ids {
		if err := a.bookmarks.Remove(ctx, id); err != nil {
			a.logger.Warn("remove bookmark", "id", id, "error", err)
			continue
		}
		removed++
	}
	return removed
}

// openBrowser opens a URL in the default browser.
var openBrowser = func(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("opening a browser is not supported on %s", runtime.GOOS)
	}
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
