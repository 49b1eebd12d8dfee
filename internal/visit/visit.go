// Package visit turns page visits into "sort by use" moves.
package visit

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/settings"
)

// Finder resolves a visited URL to a bookmark.
type Finder interface {
	Find(ctx context.Context, rawURL string) *model.Node
}

// Mover pulls a bookmark to the top of its folder's bookmark section.
type Mover interface {
	MoveToTop(ctx context.Context, bookmarkID string) error
}

// Tracker remembers the first URL each tab loaded, so that a bookmark that
// redirected elsewhere can still be matched when the page completes.
type Tracker struct {
	Finder   Finder
	Mover    Mover
	Settings settings.Store
	Logger   *slog.Logger

	mu      sync.Mutex
	initial map[string]string
}

// NewTracker creates a Tracker.
func NewTracker(finder Finder, mover Mover, st settings.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		Finder:   finder,
		Mover:    mover,
		Settings: st,
		Logger:   logger,
		initial:  make(map[string]string),
	}
}

func (t *Tracker) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

func skipped(url string) bool {
	return strings.HasPrefix(url, "chrome://") || strings.HasPrefix(url, "chrome-extension://")
}

// Loading records url as the tab's initial URL unless one is already known.
func (t *Tracker) Loading(tabID, url string) {
	if url == "" || skipped(url) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initial == nil {
		t.initial = make(map[string]string)
	}
	if _, ok := t.initial[tabID]; !ok {
		t.initial[tabID] = url
	}
}

// Complete handles a finished page load. The initial URL is tried before
// the final one. It returns the bookmark that was moved, if any.
func (t *Tracker) Complete(ctx context.Context, tabID, url string) *model.Node {
	initial := t.forget(tabID)

	if url == "" || skipped(url) {
		return nil
	}
	if t.Settings != nil {
		cur, err := t.Settings.Get(ctx)
		if err != nil {
			t.logger().Warn("read settings", "error", err)
			return nil
		}
		if !cur.SortByUse {
			return nil
		}
	}

	var found *model.Node
	if initial != "" && initial != url {
		found = t.Finder.Find(ctx, initial)
	}
	if found == nil {
		found = t.Finder.Find(ctx, url)
	}
	if found == nil {
		t.logger().Debug("no bookmark for visited page", "url", url, "initial", initial)
		return nil
	}

	if err := t.Mover.MoveToTop(ctx, found.ID); err != nil {
		t.logger().Warn("move to top failed", "id", found.ID, "error", err)
		return nil
	}
	return found
}

// Closed forgets a tab.
func (t *Tracker) Closed(tabID string) {
	t.forget(tabID)
}

func (t *Tracker) forget(tabID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	url := t.initial[tabID]
	delete(t.initial, tabID)
	return url
}
