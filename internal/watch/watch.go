// Package watch sorts folders in response to bookmark store events.
package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nikbrunner/bmtidy/internal/store"
)

// FolderSorter sorts a single folder.
type FolderSorter interface {
	SortFolder(ctx context.Context, folderID string) error
}

// Source delivers store events to a callback.
type Source interface {
	Subscribe(fn func(store.Event)) (unsubscribe func())
}

// Watcher maps events to folder sorts. Events that arrive while a sort is
// running, including those caused by the sort itself, are queued and
// handled in order once it finishes.
type Watcher struct {
	Sorter FolderSorter
	Logger *slog.Logger

	ctx      context.Context
	mu       sync.Mutex
	queue    []store.Event
	draining bool
}

// New creates a Watcher. ctx is passed to every sort.
func New(ctx context.Context, sorter FolderSorter, logger *slog.Logger) *Watcher {
	return &Watcher{Sorter: sorter, Logger: logger, ctx: ctx}
}

// Attach subscribes the watcher to src.
func (w *Watcher) Attach(src Source) (detach func()) {
	return src.Subscribe(w.Handle)
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// Handle queues ev and, unless a drain is already running, processes the
// queue until it is empty.
func (w *Watcher) Handle(ev store.Event) {
	w.mu.Lock()
	w.queue = append(w.queue, ev)
	if w.draining {
		w.mu.Unlock()
		return
	}
	w.draining = true

	for len(w.queue) > 0 {
		next := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.process(next)

		w.mu.Lock()
	}
	w.draining = false
	w.mu.Unlock()
}

func (w *Watcher) process(ev store.Event) {
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	var folders []string
	switch ev.Kind {
	case store.Created:
		folders = []string{ev.ParentID}
	case store.Moved:
		folders = []string{ev.OldParentID}
		if ev.ParentID != ev.OldParentID {
			folders = append(folders, ev.ParentID)
		}
	case store.ChildrenReordered:
		folders = []string{ev.ID}
	default:
		return
	}

	for _, id := range folders {
		if err := w.Sorter.SortFolder(ctx, id); err != nil {
			w.logger().Warn("sort after event failed", "event", ev.Kind, "folder", id, "error", err)
		}
	}
}
