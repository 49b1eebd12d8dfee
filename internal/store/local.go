package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/storage"
)

// Local is an in-process Bookmarks implementation over a model.Store,
// optionally persisted through a storage backend.
type Local struct {
	mu      sync.Mutex
	data    *model.Store
	backend storage.Storage
	dirty   bool

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	logger *slog.Logger
}

var _ Bookmarks = (*Local)(nil)

// NewLocal wraps data. A nil data starts from an empty store.
func NewLocal(data *model.Store, logger *slog.Logger) *Local {
	if data == nil {
		data = model.NewStore()
	}
	data.EnsureRoots()
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{
		data:   data,
		subs:   make(map[int]func(Event)),
		logger: logger,
	}
}

// Open loads the store from backend. Save writes it back.
func Open(backend storage.Storage, logger *slog.Logger) (*Local, error) {
	data, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	l := NewLocal(data, logger)
	l.backend = backend
	return l, nil
}

// Save persists pending changes. It is a no-op without a backend or when
// nothing changed.
func (l *Local) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.backend == nil || !l.dirty {
		return nil
	}
	if err := l.backend.Save(l.data); err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}
	l.dirty = false
	return nil
}

// Subscribe registers fn for change notifications. Events are delivered
// synchronously, after the store lock is released, in registration order.
func (l *Local) Subscribe(fn func(Event)) (unsubscribe func()) {
	l.subsMu.Lock()
	defer l.subsMu.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn

	return func() {
		l.subsMu.Lock()
		defer l.subsMu.Unlock()
		delete(l.subs, id)
	}
}

func (l *Local) emit(events ...Event) {
	l.subsMu.Lock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.subs[id])
	}
	l.subsMu.Unlock()

	for _, ev := range events {
		l.logger.Debug("bookmark event", "kind", ev.Kind, "id", ev.ID, "parent", ev.ParentID, "index", ev.Index)
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// GetTree returns the whole hierarchy under a single root node.
func (l *Local) GetTree(_ context.Context) ([]model.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data.Tree(), nil
}

// GetChildren returns the direct children of a folder in index order.
func (l *Local) GetChildren(_ context.Context, id string) ([]model.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	node, ok := l.data.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("get children of %s: %w", id, ErrNotFound)
	}
	if !node.IsFolder() {
		return nil, fmt.Errorf("get children of %s: not a folder", id)
	}
	return l.data.Children(id), nil
}

// Get returns a single node without children.
func (l *Local) Get(_ context.Context, id string) (model.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	node, ok := l.data.Lookup(id)
	if !ok {
		return model.Node{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return node, nil
}

// Search returns bookmarks matching q, in storage order.
func (l *Local) Search(_ context.Context, q Query) ([]model.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	text := strings.ToLower(q.Text)
	var out []model.Node
	for _, b := range l.data.Bookmarks {
		if q.URL != "" && b.URL != q.URL {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(b.Title), text) &&
			!strings.Contains(strings.ToLower(b.URL), text) {
			continue
		}
		out = append(out, b.Node())
	}
	return out, nil
}

// Move repositions a node. Moving to the node's current position changes
// nothing and emits no event.
func (l *Local) Move(_ context.Context, id string, dst Destination) (model.Node, error) {
	l.mu.Lock()

	if model.IsWellKnown(id) {
		l.mu.Unlock()
		return model.Node{}, fmt.Errorf("move %s: %w", id, ErrProtected)
	}
	if dst.ParentID == model.RootID {
		l.mu.Unlock()
		return model.Node{}, fmt.Errorf("move %s to root: %w", id, ErrProtected)
	}
	before, ok := l.data.Lookup(id)
	if !ok {
		l.mu.Unlock()
		return model.Node{}, fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	if parent, ok := l.data.Lookup(dst.ParentID); !ok || !parent.IsFolder() {
		l.mu.Unlock()
		return model.Node{}, fmt.Errorf("move %s into %s: %w", id, dst.ParentID, ErrNotFound)
	}

	after, err := l.data.Move(id, dst.ParentID, dst.Index)
	if err != nil {
		l.mu.Unlock()
		return model.Node{}, fmt.Errorf("move %s: %w", id, err)
	}
	changed := before.ParentID != after.ParentID || before.Index != after.Index
	if changed {
		l.dirty = true
	}
	l.mu.Unlock()

	if changed {
		l.emit(Event{
			Kind:        Moved,
			ID:          id,
			ParentID:    after.ParentID,
			Index:       after.Index,
			OldParentID: before.ParentID,
			OldIndex:    before.Index,
			Node:        after,
		})
	}
	return after, nil
}

// Create adds a bookmark (URL set) or folder (URL empty).
func (l *Local) Create(_ context.Context, d CreateDetails) (model.Node, error) {
	l.mu.Lock()

	parentID := d.ParentID
	if parentID == "" {
		parentID = model.OtherBookmarksID
	}
	if parentID == model.RootID {
		l.mu.Unlock()
		return model.Node{}, fmt.Errorf("create under root: %w", ErrProtected)
	}
	parent, ok := l.data.Lookup(parentID)
	if !ok || !parent.IsFolder() {
		l.mu.Unlock()
		return model.Node{}, fmt.Errorf("create under %s: %w", parentID, ErrNotFound)
	}

	index := -1
	if d.Index != nil {
		index = *d.Index
	}

	var node model.Node
	if d.URL == "" {
		f := model.NewFolder(model.NewFolderParams{Title: d.Title, ParentID: parentID})
		node = l.data.AddFolder(f, index).Node()
	} else {
		b := model.NewBookmark(model.NewBookmarkParams{Title: d.Title, URL: d.URL, ParentID: parentID})
		node = l.data.AddBookmark(b, index).Node()
	}
	l.dirty = true
	l.mu.Unlock()

	l.emit(Event{Kind: Created, ID: node.ID, ParentID: node.ParentID, Index: node.Index, Node: node})
	return node, nil
}

// Remove deletes a bookmark or an empty folder.
func (l *Local) Remove(_ context.Context, id string) error {
	l.mu.Lock()

	if model.IsWellKnown(id) {
		l.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, ErrProtected)
	}
	node, ok := l.data.Lookup(id)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}

	if node.IsFolder() {
		if len(l.data.Children(id)) > 0 {
			l.mu.Unlock()
			return fmt.Errorf("remove %s: %w", id, ErrNotEmpty)
		}
		l.data.RemoveSubtree(id)
	} else {
		l.data.RemoveBookmark(id)
	}
	l.dirty = true
	l.mu.Unlock()

	l.emit(Event{Kind: Removed, ID: id, ParentID: node.ParentID, Index: node.Index, Node: node})
	return nil
}

// RemoveTree deletes a folder and everything beneath it.
func (l *Local) RemoveTree(_ context.Context, id string) error {
	l.mu.Lock()

	if model.IsWellKnown(id) {
		l.mu.Unlock()
		return fmt.Errorf("remove tree %s: %w", id, ErrProtected)
	}
	node, ok := l.data.Lookup(id)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("remove tree %s: %w", id, ErrNotFound)
	}
	if !node.IsFolder() {
		l.data.RemoveBookmark(id)
	} else {
		l.data.RemoveSubtree(id)
	}
	l.dirty = true
	l.mu.Unlock()

	l.emit(Event{Kind: Removed, ID: id, ParentID: node.ParentID, Index: node.Index, Node: node})
	return nil
}

// Reorder sets the order of a folder's children to ids, which must name
// every child exactly once, and emits ChildrenReordered.
func (l *Local) Reorder(_ context.Context, parentID string, ids []string) error {
	l.mu.Lock()

	children := l.data.Children(parentID)
	if len(children) != len(ids) {
		l.mu.Unlock()
		return fmt.Errorf("reorder %s: expected %d ids, got %d", parentID, len(children), len(ids))
	}
	known := make(map[string]bool, len(children))
	for _, c := range children {
		known[c.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			l.mu.Unlock()
			return fmt.Errorf("reorder %s: %s is not a child", parentID, id)
		}
		delete(known, id)
	}

	for i, id := range ids {
		if _, err := l.data.Move(id, parentID, i); err != nil {
			l.mu.Unlock()
			return fmt.Errorf("reorder %s: %w", parentID, err)
		}
	}
	l.dirty = true
	l.mu.Unlock()

	l.emit(Event{Kind: ChildrenReordered, ID: parentID})
	return nil
}

// MarkVisited records a visit time on a bookmark.
func (l *Local) MarkVisited(_ context.Context, id string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.data.GetBookmarkByID(id)
	if b == nil {
		return fmt.Errorf("mark visited %s: %w", id, ErrNotFound)
	}
	b.VisitedAt = &at
	l.dirty = true
	return nil
}
