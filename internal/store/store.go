// Package store is the host bookmark store: a tree of folders and bookmarks
// with positional moves and change notifications.
package store

import (
	"context"
	"errors"

	"github.com/nikbrunner/bmtidy/internal/model"
)

var (
	ErrNotFound    = model.ErrNotFound
	ErrInvalidMove = model.ErrInvalidMove
	ErrProtected   = errors.New("well-known folders cannot be changed")
	ErrNotEmpty    = errors.New("folder is not empty")
)

// Bookmarks is the bookmark store consumed by the tidying features.
type Bookmarks interface {
	GetTree(ctx context.Context) ([]model.Node, error)
	GetChildren(ctx context.Context, id string) ([]model.Node, error)
	Get(ctx context.Context, id string) (model.Node, error)
	Search(ctx context.Context, q Query) ([]model.Node, error)
	Move(ctx context.Context, id string, dst Destination) (model.Node, error)
	Create(ctx context.Context, d CreateDetails) (model.Node, error)
	Remove(ctx context.Context, id string) error
	RemoveTree(ctx context.Context, id string) error
}

// Query selects bookmarks. URL matches exactly; Text matches title or URL
// case-insensitively. When both are set a bookmark must satisfy both.
type Query struct {
	URL  string
	Text string
}

// Destination is the target of a move. Index is the final position among the
// new siblings; a negative index appends.
type Destination struct {
	ParentID string
	Index    int
}

// CreateDetails describes a node to create. An empty URL creates a folder.
// A nil Index appends.
type CreateDetails struct {
	ParentID string
	Index    *int
	Title    string
	URL      string
}

// EventKind identifies a change notification.
type EventKind int

const (
	Created EventKind = iota
	Moved
	Removed
	ChildrenReordered
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Moved:
		return "moved"
	case Removed:
		return "removed"
	case ChildrenReordered:
		return "children-reordered"
	}
	return "unknown"
}

// Event is a change notification. OldParentID and OldIndex are only set
// for Moved.
type Event struct {
	Kind        EventKind
	ID          string
	ParentID    string
	Index       int
	OldParentID string
	OldIndex    int
	Node        model.Node
}
