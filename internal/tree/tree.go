// Package tree flattens a bookmark hierarchy and resolves folder paths.
package tree

import (
	"strings"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// PathSeparator joins folder titles in a rendered path.
const PathSeparator = " → "

// FolderEntry is the part of a folder needed to walk up to the root.
type FolderEntry struct {
	Title    string
	ParentID string
}

// FolderIndex maps folder IDs to their entries.
type FolderIndex map[string]FolderEntry

// Snapshot is the flat view of one traversal.
type Snapshot struct {
	Bookmarks []model.Node
	Folders   FolderIndex
}

// Flatten walks roots depth-first in child order and collects every
// bookmark and folder. Bookmarks are returned without children.
func Flatten(roots []model.Node) Snapshot {
	snap := Snapshot{Folders: FolderIndex{}}

	stack := make([]model.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !n.IsFolder() {
			n.Children = nil
			snap.Bookmarks = append(snap.Bookmarks, n)
			continue
		}

		snap.Folders[n.ID] = FolderEntry{Title: n.Title, ParentID: n.ParentID}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}

	return snap
}

// Path renders the folder path of parentID, leaving out the root and the
// well-known top-level folders. An empty path renders as "Root".
func (idx FolderIndex) Path(parentID string) string {
	var parts []string
	seen := map[string]bool{}

	for id := parentID; id != "" && id != model.RootID && !seen[id]; {
		seen[id] = true
		entry, ok := idx[id]
		if !ok {
			break
		}
		if !isTopLevelTitle(entry.Title) {
			parts = append(parts, entry.Title)
		}
		id = entry.ParentID
	}

	if len(parts) == 0 {
		return "Root"
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, PathSeparator)
}

// Path renders the folder path of node.
func (s Snapshot) Path(node model.Node) string {
	return s.Folders.Path(node.ParentID)
}

func isTopLevelTitle(title string) bool {
	switch title {
	case model.BookmarksBarTitle, model.OtherBookmarksTitle, model.MobileBookmarksTitle:
		return true
	}
	return false
}
