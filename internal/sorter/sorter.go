// Package sorter keeps folders ordered: subfolders first in alphabetical
// order, then bookmarks in their existing order, with recently used
// bookmarks pulled to the top of the bookmark section.
package sorter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/settings"
	"github.com/nikbrunner/bmtidy/internal/store"
)

// DefaultLocale is used for title collation when none is configured.
const DefaultLocale = "en"

// Sorter reorders folder contents through the bookmark store.
type Sorter struct {
	Bookmarks store.Bookmarks
	Settings  settings.Store
	Locale    string
	// Force ignores the auto-sorting setting. Used for explicit sort requests.
	Force  bool
	Logger *slog.Logger
}

// New creates a Sorter.
func New(bookmarks store.Bookmarks, st settings.Store, locale string, logger *slog.Logger) *Sorter {
	return &Sorter{
		Bookmarks: bookmarks,
		Settings:  st,
		Locale:    locale,
		Logger:    logger,
	}
}

func (s *Sorter) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Sorter) settings(ctx context.Context) (settings.Settings, error) {
	if s.Settings == nil {
		return settings.Defaults(), nil
	}
	cur, err := s.Settings.Get(ctx)
	if err != nil {
		return cur, fmt.Errorf("read settings: %w", err)
	}
	return cur, nil
}

func (s *Sorter) collator() *collate.Collator {
	locale := s.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		s.logger().Warn("unknown locale, using default", "locale", locale, "error", err)
		tag = language.English
	}
	return collate.New(tag)
}

// SortFolder orders the children of folderID: folders first, by title,
// then bookmarks in their current relative order. The bookmarks bar and the
// root are never touched. A failed move is logged and the rest proceed.
func (s *Sorter) SortFolder(ctx context.Context, folderID string) error {
	if folderID == model.BookmarksBarID || folderID == model.RootID {
		return nil
	}
	if !s.Force {
		cur, err := s.settings(ctx)
		if err != nil {
			return err
		}
		if !cur.AutoFolderSorting {
			return nil
		}
	}

	children, err := s.Bookmarks.GetChildren(ctx, folderID)
	if err != nil {
		return fmt.Errorf("sort folder %s: %w", folderID, err)
	}
	if len(children) <= 1 {
		return nil
	}

	var folders, bookmarks []model.Node
	for _, c := range children {
		if c.IsFolder() {
			folders = append(folders, c)
		} else {
			bookmarks = append(bookmarks, c)
		}
	}

	col := s.collator()
	sort.SliceStable(folders, func(i, j int) bool {
		return col.CompareString(folders[i].Title, folders[j].Title) < 0
	})

	desired := append(folders, bookmarks...)
	current := make([]string, len(children))
	for i, c := range children {
		current[i] = c.ID
	}

	moved := 0
	for i, n := range desired {
		if current[i] == n.ID {
			continue
		}
		if _, err := s.Bookmarks.Move(ctx, n.ID, store.Destination{ParentID: folderID, Index: i}); err != nil {
			s.logger().Warn("move failed while sorting", "folder", folderID, "id", n.ID, "index", i, "error", err)
			continue
		}
		current = reposition(current, n.ID, i)
		moved++
	}

	if moved > 0 {
		s.logger().Debug("sorted folder", "folder", folderID, "moves", moved)
	}
	return nil
}

// reposition moves id to index i in ids.
func reposition(ids []string, id string, i int) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	if i > len(out) {
		i = len(out)
	}
	out = append(out[:i], append([]string{id}, out[i:]...)...)
	return out
}

// MoveToTop places a bookmark directly below its folder's subfolders.
func (s *Sorter) MoveToTop(ctx context.Context, bookmarkID string) error {
	cur, err := s.settings(ctx)
	if err != nil {
		return err
	}
	if !cur.SortByUse {
		return nil
	}

	node, err := s.Bookmarks.Get(ctx, bookmarkID)
	if err != nil {
		return fmt.Errorf("move to top %s: %w", bookmarkID, err)
	}
	if node.ParentID == model.BookmarksBarID {
		return nil
	}

	siblings, err := s.Bookmarks.GetChildren(ctx, node.ParentID)
	if err != nil {
		return fmt.Errorf("move to top %s: %w", bookmarkID, err)
	}

	target := 0
	current := -1
	for i, sib := range siblings {
		if sib.IsFolder() {
			target++
		}
		if sib.ID == bookmarkID {
			current = i
		}
	}
	if current == target {
		return nil
	}

	if _, err := s.Bookmarks.Move(ctx, bookmarkID, store.Destination{ParentID: node.ParentID, Index: target}); err != nil {
		return fmt.Errorf("move to top %s: %w", bookmarkID, err)
	}
	s.logger().Debug("moved bookmark to top", "id", bookmarkID, "folder", node.ParentID, "index", target)
	return nil
}

// SortAll sorts every folder in the tree, breadth first. Failures are
// logged per folder. It returns the number of folders visited.
func (s *Sorter) SortAll(ctx context.Context) (int, error) {
	roots, err := s.Bookmarks.GetTree(ctx)
	if err != nil {
		return 0, fmt.Errorf("sort all: %w", err)
	}

	queue := append([]model.Node(nil), roots...)
	visited := 0
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return visited, err
		}
		n := queue[0]
		queue = queue[1:]
		if !n.IsFolder() {
			continue
		}
		for _, c := range n.Children {
			if c.IsFolder() {
				queue = append(queue, c)
			}
		}
		if n.ID == model.RootID || n.ID == model.BookmarksBarID {
			continue
		}
		if err := s.SortFolder(ctx, n.ID); err != nil {
			s.logger().Warn("sort failed", "folder", n.ID, "error", err)
			continue
		}
		visited++
	}
	return visited, nil
}
