package model

import (
	"errors"
	"sort"
)

var (
	ErrNotFound    = errors.New("node not found")
	ErrInvalidMove = errors.New("cannot move a folder into itself or its descendants")
)

// Store holds all bookmarks and folders. Children of one parent share a
// single index space across both slices.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates a Store holding only the well-known top-level folders.
func NewStore() *Store {
	s := &Store{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
	s.EnsureRoots()
	return s
}

// EnsureRoots adds any missing well-known top-level folder.
func (s *Store) EnsureRoots() {
	roots := []Folder{
		{ID: BookmarksBarID, Title: BookmarksBarTitle, ParentID: RootID, Index: 0},
		{ID: OtherBookmarksID, Title: OtherBookmarksTitle, ParentID: RootID, Index: 1},
		{ID: MobileBookmarksID, Title: MobileBookmarksTitle, ParentID: RootID, Index: 2},
	}
	for _, r := range roots {
		if s.GetFolderByID(r.ID) == nil {
			s.Folders = append(s.Folders, r)
		}
	}
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// Lookup returns the node with the given ID. The root is synthesised.
func (s *Store) Lookup(id string) (Node, bool) {
	if id == RootID {
		return Node{ID: RootID}, true
	}
	if f := s.GetFolderByID(id); f != nil {
		return f.Node(), true
	}
	if b := s.GetBookmarkByID(id); b != nil {
		return b.Node(), true
	}
	return Node{}, false
}

// child is a reference into one of the two slices.
type child struct {
	folder bool
	pos    int
}

// childRefs returns the children of parentID ordered by index.
// Ties keep folders ahead of bookmarks, then slice order.
func (s *Store) childRefs(parentID string) []child {
	var refs []child
	for i := range s.Folders {
		if s.Folders[i].ParentID == parentID {
			refs = append(refs, child{folder: true, pos: i})
		}
	}
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ParentID == parentID {
			refs = append(refs, child{folder: false, pos: i})
		}
	}
	sort.SliceStable(refs, func(a, b int) bool {
		return s.indexOf(refs[a]) < s.indexOf(refs[b])
	})
	return refs
}

func (s *Store) indexOf(c child) int {
	if c.folder {
		return s.Folders[c.pos].Index
	}
	return s.Bookmarks[c.pos].Index
}

func (s *Store) setIndex(c child, idx int) {
	if c.folder {
		s.Folders[c.pos].Index = idx
	} else {
		s.Bookmarks[c.pos].Index = idx
	}
}

func (s *Store) nodeOf(c child) Node {
	if c.folder {
		return s.Folders[c.pos].Node()
	}
	return s.Bookmarks[c.pos].Node()
}

func (s *Store) refOf(id string) (child, bool) {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return child{folder: true, pos: i}, true
		}
	}
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return child{folder: false, pos: i}, true
		}
	}
	return child{}, false
}

// renumber writes dense indices for refs in their current order.
func (s *Store) renumber(refs []child) {
	for i, r := range refs {
		s.setIndex(r, i)
	}
}

// Children returns the direct children of parentID in index order.
// Folder nodes are returned without their children.
func (s *Store) Children(parentID string) []Node {
	refs := s.childRefs(parentID)
	nodes := make([]Node, len(refs))
	for i, r := range refs {
		nodes[i] = s.nodeOf(r)
	}
	return nodes
}

// Normalize rewrites every parent's child indices to 0..n-1, keeping order.
func (s *Store) Normalize() {
	parents := map[string]bool{RootID: true}
	for _, f := range s.Folders {
		parents[f.ID] = true
	}
	for id := range parents {
		s.renumber(s.childRefs(id))
	}
}

// Tree materialises the full hierarchy as a single root node.
func (s *Store) Tree() []Node {
	// Breadth-first order of folders, then build bottom-up so every
	// folder's children are complete before it is attached to its parent.
	order := []string{RootID}
	for i := 0; i < len(order); i++ {
		for _, r := range s.childRefs(order[i]) {
			if r.folder {
				order = append(order, s.Folders[r.pos].ID)
			}
		}
	}

	built := make(map[string]Node, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		node, _ := s.Lookup(id)
		refs := s.childRefs(id)
		node.Children = make([]Node, 0, len(refs))
		for _, r := range refs {
			if r.folder {
				node.Children = append(node.Children, built[s.Folders[r.pos].ID])
			} else {
				node.Children = append(node.Children, s.Bookmarks[r.pos].Node())
			}
		}
		built[id] = node
	}
	return []Node{built[RootID]}
}

// IsDescendant reports whether id is ancestorID or lies beneath it.
func (s *Store) IsDescendant(id, ancestorID string) bool {
	seen := map[string]bool{}
	for id != "" && id != RootID && !seen[id] {
		if id == ancestorID {
			return true
		}
		seen[id] = true
		f := s.GetFolderByID(id)
		if f == nil {
			return false
		}
		id = f.ParentID
	}
	return id == ancestorID
}

// AddFolder inserts f under f.ParentID at index (clamped; negative appends).
func (s *Store) AddFolder(f Folder, index int) Folder {
	s.Folders = append(s.Folders, f)
	s.insert(child{folder: true, pos: len(s.Folders) - 1}, f.ParentID, index)
	return s.Folders[len(s.Folders)-1]
}

// AddBookmark inserts b under b.ParentID at index (clamped; negative appends).
func (s *Store) AddBookmark(b Bookmark, index int) Bookmark {
	s.Bookmarks = append(s.Bookmarks, b)
	s.insert(child{folder: false, pos: len(s.Bookmarks) - 1}, b.ParentID, index)
	return s.Bookmarks[len(s.Bookmarks)-1]
}

// insert positions an already-parented ref among its siblings.
func (s *Store) insert(ref child, parentID string, index int) {
	var siblings []child
	for _, r := range s.childRefs(parentID) {
		if r != ref {
			siblings = append(siblings, r)
		}
	}
	if index < 0 || index > len(siblings) {
		index = len(siblings)
	}
	ordered := make([]child, 0, len(siblings)+1)
	ordered = append(ordered, siblings[:index]...)
	ordered = append(ordered, ref)
	ordered = append(ordered, siblings[index:]...)
	s.renumber(ordered)
}

// Move places id under parentID so that it ends up at index among the new
// siblings. The index is clamped to the valid range.
func (s *Store) Move(id, parentID string, index int) (Node, error) {
	ref, ok := s.refOf(id)
	if !ok {
		return Node{}, ErrNotFound
	}
	if _, ok := s.Lookup(parentID); !ok {
		return Node{}, ErrNotFound
	}
	if ref.folder && s.IsDescendant(parentID, id) {
		return Node{}, ErrInvalidMove
	}

	oldParent := s.nodeOf(ref).ParentID
	if ref.folder {
		s.Folders[ref.pos].ParentID = parentID
	} else {
		s.Bookmarks[ref.pos].ParentID = parentID
	}
	if oldParent != parentID {
		s.renumber(s.childRefs(oldParent))
	}
	s.insert(ref, parentID, index)
	return s.nodeOf(ref), nil
}

// RemoveBookmark deletes a bookmark and closes the gap in its parent.
func (s *Store) RemoveBookmark(id string) bool {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			parentID := s.Bookmarks[i].ParentID
			s.Bookmarks = append(s.Bookmarks[:i], s.Bookmarks[i+1:]...)
			s.renumber(s.childRefs(parentID))
			return true
		}
	}
	return false
}

// RemoveSubtree deletes a folder and everything beneath it.
func (s *Store) RemoveSubtree(id string) bool {
	f := s.GetFolderByID(id)
	if f == nil {
		return false
	}
	parentID := f.ParentID

	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, folder := range s.Folders {
			if !doomed[folder.ID] && doomed[folder.ParentID] {
				doomed[folder.ID] = true
				changed = true
			}
		}
	}

	folders := s.Folders[:0]
	for _, folder := range s.Folders {
		if !doomed[folder.ID] {
			folders = append(folders, folder)
		}
	}
	s.Folders = folders

	bookmarks := s.Bookmarks[:0]
	for _, b := range s.Bookmarks {
		if !doomed[b.ParentID] {
			bookmarks = append(bookmarks, b)
		}
	}
	s.Bookmarks = bookmarks

	s.renumber(s.childRefs(parentID))
	return true
}

// HasBookmarkURL reports whether any bookmark has exactly this URL.
func (s *Store) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}
