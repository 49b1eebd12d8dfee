package model_test

import (
	"testing"

	"github.com/nikbrunner/bmtidy/internal/model"
	"gotest.tools/v3/assert"
)

// testStore builds:
//
//	Other bookmarks
//	├── Dev (f1)
//	│   └── Go (f2)
//	├── Example (b1)
//	└── Docs (b2)
func testStore() *model.Store {
	s := model.NewStore()
	s.AddFolder(model.Folder{ID: "f1", Title: "Dev", ParentID: model.OtherBookmarksID}, -1)
	s.AddFolder(model.Folder{ID: "f2", Title: "Go", ParentID: "f1"}, -1)
	s.AddBookmark(model.Bookmark{ID: "b1", Title: "Example", URL: "https://example.com", ParentID: model.OtherBookmarksID}, -1)
	s.AddBookmark(model.Bookmark{ID: "b2", Title: "Docs", URL: "https://go.dev/doc", ParentID: model.OtherBookmarksID}, -1)
	return s
}

func childIDs(nodes []model.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestNewStore_SeedsRoots(t *testing.T) {
	s := model.NewStore()

	roots := s.Children(model.RootID)
	assert.DeepEqual(t, childIDs(roots), []string{
		model.BookmarksBarID, model.OtherBookmarksID, model.MobileBookmarksID,
	})
	assert.Equal(t, roots[0].Title, model.BookmarksBarTitle)

	// Idempotent
	s.EnsureRoots()
	assert.Equal(t, len(s.Folders), 3)
}

func TestNode_IsFolder(t *testing.T) {
	assert.Assert(t, model.Node{ID: "f"}.IsFolder())
	assert.Assert(t, !model.Node{ID: "b", URL: "https://example.com"}.IsFolder())
}

func TestStore_ChildrenOrder(t *testing.T) {
	s := testStore()
	assert.DeepEqual(t, childIDs(s.Children(model.OtherBookmarksID)), []string{"f1", "b1", "b2"})

	for i, n := range s.Children(model.OtherBookmarksID) {
		assert.Equal(t, n.Index, i)
	}
}

func TestStore_AddAtIndex(t *testing.T) {
	s := testStore()
	s.AddBookmark(model.Bookmark{ID: "b3", URL: "https://three.com", ParentID: model.OtherBookmarksID}, 0)
	assert.DeepEqual(t, childIDs(s.Children(model.OtherBookmarksID)), []string{"b3", "f1", "b1", "b2"})

	// Out of range appends
	s.AddBookmark(model.Bookmark{ID: "b4", URL: "https://four.com", ParentID: model.OtherBookmarksID}, 99)
	assert.DeepEqual(t, childIDs(s.Children(model.OtherBookmarksID)), []string{"b3", "f1", "b1", "b2", "b4"})
}

func TestStore_Move(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		parentID string
		index    int
		want     map[string][]string
	}{
		{
			name:     "move down within parent",
			id:       "f1",
			parentID: model.OtherBookmarksID,
			index:    2,
			want:     map[string][]string{model.OtherBookmarksID: {"b1", "b2", "f1"}},
		},
		{
			name:     "move up within parent",
			id:       "b2",
			parentID: model.OtherBookmarksID,
			index:    0,
			want:     map[string][]string{model.OtherBookmarksID: {"b2", "f1", "b1"}},
		},
		{
			name:     "move to other parent",
			id:       "b1",
			parentID: "f1",
			index:    0,
			want: map[string][]string{
				model.OtherBookmarksID: {"f1", "b2"},
				"f1":                   {"b1", "f2"},
			},
		},
		{
			name:     "index clamped",
			id:       "b1",
			parentID: model.OtherBookmarksID,
			index:    42,
			want:     map[string][]string{model.OtherBookmarksID: {"f1", "b2", "b1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore()
			node, err := s.Move(tt.id, tt.parentID, tt.index)
			assert.NilError(t, err)
			assert.Equal(t, node.ParentID, tt.parentID)

			for parent, ids := range tt.want {
				assert.DeepEqual(t, childIDs(s.Children(parent)), ids)
			}
		})
	}
}

func TestStore_MoveErrors(t *testing.T) {
	s := testStore()

	_, err := s.Move("missing", model.OtherBookmarksID, 0)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.Move("b1", "missing", 0)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.Move("f1", "f2", 0)
	assert.ErrorIs(t, err, model.ErrInvalidMove)

	_, err = s.Move("f1", "f1", 0)
	assert.ErrorIs(t, err, model.ErrInvalidMove)
}

func TestStore_Tree(t *testing.T) {
	s := testStore()
	tree := s.Tree()

	assert.Equal(t, len(tree), 1)
	root := tree[0]
	assert.Equal(t, root.ID, model.RootID)
	assert.Equal(t, len(root.Children), 3)

	other := root.Children[1]
	assert.Equal(t, other.ID, model.OtherBookmarksID)
	assert.DeepEqual(t, childIDs(other.Children), []string{"f1", "b1", "b2"})

	dev := other.Children[0]
	assert.DeepEqual(t, childIDs(dev.Children), []string{"f2"})
	assert.Assert(t, dev.Children[0].Children != nil, "empty folders still carry a children slice")
	assert.Equal(t, other.Children[1].URL, "https://example.com")
}

func TestStore_RemoveBookmark(t *testing.T) {
	s := testStore()
	assert.Assert(t, s.RemoveBookmark("b1"))
	assert.Assert(t, !s.RemoveBookmark("b1"))

	children := s.Children(model.OtherBookmarksID)
	assert.DeepEqual(t, childIDs(children), []string{"f1", "b2"})
	assert.Equal(t, children[1].Index, 1)
}

func TestStore_RemoveSubtree(t *testing.T) {
	s := testStore()
	s.AddBookmark(model.Bookmark{ID: "b3", URL: "https://go.dev", ParentID: "f2"}, -1)

	assert.Assert(t, s.RemoveSubtree("f1"))
	assert.Assert(t, s.GetFolderByID("f2") == nil)
	assert.Assert(t, s.GetBookmarkByID("b3") == nil)
	assert.DeepEqual(t, childIDs(s.Children(model.OtherBookmarksID)), []string{"b1", "b2"})
}

func TestStore_Normalize(t *testing.T) {
	s := &model.Store{
		Folders: []model.Folder{
			{ID: model.OtherBookmarksID, ParentID: model.RootID, Index: 7},
		},
		Bookmarks: []model.Bookmark{
			{ID: "b1", URL: "https://one.com", ParentID: model.OtherBookmarksID, Index: 10},
			{ID: "b2", URL: "https://two.com", ParentID: model.OtherBookmarksID, Index: 4},
		},
	}
	s.Normalize()

	children := s.Children(model.OtherBookmarksID)
	assert.DeepEqual(t, childIDs(children), []string{"b2", "b1"})
	assert.Equal(t, children[0].Index, 0)
	assert.Equal(t, children[1].Index, 1)
	assert.Equal(t, s.GetFolderByID(model.OtherBookmarksID).Index, 0)
}

func TestStore_HasBookmarkURL(t *testing.T) {
	s := testStore()
	assert.Assert(t, s.HasBookmarkURL("https://example.com"))
	assert.Assert(t, !s.HasBookmarkURL("https://notfound.com"))
}

func TestNewBookmark_Defaults(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{Title: "Example", URL: "https://example.com"})
	assert.Assert(t, b.ID != "")
	assert.Equal(t, b.ParentID, model.OtherBookmarksID)
	assert.Assert(t, b.Tags != nil)
	assert.Assert(t, b.VisitedAt == nil)
}
