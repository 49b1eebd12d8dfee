package tree_test

import (
	"testing"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/tree"
	"gotest.tools/v3/assert"
)

func sampleTree() []model.Node {
	s := model.NewStore()
	s.AddFolder(model.Folder{ID: "f1", Title: "Dev", ParentID: model.BookmarksBarID}, -1)
	s.AddFolder(model.Folder{ID: "f2", Title: "Go", ParentID: "f1"}, -1)
	s.AddBookmark(model.Bookmark{ID: "b1", Title: "Tour", URL: "https://go.dev/tour", ParentID: "f2"}, -1)
	s.AddBookmark(model.Bookmark{ID: "b2", Title: "News", URL: "https://news.ycombinator.com", ParentID: "f1"}, -1)
	s.AddBookmark(model.Bookmark{ID: "b3", Title: "Mail", URL: "https://mail.example.com", ParentID: model.OtherBookmarksID}, -1)
	return s.Tree()
}

func TestFlatten_PreOrder(t *testing.T) {
	snap := tree.Flatten(sampleTree())

	var got []string
	for _, b := range snap.Bookmarks {
		got = append(got, b.ID)
		assert.Assert(t, b.Children == nil)
	}
	assert.DeepEqual(t, got, []string{"b1", "b2", "b3"})

	// root, three top-level folders, two user folders
	assert.Equal(t, len(snap.Folders), 6)
}

func TestFlatten_Empty(t *testing.T) {
	snap := tree.Flatten(nil)
	assert.Equal(t, len(snap.Bookmarks), 0)
	assert.Equal(t, len(snap.Folders), 0)
}

func TestFlatten_Deep(t *testing.T) {
	s := model.NewStore()
	parent := model.OtherBookmarksID
	for i := 0; i < 5000; i++ {
		f := model.NewFolder(model.NewFolderParams{Title: "nested", ParentID: parent})
		s.AddFolder(f, -1)
		parent = f.ID
	}
	s.AddBookmark(model.Bookmark{ID: "deep", URL: "https://deep.example", ParentID: parent}, -1)

	snap := tree.Flatten(s.Tree())
	assert.Equal(t, len(snap.Bookmarks), 1)
	assert.Equal(t, snap.Bookmarks[0].ID, "deep")
}

func TestFolderIndex_Path(t *testing.T) {
	snap := tree.Flatten(sampleTree())

	tests := []struct {
		name     string
		parentID string
		want     string
	}{
		{name: "nested", parentID: "f2", want: "Dev → Go"},
		{name: "single", parentID: "f1", want: "Dev"},
		{name: "top level folder", parentID: model.OtherBookmarksID, want: "Root"},
		{name: "root", parentID: model.RootID, want: "Root"},
		{name: "unknown", parentID: "nope", want: "Root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, snap.Folders.Path(tt.parentID), tt.want)
		})
	}

	assert.Equal(t, snap.Path(snap.Bookmarks[0]), "Dev → Go")
}
