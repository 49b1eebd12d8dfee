package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/storage"
	"gotest.tools/v3/assert"
)

// sampleStore returns a store with one folder and two bookmarks.
func sampleStore() *model.Store {
	s := model.NewStore()
	s.AddFolder(model.Folder{ID: "f1", Title: "Development", ParentID: model.OtherBookmarksID}, -1)
	s.AddBookmark(model.Bookmark{ID: "b1", Title: "Test", URL: "https://example.com", ParentID: "f1", Tags: []string{}}, -1)
	s.AddBookmark(model.Bookmark{ID: "b2", Title: "Bar", URL: "https://bar.com", ParentID: model.BookmarksBarID, Tags: []string{}}, -1)
	return s
}

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bookmarks.json")

	s := storage.NewJSONStorage(configPath)
	assert.NilError(t, s.Save(sampleStore()))

	_, err := os.Stat(configPath)
	assert.NilError(t, err, "bookmarks file was not created")

	loaded, err := s.Load()
	assert.NilError(t, err)

	assert.Equal(t, len(loaded.Folders), 4)
	assert.Equal(t, len(loaded.Bookmarks), 2)
	assert.Equal(t, loaded.GetFolderByID("f1").Title, "Development")
	assert.Equal(t, loaded.GetBookmarkByID("b1").ParentID, "f1")
}

func TestJSONStorage_LoadNonexistent(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "nonexistent.json"))

	store, err := s.Load()
	assert.NilError(t, err)

	// Only the well-known folders
	assert.Equal(t, len(store.Folders), 3)
	assert.Equal(t, len(store.Bookmarks), 0)
}

func TestJSONStorage_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "bookmarks.json")

	s := storage.NewJSONStorage(configPath)
	assert.NilError(t, s.Save(model.NewStore()))

	_, err := os.Stat(configPath)
	assert.NilError(t, err)
}

func TestJSONStorage_PreservesOrder(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bookmarks.json")

	store := model.NewStore()
	for _, id := range []string{"first", "second", "third"} {
		store.AddBookmark(model.Bookmark{ID: id, URL: "https://" + id + ".com", ParentID: model.OtherBookmarksID}, -1)
	}
	_, err := store.Move("third", model.OtherBookmarksID, 0)
	assert.NilError(t, err)

	s := storage.NewJSONStorage(configPath)
	assert.NilError(t, s.Save(store))

	loaded, err := s.Load()
	assert.NilError(t, err)

	var got []string
	for _, n := range loaded.Children(model.OtherBookmarksID) {
		got = append(got, n.ID)
	}
	assert.DeepEqual(t, got, []string{"third", "first", "second"})
}

func TestJSONStorage_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bookmarks.json")
	assert.NilError(t, os.WriteFile(configPath, []byte("{not json"), 0644))

	_, err := storage.NewJSONStorage(configPath).Load()
	assert.ErrorContains(t, err, "decode")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := storage.Open("", dir)
	assert.NilError(t, err)
	_, isSQLite := storage.IsSQLite(st)
	assert.Assert(t, !isSQLite, "json is the fallback when no database exists")

	st, err = storage.Open(storage.BackendSQLite, dir)
	assert.NilError(t, err)
	assert.NilError(t, storage.CloseStorage(st))

	// The database now exists, so auto-detection picks it.
	st, err = storage.Open("", dir)
	assert.NilError(t, err)
	defer storage.CloseStorage(st)
	_, isSQLite = storage.IsSQLite(st)
	assert.Assert(t, isSQLite)

	_, err = storage.Open("xml", dir)
	assert.ErrorContains(t, err, "unknown storage backend")
}
