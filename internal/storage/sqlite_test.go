package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/settings"
	"github.com/nikbrunner/bmtidy/internal/storage"
	"gotest.tools/v3/assert"
)

func newSQLite(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	s := newSQLite(t)

	now := time.Now().Truncate(time.Second) // RFC3339 loses sub-second precision
	store := sampleStore()
	b := store.GetBookmarkByID("b1")
	b.Tags = []string{"test", "example"}
	b.CreatedAt = now
	b.VisitedAt = &now

	assert.NilError(t, s.Save(store))

	loaded, err := s.Load()
	assert.NilError(t, err)

	assert.Equal(t, len(loaded.Folders), 4)
	assert.Equal(t, len(loaded.Bookmarks), 2)

	got := loaded.GetBookmarkByID("b1")
	assert.Assert(t, got != nil)
	assert.DeepEqual(t, got.Tags, []string{"test", "example"})
	assert.Equal(t, got.ParentID, "f1")
	assert.Assert(t, got.CreatedAt.Equal(now))
	assert.Assert(t, got.VisitedAt != nil && got.VisitedAt.Equal(now))
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s := newSQLite(t)

	store, err := s.Load()
	assert.NilError(t, err)
	assert.Equal(t, len(store.Folders), 3)
	assert.Equal(t, len(store.Bookmarks), 0)
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "bookmarks.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	defer s.Close()

	assert.NilError(t, s.Save(model.NewStore()))
}

func TestSQLiteStorage_SaveReplacesContents(t *testing.T) {
	s := newSQLite(t)

	store := sampleStore()
	assert.NilError(t, s.Save(store))

	store.RemoveBookmark("b1")
	assert.NilError(t, s.Save(store))

	loaded, err := s.Load()
	assert.NilError(t, err)
	assert.Equal(t, len(loaded.Bookmarks), 1)
	assert.Assert(t, loaded.GetBookmarkByID("b1") == nil)
}

func TestSQLiteStorage_PreservesOrder(t *testing.T) {
	s := newSQLite(t)

	store := model.NewStore()
	store.AddBookmark(model.Bookmark{ID: "m", URL: "https://m.com", ParentID: model.OtherBookmarksID}, -1)
	store.AddFolder(model.Folder{ID: "z", Title: "Z", ParentID: model.OtherBookmarksID}, -1)
	store.AddFolder(model.Folder{ID: "a", Title: "A", ParentID: model.OtherBookmarksID}, 0)
	assert.NilError(t, s.Save(store))

	loaded, err := s.Load()
	assert.NilError(t, err)

	var got []string
	for _, n := range loaded.Children(model.OtherBookmarksID) {
		got = append(got, n.ID)
	}
	assert.DeepEqual(t, got, []string{"a", "m", "z"})
}

func TestSQLiteStorage_Settings(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	got, err := s.Get(ctx)
	assert.NilError(t, err)
	assert.Equal(t, got, settings.Defaults())

	off := false
	assert.NilError(t, s.Set(ctx, settings.Patch{AutoFolderSorting: &off}))

	got, err = s.Get(ctx)
	assert.NilError(t, err)
	assert.Equal(t, got, settings.Settings{AutoFolderSorting: false, SortByUse: true})

	on := true
	assert.NilError(t, s.Set(ctx, settings.Patch{AutoFolderSorting: &on, SortByUse: &off}))

	got, err = s.Get(ctx)
	assert.NilError(t, err)
	assert.Equal(t, got, settings.Settings{AutoFolderSorting: true, SortByUse: false})
}

func TestSQLiteStorage_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	assert.NilError(t, s.Save(sampleStore()))
	assert.NilError(t, s.Close())

	// Migrations must be idempotent on an existing database.
	s, err = storage.NewSQLiteStorage(dbPath)
	assert.NilError(t, err)
	defer s.Close()

	loaded, err := s.Load()
	assert.NilError(t, err)
	assert.Equal(t, len(loaded.Bookmarks), 2)
}
