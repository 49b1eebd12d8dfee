package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmtidy/internal/deadlink"
	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/review"
	"github.com/nikbrunner/bmtidy/internal/storage"
	"github.com/nikbrunner/bmtidy/internal/store"
	"github.com/nikbrunner/bmtidy/internal/tree"
)

// execute runs the root command against a JSON store in dataDir.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--backend", "json"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dataDir, args...)
	assert.NilError(t, err)
	return out
}

func childTitles(t *testing.T, dataDir, parentID string) []string {
	t.Helper()
	backend, err := storage.Open(storage.BackendJSON, dataDir)
	assert.NilError(t, err)
	bm, err := store.Open(backend, nil)
	assert.NilError(t, err)
	children, err := bm.GetChildren(context.Background(), parentID)
	assert.NilError(t, err)
	titles := make([]string, len(children))
	for i, c := range children {
		titles[i] = c.Title
	}
	return titles
}

func TestDupes(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "https://a.com", "--title", "A one")
	mustExecute(t, dir, "add", "https://A.com", "--title", "A two")
	mustExecute(t, dir, "add", "https://b.com", "--title", "B")

	out := mustExecute(t, dir, "dupes")
	assert.Check(t, is.Contains(out, "Found 1 duplicate groups (2 bookmarks)"))
	assert.Check(t, is.Contains(out, "https://a.com (2 copies)"))
	assert.Check(t, is.Contains(out, "  - A two [Root]"))

	out = mustExecute(t, dir, "dupes", "--remove-all")
	assert.Check(t, is.Contains(out, "Removed 1 duplicate bookmarks."))

	out = mustExecute(t, dir, "dupes")
	assert.Check(t, is.Contains(out, "No duplicate bookmarks found."))
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"A one", "B"})
}

func TestDupes_Review(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "https://a.com", "--title", "first")
	mustExecute(t, dir, "add", "https://a.com", "--title", "second")
	mustExecute(t, dir, "add", "https://a.com", "--title", "third")

	var offered []review.Item
	orig := runReview
	runReview = func(items []review.Item, opts review.Options) ([]review.Item, error) {
		offered = items
		assert.Check(t, opts.Multi)
		return items[1:], nil
	}
	t.Cleanup(func() { runReview = orig })

	out := mustExecute(t, dir, "dupes", "--review")
	assert.Check(t, is.Contains(out, "Removed 1 duplicate bookmarks."))
	assert.Equal(t, len(offered), 2)
	assert.Equal(t, offered[0].Title, "second")
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"first", "second"})
}

const importHTML = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<DL><p>
    <DT><H3>Zeta</H3>
    <DL><p>
        <DT><A HREF="https://z.example">z</A>
    </DL><p>
    <DT><A HREF="https://m.example">m</A>
    <DT><H3>Alpha</H3>
    <DL><p>
        <DT><A HREF="https://a.example">a</A>
    </DL><p>
</DL><p>
`

func TestImport_SortsThroughEvents(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "bookmarks.html")
	assert.NilError(t, os.WriteFile(file, []byte(importHTML), 0o644))

	out := mustExecute(t, dir, "import", file)
	assert.Check(t, is.Contains(out, "Imported 3 bookmarks, 2 folders"))
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"Alpha", "Zeta", "m"})

	out = mustExecute(t, dir, "import", file)
	assert.Check(t, is.Contains(out, "(3 duplicates skipped)"))
}

func TestImport_AutoSortingDisabled(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "bookmarks.html")
	assert.NilError(t, os.WriteFile(file, []byte(importHTML), 0o644))

	mustExecute(t, dir, "settings", "set", "auto_folder_sorting", "false")
	mustExecute(t, dir, "import", file)
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"Zeta", "m", "Alpha"})

	out := mustExecute(t, dir, "sort", model.OtherBookmarksID)
	assert.Check(t, is.Contains(out, "Sorted Other bookmarks."))
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"Alpha", "Zeta", "m"})
}

func TestSort_Args(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, dir, "sort")
	assert.ErrorContains(t, err, "either a folder ID or --all")

	_, err = execute(t, dir, "sort", model.OtherBookmarksID, "--all")
	assert.ErrorContains(t, err, "either a folder ID or --all")

	out := mustExecute(t, dir, "sort", "--all")
	assert.Check(t, is.Contains(out, "Sorted 2 folders."))
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "https://go.dev", "--title", "Go")

	path := filepath.Join(t.TempDir(), "out", "export.html")
	out := mustExecute(t, dir, "export", path)
	assert.Check(t, is.Contains(out, "Exported 1 bookmarks"))

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(string(data), `<A HREF="https://go.dev">Go</A>`))
}

func TestSettings(t *testing.T) {
	dir := t.TempDir()

	out := mustExecute(t, dir, "settings")
	assert.Equal(t, out, "auto_folder_sorting: true\nsort_by_use: true\n")

	out = mustExecute(t, dir, "settings", "set", "sortByUse", "false")
	assert.Check(t, is.Contains(out, "sort_by_use: false"))

	out = mustExecute(t, dir, "settings", "get", "sort_by_use")
	assert.Equal(t, out, "false\n")

	_, err := execute(t, dir, "settings", "set", "colour", "true")
	assert.ErrorContains(t, err, "unknown setting")

	_, err = execute(t, dir, "settings", "set", "sort_by_use", "maybe")
	assert.ErrorContains(t, err, "invalid value")
}

func TestVisit(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "https://first.example", "--title", "first")
	mustExecute(t, dir, "add", "https://example.com/docs", "--title", "docs")

	out := mustExecute(t, dir, "visit", "https://example.com/docs/?utm_source=feed")
	assert.Check(t, is.Contains(out, "Moved docs to the top"))
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"docs", "first"})

	out = mustExecute(t, dir, "visit", "https://unknown.example")
	assert.Check(t, is.Contains(out, "No bookmark moved"))
}

func TestVisit_Initial(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "https://first.example", "--title", "first")
	mustExecute(t, dir, "add", "https://short.example", "--title", "short")

	out := mustExecute(t, dir, "visit", "https://landing.example/welcome", "--initial", "https://short.example")
	assert.Check(t, is.Contains(out, "Moved short"))
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"short", "first"})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "https://first.example", "--title", "first")
	mustExecute(t, dir, "add", "https://go.dev/doc", "--title", "Go documentation")

	var opened []string
	orig := openBrowser
	openBrowser = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openBrowser = orig })

	out := mustExecute(t, dir, "open", "go", "doc")
	assert.Check(t, is.Contains(out, "Opening: Go documentation"))
	assert.DeepEqual(t, opened, []string{"https://go.dev/doc"})
	assert.DeepEqual(t, childTitles(t, dir, model.OtherBookmarksID), []string{"Go documentation", "first"})

	out = mustExecute(t, dir, "open", "qqqq")
	assert.Check(t, is.Contains(out, "No bookmarks found for 'qqqq'"))
}

func TestDeadlinks_SkipsLocalAddresses(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "http://127.0.0.1:1/", "--title", "local")
	mustExecute(t, dir, "add", "https://intranet.example/wiki", "--title", "wiki")

	out := mustExecute(t, dir, "deadlinks", "--exclude-domains", "intranet.example")
	assert.Check(t, is.Contains(out, "Checked 0 bookmarks, skipped 2, found 0 dead links."))
}

func TestUnknownBackend(t *testing.T) {
	_, err := execute(t, t.TempDir(), "--backend", "postgres", "dupes")
	assert.Check(t, err != nil)
	assert.Check(t, strings.Contains(err.Error(), "backend must be"))
}

func TestDeadlinkReport_Grouping(t *testing.T) {
	report := deadlink.Report{
		Checked: 3,
		Results: []deadlink.Result{
			{Bookmark: model.Node{ID: "1", Title: "Blog", URL: "https://blog.example.com/post"}, Reason: "HTTP 404: Not Found"},
			{Bookmark: model.Node{ID: "2", Title: "Docs", URL: "https://docs.example.com"}, Reason: "HTTP Status 500"},
			{Bookmark: model.Node{ID: "3", Title: "Other", URL: "https://other.org"}, Reason: "Network Error: DNS failure"},
		},
	}
	snap := tree.Snapshot{Folders: tree.FolderIndex{}}

	var byHost bytes.Buffer
	printDeadLinkReport(&byHost, snap, report, deadlink.ByHost)
	assert.Check(t, is.Contains(byHost.String(), "\nblog.example.com (1)\n"))
	assert.Check(t, is.Contains(byHost.String(), "\ndocs.example.com (1)\n"))

	var byDomain bytes.Buffer
	printDeadLinkReport(&byDomain, snap, report, deadlink.ByDomain)
	out := byDomain.String()
	assert.Check(t, is.Contains(out, "Checked 3 bookmarks, skipped 0, found 3 dead links."))
	assert.Check(t, is.Contains(out, "\nexample.com (2)\n"))
	assert.Check(t, is.Contains(out, "\nother.org (1)\n"))
	assert.Check(t, strings.Index(out, "example.com (2)") < strings.Index(out, "other.org (1)"))
}

func TestDeadlinks_InvalidGrouping(t *testing.T) {
	_, err := execute(t, t.TempDir(), "deadlinks", "--group-by", "path")
	assert.ErrorContains(t, err, "unknown grouping")
}

func TestSort_BookmarksBarIsLeftAlone(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "https://z.example", "--title", "z", "--folder", model.BookmarksBarID)
	mustExecute(t, dir, "add", "https://a.example", "--title", "a", "--folder", model.BookmarksBarID)

	out := mustExecute(t, dir, "sort", model.BookmarksBarID)
	assert.Check(t, is.Contains(out, "The bookmarks bar is never sorted."))
	assert.Check(t, !strings.Contains(out, "Sorted"))
	assert.DeepEqual(t, childTitles(t, dir, model.BookmarksBarID), []string{"z", "a"})
}
