// Package exporter writes the bookmark tree as Netscape bookmark HTML.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the tree returned by the store. The bookmarks bar is
// written as the toolbar folder, other bookmarks at the top level, and mobile
// bookmarks as a folder of their own.
func ExportHTML(roots []model.Node) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, root := range roots {
		for _, top := range topLevel(root) {
			switch top.ID {
			case model.BookmarksBarID:
				writeFolder(&b, top, 1, true)
			case model.OtherBookmarksID:
				writeItems(&b, top.Children, 1)
			default:
				if len(top.Children) > 0 || !model.IsWellKnown(top.ID) {
					writeFolder(&b, top, 1, false)
				}
			}
		}
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// topLevel returns the children of the synthetic root, or the node itself
// when handed a subtree.
func topLevel(n model.Node) []model.Node {
	if n.ID == model.RootID {
		return n.Children
	}
	return []model.Node{n}
}

func writeFolder(b *strings.Builder, folder model.Node, indent int, toolbar bool) {
	prefix := strings.Repeat("    ", indent)
	attrs := ""
	if toolbar {
		attrs = ` PERSONAL_TOOLBAR_FOLDER="true"`
	}
	fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, attrs, html.EscapeString(folder.Title))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)
	writeItems(b, folder.Children, indent+1)
	fmt.Fprintf(b, "%s</DL><p>\n", prefix)
}

// writeItems writes children in their stored order.
func writeItems(b *strings.Builder, children []model.Node, indent int) {
	prefix := strings.Repeat("    ", indent)
	for _, n := range children {
		if n.IsFolder() {
			writeFolder(b, n, indent, false)
			continue
		}
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\">%s</A>\n",
			prefix,
			html.EscapeString(n.URL),
			html.EscapeString(n.Title),
		)
	}
}
