// Package importer reads Netscape bookmark HTML files, the format every
// browser exports, and adds their contents to the bookmark store.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/store"
)

// Entry is a parsed folder (URL empty) or bookmark.
type Entry struct {
	Title string
	URL   string
	// Toolbar marks the folder browsers export for their bookmarks bar.
	Toolbar  bool
	Children []*Entry
}

// IsFolder reports whether e is a folder.
func (e *Entry) IsFolder() bool { return e.URL == "" }

// ParseHTMLBookmarks parses Netscape bookmark HTML into a forest of entries.
func ParseHTMLBookmarks(r io.Reader) ([]*Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := &Entry{}
	// Track current folder stack for hierarchy
	folderStack := []*Entry{root}
	var pendingFolder *Entry // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name != "" {
					parent := folderStack[len(folderStack)-1]
					folder := &Entry{
						Title:    name,
						Toolbar:  strings.EqualFold(getAttr(n, "personal_toolbar_folder"), "true"),
						Children: []*Entry{},
					}
					parent.Children = append(parent.Children, folder)

					// Mark this folder as pending - will be pushed when we see the next DL
					pendingFolder = folder
				}
				return // Don't recurse into H3

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				parent := folderStack[len(folderStack)-1]
				parent.Children = append(parent.Children, &Entry{Title: title, URL: href})
				return // Don't recurse into A

			case "dl":
				// Definition list - marks folder contents
				pushedFolder := false
				if pendingFolder != nil {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = nil
					pushedFolder = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder && len(folderStack) > 1 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return // Don't recurse further, we handled children
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return root.Children, nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}

// Stats counts what an import created.
type Stats struct {
	Folders   int
	Bookmarks int
	Skipped   int
}

// Options controls Import.
type Options struct {
	// ParentID receives top-level entries. Defaults to Other bookmarks.
	ParentID string
	// SkipExisting leaves out bookmarks whose exact URL is already stored.
	SkipExisting bool
}

// Import creates entries in the store. A top-level toolbar folder is merged
// into the bookmarks bar, and top-level folders named like the well-known
// folders are merged into them.
func Import(ctx context.Context, bm store.Bookmarks, entries []*Entry, opts Options) (Stats, error) {
	parentID := opts.ParentID
	if parentID == "" {
		parentID = model.OtherBookmarksID
	}

	type pending struct {
		entry    *Entry
		parentID string
	}
	var stats Stats
	var stack []pending

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if id, ok := wellKnownTarget(e); ok {
			for j := len(e.Children) - 1; j >= 0; j-- {
				stack = append(stack, pending{entry: e.Children[j], parentID: id})
			}
			continue
		}
		stack = append(stack, pending{entry: e, parentID: parentID})
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.entry.IsFolder() && opts.SkipExisting {
			existing, err := bm.Search(ctx, store.Query{URL: p.entry.URL})
			if err != nil {
				return stats, fmt.Errorf("import %s: %w", p.entry.URL, err)
			}
			if len(existing) > 0 {
				stats.Skipped++
				continue
			}
		}

		node, err := bm.Create(ctx, store.CreateDetails{
			ParentID: p.parentID,
			Title:    p.entry.Title,
			URL:      p.entry.URL,
		})
		if err != nil {
			return stats, fmt.Errorf("import %q: %w", p.entry.Title, err)
		}

		if !p.entry.IsFolder() {
			stats.Bookmarks++
			continue
		}
		stats.Folders++
		for j := len(p.entry.Children) - 1; j >= 0; j-- {
			stack = append(stack, pending{entry: p.entry.Children[j], parentID: node.ID})
		}
	}

	return stats, nil
}

func wellKnownTarget(e *Entry) (string, bool) {
	if !e.IsFolder() {
		return "", false
	}
	switch {
	case e.Toolbar, e.Title == model.BookmarksBarTitle:
		return model.BookmarksBarID, true
	case e.Title == model.OtherBookmarksTitle:
		return model.OtherBookmarksID, true
	case e.Title == model.MobileBookmarksTitle:
		return model.MobileBookmarksID, true
	}
	return "", false
}
