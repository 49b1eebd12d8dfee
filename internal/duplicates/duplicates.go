// Package duplicates groups bookmarks that point at the same URL.
package duplicates

import (
	"strings"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// Group is a set of bookmarks sharing a URL after case folding.
type Group struct {
	// URL is the first member's URL as stored.
	URL string
	// Key is the case-folded URL shared by every member.
	Key     string
	Members []model.Node
}

// Detect groups bookmarks whose URLs are equal ignoring case. Only URLs seen
// at least twice produce a group. Groups appear in the order their first
// duplicate was met; members keep encounter order. Folders are ignored.
func Detect(bookmarks []model.Node) []Group {
	first := make(map[string]model.Node, len(bookmarks))
	groupAt := make(map[string]int)
	var groups []Group

	for _, b := range bookmarks {
		if b.IsFolder() {
			continue
		}
		key := strings.ToLower(b.URL)

		if i, ok := groupAt[key]; ok {
			groups[i].Members = append(groups[i].Members, b)
			continue
		}
		if orig, ok := first[key]; ok {
			groupAt[key] = len(groups)
			groups = append(groups, Group{
				URL:     orig.URL,
				Key:     key,
				Members: []model.Node{orig, b},
			})
			continue
		}
		first[key] = b
	}

	return groups
}

// Redundant returns the IDs of every member except the first of each group.
func Redundant(groups []Group) []string {
	var ids []string
	for _, g := range groups {
		for _, m := range g.Members[1:] {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Count returns the number of bookmarks involved in groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Members)
	}
	return n
}
