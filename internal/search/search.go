// Package search ranks bookmarks against a typed query.
//
// Matching is fuzzy over the bookmark title; untitled bookmarks are matched
// on their host instead. Folders never match.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/urlnorm"
)

// Match is one ranked bookmark. Positions index the matched runes of Text.
type Match struct {
	Bookmark  model.Node
	Text      string
	Positions []int
	Score     int
}

type candidate struct {
	node model.Node
	text string
}

// candidates adapts a bookmark list to fuzzy.Source.
type candidates []candidate

func (c candidates) String(i int) string { return c[i].text }
func (c candidates) Len() int            { return len(c) }

// label is the text a bookmark is matched on.
func label(n model.Node) string {
	if n.Title != "" {
		return n.Title
	}
	return urlnorm.Host(n.URL)
}

// Rank returns the bookmarks matching query, best first. An empty query
// matches nothing.
func Rank(nodes []model.Node, query string) []Match {
	if query == "" {
		return nil
	}

	pool := make(candidates, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFolder() {
			continue
		}
		if text := label(n); text != "" {
			pool = append(pool, candidate{node: n, text: text})
		}
	}

	found := fuzzy.FindFrom(query, pool)
	matches := make([]Match, len(found))
	for i, f := range found {
		matches[i] = Match{
			Bookmark:  pool[f.Index].node,
			Text:      f.Str,
			Positions: f.MatchedIndexes,
			Score:     f.Score,
		}
	}
	return matches
}
