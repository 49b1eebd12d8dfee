package model

import "time"

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	ParentID  string     `json:"parentId"`
	Index     int        `json:"index"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	VisitedAt *time.Time `json:"visitedAt"` // nil = never visited
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title    string
	URL      string
	ParentID string
	Tags     []string
}

// NewBookmark creates a Bookmark with a generated ID and timestamps.
// The index is assigned when the bookmark is inserted into a Store.
func NewBookmark(params NewBookmarkParams) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	parentID := params.ParentID
	if parentID == "" {
		parentID = OtherBookmarksID
	}

	return Bookmark{
		ID:        GenerateID(),
		Title:     params.Title,
		URL:       params.URL,
		ParentID:  parentID,
		Tags:      tags,
		CreatedAt: time.Now(),
		VisitedAt: nil,
	}
}

// Node returns the store view of the bookmark.
func (b Bookmark) Node() Node {
	return Node{
		ID:       b.ID,
		Title:    b.Title,
		URL:      b.URL,
		ParentID: b.ParentID,
		Index:    b.Index,
	}
}
