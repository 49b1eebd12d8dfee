package model

// Well-known node IDs. Every store carries these folders; they can be
// neither moved nor removed.
const (
	RootID            = "0"
	BookmarksBarID    = "1"
	OtherBookmarksID  = "2"
	MobileBookmarksID = "3"
)

// Titles of the well-known top-level folders.
const (
	BookmarksBarTitle    = "Bookmarks bar"
	OtherBookmarksTitle  = "Other bookmarks"
	MobileBookmarksTitle = "Mobile bookmarks"
)

// Node is a read-only view of a bookmark or folder as handed out by the
// bookmark store. A node is a folder iff URL is empty.
type Node struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	Index    int    `json:"index"`
	Children []Node `json:"children,omitempty"` // only populated by tree reads
}

// IsFolder reports whether the node is a folder.
func (n Node) IsFolder() bool {
	return n.URL == ""
}

// IsWellKnown reports whether id names the root or one of the top-level folders.
func IsWellKnown(id string) bool {
	switch id {
	case RootID, BookmarksBarID, OtherBookmarksID, MobileBookmarksID:
		return true
	}
	return false
}
