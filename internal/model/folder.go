package model

// Folder represents a container for bookmarks and other folders.
type Folder struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ParentID string `json:"parentId"` // RootID for the top-level folders
	Index    int    `json:"index"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Title    string
	ParentID string
}

// NewFolder creates a Folder with a generated ID.
func NewFolder(params NewFolderParams) Folder {
	parentID := params.ParentID
	if parentID == "" {
		parentID = OtherBookmarksID
	}

	return Folder{
		ID:       GenerateID(),
		Title:    params.Title,
		ParentID: parentID,
	}
}

// Node returns the store view of the folder, without children.
func (f Folder) Node() Node {
	return Node{
		ID:       f.ID,
		Title:    f.Title,
		ParentID: f.ParentID,
		Index:    f.Index,
	}
}
