package canvas

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// FileEntry is one file as presented in the synthesized tree.
type FileEntry struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// FolderNode is one folder of the synthesized tree. Children are fully
// attached and sorted before a node is handed out.
type FolderNode struct {
	ID       int           `json:"id,omitempty"`
	Name     string        `json:"name"`
	FullName string        `json:"full_name,omitempty"`
	Locked   bool          `json:"locked"`
	Hidden   bool          `json:"hidden"`
	Folders  []*FolderNode `json:"folders"`
	Files    []FileEntry   `json:"files"`
}

// rawFolder and rawFile mirror the platform's flat listings.
type rawFolder struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	FullName       string `json:"full_name"`
	ParentFolderID *int   `json:"parent_folder_id"`
	ContextType    string `json:"context_type"`
	ContextID      int    `json:"context_id"`
	Locked         bool   `json:"locked"`
	Hidden         bool   `json:"hidden"`
}

type rawFile struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	FolderID    *int   `json:"folder_id"`
	Size        int64  `json:"size"`
	ContentType string `json:"content-type"`
	UpdatedAt   string `json:"updated_at"`
}

const (
	virtualRootName   = "Course Files"
	courseFilesPrefix = "course files"
)

// BuildFileTree fetches the flat folder and file listings for a course and
// assembles them into a single rooted tree.
func (c *Client) BuildFileTree(ctx context.Context, courseID int) (*FolderNode, error) {
	folders, err := collect[rawFolder](c.Paginate(ctx, fmt.Sprintf("/courses/%d/folders", courseID), nil))
	if err != nil {
		return nil, err
	}
	files, err := collect[rawFile](c.Paginate(ctx, fmt.Sprintf("/courses/%d/files", courseID), nil))
	if err != nil {
		return nil, err
	}
	return assembleTree(courseID, folders, files), nil
}

// assembleTree builds parent→children and folder→files adjacencies over the
// flat listings, then selects the canonical root.
func assembleTree(courseID int, folders []rawFolder, files []rawFile) *FolderNode {
	// First pass: one node per folder.
	nodes := make(map[int]*FolderNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &FolderNode{
			ID:       f.ID,
			Name:     f.Name,
			FullName: f.FullName,
			Locked:   f.Locked,
			Hidden:   f.Hidden,
			Folders:  []*FolderNode{},
			Files:    []FileEntry{},
		}
	}

	// Second pass: nest children under parents; a nil parent marks a
	// top-level folder.
	var topLevel []rawFolder
	for _, f := range folders {
		if f.ParentFolderID == nil {
			topLevel = append(topLevel, f)
			continue
		}
		if parent, ok := nodes[*f.ParentFolderID]; ok {
			parent.Folders = append(parent.Folders, nodes[f.ID])
		}
	}

	// Third pass: attach files. Files without a folder id are orphans in
	// the source system and stay out of the tree.
	for _, f := range files {
		if f.FolderID == nil {
			continue
		}
		folder, ok := nodes[*f.FolderID]
		if !ok {
			continue
		}
		folder.Files = append(folder.Files, FileEntry{
			ID:          f.ID,
			DisplayName: f.DisplayName,
			Size:        f.Size,
			ContentType: f.ContentType,
			UpdatedAt:   f.UpdatedAt,
		})
	}

	for _, node := range nodes {
		sortChildren(node)
	}

	return selectRoot(courseID, topLevel, nodes)
}

// sortChildren orders child folders and files case-insensitively by display
// name with the id as tie-break, so repeated builds over identical input
// come out identical.
func sortChildren(n *FolderNode) {
	sort.SliceStable(n.Folders, func(i, j int) bool {
		a, b := strings.ToLower(n.Folders[i].Name), strings.ToLower(n.Folders[j].Name)
		if a != b {
			return a < b
		}
		return n.Folders[i].ID < n.Folders[j].ID
	})
	sort.SliceStable(n.Files, func(i, j int) bool {
		a, b := strings.ToLower(n.Files[i].DisplayName), strings.ToLower(n.Files[j].DisplayName)
		if a != b {
			return a < b
		}
		return n.Files[i].ID < n.Files[j].ID
	})
}

// selectRoot picks the canonical root among top-level folders: a folder in
// the requested course's context, preferring the one whose full name starts
// with the "course files" prefix. Without any course-context candidate a
// virtual root adopts every top-level folder rather than failing the
// request.
func selectRoot(courseID int, topLevel []rawFolder, nodes map[int]*FolderNode) *FolderNode {
	var candidates []rawFolder
	for _, f := range topLevel {
		if strings.EqualFold(f.ContextType, "course") && f.ContextID == courseID {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) > 0 {
		for _, f := range candidates {
			if strings.HasPrefix(strings.ToLower(f.FullName), courseFilesPrefix) {
				return nodes[f.ID]
			}
		}
		return nodes[candidates[0].ID]
	}

	root := &FolderNode{
		Name:    virtualRootName,
		Folders: []*FolderNode{},
		Files:   []FileEntry{},
	}
	for _, f := range topLevel {
		root.Folders = append(root.Folders, nodes[f.ID])
	}
	sortChildren(root)
	return root
}
