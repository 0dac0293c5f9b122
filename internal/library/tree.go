package library

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Node is a transient tree view of a library entry. Only folders have children.
type Node struct {
	Kind      Kind
	ID        string
	Label     string
	CreatedAt time.Time

	Folder   *Folder
	Session  *Session
	Document *Document

	Children []*Node
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool { return n.Kind == KindFolder }

// Ext returns the lower-cased file extension of a document node, without the dot.
func (n *Node) Ext() string {
	if n.Document == nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(n.Document.Filename)), ".")
}

// BuildTree converts the flat listing into sorted root nodes. Entries whose
// parent or folder reference does not resolve are placed at root, so nothing
// is ever dropped. A folder whose parent chain leads back to itself is also
// placed at root, which breaks the cycle.
func BuildTree(data Structure) []*Node {
	folders := make(map[string]*Node, len(data.Folders))
	for i := range data.Folders {
		f := &data.Folders[i]
		folders[f.ID] = &Node{
			Kind:      KindFolder,
			ID:        f.ID,
			Label:     f.Name,
			CreatedAt: ParseTimestamp(f.CreatedAt),
			Folder:    f,
			Children:  []*Node{},
		}
	}

	var roots []*Node

	attach := func(folderID *string, n *Node) {
		if parent, ok := folders[deref(folderID)]; ok {
			parent.Children = append(parent.Children, n)
			return
		}
		roots = append(roots, n)
	}

	for i := range data.Sessions {
		s := &data.Sessions[i]
		attach(s.FolderID, &Node{
			Kind:      KindSession,
			ID:        s.ID,
			Label:     s.Title,
			CreatedAt: sortTime(s.CreatedAt, s.Date),
			Session:   s,
		})
	}
	for i := range data.Documents {
		d := &data.Documents[i]
		attach(d.FolderID, &Node{
			Kind:      KindDocument,
			ID:        d.ID,
			Label:     d.Filename,
			CreatedAt: sortTime(d.CreatedAt, d.Date),
			Document:  d,
		})
	}

	// effective holds the resolved parent of every folder placed so far; ""
	// means root.
	effective := make(map[string]string, len(data.Folders))
	parentOf := func(id string) string {
		if p, ok := effective[id]; ok {
			return p
		}
		if n, ok := folders[id]; ok {
			return deref(n.Folder.ParentID)
		}
		return ""
	}

	for i := range data.Folders {
		f := &data.Folders[i]
		node := folders[f.ID]
		parentID := deref(f.ParentID)
		parent, ok := folders[parentID]
		if !ok || formsCycle(f.ID, parentID, parentOf) {
			effective[f.ID] = ""
			roots = append(roots, node)
			continue
		}
		effective[f.ID] = parentID
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	return roots
}

// formsCycle walks up from parentID and reports whether it reaches id.
func formsCycle(id, parentID string, parentOf func(string) string) bool {
	seen := make(map[string]bool)
	for cur := parentID; cur != ""; cur = parentOf(cur) {
		if cur == id {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
	}
	return false
}

// sortNodes orders siblings recursively: folders first, then newest first.
func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return less(nodes[i], nodes[j])
	})
	for _, n := range nodes {
		if n.IsFolder() {
			sortNodes(n.Children)
		}
	}
}

func less(a, b *Node) bool {
	if a.IsFolder() != b.IsFolder() {
		return a.IsFolder()
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Row is one visible line of the tree view.
type Row struct {
	Node  *Node
	Depth int
}

// Visible flattens the tree depth-first, descending only into expanded folders.
func Visible(nodes []*Node, expanded func(id string) bool) []Row {
	var rows []Row
	var walk func([]*Node, int)
	walk = func(ns []*Node, depth int) {
		for _, n := range ns {
			rows = append(rows, Row{Node: n, Depth: depth})
			if n.IsFolder() && expanded(n.ID) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
	return rows
}

// Walk visits every node depth-first, regardless of expansion.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	var walk func([]*Node, int)
	walk = func(ns []*Node, depth int) {
		for _, n := range ns {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

// Find returns the node with the given id, or nil.
func Find(nodes []*Node, id string) *Node {
	var found *Node
	Walk(nodes, func(n *Node, _ int) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}
