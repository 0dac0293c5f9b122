package library

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildTree_DanglingFolderGoesToRoot(t *testing.T) {
	data := Structure{
		Folders:   []Folder{{ID: "f1"}},
		Sessions:  []Session{{ID: "s1", FolderID: StrPtr("f1"), CreatedAt: "2024-01-02"}},
		Documents: []Document{{ID: "d1", FolderID: StrPtr("bogus"), CreatedAt: "2024-01-01"}},
	}

	roots := BuildTree(data)

	require.Len(t, roots, 2)
	assert.Equal(t, []string{"f1", "d1"}, ids(roots))
	assert.Equal(t, []string{"s1"}, ids(roots[0].Children))
	assert.Empty(t, roots[1].Children)
}

func TestBuildTree_NullParents(t *testing.T) {
	data := Structure{
		Folders:  []Folder{{ID: "f1", ParentID: nil}, {ID: "f2", ParentID: StrPtr("")}},
		Sessions: []Session{{ID: "s1"}},
	}

	roots := BuildTree(data)
	assert.ElementsMatch(t, []string{"f1", "f2", "s1"}, ids(roots))
}

func TestBuildTree_ParentDeclaredLater(t *testing.T) {
	data := Structure{
		Folders: []Folder{
			{ID: "child", ParentID: StrPtr("parent")},
			{ID: "parent"},
		},
	}

	roots := BuildTree(data)
	require.Len(t, roots, 1)
	assert.Equal(t, "parent", roots[0].ID)
	assert.Equal(t, []string{"child"}, ids(roots[0].Children))
}

func TestBuildTree_SortOrder(t *testing.T) {
	data := Structure{
		Folders: []Folder{
			{ID: "old-folder", CreatedAt: "2023-01-01T00:00:00"},
			{ID: "new-folder", CreatedAt: "2024-06-01T00:00:00"},
		},
		Sessions: []Session{
			{ID: "s-old", Date: "2024-01-01T09:00:00"},
			{ID: "s-new", CreatedAt: "2024-03-01T09:00:00"},
		},
		Documents: []Document{
			{ID: "d-mid", CreatedAt: "2024-02-01T09:00:00Z"},
			{ID: "d-none"},
		},
	}

	roots := BuildTree(data)
	assert.Equal(t, []string{"new-folder", "old-folder", "s-new", "d-mid", "s-old", "d-none"}, ids(roots))
}

func TestBuildTree_SortsChildren(t *testing.T) {
	data := Structure{
		Folders: []Folder{{ID: "f"}, {ID: "sub", ParentID: StrPtr("f")}},
		Sessions: []Session{
			{ID: "a", FolderID: StrPtr("f"), CreatedAt: "2024-01-01"},
			{ID: "b", FolderID: StrPtr("f"), CreatedAt: "2024-05-01"},
		},
	}

	roots := BuildTree(data)
	require.Len(t, roots, 1)
	assert.Equal(t, []string{"sub", "b", "a"}, ids(roots[0].Children))
}

func TestBuildTree_SelfParent(t *testing.T) {
	data := Structure{Folders: []Folder{{ID: "f1", ParentID: StrPtr("f1")}}}

	roots := BuildTree(data)
	require.Len(t, roots, 1)
	assert.Equal(t, "f1", roots[0].ID)
	assert.Empty(t, roots[0].Children)
}

func TestBuildTree_MultiLevelCycle(t *testing.T) {
	data := Structure{
		Folders: []Folder{
			{ID: "a", ParentID: StrPtr("c")},
			{ID: "b", ParentID: StrPtr("a")},
			{ID: "c", ParentID: StrPtr("b")},
		},
	}

	roots := BuildTree(data)
	assertEachOnce(t, data, roots)
	require.Len(t, roots, 1)
}

func TestBuildTree_EveryItemOnce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		data := randomStructure(r)
		roots := BuildTree(data)
		assertEachOnce(t, data, roots)
	}
}

func TestVisible_RespectsExpansion(t *testing.T) {
	data := Structure{
		Folders:  []Folder{{ID: "f"}, {ID: "sub", ParentID: StrPtr("f")}},
		Sessions: []Session{{ID: "s", FolderID: StrPtr("sub")}},
	}
	roots := BuildTree(data)

	collapsed := Visible(roots, func(string) bool { return false })
	require.Len(t, collapsed, 1)

	open := map[string]bool{"f": true, "sub": true}
	rows := Visible(roots, func(id string) bool { return open[id] })
	require.Len(t, rows, 3)
	assert.Equal(t, "s", rows[2].Node.ID)
	assert.Equal(t, 2, rows[2].Depth)
}

func TestNode_Ext(t *testing.T) {
	n := &Node{Kind: KindDocument, Document: &Document{Filename: "Notes.MD"}}
	assert.Equal(t, "md", n.Ext())
	assert.Equal(t, "", (&Node{Kind: KindFolder}).Ext())
}

func TestParseTimestamp(t *testing.T) {
	assert.True(t, ParseTimestamp("").IsZero())
	assert.True(t, ParseTimestamp("yesterday").IsZero())
	assert.Equal(t, 2024, ParseTimestamp("2024-01-02").Year())
	assert.Equal(t, 15, ParseTimestamp("2024-01-02T15:04:05.123456").Hour())
	assert.Equal(t, 15, ParseTimestamp("2024-01-02T15:04:05+00:00").Hour())
}

func assertEachOnce(t *testing.T, data Structure, roots []*Node) {
	t.Helper()
	counts := make(map[string]int)
	Walk(roots, func(n *Node, _ int) { counts[n.ID]++ })
	assert.Len(t, counts, data.Len())
	for id, c := range counts {
		assert.Equal(t, 1, c, "item %s", id)
	}
}

func randomStructure(r *rand.Rand) Structure {
	var data Structure
	nf := r.Intn(8)
	ref := func() *string {
		switch r.Intn(4) {
		case 0:
			return nil
		case 1:
			return StrPtr("missing")
		default:
			if nf == 0 {
				return nil
			}
			return StrPtr(fmt.Sprintf("f%d", r.Intn(nf)))
		}
	}
	for i := 0; i < nf; i++ {
		data.Folders = append(data.Folders, Folder{ID: fmt.Sprintf("f%d", i), ParentID: ref()})
	}
	for i := 0; i < r.Intn(8); i++ {
		data.Sessions = append(data.Sessions, Session{ID: fmt.Sprintf("s%d", i), FolderID: ref()})
	}
	for i := 0; i < r.Intn(8); i++ {
		data.Documents = append(data.Documents, Document{ID: fmt.Sprintf("d%d", i), FolderID: ref()})
	}
	return data
}
