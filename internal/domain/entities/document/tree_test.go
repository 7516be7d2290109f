package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() Tree {
	return Tree{
		{ID: "h", Type: TypeHeading, Settings: Settings{"text": "Title"}},
		{ID: "cols", Type: TypeTwoColumns, Settings: Settings{}, Children: []*ElementNode{
			{ID: "c1", Type: TypeColumn, Settings: Settings{}, Children: []*ElementNode{
				{ID: "t1", Type: TypeText, Settings: Settings{"text": "left"}},
			}},
			{ID: "c2", Type: TypeColumn, Settings: Settings{}},
		}},
	}
}

func TestTreeFindAndLocate(t *testing.T) {
	tree := sampleTree()

	n, ok := tree.Find("t1")
	require.True(t, ok)
	assert.Equal(t, TypeText, n.Type)

	parent, index, ok := tree.Locate("c2")
	require.True(t, ok)
	assert.Equal(t, "cols", parent)
	assert.Equal(t, 1, index)

	parent, index, ok = tree.Locate("cols")
	require.True(t, ok)
	assert.Equal(t, RootID, parent)
	assert.Equal(t, 1, index)

	_, _, ok = tree.Locate("missing")
	assert.False(t, ok)
	assert.Equal(t, 5, tree.Count())
}

func TestTreeIsDescendant(t *testing.T) {
	tree := sampleTree()
	assert.True(t, tree.IsDescendant("cols", "t1"))
	assert.False(t, tree.IsDescendant("t1", "cols"))
	assert.False(t, tree.IsDescendant("cols", "cols"))
}

func TestTreeWithChildrenSharesUntouchedSubtrees(t *testing.T) {
	tree := sampleTree()
	extra := &ElementNode{ID: "t2", Type: TypeText, Settings: Settings{}}

	siblings, err := tree.Children("c2")
	require.NoError(t, err)
	out, err := tree.WithChildren("c2", InsertAt(siblings, extra, AppendIndex))
	require.NoError(t, err)

	_, ok := out.Find("t2")
	assert.True(t, ok)
	_, ok = tree.Find("t2")
	assert.False(t, ok, "original snapshot is unchanged")
	assert.Same(t, tree[0], out[0], "untouched top level node is shared")
	assert.NotSame(t, tree[1], out[1])

	_, err = tree.WithChildren("missing", nil)
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestCloneWithNewIDs(t *testing.T) {
	tree := sampleTree()
	clone := tree[1].CloneWithNewIDs()

	ids := tree.IDs()
	clone.Walk(func(n, _ *ElementNode, _ int) bool {
		_, clash := ids[n.ID]
		assert.False(t, clash, "id %s reused", n.ID)
		return true
	})
	assert.Equal(t, "left", clone.Children[0].Children[0].Settings["text"])

	clone.Children[0].Children[0].Settings["text"] = "changed"
	assert.Equal(t, "left", tree[1].Children[0].Children[0].Settings["text"])
}

func TestInsertAtAndRemoveAt(t *testing.T) {
	a := &ElementNode{ID: "a"}
	b := &ElementNode{ID: "b"}
	c := &ElementNode{ID: "c"}

	nodes := InsertAt([]*ElementNode{a, c}, b, 1)
	assert.Equal(t, []*ElementNode{a, b, c}, nodes)
	assert.Equal(t, []*ElementNode{a, b, c, a}, InsertAt(nodes, a, 99))
	assert.Equal(t, []*ElementNode{a, c}, RemoveAt(nodes, 1))
	assert.Len(t, nodes, 3)
}

func TestColumnsTypeFor(t *testing.T) {
	ct, ok := ColumnsTypeFor(3)
	require.True(t, ok)
	assert.Equal(t, TypeThreeColumns, ct)
	_, ok = ColumnsTypeFor(5)
	assert.False(t, ok)
}

func TestSerializeNeverEmitsNullElements(t *testing.T) {
	out := Document{Title: "x"}.Serialize()
	assert.Equal(t, SerializedVersion, out.Version)
	assert.NotNil(t, out.Elements)
}
