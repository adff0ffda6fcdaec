package xbrl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeRole = "http://tests.example.com/role/Tree"

func TestBuildTrees_OrderAndDepth(t *testing.T) {
	// Arcs deliberately out of document order; the order attribute governs.
	arcs := []Arc{
		{From: "root", To: "c", Role: treeRole, Order: 3, DocumentOrder: 1, Weight: 1},
		{From: "root", To: "a", Role: treeRole, Order: 1, DocumentOrder: 2, Weight: 1},
		{From: "root", To: "b", Role: treeRole, Order: 2, DocumentOrder: 3, Weight: 1},
		{From: "b", To: "b1", Role: treeRole, Order: 1, DocumentOrder: 4, Weight: 1},
	}
	set, err := BuildTrees(&ArcTable{Kind: LinkbasePresentation, Arcs: arcs})
	require.NoError(t, err)

	tree := set.Tree(treeRole)
	require.NotNil(t, tree)
	assert.Equal(t, []string{"root"}, tree.Roots)
	assert.Equal(t, []string{"a", "b", "c"}, tree.Node("root").Children)
	assert.Equal(t, 0, tree.Node("root").Depth)
	assert.Equal(t, 1, tree.Node("a").Depth)
	assert.Equal(t, 2, tree.Node("b1").Depth)
	assert.Equal(t, "b", tree.Node("b1").Parent)
}

func TestBuildTrees_DocumentOrderBreaksTies(t *testing.T) {
	arcs := []Arc{
		{From: "root", To: "second", Role: treeRole, Order: 1, DocumentOrder: 2, Weight: 1},
		{From: "root", To: "first", Role: treeRole, Order: 1, DocumentOrder: 1, Weight: 1},
	}
	set, err := BuildTrees(&ArcTable{Kind: LinkbasePresentation, Arcs: arcs})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, set.Tree(treeRole).Node("root").Children)
}

func TestBuildTrees_CycleDetected(t *testing.T) {
	arcs := []Arc{
		{From: "root", To: "a", Role: treeRole, Order: 1, DocumentOrder: 1, Weight: 1},
		{From: "a", To: "b", Role: treeRole, Order: 1, DocumentOrder: 2, Weight: 1},
		{From: "b", To: "a", Role: treeRole, Order: 1, DocumentOrder: 3, Weight: 1},
	}
	_, err := BuildTrees(&ArcTable{Kind: LinkbasePresentation, Arcs: arcs})
	var malformed *MalformedXBRLError
	require.ErrorAs(t, err, &malformed)
}

func TestBuildTrees_FullyCyclicGraph(t *testing.T) {
	arcs := []Arc{
		{From: "a", To: "b", Role: treeRole, Order: 1, DocumentOrder: 1, Weight: 1},
		{From: "b", To: "a", Role: treeRole, Order: 1, DocumentOrder: 2, Weight: 1},
	}
	_, err := BuildTrees(&ArcTable{Kind: LinkbasePresentation, Arcs: arcs})
	var malformed *MalformedXBRLError
	require.ErrorAs(t, err, &malformed)
}

func TestBuildTrees_RolesArePartitioned(t *testing.T) {
	other := "http://tests.example.com/role/Other"
	arcs := []Arc{
		{From: "root", To: "a", Role: treeRole, Order: 1, DocumentOrder: 1, Weight: 1},
		{From: "root2", To: "a", Role: other, Order: 1, DocumentOrder: 2, Weight: 1},
	}
	set, err := BuildTrees(&ArcTable{Kind: LinkbasePresentation, Arcs: arcs})
	require.NoError(t, err)
	assert.Len(t, set.Trees, 2)
	assert.True(t, set.Tree(treeRole).Contains("a"))
	assert.True(t, set.Tree(other).Contains("a"))
	assert.False(t, set.Tree(treeRole).Contains("root2"))
}

// A concept reached through two arcs is visited once per occurrence, each
// time with that arc's preferred label. Equity roll-forwards depend on this.
func TestTreeWalk_RepeatedConceptOccurrences(t *testing.T) {
	arcs := []Arc{
		presArc(treeRole, "root", "equity", 1, LabelRolePeriodStart),
		presArc(treeRole, "root", "netincome", 2, ""),
		presArc(treeRole, "root", "equity", 3, LabelRolePeriodEnd),
	}
	set, err := BuildTrees(&ArcTable{Kind: LinkbasePresentation, Arcs: arcs})
	require.NoError(t, err)

	var visited []Visit
	set.Tree(treeRole).Walk(func(v Visit) { visited = append(visited, v) })

	require.Len(t, visited, 4)
	assert.Equal(t, "root", visited[0].Concept)
	assert.Equal(t, "equity", visited[1].Concept)
	assert.Equal(t, LabelRolePeriodStart, visited[1].PreferredLabel)
	assert.Equal(t, "netincome", visited[2].Concept)
	assert.Equal(t, "equity", visited[3].Concept)
	assert.Equal(t, LabelRolePeriodEnd, visited[3].PreferredLabel)
}

func TestTreeWeightLookup(t *testing.T) {
	arcs := []Arc{
		calcArc(treeRole, "opex", "rd", 1, 1),
		calcArc(treeRole, "opex", "credit", 2, -1),
	}
	set, err := BuildTrees(&ArcTable{Kind: LinkbaseCalculation, Arcs: arcs})
	require.NoError(t, err)

	tree := set.Tree(treeRole)
	w, ok := tree.ParentWeight("credit")
	require.True(t, ok)
	assert.Equal(t, -1.0, w)

	w, ok = tree.ParentWeight("rd")
	require.True(t, ok)
	assert.Equal(t, 1.0, w)

	_, ok = tree.ParentWeight("opex")
	assert.False(t, ok)
}
