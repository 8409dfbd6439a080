package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divij-pawar/relcheck/api/schemas"
)

func hierarchyEdge(from, to schemas.ConceptID, rel schemas.RelationType) schemas.ClassifiedRecord {
	return schemas.ClassifiedRecord{
		Class:    schemas.ClassEdge,
		Graph:    schemas.GraphHierarchy,
		From:     from,
		To:       to,
		Relation: rel,
	}
}

func TestBuilderIdempotentAdjacency(t *testing.T) {
	b := NewBuilder(nil)

	// The same record twice: multiplicity 2, one adjacency entry.
	rec := hierarchyEdge("A", "B", schemas.RelParent)
	b.Apply(rec)
	b.Apply(rec)

	snap := b.Freeze()
	assert.Equal(t, 1, snap.Hierarchy.EdgeCount())
	require.Len(t, snap.Duplicates, 1)
	assert.Equal(t, schemas.ConceptID("A"), snap.Duplicates[0].From)
	assert.Equal(t, schemas.ConceptID("B"), snap.Duplicates[0].To)
	assert.Equal(t, 2, snap.Duplicates[0].Count)

	a := snap.Interner.Intern("A")
	assert.Len(t, snap.Hierarchy.Out(a), 1)
}

func TestBuilderMultiplicityIsPerGraph(t *testing.T) {
	b := NewBuilder(nil)

	// Same concept pair asserted in both graphs must not collide.
	b.Apply(hierarchyEdge("A", "B", schemas.RelParent))
	b.Apply(schemas.ClassifiedRecord{
		Class:    schemas.ClassEdge,
		Graph:    schemas.GraphBroader,
		From:     "A",
		To:       "B",
		Relation: schemas.RelBroader,
	})

	snap := b.Freeze()
	assert.Equal(t, 1, snap.Hierarchy.EdgeCount())
	assert.Equal(t, 1, snap.Broader.EdgeCount())
	assert.Empty(t, snap.Duplicates)
}

func TestBuilderReflexiveDeduplication(t *testing.T) {
	b := NewBuilder(nil)

	ref := schemas.ClassifiedRecord{
		Class:    schemas.ClassReflexive,
		From:     "C1",
		To:       "C1",
		Relation: "SY",
	}
	b.Apply(ref)
	b.Apply(ref)
	b.Apply(schemas.ClassifiedRecord{Class: schemas.ClassReflexive, From: "C1", To: "C1", Relation: "RB"})

	snap := b.Freeze()
	require.Len(t, snap.Reflexives, 2)
	assert.Equal(t, schemas.ReflexiveLink{Concept: "C1", Relation: "SY"}, snap.Reflexives[0])
	assert.Equal(t, schemas.ReflexiveLink{Concept: "C1", Relation: "RB"}, snap.Reflexives[1])
	// Reflexive records never touch the graphs.
	assert.Equal(t, 0, snap.Hierarchy.NodeCount())
	assert.Equal(t, 0, snap.Broader.NodeCount())
}

func TestBuilderObservedRelationTypes(t *testing.T) {
	b := NewBuilder(nil)
	b.Apply(hierarchyEdge("A", "B", schemas.RelChild))
	b.Apply(schemas.ClassifiedRecord{Class: schemas.ClassObservedOnly, Relation: "SY"})
	b.Apply(schemas.ClassifiedRecord{Class: schemas.ClassObservedOnly, Relation: "RO"})
	b.Apply(schemas.ClassifiedRecord{Class: schemas.ClassObservedOnly, Relation: "SY"})

	snap := b.Freeze()
	assert.Equal(t, []schemas.RelationType{"CHD", "RO", "SY"}, snap.RelationTypes)
	// Observed-only codes contribute no edges.
	assert.Equal(t, 1, snap.Hierarchy.EdgeCount())
}

func TestDirectedAddEdge(t *testing.T) {
	g := NewDirected()

	assert.True(t, g.AddEdge(0, 1))
	assert.False(t, g.AddEdge(0, 1), "repeated edge must not duplicate adjacency")
	assert.True(t, g.AddEdge(1, 0), "reverse direction is a distinct edge")

	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 0))
	assert.False(t, g.HasEdge(0, 2))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []int32{1}, g.Out(0))
	assert.Nil(t, g.Out(99), "unknown nodes have no successors")
}

func TestDirectedNodeOrderIsFirstAppearance(t *testing.T) {
	g := NewDirected()
	g.AddEdge(5, 2)
	g.AddEdge(2, 9)
	g.AddEdge(5, 9)

	assert.Equal(t, []int32{5, 2, 9}, g.Nodes())
}

func TestInternerRoundTrip(t *testing.T) {
	in := NewInterner()

	a := in.Intern("C001")
	b := in.Intern("C002")
	assert.Equal(t, a, in.Intern("C001"), "interning is stable")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, in.Len())

	assert.Equal(t, schemas.ConceptID("C001"), in.Name(a))
	assert.Equal(t, []schemas.ConceptID{"C002", "C001"}, in.Names([]int32{b, a}))
}
