package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "A", Type: "entry"},
			{ID: "B", Type: "queue", Attrs: map[string]any{"queue": "support"}},
		},
		Edges: []Edge{{Source: "A", Target: "B"}},
	}
}

func TestDiffIdentical(t *testing.T) {
	g := twoNodeGraph()
	d := Diff(g, g)
	assert.True(t, d.Empty())
}

func TestDiffAddedNodeAndEdge(t *testing.T) {
	g1 := twoNodeGraph()
	g2 := twoNodeGraph()
	g2.Nodes = append(g2.Nodes, Node{ID: "C", Type: "hangup"})
	g2.Edges = append(g2.Edges, Edge{Source: "B", Target: "C"})

	d := Diff(g1, g2)
	require.Len(t, d.Changes, 2)

	assert.Equal(t, OpAdded, d.Changes[0].Op)
	assert.Equal(t, KindNode, d.Changes[0].Kind)
	assert.Equal(t, "nodes/C", d.Changes[0].Path)

	assert.Equal(t, OpAdded, d.Changes[1].Op)
	assert.Equal(t, KindEdge, d.Changes[1].Kind)
	assert.Equal(t, "edges/B->C", d.Changes[1].Path)
}

func TestDiffSymmetry(t *testing.T) {
	g1 := twoNodeGraph()
	g2 := twoNodeGraph()
	g2.Nodes = append(g2.Nodes, Node{ID: "C"})
	g2.Edges = append(g2.Edges, Edge{Source: "B", Target: "C"})

	forward := Diff(g1, g2)
	backward := Diff(g2, g1)
	require.Equal(t, len(forward.Changes), len(backward.Changes))

	fwd := map[string]Op{}
	for _, c := range forward.Changes {
		fwd[c.Path] = c.Op
	}
	for _, c := range backward.Changes {
		switch c.Op {
		case OpAdded:
			assert.Equal(t, OpRemoved, fwd[c.Path])
		case OpRemoved:
			assert.Equal(t, OpAdded, fwd[c.Path])
		default:
			assert.Equal(t, fwd[c.Path], c.Op)
		}
	}
}

func TestDiffModifiedFields(t *testing.T) {
	g1 := twoNodeGraph()
	g2 := twoNodeGraph()
	g2.Nodes[1].Attrs = map[string]any{"queue": "billing", "timeout": 30.0}

	d := Diff(g1, g2)
	require.Len(t, d.Changes, 1)
	c := d.Changes[0]
	assert.Equal(t, OpModified, c.Op)
	assert.Equal(t, "nodes/B", c.Path)
	require.Len(t, c.Fields, 2)

	assert.Equal(t, "queue", c.Fields[0].Field)
	assert.Equal(t, "support", c.Fields[0].Before)
	assert.Equal(t, "billing", c.Fields[0].After)
	assert.NotEmpty(t, c.Fields[0].TextPatch, "string attr change carries a text patch")

	assert.Equal(t, "timeout", c.Fields[1].Field)
	assert.Nil(t, c.Fields[1].Before)
}

func TestDiffMovedNode(t *testing.T) {
	g1 := twoNodeGraph()
	g1.Nodes[0].Attrs = map[string]any{"x": 10.0, "y": 20.0}
	g2 := twoNodeGraph()
	g2.Nodes[0].Attrs = map[string]any{"x": 50.0, "y": 20.0}

	d := Diff(g1, g2)
	require.Len(t, d.Changes, 1)
	assert.Equal(t, OpMoved, d.Changes[0].Op)
	assert.Equal(t, "nodes/A", d.Changes[0].Path)
}

func TestDiffEdgePortKeying(t *testing.T) {
	g1 := twoNodeGraph()
	g2 := twoNodeGraph()
	g2.Edges = []Edge{{Source: "A", Target: "B", Port: "1"}}

	d := Diff(g1, g2)
	require.Len(t, d.Changes, 2)
	// same endpoints but a different port is an add plus a remove
	assert.Equal(t, OpAdded, d.Changes[0].Op)
	assert.Equal(t, "edges/A->B#1", d.Changes[0].Path)
	assert.Equal(t, OpRemoved, d.Changes[1].Op)
	assert.Equal(t, "edges/A->B", d.Changes[1].Path)
}

func TestDiffOrderingDeterministic(t *testing.T) {
	g1 := &Graph{Nodes: []Node{{ID: "keep"}, {ID: "drop"}, {ID: "mod", Attrs: map[string]any{"v": "1"}}}}
	g2 := &Graph{Nodes: []Node{{ID: "keep"}, {ID: "zz-new"}, {ID: "aa-new"}, {ID: "mod", Attrs: map[string]any{"v": "2"}}}}

	for i := 0; i < 20; i++ {
		d := Diff(g1, g2)
		require.Len(t, d.Changes, 4)
		assert.Equal(t, "nodes/aa-new", d.Changes[0].Path)
		assert.Equal(t, "nodes/zz-new", d.Changes[1].Path)
		assert.Equal(t, "nodes/mod", d.Changes[2].Path)
		assert.Equal(t, "nodes/drop", d.Changes[3].Path)
	}
}
