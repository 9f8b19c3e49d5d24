package flowgraph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndValidate(t *testing.T) {
	raw := json.RawMessage(`{"nodes":[{"id":"A"},{"id":"B"}],"edges":[{"source":"A","target":"B"}]}`)
	g, err := ParseAndValidate(raw)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
}

func TestValidateEmptyNodeSet(t *testing.T) {
	_, err := ParseAndValidate(json.RawMessage(`{"nodes":[],"edges":[]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "empty node set")
}

func TestValidateDanglingEdge(t *testing.T) {
	_, err := ParseAndValidate(json.RawMessage(`{"nodes":[{"id":"A"}],"edges":[{"source":"A","target":"ghost"}]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "missing target node")
}

func TestValidateDuplicateNode(t *testing.T) {
	_, err := ParseAndValidate(json.RawMessage(`{"nodes":[{"id":"A"},{"id":"A"}]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "duplicate node identifier")
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse(json.RawMessage(`{"nodes":`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestEdgeKey(t *testing.T) {
	assert.Equal(t, "A->B", Edge{Source: "A", Target: "B"}.Key())
	assert.Equal(t, "A->B#dtmf1", Edge{Source: "A", Target: "B", Port: "dtmf1"}.Key())
}
