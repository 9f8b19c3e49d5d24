// Package flowgraph models a flow payload as a labeled graph of nodes and
// edges keyed by stable identifiers, and computes structural deltas between
// two payloads.
package flowgraph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Node is a single step of a flow definition. Attrs is an open attribute map
// validated by the external schema owner, not by this engine.
type Node struct {
	ID    string         `json:"id"`
	Type  string         `json:"type,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Edge connects two nodes. Port distinguishes parallel edges between the same
// node pair (e.g. IVR menu branches).
type Edge struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Port   string         `json:"port,omitempty"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// Graph is the structured flow payload.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Key returns the stable edge identifier "source->target#port".
func (e Edge) Key() string {
	if e.Port == "" {
		return e.Source + "->" + e.Target
	}
	return e.Source + "->" + e.Target + "#" + e.Port
}

// ValidationError reports a structural problem in a payload.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Parse decodes a raw JSON payload into a Graph without validating it.
func Parse(raw json.RawMessage) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, &ValidationError{Reason: "payload is not valid JSON: " + err.Error()}
	}
	return &g, nil
}

// Validate checks the structural well-formedness rules: non-empty node set,
// unique node identifiers, unique edge keys, no dangling edge references.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return &ValidationError{Reason: "payload has an empty node set"}
	}

	nodeIDs := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return &ValidationError{Reason: "node with empty identifier"}
		}
		if _, ok := nodeIDs[n.ID]; ok {
			return &ValidationError{Reason: fmt.Sprintf("duplicate node identifier %q", n.ID)}
		}
		nodeIDs[n.ID] = struct{}{}
	}

	edgeKeys := make(map[string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if _, ok := nodeIDs[e.Source]; !ok {
			return &ValidationError{Reason: fmt.Sprintf("edge %q references missing source node %q", e.Key(), e.Source)}
		}
		if _, ok := nodeIDs[e.Target]; !ok {
			return &ValidationError{Reason: fmt.Sprintf("edge %q references missing target node %q", e.Key(), e.Target)}
		}
		if _, ok := edgeKeys[e.Key()]; ok {
			return &ValidationError{Reason: fmt.Sprintf("duplicate edge %q", e.Key())}
		}
		edgeKeys[e.Key()] = struct{}{}
	}
	return nil
}

// ParseAndValidate decodes and validates a raw payload in one step.
func ParseAndValidate(raw json.RawMessage) (*Graph, error) {
	g, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) nodeIndex() map[string]Node {
	m := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = n
	}
	return m
}

func (g *Graph) edgeIndex() map[string]Edge {
	m := make(map[string]Edge, len(g.Edges))
	for _, e := range g.Edges {
		m[e.Key()] = e
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
