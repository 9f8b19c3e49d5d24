package flowgraph

import (
	"reflect"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is a structural delta operation.
type Op string

const (
	OpAdded    Op = "ADDED"
	OpRemoved  Op = "REMOVED"
	OpModified Op = "MODIFIED"
	OpMoved    Op = "MOVED"
)

// Kind tells whether a change targets a node or an edge.
type Kind string

const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
)

// FieldChange is a field-level sub-delta of a MODIFIED entry. TextPatch
// carries a diffmatchpatch patch when both sides are strings.
type FieldChange struct {
	Field     string `json:"field"`
	Before    any    `json:"before,omitempty"`
	After     any    `json:"after,omitempty"`
	TextPatch string `json:"textPatch,omitempty"`
}

// Change is one entry of a Delta. Path is "nodes/<id>" or "edges/<key>".
type Change struct {
	Op     Op            `json:"op"`
	Kind   Kind          `json:"kind"`
	Path   string        `json:"path"`
	ID     string        `json:"id"`
	Before any           `json:"before,omitempty"`
	After  any           `json:"after,omitempty"`
	Fields []FieldChange `json:"fields,omitempty"`
}

// Delta is an ordered sequence of structural changes between two payloads.
type Delta struct {
	Changes []Change `json:"changes"`
}

// Empty reports whether the delta contains no changes.
func (d *Delta) Empty() bool {
	return len(d.Changes) == 0
}

// positional attribute names; a node whose only changes are these is MOVED
var positionalAttrs = map[string]struct{}{
	"x": {}, "y": {}, "position": {},
}

// Diff computes the structural delta from a to b. It is pure and never
// touches storage. Output ordering is deterministic regardless of map
// iteration order: ADDED first, then MOVED and MODIFIED, then REMOVED,
// nodes before edges within each group, each sorted by identifier.
func Diff(a, b *Graph) *Delta {
	d := &Delta{}

	aNodes, bNodes := a.nodeIndex(), b.nodeIndex()
	aEdges, bEdges := a.edgeIndex(), b.edgeIndex()

	var added, changed, removed []Change

	for _, id := range sortedKeys(bNodes) {
		n := bNodes[id]
		if _, ok := aNodes[id]; !ok {
			added = append(added, Change{Op: OpAdded, Kind: KindNode, Path: "nodes/" + id, ID: id, After: n})
		}
	}
	for _, id := range sortedKeys(aNodes) {
		before := aNodes[id]
		after, ok := bNodes[id]
		if !ok {
			removed = append(removed, Change{Op: OpRemoved, Kind: KindNode, Path: "nodes/" + id, ID: id, Before: before})
			continue
		}
		fields := diffNodeFields(before, after)
		if len(fields) == 0 {
			continue
		}
		op := OpModified
		if onlyPositional(fields) {
			op = OpMoved
		}
		changed = append(changed, Change{Op: op, Kind: KindNode, Path: "nodes/" + id, ID: id, Before: before, After: after, Fields: fields})
	}

	for _, key := range sortedKeys(bEdges) {
		e := bEdges[key]
		if _, ok := aEdges[key]; !ok {
			added = append(added, Change{Op: OpAdded, Kind: KindEdge, Path: "edges/" + key, ID: key, After: e})
		}
	}
	for _, key := range sortedKeys(aEdges) {
		before := aEdges[key]
		after, ok := bEdges[key]
		if !ok {
			removed = append(removed, Change{Op: OpRemoved, Kind: KindEdge, Path: "edges/" + key, ID: key, Before: before})
			continue
		}
		fields := diffAttrs(before.Attrs, after.Attrs)
		if len(fields) == 0 {
			continue
		}
		changed = append(changed, Change{Op: OpModified, Kind: KindEdge, Path: "edges/" + key, ID: key, Before: before, After: after, Fields: fields})
	}

	// nodes sort before edges inside each group because their paths share no
	// prefix; re-sort each group by kind then identifier to pin the order
	for _, group := range [][]Change{added, changed, removed} {
		sortGroup(group)
	}
	d.Changes = append(d.Changes, added...)
	d.Changes = append(d.Changes, changed...)
	d.Changes = append(d.Changes, removed...)
	return d
}

func sortGroup(group []Change) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Kind != group[j].Kind {
			return group[i].Kind == KindNode
		}
		return group[i].ID < group[j].ID
	})
}

func onlyPositional(fields []FieldChange) bool {
	for _, f := range fields {
		if _, ok := positionalAttrs[f.Field]; !ok {
			return false
		}
	}
	return len(fields) > 0
}

func diffNodeFields(a, b Node) []FieldChange {
	var fields []FieldChange
	if a.Type != b.Type {
		fields = append(fields, fieldChange("type", a.Type, b.Type))
	}
	fields = append(fields, diffAttrs(a.Attrs, b.Attrs)...)
	return fields
}

func diffAttrs(a, b map[string]any) []FieldChange {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	var fields []FieldChange
	for _, k := range sortedKeys(keys) {
		before, inA := a[k]
		after, inB := b[k]
		if inA && inB && reflect.DeepEqual(before, after) {
			continue
		}
		fields = append(fields, fieldChange(k, before, after))
	}
	return fields
}

func fieldChange(field string, before, after any) FieldChange {
	fc := FieldChange{Field: field, Before: before, After: after}
	bs, bok := before.(string)
	as, aok := after.(string)
	if bok && aok {
		dmp := diffmatchpatch.New()
		fc.TextPatch = dmp.PatchToText(dmp.PatchMake(bs, as))
	}
	return fc
}
