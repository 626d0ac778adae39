package domain

import (
	"fmt"
	"math"
)

// Flow is the full node/edge graph of a scenario.
// Node and edge order carries no meaning but is preserved for stable output.
type Flow struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Clone returns a deep copy of the flow.
func (f Flow) Clone() Flow {
	out := Flow{
		Nodes: make([]Node, len(f.Nodes)),
		Edges: make([]Edge, len(f.Edges)),
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = n.clone()
	}
	copy(out.Edges, f.Edges)
	return out
}

// NodeIndex maps node ids to their position in Nodes.
func (f Flow) NodeIndex() map[string]int {
	idx := make(map[string]int, len(f.Nodes))
	for i, n := range f.Nodes {
		if _, dup := idx[n.ID]; !dup {
			idx[n.ID] = i
		}
	}
	return idx
}

// Node looks up a node by id.
func (f Flow) Node(id string) (Node, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// IsEmpty reports whether the flow has no nodes.
func (f Flow) IsEmpty() bool {
	return len(f.Nodes) == 0
}

// Validate checks the structural invariants of the flow:
// unique node and edge ids, edges that reference existing nodes,
// and finite coordinates on placed nodes.
func (f Flow) Validate() error {
	nodes := make(map[string]struct{}, len(f.Nodes))
	for i, n := range f.Nodes {
		if n.ID == "" {
			return &ValidationError{Path: fmt.Sprintf("nodes[%d]", i), Reason: "missing id"}
		}
		if _, dup := nodes[n.ID]; dup {
			return &ValidationError{Path: fmt.Sprintf("nodes[%d]", i), Reason: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		nodes[n.ID] = struct{}{}
		if p := n.Position; p != nil && !finite(p.X, p.Y) {
			return &ValidationError{Path: fmt.Sprintf("nodes[%d].position", i), Reason: "coordinates must be finite"}
		}
	}

	edges := make(map[string]struct{}, len(f.Edges))
	for i, e := range f.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if e.ID == "" {
			return &ValidationError{Path: path, Reason: "missing id"}
		}
		if _, dup := edges[e.ID]; dup {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("duplicate edge id %q", e.ID)}
		}
		edges[e.ID] = struct{}{}
		if _, ok := nodes[e.Source]; !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("source %q does not exist", e.Source)}
		}
		if _, ok := nodes[e.Target]; !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("target %q does not exist", e.Target)}
		}
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
