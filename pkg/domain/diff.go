package domain

import (
	"reflect"
)

// FlowDiff represents the changes between two versions of a flow.
// It is designed to be serialized to JSON so clients can patch their view.
type FlowDiff struct {
	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	// ChangedNodes have a different type, label or data.
	ChangedNodes []string `json:"changed_nodes,omitempty"`

	// MovedNodes have a different position. A node can be both changed and moved.
	MovedNodes []string `json:"moved_nodes,omitempty"`

	AddedEdges   []string `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
	ChangedEdges []string `json:"changed_edges,omitempty"`
}

// Diff calculates the difference between oldFlow and newFlow.
// If oldFlow is nil, every node and edge of newFlow is reported as added.
// It returns nil when nothing changed.
func Diff(oldFlow, newFlow *Flow) *FlowDiff {
	if newFlow == nil {
		return nil
	}
	if oldFlow == nil {
		oldFlow = &Flow{}
	}

	diff := &FlowDiff{}
	diffNodes(diff, oldFlow, newFlow)
	diffEdges(diff, oldFlow, newFlow)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffNodes(diff *FlowDiff, old, new *Flow) {
	before := make(map[string]Node, len(old.Nodes))
	for _, n := range old.Nodes {
		before[n.ID] = n
	}
	seen := make(map[string]bool, len(new.Nodes))

	for _, n := range new.Nodes {
		seen[n.ID] = true
		prev, exists := before[n.ID]
		if !exists {
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
			continue
		}
		if prev.Type != n.Type || prev.Label != n.Label || !sameData(prev.Data, n.Data) {
			diff.ChangedNodes = append(diff.ChangedNodes, n.ID)
		}
		if !samePosition(prev.Position, n.Position) {
			diff.MovedNodes = append(diff.MovedNodes, n.ID)
		}
	}

	for _, n := range old.Nodes {
		if !seen[n.ID] {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}
}

func diffEdges(diff *FlowDiff, old, new *Flow) {
	before := make(map[string]Edge, len(old.Edges))
	for _, e := range old.Edges {
		before[e.ID] = e
	}
	seen := make(map[string]bool, len(new.Edges))

	for _, e := range new.Edges {
		seen[e.ID] = true
		prev, exists := before[e.ID]
		if !exists {
			diff.AddedEdges = append(diff.AddedEdges, e.ID)
			continue
		}
		if prev != e {
			diff.ChangedEdges = append(diff.ChangedEdges, e.ID)
		}
	}

	for _, e := range old.Edges {
		if !seen[e.ID] {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}
}

// sameData treats nil and empty maps as equal.
func sameData(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func samePosition(a, b *Position) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsEmpty checks if the diff contains any changes.
func (d *FlowDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.MovedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0 &&
		len(d.ChangedEdges) == 0
}

// TopologyChanged reports whether nodes or edges were added, removed or rewired.
func (d *FlowDiff) TopologyChanged() bool {
	return len(d.AddedNodes) > 0 ||
		len(d.RemovedNodes) > 0 ||
		len(d.AddedEdges) > 0 ||
		len(d.RemovedEdges) > 0 ||
		len(d.ChangedEdges) > 0
}
