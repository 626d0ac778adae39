package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func pos(x, y float64) *Position {
	return &Position{X: x, Y: y}
}

func TestDiff(t *testing.T) {
	base := Flow{
		Nodes: []Node{
			{ID: "start", Type: NodeTypeStart, Position: pos(0, 0)},
			{ID: "greet", Type: NodeTypeMessage, Data: map[string]any{"message": "hi"}, Position: pos(0, 100)},
		},
		Edges: []Edge{{ID: "e1", Source: "start", Target: "greet", Type: EdgeTypeDefault}},
	}

	tests := []struct {
		name     string
		old      *Flow
		new      *Flow
		wantDiff *FlowDiff // nil means no diff expected
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  &base,
			wantDiff: &FlowDiff{
				AddedNodes: []string{"start", "greet"},
				AddedEdges: []string{"e1"},
			},
		},
		{
			name:     "No Changes",
			old:      &base,
			new:      ptrFlow(base.Clone()),
			wantDiff: nil,
		},
		{
			name: "Moved Only",
			old:  &base,
			new: func() *Flow {
				f := base.Clone()
				f.Nodes[1].Position = pos(50, 100)
				return &f
			}(),
			wantDiff: &FlowDiff{MovedNodes: []string{"greet"}},
		},
		{
			name: "Data Changed",
			old:  &base,
			new: func() *Flow {
				f := base.Clone()
				f.Nodes[1].Data["message"] = "hello"
				return &f
			}(),
			wantDiff: &FlowDiff{ChangedNodes: []string{"greet"}},
		},
		{
			name: "Node Removed With Its Edge",
			old:  &base,
			new: &Flow{
				Nodes: []Node{{ID: "start", Type: NodeTypeStart, Position: pos(0, 0)}},
			},
			wantDiff: &FlowDiff{
				RemovedNodes: []string{"greet"},
				RemovedEdges: []string{"e1"},
			},
		},
		{
			name: "Edge Rewired",
			old:  &base,
			new: func() *Flow {
				f := base.Clone()
				f.Edges[0].Target = "start"
				return &f
			}(),
			wantDiff: &FlowDiff{ChangedEdges: []string{"e1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}
			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestFlowDiff_TopologyChanged(t *testing.T) {
	moved := &FlowDiff{MovedNodes: []string{"a"}}
	if moved.TopologyChanged() {
		t.Error("a pure move must not count as a topology change")
	}
	added := &FlowDiff{AddedEdges: []string{"e"}}
	if !added.TopologyChanged() {
		t.Error("an added edge is a topology change")
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Lists Omitted", func(t *testing.T) {
		old := &Flow{Nodes: []Node{{ID: "a", Position: pos(0, 0)}}}
		new := &Flow{Nodes: []Node{{ID: "a", Position: pos(1, 0)}}}
		diff := Diff(old, new)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"added_nodes"`) {
			t.Errorf("JSON should not contain 'added_nodes' when empty, got: %s", string(bytes))
		}
		if !strings.Contains(string(bytes), `"moved_nodes":["a"]`) {
			t.Errorf("JSON should list the moved node, got: %s", string(bytes))
		}
	})
}

func ptrFlow(f Flow) *Flow {
	return &f
}
