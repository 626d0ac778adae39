package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/plotline/internal/presentation/graph"
	"github.com/aretw0/plotline/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		flow     domain.Flow
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Node Shapes",
			flow: domain.Flow{Nodes: []domain.Node{
				{ID: "start", Type: domain.NodeTypeStart, Label: "Start"},
				{ID: "end", Type: domain.NodeTypeEnd},
				{ID: "ask", Type: domain.NodeTypeDecision},
				{ID: "pay", Type: domain.NodeTypeAction},
				{ID: "hi", Type: domain.NodeTypeDialog},
				{ID: "misc", Type: "custom"},
			}},
			contains: []string{
				"start((\"Start\"))",
				"end((\"end\"))",
				"ask{\"ask\"}",
				"pay[[\"pay\"]]",
				"hi(\"hi\")",
				"misc[\"misc\"]",
			},
		},
		{
			name: "Label Falls Back To Data",
			flow: domain.Flow{Nodes: []domain.Node{
				{ID: "n1", Type: domain.NodeTypeMessage, Data: map[string]any{"label": "Say \"hi\"\nloudly"}},
			}},
			contains: []string{"n1(\"Say 'hi'<br/>loudly\")"},
		},
		{
			name: "ID Sanitization",
			flow: domain.Flow{Nodes: []domain.Node{
				{ID: "path/to/file.md"},
				{ID: "hyphen-ated"},
			}},
			contains: []string{
				"path_to_file_md[\"path/to/file.md\"]",
				"hyphen_ated[\"hyphen-ated\"]",
			},
		},
		{
			name: "Edges",
			flow: domain.Flow{
				Nodes: []domain.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
				Edges: []domain.Edge{
					{ID: "e1", Source: "a", Target: "b"},
					{ID: "e2", Source: "a", Target: "c", Label: "say \"no\""},
					{ID: "e3", Source: "b", Target: "c", Animated: true},
					{ID: "e4", Source: "c", Target: "a", Label: "retry", Animated: true},
				},
			},
			contains: []string{
				"a --> b",
				"a -- \"say 'no'\" --> c",
				"b -.-> c",
				"c -. \"retry\" .-> a",
			},
		},
		{
			name: "Overlay",
			flow: domain.Flow{Nodes: []domain.Node{{ID: "a"}, {ID: "b-1"}}},
			overlay: &graph.GraphOverlay{
				Changed: []string{"a", "b-1", "a"},
				Focus:   "b-1",
			},
			contains: []string{
				"classDef changed",
				"class a changed;",
				"class b_1 changed;",
				"class b_1 focus;",
			},
		},
		{
			name:     "No Overlay",
			flow:     domain.Flow{Nodes: []domain.Node{{ID: "a"}}},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.flow, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("expected flowchart header, got:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestGenerateMermaid_OverlayDedupe(t *testing.T) {
	got := graph.GenerateMermaid(domain.Flow{Nodes: []domain.Node{{ID: "a"}}}, &graph.GraphOverlay{Changed: []string{"a", "a"}})
	if n := strings.Count(got, "class a changed;"); n != 1 {
		t.Errorf("expected one class line, got %d", n)
	}
}

func TestOverlayFromDiff(t *testing.T) {
	if graph.OverlayFromDiff(nil) != nil {
		t.Error("nil diff should give no overlay")
	}
	o := graph.OverlayFromDiff(&domain.FlowDiff{AddedNodes: []string{"x"}, MovedNodes: []string{"y"}})
	if len(o.Changed) != 2 || o.Changed[0] != "x" || o.Changed[1] != "y" {
		t.Errorf("unexpected overlay: %+v", o)
	}
}
