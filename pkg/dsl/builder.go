package dsl

import (
	"fmt"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/layout"
	"github.com/aretw0/plotline/pkg/schema"
)

// Builder manages the flow construction. Nodes keep the order they were added in.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new flow builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the flow.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:   id,
			Data: map[string]any{},
		},
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles the nodes into a Flow. Edges must point at added nodes.
// Edge ids are assigned as edge_1, edge_2, ... in node order. When any node
// was left without a position, the whole flow is laid out with opts.
func (b *Builder) Build(opts ...layout.Option) (domain.Flow, error) {
	var flow domain.Flow
	unplaced := false
	for _, id := range b.order {
		nb := b.nodes[id]
		flow.Nodes = append(flow.Nodes, nb.node)
		flow.Edges = append(flow.Edges, nb.edges...)
		if nb.node.Position == nil {
			unplaced = true
		}
	}
	if flow.Edges == nil {
		flow.Edges = []domain.Edge{}
	}

	res, err := schema.NormalizeFlow(flow, schema.WithStrictEdges(), schema.AllowMissingPositions())
	if err != nil {
		return domain.Flow{}, fmt.Errorf("failed to build flow: %w", err)
	}
	if !unplaced {
		return res.Flow, nil
	}
	return layout.New(opts...).Apply(res.Flow)
}
