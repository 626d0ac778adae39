package dsl

import "github.com/aretw0/plotline/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node  domain.Node
	edges []domain.Edge
}

// Start marks the node as an entry point.
func (n *NodeBuilder) Start(label string) *NodeBuilder {
	n.node.Type = domain.NodeTypeStart
	return n.Label(label)
}

// Message sets the line delivered by the node. An empty speaker is omitted.
func (n *NodeBuilder) Message(speaker, message string) *NodeBuilder {
	n.node.Type = domain.NodeTypeMessage
	n.node.Data["message"] = message
	if speaker != "" {
		n.node.Data["speaker"] = speaker
	}
	return n
}

// Decision makes the node branch on condition. Options name the choices.
func (n *NodeBuilder) Decision(condition string, options ...string) *NodeBuilder {
	n.node.Type = domain.NodeTypeCondition
	n.node.Data["condition"] = condition
	if len(options) > 0 {
		opts := make([]any, len(options))
		for i, o := range options {
			opts[i] = o
		}
		n.node.Data["options"] = opts
	}
	return n
}

// Action marks the node as an event or side effect.
func (n *NodeBuilder) Action(action string) *NodeBuilder {
	n.node.Type = domain.NodeTypeAction
	n.node.Data["action"] = action
	return n
}

// End marks the node as a terminal beat.
func (n *NodeBuilder) End(label string) *NodeBuilder {
	n.node.Type = domain.NodeTypeEnd
	return n.Label(label)
}

// Type sets a free-form node type.
func (n *NodeBuilder) Type(nodeType string) *NodeBuilder {
	n.node.Type = nodeType
	return n
}

// Label sets the display label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Label = label
	n.node.Data["label"] = label
	return n
}

// Data sets an arbitrary data key.
func (n *NodeBuilder) Data(key string, value any) *NodeBuilder {
	n.node.Data[key] = value
	return n
}

// At pins the node to a canvas position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = &domain.Position{X: x, Y: y}
	return n
}

// Go adds an unlabeled edge to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	return n.Branch("", target)
}

// Branch adds a labeled edge to the target node.
func (n *NodeBuilder) Branch(label string, target string) *NodeBuilder {
	n.edges = append(n.edges, domain.Edge{
		Source: n.node.ID,
		Target: target,
		Label:  label,
	})
	return n
}

// Animated marks the most recently added edge as animated.
func (n *NodeBuilder) Animated() *NodeBuilder {
	if len(n.edges) > 0 {
		n.edges[len(n.edges)-1].Animated = true
	}
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
