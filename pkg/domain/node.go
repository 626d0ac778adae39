package domain

// NodeType constants form the load-bearing vocabulary used by layout and defaults.
// Any other string is accepted on input; the generator is free to invent types.
const (
	// NodeTypeStart marks an entry point of the scenario.
	NodeTypeStart = "start"
	// NodeTypeMessage is a line delivered to the player/user.
	NodeTypeMessage = "message"
	// NodeTypeDialog is an alias of NodeTypeMessage.
	NodeTypeDialog = "dialog"
	// NodeTypeCondition branches on a condition or a choice.
	NodeTypeCondition = "condition"
	// NodeTypeDecision is an alias of NodeTypeCondition.
	NodeTypeDecision = "decision"
	// NodeTypeAction is an event or side-effect in the story.
	NodeTypeAction = "action"
	// NodeTypeEnd marks a terminal beat.
	NodeTypeEnd = "end"
	// NodeTypeDefault is assigned when the source omits the type.
	NodeTypeDefault = "default"
)

// NodeTypes lists the vocabulary advertised to the generator, in prompt order.
var NodeTypes = []string{
	NodeTypeStart,
	NodeTypeMessage,
	NodeTypeCondition,
	NodeTypeAction,
	NodeTypeEnd,
}

// Position is a 2-D canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node represents a single beat in the scenario graph.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Data is deliberately schema-loose: it is authored by a language model.
	// Use Payload for a typed view of the well-known keys.
	Data map[string]any `json:"data" yaml:"data"`

	// Position is nil until the node has been placed.
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
}

// IsMessage reports whether the node delivers a line of the scenario.
func (n Node) IsMessage() bool {
	return n.Type == NodeTypeMessage || n.Type == NodeTypeDialog
}

// IsDecision reports whether the node branches.
func (n Node) IsDecision() bool {
	return n.Type == NodeTypeCondition || n.Type == NodeTypeDecision
}

// DisplayLabel returns the best human-readable name for the node.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	if s, ok := n.Data["label"].(string); ok && s != "" {
		return s
	}
	return n.ID
}

func (n Node) clone() Node {
	out := n
	if n.Data != nil {
		out.Data = cloneMap(n.Data)
	}
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
