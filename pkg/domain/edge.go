package domain

// EdgeTypeDefault is the rendering hint used when the source omits one.
const EdgeTypeDefault = "default"

// Edge is a directed transition between two nodes of the same Flow.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label" yaml:"label"`

	// Type is a rendering hint for the UI.
	Type     string `json:"type" yaml:"type"`
	Animated bool   `json:"animated" yaml:"animated"`
}
