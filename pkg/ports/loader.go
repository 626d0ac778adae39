package ports

import "context"

// Scenario is a named piece of scenario text, as authored by a human.
type Scenario struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Text  string `json:"text" yaml:"text"`

	// AgentID is where the synthesized flow should be stored. Defaults to ID.
	AgentID string `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`
}

// ScenarioSource defines where batch runs read scenario texts from.
// This allows the library (Loam vault, memory, ...) to be decoupled.
type ScenarioSource interface {
	// GetScenario retrieves a single scenario by ID.
	GetScenario(ctx context.Context, id string) (Scenario, error)

	// ListScenarios returns the IDs of every scenario in the source, sorted.
	ListScenarios(ctx context.Context) ([]string, error)
}
