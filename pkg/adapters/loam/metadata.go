package loam

// ScenarioMetadata is the frontmatter of a scenario document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type ScenarioMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`

	// AgentID is the key the synthesized flow is stored under. Defaults to the scenario ID.
	AgentID string `json:"agent_id" mapstructure:"agent_id"`

	// Text is used by JSON/YAML documents, which have no markdown body.
	Text string `json:"text" mapstructure:"text"`

	Tags []string `json:"tags,omitempty" mapstructure:"tags"`
}
