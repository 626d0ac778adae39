package synth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/schema"
)

// SystemPrompt is the role instruction sent with every synthesis request.
const SystemPrompt = "You are an expert at turning scenarios into flowcharts. Respond with JSON only."

var nodeTypeHelp = map[string]string{
	domain.NodeTypeStart:     "entry point",
	domain.NodeTypeMessage:   "a line the narrator or a character delivers",
	domain.NodeTypeCondition: "a branch on a condition or a player choice",
	domain.NodeTypeAction:    "a specific action or event",
	domain.NodeTypeEnd:       "an ending",
}

const promptExample = `{
  "nodes": [
    {
      "id": "node_1",
      "type": "start|message|condition|action|end",
      "label": "short node label",
      "data": {"message": "...", "condition": "...", "action": "..."},
      "position": {"x": 100, "y": 100}
    }
  ],
  "edges": [
    {"id": "edge_1", "source": "node_1", "target": "node_2", "label": "optional", "type": "default"}
  ]
}`

// BuildPrompt returns the fixed instruction prompt with scenarioText embedded verbatim.
func BuildPrompt(scenarioText string) string {
	var b strings.Builder

	b.WriteString("Analyze the following scenario and convert it into a flowchart made of nodes and edges.\n\n")
	b.WriteString("Scenario:\n")
	b.WriteString(scenarioText)
	b.WriteString("\n\nRespond with JSON in exactly this shape:\n")
	b.WriteString(promptExample)
	b.WriteString("\n\nNode types:\n")
	for _, t := range domain.NodeTypes {
		fields, _ := json.Marshal(schema.PayloadSchema(t))
		fmt.Fprintf(&b, "- %s: %s; data fields %s\n", t, nodeTypeHelp[t], fields)
	}
	b.WriteString("\nEvery node needs a unique id and a position. Every edge must connect existing node ids.\n")
	b.WriteString("Lay nodes out naturally from top to bottom and left to right.\n")

	return b.String()
}
