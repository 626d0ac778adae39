package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/layout"
)

// Outline renders a flow as markdown: one section per layout level, then the edges.
func Outline(title string, flow domain.Flow) (string, error) {
	_, groups, err := layout.Levels(flow)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if title == "" {
		title = "Flow"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d nodes, %d edges\n\n", len(flow.Nodes), len(flow.Edges))

	for level, group := range groups {
		fmt.Fprintf(&sb, "## Step %d\n\n", level+1)
		for _, id := range group {
			node, _ := flow.Node(id)
			sb.WriteString(nodeLine(node))
		}
		sb.WriteString("\n")
	}

	if len(flow.Edges) > 0 {
		sb.WriteString("## Transitions\n\n")
		for _, e := range flow.Edges {
			if e.Label != "" {
				fmt.Fprintf(&sb, "- `%s` → `%s`: %s\n", e.Source, e.Target, e.Label)
			} else {
				fmt.Fprintf(&sb, "- `%s` → `%s`\n", e.Source, e.Target)
			}
		}
	}
	return sb.String(), nil
}

func nodeLine(node domain.Node) string {
	line := fmt.Sprintf("- **%s** `%s`", node.DisplayLabel(), node.Type)

	payload, _ := node.Payload()
	switch p := payload.(type) {
	case domain.MessagePayload:
		if p.Speaker != "" && p.Message != "" {
			line += fmt.Sprintf(": %s says \"%s\"", p.Speaker, p.Message)
		} else if p.Message != "" {
			line += ": " + p.Message
		}
	case domain.DecisionPayload:
		if p.Condition != "" {
			line += ": " + p.Condition
		}
		if len(p.Options) > 0 {
			line += " (" + strings.Join(p.Options, " / ") + ")"
		}
	case domain.ActionPayload:
		if p.Action != "" {
			line += ": " + p.Action
		}
	}
	return line + "\n"
}
