package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/plotline/pkg/domain"
)

// GraphOverlay highlights nodes on top of the plain flowchart.
type GraphOverlay struct {
	// Changed nodes are drawn with the "changed" class, e.g. from a FlowDiff.
	Changed []string
	Focus   string
}

// OverlayFromDiff highlights every added, changed or moved node of diff.
func OverlayFromDiff(diff *domain.FlowDiff) *GraphOverlay {
	if diff == nil {
		return nil
	}
	var changed []string
	changed = append(changed, diff.AddedNodes...)
	changed = append(changed, diff.ChangedNodes...)
	changed = append(changed, diff.MovedNodes...)
	return &GraphOverlay{Changed: changed}
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a flow.
// It applies semantic styling:
// - Start/End: ((Circle))
// - Condition/Decision: {Rhombus}
// - Action: [[Subroutine]]
// - Message/Dialog: (Rounded)
// - Default: [Rectangle]
// Animated edges are dotted. Overlay styles are applied if provided.
func GenerateMermaid(flow domain.Flow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range flow.Nodes {
		opener, closer := shape(node)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, escapeLabel(node.DisplayLabel()), closer)
	}

	for _, e := range flow.Edges {
		from, to := sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target)

		arrow := "-->"
		if e.Animated {
			arrow = "-.->"
		}
		if e.Label != "" {
			label := escapeLabel(e.Label)
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
			if e.Animated {
				arrow = fmt.Sprintf("-. \"%s\" .->", label)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", from, arrow, to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef changed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Changed {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s changed;\n", safeID)
			}
		}

		if overlay.Focus != "" {
			fmt.Fprintf(&sb, "    class %s focus;\n", sanitizeMermaidID(overlay.Focus))
		}
	}

	return sb.String()
}

func shape(node domain.Node) (string, string) {
	switch {
	case node.Type == domain.NodeTypeStart || node.Type == domain.NodeTypeEnd:
		return "((", "))"
	case node.IsDecision():
		return "{", "}"
	case node.Type == domain.NodeTypeAction:
		return "[[", "]]"
	case node.IsMessage():
		return "(", ")"
	default:
		return "[", "]"
	}
}

// escapeLabel keeps labels inside their double quotes and on one line.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\r\n", "<br/>")
	return strings.ReplaceAll(s, "\n", "<br/>")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
