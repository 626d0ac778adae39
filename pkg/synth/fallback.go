package synth

import (
	"github.com/aretw0/plotline/pkg/domain"
)

// FallbackMessageLimit is the number of characters (runes) of scenario text kept in the fallback flow.
const FallbackMessageLimit = 200

// Fallback IDs.
const (
	FallbackStartID   = "start"
	FallbackContentID = "main_scenario"
	FallbackEndID     = "end"
)

// Fallback builds the minimal start → content → end flow for sourceText.
// It never fails and is deterministic.
func Fallback(sourceText string) domain.Flow {
	return domain.Flow{
		Nodes: []domain.Node{
			{
				ID:       FallbackStartID,
				Type:     domain.NodeTypeStart,
				Label:    "Start",
				Data:     map[string]any{"label": "Start"},
				Position: &domain.Position{X: 250, Y: 50},
			},
			{
				ID:    FallbackContentID,
				Type:  domain.NodeTypeMessage,
				Label: "Main scenario",
				Data: map[string]any{
					"label":   "Main scenario",
					"message": truncate(sourceText, FallbackMessageLimit),
				},
				Position: &domain.Position{X: 250, Y: 150},
			},
			{
				ID:       FallbackEndID,
				Type:     domain.NodeTypeEnd,
				Label:    "End",
				Data:     map[string]any{"label": "End"},
				Position: &domain.Position{X: 250, Y: 250},
			},
		},
		Edges: []domain.Edge{
			{ID: "edge_1", Source: FallbackStartID, Target: FallbackContentID, Type: domain.EdgeTypeDefault},
			{ID: "edge_2", Source: FallbackContentID, Target: FallbackEndID, Type: domain.EdgeTypeDefault},
		},
	}
}

// truncate keeps the first limit runes, appending "..." only when something was cut.
func truncate(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
