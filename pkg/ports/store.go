package ports

import (
	"context"

	"github.com/aretw0/plotline/pkg/domain"
)

// FlowStore defines the interface for persisting flows.
// Flows are opaque JSON-serializable values keyed by an agent/scenario id.
type FlowStore interface {
	// Save persists the flow for a given agent ID, replacing any previous one.
	Save(ctx context.Context, agentID string, flow domain.Flow) error

	// Load retrieves the flow for a given agent ID.
	// Returns domain.ErrFlowNotFound if no flow is stored.
	Load(ctx context.Context, agentID string) (domain.Flow, error)

	// Delete removes the flow for a given agent ID. Deleting a missing flow is not an error.
	Delete(ctx context.Context, agentID string) error

	// List returns the agent IDs that currently have a stored flow.
	List(ctx context.Context) ([]string, error)
}
