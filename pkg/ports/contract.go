package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore implementation
// adheres to the defined interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	agentID := "contract-test-agent-" + time.Now().Format("20060102150405")

	sample := func() domain.Flow {
		return domain.Flow{
			Nodes: []domain.Node{
				{ID: "start", Type: domain.NodeTypeStart, Data: map[string]any{"label": "Start"}, Position: &domain.Position{X: 400, Y: 50}},
				{ID: "ask", Type: domain.NodeTypeDecision, Data: map[string]any{"options": []any{"yes", "no"}}, Position: &domain.Position{X: 400, Y: 170}},
			},
			Edges: []domain.Edge{
				{ID: "edge_1", Source: "start", Target: "ask", Label: "go", Type: domain.EdgeTypeDefault},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		flow := sample()

		err := store.Save(ctx, agentID, flow)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Nodes, 2)
		require.Len(t, loaded.Edges, 1)

		// Node order is preserved.
		assert.Equal(t, "start", loaded.Nodes[0].ID)
		assert.Equal(t, "ask", loaded.Nodes[1].ID)
		assert.Equal(t, &domain.Position{X: 400, Y: 170}, loaded.Nodes[1].Position)
		assert.Equal(t, "Start", loaded.Nodes[0].Data["label"])
		assert.Equal(t, flow.Edges[0], loaded.Edges[0])
		// JSON-backed stores turn []string into []any; only the length is portable.
		assert.Len(t, loaded.Nodes[1].Data["options"], 2)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		flow := sample()
		require.NoError(t, store.Save(ctx, agentID, flow))

		flow.Nodes[0].Position.X = -1
		flow.Nodes[0].Data["label"] = "mutated"

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, 400.0, loaded.Nodes[0].Position.X)
		assert.Equal(t, "Start", loaded.Nodes[0].Data["label"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+agentID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, agentID, sample())
		require.NoError(t, err)

		err = store.Delete(ctx, agentID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, agentID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound, "Load after Delete should return ErrFlowNotFound")

		// Idempotent.
		assert.NoError(t, store.Delete(ctx, agentID))
	})

	t.Run("List", func(t *testing.T) {
		id1 := agentID + "-1"
		id2 := agentID + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		agents, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, agents, id1)
		assert.Contains(t, agents, id2)
	})
}
