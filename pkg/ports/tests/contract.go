package tests

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/plotline/pkg/ports"
)

// ScenarioSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.ScenarioSource.
// setupData maps scenario IDs to the text the source is expected to return.
func ScenarioSourceContractTest(t *testing.T, source ports.ScenarioSource, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetScenario_Success", func(t *testing.T) {
		for id, expected := range setupData {
			sc, err := source.GetScenario(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting scenario %s: %v", id, err)
			}
			if sc.ID != id {
				t.Errorf("id mismatch: got %q, want %q", sc.ID, id)
			}
			if sc.Text != expected {
				t.Errorf("text mismatch for %s. got %q, want %q", id, sc.Text, expected)
			}
			if sc.AgentID == "" {
				t.Errorf("agent id for %s should default to the scenario id", id)
			}
		}
	})

	t.Run("GetScenario_NotFound", func(t *testing.T) {
		_, err := source.GetScenario(ctx, "non-existent-scenario")
		if err == nil {
			t.Error("expected error for non-existent scenario, got nil")
		}
	})

	t.Run("ListScenarios", func(t *testing.T) {
		ids, err := source.ListScenarios(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing scenarios: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d scenarios, got %d", len(setupData), len(ids))
		}
		if !sort.StringsAreSorted(ids) {
			t.Errorf("expected sorted ids, got %v", ids)
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range setupData {
			if !lookup[id] {
				t.Errorf("expected scenario %s to be listed", id)
			}
		}
	})
}
