package memory_test

import (
	"testing"

	"github.com/aretw0/plotline/pkg/adapters/memory"
	"github.com/aretw0/plotline/pkg/ports"
	contract "github.com/aretw0/plotline/pkg/ports/tests"
)

func TestInMemorySource_Contract(t *testing.T) {
	data := map[string]string{
		"cave":   "The party enters a dark cave.",
		"tavern": "1. greet\n2. ask name\n3. end",
	}

	contract.ScenarioSourceContractTest(t, memory.NewSource(data), data)
}

func TestNewFromScenarios(t *testing.T) {
	src, err := memory.NewFromScenarios(ports.Scenario{ID: "a", Text: "x", AgentID: "agent-a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	contract.ScenarioSourceContractTest(t, src, map[string]string{"a": "x"})

	if _, err := memory.NewFromScenarios(ports.Scenario{Text: "no id"}); err == nil {
		t.Error("expected error for scenario without ID")
	}
}
