package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/plotline/pkg/ports"
)

// Source implements ports.ScenarioSource using an in-memory map.
type Source struct {
	scenarios map[string]ports.Scenario
}

// NewSource creates a Source from scenario IDs to texts.
func NewSource(texts map[string]string) *Source {
	scenarios := make(map[string]ports.Scenario, len(texts))
	for id, text := range texts {
		scenarios[id] = ports.Scenario{ID: id, Text: text, AgentID: id}
	}
	return &Source{scenarios: scenarios}
}

// NewFromScenarios creates a Source from fully described scenarios.
func NewFromScenarios(scenarios ...ports.Scenario) (*Source, error) {
	data := make(map[string]ports.Scenario, len(scenarios))
	for _, sc := range scenarios {
		if sc.ID == "" {
			return nil, fmt.Errorf("scenario missing ID")
		}
		if sc.AgentID == "" {
			sc.AgentID = sc.ID
		}
		data[sc.ID] = sc
	}
	return &Source{scenarios: data}, nil
}

// GetScenario retrieves a scenario by ID.
func (s *Source) GetScenario(ctx context.Context, id string) (ports.Scenario, error) {
	sc, ok := s.scenarios[id]
	if !ok {
		return ports.Scenario{}, fmt.Errorf("scenario not found: %s", id)
	}
	return sc, nil
}

// ListScenarios returns all scenario IDs.
func (s *Source) ListScenarios(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.scenarios))
	for k := range s.scenarios {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
