package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/plotline/pkg/ports"
	"github.com/aretw0/plotline/pkg/scenario"
)

// DefaultWorkers bounds concurrent generator calls in a batch.
const DefaultWorkers = 4

// BatchResult summarizes one scenario of a batch run.
type BatchResult struct {
	ID       string `json:"id" yaml:"id"`
	AgentID  string `json:"agent_id" yaml:"agent_id"`
	Nodes    int    `json:"nodes" yaml:"nodes"`
	Edges    int    `json:"edges" yaml:"edges"`
	Fallback bool   `json:"fallback" yaml:"fallback"`
	Stage    string `json:"stage" yaml:"stage"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the scenario could not be stored or fell back.
func (r BatchResult) Failed() bool {
	return r.Fallback || r.Error != ""
}

// RunBatch synthesizes and stores every scenario of src, at most workers at a time.
// Results keep the source's id order. Per-scenario problems are reported in
// the results; the error is only set when the source cannot be listed.
func RunBatch(ctx context.Context, m *scenario.Manager, src ports.ScenarioSource, workers int, logger *slog.Logger) ([]BatchResult, error) {
	ids, err := src.ListScenarios(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]BatchResult, len(ids))
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			results[i] = runOne(ctx, m, src, id)
			logResult(logger, results[i])
		}(i, id)
	}
	wg.Wait()
	return results, nil
}

func runOne(ctx context.Context, m *scenario.Manager, src ports.ScenarioSource, id string) BatchResult {
	res := BatchResult{ID: id}

	sc, err := src.GetScenario(ctx, id)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.AgentID = sc.AgentID
	if res.AgentID == "" {
		res.AgentID = sc.ID
	}

	parsed, err := m.Parse(ctx, sc.Text, res.AgentID)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Nodes = len(parsed.Flow.Nodes)
	res.Edges = len(parsed.Flow.Edges)
	res.Fallback = parsed.Diagnostic.Fallback
	res.Stage = string(parsed.Diagnostic.Stage)
	if parsed.Diagnostic.Err != nil {
		res.Error = parsed.Diagnostic.Err.Error()
	}
	return res
}

func logResult(logger *slog.Logger, r BatchResult) {
	if r.Failed() {
		logger.Warn("Scenario not synthesized", "id", r.ID, "agent_id", r.AgentID, "stage", r.Stage, "error", r.Error)
		return
	}
	logger.Info("Scenario synthesized", "id", r.ID, "agent_id", r.AgentID, "nodes", r.Nodes, "edges", r.Edges)
}
