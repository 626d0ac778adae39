package cli

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/plotline/pkg/ports"
	"github.com/aretw0/plotline/pkg/scenario"
)

// settleDelay lets editors finish writing before the changed file is read.
const settleDelay = 100 * time.Millisecond

// WatchableSource is a scenario source that reports changed scenario ids.
type WatchableSource interface {
	ports.ScenarioSource
	Watch(ctx context.Context) (<-chan string, error)
}

// Watch re-synthesizes each scenario the source reports as changed until ctx
// is done. Events for the same id that arrive while it is being processed
// are coalesced into one run.
func Watch(ctx context.Context, m *scenario.Manager, src WatchableSource, logger *slog.Logger, onResult func(BatchResult)) error {
	events, err := src.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("Watching scenarios for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			pending := map[string]struct{}{id: {}}
			pending = drain(ctx, events, pending)

			for _, id := range sortedIDs(pending) {
				logger.Info("Change detected, re-synthesizing", "id", id)
				res := runOne(ctx, m, src, id)
				logResult(logger, res)
				if onResult != nil {
					onResult(res)
				}
			}
		}
	}
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// drain collects the ids that arrive within settleDelay.
func drain(ctx context.Context, events <-chan string, pending map[string]struct{}) map[string]struct{} {
	timer := time.NewTimer(settleDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return pending
		case <-timer.C:
			return pending
		case id, ok := <-events:
			if !ok {
				return pending
			}
			pending[id] = struct{}{}
		}
	}
}
