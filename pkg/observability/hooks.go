package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/plotline/pkg/domain"
)

// Combine merges several hook sets into one. Callbacks run in argument order.
func Combine(hooks ...domain.SynthesisHooks) domain.SynthesisHooks {
	var synthesized, fallback []func(context.Context, *domain.SynthesisEvent)
	var dropped []func(context.Context, *domain.EdgeEvent)

	for _, h := range hooks {
		if h.OnSynthesized != nil {
			synthesized = append(synthesized, h.OnSynthesized)
		}
		if h.OnFallback != nil {
			fallback = append(fallback, h.OnFallback)
		}
		if h.OnEdgeDropped != nil {
			dropped = append(dropped, h.OnEdgeDropped)
		}
	}

	var out domain.SynthesisHooks
	if len(synthesized) > 0 {
		out.OnSynthesized = func(ctx context.Context, e *domain.SynthesisEvent) {
			for _, fn := range synthesized {
				fn(ctx, e)
			}
		}
	}
	if len(fallback) > 0 {
		out.OnFallback = func(ctx context.Context, e *domain.SynthesisEvent) {
			for _, fn := range fallback {
				fn(ctx, e)
			}
		}
	}
	if len(dropped) > 0 {
		out.OnEdgeDropped = func(ctx context.Context, e *domain.EdgeEvent) {
			for _, fn := range dropped {
				fn(ctx, e)
			}
		}
	}
	return out
}

// LogHooks writes one Info record per synthesis run and per dropped edge.
func LogHooks(logger *slog.Logger) domain.SynthesisHooks {
	return domain.SynthesisHooks{
		OnSynthesized: func(ctx context.Context, e *domain.SynthesisEvent) {
			logger.InfoContext(ctx, "flow_synthesized",
				"run_id", e.RunID,
				"nodes", e.NodeCount,
				"edges", e.EdgeCount,
				"duration", e.Duration,
			)
		},
		OnFallback: func(ctx context.Context, e *domain.SynthesisEvent) {
			logger.InfoContext(ctx, "flow_fallback",
				"run_id", e.RunID,
				"stage", e.Stage,
				"error", e.Err,
			)
		},
		OnEdgeDropped: func(ctx context.Context, e *domain.EdgeEvent) {
			logger.InfoContext(ctx, "edge_dropped",
				"run_id", e.RunID,
				"edge_id", e.EdgeID,
				"reason", e.Reason,
			)
		},
	}
}
