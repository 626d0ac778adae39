package plotline

import (
	"context"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/extract"
	"github.com/aretw0/plotline/pkg/layout"
	"github.com/aretw0/plotline/pkg/ports"
	"github.com/aretw0/plotline/pkg/scenario"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/aretw0/plotline/pkg/synth"
)

// Synthesize converts scenario text into a Flow using gen. It never fails;
// the Diagnostic reports whether the fallback flow was used and why.
func Synthesize(ctx context.Context, text string, gen ports.Generator, opts ...synth.Option) (domain.Flow, synth.Diagnostic) {
	return synth.New(gen, opts...).Synthesize(ctx, text)
}

// Layout returns a copy of flow with every node positioned.
func Layout(flow domain.Flow, opts ...layout.Option) (domain.Flow, error) {
	return layout.New(opts...).Apply(flow)
}

// Normalize parses a JSON flow candidate and repairs it.
func Normalize(candidate string, opts ...schema.Option) (schema.Result, error) {
	return schema.Normalize(candidate, opts...)
}

// Extract isolates the JSON object in a generator's free-text answer.
func Extract(raw string) (string, error) {
	return extract.Extract(raw)
}

// Fallback returns the single-node flow used when synthesis fails.
func Fallback(text string) domain.Flow {
	return synth.Fallback(text)
}

// NewManager creates a flow manager storing flows in store and synthesizing with gen.
func NewManager(store ports.FlowStore, gen ports.Generator, opts ...scenario.Option) *scenario.Manager {
	return scenario.NewManager(store, synth.New(gen), opts...)
}
