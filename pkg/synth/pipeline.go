package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/plotline/internal/logging"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/extract"
	"github.com/aretw0/plotline/pkg/ports"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/google/uuid"
)

// Stage names where a synthesis run ended.
type Stage string

const (
	StageOK         Stage = "ok"
	StageEmptyInput Stage = "empty_input"
	StageGenerate   Stage = "generate"
	StageExtract    Stage = "extract"
	StageValidate   Stage = "validate"
	StageCanceled   Stage = "canceled"
)

// Diagnostic describes how a synthesis run went.
type Diagnostic struct {
	RunID    string
	Stage    Stage
	Err      error
	Warnings []schema.Warning
	Fallback bool
	Duration time.Duration
}

// OK reports whether the flow came from the generator.
func (d Diagnostic) OK() bool {
	return !d.Fallback
}

// Synthesizer runs the text-to-flow pipeline against a Generator.
// It holds no per-run state and is safe for concurrent use.
type Synthesizer struct {
	gen         ports.Generator
	provider    string
	logger      *slog.Logger
	hooks       domain.SynthesisHooks
	normalize   []schema.Option
	buildPrompt func(string) string
	system      string
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.SynthesisHooks) Option {
	return func(s *Synthesizer) {
		s.hooks = hooks
	}
}

// WithNormalizeOptions forwards options to schema.Normalize (e.g. strict edges).
func WithNormalizeOptions(opts ...schema.Option) Option {
	return func(s *Synthesizer) {
		s.normalize = append(s.normalize, opts...)
	}
}

// WithPrompt overrides the prompt builder and the system instruction.
func WithPrompt(build func(scenarioText string) string, system string) Option {
	return func(s *Synthesizer) {
		if build != nil {
			s.buildPrompt = build
		}
		if system != "" {
			s.system = system
		}
	}
}

// WithProvider names the generator in errors and logs.
func WithProvider(name string) Option {
	return func(s *Synthesizer) {
		s.provider = name
	}
}

// New creates a Synthesizer.
func New(gen ports.Generator, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		gen:         gen,
		logger:      logging.NewNop(), // Default to no-op
		buildPrompt: BuildPrompt,
		system:      SystemPrompt,
	}
	if named, ok := gen.(interface{ Name() string }); ok {
		s.provider = named.Name()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize converts text into a Flow. It never fails: any problem yields
// Fallback(text) and is described by the Diagnostic.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (domain.Flow, Diagnostic) {
	start := time.Now()
	diag := Diagnostic{RunID: uuid.NewString()}

	flow, err := s.run(ctx, text, &diag)
	diag.Duration = time.Since(start)

	if err != nil {
		diag.Err = err
		diag.Fallback = true
		flow = Fallback(text)
		s.reportFallback(ctx, flow, diag)
		return flow, diag
	}

	diag.Stage = StageOK
	s.reportSuccess(ctx, flow, diag)
	return flow, diag
}

func (s *Synthesizer) run(ctx context.Context, text string, diag *Diagnostic) (domain.Flow, error) {
	if strings.TrimSpace(text) == "" {
		diag.Stage = StageEmptyInput
		return domain.Flow{}, errors.New("scenario text is empty")
	}

	diag.Stage = StageGenerate
	if err := ctx.Err(); err != nil {
		diag.Stage = StageCanceled
		return domain.Flow{}, err
	}
	raw, err := s.generate(ctx, s.buildPrompt(text))
	if err != nil {
		if ctx.Err() != nil {
			diag.Stage = StageCanceled
		}
		return domain.Flow{}, err
	}

	diag.Stage = StageExtract
	candidate, err := extract.Extract(raw)
	if err != nil {
		return domain.Flow{}, err
	}

	diag.Stage = StageValidate
	res, err := schema.Normalize(candidate, s.normalize...)
	if err != nil {
		return domain.Flow{}, err
	}
	diag.Warnings = res.Warnings
	for _, w := range res.DroppedEdges() {
		s.emitEdgeDropped(ctx, diag.RunID, w)
	}
	if res.Flow.IsEmpty() {
		return domain.Flow{}, &domain.ValidationError{Path: "nodes", Reason: "flow has no nodes"}
	}
	return res.Flow, nil
}

// generate calls the collaborator once. A panicking generator is treated as a failed call.
func (s *Synthesizer) generate(ctx context.Context, prompt string) (out string, err error) {
	if s.gen == nil {
		return "", &domain.CollaboratorError{Provider: s.provider, Err: errors.New("no generator configured")}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &domain.CollaboratorError{Provider: s.provider, Err: fmt.Errorf("generator panicked: %v", r)}
		}
	}()

	out, err = s.gen.Generate(ctx, prompt, s.system)
	if err != nil {
		var collabErr *domain.CollaboratorError
		if !errors.As(err, &collabErr) {
			err = &domain.CollaboratorError{Provider: s.provider, Err: err}
		}
		return "", err
	}
	return out, nil
}

func (s *Synthesizer) reportFallback(ctx context.Context, flow domain.Flow, diag Diagnostic) {
	s.logger.Warn("Synthesis fell back to default flow",
		"run_id", diag.RunID,
		"stage", diag.Stage,
		"duration", diag.Duration,
		"error", diag.Err,
	)
	if s.hooks.OnFallback != nil {
		s.hooks.OnFallback(ctx, s.event(domain.EventFallback, flow, diag))
	}
}

func (s *Synthesizer) reportSuccess(ctx context.Context, flow domain.Flow, diag Diagnostic) {
	s.logger.Debug("Synthesized flow",
		"run_id", diag.RunID,
		"nodes", len(flow.Nodes),
		"edges", len(flow.Edges),
		"warnings", len(diag.Warnings),
		"duration", diag.Duration,
	)
	if s.hooks.OnSynthesized != nil {
		s.hooks.OnSynthesized(ctx, s.event(domain.EventSynthesized, flow, diag))
	}
}

func (s *Synthesizer) emitEdgeDropped(ctx context.Context, runID string, w schema.Warning) {
	s.logger.Debug("Dropped edge", "run_id", runID, "edge_id", w.EdgeID, "path", w.Path, "reason", w.Reason)
	if s.hooks.OnEdgeDropped == nil {
		return
	}
	s.hooks.OnEdgeDropped(ctx, &domain.EdgeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventEdgeDropped, RunID: runID},
		EdgeID:    w.EdgeID,
		Reason:    w.Reason,
	})
}

func (s *Synthesizer) event(typ domain.EventType, flow domain.Flow, diag Diagnostic) *domain.SynthesisEvent {
	return &domain.SynthesisEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: diag.RunID},
		Stage:     string(diag.Stage),
		NodeCount: len(flow.Nodes),
		EdgeCount: len(flow.Edges),
		Duration:  diag.Duration,
		Err:       diag.Err,
	}
}

// Synthesize runs a one-off pipeline with default options.
func Synthesize(ctx context.Context, text string, gen ports.Generator) (domain.Flow, Diagnostic) {
	return New(gen).Synthesize(ctx, text)
}
