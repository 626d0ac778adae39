package synth_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/layout"
	"github.com/aretw0/plotline/pkg/ports"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/aretw0/plotline/pkg/synth"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetFlow = `Here you go:
` + "```json" + `
{
  "nodes": [
    {"id": "greet", "type": "start", "label": "Greet", "data": {}, "position": {"x": 0, "y": 0}},
    {"id": "ask_name", "type": "message", "data": {"message": "What is your name?"}, "position": {"x": 0, "y": 100}},
    {"id": "end", "type": "end", "position": {"x": 0, "y": 200}}
  ],
  "edges": [
    {"id": "edge_1", "source": "greet", "target": "ask_name"},
    {"id": "edge_2", "source": "ask_name", "target": "end"}
  ]
}
` + "```"

// stubGenerator returns a canned response and records its calls.
type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	lastUser string
	lastSys  string
}

func (s *stubGenerator) Generate(ctx context.Context, user, system string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastUser, s.lastSys = user, system
	return s.response, s.err
}

func (s *stubGenerator) Name() string { return "stub" }

func TestSynthesize_ConcreteScenario(t *testing.T) {
	text := "1. greet\n2. ask name\n3. end"
	gen := &stubGenerator{response: greetFlow}

	flow, diag := synth.New(gen).Synthesize(context.Background(), text)
	require.Equal(t, synth.StageOK, diag.Stage, "diag err: %v", diag.Err)
	assert.False(t, diag.Fallback)
	assert.NotEmpty(t, diag.RunID)

	require.Len(t, flow.Nodes, 3)
	assert.Equal(t, "greet", flow.Nodes[0].ID)
	assert.Equal(t, "ask_name", flow.Nodes[1].ID)
	assert.Equal(t, "end", flow.Nodes[2].ID)
	assert.Len(t, flow.Edges, 2)

	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.lastUser, text)
	assert.Equal(t, synth.SystemPrompt, gen.lastSys)

	levels, _, err := layout.Levels(flow)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{levels["greet"], levels["ask_name"], levels["end"]})

	placed, err := layout.Apply(flow)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 170, 290}, []float64{
		placed.Nodes[0].Position.Y,
		placed.Nodes[1].Position.Y,
		placed.Nodes[2].Position.Y,
	})
}

func TestSynthesize_MalformedResponse(t *testing.T) {
	text := strings.Repeat("The party enters the cave. ", 20)
	gen := &stubGenerator{response: "I cannot help with that."}

	flow, diag := synth.Synthesize(context.Background(), text, gen)
	assert.True(t, diag.Fallback)
	assert.Equal(t, synth.StageExtract, diag.Stage)

	var extErr *domain.ExtractionError
	assert.True(t, errors.As(diag.Err, &extErr))

	assert.Equal(t, synth.Fallback(text), flow)
	assert.Equal(t, string([]rune(text)[:200])+"...", flow.Nodes[1].Data["message"])
}

func TestSynthesize_FailureStages(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		text      string
		gen       ports.Generator
		wantStage synth.Stage
		wantCalls int
	}{
		{
			name:      "empty input skips generator",
			ctx:       context.Background(),
			text:      "   \n ",
			gen:       &stubGenerator{response: greetFlow},
			wantStage: synth.StageEmptyInput,
		},
		{
			name:      "generator error",
			ctx:       context.Background(),
			text:      "story",
			gen:       &stubGenerator{err: errors.New("rate limited")},
			wantStage: synth.StageGenerate,
			wantCalls: 1,
		},
		{
			name:      "invalid flow",
			ctx:       context.Background(),
			text:      "story",
			gen:       &stubGenerator{response: `{"nodes": [{"id": "a"}], "edges": []}`},
			wantStage: synth.StageValidate,
			wantCalls: 1,
		},
		{
			name:      "empty node list",
			ctx:       context.Background(),
			text:      "story",
			gen:       &stubGenerator{response: `{"nodes": [], "edges": []}`},
			wantStage: synth.StageValidate,
			wantCalls: 1,
		},
		{
			name:      "canceled context",
			ctx:       canceled,
			text:      "story",
			gen:       &stubGenerator{response: greetFlow},
			wantStage: synth.StageCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, diag := synth.New(tt.gen).Synthesize(tt.ctx, tt.text)
			assert.Equal(t, tt.wantStage, diag.Stage)
			assert.True(t, diag.Fallback)
			assert.Error(t, diag.Err)
			assert.Equal(t, synth.Fallback(tt.text), flow)
			assert.Equal(t, tt.wantCalls, tt.gen.(*stubGenerator).calls)
		})
	}
}

func TestSynthesize_GeneratorErrorIsWrapped(t *testing.T) {
	cause := errors.New("boom")
	_, diag := synth.New(&stubGenerator{err: cause}).Synthesize(context.Background(), "story")

	var collabErr *domain.CollaboratorError
	require.True(t, errors.As(diag.Err, &collabErr))
	assert.Equal(t, "stub", collabErr.Provider)
	assert.ErrorIs(t, diag.Err, cause)
}

func TestSynthesize_PanickingGenerator(t *testing.T) {
	gen := ports.GeneratorFunc(func(ctx context.Context, user, system string) (string, error) {
		panic("provider SDK bug")
	})
	flow, diag := synth.New(gen).Synthesize(context.Background(), "story")
	assert.Equal(t, synth.StageGenerate, diag.Stage)
	assert.NoError(t, flow.Validate())
}

func TestSynthesize_NilGenerator(t *testing.T) {
	flow, diag := synth.New(nil).Synthesize(context.Background(), "story")
	assert.True(t, diag.Fallback)
	assert.Len(t, flow.Nodes, 3)
}

func TestSynthesize_Hooks(t *testing.T) {
	response := `{"nodes": [{"id": "a", "position": {"x": 0, "y": 0}}], "edges": [{"id": "bad", "source": "a", "target": "z"}]}`

	var events []string
	hooks := domain.SynthesisHooks{
		OnSynthesized: func(ctx context.Context, e *domain.SynthesisEvent) {
			events = append(events, fmt.Sprintf("synthesized:%d/%d", e.NodeCount, e.EdgeCount))
		},
		OnFallback: func(ctx context.Context, e *domain.SynthesisEvent) {
			events = append(events, "fallback:"+e.Stage)
		},
		OnEdgeDropped: func(ctx context.Context, e *domain.EdgeEvent) {
			events = append(events, "dropped:"+e.EdgeID)
		},
	}

	s := synth.New(&stubGenerator{response: response}, synth.WithHooks(hooks))
	_, diag := s.Synthesize(context.Background(), "story")
	assert.Len(t, diag.Warnings, 1)
	assert.Equal(t, []string{"dropped:bad", "synthesized:1/0"}, events)

	events = nil
	strict := synth.New(&stubGenerator{response: response},
		synth.WithHooks(hooks),
		synth.WithNormalizeOptions(schema.WithStrictEdges()),
	)
	_, diag = strict.Synthesize(context.Background(), "story")
	assert.Equal(t, synth.StageValidate, diag.Stage)
	assert.Equal(t, []string{"fallback:validate"}, events)
}

func TestSynthesize_PromptOverride(t *testing.T) {
	gen := &stubGenerator{response: greetFlow}
	s := synth.New(gen, synth.WithPrompt(func(text string) string { return "custom:" + text }, "sys"))
	_, diag := s.Synthesize(context.Background(), "story")
	assert.True(t, diag.OK())
	assert.Equal(t, "custom:story", gen.lastUser)
	assert.Equal(t, "sys", gen.lastSys)
}

func TestSynthesizeTotality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	responses := []string{
		"",
		"I cannot help with that.",
		"```json\n{\"nodes\": [",
		`{"nodes": "many", "edges": []}`,
		`[1, 2, 3]`,
		greetFlow,
	}

	properties.Property("synthesize always returns a valid non-empty flow", prop.ForAll(
		func(text, garbage string, behavior int) bool {
			gen := ports.GeneratorFunc(func(ctx context.Context, user, system string) (string, error) {
				switch behavior % 4 {
				case 0:
					return garbage, nil
				case 1:
					return "", errors.New("provider down")
				case 2:
					return "```json\n" + garbage + "\n```", nil
				default:
					return responses[behavior%len(responses)], nil
				}
			})

			flow, diag := synth.Synthesize(context.Background(), text, gen)
			if flow.Validate() != nil || flow.IsEmpty() {
				return false
			}
			if diag.Fallback {
				return diag.Err != nil
			}
			return diag.Stage == synth.StageOK
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
