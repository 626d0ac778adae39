package layout

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(ids ...string) domain.Flow {
	var f domain.Flow
	for _, id := range ids {
		f.Nodes = append(f.Nodes, domain.Node{ID: id, Type: domain.NodeTypeMessage, Data: map[string]any{"message": id}})
	}
	for i := 1; i < len(ids); i++ {
		f.Edges = append(f.Edges, domain.Edge{ID: fmt.Sprintf("edge_%d", i), Source: ids[i-1], Target: ids[i], Type: domain.EdgeTypeDefault})
	}
	return f
}

func positions(f domain.Flow) map[string]domain.Position {
	out := make(map[string]domain.Position, len(f.Nodes))
	for _, n := range f.Nodes {
		out[n.ID] = *n.Position
	}
	return out
}

func TestApply_Chain(t *testing.T) {
	flow := chain("greet", "ask_name", "end")

	levels, groups, err := Levels(flow)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"greet": 0, "ask_name": 1, "end": 2}, levels)
	assert.Equal(t, [][]string{{"greet"}, {"ask_name"}, {"end"}}, groups)

	out, err := Apply(flow)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Position{
		"greet":    {X: 400, Y: 50},
		"ask_name": {X: 400, Y: 170},
		"end":      {X: 400, Y: 290},
	}, positions(out))
}

func TestApply_Branching(t *testing.T) {
	flow := domain.Flow{
		Nodes: []domain.Node{{ID: "s"}, {ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "end"}},
		Edges: []domain.Edge{
			{ID: "1", Source: "s", Target: "a"},
			{ID: "2", Source: "s", Target: "b"},
			{ID: "3", Source: "s", Target: "c"},
			{ID: "4", Source: "a", Target: "end"},
			{ID: "5", Source: "c", Target: "end"},
		},
	}

	out, err := Apply(flow)
	require.NoError(t, err)

	pos := positions(out)
	assert.Equal(t, domain.Position{X: 400, Y: 50}, pos["s"])
	// Three nodes centered on 400 with 200 spacing.
	assert.Equal(t, domain.Position{X: 200, Y: 170}, pos["a"])
	assert.Equal(t, domain.Position{X: 400, Y: 170}, pos["b"])
	assert.Equal(t, domain.Position{X: 600, Y: 170}, pos["c"])
	assert.Equal(t, domain.Position{X: 400, Y: 290}, pos["end"])
}

func TestLevels_LongestPath(t *testing.T) {
	// s→a→b→end and a shortcut s→end: end sits below b.
	flow := chain("s", "a", "b", "end")
	flow.Edges = append(flow.Edges, domain.Edge{ID: "shortcut", Source: "s", Target: "end"})

	levels, _, err := Levels(flow)
	require.NoError(t, err)
	assert.Equal(t, 3, levels["end"])
}

func TestLevels_CycleFirstReachedWins(t *testing.T) {
	// a→b→c→a: a is the root (first node), c→a closes the cycle.
	flow := chain("a", "b", "c")
	flow.Edges = append(flow.Edges, domain.Edge{ID: "loop", Source: "c", Target: "a"})

	levels, groups, err := Levels(flow)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, levels)
	assert.Len(t, groups, 3)
}

func TestLevels_LoopBackToMiddle(t *testing.T) {
	// start→ask→answer→ask (retry loop) and answer→end.
	flow := domain.Flow{
		Nodes: []domain.Node{{ID: "start"}, {ID: "ask"}, {ID: "answer"}, {ID: "end"}},
		Edges: []domain.Edge{
			{ID: "1", Source: "start", Target: "ask"},
			{ID: "2", Source: "ask", Target: "answer"},
			{ID: "3", Source: "answer", Target: "ask"},
			{ID: "4", Source: "answer", Target: "end"},
			{ID: "5", Source: "end", Target: "end"},
		},
	}
	levels, _, err := Levels(flow)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"start": 0, "ask": 1, "answer": 2, "end": 3}, levels)
}

func TestLevels_Disconnected(t *testing.T) {
	flow := domain.Flow{
		Nodes: []domain.Node{{ID: "x"}, {ID: "root"}, {ID: "y"}, {ID: "child"}},
		Edges: []domain.Edge{
			{ID: "1", Source: "root", Target: "child"},
			{ID: "2", Source: "x", Target: "y"},
			{ID: "3", Source: "y", Target: "x"},
		},
	}

	levels, groups, err := Levels(flow)
	require.NoError(t, err)
	assert.Equal(t, 0, levels["x"])
	assert.Equal(t, 0, levels["y"])
	// root first, then unreachable nodes in node order.
	assert.Equal(t, []string{"root", "x", "y"}, groups[0])
	assert.Equal(t, []string{"child"}, groups[1])
}

func TestApply_PreservesEverythingButPositions(t *testing.T) {
	flow := chain("a", "b")
	flow.Nodes[0].Label = "A"
	flow.Edges[0].Animated = true

	out, err := New(WithSpacing(100, 80), WithOrigin(0, 10)).Apply(flow)
	require.NoError(t, err)

	diff := domain.Diff(&flow, &out)
	require.NotNil(t, diff)
	assert.ElementsMatch(t, []string{"a", "b"}, diff.MovedNodes)
	assert.False(t, diff.TopologyChanged())
	assert.Empty(t, diff.ChangedNodes)

	assert.Nil(t, flow.Nodes[0].Position, "input must not be mutated")
	assert.Equal(t, domain.Position{X: 0, Y: 90}, *out.Nodes[1].Position)
}

func TestApply_Empty(t *testing.T) {
	out, err := Apply(domain.Flow{})
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestApply_Precondition(t *testing.T) {
	flow := chain("a")
	flow.Edges = []domain.Edge{{ID: "bad", Source: "a", Target: "ghost"}}

	_, err := Apply(flow)
	var pErr *domain.PreconditionError
	require.True(t, errors.As(err, &pErr), "expected PreconditionError, got %v", err)
	assert.Contains(t, pErr.Reason, "ghost")

	dup := domain.Flow{Nodes: []domain.Node{{ID: "a"}, {ID: "a"}}}
	_, err = Apply(dup)
	assert.True(t, errors.As(err, &pErr))
}

func TestWithConfig_KeepsDefaultSpacing(t *testing.T) {
	e := New(WithConfig(Config{OriginX: 10}))
	assert.Equal(t, Config{XSpacing: 200, YSpacing: 120, OriginX: 10}, e.Config())
}

func TestOptions_IgnoreNonFiniteValues(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "Config", opt: WithConfig(Config{XSpacing: nan, YSpacing: inf, OriginX: inf, TopMargin: nan})},
		{name: "Spacing", opt: WithSpacing(inf, nan)},
		{name: "Origin", opt: WithOrigin(math.Inf(-1), nan)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.opt)
			assert.Equal(t, DefaultConfig(), e.Config())

			out, err := e.Apply(chain("a", "b"))
			require.NoError(t, err)
			require.NoError(t, out.Validate())
			assert.Equal(t, domain.Position{X: 400, Y: 170}, *out.Nodes[1].Position)
		})
	}
}

// randomFlow builds a flow of n nodes with edges taken pairwise from raw.
func randomFlow(n int, raw []int) domain.Flow {
	var f domain.Flow
	for i := 0; i < n; i++ {
		f.Nodes = append(f.Nodes, domain.Node{ID: fmt.Sprintf("n%d", i)})
	}
	for i := 0; i+1 < len(raw); i += 2 {
		f.Edges = append(f.Edges, domain.Edge{
			ID:     fmt.Sprintf("e%d", i/2),
			Source: fmt.Sprintf("n%d", raw[i]%n),
			Target: fmt.Sprintf("n%d", raw[i+1]%n),
		})
	}
	return f
}

func TestLayoutProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("layout is idempotent", prop.ForAll(
		func(n int, raw []int) bool {
			once, err := Apply(randomFlow(n, raw))
			if err != nil {
				return false
			}
			twice, err := Apply(once)
			if err != nil {
				return false
			}
			return domain.Diff(&once, &twice) == nil
		},
		gen.IntRange(1, 15),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("forward edges descend at least one level", prop.ForAll(
		func(n int, raw []int) bool {
			flow := randomFlow(n, raw)
			a, err := analyze(flow)
			if err != nil {
				return false
			}
			for u, arcs := range a.out {
				if !a.reachable[u] {
					continue
				}
				for _, ar := range arcs {
					if !ar.back && a.level[ar.to] < a.level[u]+1 {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 15),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("every node is placed at a finite position without overlap", prop.ForAll(
		func(n int, raw []int) bool {
			out, err := Apply(randomFlow(n, raw))
			if err != nil || out.Validate() != nil {
				return false
			}
			seen := make(map[domain.Position]bool, len(out.Nodes))
			for _, node := range out.Nodes {
				if node.Position == nil || seen[*node.Position] {
					return false
				}
				seen[*node.Position] = true
			}
			return true
		},
		gen.IntRange(1, 15),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
