package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutline(t *testing.T) {
	flow := domain.Flow{
		Nodes: []domain.Node{
			{ID: "start", Type: "start", Data: map[string]any{"label": "Start"}},
			{ID: "greet", Type: "message", Data: map[string]any{"label": "Greet", "message": "Hello", "speaker": "Bot"}},
			{ID: "ask", Type: "decision", Data: map[string]any{"label": "Happy?", "options": []any{"yes", "no"}}},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "start", Target: "greet"},
			{ID: "e2", Source: "greet", Target: "ask", Label: "then"},
		},
	}

	md, err := Outline("Support", flow)
	require.NoError(t, err)

	assert.Contains(t, md, "# Support")
	assert.Contains(t, md, "3 nodes, 2 edges")
	assert.Contains(t, md, "## Step 1")
	assert.Contains(t, md, "## Step 3")
	assert.Contains(t, md, `Bot says "Hello"`)
	assert.Contains(t, md, "(yes / no)")
	assert.Contains(t, md, "`greet` → `ask`: then")
}

func TestOutline_DefaultTitleAndEmptyFlow(t *testing.T) {
	md, err := Outline("", domain.Flow{})
	require.NoError(t, err)
	assert.Contains(t, md, "# Flow")
	assert.NotContains(t, md, "Transitions")
}

func TestOutline_DanglingEdge(t *testing.T) {
	flow := domain.Flow{
		Nodes: []domain.Node{{ID: "a"}},
		Edges: []domain.Edge{{ID: "e", Source: "a", Target: "ghost"}},
	}
	_, err := Outline("", flow)
	var pre *domain.PreconditionError
	assert.ErrorAs(t, err, &pre)
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(80)
	require.NoError(t, err)

	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "|_|")
}
