package synth

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_Shape(t *testing.T) {
	f := Fallback("hello world")
	require.NoError(t, f.Validate())

	require.Len(t, f.Nodes, 3)
	assert.Equal(t, []string{"start", "main_scenario", "end"}, []string{f.Nodes[0].ID, f.Nodes[1].ID, f.Nodes[2].ID})
	assert.Equal(t, []string{"start", "message", "end"}, []string{f.Nodes[0].Type, f.Nodes[1].Type, f.Nodes[2].Type})
	assert.Equal(t, "hello world", f.Nodes[1].Data["message"])

	require.Len(t, f.Edges, 2)
	assert.Equal(t, "start", f.Edges[0].Source)
	assert.Equal(t, "main_scenario", f.Edges[0].Target)
	assert.Equal(t, "end", f.Edges[1].Target)

	assert.Equal(t, 50.0, f.Nodes[0].Position.Y)
	assert.Equal(t, 150.0, f.Nodes[1].Position.Y)
	assert.Equal(t, 250.0, f.Nodes[2].Position.Y)
}

func TestFallback_Deterministic(t *testing.T) {
	a, err := json.Marshal(Fallback("hello world"))
	require.NoError(t, err)
	b, err := json.Marshal(Fallback("hello world"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestFallback_Truncation(t *testing.T) {
	exact := strings.Repeat("a", FallbackMessageLimit)
	assert.Equal(t, exact, Fallback(exact).Nodes[1].Data["message"], "no ellipsis at the limit")

	long := strings.Repeat("가", FallbackMessageLimit+5)
	msg := Fallback(long).Nodes[1].Data["message"].(string)
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.Equal(t, FallbackMessageLimit+3, utf8.RuneCountInString(msg), "truncation counts runes, not bytes")
	assert.True(t, utf8.ValidString(msg))

	assert.Equal(t, "", Fallback("").Nodes[1].Data["message"])
}
