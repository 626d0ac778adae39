package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/plotline/internal/testutils"
	"github.com/aretw0/plotline/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	docs := []core.Document{
		{
			ID: "greeting.md",
			Content: `---
id: greeting
title: Greeting
---
1. greet
2. ask name
3. end`,
		},
		{
			ID: "refund.md",
			Content: `---
id: refund
agent_id: support-bot
---
The customer asks for a refund.`,
		},
	}
	for _, doc := range docs {
		require.NoError(t, repo.Save(ctx, doc))
	}

	source := New(loam.NewTypedRepository[ScenarioMetadata](repo))

	tests.ScenarioSourceContractTest(t, source, map[string]string{
		"greeting": "1. greet\n2. ask name\n3. end",
		"refund":   "The customer asks for a refund.",
	})
}

func TestSource_GetScenario_Metadata(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, core.Document{
		ID: "refund.md",
		Content: `---
id: refund
title: Refunds
agent_id: support-bot
---
Ask for the order number.`,
	}))

	source := New(loam.NewTypedRepository[ScenarioMetadata](repo))

	sc, err := source.GetScenario(ctx, "refund")
	require.NoError(t, err)
	assert.Equal(t, "refund", sc.ID)
	assert.Equal(t, "Refunds", sc.Title)
	assert.Equal(t, "support-bot", sc.AgentID)
	assert.Equal(t, "Ask for the order number.", sc.Text)
}

func TestSource_ListScenarios_NormalizesIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"start.md": `---
id: start.md
---
Hello`,
		"choice.json": `{
  "id": "choice.json",
  "text": "Pick one"
}`,
		"implicit.md": `---
title: No ID
---
ID is implied from filename`,
	}
	testutils.WriteFiles(t, tmpDir, files)

	source := New(loam.NewTypedRepository[ScenarioMetadata](repo))

	ids, err := source.ListScenarios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"choice", "implicit", "start"}, ids)
}

func TestSource_ListScenarios_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"foo.md": `---
id: foo
---
Explicit ID`,
		"foo.json": `{
  "id": "foo",
  "text": "Same ID"
}`,
	}
	testutils.WriteFiles(t, tmpDir, files)

	source := New(loam.NewTypedRepository[ScenarioMetadata](repo))

	_, err := source.ListScenarios(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestSource_GetScenario_JSONText(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	testutils.WriteFiles(t, tmpDir, map[string]string{
		"node.json": `{ "id": "node.json", "text": "  from json  " }`,
	})

	source := New(loam.NewTypedRepository[ScenarioMetadata](repo))

	sc, err := source.GetScenario(context.Background(), "node")
	require.NoError(t, err)
	assert.Equal(t, "node", sc.ID)
	assert.Equal(t, "node", sc.AgentID)
	assert.Equal(t, "from json", sc.Text)
}

func TestToScenario(t *testing.T) {
	sc := toScenario("dir/intro.md", ScenarioMetadata{Text: "ignored"}, "\n body \n")
	assert.Equal(t, "dir/intro", sc.ID)
	assert.Equal(t, "body", sc.Text)
	assert.Equal(t, "dir/intro", sc.AgentID)
}
