package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/plotline/pkg/adapters/file"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunFlowStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(filepath.Join(dir, "nested"))
	ctx := context.Background()

	flow := domain.Flow{Nodes: []domain.Node{{ID: "a", Position: &domain.Position{X: 1, Y: 2}}}, Edges: []domain.Edge{}}
	require.NoError(t, store.Save(ctx, "agent-1", flow))

	data, err := os.ReadFile(filepath.Join(dir, "nested", "agent-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nodes"`)
	assert.Contains(t, string(data), `"edges": []`)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", `a\b`, "..", "tmp-x"} {
		assert.Error(t, store.Save(ctx, id, domain.Flow{}), "id %q", id)
		_, err := store.Load(ctx, id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "does-not-exist"))
	agents, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, agents)
}
