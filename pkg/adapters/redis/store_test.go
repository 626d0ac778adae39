package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/plotline/pkg/adapters/redis"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleFlow() domain.Flow {
	return domain.Flow{
		Nodes: []domain.Node{{ID: "start", Type: domain.NodeTypeStart, Position: &domain.Position{X: 1, Y: 2}}},
		Edges: []domain.Edge{},
	}
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	store := redis.NewFromClient(client)
	ports.RunFlowStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newMiniredis(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	agentID := "agent-ttl"

	require.NoError(t, store.Save(ctx, agentID, sampleFlow()))

	agents, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, agents, agentID)

	// Key expiry in miniredis.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, agentID)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)

	// Lazy index cleanup scores against time.Now(), so wall time must pass too.
	time.Sleep(1200 * time.Millisecond)

	agents, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, agents)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newMiniredis(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	agentID := "my-agent"

	require.NoError(t, store.Save(ctx, agentID, sampleFlow()))

	assert.True(t, mr.Exists("custom:app:my-agent"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, agentID)

	raw, err := mr.Get("custom:app:my-agent")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[{"id":"start","type":"start","data":null,"position":{"x":1,"y":2}}],"edges":[]}`, raw)
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client)

	require.NoError(t, store.Save(context.Background(), "a", sampleFlow()))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"a"))
	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr, client := newMiniredis(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{not json"))
	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrFlowNotFound)
}
