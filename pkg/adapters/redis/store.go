package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/plotline/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "plotline:flow:"

// farFuture is the index score used for flows without expiration (2100-01-01).
const farFuture = 4102444800

// Store implements ports.FlowStore using Redis.
// Each flow is a JSON string; a sorted set indexes agent IDs by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for flows.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for flows.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Prefix returns the key prefix.
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) key(agentID string) string {
	return s.prefix + agentID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the flow to Redis.
func (s *Store) Save(ctx context.Context, agentID string, flow domain.Flow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(agentID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: agentID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the flow from Redis.
func (s *Store) Load(ctx context.Context, agentID string) (domain.Flow, error) {
	val, err := s.client.Get(ctx, s.key(agentID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Flow{}, domain.ErrFlowNotFound
		}
		return domain.Flow{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var flow domain.Flow
	if err := json.Unmarshal(val, &flow); err != nil {
		return domain.Flow{}, fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return flow, nil
}

// Delete removes the flow and its index entry.
func (s *Store) Delete(ctx context.Context, agentID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(agentID))
	pipe.ZRem(ctx, s.indexKey(), agentID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns agent IDs with a live flow.
// Expired entries are pruned from the index lazily on each call.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired flows: %w", err)
	}

	agents, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	return agents, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
