package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/plotline/pkg/domain"
)

// Store implements ports.FlowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Flow
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Flow),
	}
}

// Save persists a deep copy of the flow, so later caller mutations do not leak in.
func (s *Store) Save(ctx context.Context, agentID string, flow domain.Flow) error {
	copied := flow.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[agentID] = copied
	return nil
}

// Load retrieves a copy of the flow from memory.
func (s *Store) Load(ctx context.Context, agentID string) (domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, ok := s.data[agentID]
	if !ok {
		return domain.Flow{}, domain.ErrFlowNotFound
	}
	return flow.Clone(), nil
}

// Delete removes the flow.
func (s *Store) Delete(ctx context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, agentID)
	return nil
}

// List returns the agents with a stored flow, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]string, 0, len(s.data))
	for id := range s.data {
		agents = append(agents, id)
	}
	sort.Strings(agents)
	return agents, nil
}
