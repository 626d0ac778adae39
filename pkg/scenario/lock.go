package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/plotline/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(agentID) after unlocking.
func (m *Manager) acquire(agentID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agentID]
	if !exists {
		entry = &lockEntry{}
		m.locks[agentID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agentID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, agentID)
	}
}

// WithLock executes fn while holding the lock for the agent's flow.
func (m *Manager) WithLock(ctx context.Context, agentID string, fn func(context.Context) error) error {
	entry := m.acquire(agentID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(agentID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, lockKey(agentID), m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer m.releaseDistributed(ctx, agentID, unlock)
	}

	return fn(ctx)
}

func (m *Manager) releaseDistributed(ctx context.Context, agentID string, unlock ports.UnlockFunc) {
	// The caller's context may already be done; the unlock must still go out.
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
			"agent_id", agentID,
			"err", err,
		)
	}
}

func lockKey(agentID string) string {
	return "flow:" + agentID
}
