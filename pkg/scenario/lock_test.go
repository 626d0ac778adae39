package scenario

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/plotline/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, agentID string, flow domain.Flow) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, agentID string) (domain.Flow, error) {
	return domain.Flow{}, domain.ErrFlowNotFound
}
func (m *MockStore) Delete(ctx context.Context, agentID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)       { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{}, nil)
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("agent-%d", i)
		_, _ = mgr.Get(ctx, id, "")
		_ = mgr.Delete(ctx, id)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
