package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/plotline/internal/logging"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/layout"
	"github.com/aretw0/plotline/pkg/ports"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/aretw0/plotline/pkg/synth"
)

// DefaultLockTTL bounds how long a crashed replica can hold an agent's flow.
const DefaultLockTTL = 30 * time.Second

// EmptyScenarioText is rendered when an agent has neither a flow nor scenario text.
const EmptyScenarioText = "No scenario configured."

// UpdateResult is the outcome of replacing an agent's flow.
type UpdateResult struct {
	Flow     domain.Flow      `json:"flow"`
	Diff     *domain.FlowDiff `json:"diff,omitempty"`
	Warnings []schema.Warning `json:"warnings,omitempty"`
}

// ParseResult is the outcome of synthesizing a flow from text.
type ParseResult struct {
	Flow       domain.Flow
	Diagnostic synth.Diagnostic
}

// Manager orchestrates flow access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store  ports.FlowStore
	synth  *synth.Synthesizer
	layout *layout.Engine

	normalize  []schema.Option
	autoLayout bool

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLayout sets the layout engine used for re-layout and position filling.
func WithLayout(engine *layout.Engine) Option {
	return func(m *Manager) {
		if engine != nil {
			m.layout = engine
		}
	}
}

// WithAutoLayout lays out every synthesized flow before it is returned or stored.
func WithAutoLayout() Option {
	return func(m *Manager) {
		m.autoLayout = true
	}
}

// WithNormalizeOptions configures how caller-supplied flows are normalized.
func WithNormalizeOptions(opts ...schema.Option) Option {
	return func(m *Manager) {
		m.normalize = append(m.normalize, opts...)
	}
}

// NewManager creates a new flow Manager.
func NewManager(store ports.FlowStore, synthesizer *synth.Synthesizer, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		synth:   synthesizer,
		layout:  layout.New(),
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.synth == nil {
		m.synth = synth.New(nil)
	}
	return m
}

// Parse synthesizes a flow from text. When agentID is set the flow is stored for it.
// Synthesis itself never fails; the error only reports storage problems.
func (m *Manager) Parse(ctx context.Context, text, agentID string) (ParseResult, error) {
	if agentID == "" {
		return m.synthesize(ctx, text)
	}

	var res ParseResult
	err := m.WithLock(ctx, agentID, func(ctx context.Context) error {
		var err error
		res, err = m.synthesize(ctx, text)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, agentID, res.Flow); err != nil {
			return fmt.Errorf("failed to save flow: %w", err)
		}
		return nil
	})
	return res, err
}

// Get returns the agent's stored flow. When none exists it synthesizes one
// from scenarioText and stores it; with no text it returns an unsaved
// placeholder flow.
func (m *Manager) Get(ctx context.Context, agentID, scenarioText string) (domain.Flow, error) {
	var flow domain.Flow
	err := m.WithLock(ctx, agentID, func(ctx context.Context) error {
		var err error
		flow, err = m.store.Load(ctx, agentID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrFlowNotFound) {
			return fmt.Errorf("failed to load flow: %w", err)
		}

		if strings.TrimSpace(scenarioText) == "" {
			flow = synth.Fallback(EmptyScenarioText)
			return nil
		}

		res, err := m.synthesize(ctx, scenarioText)
		if err != nil {
			return err
		}
		flow = res.Flow
		if err := m.store.Save(ctx, agentID, flow); err != nil {
			return fmt.Errorf("failed to save flow: %w", err)
		}
		return nil
	})
	return flow, err
}

// Update replaces the agent's flow with a caller-supplied one.
//
// The flow is normalized first (invalid edges dropped, or rejected in strict
// mode). Nodes sent without a position keep the stored position of the node
// with the same id; any still unplaced take their computed layout position.
func (m *Manager) Update(ctx context.Context, agentID string, flow domain.Flow) (UpdateResult, error) {
	opts := append([]schema.Option{schema.AllowMissingPositions()}, m.normalize...)
	norm, err := schema.NormalizeFlow(flow, opts...)
	if err != nil {
		return UpdateResult{}, err
	}

	var res UpdateResult
	err = m.WithLock(ctx, agentID, func(ctx context.Context) error {
		var prev *domain.Flow
		stored, err := m.store.Load(ctx, agentID)
		switch {
		case err == nil:
			prev = &stored
		case !errors.Is(err, domain.ErrFlowNotFound):
			return fmt.Errorf("failed to load flow: %w", err)
		}

		merged, err := m.mergePositions(norm.Flow, prev)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, agentID, merged); err != nil {
			return fmt.Errorf("failed to save flow: %w", err)
		}

		res = UpdateResult{
			Flow:     merged,
			Diff:     domain.Diff(prev, &merged),
			Warnings: norm.Warnings,
		}
		return nil
	})
	if err != nil {
		return UpdateResult{}, err
	}

	if len(res.Warnings) > 0 {
		m.logger.Info("Flow updated with repairs", "agent_id", agentID, "warnings", len(res.Warnings))
	}
	return res, nil
}

// Relayout recomputes every position of the stored flow and saves it.
// Returns domain.ErrFlowNotFound if the agent has no flow.
func (m *Manager) Relayout(ctx context.Context, agentID string) (domain.Flow, error) {
	var flow domain.Flow
	err := m.WithLock(ctx, agentID, func(ctx context.Context) error {
		stored, err := m.store.Load(ctx, agentID)
		if err != nil {
			return fmt.Errorf("failed to load flow: %w", err)
		}
		flow, err = m.layout.Apply(stored)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, agentID, flow); err != nil {
			return fmt.Errorf("failed to save flow: %w", err)
		}
		return nil
	})
	return flow, err
}

// Layout normalizes and lays out a flow without touching storage.
func (m *Manager) Layout(flow domain.Flow) (domain.Flow, []schema.Warning, error) {
	opts := append([]schema.Option{schema.AllowMissingPositions()}, m.normalize...)
	norm, err := schema.NormalizeFlow(flow, opts...)
	if err != nil {
		return domain.Flow{}, nil, err
	}
	out, err := m.layout.Apply(norm.Flow)
	if err != nil {
		return domain.Flow{}, nil, err
	}
	return out, norm.Warnings, nil
}

// Delete removes the agent's flow.
func (m *Manager) Delete(ctx context.Context, agentID string) error {
	return m.WithLock(ctx, agentID, func(ctx context.Context) error {
		return m.store.Delete(ctx, agentID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying flow store.
func (m *Manager) Store() ports.FlowStore {
	return m.store
}

// LayoutEngine returns the layout engine.
func (m *Manager) LayoutEngine() *layout.Engine {
	return m.layout
}

func (m *Manager) synthesize(ctx context.Context, text string) (ParseResult, error) {
	flow, diag := m.synth.Synthesize(ctx, text)
	if m.autoLayout {
		placed, err := m.layout.Apply(flow)
		if err != nil {
			return ParseResult{}, err
		}
		flow = placed
	}
	return ParseResult{Flow: flow, Diagnostic: diag}, nil
}

// mergePositions fills missing positions from prev, then from a fresh layout.
func (m *Manager) mergePositions(flow domain.Flow, prev *domain.Flow) (domain.Flow, error) {
	var stored map[string]*domain.Position
	if prev != nil {
		stored = make(map[string]*domain.Position, len(prev.Nodes))
		for _, n := range prev.Nodes {
			if n.Position != nil {
				stored[n.ID] = n.Position
			}
		}
	}

	out := flow.Clone()
	unplaced := false
	for i := range out.Nodes {
		node := &out.Nodes[i]
		if node.Position != nil {
			continue
		}
		if p, ok := stored[node.ID]; ok {
			pos := *p
			node.Position = &pos
			continue
		}
		unplaced = true
	}
	if !unplaced {
		return out, nil
	}

	placed, err := m.layout.Apply(out)
	if err != nil {
		return domain.Flow{}, err
	}
	for i := range out.Nodes {
		if out.Nodes[i].Position == nil {
			pos := *placed.Nodes[i].Position
			out.Nodes[i].Position = &pos
		}
	}
	return out, nil
}
