package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSynthesized EventType = "synthesized"
	EventFallback    EventType = "fallback"
	EventEdgeDropped EventType = "edge_dropped"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// SynthesisEvent reports the outcome of one synthesis run.
type SynthesisEvent struct {
	EventBase
	Stage     string        `json:"stage"`
	NodeCount int           `json:"node_count"`
	EdgeCount int           `json:"edge_count"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// EdgeEvent reports an edge dropped during normalization.
type EdgeEvent struct {
	EventBase
	EdgeID string `json:"edge_id"`
	Reason string `json:"reason"`
}

// SynthesisHooks defines callbacks for pipeline observability.
type SynthesisHooks struct {
	OnSynthesized func(context.Context, *SynthesisEvent)
	OnFallback    func(context.Context, *SynthesisEvent)
	OnEdgeDropped func(context.Context, *EdgeEvent)
}
