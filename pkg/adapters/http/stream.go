package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/plotline/pkg/domain"
)

// FlowEventType names what happened to an agent's flow.
type FlowEventType string

const (
	EventFlowUpdated  FlowEventType = "updated"
	EventFlowReplaced FlowEventType = "replaced"
	EventFlowDeleted  FlowEventType = "deleted"
)

// FlowEvent is pushed to SSE subscribers of an agent.
// Updates carry a Diff; full replacements (parse, relayout) carry the Flow.
type FlowEvent struct {
	Type    FlowEventType    `json:"type"`
	AgentID string           `json:"agent_id"`
	Diff    *domain.FlowDiff `json:"diff,omitempty"`
	Flow    *domain.Flow     `json:"flow,omitempty"`
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // AgentID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      slog.Default(),
	}
}

func (sm *StreamManager) Subscribe(agentID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[agentID]; !ok {
		sm.subscribers[agentID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[agentID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[agentID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, agentID)
			}
		}
	}
}

// Subscribers returns the number of open streams for agentID.
func (sm *StreamManager) Subscribers(agentID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[agentID])
}

func (sm *StreamManager) Broadcast(agentID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[agentID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "agent_id", agentID)
			}
		}
	}
}

func (s *Server) publish(evt FlowEvent) {
	bytes, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("SSE: event encode failed", "error", err)
		return
	}
	s.Streams.Broadcast(evt.AgentID, string(bytes))
}

// SubscribeEvents handles the GET /agents/{agentID}/events request (SSE).
// The optional "types" query parameter is a comma-separated filter on FlowEvent.Type.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var filter map[FlowEventType]bool
	if raw := r.URL.Query().Get("types"); raw != "" {
		filter = make(map[FlowEventType]bool)
		for _, t := range strings.Split(raw, ",") {
			filter[FlowEventType(strings.TrimSpace(t))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(agentID)
	defer cancel()

	s.logger.Info("SSE: Subscribing to flow updates", "agent_id", agentID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "agent_id", agentID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if filter != nil {
				var evt FlowEvent
				if err := json.Unmarshal([]byte(msg), &evt); err == nil && !filter[evt.Type] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
