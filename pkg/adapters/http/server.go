package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/plotline/internal/logging"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/scenario"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/aretw0/plotline/pkg/synth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; flows are small documents.
const maxBodyBytes = 1 << 20

// FlowService is the flow manager as seen by the HTTP layer.
type FlowService interface {
	Parse(ctx context.Context, text, agentID string) (scenario.ParseResult, error)
	Get(ctx context.Context, agentID, scenarioText string) (domain.Flow, error)
	Update(ctx context.Context, agentID string, flow domain.Flow) (scenario.UpdateResult, error)
	Relayout(ctx context.Context, agentID string) (domain.Flow, error)
	Layout(flow domain.Flow) (domain.Flow, []schema.Warning, error)
	Delete(ctx context.Context, agentID string) error
	List(ctx context.Context) ([]string, error)
}

// Ensure the manager satisfies FlowService
var _ FlowService = (*scenario.Manager)(nil)

// Server serves the flow REST API.
type Server struct {
	Flows   FlowService
	Streams *StreamManager

	logger   *slog.Logger
	metrics  http.Handler
	version  string
	validate *validator.Validate
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion is reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler creates a new HTTP handler for the flow service.
func NewHandler(flows FlowService, opts ...Option) http.Handler {
	server := &Server{
		Flows:    flows,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
		version:  "dev",
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(server.requestID)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	r.Post("/scenario/parse", server.ParseScenario)
	r.Post("/layout", server.LayoutFlow)

	r.Get("/agents", server.ListAgents)
	r.Route("/agents/{agentID}", func(r chi.Router) {
		r.Get("/flow", server.GetFlow)
		r.Put("/flow", server.PutFlow)
		r.Delete("/flow", server.DeleteFlow)
		r.Post("/flow/layout", server.RelayoutFlow)
		r.Get("/events", server.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID echoes X-Request-ID, minting one when the client sent none.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "request_id", id)
		next.ServeHTTP(w, r)
	})
}

// ParseRequest is the body of POST /scenario/parse.
type ParseRequest struct {
	Text    string `json:"text"`
	AgentID string `json:"agent_id,omitempty" validate:"omitempty,max=128,printascii"`
}

// DiagnosticResponse describes how a synthesis run went.
type DiagnosticResponse struct {
	RunID      string           `json:"run_id"`
	Stage      string           `json:"stage"`
	Fallback   bool             `json:"fallback"`
	Error      string           `json:"error,omitempty"`
	Warnings   []schema.Warning `json:"warnings,omitempty"`
	DurationMS int64            `json:"duration_ms"`
}

// ParseResponse is the answer of POST /scenario/parse.
type ParseResponse struct {
	Flow       domain.Flow        `json:"flow"`
	Diagnostic DiagnosticResponse `json:"diagnostic"`
}

// LayoutResponse is the answer of POST /layout.
type LayoutResponse struct {
	Flow     domain.Flow      `json:"flow"`
	Warnings []schema.Warning `json:"warnings,omitempty"`
}

func newDiagnosticResponse(d synth.Diagnostic) DiagnosticResponse {
	resp := DiagnosticResponse{
		RunID:      d.RunID,
		Stage:      string(d.Stage),
		Fallback:   d.Fallback,
		Warnings:   d.Warnings,
		DurationMS: d.Duration.Milliseconds(),
	}
	if d.Err != nil {
		resp.Error = d.Err.Error()
	}
	return resp
}

// ParseScenario handles the POST /scenario/parse request.
func (s *Server) ParseScenario(w http.ResponseWriter, r *http.Request) {
	var body ParseRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.validate.Struct(body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	res, err := s.Flows.Parse(r.Context(), body.Text, body.AgentID)
	if err != nil {
		s.fail(w, "Parse", err)
		return
	}
	if body.AgentID != "" {
		s.publish(FlowEvent{Type: EventFlowReplaced, AgentID: body.AgentID, Flow: &res.Flow})
	}

	s.respond(w, http.StatusOK, ParseResponse{
		Flow:       res.Flow,
		Diagnostic: newDiagnosticResponse(res.Diagnostic),
	})
}

// LayoutFlow handles the POST /layout request. Nothing is stored.
func (s *Server) LayoutFlow(w http.ResponseWriter, r *http.Request) {
	var flow domain.Flow
	if !s.decode(w, r, &flow) {
		return
	}

	out, warnings, err := s.Flows.Layout(flow)
	if err != nil {
		s.fail(w, "Layout", err)
		return
	}
	s.respond(w, http.StatusOK, LayoutResponse{Flow: out, Warnings: warnings})
}

// ListAgents handles the GET /agents request.
func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Flows.List(r.Context())
	if err != nil {
		s.fail(w, "List", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.respond(w, http.StatusOK, map[string][]string{"agents": ids})
}

// GetFlow handles the GET /agents/{agentID}/flow request.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}

	flow, err := s.Flows.Get(r.Context(), agentID, r.URL.Query().Get("scenario"))
	if err != nil {
		s.fail(w, "Get", err)
		return
	}
	s.respond(w, http.StatusOK, flow)
}

// PutFlow handles the PUT /agents/{agentID}/flow request.
func (s *Server) PutFlow(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}
	var flow domain.Flow
	if !s.decode(w, r, &flow) {
		return
	}

	res, err := s.Flows.Update(r.Context(), agentID, flow)
	if err != nil {
		s.fail(w, "Update", err)
		return
	}
	if res.Diff != nil {
		s.publish(FlowEvent{Type: EventFlowUpdated, AgentID: agentID, Diff: res.Diff})
	} else {
		s.logger.Debug("Update: No diff calculated", "agent_id", agentID)
	}
	s.respond(w, http.StatusOK, res)
}

// RelayoutFlow handles the POST /agents/{agentID}/flow/layout request.
func (s *Server) RelayoutFlow(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}

	flow, err := s.Flows.Relayout(r.Context(), agentID)
	if err != nil {
		s.fail(w, "Relayout", err)
		return
	}
	s.publish(FlowEvent{Type: EventFlowReplaced, AgentID: agentID, Flow: &flow})
	s.respond(w, http.StatusOK, flow)
}

// DeleteFlow handles the DELETE /agents/{agentID}/flow request.
func (s *Server) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	agentID, ok := s.agentID(w, r)
	if !ok {
		return
	}

	if err := s.Flows.Delete(r.Context(), agentID); err != nil {
		s.fail(w, "Delete", err)
		return
	}
	s.publish(FlowEvent{Type: EventFlowDeleted, AgentID: agentID})
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"app":     "plotline-http",
		"version": s.version,
	})
}

// -- Helpers --

func (s *Server) agentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "agentID")
	if err := s.validate.Var(id, "required,max=128,printascii"); err != nil {
		http.Error(w, "Invalid agent id", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	var (
		validationErr   *domain.ValidationError
		preconditionErr *domain.PreconditionError
	)
	switch {
	case errors.Is(err, domain.ErrFlowNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &validationErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &preconditionErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.logger.Error(op+" failed", "error", err)
	}
}
