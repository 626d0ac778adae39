package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/plotline/internal/logging"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/scenario"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const agentsURI = "plotline://agents"

// FlowService is the flow manager as seen by MCP clients.
type FlowService interface {
	Parse(ctx context.Context, text, agentID string) (scenario.ParseResult, error)
	Get(ctx context.Context, agentID, scenarioText string) (domain.Flow, error)
	Update(ctx context.Context, agentID string, flow domain.Flow) (scenario.UpdateResult, error)
	Layout(flow domain.Flow) (domain.Flow, []schema.Warning, error)
	List(ctx context.Context) ([]string, error)
}

// SynthesizeResponse is the result of synthesize_flow.
type SynthesizeResponse struct {
	Flow     domain.Flow      `json:"flow" jsonschema_description:"The synthesized flow"`
	Fallback bool             `json:"fallback" jsonschema_description:"True when the generator output was unusable and the default flow was returned"`
	Stage    string           `json:"stage" jsonschema_description:"Pipeline stage where the run ended"`
	Error    string           `json:"error,omitempty" jsonschema_description:"Why the run fell back"`
	Warnings []schema.Warning `json:"warnings,omitempty" jsonschema_description:"Repairs applied to the generated flow"`
}

// LayoutResponse is the result of layout_flow.
type LayoutResponse struct {
	Flow     domain.Flow      `json:"flow" jsonschema_description:"The flow with computed positions"`
	Warnings []schema.Warning `json:"warnings,omitempty" jsonschema_description:"Repairs applied before layout"`
}

// SynthesizeArgs are the arguments of synthesize_flow.
type SynthesizeArgs struct {
	Text    string `json:"text"`
	AgentID string `json:"agent_id,omitempty"`
}

// LayoutArgs are the arguments of layout_flow.
type LayoutArgs struct {
	Flow string `json:"flow"`
}

// UpdateArgs are the arguments of update_flow.
type UpdateArgs struct {
	AgentID string `json:"agent_id"`
	Flow    string `json:"flow"`
}

// Server exposes the flow manager as an MCP Server.
type Server struct {
	flows     FlowService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(flows FlowService, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		flows:     flows,
		mcpServer: server.NewMCPServer("plotline-mcp", version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: synthesize_flow
	synthTool := mcp.NewTool("synthesize_flow",
		mcp.WithDescription("Turn a natural-language scenario into a flow of nodes and edges. Always returns a flow; check 'fallback' to see whether the generator output was usable."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The scenario description")),
		mcp.WithString("agent_id", mcp.Description("Store the flow for this agent (optional)")),
		mcp.WithOutputSchema[SynthesizeResponse](),
	)
	s.mcpServer.AddTool(synthTool, mcp.NewStructuredToolHandler(s.handleSynthesize))

	// TOOL: layout_flow
	layoutTool := mcp.NewTool("layout_flow",
		mcp.WithDescription("Compute positions for every node of a flow. Nothing is stored."),
		mcp.WithString("flow", mcp.Required(), mcp.Description(`JSON object {"nodes":[...],"edges":[...]}`)),
		mcp.WithOutputSchema[LayoutResponse](),
	)
	s.mcpServer.AddTool(layoutTool, mcp.NewStructuredToolHandler(s.handleLayout))

	// TOOL: update_flow
	updateTool := mcp.NewTool("update_flow",
		mcp.WithDescription("Replace an agent's flow. Nodes without a position keep their stored one."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent ID")),
		mcp.WithString("flow", mcp.Required(), mcp.Description(`JSON object {"nodes":[...],"edges":[...]}`)),
		mcp.WithOutputSchema[scenario.UpdateResult](),
	)
	s.mcpServer.AddTool(updateTool, mcp.NewStructuredToolHandler(s.handleUpdate))

	// TOOL: get_flow
	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the flow stored for an agent, synthesizing it from 'scenario' when none exists."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent ID")),
		mcp.WithString("scenario", mcp.Description("Scenario text used when the agent has no flow (optional)")),
	), s.handleGetFlow)
}

// Handler methods for structured tools

func (s *Server) handleSynthesize(ctx context.Context, request mcp.CallToolRequest, args SynthesizeArgs) (SynthesizeResponse, error) {
	res, err := s.flows.Parse(ctx, args.Text, args.AgentID)
	if err != nil {
		return SynthesizeResponse{}, fmt.Errorf("synthesize failed: %w", err)
	}

	resp := SynthesizeResponse{
		Flow:     res.Flow,
		Fallback: res.Diagnostic.Fallback,
		Stage:    string(res.Diagnostic.Stage),
		Warnings: res.Diagnostic.Warnings,
	}
	if res.Diagnostic.Err != nil {
		resp.Error = res.Diagnostic.Err.Error()
	}
	return resp, nil
}

func (s *Server) handleLayout(ctx context.Context, request mcp.CallToolRequest, args LayoutArgs) (LayoutResponse, error) {
	flow, err := decodeFlow(args.Flow)
	if err != nil {
		return LayoutResponse{}, err
	}
	out, warnings, err := s.flows.Layout(flow)
	if err != nil {
		return LayoutResponse{}, fmt.Errorf("layout failed: %w", err)
	}
	return LayoutResponse{Flow: out, Warnings: warnings}, nil
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest, args UpdateArgs) (scenario.UpdateResult, error) {
	if args.AgentID == "" {
		return scenario.UpdateResult{}, errors.New("agent_id is required")
	}
	flow, err := decodeFlow(args.Flow)
	if err != nil {
		return scenario.UpdateResult{}, err
	}
	res, err := s.flows.Update(ctx, args.AgentID, flow)
	if err != nil {
		return scenario.UpdateResult{}, fmt.Errorf("update failed: %w", err)
	}
	return res, nil
}

func (s *Server) handleGetFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := request.GetString("agent_id", "")
	if agentID == "" {
		return mcp.NewToolResultError("agent_id is required"), nil
	}

	flow, err := s.flows.Get(ctx, agentID, request.GetString("scenario", ""))
	if err != nil {
		s.logger.Error("MCP get_flow failed", "agent_id", agentID, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("get flow failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(flow)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: plotline://agents
	s.mcpServer.AddResource(mcp.NewResource(agentsURI, "Agents with a stored flow",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.flows.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list agents: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      agentsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func decodeFlow(raw string) (domain.Flow, error) {
	var flow domain.Flow
	if err := json.Unmarshal([]byte(raw), &flow); err != nil {
		return domain.Flow{}, fmt.Errorf("flow is not valid JSON: %w", err)
	}
	return flow, nil
}
