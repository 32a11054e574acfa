package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/runner"
	"github.com/aretw0/pipedeck/pkg/status"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Controller is the part of the Deck the MCP tools drive.
type Controller interface {
	Trigger(ctx context.Context, slot string, kind domain.ActionKind, params map[string]any) (*runner.Run, error)
	Snapshot(slot string) (*status.Snapshot, error)
	Cancel(ctx context.Context, slot string) error
	Active() []string
	SearchUploads(ctx context.Context, term string) ([]domain.UploadRecord, error)
}

// TriggerResponse acknowledges a started run.
type TriggerResponse struct {
	Slot  string            `json:"slot" jsonschema_description:"The slot the action runs in"`
	RunID string            `json:"run_id" jsonschema_description:"Identifier of the started run"`
	Kind  domain.ActionKind `json:"kind" jsonschema_description:"The action kind"`
}

// StatusResponse is the status of one slot.
type StatusResponse struct {
	Slot     string                  `json:"slot" jsonschema_description:"The slot name"`
	Phase    domain.Phase            `json:"phase" jsonschema_description:"Lifecycle phase of the run"`
	Done     bool                    `json:"done" jsonschema_description:"True once the run is complete; poll again while false"`
	Lines    []string                `json:"lines" jsonschema_description:"Status lines, at most one progress line"`
	Progress string                  `json:"progress,omitempty" jsonschema_description:"Latest transfer progress value"`
	ExitCode int                     `json:"exit_code" jsonschema_description:"Exit code of the tool once done"`
	Result   *domain.ExtractedResult `json:"result,omitempty" jsonschema_description:"Links, balances or reports extracted from the output"`
}

// Server exposes a Controller as an MCP Server.
type Server struct {
	deck      Controller
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(deck Controller, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		deck:      deck,
		mcpServer: server.NewMCPServer("pipedeck-mcp", strings.TrimSpace(version)),
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

// ServeSSE starts the server on the given port using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

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
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	triggerTool := mcp.NewTool("trigger_action",
		mcp.WithDescription("Start an action of the pipe CLI in a named slot. Poll get_status until done is true."),
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot name; one run per slot at a time")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Action kind: "+kindList())),
		mcp.WithString("params", mcp.Description("JSON object of action parameters (optional)")),
		mcp.WithOutputSchema[TriggerResponse](),
	)
	s.mcpServer.AddTool(triggerTool, mcp.NewStructuredToolHandler(s.handleTrigger))

	statusTool := mcp.NewTool("get_status",
		mcp.WithDescription("Get the latest status snapshot of a slot. Never blocks."),
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot name")),
		mcp.WithOutputSchema[StatusResponse](),
	)
	s.mcpServer.AddTool(statusTool, mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("cancel_action",
		mcp.WithDescription("Cancel the running action of a slot."),
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slot, _ := request.GetArguments()["slot"].(string)
		if err := s.deck.Cancel(ctx, slot); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cancel failed: %v", err)), nil
		}
		return mcp.NewToolResultText("cancellation requested for " + slot), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("list_uploads",
		mcp.WithDescription("List uploads recorded by the pipe CLI, newest first."),
		mcp.WithString("term", mcp.Description("Search term (optional); the hash matches case-sensitively")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, _ := request.GetArguments()["term"].(string)
		records, err := s.deck.SearchUploads(ctx, term)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list uploads failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(records)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func kindList() string {
	kinds := domain.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func (s *Server) handleTrigger(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TriggerResponse, error) {
	slot, _ := args["slot"].(string)
	kind, _ := args["kind"].(string)

	var params map[string]any
	switch raw := args["params"].(type) {
	case string:
		if strings.TrimSpace(raw) != "" {
			if err := json.Unmarshal([]byte(raw), &params); err != nil {
				return TriggerResponse{}, fmt.Errorf("params must be a JSON object: %w", err)
			}
		}
	case map[string]any:
		params = raw
	}

	run, err := s.deck.Trigger(ctx, slot, domain.ActionKind(kind), params)
	if err != nil {
		s.logger.Warn("MCP trigger rejected", "slot", slot, "kind", kind, "err", err)
		return TriggerResponse{}, fmt.Errorf("trigger failed: %w", err)
	}
	return TriggerResponse{Slot: slot, RunID: run.ID, Kind: domain.ActionKind(kind)}, nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StatusResponse, error) {
	slot, _ := args["slot"].(string)
	snap, err := s.deck.Snapshot(slot)
	if err != nil {
		return StatusResponse{}, err
	}
	resp := StatusResponse{
		Slot:     slot,
		Phase:    snap.Phase,
		Done:     snap.Done,
		Lines:    snap.Lines,
		ExitCode: snap.ExitCode,
		Result:   snap.Result,
	}
	if v, ok := snap.Progress(); ok {
		resp.Progress = v
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("pipedeck://active", "Slots with a run in progress",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		active := s.deck.Active()
		if active == nil {
			active = []string{}
		}
		jsonBytes, _ := json.Marshal(active)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "pipedeck://active",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
