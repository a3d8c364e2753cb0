package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/bryanchriswhite/WindowShot/internal/session"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"list_windows": {
		def: mcp.NewTool("list_windows",
			mcp.WithDescription("Re-enumerate top-level windows and return the capturable titles"),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListWindows },
	},
	"capture_window": {
		def: mcp.NewTool("capture_window",
			mcp.WithDescription("Raise a window, grab its on-screen rectangle and save it as the next testN.png"),
			mcp.WithString("title", mcp.Description("Window title as returned by list_windows (default: current selection)")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCaptureWindow },
	},
	"toggle_auto": {
		def: mcp.NewTool("toggle_auto",
			mcp.WithDescription("Start or stop capturing the selected window on a fixed interval"),
			mcp.WithString("title", mcp.Description("Select this window before starting")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleToggleAuto },
	},
	"status": {
		def: mcp.NewTool("status",
			mcp.WithDescription("Return the latest status message, selection, save directory and auto-capture state"),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
}

// AllToolNames returns a list of all tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with the capture tools registered.
func NewServer(ctrl *session.Controller, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"windowshot",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(ctrl)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(ctrl *session.Controller, version string) error {
	return server.ServeStdio(NewServer(ctrl, version))
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	ctrl *session.Controller
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctrl *session.Controller) *Handlers {
	return &Handlers{ctrl: ctrl}
}

// TitleRequest is the argument of capture_window and toggle_auto.
type TitleRequest struct {
	Title string `json:"title,omitempty"`
}

// StatusOutput is the result of the status tool.
type StatusOutput struct {
	Status        session.Status `json:"status"`
	Selected      string         `json:"selected"`
	SaveDir       string         `json:"save_dir"`
	AutoCapturing bool           `json:"auto_capturing"`
}

// HandleListWindows handles the list_windows tool call.
func (h *Handlers) HandleListWindows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ctrl.Refresh()
	return successResult(map[string]any{
		"windows":  h.ctrl.Windows(),
		"selected": h.ctrl.Selected(),
	})
}

// HandleCaptureWindow handles the capture_window tool call.
func (h *Handlers) HandleCaptureWindow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TitleRequest](req)
	if err != nil {
		return errorResult(shoterrors.NewInvalidRequest(err.Error())), nil
	}

	title := input.Title
	if title == "" {
		title = h.ctrl.Selected()
	}

	saved, err := h.ctrl.CaptureOnce(ctx, title)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(saved)
}

// HandleToggleAuto handles the toggle_auto tool call.
func (h *Handlers) HandleToggleAuto(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TitleRequest](req)
	if err != nil {
		return errorResult(shoterrors.NewInvalidRequest(err.Error())), nil
	}

	if input.Title != "" {
		if err := h.ctrl.Select(input.Title); err != nil {
			return errorResult(err), nil
		}
	}

	on := h.ctrl.ToggleAuto()
	return successResult(map[string]any{
		"auto_capturing": on,
		"status":         h.ctrl.Status(),
	})
}

// HandleStatus handles the status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(StatusOutput{
		Status:        h.ctrl.Status(),
		Selected:      h.ctrl.Selected(),
		SaveDir:       h.ctrl.SaveDir(),
		AutoCapturing: h.ctrl.AutoCapturing(),
	})
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// errorResult creates an MCP error result with IsError set.
func errorResult(err error) *mcp.CallToolResult {
	payload := map[string]any{
		"error": map[string]any{
			"code":    shoterrors.CodeOf(err),
			"message": err.Error(),
			"status":  shoterrors.StatusOf(err),
		},
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
