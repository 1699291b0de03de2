package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meyannis/mcpgmail/internal/instrumentation"
	"github.com/meyannis/mcpgmail/internal/logging"
	"github.com/meyannis/mcpgmail/internal/server"
)

// ToolHandler is the handler signature registered on the MCP server.
type ToolHandler = mcpserver.ToolHandlerFunc

// InstrumentedToolHandler wraps a tool handler with metrics and structured
// logging. A handler returning a tool-level error result counts as an error
// even when the Go error is nil.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, sc.Account(), duration)
		}

		attrs := []slog.Attr{
			logging.Tool(toolName),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
		}
		if account := sc.Account(); account != "" {
			attrs = append(attrs, logging.UserHash(account))
		}
		if err != nil {
			attrs = append(attrs, logging.Err(err))
		}
		slog.LogAttrs(ctx, slog.LevelInfo, "tool invocation", attrs...)

		return result, err
	}
}
