package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/calcmcp/calcmcp-go/internal/core/domain"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/logger"
	"github.com/calcmcp/calcmcp-go/internal/telemetry/metric"
)

// sessionTouchMiddleware records activity for the calling MCP client
// session on every tool invocation. A touch that fails never fails the
// tool call: the registry may legitimately be shutting down, and the
// arithmetic result is still valid either way.
func sessionTouchMiddleware(deps Deps) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if cs := server.ClientSessionFromContext(ctx); cs != nil {
				id := cs.SessionID()
				if _, err := deps.Sessions.CreateOrTouch(ctx, id, nil); err != nil {
					if errors.Is(err, domain.ErrNotRunning) {
						deps.Log.Debug("session touch skipped, handler not running", "session_id", id)
					} else {
						deps.Log.Warn("session touch failed", "session_id", id, "error", err)
					}
				} else {
					ctx = logger.WithSessionID(ctx, id)
				}
			}
			return next(ctx, req)
		}
	}
}

// rateLimitMiddleware applies a global token-bucket limit across all
// tool invocations.
func rateLimitMiddleware(limiter *rate.Limiter) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if !limiter.Allow() {
				return mcp.NewToolResultError("Error: Too many requests. Please slow down."), nil
			}
			return next(ctx, req)
		}
	}
}

// metricsMiddleware counts tool invocations by tool name and outcome.
func metricsMiddleware(m *metric.Metrics) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := next(ctx, req)

			status := "ok"
			if err != nil || (result != nil && result.IsError) {
				status = "error"
			}
			m.ToolInvocations.WithLabelValues(req.Params.Name, status).Inc()
			return result, err
		}
	}
}
