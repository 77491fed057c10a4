package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createLoggingMiddleware creates middleware that logs all MCP method calls
func createLoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(
			ctx context.Context,
			method string,
			req mcp.Request,
		) (mcp.Result, error) {
			start := time.Now()
			sessionID := sessionID(req)

			logger.Debug("request", "session", sessionID, "method", method)

			result, err := next(ctx, method, req)

			duration := time.Since(start)
			if err != nil {
				logger.Error("response", "session", sessionID, "method", method,
					"status", "error", "duration", duration, "error", err)
			} else {
				logger.Info("response", "session", sessionID, "method", method,
					"status", "ok", "duration", duration)
			}

			return result, err
		}
	}
}

func sessionID(req mcp.Request) string {
	if req == nil || req.GetSession() == nil {
		return ""
	}
	return req.GetSession().ID()
}
