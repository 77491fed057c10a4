package sandbox

import (
	"context"
	"encoding/json"
	"log/slog"

	extism "github.com/extism/go-sdk"
)

// LogMessage is a log record emitted by a compiler plugin
type LogMessage struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// LogResponse acknowledges a log record
type LogResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// createLogHostFunc creates the host function that forwards plugin logs to
// logger
func createLogHostFunc(logger *slog.Logger) extism.HostFunction {
	return extism.NewHostFunctionWithStack(
		"hostLog",
		func(ctx context.Context, plugin *extism.CurrentPlugin, stack []uint64) {
			offset := stack[0]
			inputData, err := plugin.ReadBytes(offset)
			if err != nil {
				plugin.Logf(extism.LogLevelError, "Failed to read input: %v", err)
				stack[0] = 0
				return
			}

			var msg LogMessage
			if err := json.Unmarshal(inputData, &msg); err != nil {
				writeResponse(plugin, stack, LogResponse{Error: "Invalid log message format"})
				return
			}

			logPluginMessage(ctx, logger, msg)
			writeResponse(plugin, stack, LogResponse{Success: true})
		},
		[]extism.ValueType{extism.ValueTypeI64}, // input: offset to log JSON
		[]extism.ValueType{extism.ValueTypeI64}, // output: offset to response JSON
	)
}

func logPluginMessage(ctx context.Context, logger *slog.Logger, msg LogMessage) {
	level := slog.LevelInfo
	switch msg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	attrs := make([]any, 0, 2+2*len(msg.Fields))
	attrs = append(attrs, "source", "compiler-plugin")
	for k, v := range msg.Fields {
		attrs = append(attrs, k, v)
	}
	logger.Log(ctx, level, msg.Message, attrs...)
}

// writeResponse writes a JSON response to plugin memory
func writeResponse(plugin *extism.CurrentPlugin, stack []uint64, response LogResponse) {
	responseData, _ := json.Marshal(response)
	responseOffset, err := plugin.WriteBytes(responseData)
	if err != nil {
		stack[0] = 0
		return
	}
	stack[0] = responseOffset
}
