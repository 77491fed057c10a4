package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	extism "github.com/extism/go-sdk"
	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/schema"
)

// compileExport is the function a compiler plugin must export.
const compileExport = "compileType"

// CompileRequest is the JSON input handed to the plugin's compileType export.
type CompileRequest struct {
	Schema  *schema.Object         `json:"schema"`
	Name    string                 `json:"name"`
	Options codegen.CompileOptions `json:"options"`
}

// CompileResult is the JSON output of the plugin's compileType export.
type CompileResult struct {
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
	Stack string `json:"stack,omitempty"`
}

// Compiler runs an external structural-type compiler inside a WebAssembly
// plugin. It implements codegen.TypeCompiler.
type Compiler struct {
	plugin *extism.Plugin
	logger *slog.Logger
	// extism plugins are not safe for concurrent calls.
	mu sync.Mutex
}

var _ codegen.TypeCompiler = (*Compiler)(nil)

// NewCompiler creates a compiler from WASM bytes
func NewCompiler(ctx context.Context, wasmBytes []byte, logger *slog.Logger) (*Compiler, error) {
	manifest := extism.Manifest{
		Wasm: []extism.Wasm{
			extism.WasmData{
				Data: wasmBytes,
			},
		},
	}
	return newCompiler(ctx, manifest, logger)
}

// LoadCompiler creates a compiler from a WASM file on disk
func LoadCompiler(ctx context.Context, path string, logger *slog.Logger) (*Compiler, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to load compiler plugin: %w", err)
	}
	manifest := extism.Manifest{
		Wasm: []extism.Wasm{
			extism.WasmFile{
				Path: path,
			},
		},
	}
	return newCompiler(ctx, manifest, logger)
}

func newCompiler(ctx context.Context, manifest extism.Manifest, logger *slog.Logger) (*Compiler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config := extism.PluginConfig{
		EnableWasi: true,
	}

	hostFunctions := []extism.HostFunction{
		createLogHostFunc(logger),
	}

	plugin, err := extism.NewPlugin(ctx, manifest, config, hostFunctions)
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin: %w", err)
	}
	if !plugin.FunctionExists(compileExport) {
		plugin.Close(ctx)
		return nil, fmt.Errorf("compiler plugin does not export %q", compileExport)
	}

	return &Compiler{plugin: plugin, logger: logger}, nil
}

// Compile implements codegen.TypeCompiler.
func (c *Compiler) Compile(ctx context.Context, s *schema.Object, name string, opts codegen.CompileOptions) (string, error) {
	input, err := encodeRequest(s, name, opts)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	exit, output, err := c.plugin.CallWithContext(ctx, compileExport, input)
	c.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("plugin execution failed: %w", err)
	}
	if exit != 0 {
		return "", fmt.Errorf("plugin exited with code %d", exit)
	}

	c.logger.Debug("compiled type in plugin", "name", name, "bytes", len(output))
	return decodeResult(name, output)
}

// Close closes the compiler and frees resources
func (c *Compiler) Close(ctx context.Context) {
	if c.plugin != nil {
		c.plugin.Close(ctx)
	}
}

func encodeRequest(s *schema.Object, name string, opts codegen.CompileOptions) ([]byte, error) {
	if s == nil {
		s = schema.NewObject()
	}
	data, err := json.Marshal(CompileRequest{Schema: s, Name: name, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compile request: %w", err)
	}
	return data, nil
}

// decodeResult unpacks plugin output and checks it declares name.
func decodeResult(name string, output []byte) (string, error) {
	var result CompileResult
	if err := json.Unmarshal(output, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal output: %w", err)
	}

	if result.Error != "" {
		if result.Stack != "" {
			return "", fmt.Errorf("failed to compile %s\nerror:\n%s\nstack trace:\n%s", name, result.Error, result.Stack)
		}
		return "", fmt.Errorf("failed to compile %s: %s", name, result.Error)
	}

	if !declares(result.Code, name) {
		return "", fmt.Errorf("compiler output does not declare %s", name)
	}
	return result.Code, nil
}

func declares(code, name string) bool {
	for _, prefix := range []string{"export interface ", "export type "} {
		idx := strings.Index(code, prefix+name)
		for idx >= 0 {
			end := idx + len(prefix) + len(name)
			if end == len(code) || !isIdentRune(code[end]) {
				return true
			}
			next := strings.Index(code[end:], prefix+name)
			if next < 0 {
				break
			}
			idx = end + next
		}
	}
	return false
}

func isIdentRune(b byte) bool {
	return b == '_' || b == '$' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
