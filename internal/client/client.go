package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/config"
)

// ErrUnsupportedTransport is returned for server configs whose type cannot
// be connected to.
var ErrUnsupportedTransport = errors.New("unsupported transport type")

// ServerInfo is the identity a server reports during initialization
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// MCPClient wraps an MCP client connection
type MCPClient struct {
	name    string
	session *mcp.ClientSession
}

// NewMCPClient creates a new MCP client based on the configuration
func NewMCPClient(ctx context.Context, name string, cfg config.McpServerConfig) (*MCPClient, error) {
	transport, err := NewTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	return Connect(ctx, name, transport)
}

// Connect opens an MCP session over transport.
func Connect(ctx context.Context, name string, transport mcp.Transport) (*MCPClient, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "ctxgen",
		Version: "1.0.0",
	}, &mcp.ClientOptions{})

	session, err := client.Connect(ctx, transport, &mcp.ClientSessionOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	return &MCPClient{
		name:    name,
		session: session,
	}, nil
}

// NewTransport creates the client transport for cfg
func NewTransport(cfg config.McpServerConfig) (mcp.Transport, error) {
	switch cfg.Type {
	case "stdio":
		return createStdioTransport(cfg), nil
	case "http":
		return createHttpTransport(cfg), nil
	case "sse":
		return createSSETransport(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransport, cfg.Type)
	}
}

// createStdioTransport creates a stdio transport
func createStdioTransport(cfg config.McpServerConfig) mcp.Transport {
	cmd := exec.Command(cfg.Command, cfg.Args...)

	if cfg.Cwd != "" {
		cmd.Dir = cfg.Cwd
	}

	if len(cfg.Env) > 0 {
		// Start with current environment
		cmd.Env = os.Environ()
		// Add/override with config env vars
		for k, v := range cfg.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	return &mcp.CommandTransport{Command: cmd}
}

// headerRoundTripper adds the configured headers to every request
type headerRoundTripper struct {
	headers map[string]string
	next    http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface
func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(h.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range h.headers {
			req.Header.Set(k, v)
		}
	}
	return h.next.RoundTrip(req)
}

func httpClient(cfg config.McpServerConfig) *http.Client {
	return &http.Client{
		Transport: &headerRoundTripper{
			headers: cfg.Headers,
			next:    http.DefaultTransport,
		},
	}
}

func createHttpTransport(cfg config.McpServerConfig) mcp.Transport {
	return &mcp.StreamableClientTransport{
		Endpoint:   cfg.URL,
		HTTPClient: httpClient(cfg),
		MaxRetries: 0,
	}
}

func createSSETransport(cfg config.McpServerConfig) mcp.Transport {
	return &mcp.SSEClientTransport{
		Endpoint:   cfg.URL,
		HTTPClient: httpClient(cfg),
	}
}

// ServerInfo returns the identity reported by the server
func (c *MCPClient) ServerInfo() ServerInfo {
	res := c.session.InitializeResult()
	if res == nil || res.ServerInfo == nil {
		return ServerInfo{}
	}
	return ServerInfo{Name: res.ServerInfo.Name, Version: res.ServerInfo.Version}
}

// ListOperations lists every tool the server exposes, following pagination
// cursors.
func (c *MCPClient) ListOperations(ctx context.Context) ([]codegen.OperationDescriptor, error) {
	var (
		ops    []codegen.OperationDescriptor
		cursor string
	)
	for {
		res, err := c.session.ListTools(ctx, &mcp.ListToolsParams{Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		for _, tool := range res.Tools {
			ops = append(ops, ToOperation(tool))
		}
		if res.NextCursor == "" {
			return ops, nil
		}
		cursor = res.NextCursor
	}
}

// ToOperation converts a discovered tool into an operation descriptor.
func ToOperation(tool *mcp.Tool) codegen.OperationDescriptor {
	title := tool.Title
	if title == "" && tool.Annotations != nil {
		title = tool.Annotations.Title
	}
	return codegen.OperationDescriptor{
		Name:         tool.Name,
		Title:        title,
		Description:  tool.Description,
		InputSchema:  tool.InputSchema,
		OutputSchema: tool.OutputSchema,
	}
}

// GetName returns the client name
func (c *MCPClient) GetName() string {
	return c.name
}

// Close closes the client connection
func (c *MCPClient) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}
