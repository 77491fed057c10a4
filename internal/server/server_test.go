package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func connect(t *testing.T, opts ...Option) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server, err := NewMcpServer("test", opts...)
	require.NoError(t, err)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestListTools(t *testing.T) {
	session := connect(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"generate_client", "canonical_name"}, names)
}

func TestGenerateClient(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "generate_client",
		Arguments: map[string]any{
			"peer":   "abc123",
			"name":   "test-server",
			"relays": []string{"wss://relay.example"},
			"tools": `{"tools": [{
				"name": "add-user",
				"inputSchema": {"type": "object", "properties": {"pubkey": {"type": "string"}}, "required": ["pubkey"]}
			}]}`,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	src := text(t, res)
	assert.Contains(t, src, "export class TestServerClient implements TestServer {")
	assert.Contains(t, src, `static readonly SERVER_PUBKEY = "abc123";`)
	assert.Contains(t, src, `"wss://relay.example"`)
	assert.Contains(t, src, `return this.call("add-user", { pubkey });`)

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok, "expected structured content, got %T", res.StructuredContent)
	assert.Equal(t, "TestServerClient", structured["clientName"])
	assert.EqualValues(t, 1, structured["operations"])
}

func TestGenerateClientRejectsBadTools(t *testing.T) {
	session := connect(t)

	for name, tools := range map[string]string{
		"unnamed tool": `[{"description": "no name"}]`,
		"not a list":   `42`,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      "generate_client",
				Arguments: map[string]any{"peer": "abc", "tools": tools},
			})
			if err == nil {
				assert.True(t, res.IsError)
			}
		})
	}
}

func TestCanonicalName(t *testing.T) {
	session := connect(t)

	tests := []struct {
		name       string
		canonical  string
		identifier string
	}{
		{"add-user", "AddUser", "AddUser"},
		{"GET_user-info", "GetUserInfo", "GetUserInfo"},
		{"2fa-setup", "2faSetup", "_2faSetup"},
	}

	for _, tt := range tests {
		res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "canonical_name",
			Arguments: map[string]any{"name": tt.name},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Equal(t, tt.canonical, text(t, res))

		structured, ok := res.StructuredContent.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, tt.identifier, structured["identifier"])
		assert.Equal(t, tt.identifier+"Input", structured["inputType"])
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	session := connect(t, WithLogger(logger))

	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "canonical_name",
		Arguments: map[string]any{"name": "ping"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "method=tools/call")
	assert.Contains(t, out, "status=ok")
}

func TestStreamableHTTP(t *testing.T) {
	ctx := context.Background()

	server, err := NewMcpServer("test")
	require.NoError(t, err)

	httpServer := httptest.NewServer(mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil))
	defer httpServer.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: httpServer.URL}, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "canonical_name",
		Arguments: map[string]any{"name": "list_repos"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ListRepos", text(t, res))
}
