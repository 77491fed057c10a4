package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/strutil"
)

// GenerateClientArgs represents the arguments for the generate_client tool
type GenerateClientArgs struct {
	Peer       string   `json:"peer" jsonschema:"Public key of the peer the generated client talks to"`
	Name       string   `json:"name,omitempty" jsonschema:"Server name used to derive the client class name. Defaults to UnknownServer."`
	Tools      string   `json:"tools" jsonschema:"Tool list as JSON or YAML, either {\"tools\": [...]} or a bare array"`
	Relays     []string `json:"relays,omitempty" jsonschema:"Relay URLs embedded in the client"`
	PrivateKey string   `json:"privateKey,omitempty" jsonschema:"Optional private key embedded as an overridable default"`
}

// GenerateClientResult is the structured output of the generate_client tool
type GenerateClientResult struct {
	ClientName string   `json:"clientName"`
	ServerName string   `json:"serverName"`
	Operations int      `json:"operations"`
	Warnings   []string `json:"warnings,omitempty"`
	Source     string   `json:"source"`
}

// CanonicalNameArgs represents the arguments for the canonical_name tool
type CanonicalNameArgs struct {
	Name string `json:"name" jsonschema:"Operation or server name, e.g. add-user or get_user_info"`
}

// CanonicalNameResult is the structured output of the canonical_name tool
type CanonicalNameResult struct {
	Canonical  string `json:"canonical"`
	Identifier string `json:"identifier"`
	InputType  string `json:"inputType"`
	OutputType string `json:"outputType"`
}

// Option configures the MCP server.
type Option func(*options)

type options struct {
	generator *codegen.Generator
	logger    *slog.Logger
}

// WithGenerator sets the generator used by generate_client.
func WithGenerator(g *codegen.Generator) Option {
	return func(o *options) {
		if g != nil {
			o.generator = g
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewMcpServer creates and configures the MCP server
func NewMcpServer(version string, opts ...Option) (*mcp.Server, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.generator == nil {
		o.generator = codegen.NewGenerator(codegen.WithLogger(o.logger))
	}

	generateSchema, err := jsonschema.For[GenerateClientArgs](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer generate_client schema: %w", err)
	}
	canonicalSchema, err := jsonschema.For[CanonicalNameArgs](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer canonical_name schema: %w", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ctxgen",
		Version: version,
	}, &mcp.ServerOptions{
		Instructions: `
Typed client generation for ContextVM peers

ctxgen turns a peer's MCP tool list into a self-contained TypeScript client
module: one interface per tool input and output, a declared server type, and a
client class whose methods call the tools over Nostr relays.

Available Tools:
1. "generate_client" - Generate the client module for a tool list
2. "canonical_name" - Show the names derived from a tool or server name

Notes:
- Tool names are kept verbatim on the wire; only method and type names change
- Types with the same name across tools are emitted once, first one wins
`,
	})

	server.AddReceivingMiddleware(createLoggingMiddleware(o.logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_client",
		Description: "Generate a typed TypeScript client module for a peer from its MCP tool list. Returns the module source.",
		InputSchema: generateSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GenerateClientArgs) (*mcp.CallToolResult, GenerateClientResult, error) {
		if strings.TrimSpace(args.Peer) == "" {
			return nil, GenerateClientResult{}, fmt.Errorf("peer is required")
		}

		ops, err := codegen.ParseOperations([]byte(args.Tools))
		if err != nil {
			return nil, GenerateClientResult{}, fmt.Errorf("failed to parse tools: %w", err)
		}

		m, err := o.generator.Generate(ctx, codegen.Peer{
			Identity:   args.Peer,
			Name:       args.Name,
			Credential: args.PrivateKey,
			Endpoints:  args.Relays,
		}, ops)
		if err != nil {
			return nil, GenerateClientResult{}, err
		}

		return &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{Text: m.Source},
				},
			}, GenerateClientResult{
				ClientName: m.ClientName,
				ServerName: m.ServerName,
				Operations: len(ops),
				Warnings:   m.Warnings,
				Source:     m.Source,
			}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "canonical_name",
		Description: "Derive the canonical PascalCase name, method identifier and type names for a tool or server name.",
		InputSchema: canonicalSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CanonicalNameArgs) (*mcp.CallToolResult, CanonicalNameResult, error) {
		info := codegen.NewToolInfo(args.Name)
		result := CanonicalNameResult{
			Canonical:  strutil.ToPascalCase(args.Name),
			Identifier: info.PascalName,
			InputType:  info.InputTypeName,
			OutputType: info.OutputTypeName,
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: result.Canonical},
			},
		}, result, nil
	})

	return server, nil
}
