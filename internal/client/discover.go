package client

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/config"
	"github.com/yousuf/ctxgen/internal/schema"
)

// maxConcurrentDiscovery bounds how many peers DiscoverAll contacts at once.
const maxConcurrentDiscovery = 4

// Discovery is what one peer exposes
type Discovery struct {
	Server     ServerInfo
	Operations []codegen.OperationDescriptor
}

// Discover connects to the peer described by cfg, reads its identity and
// tool list, and closes the connection. Operations not passing filter are
// dropped.
func Discover(ctx context.Context, name string, cfg config.McpServerConfig, filter *Filter) (*Discovery, error) {
	if cfg.Type == "file" {
		d, err := ReadToolsFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		d.Operations = filter.Apply(d.Operations)
		return d, nil
	}

	c, err := NewMCPClient(ctx, name, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server %q: %w", name, err)
	}
	defer c.Close()

	return DiscoverSession(ctx, c, filter)
}

// DiscoverSession reads identity and tools from an already connected client.
func DiscoverSession(ctx context.Context, c *MCPClient, filter *Filter) (*Discovery, error) {
	ops, err := c.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("server %q: %w", c.GetName(), err)
	}
	slog.Debug("discovered tools", "server", c.GetName(), "count", len(ops))

	return &Discovery{
		Server:     c.ServerInfo(),
		Operations: filter.Apply(ops),
	}, nil
}

// ReadToolsFile loads a captured tool list. The file may carry a
// "serverInfo" object next to "tools".
func ReadToolsFile(path string) (*Discovery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tools file: %w", err)
	}

	ops, err := codegen.ParseOperations(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	d := &Discovery{Operations: ops}
	if doc, err := schema.Decode(data); err == nil {
		if obj, ok := doc.(*schema.Object); ok {
			if info, ok := obj.GetObject("serverInfo"); ok {
				d.Server.Name, _ = info.GetString("name")
				d.Server.Version, _ = info.GetString("version")
			}
		}
	}
	return d, nil
}

// DiscoverAll discovers every peer in servers concurrently. The first
// failure cancels the rest.
func DiscoverAll(ctx context.Context, servers map[string]config.McpServerConfig, filter *Filter) (map[string]*Discovery, error) {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		results = make(map[string]*Discovery, len(servers))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDiscovery)
	for _, name := range names {
		g.Go(func() error {
			d, err := Discover(gctx, name, servers[name], filter)
			if err != nil {
				return err
			}
			mu.Lock()
			results[name] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
