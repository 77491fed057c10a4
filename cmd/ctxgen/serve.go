package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yousuf/ctxgen/internal/config"
	"github.com/yousuf/ctxgen/internal/server"
)

type ServeCmd struct {
	HTTP string `help:"Serve streamable HTTP on this address instead of stdio (e.g. :3000)." name:"http"`
}

func (c *ServeCmd) Run(g *Globals, e *env) error {
	cfg, err := config.Load(g.configPath())
	if errors.Is(err, config.ErrNotFound) {
		cfg, err = nil, nil
	}
	if err != nil {
		return err
	}

	generator, release, err := g.newGenerator(e, cfg)
	if err != nil {
		return err
	}
	defer release()

	srv, err := server.NewMcpServer(Version(), server.WithGenerator(generator), server.WithLogger(e.logger))
	if err != nil {
		return err
	}

	if c.HTTP == "" {
		e.logger.Info("serving MCP over stdio")
		return srv.Run(e.ctx, &mcp.StdioTransport{})
	}

	handler := mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return srv
	}, nil)

	httpServer := &http.Server{
		Addr:         c.HTTP,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("ctxgen MCP server listening", "addr", c.HTTP)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-e.ctx.Done():
	}

	e.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
