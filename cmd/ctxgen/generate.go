package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/yousuf/ctxgen/internal/client"
	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/config"
	"github.com/yousuf/ctxgen/internal/files"
)

type GenerateCmd struct {
	Tools      string   `arg:"" help:"Captured tool list (JSON or YAML), or - for stdin."`
	Peer       string   `help:"Public key of the peer." required:""`
	Name       string   `help:"Client base name. Defaults to serverInfo.name from the tool list."`
	Output     string   `help:"Write the module to this file instead of stdout." short:"o" type:"path"`
	Relays     []string `help:"Relay URLs embedded in the client. Defaults to the project configuration."`
	PrivateKey string   `help:"Private key embedded as an overridable default." env:"CTXGEN_PRIVATE_KEY"`
}

func (c *GenerateCmd) Run(g *Globals, e *env) error {
	cfg, err := config.Load(g.configPath())
	if errors.Is(err, config.ErrNotFound) {
		cfg, err = nil, nil
	}
	if err != nil {
		return err
	}

	d, err := c.discovery(e)
	if err != nil {
		return err
	}

	filter, err := newFilter(cfg)
	if err != nil {
		return err
	}
	d.Operations = filter.Apply(d.Operations)

	peer := codegen.Peer{
		Identity:   c.Peer,
		Name:       d.Server.Name,
		Credential: c.PrivateKey,
		Endpoints:  c.Relays,
	}
	if c.Name != "" {
		peer.Name = c.Name
	}
	if cfg != nil {
		if peer.Credential == "" {
			peer.Credential = cfg.PrivateKey
		}
		if len(peer.Endpoints) == 0 {
			peer.Endpoints = cfg.Relays
		}
	}

	generator, release, err := g.newGenerator(e, cfg)
	if err != nil {
		return err
	}
	defer release()

	m, err := generator.Generate(e.ctx, peer, d.Operations)
	if err != nil {
		return err
	}

	if c.Output == "" || c.Output == "-" {
		_, err := io.WriteString(e.out, m.Source)
		return err
	}
	if err := files.WriteStringWithDir(c.Output, m.Source); err != nil {
		return err
	}
	e.logger.Info("generated client", "client", m.ClientName, "path", c.Output, "operations", len(d.Operations))
	return nil
}

func (c *GenerateCmd) discovery(e *env) (*client.Discovery, error) {
	if c.Tools != "-" {
		return client.ReadToolsFile(c.Tools)
	}

	data, err := io.ReadAll(e.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read tools from stdin: %w", err)
	}
	ops, err := codegen.ParseOperations(data)
	if err != nil {
		return nil, err
	}
	return &client.Discovery{Operations: ops}, nil
}
