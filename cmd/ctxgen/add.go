package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yousuf/ctxgen/internal/client"
	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/config"
	"github.com/yousuf/ctxgen/internal/files"
	"github.com/yousuf/ctxgen/internal/session"
)

// SourceFlags select how a peer's tool list is discovered.
type SourceFlags struct {
	URL       string            `help:"Discover over MCP at this URL." xor:"source"`
	Transport string            `help:"Transport used with --url." enum:"http,sse" default:"http"`
	Header    map[string]string `help:"HTTP header sent with --url (key=value)."`
	Command   string            `help:"Discover by launching this MCP server over stdio." xor:"source"`
	Arg       []string          `help:"Argument passed to --command."`
	Tools     string            `help:"Read a captured tool list (JSON or YAML) instead of connecting." type:"existingfile" xor:"source"`
}

// server returns the discovery source given on the command line, if any.
func (f SourceFlags) server() (config.McpServerConfig, bool) {
	switch {
	case f.Tools != "":
		return config.McpServerConfig{Type: "file", Path: f.Tools}, true
	case f.Command != "":
		return config.McpServerConfig{Type: "stdio", Command: f.Command, Args: f.Arg}, true
	case f.URL != "":
		return config.McpServerConfig{Type: f.Transport, URL: f.URL, Headers: f.Header}, true
	}
	return config.McpServerConfig{}, false
}

type AddCmd struct {
	Peer string `arg:"" help:"Public key of the peer."`
	SourceFlags

	Name  string `help:"Client base name. Defaults to the server's reported name."`
	Yes   bool   `help:"Do not prompt; save the client file." short:"y"`
	Print bool   `help:"Print the generated code instead of saving it."`
}

func (c *AddCmd) Run(g *Globals, e *env) error {
	fmt.Fprintln(e.out, "Checking for configuration file...")
	cfg, configPath, err := g.loadConfig()
	if err != nil {
		return err
	}

	s, err := e.newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if cfg.HasClient(c.Peer) {
		fmt.Fprintf(e.out, "Client with pubkey %s is already added.\n", c.Peer)
		if !c.Yes {
			update, err := s.AskYesNo("Would you like to update this client?", false)
			if err != nil {
				return err
			}
			if !update {
				s.Println("Operation cancelled.")
				return nil
			}
		}
		fmt.Fprintln(e.out, "Updating existing client...")
	}

	server, ok := c.server()
	if !ok {
		server, ok = cfg.McpServers[c.Peer]
	}
	if !ok {
		return fmt.Errorf("no discovery source for peer %s; pass --url, --command or --tools", c.Peer)
	}
	if err := server.Validate(); err != nil {
		return err
	}

	filter, err := newFilter(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "Connecting to server %s...\n", c.Peer)
	d, err := client.Discover(e.ctx, c.Peer, server, filter)
	if err != nil {
		return err
	}
	printDiscovery(e, d)

	name := d.Server.Name
	if c.Name != "" {
		name = c.Name
	}
	fmt.Fprintln(e.out, "\nClient Configuration:")
	fmt.Fprintf(e.out, "   Client Name: %sClient\n", codegen.ServerTypeName(name))
	fmt.Fprintf(e.out, "   Output Directory: %s\n", cfg.Source)

	if c.Name == "" && !c.Yes && !c.Print {
		custom, err := s.Ask("Enter custom client name (leave empty to use default)", "")
		if err != nil {
			return err
		}
		if custom != "" {
			name = custom
		}
	}

	printOnly, cancel, err := c.chooseAction(s)
	if err != nil || cancel {
		return err
	}

	generator, release, err := g.newGenerator(e, cfg)
	if err != nil {
		return err
	}
	defer release()

	m, err := generator.Generate(e.ctx, peerFor(c.Peer, name, cfg), d.Operations)
	if err != nil {
		return err
	}

	if printOnly {
		printModule(e, m)
		return nil
	}

	outputPath := filepath.Join(g.Dir, cfg.Source, m.ClientName+".ts")
	if err := files.WriteStringWithDir(outputPath, m.Source); err != nil {
		return err
	}

	cfg.AddClient(c.Peer, m.ServerName)
	cfg.SetServer(c.Peer, server)
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(e.out, "Generated client for %s at %s\n", m.ServerName, outputPath)
	return nil
}

// chooseAction asks whether to save, print or cancel unless flags decide.
func (c *AddCmd) chooseAction(s *session.Session) (printOnly, cancel bool, err error) {
	switch {
	case c.Print:
		return true, false, nil
	case c.Yes:
		return false, false, nil
	}

	choice, err := s.AskChoice("\nWhat would you like to do?", []string{
		"Generate and save the client file",
		"Print the generated code to console only",
		"Cancel",
	}, 0)
	if err != nil {
		return false, false, err
	}
	if choice == 2 {
		s.Println("Operation cancelled.")
		return false, true, nil
	}
	return choice == 1, false, nil
}

func peerFor(identity, name string, cfg *config.Config) codegen.Peer {
	return codegen.Peer{
		Identity:   identity,
		Name:       name,
		Credential: cfg.PrivateKey,
		Endpoints:  cfg.Relays,
	}
}

func printDiscovery(e *env, d *client.Discovery) {
	fmt.Fprintln(e.out, "\nServer Information:")
	fmt.Fprintf(e.out, "   Name: %s\n", orUnknown(d.Server.Name))
	fmt.Fprintf(e.out, "   Version: %s\n", orUnknown(d.Server.Version))
	fmt.Fprintf(e.out, "   Tools found: %d\n", len(d.Operations))

	fmt.Fprintln(e.out, "\nAvailable Tools:")
	for i, op := range d.Operations {
		desc := op.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(e.out, "   %d. %s: %s\n", i+1, op.Name, desc)
	}
}

func printModule(e *env, m *codegen.ClientModule) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(e.out, "\nGenerated Client Code:")
	fmt.Fprintln(e.out, rule)
	fmt.Fprint(e.out, m.Source)
	fmt.Fprintln(e.out, rule)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
