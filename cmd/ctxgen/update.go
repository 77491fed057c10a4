package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yousuf/ctxgen/internal/client"
	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/config"
	"github.com/yousuf/ctxgen/internal/files"
	"github.com/yousuf/ctxgen/internal/session"
)

type UpdateCmd struct {
	Peer string `arg:"" optional:"" help:"Public key of the peer to update. Prompts when omitted."`
	All  bool   `help:"Update every added client."`
	Yes  bool   `help:"Do not prompt; keep recorded client names." short:"y"`
}

func (c *UpdateCmd) Run(g *Globals, e *env) error {
	fmt.Fprintln(e.out, "Checking for configuration file...")
	cfg, configPath, err := g.loadConfig()
	if err != nil {
		return err
	}

	if len(cfg.AddedClients) == 0 {
		fmt.Fprintln(e.out, "No clients have been added yet. Use 'ctxgen add <pubkey>' to add a client.")
		return nil
	}

	s, err := e.newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	targets, err := c.targets(cfg, s)
	if err != nil {
		return err
	}

	servers := make(map[string]config.McpServerConfig, len(targets))
	for _, peer := range targets {
		server, ok := cfg.McpServers[peer]
		if !ok {
			return fmt.Errorf("no discovery source recorded for peer %s; re-run 'ctxgen add %s' with --url, --command or --tools", peer, peer)
		}
		servers[peer] = server
	}

	filter, err := newFilter(cfg)
	if err != nil {
		return err
	}

	if len(targets) > 1 {
		fmt.Fprintln(e.out, "Updating all clients...")
	}
	discovered, err := client.DiscoverAll(e.ctx, servers, filter)
	if err != nil {
		return err
	}

	generator, release, err := g.newGenerator(e, cfg)
	if err != nil {
		return err
	}
	defer release()

	var errs []error
	for _, peer := range targets {
		if err := c.updateOne(g, e, s, cfg, generator, peer, discovered[peer]); err != nil {
			e.logger.Error("failed to update client", "peer", peer, "error", err)
			errs = append(errs, fmt.Errorf("peer %s: %w", peer, err))
		}
	}

	if err := config.Save(configPath, cfg); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// targets resolves which peers to update from the argument, --all, or a
// prompt.
func (c *UpdateCmd) targets(cfg *config.Config, s *session.Session) ([]string, error) {
	if c.All {
		return cfg.AddedClients, nil
	}

	if c.Peer != "" {
		if !cfg.HasClient(c.Peer) {
			s.Printf("Client with pubkey %s is not in the list of added clients.\n", c.Peer)
			printAdded(s, cfg)
			return nil, fmt.Errorf("unknown client %s", c.Peer)
		}
		return []string{c.Peer}, nil
	}

	s.Println("\nAdded Clients:")
	printAdded(s, cfg)
	choice, err := s.Ask("Enter the number of the client to update (or 'all' to update all)", "1")
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(choice, "all") {
		return cfg.AddedClients, nil
	}

	index, err := strconv.Atoi(choice)
	if err != nil || index < 1 || index > len(cfg.AddedClients) {
		return nil, fmt.Errorf("invalid selection %q", choice)
	}
	return []string{cfg.AddedClients[index-1]}, nil
}

func (c *UpdateCmd) updateOne(g *Globals, e *env, s *session.Session, cfg *config.Config, generator *codegen.Generator, peer string, d *client.Discovery) error {
	fmt.Fprintf(e.out, "\nUpdating client %s...\n", peer)

	newName := codegen.ServerTypeName(d.Server.Name)
	name := newName
	if oldName := cfg.ClientNames[peer]; oldName != "" && oldName != newName {
		fmt.Fprintf(e.out, "Server name has changed from '%s' to '%s'.\n", oldName, newName)
		useNew := false
		if !c.Yes {
			var err error
			useNew, err = s.AskYesNo("Do you want to use the new server name?", false)
			if err != nil {
				return err
			}
		}
		if useNew {
			fmt.Fprintf(e.out, "Using the new server name: %s\n", newName)
		} else {
			name = oldName
			fmt.Fprintf(e.out, "Keeping the old server name: %s\n", oldName)
		}
	}

	printDiscovery(e, d)

	if !c.Yes {
		confirm, err := s.AskYesNo("Do you want to update this client?", true)
		if err != nil {
			return err
		}
		if !confirm {
			s.Println("Update cancelled.")
			return nil
		}
	}

	m, err := generator.Generate(e.ctx, peerFor(peer, name, cfg), d.Operations)
	if err != nil {
		return err
	}

	outputPath := filepath.Join(g.Dir, cfg.Source, m.ClientName+".ts")
	if err := files.WriteStringWithDir(outputPath, m.Source); err != nil {
		return err
	}
	cfg.AddClient(peer, m.ServerName)

	fmt.Fprintf(e.out, "Updated client for %s at %s\n", m.ServerName, outputPath)
	return nil
}

func printAdded(s *session.Session, cfg *config.Config) {
	for i, peer := range cfg.AddedClients {
		label := peer
		if name := cfg.ClientNames[peer]; name != "" {
			label = fmt.Sprintf("%s (%sClient)", peer, name)
		}
		s.Printf("  %d. %s\n", i+1, label)
	}
}
