package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/yousuf/ctxgen/internal/client"
	"github.com/yousuf/ctxgen/internal/codegen"
	"github.com/yousuf/ctxgen/internal/config"
	"github.com/yousuf/ctxgen/internal/sandbox"
	"github.com/yousuf/ctxgen/internal/session"
)

type CLI struct {
	Globals

	Init     InitCmd     `cmd:"" help:"Create a ctxgen configuration in the current project."`
	Add      AddCmd      `cmd:"" help:"Discover a peer and generate its client."`
	Update   UpdateCmd   `cmd:"" help:"Regenerate clients for peers already added."`
	Generate GenerateCmd `cmd:"" help:"Generate a client from a captured tool list without prompts."`
	Serve    ServeCmd    `cmd:"" help:"Run ctxgen as an MCP server."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`
}

// Globals are flags shared by every command.
type Globals struct {
	Verbose bool   `help:"Enable debug logging." short:"v"`
	Config  string `help:"Path to the configuration file." type:"path" short:"c"`
	Dir     string `help:"Project directory." default:"." type:"path" short:"C"`
}

// env carries the process-level collaborators commands write to and read
// from.
type env struct {
	ctx        context.Context
	out        io.Writer
	stdin      io.Reader
	logger     *slog.Logger
	newSession func() (*session.Session, error)
}

// configPath returns the explicit --config path or the default one in Dir.
func (g *Globals) configPath() string {
	if g.Config != "" {
		return g.Config
	}
	if path, err := config.Find(g.Dir); err == nil {
		return path
	}
	return filepath.Join(g.Dir, config.DefaultFileName)
}

// loadConfig loads the project configuration, pointing at init when it is
// missing.
func (g *Globals) loadConfig() (*config.Config, string, error) {
	path := g.configPath()
	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrNotFound) {
		return nil, path, fmt.Errorf("%w\nPlease run 'ctxgen init' first to create a configuration file", err)
	}
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// newGenerator builds the generator for cfg, loading the plugin compiler
// when one is configured. The returned func releases it.
func (g *Globals) newGenerator(e *env, cfg *config.Config) (*codegen.Generator, func(), error) {
	opts := []codegen.Option{codegen.WithLogger(e.logger)}
	if cfg == nil || cfg.Compiler.Wasm == "" {
		return codegen.NewGenerator(opts...), func() {}, nil
	}

	path := cfg.Compiler.Wasm
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.Dir, path)
	}
	compiler, err := sandbox.LoadCompiler(e.ctx, path, e.logger)
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("using plugin type compiler", "path", path)

	opts = append(opts, codegen.WithCompiler(compiler))
	return codegen.NewGenerator(opts...), func() { compiler.Close(e.ctx) }, nil
}

// newFilter builds the operation filter configured for the project.
func newFilter(cfg *config.Config) (*client.Filter, error) {
	if cfg == nil {
		return nil, nil
	}
	return client.NewFilter(cfg.Include, cfg.Exclude)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{
		ctx:        ctx,
		out:        os.Stdout,
		stdin:      os.Stdin,
		newSession: session.New,
	}
	if err := run(os.Args[1:], e); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, e *env) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ctxgen"),
		kong.Description("Generate typed TypeScript clients for ContextVM peers from their MCP tool lists."),
		kong.UsageOnError(),
		kong.Writers(e.out, os.Stderr),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if e.logger == nil {
		e.logger = newLogger(os.Stderr, cli.Verbose)
	}
	slog.SetDefault(e.logger)

	return kctx.Run(&cli.Globals, e)
}
