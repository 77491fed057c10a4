package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidOperation is returned for operations that cannot be generated,
// such as one without a wire name.
var ErrInvalidOperation = errors.New("invalid operation")

// Generator builds typed client modules from operation lists.
type Generator struct {
	synth  *Synthesizer
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithCompiler replaces the built-in structural-type compiler.
func WithCompiler(c TypeCompiler) Option {
	return func(g *Generator) {
		g.synth = NewSynthesizer(c)
	}
}

// WithLogger sets the logger used for progress and dedup warnings.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a new generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		synth:  NewSynthesizer(nil),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate synthesizes a client module for peer exposing ops. Operations are
// processed in order; any compiler failure aborts the whole batch.
func (g *Generator) Generate(ctx context.Context, peer Peer, ops []OperationDescriptor) (*ClientModule, error) {
	var (
		decls    []TypeDeclaration
		plans    []MethodPlan
		warnings []string
		methods  = make(map[string]string, len(ops))
	)

	for i, op := range ops {
		if op.Name == "" {
			return nil, fmt.Errorf("%w: operation %d has no name", ErrInvalidOperation, i)
		}
		info := NewToolInfo(op.Name)
		if prev, taken := methods[info.MethodName]; taken {
			for n := 2; ; n++ {
				name := fmt.Sprintf("%s%d", info.PascalName, n)
				if _, taken := methods[name]; !taken {
					info.MethodName = name
					break
				}
			}
			warnings = append(warnings, fmt.Sprintf("operations %q and %q share the method name %s; generated %s for %q",
				prev, op.Name, info.PascalName, info.MethodName, op.Name))
		}
		methods[info.MethodName] = op.Name
		g.logger.Debug("generating operation", "name", op.Name, "method", info.MethodName)

		var input, output TypeDeclaration
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var err error
			input, err = g.synth.Synthesize(egCtx, op.InputSchema, info.InputTypeName)
			return err
		})
		eg.Go(func() error {
			var err error
			output, err = g.synth.Synthesize(egCtx, op.OutputSchema, info.OutputTypeName)
			return err
		})
		if err := eg.Wait(); err != nil {
			return nil, fmt.Errorf("failed to generate types for %q: %w", op.Name, err)
		}

		decls = append(decls, SplitDeclarations(input)...)
		decls = append(decls, SplitDeclarations(output)...)
		plans = append(plans, Plan(op, info))
	}

	kept, conflicts := Dedupe(decls)
	warnings = append(warnings, conflicts...)
	for _, w := range warnings {
		g.logger.Warn(w, "server", peer.Name)
	}

	serverName := ServerTypeName(peer.Name)
	m := &ClientModule{
		ServerName:   serverName,
		ClientName:   serverName + "Client",
		Declarations: kept,
		ServerType:   ServerTypeDeclaration(serverName, plans),
		CallMethod:   callMethod,
		Warnings:     warnings,
	}
	for _, p := range plans {
		m.Methods = append(m.Methods, p.Method)
	}
	m.Source = Assemble(m, peer)

	g.logger.Debug("generated client", "client", m.ClientName, "operations", len(ops), "declarations", len(kept))
	return m, nil
}
