package client

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/yousuf/ctxgen/internal/codegen"
)

// Filter selects operations by name using include and exclude globs. An
// empty include list selects everything; excludes always win.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles the include and exclude patterns.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match reports whether the operation name passes the filter. A nil filter
// matches everything.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(name) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Apply returns the operations that pass the filter, in their original order.
func (f *Filter) Apply(ops []codegen.OperationDescriptor) []codegen.OperationDescriptor {
	if f == nil {
		return ops
	}
	out := make([]codegen.OperationDescriptor, 0, len(ops))
	for _, op := range ops {
		if f.Match(op.Name) {
			out = append(out, op)
		}
	}
	return out
}
