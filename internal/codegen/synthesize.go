package codegen

import (
	"context"
	"fmt"

	"github.com/yousuf/ctxgen/internal/schema"
)

// Synthesizer turns operation schemas into named type declarations.
type Synthesizer struct {
	compiler TypeCompiler
}

// NewSynthesizer creates a synthesizer backed by compiler. A nil compiler
// selects the built-in SchemaConverter.
func NewSynthesizer(compiler TypeCompiler) *Synthesizer {
	if compiler == nil {
		compiler = NewSchemaConverter()
	}
	return &Synthesizer{compiler: compiler}
}

// Synthesize converts one schema value into a declaration named typeName.
// Schema defects never fail; compiler errors are returned unchanged in the
// chain.
func (s *Synthesizer) Synthesize(ctx context.Context, v any, typeName string) (TypeDeclaration, error) {
	decl := TypeDeclaration{Name: typeName}

	switch sanitized := schema.Sanitize(v).(type) {
	case schema.Boolean:
		if sanitized {
			decl.Text = fmt.Sprintf("export type %s = any;\n", typeName)
		} else {
			decl.Text = fmt.Sprintf("export type %s = never;\n", typeName)
		}
		return decl, nil

	case *schema.Object:
		if t, _ := schema.TypeName(sanitized); t == "object" && !schema.HasProperties(sanitized) {
			decl.Text = fmt.Sprintf("export type %s = Record<string, unknown>;\n", typeName)
			return decl, nil
		}

		resolved, ok := schema.ResolveRefs(sanitized).(*schema.Object)
		if !ok {
			resolved = schema.NewObject()
		}

		text, err := s.compiler.Compile(ctx, resolved, typeName, CompileOptions{
			NoBannerComment:        true,
			NoAdditionalProperties: true,
		})
		if err != nil {
			return decl, fmt.Errorf("failed to compile type %s: %w", typeName, err)
		}
		decl.Text = text
		return decl, nil

	default:
		return decl, fmt.Errorf("failed to compile type %s: unexpected schema %T", typeName, sanitized)
	}
}
