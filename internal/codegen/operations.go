package codegen

import (
	"fmt"

	"github.com/yousuf/ctxgen/internal/schema"
)

// ParseOperations reads a captured tool list in JSON or YAML. Both a
// {"tools": [...]} envelope and a bare array are accepted. Schemas keep the
// key order they were written in.
func ParseOperations(data []byte) ([]OperationDescriptor, error) {
	v, err := schema.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tool list: %w", err)
	}

	var items []any
	switch doc := v.(type) {
	case []any:
		items = doc
	case *schema.Object:
		tools, ok := doc.Get("tools")
		if !ok {
			return nil, fmt.Errorf("failed to parse tool list: missing \"tools\" field")
		}
		if items, ok = tools.([]any); !ok {
			return nil, fmt.Errorf("failed to parse tool list: \"tools\" is %T, not a list", tools)
		}
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to parse tool list: unexpected document %T", v)
	}

	ops := make([]OperationDescriptor, 0, len(items))
	for i, item := range items {
		obj, ok := item.(*schema.Object)
		if !ok {
			return nil, fmt.Errorf("%w: tool %d is %T, not an object", ErrInvalidOperation, i, item)
		}
		name, _ := obj.GetString("name")
		if name == "" {
			return nil, fmt.Errorf("%w: tool %d has no name", ErrInvalidOperation, i)
		}
		op := OperationDescriptor{Name: name}
		op.Title, _ = obj.GetString("title")
		if annotations, ok := obj.GetObject("annotations"); ok && op.Title == "" {
			op.Title, _ = annotations.GetString("title")
		}
		op.Description, _ = obj.GetString("description")
		op.InputSchema, _ = obj.Get("inputSchema")
		op.OutputSchema, _ = obj.Get("outputSchema")
		ops = append(ops, op)
	}
	return ops, nil
}
