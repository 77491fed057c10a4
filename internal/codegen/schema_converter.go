package codegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/yousuf/ctxgen/internal/schema"
	"github.com/yousuf/ctxgen/internal/strutil"
)

// CompileOptions are passed to every TypeCompiler call.
type CompileOptions struct {
	// NoBannerComment omits the leading "generated file" banner.
	NoBannerComment bool `json:"noBannerComment"`
	// NoAdditionalProperties omits index signatures on declared objects
	// unless the schema explicitly allows additional properties.
	NoAdditionalProperties bool `json:"noAdditionalProperties"`
}

// TypeCompiler compiles one resolved schema into a declaration block whose
// declared type is named name. Nested declarations may follow in the same
// block.
type TypeCompiler interface {
	Compile(ctx context.Context, s *schema.Object, name string, opts CompileOptions) (string, error)
}

// TSType represents a TypeScript type definition
type TSType struct {
	Name        string       // Declared name; empty for inline types
	Kind        string       // "interface" | "type" | "primitive" | "array" | "tuple" | "union" | "intersection"
	Properties  []TSProperty // For interfaces
	ElementType *TSType      // For arrays
	Members     []*TSType    // For tuples, unions and intersections
	IndexType   string       // Index signature value type, for interfaces
	Description string       // JSDoc comment
	RawType     string       // For primitives and aliases
}

// TSProperty represents a property in a TypeScript interface
type TSProperty struct {
	Name        string
	Type        *TSType
	IsOptional  bool
	Description string
}

// SchemaConverter is the built-in TypeCompiler. It converts JSON Schema to
// TypeScript declarations.
type SchemaConverter struct{}

// NewSchemaConverter creates a new schema converter
func NewSchemaConverter() *SchemaConverter {
	return &SchemaConverter{}
}

var unknownType = &TSType{Kind: "primitive", RawType: "unknown"}

// Compile implements TypeCompiler.
func (sc *SchemaConverter) Compile(_ context.Context, s *schema.Object, name string, opts CompileOptions) (string, error) {
	c := &conversion{
		opts:      opts,
		generated: make(map[string]*TSType),
	}

	root, err := c.convert(s, name)
	if err != nil {
		return "", err
	}
	if root.Name != name {
		desc, _ := s.GetString("description")
		root = &TSType{
			Kind:        "type",
			Name:        name,
			RawType:     typeToString(root),
			Description: desc,
		}
		c.register(root)
	}

	var sb strings.Builder
	if !opts.NoBannerComment {
		sb.WriteString("/* eslint-disable */\n")
		sb.WriteString("/**\n * This file was automatically generated by ctxgen.\n * DO NOT MODIFY IT BY HAND.\n */\n\n")
	}

	ordered := make([]*TSType, 0, len(c.order))
	seen := make(map[string]bool)
	c.addTypeWithDependencies(root, &ordered, seen)
	for _, n := range c.order {
		c.addTypeWithDependencies(c.generated[n], &ordered, seen)
	}

	for i, t := range ordered {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(renderType(t))
	}
	return sb.String(), nil
}

// conversion holds the named types produced while compiling one schema.
type conversion struct {
	opts      CompileOptions
	generated map[string]*TSType
	order     []string
}

func (c *conversion) register(t *TSType) {
	if _, exists := c.generated[t.Name]; !exists {
		c.order = append(c.order, t.Name)
	}
	c.generated[t.Name] = t
}

// uniqueName returns name, or name with a numeric suffix if it is taken.
func (c *conversion) uniqueName(name string) string {
	name = SafeIdentifier(name)
	if _, taken := c.generated[name]; !taken {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if _, taken := c.generated[candidate]; !taken {
			return candidate
		}
	}
}

// convert converts one schema position to a TypeScript type.
func (c *conversion) convert(v any, typeName string) (*TSType, error) {
	s, ok := schema.AsSchema(v)
	if !ok {
		return unknownType, nil
	}

	obj, ok := s.(*schema.Object)
	if !ok {
		if s.(schema.Boolean) {
			return unknownType, nil
		}
		return &TSType{Kind: "primitive", RawType: "never"}, nil
	}

	// Unresolved pointers stay opaque.
	if _, ok := obj.Get(schema.KeyRef); ok {
		return unknownType, nil
	}

	if val, ok := obj.Get("const"); ok {
		return &TSType{Kind: "primitive", RawType: literal(val)}, nil
	}

	if enum, ok := obj.Get("enum"); ok {
		if values, ok := enum.([]any); ok && len(values) > 0 {
			return c.convertEnum(obj, values, typeName), nil
		}
	}

	schemaType, hasType := obj.Get(schema.KeyType)
	if !hasType {
		if oneOf, ok := obj.Get("oneOf"); ok {
			return c.convertComposite(oneOf, typeName, "union")
		}
		if anyOf, ok := obj.Get("anyOf"); ok {
			return c.convertComposite(anyOf, typeName, "union")
		}
		if allOf, ok := obj.Get("allOf"); ok {
			return c.convertComposite(allOf, typeName, "intersection")
		}
		if _, ok := obj.Get(schema.KeyProperties); ok {
			return c.convertObject(obj, typeName)
		}
		if _, ok := obj.Get(schema.KeyItems); ok {
			return c.convertArray(obj, typeName)
		}
		return unknownType, nil
	}

	switch t := schemaType.(type) {
	case string:
		return c.convertSingleType(obj, t, typeName)
	case []any:
		return c.convertTypeArray(obj, t, typeName)
	default:
		return nil, fmt.Errorf("schema %s: invalid type format: %T", typeName, schemaType)
	}
}

// convertSingleType handles a single type string
func (c *conversion) convertSingleType(obj *schema.Object, typeStr string, typeName string) (*TSType, error) {
	switch typeStr {
	case "string":
		return &TSType{Kind: "primitive", RawType: "string"}, nil
	case "number", "integer":
		return &TSType{Kind: "primitive", RawType: "number"}, nil
	case "boolean":
		return &TSType{Kind: "primitive", RawType: "boolean"}, nil
	case "null":
		return &TSType{Kind: "primitive", RawType: "null"}, nil
	case "array":
		return c.convertArray(obj, typeName)
	case "object":
		return c.convertObject(obj, typeName)
	default:
		return unknownType, nil
	}
}

// convertTypeArray handles type as array (union)
func (c *conversion) convertTypeArray(obj *schema.Object, types []any, typeName string) (*TSType, error) {
	members := make([]*TSType, 0, len(types))
	for _, t := range types {
		typeStr, ok := t.(string)
		if !ok {
			return nil, fmt.Errorf("schema %s: invalid type entry: %T", typeName, t)
		}
		member, err := c.convertSingleType(obj, typeStr, typeName)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	switch len(members) {
	case 0:
		return unknownType, nil
	case 1:
		return members[0], nil
	default:
		return &TSType{Kind: "union", Members: members}, nil
	}
}

// convertObject converts an object schema to a TypeScript interface
func (c *conversion) convertObject(obj *schema.Object, typeName string) (*TSType, error) {
	properties, hasProperties := obj.GetObject(schema.KeyProperties)
	additional, hasAdditional := obj.Get("additionalProperties")

	if !hasProperties || properties.Len() == 0 {
		if hasAdditional {
			if rejectsAll(additional) {
				return &TSType{Kind: "primitive", RawType: "{}"}, nil
			}
			if _, ok := additional.(*schema.Object); ok {
				valueType, err := c.convert(additional, typeName+"Value")
				if err != nil {
					return nil, err
				}
				return &TSType{Kind: "primitive", RawType: fmt.Sprintf("{\n  [k: string]: %s;\n}", typeToString(valueType))}, nil
			}
		}
		return &TSType{Kind: "primitive", RawType: "{\n  [k: string]: unknown;\n}"}, nil
	}

	name := c.uniqueName(typeName)
	tsType := &TSType{Kind: "interface", Name: name}
	tsType.Description, _ = obj.GetString("description")
	// Register before recursing so nested names cannot take this one.
	c.register(tsType)

	required := make(map[string]bool)
	for _, r := range obj.GetStrings(schema.KeyRequired) {
		required[r] = true
	}

	for _, propName := range properties.Keys() {
		propSchema, _ := properties.Get(propName)
		propType, err := c.convert(propSchema, name+strutil.ToPascalCase(propName))
		if err != nil {
			return nil, fmt.Errorf("failed to convert property %q: %w", propName, err)
		}

		prop := TSProperty{
			Name:       propName,
			Type:       propType,
			IsOptional: !required[propName],
		}
		if propObj, ok := propSchema.(*schema.Object); ok {
			prop.Description, _ = propObj.GetString("description")
		}
		tsType.Properties = append(tsType.Properties, prop)
	}

	switch {
	case hasAdditional:
		if !rejectsAll(additional) {
			tsType.IndexType = "unknown"
		}
	case !c.opts.NoAdditionalProperties:
		tsType.IndexType = "unknown"
	}

	return tsType, nil
}

// convertArray converts an array schema
func (c *conversion) convertArray(obj *schema.Object, typeName string) (*TSType, error) {
	items, ok := obj.Get(schema.KeyItems)
	if !ok {
		return &TSType{Kind: "array", ElementType: unknownType}, nil
	}

	if tuple, ok := items.([]any); ok {
		members := make([]*TSType, 0, len(tuple))
		for i, item := range tuple {
			member, err := c.convert(item, fmt.Sprintf("%sItem%d", typeName, i))
			if err != nil {
				return nil, err
			}
			members = append(members, member)
		}
		return &TSType{Kind: "tuple", Members: members}, nil
	}

	elementType, err := c.convert(items, typeName+"Item")
	if err != nil {
		return nil, err
	}
	return &TSType{Kind: "array", ElementType: elementType}, nil
}

// convertEnum converts an enum to a named union of literals
func (c *conversion) convertEnum(obj *schema.Object, values []any, typeName string) *TSType {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = literal(v)
	}
	tsType := &TSType{
		Kind:    "type",
		Name:    c.uniqueName(typeName),
		RawType: strings.Join(parts, " | "),
	}
	tsType.Description, _ = obj.GetString("description")
	c.register(tsType)
	return tsType
}

// convertComposite converts oneOf/anyOf to a union and allOf to an intersection
func (c *conversion) convertComposite(raw any, typeName, kind string) (*TSType, error) {
	schemas, ok := raw.([]any)
	if !ok {
		return unknownType, nil
	}

	members := make([]*TSType, 0, len(schemas))
	for i, s := range schemas {
		member, err := c.convert(s, fmt.Sprintf("%s%d", typeName, i))
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	switch len(members) {
	case 0:
		return unknownType, nil
	case 1:
		return members[0], nil
	default:
		return &TSType{Kind: kind, Members: members}, nil
	}
}

// rejectsAll reports whether v is the false schema, including its
// {"not": {}} spelling.
func rejectsAll(v any) bool {
	switch s := v.(type) {
	case bool:
		return !s
	case *schema.Object:
		if s.Len() != 1 {
			return false
		}
		not, ok := s.Get("not")
		if !ok {
			return false
		}
		if b, ok := not.(bool); ok {
			return b
		}
		inner, ok := not.(*schema.Object)
		return ok && inner.Len() == 0
	default:
		return false
	}
}

// addTypeWithDependencies adds a type after all the named types it uses
func (c *conversion) addTypeWithDependencies(t *TSType, result *[]*TSType, seen map[string]bool) {
	if t == nil || t.Name == "" || seen[t.Name] {
		return
	}
	seen[t.Name] = true
	c.collectDependencies(t, result, seen)
	*result = append(*result, t)
}

// collectDependencies finds and adds all named types that t depends on
func (c *conversion) collectDependencies(t *TSType, result *[]*TSType, seen map[string]bool) {
	if t == nil {
		return
	}
	var deps []*TSType
	switch t.Kind {
	case "interface":
		for _, prop := range t.Properties {
			deps = append(deps, prop.Type)
		}
	case "array":
		deps = append(deps, t.ElementType)
	case "tuple", "union", "intersection":
		deps = append(deps, t.Members...)
	}

	for _, dep := range deps {
		if dep == nil {
			continue
		}
		if dep.Name != "" {
			if named, ok := c.generated[dep.Name]; ok {
				c.addTypeWithDependencies(named, result, seen)
			}
			continue
		}
		c.collectDependencies(dep, result, seen)
	}
}

// typeToString converts a TSType to its reference form
func typeToString(t *TSType) string {
	if t == nil {
		return "unknown"
	}
	if t.Name != "" {
		return t.Name
	}

	switch t.Kind {
	case "primitive", "type":
		return t.RawType
	case "array":
		elem := typeToString(t.ElementType)
		if t.ElementType != nil && t.ElementType.Name == "" &&
			(t.ElementType.Kind == "union" || t.ElementType.Kind == "intersection") {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case "tuple":
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = typeToString(m)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case "union", "intersection":
		sep := " | "
		if t.Kind == "intersection" {
			sep = " & "
		}
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = typeToString(m)
			if m.Name == "" && (m.Kind == "union" || m.Kind == "intersection") {
				parts[i] = "(" + parts[i] + ")"
			}
		}
		return strings.Join(parts, sep)
	default:
		return "unknown"
	}
}

// renderType renders a named TypeScript type/interface declaration
func renderType(t *TSType) string {
	var sb strings.Builder

	if t.Description != "" {
		sb.WriteString("/**\n")
		for _, line := range strings.Split(sanitizeComment(t.Description), "\n") {
			sb.WriteString(strings.TrimRight(" * "+line, " ") + "\n")
		}
		sb.WriteString(" */\n")
	}

	switch t.Kind {
	case "interface":
		sb.WriteString(fmt.Sprintf("export interface %s {\n", t.Name))
		for _, prop := range t.Properties {
			if prop.Description != "" {
				desc := strings.ReplaceAll(sanitizeComment(prop.Description), "\n", " ")
				sb.WriteString(fmt.Sprintf("  /** %s */\n", desc))
			}
			optional := ""
			if prop.IsOptional {
				optional = "?"
			}
			sb.WriteString(fmt.Sprintf("  %s%s: %s;\n", propertyKey(prop.Name), optional, indent(typeToString(prop.Type))))
		}
		if t.IndexType != "" {
			sb.WriteString(fmt.Sprintf("  [k: string]: %s;\n", t.IndexType))
		}
		sb.WriteString("}\n")

	default:
		sb.WriteString(fmt.Sprintf("export type %s = %s;\n", t.Name, typeToString(&TSType{Kind: t.Kind, RawType: t.RawType, Members: t.Members, ElementType: t.ElementType})))
	}

	return sb.String()
}

// indent shifts continuation lines of a multi-line inline type by one level.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}

// literal renders a JSON value as a TypeScript literal type.
func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(val)
	case bool, int, int64, float64, uint64:
		return fmt.Sprintf("%v", val)
	default:
		return "unknown"
	}
}
