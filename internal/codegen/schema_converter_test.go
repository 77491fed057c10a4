package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousuf/ctxgen/internal/schema"
)

func mustSchema(t *testing.T, src string) *schema.Object {
	t.Helper()
	v, err := schema.Decode([]byte(src))
	require.NoError(t, err)
	obj, ok := v.(*schema.Object)
	require.True(t, ok, "expected object, got %T", v)
	return obj
}

var strict = CompileOptions{NoBannerComment: true, NoAdditionalProperties: true}

func TestSchemaConverterCompile(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		opts   CompileOptions
		want   string
	}{
		{
			name:   "required and optional properties",
			schema: `{"type": "object", "properties": {"pubkey": {"type": "string"}, "age": {"type": "integer"}}, "required": ["pubkey"]}`,
			opts:   strict,
			want:   "export interface AddUserInput {\n  pubkey: string;\n  age?: number;\n}\n",
		},
		{
			name:   "index signature when extra properties allowed",
			schema: `{"type": "object", "properties": {"id": {"type": "string"}}}`,
			opts:   CompileOptions{NoBannerComment: true},
			want:   "export interface AddUserInput {\n  id?: string;\n  [k: string]: unknown;\n}\n",
		},
		{
			name:   "explicit additionalProperties overrides option",
			schema: `{"type": "object", "properties": {"id": {"type": "string"}}, "additionalProperties": true}`,
			opts:   strict,
			want:   "export interface AddUserInput {\n  id?: string;\n  [k: string]: unknown;\n}\n",
		},
		{
			name:   "false schema spelled as not",
			schema: `{"type": "object", "properties": {"id": {"type": "string"}}, "additionalProperties": {"not": {}}}`,
			opts:   CompileOptions{NoBannerComment: true},
			want:   "export interface AddUserInput {\n  id?: string;\n}\n",
		},
		{
			name:   "descriptions become comments",
			schema: `{"type": "object", "description": "Adds a user.", "properties": {"id": {"type": "string", "description": "User id */ gone"}}}`,
			opts:   strict,
			want:   "/**\n * Adds a user.\n */\nexport interface AddUserInput {\n  /** User id *\\/ gone */\n  id?: string;\n}\n",
		},
		{
			name:   "quoted keys",
			schema: `{"type": "object", "properties": {"user-id": {"type": "string"}, "class": {"type": "string"}}, "required": ["user-id"]}`,
			opts:   strict,
			want:   "export interface AddUserInput {\n  \"user-id\": string;\n  class?: string;\n}\n",
		},
		{
			name:   "no type is unknown",
			schema: `{}`,
			opts:   strict,
			want:   "export type AddUserInput = unknown;\n",
		},
		{
			name:   "nullable union",
			schema: `{"type": ["string", "null"]}`,
			opts:   strict,
			want:   "export type AddUserInput = string | null;\n",
		},
		{
			name:   "tuple",
			schema: `{"type": "array", "items": [{"type": "string"}, {"type": "number"}]}`,
			opts:   strict,
			want:   "export type AddUserInput = [string, number];\n",
		},
		{
			name:   "array of unions",
			schema: `{"type": "array", "items": {"type": ["string", "number"]}}`,
			opts:   strict,
			want:   "export type AddUserInput = (string | number)[];\n",
		},
		{
			name:   "const and boolean properties",
			schema: `{"type": "object", "properties": {"kind": {"const": "user"}, "any": true, "none": false}, "required": ["kind"]}`,
			opts:   strict,
			want:   "export interface AddUserInput {\n  kind: \"user\";\n  any?: unknown;\n  none?: never;\n}\n",
		},
		{
			name:   "open map",
			schema: `{"type": "object", "properties": {"meta": {"type": "object", "additionalProperties": {"type": "string"}}}}`,
			opts:   strict,
			want:   "export interface AddUserInput {\n  meta?: {\n    [k: string]: string;\n  };\n}\n",
		},
		{
			name:   "recursive placeholder",
			schema: `{"type": "object", "properties": {"next": {"$comment": "recursive reference to #/$defs/node"}}}`,
			opts:   strict,
			want:   "export interface AddUserInput {\n  next?: unknown;\n}\n",
		},
		{
			name:   "dangling ref",
			schema: `{"type": "object", "properties": {"next": {"$ref": "#/nowhere"}}}`,
			opts:   strict,
			want:   "export interface AddUserInput {\n  next?: unknown;\n}\n",
		},
		{
			name:   "all of",
			schema: `{"allOf": [{"type": "string"}, {"const": "x"}]}`,
			opts:   strict,
			want:   "export type AddUserInput = string & \"x\";\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSchemaConverter().Compile(context.Background(), mustSchema(t, tt.schema), "AddUserInput", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemaConverterNestedDeclarations(t *testing.T) {
	s := mustSchema(t, `{
		"type": "object",
		"properties": {
			"user": {"type": "object", "properties": {"name": {"type": "string"}}, "required": ["name"]},
			"tags": {"type": "array", "items": {"type": "string"}},
			"role": {"enum": ["admin", "user"]}
		}
	}`)

	got, err := NewSchemaConverter().Compile(context.Background(), s, "CreateInput", strict)
	require.NoError(t, err)

	want := "export interface CreateInputUser {\n  name: string;\n}\n" +
		"\n" +
		"export type CreateInputRole = \"admin\" | \"user\";\n" +
		"\n" +
		"export interface CreateInput {\n  user?: CreateInputUser;\n  tags?: string[];\n  role?: CreateInputRole;\n}\n"
	assert.Equal(t, want, got)
}

func TestSchemaConverterBanner(t *testing.T) {
	got, err := NewSchemaConverter().Compile(context.Background(), mustSchema(t, `{"type": "string"}`), "Name", CompileOptions{})
	require.NoError(t, err)
	assert.Contains(t, got, "DO NOT MODIFY IT BY HAND")
	assert.Contains(t, got, "export type Name = string;\n")
}

func TestSchemaConverterIsDeterministic(t *testing.T) {
	src := `{"type": "object", "properties": {"b": {"type": "object", "properties": {"x": {"type": "number"}}}, "a": {"enum": [1, 2, true, null]}}}`
	first, err := NewSchemaConverter().Compile(context.Background(), mustSchema(t, src), "Thing", strict)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewSchemaConverter().Compile(context.Background(), mustSchema(t, src), "Thing", strict)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, first, "export type ThingA = 1 | 2 | true | null;")
}

func TestSchemaConverterInvalidType(t *testing.T) {
	_, err := NewSchemaConverter().Compile(context.Background(), mustSchema(t, `{"type": 5}`), "Bad", strict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type format")

	_, err = NewSchemaConverter().Compile(context.Background(), mustSchema(t, `{"type": ["string", 3]}`), "Bad", strict)
	require.Error(t, err)
}
