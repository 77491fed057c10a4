package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, src string) *Object {
	t.Helper()
	v, err := Decode([]byte(src))
	require.NoError(t, err)
	obj, ok := v.(*Object)
	require.True(t, ok, "expected object, got %T", v)
	return obj
}

func containsRef(v any) bool {
	switch val := v.(type) {
	case *Object:
		if _, ok := val.Get(KeyRef); ok {
			return true
		}
		for _, k := range val.Keys() {
			item, _ := val.Get(k)
			if containsRef(item) {
				return true
			}
		}
	case []any:
		for _, item := range val {
			if containsRef(item) {
				return true
			}
		}
	}
	return false
}

func at(t *testing.T, root Schema, ref string) any {
	t.Helper()
	v, ok := Lookup(root, ref)
	require.True(t, ok, "path %s not found", ref)
	return v
}

func TestDecodeKeepsKeyOrder(t *testing.T) {
	obj := mustDecode(t, `{"zeta": 1, "alpha": {"b": true, "a": null}, "mid": [1, "x"]}`)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())
	inner, ok := obj.GetObject("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, inner.Keys())

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta": 1, "alpha": {"b": true, "a": null}, "mid": [1, "x"]}`, string(out))
	assert.Equal(t, `{"zeta":1,"alpha":{"b":true,"a":null},"mid":[1,"x"]}`, string(out))
}

func TestDecodeYAML(t *testing.T) {
	obj := mustDecode(t, "type: object\nproperties:\n  name:\n    type: string\n")
	assert.Equal(t, []string{"type", "properties"}, obj.Keys())
	typ, _ := obj.GetString("type")
	assert.Equal(t, "object", typ)
}

func TestFromMapSortsKeys(t *testing.T) {
	obj := FromMap(map[string]any{"b": 1, "a": map[string]any{"y": 2, "x": 1}})
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	inner, ok := obj.GetObject("a")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, inner.Keys())
}

func TestSanitize(t *testing.T) {
	t.Run("booleans pass through", func(t *testing.T) {
		assert.Equal(t, Boolean(true), Sanitize(true))
		assert.Equal(t, Boolean(false), Sanitize(false))
	})

	t.Run("malformed input becomes the empty schema", func(t *testing.T) {
		for _, v := range []any{nil, "string", 42, []any{1, 2}, 3.5} {
			assert.Equal(t, NewObject(), Sanitize(v), "input %#v", v)
		}
	})

	t.Run("external refs are dropped", func(t *testing.T) {
		in := mustDecode(t, `{
			"$ref": "https://example.com/schema.json",
			"type": "object",
			"properties": {
				"a": {"$ref": "other.json#/defs/a"},
				"b": {"$ref": "#/definitions/b"},
				"c": {"$ref": 12, "type": "string"}
			},
			"anyOf": [{"$ref": "http://x"}, {"type": "null"}]
		}`)
		want := mustDecode(t, `{
			"type": "object",
			"properties": {
				"a": {},
				"b": {"$ref": "#/definitions/b"},
				"c": {"type": "string"}
			},
			"anyOf": [{}, {"type": "null"}]
		}`)
		assert.Equal(t, want, Sanitize(in))
	})

	t.Run("plain maps are accepted", func(t *testing.T) {
		got := Sanitize(map[string]any{"type": "string", "$ref": "x.json"})
		assert.Equal(t, mustDecode(t, `{"type": "string"}`), got)
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []any{
			true,
			"garbage",
			mustDecode(t, `{"$ref": "#/a", "a": {"$ref": "ext.json"}, "items": [{"$ref": "#"}]}`),
			map[string]any{"properties": map[string]any{"x": map[string]any{"$ref": 5}}},
		}
		for _, in := range inputs {
			once := Sanitize(in)
			assert.Equal(t, once, Sanitize(once))
		}
	})

	t.Run("input is not mutated", func(t *testing.T) {
		in := mustDecode(t, `{"$ref": "ext.json", "type": "object"}`)
		Sanitize(in)
		_, ok := in.Get(KeyRef)
		assert.True(t, ok)
	})
}

func TestResolveRefs(t *testing.T) {
	t.Run("two levels of chaining", func(t *testing.T) {
		in := mustDecode(t, `{
			"type": "object",
			"definitions": {
				"a": {"$ref": "#/definitions/b"},
				"b": {"$ref": "#/definitions/c"},
				"c": {"type": "object", "properties": {"id": {"type": "string"}}}
			},
			"properties": {"x": {"$ref": "#/definitions/a"}}
		}`)

		out := ResolveRefs(in)
		assert.False(t, containsRef(out))
		assert.Equal(t, at(t, in, "#/definitions/c"), at(t, out, "#/properties/x"))
		assert.Equal(t, at(t, in, "#/definitions/c"), at(t, out, "#/definitions/a"))
	})

	t.Run("pointers inside targets resolve against the root", func(t *testing.T) {
		in := mustDecode(t, `{
			"$defs": {
				"user": {"type": "object", "properties": {"tag": {"$ref": "#/$defs/tag"}}},
				"tag": {"type": "string", "enum": ["a", "b"]}
			},
			"properties": {"user": {"$ref": "#/$defs/user"}}
		}`)

		out := ResolveRefs(in)
		assert.False(t, containsRef(out))
		assert.Equal(t, at(t, in, "#/$defs/tag"), at(t, out, "#/properties/user/properties/tag"))
	})

	t.Run("dangling pointer leaves the node unchanged", func(t *testing.T) {
		in := mustDecode(t, `{"properties": {"x": {"$ref": "#/definitions/missing", "description": "d"}}}`)

		out := ResolveRefs(in)
		got := at(t, out, "#/properties/x")
		require.NotNil(t, got)
		assert.Equal(t, at(t, in, "#/properties/x"), got)
	})

	t.Run("self reference terminates with a placeholder", func(t *testing.T) {
		in := mustDecode(t, `{
			"definitions": {
				"node": {"type": "object", "properties": {"next": {"$ref": "#/definitions/node"}}}
			},
			"properties": {"head": {"$ref": "#/definitions/node"}}
		}`)

		out := ResolveRefs(in)
		assert.False(t, containsRef(out))
		assert.Equal(t, RecursivePlaceholder("#/definitions/node"), at(t, out, "#/properties/head/properties/next"))
	})

	t.Run("mutual references terminate", func(t *testing.T) {
		in := mustDecode(t, `{
			"definitions": {
				"a": {"properties": {"b": {"$ref": "#/definitions/b"}}},
				"b": {"properties": {"a": {"$ref": "#/definitions/a"}}}
			},
			"properties": {"root": {"$ref": "#/definitions/a"}}
		}`)

		out := ResolveRefs(in)
		assert.False(t, containsRef(out))
		assert.Equal(t, RecursivePlaceholder("#/definitions/a"), at(t, out, "#/properties/root/properties/b/properties/a"))
	})

	t.Run("root pointer", func(t *testing.T) {
		in := mustDecode(t, `{"type": "object", "properties": {"self": {"$ref": "#"}}}`)
		out := ResolveRefs(in)
		assert.False(t, containsRef(out))
		assert.Equal(t, RecursivePlaceholder("#"), at(t, out, "#/properties/self/properties/self"))
	})

	t.Run("escaped segments and array indexes", func(t *testing.T) {
		in := mustDecode(t, `{
			"definitions": {"a/b": {"type": "integer"}, "t~x": {"type": "boolean"}},
			"prefixItems": [{"type": "string"}],
			"properties": {
				"p": {"$ref": "#/definitions/a~1b"},
				"q": {"$ref": "#/definitions/t~0x"},
				"r": {"$ref": "#/prefixItems/0"}
			}
		}`)
		out := ResolveRefs(in)
		assert.Equal(t, mustDecode(t, `{"type": "integer"}`), at(t, out, "#/properties/p"))
		assert.Equal(t, mustDecode(t, `{"type": "boolean"}`), at(t, out, "#/properties/q"))
		assert.Equal(t, mustDecode(t, `{"type": "string"}`), at(t, out, "#/properties/r"))
	})

	t.Run("booleans pass through", func(t *testing.T) {
		assert.Equal(t, Boolean(true), ResolveRefs(Boolean(true)))
	})

	t.Run("pointer to a boolean schema", func(t *testing.T) {
		in := mustDecode(t, `{"definitions": {"any": true}, "properties": {"x": {"$ref": "#/definitions/any"}}}`)
		out := ResolveRefs(in)
		assert.Equal(t, true, at(t, out, "#/properties/x"))
	})
}

func TestProperties(t *testing.T) {
	in := mustDecode(t, `{
		"type": "object",
		"properties": {
			"b": {"type": "string", "description": "second"},
			"a": {"type": ["string", "null"]},
			"c": true,
			"d": 42
		},
		"required": ["a", "zzz"]
	}`)

	props := Properties(in)
	require.Len(t, props, 2)

	assert.Equal(t, "b", props[0].Name)
	assert.Equal(t, "string", props[0].Type)
	assert.Equal(t, "second", props[0].Description)
	assert.False(t, props[0].Required)

	assert.Equal(t, "a", props[1].Name)
	assert.Equal(t, "", props[1].Type)
	assert.True(t, props[1].Required)


	onlyBooleans := mustDecode(t, `{"type": "object", "properties": {"x": true, "y": false}}`)
	assert.Empty(t, Properties(onlyBooleans))
	assert.True(t, HasProperties(onlyBooleans))

	assert.Empty(t, Properties(Boolean(true)))
	assert.Empty(t, Properties(mustDecode(t, `{"type": "object"}`)))
	assert.True(t, HasProperties(in))
	assert.False(t, HasProperties(mustDecode(t, `{"type": "object", "properties": {}}`)))
}
