package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousuf/ctxgen/internal/schema"
)

func TestParseOperationsEnvelope(t *testing.T) {
	data := []byte(`{
		"tools": [
			{
				"name": "add-user",
				"description": "Adds a user",
				"inputSchema": {"type": "object", "properties": {"zeta": {"type": "string"}, "alpha": {"type": "string"}}},
				"outputSchema": {"type": "object"}
			},
			{"name": "ping"}
		]
	}`)

	ops, err := ParseOperations(data)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, "add-user", ops[0].Name)
	assert.Equal(t, "Adds a user", ops[0].Description)
	in, ok := ops[0].InputSchema.(*schema.Object)
	require.True(t, ok)
	props, _ := in.GetObject("properties")
	assert.Equal(t, []string{"zeta", "alpha"}, props.Keys())

	assert.Equal(t, "ping", ops[1].Name)
	assert.Nil(t, ops[1].InputSchema)
	assert.Nil(t, ops[1].OutputSchema)
}

func TestParseOperationsTitle(t *testing.T) {
	ops, err := ParseOperations([]byte(`[
		{"name": "add_user", "title": "Add User", "annotations": {"title": "Other"}},
		{"name": "del_user", "annotations": {"title": "Delete User"}},
		{"name": "ping"}
	]`))
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, "Add User", ops[0].Title)
	assert.Equal(t, "Delete User", ops[1].Title)
	assert.Empty(t, ops[2].Title)
}

func TestParseOperationsBareYAMLList(t *testing.T) {
	data := []byte(`
- name: echo
  inputSchema:
    type: object
    properties:
      text:
        type: string
    required: [text]
  outputSchema: true
`)

	ops, err := ParseOperations(data)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "echo", ops[0].Name)
	assert.Equal(t, true, ops[0].OutputSchema)

	plan := Plan(ops[0], NewToolInfo(ops[0].Name))
	assert.Equal(t, "text: string", plan.ParameterList)
}

func TestParseOperationsErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{name: "not a list", data: `"tools"`},
		{name: "missing tools", data: `{"items": []}`},
		{name: "tools not a list", data: `{"tools": {}}`},
		{name: "syntax", data: `{"tools": [`},
		{name: "tool not an object", data: `[1]`, invalid: true},
		{name: "unnamed tool", data: `[{"description": "x"}]`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOperations([]byte(tt.data))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidOperation)
			}
		})
	}
}

func TestParseOperationsEmpty(t *testing.T) {
	ops, err := ParseOperations([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, ops)
}
