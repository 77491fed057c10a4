package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanIndividualParameters(t *testing.T) {
	op := OperationDescriptor{
		Name: "add",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []any{"a"},
		},
	}

	plan := Plan(op, NewToolInfo(op.Name))

	assert.True(t, plan.Individual)
	assert.Equal(t, "a: number, b?: number", plan.ParameterList)
	assert.Equal(t, `return this.call("add", { a, b });`, plan.CallBody)
	assert.Equal(t, "  Add: (a: number, b?: number) => Promise<AddOutput>;", plan.InterfaceSignature)
	assert.Contains(t, plan.Method, "  async Add(\n    a: number, b?: number\n  ): Promise<AddOutput> {\n    return this.call(\"add\", { a, b });\n  }")
}

func TestPlanRequiredParametersComeFirst(t *testing.T) {
	op := OperationDescriptor{
		Name: "search",
		InputSchema: mustSchema(t, `{
			"type": "object",
			"properties": {
				"limit": {"type": "integer"},
				"query": {"type": "string"},
				"tags": {"type": "array"},
				"filter": {"type": "object"},
				"exact": {"type": "boolean"},
				"extra": {}
			},
			"required": ["query", "exact"]
		}`),
	}

	plan := Plan(op, NewToolInfo(op.Name))

	assert.Equal(t, "query: string, exact: boolean, limit?: number, tags?: any[], filter?: object, extra?: any", plan.ParameterList)
	// Repacking follows the schema's declared order.
	assert.Equal(t, `return this.call("search", { limit, query, tags, filter, exact, extra });`, plan.CallBody)
}

func TestPlanObjectParameter(t *testing.T) {
	for _, input := range []any{
		nil,
		true,
		map[string]any{"type": "object"},
		map[string]any{"type": "object", "properties": map[string]any{}},
		map[string]any{"type": "object", "properties": map[string]any{"x": true, "y": false}},
	} {
		op := OperationDescriptor{Name: "get-status", InputSchema: input}
		plan := Plan(op, NewToolInfo(op.Name))

		assert.False(t, plan.Individual)
		assert.Equal(t, "args: GetStatusInput", plan.ParameterList)
		assert.Equal(t, `return this.call("get-status", args);`, plan.CallBody)
		assert.Equal(t, "  GetStatus: (args: GetStatusInput) => Promise<GetStatusOutput>;", plan.InterfaceSignature)
	}
}

func TestPlanUnsafePropertyNames(t *testing.T) {
	op := OperationDescriptor{
		Name: "rename",
		InputSchema: mustSchema(t, `{
			"type": "object",
			"properties": {
				"user-id": {"type": "string"},
				"class": {"type": "string"},
				"user_id": {"type": "string"},
				"2fa": {"type": "boolean"}
			},
			"required": ["user-id", "class", "user_id", "2fa"]
		}`),
	}

	plan := Plan(op, NewToolInfo(op.Name))

	assert.Equal(t, "user_id2: string, class_: string, user_id: string, _2fa: boolean", plan.ParameterList)
	assert.Equal(t, `return this.call("rename", { "user-id": user_id2, class: class_, user_id, "2fa": _2fa });`, plan.CallBody)
}

func TestPlanUsesWireNameVerbatim(t *testing.T) {
	op := OperationDescriptor{
		Name:        `weird "name"/v1`,
		InputSchema: map[string]any{"type": "object"},
	}
	info := NewToolInfo(op.Name)

	plan := Plan(op, info)

	assert.Equal(t, "Weird_name_V1", info.PascalName)
	assert.Equal(t, `return this.call("weird \"name\"/v1", args);`, plan.CallBody)
}

func TestPlanJSDoc(t *testing.T) {
	op := OperationDescriptor{
		Name:        "add-user",
		Description: "Adds a user.\nSecond line.",
		InputSchema: mustSchema(t, `{
			"type": "object",
			"properties": {
				"pubkey": {"type": "string", "description": "Public key"},
				"displayName": {"type": "string"}
			},
			"required": ["pubkey"]
		}`),
		OutputSchema: map[string]any{"type": "object", "description": "The created user"},
	}

	plan := Plan(op, NewToolInfo(op.Name))

	want := "  /**\n" +
		"   * Adds a user.\n" +
		"   * Second line.\n" +
		"   * @param {string} pubkey Public key\n" +
		"   * @param {string} displayName [optional] The display name parameter\n" +
		"   * @returns {Promise<AddUserOutput>} The created user\n" +
		"   */\n"
	require.True(t, len(plan.Method) > len(want))
	assert.Equal(t, want, plan.Method[:len(want)])
}

func TestPlanJSDocDefaults(t *testing.T) {
	op := OperationDescriptor{Name: "ping"}
	plan := Plan(op, NewToolInfo(op.Name))

	assert.Contains(t, plan.Method, "   * ping tool\n")
	assert.Contains(t, plan.Method, "   * @returns {Promise<PingOutput>} The result of the ping operation\n")
}

func TestPlanJSDocTitleFallback(t *testing.T) {
	op := OperationDescriptor{Name: "ping", Title: "Ping Server"}
	plan := Plan(op, NewToolInfo(op.Name))

	assert.Contains(t, plan.Method, "   * Ping Server tool\n")
	assert.NotContains(t, plan.Method, "   * ping tool\n")
}
