package codegen

import "github.com/yousuf/ctxgen/internal/strutil"

// NewToolInfo derives display and type names from an operation's wire name.
// The canonical name is made identifier-safe before use.
func NewToolInfo(name string) ToolInfo {
	pascal := SafeIdentifier(strutil.ToPascalCase(name))
	return ToolInfo{
		OriginalName:   name,
		PascalName:     pascal,
		InputTypeName:  pascal + "Input",
		OutputTypeName: pascal + "Output",
		MethodName:     pascal,
	}
}

// ServerTypeName derives the declared interface type name from a server's
// reported name, falling back to "UnknownServer".
func ServerTypeName(serverName string) string {
	name := strutil.ToPascalCase(serverName)
	if name == "" {
		name = "UnknownServer"
	}
	return SafeIdentifier(name)
}
