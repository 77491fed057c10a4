package codegen

import (
	"fmt"
	"strings"

	"github.com/yousuf/ctxgen/internal/schema"
)

// parameterTypes maps JSON "type" keywords to individual parameter types.
var parameterTypes = map[string]string{
	"string":  "string",
	"number":  "number",
	"integer": "number",
	"boolean": "boolean",
	"array":   "any[]",
	"object":  "object",
}

func parameterType(jsonType string) string {
	if t, ok := parameterTypes[jsonType]; ok {
		return t
	}
	return "any"
}

// parameter is one planned method parameter bound to a schema property.
type parameter struct {
	schema.Property
	Ident  string
	TSType string
}

// Plan decides the calling convention for op. Operations whose input schema
// declares top-level properties get one parameter per property; all others
// take a single argument of the declared input type.
func Plan(op OperationDescriptor, info ToolInfo) MethodPlan {
	props := schema.Properties(schema.Sanitize(op.InputSchema))
	if len(props) == 0 {
		return planObjectParam(op, info)
	}
	return planIndividualParams(op, info, props)
}

func planIndividualParams(op OperationDescriptor, info ToolInfo, props []schema.Property) MethodPlan {
	params := bindParameters(props)

	// Required parameters must precede optional ones.
	ordered := make([]parameter, 0, len(params))
	for _, p := range params {
		if p.Required {
			ordered = append(ordered, p)
		}
	}
	for _, p := range params {
		if !p.Required {
			ordered = append(ordered, p)
		}
	}

	decls := make([]string, len(ordered))
	docs := make([]docParam, len(ordered))
	for i, p := range ordered {
		optional := ""
		if !p.Required {
			optional = "?"
		}
		decls[i] = fmt.Sprintf("%s%s: %s", p.Ident, optional, p.TSType)
		docs[i] = docParam{
			Name:        p.Ident,
			Type:        p.TSType,
			Optional:    !p.Required,
			Description: p.Description,
		}
	}

	// The argument object keeps the schema's declared key order.
	fields := make([]string, len(params))
	for i, p := range params {
		if p.Ident == p.Name {
			fields[i] = p.Ident
		} else {
			fields[i] = fmt.Sprintf("%s: %s", propertyKey(p.Name), p.Ident)
		}
	}

	paramList := strings.Join(decls, ", ")
	body := fmt.Sprintf("return this.call(%s, { %s });", quote(op.Name), strings.Join(fields, ", "))

	return MethodPlan{
		ParameterList:      paramList,
		CallBody:           body,
		InterfaceSignature: fmt.Sprintf("  %s: (%s) => Promise<%s>;", info.MethodName, paramList, info.OutputTypeName),
		Method:             renderMethod(generateJSDoc(op, docs, info.OutputTypeName), info, paramList, body),
		Individual:         true,
	}
}

func planObjectParam(op OperationDescriptor, info ToolInfo) MethodPlan {
	paramList := "args: " + info.InputTypeName
	body := fmt.Sprintf("return this.call(%s, args);", quote(op.Name))

	return MethodPlan{
		ParameterList:      paramList,
		CallBody:           body,
		InterfaceSignature: fmt.Sprintf("  %s: (%s) => Promise<%s>;", info.MethodName, paramList, info.OutputTypeName),
		Method:             renderMethod(generateJSDoc(op, nil, info.OutputTypeName), info, paramList, body),
	}
}

// bindParameters assigns each property a unique, identifier-safe parameter
// name.
func bindParameters(props []schema.Property) []parameter {
	used := make(map[string]bool, len(props))
	for _, p := range props {
		if IsIdentifier(p.Name) {
			used[p.Name] = true
		}
	}

	params := make([]parameter, len(props))
	for i, p := range props {
		ident := p.Name
		if !IsIdentifier(ident) {
			base := SafeIdentifier(ident)
			ident = base
			for n := 2; used[ident]; n++ {
				ident = fmt.Sprintf("%s%d", base, n)
			}
			used[ident] = true
		}
		params[i] = parameter{
			Property: p,
			Ident:    ident,
			TSType:   parameterType(p.Type),
		}
	}
	return params
}

func renderMethod(doc string, info ToolInfo, paramList, body string) string {
	var sb strings.Builder
	sb.WriteString(doc)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  async %s(\n", info.MethodName))
	sb.WriteString(fmt.Sprintf("    %s\n", paramList))
	sb.WriteString(fmt.Sprintf("  ): Promise<%s> {\n", info.OutputTypeName))
	sb.WriteString(fmt.Sprintf("    %s\n", body))
	sb.WriteString("  }")
	return sb.String()
}
