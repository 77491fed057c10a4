package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yousuf/ctxgen/internal/schema"
)

// docParam is one @param line of a method's JSDoc block.
type docParam struct {
	Name        string
	Type        string
	Optional    bool
	Description string
}

// generateJSDoc renders the method-level comment block, indented for a class
// body.
func generateJSDoc(op OperationDescriptor, params []docParam, outputType string) string {
	var lines []string

	description := op.Description
	if description == "" {
		label := op.Title
		if label == "" {
			label = op.Name
		}
		description = label + " tool"
	}
	for _, line := range strings.Split(sanitizeComment(description), "\n") {
		lines = append(lines, strings.TrimRight("   * "+line, " "))
	}

	for _, p := range params {
		desc := p.Description
		if desc == "" {
			desc = parameterDescription(p.Name)
		}
		optional := ""
		if p.Optional {
			optional = "[optional] "
		}
		desc = strings.ReplaceAll(sanitizeComment(desc), "\n", " ")
		lines = append(lines, fmt.Sprintf("   * @param {%s} %s %s%s", p.Type, p.Name, optional, desc))
	}

	returns := fmt.Sprintf("The result of the %s operation", op.Name)
	if out, ok := schema.Sanitize(op.OutputSchema).(*schema.Object); ok {
		if desc, ok := out.GetString("description"); ok && desc != "" {
			returns = desc
		}
	}
	returns = strings.ReplaceAll(sanitizeComment(returns), "\n", " ")
	lines = append(lines, fmt.Sprintf("   * @returns {Promise<%s>} %s", outputType, returns))

	return "  /**\n" + strings.Join(lines, "\n") + "\n   */"
}

// parameterDescription builds a fallback description from a parameter name,
// splitting camelCase into words: "userId" -> "The user id parameter".
func parameterDescription(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			sb.WriteRune(' ')
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return fmt.Sprintf("The %s parameter", sb.String())
}
