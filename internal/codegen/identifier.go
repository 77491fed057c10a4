package codegen

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// TypeScript reserved words, plus names strict mode forbids as bindings.
var reservedWords = map[string]bool{
	"arguments":  true,
	"await":      true,
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"eval":       true,
	"enum":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"implements": true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"interface":  true,
	"let":        true,
	"new":        true,
	"null":       true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"return":     true,
	"static":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"type":       true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
	"yield":      true,
}

// IsIdentifier reports whether name can be embedded as a TypeScript
// identifier unchanged.
func IsIdentifier(name string) bool {
	return isIdentifierName(name) && !reservedWords[name]
}

// isIdentifierName checks identifier syntax only; reserved words pass.
func isIdentifierName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return false
		}
	}
	return true
}

// SafeIdentifier makes name valid for TypeScript: invalid characters become
// "_", a leading digit is prefixed with "_" and reserved words get a "_"
// suffix.
func SafeIdentifier(name string) string {
	if name == "" {
		return "_"
	}
	if IsIdentifier(name) {
		return name
	}

	var result strings.Builder
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			result.WriteRune('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}

	sanitized := result.String()
	if reservedWords[sanitized] {
		return sanitized + "_"
	}
	return sanitized
}

// propertyKey renders an object key, quoting it when it is not an
// identifier name. Reserved words are valid property names.
func propertyKey(name string) string {
	if isIdentifierName(name) {
		return name
	}
	return quote(name)
}

// quote renders s as a TypeScript string literal.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// sanitizeComment escapes content that would terminate or nest a JSDoc block.
func sanitizeComment(comment string) string {
	comment = strings.ReplaceAll(comment, "*/", `*\/`)
	comment = strings.ReplaceAll(comment, "/*", `/\*`)
	return comment
}
