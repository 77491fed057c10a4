package strutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == ' '
}

// ToPascalCase converts an operation or server name to its canonical
// PascalCase form.
//
// "/" is treated as "-". When the name contains a separator ("-", "_" or
// space) every segment is capitalized and the rest of it lower-cased, so
// "GET_user-info" becomes "GetUserInfo". Without separators only the first
// letter is upper-cased and the remainder is kept, so "addUser" becomes
// "AddUser".
func ToPascalCase(s string) string {
	if s == "" {
		return ""
	}

	normalized := strings.ReplaceAll(s, "/", "-")

	if !strings.ContainsFunc(normalized, isSeparator) {
		return upperFirst(normalized)
	}

	parts := strings.FieldsFunc(normalized, isSeparator)
	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString(upperFirst(strings.ToLower(part)))
	}
	return sb.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
