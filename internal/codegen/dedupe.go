package codegen

import (
	"fmt"
	"strings"
	"unicode"
)

// Dedupe keeps the first declaration seen for each name, in first-seen
// order. Later same-named declarations are dropped; a conflict is reported
// for each dropped one whose text differs from the kept one after whitespace
// normalization.
func Dedupe(decls []TypeDeclaration) ([]TypeDeclaration, []string) {
	kept := make([]TypeDeclaration, 0, len(decls))
	index := make(map[string]int, len(decls))
	var conflicts []string

	for _, d := range decls {
		i, seen := index[d.Name]
		if !seen {
			index[d.Name] = len(kept)
			kept = append(kept, d)
			continue
		}
		if normalizeWhitespace(kept[i].Text) != normalizeWhitespace(d.Text) {
			conflicts = append(conflicts, fmt.Sprintf("type %s declared more than once with different definitions; keeping the first", d.Name))
		}
	}
	return kept, conflicts
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitDeclarations breaks one compiled block into a declaration per
// top-level export, so nested declarations such as FooInputOutput take part
// in deduplication alongside the root. A JSDoc block at column zero belongs
// to the export that follows it. Text without a recognizable export is
// returned unchanged.
func SplitDeclarations(d TypeDeclaration) []TypeDeclaration {
	var (
		out     []TypeDeclaration
		current strings.Builder
		name    string
	)
	flush := func() {
		out = append(out, TypeDeclaration{
			Name: name,
			Text: strings.TrimRight(current.String(), "\n") + "\n",
		})
		current.Reset()
		name = ""
	}

	for _, line := range strings.SplitAfter(d.Text, "\n") {
		if line == "" {
			continue
		}
		if name != "" && strings.HasPrefix(line, "/**") {
			flush()
		}
		if exported := exportedName(line); exported != "" {
			if name != "" {
				flush()
			}
			name = exported
		}
		current.WriteString(line)
	}

	if name != "" {
		flush()
	} else if rest := strings.TrimSpace(current.String()); rest != "" && len(out) > 0 {
		last := &out[len(out)-1]
		last.Text += "\n" + rest + "\n"
	}

	if len(out) == 0 {
		return []TypeDeclaration{d}
	}
	return out
}

// exportedName returns the name declared by a top-level export line, or ""
// when line is not one.
func exportedName(line string) string {
	rest, ok := strings.CutPrefix(line, "export ")
	if !ok {
		return ""
	}
	rest = strings.TrimPrefix(rest, "declare ")
	rest = strings.TrimPrefix(rest, "const ")

	for _, keyword := range []string{"interface ", "type ", "enum ", "class "} {
		if after, ok := strings.CutPrefix(rest, keyword); ok {
			end := strings.IndexFunc(after, func(r rune) bool {
				return !(r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r))
			})
			if end < 0 {
				end = len(after)
			}
			return after[:end]
		}
	}
	return ""
}
