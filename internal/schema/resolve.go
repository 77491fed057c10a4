package schema

import (
	"strconv"
	"strings"
)

// ResolveRefs replaces every internal $ref in s with the subtree it points
// at, resolved against the top of s.
//
// A pointer that cannot be followed is left in place unchanged. A pointer
// that re-enters a reference already being expanded on the current path is
// replaced by RecursivePlaceholder, so self-referential schemas terminate.
func ResolveRefs(s Schema) Schema {
	return ResolveRefsFrom(s, s)
}

// ResolveRefsFrom resolves s with pointers looked up in root.
func ResolveRefsFrom(s Schema, root Schema) Schema {
	obj, ok := s.(*Object)
	if !ok || obj == nil {
		return s
	}
	r := &resolver{root: root, active: make(map[string]bool)}
	if out, ok := AsSchema(r.resolve(obj)); ok {
		return out
	}
	return s
}

// RecursivePlaceholder is the terminal schema substituted for a cyclic
// reference. It declares no type, so it compiles to an opaque type.
func RecursivePlaceholder(ref string) *Object {
	obj := NewObject()
	obj.Set(KeyComment, "recursive reference to "+ref)
	return obj
}

type resolver struct {
	root Schema
	// active holds the refs being expanded on the current path.
	active map[string]bool
}

func (r *resolver) resolve(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.resolve(item)
		}
		return out

	case *Object:
		if val == nil {
			return v
		}
		if ref, ok := val.GetString(KeyRef); ok {
			if r.active[ref] {
				return RecursivePlaceholder(ref)
			}
			target, found := Lookup(r.root, ref)
			if !found {
				return val
			}
			r.active[ref] = true
			resolved := r.resolve(target)
			delete(r.active, ref)
			return resolved
		}

		out := NewObject()
		for _, key := range val.Keys() {
			item, _ := val.Get(key)
			out.Set(key, r.resolve(item))
		}
		return out

	default:
		return v
	}
}

// Lookup follows an internal pointer ("#" or "#/a/b") through root using
// plain property lookup. Array elements are addressed by index.
func Lookup(root Schema, ref string) (any, bool) {
	var cur any
	switch s := root.(type) {
	case Boolean:
		cur = bool(s)
	case *Object:
		cur = s
	default:
		return nil, false
	}

	if ref == "#" {
		return cur, true
	}
	if !strings.HasPrefix(ref, "#/") {
		return nil, false
	}

	for _, segment := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		segment = unescapePointer(segment)
		switch node := cur.(type) {
		case *Object:
			next, ok := node.Get(segment)
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func unescapePointer(segment string) string {
	if !strings.Contains(segment, "~") {
		return segment
	}
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}
