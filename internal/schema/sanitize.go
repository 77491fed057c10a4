package schema

import "strings"

// Sanitize turns an arbitrary decoded value into a well-formed Schema.
//
// Booleans pass through. Anything that is not an object becomes the empty
// (accept anything) object schema. Objects are deep-copied, dropping every
// $ref that is not an internal "#..." pointer. Sanitize never fails, so one
// malformed operation cannot abort a whole generation batch.
func Sanitize(v any) Schema {
	switch s := v.(type) {
	case bool:
		return Boolean(s)
	case Boolean:
		return s
	case *Object:
		if s == nil {
			return NewObject()
		}
		return sanitizeObject(s)
	case map[string]any:
		if s == nil {
			return NewObject()
		}
		return sanitizeObject(FromMap(s))
	default:
		return NewObject()
	}
}

func sanitizeObject(obj *Object) *Object {
	out := NewObject()
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		if key == KeyRef {
			if ref, ok := val.(string); ok && strings.HasPrefix(ref, "#") {
				out.Set(key, ref)
			}
			continue
		}
		out.Set(key, sanitizeValue(val))
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return nil
		}
		return sanitizeObject(val)
	case map[string]any:
		return sanitizeObject(FromMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	default:
		return Normalize(v)
	}
}
