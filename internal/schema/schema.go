// Package schema models the subset of JSON Schema that client generation
// interprets: boolean schemas, object schemas, internal $ref pointers,
// type, properties, required and items.
package schema

// Schema is either a Boolean schema or an *Object schema.
type Schema interface {
	isSchema()
}

// Boolean is a boolean schema: true accepts anything, false accepts nothing.
type Boolean bool

func (Boolean) isSchema() {}

func (*Object) isSchema() {}

// Keywords interpreted by the generator.
const (
	KeyRef        = "$ref"
	KeyType       = "type"
	KeyProperties = "properties"
	KeyRequired   = "required"
	KeyItems      = "items"
	KeyComment    = "$comment"
)

// Ref returns the $ref string carried by s, if any.
func Ref(s Schema) (string, bool) {
	obj, ok := s.(*Object)
	if !ok {
		return "", false
	}
	ref, ok := obj.GetString(KeyRef)
	return ref, ok
}

// TypeName returns the single "type" keyword of s. Array-valued types and
// missing types report false.
func TypeName(s Schema) (string, bool) {
	obj, ok := s.(*Object)
	if !ok {
		return "", false
	}
	return obj.GetString(KeyType)
}

// HasProperties reports whether s is an object schema declaring at least one
// property.
func HasProperties(s Schema) bool {
	obj, ok := s.(*Object)
	if !ok {
		return false
	}
	props, ok := obj.GetObject(KeyProperties)
	return ok && props.Len() > 0
}

// AsSchema converts a decoded schema position into a Schema. Booleans and
// objects map to themselves; anything else is reported as not a schema.
func AsSchema(v any) (Schema, bool) {
	switch s := v.(type) {
	case bool:
		return Boolean(s), true
	case Boolean:
		return s, true
	case *Object:
		return s, true
	case map[string]any:
		return FromMap(s), true
	default:
		return nil, false
	}
}
