package schema

// Property is one top-level property declared by an object schema.
type Property struct {
	Name        string
	Type        string // JSON "type" keyword; empty when missing or not a single string
	Required    bool
	Description string
	Schema      Schema
}

// Properties lists the top-level declared properties of s in declaration
// order. A property is required iff its name appears in "required". Only
// object-valued property schemas count; boolean schemas are skipped.
func Properties(s Schema) []Property {
	obj, ok := s.(*Object)
	if !ok {
		return nil
	}
	props, ok := obj.GetObject(KeyProperties)
	if !ok {
		return nil
	}

	required := make(map[string]bool)
	for _, name := range obj.GetStrings(KeyRequired) {
		required[name] = true
	}

	out := make([]Property, 0, props.Len())
	for _, name := range props.Keys() {
		raw, _ := props.Get(name)
		propObj, ok := raw.(*Object)
		if !ok || propObj == nil {
			continue
		}
		prop := Property{
			Name:     name,
			Required: required[name],
			Schema:   propObj,
		}
		prop.Type, _ = propObj.GetString(KeyType)
		prop.Description, _ = propObj.GetString("description")
		out = append(out, prop)
	}
	return out
}
