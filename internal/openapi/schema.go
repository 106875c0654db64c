package openapi

// Schema is the tagged schema variant. Exactly one of the shape groups
// is normally populated: Ref, a composition (OneOf/AnyOf/AllOf), an
// enum, an object, an array, or a primitive type. The lowering is
// total, so partially filled shapes still produce a type.
type Schema struct {
	// Ref holds the verbatim JSON pointer when this node is a
	// reference. All other fields are ignored while Ref is set.
	Ref string

	// Types is the OpenAPI 3.1 type set. A scalar `type: string`
	// parses as ["string"]; `type: ["string", "null"]` keeps both.
	Types []string

	Format      string
	Description string
	Default     any
	Deprecated  bool

	// Enum literal values, in input order. A nil entry means the
	// enum admits null.
	Enum  []any
	Const any

	// Object shape.
	Properties *OrderedMap[*Schema]
	Required   []string
	// AdditionalProperties is set when the document gives a schema;
	// AdditionalAllowed when it gives a boolean.
	AdditionalProperties *Schema
	AdditionalAllowed    *bool

	// Array shape.
	Items *Schema

	// Compositions.
	OneOf []*Schema
	AnyOf []*Schema
	AllOf []*Schema
}

// HasType reports whether the schema's type set contains t.
func (s *Schema) HasType(t string) bool {
	for _, have := range s.Types {
		if have == t {
			return true
		}
	}
	return false
}

// PrimaryType returns the first non-"null" entry of the type set.
func (s *Schema) PrimaryType() string {
	for _, t := range s.Types {
		if t != "null" {
			return t
		}
	}
	return ""
}

// Nullable reports whether the schema admits null, either through a
// "null" entry in the type set or a null enum literal.
func (s *Schema) Nullable() bool {
	if s.HasType("null") {
		return true
	}
	for _, v := range s.Enum {
		if v == nil {
			return true
		}
	}
	return false
}

// IsRef reports whether the node is a pure reference.
func (s *Schema) IsRef() bool { return s != nil && s.Ref != "" }

// RequiredSet returns the required property names as a set.
func (s *Schema) RequiredSet() map[string]bool {
	set := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		set[name] = true
	}
	return set
}

// Walk visits the schema and every inline descendant in a stable
// order: properties (insertion order), additionalProperties, items,
// then each composition list. References are visited but not followed.
func (s *Schema) Walk(visit func(*Schema)) {
	if s == nil {
		return
	}
	visit(s)
	for _, key := range s.Properties.Keys() {
		prop, _ := s.Properties.Get(key)
		prop.Walk(visit)
	}
	s.AdditionalProperties.Walk(visit)
	s.Items.Walk(visit)
	for _, sub := range s.OneOf {
		sub.Walk(visit)
	}
	for _, sub := range s.AnyOf {
		sub.Walk(visit)
	}
	for _, sub := range s.AllOf {
		sub.Walk(visit)
	}
}
