// Package lower maps OpenAPI schemas and operations onto TypeScript
// AST nodes. The mapping is total: every schema produces some type,
// with unknown as the fallback for shapes that carry no information.
package lower

import (
	"github.com/openapi-nexus/nexus/internal/analysis"
	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/openapi"
	"github.com/openapi-nexus/nexus/internal/tsast"
)

// Lowerer lowers one transformed document. The analysis tables decide
// the declaration form; the resolver follows component pointers.
type Lowerer struct {
	doc      *openapi.Document
	resolver *openapi.Resolver
	tables   *analysis.Tables
	warn     *diagnostic.Collector

	// EnumsAsEnums switches string enums from literal-union aliases to
	// TS enum declarations.
	EnumsAsEnums bool
}

// New creates a lowerer over a transformed document.
func New(doc *openapi.Document, tables *analysis.Tables, warn *diagnostic.Collector) *Lowerer {
	if warn == nil {
		warn = diagnostic.NewCollector()
	}
	return &Lowerer{
		doc:      doc,
		resolver: openapi.NewResolver(doc),
		tables:   tables,
		warn:     warn,
	}
}

// Type lowers a schema to a type expression.
func (l *Lowerer) Type(s *openapi.Schema) (tsast.TypeExpr, error) {
	if s == nil {
		return &tsast.Primitive{Kind: tsast.Unknown}, nil
	}
	base, err := l.baseType(s)
	if err != nil {
		return nil, err
	}
	if s.Nullable() && !s.HasType("null") {
		// Nullability via enum: [..., null]; type-set null is already
		// part of the union built from Types.
		return tsast.NewUnion(base, &tsast.Primitive{Kind: tsast.Null}), nil
	}
	return base, nil
}

func (l *Lowerer) baseType(s *openapi.Schema) (tsast.TypeExpr, error) {
	switch {
	case s.IsRef():
		name, err := openapi.SchemaName(s.Ref)
		if err != nil {
			return nil, err
		}
		return &tsast.Reference{Name: name}, nil

	case s.Const != nil:
		return &tsast.Literal{Value: s.Const}, nil

	case len(s.Enum) > 0:
		return l.enumType(s)

	case len(s.OneOf) > 0 || len(s.AnyOf) > 0:
		members := s.OneOf
		if len(members) == 0 {
			members = s.AnyOf
		}
		lowered := make([]tsast.TypeExpr, 0, len(members)+1)
		for _, m := range members {
			t, err := l.Type(m)
			if err != nil {
				return nil, err
			}
			lowered = append(lowered, t)
		}
		if s.Nullable() {
			lowered = append(lowered, &tsast.Primitive{Kind: tsast.Null})
		}
		return tsast.NewUnion(lowered...), nil

	case len(s.AllOf) > 0:
		lowered := make([]tsast.TypeExpr, 0, len(s.AllOf))
		for _, m := range s.AllOf {
			t, err := l.Type(m)
			if err != nil {
				return nil, err
			}
			lowered = append(lowered, t)
		}
		if len(lowered) == 1 {
			return lowered[0], nil
		}
		return &tsast.Intersection{Members: lowered}, nil
	}

	return l.typedShape(s)
}

// typedShape lowers by the schema's declared type set.
func (l *Lowerer) typedShape(s *openapi.Schema) (tsast.TypeExpr, error) {
	var parts []tsast.TypeExpr
	for _, t := range s.Types {
		switch t {
		case "string":
			if s.Format == "binary" {
				parts = append(parts, &tsast.Reference{Name: "Blob"})
			} else {
				parts = append(parts, &tsast.Primitive{Kind: tsast.String})
			}
		case "number", "integer":
			parts = append(parts, &tsast.Primitive{Kind: tsast.Number})
		case "boolean":
			parts = append(parts, &tsast.Primitive{Kind: tsast.Boolean})
		case "null":
			parts = append(parts, &tsast.Primitive{Kind: tsast.Null})
		case "array":
			elem, err := l.Type(s.Items)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &tsast.Array{Element: elem})
		case "object":
			obj, err := l.objectType(s)
			if err != nil {
				return nil, err
			}
			parts = append(parts, obj)
		default:
			return nil, diagnostic.New(diagnostic.KindUnsupportedSchemaShape,
				"unsupported schema type %q", t)
		}
	}
	switch len(parts) {
	case 0:
		// Untyped object shape or a schema with no information at all.
		if s.Properties.Len() > 0 || s.AdditionalProperties != nil {
			return l.objectType(s)
		}
		return &tsast.Primitive{Kind: tsast.Unknown}, nil
	case 1:
		return parts[0], nil
	}
	return tsast.NewUnion(parts...), nil
}

func (l *Lowerer) objectType(s *openapi.Schema) (tsast.TypeExpr, error) {
	var index *tsast.IndexSignature
	if s.AdditionalProperties != nil {
		value, err := l.Type(s.AdditionalProperties)
		if err != nil {
			return nil, err
		}
		index = &tsast.IndexSignature{ValueType: value}
	}
	if s.Properties.Len() == 0 {
		if index != nil {
			return &tsast.Object{Index: index}, nil
		}
		// A bare object admits anything; unknown is the honest type.
		return &tsast.Primitive{Kind: tsast.Unknown}, nil
	}

	required := s.RequiredSet()
	fields := make([]*tsast.Field, 0, s.Properties.Len())
	for _, name := range s.Properties.Keys() {
		prop, _ := s.Properties.Get(name)
		t, err := l.Type(prop)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &tsast.Field{
			Name:     name,
			Type:     t,
			Optional: !required[name],
			Docs:     prop.Description,
		})
	}
	return &tsast.Object{Fields: fields, Index: index}, nil
}

func (l *Lowerer) enumType(s *openapi.Schema) (tsast.TypeExpr, error) {
	members := make([]tsast.TypeExpr, 0, len(s.Enum))
	for _, v := range s.Enum {
		if v == nil {
			members = append(members, &tsast.Primitive{Kind: tsast.Null})
			continue
		}
		members = append(members, &tsast.Literal{Value: v})
	}
	return tsast.NewUnion(members...), nil
}

// Declaration lowers one named component schema to its top-level
// declaration. The kind table picks the form: objects become
// interfaces, everything else a type alias (or an enum declaration
// when EnumsAsEnums is set).
func (l *Lowerer) Declaration(name string, s *openapi.Schema) (tsast.Decl, error) {
	kind := analysis.Classify(s)
	if l.tables != nil && l.tables.Kinds != nil {
		if k, ok := l.tables.Kinds[name]; ok {
			kind = k
		}
	}

	if kind == analysis.KindObject && !s.Nullable() {
		obj, err := l.objectType(s)
		if err != nil {
			return nil, err
		}
		if typed, ok := obj.(*tsast.Object); ok {
			return &tsast.Interface{
				Name:   name,
				Docs:   s.Description,
				Fields: typed.Fields,
				Index:  typed.Index,
			}, nil
		}
		// Property-less object; fall through to an alias.
	}

	if kind == analysis.KindEnum && l.EnumsAsEnums && stringEnum(s) {
		members := make([]tsast.EnumMember, 0, len(s.Enum))
		for _, v := range s.Enum {
			str := v.(string)
			members = append(members, tsast.EnumMember{
				Name:  enumMemberName(str),
				Value: str,
			})
		}
		return &tsast.Enum{Name: name, Docs: s.Description, Members: members}, nil
	}

	t, err := l.Type(s)
	if err != nil {
		return nil, err
	}
	return &tsast.TypeAlias{Name: name, Docs: s.Description, Type: t}, nil
}

// Declarations lowers every component schema, in document order.
func (l *Lowerer) Declarations() ([]tsast.Decl, error) {
	schemas := l.doc.Components.Schemas
	out := make([]tsast.Decl, 0, schemas.Len())
	for _, name := range schemas.Keys() {
		s, _ := schemas.Get(name)
		decl, err := l.Declaration(name, s)
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}
	return out, nil
}

func stringEnum(s *openapi.Schema) bool {
	if len(s.Enum) == 0 {
		return false
	}
	for _, v := range s.Enum {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

func enumMemberName(value string) string {
	out := []rune{}
	upper := true
	for _, r := range value {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			upper = true
		case upper:
			out = append(out, toUpper(r))
			upper = false
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 || (out[0] >= '0' && out[0] <= '9') {
		out = append([]rune{'_'}, out...)
	}
	return string(out)
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
