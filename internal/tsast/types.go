package tsast

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openapi-nexus/nexus/internal/pretty"
)

// TypeExpr is a TypeScript type expression. Implementations lower
// themselves to a layout document; Print renders one standalone.
type TypeExpr interface {
	ToDoc(ctx EmissionContext) pretty.Doc
}

// Print renders a type expression at the context's line width.
func Print(expr TypeExpr, ctx EmissionContext) string {
	return pretty.Print(expr.ToDoc(ctx), ctx.MaxLineWidth)
}

// PrimitiveKind enumerates the built-in keyword types.
type PrimitiveKind string

const (
	String    PrimitiveKind = "string"
	Number    PrimitiveKind = "number"
	Boolean   PrimitiveKind = "boolean"
	Null      PrimitiveKind = "null"
	Undefined PrimitiveKind = "undefined"
	Any       PrimitiveKind = "any"
	Unknown   PrimitiveKind = "unknown"
	Void      PrimitiveKind = "void"
	Never     PrimitiveKind = "never"
)

// Primitive is a keyword type such as string or unknown.
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) ToDoc(EmissionContext) pretty.Doc {
	return pretty.Text(string(p.Kind))
}

// Literal is a literal type: a quoted string, a number, or a boolean.
type Literal struct {
	Value any
}

func (l *Literal) ToDoc(EmissionContext) pretty.Doc {
	switch v := l.Value.(type) {
	case string:
		return pretty.Text(QuoteString(v))
	case bool:
		return pretty.Text(fmt.Sprintf("%t", v))
	case float64:
		return pretty.Text(FormatNumber(v))
	default:
		return pretty.Text(fmt.Sprintf("%v", v))
	}
}

// Reference names a declared type, optionally with type arguments.
type Reference struct {
	Name     string
	TypeArgs []TypeExpr
}

func (r *Reference) ToDoc(ctx EmissionContext) pretty.Doc {
	if len(r.TypeArgs) == 0 {
		return pretty.Text(r.Name)
	}
	args := make([]pretty.Doc, len(r.TypeArgs))
	for i, a := range r.TypeArgs {
		args[i] = a.ToDoc(ctx)
	}
	return pretty.Concat(
		pretty.Text(r.Name),
		pretty.List("<", args, ",", ">", ctx.indent()),
	)
}

// Generic is a bare type parameter occurrence, e.g. T.
type Generic struct {
	Name string
}

func (g *Generic) ToDoc(EmissionContext) pretty.Doc {
	return pretty.Text(g.Name)
}

// Array is Array<T>.
type Array struct {
	Element TypeExpr
}

func (a *Array) ToDoc(ctx EmissionContext) pretty.Doc {
	return pretty.Concat(
		pretty.Text("Array"),
		pretty.List("<", []pretty.Doc{a.Element.ToDoc(ctx)}, ",", ">", ctx.indent()),
	)
}

// Tuple is a fixed-length positional type: [A, B].
type Tuple struct {
	Elements []TypeExpr
}

func (t *Tuple) ToDoc(ctx EmissionContext) pretty.Doc {
	elems := make([]pretty.Doc, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.ToDoc(ctx)
	}
	return pretty.List("[", elems, ",", "]", ctx.indent())
}

// Union is A | B | C. Nested unions are flattened at construction via
// NewUnion; members render in the order given.
type Union struct {
	Members []TypeExpr
}

// NewUnion builds a union, flattening nested unions and dropping
// duplicate members while preserving first-seen order. A single
// surviving member is returned unwrapped.
func NewUnion(members ...TypeExpr) TypeExpr {
	var flat []TypeExpr
	seen := make(map[string]bool)
	var add func(m TypeExpr)
	add = func(m TypeExpr) {
		if u, ok := m.(*Union); ok {
			for _, inner := range u.Members {
				add(inner)
			}
			return
		}
		key := Print(m, NewEmissionContext())
		if seen[key] {
			return
		}
		seen[key] = true
		flat = append(flat, m)
	}
	for _, m := range members {
		add(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Union{Members: flat}
}

func (u *Union) ToDoc(ctx EmissionContext) pretty.Doc {
	docs := make([]pretty.Doc, len(u.Members))
	for i, m := range u.Members {
		docs[i] = parenthesize(m, ctx, unionOperand)
	}
	return pretty.Group(pretty.Nest(ctx.indent(),
		pretty.Join(pretty.Concat(pretty.Text(" |"), pretty.Line()), docs...),
	))
}

// Intersection is A & B.
type Intersection struct {
	Members []TypeExpr
}

func (x *Intersection) ToDoc(ctx EmissionContext) pretty.Doc {
	docs := make([]pretty.Doc, len(x.Members))
	for i, m := range x.Members {
		docs[i] = parenthesize(m, ctx, intersectionOperand)
	}
	return pretty.Group(pretty.Nest(ctx.indent(),
		pretty.Join(pretty.Concat(pretty.Text(" &"), pretty.Line()), docs...),
	))
}

// Field is one member of an object type or interface body.
type Field struct {
	Name     string
	Type     TypeExpr
	Optional bool
	Readonly bool
	Docs     string
}

func (f *Field) ToDoc(ctx EmissionContext) pretty.Doc {
	var parts []pretty.Doc
	if f.Readonly {
		parts = append(parts, pretty.Text("readonly "))
	}
	parts = append(parts, pretty.Text(PropertyKey(f.Name)))
	if f.Optional {
		parts = append(parts, pretty.Text("?"))
	}
	parts = append(parts, pretty.Text(": "), f.Type.ToDoc(ctx))
	return pretty.Concat(parts...)
}

// IndexSignature is [key: string]: V.
type IndexSignature struct {
	KeyName   string // "key" when empty
	ValueType TypeExpr
}

func (s *IndexSignature) ToDoc(ctx EmissionContext) pretty.Doc {
	key := s.KeyName
	if key == "" {
		key = "key"
	}
	return pretty.Concat(
		pretty.Text("["+key+": string]: "),
		s.ValueType.ToDoc(ctx),
	)
}

// Object is an inline object type literal.
type Object struct {
	Fields []*Field
	Index  *IndexSignature
}

func (o *Object) ToDoc(ctx EmissionContext) pretty.Doc {
	if len(o.Fields) == 0 && o.Index == nil {
		return pretty.Text("{}")
	}
	var members []pretty.Doc
	for _, f := range o.Fields {
		members = append(members, f.ToDoc(ctx))
	}
	if o.Index != nil {
		members = append(members, o.Index.ToDoc(ctx))
	}
	// Flat layout keeps spaces inside the braces: { a: string }.
	body := pretty.Join(pretty.Concat(pretty.Text(";"), pretty.Line()), members...)
	doc := pretty.Group(pretty.Concat(
		pretty.Text("{"),
		pretty.Nest(ctx.indent(), pretty.Concat(pretty.Line(), body)),
		pretty.Text(";"),
		pretty.Line(),
		pretty.Text("}"),
	))
	if ctx.ForceMultiline {
		return pretty.Concat(
			pretty.Text("{"),
			pretty.Nest(ctx.indent(), pretty.Concat(pretty.HardLine(), body)),
			pretty.Text(";"),
			pretty.HardLine(),
			pretty.Text("}"),
		)
	}
	return doc
}

// Param is a function or method parameter.
type Param struct {
	Name     string
	Type     TypeExpr
	Optional bool
	Default  string
}

func (p *Param) ToDoc(ctx EmissionContext) pretty.Doc {
	parts := []pretty.Doc{pretty.Text(p.Name)}
	if p.Optional && p.Default == "" {
		parts = append(parts, pretty.Text("?"))
	}
	if p.Type != nil {
		parts = append(parts, pretty.Text(": "), p.Type.ToDoc(ctx))
	}
	if p.Default != "" {
		parts = append(parts, pretty.Text(" = "+p.Default))
	}
	return pretty.Concat(parts...)
}

// FunctionType is (a: T) => R.
type FunctionType struct {
	Params []*Param
	Return TypeExpr
}

func (f *FunctionType) ToDoc(ctx EmissionContext) pretty.Doc {
	params := make([]pretty.Doc, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.ToDoc(ctx)
	}
	ret := pretty.Text("void")
	if f.Return != nil {
		ret = f.Return.ToDoc(ctx)
	}
	return pretty.Concat(
		pretty.List("(", params, ",", ")", ctx.indent()),
		pretty.Text(" => "),
		ret,
	)
}

type operandPosition int

const (
	unionOperand operandPosition = iota
	intersectionOperand
)

// parenthesize wraps an operand when its precedence is lower than the
// surrounding operator's, so A | (B & C) and (A | B) & C round-trip.
func parenthesize(m TypeExpr, ctx EmissionContext, pos operandPosition) pretty.Doc {
	doc := m.ToDoc(ctx)
	switch m.(type) {
	case *FunctionType:
		return pretty.Concat(pretty.Text("("), doc, pretty.Text(")"))
	case *Union:
		if pos == intersectionOperand {
			return pretty.Concat(pretty.Text("("), doc, pretty.Text(")"))
		}
	case *Intersection:
		if pos == unionOperand {
			return pretty.Concat(pretty.Text("("), doc, pretty.Text(")"))
		}
	}
	return doc
}

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// PropertyKey quotes a property name when it is not a valid
// identifier, so wire names like "created-at" survive emission.
func PropertyKey(name string) string {
	if identPattern.MatchString(name) {
		return name
	}
	return QuoteString(name)
}

// QuoteString renders a single-quoted TS string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// FormatNumber renders a float the way TS source would write it,
// without a trailing .0 for integral values.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
