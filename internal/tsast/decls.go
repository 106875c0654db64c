package tsast

import (
	"sort"
	"strings"

	"github.com/openapi-nexus/nexus/internal/pretty"
)

// Decl is a top-level TypeScript declaration.
type Decl interface {
	ToDoc(ctx EmissionContext) pretty.Doc
}

// PrintDecl renders a declaration; top-level bodies never collapse.
func PrintDecl(d Decl, ctx EmissionContext) string {
	return pretty.Print(d.ToDoc(ctx.Multiline()), ctx.MaxLineWidth)
}

// Interface is an exported interface declaration.
type Interface struct {
	Name     string
	Docs     string
	Generics []string
	Extends  []string
	Fields   []*Field
	Index    *IndexSignature
}

func (i *Interface) ToDoc(ctx EmissionContext) pretty.Doc {
	var parts []pretty.Doc
	parts = appendDocs(parts, i.Docs, ctx)
	head := "export interface " + i.Name + genericList(i.Generics)
	if len(i.Extends) > 0 {
		head += " extends " + strings.Join(i.Extends, ", ")
	}
	parts = append(parts, pretty.Text(head+" {"))

	var members []pretty.Doc
	for _, f := range i.Fields {
		var m []pretty.Doc
		m = appendDocs(m, f.Docs, ctx)
		m = append(m, f.ToDoc(ctx), pretty.Text(";"))
		members = append(members, pretty.Concat(m...))
	}
	if i.Index != nil {
		members = append(members, pretty.Concat(i.Index.ToDoc(ctx), pretty.Text(";")))
	}
	if len(members) > 0 {
		parts = append(parts, pretty.Nest(ctx.indent(), pretty.Concat(
			pretty.HardLine(),
			pretty.Join(pretty.HardLine(), members...),
		)))
	}
	parts = append(parts, pretty.HardLine(), pretty.Text("}"))
	return pretty.Concat(parts...)
}

// TypeAlias is an exported type alias declaration.
type TypeAlias struct {
	Name     string
	Docs     string
	Generics []string
	Type     TypeExpr
}

func (a *TypeAlias) ToDoc(ctx EmissionContext) pretty.Doc {
	var parts []pretty.Doc
	parts = appendDocs(parts, a.Docs, ctx)
	parts = append(parts,
		pretty.Text("export type "+a.Name+genericList(a.Generics)+" = "),
		a.Type.ToDoc(ctx),
		pretty.Text(";"),
	)
	return pretty.Concat(parts...)
}

// EnumMember is one name/value pair of an enum declaration.
type EnumMember struct {
	Name  string
	Value any
}

// Enum is an exported enum declaration with explicit member values.
type Enum struct {
	Name    string
	Docs    string
	Members []EnumMember
}

func (e *Enum) ToDoc(ctx EmissionContext) pretty.Doc {
	var parts []pretty.Doc
	parts = appendDocs(parts, e.Docs, ctx)
	parts = append(parts, pretty.Text("export enum "+e.Name+" {"))
	var members []pretty.Doc
	for _, m := range e.Members {
		lit := &Literal{Value: m.Value}
		members = append(members, pretty.Concat(
			pretty.Text(m.Name+" = "),
			lit.ToDoc(ctx),
			pretty.Text(","),
		))
	}
	if len(members) > 0 {
		parts = append(parts, pretty.Nest(ctx.indent(), pretty.Concat(
			pretty.HardLine(),
			pretty.Join(pretty.HardLine(), members...),
		)))
	}
	parts = append(parts, pretty.HardLine(), pretty.Text("}"))
	return pretty.Concat(parts...)
}

// Property is a class property declaration.
type Property struct {
	Name       string
	Docs       string
	Type       TypeExpr
	Optional   bool
	Readonly   bool
	Visibility string // "", "public", "private", "protected"
	Value      string // initializer expression, verbatim
}

func (p *Property) ToDoc(ctx EmissionContext) pretty.Doc {
	var parts []pretty.Doc
	parts = appendDocs(parts, p.Docs, ctx)
	var head strings.Builder
	if p.Visibility != "" {
		head.WriteString(p.Visibility + " ")
	}
	if p.Readonly {
		head.WriteString("readonly ")
	}
	head.WriteString(PropertyKey(p.Name))
	if p.Optional {
		head.WriteString("?")
	}
	parts = append(parts, pretty.Text(head.String()))
	if p.Type != nil {
		parts = append(parts, pretty.Text(": "), p.Type.ToDoc(ctx))
	}
	if p.Value != "" {
		parts = append(parts, pretty.Text(" = "+p.Value))
	}
	parts = append(parts, pretty.Text(";"))
	return pretty.Concat(parts...)
}

// Method is a class method. Body carries the rendered statement lines;
// the template engine fills it in before emission.
type Method struct {
	Name     string
	Docs     string
	Async    bool
	Static   bool
	Params   []*Param
	Return   TypeExpr
	Body     []string
	Template string // body template name, consumed by the planner
	HTTPVerb string // uppercase verb for template data, e.g. "GET"
}

// Signature renders the method head without body or braces.
func (m *Method) Signature(ctx EmissionContext) pretty.Doc {
	var head strings.Builder
	if m.Static {
		head.WriteString("static ")
	}
	if m.Async {
		head.WriteString("async ")
	}
	head.WriteString(m.Name)
	params := make([]pretty.Doc, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.ToDoc(ctx)
	}
	parts := []pretty.Doc{
		pretty.Text(head.String()),
		pretty.List("(", params, ",", ")", ctx.indent()),
	}
	if m.Return != nil {
		parts = append(parts, pretty.Text(": "), m.Return.ToDoc(ctx))
	}
	return pretty.Concat(parts...)
}

func (m *Method) ToDoc(ctx EmissionContext) pretty.Doc {
	var parts []pretty.Doc
	parts = appendDocs(parts, m.Docs, ctx)
	parts = append(parts, m.Signature(ctx), pretty.Text(" {"))
	if len(m.Body) > 0 {
		var lines []pretty.Doc
		for _, l := range m.Body {
			lines = append(lines, verbatimLine(l))
		}
		parts = append(parts, pretty.Nest(ctx.indent(), pretty.Concat(
			pretty.HardLine(),
			pretty.Join(pretty.HardLine(), lines...),
		)))
	}
	parts = append(parts, pretty.HardLine(), pretty.Text("}"))
	return pretty.Concat(parts...)
}

// Class is an exported class declaration.
type Class struct {
	Name        string
	Docs        string
	Generics    []string
	Extends     string
	Implements  []string
	Properties  []*Property
	Constructor *Method
	Methods     []*Method
}

func (c *Class) ToDoc(ctx EmissionContext) pretty.Doc {
	var parts []pretty.Doc
	parts = appendDocs(parts, c.Docs, ctx)
	head := "export class " + c.Name + genericList(c.Generics)
	if c.Extends != "" {
		head += " extends " + c.Extends
	}
	if len(c.Implements) > 0 {
		head += " implements " + strings.Join(c.Implements, ", ")
	}
	parts = append(parts, pretty.Text(head+" {"))

	var members []pretty.Doc
	for _, p := range c.Properties {
		members = append(members, p.ToDoc(ctx))
	}
	if c.Constructor != nil {
		members = append(members, c.Constructor.ToDoc(ctx))
	}
	for _, m := range c.Methods {
		members = append(members, m.ToDoc(ctx))
	}
	if len(members) > 0 {
		sep := pretty.Concat(pretty.HardLine(), pretty.HardLine())
		parts = append(parts, pretty.Nest(ctx.indent(), pretty.Concat(
			pretty.HardLine(),
			pretty.Join(sep, members...),
		)))
	}
	parts = append(parts, pretty.HardLine(), pretty.Text("}"))
	return pretty.Concat(parts...)
}

// Import is a single import statement.
type Import struct {
	Module    string
	Default   string
	Namespace string
	Named     []string
	TypeOnly  bool
}

func (i *Import) ToDoc(ctx EmissionContext) pretty.Doc {
	var head strings.Builder
	head.WriteString("import ")
	if i.TypeOnly {
		head.WriteString("type ")
	}
	switch {
	case i.Namespace != "":
		head.WriteString("* as " + i.Namespace)
	case i.Default != "" && len(i.Named) == 0:
		head.WriteString(i.Default)
	default:
		if i.Default != "" {
			head.WriteString(i.Default + ", ")
		}
		names := append([]string(nil), i.Named...)
		sort.Strings(names)
		docs := make([]pretty.Doc, len(names))
		for n, name := range names {
			docs[n] = pretty.Text(name)
		}
		return pretty.Concat(
			pretty.Text(head.String()+"{"),
			pretty.Group(pretty.Concat(
				pretty.Nest(ctx.indent(), pretty.Concat(
					pretty.Line(),
					pretty.Join(pretty.Concat(pretty.Text(","), pretty.Line()), docs...),
				)),
				pretty.Line(),
			)),
			pretty.Text("} from "+QuoteString(i.Module)+";"),
		)
	}
	head.WriteString(" from " + QuoteString(i.Module) + ";")
	return pretty.Text(head.String())
}

// ExportFrom is a re-export statement for index files.
type ExportFrom struct {
	Module string
	Names  []string // empty means export *
}

func (e *ExportFrom) ToDoc(EmissionContext) pretty.Doc {
	if len(e.Names) == 0 {
		return pretty.Text("export * from " + QuoteString(e.Module) + ";")
	}
	names := append([]string(nil), e.Names...)
	sort.Strings(names)
	return pretty.Text("export { " + strings.Join(names, ", ") + " } from " + QuoteString(e.Module) + ";")
}

func genericList(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// appendDocs prepends a JSDoc block when docs are enabled.
func appendDocs(parts []pretty.Doc, docs string, ctx EmissionContext) []pretty.Doc {
	if docs == "" || !ctx.IncludeDocs {
		return parts
	}
	parts = append(parts, pretty.Text("/**"), pretty.HardLine())
	for _, line := range strings.Split(strings.TrimRight(docs, "\n"), "\n") {
		text := " *"
		if line != "" {
			text += " " + line
		}
		parts = append(parts, pretty.Text(text), pretty.HardLine())
	}
	return append(parts, pretty.Text(" */"), pretty.HardLine())
}

// verbatimLine splits an already-rendered statement into hardline
// separated text so embedded newlines keep their own indentation.
func verbatimLine(s string) pretty.Doc {
	lines := strings.Split(s, "\n")
	docs := make([]pretty.Doc, len(lines))
	for i, l := range lines {
		docs[i] = pretty.Text(l)
	}
	return pretty.Join(pretty.HardLine(), docs...)
}
