package templates

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/openapi-nexus/nexus/internal/naming"
	"github.com/openapi-nexus/nexus/internal/pretty"
	"github.com/openapi-nexus/nexus/internal/tsast"
)

// ModelProperty is the per-property payload the model-helper filters
// consume. The planner derives it from a lowered interface plus the
// analyzer's required set.
type ModelProperty struct {
	Name     string // TS property name
	WireName string // key in the JSON payload
	Required bool
	// ModelRef names the referenced model when the property is a model
	// (or an array of one); the helper lines then route through the
	// model's own FromJSONTyped/ToJSONTyped functions.
	ModelRef string
	IsArray  bool
}

// Filters returns the engine's function map. Every filter is a pure
// function of its input plus the engine-wide line width.
func Filters(width int) template.FuncMap {
	ctx := tsast.NewEmissionContext()
	ctx.MaxLineWidth = width
	return template.FuncMap{
		"format_type_expr":           func(t tsast.TypeExpr) string { return tsast.Print(t, ctx) },
		"format_method_signature":    func(m *tsast.Method) string { return formatMethodSignature(m, ctx) },
		"format_class_signature":     formatClassSignature,
		"format_interface_signature": formatInterfaceSignature,
		"format_doc_comment":         formatDocComment,
		"format_import":              func(i *tsast.Import) string { return tsast.Print(i, ctx) },
		"format_generic_list":        formatGenericList,
		"indent":                     indentLines,
		"camel_ident":                func(s string) string { return naming.Identifier(s, naming.Camel) },
		"instance_guard":             instanceGuard,
		"wrap_comment":               wrapComment(width),
		"from_json_line":             fromJSONLine,
		"to_json_line":               toJSONLine,
	}
}

func formatMethodSignature(m *tsast.Method, ctx tsast.EmissionContext) string {
	return pretty.Print(m.Signature(ctx), ctx.MaxLineWidth)
}

func formatClassSignature(c *tsast.Class) string {
	var b strings.Builder
	b.WriteString("export class " + c.Name)
	b.WriteString(formatGenericList(c.Generics))
	if c.Extends != "" {
		b.WriteString(" extends " + c.Extends)
	}
	if len(c.Implements) > 0 {
		b.WriteString(" implements " + strings.Join(c.Implements, ", "))
	}
	return b.String()
}

func formatInterfaceSignature(i *tsast.Interface) string {
	var b strings.Builder
	b.WriteString("export interface " + i.Name)
	b.WriteString(formatGenericList(i.Generics))
	if len(i.Extends) > 0 {
		b.WriteString(" extends " + strings.Join(i.Extends, ", "))
	}
	return b.String()
}

func formatGenericList(generics []string) string {
	if len(generics) == 0 {
		return ""
	}
	return "<" + strings.Join(generics, ", ") + ">"
}

func formatDocComment(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("/**\n")
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		b.WriteString(" *")
		if line != "" {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(" */")
	return b.String()
}

// indentLines prefixes every non-empty line with n spaces.
func indentLines(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// wrapComment word-wraps comment text into lines that still fit the
// line width once the " * " prefix is added. A single word longer than
// the limit gets its own line.
func wrapComment(width int) func(string) []string {
	return func(text string) []string {
		limit := width - 3
		if limit < 1 {
			limit = 1
		}
		var lines []string
		var line string
		for _, word := range strings.Fields(text) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= limit:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
		return lines
	}
}

// instanceGuard renders the presence check for one property inside an
// instanceOf guard; optional properties need no check.
func instanceGuard(p ModelProperty) string {
	if !p.Required {
		return ""
	}
	return fmt.Sprintf("if (!(%s in value)) return false;", tsast.QuoteString(p.WireName))
}

// fromJSONLine renders one property assignment of a FromJSONTyped body.
func fromJSONLine(p ModelProperty) string {
	access := fmt.Sprintf("json[%s]", tsast.QuoteString(p.WireName))
	expr := access
	switch {
	case p.ModelRef != "" && p.IsArray:
		expr = fmt.Sprintf("(%s as unknown[]).map((v) => %sFromJSONTyped(v))", access, p.ModelRef)
	case p.ModelRef != "":
		expr = fmt.Sprintf("%sFromJSONTyped(%s)", p.ModelRef, access)
	}
	if !p.Required {
		expr = fmt.Sprintf("%s == null ? undefined : %s", access, expr)
	}
	return fmt.Sprintf("%s: %s,", tsast.PropertyKey(p.Name), expr)
}

// memberAccess renders `value.<name>`, falling back to bracket access
// when the name is not a legal TS identifier.
func memberAccess(name string) string {
	if tsast.PropertyKey(name) == name {
		return "value." + name
	}
	return fmt.Sprintf("value[%s]", tsast.QuoteString(name))
}

// toJSONLine renders one property assignment of a ToJSONTyped body.
func toJSONLine(p ModelProperty) string {
	access := memberAccess(p.Name)
	expr := access
	switch {
	case p.ModelRef != "" && p.IsArray:
		expr = fmt.Sprintf("%s.map((v) => %sToJSONTyped(v))", access, p.ModelRef)
	case p.ModelRef != "":
		expr = fmt.Sprintf("%sToJSONTyped(%s)", p.ModelRef, access)
	}
	if !p.Required {
		expr = fmt.Sprintf("%s == null ? undefined : %s", access, expr)
	}
	return fmt.Sprintf("%s: %s,", tsast.QuoteString(p.WireName), expr)
}
