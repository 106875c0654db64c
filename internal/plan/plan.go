// Package plan partitions lowered declarations into emitted files:
// one model per file, one API class per tag, the runtime module, and
// the project files. It also resolves and orders per-file imports.
package plan

import (
	"sort"
	"strings"

	"github.com/openapi-nexus/nexus/internal/lower"
	"github.com/openapi-nexus/nexus/internal/naming"
	"github.com/openapi-nexus/nexus/internal/openapi"
	"github.com/openapi-nexus/nexus/internal/pretty"
	"github.com/openapi-nexus/nexus/internal/templates"
	"github.com/openapi-nexus/nexus/internal/tsast"
)

// Category classifies a generated file.
type Category string

const (
	CategoryModels  Category = "models"
	CategoryApis    Category = "apis"
	CategoryRuntime Category = "runtime"
	CategoryProject Category = "project"
)

// File is one emitted file, with a path relative to the package root.
type File struct {
	Path     string
	Content  string
	Category Category
}

// Planner assembles files from lowered declarations. It owns the
// filename convention and the emission context; rendering of freeform
// parts goes through the template engine.
type Planner struct {
	Engine         *templates.Engine
	Emission       tsast.EmissionContext
	FileConvention naming.Convention

	// Info fills the generated file headers and project files.
	Title   string
	Version string
}

// NewPlanner creates a planner with kebab-case filenames.
func NewPlanner(engine *templates.Engine, emission tsast.EmissionContext) *Planner {
	return &Planner{
		Engine:         engine,
		Emission:       emission,
		FileConvention: naming.Kebab,
	}
}

type headerData struct {
	Title   string
	Version string
}

func (p *Planner) header() (string, error) {
	return p.Engine.Render("file_header", headerData{Title: p.Title, Version: p.Version})
}

// FileName derives the file stem for a declared name. Filenames take
// the convention without identifier sanitization; a hyphen is legal in
// a path.
func (p *Planner) FileName(name string) string {
	if stem := p.FileConvention.Apply(name); stem != "" {
		return stem
	}
	return "unnamed"
}

// ModelFile emits one component schema declaration under models/,
// together with its helper functions when the declaration is an
// interface. modelNames is the full set of emitted model names, used
// to distinguish sibling imports from globals.
func (p *Planner) ModelFile(name string, decl tsast.Decl, modelNames map[string]bool) (File, error) {
	var b strings.Builder
	head, err := p.header()
	if err != nil {
		return File{}, err
	}
	b.WriteString(head)
	b.WriteString("\n")

	refs := tsast.CollectDeclRefs(decl)
	var imports []*tsast.Import
	for _, ref := range refs {
		if ref == name || !modelNames[ref] {
			continue
		}
		imports = append(imports, &tsast.Import{
			Module:   "./" + p.FileName(ref),
			Named:    []string{ref},
			TypeOnly: true,
		})
	}
	writeImports(&b, imports, p.Emission)

	b.WriteString(tsast.PrintDecl(decl, p.Emission))
	b.WriteString("\n")

	if iface, ok := decl.(*tsast.Interface); ok {
		helpers, err := p.Engine.Render("model_helpers", map[string]any{
			"Name":       name,
			"Properties": modelProperties(iface, modelNames),
		})
		if err != nil {
			return File{}, err
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(helpers, "\n"))
		b.WriteString("\n")
	}

	return File{
		Path:     "models/" + p.FileName(name) + ".ts",
		Content:  b.String(),
		Category: CategoryModels,
	}, nil
}

// modelProperties maps interface fields onto the helper payload. A
// field referencing another model routes through that model's own
// typed mapping functions.
func modelProperties(iface *tsast.Interface, modelNames map[string]bool) []templates.ModelProperty {
	props := make([]templates.ModelProperty, 0, len(iface.Fields))
	for _, f := range iface.Fields {
		prop := templates.ModelProperty{
			Name:     f.Name,
			WireName: f.Name,
			Required: !f.Optional,
		}
		switch t := f.Type.(type) {
		case *tsast.Reference:
			if modelNames[t.Name] {
				prop.ModelRef = t.Name
			}
		case *tsast.Array:
			if ref, ok := t.Element.(*tsast.Reference); ok && modelNames[ref.Name] {
				prop.ModelRef = ref.Name
				prop.IsArray = true
			}
		}
		props = append(props, prop)
	}
	return props
}

// ModelsIndex emits models/index.ts re-exporting every model in
// sorted order.
func (p *Planner) ModelsIndex(names []string) (File, error) {
	head, err := p.header()
	if err != nil {
		return File{}, err
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")
	for _, name := range sorted {
		e := &tsast.ExportFrom{Module: "./" + p.FileName(name)}
		b.WriteString(pretty.Print(e.ToDoc(p.Emission), p.Emission.MaxLineWidth))
		b.WriteString("\n")
	}
	return File{Path: "models/index.ts", Content: b.String(), Category: CategoryModels}, nil
}

// APIFile emits one API class under apis/: body templates rendered per
// method, a constructor delegating to BaseAPI, and resolved imports.
func (p *Planner) APIFile(class *lower.APIClass) (File, error) {
	head, err := p.header()
	if err != nil {
		return File{}, err
	}

	methods := make([]*tsast.Method, 0, len(class.Methods))
	for _, plan := range class.Methods {
		body, err := p.Engine.Render(plan.Method.Template, plan.Data)
		if err != nil {
			return File{}, err
		}
		m := *plan.Method
		m.Body = splitBody(body)
		methods = append(methods, &m)
	}

	ctorBody, err := p.Engine.Render("constructor_base", nil)
	if err != nil {
		return File{}, err
	}
	ctor := &tsast.Method{
		Name: "constructor",
		Params: []*tsast.Param{{
			Name:    "configuration",
			Type:    &tsast.Reference{Name: "Configuration"},
			Default: "new Configuration()",
		}},
		Body: splitBody(ctorBody),
	}

	ts := &tsast.Class{
		Name:        class.Name,
		Docs:        class.Docs,
		Extends:     "BaseAPI",
		Constructor: ctor,
		Methods:     methods,
	}

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")

	// Runtime values first, then runtime types, then sibling models.
	imports := []*tsast.Import{
		{Module: "../runtime", Named: []string{"BaseAPI", "Configuration"}},
		{Module: "../runtime", Named: []string{"ApiResponse", "RequestContext"}, TypeOnly: true},
	}
	for _, ref := range class.ModelRefs {
		imports = append(imports, &tsast.Import{
			Module:   "../models/" + p.FileName(ref),
			Named:    []string{ref},
			TypeOnly: true,
		})
	}
	writeImports(&b, imports, p.Emission)

	b.WriteString(tsast.PrintDecl(ts, p.Emission))
	b.WriteString("\n")

	return File{
		Path:     "apis/" + p.FileName(class.Name) + ".ts",
		Content:  b.String(),
		Category: CategoryApis,
	}, nil
}

// ApisIndex emits apis/index.ts.
func (p *Planner) ApisIndex(classes []*lower.APIClass) (File, error) {
	head, err := p.header()
	if err != nil {
		return File{}, err
	}
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")
	for _, name := range names {
		e := &tsast.ExportFrom{Module: "./" + p.FileName(name)}
		b.WriteString(pretty.Print(e.ToDoc(p.Emission), p.Emission.MaxLineWidth))
		b.WriteString("\n")
	}
	return File{Path: "apis/index.ts", Content: b.String(), Category: CategoryApis}, nil
}

// RuntimeFile renders runtime.ts from its template.
func (p *Planner) RuntimeFile() (File, error) {
	content, err := p.Engine.Render("runtime", headerData{Title: p.Title, Version: p.Version})
	if err != nil {
		return File{}, err
	}
	return File{Path: "runtime.ts", Content: content, Category: CategoryRuntime}, nil
}

// RootIndex emits index.ts re-exporting the runtime and both groups.
func (p *Planner) RootIndex(hasModels, hasApis bool) (File, error) {
	head, err := p.header()
	if err != nil {
		return File{}, err
	}
	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")
	b.WriteString("export * from './runtime';\n")
	if hasModels {
		b.WriteString("export * from './models';\n")
	}
	if hasApis {
		b.WriteString("export * from './apis';\n")
	}
	return File{Path: "index.ts", Content: b.String(), Category: CategoryProject}, nil
}

// ProjectOptions carries the package-file knobs.
type ProjectOptions struct {
	PackageName string
	Module      string // tsconfig module setting
	ESM         bool   // also emit tsconfig.esm.json
	Classes     []string
}

// ProjectFiles renders package.json, the tsconfig files, and README.md.
func (p *Planner) ProjectFiles(opts ProjectOptions) ([]File, error) {
	var out []File

	pkg, err := p.Engine.Render("package_json", map[string]any{
		"Name":        opts.PackageName,
		"Version":     p.Version,
		"Description": p.Title + " API client",
		"ESM":         opts.ESM,
	})
	if err != nil {
		return nil, err
	}
	out = append(out, File{Path: "package.json", Content: pkg, Category: CategoryProject})

	tsconfig, err := p.Engine.Render("tsconfig_json", map[string]string{"Module": opts.Module})
	if err != nil {
		return nil, err
	}
	out = append(out, File{Path: "tsconfig.json", Content: tsconfig, Category: CategoryProject})

	if opts.ESM {
		esm, err := p.Engine.Render("tsconfig_esm_json", nil)
		if err != nil {
			return nil, err
		}
		out = append(out, File{Path: "tsconfig.esm.json", Content: esm, Category: CategoryProject})
	}

	readme, err := p.Engine.Render("readme", map[string]any{
		"PackageName": opts.PackageName,
		"Title":       p.Title,
		"Version":     p.Version,
		"Classes":     opts.Classes,
	})
	if err != nil {
		return nil, err
	}
	out = append(out, File{Path: "README.md", Content: readme, Category: CategoryProject})

	return out, nil
}

// PackageName derives the npm package name from the document title,
// with an optional scope prefix.
func PackageName(doc *openapi.Document, scope string) string {
	name := naming.Kebab.Apply(doc.Info.Title) + "-client"
	if scope == "" {
		return name
	}
	return strings.TrimSuffix(scope, "/") + "/" + name
}

// writeImports renders imports grouped and deduplicated: runtime
// modules first, then sibling modules alphabetically. Named specifiers
// of imports sharing a module and type-only flag are merged.
func writeImports(b *strings.Builder, imports []*tsast.Import, ctx tsast.EmissionContext) {
	if len(imports) == 0 {
		return
	}
	type key struct {
		module   string
		typeOnly bool
	}
	merged := make(map[key]*tsast.Import)
	var order []key
	for _, imp := range imports {
		k := key{imp.Module, imp.TypeOnly}
		if have, ok := merged[k]; ok {
			have.Named = dedupe(append(have.Named, imp.Named...))
			continue
		}
		cp := *imp
		cp.Named = dedupe(cp.Named)
		merged[k] = &cp
		order = append(order, k)
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := isRuntime(order[i].module), isRuntime(order[j].module)
		if ri != rj {
			return ri
		}
		if order[i].module != order[j].module {
			return order[i].module < order[j].module
		}
		// Value imports precede type-only imports of the same module.
		return !order[i].typeOnly && order[j].typeOnly
	})
	for _, k := range order {
		b.WriteString(pretty.Print(merged[k].ToDoc(ctx), ctx.MaxLineWidth))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func isRuntime(module string) bool {
	return module == "./runtime" || module == "../runtime"
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func splitBody(rendered string) []string {
	trimmed := strings.Trim(rendered, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
