// Package templates renders the freeform half of the emitted package:
// method bodies, the runtime module, model helpers, and project files.
// Structured type output stays in the pretty-printer; the two meet in
// the filter functions, which run the printer at the engine's width.
package templates

import (
	"embed"
	"strings"
	"sync"
	"text/template"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
)

//go:embed assets/*.tmpl
var assetFS embed.FS

// Engine holds the compiled template set. Templates are embedded at
// build time and compiled once per engine; lookup is by logical name
// without the .tmpl suffix.
type Engine struct {
	width     int
	templates *template.Template

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewEngine compiles the embedded template set with filters closed
// over the given line width.
func NewEngine(width int) (*Engine, error) {
	if width <= 0 {
		width = 80
	}
	root := template.New("assets").Funcs(Filters(width))
	root, err := root.ParseFS(assetFS, "assets/*.tmpl")
	if err != nil {
		return nil, diagnostic.Wrap(diagnostic.KindTemplateRender, err, "compiling embedded templates")
	}
	return &Engine{
		width:     width,
		templates: root,
		cache:     make(map[string]*template.Template),
	}, nil
}

// Width returns the line width the filters format at.
func (e *Engine) Width() int { return e.width }

// Render executes the named template with data.
func (e *Engine) Render(name string, data any) (string, error) {
	tmpl := e.lookup(name)
	if tmpl == nil {
		return "", diagnostic.New(diagnostic.KindTemplateNotFound, "template %q is not defined", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", diagnostic.Wrap(diagnostic.KindTemplateRender, err, "rendering template %q", name)
	}
	return b.String(), nil
}

func (e *Engine) lookup(name string) *template.Template {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.cache[name]; ok {
		return t
	}
	t := e.templates.Lookup(name + ".tmpl")
	e.cache[name] = t
	return t
}

// Names returns the logical names of every embedded template, sorted
// by the parser's own ordering. Used by tests.
func (e *Engine) Names() []string {
	var out []string
	for _, t := range e.templates.Templates() {
		name := t.Name()
		if strings.HasSuffix(name, ".tmpl") {
			out = append(out, strings.TrimSuffix(name, ".tmpl"))
		}
	}
	return out
}
