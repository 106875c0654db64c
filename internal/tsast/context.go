// Package tsast defines the TypeScript abstract syntax tree the
// emitter prints: type expressions, declarations, and imports. Every
// node implements the pretty-print protocol by lowering itself to a
// document (see internal/pretty).
package tsast

// EmissionContext carries the settings threaded through ToDoc calls.
type EmissionContext struct {
	// IndentLevel is the current nesting depth, in indent units.
	IndentLevel int
	// IndentWidth is the number of spaces per indent unit.
	IndentWidth int
	// MaxLineWidth is the printing width in columns.
	MaxLineWidth int
	// IncludeDocs controls JSDoc emission.
	IncludeDocs bool
	// ForceMultiline prevents containers from collapsing onto one
	// line; top-level declarations set it.
	ForceMultiline bool
}

// NewEmissionContext returns the default context: two-space indent,
// 80 columns, docs included.
func NewEmissionContext() EmissionContext {
	return EmissionContext{
		IndentWidth:  2,
		MaxLineWidth: 80,
		IncludeDocs:  true,
	}
}

// Indented returns a copy one level deeper.
func (c EmissionContext) Indented() EmissionContext {
	c.IndentLevel++
	return c
}

// Multiline returns a copy with ForceMultiline set.
func (c EmissionContext) Multiline() EmissionContext {
	c.ForceMultiline = true
	return c
}

// indent returns the indent step in spaces.
func (c EmissionContext) indent() int {
	if c.IndentWidth <= 0 {
		return 2
	}
	return c.IndentWidth
}
