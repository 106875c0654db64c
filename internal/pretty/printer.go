package pretty

import "strings"

const defaultWidth = 80

type mode int

const (
	modeFlat mode = iota
	modeBreak
)

type frame struct {
	indent int
	mode   mode
	doc    Doc
}

// Print renders doc at the given maximum line width. A width <= 0
// falls back to the default of 80 columns. Output is deterministic:
// identical documents and widths produce identical strings.
func Print(doc Doc, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	var sb strings.Builder
	col := 0
	stack := []frame{{indent: 0, mode: modeBreak, doc: doc}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch d := f.doc.(type) {
		case textDoc:
			sb.WriteString(string(d))
			col += len(d)
		case lineDoc:
			if f.mode == modeFlat && !d.hard {
				sb.WriteString(d.flat)
				col += len(d.flat)
			} else {
				sb.WriteString("\n")
				sb.WriteString(strings.Repeat(" ", f.indent))
				col = f.indent
			}
		case concatDoc:
			for i := len(d) - 1; i >= 0; i-- {
				stack = append(stack, frame{f.indent, f.mode, d[i]})
			}
		case nestDoc:
			stack = append(stack, frame{f.indent + d.indent, f.mode, d.doc})
		case groupDoc:
			m := modeBreak
			if fits(width-col, frame{f.indent, modeFlat, d.doc}, stack) {
				m = modeFlat
			}
			stack = append(stack, frame{f.indent, m, d.doc})
		}
	}
	return sb.String()
}

// fits reports whether head (and the remainder of the current line in
// rest) renders within the remaining width without breaking.
func fits(remaining int, head frame, rest []frame) bool {
	if remaining < 0 {
		return false
	}
	stack := make([]frame, 0, len(rest)+1)
	stack = append(stack, rest...)
	stack = append(stack, head)

	for len(stack) > 0 && remaining >= 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch d := f.doc.(type) {
		case textDoc:
			remaining -= len(d)
		case lineDoc:
			if d.hard {
				// A hard line cannot flatten; the group must break.
				if f.mode == modeFlat {
					return false
				}
				// The current line ends here, so everything fit.
				return true
			}
			if f.mode == modeFlat {
				remaining -= len(d.flat)
			} else {
				return true
			}
		case concatDoc:
			for i := len(d) - 1; i >= 0; i-- {
				stack = append(stack, frame{f.indent, f.mode, d[i]})
			}
		case nestDoc:
			stack = append(stack, frame{f.indent + d.indent, f.mode, d.doc})
		case groupDoc:
			// Nested groups are measured flat for the fits check.
			stack = append(stack, frame{f.indent, modeFlat, d.doc})
		}
	}
	return remaining >= 0
}
