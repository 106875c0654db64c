// Package pretty implements width-aware pretty-printing over a small
// document-combinator algebra: text, line, nest, group, concat.
//
// A group renders flat when its flattened form fits in the remaining
// line width; otherwise every soft line inside it breaks. Nesting adds
// to the indentation applied after each break.
package pretty

// Doc is a printable document. Construct values with Text, Line,
// SoftLine, HardLine, Concat, Nest and Group.
type Doc interface {
	isDoc()
}

type textDoc string

// lineDoc is a line break. flat is the text substituted when the
// enclosing group renders on one line; hard lines never flatten.
type lineDoc struct {
	flat string
	hard bool
}

type concatDoc []Doc

type nestDoc struct {
	indent int
	doc    Doc
}

type groupDoc struct {
	doc Doc
}

func (textDoc) isDoc()   {}
func (lineDoc) isDoc()   {}
func (concatDoc) isDoc() {}
func (nestDoc) isDoc()   {}
func (groupDoc) isDoc()  {}

// Nil is the empty document.
var Nil Doc = textDoc("")

// Text emits s verbatim. s must not contain newlines; use HardLine.
func Text(s string) Doc { return textDoc(s) }

// Line is a soft break: a single space when flat, a newline otherwise.
func Line() Doc { return lineDoc{flat: " "} }

// SoftLine is a soft break that collapses to nothing when flat.
func SoftLine() Doc { return lineDoc{flat: ""} }

// HardLine always breaks. A group containing a hard line never
// renders flat.
func HardLine() Doc { return lineDoc{hard: true} }

// Concat joins documents in sequence.
func Concat(docs ...Doc) Doc {
	switch len(docs) {
	case 0:
		return Nil
	case 1:
		return docs[0]
	}
	return concatDoc(docs)
}

// Nest indents every break inside doc by n additional spaces.
func Nest(n int, doc Doc) Doc { return nestDoc{indent: n, doc: doc} }

// Group marks doc as a layout choice: flat if it fits, broken if not.
func Group(doc Doc) Doc { return groupDoc{doc: doc} }

// Join interleaves sep between items.
func Join(sep Doc, items ...Doc) Doc {
	if len(items) == 0 {
		return Nil
	}
	out := make(concatDoc, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, item)
	}
	return out
}

// List renders an adaptive comma-style list: "open a, b, c close" when
// it fits, otherwise one item per line indented by indent.
func List(open string, items []Doc, sep, close string, indent int) Doc {
	if len(items) == 0 {
		return Text(open + close)
	}
	return Group(Concat(
		Text(open),
		Nest(indent, Concat(
			SoftLine(),
			Join(Concat(Text(sep), Line()), items...),
		)),
		SoftLine(),
		Text(close),
	))
}

// Lines joins documents with hard line breaks.
func Lines(docs ...Doc) Doc {
	return Join(HardLine(), docs...)
}
