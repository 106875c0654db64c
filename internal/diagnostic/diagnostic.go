// Package diagnostic defines the error and warning surface shared by
// every stage of the generator pipeline.
package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies errors into stable categories. The segment before the
// slash is the top-level category, the segment after it the subkind.
type Kind string

const (
	// Parse errors: malformed input.
	KindFileRead          Kind = "parse/file-read"
	KindJSONParse         Kind = "parse/json"
	KindYAMLParse         Kind = "parse/yaml"
	KindUnsupportedFormat Kind = "parse/unsupported-format"

	// Validation errors: structural violations of the document contract.
	KindMissingField       Kind = "validation/missing-field"
	KindEmptyPaths         Kind = "validation/empty-paths"
	KindUnsupportedVersion Kind = "validation/unsupported-version"

	// Reference errors.
	KindInvalidReference  Kind = "reference/invalid"
	KindCircularReference Kind = "reference/circular"
	KindExternalReference Kind = "reference/external"

	// Transform errors: pass-scoped failures.
	KindPipelineConfig        Kind = "transform/pipeline-config"
	KindRenameCollision       Kind = "transform/rename-collision"
	KindNormalizationConflict Kind = "transform/normalization-conflict"
	KindTransformFailed       Kind = "transform/failed"

	// Lowering errors.
	KindUnsupportedSchemaShape Kind = "lowering/unsupported-schema-shape"

	// Emission errors.
	KindTemplateNotFound    Kind = "emission/template-not-found"
	KindTemplateRender      Kind = "emission/template-render"
	KindPrettyPrintOverflow Kind = "emission/pretty-print-overflow"

	// Configuration errors.
	KindUnsupportedLanguage Kind = "config/unsupported-language"
	KindInvalidConfig       Kind = "config/invalid"
)

// Category returns the top-level category of the kind, e.g. "parse".
func (k Kind) Category() string {
	if i := strings.IndexByte(string(k), '/'); i >= 0 {
		return string(k)[:i]
	}
	return string(k)
}

// SourceLocation points at the origin of an error or warning. All
// fields are optional; OpenAPIPath is a JSON pointer into the document
// such as "#/components/schemas/Pet".
type SourceLocation struct {
	File        string
	Line        int
	Column      int
	OpenAPIPath string
}

func (l *SourceLocation) String() string {
	if l == nil {
		return ""
	}
	var sb strings.Builder
	if l.File != "" {
		sb.WriteString(l.File)
		if l.Line > 0 {
			fmt.Fprintf(&sb, ":%d", l.Line)
			if l.Column > 0 {
				fmt.Fprintf(&sb, ":%d", l.Column)
			}
		}
	}
	if l.OpenAPIPath != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(l.OpenAPIPath)
	}
	return sb.String()
}

// AtPath returns a location carrying only an OpenAPI document path.
func AtPath(path string) *SourceLocation {
	return &SourceLocation{OpenAPIPath: path}
}

// Error is the single error type surfaced by the generator. It carries
// a stable kind, a human-readable message, an optional source location,
// and an optional wrapped cause.
type Error struct {
	Kind     Kind
	Message  string
	Location *SourceLocation
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if loc := e.Location.String(); loc != "" {
		fmt.Fprintf(&sb, " (%s)", loc)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewAt creates an error of the given kind pointing at a location.
func NewAt(kind Kind, loc *SourceLocation, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain. Returns "" when the
// chain contains no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// LocationOf extracts the source location from an error chain.
func LocationOf(err error) *SourceLocation {
	var e *Error
	if errors.As(err, &e) {
		return e.Location
	}
	return nil
}
