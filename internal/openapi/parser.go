package openapi

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
)

// Format is the input serialization format hint.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatUnknown Format = ""
)

//go:embed assets/document.schema.json
var schemaFS embed.FS

var (
	structuralOnce   sync.Once
	structuralSchema *jsonschema.Schema
	structuralErr    error
)

// structural returns the compiled structural JSON Schema for the
// top-level document shape. Compiled once per process.
func structural() (*jsonschema.Schema, error) {
	structuralOnce.Do(func() {
		data, err := schemaFS.ReadFile("assets/document.schema.json")
		if err != nil {
			structuralErr = err
			return
		}
		raw, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			structuralErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("document.schema.json", raw); err != nil {
			structuralErr = err
			return
		}
		structuralSchema, structuralErr = c.Compile("document.schema.json")
	})
	return structuralSchema, structuralErr
}

// FormatFromPath derives the format hint from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case "":
		return FormatUnknown, nil
	default:
		return FormatUnknown, diagnostic.New(diagnostic.KindUnsupportedFormat, "unsupported file extension %q", ext)
	}
}

// ParseFile reads and parses an OpenAPI document from disk.
func ParseFile(path string, warn *diagnostic.Collector) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostic.Wrap(diagnostic.KindFileRead, err, "reading %s", path)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, format, warn)
}

// Parse decodes, builds, and structurally validates an OpenAPI 3.1
// document. With an unknown format hint it attempts JSON first, then
// YAML; if both fail the JSON error is reported. References are
// recorded verbatim and not resolved.
func Parse(data []byte, format Format, warn *diagnostic.Collector) (*Document, error) {
	var (
		value Value
		err   error
	)
	switch format {
	case FormatJSON:
		value, err = DecodeJSON(data)
	case FormatYAML:
		value, err = DecodeYAML(data)
	case FormatUnknown:
		value, err = DecodeJSON(data)
		if err != nil {
			var yamlErr error
			value, yamlErr = DecodeYAML(data)
			if yamlErr != nil {
				return nil, err // report the JSON error
			}
			err = nil
		}
	default:
		return nil, diagnostic.New(diagnostic.KindUnsupportedFormat, "unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	b := &builder{warn: warn}
	doc, err := b.document(value)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	// Backstop: structural JSON Schema check of the raw tree catches
	// shape violations the tolerant builder skipped over.
	sch, err := structural()
	if err != nil {
		return nil, fmt.Errorf("compiling structural schema: %w", err)
	}
	if err := sch.Validate(Interface(value)); err != nil {
		return nil, diagnostic.Wrap(diagnostic.KindMissingField, err, "document failed structural validation")
	}

	return doc, nil
}

// ValidateDocument asserts the structural invariants of a parsed
// document: a 3.1 version string, non-empty title and version, and at
// least one path.
func ValidateDocument(doc *Document) error {
	if doc.OpenAPI == "" {
		return diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath("#/openapi"), "missing openapi version field")
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.1") {
		return diagnostic.NewAt(diagnostic.KindUnsupportedVersion, diagnostic.AtPath("#/openapi"),
			"unsupported OpenAPI version %q: only 3.1.* is supported", doc.OpenAPI)
	}
	if doc.Info.Title == "" {
		return diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath("#/info/title"), "info.title must be non-empty")
	}
	if doc.Info.Version == "" {
		return diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath("#/info/version"), "info.version must be non-empty")
	}
	if doc.Paths.Len() == 0 {
		return diagnostic.NewAt(diagnostic.KindEmptyPaths, diagnostic.AtPath("#/paths"), "document declares no paths")
	}
	return nil
}
