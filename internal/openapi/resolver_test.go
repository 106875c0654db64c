package openapi

import (
	"strings"
	"testing"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
)

func resolverDoc(t *testing.T) *Document {
	t.Helper()
	doc := `{
  "openapi": "3.1.0",
  "info": {"title": "T", "version": "1"},
  "paths": {"/a": {}},
  "components": {
    "schemas": {
      "Pet": {"type": "object", "properties": {"name": {"type": "string"}}},
      "Animal": {"$ref": "#/components/schemas/Pet"},
      "Creature": {"$ref": "#/components/schemas/Animal"},
      "Loop": {"$ref": "#/components/schemas/Loop2"},
      "Loop2": {"$ref": "#/components/schemas/Loop"}
    },
    "parameters": {
      "limit": {"name": "limit", "in": "query", "schema": {"type": "integer"}}
    }
  }
}`
	parsed, err := Parse([]byte(doc), FormatJSON, nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return parsed
}

func TestResolver_SchemaChain(t *testing.T) {
	r := NewResolver(resolverDoc(t))
	schema, name, err := r.Schema("#/components/schemas/Creature")
	if err != nil {
		t.Fatalf("Schema() error: %v", err)
	}
	if name != "Pet" {
		t.Errorf("resolved name = %q, want Pet", name)
	}
	if schema.PrimaryType() != "object" {
		t.Errorf("resolved schema type = %q", schema.PrimaryType())
	}
}

func TestResolver_CircularChain(t *testing.T) {
	r := NewResolver(resolverDoc(t))
	_, _, err := r.Schema("#/components/schemas/Loop")
	if err == nil {
		t.Fatal("expected circular reference error")
	}
	if got := diagnostic.KindOf(err); got != diagnostic.KindCircularReference {
		t.Errorf("kind = %q", got)
	}
	if !strings.Contains(err.Error(), "->") {
		t.Errorf("error should carry the pointer chain: %v", err)
	}
}

func TestResolver_Errors(t *testing.T) {
	r := NewResolver(resolverDoc(t))
	tests := []struct {
		name string
		ptr  string
		kind diagnostic.Kind
	}{
		{"missing schema", "#/components/schemas/Missing", diagnostic.KindInvalidReference},
		{"wrong section", "#/components/unknown/X", diagnostic.KindInvalidReference},
		{"malformed", "#/definitions/Pet", diagnostic.KindInvalidReference},
		{"no name", "#/components/schemas", diagnostic.KindInvalidReference},
		{"external url", "https://example.com/api.json#/components/schemas/Pet", diagnostic.KindExternalReference},
		{"relative document", "./other.yaml#/components/schemas/Pet", diagnostic.KindExternalReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := r.Schema(tt.ptr)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := diagnostic.KindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestResolver_Parameter(t *testing.T) {
	r := NewResolver(resolverDoc(t))
	param, err := r.Parameter("#/components/parameters/limit")
	if err != nil {
		t.Fatalf("Parameter() error: %v", err)
	}
	if param.Name != "limit" || param.In != "query" {
		t.Errorf("unexpected parameter: %+v", param)
	}
}

func TestResolver_ErrorCarriesPointerLocation(t *testing.T) {
	r := NewResolver(resolverDoc(t))
	err := r.Exists("#/components/schemas/Missing")
	if err == nil {
		t.Fatal("expected error")
	}
	loc := diagnostic.LocationOf(err)
	if loc == nil || loc.OpenAPIPath != "#/components/schemas/Missing" {
		t.Errorf("location = %v", loc)
	}
}
