package transform

import (
	"strings"
	"testing"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/openapi"
)

func parse(t *testing.T, src string) *Context {
	t.Helper()
	warn := diagnostic.NewCollector()
	doc, err := openapi.Parse([]byte(src), openapi.FormatJSON, warn)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return NewContext(doc, warn)
}

const petDoc = `{
  "openapi": "3.1.0",
  "info": {"title": "Pets", "version": "1.0.0"},
  "paths": {
    "pets/": {"get": {
      "operationId": "listPets",
      "tags": ["pets"],
      "responses": {"200": {"description": "ok", "content": {"application/json": {
        "schema": {"type": "array", "items": {"$ref": "#/components/schemas/pet_record"}}
      }}}}
    }}
  },
  "components": {"schemas": {
    "pet_record": {"type": "object", "properties": {
      "name": {"type": "string"},
      "id": {"type": "integer"}
    }, "required": ["id", "name"]},
    "pet_alias": {"$ref": "#/components/schemas/pet_record"}
  }}
}`

func TestPipeline_Default(t *testing.T) {
	ctx := parse(t, petDoc)
	if err := Default().Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Naming: pet_record becomes PetRecord, refs follow.
	if _, ok := ctx.Doc.Components.Schemas.Get("PetRecord"); !ok {
		t.Fatalf("schemas = %v, want PetRecord", ctx.Doc.Components.Schemas.Keys())
	}
	item, ok := ctx.Doc.Paths.Get("/pets")
	if !ok {
		t.Fatalf("paths = %v, want /pets", ctx.Doc.Paths.Keys())
	}
	resp, _ := item.Operations["get"].Responses.Get("200")
	if ref := resp.Content[0].Schema.Items.Ref; ref != "#/components/schemas/PetRecord" {
		t.Errorf("items ref = %q", ref)
	}

	// Properties are sorted after normalization.
	pet, _ := ctx.Doc.Components.Schemas.Get("PetRecord")
	keys := pet.Properties.Keys()
	if keys[0] != "id" || keys[1] != "name" {
		t.Errorf("properties = %v, want sorted", keys)
	}

	// Analysis tables are populated.
	if ctx.Tables.Kinds["PetRecord"] != "object" {
		t.Errorf("kind = %q", ctx.Tables.Kinds["PetRecord"])
	}
}

func TestPipeline_Order(t *testing.T) {
	order, err := Default().Order()
	if err != nil {
		t.Fatalf("Order() error: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, p := range order {
		pos[p.Name()] = i
	}
	for _, p := range order {
		for _, dep := range p.Dependencies() {
			if pos[dep] >= pos[p.Name()] {
				t.Errorf("pass %q scheduled before its dependency %q", p.Name(), dep)
			}
		}
	}
	if order[0].Name() != PassValidation {
		t.Errorf("first pass = %q", order[0].Name())
	}
	if last := order[len(order)-1].Name(); last != PassCircularReferences {
		t.Errorf("last pass = %q", last)
	}
}

type fakePass struct {
	name string
	deps []string
}

func (f *fakePass) Name() string            { return f.name }
func (f *fakePass) Dependencies() []string  { return f.deps }
func (f *fakePass) Transform(*Context) error { return nil }

func TestPipeline_MissingDependency(t *testing.T) {
	p := NewPipeline(&fakePass{name: "a", deps: []string{"ghost"}})
	_, err := p.Order()
	if diagnostic.KindOf(err) != diagnostic.KindPipelineConfig {
		t.Fatalf("err = %v, want pipeline config error", err)
	}
}

func TestPipeline_CyclicDependency(t *testing.T) {
	p := NewPipeline(
		&fakePass{name: "a", deps: []string{"b"}},
		&fakePass{name: "b", deps: []string{"a"}},
	)
	_, err := p.Order()
	if diagnostic.KindOf(err) != diagnostic.KindPipelineConfig {
		t.Fatalf("err = %v, want pipeline config error", err)
	}
}

func TestPipeline_DuplicatePass(t *testing.T) {
	p := NewPipeline(&fakePass{name: "a"}, &fakePass{name: "a"})
	if _, err := p.Order(); diagnostic.KindOf(err) != diagnostic.KindPipelineConfig {
		t.Fatalf("err = %v, want pipeline config error", err)
	}
}

func TestReferenceResolution_MissingTarget(t *testing.T) {
	ctx := parse(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {"get": {"responses": {"200": {"description": "ok", "content": {
	    "application/json": {"schema": {"$ref": "#/components/schemas/Missing"}}
	  }}}}}}
	}`)
	err := Default().Run(ctx)
	if diagnostic.KindOf(err) != diagnostic.KindInvalidReference {
		t.Fatalf("err = %v, want invalid reference", err)
	}
	loc := diagnostic.LocationOf(err)
	if loc == nil || loc.OpenAPIPath != "#/components/schemas/Missing" {
		t.Errorf("location = %+v", loc)
	}
}

func TestReferenceResolution_CollapsesAliasChain(t *testing.T) {
	ctx := parse(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "Pet": {"type": "object"},
	    "Animal": {"$ref": "#/components/schemas/Pet"},
	    "Creature": {"$ref": "#/components/schemas/Animal"}
	  }}
	}`)
	if err := (&ReferenceResolutionPass{}).Transform(ctx); err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	creature, _ := ctx.Doc.Components.Schemas.Get("Creature")
	if creature.Ref != "#/components/schemas/Pet" {
		t.Errorf("Creature.Ref = %q, want collapsed to Pet", creature.Ref)
	}
}

func TestPathNormalization(t *testing.T) {
	tests := []struct{ in, want string }{
		{"pets", "/pets"},
		{"pets/", "/pets"},
		{"/pets/", "/pets"},
		{"/", "/"},
		{"/pets", "/pets"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathNormalization_Idempotent(t *testing.T) {
	ctx := parse(t, petDoc)
	pass := &PathNormalizationPass{}
	if err := pass.Transform(ctx); err != nil {
		t.Fatal(err)
	}
	first := append([]string(nil), ctx.Doc.Paths.Keys()...)
	if err := pass.Transform(ctx); err != nil {
		t.Fatal(err)
	}
	second := ctx.Doc.Paths.Keys()
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Errorf("normalization is not idempotent: %v then %v", first, second)
	}
}

func TestPathNormalization_Conflict(t *testing.T) {
	ctx := parse(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/pets": {}, "pets/": {}}
	}`)
	err := (&PathNormalizationPass{}).Transform(ctx)
	if diagnostic.KindOf(err) != diagnostic.KindNormalizationConflict {
		t.Fatalf("err = %v, want normalization conflict", err)
	}
}

func TestNaming_Collision(t *testing.T) {
	ctx := parse(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "pet_record": {"type": "object"},
	    "PetRecord": {"type": "object"}
	  }}
	}`)
	err := (&NamingConventionPass{}).Transform(ctx)
	if diagnostic.KindOf(err) != diagnostic.KindRenameCollision {
		t.Fatalf("err = %v, want rename collision", err)
	}
}

func TestSchemaNormalization_ArrayItems(t *testing.T) {
	ctx := parse(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "List": {"type": "array"}
	  }}
	}`)
	if err := (&SchemaNormalizationPass{}).Transform(ctx); err != nil {
		t.Fatal(err)
	}
	list, _ := ctx.Doc.Components.Schemas.Get("List")
	if list.Items == nil {
		t.Fatal("items not materialized")
	}
	if ctx.Warnings.Len() == 0 {
		t.Error("expected a warning for missing items")
	}
}

func TestSchemaNormalization_SingletonUnion(t *testing.T) {
	ctx := parse(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "Wrapped": {"oneOf": [{"type": "string"}]}
	  }}
	}`)
	if err := (&SchemaNormalizationPass{}).Transform(ctx); err != nil {
		t.Fatal(err)
	}
	w, _ := ctx.Doc.Components.Schemas.Get("Wrapped")
	if len(w.OneOf) != 0 || w.PrimaryType() != "string" {
		t.Errorf("singleton union not collapsed: %+v", w)
	}
}

func TestPipeline_RecordsCycles(t *testing.T) {
	ctx := parse(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "Node": {"type": "object", "properties": {
	      "next": {"$ref": "#/components/schemas/Node"}
	    }}
	  }}
	}`)
	if err := Default().Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !ctx.Tables.InCycle("Node") {
		t.Errorf("cycles = %v, want Node self-loop", ctx.Tables.Cycles)
	}
}
