package lower

import (
	"reflect"
	"testing"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/openapi"
	"github.com/openapi-nexus/nexus/internal/transform"
	"github.com/openapi-nexus/nexus/internal/tsast"
)

func lowered(t *testing.T, src string) *Lowerer {
	t.Helper()
	warn := diagnostic.NewCollector()
	doc, err := openapi.Parse([]byte(src), openapi.FormatJSON, warn)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	ctx := transform.NewContext(doc, warn)
	if err := transform.Default().Run(ctx); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	return New(ctx.Doc, ctx.Tables, warn)
}

func typeOf(t *testing.T, l *Lowerer, s *openapi.Schema) string {
	t.Helper()
	expr, err := l.Type(s)
	if err != nil {
		t.Fatalf("Type() error: %v", err)
	}
	return tsast.Print(expr, tsast.NewEmissionContext())
}

func TestType_Table(t *testing.T) {
	l := New(emptyDoc(), nil, nil)
	tests := []struct {
		name   string
		schema *openapi.Schema
		want   string
	}{
		{"string", &openapi.Schema{Types: []string{"string"}}, "string"},
		{"integer", &openapi.Schema{Types: []string{"integer"}}, "number"},
		{"number", &openapi.Schema{Types: []string{"number"}}, "number"},
		{"boolean", &openapi.Schema{Types: []string{"boolean"}}, "boolean"},
		{"binary", &openapi.Schema{Types: []string{"string"}, Format: "binary"}, "Blob"},
		{"nullable", &openapi.Schema{Types: []string{"string", "null"}}, "string | null"},
		{"ref", &openapi.Schema{Ref: "#/components/schemas/Pet"}, "Pet"},
		{"const", &openapi.Schema{Const: "fixed"}, "'fixed'"},
		{"enum", &openapi.Schema{Types: []string{"string"}, Enum: []any{"a", "b"}}, "'a' | 'b'"},
		{"enum with null", &openapi.Schema{Enum: []any{"a", nil}}, "'a' | null"},
		{"empty", &openapi.Schema{}, "unknown"},
		{"untyped object", &openapi.Schema{Types: []string{"object"}}, "unknown"},
		{
			"array of refs",
			&openapi.Schema{Types: []string{"array"}, Items: &openapi.Schema{Ref: "#/components/schemas/Pet"}},
			"Array<Pet>",
		},
		{
			"record",
			&openapi.Schema{Types: []string{"object"}, AdditionalProperties: &openapi.Schema{Types: []string{"string"}}},
			"{ [key: string]: string; }",
		},
		{
			"allOf",
			&openapi.Schema{AllOf: []*openapi.Schema{
				{Ref: "#/components/schemas/A"},
				{Ref: "#/components/schemas/B"},
			}},
			"A & B",
		},
		{
			"oneOf nullable",
			&openapi.Schema{
				Types: []string{"null"},
				OneOf: []*openapi.Schema{{Types: []string{"string"}}, {Types: []string{"number"}}},
			},
			"string | number | null",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := typeOf(t, l, tt.schema); got != tt.want {
				t.Errorf("Type() = %q, want %q", got, tt.want)
			}
		})
	}
}

func emptyDoc() *openapi.Document {
	doc, err := openapi.Parse([]byte(`{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}}
	}`), openapi.FormatJSON, nil)
	if err != nil {
		panic(err)
	}
	return doc
}

func TestDeclaration_OptionalProperty(t *testing.T) {
	l := lowered(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "User": {"type": "object", "properties": {
	      "id": {"type": "integer"},
	      "email": {"type": "string"}
	    }, "required": ["id"]}
	  }}
	}`)
	decls, err := l.Declarations()
	if err != nil {
		t.Fatal(err)
	}
	iface, ok := decls[0].(*tsast.Interface)
	if !ok {
		t.Fatalf("decl = %T, want interface", decls[0])
	}
	got := tsast.PrintDecl(iface, tsast.NewEmissionContext())
	want := "export interface User {\n  email?: string;\n  id: number;\n}"
	if got != want {
		t.Errorf("PrintDecl() =\n%s\nwant\n%s", got, want)
	}
}

func TestDeclaration_EnumStyles(t *testing.T) {
	const src = `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "Status": {"type": "string", "enum": ["active", "disabled"]}
	  }}
	}`
	l := lowered(t, src)
	decls, err := l.Declarations()
	if err != nil {
		t.Fatal(err)
	}
	got := tsast.PrintDecl(decls[0], tsast.NewEmissionContext())
	if got != "export type Status = 'active' | 'disabled';" {
		t.Errorf("alias form = %q", got)
	}

	l = lowered(t, src)
	l.EnumsAsEnums = true
	decls, err = l.Declarations()
	if err != nil {
		t.Fatal(err)
	}
	enum, ok := decls[0].(*tsast.Enum)
	if !ok {
		t.Fatalf("decl = %T, want enum", decls[0])
	}
	if enum.Members[0].Name != "Active" || enum.Members[0].Value != "active" {
		t.Errorf("member = %+v", enum.Members[0])
	}
}

func TestDeclaration_CyclicSchemas(t *testing.T) {
	l := lowered(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/a": {}},
	  "components": {"schemas": {
	    "Node": {"oneOf": [
	      {"$ref": "#/components/schemas/Leaf"},
	      {"$ref": "#/components/schemas/Branch"}
	    ]},
	    "Branch": {"type": "object", "properties": {
	      "children": {"type": "array", "items": {"$ref": "#/components/schemas/Node"}}
	    }, "required": ["children"]},
	    "Leaf": {"type": "object", "properties": {"value": {"type": "string"}}, "required": ["value"]}
	  }}
	}`)
	decls, err := l.Declarations()
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 3 {
		t.Fatalf("decls = %d, want 3 top-level declarations", len(decls))
	}
	var rendered []string
	for _, d := range decls {
		rendered = append(rendered, tsast.PrintDecl(d, tsast.NewEmissionContext()))
	}
	if rendered[0] != "export type Node = Leaf | Branch;" {
		t.Errorf("Node = %q", rendered[0])
	}
	if want := "export interface Branch {\n  children: Array<Node>;\n}"; rendered[1] != want {
		t.Errorf("Branch =\n%s\nwant\n%s", rendered[1], want)
	}
}

func TestClasses_GroupsByTag(t *testing.T) {
	l := lowered(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {
	    "/pets": {
	      "get": {"operationId": "listPets", "tags": ["pets"], "responses": {
	        "200": {"description": "ok", "content": {"application/json": {"schema": {
	          "type": "array", "items": {"$ref": "#/components/schemas/Pet"}
	        }}}}
	      }},
	      "post": {"operationId": "createPet", "tags": ["pets"],
	        "requestBody": {"required": true, "content": {"application/json": {"schema": {
	          "$ref": "#/components/schemas/Pet"
	        }}}},
	        "responses": {"201": {"description": "created"}}
	      }
	    },
	    "/ping": {"get": {"responses": {"200": {"description": "pong"}}}}
	  },
	  "components": {"schemas": {
	    "Pet": {"type": "object", "properties": {"id": {"type": "integer"}}, "required": ["id"]}
	  }}
	}`)
	classes, err := l.Classes()
	if err != nil {
		t.Fatal(err)
	}
	if len(classes) != 2 {
		t.Fatalf("classes = %d, want 2", len(classes))
	}
	// Paths are sorted by normalization and "/pets" precedes "/ping",
	// so the pets tag is seen first.
	if classes[1].Tag != DefaultTag || classes[1].Name != "DefaultApi" {
		t.Errorf("class[1] = %s/%s", classes[1].Tag, classes[1].Name)
	}
	pets := classes[0]
	if pets.Name != "PetsApi" {
		t.Errorf("class name = %q", pets.Name)
	}
	if !reflect.DeepEqual(pets.ModelRefs, []string{"Pet"}) {
		t.Errorf("model refs = %v", pets.ModelRefs)
	}

	list := pets.Methods[0]
	if list.Method.Name != "listPets" || !list.Method.Async {
		t.Errorf("method = %+v", list.Method)
	}
	if list.Data.Verb != "GET" || list.Method.Template != "method_get" {
		t.Errorf("verb/template = %s/%s", list.Data.Verb, list.Method.Template)
	}
	if list.Data.ReturnType != "Array<Pet>" || !list.Data.HasReturn {
		t.Errorf("return = %+v", list.Data)
	}
	sig := tsast.Print(list.Method.Return, tsast.NewEmissionContext())
	if sig != "Promise<ApiResponse<Array<Pet>>>" {
		t.Errorf("return type = %q", sig)
	}

	create := pets.Methods[1]
	if create.Method.Template != "method_mutation" || create.Data.BodyParam != "body" {
		t.Errorf("create = %+v", create.Data)
	}
	if create.Data.HasReturn {
		t.Error("201 without content should have no payload")
	}
}

func TestMethod_PathAndQueryParams(t *testing.T) {
	l := lowered(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {
	    "/pets/{pet_id}": {"get": {
	      "operationId": "getPet",
	      "parameters": [
	        {"name": "pet_id", "in": "path", "required": true, "schema": {"type": "integer"}},
	        {"name": "verbose", "in": "query", "schema": {"type": "boolean"}}
	      ],
	      "responses": {"200": {"description": "ok"}}
	    }}
	  }
	}`)
	classes, err := l.Classes()
	if err != nil {
		t.Fatal(err)
	}
	m := classes[0].Methods[0]
	if m.Data.Path != "/pets/${encodeURIComponent(String(petId))}" {
		t.Errorf("path = %q", m.Data.Path)
	}
	if len(m.Data.PathParams) != 1 || m.Data.PathParams[0].WireName != "pet_id" {
		t.Errorf("path params = %+v", m.Data.PathParams)
	}
	if len(m.Data.QueryParams) != 1 || m.Data.QueryParams[0].Name != "verbose" {
		t.Errorf("query params = %+v", m.Data.QueryParams)
	}
	// Required path param first, optional query param last.
	if m.Method.Params[0].Name != "petId" || m.Method.Params[0].Optional {
		t.Errorf("param[0] = %+v", m.Method.Params[0])
	}
	if m.Method.Params[1].Name != "verbose" || !m.Method.Params[1].Optional {
		t.Errorf("param[1] = %+v", m.Method.Params[1])
	}
}

func TestMethod_NameDerivedFromPath(t *testing.T) {
	l := lowered(t, `{
	  "openapi": "3.1.0",
	  "info": {"title": "T", "version": "1"},
	  "paths": {"/pets/{petId}/toys": {"delete": {"responses": {"204": {"description": "gone"}}}}}
	}`)
	classes, err := l.Classes()
	if err != nil {
		t.Fatal(err)
	}
	m := classes[0].Methods[0]
	if m.Method.Name != "deletePetsPetIdToys" {
		t.Errorf("derived name = %q", m.Method.Name)
	}
	if m.Method.Template != "method_delete" {
		t.Errorf("template = %q", m.Method.Template)
	}
}
