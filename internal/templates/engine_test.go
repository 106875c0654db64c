package templates

import (
	"strings"
	"testing"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/tsast"
)

func engine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(80)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := engine(t).Render("nope", nil)
	if diagnostic.KindOf(err) != diagnostic.KindTemplateNotFound {
		t.Fatalf("err = %v, want template not found", err)
	}
}

func TestRender_Runtime(t *testing.T) {
	out, err := engine(t).Render("runtime", map[string]string{
		"Title":   "Petstore",
		"Version": "1.0.0",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"export class BaseAPI",
		"export class Configuration",
		"export interface RequestContext",
		"export interface ApiResponse<T>",
		"export type HttpMethod",
		"export function querystring",
		"Petstore v1.0.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("runtime output missing %q", want)
		}
	}
}

type methodData struct {
	Verb         string
	Path         string
	PathParams   []paramData
	QueryParams  []paramData
	HeaderParams []paramData
	BodyParam    string
	HasReturn    bool
	ReturnType   string
}

type paramData struct {
	Name     string
	WireName string
	Required bool
}

func TestRender_MethodGet(t *testing.T) {
	out, err := engine(t).Render("method_get", methodData{
		Verb:       "GET",
		Path:       "/pets/${encodeURIComponent(String(petId))}",
		HasReturn:  true,
		ReturnType: "Pet",
		QueryParams: []paramData{
			{Name: "verbose", WireName: "verbose", Required: false},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"const query: Record<string, unknown> = {};",
		"if (verbose !== undefined) {",
		"query['verbose'] = verbose;",
		"method: 'GET',",
		"path: `/pets/${encodeURIComponent(String(petId))}`,",
		"return this.request<Pet>(options);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("method body missing %q:\n%s", want, out)
		}
	}
}

func TestRender_MethodMutationWithBody(t *testing.T) {
	out, err := engine(t).Render("method_mutation", methodData{
		Verb:       "POST",
		Path:       "/pets",
		BodyParam:  "body",
		HasReturn:  true,
		ReturnType: "Pet",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "body: body,") {
		t.Errorf("mutation body missing body option:\n%s", out)
	}
	if strings.Contains(out, "const query") {
		t.Errorf("no query params requested, got query block:\n%s", out)
	}
}

func TestRender_MethodDeleteVoid(t *testing.T) {
	out, err := engine(t).Render("method_delete", methodData{
		Verb:       "DELETE",
		Path:       "/pets/${encodeURIComponent(String(petId))}",
		ReturnType: "void",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "this.request<void>(options)") {
		t.Errorf("delete body:\n%s", out)
	}
}

func TestRender_ModelHelpers(t *testing.T) {
	out, err := engine(t).Render("model_helpers", map[string]any{
		"Name": "Pet",
		"Properties": []ModelProperty{
			{Name: "id", WireName: "id", Required: true},
			{Name: "owner", WireName: "owner", Required: false, ModelRef: "User"},
			{Name: "tags", WireName: "tags", Required: true, ModelRef: "Tag", IsArray: true},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"export function instanceOfPet(value: unknown): value is Pet",
		"if (!('id' in value)) return false;",
		"export function PetFromJSONTyped(json: any): Pet",
		"id: json['id'],",
		"owner: json['owner'] == null ? undefined : UserFromJSONTyped(json['owner']),",
		"tags: (json['tags'] as unknown[]).map((v) => TagFromJSONTyped(v)),",
		"export function PetToJSONTyped(value: Pet): any",
		"'owner': value.owner == null ? undefined : UserToJSONTyped(value.owner),",
		"'tags': value.tags.map((v) => TagToJSONTyped(v)),",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("model helpers missing %q:\n%s", want, out)
		}
	}
	// Optional properties get no presence guard.
	if strings.Contains(out, "'owner' in value") {
		t.Errorf("optional property guarded:\n%s", out)
	}
}

func TestToJSONLine_NonIdentifierName(t *testing.T) {
	got := toJSONLine(ModelProperty{Name: "created-at", WireName: "created-at", Required: true})
	if got != "'created-at': value['created-at']," {
		t.Errorf("to_json_line = %q", got)
	}
	got = toJSONLine(ModelProperty{Name: "created-at", WireName: "created-at"})
	want := "'created-at': value['created-at'] == null ? undefined : value['created-at'],"
	if got != want {
		t.Errorf("optional to_json_line = %q", got)
	}
}

func TestRender_HeaderWrapsToWidth(t *testing.T) {
	e, err := NewEngine(40)
	if err != nil {
		t.Fatal(err)
	}
	out, err := e.Render("file_header", map[string]string{
		"Title":   "Pet Store",
		"Version": "1.0.0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, " * Pet Store v1.0.0\n") {
		t.Errorf("header missing title line:\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if len(line) > 40 {
			t.Errorf("header line over width: %q", line)
		}
	}
}

func TestRender_PackageFiles(t *testing.T) {
	e := engine(t)
	pkg, err := e.Render("package_json", map[string]any{
		"Name":        "@acme/petstore-client",
		"Version":     "1.0.0",
		"Description": "Petstore API client",
		"ESM":         true,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"name": "@acme/petstore-client"`,
		"tsc -p tsconfig.esm.json",
	} {
		if !strings.Contains(pkg, want) {
			t.Errorf("package.json missing %q", want)
		}
	}

	tsconfig, err := e.Render("tsconfig_json", map[string]string{"Module": "commonjs"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tsconfig, `"module": "commonjs"`) {
		t.Errorf("tsconfig:\n%s", tsconfig)
	}
}

func TestFilters(t *testing.T) {
	fm := Filters(80)

	typeExpr := fm["format_type_expr"].(func(tsast.TypeExpr) string)
	if got := typeExpr(&tsast.Array{Element: &tsast.Reference{Name: "Pet"}}); got != "Array<Pet>" {
		t.Errorf("format_type_expr = %q", got)
	}

	sig := fm["format_method_signature"].(func(*tsast.Method) string)
	m := &tsast.Method{
		Name:   "getPet",
		Async:  true,
		Params: []*tsast.Param{{Name: "id", Type: &tsast.Primitive{Kind: tsast.Number}}},
		Return: &tsast.Reference{Name: "Promise", TypeArgs: []tsast.TypeExpr{&tsast.Reference{Name: "Pet"}}},
	}
	if got := sig(m); got != "async getPet(id: number): Promise<Pet>" {
		t.Errorf("format_method_signature = %q", got)
	}

	cls := fm["format_class_signature"].(func(*tsast.Class) string)
	c := &tsast.Class{Name: "PetsApi", Extends: "BaseAPI"}
	if got := cls(c); got != "export class PetsApi extends BaseAPI" {
		t.Errorf("format_class_signature = %q", got)
	}

	indent := fm["indent"].(func(int, string) string)
	if got := indent(2, "a\n\nb"); got != "  a\n\n  b" {
		t.Errorf("indent = %q", got)
	}

	doc := fm["format_doc_comment"].(func(string) string)
	if got := doc("Hello"); got != "/**\n * Hello\n */" {
		t.Errorf("format_doc_comment = %q", got)
	}
}

func TestEngine_NamesIncludeMethodBodies(t *testing.T) {
	names := engine(t).Names()
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{
		"method_get", "method_mutation", "method_delete", "method_default",
		"constructor_base", "runtime", "model_helpers",
		"package_json", "tsconfig_json", "tsconfig_esm_json", "readme",
	} {
		if !have[want] {
			t.Errorf("embedded templates missing %q (have %v)", want, names)
		}
	}
}
