package tsast

import (
	"reflect"
	"strings"
	"testing"
)

func ctx() EmissionContext { return NewEmissionContext() }

func TestTypeExpr_Flat(t *testing.T) {
	tests := []struct {
		name string
		expr TypeExpr
		want string
	}{
		{"primitive", &Primitive{Kind: String}, "string"},
		{"literal string", &Literal{Value: "active"}, "'active'"},
		{"literal number", &Literal{Value: float64(3)}, "3"},
		{"literal bool", &Literal{Value: true}, "true"},
		{"reference", &Reference{Name: "Pet"}, "Pet"},
		{
			"reference with args",
			&Reference{Name: "ApiResponse", TypeArgs: []TypeExpr{&Reference{Name: "Pet"}}},
			"ApiResponse<Pet>",
		},
		{"array", &Array{Element: &Primitive{Kind: Number}}, "Array<number>"},
		{
			"tuple",
			&Tuple{Elements: []TypeExpr{&Primitive{Kind: String}, &Primitive{Kind: Number}}},
			"[string, number]",
		},
		{
			"union",
			&Union{Members: []TypeExpr{&Primitive{Kind: String}, &Primitive{Kind: Null}}},
			"string | null",
		},
		{
			"intersection",
			&Intersection{Members: []TypeExpr{&Reference{Name: "A"}, &Reference{Name: "B"}}},
			"A & B",
		},
		{
			"object",
			&Object{Fields: []*Field{{Name: "id", Type: &Primitive{Kind: Number}}}},
			"{ id: number; }",
		},
		{
			"index signature",
			&Object{Index: &IndexSignature{ValueType: &Primitive{Kind: String}}},
			"{ [key: string]: string; }",
		},
		{
			"function type",
			&FunctionType{
				Params: []*Param{{Name: "v", Type: &Primitive{Kind: Unknown}}},
				Return: &Primitive{Kind: Boolean},
			},
			"(v: unknown) => boolean",
		},
		{
			"quoted property",
			&Object{Fields: []*Field{{Name: "created-at", Type: &Primitive{Kind: String}}}},
			"{ 'created-at': string; }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.expr, ctx()); got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewUnion_FlattensAndDedupes(t *testing.T) {
	inner := NewUnion(&Primitive{Kind: String}, &Primitive{Kind: Null})
	u := NewUnion(inner, &Primitive{Kind: Null}, &Primitive{Kind: Number})
	if got := Print(u, ctx()); got != "string | null | number" {
		t.Errorf("Print() = %q", got)
	}
}

func TestNewUnion_SingleMemberUnwraps(t *testing.T) {
	u := NewUnion(&Primitive{Kind: String}, &Primitive{Kind: String})
	if _, ok := u.(*Primitive); !ok {
		t.Errorf("expected unwrapped primitive, got %T", u)
	}
}

func TestParenthesization(t *testing.T) {
	mixed := &Intersection{Members: []TypeExpr{
		&Union{Members: []TypeExpr{&Reference{Name: "A"}, &Reference{Name: "B"}}},
		&Reference{Name: "C"},
	}}
	if got := Print(mixed, ctx()); got != "(A | B) & C" {
		t.Errorf("Print() = %q", got)
	}
}

func TestInterface_Decl(t *testing.T) {
	decl := &Interface{
		Name: "Pet",
		Fields: []*Field{
			{Name: "id", Type: &Primitive{Kind: Number}},
			{Name: "tag", Type: &Primitive{Kind: String}, Optional: true},
		},
	}
	want := strings.Join([]string{
		"export interface Pet {",
		"  id: number;",
		"  tag?: string;",
		"}",
	}, "\n")
	if got := PrintDecl(decl, ctx()); got != want {
		t.Errorf("PrintDecl() =\n%s\nwant\n%s", got, want)
	}
}

func TestInterface_WithDocs(t *testing.T) {
	decl := &Interface{
		Name: "Pet",
		Docs: "A pet in the store.",
		Fields: []*Field{
			{Name: "id", Type: &Primitive{Kind: Number}},
		},
	}
	got := PrintDecl(decl, ctx())
	if !strings.HasPrefix(got, "/**\n * A pet in the store.\n */\n") {
		t.Errorf("missing JSDoc header:\n%s", got)
	}

	noDocs := ctx()
	noDocs.IncludeDocs = false
	if got := PrintDecl(decl, noDocs); strings.Contains(got, "/**") {
		t.Errorf("docs emitted despite IncludeDocs=false:\n%s", got)
	}
}

func TestTypeAlias_Decl(t *testing.T) {
	decl := &TypeAlias{
		Name: "Status",
		Type: NewUnion(&Literal{Value: "active"}, &Literal{Value: "disabled"}),
	}
	want := "export type Status = 'active' | 'disabled';"
	if got := PrintDecl(decl, ctx()); got != want {
		t.Errorf("PrintDecl() = %q, want %q", got, want)
	}
}

func TestEnum_Decl(t *testing.T) {
	decl := &Enum{
		Name: "Status",
		Members: []EnumMember{
			{Name: "Active", Value: "active"},
			{Name: "Disabled", Value: "disabled"},
		},
	}
	want := strings.Join([]string{
		"export enum Status {",
		"  Active = 'active',",
		"  Disabled = 'disabled',",
		"}",
	}, "\n")
	if got := PrintDecl(decl, ctx()); got != want {
		t.Errorf("PrintDecl() =\n%s\nwant\n%s", got, want)
	}
}

func TestClass_Decl(t *testing.T) {
	decl := &Class{
		Name:    "PetsApi",
		Extends: "BaseAPI",
		Methods: []*Method{{
			Name:   "getPet",
			Async:  true,
			Params: []*Param{{Name: "petId", Type: &Primitive{Kind: Number}}},
			Return: &Reference{Name: "Promise", TypeArgs: []TypeExpr{&Reference{Name: "Pet"}}},
			Body:   []string{"return this.request('GET', `/pets/${petId}`);"},
		}},
	}
	want := strings.Join([]string{
		"export class PetsApi extends BaseAPI {",
		"  async getPet(petId: number): Promise<Pet> {",
		"    return this.request('GET', `/pets/${petId}`);",
		"  }",
		"}",
	}, "\n")
	if got := PrintDecl(decl, ctx()); got != want {
		t.Errorf("PrintDecl() =\n%s\nwant\n%s", got, want)
	}
}

func TestImport(t *testing.T) {
	tests := []struct {
		name string
		imp  *Import
		want string
	}{
		{
			"named",
			&Import{Module: "./models", Named: []string{"Pet", "Order"}},
			"import { Order, Pet } from './models';",
		},
		{
			"type only",
			&Import{Module: "./runtime", Named: []string{"ApiResponse"}, TypeOnly: true},
			"import type { ApiResponse } from './runtime';",
		},
		{
			"namespace",
			&Import{Module: "node:crypto", Namespace: "crypto"},
			"import * as crypto from 'node:crypto';",
		},
		{
			"default",
			&Import{Module: "axios", Default: "axios"},
			"import axios from 'axios';",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.imp, ctx()); got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportFrom(t *testing.T) {
	e := &ExportFrom{Module: "./pet"}
	if got := PrintDecl(e, ctx()); got != "export * from './pet';" {
		t.Errorf("PrintDecl() = %q", got)
	}
	named := &ExportFrom{Module: "./runtime", Names: []string{"Configuration", "BaseAPI"}}
	want := "export { BaseAPI, Configuration } from './runtime';"
	if got := PrintDecl(named, ctx()); got != want {
		t.Errorf("PrintDecl() = %q, want %q", got, want)
	}
}

func TestCollectRefs(t *testing.T) {
	expr := &Union{Members: []TypeExpr{
		&Reference{Name: "Pet"},
		&Array{Element: &Reference{Name: "Tag"}},
		&Object{Fields: []*Field{{Name: "owner", Type: &Reference{Name: "User"}}}},
	}}
	got := CollectRefs(expr)
	want := []string{"Pet", "Tag", "User"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectRefs() = %v, want %v", got, want)
	}
}

func TestCollectDeclRefs(t *testing.T) {
	decl := &Class{
		Name: "PetsApi",
		Methods: []*Method{{
			Name:   "listPets",
			Return: &Reference{Name: "Promise", TypeArgs: []TypeExpr{&Array{Element: &Reference{Name: "Pet"}}}},
		}},
	}
	got := CollectDeclRefs(decl)
	want := []string{"Pet", "Promise"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectDeclRefs() = %v, want %v", got, want)
	}
}

func TestLongSignatureBreaks(t *testing.T) {
	m := &Method{
		Name: "updatePetWithForm",
		Params: []*Param{
			{Name: "petIdentifier", Type: &Primitive{Kind: Number}},
			{Name: "nameOverride", Type: &Primitive{Kind: String}},
			{Name: "statusOverride", Type: &Primitive{Kind: String}},
		},
		Return: &Reference{Name: "Promise", TypeArgs: []TypeExpr{&Primitive{Kind: Void}}},
	}
	narrow := ctx()
	narrow.MaxLineWidth = 40
	out := PrintDecl(&Class{Name: "Api", Methods: []*Method{m}}, narrow)
	if !strings.Contains(out, "(\n") {
		t.Errorf("expected parameter list to break at width 40:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 40 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}
