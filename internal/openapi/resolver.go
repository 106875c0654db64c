package openapi

import (
	"strings"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
)

// componentSections lists the pointer sections the resolver accepts.
var componentSections = map[string]bool{
	"schemas":         true,
	"responses":       true,
	"parameters":      true,
	"securitySchemes": true,
}

// Resolver resolves intra-document JSON pointers of the form
// #/components/<section>/<name>. External and malformed pointers are
// rejected; reference chains are followed with a visited set so a
// cycle surfaces as CircularReference instead of recursing forever.
type Resolver struct {
	doc *Document
}

// NewResolver creates a resolver over doc.
func NewResolver(doc *Document) *Resolver {
	return &Resolver{doc: doc}
}

// ParsePointer splits a component pointer into section and name.
func ParsePointer(ptr string) (section, name string, err error) {
	if !strings.HasPrefix(ptr, "#") {
		// URLs and relative documents point outside this document.
		return "", "", diagnostic.NewAt(diagnostic.KindExternalReference, diagnostic.AtPath(ptr),
			"external references are not supported")
	}
	rest, ok := strings.CutPrefix(ptr, "#/components/")
	if !ok {
		return "", "", diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
			"reference must take the form #/components/<section>/<name>")
	}
	section, name, ok = strings.Cut(rest, "/")
	if !ok || section == "" || name == "" || strings.Contains(name, "/") {
		return "", "", diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
			"reference must take the form #/components/<section>/<name>")
	}
	if !componentSections[section] {
		return "", "", diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
			"unknown components section %q", section)
	}
	return section, name, nil
}

// SchemaName returns the component-schema name a pointer refers to,
// or an error when the pointer targets another section.
func SchemaName(ptr string) (string, error) {
	section, name, err := ParsePointer(ptr)
	if err != nil {
		return "", err
	}
	if section != "schemas" {
		return "", diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
			"expected a schema reference, got section %q", section)
	}
	return name, nil
}

// Schema resolves a schema pointer, following Ref chains. The second
// return value is the final component name.
func (r *Resolver) Schema(ptr string) (*Schema, string, error) {
	visited := make(map[string]bool)
	var chain []string
	for {
		if visited[ptr] {
			return nil, "", diagnostic.NewAt(diagnostic.KindCircularReference, diagnostic.AtPath(ptr),
				"circular reference chain: %s", strings.Join(append(chain, ptr), " -> "))
		}
		visited[ptr] = true
		chain = append(chain, ptr)

		name, err := SchemaName(ptr)
		if err != nil {
			return nil, "", err
		}
		schema, ok := r.doc.Components.Schemas.Get(name)
		if !ok {
			return nil, "", diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
				"schema %q is not defined", name)
		}
		if !schema.IsRef() {
			return schema, name, nil
		}
		ptr = schema.Ref
	}
}

// Parameter resolves a parameter pointer, following Ref chains.
func (r *Resolver) Parameter(ptr string) (*Parameter, error) {
	visited := make(map[string]bool)
	var chain []string
	for {
		if visited[ptr] {
			return nil, diagnostic.NewAt(diagnostic.KindCircularReference, diagnostic.AtPath(ptr),
				"circular reference chain: %s", strings.Join(append(chain, ptr), " -> "))
		}
		visited[ptr] = true
		chain = append(chain, ptr)

		section, name, err := ParsePointer(ptr)
		if err != nil {
			return nil, err
		}
		if section != "parameters" {
			return nil, diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
				"expected a parameter reference, got section %q", section)
		}
		param, ok := r.doc.Components.Parameters.Get(name)
		if !ok {
			return nil, diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
				"parameter %q is not defined", name)
		}
		if param.Ref == "" {
			return param, nil
		}
		ptr = param.Ref
	}
}

// Response resolves a response pointer, following Ref chains.
func (r *Resolver) Response(ptr string) (*Response, error) {
	visited := make(map[string]bool)
	var chain []string
	for {
		if visited[ptr] {
			return nil, diagnostic.NewAt(diagnostic.KindCircularReference, diagnostic.AtPath(ptr),
				"circular reference chain: %s", strings.Join(append(chain, ptr), " -> "))
		}
		visited[ptr] = true
		chain = append(chain, ptr)

		section, name, err := ParsePointer(ptr)
		if err != nil {
			return nil, err
		}
		if section != "responses" {
			return nil, diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
				"expected a response reference, got section %q", section)
		}
		resp, ok := r.doc.Components.Responses.Get(name)
		if !ok {
			return nil, diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
				"response %q is not defined", name)
		}
		if resp.Ref == "" {
			return resp, nil
		}
		ptr = resp.Ref
	}
}

// Exists reports whether a pointer can be resolved, without following
// chains past the first hop.
func (r *Resolver) Exists(ptr string) error {
	section, name, err := ParsePointer(ptr)
	if err != nil {
		return err
	}
	var ok bool
	switch section {
	case "schemas":
		_, ok = r.doc.Components.Schemas.Get(name)
	case "responses":
		_, ok = r.doc.Components.Responses.Get(name)
	case "parameters":
		_, ok = r.doc.Components.Parameters.Get(name)
	case "securitySchemes":
		_, ok = r.doc.Components.SecuritySchemes.Get(name)
	}
	if !ok {
		return diagnostic.NewAt(diagnostic.KindInvalidReference, diagnostic.AtPath(ptr),
			"%s component %q is not defined", strings.TrimSuffix(section, "s"), name)
	}
	return nil
}
