package openapi

import (
	"fmt"
	"strings"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
)

// builder turns a decoded Value tree into the typed Document. It does
// not resolve references; pointers are recorded verbatim.
type builder struct {
	warn *diagnostic.Collector
}

func (b *builder) document(v Value) (*Document, error) {
	root, ok := v.(*Map)
	if !ok {
		return nil, diagnostic.New(diagnostic.KindMissingField, "document root must be an object")
	}

	doc := &Document{
		Paths:      NewOrderedMap[*PathItem](),
		Components: newComponents(),
	}
	doc.OpenAPI = stringAt(root, "openapi")

	if infoVal, ok := root.Get("info"); ok {
		if info, ok := infoVal.(*Map); ok {
			doc.Info = Info{
				Title:       stringAt(info, "title"),
				Version:     stringAt(info, "version"),
				Description: stringAt(info, "description"),
			}
		}
	}

	if serversVal, ok := root.Get("servers"); ok {
		if servers, ok := serversVal.([]Value); ok {
			for _, sv := range servers {
				if sm, ok := sv.(*Map); ok {
					doc.Servers = append(doc.Servers, Server{
						URL:         stringAt(sm, "url"),
						Description: stringAt(sm, "description"),
					})
				}
			}
		}
	}

	if tagsVal, ok := root.Get("tags"); ok {
		if tags, ok := tagsVal.([]Value); ok {
			for _, tv := range tags {
				if tm, ok := tv.(*Map); ok {
					doc.Tags = append(doc.Tags, Tag{
						Name:        stringAt(tm, "name"),
						Description: stringAt(tm, "description"),
					})
				}
			}
		}
	}

	if pathsVal, ok := root.Get("paths"); ok {
		paths, ok := pathsVal.(*Map)
		if !ok {
			return nil, diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath("#/paths"), "paths must be an object")
		}
		for _, pathStr := range paths.Keys() {
			itemVal, _ := paths.Get(pathStr)
			item, err := b.pathItem(itemVal, "#/paths/"+escapePointer(pathStr))
			if err != nil {
				return nil, err
			}
			doc.Paths.Set(pathStr, item)
		}
	}

	if compVal, ok := root.Get("components"); ok {
		if comp, ok := compVal.(*Map); ok {
			if err := b.components(comp, doc.Components); err != nil {
				return nil, err
			}
		}
	}

	for _, key := range root.Keys() {
		switch key {
		case "openapi", "info", "servers", "paths", "components", "tags",
			"security", "webhooks", "jsonSchemaDialect", "externalDocs":
		default:
			b.warn.Warn(diagnostic.AtPath("#/"+key), "unknown top-level field %q ignored", key)
		}
	}

	return doc, nil
}

func newComponents() *Components {
	return &Components{
		Schemas:         NewOrderedMap[*Schema](),
		Responses:       NewOrderedMap[*Response](),
		Parameters:      NewOrderedMap[*Parameter](),
		SecuritySchemes: NewOrderedMap[*SecurityScheme](),
	}
}

func (b *builder) components(m *Map, out *Components) error {
	if v, ok := m.Get("schemas"); ok {
		if schemas, ok := v.(*Map); ok {
			for _, name := range schemas.Keys() {
				sv, _ := schemas.Get(name)
				schema, err := b.schema(sv, "#/components/schemas/"+name)
				if err != nil {
					return err
				}
				out.Schemas.Set(name, schema)
			}
		}
	}
	if v, ok := m.Get("responses"); ok {
		if responses, ok := v.(*Map); ok {
			for _, name := range responses.Keys() {
				rv, _ := responses.Get(name)
				resp, err := b.response(rv, "#/components/responses/"+name)
				if err != nil {
					return err
				}
				out.Responses.Set(name, resp)
			}
		}
	}
	if v, ok := m.Get("parameters"); ok {
		if params, ok := v.(*Map); ok {
			for _, name := range params.Keys() {
				pv, _ := params.Get(name)
				param, err := b.parameter(pv, "#/components/parameters/"+name)
				if err != nil {
					return err
				}
				out.Parameters.Set(name, param)
			}
		}
	}
	if v, ok := m.Get("securitySchemes"); ok {
		if schemes, ok := v.(*Map); ok {
			for _, name := range schemes.Keys() {
				sv, _ := schemes.Get(name)
				if sm, ok := sv.(*Map); ok {
					out.SecuritySchemes.Set(name, &SecurityScheme{
						Type:         stringAt(sm, "type"),
						Scheme:       stringAt(sm, "scheme"),
						BearerFormat: stringAt(sm, "bearerFormat"),
						In:           stringAt(sm, "in"),
						Name:         stringAt(sm, "name"),
						Description:  stringAt(sm, "description"),
					})
				}
			}
		}
	}
	return nil
}

func (b *builder) pathItem(v Value, path string) (*PathItem, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath(path), "path item must be an object")
	}
	item := &PathItem{Operations: make(map[string]*Operation)}
	for _, key := range m.Keys() {
		method := strings.ToLower(key)
		if !isHTTPMethod(method) {
			continue
		}
		opVal, _ := m.Get(key)
		op, err := b.operation(opVal, path+"/"+method)
		if err != nil {
			return nil, err
		}
		item.Operations[method] = op
	}
	return item, nil
}

func isHTTPMethod(m string) bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

func (b *builder) operation(v Value, path string) (*Operation, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath(path), "operation must be an object")
	}
	op := &Operation{
		OperationID: stringAt(m, "operationId"),
		Summary:     stringAt(m, "summary"),
		Description: stringAt(m, "description"),
		Deprecated:  boolAt(m, "deprecated"),
		Responses:   NewOrderedMap[*Response](),
	}
	if tagsVal, ok := m.Get("tags"); ok {
		if tags, ok := tagsVal.([]Value); ok {
			for _, tv := range tags {
				if s, ok := tv.(string); ok {
					op.Tags = append(op.Tags, s)
				}
			}
		}
	}
	if paramsVal, ok := m.Get("parameters"); ok {
		if params, ok := paramsVal.([]Value); ok {
			for i, pv := range params {
				param, err := b.parameter(pv, fmt.Sprintf("%s/parameters/%d", path, i))
				if err != nil {
					return nil, err
				}
				op.Parameters = append(op.Parameters, param)
			}
		}
	}
	if bodyVal, ok := m.Get("requestBody"); ok {
		body, err := b.requestBody(bodyVal, path+"/requestBody")
		if err != nil {
			return nil, err
		}
		op.RequestBody = body
	}
	if respVal, ok := m.Get("responses"); ok {
		if responses, ok := respVal.(*Map); ok {
			for _, status := range responses.Keys() {
				rv, _ := responses.Get(status)
				resp, err := b.response(rv, path+"/responses/"+status)
				if err != nil {
					return nil, err
				}
				op.Responses.Set(status, resp)
			}
		}
	}
	return op, nil
}

func (b *builder) parameter(v Value, path string) (*Parameter, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath(path), "parameter must be an object")
	}
	if ref := stringAt(m, "$ref"); ref != "" {
		b.checkRef(ref, path)
		return &Parameter{Ref: ref}, nil
	}
	param := &Parameter{
		Name:        stringAt(m, "name"),
		In:          stringAt(m, "in"),
		Required:    boolAt(m, "required"),
		Description: stringAt(m, "description"),
	}
	if sv, ok := m.Get("schema"); ok {
		schema, err := b.schema(sv, path+"/schema")
		if err != nil {
			return nil, err
		}
		param.Schema = schema
	}
	return param, nil
}

func (b *builder) requestBody(v Value, path string) (*RequestBody, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath(path), "request body must be an object")
	}
	if ref := stringAt(m, "$ref"); ref != "" {
		b.checkRef(ref, path)
		return &RequestBody{Ref: ref}, nil
	}
	body := &RequestBody{
		Required:    boolAt(m, "required"),
		Description: stringAt(m, "description"),
	}
	content, err := b.content(m, path)
	if err != nil {
		return nil, err
	}
	body.Content = content
	return body, nil
}

func (b *builder) response(v Value, path string) (*Response, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath(path), "response must be an object")
	}
	if ref := stringAt(m, "$ref"); ref != "" {
		b.checkRef(ref, path)
		return &Response{Ref: ref}, nil
	}
	resp := &Response{Description: stringAt(m, "description")}
	content, err := b.content(m, path)
	if err != nil {
		return nil, err
	}
	resp.Content = content
	return resp, nil
}

func (b *builder) content(m *Map, path string) ([]MediaType, error) {
	cv, ok := m.Get("content")
	if !ok {
		return nil, nil
	}
	cm, ok := cv.(*Map)
	if !ok {
		return nil, nil
	}
	var out []MediaType
	for _, ct := range cm.Keys() {
		mv, _ := cm.Get(ct)
		mt := MediaType{ContentType: ct}
		if mm, ok := mv.(*Map); ok {
			if sv, ok := mm.Get("schema"); ok {
				schema, err := b.schema(sv, path+"/content/"+escapePointer(ct)+"/schema")
				if err != nil {
					return nil, err
				}
				mt.Schema = schema
			}
		}
		out = append(out, mt)
	}
	return out, nil
}

func (b *builder) schema(v Value, path string) (*Schema, error) {
	m, ok := v.(*Map)
	if !ok {
		// `true`/`false` schemas are legal in 3.1.
		if allowed, ok := v.(bool); ok {
			return &Schema{AdditionalAllowed: &allowed}, nil
		}
		return nil, diagnostic.NewAt(diagnostic.KindMissingField, diagnostic.AtPath(path), "schema must be an object or boolean")
	}

	if ref := stringAt(m, "$ref"); ref != "" {
		b.checkRef(ref, path)
		return &Schema{Ref: ref}, nil
	}

	s := &Schema{
		Format:      stringAt(m, "format"),
		Description: stringAt(m, "description"),
		Deprecated:  boolAt(m, "deprecated"),
	}
	if dv, ok := m.Get("default"); ok {
		s.Default = Interface(dv)
	}

	switch tv, _ := m.Get("type"); t := tv.(type) {
	case string:
		s.Types = []string{t}
	case []Value:
		for _, e := range t {
			if ts, ok := e.(string); ok {
				s.Types = append(s.Types, ts)
			}
		}
	}

	if ev, ok := m.Get("enum"); ok {
		if list, ok := ev.([]Value); ok {
			for _, e := range list {
				s.Enum = append(s.Enum, Interface(e))
			}
		}
	}
	if cv, ok := m.Get("const"); ok {
		s.Const = Interface(cv)
	}

	if pv, ok := m.Get("properties"); ok {
		if props, ok := pv.(*Map); ok {
			s.Properties = NewOrderedMap[*Schema]()
			for _, name := range props.Keys() {
				propVal, _ := props.Get(name)
				prop, err := b.schema(propVal, path+"/properties/"+escapePointer(name))
				if err != nil {
					return nil, err
				}
				s.Properties.Set(name, prop)
			}
		}
	}
	if rv, ok := m.Get("required"); ok {
		if list, ok := rv.([]Value); ok {
			for _, e := range list {
				if name, ok := e.(string); ok {
					s.Required = append(s.Required, name)
				}
			}
		}
	}

	if av, ok := m.Get("additionalProperties"); ok {
		switch t := av.(type) {
		case bool:
			s.AdditionalAllowed = &t
		case *Map:
			addl, err := b.schema(t, path+"/additionalProperties")
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = addl
		}
	}

	if iv, ok := m.Get("items"); ok {
		items, err := b.schema(iv, path+"/items")
		if err != nil {
			return nil, err
		}
		s.Items = items
	}

	for _, comp := range []struct {
		key string
		dst *[]*Schema
	}{
		{"oneOf", &s.OneOf},
		{"anyOf", &s.AnyOf},
		{"allOf", &s.AllOf},
	} {
		lv, ok := m.Get(comp.key)
		if !ok {
			continue
		}
		list, ok := lv.([]Value)
		if !ok {
			continue
		}
		for i, e := range list {
			sub, err := b.schema(e, fmt.Sprintf("%s/%s/%d", path, comp.key, i))
			if err != nil {
				return nil, err
			}
			*comp.dst = append(*comp.dst, sub)
		}
	}

	return s, nil
}

// checkRef records a warning for pointers the resolver will later
// refuse: external URLs and relative documents.
func (b *builder) checkRef(ref, path string) {
	if !strings.HasPrefix(ref, "#/") {
		b.warn.Warn(diagnostic.AtPath(path), "external reference %q is not supported", ref)
	}
}

func stringAt(m *Map, key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func boolAt(m *Map, key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

// escapePointer escapes a key for use in a JSON pointer segment.
func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
