// Package openapi holds the parsed OpenAPI 3.1 document model, the
// parser that builds it from JSON or YAML bytes, and the reference
// resolver for intra-document JSON pointers.
package openapi

import "sort"

// OrderedMap is an insertion-ordered map with typed values, used for
// every document slot whose order affects emission.
type OrderedMap[V any] struct {
	keys []string
	vals map[string]V
}

// NewOrderedMap creates an empty ordered map.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{vals: make(map[string]V)}
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Set stores value under key, appending the key on first insertion.
func (m *OrderedMap[V]) Set(key string, value V) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Delete removes key, preserving the order of remaining keys.
func (m *OrderedMap[V]) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Rename moves the value under old to new, keeping the key position.
func (m *OrderedMap[V]) Rename(old, new string) {
	v, ok := m.vals[old]
	if !ok || old == new {
		return
	}
	delete(m.vals, old)
	m.vals[new] = v
	for i, k := range m.keys {
		if k == old {
			m.keys[i] = new
			break
		}
	}
}

// Keys returns keys in insertion order. The slice is shared.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Sort orders the keys lexicographically.
func (m *OrderedMap[V]) Sort() {
	if m != nil {
		sort.Strings(m.keys)
	}
}

// Document is the parsed OpenAPI tree. It is mutated only by transform
// passes and frozen (by convention) before lowering.
type Document struct {
	OpenAPI    string
	Info       Info
	Servers    []Server
	Paths      *OrderedMap[*PathItem]
	Components *Components
	Tags       []Tag
}

// Info carries the document's title, version, and description.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Server is one entry of the ordered servers list.
type Server struct {
	URL         string
	Description string
}

// Tag is a declared operation group.
type Tag struct {
	Name        string
	Description string
}

// Components holds the named, reusable objects of the document.
type Components struct {
	Schemas         *OrderedMap[*Schema]
	Responses       *OrderedMap[*Response]
	Parameters      *OrderedMap[*Parameter]
	SecuritySchemes *OrderedMap[*SecurityScheme]
}

// Methods lists the HTTP methods of a path item in canonical order.
var Methods = []string{"get", "post", "put", "delete", "patch", "head", "options", "trace"}

// PathItem maps HTTP methods to operations at one path.
type PathItem struct {
	Operations map[string]*Operation // keyed by lowercase method
}

// Ordered returns the item's operations in canonical method order.
func (p *PathItem) Ordered() []MethodOperation {
	var out []MethodOperation
	for _, m := range Methods {
		if op, ok := p.Operations[m]; ok {
			out = append(out, MethodOperation{Method: m, Operation: op})
		}
	}
	return out
}

// MethodOperation pairs a lowercase HTTP method with its operation.
type MethodOperation struct {
	Method    string
	Operation *Operation
}

// Operation is an HTTP-method-keyed action on a path.
type Operation struct {
	OperationID string
	Summary     string
	Description string
	Deprecated  bool
	Tags        []string
	Parameters  []*Parameter
	RequestBody *RequestBody
	Responses   *OrderedMap[*Response]
}

// Parameter is an operation parameter, or a reference to a component
// parameter when Ref is non-empty.
type Parameter struct {
	Ref         string
	Name        string
	In          string // "path", "query", "header", "cookie"
	Required    bool
	Description string
	Schema      *Schema
}

// RequestBody describes an operation's request payload.
type RequestBody struct {
	Ref         string
	Required    bool
	Description string
	Content     []MediaType
}

// MediaType pairs a content type with its schema.
type MediaType struct {
	ContentType string
	Schema      *Schema
}

// Response describes one status entry of a responses map, or a
// reference to a component response when Ref is non-empty.
type Response struct {
	Ref         string
	Description string
	Content     []MediaType
}

// SecurityScheme is parsed for completeness; it is never lowered.
type SecurityScheme struct {
	Type         string
	Scheme       string
	BearerFormat string
	In           string
	Name         string
	Description  string
}

// JSONContent returns the schema of the response's application/json
// content, or nil.
func (r *Response) JSONContent() *Schema {
	for _, mt := range r.Content {
		if mt.ContentType == "application/json" {
			return mt.Schema
		}
	}
	return nil
}
