// Package analysis derives read-only side-tables from the document's
// component schemas: the dependency graph, its cycles, and a kind
// classification that drives the lowering strategy.
package analysis

import (
	"sort"

	"github.com/openapi-nexus/nexus/internal/openapi"
)

// Kind classifies a component schema for lowering.
type Kind string

const (
	KindPrimitive    Kind = "primitive"
	KindEnum         Kind = "enum"
	KindObject       Kind = "object"
	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindArrayAlias   Kind = "array-alias"
	KindOpaque       Kind = "opaque"
)

// Tables are the analysis side-tables attached to a run. They are
// produced by the analysis passes and read-only afterwards.
type Tables struct {
	// Dependencies maps a schema name to the sorted set of schema
	// names it references directly (without traversing another
	// named schema).
	Dependencies map[string][]string
	// Cycles lists every strongly-connected component of size >= 2
	// plus every self-loop, as sorted name lists.
	Cycles [][]string
	// Kinds classifies every component schema.
	Kinds map[string]Kind
}

// InCycle reports whether the named schema participates in any
// recorded cycle.
func (t *Tables) InCycle(name string) bool {
	if t == nil {
		return false
	}
	for _, cycle := range t.Cycles {
		for _, member := range cycle {
			if member == name {
				return true
			}
		}
	}
	return false
}

// Dependencies builds the direct-dependency table. An edge is added
// whenever a reference to a component schema is seen while walking a
// schema's inline tree; named schemas are not traversed, so edges are
// direct.
func Dependencies(doc *openapi.Document) map[string][]string {
	out := make(map[string][]string, doc.Components.Schemas.Len())
	for _, name := range doc.Components.Schemas.Keys() {
		schema, _ := doc.Components.Schemas.Get(name)
		set := make(map[string]bool)
		schema.Walk(func(s *openapi.Schema) {
			if !s.IsRef() {
				return
			}
			if target, err := openapi.SchemaName(s.Ref); err == nil {
				set[target] = true
			}
		})
		deps := make([]string, 0, len(set))
		for dep := range set {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		out[name] = deps
	}
	return out
}

// Classify assigns a lowering kind to one component schema.
func Classify(s *openapi.Schema) Kind {
	switch {
	case s == nil:
		return KindOpaque
	case s.IsRef():
		return KindOpaque
	case len(s.Enum) > 0:
		return KindEnum
	case len(s.OneOf) > 0 || len(s.AnyOf) > 0:
		return KindUnion
	case len(s.AllOf) > 0:
		return KindIntersection
	case s.PrimaryType() == "array":
		return KindArrayAlias
	case s.PrimaryType() == "object" || s.Properties.Len() > 0:
		return KindObject
	case s.PrimaryType() != "":
		return KindPrimitive
	default:
		return KindOpaque
	}
}

// ClassifyAll classifies every component schema.
func ClassifyAll(doc *openapi.Document) map[string]Kind {
	out := make(map[string]Kind, doc.Components.Schemas.Len())
	for _, name := range doc.Components.Schemas.Keys() {
		schema, _ := doc.Components.Schemas.Get(name)
		out[name] = Classify(schema)
	}
	return out
}
