package transform

import (
	"strings"

	"github.com/openapi-nexus/nexus/internal/analysis"
	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/naming"
	"github.com/openapi-nexus/nexus/internal/openapi"
)

// Pass names, used in dependency declarations.
const (
	PassValidation         = "validation"
	PassReferences         = "reference-resolution"
	PassPaths              = "path-normalization"
	PassNaming             = "naming-convention"
	PassSchemas            = "schema-normalization"
	PassTypeInference      = "type-inference"
	PassDependencies       = "dependency-analysis"
	PassCircularReferences = "circular-reference-detection"
)

// forEachSchema visits every schema tree in the document: component
// schemas, operation parameters, request bodies, and responses.
// Component order, then path order, so visits are deterministic.
func forEachSchema(doc *openapi.Document, visit func(root *openapi.Schema)) {
	if doc.Components != nil {
		for _, name := range doc.Components.Schemas.Keys() {
			if s, ok := doc.Components.Schemas.Get(name); ok {
				visit(s)
			}
		}
		for _, name := range doc.Components.Parameters.Keys() {
			if p, ok := doc.Components.Parameters.Get(name); ok && p.Schema != nil {
				visit(p.Schema)
			}
		}
		for _, name := range doc.Components.Responses.Keys() {
			if r, ok := doc.Components.Responses.Get(name); ok {
				for _, mt := range r.Content {
					if mt.Schema != nil {
						visit(mt.Schema)
					}
				}
			}
		}
	}
	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		for _, mo := range item.Ordered() {
			op := mo.Operation
			for _, p := range op.Parameters {
				if p.Schema != nil {
					visit(p.Schema)
				}
			}
			if op.RequestBody != nil {
				for _, mt := range op.RequestBody.Content {
					if mt.Schema != nil {
						visit(mt.Schema)
					}
				}
			}
			for _, status := range op.Responses.Keys() {
				resp, _ := op.Responses.Get(status)
				for _, mt := range resp.Content {
					if mt.Schema != nil {
						visit(mt.Schema)
					}
				}
			}
		}
	}
}

// forEachRef visits every reference pointer slot in the document,
// schema refs included, via a settable string pointer.
func forEachRef(doc *openapi.Document, visit func(ref *string)) {
	forEachSchema(doc, func(root *openapi.Schema) {
		root.Walk(func(s *openapi.Schema) {
			if s.IsRef() {
				visit(&s.Ref)
			}
		})
	})
	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		for _, mo := range item.Ordered() {
			op := mo.Operation
			for _, p := range op.Parameters {
				if p.Ref != "" {
					visit(&p.Ref)
				}
			}
			if op.RequestBody != nil && op.RequestBody.Ref != "" {
				visit(&op.RequestBody.Ref)
			}
			for _, status := range op.Responses.Keys() {
				resp, _ := op.Responses.Get(status)
				if resp.Ref != "" {
					visit(&resp.Ref)
				}
			}
		}
	}
	if doc.Components != nil {
		for _, name := range doc.Components.Parameters.Keys() {
			if p, ok := doc.Components.Parameters.Get(name); ok && p.Ref != "" {
				visit(&p.Ref)
			}
		}
		for _, name := range doc.Components.Responses.Keys() {
			if r, ok := doc.Components.Responses.Get(name); ok && r.Ref != "" {
				visit(&r.Ref)
			}
		}
	}
}

// ValidationPass reasserts the structural invariants after parse, so a
// document built programmatically gets the same checks as parsed input.
type ValidationPass struct{}

func (*ValidationPass) Name() string           { return PassValidation }
func (*ValidationPass) Dependencies() []string { return nil }

func (*ValidationPass) Transform(ctx *Context) error {
	return openapi.ValidateDocument(ctx.Doc)
}

// ReferenceResolutionPass checks that every pointer in the document
// resolves, and collapses trivial alias chains (a component schema that
// is only a reference to another reference) to their final target. A
// missing target is fatal here even though the resolver itself treats
// it as a caller decision.
type ReferenceResolutionPass struct{}

func (*ReferenceResolutionPass) Name() string           { return PassReferences }
func (*ReferenceResolutionPass) Dependencies() []string { return []string{PassValidation} }

func (*ReferenceResolutionPass) Transform(ctx *Context) error {
	var firstErr error
	forEachRef(ctx.Doc, func(ref *string) {
		if firstErr != nil {
			return
		}
		if err := ctx.Resolver.Exists(*ref); err != nil {
			firstErr = err
		}
	})
	if firstErr != nil {
		return firstErr
	}

	// Collapse Ref -> Ref alias chains onto the final component.
	for _, name := range ctx.Doc.Components.Schemas.Keys() {
		schema, _ := ctx.Doc.Components.Schemas.Get(name)
		if !schema.IsRef() {
			continue
		}
		if _, target, err := ctx.Resolver.Schema(schema.Ref); err != nil {
			return err
		} else if final := "#/components/schemas/" + target; schema.Ref != final {
			schema.Ref = final
		}
	}
	return nil
}

// PathNormalizationPass canonicalizes path strings: a leading slash is
// added, a trailing slash is stripped except on the root path, and the
// path map is re-sorted. Two paths normalizing to the same string is a
// conflict. The pass is idempotent.
type PathNormalizationPass struct{}

func (*PathNormalizationPass) Name() string           { return PassPaths }
func (*PathNormalizationPass) Dependencies() []string { return []string{PassValidation} }

func (*PathNormalizationPass) Transform(ctx *Context) error {
	paths := ctx.Doc.Paths
	for _, path := range append([]string(nil), paths.Keys()...) {
		normalized := NormalizePath(path)
		if normalized == path {
			continue
		}
		if _, taken := paths.Get(normalized); taken {
			return diagnostic.New(diagnostic.KindNormalizationConflict,
				"paths %q and %q normalize to the same path", path, normalized)
		}
		paths.Rename(path, normalized)
	}
	paths.Sort()
	return nil
}

// NormalizePath returns the canonical form of one path string.
func NormalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// NamingConventionPass renames component schemas into the target type
// convention and rewrites every pointer to match. The rename map must
// be a bijection; a collision is fatal.
type NamingConventionPass struct{}

func (*NamingConventionPass) Name() string           { return PassNaming }
func (*NamingConventionPass) Dependencies() []string { return []string{PassReferences} }

func (*NamingConventionPass) Transform(ctx *Context) error {
	schemas := ctx.Doc.Components.Schemas
	renames := make(map[string]string, schemas.Len())
	taken := make(map[string]string, schemas.Len())
	for _, name := range schemas.Keys() {
		renamed := naming.Identifier(name, ctx.TypeConvention)
		if prev, clash := taken[renamed]; clash && prev != name {
			return diagnostic.New(diagnostic.KindRenameCollision,
				"schemas %q and %q both rename to %q", prev, name, renamed)
		}
		taken[renamed] = name
		if renamed != name {
			renames[name] = renamed
		}
	}
	if len(renames) == 0 {
		return nil
	}
	for _, name := range append([]string(nil), schemas.Keys()...) {
		if renamed, ok := renames[name]; ok {
			schemas.Rename(name, renamed)
		}
	}
	forEachRef(ctx.Doc, func(ref *string) {
		name, err := openapi.SchemaName(*ref)
		if err != nil {
			return // non-schema pointers keep their names
		}
		if renamed, ok := renames[name]; ok {
			*ref = "#/components/schemas/" + renamed
		}
	})
	return nil
}

// SchemaNormalizationPass puts every schema tree into the shape the
// lowering expects: object properties sorted, array schemas given an
// items schema (with a warning), singleton compositions collapsed.
type SchemaNormalizationPass struct{}

func (*SchemaNormalizationPass) Name() string           { return PassSchemas }
func (*SchemaNormalizationPass) Dependencies() []string { return []string{PassNaming} }

func (p *SchemaNormalizationPass) Transform(ctx *Context) error {
	forEachSchema(ctx.Doc, func(root *openapi.Schema) {
		root.Walk(func(s *openapi.Schema) {
			p.normalize(s, ctx.Warnings)
		})
	})
	return nil
}

func (p *SchemaNormalizationPass) normalize(s *openapi.Schema, warn *diagnostic.Collector) {
	if s.Properties.Len() > 0 {
		s.Properties.Sort()
	}
	if s.HasType("array") && s.Items == nil {
		warn.Warn(nil, "array schema has no items; elements typed as unknown")
		s.Items = &openapi.Schema{}
	}
	// A one-member composition is the member itself.
	if len(s.OneOf) == 1 && !s.IsRef() {
		collapse(s, s.OneOf[0])
	}
	if len(s.AnyOf) == 1 && !s.IsRef() {
		collapse(s, s.AnyOf[0])
	}
	if len(s.AllOf) == 1 && !s.IsRef() {
		collapse(s, s.AllOf[0])
	}
}

// collapse replaces dst in place with the only member of a singleton
// composition, keeping dst's own description when the member has none.
func collapse(dst, member *openapi.Schema) {
	desc := dst.Description
	*dst = *member
	if dst.Description == "" {
		dst.Description = desc
	}
}

// TypeInferencePass materializes the schema-kind table.
type TypeInferencePass struct{}

func (*TypeInferencePass) Name() string           { return PassTypeInference }
func (*TypeInferencePass) Dependencies() []string { return []string{PassSchemas} }

func (*TypeInferencePass) Transform(ctx *Context) error {
	ctx.Tables.Kinds = analysis.ClassifyAll(ctx.Doc)
	return nil
}

// DependencyAnalysisPass builds the direct-dependency table.
type DependencyAnalysisPass struct{}

func (*DependencyAnalysisPass) Name() string { return PassDependencies }
func (*DependencyAnalysisPass) Dependencies() []string {
	return []string{PassNaming, PassSchemas}
}

func (*DependencyAnalysisPass) Transform(ctx *Context) error {
	ctx.Tables.Dependencies = analysis.Dependencies(ctx.Doc)
	return nil
}

// CircularReferenceDetectionPass records schema cycles. Cycles are not
// fatal; the emitter breaks them with type-level forward references.
type CircularReferenceDetectionPass struct{}

func (*CircularReferenceDetectionPass) Name() string { return PassCircularReferences }
func (*CircularReferenceDetectionPass) Dependencies() []string {
	return []string{PassDependencies}
}

func (*CircularReferenceDetectionPass) Transform(ctx *Context) error {
	ctx.Tables.Cycles = analysis.Cycles(ctx.Tables.Dependencies)
	return nil
}
