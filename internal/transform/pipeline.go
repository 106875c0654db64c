// Package transform runs ordered passes over a parsed document. Passes
// declare dependencies by name; the pipeline topologically sorts them
// and aborts on the first fatal error.
package transform

import (
	"github.com/openapi-nexus/nexus/internal/analysis"
	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/naming"
	"github.com/openapi-nexus/nexus/internal/openapi"
)

// Context bundles the document with everything passes read or write:
// the resolver, the analysis side-tables, the warning channel, and the
// naming options.
type Context struct {
	Doc      *openapi.Document
	Resolver *openapi.Resolver
	Tables   *analysis.Tables
	Warnings *diagnostic.Collector

	// TypeConvention is applied to component schema names by the
	// naming pass.
	TypeConvention naming.Convention
}

// NewContext creates a pass context over doc with default naming.
func NewContext(doc *openapi.Document, warn *diagnostic.Collector) *Context {
	if warn == nil {
		warn = diagnostic.NewCollector()
	}
	return &Context{
		Doc:            doc,
		Resolver:       openapi.NewResolver(doc),
		Tables:         &analysis.Tables{},
		Warnings:       warn,
		TypeConvention: naming.Pascal,
	}
}

// Pass is one unit of transformation.
type Pass interface {
	// Name identifies the pass in dependency declarations and errors.
	Name() string
	// Dependencies lists passes that must run before this one.
	Dependencies() []string
	// Transform mutates the context. A returned error aborts the run.
	Transform(ctx *Context) error
}

// Pipeline is an ordered collection of passes. Order is computed from
// declared dependencies at Run time, with registration order breaking
// ties, so a run is deterministic.
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates a pipeline with the given passes registered.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Register appends a pass.
func (p *Pipeline) Register(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Order returns the passes in execution order, or a PipelineConfig
// error on a missing or cyclic dependency.
func (p *Pipeline) Order() ([]Pass, error) {
	byName := make(map[string]Pass, len(p.passes))
	for _, pass := range p.passes {
		if _, dup := byName[pass.Name()]; dup {
			return nil, diagnostic.New(diagnostic.KindPipelineConfig,
				"pass %q registered twice", pass.Name())
		}
		byName[pass.Name()] = pass
	}

	indegree := make(map[string]int, len(p.passes))
	dependents := make(map[string][]string, len(p.passes))
	for _, pass := range p.passes {
		for _, dep := range pass.Dependencies() {
			if _, ok := byName[dep]; !ok {
				return nil, diagnostic.New(diagnostic.KindPipelineConfig,
					"pass %q depends on unregistered pass %q", pass.Name(), dep)
			}
			indegree[pass.Name()]++
			dependents[dep] = append(dependents[dep], pass.Name())
		}
	}

	// Kahn's algorithm over a registration-ordered worklist.
	var ready []string
	for _, pass := range p.passes {
		if indegree[pass.Name()] == 0 {
			ready = append(ready, pass.Name())
		}
	}
	var order []Pass
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, byName[name])
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				// Preserve registration order among newly ready passes.
				ready = insertInRegistrationOrder(ready, dep, p.passes)
			}
		}
	}
	if len(order) != len(p.passes) {
		var stuck []string
		for _, pass := range p.passes {
			if indegree[pass.Name()] > 0 {
				stuck = append(stuck, pass.Name())
			}
		}
		return nil, diagnostic.New(diagnostic.KindPipelineConfig,
			"dependency cycle among passes: %v", stuck)
	}
	return order, nil
}

func insertInRegistrationOrder(ready []string, name string, passes []Pass) []string {
	rank := make(map[string]int, len(passes))
	for i, p := range passes {
		rank[p.Name()] = i
	}
	for i, existing := range ready {
		if rank[name] < rank[existing] {
			return append(ready[:i], append([]string{name}, ready[i:]...)...)
		}
	}
	return append(ready, name)
}

// Run executes the passes in dependency order. The first fatal error
// aborts the run and is returned as-is when it already carries a kind,
// or wrapped as TransformFailed otherwise.
func (p *Pipeline) Run(ctx *Context) error {
	order, err := p.Order()
	if err != nil {
		return err
	}
	for _, pass := range order {
		if err := pass.Transform(ctx); err != nil {
			if diagnostic.KindOf(err) != "" {
				return err
			}
			return diagnostic.Wrap(diagnostic.KindTransformFailed, err,
				"pass %q failed", pass.Name())
		}
	}
	return nil
}

// Default returns the canonical pipeline: validation, reference
// resolution, path normalization, naming, schema normalization, and
// the three analysis passes.
func Default() *Pipeline {
	return NewPipeline(
		&ValidationPass{},
		&ReferenceResolutionPass{},
		&PathNormalizationPass{},
		&NamingConventionPass{},
		&SchemaNormalizationPass{},
		&TypeInferencePass{},
		&DependencyAnalysisPass{},
		&CircularReferenceDetectionPass{},
	)
}
