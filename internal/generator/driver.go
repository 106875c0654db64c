package generator

import (
	"golang.org/x/sync/errgroup"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/lower"
	"github.com/openapi-nexus/nexus/internal/openapi"
	"github.com/openapi-nexus/nexus/internal/plan"
	"github.com/openapi-nexus/nexus/internal/templates"
	"github.com/openapi-nexus/nexus/internal/transform"
	"github.com/openapi-nexus/nexus/internal/tsast"
)

// GeneratedFile is one emitted file with its category and a path
// relative to the output directory.
type GeneratedFile = plan.File

// Result is a successful run: the ordered file list plus the warnings
// collected along the way, in emission order.
type Result struct {
	Files    []GeneratedFile
	Warnings []diagnostic.Warning
}

// state is the driver's internal progress marker. Only the terminal
// states are observable through the API.
type state string

const (
	stateParsed      state = "PARSED"
	stateValidated   state = "VALIDATED"
	stateTransformed state = "TRANSFORMED"
	stateAnalyzed    state = "ANALYZED"
	stateLowered     state = "LOWERED"
	statePlanned     state = "PLANNED"
	stateEmitted     state = "EMITTED"
	stateFailed      state = "FAILED"
)

// Driver owns one run. A driver is single-use: create, run, discard.
type Driver struct {
	cfg   Config
	state state
	warn  *diagnostic.Collector
}

// NewDriver creates a driver for one run with a normalized config.
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg, warn: diagnostic.NewCollector()}, nil
}

func (d *Driver) fail(err error) error {
	d.state = stateFailed
	return err
}

// Generate runs the whole pipeline over input bytes.
func (d *Driver) Generate(input []byte, format openapi.Format) (*Result, error) {
	doc, err := openapi.Parse(input, format, d.warn)
	if err != nil {
		return nil, d.fail(err)
	}
	d.state = stateParsed
	return d.generateDoc(doc)
}

// GenerateFile runs the pipeline over a document read from disk.
func (d *Driver) GenerateFile(path string) (*Result, error) {
	doc, err := openapi.ParseFile(path, d.warn)
	if err != nil {
		return nil, d.fail(err)
	}
	d.state = stateParsed
	return d.generateDoc(doc)
}

func (d *Driver) generateDoc(doc *openapi.Document) (*Result, error) {
	// Transform. The pipeline revalidates, so a programmatically built
	// document gets the same checks as parsed input.
	tctx := transform.NewContext(doc, d.warn)
	tctx.TypeConvention = d.cfg.Naming.Types
	if err := transform.Default().Run(tctx); err != nil {
		return nil, d.fail(err)
	}
	d.state = stateValidated
	d.state = stateTransformed
	d.state = stateAnalyzed

	// Lower.
	lowerer := lower.New(tctx.Doc, tctx.Tables, d.warn)
	lowerer.EnumsAsEnums = d.cfg.Emission.EnumsAsEnums
	decls, err := lowerer.Declarations()
	if err != nil {
		return nil, d.fail(err)
	}
	classes, err := lowerer.Classes()
	if err != nil {
		return nil, d.fail(err)
	}
	d.state = stateLowered

	// Plan.
	engine, err := templates.NewEngine(d.cfg.Emission.MaxLineWidth)
	if err != nil {
		return nil, d.fail(err)
	}
	indent, err := d.cfg.IndentWidth()
	if err != nil {
		return nil, d.fail(err)
	}
	emission := tsast.EmissionContext{
		IndentWidth:  indent,
		MaxLineWidth: d.cfg.Emission.MaxLineWidth,
		IncludeDocs:  d.cfg.IncludeDocs(),
	}
	planner := plan.NewPlanner(engine, emission)
	planner.FileConvention = d.cfg.Naming.Files
	planner.Title = doc.Info.Title
	planner.Version = doc.Info.Version
	d.state = statePlanned

	files, err := d.emit(doc, planner, decls, classes)
	if err != nil {
		return nil, d.fail(err)
	}
	d.state = stateEmitted

	return &Result{Files: files, Warnings: d.warn.Warnings()}, nil
}

// emit renders every planned file. Model files are independent, so
// they render in parallel; the result keeps document order by writing
// into an indexed slice.
func (d *Driver) emit(doc *openapi.Document, planner *plan.Planner, decls []tsast.Decl, classes []*lower.APIClass) ([]GeneratedFile, error) {
	modelNames := doc.Components.Schemas.Keys()
	nameSet := make(map[string]bool, len(modelNames))
	for _, name := range modelNames {
		nameSet[name] = true
	}

	modelFiles := make([]GeneratedFile, len(decls))
	var g errgroup.Group
	for i, decl := range decls {
		g.Go(func() error {
			f, err := planner.ModelFile(modelNames[i], decl, nameSet)
			if err != nil {
				return err
			}
			modelFiles[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []GeneratedFile
	files = append(files, modelFiles...)
	if len(modelNames) > 0 {
		idx, err := planner.ModelsIndex(modelNames)
		if err != nil {
			return nil, err
		}
		files = append(files, idx)
	}

	classNames := make([]string, 0, len(classes))
	for _, class := range classes {
		f, err := planner.APIFile(class)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		classNames = append(classNames, class.Name)
	}
	if len(classes) > 0 {
		idx, err := planner.ApisIndex(classes)
		if err != nil {
			return nil, err
		}
		files = append(files, idx)
	}

	runtime, err := planner.RuntimeFile()
	if err != nil {
		return nil, err
	}
	files = append(files, runtime)

	rootIndex, err := planner.RootIndex(len(modelNames) > 0, len(classes) > 0)
	if err != nil {
		return nil, err
	}
	files = append(files, rootIndex)

	project, err := planner.ProjectFiles(plan.ProjectOptions{
		PackageName: plan.PackageName(doc, d.cfg.Package.Scope),
		Module:      d.cfg.Package.Module,
		ESM:         d.cfg.Package.GenerateESMConfig,
		Classes:     classNames,
	})
	if err != nil {
		return nil, err
	}
	files = append(files, project...)

	return files, nil
}

// Generate is the package-level entry point: one driver, one run.
func Generate(input []byte, format openapi.Format, cfg Config) (*Result, error) {
	d, err := NewDriver(cfg)
	if err != nil {
		return nil, err
	}
	return d.Generate(input, format)
}

// GenerateFile generates from a document on disk.
func GenerateFile(path string, cfg Config) (*Result, error) {
	d, err := NewDriver(cfg)
	if err != nil {
		return nil, err
	}
	return d.GenerateFile(path)
}

// Validate parses and validates input without generating: it runs the
// transform pipeline and reports the first fatal error.
func Validate(input []byte, format openapi.Format) error {
	warn := diagnostic.NewCollector()
	doc, err := openapi.Parse(input, format, warn)
	if err != nil {
		return err
	}
	return transform.Default().Run(transform.NewContext(doc, warn))
}

// ValidateFile validates a document on disk.
func ValidateFile(path string) error {
	warn := diagnostic.NewCollector()
	doc, err := openapi.ParseFile(path, warn)
	if err != nil {
		return err
	}
	return transform.Default().Run(transform.NewContext(doc, warn))
}
