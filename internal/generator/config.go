// Package generator drives a whole run: parse, transform, lower,
// plan, emit. It is the only package the public API and the CLI talk
// to.
package generator

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/naming"
)

// Config is the generator configuration. Zero fields are filled from
// DefaultConfig before a run.
type Config struct {
	// OutputDir is consumed by the external writer; the core passes it
	// through untouched.
	OutputDir string `mapstructure:"output_dir"`
	// Languages lists the requested targets. TypeScript ("typescript"
	// or "ts") is the only implemented target.
	Languages []string `mapstructure:"languages"`
	// Overwrite is the external writer's clobber policy.
	Overwrite bool `mapstructure:"overwrite"`

	Naming   NamingConfig   `mapstructure:"naming"`
	Emission EmissionConfig `mapstructure:"emission"`
	Package  PackageConfig  `mapstructure:"package"`
}

// NamingConfig selects identifier and filename conventions.
type NamingConfig struct {
	Types naming.Convention `mapstructure:"types"`
	Files naming.Convention `mapstructure:"files"`
}

// EmissionConfig controls the pretty-printer and doc output.
type EmissionConfig struct {
	MaxLineWidth int    `mapstructure:"max_line_width"`
	IncludeDocs  *bool  `mapstructure:"include_docs"`
	Indentation  string `mapstructure:"indentation"` // "spaces:<n>"
	EnumsAsEnums bool   `mapstructure:"enums_as_enums"`
}

// PackageConfig shapes the emitted project files.
type PackageConfig struct {
	Scope             string `mapstructure:"scope"`
	Module            string `mapstructure:"module"`
	GenerateESMConfig bool   `mapstructure:"generate_esm_config"`
}

// DefaultConfig returns the defaults every run starts from.
func DefaultConfig() Config {
	docs := true
	return Config{
		Languages: []string{"typescript"},
		Naming: NamingConfig{
			Types: naming.Pascal,
			Files: naming.Kebab,
		},
		Emission: EmissionConfig{
			MaxLineWidth: 80,
			IncludeDocs:  &docs,
			Indentation:  "spaces:2",
		},
		Package: PackageConfig{
			Module: "commonjs",
		},
	}
}

// supportedModules are the accepted tsconfig module settings.
var supportedModules = map[string]bool{
	"commonjs": true, "esnext": true, "es2020": true, "es2022": true,
}

// Normalize fills zero fields from the defaults and validates the
// result. Call it once before a run.
func (c *Config) Normalize() error {
	defaults := DefaultConfig()
	// WithoutDereference treats a non-nil pointer as set, so an
	// explicit include_docs: false survives the merge.
	if err := mergo.Merge(c, defaults, mergo.WithoutDereference); err != nil {
		return diagnostic.Wrap(diagnostic.KindInvalidConfig, err, "merging config defaults")
	}
	return c.validate()
}

func (c *Config) validate() error {
	if len(c.Languages) == 0 {
		return diagnostic.New(diagnostic.KindInvalidConfig, "languages must not be empty")
	}
	for _, lang := range c.Languages {
		switch strings.ToLower(lang) {
		case "typescript", "ts":
		case "rust":
			return diagnostic.New(diagnostic.KindUnsupportedLanguage,
				"language %q is recognized but not implemented by this generator", lang)
		default:
			return diagnostic.New(diagnostic.KindUnsupportedLanguage, "unknown language %q", lang)
		}
	}
	if !c.Naming.Types.Known() {
		return diagnostic.New(diagnostic.KindInvalidConfig, "unknown naming.types convention %q", c.Naming.Types)
	}
	if !c.Naming.Files.Known() {
		return diagnostic.New(diagnostic.KindInvalidConfig, "unknown naming.files convention %q", c.Naming.Files)
	}
	if c.Emission.MaxLineWidth <= 0 {
		return diagnostic.New(diagnostic.KindInvalidConfig,
			"emission.max_line_width must be positive, got %d", c.Emission.MaxLineWidth)
	}
	if _, err := c.IndentWidth(); err != nil {
		return err
	}
	if !supportedModules[c.Package.Module] {
		return diagnostic.New(diagnostic.KindInvalidConfig, "unsupported package.module %q", c.Package.Module)
	}
	return nil
}

// IndentWidth parses the indentation setting. Only space indentation
// is supported; the printer never emits tabs.
func (c *Config) IndentWidth() (int, error) {
	spec := c.Emission.Indentation
	if spec == "" {
		return 2, nil
	}
	if spec == "tabs" {
		return 0, diagnostic.New(diagnostic.KindInvalidConfig, "tab indentation is not supported; use spaces:<n>")
	}
	rest, ok := strings.CutPrefix(spec, "spaces:")
	if !ok {
		return 0, diagnostic.New(diagnostic.KindInvalidConfig, "invalid emission.indentation %q", spec)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, diagnostic.New(diagnostic.KindInvalidConfig, "invalid emission.indentation %q", spec)
	}
	return n, nil
}

// IncludeDocs resolves the doc-comment switch.
func (c *Config) IncludeDocs() bool {
	return c.Emission.IncludeDocs == nil || *c.Emission.IncludeDocs
}

// LoadConfig reads a YAML or JSON config file and merges it over the
// defaults. Unknown keys are rejected so a typoed option does not
// silently fall back to a default.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, diagnostic.Wrap(diagnostic.KindFileRead, err, "reading config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes config bytes. YAML is a superset of JSON, so one
// decoder covers both formats.
func ParseConfig(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, diagnostic.Wrap(diagnostic.KindInvalidConfig, err, "parsing config")
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("building config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, diagnostic.Wrap(diagnostic.KindInvalidConfig, err, "decoding config")
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
