// Package codegen is the public API of the generator: parse an
// OpenAPI 3.1 document and produce a TypeScript client package as an
// ordered list of files. Writing the files to disk is the caller's
// concern.
package codegen

import (
	"github.com/openapi-nexus/nexus/internal/diagnostic"
	"github.com/openapi-nexus/nexus/internal/generator"
	"github.com/openapi-nexus/nexus/internal/openapi"
	"github.com/openapi-nexus/nexus/internal/plan"
)

// Config re-exports the generator configuration.
type Config = generator.Config

// Result is a successful generation run.
type Result = generator.Result

// GeneratedFile is one emitted file: a path relative to the output
// directory, its content, and a category.
type GeneratedFile = plan.File

// Warning is a non-fatal finding collected during a run.
type Warning = diagnostic.Warning

// File categories.
const (
	CategoryModels  = plan.CategoryModels
	CategoryApis    = plan.CategoryApis
	CategoryRuntime = plan.CategoryRuntime
	CategoryProject = plan.CategoryProject
)

// Format is the input serialization hint.
type Format = openapi.Format

const (
	FormatJSON    = openapi.FormatJSON
	FormatYAML    = openapi.FormatYAML
	FormatUnknown = openapi.FormatUnknown
)

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config { return generator.DefaultConfig() }

// LoadConfig reads a YAML or JSON configuration file.
func LoadConfig(path string) (Config, error) { return generator.LoadConfig(path) }

// Generate compiles an OpenAPI document given as bytes.
func Generate(input []byte, format Format, cfg Config) (*Result, error) {
	return generator.Generate(input, format, cfg)
}

// GenerateFile compiles an OpenAPI document read from disk; the format
// is derived from the file extension.
func GenerateFile(path string, cfg Config) (*Result, error) {
	return generator.GenerateFile(path, cfg)
}

// Validate parses and validates a document without generating.
func Validate(input []byte, format Format) error {
	return generator.Validate(input, format)
}

// ValidateFile validates a document read from disk.
func ValidateFile(path string) error {
	return generator.ValidateFile(path)
}

// ErrorKind returns the stable error category of err ("parse/json",
// "reference/invalid", ...), or "" for an unclassified error.
func ErrorKind(err error) string {
	return string(diagnostic.KindOf(err))
}
