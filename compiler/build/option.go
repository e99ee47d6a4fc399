package build

import (
	"runtime"

	"github.com/syssam/oaorm/compiler/gen"
)

// Format is the encoding of the artifacts file.
type Format string

// Artifact formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatMsgpack:
		return true
	}
	return false
}

// Config holds the build configuration.
type Config struct {
	// Format of the artifacts file.
	Format Format
	// Workers bounds the number of documents built in parallel.
	Workers int
	// Package is the name of the generated Go package.
	Package string
	// OpenAPIValidation validates every document as OpenAPI 3.
	OpenAPIValidation bool
	// Validate enables relationship validation.
	Validate bool
}

// Option configures a build.
type Option func(*Config) error

// WithFormat sets the artifacts file format.
func WithFormat(format string) Option {
	return func(c *Config) error {
		f := Format(format)
		if !f.Valid() {
			return gen.NewConfigError("Format", format, "format must be one of json, yaml or msgpack")
		}
		c.Format = f
		return nil
	}
}

// WithWorkers sets the number of documents built in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return gen.NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithPackage sets the name of the generated Go package.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		// Reuse the identifier check of the generator.
		if err := gen.WithPackage(pkg)(&gen.Config{}); err != nil {
			return err
		}
		c.Package = pkg
		return nil
	}
}

// WithOpenAPIValidation enables OpenAPI 3 validation of the documents.
func WithOpenAPIValidation(enabled bool) Option {
	return func(c *Config) error {
		c.OpenAPIValidation = enabled
		return nil
	}
}

// WithValidation enables or disables relationship validation.
func WithValidation(enabled bool) Option {
	return func(c *Config) error {
		c.Validate = enabled
		return nil
	}
}

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Format:   FormatJSON,
		Workers:  runtime.GOMAXPROCS(0),
		Package:  "models",
		Validate: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
