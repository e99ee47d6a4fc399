package gen

import (
	"errors"
	"go/token"
	"runtime"
)

// Config holds the configuration of the extraction and code generation.
type Config struct {
	// Package is the name of the generated Go package.
	Package string
	// Header is the comment written at the top of each generated file.
	Header string
	// Target is the directory generated files are written to.
	Target string
	// Validate enables relationship validation before extraction.
	Validate bool
	// Workers bounds the number of files generated in parallel.
	Workers int
}

// DefaultHeader is the header of generated files.
const DefaultHeader = "Code generated by oaorm. DO NOT EDIT."

// Option configures extraction and code generation.
type Option func(*Config) error

// WithPackage sets the name of the generated Go package.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(pkg) {
			return NewConfigError("Package", pkg, "package must be a valid Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
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

// WithWorkers sets the number of parallel workers used by Generate.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Package:  "models",
		Header:   DefaultHeader,
		Target:   "models",
		Validate: true,
		Workers:  runtime.GOMAXPROCS(0),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
