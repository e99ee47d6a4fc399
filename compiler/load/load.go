// Package load reads OpenAPI documents and returns their component schemas
// in document order.
package load

import (
	"context"
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
)

// Spec is a loaded OpenAPI document.
type Spec struct {
	// Path of the file the document was read from, if any.
	Path string
	// Document is the whole decoded document.
	Document map[string]any
	// Schemas are the components.schemas entries in document order.
	Schemas *schema.Schemas
}

// Version returns info.version when the document declares it as a string.
func (s *Spec) Version() (string, bool) {
	info, ok := s.Document["info"].(map[string]any)
	if !ok {
		return "", false
	}
	version, ok := info["version"].(string)
	return version, ok
}

// Config holds the loader configuration.
type Config struct {
	// OpenAPIValidation validates the whole document as OpenAPI 3 before
	// its schemas are read.
	OpenAPIValidation bool
}

// Option configures the loader.
type Option func(*Config) error

// WithOpenAPIValidation enables or disables OpenAPI 3 document validation.
func WithOpenAPIValidation(enabled bool) Option {
	return func(c *Config) error {
		c.OpenAPIValidation = enabled
		return nil
	}
}

// File reads and parses the document at path.
func File(ctx context.Context, path string, opts ...Option) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oaorm.NewBuildError("load", path, err)
	}
	spec, err := Parse(ctx, data, opts...)
	if err != nil {
		return nil, oaorm.NewBuildError("load", path, err)
	}
	spec.Path = path
	return spec, nil
}

// Parse parses a YAML or JSON document.
func Parse(ctx context.Context, data []byte, opts ...Option) (*Spec, error) {
	cfg := &Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.OpenAPIValidation {
		if err := validateOpenAPI(ctx, data); err != nil {
			return nil, err
		}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, oaorm.NewMalformedSchemaError("", "The OpenAPI document must be a dictionary.")
	}
	var raw map[string]any
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	document, _ := normalize(raw).(map[string]any)

	components := child(doc, "components")
	if components == nil {
		return nil, oaorm.NewMalformedSchemaError("", "The OpenAPI document must define components.")
	}
	if components.Kind != yaml.MappingNode {
		return nil, oaorm.NewMalformedSchemaError("", "The components value must be a dictionary.")
	}
	schemasNode := child(components, "schemas")
	if schemasNode == nil {
		return nil, oaorm.NewMalformedSchemaError("", "The OpenAPI document must define components.schemas.")
	}
	if schemasNode.Kind != yaml.MappingNode {
		return nil, oaorm.NewMalformedSchemaError("", "The schemas value must be a dictionary.")
	}

	values, _ := document["components"].(map[string]any)["schemas"].(map[string]any)
	schemas := schema.NewSchemas()
	for i := 0; i+1 < len(schemasNode.Content); i += 2 {
		name := schemasNode.Content[i].Value
		sch, ok := values[name].(map[string]any)
		if !ok {
			return nil, oaorm.Malformedf("", "The %s schema must be a dictionary.", name)
		}
		schemas.Set(name, sch)
	}
	return &Spec{Document: document, Schemas: schemas}, nil
}

// child returns the value node of key in a mapping node.
func child(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// normalize converts mappings with non string keys, which YAML allows for
// keys such as response codes, into string keyed maps.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalize(item)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	}
	return v
}

func validateOpenAPI(ctx context.Context, data []byte) error {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return fmt.Errorf("loading openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("invalid openapi document: %w", err)
	}
	return nil
}
