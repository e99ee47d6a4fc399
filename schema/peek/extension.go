package peek

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
)

// IndexDef is one composite index declared with x-composite-index.
type IndexDef struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Expressions []string `json:"expressions" yaml:"expressions"`
	Unique      bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// UniqueDef is one composite unique constraint declared with
// x-composite-unique.
type UniqueDef struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
}

const (
	stringList = `{"type":"array","items":{"type":"string"},"minItems":1}`

	indexObject = `{"type":"object","properties":{` +
		`"name":{"type":"string"},"expressions":` + stringList + `,"unique":{"type":"boolean"}},` +
		`"required":["expressions"],"additionalProperties":false}`

	uniqueObject = `{"type":"object","properties":{` +
		`"name":{"type":"string"},"columns":` + stringList + `},` +
		`"required":["columns"],"additionalProperties":false}`

	compositeIndexSchema = `{"anyOf":[` +
		stringList + `,` +
		`{"type":"array","items":` + stringList + `,"minItems":1},` +
		indexObject + `,` +
		`{"type":"array","items":` + indexObject + `,"minItems":1}]}`

	compositeUniqueSchema = `{"anyOf":[` +
		stringList + `,` +
		`{"type":"array","items":` + stringList + `,"minItems":1},` +
		uniqueObject + `,` +
		`{"type":"array","items":` + uniqueObject + `,"minItems":1}]}`
)

var (
	compositeIndexValidator = sync.OnceValues(func() (*jsonschema.Resolved, error) {
		return compileText(compositeIndexSchema)
	})
	compositeUniqueValidator = sync.OnceValues(func() (*jsonschema.Resolved, error) {
		return compileText(compositeUniqueSchema)
	})
)

func compileText(text string) (*jsonschema.Resolved, error) {
	return compileBytes([]byte(text))
}

// CompositeIndex returns the composite indexes declared on sch. The value
// may be a list of expressions, a list of such lists, an index object or a
// list of index objects.
func CompositeIndex(sch schema.Schema, schemas *schema.Schemas) ([]IndexDef, error) {
	v, err := checkExtension(sch, schemas, schema.CompositeIndex, compositeIndexValidator)
	if err != nil || v == nil {
		return nil, err
	}
	return decodeComposite(v, "expressions", func(name string, values []string, obj map[string]any) IndexDef {
		unique, _ := obj["unique"].(bool)
		return IndexDef{Name: name, Expressions: values, Unique: unique}
	}), nil
}

// CompositeUnique returns the composite unique constraints declared on sch.
// It accepts the same shapes as CompositeIndex with columns in place of
// expressions.
func CompositeUnique(sch schema.Schema, schemas *schema.Schemas) ([]UniqueDef, error) {
	v, err := checkExtension(sch, schemas, schema.CompositeUnique, compositeUniqueValidator)
	if err != nil || v == nil {
		return nil, err
	}
	return decodeComposite(v, "columns", func(name string, values []string, _ map[string]any) UniqueDef {
		return UniqueDef{Name: name, Columns: values}
	}), nil
}

func checkExtension(sch schema.Schema, schemas *schema.Schemas, key string, validator func() (*jsonschema.Resolved, error)) (any, error) {
	raw, err := Key(sch, schemas, key)
	if err != nil || raw == nil {
		return nil, err
	}
	v, err := normalize(raw)
	if err != nil {
		return nil, oaorm.NewMalformedExtensionPropertyError(key, raw, fmt.Sprintf("%s could not be read: %v", key, err))
	}
	resolved, err := validator()
	if err != nil {
		return nil, err
	}
	if err := resolved.Validate(v); err != nil {
		return nil, oaorm.NewMalformedExtensionPropertyError(key, raw, fmt.Sprintf("%s is not valid: %v", key, err))
	}
	return v, nil
}

// decodeComposite converts an already validated composite value.
func decodeComposite[T any](v any, field string, build func(string, []string, map[string]any) T) []T {
	single := func(obj map[string]any) T {
		name, _ := obj["name"].(string)
		return build(name, stringsOf(obj[field]), obj)
	}
	switch v := v.(type) {
	case map[string]any:
		return []T{single(v)}
	case []any:
		if len(v) == 0 {
			return nil
		}
		switch v[0].(type) {
		case string:
			return []T{build("", stringsOf(v), nil)}
		case []any:
			out := make([]T, 0, len(v))
			for _, item := range v {
				out = append(out, build("", stringsOf(item), nil))
			}
			return out
		default:
			out := make([]T, 0, len(v))
			for _, item := range v {
				obj, _ := item.(map[string]any)
				out = append(out, single(obj))
			}
			return out
		}
	}
	return nil
}

func stringsOf(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

var importPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)

// Mixins returns the x-mixins import paths of sch. A single string is
// normalized to a one element list. Every path needs at least a module and
// a name component.
func Mixins(sch schema.Schema, schemas *schema.Schemas) ([]string, error) {
	v, err := Key(sch, schemas, schema.Mixins)
	if err != nil || v == nil {
		return nil, err
	}
	var mixins []string
	switch v := v.(type) {
	case string:
		mixins = []string{v}
	case []string:
		mixins = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, malformedType(schema.Mixins, "string or list of strings")
			}
			mixins = append(mixins, s)
		}
	default:
		return nil, malformedType(schema.Mixins, "string or list of strings")
	}
	for _, m := range mixins {
		if !importPath.MatchString(m) {
			return nil, oaorm.NewMalformedExtensionPropertyError(schema.Mixins, m,
				fmt.Sprintf("mixin values must be a valid import path, %q is not", m))
		}
	}
	return mixins, nil
}
