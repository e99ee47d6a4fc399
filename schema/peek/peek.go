// Package peek resolves the effective value of a keyword on a schema that
// may be composed with $ref and allOf.
//
// The lookup order for Key is: the keyword on the schema itself (under
// every accepted spelling), then the schema a $ref points at, then each
// allOf element in order. The first non-nil value wins.
//
// Typed accessors such as Tablename, Nullable or Default wrap Key and
// enforce the primitive type of the value.
package peek

import (
	"reflect"
	"slices"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
)

// Option configures a single Key lookup.
type Option func(*options)

type options struct {
	skipRef string
}

// SkipRef stops the lookup from following a $ref to the named schema.
func SkipRef(name string) Option {
	return func(o *options) {
		o.skipRef = name
	}
}

// Key returns the effective value of key on sch, or nil if no layer
// defines it.
func Key(sch schema.Schema, schemas *schema.Schemas, key string, opts ...Option) (any, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return peekKey(sch, schemas, key, o.skipRef, schema.NewVisited())
}

func peekKey(v any, schemas *schema.Schemas, key, skipRef string, visited schema.Visited) (any, error) {
	sch, ok := schema.AsSchema(v)
	if !ok {
		return nil, oaorm.NewMalformedSchemaError("", "The schema must be a dictionary.")
	}
	if value, ok := schema.Lookup(sch, key); ok && value != nil {
		return value, nil
	}
	if ref, ok := sch[schema.Ref]; ok {
		name, target, err := schema.GetRef(ref, schemas)
		if err != nil {
			return nil, err
		}
		if skipRef != "" && name == skipRef {
			return nil, nil
		}
		leave, err := visited.Enter(name)
		if err != nil {
			return nil, err
		}
		defer leave()
		return peekKey(target, schemas, key, skipRef, visited)
	}
	if raw, ok := sch[schema.AllOf]; ok {
		elements, ok := raw.([]any)
		if !ok {
			return nil, oaorm.NewMalformedSchemaError(schema.AllOf, "The value of allOf must be a list.")
		}
		for _, element := range elements {
			value, err := peekKey(element, schemas, key, skipRef, visited)
			if err != nil {
				return nil, err
			}
			if value != nil {
				return value, nil
			}
		}
	}
	return nil, nil
}

// PreferLocal applies get while preferring values defined on local layers
// over values inherited through a $ref. A bare $ref schema is followed to
// its target. For allOf, elements without a $ref are tried before elements
// with one and the first non-zero result is returned.
func PreferLocal[T any](get func(schema.Schema, *schema.Schemas) (T, error), sch schema.Schema, schemas *schema.Schemas) (T, error) {
	return preferLocal(get, sch, schemas, schema.NewVisited())
}

func preferLocal[T any](get func(schema.Schema, *schema.Schemas) (T, error), sch schema.Schema, schemas *schema.Schemas, visited schema.Visited) (T, error) {
	var zero T
	if ref, ok := sch[schema.Ref]; ok {
		name, target, err := schema.GetRef(ref, schemas)
		if err != nil {
			return zero, err
		}
		leave, err := visited.Enter(name)
		if err != nil {
			return zero, err
		}
		defer leave()
		return preferLocal(get, target, schemas, visited)
	}
	raw, ok := sch[schema.AllOf]
	if !ok {
		return get(sch, schemas)
	}
	elements, ok := raw.([]any)
	if !ok {
		return zero, oaorm.NewMalformedSchemaError(schema.AllOf, "The value of allOf must be a list.")
	}
	sorted := slices.Clone(elements)
	slices.SortStableFunc(sorted, func(a, b any) int {
		return hasRef(a) - hasRef(b)
	})
	for _, element := range sorted {
		sub, ok := schema.AsSchema(element)
		if !ok {
			return zero, oaorm.NewMalformedSchemaError(schema.AllOf, "The elements of allOf must be dictionaries.")
		}
		value, err := preferLocal(get, sub, schemas, visited)
		if err != nil {
			return zero, err
		}
		if !isZero(value) {
			return value, nil
		}
	}
	return zero, nil
}

func hasRef(v any) int {
	if sch, ok := schema.AsSchema(v); ok {
		if _, ok := sch[schema.Ref]; ok {
			return 1
		}
	}
	return 0
}

func isZero[T any](v T) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
