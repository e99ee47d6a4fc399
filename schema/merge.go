package schema

import (
	"slices"

	"github.com/syssam/oaorm"
)

// MergeAllOf flattens the allOf composition of sch into a single schema.
//
// Elements are merged in order and later keys overwrite earlier ones, with
// the exception of required, which accumulates the union of all lists.
// Keys defined next to allOf are applied last. A schema without allOf is
// returned unchanged.
func MergeAllOf(sch Schema, schemas *Schemas) (Schema, error) {
	return mergeAllOf(sch, schemas, NewVisited())
}

func mergeAllOf(sch Schema, schemas *Schemas, visited Visited) (Schema, error) {
	raw, ok := sch[AllOf]
	if !ok {
		return sch, nil
	}
	elements, ok := raw.([]any)
	if !ok {
		return nil, oaorm.NewMalformedSchemaError(AllOf, "The value of allOf must be a list.")
	}
	merged := make(Schema)
	var required []any
	apply := func(sub Schema) {
		for k, v := range sub {
			if k == Required {
				required = unionRequired(required, v)
				continue
			}
			merged[k] = v
		}
	}
	for _, element := range elements {
		sub, ok := AsSchema(element)
		if !ok {
			return nil, oaorm.NewMalformedSchemaError(AllOf, "The elements of allOf must be dictionaries.")
		}
		flat, err := mergeElement(sub, schemas, visited)
		if err != nil {
			return nil, err
		}
		apply(flat)
	}
	local := make(Schema, len(sch))
	for k, v := range sch {
		if k != AllOf {
			local[k] = v
		}
	}
	apply(local)
	if required != nil {
		merged[Required] = required
	}
	return merged, nil
}

// mergeElement flattens a single allOf element, following its $ref chain.
func mergeElement(sub Schema, schemas *Schemas, visited Visited) (Schema, error) {
	ref, ok := sub[Ref]
	if !ok {
		return mergeAllOf(sub, schemas, visited)
	}
	name, target, err := GetRef(ref, schemas)
	if err != nil {
		return nil, err
	}
	leave, err := visited.Enter(name)
	if err != nil {
		return nil, err
	}
	defer leave()
	return mergeElement(target, schemas, visited)
}

func unionRequired(acc []any, v any) []any {
	var list []any
	switch v := v.(type) {
	case []any:
		list = v
	case []string:
		for _, s := range v {
			list = append(list, s)
		}
	}
	for _, item := range list {
		if !slices.Contains(acc, item) {
			acc = append(acc, item)
		}
	}
	return acc
}
