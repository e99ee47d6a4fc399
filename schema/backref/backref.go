// Package backref computes the back-reference properties that relationships
// declaring x-backref imply on the models they point at.
//
// Computing and applying are separate steps. Compute walks the collection
// without changing it and returns the properties to add, grouped by the
// model receiving them. Apply injects the groups into the collection.
package backref

import (
	"fmt"

	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/iterate"
	"github.com/syssam/oaorm/schema/peek"
)

// Backref is a synthetic property added to the model a relationship
// points at.
type Backref struct {
	Source string        // Model declaring the relationship.
	Target string        // Model receiving the property.
	Name   string        // Property name, the x-backref value.
	Schema schema.Schema // Object or array of objects tagged with x-de-$ref.
}

// Group holds the back references added to a single model.
type Group struct {
	Target   string
	Backrefs []Backref
}

// DefinesBackref reports whether a relationship property declares
// x-backref, looking through items for array properties.
func DefinesBackref(prop schema.Schema, schemas *schema.Schemas) (bool, error) {
	items, err := peek.Items(prop, schemas)
	if err != nil {
		return false, err
	}
	if items != nil {
		return DefinesBackref(items, schemas)
	}
	backref, err := peek.Backref(prop, schemas)
	return backref != "", err
}

// CalculateSchema computes the back reference declared by the property prop
// of the model sourceName.
//
// The property is an array when the relationship is many-to-many or when
// an object relationship does not set x-uselist to false. It panics if the
// property does not reference a schema, which earlier validation rules out.
func CalculateSchema(prop schema.Schema, sourceName string, schemas *schema.Schemas) (Backref, error) {
	var isArray bool
	items, err := peek.Items(prop, schemas)
	if err != nil {
		return Backref{}, err
	}
	target := prop
	if items != nil {
		target = items
		secondary, err := peek.Secondary(items, schemas)
		if err != nil {
			return Backref{}, err
		}
		isArray = secondary != ""
	} else {
		uselist, err := peek.PreferLocal(peek.Uselist, prop, schemas)
		if err != nil {
			return Backref{}, err
		}
		isArray = uselist == nil || *uselist
	}
	ref, err := peek.Ref(target, schemas)
	if err != nil {
		return Backref{}, err
	}
	if ref == "" {
		panic(fmt.Sprintf("backref: %s declares a back reference without a schema reference", sourceName))
	}
	name, err := peek.PreferLocal(peek.Backref, target, schemas)
	if err != nil {
		return Backref{}, err
	}
	refName, _, err := schema.Resolve("", schema.Schema{schema.Ref: ref}, schemas)
	if err != nil {
		return Backref{}, err
	}
	sch := schema.Schema{"type": "object", schema.DeRef: sourceName}
	if isArray {
		sch = schema.Schema{"type": "array", "items": sch}
	}
	return Backref{Source: sourceName, Target: refName, Name: name, Schema: sch}, nil
}

// Compute returns the back references of every model, grouped by target in
// the order targets are first seen. Only properties a model declares itself
// are considered, so inherited relationships are not counted twice.
func Compute(schemas *schema.Schemas) ([]Group, error) {
	models, err := iterate.Models(schemas)
	if err != nil {
		return nil, err
	}
	var groups []Group
	index := make(map[string]int)
	for _, m := range models {
		props, err := iterate.Properties(m.Schema, schemas, iterate.ScopeModel)
		if err != nil {
			return nil, err
		}
		for _, p := range props {
			kind, err := peek.KindOf(p.Schema, schemas)
			if err != nil {
				return nil, err
			}
			if kind != peek.KindRelationship {
				continue
			}
			ok, err := DefinesBackref(p.Schema, schemas)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			b, err := CalculateSchema(p.Schema, m.Name, schemas)
			if err != nil {
				return nil, err
			}
			i, seen := index[b.Target]
			if !seen {
				i = len(groups)
				index[b.Target] = i
				groups = append(groups, Group{Target: b.Target})
			}
			groups[i].Backrefs = append(groups[i].Backrefs, b)
		}
	}
	return groups, nil
}

// Apply adds every group to its target model as an x-backrefs layer. The
// target keeps its position in the collection.
func Apply(schemas *schema.Schemas, groups []Group) {
	for _, g := range groups {
		sch, ok := schemas.Get(g.Target)
		if !ok {
			panic(fmt.Sprintf("backref: target schema %q not found", g.Target))
		}
		backrefs := make(map[string]any, len(g.Backrefs))
		for _, b := range g.Backrefs {
			backrefs[b.Name] = map[string]any(b.Schema)
		}
		schemas.Set(g.Target, schema.Schema{
			schema.AllOf: []any{
				map[string]any(sch),
				map[string]any{"type": "object", schema.Backrefs: backrefs},
			},
		})
	}
}

// Process computes and applies the back references of schemas.
func Process(schemas *schema.Schemas) error {
	groups, err := Compute(schemas)
	if err != nil {
		return err
	}
	Apply(schemas, groups)
	return nil
}
