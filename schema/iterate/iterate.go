// Package iterate walks the models of a schema collection and the
// properties of a single schema across its $ref and allOf layers.
package iterate

import (
	"sort"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/peek"
)

// Scope restricts which $ref layers a walk follows.
type Scope uint8

const (
	// ScopeAll follows every $ref.
	ScopeAll Scope = iota
	// ScopeTablename follows a $ref only when the target maps to the same
	// table, which is the case for single table inheritance.
	ScopeTablename
	// ScopeModel never follows a $ref, so only properties the schema
	// declares itself are visited.
	ScopeModel
)

// Property is a named property schema.
type Property struct {
	Name   string
	Schema schema.Schema
}

// Models returns the schemas of the collection that map to a table, in
// collection order.
//
// A schema is a model when it is not a bare $ref alias, its table name
// resolves, and the name is either declared on a local layer or the schema
// explicitly inherits from another model.
func Models(schemas *schema.Schemas) ([]schema.Entry, error) {
	var models []schema.Entry
	for name, sch := range schemas.All() {
		ok, err := IsModel(sch, schemas)
		if err != nil {
			return nil, err
		}
		if ok {
			models = append(models, schema.Entry{Name: name, Schema: sch})
		}
	}
	return models, nil
}

// IsModel reports whether sch maps to a table.
func IsModel(sch schema.Schema, schemas *schema.Schemas) (bool, error) {
	if sch == nil {
		return false, oaorm.NewMalformedSchemaError("", "The schema must be a dictionary.")
	}
	if _, ok := sch[schema.Ref]; ok {
		return false, nil
	}
	tablename, err := peek.Tablename(sch, schemas)
	if err != nil || tablename == "" {
		return false, err
	}
	local, err := localTablename(sch)
	if err != nil || local {
		return local, err
	}
	inherits, err := peek.Inherits(sch, schemas)
	if err != nil {
		return false, err
	}
	return inherits != nil && inherits.Enabled, nil
}

// localTablename reports whether x-tablename is set on sch or one of its
// allOf elements without following any $ref.
func localTablename(sch schema.Schema) (bool, error) {
	if _, ok := schema.Lookup(sch, schema.Tablename); ok {
		return true, nil
	}
	raw, ok := sch[schema.AllOf]
	if !ok {
		return false, nil
	}
	elements, ok := raw.([]any)
	if !ok {
		return false, oaorm.NewMalformedSchemaError(schema.AllOf, "The value of allOf must be a list.")
	}
	for _, element := range elements {
		sub, ok := schema.AsSchema(element)
		if !ok {
			return false, oaorm.NewMalformedSchemaError(schema.AllOf, "The elements of allOf must be dictionaries.")
		}
		if _, isRef := sub[schema.Ref]; isRef {
			continue
		}
		if found, err := localTablename(sub); err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// Properties returns the properties of sch sorted by name. Layers are
// visited target first, so a property redefined on a later or more local
// layer replaces the inherited definition.
func Properties(sch schema.Schema, schemas *schema.Schemas, scope Scope) ([]Property, error) {
	w, err := newWalker(sch, schemas, scope)
	if err != nil {
		return nil, err
	}
	found := make(map[string]schema.Schema)
	err = w.walk(sch, func(layer schema.Schema) error {
		raw, ok := layer[schema.Properties]
		if !ok {
			return nil
		}
		props, ok := schema.AsSchema(raw)
		if !ok {
			return oaorm.NewMalformedSchemaError(schema.Properties, "The properties value must be a dictionary.")
		}
		for name, v := range props {
			prop, ok := schema.AsSchema(v)
			if !ok {
				return oaorm.Malformedf(schema.Properties, "The %s property schema must be a dictionary.", name)
			}
			found[name] = prop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]Property, 0, len(found))
	for name, prop := range found {
		out = append(out, Property{Name: name, Schema: prop})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Required returns the union of the required lists of every layer.
func Required(sch schema.Schema, schemas *schema.Schemas, scope Scope) (map[string]bool, error) {
	w, err := newWalker(sch, schemas, scope)
	if err != nil {
		return nil, err
	}
	required := make(map[string]bool)
	err = w.walk(sch, func(layer schema.Schema) error {
		raw, ok := layer[schema.Required]
		if !ok {
			return nil
		}
		list, ok := raw.([]any)
		if !ok {
			return oaorm.NewMalformedSchemaError(schema.Required, "The required value must be a list.")
		}
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return oaorm.NewMalformedSchemaError(schema.Required, "The required values must be strings.")
			}
			required[name] = true
		}
		return nil
	})
	return required, err
}

// CheckOneModel fails unless at least one schema is a model with
// properties.
func CheckOneModel(schemas *schema.Schemas) error {
	models, err := Models(schemas)
	if err != nil {
		return err
	}
	for _, m := range models {
		props, err := Properties(m.Schema, schemas, ScopeAll)
		if err != nil {
			return err
		}
		if len(props) > 0 {
			return nil
		}
	}
	return oaorm.NewMalformedSchemaError("", "At least one schema must have a x-tablename and properties.")
}

type walker struct {
	schemas   *schema.Schemas
	scope     Scope
	tablename string
	visited   schema.Visited
}

func newWalker(sch schema.Schema, schemas *schema.Schemas, scope Scope) (*walker, error) {
	w := &walker{schemas: schemas, scope: scope, visited: schema.NewVisited()}
	if scope == ScopeTablename {
		tablename, err := peek.PreferLocal(peek.Tablename, sch, schemas)
		if err != nil {
			return nil, err
		}
		w.tablename = tablename
	}
	return w, nil
}

// walk calls fn for every layer of sch: the $ref target and the allOf
// elements first, the schema itself last.
func (w *walker) walk(sch schema.Schema, fn func(schema.Schema) error) error {
	if ref, ok := sch[schema.Ref]; ok && w.scope != ScopeModel {
		name, target, err := schema.GetRef(ref, w.schemas)
		if err != nil {
			return err
		}
		follow, err := w.follows(target)
		if err != nil {
			return err
		}
		if follow {
			leave, err := w.visited.Enter(name)
			if err != nil {
				return err
			}
			err = w.walk(target, fn)
			leave()
			if err != nil {
				return err
			}
		}
	}
	if raw, ok := sch[schema.AllOf]; ok {
		elements, ok := raw.([]any)
		if !ok {
			return oaorm.NewMalformedSchemaError(schema.AllOf, "The value of allOf must be a list.")
		}
		for _, element := range elements {
			sub, ok := schema.AsSchema(element)
			if !ok {
				return oaorm.NewMalformedSchemaError(schema.AllOf, "The elements of allOf must be dictionaries.")
			}
			if err := w.walk(sub, fn); err != nil {
				return err
			}
		}
	}
	return fn(sch)
}

func (w *walker) follows(target schema.Schema) (bool, error) {
	if w.scope != ScopeTablename || w.tablename == "" {
		return true, nil
	}
	tablename, err := peek.PreferLocal(peek.Tablename, target, w.schemas)
	if err != nil {
		return false, err
	}
	return tablename == "" || tablename == w.tablename, nil
}
