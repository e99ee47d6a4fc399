// Package relationship classifies object and array properties that point at
// other models and checks the foreign keys those relationships need.
package relationship

import (
	"fmt"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/peek"
)

// Rel is a relationship type.
type Rel int

// Relationship types.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one.
	O2M            // One to many.
	M2O            // Many to one (inverse perspective for O2M).
	M2M            // Many to many, through an association table.
)

// String returns the relationship name.
func (r Rel) String() string {
	s := "unknown"
	switch r {
	case O2O:
		s = "one-to-one"
	case O2M:
		s = "one-to-many"
	case M2O:
		s = "many-to-one"
	case M2M:
		s = "many-to-many"
	}
	return s
}

// MarshalText encodes the relationship as its name.
func (r Rel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a relationship name.
func (r *Rel) UnmarshalText(text []byte) error {
	for _, v := range []Rel{O2O, O2M, M2O, M2M} {
		if v.String() == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("relationship: unknown type %q", text)
}

// Classify returns the relationship type of a property.
//
// An array property is many-to-many when its items name an association
// table with x-secondary and one-to-many otherwise. An object property is
// one-to-one when x-uselist is explicitly false and many-to-one otherwise.
func Classify(prop schema.Schema, schemas *schema.Schemas) (Rel, error) {
	typ, err := peek.Type(prop, schemas)
	if err != nil {
		return Unk, err
	}
	if typ == "array" {
		items, err := itemsOf(prop, schemas)
		if err != nil {
			return Unk, err
		}
		secondary, err := peek.Secondary(items, schemas)
		if err != nil {
			return Unk, err
		}
		if secondary != "" {
			return M2M, nil
		}
		return O2M, nil
	}
	uselist, err := peek.Uselist(prop, schemas)
	if err != nil {
		return Unk, err
	}
	if uselist != nil && !*uselist {
		return O2O, nil
	}
	return M2O, nil
}

// RefName returns the name of the model a relationship property points at,
// looking through items for array properties and following $ref chains.
func RefName(prop schema.Schema, schemas *schema.Schemas) (string, error) {
	target := prop
	typ, err := peek.Type(prop, schemas)
	if err != nil {
		return "", err
	}
	if typ == "array" {
		if target, err = itemsOf(prop, schemas); err != nil {
			return "", err
		}
	}
	ref, err := peek.Ref(target, schemas)
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", oaorm.NewMalformedSchemaError(schema.Ref, "A relationship property must reference a schema.")
	}
	name, sch, err := schema.GetRef(ref, schemas)
	if err != nil {
		return "", err
	}
	name, _, err = schema.Resolve(name, sch, schemas)
	return name, err
}

func itemsOf(prop schema.Schema, schemas *schema.Schemas) (schema.Schema, error) {
	items, err := peek.Items(prop, schemas)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return nil, oaorm.NewMalformedSchemaError(schema.Items, "An array relationship property must define items.")
	}
	return items, nil
}
