package relationship

import (
	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/peek"
)

// DefaultColumn is the column a foreign key targets unless the relationship
// sets x-foreign-key-column.
const DefaultColumn = "id"

// ForeignKey describes the foreign key column a relationship requires.
//
// For many-to-one and one-to-one relationships the column lives on the
// model declaring the property. For one-to-many relationships it lives on
// the referenced model and points back at the declaring one.
type ForeignKey struct {
	Owner        string // Model holding the column.
	Target       string // Model the column points at.
	Column       string // Property name of the column on Owner.
	TargetColumn string // Property name of the referenced column on Target.
	Reference    string // x-foreign-key value, "<target tablename>.<target column>".
}

// ForeignKeyFor computes the foreign key of the property propName declared
// by the model sourceName. Many-to-many relationships have no foreign key
// of their own and return nil.
func ForeignKeyFor(sourceName string, source schema.Schema, propName string, prop schema.Schema, schemas *schema.Schemas) (*ForeignKey, error) {
	l, err := layout(sourceName, source, propName, prop, schemas)
	if err != nil || l == nil {
		return nil, err
	}
	if l.tablename == "" {
		return nil, oaorm.NewMalformedSchemaError(schema.Tablename, noTablename)
	}
	return &l.fk, nil
}

const noTablename = "foreign key targeted schema must have a x-tablename value"

// fkLayout is a foreign key together with the schemas on both ends.
type fkLayout struct {
	fk        ForeignKey
	rel       Rel
	owner     schema.Schema
	target    schema.Schema
	tablename string // Tablename of target, empty when it has none.
}

func layout(sourceName string, source schema.Schema, propName string, prop schema.Schema, schemas *schema.Schemas) (*fkLayout, error) {
	rel, err := Classify(prop, schemas)
	if err != nil || rel == M2M {
		return nil, err
	}
	refName, err := RefName(prop, schemas)
	if err != nil {
		return nil, err
	}
	column, err := ColumnFor(prop, rel, schemas)
	if err != nil {
		return nil, err
	}
	ref, _ := schemas.Get(refName)
	l := &fkLayout{rel: rel, fk: ForeignKey{TargetColumn: column}}
	if rel == O2M {
		l.fk.Owner, l.fk.Target = refName, sourceName
		l.owner, l.target = ref, source
	} else {
		l.fk.Owner, l.fk.Target = sourceName, refName
		l.owner, l.target = source, ref
	}
	if l.tablename, err = peek.PreferLocal(peek.Tablename, l.target, schemas); err != nil {
		return nil, err
	}
	if l.tablename != "" {
		l.fk.Column = ColumnName(rel, l.tablename, propName, column)
		l.fk.Reference = l.tablename + "." + column
	}
	return l, nil
}

// ColumnFor returns the target column configured for a relationship with
// x-foreign-key-column, or DefaultColumn.
func ColumnFor(prop schema.Schema, rel Rel, schemas *schema.Schemas) (string, error) {
	src := prop
	if rel == O2M || rel == M2M {
		items, err := itemsOf(prop, schemas)
		if err != nil {
			return "", err
		}
		src = items
	}
	column, err := peek.PreferLocal(peek.ForeignKeyColumn, src, schemas)
	if err != nil {
		return "", err
	}
	if column == "" {
		column = DefaultColumn
	}
	return column, nil
}

// ColumnName returns the property name of a foreign key column.
// The tablename is the table of the declaring model and is only part of
// the name for one-to-many relationships.
func ColumnName(rel Rel, tablename, propName, column string) string {
	if rel == O2M {
		return tablename + "_" + propName + "_" + column
	}
	return propName + "_" + column
}
