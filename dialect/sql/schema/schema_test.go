package schema

import (
	"github.com/syssam/oaorm/compiler/gen"
	"github.com/syssam/oaorm/schema/peek"
)

func ptr[T any](v T) *T { return &v }

// company returns an employee table listed before the division table it
// references.
func company() []*gen.Model {
	return []*gen.Model{
		{
			Name:      "Employee",
			Tablename: "employee",
			Columns: []*gen.Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "name", Type: "string"},
				{
					Name:             "division_id",
					Type:             "integer",
					ForeignKey:       "division.id",
					ForeignKeyKwargs: map[string]any{"ondelete": "cascade"},
					Index:            ptr(true),
					Implicit:         true,
				},
			},
		},
		{
			Name:      "Division",
			Tablename: "division",
			Columns: []*gen.Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "name", Type: "string", MaxLength: ptr(100), Unique: ptr(true), Required: true},
			},
		},
	}
}

func withComposite(models []*gen.Model) []*gen.Model {
	models[0].CompositeIndex = []peek.IndexDef{{Expressions: []string{"name", "lower(name)"}}}
	models[0].CompositeUnique = []peek.UniqueDef{{Name: "uq_name_division", Columns: []string{"name", "division_id"}}}
	return models
}
