package gen

import (
	"github.com/syssam/oaorm/schema"
)

// company returns a collection with a many-to-one relationship declaring a
// back reference.
func company() *schema.Schemas {
	return schema.NewSchemas().
		Add("Division", schema.Schema{
			"type":        "object",
			"x-tablename": "division",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "x-primary-key": true},
				"name": map[string]any{"type": "string", "maxLength": 100},
			},
			"required": []any{"id"},
		}).
		Add("Employee", schema.Schema{
			"type":        "object",
			"x-tablename": "employee",
			"description": "Person employed by a division.",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "x-primary-key": true, "x-autoincrement": true},
				"name": map[string]any{"type": "string", "description": "Full name."},
				"division": map[string]any{"allOf": []any{
					map[string]any{"$ref": schema.RefTo("Division")},
					map[string]any{"x-backref": "employees"},
				}},
			},
			"required": []any{"id", "name"},
		})
}

// projects returns a collection with a many-to-many relationship.
func projects() *schema.Schemas {
	return schema.NewSchemas().
		Add("Employee", schema.Schema{
			"type":        "object",
			"x-tablename": "employee",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "x-primary-key": true},
				"projects": map[string]any{
					"type": "array",
					"items": map[string]any{"allOf": []any{
						map[string]any{"$ref": schema.RefTo("Project")},
						map[string]any{"x-secondary": "employee_project"},
					}},
				},
			},
		}).
		Add("Project", schema.Schema{
			"type":        "object",
			"x-tablename": "project",
			"properties": map[string]any{
				"id": map[string]any{"type": "string", "format": "uuid", "x-primary-key": true},
			},
		})
}
