package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/relationship"
)

func ptr[T any](v T) *T { return &v }

func TestExtract(t *testing.T) {
	g, err := NewGraph(company())
	require.NoError(t, err)
	require.Len(t, g.Models, 2)

	division, ok := g.Model("Division")
	require.True(t, ok)
	assert.Equal(t, "division", division.Tablename)
	assert.Equal(t, []*Column{
		{Name: "id", Type: "integer", Required: true, PrimaryKey: true},
		{Name: "name", Type: "string", MaxLength: ptr(100)},
	}, division.Columns)
	assert.Equal(t, []*Backref{{Name: "employees", Type: "array", Ref: "Employee"}}, division.Backrefs)
	assert.Empty(t, division.Relationships)

	employee, ok := g.Model("Employee")
	require.True(t, ok)
	assert.Equal(t, "Person employed by a division.", employee.Description)
	assert.Equal(t, []*Column{
		{Name: "id", Type: "integer", Required: true, PrimaryKey: true, Autoincrement: ptr(true)},
		{Name: "name", Type: "string", Required: true, Description: "Full name."},
		{Name: "division_id", Type: "integer", ForeignKey: "division.id", Implicit: true},
	}, employee.Columns)
	assert.Equal(t, []*Relationship{{
		Name:             "division",
		Kind:             relationship.M2O,
		Ref:              "Division",
		ForeignKey:       "division_id",
		ForeignKeyTarget: "division.id",
		Backref:          "employees",
	}}, employee.Relationships)
	assert.Empty(t, employee.Backrefs)

	pks := employee.PrimaryKeys()
	require.Len(t, pks, 1)
	assert.Equal(t, "id", pks[0].Name)
	assert.False(t, pks[0].IsNullable())
	fk, _ := employee.Column("division_id")
	assert.True(t, fk.IsNullable())
}

func TestExtract_Idempotent(t *testing.T) {
	input := company()
	first, err := NewGraph(input)
	require.NoError(t, err)
	second, err := NewGraph(input)
	require.NoError(t, err)
	assert.Equal(t, first.Models, second.Models)

	again, err := Extract(first.Schemas)
	require.NoError(t, err)
	assert.Equal(t, first.Models, again)
}

func TestExtract_ComposedColumn(t *testing.T) {
	schemas := schema.NewSchemas().
		Add("Level", schema.Schema{"type": "integer", "description": "Seniority."}).
		Add("Code", schema.Schema{"allOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"maxLength": 8},
		}}).
		Add("Employee", schema.Schema{
			"type":        "object",
			"x-tablename": "employee",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "x-primary-key": true},
				"level": map[string]any{"allOf": []any{
					map[string]any{"$ref": schema.RefTo("Level")},
					map[string]any{"default": 5},
				}},
				"code": map[string]any{"$ref": schema.RefTo("Code")},
			},
		})

	g, err := NewGraph(schemas)
	require.NoError(t, err)
	employee, _ := g.Model("Employee")

	level, ok := employee.Column("level")
	require.True(t, ok)
	assert.Equal(t, "integer", level.Type)
	assert.Equal(t, 5, level.Default)
	assert.Equal(t, "Seniority.", level.Description)

	code, ok := employee.Column("code")
	require.True(t, ok)
	assert.Equal(t, "string", code.Type)
	assert.Equal(t, ptr(8), code.MaxLength)
}

func TestExtract_ComposedColumnInvalidDefault(t *testing.T) {
	schemas := schema.NewSchemas().
		Add("Level", schema.Schema{"type": "integer"}).
		Add("Employee", schema.Schema{
			"type":        "object",
			"x-tablename": "employee",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "x-primary-key": true},
				"level": map[string]any{"allOf": []any{
					map[string]any{"$ref": schema.RefTo("Level")},
					map[string]any{"default": "senior"},
				}},
			},
		})

	_, err := NewGraph(schemas)
	require.Error(t, err)
	assert.True(t, oaorm.IsMalformedSchema(err))
}

func TestExtract_OneToMany(t *testing.T) {
	schemas := schema.NewSchemas().
		Add("Division", schema.Schema{
			"type":        "object",
			"x-tablename": "division",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "x-primary-key": true},
				"employees": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": schema.RefTo("Employee")},
				},
			},
		}).
		Add("Employee", schema.Schema{
			"type":        "object",
			"x-tablename": "employee",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "x-primary-key": true},
			},
		})

	g, err := NewGraph(schemas)
	require.NoError(t, err)

	division, _ := g.Model("Division")
	require.Len(t, division.Relationships, 1)
	r := division.Relationships[0]
	assert.Equal(t, relationship.O2M, r.Kind)
	assert.Equal(t, "Employee", r.Ref)
	assert.Equal(t, "division_employees_id", r.ForeignKey)
	assert.Equal(t, "division.id", r.ForeignKeyTarget)

	employee, _ := g.Model("Employee")
	c, ok := employee.Column("division_employees_id")
	require.True(t, ok)
	assert.True(t, c.Implicit)
	assert.Equal(t, "division.id", c.ForeignKey)
	_, ok = division.Column("division_employees_id")
	assert.False(t, ok)
}

func TestExtract_ManyToMany(t *testing.T) {
	g, err := NewGraph(projects())
	require.NoError(t, err)
	require.Len(t, g.Models, 3)

	employee, _ := g.Model("Employee")
	require.Len(t, employee.Relationships, 1)
	r := employee.Relationships[0]
	assert.Equal(t, relationship.M2M, r.Kind)
	assert.Equal(t, "employee_project", r.Secondary)
	assert.Empty(t, r.ForeignKey)
	assert.Len(t, employee.Columns, 1)

	table, ok := g.Model("EmployeeProject")
	require.True(t, ok)
	assert.Equal(t, "employee_project", table.Tablename)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, &Column{
		Name:       "employee_id",
		Type:       "integer",
		Required:   true,
		PrimaryKey: true,
		ForeignKey: "employee.id",
	}, table.Columns[0])
	assert.Equal(t, "project_id", table.Columns[1].Name)
	assert.Equal(t, "uuid", table.Columns[1].Format)
	assert.Equal(t, []string{"employee", "project", "employee_project"}, g.Tables())
}

func TestExtract_Inheritance(t *testing.T) {
	base := schema.Schema{
		"type":        "object",
		"x-tablename": "employee",
		"properties": map[string]any{
			"id":   map[string]any{"type": "integer", "x-primary-key": true},
			"type": map[string]any{"type": "string"},
		},
	}

	t.Run("single table", func(t *testing.T) {
		schemas := schema.NewSchemas().
			Add("Employee", base).
			Add("Manager", schema.Schema{"allOf": []any{
				map[string]any{"$ref": schema.RefTo("Employee")},
				map[string]any{
					"x-inherits": true,
					"type":       "object",
					"properties": map[string]any{"reports": map[string]any{"type": "integer"}},
				},
			}})

		g, err := NewGraph(schemas)
		require.NoError(t, err)
		manager, ok := g.Model("Manager")
		require.True(t, ok)
		assert.True(t, manager.Inherits)
		assert.Equal(t, "Employee", manager.Parent)
		assert.Equal(t, "employee", manager.Tablename)
		assert.Len(t, manager.Columns, 3)
		assert.Equal(t, []string{"employee"}, g.Tables())
	})

	t.Run("joined table with explicit parent", func(t *testing.T) {
		schemas := schema.NewSchemas().
			Add("Employee", base).
			Add("Manager", schema.Schema{"allOf": []any{
				map[string]any{"$ref": schema.RefTo("Employee")},
				map[string]any{
					"x-inherits":  "Employee",
					"x-tablename": "manager",
					"type":        "object",
					"properties": map[string]any{
						"id": map[string]any{"type": "integer", "x-primary-key": true, "x-foreign-key": "employee.id"},
					},
				},
			}})

		g, err := NewGraph(schemas)
		require.NoError(t, err)
		manager, _ := g.Model("Manager")
		assert.Equal(t, "Employee", manager.Parent)
		assert.Equal(t, "manager", manager.Tablename)
		require.Len(t, manager.Columns, 1)
		assert.Equal(t, "employee.id", manager.Columns[0].ForeignKey)
	})

	t.Run("parent is not a model", func(t *testing.T) {
		schemas := schema.NewSchemas().
			Add("Employee", base).
			Add("Base", schema.Schema{"type": "object"}).
			Add("Manager", schema.Schema{"allOf": []any{
				map[string]any{"$ref": schema.RefTo("Employee")},
				map[string]any{"x-inherits": "Base", "x-tablename": "manager", "type": "object"},
			}})

		_, err := NewGraph(schemas)
		require.Error(t, err)
		assert.True(t, oaorm.IsMalformedSchema(err))
		assert.True(t, IsSchemaError(err))
	})
}

func TestExtract_ModelArtifacts(t *testing.T) {
	schemas := schema.NewSchemas().Add("Employee", schema.Schema{
		"type":        "object",
		"x-tablename": "employee",
		"x-mixins":    []any{"app.mixins.Timestamps"},
		"x-kwargs":    map[string]any{"__table_args__": map[string]any{"comment": "staff"}},
		"x-composite-index": []any{
			map[string]any{"name": "ix_name", "expressions": []any{"first", "last"}},
		},
		"x-composite-unique": []any{[]any{"first", "last"}},
		"properties": map[string]any{
			"id":      map[string]any{"type": "integer", "x-primary-key": true},
			"first":   map[string]any{"type": "string"},
			"last":    map[string]any{"type": "string"},
			"profile": map[string]any{"type": "object", "x-json": true},
			"address": map[string]any{
				"type":     "object",
				"readOnly": true,
				"properties": map[string]any{
					"street": map[string]any{"type": "string"},
					"city":   map[string]any{"type": "string"},
				},
			},
		},
	})

	models, err := Extract(schemas)
	require.NoError(t, err)
	require.Len(t, models, 1)
	m := models[0]

	assert.Equal(t, []string{"app.mixins.Timestamps"}, m.Mixins)
	assert.Equal(t, map[string]any{"__table_args__": map[string]any{"comment": "staff"}}, m.Kwargs)
	require.Len(t, m.CompositeIndex, 1)
	assert.Equal(t, "ix_name", m.CompositeIndex[0].Name)
	assert.Equal(t, []string{"first", "last"}, m.CompositeIndex[0].Expressions)
	require.Len(t, m.CompositeUnique, 1)
	assert.Equal(t, []string{"first", "last"}, m.CompositeUnique[0].Columns)

	profile, ok := m.Column("profile")
	require.True(t, ok)
	assert.True(t, profile.JSON)

	require.Len(t, m.ReadOnly, 1)
	assert.Equal(t, &ReadOnly{Name: "address", Type: "object", Properties: []string{"city", "street"}}, m.ReadOnly[0])
	_, ok = m.Column("address")
	assert.False(t, ok)
}
