package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/peek"
)

func TestProcess(t *testing.T) {
	input := company()
	out, err := Process(input)
	require.NoError(t, err)

	assert.Equal(t, company(), input, "input collection must not change")
	assert.Equal(t, []string{"Division", "Employee"}, out.Names())

	division, ok := out.Get("Division")
	require.True(t, ok)
	backrefs, err := peek.Backrefs(division, out)
	require.NoError(t, err)
	assert.Equal(t, map[string]schema.Schema{
		"employees": {
			"type":  "array",
			"items": map[string]any{"type": "object", "x-de-$ref": "Employee"},
		},
	}, backrefs)
}

func TestProcess_Association(t *testing.T) {
	out, err := Process(projects())
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee", "Project", "EmployeeProject"}, out.Names())

	table, _ := out.Get("EmployeeProject")
	tablename, err := peek.Tablename(table, out)
	require.NoError(t, err)
	assert.Equal(t, "employee_project", tablename)
}

func TestProcess_Errors(t *testing.T) {
	t.Run("no model", func(t *testing.T) {
		_, err := Process(schema.NewSchemas().Add("Plain", schema.Schema{"type": "object"}))
		require.Error(t, err)
		assert.True(t, oaorm.IsMalformedSchema(err))
	})

	t.Run("missing type", func(t *testing.T) {
		schemas := schema.NewSchemas().Add("Employee", schema.Schema{
			"x-tablename": "employee",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "x-primary-key": true},
				"name": map[string]any{"description": "untyped"},
			},
		})
		_, err := Process(schemas)
		require.Error(t, err)
		assert.True(t, oaorm.IsTypeMissing(err))

		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "Employee", serr.Model)
		assert.Equal(t, "name", serr.Property)
	})

	t.Run("relationship failures", func(t *testing.T) {
		schemas := company()
		employee, _ := schemas.Get("Employee")
		employee["properties"].(map[string]any)["division_id"] = map[string]any{
			"type":          "string",
			"x-foreign-key": "division.id",
		}

		_, err := Process(schemas)
		require.Error(t, err)
		assert.True(t, oaorm.IsMalformedSchema(err))
		assert.Contains(t, err.Error(), "Employee.division: the type of division_id is wrong, expected integer, actual is string.")

		_, err = Process(schemas, WithValidation(false))
		require.NoError(t, err)
	})

	t.Run("bad option", func(t *testing.T) {
		_, err := Process(company(), WithWorkers(0))
		assert.True(t, IsConfigError(err))
	})
}
