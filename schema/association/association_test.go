package association_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/association"
	"github.com/syssam/oaorm/schema/iterate"
)

func manyToMany(ref, secondary string) map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{"allOf": []any{
			map[string]any{"$ref": schema.RefTo(ref)},
			map[string]any{"x-secondary": secondary},
		}},
	}
}

func collection() *schema.Schemas {
	return schema.NewSchemas().
		Add("SchemaA", schema.Schema{
			"type":        "object",
			"x-tablename": "schema_a",
			"properties": map[string]any{
				"id":       map[string]any{"type": "integer", "x-primary-key": true},
				"schema_b": manyToMany("SchemaB", "schema_a_schema_b"),
			},
		}).
		Add("SchemaB", schema.Schema{
			"type":        "object",
			"x-tablename": "schema_b",
			"properties": map[string]any{
				"id": map[string]any{"type": "integer", "x-primary-key": true},
			},
		})
}

func TestPrimaryKeyColumn(t *testing.T) {
	schemas := schema.NewSchemas()
	name, column, err := association.PrimaryKeyColumn(schema.Schema{
		"x-tablename": "user",
		"properties": map[string]any{
			"uid":  map[string]any{"type": "string", "format": "uuid", "maxLength": 36, "x-primary-key": true},
			"name": map[string]any{"type": "string"},
		},
	}, schemas)
	require.NoError(t, err)
	assert.Equal(t, "user_uid", name)
	assert.Equal(t, schema.Schema{
		"type":          "string",
		"format":        "uuid",
		"maxLength":     36,
		"x-primary-key": true,
		"x-foreign-key": "user.uid",
	}, column)

	assert.Panics(t, func() {
		_, _, _ = association.PrimaryKeyColumn(schema.Schema{
			"x-tablename": "user",
			"properties":  map[string]any{"name": map[string]any{"type": "string"}},
		}, schemas)
	})
}

func TestName(t *testing.T) {
	taken := map[string]bool{"SchemaASchemaB": true, "AutogenSchemaASchemaB": true}
	assert.Equal(t, "AutogenAutogenSchemaASchemaB", association.Name("schema_a_schema_b", func(n string) bool { return taken[n] }))
	assert.Equal(t, "UserRole", association.Name("user_role", func(string) bool { return false }))
	assert.Equal(t, "A2B", association.Name("a2b", func(string) bool { return false }))
	assert.Equal(t, "User2Role", association.Name("user2role", func(string) bool { return false }))
	assert.Equal(t, "EmployeeProject", association.Name("EMPLOYEE_project", func(string) bool { return false }))
}

func TestProcess(t *testing.T) {
	schemas := collection()
	require.NoError(t, association.Process(schemas))

	assert.Equal(t, []string{"SchemaA", "SchemaB", "SchemaASchemaB"}, schemas.Names())
	got, _ := schemas.Get("SchemaASchemaB")
	assert.Equal(t, schema.Schema{
		"type":        "object",
		"x-tablename": "schema_a_schema_b",
		"properties": map[string]any{
			"schema_a_id": map[string]any{"type": "integer", "x-primary-key": true, "x-foreign-key": "schema_a.id"},
			"schema_b_id": map[string]any{"type": "integer", "x-primary-key": true, "x-foreign-key": "schema_b.id"},
		},
		"required": []any{"schema_a_id", "schema_b_id"},
	}, got)

	ok, err := iterate.IsModel(got, schemas)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompute(t *testing.T) {
	t.Run("name_collision", func(t *testing.T) {
		schemas := collection().Add("SchemaASchemaB", schema.Schema{"type": "object"})
		associations, err := association.Compute(schemas)
		require.NoError(t, err)
		require.Len(t, associations, 1)
		assert.Equal(t, "AutogenSchemaASchemaB", associations[0].Name)
	})

	t.Run("both_sides_declare_the_relationship", func(t *testing.T) {
		schemas := collection()
		b, _ := schemas.Get("SchemaB")
		b["properties"].(map[string]any)["schema_a"] = manyToMany("SchemaA", "schema_a_schema_b")
		associations, err := association.Compute(schemas)
		require.NoError(t, err)
		assert.Len(t, associations, 1)
	})

	t.Run("table_already_modelled", func(t *testing.T) {
		schemas := collection().Add("Link", schema.Schema{
			"type":        "object",
			"x-tablename": "schema_a_schema_b",
			"properties":  map[string]any{"schema_a_id": map[string]any{"type": "integer"}},
		})
		associations, err := association.Compute(schemas)
		require.NoError(t, err)
		assert.Empty(t, associations)
	})

	t.Run("no_relationships", func(t *testing.T) {
		schemas := schema.NewSchemas().Add("SchemaB", schema.Schema{
			"type":        "object",
			"x-tablename": "schema_b",
			"properties":  map[string]any{"id": map[string]any{"type": "integer"}},
		})
		associations, err := association.Compute(schemas)
		require.NoError(t, err)
		assert.Empty(t, associations)
	})
}
