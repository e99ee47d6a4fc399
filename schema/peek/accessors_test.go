package peek_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/peek"
)

func ptr[T any](v T) *T { return &v }

func TestType(t *testing.T) {
	schemas := schema.NewSchemas()

	got, err := peek.Type(schema.Schema{"type": "integer"}, schemas)
	require.NoError(t, err)
	assert.Equal(t, "integer", got)

	_, err = peek.Type(schema.Schema{}, schemas)
	require.Error(t, err)
	assert.True(t, oaorm.IsTypeMissing(err))
	assert.Contains(t, err.Error(), "Every property requires a type.")

	_, err = peek.Type(schema.Schema{"type": 1}, schemas)
	require.Error(t, err)
	assert.True(t, oaorm.IsTypeMissing(err))
	assert.Contains(t, err.Error(), "A type property value must be of type string.")
}

func TestBoolAccessors(t *testing.T) {
	accessors := []struct {
		key string
		get func(schema.Schema, *schema.Schemas) (*bool, error)
		msg string
	}{
		{"nullable", peek.Nullable, "A nullable value must be of type boolean."},
		{"readOnly", peek.ReadOnly, "A readOnly value must be of type boolean."},
		{"writeOnly", peek.WriteOnly, "A writeOnly value must be of type boolean."},
		{"x-primary-key", peek.PrimaryKey, "The x-primary-key property must be of type boolean."},
		{"x-autoincrement", peek.Autoincrement, "The x-autoincrement property must be of type boolean."},
		{"x-index", peek.Index, "The x-index property must be of type boolean."},
		{"x-unique", peek.Unique, "The x-unique property must be of type boolean."},
		{"x-json", peek.JSON, "The x-json property must be of type boolean."},
		{"x-uselist", peek.Uselist, "The x-uselist property must be of type boolean."},
		{"x-dict-ignore", peek.DictIgnore, "The x-dict-ignore property must be of type boolean."},
	}
	schemas := schema.NewSchemas()
	for _, a := range accessors {
		t.Run(a.key, func(t *testing.T) {
			got, err := a.get(schema.Schema{}, schemas)
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = a.get(schema.Schema{a.key: false}, schemas)
			require.NoError(t, err)
			assert.Equal(t, ptr(false), got)

			_, err = a.get(schema.Schema{a.key: "true"}, schemas)
			require.Error(t, err)
			assert.True(t, oaorm.IsMalformedSchema(err))
			assert.Contains(t, err.Error(), a.msg)
		})
	}
}

func TestStringAccessors(t *testing.T) {
	accessors := []struct {
		key string
		get func(schema.Schema, *schema.Schemas) (string, error)
		msg string
	}{
		{"format", peek.Format, "A format value must be of type string."},
		{"description", peek.Description, "A description value must be of type string."},
		{"x-tablename", peek.Tablename, "The x-tablename property must be of type string."},
		{"x-backref", peek.Backref, "The x-backref property must be of type string."},
		{"x-secondary", peek.Secondary, "The x-secondary property must be of type string."},
		{"x-foreign-key", peek.ForeignKey, "The x-foreign-key property must be of type string."},
		{"x-foreign-key-column", peek.ForeignKeyColumn, "The x-foreign-key-column property must be of type string."},
		{"x-server-default", peek.ServerDefault, "The x-server-default property must be of type string."},
		{"x-de-$ref", peek.DeRef, "The x-de-$ref property must be of type string."},
		{"$ref", peek.Ref, "The value of $ref must be a string."},
	}
	schemas := schema.NewSchemas()
	for _, a := range accessors {
		t.Run(a.key, func(t *testing.T) {
			got, err := a.get(schema.Schema{}, schemas)
			require.NoError(t, err)
			assert.Empty(t, got)

			if a.key != "$ref" {
				got, err = a.get(schema.Schema{a.key: "value"}, schemas)
				require.NoError(t, err)
				assert.Equal(t, "value", got)
			}

			_, err = a.get(schema.Schema{a.key: true}, schemas)
			require.Error(t, err)
			assert.Contains(t, err.Error(), a.msg)
		})
	}
}

func TestRef(t *testing.T) {
	sch := schema.Schema{"allOf": []any{
		map[string]any{"x-backref": "b"},
		map[string]any{"$ref": "#/components/schemas/RefSchema"},
	}}
	schemas := schema.NewSchemas().Add("RefSchema", schema.Schema{"type": "object"})
	got, err := peek.Ref(sch, schemas)
	require.NoError(t, err)
	assert.Equal(t, "#/components/schemas/RefSchema", got)
}

func TestMaxLength(t *testing.T) {
	schemas := schema.NewSchemas()
	tests := []struct {
		name    string
		value   any
		want    *int
		wantErr bool
	}{
		{name: "int", value: 10, want: ptr(10)},
		{name: "int64", value: int64(5), want: ptr(5)},
		{name: "integral_float", value: float64(7), want: ptr(7)},
		{name: "fractional_float", value: 1.5, wantErr: true},
		{name: "bool", value: true, wantErr: true},
		{name: "string", value: "1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := peek.MaxLength(schema.Schema{"maxLength": tt.value}, schemas)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "A maxLength value must be of type integer.")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInherits(t *testing.T) {
	schemas := schema.NewSchemas()
	tests := []struct {
		name    string
		sch     schema.Schema
		want    *peek.Inheritance
		wantErr bool
	}{
		{name: "missing", sch: schema.Schema{}},
		{name: "true", sch: schema.Schema{"x-inherits": true}, want: &peek.Inheritance{Enabled: true}},
		{name: "false", sch: schema.Schema{"x-inherits": false}, want: &peek.Inheritance{}},
		{name: "parent", sch: schema.Schema{"x-inherits": "Parent"}, want: &peek.Inheritance{Enabled: true, Parent: "Parent"}},
		{name: "empty_string", sch: schema.Schema{"x-inherits": ""}, wantErr: true},
		{name: "number", sch: schema.Schema{"x-inherits": 1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := peek.Inherits(tt.sch, schemas)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "The x-inherits property must be of type string or boolean.")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestItems(t *testing.T) {
	schemas := schema.NewSchemas()
	got, err := peek.Items(schema.Schema{"items": map[string]any{"type": "object"}}, schemas)
	require.NoError(t, err)
	assert.Equal(t, schema.Schema{"type": "object"}, got)

	got, err = peek.Items(schema.Schema{}, schemas)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = peek.Items(schema.Schema{"items": []any{}}, schemas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The items property must be of type dict.")
}

func TestKwargs(t *testing.T) {
	schemas := schema.NewSchemas()

	got, err := peek.Kwargs(schema.Schema{"x-kwargs": map[string]any{"lazy": "joined"}}, schemas)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"lazy": "joined"}, got)

	got, err = peek.ForeignKeyKwargs(schema.Schema{"x-foreign-key-kwargs": map[any]any{"ondelete": "CASCADE"}}, schemas)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ondelete": "CASCADE"}, got)

	_, err = peek.Kwargs(schema.Schema{"x-kwargs": map[any]any{1: "a"}}, schemas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The x-kwargs property must have string keys.")

	_, err = peek.Kwargs(schema.Schema{"x-kwargs": "lazy"}, schemas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The x-kwargs property must be of type dict.")
}

func TestBackrefs(t *testing.T) {
	schemas := schema.NewSchemas()
	got, err := peek.Backrefs(schema.Schema{"x-backrefs": map[string]any{
		"employees": map[string]any{"type": "array"},
	}}, schemas)
	require.NoError(t, err)
	assert.Equal(t, map[string]schema.Schema{"employees": {"type": "array"}}, got)

	_, err = peek.Backrefs(schema.Schema{"x-backrefs": map[string]any{"employees": 1}}, schemas)
	require.Error(t, err)
}
