package oaorm_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/oaorm"
)

func TestMalformedSchemaError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := oaorm.NewMalformedSchemaError("allOf", "The value of allOf must be a list.")
		assert.Equal(t, "oaorm: malformed schema: The value of allOf must be a list.", err.Error())
		assert.Equal(t, "allOf", err.Keyword)
	})

	t.Run("Malformedf", func(t *testing.T) {
		err := oaorm.Malformedf("x-tablename", "The %s property must be of type %s.", "x-tablename", "string")
		assert.Equal(t, "The x-tablename property must be of type string.", err.Message)
	})

	t.Run("IsMalformedSchema", func(t *testing.T) {
		err := oaorm.NewMalformedSchemaError("", "bad")
		assert.True(t, oaorm.IsMalformedSchema(err))
		assert.True(t, oaorm.IsMalformedSchema(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, errors.Is(err, oaorm.ErrMalformedSchema))
		assert.False(t, oaorm.IsMalformedSchema(errors.New("other error")))
		assert.False(t, oaorm.IsMalformedSchema(nil))
	})
}

func TestSchemaNotFoundError(t *testing.T) {
	err := oaorm.NewSchemaNotFoundError("#/components/schemas/Missing", "Missing")
	assert.Equal(t, `oaorm: schema not found: "Missing" referenced by "#/components/schemas/Missing"`, err.Error())
	assert.True(t, errors.Is(err, oaorm.ErrSchemaNotFound))
	assert.True(t, oaorm.IsSchemaNotFound(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, oaorm.IsMalformedSchema(err))
	assert.False(t, oaorm.IsSchemaNotFound(nil))
}

func TestTypeMissingError(t *testing.T) {
	err := oaorm.NewTypeMissingError("Every property requires a type.")
	assert.Equal(t, "oaorm: type missing: Every property requires a type.", err.Error())
	assert.True(t, oaorm.IsTypeMissing(err))
	// A missing type is also a malformed schema.
	assert.True(t, oaorm.IsMalformedSchema(err))
	assert.False(t, oaorm.IsTypeMissing(oaorm.NewMalformedSchemaError("", "x")))
}

func TestMalformedExtensionPropertyError(t *testing.T) {
	err := oaorm.NewMalformedExtensionPropertyError("x-mixins", "invalid", `mixin values must be a valid import path, "invalid" is not`)
	assert.Contains(t, err.Error(), `"invalid" is not`)
	assert.True(t, oaorm.IsMalformedExtensionProperty(err))
	assert.True(t, oaorm.IsMalformedSchema(err))
	assert.False(t, oaorm.IsTypeMissing(err))
	assert.False(t, oaorm.IsMalformedExtensionProperty(nil))
}

func TestBuildError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := oaorm.NewBuildError("write", "out/spec.json", cause)
		assert.Equal(t, "oaorm: build failed in phase write (out/spec.json): permission denied", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := oaorm.NewSchemaNotFoundError("#/components/schemas/A", "A")
		err := oaorm.NewBuildError("process", "", cause)
		assert.True(t, errors.Is(err, oaorm.ErrBuild))
		assert.True(t, oaorm.IsSchemaNotFound(err))
		assert.True(t, oaorm.IsBuildError(fmt.Errorf("wrap: %w", err)))
		assert.Equal(t, "oaorm: build failed in phase process: "+cause.Error(), err.Error())
	})
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"malformed", oaorm.NewMalformedSchemaError("x-tablename", "The x-tablename property must be of type string."), "malformed schema: The x-tablename property must be of type string."},
		{"wrapped type missing", fmt.Errorf("peek: %w", oaorm.NewTypeMissingError("Every property requires a type.")), "malformed schema: Every property requires a type."},
		{"extension", oaorm.NewMalformedExtensionPropertyError("x-mixins", 1, "bad mixin"), "malformed schema: bad mixin"},
		{"not found", oaorm.NewSchemaNotFoundError("#/components/schemas/A", "A"), `reference :: schema "A" not found`},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, oaorm.Describe(tt.err))
		})
	}
}
