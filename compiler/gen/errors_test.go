package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewSchemaError("Employee", "division", "invalid reference", cause)

		assert.Equal(t, "oaorm: schema error on model Employee property division: invalid reference: underlying error", err.Error())
	})

	t.Run("Error message with model only", func(t *testing.T) {
		err := &SchemaError{Model: "Employee"}
		assert.Equal(t, "oaorm: schema error on model Employee", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSchemaError("Employee", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Is matches ErrInvalidSchema", func(t *testing.T) {
		err := NewSchemaError("Employee", "", "", nil)
		assert.ErrorIs(t, err, ErrInvalidSchema)
		assert.NotErrorIs(t, err, ErrMissingConfig)
	})
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("Workers", 0, "workers must be positive")
	assert.Equal(t, `oaorm: config error for "Workers" (value: 0): workers must be positive`, err.Error())
	assert.ErrorIs(t, err, ErrMissingConfig)

	err = NewConfigError("Target", nil, "target directory cannot be empty")
	assert.Equal(t, `oaorm: config error for "Target": target directory cannot be empty`, err.Error())
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("disk full")
	err := &GenerationError{Model: "Employee", File: "employee.go", Cause: cause}

	assert.Equal(t, "oaorm: generation error for model Employee (file: employee.go): disk full", err.Error())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, cause)
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("building: %w", NewSchemaError("Employee", "", "", nil))
	require.Error(t, wrapped)
	assert.True(t, IsSchemaError(wrapped))
	assert.False(t, IsConfigError(wrapped))
	assert.False(t, IsGenerationError(wrapped))

	assert.True(t, IsConfigError(NewConfigError("Package", "", "")))
	assert.True(t, IsGenerationError(&GenerationError{}))
	assert.False(t, IsSchemaError(errors.New("plain")))
}
