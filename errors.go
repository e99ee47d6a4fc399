package oaorm

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes raised while resolving schemas.
var (
	// ErrMalformedSchema is returned when a schema or one of its keywords
	// does not have the expected shape.
	ErrMalformedSchema = errors.New("oaorm: malformed schema")

	// ErrSchemaNotFound is returned when a $ref points at a name that is
	// absent from the schema collection.
	ErrSchemaNotFound = errors.New("oaorm: schema not found")

	// ErrTypeMissing is returned when no type can be found anywhere in the
	// resolution chain of a property.
	ErrTypeMissing = errors.New("oaorm: type missing")

	// ErrMalformedExtensionProperty is returned when an extension keyword
	// value fails its own shape rules (for example an invalid mixin path).
	ErrMalformedExtensionProperty = errors.New("oaorm: malformed extension property")

	// ErrBuild is returned when an outer build step fails.
	ErrBuild = errors.New("oaorm: build failed")
)

// MalformedSchemaError reports a structural problem with a schema.
type MalformedSchemaError struct {
	Keyword string // Offending keyword, if known.
	Message string
}

// Error returns the error string.
func (e *MalformedSchemaError) Error() string {
	return "oaorm: malformed schema: " + e.Message
}

// Is reports whether the target error matches MalformedSchemaError.
func (e *MalformedSchemaError) Is(err error) bool {
	return err == ErrMalformedSchema
}

// NewMalformedSchemaError returns a new MalformedSchemaError.
func NewMalformedSchemaError(keyword, message string) *MalformedSchemaError {
	return &MalformedSchemaError{Keyword: keyword, Message: message}
}

// Malformedf returns a MalformedSchemaError with a formatted message.
func Malformedf(keyword, format string, args ...any) *MalformedSchemaError {
	return &MalformedSchemaError{Keyword: keyword, Message: fmt.Sprintf(format, args...)}
}

// IsMalformedSchema returns true if the error is, or wraps, any malformed
// schema failure. TypeMissingError and MalformedExtensionPropertyError
// match as well.
func IsMalformedSchema(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMalformedSchema)
}

// SchemaNotFoundError reports a reference to a schema that does not exist.
type SchemaNotFoundError struct {
	Ref  string
	Name string
}

// Error returns the error string.
func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("oaorm: schema not found: %q referenced by %q", e.Name, e.Ref)
}

// Is reports whether the target error matches SchemaNotFoundError.
func (e *SchemaNotFoundError) Is(err error) bool {
	return err == ErrSchemaNotFound
}

// NewSchemaNotFoundError returns a new SchemaNotFoundError.
func NewSchemaNotFoundError(ref, name string) *SchemaNotFoundError {
	return &SchemaNotFoundError{Ref: ref, Name: name}
}

// IsSchemaNotFound returns true if the error is a SchemaNotFoundError.
func IsSchemaNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaNotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrSchemaNotFound)
}

// TypeMissingError reports a property without a resolvable type.
type TypeMissingError struct {
	Message string
}

// Error returns the error string.
func (e *TypeMissingError) Error() string {
	return "oaorm: type missing: " + e.Message
}

// Is reports whether the target error matches TypeMissingError. A missing
// type is a malformed schema too.
func (e *TypeMissingError) Is(err error) bool {
	return err == ErrTypeMissing || err == ErrMalformedSchema
}

// NewTypeMissingError returns a new TypeMissingError.
func NewTypeMissingError(message string) *TypeMissingError {
	return &TypeMissingError{Message: message}
}

// IsTypeMissing returns true if the error is a TypeMissingError.
func IsTypeMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTypeMissing)
}

// MalformedExtensionPropertyError reports an extension keyword whose value
// is well typed but semantically invalid.
type MalformedExtensionPropertyError struct {
	Keyword string
	Value   any
	Message string
}

// Error returns the error string.
func (e *MalformedExtensionPropertyError) Error() string {
	return "oaorm: malformed extension property: " + e.Message
}

// Is reports whether the target error matches MalformedExtensionPropertyError.
func (e *MalformedExtensionPropertyError) Is(err error) bool {
	return err == ErrMalformedExtensionProperty || err == ErrMalformedSchema
}

// NewMalformedExtensionPropertyError returns a new MalformedExtensionPropertyError.
func NewMalformedExtensionPropertyError(keyword string, value any, message string) *MalformedExtensionPropertyError {
	return &MalformedExtensionPropertyError{Keyword: keyword, Value: value, Message: message}
}

// IsMalformedExtensionProperty returns true if the error is a
// MalformedExtensionPropertyError.
func IsMalformedExtensionProperty(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMalformedExtensionProperty)
}

// BuildError wraps a failure in one of the outer build steps (loading,
// writing artifacts, generating sources).
type BuildError struct {
	Phase string // "load", "process", "write", ...
	Path  string
	Err   error
}

// Error returns the error string.
func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString("oaorm: build failed")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches BuildError.
func (e *BuildError) Is(err error) bool {
	return err == ErrBuild
}

// NewBuildError returns a new BuildError.
func NewBuildError(phase, path string, err error) *BuildError {
	return &BuildError{Phase: phase, Path: path, Err: err}
}

// IsBuildError returns true if the error is a BuildError.
func IsBuildError(err error) bool {
	if err == nil {
		return false
	}
	var e *BuildError
	return errors.As(err, &e)
}

// Describe renders err the way validation results report it: the failure
// class followed by its message, without the package prefix.
func Describe(err error) string {
	var (
		malformed *MalformedSchemaError
		missing   *TypeMissingError
		extension *MalformedExtensionPropertyError
		notFound  *SchemaNotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missing):
		return "malformed schema: " + missing.Message
	case errors.As(err, &extension):
		return "malformed schema: " + extension.Message
	case errors.As(err, &malformed):
		return "malformed schema: " + malformed.Message
	case errors.As(err, &notFound):
		return fmt.Sprintf("reference :: schema %q not found", notFound.Name)
	default:
		return err.Error()
	}
}
