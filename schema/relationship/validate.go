package relationship

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/iterate"
	"github.com/syssam/oaorm/schema/peek"
)

// Result is the outcome of checking a single relationship. Reason is empty
// when Valid is true.
type Result struct {
	Valid  bool
	Reason string
}

func valid() Result { return Result{Valid: true} }

func invalid(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Check validates the foreign key of the relationship property propName
// declared by source.
//
// The referenced column must exist on the targeted model. A foreign key
// column that is already defined on the owning model must agree with it on
// type, format, maxLength and default, and must declare the expected
// x-foreign-key. A column that is not defined is valid since extraction
// adds it.
func Check(schemas *schema.Schemas, source schema.Schema, propName string, prop schema.Schema) Result {
	rel, err := Classify(prop, schemas)
	if err != nil {
		return invalid("%s", oaorm.Describe(err))
	}
	if rel == M2M {
		return checkManyToMany(schemas, source, prop)
	}
	l, err := layout("", source, propName, prop, schemas)
	if err != nil {
		return invalid("%s", oaorm.Describe(err))
	}
	if l.tablename == "" {
		return invalid(noTablename)
	}

	column := l.fk.TargetColumn
	targetProps, err := iterate.Properties(l.target, schemas, iterate.ScopeAll)
	if err != nil {
		return invalid("%s", oaorm.Describe(err))
	}
	if len(targetProps) == 0 {
		return invalid("foreign key targeted schema must have properties")
	}
	columnSchema, ok := find(targetProps, column)
	if !ok {
		return invalid("foreign key targeted schema must have the %s property", column)
	}
	want, err := attributesOf(columnSchema, schemas)
	if err != nil {
		return invalid("malformed foreign key targeted schema for %s property: %s", column, oaorm.Describe(err))
	}

	ownerProps, err := iterate.Properties(l.owner, schemas, iterate.ScopeAll)
	if err != nil {
		return invalid("%s", oaorm.Describe(err))
	}
	fkSchema, ok := find(ownerProps, l.fk.Column)
	if !ok {
		return valid()
	}
	got, err := attributesOf(fkSchema, schemas)
	if err != nil {
		return invalid("%s property: %s", l.fk.Column, oaorm.Describe(err))
	}
	if r := compare(l.fk.Column, want, got); !r.Valid {
		return r
	}
	switch {
	case got.foreignKey == "":
		return invalid("%s must define a foreign key", l.fk.Column)
	case got.foreignKey != l.fk.Reference:
		return invalid("the x-foreign-key of %s is wrong, expected %s, the actual is %s", l.fk.Column, l.fk.Reference, got.foreignKey)
	}
	return valid()
}

// checkManyToMany requires both sides to map to a table with exactly one
// primary key, since the association table references each of them.
func checkManyToMany(schemas *schema.Schemas, source schema.Schema, prop schema.Schema) Result {
	refName, err := RefName(prop, schemas)
	if err != nil {
		return invalid("%s", oaorm.Describe(err))
	}
	ref, _ := schemas.Get(refName)
	for _, side := range []struct {
		name string
		sch  schema.Schema
	}{{"source", source}, {"referenced", ref}} {
		tablename, err := peek.PreferLocal(peek.Tablename, side.sch, schemas)
		if err != nil {
			return invalid("%s", oaorm.Describe(err))
		}
		if tablename == "" {
			return invalid("many-to-many %s schema must have a x-tablename value", side.name)
		}
		keys, err := PrimaryKeys(side.sch, schemas)
		if err != nil {
			return invalid("%s", oaorm.Describe(err))
		}
		if len(keys) != 1 {
			return invalid("many-to-many %s schema must have exactly one primary key, found %d", side.name, len(keys))
		}
	}
	return valid()
}

// PrimaryKeys returns the properties of the table of sch flagged with
// x-primary-key.
func PrimaryKeys(sch schema.Schema, schemas *schema.Schemas) ([]iterate.Property, error) {
	props, err := iterate.Properties(sch, schemas, iterate.ScopeTablename)
	if err != nil {
		return nil, err
	}
	var keys []iterate.Property
	for _, p := range props {
		pk, err := peek.PrimaryKey(p.Schema, schemas)
		if err != nil {
			return nil, err
		}
		if pk != nil && *pk {
			keys = append(keys, p)
		}
	}
	return keys, nil
}

func find(props []iterate.Property, name string) (schema.Schema, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// attributes are the column attributes a foreign key must share with the
// column it references.
type attributes struct {
	typ        string
	format     string
	maxLength  *int
	def        any
	foreignKey string
}

func attributesOf(sch schema.Schema, schemas *schema.Schemas) (attributes, error) {
	var (
		a   attributes
		err error
	)
	if a.typ, err = peek.Type(sch, schemas); err != nil {
		return a, err
	}
	if a.format, err = peek.Format(sch, schemas); err != nil {
		return a, err
	}
	if a.maxLength, err = peek.MaxLength(sch, schemas); err != nil {
		return a, err
	}
	if a.def, err = peek.Default(sch, schemas); err != nil {
		return a, err
	}
	if a.foreignKey, err = peek.ForeignKey(sch, schemas); err != nil {
		return a, err
	}
	return a, nil
}

func compare(column string, want, got attributes) Result {
	checks := []struct {
		name      string
		want, got any
	}{
		{"type", optional(want.typ), optional(got.typ)},
		{"format", optional(want.format), optional(got.format)},
		{"maxLength", optional(want.maxLength), optional(got.maxLength)},
		{"default", want.def, got.def},
	}
	for _, c := range checks {
		if reflect.DeepEqual(c.want, c.got) {
			continue
		}
		expected, actual := "not to be defined", "not defined"
		if c.want != nil {
			expected = fmt.Sprint(c.want)
		}
		if c.got != nil {
			actual = fmt.Sprint(c.got)
		}
		return invalid("the %s of %s is wrong, expected %s, actual is %s.", c.name, column, expected, actual)
	}
	return valid()
}

// optional maps absent attributes to nil.
func optional[T string | *int](v T) any {
	switch v := any(v).(type) {
	case string:
		if v == "" {
			return nil
		}
		return v
	case *int:
		if v == nil {
			return nil
		}
		return *v
	}
	return nil
}

// Failure is a relationship that did not validate.
type Failure struct {
	Schema   string
	Property string
	Reason   string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s.%s: %s", f.Schema, f.Property, f.Reason)
}

// ValidationResult holds every relationship failure of a schema collection.
type ValidationResult struct {
	Failures []*Failure
}

// HasErrors returns true if any relationship failed to validate.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Failures) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	if !r.HasErrors() {
		return "No issues found"
	}
	var sb strings.Builder
	sb.WriteString("Errors:\n")
	for _, f := range r.Failures {
		sb.WriteString("  - ")
		sb.WriteString(f.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Err joins the failures into a single malformed schema error, or returns
// nil when there are none.
func (r *ValidationResult) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, oaorm.Malformedf("", "%s", f.Error()))
	}
	return errors.Join(errs...)
}

// Validate checks every relationship property declared by the models of
// schemas. Structural errors met while walking the models are returned as
// errors; relationship problems are collected in the result.
func Validate(schemas *schema.Schemas) (*ValidationResult, error) {
	models, err := iterate.Models(schemas)
	if err != nil {
		return nil, err
	}
	result := &ValidationResult{}
	for _, m := range models {
		props, err := iterate.Properties(m.Schema, schemas, iterate.ScopeModel)
		if err != nil {
			return nil, err
		}
		for _, p := range props {
			kind, err := peek.KindOf(p.Schema, schemas)
			if err != nil {
				return nil, err
			}
			if kind != peek.KindRelationship {
				continue
			}
			if r := Check(schemas, m.Schema, p.Name, p.Schema); !r.Valid {
				result.Failures = append(result.Failures, &Failure{Schema: m.Name, Property: p.Name, Reason: r.Reason})
			}
		}
	}
	return result, nil
}
