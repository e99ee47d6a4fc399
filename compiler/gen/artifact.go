package gen

import (
	"github.com/syssam/oaorm/schema/peek"
	"github.com/syssam/oaorm/schema/relationship"
)

// The following types are the artifacts extracted from a processed schema
// collection. They are plain data, serialisable as JSON, YAML and msgpack.
type (
	// Model describes one schema that maps to a table.
	Model struct {
		// Name of the schema in the collection.
		Name      string `json:"name" yaml:"name"`
		Tablename string `json:"tablename" yaml:"tablename"`
		// Inherits is set when the model extends another model, either on the
		// same table (single table inheritance) or on its own table (joined).
		Inherits bool   `json:"inherits,omitempty" yaml:"inherits,omitempty"`
		Parent   string `json:"parent,omitempty" yaml:"parent,omitempty"`
		// Mixins are dotted import paths of classes mixed into the model.
		Mixins          []string         `json:"mixins,omitempty" yaml:"mixins,omitempty"`
		Kwargs          map[string]any   `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`
		CompositeIndex  []peek.IndexDef  `json:"composite_index,omitempty" yaml:"composite_index,omitempty"`
		CompositeUnique []peek.UniqueDef `json:"composite_unique,omitempty" yaml:"composite_unique,omitempty"`
		Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
		Columns         []*Column        `json:"columns" yaml:"columns"`
		Relationships   []*Relationship  `json:"relationships,omitempty" yaml:"relationships,omitempty"`
		ReadOnly        []*ReadOnly      `json:"read_only,omitempty" yaml:"read_only,omitempty"`
		Backrefs        []*Backref       `json:"backrefs,omitempty" yaml:"backrefs,omitempty"`
	}

	// Column describes a property stored in a column of the model table.
	Column struct {
		Name string `json:"name" yaml:"name"`
		// JSON columns store the property value as a JSON document.
		JSON      bool   `json:"json,omitempty" yaml:"json,omitempty"`
		Type      string `json:"type" yaml:"type"`
		Format    string `json:"format,omitempty" yaml:"format,omitempty"`
		MaxLength *int   `json:"max_length,omitempty" yaml:"max_length,omitempty"`
		Nullable  *bool  `json:"nullable,omitempty" yaml:"nullable,omitempty"`
		Default   any    `json:"default,omitempty" yaml:"default,omitempty"`
		Required  bool   `json:"required,omitempty" yaml:"required,omitempty"`

		PrimaryKey       bool           `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
		Autoincrement    *bool          `json:"autoincrement,omitempty" yaml:"autoincrement,omitempty"`
		Index            *bool          `json:"index,omitempty" yaml:"index,omitempty"`
		Unique           *bool          `json:"unique,omitempty" yaml:"unique,omitempty"`
		ForeignKey       string         `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
		ForeignKeyKwargs map[string]any `json:"foreign_key_kwargs,omitempty" yaml:"foreign_key_kwargs,omitempty"`
		Kwargs           map[string]any `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`
		ServerDefault    string         `json:"server_default,omitempty" yaml:"server_default,omitempty"`

		Description string `json:"description,omitempty" yaml:"description,omitempty"`
		ReadOnly    *bool  `json:"read_only,omitempty" yaml:"read_only,omitempty"`
		WriteOnly   *bool  `json:"write_only,omitempty" yaml:"write_only,omitempty"`
		DictIgnore  *bool  `json:"dict_ignore,omitempty" yaml:"dict_ignore,omitempty"`
		// Implicit columns are foreign keys required by a relationship that
		// the schema does not declare.
		Implicit bool `json:"implicit,omitempty" yaml:"implicit,omitempty"`
	}

	// Relationship describes a property that points at another model.
	Relationship struct {
		Name string           `json:"name" yaml:"name"`
		Kind relationship.Rel `json:"kind" yaml:"kind"`
		// Ref is the name of the referenced model.
		Ref string `json:"ref" yaml:"ref"`
		// ForeignKey is the column holding the key, on this model for
		// many-to-one and one-to-one relationships and on Ref for one-to-many.
		// It is empty for many-to-many relationships.
		ForeignKey       string         `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
		ForeignKeyTarget string         `json:"foreign_key_target,omitempty" yaml:"foreign_key_target,omitempty"`
		Backref          string         `json:"backref,omitempty" yaml:"backref,omitempty"`
		Secondary        string         `json:"secondary,omitempty" yaml:"secondary,omitempty"`
		Uselist          *bool          `json:"uselist,omitempty" yaml:"uselist,omitempty"`
		Kwargs           map[string]any `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`
		Nullable         *bool          `json:"nullable,omitempty" yaml:"nullable,omitempty"`
		Required         bool           `json:"required,omitempty" yaml:"required,omitempty"`
		Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
		WriteOnly        *bool          `json:"write_only,omitempty" yaml:"write_only,omitempty"`
	}

	// ReadOnly describes a read only object or array property. It is only
	// part of the dictionary representation of a model.
	ReadOnly struct {
		Name string `json:"name" yaml:"name"`
		// Type is object or array.
		Type        string   `json:"type" yaml:"type"`
		Properties  []string `json:"properties,omitempty" yaml:"properties,omitempty"`
		Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	}

	// Backref describes a property added to the model by a relationship
	// declared on another model.
	Backref struct {
		Name string `json:"name" yaml:"name"`
		// Type is object or array.
		Type string `json:"type" yaml:"type"`
		// Ref is the model declaring the relationship.
		Ref string `json:"ref" yaml:"ref"`
	}
)

// Column returns the column with the given name.
func (m *Model) Column(name string) (*Column, bool) {
	for _, c := range m.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// PrimaryKeys returns the primary key columns of the model.
func (m *Model) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range m.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

// IsNullable reports whether the column accepts null. Columns are nullable
// unless they are required, part of the primary key or explicitly marked
// not nullable.
func (c *Column) IsNullable() bool {
	if c.Nullable != nil {
		return *c.Nullable
	}
	return !c.Required && !c.PrimaryKey
}
