package schema

import (
	"bytes"
	"iter"
	"slices"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"
)

// Schema is a single schema definition as decoded from the document.
type Schema = map[string]any

// Entry is one named schema of a collection.
type Entry struct {
	Name   string
	Schema Schema
}

// Schemas is the collection of named schemas a document defines under
// components.schemas. Iteration follows insertion order, which the loader
// sets to document order.
type Schemas struct {
	names  []string
	byName map[string]Schema
}

// NewSchemas returns an empty collection.
func NewSchemas() *Schemas {
	return &Schemas{byName: make(map[string]Schema)}
}

// FromMap builds a collection from m, ordering entries by name.
func FromMap(m map[string]Schema) *Schemas {
	s := NewSchemas()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Set(name, m[name])
	}
	return s
}

// Add inserts or replaces a schema and returns the collection for chaining.
func (s *Schemas) Add(name string, sch Schema) *Schemas {
	s.Set(name, sch)
	return s
}

// Set inserts a schema under name. Replacing an existing entry keeps its
// position.
func (s *Schemas) Set(name string, sch Schema) {
	if s.byName == nil {
		s.byName = make(map[string]Schema)
	}
	if _, ok := s.byName[name]; !ok {
		s.names = append(s.names, name)
	}
	s.byName[name] = sch
}

// Get returns the schema stored under name.
func (s *Schemas) Get(name string) (Schema, bool) {
	if s == nil {
		return nil, false
	}
	sch, ok := s.byName[name]
	return sch, ok
}

// Has reports whether name exists in the collection.
func (s *Schemas) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Names returns the schema names in iteration order.
func (s *Schemas) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Len returns the number of schemas.
func (s *Schemas) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// All iterates the collection in order.
func (s *Schemas) All() iter.Seq2[string, Schema] {
	return func(yield func(string, Schema) bool) {
		if s == nil {
			return
		}
		for _, name := range s.names {
			if !yield(name, s.byName[name]) {
				return
			}
		}
	}
}

// Entries returns the collection as a slice of entries.
func (s *Schemas) Entries() []Entry {
	entries := make([]Entry, 0, s.Len())
	for name, sch := range s.All() {
		entries = append(entries, Entry{Name: name, Schema: sch})
	}
	return entries
}

// Clone returns a deep copy of the collection. Processing always works on
// a clone so the caller's input is never mutated.
func (s *Schemas) Clone() *Schemas {
	c := NewSchemas()
	for name, sch := range s.All() {
		copied, _ := deepcopy.Copy(sch).(Schema)
		c.Set(name, copied)
	}
	return c
}

// MarshalJSON encodes the collection as a JSON object in iteration order.
func (s *Schemas) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the collection as a mapping node in iteration order.
func (s *Schemas) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for name, sch := range s.All() {
		var value yaml.Node
		if err := value.Encode(sch); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&value,
		)
	}
	return node, nil
}

// AsSchema returns v as a Schema if it is a mapping.
func AsSchema(v any) (Schema, bool) {
	sch, ok := v.(map[string]any)
	return sch, ok
}
