package schema

import "github.com/syssam/oaorm"

// Visited is the set of schema names on the current resolution path. Each
// public entry point starts with a fresh set and threads it through its
// recursive calls. A name reached again on a sibling branch, such as two
// allOf elements referencing the same schema, is not a cycle.
type Visited map[string]struct{}

// NewVisited returns an empty set.
func NewVisited() Visited {
	return make(Visited)
}

// Enter marks name as being resolved. It fails when name is already on the
// path, which means the references form a cycle. The returned func removes
// name again once the caller has finished with it.
func (v Visited) Enter(name string) (func(), error) {
	if _, ok := v[name]; ok {
		return nil, oaorm.NewMalformedSchemaError(Ref, "Circular reference detected.")
	}
	v[name] = struct{}{}
	return func() { delete(v, name) }, nil
}
