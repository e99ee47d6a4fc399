package schema

import (
	"strings"

	"github.com/syssam/oaorm"
)

// RefName extracts the schema name from a $ref value. Only local pointers of
// the form #/components/schemas/<Name> are supported.
func RefName(ref any) (string, error) {
	s, ok := ref.(string)
	if !ok {
		return "", oaorm.NewMalformedSchemaError(Ref, "The value of $ref must be a string.")
	}
	name, ok := strings.CutPrefix(s, ComponentsPointer)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", oaorm.Malformedf(Ref, "The value of $ref must be of the form %s<name>, got %q.", ComponentsPointer, s)
	}
	return name, nil
}

// RefTo returns the $ref value pointing at name.
func RefTo(name string) string {
	return ComponentsPointer + name
}

// GetRef returns the name and schema a $ref value points at.
func GetRef(ref any, schemas *Schemas) (string, Schema, error) {
	name, err := RefName(ref)
	if err != nil {
		return "", nil, err
	}
	sch, ok := schemas.Get(name)
	if !ok {
		return "", nil, oaorm.NewSchemaNotFoundError(ref.(string), name)
	}
	if sch == nil {
		return "", nil, oaorm.NewMalformedSchemaError("", "The schema must be a dictionary.")
	}
	return name, sch, nil
}

// Resolve follows the top level $ref chain starting at sch until it reaches
// a schema without a $ref, and returns that schema and its name. A schema
// without a $ref resolves to itself.
func Resolve(name string, sch Schema, schemas *Schemas) (string, Schema, error) {
	return resolve(name, sch, schemas, NewVisited())
}

func resolve(name string, sch Schema, schemas *Schemas, visited Visited) (string, Schema, error) {
	ref, ok := sch[Ref]
	if !ok {
		return name, sch, nil
	}
	refName, target, err := GetRef(ref, schemas)
	if err != nil {
		return "", nil, err
	}
	leave, err := visited.Enter(refName)
	if err != nil {
		return "", nil, err
	}
	defer leave()
	return resolve(refName, target, schemas, visited)
}
