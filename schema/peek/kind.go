package peek

import "github.com/syssam/oaorm/schema"

// PropertyKind classifies how a property is mapped to the database.
type PropertyKind uint8

// Property kinds.
const (
	KindSimple       PropertyKind = iota // scalar column
	KindJSON                             // column stored as JSON
	KindRelationship                     // object or array referencing another model
	KindBackref                          // read-only object or array, never persisted
)

// String returns the kind name.
func (k PropertyKind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindRelationship:
		return "relationship"
	case KindBackref:
		return "backref"
	default:
		return "simple"
	}
}

// KindOf determines the kind of a property schema.
func KindOf(sch schema.Schema, schemas *schema.Schemas) (PropertyKind, error) {
	isJSON, err := JSON(sch, schemas)
	if err != nil {
		return KindSimple, err
	}
	if isJSON != nil && *isJSON {
		return KindJSON, nil
	}
	typ, err := Type(sch, schemas)
	if err != nil {
		return KindSimple, err
	}
	if typ != "object" && typ != "array" {
		return KindSimple, nil
	}
	readOnly, err := ReadOnly(sch, schemas)
	if err != nil {
		return KindSimple, err
	}
	if readOnly != nil && *readOnly {
		return KindBackref, nil
	}
	return KindRelationship, nil
}
