package peek

import (
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
)

// Type returns the type of sch. Every property must resolve to a type, so
// a missing type is a TypeMissingError.
func Type(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	v, err := Key(sch, schemas, schema.Type)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", oaorm.NewTypeMissingError("Every property requires a type.")
	}
	s, ok := v.(string)
	if !ok {
		return "", oaorm.NewTypeMissingError("A type property value must be of type string.")
	}
	return s, nil
}

// Nullable returns the nullable flag of sch, or nil if undefined.
func Nullable(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.Nullable)
}

// Format returns the format of sch, or "" if undefined.
func Format(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.Format)
}

// MaxLength returns the maxLength of sch, or nil if undefined.
func MaxLength(sch schema.Schema, schemas *schema.Schemas) (*int, error) {
	v, err := Key(sch, schemas, schema.MaxLength)
	if err != nil || v == nil {
		return nil, err
	}
	n, ok := asInt(v)
	if !ok {
		return nil, malformedType(schema.MaxLength, "integer")
	}
	return &n, nil
}

// ReadOnly returns the readOnly flag of sch, or nil if undefined.
func ReadOnly(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.ReadOnly)
}

// WriteOnly returns the writeOnly flag of sch, or nil if undefined.
func WriteOnly(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.WriteOnly)
}

// Description returns the description of sch, or "" if undefined.
func Description(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.Description)
}

// PrimaryKey returns the x-primary-key flag of sch.
func PrimaryKey(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.PrimaryKey)
}

// Autoincrement returns the x-autoincrement flag of sch.
func Autoincrement(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.Autoincrement)
}

// Index returns the x-index flag of sch.
func Index(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.Index)
}

// Unique returns the x-unique flag of sch.
func Unique(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.Unique)
}

// Tablename returns the x-tablename of sch, or "" if undefined.
func Tablename(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.Tablename)
}

// Inheritance is the decoded value of x-inherits.
type Inheritance struct {
	Enabled bool
	// Parent names the schema inherited from when x-inherits is a string.
	Parent string
}

// Inherits returns the x-inherits value of sch, or nil if undefined.
func Inherits(sch schema.Schema, schemas *schema.Schemas) (*Inheritance, error) {
	v, err := Key(sch, schemas, schema.Inherits)
	if err != nil || v == nil {
		return nil, err
	}
	switch v := v.(type) {
	case bool:
		return &Inheritance{Enabled: v}, nil
	case string:
		if v != "" {
			return &Inheritance{Enabled: true, Parent: v}, nil
		}
	}
	return nil, malformedType(schema.Inherits, "string or boolean")
}

// JSON returns the x-json flag of sch.
func JSON(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.JSON)
}

// Backref returns the x-backref of sch, or "" if undefined.
func Backref(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.Backref)
}

// Secondary returns the x-secondary association table of sch.
func Secondary(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.Secondary)
}

// Uselist returns the x-uselist flag of sch.
func Uselist(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.Uselist)
}

// Items returns the items schema of sch, or nil if undefined.
func Items(sch schema.Schema, schemas *schema.Schemas) (schema.Schema, error) {
	v, err := Key(sch, schemas, schema.Items)
	if err != nil || v == nil {
		return nil, err
	}
	items, ok := schema.AsSchema(v)
	if !ok {
		return nil, oaorm.NewMalformedSchemaError(schema.Items, "The items property must be of type dict.")
	}
	return items, nil
}

// Kwargs returns the x-kwargs of sch, or nil if undefined.
func Kwargs(sch schema.Schema, schemas *schema.Schemas) (map[string]any, error) {
	return dictKey(sch, schemas, schema.Kwargs)
}

// ForeignKeyKwargs returns the x-foreign-key-kwargs of sch.
func ForeignKeyKwargs(sch schema.Schema, schemas *schema.Schemas) (map[string]any, error) {
	return dictKey(sch, schemas, schema.ForeignKeyKwargs)
}

// Ref returns the raw $ref value found on sch or its allOf elements.
func Ref(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	v, err := Key(sch, schemas, schema.Ref)
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", oaorm.NewMalformedSchemaError(schema.Ref, "The value of $ref must be a string.")
	}
	return s, nil
}

// ForeignKey returns the x-foreign-key target of sch.
func ForeignKey(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.ForeignKey)
}

// ForeignKeyColumn returns the x-foreign-key-column of sch.
func ForeignKeyColumn(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.ForeignKeyColumn)
}

// ServerDefault returns the x-server-default expression of sch.
func ServerDefault(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.ServerDefault)
}

// DictIgnore returns the x-dict-ignore flag of sch.
func DictIgnore(sch schema.Schema, schemas *schema.Schemas) (*bool, error) {
	return boolKey(sch, schemas, schema.DictIgnore)
}

// DeRef returns the x-de-$ref marker of sch.
func DeRef(sch schema.Schema, schemas *schema.Schemas) (string, error) {
	return stringKey(sch, schemas, schema.DeRef)
}

// Backrefs returns the back-reference properties injected into sch.
func Backrefs(sch schema.Schema, schemas *schema.Schemas) (map[string]schema.Schema, error) {
	raw, err := dictKey(sch, schemas, schema.Backrefs)
	if err != nil || raw == nil {
		return nil, err
	}
	backrefs := make(map[string]schema.Schema, len(raw))
	for name, v := range raw {
		sch, ok := schema.AsSchema(v)
		if !ok {
			return nil, oaorm.Malformedf(schema.Backrefs, "The %s values must be of type dict.", schema.Backrefs)
		}
		backrefs[name] = sch
	}
	return backrefs, nil
}

func boolKey(sch schema.Schema, schemas *schema.Schemas, key string) (*bool, error) {
	v, err := Key(sch, schemas, key)
	if err != nil || v == nil {
		return nil, err
	}
	b, ok := v.(bool)
	if !ok {
		return nil, malformedType(key, "boolean")
	}
	return &b, nil
}

func stringKey(sch schema.Schema, schemas *schema.Schemas, key string) (string, error) {
	v, err := Key(sch, schemas, key)
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", malformedType(key, "string")
	}
	return s, nil
}

func dictKey(sch schema.Schema, schemas *schema.Schemas, key string) (map[string]any, error) {
	v, err := Key(sch, schemas, key)
	if err != nil || v == nil {
		return nil, err
	}
	switch v := v.(type) {
	case map[string]any:
		return v, nil
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, value := range v {
			s, ok := k.(string)
			if !ok {
				return nil, oaorm.Malformedf(key, "The %s property must have string keys.", key)
			}
			m[s] = value
		}
		return m, nil
	}
	return nil, malformedType(key, "dict")
}

// malformedType builds the error for a keyword with a value of the wrong
// primitive type. Extension keywords are described as properties.
func malformedType(key, want string) error {
	if schema.IsExtension(key) {
		return oaorm.Malformedf(key, "The %s property must be of type %s.", key, want)
	}
	return oaorm.Malformedf(key, "A %s value must be of type %s.", key, want)
}

// asInt converts the integer representations produced by the YAML and JSON
// decoders.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// String renders v for error messages.
func String(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
