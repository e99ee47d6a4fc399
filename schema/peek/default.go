package peek

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
)

// Default returns the default literal of sch after checking that it
// conforms to the type, format and maxLength the same schema declares.
func Default(sch schema.Schema, schemas *schema.Schemas) (any, error) {
	value, err := Key(sch, schemas, schema.Default)
	if err != nil || value == nil {
		return nil, err
	}
	typ, err := Type(sch, schemas)
	if err != nil {
		return nil, err
	}
	format, err := Format(sch, schemas)
	if err != nil {
		return nil, err
	}
	maxLength, err := MaxLength(sch, schemas)
	if err != nil {
		return nil, err
	}
	if err := conforms(value, typ, format, maxLength); err != nil {
		return nil, oaorm.Malformedf(schema.Default,
			"The default value does not conform to the schema. The value is: %s", String(value))
	}
	return value, nil
}

// conforms validates value against {type, format, maxLength}.
func conforms(value any, typ, format string, maxLength *int) error {
	doc := map[string]any{schema.Type: typ}
	if maxLength != nil {
		doc[schema.MaxLength] = *maxLength
	}
	resolved, err := compile(doc)
	if err != nil {
		return err
	}
	instance, err := normalize(value)
	if err != nil {
		return err
	}
	if err := resolved.Validate(instance); err != nil {
		return err
	}
	return checkFormat(instance, format)
}

// compile turns a JSON schema document given as a map into a resolved
// validator.
func compile(doc any) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return compileBytes(raw)
}

func compileBytes(raw []byte) (*jsonschema.Resolved, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal into jsonschema.Schema: %w", err)
	}
	return s.Resolve(&jsonschema.ResolveOptions{})
}

// normalize round-trips v through JSON so numbers and maps take the shapes
// the validator expects regardless of which decoder produced them.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var dateTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateTime}

func checkFormat(v any, format string) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch format {
	case "uuid":
		_, err := uuid.Parse(s)
		return err
	case "date":
		_, err := time.Parse(time.DateOnly, s)
		return err
	case "date-time":
		var err error
		for _, layout := range dateTimeLayouts {
			if _, err = time.Parse(layout, s); err == nil {
				return nil
			}
		}
		return err
	}
	return nil
}
