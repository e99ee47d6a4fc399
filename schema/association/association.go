// Package association synthesizes the join table schemas that many-to-many
// relationships require.
package association

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/iterate"
	"github.com/syssam/oaorm/schema/peek"
	"github.com/syssam/oaorm/schema/relationship"
)

// NamePrefix is prepended to a generated schema name until it no longer
// collides with an existing one.
const NamePrefix = "Autogen"

// Association is a synthetic join table schema.
type Association struct {
	Name      string // Schema name in the collection.
	Secondary string // Table name, the x-secondary value.
	Schema    schema.Schema
}

// PrimaryKeyColumn returns the column of an association table referencing
// the model sch. The column is named <tablename>_<primary key> and copies
// type, format and maxLength from the primary key.
//
// It panics unless sch has exactly one primary key, which relationship
// validation guarantees for both sides of a many-to-many relationship.
func PrimaryKeyColumn(sch schema.Schema, schemas *schema.Schemas) (string, schema.Schema, error) {
	keys, err := relationship.PrimaryKeys(sch, schemas)
	if err != nil {
		return "", nil, err
	}
	if len(keys) != 1 {
		panic(fmt.Sprintf("association: expected exactly one primary key, found %d", len(keys)))
	}
	pk := keys[0]
	tablename, err := peek.PreferLocal(peek.Tablename, sch, schemas)
	if err != nil {
		return "", nil, err
	}
	typ, err := peek.Type(pk.Schema, schemas)
	if err != nil {
		return "", nil, err
	}
	column := schema.Schema{
		"type":            typ,
		schema.PrimaryKey: true,
		schema.ForeignKey: tablename + "." + pk.Name,
	}
	format, err := peek.Format(pk.Schema, schemas)
	if err != nil {
		return "", nil, err
	}
	if format != "" {
		column["format"] = format
	}
	maxLength, err := peek.MaxLength(pk.Schema, schemas)
	if err != nil {
		return "", nil, err
	}
	if maxLength != nil {
		column["maxLength"] = *maxLength
	}
	return tablename + "_" + pk.Name, column, nil
}

// CalculateSchema computes the join table of the many-to-many property prop
// declared by parent. The returned name is not yet checked for collisions.
func CalculateSchema(prop, parent schema.Schema, schemas *schema.Schemas) (Association, error) {
	items, err := peek.Items(prop, schemas)
	if err != nil {
		return Association{}, err
	}
	if items == nil {
		panic("association: many-to-many property without items")
	}
	secondary, err := peek.PreferLocal(peek.Secondary, items, schemas)
	if err != nil {
		return Association{}, err
	}
	parentName, parentColumn, err := PrimaryKeyColumn(parent, schemas)
	if err != nil {
		return Association{}, err
	}
	refName, err := relationship.RefName(prop, schemas)
	if err != nil {
		return Association{}, err
	}
	ref, _ := schemas.Get(refName)
	refColumnName, refColumn, err := PrimaryKeyColumn(ref, schemas)
	if err != nil {
		return Association{}, err
	}
	return Association{
		Name:      title(secondary),
		Secondary: secondary,
		Schema: schema.Schema{
			"type":           "object",
			schema.Tablename: secondary,
			"properties": map[string]any{
				parentName:    map[string]any(parentColumn),
				refColumnName: map[string]any(refColumn),
			},
			"required": []any{parentName, refColumnName},
		},
	}, nil
}

// Name returns a schema name derived from the secondary table name that is
// not taken.
func Name(secondary string, taken func(string) bool) string {
	name := title(secondary)
	for taken(name) {
		name = NamePrefix + name
	}
	return name
}

// title turns a snake case table name into a CamelCase schema name. Every
// run of letters is a word, so a letter following a digit starts a new one.
func title(secondary string) string {
	caser := cases.Title(language.Und)
	var sb strings.Builder
	for _, part := range strings.Split(secondary, "_") {
		start := -1
		for i, r := range part {
			switch {
			case unicode.IsLetter(r):
				if start < 0 {
					start = i
				}
			case start >= 0:
				sb.WriteString(caser.String(part[start:i]))
				start = -1
				fallthrough
			default:
				sb.WriteRune(r)
			}
		}
		if start >= 0 {
			sb.WriteString(caser.String(part[start:]))
		}
	}
	return sb.String()
}

// Compute returns the association tables of every many-to-many relationship
// declared by a model, in model order. A secondary table is generated once,
// and not at all when a model of the collection already maps to it.
func Compute(schemas *schema.Schemas) ([]Association, error) {
	models, err := iterate.Models(schemas)
	if err != nil {
		return nil, err
	}
	tables := make(map[string]bool, len(models))
	for _, m := range models {
		tablename, err := peek.PreferLocal(peek.Tablename, m.Schema, schemas)
		if err != nil {
			return nil, err
		}
		tables[tablename] = true
	}
	var (
		out   []Association
		names = make(map[string]bool)
	)
	taken := func(name string) bool { return names[name] || schemas.Has(name) }
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
			rel, err := relationship.Classify(p.Schema, schemas)
			if err != nil {
				return nil, err
			}
			if rel != relationship.M2M {
				continue
			}
			a, err := CalculateSchema(p.Schema, m.Schema, schemas)
			if err != nil {
				return nil, err
			}
			if tables[a.Secondary] {
				continue
			}
			tables[a.Secondary] = true
			a.Name = Name(a.Secondary, taken)
			names[a.Name] = true
			out = append(out, a)
		}
	}
	return out, nil
}

// Apply appends the association schemas to the collection.
func Apply(schemas *schema.Schemas, associations []Association) {
	for _, a := range associations {
		if schemas.Has(a.Name) {
			panic(fmt.Sprintf("association: schema %q already exists", a.Name))
		}
		schemas.Set(a.Name, a.Schema)
	}
}

// Process computes and applies the association tables of schemas.
func Process(schemas *schema.Schemas) error {
	associations, err := Compute(schemas)
	if err != nil {
		return err
	}
	Apply(schemas, associations)
	return nil
}
