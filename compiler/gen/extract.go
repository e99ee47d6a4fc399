package gen

import (
	"sort"

	"github.com/syssam/oaorm"
	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/iterate"
	"github.com/syssam/oaorm/schema/peek"
	"github.com/syssam/oaorm/schema/relationship"
)

// Extract returns the artifacts of every model of a processed collection,
// in collection order. Foreign key columns that relationships require but
// the schemas do not declare are added to the model owning them.
func Extract(schemas *schema.Schemas) ([]*Model, error) {
	entries, err := iterate.Models(schemas)
	if err != nil {
		return nil, err
	}
	implicit, err := implicitColumns(entries, schemas)
	if err != nil {
		return nil, err
	}
	models := make([]*Model, 0, len(entries))
	for _, e := range entries {
		m, err := extractModel(e, schemas)
		if err != nil {
			return nil, err
		}
		for _, c := range implicit[e.Name] {
			if _, ok := m.Column(c.Name); !ok {
				m.Columns = append(m.Columns, c)
			}
		}
		models = append(models, m)
	}
	return models, nil
}

// peeker reads values off a single schema, preferring local layers, and
// keeps the first error so a run of reads can be checked once.
type peeker struct {
	sch     schema.Schema
	schemas *schema.Schemas
	err     error
}

func local[T any](p *peeker, get func(schema.Schema, *schema.Schemas) (T, error)) T {
	var zero T
	if p.err != nil {
		return zero
	}
	v, err := peek.PreferLocal(get, p.sch, p.schemas)
	if err != nil {
		p.err = err
		return zero
	}
	return v
}

func isTrue(b *bool) bool { return b != nil && *b }

func extractModel(e schema.Entry, schemas *schema.Schemas) (*Model, error) {
	p := &peeker{sch: e.Schema, schemas: schemas}
	m := &Model{
		Name:            e.Name,
		Tablename:       local(p, peek.Tablename),
		Mixins:          local(p, peek.Mixins),
		Kwargs:          local(p, peek.Kwargs),
		CompositeIndex:  local(p, peek.CompositeIndex),
		CompositeUnique: local(p, peek.CompositeUnique),
		Description:     local(p, peek.Description),
	}
	inherits := local(p, peek.Inherits)
	if p.err != nil {
		return nil, NewSchemaError(e.Name, "", "", p.err)
	}
	if inherits != nil && inherits.Enabled {
		parent, err := parentOf(e.Schema, inherits.Parent, schemas)
		if err != nil {
			return nil, NewSchemaError(e.Name, "", "", err)
		}
		m.Inherits, m.Parent = true, parent
	}

	props, err := iterate.Properties(e.Schema, schemas, iterate.ScopeTablename)
	if err != nil {
		return nil, NewSchemaError(e.Name, "", "", err)
	}
	required, err := iterate.Required(e.Schema, schemas, iterate.ScopeAll)
	if err != nil {
		return nil, NewSchemaError(e.Name, "", "", err)
	}
	for _, prop := range props {
		kind, err := peek.KindOf(prop.Schema, schemas)
		if err != nil {
			return nil, NewSchemaError(e.Name, prop.Name, "", err)
		}
		switch kind {
		case peek.KindSimple, peek.KindJSON:
			c, err := extractColumn(prop, required[prop.Name], kind == peek.KindJSON, schemas)
			if err != nil {
				return nil, NewSchemaError(e.Name, prop.Name, "", err)
			}
			m.Columns = append(m.Columns, c)
		case peek.KindRelationship:
			r, err := extractRelationship(e, prop, required[prop.Name], schemas)
			if err != nil {
				return nil, NewSchemaError(e.Name, prop.Name, "", err)
			}
			m.Relationships = append(m.Relationships, r)
		case peek.KindBackref:
			r, err := extractReadOnly(prop, schemas)
			if err != nil {
				return nil, NewSchemaError(e.Name, prop.Name, "", err)
			}
			m.ReadOnly = append(m.ReadOnly, r)
		}
	}
	if m.Backrefs, err = extractBackrefs(e.Schema, schemas); err != nil {
		return nil, NewSchemaError(e.Name, "", "", err)
	}
	return m, nil
}

// flatten merges the $ref and allOf layers of a property into one schema.
func flatten(sch schema.Schema, schemas *schema.Schemas) (schema.Schema, error) {
	return schema.MergeAllOf(schema.Schema{schema.AllOf: []any{map[string]any(sch)}}, schemas)
}

func extractColumn(prop iterate.Property, required, isJSON bool, schemas *schema.Schemas) (*Column, error) {
	flat, err := flatten(prop.Schema, schemas)
	if err != nil {
		return nil, err
	}
	p := &peeker{sch: flat, schemas: schemas}
	c := &Column{
		Name:             prop.Name,
		JSON:             isJSON,
		Type:             local(p, peek.Type),
		Format:           local(p, peek.Format),
		MaxLength:        local(p, peek.MaxLength),
		Nullable:         local(p, peek.Nullable),
		Default:          local(p, peek.Default),
		Required:         required,
		PrimaryKey:       isTrue(local(p, peek.PrimaryKey)),
		Autoincrement:    local(p, peek.Autoincrement),
		Index:            local(p, peek.Index),
		Unique:           local(p, peek.Unique),
		ForeignKey:       local(p, peek.ForeignKey),
		ForeignKeyKwargs: local(p, peek.ForeignKeyKwargs),
		Kwargs:           local(p, peek.Kwargs),
		ServerDefault:    local(p, peek.ServerDefault),
		Description:      local(p, peek.Description),
		ReadOnly:         local(p, peek.ReadOnly),
		WriteOnly:        local(p, peek.WriteOnly),
		DictIgnore:       local(p, peek.DictIgnore),
	}
	return c, p.err
}

func extractRelationship(e schema.Entry, prop iterate.Property, required bool, schemas *schema.Schemas) (*Relationship, error) {
	kind, err := relationship.Classify(prop.Schema, schemas)
	if err != nil {
		return nil, err
	}
	ref, err := relationship.RefName(prop.Schema, schemas)
	if err != nil {
		return nil, err
	}
	p := &peeker{sch: prop.Schema, schemas: schemas}
	own := &peeker{sch: localView(prop.Schema), schemas: schemas}
	r := &Relationship{
		Name:        prop.Name,
		Kind:        kind,
		Ref:         ref,
		Required:    required,
		Uselist:     local(p, peek.Uselist),
		Nullable:    local(p, peek.Nullable),
		Description: local(own, peek.Description),
		WriteOnly:   local(p, peek.WriteOnly),
	}
	if own.err != nil {
		return nil, own.err
	}
	if kind == relationship.O2M || kind == relationship.M2M {
		items := local(p, peek.Items)
		if p.err == nil {
			p = &peeker{sch: items, schemas: schemas}
		}
	}
	r.Backref = local(p, peek.Backref)
	if kind == relationship.M2M {
		r.Secondary = local(p, peek.Secondary)
	}
	if p.err != nil {
		return nil, p.err
	}
	own = &peeker{sch: localView(p.sch), schemas: schemas}
	r.Kwargs = local(own, peek.Kwargs)
	if own.err != nil {
		return nil, own.err
	}
	fk, err := relationship.ForeignKeyFor(e.Name, e.Schema, prop.Name, prop.Schema, schemas)
	if err != nil {
		return nil, err
	}
	if fk != nil {
		r.ForeignKey, r.ForeignKeyTarget = fk.Column, fk.Reference
	}
	return r, nil
}

// localView drops the $ref layers of a relationship property, so reads
// stop short of the referenced model.
func localView(sch schema.Schema) schema.Schema {
	if _, ok := sch[schema.Ref]; ok {
		return schema.Schema{}
	}
	elements, ok := sch[schema.AllOf].([]any)
	if !ok {
		return sch
	}
	view := make(schema.Schema, len(sch))
	for k, v := range sch {
		view[k] = v
	}
	kept := make([]any, 0, len(elements))
	for _, element := range elements {
		sub, ok := schema.AsSchema(element)
		if !ok {
			continue
		}
		if _, isRef := sub[schema.Ref]; !isRef {
			kept = append(kept, map[string]any(localView(sub)))
		}
	}
	view[schema.AllOf] = kept
	return view
}

func extractReadOnly(prop iterate.Property, schemas *schema.Schemas) (*ReadOnly, error) {
	p := &peeker{sch: prop.Schema, schemas: schemas}
	r := &ReadOnly{
		Name:        prop.Name,
		Type:        local(p, peek.Type),
		Description: local(p, peek.Description),
	}
	object := prop.Schema
	if r.Type == "array" {
		object = local(p, peek.Items)
	}
	if p.err != nil {
		return nil, p.err
	}
	if object == nil {
		return r, nil
	}
	props, err := iterate.Properties(object, schemas, iterate.ScopeAll)
	if err != nil {
		return nil, err
	}
	for _, sub := range props {
		r.Properties = append(r.Properties, sub.Name)
	}
	return r, nil
}

// extractBackrefs returns the back references injected into the local
// layers of sch, sorted by name. Back references of a model reached through
// $ref belong to that model.
func extractBackrefs(sch schema.Schema, schemas *schema.Schemas) ([]*Backref, error) {
	found := make(map[string]schema.Schema)
	if err := localBackrefs(sch, found); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)
	backrefs := make([]*Backref, 0, len(names))
	for _, name := range names {
		sch := found[name]
		b := &Backref{Name: name, Type: "object"}
		if items, err := peek.Items(sch, schemas); err != nil {
			return nil, err
		} else if items != nil {
			b.Type, sch = "array", items
		}
		ref, err := peek.DeRef(sch, schemas)
		if err != nil {
			return nil, err
		}
		b.Ref = ref
		backrefs = append(backrefs, b)
	}
	return backrefs, nil
}

func localBackrefs(sch schema.Schema, found map[string]schema.Schema) error {
	if _, ok := sch[schema.Ref]; ok {
		return nil
	}
	if _, ok := schema.Lookup(sch, schema.Backrefs); ok {
		backrefs, err := peek.Backrefs(sch, nil)
		if err != nil {
			return err
		}
		for name, b := range backrefs {
			found[name] = b
		}
	}
	raw, ok := sch[schema.AllOf]
	if !ok {
		return nil
	}
	elements, ok := raw.([]any)
	if !ok {
		return oaorm.NewMalformedSchemaError(schema.AllOf, "The value of allOf must be a list.")
	}
	for _, element := range elements {
		sub, ok := schema.AsSchema(element)
		if !ok {
			return oaorm.NewMalformedSchemaError(schema.AllOf, "The elements of allOf must be dictionaries.")
		}
		if err := localBackrefs(sub, found); err != nil {
			return err
		}
	}
	return nil
}

// parentOf returns the model a schema inherits from. An explicit name must
// be a model of the collection. Otherwise the parent is the first model
// reached through a $ref of sch or of its allOf elements.
func parentOf(sch schema.Schema, name string, schemas *schema.Schemas) (string, error) {
	if name != "" {
		parent, ok := schemas.Get(name)
		if !ok {
			return "", oaorm.NewSchemaNotFoundError(schema.RefTo(name), name)
		}
		isModel, err := iterate.IsModel(parent, schemas)
		if err != nil {
			return "", err
		}
		if !isModel {
			return "", oaorm.Malformedf(schema.Inherits, "The x-inherits value must name a model, %s is not.", name)
		}
		return name, nil
	}
	parent, err := firstModelRef(sch, schemas, schema.NewVisited())
	if err != nil {
		return "", err
	}
	if parent == "" {
		return "", oaorm.NewMalformedSchemaError(schema.Inherits, "A schema that inherits must reference the model it inherits from.")
	}
	return parent, nil
}

func firstModelRef(sch schema.Schema, schemas *schema.Schemas, visited schema.Visited) (string, error) {
	if ref, ok := sch[schema.Ref]; ok {
		name, target, err := schema.GetRef(ref, schemas)
		if err != nil {
			return "", err
		}
		leave, err := visited.Enter(name)
		if err != nil {
			return "", err
		}
		defer leave()
		isModel, err := iterate.IsModel(target, schemas)
		if err != nil || isModel {
			return name, err
		}
		return firstModelRef(target, schemas, visited)
	}
	raw, ok := sch[schema.AllOf]
	if !ok {
		return "", nil
	}
	elements, _ := raw.([]any)
	for _, element := range elements {
		sub, ok := schema.AsSchema(element)
		if !ok {
			continue
		}
		name, err := firstModelRef(sub, schemas, visited)
		if err != nil || name != "" {
			return name, err
		}
	}
	return "", nil
}

// implicitColumns computes the foreign key columns of every non
// many-to-many relationship, keyed by the model owning the column.
func implicitColumns(entries []schema.Entry, schemas *schema.Schemas) (map[string][]*Column, error) {
	columns := make(map[string][]*Column)
	seen := make(map[string]bool)
	for _, e := range entries {
		props, err := iterate.Properties(e.Schema, schemas, iterate.ScopeModel)
		if err != nil {
			return nil, NewSchemaError(e.Name, "", "", err)
		}
		for _, prop := range props {
			kind, err := peek.KindOf(prop.Schema, schemas)
			if err != nil {
				return nil, NewSchemaError(e.Name, prop.Name, "", err)
			}
			if kind != peek.KindRelationship {
				continue
			}
			fk, err := relationship.ForeignKeyFor(e.Name, e.Schema, prop.Name, prop.Schema, schemas)
			if err != nil {
				return nil, NewSchemaError(e.Name, prop.Name, "", err)
			}
			if fk == nil || seen[fk.Owner+"."+fk.Column] {
				continue
			}
			c, err := foreignKeyColumn(fk, prop.Schema, schemas)
			if err != nil {
				return nil, NewSchemaError(e.Name, prop.Name, "", err)
			}
			seen[fk.Owner+"."+fk.Column] = true
			columns[fk.Owner] = append(columns[fk.Owner], c)
		}
	}
	return columns, nil
}

// foreignKeyColumn builds the column of fk, typed like the column it
// references.
func foreignKeyColumn(fk *relationship.ForeignKey, prop schema.Schema, schemas *schema.Schemas) (*Column, error) {
	target, _ := schemas.Get(fk.Target)
	props, err := iterate.Properties(target, schemas, iterate.ScopeAll)
	if err != nil {
		return nil, err
	}
	var referenced schema.Schema
	for _, p := range props {
		if p.Name == fk.TargetColumn {
			referenced = p.Schema
			break
		}
	}
	if referenced == nil {
		return nil, oaorm.Malformedf(schema.ForeignKeyColumn, "foreign key targeted schema must have the %s property", fk.TargetColumn)
	}
	flat, err := flatten(referenced, schemas)
	if err != nil {
		return nil, err
	}
	p := &peeker{sch: flat, schemas: schemas}
	c := &Column{
		Name:       fk.Column,
		Type:       local(p, peek.Type),
		Format:     local(p, peek.Format),
		MaxLength:  local(p, peek.MaxLength),
		ForeignKey: fk.Reference,
		Implicit:   true,
	}
	if p.err != nil {
		return nil, p.err
	}
	p = &peeker{sch: prop, schemas: schemas}
	c.Nullable = local(p, peek.Nullable)
	c.ForeignKeyKwargs = local(p, peek.ForeignKeyKwargs)
	return c, p.err
}
