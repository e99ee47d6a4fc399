package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/oaorm/compiler/gen"
)

type (
	// Table is a table built from the models mapped to it.
	Table struct {
		Name        string
		Columns     []*Column
		PrimaryKey  []*Column
		ForeignKeys []*ForeignKey
		Indexes     []*Index
		// Uniques are composite unique constraints.
		Uniques []*Index
		// Models are the names of the models stored in the table.
		Models []string
	}

	// Column is a table column. Type and Format are the property type and
	// format; the SQL type is chosen by the renderer.
	Column struct {
		Name     string
		Type     string
		Format   string
		Size     int
		JSON     bool
		Nullable bool
		Unique   bool
		// Increment marks an auto incremented integer primary key.
		Increment bool
		// Default is a server side default literal.
		Default any
	}

	// ForeignKey is a foreign key constraint.
	ForeignKey struct {
		Symbol     string
		Columns    []*Column
		RefTable   *Table
		RefColumns []*Column
		OnDelete   string
		OnUpdate   string
	}

	// Index is an index or a unique constraint. Expressions holds the parts
	// that do not name a column.
	Index struct {
		Name        string
		Unique      bool
		Columns     []*Column
		Expressions []string
	}
)

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// References returns the names of the other tables t has a foreign key to.
func (t *Table) References() []string {
	var refs []string
	seen := map[string]bool{t.Name: true}
	for _, fk := range t.ForeignKeys {
		if !seen[fk.RefTable.Name] {
			seen[fk.RefTable.Name] = true
			refs = append(refs, fk.RefTable.Name)
		}
	}
	return refs
}

// NewTables builds the tables of the given models. Models sharing a table
// name, as single table inheritance does, are merged into one table in model
// order; the columns a later model adds are nullable since rows of the other
// models have no value for them. Foreign keys to tables that no model maps
// to reference a table with no columns, which ValidateSchema reports.
func NewTables(models []*gen.Model) ([]*Table, error) {
	var (
		tables []*Table
		byName = make(map[string]*Table)
		fks    = make(map[*Column]string)
	)
	for _, m := range models {
		if m.Tablename == "" {
			return nil, fmt.Errorf("dialect/sql/schema: model %s has no table name", m.Name)
		}
		t, merged := byName[m.Tablename]
		if !merged {
			t = &Table{Name: m.Tablename}
			byName[t.Name] = t
			tables = append(tables, t)
		}
		t.Models = append(t.Models, m.Name)
		pks := m.PrimaryKeys()
		for _, c := range m.Columns {
			if _, ok := t.Column(c.Name); ok {
				continue
			}
			col := newColumn(c, len(pks))
			if merged {
				col.Nullable = true
			}
			t.Columns = append(t.Columns, col)
			if c.PrimaryKey && !merged {
				t.PrimaryKey = append(t.PrimaryKey, col)
			}
			if c.Index != nil && *c.Index {
				t.Indexes = append(t.Indexes, &Index{
					Name:    indexName("ix", t.Name, c.Name),
					Columns: []*Column{col},
				})
			}
			if c.ForeignKey != "" {
				fks[col] = c.ForeignKey
				t.ForeignKeys = append(t.ForeignKeys, newForeignKey(t.Name, col, c.ForeignKeyKwargs))
			}
		}
		for _, def := range m.CompositeIndex {
			idx := &Index{Name: def.Name, Unique: def.Unique}
			for _, expr := range def.Expressions {
				if col, ok := t.Column(expr); ok {
					idx.Columns = append(idx.Columns, col)
				} else {
					idx.Expressions = append(idx.Expressions, expr)
				}
			}
			if idx.Name == "" {
				idx.Name = indexName("ix", t.Name, def.Expressions...)
			}
			t.Indexes = append(t.Indexes, idx)
		}
		for _, def := range m.CompositeUnique {
			uq := &Index{Name: def.Name, Unique: true}
			for _, name := range def.Columns {
				col, ok := t.Column(name)
				if !ok {
					col = &Column{Name: name}
				}
				uq.Columns = append(uq.Columns, col)
			}
			if uq.Name == "" {
				uq.Name = indexName("uq", t.Name, def.Columns...)
			}
			t.Uniques = append(t.Uniques, uq)
		}
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			table, column, ok := strings.Cut(fks[fk.Columns[0]], ".")
			if !ok {
				return nil, fmt.Errorf("dialect/sql/schema: %s.%s: foreign key %q must be of the form table.column", t.Name, fk.Columns[0].Name, fks[fk.Columns[0]])
			}
			ref, ok := byName[table]
			if !ok {
				ref = &Table{Name: table}
			}
			col, ok := ref.Column(column)
			if !ok {
				col = &Column{Name: column}
			}
			fk.RefTable = ref
			fk.RefColumns = []*Column{col}
		}
	}
	return tables, nil
}

func newColumn(c *gen.Column, pks int) *Column {
	col := &Column{
		Name:     c.Name,
		Type:     c.Type,
		Format:   c.Format,
		JSON:     c.JSON,
		Nullable: c.IsNullable(),
		Unique:   c.Unique != nil && *c.Unique,
	}
	if c.MaxLength != nil {
		col.Size = *c.MaxLength
	}
	if c.ServerDefault != "" {
		col.Default = c.ServerDefault
	}
	// A lone integer primary key is auto incremented unless disabled.
	if c.PrimaryKey && pks == 1 && c.Type == "integer" && !c.JSON && c.ForeignKey == "" {
		col.Increment = c.Autoincrement == nil || *c.Autoincrement
	}
	return col
}

func newForeignKey(table string, col *Column, kwargs map[string]any) *ForeignKey {
	fk := &ForeignKey{
		Symbol:  indexName("fk", table, col.Name),
		Columns: []*Column{col},
	}
	if v, ok := kwargs["ondelete"].(string); ok {
		fk.OnDelete = strings.ToUpper(v)
	}
	if v, ok := kwargs["onupdate"].(string); ok {
		fk.OnUpdate = strings.ToUpper(v)
	}
	if v, ok := kwargs["name"].(string); ok && v != "" {
		fk.Symbol = v
	}
	return fk
}

func indexName(prefix, table string, columns ...string) string {
	return prefix + "_" + table + "_" + strings.Join(columns, "_")
}
