package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/syssam/oaorm/dialect"
)

// Renderer renders the DDL of tables for one dialect.
type Renderer struct {
	dialect     string
	ifNotExists bool
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithIfNotExists guards CREATE statements with IF NOT EXISTS. It is enabled
// by default. MySQL has no guard for CREATE INDEX, so its indexes are always
// rendered unguarded.
func WithIfNotExists(enabled bool) RenderOption {
	return func(r *Renderer) {
		r.ifNotExists = enabled
	}
}

// NewRenderer returns a renderer for the given dialect.
func NewRenderer(name string, opts ...RenderOption) (*Renderer, error) {
	if !dialect.Valid(name) {
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", name)
	}
	r := &Renderer{dialect: name, ifNotExists: true}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Statements returns the CREATE TABLE and CREATE INDEX statements of tables.
// Tables are created after the tables they reference.
func (r *Renderer) Statements(tables []*Table) ([]string, error) {
	sorted, err := Sort(tables)
	if err != nil {
		return nil, err
	}
	var stmts []string
	for _, t := range sorted {
		stmt, err := r.CreateTable(t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		stmts = append(stmts, r.CreateIndexes(t)...)
	}
	return stmts, nil
}

// CreateTable returns the CREATE TABLE statement of t.
func (r *Renderer) CreateTable(t *Table) (string, error) {
	var defs []string
	inlinePK := false
	for _, c := range t.Columns {
		def, err := r.column(c)
		if err != nil {
			return "", fmt.Errorf("dialect/sql/schema: %s.%s: %w", t.Name, c.Name, err)
		}
		if c.Increment && r.dialect == dialect.SQLite {
			inlinePK = true
		}
		defs = append(defs, def)
	}
	if len(t.PrimaryKey) > 0 && !inlinePK {
		defs = append(defs, "PRIMARY KEY ("+r.columns(t.PrimaryKey)+")")
	}
	for _, uq := range t.Uniques {
		defs = append(defs, "CONSTRAINT "+r.quote(uq.Name)+" UNIQUE ("+r.columns(uq.Columns)+")")
	}
	for _, fk := range t.ForeignKeys {
		def := "CONSTRAINT " + r.quote(fk.Symbol) +
			" FOREIGN KEY (" + r.columns(fk.Columns) + ")" +
			" REFERENCES " + r.quote(fk.RefTable.Name) + " (" + r.columns(fk.RefColumns) + ")"
		if fk.OnDelete != "" {
			def += " ON DELETE " + fk.OnDelete
		}
		if fk.OnUpdate != "" {
			def += " ON UPDATE " + fk.OnUpdate
		}
		defs = append(defs, def)
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if r.ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(r.quote(t.Name))
	b.WriteString(" (")
	b.WriteString(strings.Join(defs, ", "))
	b.WriteString(")")
	return b.String(), nil
}

// CreateIndexes returns the CREATE INDEX statements of t.
func (r *Renderer) CreateIndexes(t *Table) []string {
	stmts := make([]string, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		var b strings.Builder
		b.WriteString("CREATE ")
		if idx.Unique {
			b.WriteString("UNIQUE ")
		}
		b.WriteString("INDEX ")
		if r.ifNotExists && r.dialect != dialect.MySQL {
			b.WriteString("IF NOT EXISTS ")
		}
		parts := make([]string, 0, len(idx.Columns)+len(idx.Expressions))
		for _, c := range idx.Columns {
			parts = append(parts, r.quote(c.Name))
		}
		parts = append(parts, idx.Expressions...)
		fmt.Fprintf(&b, "%s ON %s (%s)", r.quote(idx.Name), r.quote(t.Name), strings.Join(parts, ", "))
		stmts = append(stmts, b.String())
	}
	return stmts
}

func (r *Renderer) column(c *Column) (string, error) {
	typ, err := r.sqlType(c)
	if err != nil {
		return "", err
	}
	def := r.quote(c.Name) + " " + typ
	if c.Increment && r.dialect == dialect.SQLite {
		return def + " PRIMARY KEY AUTOINCREMENT", nil
	}
	if !c.Nullable {
		def += " NOT NULL"
	}
	if c.Increment && r.dialect == dialect.MySQL {
		def += " AUTO_INCREMENT"
	}
	if c.Unique {
		def += " UNIQUE"
	}
	if c.Default != nil {
		lit, err := literal(c.Default)
		if err != nil {
			return "", err
		}
		def += " DEFAULT " + lit
	}
	return def, nil
}

func (r *Renderer) sqlType(c *Column) (string, error) {
	if c.JSON {
		if r.dialect == dialect.Postgres {
			return "JSONB", nil
		}
		return "JSON", nil
	}
	switch c.Type {
	case "integer":
		switch {
		case r.dialect == dialect.SQLite:
			return "INTEGER", nil
		case c.Increment && r.dialect == dialect.Postgres && c.Format == "int32":
			return "SERIAL", nil
		case c.Increment && r.dialect == dialect.Postgres:
			return "BIGSERIAL", nil
		case c.Format == "int32":
			return "INTEGER", nil
		}
		return "BIGINT", nil
	case "number":
		switch {
		case r.dialect == dialect.SQLite:
			return "REAL", nil
		case c.Format == "float" && r.dialect == dialect.MySQL:
			return "FLOAT", nil
		case c.Format == "float":
			return "REAL", nil
		case r.dialect == dialect.MySQL:
			return "DOUBLE", nil
		}
		return "DOUBLE PRECISION", nil
	case "boolean":
		return "BOOLEAN", nil
	case "string":
		return r.stringType(c), nil
	}
	return "", fmt.Errorf("no SQL type for %q columns", c.Type)
}

func (r *Renderer) stringType(c *Column) string {
	switch c.Format {
	case "date":
		return "DATE"
	case "date-time":
		if r.dialect == dialect.Postgres {
			return "TIMESTAMP WITH TIME ZONE"
		}
		return "DATETIME"
	case "uuid":
		switch r.dialect {
		case dialect.Postgres:
			return "UUID"
		case dialect.MySQL:
			return "CHAR(36)"
		}
		return "TEXT"
	case "binary", "byte":
		if r.dialect == dialect.Postgres {
			return "BYTEA"
		}
		return "BLOB"
	}
	if c.Size > 0 {
		return "VARCHAR(" + strconv.Itoa(c.Size) + ")"
	}
	return "TEXT"
}

func (r *Renderer) columns(cs []*Column) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = r.quote(c.Name)
	}
	return strings.Join(names, ", ")
}

func (r *Renderer) quote(ident string) string {
	if r.dialect == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func literal(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int64, float64, uint64:
		return fmt.Sprint(v), nil
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return literal(string(data))
	}
	return "", fmt.Errorf("unsupported default value %v (%T)", v, v)
}

// Sort orders tables so that every table comes after the tables it has a
// foreign key to. Tables with no dependency between them keep their order.
// Self references are allowed; any other cycle is an error.
func Sort(tables []*Table) ([]*Table, error) {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		index[t.Name] = i
	}
	var (
		sorted = make([]*Table, 0, len(tables))
		state  = make(map[string]int, len(tables))
		visit  func(t *Table, path []string) error
	)
	const (
		visiting = iota + 1
		done
	)
	visit = func(t *Table, path []string) error {
		switch state[t.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dialect/sql/schema: foreign keys form a cycle: %s", strings.Join(append(path, t.Name), " -> "))
		}
		state[t.Name] = visiting
		refs := t.References()
		sort.SliceStable(refs, func(i, j int) bool { return index[refs[i]] < index[refs[j]] })
		for _, name := range refs {
			i, ok := index[name]
			if !ok {
				continue
			}
			if err := visit(tables[i], append(path, t.Name)); err != nil {
				return err
			}
		}
		state[t.Name] = done
		sorted = append(sorted, t)
		return nil
	}
	for _, t := range tables {
		if err := visit(t, nil); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}
