package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/oaorm/schema/relationship"
)

// Generator writes the Go model structs of a graph using jennifer.
// Files are streamed to disk, one per model, plus a file listing the
// tables of the graph.
type Generator struct {
	graph   *Graph
	workers int
	outDir  string
	pkg     string
	header  string
}

// NewGenerator creates a generator writing into the target directory of
// the graph configuration.
func NewGenerator(g *Graph) *Generator {
	return &Generator{
		graph:   g,
		workers: g.Workers,
		outDir:  g.Target,
		pkg:     g.Package,
		header:  g.Header,
	}
}

// Generate writes all files in parallel.
func (g *Generator) Generate(ctx context.Context) error {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return &GenerationError{File: g.outDir, Cause: err}
	}
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	for _, m := range g.graph.Models {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := FileName(m)
			if err := g.writeFile(g.ModelFile(m), name); err != nil {
				return &GenerationError{Model: m.Name, File: name, Cause: err}
			}
			return nil
		})
	}
	errg.Go(func() error {
		if err := g.writeFile(g.TablesFile(), "tables.go"); err != nil {
			return &GenerationError{File: "tables.go", Cause: err}
		}
		return nil
	})
	if err := errg.Wait(); err != nil {
		return err
	}
	zap.S().Infow("generated models", "dir", g.outDir, "models", len(g.graph.Models))
	return nil
}

// Source renders every model and the table list as a single Go file.
func (g *Generator) Source() (string, error) {
	f := g.newFile()
	for _, m := range g.graph.Models {
		g.genModel(f, m)
	}
	g.genTables(f)
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", &GenerationError{Cause: err}
	}
	return buf.String(), nil
}

// ModelFile returns the file declaring the struct of m.
func (g *Generator) ModelFile(m *Model) *jen.File {
	f := g.newFile()
	g.genModel(f, m)
	return f
}

// TablesFile returns the file mapping models to their tables.
func (g *Generator) TablesFile() *jen.File {
	f := g.newFile()
	g.genTables(f)
	return f
}

// FileName returns the name of the file generated for m.
func FileName(m *Model) string {
	return inflect.Underscore(m.Name) + ".go"
}

// StructName returns the Go identifier of a schema or property name.
func StructName(name string) string {
	return inflect.Camelize(name)
}

func (g *Generator) writeFile(f *jen.File, filename string) error {
	out, err := os.Create(filepath.Join(g.outDir, filename))
	if err != nil {
		return err
	}
	defer out.Close()
	return f.Render(out)
}

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.pkg)
	if g.header != "" {
		f.HeaderComment(g.header)
	}
	return f
}

func (g *Generator) genModel(f *jen.File, m *Model) {
	name := StructName(m.Name)
	var (
		parent *Model
		fields []jen.Code
	)
	if m.Parent != "" {
		parent, _ = g.graph.Model(m.Parent)
	}
	if parent != nil {
		fields = append(fields, jen.Id(StructName(parent.Name)))
	}
	inherited := func(field string) bool {
		if parent == nil {
			return false
		}
		if _, ok := parent.Column(field); ok {
			return true
		}
		for _, r := range parent.Relationships {
			if r.Name == field {
				return true
			}
		}
		return false
	}
	for _, c := range m.Columns {
		if inherited(c.Name) {
			continue
		}
		s := jen.Id(StructName(c.Name)).Add(columnType(c)).Tag(map[string]string{
			"json": jsonTag(c.Name, c.IsNullable()),
			"db":   c.Name,
		})
		if c.Description != "" {
			s = jen.Comment(c.Description).Line().Add(s)
		}
		fields = append(fields, s)
	}
	for _, r := range m.Relationships {
		if inherited(r.Name) {
			continue
		}
		fields = append(fields, jen.Id(StructName(r.Name)).Add(relationType(r)).Tag(map[string]string{
			"json": jsonTag(r.Name, true),
		}))
	}
	for _, r := range m.ReadOnly {
		typ := jen.Map(jen.String()).Id("any")
		if r.Type == "array" {
			typ = jen.Index().Map(jen.String()).Id("any")
		}
		fields = append(fields, jen.Id(StructName(r.Name)).Add(typ).Tag(map[string]string{
			"json": jsonTag(r.Name, true),
		}))
	}
	for _, b := range m.Backrefs {
		typ := jen.Op("*").Id(StructName(b.Ref))
		if b.Type == "array" {
			typ = jen.Index().Op("*").Id(StructName(b.Ref))
		}
		fields = append(fields, jen.Id(StructName(b.Name)).Add(typ).Tag(map[string]string{
			"json": jsonTag(b.Name, true),
		}))
	}

	if m.Description != "" {
		f.Comment(m.Description)
	} else {
		f.Commentf("%s is the model stored in the %s table.", name, m.Tablename)
	}
	f.Type().Id(name).Struct(fields...)
	f.Line()
	f.Commentf("TableName returns the table storing %s.", name)
	f.Func().Params(jen.Id(name)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(m.Tablename)),
	)
}

func (g *Generator) genTables(f *jen.File) {
	f.Comment("Tables maps each model to its table.")
	f.Var().Id("Tables").Op("=").Map(jen.String()).String().Values(jen.DictFunc(func(d jen.Dict) {
		for _, m := range g.graph.Models {
			d[jen.Lit(StructName(m.Name))] = jen.Lit(m.Tablename)
		}
	}))
}

func jsonTag(name string, omitempty bool) string {
	if omitempty {
		return name + ",omitempty"
	}
	return name
}

// columnType returns the Go type of a column. Nullable scalar columns are
// pointers.
func columnType(c *Column) jen.Code {
	if c.JSON {
		return jen.Qual("encoding/json", "RawMessage")
	}
	nullable := c.IsNullable()
	switch c.Type {
	case "integer":
		if c.Format == "int32" {
			return ident("int32", nullable)
		}
		return ident("int64", nullable)
	case "number":
		if c.Format == "float" {
			return ident("float32", nullable)
		}
		return ident("float64", nullable)
	case "boolean":
		return ident("bool", nullable)
	case "string":
		switch c.Format {
		case "date", "date-time":
			return qual("time", "Time", nullable)
		case "uuid":
			return qual("github.com/google/uuid", "UUID", nullable)
		case "binary", "byte":
			return jen.Index().Byte()
		}
		return ident("string", nullable)
	}
	return jen.Id("any")
}

// ident uses Id("*type") for pointers to builtin types, which keeps struct
// field definitions free of stray whitespace.
func ident(typ string, pointer bool) jen.Code {
	if pointer {
		return jen.Id("*" + typ)
	}
	return jen.Id(typ)
}

func qual(path, name string, pointer bool) jen.Code {
	if pointer {
		return jen.Op("*").Qual(path, name)
	}
	return jen.Qual(path, name)
}

func relationType(r *Relationship) jen.Code {
	switch r.Kind {
	case relationship.O2M, relationship.M2M:
		return jen.Index().Op("*").Id(StructName(r.Ref))
	default:
		return jen.Op("*").Id(StructName(r.Ref))
	}
}
