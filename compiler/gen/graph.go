package gen

import (
	"go.uber.org/zap"

	"github.com/syssam/oaorm/schema"
)

// Graph holds the processed schemas and the models extracted from them.
type Graph struct {
	*Config
	// Schemas is the processed collection, including back references and
	// association tables.
	Schemas *schema.Schemas
	// Models are the extracted models, in collection order.
	Models []*Model
}

// NewGraph processes schemas and extracts their models.
func NewGraph(schemas *schema.Schemas, opts ...Option) (*Graph, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	processed, err := process(schemas, cfg)
	if err != nil {
		return nil, err
	}
	models, err := Extract(processed)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("extracted models", "models", len(models))
	return &Graph{Config: cfg, Schemas: processed, Models: models}, nil
}

// Model returns the model with the given schema name.
func (g *Graph) Model(name string) (*Model, bool) {
	for _, m := range g.Models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Tables returns the distinct table names of the graph in model order.
// Models sharing a table through single table inheritance count once.
func (g *Graph) Tables() []string {
	seen := make(map[string]bool, len(g.Models))
	tables := make([]string, 0, len(g.Models))
	for _, m := range g.Models {
		if !seen[m.Tablename] {
			seen[m.Tablename] = true
			tables = append(tables, m.Tablename)
		}
	}
	return tables
}
