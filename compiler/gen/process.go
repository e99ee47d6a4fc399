package gen

import (
	"go.uber.org/zap"

	"github.com/syssam/oaorm/schema"
	"github.com/syssam/oaorm/schema/association"
	"github.com/syssam/oaorm/schema/backref"
	"github.com/syssam/oaorm/schema/iterate"
	"github.com/syssam/oaorm/schema/peek"
	"github.com/syssam/oaorm/schema/relationship"
)

// Process validates a schema collection and returns a copy with the back
// references and association tables its relationships imply. The given
// collection is not modified.
//
// Structural errors fail immediately. Relationship problems are collected
// over the whole collection and returned together.
func Process(schemas *schema.Schemas, opts ...Option) (*schema.Schemas, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return process(schemas, cfg)
}

func process(schemas *schema.Schemas, cfg *Config) (*schema.Schemas, error) {
	log := zap.S()
	out := schemas.Clone()
	if err := iterate.CheckOneModel(out); err != nil {
		return nil, err
	}
	if err := checkTypes(out); err != nil {
		return nil, err
	}
	if cfg.Validate {
		result, err := relationship.Validate(out)
		if err != nil {
			return nil, err
		}
		if result.HasErrors() {
			log.Debugw("relationship validation failed", "failures", len(result.Failures))
			return nil, result.Err()
		}
	}

	groups, err := backref.Compute(out)
	if err != nil {
		return nil, err
	}
	backref.Apply(out, groups)

	associations, err := association.Compute(out)
	if err != nil {
		return nil, err
	}
	association.Apply(out, associations)

	log.Debugw("processed schemas",
		"schemas", out.Len(),
		"backref_targets", len(groups),
		"associations", len(associations),
	)
	return out, nil
}

// checkTypes requires every property a model declares to have a type.
func checkTypes(schemas *schema.Schemas) error {
	models, err := iterate.Models(schemas)
	if err != nil {
		return err
	}
	for _, m := range models {
		props, err := iterate.Properties(m.Schema, schemas, iterate.ScopeModel)
		if err != nil {
			return NewSchemaError(m.Name, "", "", err)
		}
		for _, p := range props {
			if _, err := peek.Type(p.Schema, schemas); err != nil {
				return NewSchemaError(m.Name, p.Name, "", err)
			}
		}
	}
	return nil
}
