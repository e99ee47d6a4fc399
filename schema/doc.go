// Package schema provides the building blocks for resolving OpenAPI
// component schemas into relational models.
//
// It defines the [Schema] and [Schemas] types and the foundational services
// every other resolver package is built on:
//
//   - [GetRef] and [Resolve]: $ref resolution against the collection
//   - [MergeAllOf]: allOf flattening with required union semantics
//   - [Visited]: the per-call cycle detection set
//   - [Aliases]: extension keyword spellings
//
// Subpackages build on top of these:
//
//   - [peek]: effective value lookup through $ref and allOf layers
//   - [iterate]: model and property iteration
//   - [relationship]: relationship classification and foreign key checks
//   - [backref]: back-reference synthesis
//   - [association]: many-to-many association table synthesis
//
// # Quick Start
//
// A collection is usually produced by compiler/load, but can be built by hand:
//
//	schemas := schema.NewSchemas().
//	    Add("Division", schema.Schema{
//	        "type":        "object",
//	        "x-tablename": "division",
//	        "properties": map[string]any{
//	            "id": map[string]any{"type": "integer", "x-primary-key": true},
//	        },
//	    }).
//	    Add("Employee", schema.Schema{
//	        "allOf": []any{
//	            map[string]any{"$ref": "#/components/schemas/Person"},
//	            map[string]any{"x-tablename": "employee"},
//	        },
//	    })
//
//	merged, err := schema.MergeAllOf(employee, schemas)
//
// # Extension Keywords
//
// Extension keywords are accepted with the short x- prefix, the namespaced
// x-oaorm- prefix and the x-open-alchemy- prefix. The first spelling with a
// non null value wins, in that order:
//
//	x-tablename          x-oaorm-tablename      x-open-alchemy-tablename
//	x-primary-key        x-oaorm-primary-key    x-open-alchemy-primary-key
//	x-backref            x-oaorm-backref        x-open-alchemy-backref
//
// # Errors
//
// All failures are typed errors from the root package: malformed shapes
// return *oaorm.MalformedSchemaError and dangling references return
// *oaorm.SchemaNotFoundError.
package schema
