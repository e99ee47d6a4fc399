// Package gen extracts model artifacts from OpenAPI schemas and generates
// Go model structs from them.
//
// # Architecture
//
// The pipeline follows this flow:
//
//	components.schemas (compiler/load)
//	        ↓
//	   Process: checks, relationship validation,
//	   back references, association tables
//	        ↓
//	   Extract: []*Model (columns, relationships, backrefs)
//	        ↓
//	   Generator (jennifer) / dialect/sql/schema (DDL)
//
// # Key Types
//
//   - Graph: the processed schemas and their models, with the Config
//   - Model: a schema mapped to a table
//   - Column: a property stored in a column, possibly added implicitly for
//     a foreign key
//   - Relationship: a property pointing at another model
//   - Backref: a property added by a relationship declared elsewhere
//
// # Usage
//
//	g, err := gen.NewGraph(schemas, gen.WithPackage("models"))
//	if err != nil {
//		return err
//	}
//	if err := gen.NewGenerator(g).Generate(ctx); err != nil {
//		return err
//	}
//
// Process and Extract never modify the collection they are given, and
// running them twice on the same input yields identical models.
package gen
