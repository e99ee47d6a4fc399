// Package schema builds SQL tables from extracted models, renders their DDL
// for each dialect and applies it.
//
//	tables, err := schema.NewTables(graph.Models)
//	if err != nil {
//	    return err
//	}
//	if err := schema.Migrate(ctx, drv, tables); err != nil {
//	    return err
//	}
//
// ValidateDiff compares the tables of two versions of a document and reports
// the changes that would break existing data.
package schema
