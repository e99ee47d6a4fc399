// Package dialect names the SQL dialects the DDL renderer supports and
// defines the driver interfaces migrations run through.
//
// The dialects are:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// A Driver executes statements and starts transactions:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// dialect/sql implements it on top of database/sql, and dialect/sql/schema
// renders CREATE TABLE statements from extracted models and applies them.
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//	tables, err := schema.NewTables(graph.Models)
//	...
//	err = schema.Migrate(ctx, drv, tables)
package dialect
