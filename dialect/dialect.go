package dialect

import (
	"context"
	"database/sql/driver"
)

// Dialect names. They are also the names the database/sql drivers register
// under: lib/pq for postgres, go-sql-driver for mysql and modernc for sqlite.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Dialects lists the supported dialects.
var Dialects = []string{Postgres, MySQL, SQLite}

// Valid reports whether name is a supported dialect.
func Valid(name string) bool {
	for _, d := range Dialects {
		if d == name {
			return true
		}
	}
	return false
}

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL,
	// INSERT or UPDATE. It scans the result into the pointer v. For SQL drivers,
	// it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is
	// *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the
// migration runner.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	driver.Tx
}
