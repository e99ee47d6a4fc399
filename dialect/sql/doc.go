// Package sql implements dialect.Driver on top of database/sql.
//
//	drv, err := sql.Open(dialect.SQLite, "file:models.db")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// Debug wraps a driver so every statement is logged through zap before it
// runs.
package sql
