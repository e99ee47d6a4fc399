package schema

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/syssam/oaorm/dialect"
)

// Migrate creates the given tables and their indexes in a single
// transaction. Tables failing ValidateSchema are rejected before anything
// runs. On a failed statement the transaction is rolled back.
func Migrate(ctx context.Context, drv dialect.Driver, tables []*Table, opts ...RenderOption) error {
	result := ValidateSchema(tables)
	if result.HasErrors() {
		return &MigrateError{Result: result}
	}
	for _, w := range result.Warnings {
		zap.S().Warnw("schema warning", "table", w.Table, "column", w.Column, "message", w.Message)
	}
	r, err := NewRenderer(drv.Dialect(), opts...)
	if err != nil {
		return err
	}
	stmts, err := r.Statements(tables)
	if err != nil {
		return err
	}
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql/schema: begin transaction: %w", err)
	}
	for _, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return rollback(tx, err)
		}
		zap.S().Debugw("executing statement", "dialect", drv.Dialect(), "statement", stmt)
		if err := tx.Exec(ctx, stmt, []any{}, nil); err != nil {
			return rollback(tx, fmt.Errorf("dialect/sql/schema: %w", err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql/schema: commit: %w", err)
	}
	zap.S().Infow("migrated schema",
		"dialect", drv.Dialect(),
		"tables", len(tables),
		"statements", len(stmts),
	)
	return nil
}

// MigrateError is returned by Migrate when the tables are invalid.
type MigrateError struct {
	Result *ValidationResult
}

func (e *MigrateError) Error() string {
	return "dialect/sql/schema: invalid schema:\n" + e.Result.String()
}

// IsMigrateError reports whether err was caused by invalid tables.
func IsMigrateError(err error) bool {
	var e *MigrateError
	return errors.As(err, &e)
}

func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = errors.Join(err, fmt.Errorf("rolling back transaction: %w", rerr))
	}
	return err
}
