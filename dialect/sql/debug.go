package sql

import (
	"context"

	"go.uber.org/zap"

	"github.com/syssam/oaorm/dialect"
)

// DebugDriver is a driver that logs every statement before running it.
type DebugDriver struct {
	dialect.Driver
	log *zap.SugaredLogger
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger statements are written to.
func DebugWithLogger(log *zap.SugaredLogger) DebugOption {
	return func(d *DebugDriver) {
		d.log = log
	}
}

// Debug wraps a driver with debug logging. Statements are logged at debug
// level on the global zap logger unless DebugWithLogger is given.
func Debug(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{Driver: drv, log: zap.S()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Exec logs and executes a statement.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.Debugw("exec", "query", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Query logs and executes a query.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.Debugw("query", "query", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Tx starts a transaction with debug logging.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.log.Debugw("begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugTx{Tx: tx, log: d.log}, nil
}

// DebugTx is a transaction that logs every statement.
type DebugTx struct {
	dialect.Tx
	log *zap.SugaredLogger
}

// Exec logs and executes a statement within the transaction.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.log.Debugw("tx exec", "query", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Query logs and executes a query within the transaction.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.log.Debugw("tx query", "query", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

// Commit logs and commits the transaction.
func (tx *DebugTx) Commit() error {
	tx.log.Debugw("commit transaction")
	return tx.Tx.Commit()
}

// Rollback logs and rolls back the transaction.
func (tx *DebugTx) Rollback() error {
	tx.log.Debugw("rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
