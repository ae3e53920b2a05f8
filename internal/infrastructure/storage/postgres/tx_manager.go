package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/core/tx"
	"backoffice/pkg/logger"
)

var tracer = otel.Tracer("backoffice/tx")

// Compile-time check that TxManager satisfies both core contracts.
var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxOptions configures transaction behavior.
type TxOptions struct {
	IsolationLevel pgx.TxIsoLevel
	AccessMode     pgx.TxAccessMode

	// StatementTimeout aborts runaway queries inside the transaction.
	StatementTimeout time.Duration

	// UseSavepoint isolates a nested call behind a savepoint instead of
	// letting its failure poison the outer transaction. Savepoints are not
	// free; the default is to join the outer transaction directly.
	UseSavepoint bool
}

// DefaultTxOptions returns the options used by the checkout and receipt
// flows: read committed, read-write, 30s statement timeout.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// TxManager carries transactions through the context. An orchestrator opens
// the transaction; ledger services called inside it find the ambient Tx via
// GetTx/GetQuerier and join it instead of opening their own. Row locks taken
// with SELECT ... FOR UPDATE therefore hold until the orchestrator commits.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager on top of the pool.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

// txKey is the context key for the active transaction.
type txKey struct{}

// Tx marks the pgx transaction carried by the context.
type Tx struct {
	pgx.Tx
}

var savepointSeq atomic.Int64

// RunInTransaction executes fn within a transaction, reusing the ambient one
// when the context already carries it.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, DefaultTxOptions(), fn)
}

// RunInTransactionWithOptions executes fn with explicit transaction options.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
		))
	defer span.End()

	if ambient := m.GetTx(ctx); ambient != nil {
		return m.joinAmbient(ctx, ambient, opts, fn)
	}
	return m.beginAndRun(ctx, opts, fn)
}

// ReadOnly executes fn in a read-only transaction; writes inside it fail.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := DefaultTxOptions()
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

func (m *TxManager) beginAndRun(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	dbTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if opts.StatementTimeout > 0 {
		_, err = dbTx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = dbTx.Rollback(ctx)
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	txCtx := context.WithValue(ctx, txKey{}, &Tx{Tx: dbTx})

	if err := fn(txCtx); err != nil {
		// Roll back on a background context so cancellation of the request
		// cannot leave the transaction open.
		if rbErr := dbTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (m *TxManager) joinAmbient(ctx context.Context, ambient *Tx, opts TxOptions, fn func(ctx context.Context) error) error {
	if !opts.UseSavepoint {
		return fn(ctx)
	}

	name := fmt.Sprintf("sp_%d", savepointSeq.Add(1))
	if _, err := ambient.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	if err := fn(ctx); err != nil {
		if _, rbErr := ambient.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			logger.Error(ctx, "rollback to savepoint failed", "savepoint", name, "error", rbErr)
		}
		return err
	}

	if _, err := ambient.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// GetTx returns the ambient transaction, or nil outside one. Repositories
// that lock rows check this to refuse running without a transaction.
func (m *TxManager) GetTx(ctx context.Context) *Tx {
	if ambient, ok := ctx.Value(txKey{}).(*Tx); ok {
		return ambient
	}
	return nil
}

// Querier is the subset of pgx operations the repositories use. Both pgx.Tx
// and *pgxpool.Pool satisfy it, so repository code is identical inside and
// outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the ambient transaction when one is active, the pool
// otherwise.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if ambient := m.GetTx(ctx); ambient != nil {
		return ambient.Tx
	}
	return m.pool
}
