package pg

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/txhook"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Transactor runs units of work in a single PostgreSQL transaction and flushes
// txhook commit hooks once the transaction has committed.
type Transactor struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// TransactorOption configures a Transactor.
type TransactorOption func(*Transactor)

// WithTransactorLogger sets the logger for the Transactor.
func WithTransactorLogger(l *slog.Logger) TransactorOption {
	return func(t *Transactor) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTransactor creates a Transactor bound to pool.
func NewTransactor(pool *pgxpool.Pool, opts ...TransactorOption) *Transactor {
	t := &Transactor{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithTx runs fn inside a transaction. A nested call joins the outer
// transaction; only the outermost call commits and runs commit hooks.
func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) (txErr error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return errors.Join(ErrTxBegin, err)
	}

	txCtx, scope, owner := txhook.Begin(context.WithValue(ctx, txKey{}, tx))

	defer func() {
		if r := recover(); r != nil {
			t.rollback(ctx, tx)
			if owner {
				scope.Discard()
			}
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		t.rollback(ctx, tx)
		if owner {
			scope.Discard()
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if owner {
			scope.Discard()
		}
		return errors.Join(ErrTxCommit, err)
	}

	if owner {
		scope.Commit(txhook.Detach(ctx))
	}
	return nil
}

func (t *Transactor) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !IsTxClosedError(err) {
		t.logger.LogAttrs(ctx, slog.LevelError, "transaction rollback failed",
			logger.Error(err),
			logger.Component("pg"),
		)
	}
}

// Conn returns the transaction carried by ctx, or the pool when there is none.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok && tx != nil {
		return tx
	}
	return pool
}
