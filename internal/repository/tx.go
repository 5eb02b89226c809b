package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/grocery-cart/internal/db"
)

// inTx runs fn on queries bound to a new transaction started with opts. A repository
// built on an outer transaction has no pool, so fn runs on q and the caller owns commit.
func inTx[T any](ctx context.Context, pool *pgxpool.Pool, q *db.Queries, opts pgx.TxOptions, fn func(q *db.Queries) (T, error)) (result T, txErr error) {
	if pool == nil {
		return fn(q)
	}

	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return result, fmt.Errorf("pool.BeginTx: %w", err)
	}

	// no-op once committed
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", err))
		}
	}()

	if result, err = fn(q.WithTx(tx)); err != nil {
		var zero T
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		var zero T
		return zero, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}
