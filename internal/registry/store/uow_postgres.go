package store

import (
	"context"
	"database/sql"
	"fmt"

	"foncier/pkg/platform/tx"
)

// PostgresUnitOfWork runs a function inside one SQL transaction. The
// transaction travels in context; postgres stores pick it up as their
// executor, so every store call inside fn shares the same commit/rollback
// boundary.
type PostgresUnitOfWork struct {
	db *sql.DB
}

func NewPostgresUnitOfWork(db *sql.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

func (u *PostgresUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sqlTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
