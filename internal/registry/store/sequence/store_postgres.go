package sequence

import (
	"context"
	"database/sql"
	"fmt"

	txcontext "foncier/pkg/platform/tx"
)

// PostgresStore allocates parcel-number sequences from a counter table with
// an atomic upsert-increment, so two concurrent approvals in the same region
// and year can never be handed the same sequence. The legacy scan-based
// allocation survives only as a backfill source for Ensure.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Next(ctx context.Context, regionCode string, year int) (int, error) {
	var value int
	err := s.execer(ctx).QueryRowContext(ctx, `
		INSERT INTO parcel_sequences (region_code, year, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (region_code, year)
		DO UPDATE SET value = parcel_sequences.value + 1
		RETURNING value
	`, regionCode, year).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next parcel sequence: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Ensure(ctx context.Context, regionCode string, year int, floor int) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO parcel_sequences (region_code, year, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (region_code, year)
		DO UPDATE SET value = GREATEST(parcel_sequences.value, EXCLUDED.value)
	`, regionCode, year, floor)
	if err != nil {
		return fmt.Errorf("ensure parcel sequence: %w", err)
	}
	return nil
}
