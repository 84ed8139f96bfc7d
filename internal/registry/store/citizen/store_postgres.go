package citizen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"foncier/internal/registry/models"
	"foncier/pkg/platform/sentinel"
	txcontext "foncier/pkg/platform/tx"
)

// PostgresStore persists citizens in PostgreSQL.
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

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Citizen, error) {
	var citizen models.Citizen
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, first_name, last_name, national_id, address, phone, email, created_at
		FROM citizens WHERE id = $1
	`, id).Scan(
		&citizen.ID,
		&citizen.FirstName,
		&citizen.LastName,
		&citizen.NationalID,
		&citizen.Address,
		&citizen.Phone,
		&citizen.Email,
		&citizen.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find citizen: %w", err)
	}
	return &citizen, nil
}

func (s *PostgresStore) Create(ctx context.Context, citizen *models.Citizen) error {
	now := time.Now()
	err := s.execer(ctx).QueryRowContext(ctx, `
		INSERT INTO citizens (first_name, last_name, national_id, address, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		citizen.FirstName,
		citizen.LastName,
		citizen.NationalID,
		citizen.Address,
		citizen.Phone,
		citizen.Email,
		now,
	).Scan(&citizen.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert citizen: %w", err)
	}
	citizen.CreatedAt = now
	return nil
}
