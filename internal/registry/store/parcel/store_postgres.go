package parcel

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

// PostgresStore persists parcels in PostgreSQL with hand-written SQL. When a
// SQL transaction is present in context (unit of work), all statements run on
// it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const parcelColumns = `
	id, number, land_title, area, area_unit, land_type, usage, address,
	region, department, commune, gps, status, estimated_value, owner_id,
	acquired_at, notes, created_at, updated_at
`

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Parcel, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+parcelColumns+` FROM parcels WHERE id = $1`, id)
	parcel, err := scanParcel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find parcel: %w", err)
	}
	return parcel, nil
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*models.Parcel, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+parcelColumns+` FROM parcels WHERE number = $1`, number)
	parcel, err := scanParcel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find parcel by number: %w", err)
	}
	return parcel, nil
}

func (s *PostgresStore) Create(ctx context.Context, parcel *models.Parcel) error {
	if err := parcel.Validate(); err != nil {
		return err
	}

	now := time.Now()
	query := `
		INSERT INTO parcels (
			number, land_title, area, area_unit, land_type, usage, address,
			region, department, commune, gps, status, estimated_value,
			owner_id, acquired_at, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		parcel.Number,
		parcel.LandTitle,
		parcel.Area,
		string(parcel.AreaUnit),
		string(parcel.LandType),
		parcel.Usage,
		parcel.Address,
		parcel.Region,
		parcel.Department,
		parcel.Commune,
		parcel.GPS,
		string(parcel.Status),
		parcel.EstimatedValue,
		parcel.OwnerID,
		parcel.AcquiredAt,
		parcel.Notes,
		now,
		now,
	).Scan(&parcel.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert parcel: %w", err)
	}
	parcel.CreatedAt = now
	parcel.UpdatedAt = now
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Parcel, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+parcelColumns+` FROM parcels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	defer rows.Close()

	var parcels []*models.Parcel
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parcel: %w", err)
		}
		parcels = append(parcels, parcel)
	}
	return parcels, rows.Err()
}

func (s *PostgresStore) ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT number FROM parcels WHERE number LIKE $1 || '%' ORDER BY number`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list parcel numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("scan parcel number: %w", err)
		}
		numbers = append(numbers, number)
	}
	return numbers, rows.Err()
}

// UpdateOwnership changes owner, status, and acquisition date in one
// statement; the transfer invariant forbids persisting them separately.
func (s *PostgresStore) UpdateOwnership(ctx context.Context, parcelID, ownerID int64, status models.ParcelStatus, acquiredAt time.Time) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE parcels
		SET owner_id = $2, status = $3, acquired_at = $4, updated_at = now()
		WHERE id = $1
	`, parcelID, ownerID, string(status), acquiredAt)
	if err != nil {
		return fmt.Errorf("update parcel ownership: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update parcel ownership: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendNote(ctx context.Context, parcelID int64, note string) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE parcels
		SET notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
		    updated_at = now()
		WHERE id = $1
	`, parcelID, note)
	if err != nil {
		return fmt.Errorf("append parcel note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("append parcel note: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParcel(row rowScanner) (*models.Parcel, error) {
	var (
		parcel   models.Parcel
		areaUnit string
		landType string
		status   string
	)
	err := row.Scan(
		&parcel.ID,
		&parcel.Number,
		&parcel.LandTitle,
		&parcel.Area,
		&areaUnit,
		&landType,
		&parcel.Usage,
		&parcel.Address,
		&parcel.Region,
		&parcel.Department,
		&parcel.Commune,
		&parcel.GPS,
		&status,
		&parcel.EstimatedValue,
		&parcel.OwnerID,
		&parcel.AcquiredAt,
		&parcel.Notes,
		&parcel.CreatedAt,
		&parcel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	parcel.AreaUnit = models.AreaUnit(areaUnit)
	parcel.LandType = models.LandType(landType)
	parcel.Status = models.ParcelStatus(status)
	return &parcel, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
