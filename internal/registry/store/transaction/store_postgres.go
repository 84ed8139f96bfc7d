package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"foncier/internal/registry/models"
	"foncier/pkg/platform/sentinel"
	txcontext "foncier/pkg/platform/tx"
)

// PostgresStore persists transfer requests in PostgreSQL with hand-written
// SQL. When a SQL transaction is present in context, all statements run on it.
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

const transactionColumns = `
	id, parcel_id, type, previous_owner_id, new_owner_id, amount, currency,
	fees, tax, date, status, validating_agent_id, validated_at, payload,
	notes, created_at, updated_at
`

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.findByID(ctx, id, "")
}

// FindByIDForUpdate takes a row lock so concurrent approvals of the same
// transaction serialize instead of both reading PENDING.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.findByID(ctx, id, " FOR UPDATE")
}

func (s *PostgresStore) findByID(ctx context.Context, id int64, locking string) (*models.Transaction, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`+locking, id)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return transaction, nil
}

func (s *PostgresStore) Create(ctx context.Context, transaction *models.Transaction) error {
	if err := transaction.Validate(); err != nil {
		return err
	}

	payload, err := models.MarshalPayload(transaction.Payload)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	now := time.Now()
	if transaction.Status == "" {
		transaction.Status = models.TransactionStatusPending
	}
	if transaction.Date.IsZero() {
		transaction.Date = now
	}

	query := `
		INSERT INTO transactions (
			parcel_id, type, previous_owner_id, new_owner_id, amount,
			currency, fees, tax, date, status, payload, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err = s.execer(ctx).QueryRowContext(ctx, query,
		transaction.ParcelID,
		string(transaction.Type),
		transaction.PreviousOwnerID,
		transaction.NewOwnerID,
		transaction.Amount,
		transaction.Currency,
		transaction.Fees,
		transaction.Tax,
		transaction.Date,
		string(transaction.Status),
		payload,
		transaction.Notes,
		now,
		now,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.TransactionStatus) ([]*models.Transaction, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE status = $1 ORDER BY id`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus, agentID int64, at time.Time) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, validating_agent_id = $3, validated_at = $4, updated_at = now()
		WHERE id = $1
	`, id, string(status), agentID, at)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		transaction models.Transaction
		txType      string
		status      string
		payload     []byte
	)
	err := row.Scan(
		&transaction.ID,
		&transaction.ParcelID,
		&txType,
		&transaction.PreviousOwnerID,
		&transaction.NewOwnerID,
		&transaction.Amount,
		&transaction.Currency,
		&transaction.Fees,
		&transaction.Tax,
		&transaction.Date,
		&status,
		&transaction.ValidatingAgentID,
		&transaction.ValidatedAt,
		&payload,
		&transaction.Notes,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	transaction.Type = models.TransactionType(txType)
	transaction.Status = models.TransactionStatus(status)
	transaction.Payload, err = models.UnmarshalPayload(payload)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}
