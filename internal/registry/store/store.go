// Package store defines the persistence contracts of the registry module.
//
// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code. All mutations of one approval run inside a single UnitOfWork.
package store

import (
	"context"
	"time"

	"foncier/internal/registry/models"
)

// ParcelStore persists parcels.
type ParcelStore interface {
	FindByID(ctx context.Context, id int64) (*models.Parcel, error)
	FindByNumber(ctx context.Context, number string) (*models.Parcel, error)
	// Create inserts a new parcel and assigns its ID. Returns
	// sentinel.ErrConflict when the number or land title already exists.
	Create(ctx context.Context, parcel *models.Parcel) error
	List(ctx context.Context) ([]*models.Parcel, error)
	// ListNumbersByPrefix feeds the legacy scan-based sequence backfill.
	ListNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
	// UpdateOwnership sets owner, status, and acquisition date as one
	// statement so no intermediate owner/status state is ever persisted.
	// Returns sentinel.ErrNotFound when zero rows match.
	UpdateOwnership(ctx context.Context, parcelID, ownerID int64, status models.ParcelStatus, acquiredAt time.Time) error
	// AppendNote appends a line to the parcel's notes log.
	AppendNote(ctx context.Context, parcelID int64, note string) error
}

// TransactionStore persists transfer requests.
type TransactionStore interface {
	FindByID(ctx context.Context, id int64) (*models.Transaction, error)
	// FindByIDForUpdate additionally takes a row lock when running inside a
	// SQL transaction, closing the load-then-update race between concurrent
	// approvals of the same transaction.
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Transaction, error)
	Create(ctx context.Context, transaction *models.Transaction) error
	ListByStatus(ctx context.Context, status models.TransactionStatus) ([]*models.Transaction, error)
	// UpdateStatus flips status and records the validating agent and time.
	UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus, agentID int64, at time.Time) error
}

// CitizenStore resolves owner and heir references.
type CitizenStore interface {
	FindByID(ctx context.Context, id int64) (*models.Citizen, error)
	Create(ctx context.Context, citizen *models.Citizen) error
}

// SequenceStore allocates parcel-number sequences atomically per
// (region code, year). This replaces the legacy scan-all-parcels strategy for
// new allocations.
type SequenceStore interface {
	Next(ctx context.Context, regionCode string, year int) (int, error)
	// Ensure raises the counter to at least floor; used when backfilling from
	// a legacy scan so the counter never re-issues an existing sequence.
	Ensure(ctx context.Context, regionCode string, year int, floor int) error
}

// UnitOfWork is the atomic commit/rollback boundary wrapping all writes of
// one approval operation. Implementations wrap a database transaction or, in
// memory, a coarse lock with state snapshots.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
