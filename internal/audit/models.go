package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions recorded on the registry audit trail.
const (
	ActionTransactionCreated  = "transaction.created"
	ActionTransactionApproved = "transaction.approved"
	ActionTransactionRejected = "transaction.rejected"
	ActionParcelSubdivided    = "parcel.subdivided"
	ActionParcelRegistered    = "parcel.registered"
)

// Event is one append-only audit trail entry.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Action        string    `json:"action"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	ParcelID      int64     `json:"parcel_id,omitempty"`
	AgentID       int64     `json:"agent_id,omitempty"`
	Outcome       string    `json:"outcome,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Store is the append-only persistence contract for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByTransaction(ctx context.Context, transactionID int64) ([]Event, error)
}
