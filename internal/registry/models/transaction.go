package models

import (
	"errors"
	"time"
)

// TransactionType classifies a transfer request.
type TransactionType string

const (
	TransactionTypeSale        TransactionType = "sale"
	TransactionTypePurchase    TransactionType = "purchase"
	TransactionTypeTransfer    TransactionType = "transfer"
	TransactionTypeInheritance TransactionType = "inheritance"
	TransactionTypeDonation    TransactionType = "donation"
	TransactionTypeExchange    TransactionType = "exchange"
)

// TransactionStatus tracks the one-way lifecycle of a transfer request.
// Transitions out of pending are terminal.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusRejected  TransactionStatus = "rejected"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// DivisionMarker is the literal token legacy records carry in their notes to
// flag an inheritance-with-division. New records carry a typed payload and the
// marker only as display text.
const DivisionMarker = "INHERITANCE WITH DIVISION"

// Transaction is a proposed or finalized change of parcel ownership requiring
// agent approval. PreviousOwnerID zero means no previous owner. Payload is nil
// for legacy rows, whose heir list (if any) lives encoded in Notes.
type Transaction struct {
	ID                int64
	ParcelID          int64
	Type              TransactionType
	PreviousOwnerID   int64
	NewOwnerID        int64
	Amount            *float64
	Currency          string
	Fees              *float64
	Tax               *float64
	Date              time.Time
	Status            TransactionStatus
	ValidatingAgentID *int64
	ValidatedAt       *time.Time
	Payload           *TransferPayload
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsSubdivision reports whether this transaction is an
// inheritance-with-division: its type is inheritance and either the typed
// payload says so or (legacy) the notes carry the division marker.
func (t *Transaction) IsSubdivision() bool {
	if t.Type != TransactionTypeInheritance {
		return false
	}
	if t.Payload != nil {
		return t.Payload.Kind == PayloadKindSubdivision
	}
	return containsMarker(t.Notes)
}

// Validate enforces the transaction invariants checked before any insert.
func (t *Transaction) Validate() error {
	if t.ParcelID <= 0 {
		return errRequired("parcel reference")
	}
	if t.NewOwnerID <= 0 && (t.Payload == nil || t.Payload.Kind != PayloadKindSubdivision) {
		return errRequired("new owner reference")
	}
	switch t.Type {
	case TransactionTypeSale, TransactionTypePurchase, TransactionTypeTransfer,
		TransactionTypeInheritance, TransactionTypeDonation, TransactionTypeExchange:
	default:
		return errors.New("unknown transaction type: " + string(t.Type))
	}
	if t.Payload != nil {
		return t.Payload.Validate()
	}
	return nil
}

func errRequired(what string) error {
	return errors.New(what + " is required")
}
