package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification is a message for a citizen's inbox: their transfer was
// approved, or they received a parcel out of a subdivision.
type Notification struct {
	ID           uuid.UUID `json:"id"`
	CitizenID    int64     `json:"citizen_id"`
	ParcelNumber string    `json:"parcel_number"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists per-citizen notification inboxes.
type Store interface {
	Push(ctx context.Context, notification Notification) error
	ListByCitizen(ctx context.Context, citizenID int64) ([]Notification, error)
}
