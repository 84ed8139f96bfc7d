package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Delivery names one beneficiary of an approved transfer.
type Delivery struct {
	CitizenID    int64
	ParcelNumber string
}

// Service writes inbox notifications for transfer beneficiaries. Deliveries
// within one approval fan out concurrently; the first store failure cancels
// the rest.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// TransferApproved notifies every beneficiary of an approved transfer. For a
// regular transfer that is one citizen; for a subdivision, each heir.
func (s *Service) TransferApproved(ctx context.Context, deliveries []Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	now := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for _, delivery := range deliveries {
		g.Go(func() error {
			return s.store.Push(ctx, Notification{
				ID:           uuid.New(),
				CitizenID:    delivery.CitizenID,
				ParcelNumber: delivery.ParcelNumber,
				Message:      fmt.Sprintf("Parcel %s has been registered to you.", delivery.ParcelNumber),
				CreatedAt:    now,
			})
		})
	}
	return g.Wait()
}

// List returns a citizen's notifications, newest first for the redis store.
func (s *Service) List(ctx context.Context, citizenID int64) ([]Notification, error) {
	return s.store.ListByCitizen(ctx, citizenID)
}
