package parcel

import (
	"context"
	"strings"
	"sync"
	"time"

	"foncier/internal/registry/models"
	"foncier/pkg/platform/sentinel"
)

// InMemoryStore keeps parcels in a map. Used by unit tests and local
// development without a database.
type InMemoryStore struct {
	mu      sync.RWMutex
	parcels map[int64]*models.Parcel
	nextID  int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{parcels: make(map[int64]*models.Parcel), nextID: 1}
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parcel, ok := s.parcels[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *parcel
	return &clone, nil
}

func (s *InMemoryStore) FindByNumber(_ context.Context, number string) (*models.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, parcel := range s.parcels {
		if parcel.Number == number {
			clone := *parcel
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Create(_ context.Context, parcel *models.Parcel) error {
	if err := parcel.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.parcels {
		if existing.Number == parcel.Number {
			return sentinel.ErrConflict
		}
		if parcel.LandTitle != nil && existing.LandTitle != nil && *existing.LandTitle == *parcel.LandTitle {
			return sentinel.ErrConflict
		}
	}

	parcel.ID = s.nextID
	s.nextID++
	now := time.Now()
	parcel.CreatedAt = now
	parcel.UpdatedAt = now

	clone := *parcel
	s.parcels[parcel.ID] = &clone
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Parcel, 0, len(s.parcels))
	for _, parcel := range s.parcels {
		clone := *parcel
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) ListNumbersByPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var numbers []string
	for _, parcel := range s.parcels {
		if strings.HasPrefix(parcel.Number, prefix) {
			numbers = append(numbers, parcel.Number)
		}
	}
	return numbers, nil
}

func (s *InMemoryStore) UpdateOwnership(_ context.Context, parcelID, ownerID int64, status models.ParcelStatus, acquiredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parcel, ok := s.parcels[parcelID]
	if !ok {
		return sentinel.ErrNotFound
	}
	parcel.OwnerID = ownerID
	parcel.Status = status
	parcel.AcquiredAt = &acquiredAt
	parcel.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) AppendNote(_ context.Context, parcelID int64, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parcel, ok := s.parcels[parcelID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if parcel.Notes == "" {
		parcel.Notes = note
	} else {
		parcel.Notes += "\n" + note
	}
	parcel.UpdatedAt = time.Now()
	return nil
}

// Snapshot and Restore implement store.Snapshotter for the memory unit of
// work.
func (s *InMemoryStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make(map[int64]*models.Parcel, len(s.parcels))
	for id, parcel := range s.parcels {
		clone := *parcel
		copied[id] = &clone
	}
	return memorySnapshot{parcels: copied, nextID: s.nextID}
}

func (s *InMemoryStore) Restore(state any) {
	snap, ok := state.(memorySnapshot)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parcels = snap.parcels
	s.nextID = snap.nextID
}

type memorySnapshot struct {
	parcels map[int64]*models.Parcel
	nextID  int64
}
