package citizen

import (
	"context"
	"sync"
	"time"

	"foncier/internal/registry/models"
	"foncier/pkg/platform/sentinel"
)

// InMemoryStore keeps citizens in a map. Citizens are read-mostly input to
// the approval workflow.
type InMemoryStore struct {
	mu       sync.RWMutex
	citizens map[int64]*models.Citizen
	nextID   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{citizens: make(map[int64]*models.Citizen), nextID: 1}
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	citizen, ok := s.citizens[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *citizen
	return &clone, nil
}

func (s *InMemoryStore) Create(_ context.Context, citizen *models.Citizen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.citizens {
		if existing.NationalID == citizen.NationalID {
			return sentinel.ErrConflict
		}
	}

	citizen.ID = s.nextID
	s.nextID++
	citizen.CreatedAt = time.Now()

	clone := *citizen
	s.citizens[citizen.ID] = &clone
	return nil
}

// Put inserts a citizen under a caller-chosen ID. Test seeding helper.
func (s *InMemoryStore) Put(citizen *models.Citizen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *citizen
	s.citizens[citizen.ID] = &clone
	if citizen.ID >= s.nextID {
		s.nextID = citizen.ID + 1
	}
}
