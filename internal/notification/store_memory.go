package notification

import (
	"context"
	"sync"
)

// InMemoryStore keeps notifications in a map. Used by tests and local
// development without Redis.
type InMemoryStore struct {
	mu      sync.RWMutex
	inboxes map[int64][]Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{inboxes: make(map[int64][]Notification)}
}

func (s *InMemoryStore) Push(_ context.Context, notification Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboxes[notification.CitizenID] = append(s.inboxes[notification.CitizenID], notification)
	return nil
}

func (s *InMemoryStore) ListByCitizen(_ context.Context, citizenID int64) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification{}, s.inboxes[citizenID]...), nil
}
