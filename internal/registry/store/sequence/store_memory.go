package sequence

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore allocates parcel-number sequences from an in-process counter
// map keyed by region code and year.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counters: make(map[string]int)}
}

func (s *InMemoryStore) Next(_ context.Context, regionCode string, year int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := counterKey(regionCode, year)
	s.counters[key]++
	return s.counters[key], nil
}

func (s *InMemoryStore) Ensure(_ context.Context, regionCode string, year int, floor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := counterKey(regionCode, year)
	if s.counters[key] < floor {
		s.counters[key] = floor
	}
	return nil
}

// Snapshot and Restore implement store.Snapshotter for the memory unit of
// work, so sequence values allocated in a rolled-back approval are reusable.
func (s *InMemoryStore) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]int, len(s.counters))
	for key, value := range s.counters {
		copied[key] = value
	}
	return copied
}

func (s *InMemoryStore) Restore(state any) {
	counters, ok := state.(map[string]int)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = counters
}

func counterKey(regionCode string, year int) string {
	return fmt.Sprintf("%s-%04d", regionCode, year)
}
