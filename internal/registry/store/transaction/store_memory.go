package transaction

import (
	"context"
	"sync"
	"time"

	"foncier/internal/registry/models"
	"foncier/pkg/platform/sentinel"
)

// InMemoryStore keeps transactions in a map. Used by unit tests and local
// development without a database.
type InMemoryStore struct {
	mu           sync.RWMutex
	transactions map[int64]*models.Transaction
	nextID       int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{transactions: make(map[int64]*models.Transaction), nextID: 1}
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transaction, ok := s.transactions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := cloneTransaction(transaction)
	return clone, nil
}

// FindByIDForUpdate has no extra locking in memory; the memory unit of work
// already serializes whole units behind a coarse lock.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.FindByID(ctx, id)
}

func (s *InMemoryStore) Create(_ context.Context, transaction *models.Transaction) error {
	if err := transaction.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	transaction.ID = s.nextID
	s.nextID++
	now := time.Now()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	if transaction.Status == "" {
		transaction.Status = models.TransactionStatusPending
	}
	if transaction.Date.IsZero() {
		transaction.Date = now
	}

	s.transactions[transaction.ID] = cloneTransaction(transaction)
	return nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status models.TransactionStatus) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, transaction := range s.transactions {
		if transaction.Status == status {
			out = append(out, cloneTransaction(transaction))
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id int64, status models.TransactionStatus, agentID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	transaction, ok := s.transactions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	transaction.Status = status
	transaction.ValidatingAgentID = &agentID
	transaction.ValidatedAt = &at
	transaction.UpdatedAt = time.Now()
	return nil
}

// Snapshot and Restore implement store.Snapshotter for the memory unit of
// work.
func (s *InMemoryStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make(map[int64]*models.Transaction, len(s.transactions))
	for id, transaction := range s.transactions {
		copied[id] = cloneTransaction(transaction)
	}
	return memorySnapshot{transactions: copied, nextID: s.nextID}
}

func (s *InMemoryStore) Restore(state any) {
	snap, ok := state.(memorySnapshot)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = snap.transactions
	s.nextID = snap.nextID
}

type memorySnapshot struct {
	transactions map[int64]*models.Transaction
	nextID       int64
}

func cloneTransaction(t *models.Transaction) *models.Transaction {
	clone := *t
	if t.ValidatingAgentID != nil {
		agentID := *t.ValidatingAgentID
		clone.ValidatingAgentID = &agentID
	}
	if t.ValidatedAt != nil {
		at := *t.ValidatedAt
		clone.ValidatedAt = &at
	}
	if t.Payload != nil {
		payload := *t.Payload
		payload.Heirs = append([]int64(nil), t.Payload.Heirs...)
		clone.Payload = &payload
	}
	return &clone
}
