package store

import (
	"context"
	"sync"
)

// Snapshotter is implemented by the in-memory stores so the memory unit of
// work can roll their state back when fn fails partway.
type Snapshotter interface {
	Snapshot() any
	Restore(state any)
}

// MemoryUnitOfWork serializes units of work with a coarse lock and restores
// store snapshots on failure. Good enough for tests and single-process
// development; production uses PostgresUnitOfWork.
type MemoryUnitOfWork struct {
	mu     sync.Mutex
	stores []Snapshotter
}

func NewMemoryUnitOfWork(stores ...Snapshotter) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{stores: stores}
}

func (u *MemoryUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	states := make([]any, len(u.stores))
	for i, s := range u.stores {
		states[i] = s.Snapshot()
	}

	if err := fn(ctx); err != nil {
		for i, s := range u.stores {
			s.Restore(states[i])
		}
		return err
	}
	return nil
}
