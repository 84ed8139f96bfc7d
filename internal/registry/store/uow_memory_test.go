package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterStore is a minimal Snapshotter for exercising rollback.
type counterStore struct {
	value int
}

func (c *counterStore) Snapshot() any     { return c.value }
func (c *counterStore) Restore(state any) { c.value = state.(int) }

func TestMemoryUnitOfWorkCommits(t *testing.T) {
	counter := &counterStore{}
	uow := NewMemoryUnitOfWork(counter)

	err := uow.RunInTx(context.Background(), func(context.Context) error {
		counter.value = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, counter.value)
}

func TestMemoryUnitOfWorkRollsBackOnError(t *testing.T) {
	first := &counterStore{value: 1}
	second := &counterStore{value: 2}
	uow := NewMemoryUnitOfWork(first, second)

	failure := errors.New("partway failure")
	err := uow.RunInTx(context.Background(), func(context.Context) error {
		first.value = 100
		second.value = 200
		return failure
	})
	require.ErrorIs(t, err, failure)
	assert.Equal(t, 1, first.value)
	assert.Equal(t, 2, second.value)
}

func TestMemoryUnitOfWorkHonorsCancelledContext(t *testing.T) {
	uow := NewMemoryUnitOfWork()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.RunInTx(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
