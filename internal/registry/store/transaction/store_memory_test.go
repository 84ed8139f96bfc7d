package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"foncier/internal/registry/models"
	"foncier/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *MemoryStoreSuite) create(payload *models.TransferPayload) *models.Transaction {
	transaction := &models.Transaction{
		ParcelID:   7,
		Type:       models.TransactionTypeInheritance,
		NewOwnerID: 20,
		Payload:    payload,
	}
	s.Require().NoError(s.store.Create(context.Background(), transaction))
	return transaction
}

func (s *MemoryStoreSuite) TestCreateDefaultsToPending() {
	created := s.create(nil)
	s.NotZero(created.ID)
	s.Equal(models.TransactionStatusPending, created.Status)
	s.False(created.Date.IsZero())
}

func (s *MemoryStoreSuite) TestClonesIsolatePayload() {
	ctx := context.Background()
	created := s.create(models.SubdivisionPayload([]int64{11, 12}))

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	found.Payload.Heirs[0] = 999

	again, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal([]int64{11, 12}, again.Payload.Heirs)
}

func (s *MemoryStoreSuite) TestUpdateStatus() {
	ctx := context.Background()
	created := s.create(nil)

	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.UpdateStatus(ctx, created.ID,
		models.TransactionStatusApproved, 3, at))

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.TransactionStatusApproved, found.Status)
	s.Require().NotNil(found.ValidatingAgentID)
	s.Equal(int64(3), *found.ValidatingAgentID)

	err = s.store.UpdateStatus(ctx, 404, models.TransactionStatusApproved, 3, at)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MemoryStoreSuite) TestListByStatus() {
	ctx := context.Background()
	s.create(nil)
	finalized := s.create(nil)
	s.Require().NoError(s.store.UpdateStatus(ctx, finalized.ID,
		models.TransactionStatusRejected, 3, time.Now()))

	pending, err := s.store.ListByStatus(ctx, models.TransactionStatusPending)
	s.Require().NoError(err)
	s.Len(pending, 1)

	rejected, err := s.store.ListByStatus(ctx, models.TransactionStatusRejected)
	s.Require().NoError(err)
	s.Len(rejected, 1)
}

func (s *MemoryStoreSuite) TestSnapshotRestore() {
	ctx := context.Background()
	kept := s.create(nil)

	snapshot := s.store.Snapshot()
	dropped := s.create(nil)
	s.Require().NoError(s.store.UpdateStatus(ctx, kept.ID,
		models.TransactionStatusApproved, 3, time.Now()))

	s.store.Restore(snapshot)

	_, err := s.store.FindByID(ctx, dropped.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	restored, err := s.store.FindByID(ctx, kept.ID)
	s.Require().NoError(err)
	s.Equal(models.TransactionStatusPending, restored.Status)
}
