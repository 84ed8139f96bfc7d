package parcel

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

func (s *MemoryStoreSuite) create(number string) *models.Parcel {
	parcel := &models.Parcel{
		Number:   number,
		Area:     500,
		AreaUnit: models.AreaUnitSquareMeters,
		Status:   models.ParcelStatusAvailable,
		OwnerID:  10,
	}
	s.Require().NoError(s.store.Create(context.Background(), parcel))
	return parcel
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	created := s.create("DK-2025-0001")
	s.NotZero(created.ID)

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("DK-2025-0001", found.Number)

	byNumber, err := s.store.FindByNumber(ctx, "DK-2025-0001")
	s.Require().NoError(err)
	s.Equal(created.ID, byNumber.ID)

	_, err = s.store.FindByID(ctx, 404)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MemoryStoreSuite) TestReadsReturnClones() {
	ctx := context.Background()
	created := s.create("DK-2025-0002")

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	found.OwnerID = 999

	again, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(int64(10), again.OwnerID)
}

func (s *MemoryStoreSuite) TestConflicts() {
	ctx := context.Background()
	s.create("DK-2025-0003")

	err := s.store.Create(ctx, &models.Parcel{
		Number: "DK-2025-0003", Area: 1, AreaUnit: models.AreaUnitHectares,
		Status: models.ParcelStatusAvailable,
	})
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *MemoryStoreSuite) TestUpdateOwnership() {
	ctx := context.Background()
	created := s.create("DK-2025-0004")

	acquiredAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.UpdateOwnership(ctx, created.ID, 20,
		models.ParcelStatusOccupied, acquiredAt))

	updated, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(int64(20), updated.OwnerID)
	s.Equal(models.ParcelStatusOccupied, updated.Status)

	err = s.store.UpdateOwnership(ctx, 404, 20, models.ParcelStatusOccupied, acquiredAt)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MemoryStoreSuite) TestAppendNote() {
	ctx := context.Background()
	created := s.create("DK-2025-0005")

	s.Require().NoError(s.store.AppendNote(ctx, created.ID, "first"))
	s.Require().NoError(s.store.AppendNote(ctx, created.ID, "second"))

	after, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("first\nsecond", after.Notes)
}

func (s *MemoryStoreSuite) TestSnapshotRestore() {
	ctx := context.Background()
	s.create("DK-2025-0006")

	snapshot := s.store.Snapshot()
	s.create("DK-2025-0007")

	s.store.Restore(snapshot)

	_, err := s.store.FindByNumber(ctx, "DK-2025-0007")
	s.True(errors.Is(err, sentinel.ErrNotFound))
	_, err = s.store.FindByNumber(ctx, "DK-2025-0006")
	s.NoError(err)
}
