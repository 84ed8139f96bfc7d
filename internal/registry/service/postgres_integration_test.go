//go:build integration

package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"foncier/internal/registry/models"
	"foncier/internal/registry/service"
	"foncier/internal/registry/store"
	citizenStore "foncier/internal/registry/store/citizen"
	parcelStore "foncier/internal/registry/store/parcel"
	sequenceStore "foncier/internal/registry/store/sequence"
	transactionStore "foncier/internal/registry/store/transaction"
	dErrors "foncier/pkg/domain-errors"
	"foncier/pkg/testutil/containers"
)

// ApprovalPostgresSuite exercises the approval workflow against real
// PostgreSQL transactions, where the FOR UPDATE row lock is what serializes
// concurrent approvals.
type ApprovalPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	parcels  *parcelStore.PostgresStore
	txs      *transactionStore.PostgresStore
	service  *service.Service
}

func TestApprovalPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ApprovalPostgresSuite))
}

func (s *ApprovalPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(store.ApplySchema(context.Background(), s.postgres.DB))

	s.parcels = parcelStore.NewPostgres(s.postgres.DB)
	s.txs = transactionStore.NewPostgres(s.postgres.DB)

	var err error
	s.service, err = service.New(service.Config{
		UnitOfWork:   store.NewPostgresUnitOfWork(s.postgres.DB),
		Parcels:      s.parcels,
		Transactions: s.txs,
		Citizens:     citizenStore.NewPostgres(s.postgres.DB),
		Sequences:    sequenceStore.NewPostgres(s.postgres.DB),
	})
	s.Require().NoError(err)
}

func (s *ApprovalPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(),
		"transactions", "parcels", "parcel_sequences"))
}

// TestConcurrentApproval verifies that two agents approving the same
// transaction at once produce exactly one approval; the loser observes the
// finalized status after the row lock releases.
func (s *ApprovalPostgresSuite) TestConcurrentApproval() {
	ctx := context.Background()

	parcel := &models.Parcel{
		Number: "DK-2025-0001", Area: 8.0, AreaUnit: models.AreaUnitHectares,
		LandType: models.LandTypeAgricultural, Status: models.ParcelStatusOccupied,
		OwnerID: 10,
	}
	s.Require().NoError(s.parcels.Create(ctx, parcel))

	transaction := &models.Transaction{
		ParcelID: parcel.ID,
		Type:     models.TransactionTypeInheritance,
		Payload:  models.SubdivisionPayload([]int64{11, 12, 13, 14}),
	}
	s.Require().NoError(s.txs.Create(ctx, transaction))

	const agents = 8
	var wg sync.WaitGroup
	results := make([]error, agents)
	for i := 0; i < agents; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.service.Approve(ctx, transaction.ID, int64(i+1))
		}(i)
	}
	wg.Wait()

	var succeeded, refused int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasCode(err, dErrors.CodeInvalidState):
			refused++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, succeeded, "exactly one approval should win")
	s.Equal(agents-1, refused)

	// Exactly one set of heir parcels exists.
	numbers, err := s.parcels.ListNumbersByPrefix(ctx, "DK-2025-0001-")
	s.Require().NoError(err)
	s.Equal([]string{"DK-2025-0001-A", "DK-2025-0001-B", "DK-2025-0001-C", "DK-2025-0001-D"}, numbers)

	final, err := s.txs.FindByID(ctx, transaction.ID)
	s.Require().NoError(err)
	s.Equal(models.TransactionStatusApproved, final.Status)
}

func (s *ApprovalPostgresSuite) TestSubdivisionRollbackOnConflict() {
	ctx := context.Background()

	original := &models.Parcel{
		Number: "SL-2025-0001", Area: 4.0, AreaUnit: models.AreaUnitHectares,
		LandType: models.LandTypeAgricultural, Status: models.ParcelStatusOccupied,
		OwnerID: 10,
	}
	s.Require().NoError(s.parcels.Create(ctx, original))

	// Occupy the number the second heir parcel would take, forcing a failure
	// mid-subdivision.
	squatter := &models.Parcel{
		Number: "SL-2025-0001-B", Area: 1.0, AreaUnit: models.AreaUnitHectares,
		LandType: models.LandTypeAgricultural, Status: models.ParcelStatusAvailable,
	}
	s.Require().NoError(s.parcels.Create(ctx, squatter))

	transaction := &models.Transaction{
		ParcelID: original.ID,
		Type:     models.TransactionTypeInheritance,
		Payload:  models.SubdivisionPayload([]int64{11, 12}),
	}
	s.Require().NoError(s.txs.Create(ctx, transaction))

	err := s.service.Approve(ctx, transaction.ID, 3)
	s.Require().Error(err)

	// The first heir parcel must have been rolled back with the rest.
	_, err = s.parcels.FindByNumber(ctx, "SL-2025-0001-A")
	s.Error(err)

	still, err := s.txs.FindByID(ctx, transaction.ID)
	s.Require().NoError(err)
	s.Equal(models.TransactionStatusPending, still.Status)

	after, err := s.parcels.FindByID(ctx, original.ID)
	s.Require().NoError(err)
	s.NotContains(after.Notes, "SUBDIVIDED")
}
