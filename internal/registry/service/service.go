// Package service implements the registry workflows, chiefly the transaction
// approval state machine: the sole mutator moving a transfer request out of
// pending, applying its parcel mutations as one atomic unit of work.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"foncier/internal/audit"
	"foncier/internal/notification"
	"foncier/internal/registry/heirs"
	"foncier/internal/registry/metrics"
	"foncier/internal/registry/models"
	"foncier/internal/registry/parcelnum"
	"foncier/internal/registry/store"
	dErrors "foncier/pkg/domain-errors"
	"foncier/pkg/platform/sentinel"
	"foncier/pkg/requestcontext"
)

var tracer = otel.Tracer("foncier/registry")

// AuditPublisher records workflow outcomes on the audit trail. Best-effort:
// the service never fails an operation because auditing did.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Notifier delivers inbox notifications to transfer beneficiaries.
type Notifier interface {
	TransferApproved(ctx context.Context, deliveries []notification.Delivery) error
}

// Config wires the service's collaborators. Stores and the unit of work are
// required; audit, notifier, and metrics are optional.
type Config struct {
	UnitOfWork   store.UnitOfWork
	Parcels      store.ParcelStore
	Transactions store.TransactionStore
	Citizens     store.CitizenStore
	Sequences    store.SequenceStore
	Audit        AuditPublisher
	Notifier     Notifier
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// Service owns the transfer lifecycle: creation, approval, rejection, and the
// parcel registration that feeds it.
type Service struct {
	uow          store.UnitOfWork
	parcels      store.ParcelStore
	transactions store.TransactionStore
	citizens     store.CitizenStore
	sequences    store.SequenceStore
	audit        AuditPublisher
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func New(cfg Config) (*Service, error) {
	if cfg.UnitOfWork == nil {
		return nil, errors.New("unit of work is required")
	}
	if cfg.Parcels == nil || cfg.Transactions == nil || cfg.Citizens == nil || cfg.Sequences == nil {
		return nil, errors.New("all registry stores are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		uow:          cfg.UnitOfWork,
		parcels:      cfg.Parcels,
		transactions: cfg.Transactions,
		citizens:     cfg.Citizens,
		sequences:    cfg.Sequences,
		audit:        cfg.Audit,
		notifier:     cfg.Notifier,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}, nil
}

// approvalResult carries what happened inside the unit of work out to the
// side effects (metrics, audit, notifications) that run after commit.
type approvalResult struct {
	subdivided bool
	parcelID   int64
	deliveries []notification.Delivery
}

// Approve moves a pending transaction to approved, applying either a single
// ownership update or an inheritance subdivision. All writes share one unit
// of work; any failure rolls everything back and surfaces a coded error.
func (s *Service) Approve(ctx context.Context, transactionID, agentID int64) error {
	if transactionID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "transaction id is required")
	}
	if agentID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "approving agent id is required")
	}

	ctx, span := tracer.Start(ctx, "registry.approve")
	defer span.End()
	span.SetAttributes(attribute.Int64("transaction.id", transactionID))

	start := time.Now()
	var result approvalResult
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		result, txErr = s.approveInTx(ctx, transactionID, agentID)
		return txErr
	})
	if err != nil {
		s.metrics.RecordApproval("failed", start)
		s.logger.WarnContext(ctx, "approval failed",
			"transaction_id", transactionID,
			"agent_id", agentID,
			"error", err,
		)
		return err
	}

	s.metrics.RecordApproval("approved", start)
	if result.subdivided {
		s.metrics.RecordSubdivision(len(result.deliveries))
	}
	s.emit(ctx, audit.Event{
		Action:        audit.ActionTransactionApproved,
		TransactionID: transactionID,
		ParcelID:      result.parcelID,
		AgentID:       agentID,
		Outcome:       "approved",
		Detail:        approvalDetail(result),
	})
	s.notify(ctx, result.deliveries)
	return nil
}

func (s *Service) approveInTx(ctx context.Context, transactionID, agentID int64) (approvalResult, error) {
	transaction, err := s.transactions.FindByIDForUpdate(ctx, transactionID)
	if err != nil {
		return approvalResult{}, mapStoreErr(err, "transaction not found")
	}
	if transaction.Status != models.TransactionStatusPending {
		return approvalResult{}, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("transaction is %s, only pending transactions can be approved", transaction.Status))
	}

	now := requestcontext.Now(ctx)
	result := approvalResult{parcelID: transaction.ParcelID}

	if transaction.IsSubdivision() {
		deliveries, err := s.subdivide(ctx, transaction, now)
		if err != nil {
			return approvalResult{}, err
		}
		result.subdivided = true
		result.deliveries = deliveries
	} else {
		parcel, err := s.parcels.FindByID(ctx, transaction.ParcelID)
		if err != nil {
			return approvalResult{}, mapStoreErr(err, "parcel not found")
		}
		// Owner, status, and acquisition date change together; the store
		// guarantees a single statement.
		err = s.parcels.UpdateOwnership(ctx, transaction.ParcelID, transaction.NewOwnerID,
			models.ParcelStatusOccupied, now)
		if err != nil {
			return approvalResult{}, mapStoreErr(err, "parcel not found")
		}
		result.deliveries = []notification.Delivery{
			{CitizenID: transaction.NewOwnerID, ParcelNumber: parcel.Number},
		}
	}

	err = s.transactions.UpdateStatus(ctx, transactionID, models.TransactionStatusApproved, agentID, now)
	if err != nil {
		return approvalResult{}, mapStoreErr(err, "transaction not found")
	}
	return result, nil
}

// subdivide creates one new parcel per heir and annotates the original. The
// original parcel's owner and status are deliberately left unchanged: the
// constrained status set has no "subdivided" member, so the appended note is
// the durable marker (see DESIGN.md).
func (s *Service) subdivide(ctx context.Context, transaction *models.Transaction, now time.Time) ([]notification.Delivery, error) {
	heirIDs := heirReferences(transaction)
	if len(heirIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeUnprocessable, "no heir references found on transaction")
	}

	original, err := s.parcels.FindByID(ctx, transaction.ParcelID)
	if err != nil {
		return nil, mapStoreErr(err, "parcel not found")
	}

	// Equal split, no rounding; the last parcel is not adjusted for
	// remainder, matching the registry's long-standing practice.
	areaPerHeir := original.Area / float64(len(heirIDs))

	deliveries := make([]notification.Delivery, 0, len(heirIDs))
	for i, heirID := range heirIDs {
		acquired := now
		child := &models.Parcel{
			Number: original.Number + "-" + parcelnum.SubdivisionSuffix(i),
			// Land title deliberately not copied: titles are unique per
			// parcel and the heirs receive new ones out of band.
			Area:       areaPerHeir,
			AreaUnit:   original.AreaUnit,
			LandType:   original.LandType,
			Usage:      original.Usage,
			Address:    original.Address,
			Region:     original.Region,
			Department: original.Department,
			Commune:    original.Commune,
			GPS:        cloneString(original.GPS),
			Status:     models.ParcelStatusOccupied,
			OwnerID:    heirID,
			AcquiredAt: &acquired,
			Notes: fmt.Sprintf("Created by subdivision of parcel %s (transaction %d)",
				original.Number, transaction.ID),
		}
		if err := s.parcels.Create(ctx, child); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal,
				"create heir parcel "+child.Number)
		}
		deliveries = append(deliveries, notification.Delivery{
			CitizenID:    heirID,
			ParcelNumber: child.Number,
		})
	}

	note := fmt.Sprintf("[SUBDIVIDED %s into %d parcels]", now.Format("2006-01-02"), len(heirIDs))
	if err := s.parcels.AppendNote(ctx, original.ID, note); err != nil {
		return nil, mapStoreErr(err, "parcel not found")
	}
	return deliveries, nil
}

// heirReferences resolves the beneficiary list: the typed payload is the
// source of truth, the legacy notes scrape the fallback for old rows.
func heirReferences(transaction *models.Transaction) []int64 {
	if transaction.Payload != nil && transaction.Payload.Kind == models.PayloadKindSubdivision {
		return transaction.Payload.Heirs
	}
	return heirs.Parse(transaction.Notes)
}

// Reject moves a pending transaction to rejected. No parcel side effects.
func (s *Service) Reject(ctx context.Context, transactionID, agentID int64, reason string) error {
	if transactionID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "transaction id is required")
	}
	if agentID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "rejecting agent id is required")
	}

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		transaction, err := s.transactions.FindByIDForUpdate(ctx, transactionID)
		if err != nil {
			return mapStoreErr(err, "transaction not found")
		}
		if transaction.Status != models.TransactionStatusPending {
			return dErrors.New(dErrors.CodeInvalidState,
				fmt.Sprintf("transaction is %s, only pending transactions can be rejected", transaction.Status))
		}
		return mapStoreErr(
			s.transactions.UpdateStatus(ctx, transactionID, models.TransactionStatusRejected,
				agentID, requestcontext.Now(ctx)),
			"transaction not found")
	})
	if err != nil {
		return err
	}

	s.metrics.RecordRejection()
	s.emit(ctx, audit.Event{
		Action:        audit.ActionTransactionRejected,
		TransactionID: transactionID,
		AgentID:       agentID,
		Outcome:       "rejected",
		Detail:        reason,
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, event)
}

func (s *Service) notify(ctx context.Context, deliveries []notification.Delivery) {
	if s.notifier == nil || len(deliveries) == 0 {
		return
	}
	if err := s.notifier.TransferApproved(ctx, deliveries); err != nil {
		s.logger.WarnContext(ctx, "beneficiary notification failed", "error", err)
	}
}

func approvalDetail(result approvalResult) string {
	if result.subdivided {
		return fmt.Sprintf("subdivided into %d parcels", len(result.deliveries))
	}
	return "ownership transferred"
}

// mapStoreErr translates store sentinels into coded domain errors.
func mapStoreErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "record already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
