package service

import (
	"context"
	"fmt"
	"strings"

	"foncier/internal/audit"
	"foncier/internal/registry/heirs"
	"foncier/internal/registry/models"
	"foncier/internal/registry/parcelnum"
	dErrors "foncier/pkg/domain-errors"
	"foncier/pkg/requestcontext"
)

// CreateTransaction records a new pending transfer request. For subdivision
// payloads every heir reference is resolved against the citizen registry and
// a human-readable heir list is appended to the notes as display text; the
// payload stays the source of truth.
func (s *Service) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	if err := transaction.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid transaction")
	}

	if _, err := s.parcels.FindByID(ctx, transaction.ParcelID); err != nil {
		return mapStoreErr(err, "parcel not found")
	}

	if transaction.Payload != nil && transaction.Payload.Kind == models.PayloadKindSubdivision {
		lines, err := s.heirDisplayLines(ctx, transaction.Payload.Heirs)
		if err != nil {
			return err
		}
		transaction.Notes = appendLines(transaction.Notes, lines)
	} else if transaction.NewOwnerID > 0 {
		if _, err := s.citizens.FindByID(ctx, transaction.NewOwnerID); err != nil {
			return mapStoreErr(err, "new owner not found")
		}
	}

	transaction.Status = models.TransactionStatusPending
	if transaction.Date.IsZero() {
		transaction.Date = requestcontext.Now(ctx)
	}

	if err := s.transactions.Create(ctx, transaction); err != nil {
		return mapStoreErr(err, "transaction not found")
	}

	s.metrics.RecordTransactionCreated()
	s.emit(ctx, audit.Event{
		Action:        audit.ActionTransactionCreated,
		TransactionID: transaction.ID,
		ParcelID:      transaction.ParcelID,
		Detail:        string(transaction.Type),
	})
	return nil
}

// heirDisplayLines renders the legacy-style heir list for the notes field,
// resolving each heir's name. Unknown heirs reject the whole request.
func (s *Service) heirDisplayLines(ctx context.Context, heirIDs []int64) ([]string, error) {
	lines := make([]string, 0, len(heirIDs)+1)
	lines = append(lines, fmt.Sprintf("%s - %d heirs:", models.DivisionMarker, len(heirIDs)))
	for i, heirID := range heirIDs {
		citizen, err := s.citizens.FindByID(ctx, heirID)
		if err != nil {
			return nil, mapStoreErr(err, fmt.Sprintf("heir citizen %d not found", heirID))
		}
		lines = append(lines, heirs.FormatLine(i+1, citizen.FullName(), heirID))
	}
	return lines, nil
}

func appendLines(notes string, lines []string) string {
	block := strings.Join(lines, "\n")
	if notes == "" {
		return block
	}
	return notes + "\n" + block
}

// RegisterParcel inserts a new parcel. When no number is supplied one is
// allocated from the per-(region, year) sequence counter.
func (s *Service) RegisterParcel(ctx context.Context, parcel *models.Parcel) error {
	if parcel.Status == "" {
		parcel.Status = models.ParcelStatusAvailable
	}

	if parcel.Number == "" {
		code := parcelnum.CodeForRegion(parcel.Region)
		year := requestcontext.Now(ctx).Year()
		seq, err := s.sequences.Next(ctx, code, year)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "allocate parcel number")
		}
		parcel.Number = parcelnum.Format(code, year, seq)
	}

	if err := parcel.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid parcel")
	}
	if err := s.parcels.Create(ctx, parcel); err != nil {
		return mapStoreErr(err, "parcel not found")
	}

	s.metrics.RecordParcelRegistered()
	s.emit(ctx, audit.Event{
		Action:   audit.ActionParcelRegistered,
		ParcelID: parcel.ID,
		Detail:   parcel.Number,
	})
	return nil
}

// BackfillSequence raises the (region, year) counter to the highest sequence
// already present among stored parcel numbers. Run once when adopting the
// counter over a registry populated by the legacy max-scan allocation, so the
// counter never re-issues a number.
func (s *Service) BackfillSequence(ctx context.Context, regionCode string, year int) error {
	code := strings.ToUpper(regionCode)
	prefix := fmt.Sprintf("%s-%04d-", code, year)
	numbers, err := s.parcels.ListNumbersByPrefix(ctx, prefix)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "scan parcel numbers")
	}
	next := parcelnum.NextFromScan(numbers, code, year)
	if next <= 1 {
		return nil
	}
	if err := s.sequences.Ensure(ctx, code, year, next-1); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "raise sequence counter")
	}
	return nil
}

// GetParcel returns one parcel by ID.
func (s *Service) GetParcel(ctx context.Context, id int64) (*models.Parcel, error) {
	parcel, err := s.parcels.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "parcel not found")
	}
	return parcel, nil
}

// GetParcelByNumber returns one parcel by its registry number.
func (s *Service) GetParcelByNumber(ctx context.Context, number string) (*models.Parcel, error) {
	parcel, err := s.parcels.FindByNumber(ctx, number)
	if err != nil {
		return nil, mapStoreErr(err, "parcel not found")
	}
	return parcel, nil
}

// ListParcels returns all parcels.
func (s *Service) ListParcels(ctx context.Context) ([]*models.Parcel, error) {
	parcels, err := s.parcels.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list parcels")
	}
	return parcels, nil
}

// GetTransaction returns one transaction by ID.
func (s *Service) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	transaction, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "transaction not found")
	}
	return transaction, nil
}

// ListTransactionsByStatus returns transactions in one lifecycle state,
// typically pending for the approval queue.
func (s *Service) ListTransactionsByStatus(ctx context.Context, status models.TransactionStatus) ([]*models.Transaction, error) {
	transactions, err := s.transactions.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list transactions")
	}
	return transactions, nil
}

// RegisterCitizen records a citizen so they can appear as owner or heir.
func (s *Service) RegisterCitizen(ctx context.Context, citizen *models.Citizen) error {
	if citizen.LastName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "citizen last name is required")
	}
	if err := s.citizens.Create(ctx, citizen); err != nil {
		return mapStoreErr(err, "citizen not found")
	}
	return nil
}
