package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// TransferUseCase handles transfer pairs. A transfer always has two legs,
// one per account, and every operation covers both legs inside a single
// database transaction so partial application cannot happen.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
	}
}

// CreateTransferInput represents input for creating a transfer pair.
// AmountCents is the magnitude moved; the out leg is stored negative and
// the in leg positive, each signed relative to its owning account.
type CreateTransferInput struct {
	BusinessID    string
	FromAccountID string
	ToAccountID   string
	AmountCents   int64
	Date          time.Time
	Memo          string
}

// CreateTransfer creates both legs of a transfer atomically.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) ([]*domain.Entry, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrTransferLegMissing
	}
	if input.AmountCents == 0 {
		return nil, domain.ErrZeroAmount
	}

	from, err := uc.accountRepo.GetByID(ctx, input.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := uc.accountRepo.GetByID(ctx, input.ToAccountID)
	if err != nil {
		return nil, err
	}
	if err := from.ValidateWritable(input.Date); err != nil {
		return nil, err
	}
	if err := to.ValidateWritable(input.Date); err != nil {
		return nil, err
	}

	abs := input.AmountCents
	if abs < 0 {
		abs = -abs
	}

	now := time.Now().UTC()
	day := domain.DateOnly(input.Date)
	transferID := uc.idGen.Generate()

	outLeg := &domain.Entry{
		ID:         uc.idGen.Generate(),
		BusinessID: input.BusinessID,
		AccountID:  from.ID,
		Date:       day,
		Payee:      "Transfer to " + to.Name,
		Memo:       input.Memo,
		Amount:     -abs,
		Type:       domain.EntryTypeTransfer,
		Status:     domain.StatusPosted,
		Transfer: &domain.TransferLink{
			TransferID:         transferID,
			CounterAccountName: to.Name,
			Direction:          domain.TransferOut,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	inLeg := &domain.Entry{
		ID:         uc.idGen.Generate(),
		BusinessID: input.BusinessID,
		AccountID:  to.ID,
		Date:       day,
		Payee:      "Transfer from " + from.Name,
		Memo:       input.Memo,
		Amount:     abs,
		Type:       domain.EntryTypeTransfer,
		Status:     domain.StatusPosted,
		Transfer: &domain.TransferLink{
			TransferID:         transferID,
			CounterAccountName: from.Name,
			Direction:          domain.TransferIn,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Create(ctx, tx, outLeg); err != nil {
		return nil, err
	}
	if err := uc.entryRepo.Create(ctx, tx, inLeg); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return []*domain.Entry{outLeg, inLeg}, nil
}

// UpdateTransferInput updates both legs of a transfer. A nil field is
// untouched; an amount change re-signs each leg by its direction.
type UpdateTransferInput struct {
	TransferID  string
	Date        *time.Time
	Memo        *string
	AmountCents *int64
}

// UpdateTransfer mutates both legs atomically.
func (uc *TransferUseCase) UpdateTransfer(ctx context.Context, input UpdateTransferInput) ([]*domain.Entry, error) {
	legs, err := uc.transferLegs(ctx, input.TransferID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, leg := range legs {
		if err := leg.ValidateMutable(); err != nil {
			return nil, err
		}
		if input.Date != nil {
			leg.Date = domain.DateOnly(*input.Date)
		}
		if input.Memo != nil {
			leg.Memo = *input.Memo
		}
		if input.AmountCents != nil {
			if *input.AmountCents == 0 {
				return nil, domain.ErrZeroAmount
			}
			abs := *input.AmountCents
			if abs < 0 {
				abs = -abs
			}
			if leg.Transfer.Direction == domain.TransferOut {
				leg.Amount = -abs
			} else {
				leg.Amount = abs
			}
		}
		leg.UpdatedAt = now
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, leg := range legs {
		if err := uc.entryRepo.Update(ctx, tx, leg); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return legs, nil
}

// SoftDeleteTransfer soft-deletes both legs atomically.
func (uc *TransferUseCase) SoftDeleteTransfer(ctx context.Context, transferID string) error {
	legs, err := uc.transferLegs(ctx, transferID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, leg := range legs {
		if err := leg.ValidateMutable(); err != nil {
			return err
		}
		if err := uc.entryRepo.SoftDelete(ctx, tx, leg.ID, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// RestoreTransfer restores both legs atomically.
func (uc *TransferUseCase) RestoreTransfer(ctx context.Context, transferID string) error {
	legs, err := uc.transferLegs(ctx, transferID)
	if err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, leg := range legs {
		if !leg.IsDeleted() {
			return domain.ErrNotDeleted
		}
		if err := uc.entryRepo.Restore(ctx, tx, leg.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// transferLegs loads and sanity-checks both legs of a transfer.
func (uc *TransferUseCase) transferLegs(ctx context.Context, transferID string) ([]*domain.Entry, error) {
	if strings.TrimSpace(transferID) == "" {
		return nil, domain.ErrEntryNotFound
	}

	legs, err := uc.entryRepo.GetByTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if len(legs) != 2 {
		return nil, domain.ErrTransferLegMissing
	}

	return legs, nil
}
