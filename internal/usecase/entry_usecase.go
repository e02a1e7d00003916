package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// EntryUseCase handles ledger entry business logic.
type EntryUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
	}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	BusinessID     string
	AccountID      string
	Limit          int
	IncludeDeleted bool
}

// ListEntries lists entries for an account.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultListLimit
	}
	if input.Limit > MaxListLimit {
		input.Limit = MaxListLimit
	}

	return uc.entryRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, input.Limit, input.IncludeDeleted)
}

// GetEntry retrieves a single entry.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// CreateEntryInput represents input for creating an entry.
type CreateEntryInput struct {
	BusinessID  string
	AccountID   string
	Date        time.Time
	Payee       string
	Memo        string
	CategoryID  string
	AmountCents int64
	Type        domain.EntryType
	Method      domain.PaymentMethod
	Status      string
	Vendor      *domain.VendorLink
}

// CreateEntry validates and creates a new entry. The amount is normalized
// to the type's sign convention: EXPENSE stored non-positive, INCOME
// non-negative, ADJUSTMENT kept as supplied.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	if strings.TrimSpace(input.Payee) == "" {
		return nil, domain.ErrPayeeRequired
	}
	if input.AmountCents == 0 {
		return nil, domain.ErrZeroAmount
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateWritable(input.Date); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.Entry{
		ID:         uc.idGen.Generate(),
		BusinessID: input.BusinessID,
		AccountID:  input.AccountID,
		Date:       domain.DateOnly(input.Date),
		Payee:      strings.TrimSpace(input.Payee),
		Memo:       input.Memo,
		CategoryID: input.CategoryID,
		Amount:     normalizeAmountSign(input.AmountCents, input.Type),
		Type:       input.Type,
		Method:     input.Method,
		Status:     input.Status,
		Vendor:     input.Vendor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if entry.Status == "" {
		entry.Status = domain.StatusPosted
	}
	if err := entry.ValidateSign(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// UpdateEntryInput represents a partial update. Nil fields are untouched.
type UpdateEntryInput struct {
	ID          string
	Date        *time.Time
	Payee       *string
	Memo        *string
	CategoryID  *string
	AmountCents *int64
	Method      *domain.PaymentMethod
	Status      *string
}

// UpdateEntry applies a partial field set to an existing entry. The
// synthetic anchor and pending entries refuse mutation.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, input UpdateEntryInput) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := entry.ValidateMutable(); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, entry.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateWritable(entry.Date); err != nil {
		return nil, err
	}

	if input.Date != nil {
		if err := account.ValidateWritable(*input.Date); err != nil {
			return nil, err
		}
		entry.Date = domain.DateOnly(*input.Date)
	}
	if input.Payee != nil {
		if strings.TrimSpace(*input.Payee) == "" {
			return nil, domain.ErrPayeeRequired
		}
		entry.Payee = strings.TrimSpace(*input.Payee)
	}
	if input.Memo != nil {
		entry.Memo = *input.Memo
	}
	if input.CategoryID != nil {
		entry.CategoryID = *input.CategoryID
	}
	if input.AmountCents != nil {
		if *input.AmountCents == 0 {
			return nil, domain.ErrZeroAmount
		}
		entry.Amount = normalizeAmountSign(*input.AmountCents, entry.Type)
	}
	if input.Method != nil {
		entry.Method = *input.Method
	}
	if input.Status != nil {
		entry.Status = *input.Status
	}

	if err := entry.ValidateSign(); err != nil {
		return nil, err
	}
	entry.UpdatedAt = time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// SoftDeleteEntry marks an entry deleted; the operation is reversible via
// RestoreEntry. Transfer legs are deleted together through the transfer
// operations, never individually here.
func (uc *EntryUseCase) SoftDeleteEntry(ctx context.Context, id string) error {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := entry.ValidateMutable(); err != nil {
		return err
	}
	if entry.Transfer != nil {
		return domain.ErrTransferLegMissing
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.SoftDelete(ctx, tx, id, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RestoreEntry clears an entry's deleted-at marker.
func (uc *EntryUseCase) RestoreEntry(ctx context.Context, id string) error {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !entry.IsDeleted() {
		return domain.ErrNotDeleted
	}
	if entry.Transfer != nil {
		return domain.ErrTransferLegMissing
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Restore(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// HardDeleteEntry permanently removes a soft-deleted entry. Only entries
// already in the deleted view may be hard-deleted; the operation is
// irreversible.
func (uc *EntryUseCase) HardDeleteEntry(ctx context.Context, id string) error {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !entry.IsDeleted() {
		return domain.ErrNotDeleted
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.HardDelete(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DuplicateEntry creates a copy of an existing entry with a fresh id and
// timestamps. Pending and synthetic entries cannot be duplicated.
func (uc *EntryUseCase) DuplicateEntry(ctx context.Context, id string) (*domain.Entry, error) {
	src, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := src.ValidateMutable(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dup := *src
	dup.ID = uc.idGen.Generate()
	dup.Transfer = nil // a duplicated transfer leg becomes a plain entry
	dup.DeletedAt = nil
	dup.CreatedAt = now
	dup.UpdatedAt = now
	if dup.Type == domain.EntryTypeTransfer {
		dup.Type = domain.EntryTypeAdjustment
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Create(ctx, tx, &dup); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &dup, nil
}

// normalizeAmountSign forces the stored sign convention per entry type.
// ADJUSTMENT is an override mechanism and keeps the supplied sign, as does
// TRANSFER whose sign is relative to the owning account.
func normalizeAmountSign(cents int64, typ domain.EntryType) int64 {
	abs := cents
	if abs < 0 {
		abs = -abs
	}
	switch typ {
	case domain.EntryTypeExpense:
		return -abs
	case domain.EntryTypeIncome:
		return abs
	default:
		return cents
	}
}
