package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// BankTransactionUseCase handles bank transaction reads and ingestion.
// Records are immutable once stored; reconciliation only ever references
// them.
type BankTransactionUseCase struct {
	bankRepo  BankTransactionRepository
	entryRepo EntryRepository
	txManager TransactionManager
	idGen     IDGenerator
}

// NewBankTransactionUseCase creates a new BankTransactionUseCase.
func NewBankTransactionUseCase(
	bankRepo BankTransactionRepository,
	entryRepo EntryRepository,
	txManager TransactionManager,
	idGen IDGenerator,
) *BankTransactionUseCase {
	return &BankTransactionUseCase{
		bankRepo:  bankRepo,
		entryRepo: entryRepo,
		txManager: txManager,
		idGen:     idGen,
	}
}

// ListBankTransactionsInput represents input for listing bank
// transactions.
type ListBankTransactionsInput struct {
	BusinessID string
	AccountID  string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// ListBankTransactions lists bank transactions for an account, oldest
// first.
func (uc *BankTransactionUseCase) ListBankTransactions(ctx context.Context, input ListBankTransactionsInput) ([]*domain.BankTransaction, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultListLimit
	}
	if input.Limit > MaxListLimit {
		input.Limit = MaxListLimit
	}

	txns, err := uc.bankRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, input.From, input.To, input.Limit)
	if err != nil {
		return nil, err
	}

	domain.SortBankTransactions(txns)
	return txns, nil
}

// IngestBankTransactionInput represents one incoming bank record from a
// feed or CSV upload.
type IngestBankTransactionInput struct {
	BusinessID  string
	AccountID   string
	PostedAt    time.Time
	Description string
	AmountCents int64
	Source      domain.BankTransactionSource
}

// IngestBankTransaction stores a new immutable bank record.
func (uc *BankTransactionUseCase) IngestBankTransaction(ctx context.Context, input IngestBankTransactionInput) (*domain.BankTransaction, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, domain.ErrPayeeRequired
	}
	if input.AmountCents == 0 {
		return nil, domain.ErrZeroAmount
	}

	txn := &domain.BankTransaction{
		ID:          uc.idGen.Generate(),
		BusinessID:  input.BusinessID,
		AccountID:   input.AccountID,
		PostedAt:    domain.DateOnly(input.PostedAt),
		Description: strings.TrimSpace(input.Description),
		Amount:      input.AmountCents,
		Source:      input.Source,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.bankRepo.Insert(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// SpawnEntryInput creates a ledger entry from a bank transaction the
// ledger has no counterpart for.
type SpawnEntryInput struct {
	BankTransactionID string
	CategoryID        string
	Method            domain.PaymentMethod
}

// SpawnEntry creates an entry mirroring a bank transaction: the bank
// record stays untouched, the new entry takes its date, description and
// signed amount.
func (uc *BankTransactionUseCase) SpawnEntry(ctx context.Context, input SpawnEntryInput) (*domain.Entry, error) {
	txn, err := uc.bankRepo.GetByID(ctx, input.BankTransactionID)
	if err != nil {
		return nil, err
	}

	typ := domain.EntryTypeIncome
	if txn.Amount < 0 {
		typ = domain.EntryTypeExpense
	}

	now := time.Now().UTC()
	entry := &domain.Entry{
		ID:         uc.idGen.Generate(),
		BusinessID: txn.BusinessID,
		AccountID:  txn.AccountID,
		Date:       txn.PostedAt,
		Payee:      txn.Description,
		CategoryID: input.CategoryID,
		Amount:     txn.Amount,
		Type:       typ,
		Method:     input.Method,
		Status:     domain.StatusCleared,
		CreatedAt:  now,
		UpdatedAt:  now,
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
