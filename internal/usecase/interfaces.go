package usecase

import (
	"context"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*domain.Account, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
	SoftDelete(ctx context.Context, tx Transaction, id string, at time.Time) error
	Restore(ctx context.Context, tx Transaction, id string) error
	HardDelete(ctx context.Context, tx Transaction, id string) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Entry, error)
	GetByTransfer(ctx context.Context, transferID string) ([]*domain.Entry, error)
	ListByAccount(ctx context.Context, businessID, accountID string, limit int, includeDeleted bool) ([]*domain.Entry, error)
}

// BankTransactionRepository defines data access for bank transactions.
// Records are immutable; there are no write operations beyond ingestion.
type BankTransactionRepository interface {
	Insert(ctx context.Context, txn *domain.BankTransaction) error
	GetByID(ctx context.Context, id string) (*domain.BankTransaction, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.BankTransaction, error)
	ListByAccount(ctx context.Context, businessID, accountID string, from, to *time.Time, limit int) ([]*domain.BankTransaction, error)
}

// MatchGroupRepository defines data access for match groups. Groups are
// never hard-deleted; Void is the only mutation after creation.
type MatchGroupRepository interface {
	Create(ctx context.Context, tx Transaction, group *domain.MatchGroup) error
	GetByID(ctx context.Context, id string) (*domain.MatchGroup, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.MatchGroup, error)
	ListByAccount(ctx context.Context, businessID, accountID string, activeOnly bool) ([]*domain.MatchGroup, error)
	// ActiveReferencing returns active groups referencing any of the given
	// item ids, locking them for the duration of the transaction so the
	// at-most-one-active-group check cannot race concurrent creations.
	ActiveReferencing(ctx context.Context, tx Transaction, bankTxnIDs, entryIDs []string) ([]*domain.MatchGroup, error)
	Void(ctx context.Context, tx Transaction, id string, at time.Time, by, reason string) error
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	ListByBusiness(ctx context.Context, businessID string, includeArchived bool) ([]*domain.Category, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// HintStore persists best-effort UX hints: last issue-scan timestamps and
// attention-count badges per (business, account). Hints are never
// correctness-bearing; callers tolerate every failure.
type HintStore interface {
	SetLastScan(ctx context.Context, businessID, accountID string, at time.Time) error
	GetLastScan(ctx context.Context, businessID, accountID string) (*time.Time, error)
	SetAttentionCount(ctx context.Context, businessID, accountID string, count int) error
	GetAttentionCount(ctx context.Context, businessID, accountID string) (int, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
