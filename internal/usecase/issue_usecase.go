package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// IssueUseCase runs the advisory issue scan across the ledger and
// reconciliation snapshots. Findings never block a write.
type IssueUseCase struct {
	entryRepo    EntryRepository
	bankRepo     BankTransactionRepository
	matchRepo    MatchGroupRepository
	categoryRepo CategoryRepository
	hints        HintStore
	config       domain.IssueConfig
	logger       zerolog.Logger
}

// NewIssueUseCase creates a new IssueUseCase.
func NewIssueUseCase(
	entryRepo EntryRepository,
	bankRepo BankTransactionRepository,
	matchRepo MatchGroupRepository,
	categoryRepo CategoryRepository,
	hints HintStore,
	config domain.IssueConfig,
	logger zerolog.Logger,
) *IssueUseCase {
	return &IssueUseCase{
		entryRepo:    entryRepo,
		bankRepo:     bankRepo,
		matchRepo:    matchRepo,
		categoryRepo: categoryRepo,
		hints:        hints,
		config:       config,
		logger:       logger,
	}
}

// ScanInput represents input for an issue scan.
type ScanInput struct {
	BusinessID string
	AccountID  string
	// AsOf overrides the reference clock; nil means now.
	AsOf *time.Time
}

// ScanResult aggregates one scan's findings.
type ScanResult struct {
	Ledger         domain.LedgerIssues
	Reconciliation domain.ReconciliationIssues
	AttentionCount int
	ScannedAt      time.Time
}

// Scan derives all findings from the current snapshot and records the
// scan timestamp and attention badge in the hint store. Hint persistence
// is best-effort: a failed write is logged and the scan still succeeds.
func (uc *IssueUseCase) Scan(ctx context.Context, input ScanInput) (*ScanResult, error) {
	asOf := time.Now().UTC()
	if input.AsOf != nil {
		asOf = *input.AsOf
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, MaxListLimit, false)
	if err != nil {
		return nil, err
	}
	txns, err := uc.bankRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, nil, nil, MaxListLimit)
	if err != nil {
		return nil, err
	}
	groups, err := uc.matchRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, false)
	if err != nil {
		return nil, err
	}
	categories, err := uc.categoryRepo.ListByBusiness(ctx, input.BusinessID, true)
	if err != nil {
		return nil, err
	}

	loadedBank := make(map[string]bool, len(txns))
	for _, t := range txns {
		loadedBank[t.ID] = true
	}
	loadedEntries := make(map[string]bool, len(entries))
	for _, e := range entries {
		loadedEntries[e.ID] = true
	}

	result := &ScanResult{
		Ledger: domain.DetectLedgerIssues(entries, domain.CategoryNameMap(categories), asOf, uc.config),
		Reconciliation: domain.DetectReconciliationIssues(
			groups, loadedBank, loadedEntries, uc.config,
		),
		ScannedAt: asOf,
	}
	result.AttentionCount = result.Ledger.Count() +
		len(result.Reconciliation.NotInView) +
		len(result.Reconciliation.RevertHeavy)

	if err := uc.hints.SetLastScan(ctx, input.BusinessID, input.AccountID, asOf); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to persist last-scan hint")
	}
	if err := uc.hints.SetAttentionCount(ctx, input.BusinessID, input.AccountID, result.AttentionCount); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to persist attention-count hint")
	}

	return result, nil
}

// LastScan returns the last recorded scan timestamp and attention count.
// Absent hints are not an error; the caller gets zero values.
func (uc *IssueUseCase) LastScan(ctx context.Context, businessID, accountID string) (*time.Time, int, error) {
	at, err := uc.hints.GetLastScan(ctx, businessID, accountID)
	if err != nil {
		return nil, 0, err
	}
	count, err := uc.hints.GetAttentionCount(ctx, businessID, accountID)
	if err != nil {
		return nil, 0, err
	}
	return at, count, nil
}
