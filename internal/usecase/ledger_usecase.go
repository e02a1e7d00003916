package usecase

import (
	"context"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// LedgerUseCase assembles the display-ready ledger view: entries joined
// with running balances, issue flags and match status.
type LedgerUseCase struct {
	accountRepo  AccountRepository
	entryRepo    EntryRepository
	categoryRepo CategoryRepository
	matchRepo    MatchGroupRepository
	issueConfig  domain.IssueConfig
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	categoryRepo CategoryRepository,
	matchRepo MatchGroupRepository,
	issueConfig domain.IssueConfig,
) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo:  accountRepo,
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		matchRepo:    matchRepo,
		issueConfig:  issueConfig,
	}
}

// RowViewModel is the display projection of one entry. BalanceCents is
// nil for soft-deleted rows, rendered as a placeholder dash.
type RowViewModel struct {
	Entry           *domain.Entry
	BalanceCents    *int64
	CategoryLabel   string
	Matched         bool
	Duplicate       bool
	StaleCheck      bool
	MissingCategory bool
}

// LedgerView is the assembled ledger page data.
type LedgerView struct {
	Rows          []RowViewModel
	InflowCents   int64
	OutflowCents  int64
	NetCents      int64
	IssueCount    int
	OpeningAmount int64
}

// LedgerViewInput represents input for building the ledger view.
type LedgerViewInput struct {
	BusinessID     string
	AccountID      string
	Limit          int
	IncludeDeleted bool
	// AsOf overrides the reference clock for stale-check detection.
	AsOf *time.Time
}

// BuildView fetches the entry snapshot and recomputes every derived
// value: the synthetic anchor is injected when the persisted set has no
// real one, the running balance walked, issue flags derived and rows
// ordered for display. All derivation is pure; the caller decides when
// inputs changed.
func (uc *LedgerUseCase) BuildView(ctx context.Context, input LedgerViewInput) (*LedgerView, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	// Balances and issue flags are derived from the full entry set; the
	// limit caps only the rows returned for display. Walking a page
	// would drop older amounts from every balance on it.
	entries, err := uc.entryRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, 0, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	if !domain.HasOpeningAnchor(entries) {
		entries = append(entries, domain.SyntheticOpeningEntry(
			input.BusinessID, input.AccountID,
			account.OpeningBalanceCents, account.OpeningBalanceDate,
		))
	}

	categories, err := uc.categoryRepo.ListByBusiness(ctx, input.BusinessID, true)
	if err != nil {
		return nil, err
	}
	categoryNames := domain.CategoryNameMap(categories)

	activeGroups, err := uc.matchRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, true)
	if err != nil {
		return nil, err
	}
	matchedEntries := make(map[string]bool)
	for _, g := range activeGroups {
		for _, r := range g.Entries {
			matchedEntries[r.EntryID] = true
		}
	}

	asOf := time.Now().UTC()
	if input.AsOf != nil {
		asOf = *input.AsOf
	}

	balances := domain.ComputeRunningBalances(entries)
	issues := domain.DetectLedgerIssues(entries, categoryNames, asOf, uc.issueConfig)

	domain.SortForDisplay(entries)

	display := entries
	if len(display) > limit {
		display = display[:limit]
	}

	view := &LedgerView{
		Rows:          make([]RowViewModel, 0, len(display)),
		IssueCount:    issues.Count(),
		OpeningAmount: account.OpeningBalanceCents,
	}

	for _, e := range display {
		row := RowViewModel{
			Entry:           e,
			CategoryLabel:   e.CategoryLabel(categoryNames),
			Matched:         matchedEntries[e.ID],
			Duplicate:       issues.Duplicates[e.ID],
			StaleCheck:      issues.StaleChecks[e.ID],
			MissingCategory: issues.MissingCategory[e.ID],
		}
		if b, ok := balances[e.ID]; ok {
			bal := b
			row.BalanceCents = &bal
		}
		view.Rows = append(view.Rows, row)
	}

	for _, e := range entries {
		if e.IsDeleted() || e.IsOpeningAnchor() {
			continue
		}
		if e.Amount >= 0 {
			view.InflowCents += e.Amount
		} else {
			view.OutflowCents += e.Amount
		}
	}
	view.NetCents = view.InflowCents + view.OutflowCents

	return view, nil
}
