package usecase

import (
	"context"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// MatchGroupUseCase handles the reconciliation match-group lifecycle.
type MatchGroupUseCase struct {
	txManager TransactionManager
	retrier   Retrier
	matchRepo MatchGroupRepository
	bankRepo  BankTransactionRepository
	entryRepo EntryRepository
	idGen     IDGenerator
}

// NewMatchGroupUseCase creates a new MatchGroupUseCase.
func NewMatchGroupUseCase(
	txManager TransactionManager,
	matchRepo MatchGroupRepository,
	bankRepo BankTransactionRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
) *MatchGroupUseCase {
	return &MatchGroupUseCase{
		txManager: txManager,
		matchRepo: matchRepo,
		bankRepo:  bankRepo,
		entryRepo: entryRepo,
		idGen:     idGen,
	}
}

// WithRetrier wraps the transactional section of group creation in a
// retry loop. Concurrent matching against the same items takes row
// locks in arbitrary order, so deadlocks are expected under load.
func (uc *MatchGroupUseCase) WithRetrier(r Retrier) *MatchGroupUseCase {
	uc.retrier = r
	return uc
}

// GroupProposal is one candidate group in a batch: the selected ids only.
// Amounts are always resolved from the stored records, never trusted from
// the client.
type GroupProposal struct {
	BankTransactionIDs []string
	EntryIDs           []string
}

// CreateGroupsInput represents a batch of independent proposals.
type CreateGroupsInput struct {
	BusinessID string
	AccountID  string
	CreatedBy  string
	Proposals  []GroupProposal
}

// GroupResult reports the outcome for one proposal in a batch.
type GroupResult struct {
	Group *domain.MatchGroup
	Err   error
}

// CreateGroups validates and persists each proposal independently. A
// malformed proposal never aborts its siblings; the result carries
// per-proposal success or failure.
func (uc *MatchGroupUseCase) CreateGroups(ctx context.Context, input CreateGroupsInput) []GroupResult {
	results := make([]GroupResult, len(input.Proposals))
	for i, p := range input.Proposals {
		group, err := uc.createGroup(ctx, input, p)
		results[i] = GroupResult{Group: group, Err: err}
	}
	return results
}

// createGroup validates one proposal and persists it atomically. The
// zero-delta check is always re-run here regardless of any client-side
// gating, and the at-most-one-active check holds row locks until commit.
func (uc *MatchGroupUseCase) createGroup(ctx context.Context, input CreateGroupsInput, p GroupProposal) (*domain.MatchGroup, error) {
	if len(p.BankTransactionIDs) == 0 || len(p.EntryIDs) == 0 {
		return nil, domain.ErrEmptyProposal
	}

	bankTxns, err := uc.bankRepo.GetByIDs(ctx, p.BankTransactionIDs)
	if err != nil {
		return nil, err
	}
	if len(bankTxns) != len(p.BankTransactionIDs) {
		return nil, domain.ErrBankTransactionNotFound
	}

	entries, err := uc.entryRepo.GetByIDs(ctx, p.EntryIDs)
	if err != nil {
		return nil, err
	}
	if len(entries) != len(p.EntryIDs) {
		return nil, domain.ErrEntryNotFound
	}

	proposal := domain.Proposal{
		BankTxns: make([]domain.BankTxnRef, len(bankTxns)),
		Entries:  make([]domain.EntryRef, len(entries)),
	}
	for i, t := range bankTxns {
		proposal.BankTxns[i] = domain.BankTxnRef{BankTransactionID: t.ID, AmountCents: t.Amount}
	}
	for i, e := range entries {
		if e.IsDeleted() {
			return nil, domain.ErrEntryNotFound
		}
		proposal.Entries[i] = domain.EntryRef{EntryID: e.ID, AmountCents: e.Amount}
	}

	if err := proposal.Validate(); err != nil {
		return nil, err
	}

	var group *domain.MatchGroup
	persist := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		conflicts, err := uc.matchRepo.ActiveReferencing(ctx, tx, p.BankTransactionIDs, p.EntryIDs)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return domain.ErrItemAlreadyMatched
		}

		group = &domain.MatchGroup{
			ID:         uc.idGen.Generate(),
			BusinessID: input.BusinessID,
			AccountID:  input.AccountID,
			Status:     domain.MatchGroupActive,
			BankTxns:   proposal.BankTxns,
			Entries:    proposal.Entries,
			CreatedAt:  time.Now().UTC(),
			CreatedBy:  input.CreatedBy,
		}

		if err := uc.matchRepo.Create(ctx, tx, group); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, persist)
	} else {
		err = persist()
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

// VoidGroupInput represents a void request.
type VoidGroupInput struct {
	GroupID  string
	VoidedBy string
	Reason   string
}

// VoidGroup marks a group VOIDED, freeing every referenced item for a new
// active group. The state is terminal; re-matching the same items
// produces a new group id, never a reactivation.
func (uc *MatchGroupUseCase) VoidGroup(ctx context.Context, input VoidGroupInput) (*domain.MatchGroup, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	group, err := uc.matchRepo.GetByIDForUpdate(ctx, tx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if err := group.ValidateVoid(input.Reason); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.matchRepo.Void(ctx, tx, group.ID, now, input.VoidedBy, input.Reason); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	group.Status = domain.MatchGroupVoided
	group.VoidedAt = &now
	group.VoidedBy = input.VoidedBy
	group.VoidReason = input.Reason

	return group, nil
}

// ListGroupsInput represents input for listing match groups.
type ListGroupsInput struct {
	BusinessID string
	AccountID  string
	ActiveOnly bool
}

// ListGroups lists match groups for an account.
func (uc *MatchGroupUseCase) ListGroups(ctx context.Context, input ListGroupsInput) ([]*domain.MatchGroup, error) {
	return uc.matchRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, input.ActiveOnly)
}

// MatchState derives the matched/remaining amount for one bank
// transaction from the account's active groups.
func (uc *MatchGroupUseCase) MatchState(ctx context.Context, businessID, accountID, bankTransactionID string) (domain.MatchState, error) {
	txn, err := uc.bankRepo.GetByID(ctx, bankTransactionID)
	if err != nil {
		return domain.MatchState{}, err
	}

	groups, err := uc.matchRepo.ListByAccount(ctx, businessID, accountID, true)
	if err != nil {
		return domain.MatchState{}, err
	}

	return domain.MatchStateFor(txn, groups), nil
}

// SuggestMatchesInput represents input for proposal seeding.
type SuggestMatchesInput struct {
	BusinessID        string
	AccountID         string
	BankTransactionID string
	Limit             int
}

// SuggestMatches ranks unmatched entries as best-guess counterparts for a
// bank transaction. Best-effort UX only: nothing is submitted and the
// user must still confirm.
func (uc *MatchGroupUseCase) SuggestMatches(ctx context.Context, input SuggestMatchesInput) ([]*domain.Entry, error) {
	txn, err := uc.bankRepo.GetByID(ctx, input.BankTransactionID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, MaxListLimit, false)
	if err != nil {
		return nil, err
	}

	groups, err := uc.matchRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, true)
	if err != nil {
		return nil, err
	}

	matched := make(map[string]bool)
	for _, g := range groups {
		for _, r := range g.Entries {
			matched[r.EntryID] = true
		}
	}

	candidates := make([]*domain.Entry, 0, len(entries))
	for _, e := range entries {
		if !matched[e.ID] {
			candidates = append(candidates, e)
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	return domain.SuggestCounterparts(txn, candidates, limit), nil
}
