package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
	"github.com/abbaskhatri/bynkbook/internal/usecase/mocks"
)

type matchFixture struct {
	uc        *usecase.MatchGroupUseCase
	bankRepo  *mocks.FakeBankTransactionRepository
	entryRepo *mocks.FakeEntryRepository
	matchRepo *mocks.FakeMatchGroupRepository
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	f := &matchFixture{
		bankRepo:  mocks.NewFakeBankTransactionRepository(),
		entryRepo: mocks.NewFakeEntryRepository(),
		matchRepo: mocks.NewFakeMatchGroupRepository(),
	}
	f.uc = usecase.NewMatchGroupUseCase(
		mocks.NewFakeTransactionManager(),
		f.matchRepo, f.bankRepo, f.entryRepo,
		mocks.NewFakeIDGenerator(),
	)

	posted := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	f.bankRepo.Seed(
		&domain.BankTransaction{ID: "b1", BusinessID: "biz-1", AccountID: "acc-1", PostedAt: posted, Description: "POS OFFICE DEPOT", Amount: -7500},
		&domain.BankTransaction{ID: "b2", BusinessID: "biz-1", AccountID: "acc-1", PostedAt: posted, Description: "ACH PAYROLL", Amount: 250000},
	)
	f.entryRepo.Seed(
		&domain.Entry{ID: "e1", BusinessID: "biz-1", AccountID: "acc-1", Date: posted, Payee: "Office Depot", Amount: -5000, Type: domain.EntryTypeExpense},
		&domain.Entry{ID: "e2", BusinessID: "biz-1", AccountID: "acc-1", Date: posted, Payee: "Office Depot", Amount: -2500, Type: domain.EntryTypeExpense},
		&domain.Entry{ID: "e3", BusinessID: "biz-1", AccountID: "acc-1", Date: posted, Payee: "Payroll", Amount: 250000, Type: domain.EntryTypeIncome},
	)
	return f
}

func (f *matchFixture) createGroups(t *testing.T, proposals ...usecase.GroupProposal) []usecase.GroupResult {
	t.Helper()
	return f.uc.CreateGroups(context.Background(), usecase.CreateGroupsInput{
		BusinessID: "biz-1",
		AccountID:  "acc-1",
		CreatedBy:  "user-1",
		Proposals:  proposals,
	})
}

func TestMatchGroupUseCase_CreateGroup(t *testing.T) {
	f := newMatchFixture(t)

	results := f.createGroups(t, usecase.GroupProposal{
		BankTransactionIDs: []string{"b1"},
		EntryIDs:           []string{"e1", "e2"},
	})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("unexpected error: %v", results[0].Err)
	}

	g := results[0].Group
	if g.Status != domain.MatchGroupActive {
		t.Errorf("status = %q", g.Status)
	}
	if g.BankAbsCents() != 7500 || g.EntryAbsCents() != 7500 {
		t.Errorf("sides = %d / %d", g.BankAbsCents(), g.EntryAbsCents())
	}
	if g.CreatedBy != "user-1" {
		t.Errorf("created by = %q", g.CreatedBy)
	}
}

func TestMatchGroupUseCase_CreateGroupRejections(t *testing.T) {
	f := newMatchFixture(t)

	tests := []struct {
		name     string
		proposal usecase.GroupProposal
		wantErr  error
	}{
		{
			name:     "empty sides",
			proposal: usecase.GroupProposal{BankTransactionIDs: []string{"b1"}},
			wantErr:  domain.ErrEmptyProposal,
		},
		{
			name: "unknown bank transaction",
			proposal: usecase.GroupProposal{
				BankTransactionIDs: []string{"b-missing"},
				EntryIDs:           []string{"e1"},
			},
			wantErr: domain.ErrBankTransactionNotFound,
		},
		{
			name: "unknown entry",
			proposal: usecase.GroupProposal{
				BankTransactionIDs: []string{"b1"},
				EntryIDs:           []string{"e-missing"},
			},
			wantErr: domain.ErrEntryNotFound,
		},
		{
			name: "mixed signs",
			proposal: usecase.GroupProposal{
				BankTransactionIDs: []string{"b1"},
				EntryIDs:           []string{"e3"},
			},
			wantErr: domain.ErrMixedSigns,
		},
		{
			name: "nonzero delta",
			proposal: usecase.GroupProposal{
				BankTransactionIDs: []string{"b1"},
				EntryIDs:           []string{"e1"},
			},
			wantErr: domain.ErrUnbalancedProposal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := f.createGroups(t, tt.proposal)
			if !errors.Is(results[0].Err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, results[0].Err)
			}
		})
	}
}

func TestMatchGroupUseCase_BatchIsolation(t *testing.T) {
	f := newMatchFixture(t)

	results := f.createGroups(t,
		usecase.GroupProposal{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1"}}, // unbalanced
		usecase.GroupProposal{BankTransactionIDs: []string{"b2"}, EntryIDs: []string{"e3"}},
	)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !errors.Is(results[0].Err, domain.ErrUnbalancedProposal) {
		t.Errorf("first proposal: expected ErrUnbalancedProposal, got %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("second proposal should succeed, got %v", results[1].Err)
	}
}

func TestMatchGroupUseCase_AtMostOneActiveGroup(t *testing.T) {
	f := newMatchFixture(t)

	first := f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1", "e2"}})
	if first[0].Err != nil {
		t.Fatalf("first group: %v", first[0].Err)
	}

	second := f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1", "e2"}})
	if !errors.Is(second[0].Err, domain.ErrItemAlreadyMatched) {
		t.Errorf("expected ErrItemAlreadyMatched, got %v", second[0].Err)
	}
}

func TestMatchGroupUseCase_VoidAndRematch(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	created := f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1", "e2"}})
	if created[0].Err != nil {
		t.Fatalf("create: %v", created[0].Err)
	}
	firstID := created[0].Group.ID

	voided, err := f.uc.VoidGroup(ctx, usecase.VoidGroupInput{
		GroupID:  firstID,
		VoidedBy: "user-2",
		Reason:   "matched wrong receipt",
	})
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != domain.MatchGroupVoided || voided.VoidedAt == nil {
		t.Fatalf("group not voided: %+v", voided)
	}
	if voided.VoidReason != "matched wrong receipt" {
		t.Errorf("reason = %q", voided.VoidReason)
	}

	// Voiding frees the items; a re-match creates a new group id.
	rematch := f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1", "e2"}})
	if rematch[0].Err != nil {
		t.Fatalf("rematch: %v", rematch[0].Err)
	}
	if rematch[0].Group.ID == firstID {
		t.Error("rematch reused the voided group id")
	}

	stored, _ := f.matchRepo.GetByID(ctx, firstID)
	if stored.Status != domain.MatchGroupVoided {
		t.Error("voided group lost its terminal state")
	}
}

func TestMatchGroupUseCase_VoidRejections(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	created := f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1", "e2"}})
	id := created[0].Group.ID

	if _, err := f.uc.VoidGroup(ctx, usecase.VoidGroupInput{GroupID: id}); !errors.Is(err, domain.ErrVoidReasonRequired) {
		t.Errorf("missing reason: got %v", err)
	}
	if _, err := f.uc.VoidGroup(ctx, usecase.VoidGroupInput{GroupID: "g-missing", Reason: "x"}); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("missing group: got %v", err)
	}

	if _, err := f.uc.VoidGroup(ctx, usecase.VoidGroupInput{GroupID: id, Reason: "first"}); err != nil {
		t.Fatalf("void: %v", err)
	}
	if _, err := f.uc.VoidGroup(ctx, usecase.VoidGroupInput{GroupID: id, Reason: "again"}); !errors.Is(err, domain.ErrGroupAlreadyVoided) {
		t.Errorf("double void: got %v", err)
	}
}

func TestMatchGroupUseCase_MatchState(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	state, err := f.uc.MatchState(ctx, "biz-1", "acc-1", "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.MatchedCents != 0 || state.RemainingCents != 7500 {
		t.Errorf("unmatched state = %+v", state)
	}

	f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1", "e2"}})

	state, err = f.uc.MatchState(ctx, "biz-1", "acc-1", "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.MatchedCents != 7500 || state.RemainingCents != 0 {
		t.Errorf("state after match = %+v", state)
	}
	if state.GroupID == "" {
		t.Error("matched state missing group id")
	}
}

func TestMatchGroupUseCase_SuggestMatchesExcludesMatched(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b2"}, EntryIDs: []string{"e3"}})

	suggestions, err := f.uc.SuggestMatches(ctx, usecase.SuggestMatchesInput{
		BusinessID:        "biz-1",
		AccountID:         "acc-1",
		BankTransactionID: "b1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range suggestions {
		if s.ID == "e3" {
			t.Error("suggestion includes an actively matched entry")
		}
	}
	if len(suggestions) == 0 {
		t.Error("expected at least one suggestion")
	}
}

type retrierFunc func(ctx context.Context, op func() error) error

func (f retrierFunc) Retry(ctx context.Context, op func() error) error { return f(ctx, op) }

func TestMatchGroupUseCase_WithRetrierWrapsPersistence(t *testing.T) {
	f := newMatchFixture(t)

	calls := 0
	f.uc.WithRetrier(retrierFunc(func(ctx context.Context, op func() error) error {
		calls++
		return op()
	}))

	results := f.createGroups(t, usecase.GroupProposal{
		BankTransactionIDs: []string{"b1"},
		EntryIDs:           []string{"e1", "e2"},
	})
	if results[0].Err != nil {
		t.Fatalf("unexpected error: %v", results[0].Err)
	}
	if calls != 1 {
		t.Errorf("retrier calls = %d, want 1", calls)
	}

	// Validation failures are rejected before any transaction begins.
	calls = 0
	results = f.createGroups(t, usecase.GroupProposal{BankTransactionIDs: []string{"b1"}})
	if !errors.Is(results[0].Err, domain.ErrEmptyProposal) {
		t.Fatalf("err = %v, want ErrEmptyProposal", results[0].Err)
	}
	if calls != 0 {
		t.Errorf("retrier calls = %d, want 0", calls)
	}
}
