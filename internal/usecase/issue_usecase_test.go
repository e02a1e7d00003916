package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
	"github.com/abbaskhatri/bynkbook/internal/usecase/mocks"
)

type issueFixture struct {
	uc        *usecase.IssueUseCase
	entryRepo *mocks.FakeEntryRepository
	bankRepo  *mocks.FakeBankTransactionRepository
	matchRepo *mocks.FakeMatchGroupRepository
	hints     *mocks.FakeHintStore
}

func newIssueFixture(t *testing.T) *issueFixture {
	t.Helper()

	f := &issueFixture{
		entryRepo: mocks.NewFakeEntryRepository(),
		bankRepo:  mocks.NewFakeBankTransactionRepository(),
		matchRepo: mocks.NewFakeMatchGroupRepository(),
		hints:     mocks.NewFakeHintStore(),
	}
	f.uc = usecase.NewIssueUseCase(
		f.entryRepo, f.bankRepo, f.matchRepo, mocks.NewFakeCategoryRepository(),
		f.hints, domain.DefaultIssueConfig(), zerolog.Nop(),
	)
	return f
}

func TestIssueUseCase_Scan(t *testing.T) {
	f := newIssueFixture(t)
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	f.entryRepo.Seed(
		// Check issued 92 days before asOf: stale.
		&domain.Entry{
			ID: "e1", BusinessID: "biz-1", AccountID: "acc-1",
			Date:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Payee: "Plumber", CategoryID: "cat-1", Amount: -15000,
			Type: domain.EntryTypeExpense, Method: domain.MethodCheck,
		},
		// No category: flagged.
		&domain.Entry{
			ID: "e2", BusinessID: "biz-1", AccountID: "acc-1",
			Date:  time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			Payee: "Mystery", Amount: -2000, Type: domain.EntryTypeExpense,
		},
	)

	// Active group referencing a bank transaction that is not loaded.
	f.matchRepo.Seed(&domain.MatchGroup{
		ID: "g1", BusinessID: "biz-1", AccountID: "acc-1",
		Status:   domain.MatchGroupActive,
		BankTxns: []domain.BankTxnRef{{BankTransactionID: "b-gone", AmountCents: -100}},
		Entries:  []domain.EntryRef{{EntryID: "e1", AmountCents: -100}},
	})

	result, err := f.uc.Scan(context.Background(), usecase.ScanInput{
		BusinessID: "biz-1",
		AccountID:  "acc-1",
		AsOf:       &asOf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Ledger.StaleChecks["e1"] {
		t.Error("stale check not detected")
	}
	if !result.Ledger.MissingCategory["e2"] {
		t.Error("missing category not detected")
	}
	if len(result.Reconciliation.NotInView) != 1 {
		t.Errorf("not-in-view groups = %v", result.Reconciliation.NotInView)
	}
	if result.AttentionCount != result.Ledger.Count()+1 {
		t.Errorf("attention count = %d", result.AttentionCount)
	}
	if !result.ScannedAt.Equal(asOf) {
		t.Errorf("scanned at = %v", result.ScannedAt)
	}

	at, count, err := f.uc.LastScan(context.Background(), "biz-1", "acc-1")
	if err != nil {
		t.Fatalf("last scan: %v", err)
	}
	if at == nil || !at.Equal(asOf) {
		t.Errorf("persisted scan time = %v", at)
	}
	if count != result.AttentionCount {
		t.Errorf("persisted count = %d, want %d", count, result.AttentionCount)
	}
}

func TestIssueUseCase_ScanSurvivesHintFailure(t *testing.T) {
	f := newIssueFixture(t)

	f.hints.SetLastScanFunc = func(ctx context.Context, businessID, accountID string, at time.Time) error {
		return errors.New("redis down")
	}

	result, err := f.uc.Scan(context.Background(), usecase.ScanInput{
		BusinessID: "biz-1",
		AccountID:  "acc-1",
	})
	if err != nil {
		t.Fatalf("scan must tolerate hint store failures, got %v", err)
	}
	if result == nil {
		t.Fatal("nil result")
	}
}

func TestIssueUseCase_LastScanEmpty(t *testing.T) {
	f := newIssueFixture(t)

	at, count, err := f.uc.LastScan(context.Background(), "biz-1", "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if at != nil || count != 0 {
		t.Errorf("expected zero values, got %v / %d", at, count)
	}
}
