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

func newTransferFixture(t *testing.T) (*usecase.TransferUseCase, *mocks.FakeEntryRepository) {
	t.Helper()

	accountRepo := mocks.NewFakeAccountRepository()
	checking := testAccount("acc-1")
	savings := testAccount("acc-2")
	savings.Name = "Savings"
	accountRepo.Seed(checking, savings)

	entryRepo := mocks.NewFakeEntryRepository()
	uc := usecase.NewTransferUseCase(mocks.NewFakeTransactionManager(), accountRepo, entryRepo, mocks.NewFakeIDGenerator())
	return uc, entryRepo
}

func TestTransferUseCase_CreateTransfer(t *testing.T) {
	uc, entryRepo := newTransferFixture(t)

	legs, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		BusinessID:    "biz-1",
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		AmountCents:   50000,
		Date:          time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		Memo:          "monthly savings",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}

	out, in := legs[0], legs[1]
	if out.Amount != -50000 || in.Amount != 50000 {
		t.Errorf("leg amounts = %d / %d", out.Amount, in.Amount)
	}
	if out.AccountID != "acc-1" || in.AccountID != "acc-2" {
		t.Errorf("leg accounts = %s / %s", out.AccountID, in.AccountID)
	}
	if out.Transfer == nil || in.Transfer == nil {
		t.Fatal("legs missing transfer link")
	}
	if out.Transfer.TransferID != in.Transfer.TransferID {
		t.Error("legs carry different transfer ids")
	}
	if out.Transfer.Direction != domain.TransferOut || in.Transfer.Direction != domain.TransferIn {
		t.Errorf("directions = %s / %s", out.Transfer.Direction, in.Transfer.Direction)
	}
	if out.Payee != "Transfer to Savings" {
		t.Errorf("out payee = %q", out.Payee)
	}
	if in.Payee != "Transfer from Checking" {
		t.Errorf("in payee = %q", in.Payee)
	}

	stored, err := entryRepo.GetByTransfer(context.Background(), out.Transfer.TransferID)
	if err != nil {
		t.Fatalf("legs not persisted: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("expected both legs persisted, got %d", len(stored))
	}
}

func TestTransferUseCase_CreateTransferNegativeAmount(t *testing.T) {
	uc, _ := newTransferFixture(t)

	// Sign of the requested amount is irrelevant; legs are signed by direction.
	legs, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		BusinessID:    "biz-1",
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		AmountCents:   -2500,
		Date:          time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if legs[0].Amount != -2500 || legs[1].Amount != 2500 {
		t.Errorf("leg amounts = %d / %d", legs[0].Amount, legs[1].Amount)
	}
}

func TestTransferUseCase_CreateTransferRejections(t *testing.T) {
	uc, _ := newTransferFixture(t)
	ctx := context.Background()

	if _, err := uc.CreateTransfer(ctx, usecase.CreateTransferInput{
		FromAccountID: "acc-1", ToAccountID: "acc-1", AmountCents: 100,
	}); !errors.Is(err, domain.ErrTransferLegMissing) {
		t.Errorf("same account: got %v", err)
	}
	if _, err := uc.CreateTransfer(ctx, usecase.CreateTransferInput{
		FromAccountID: "acc-1", ToAccountID: "acc-2", AmountCents: 0,
	}); !errors.Is(err, domain.ErrZeroAmount) {
		t.Errorf("zero amount: got %v", err)
	}
	if _, err := uc.CreateTransfer(ctx, usecase.CreateTransferInput{
		FromAccountID: "acc-1", ToAccountID: "acc-missing", AmountCents: 100,
	}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("missing account: got %v", err)
	}
}

func TestTransferUseCase_UpdateTransferResigns(t *testing.T) {
	uc, _ := newTransferFixture(t)
	ctx := context.Background()

	legs, err := uc.CreateTransfer(ctx, usecase.CreateTransferInput{
		BusinessID:    "biz-1",
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		AmountCents:   10000,
		Date:          time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	amount := int64(7500)
	updated, err := uc.UpdateTransfer(ctx, usecase.UpdateTransferInput{
		TransferID:  legs[0].Transfer.TransferID,
		AmountCents: &amount,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var outAmt, inAmt int64
	for _, leg := range updated {
		if leg.Transfer.Direction == domain.TransferOut {
			outAmt = leg.Amount
		} else {
			inAmt = leg.Amount
		}
	}
	if outAmt != -7500 || inAmt != 7500 {
		t.Errorf("updated amounts = %d / %d", outAmt, inAmt)
	}
}

func TestTransferUseCase_DeleteRestoreBothLegs(t *testing.T) {
	uc, entryRepo := newTransferFixture(t)
	ctx := context.Background()

	legs, err := uc.CreateTransfer(ctx, usecase.CreateTransferInput{
		BusinessID:    "biz-1",
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		AmountCents:   10000,
		Date:          time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	transferID := legs[0].Transfer.TransferID

	if err := uc.SoftDeleteTransfer(ctx, transferID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	for _, leg := range legs {
		stored, _ := entryRepo.GetByID(ctx, leg.ID)
		if !stored.IsDeleted() {
			t.Errorf("leg %s not deleted", leg.ID)
		}
	}

	if err := uc.RestoreTransfer(ctx, transferID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for _, leg := range legs {
		stored, _ := entryRepo.GetByID(ctx, leg.ID)
		if stored.IsDeleted() {
			t.Errorf("leg %s still deleted", leg.ID)
		}
	}
}

func TestTransferUseCase_MissingLeg(t *testing.T) {
	uc, entryRepo := newTransferFixture(t)
	ctx := context.Background()

	// Only one leg present: every transfer operation must refuse.
	entryRepo.Seed(&domain.Entry{
		ID: "orphan", BusinessID: "biz-1", AccountID: "acc-1",
		Payee: "Transfer to Savings", Amount: -100, Type: domain.EntryTypeTransfer,
		Transfer: &domain.TransferLink{TransferID: "t-orphan", Direction: domain.TransferOut},
	})

	if err := uc.SoftDeleteTransfer(ctx, "t-orphan"); !errors.Is(err, domain.ErrTransferLegMissing) {
		t.Errorf("soft delete: got %v", err)
	}
	if _, err := uc.UpdateTransfer(ctx, usecase.UpdateTransferInput{TransferID: "t-orphan"}); !errors.Is(err, domain.ErrTransferLegMissing) {
		t.Errorf("update: got %v", err)
	}
}
