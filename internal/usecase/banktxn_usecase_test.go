package usecase_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
	"github.com/abbaskhatri/bynkbook/internal/usecase/mocks"
)

func TestBankTransactionUseCase_Ingest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bankRepo := mocks.NewMockBankTransactionRepository(ctrl)
	bankRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *domain.BankTransaction) error {
			if txn.ID == "" {
				t.Error("ingested transaction missing id")
			}
			if txn.Source != domain.SourceCSV {
				t.Errorf("source = %q", txn.Source)
			}
			return nil
		})

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("bt-1")

	uc := usecase.NewBankTransactionUseCase(bankRepo, nil, nil, idGen)

	txn, err := uc.IngestBankTransaction(context.Background(), usecase.IngestBankTransactionInput{
		BusinessID:  "biz-1",
		AccountID:   "acc-1",
		PostedAt:    time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Description: "POS OFFICE DEPOT",
		AmountCents: -7500,
		Source:      domain.SourceCSV,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.ID != "bt-1" {
		t.Errorf("id = %q", txn.ID)
	}
}

func TestBankTransactionUseCase_SpawnEntry(t *testing.T) {
	bankRepo := mocks.NewFakeBankTransactionRepository()
	bankRepo.Seed(&domain.BankTransaction{
		ID: "b1", BusinessID: "biz-1", AccountID: "acc-1",
		PostedAt: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Description: "POS OFFICE DEPOT", Amount: -7500,
	})
	entryRepo := mocks.NewFakeEntryRepository()

	uc := usecase.NewBankTransactionUseCase(bankRepo, entryRepo, mocks.NewFakeTransactionManager(), mocks.NewFakeIDGenerator())

	entry, err := uc.SpawnEntry(context.Background(), usecase.SpawnEntryInput{
		BankTransactionID: "b1",
		Method:            domain.MethodCard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Type != domain.EntryTypeExpense {
		t.Errorf("negative amount should spawn an expense, got %q", entry.Type)
	}
	if entry.Amount != -7500 {
		t.Errorf("amount = %d", entry.Amount)
	}
	if entry.Status != domain.StatusCleared {
		t.Errorf("status = %q", entry.Status)
	}
	if entry.Payee != "POS OFFICE DEPOT" {
		t.Errorf("payee = %q", entry.Payee)
	}

	if _, err := entryRepo.GetByID(context.Background(), entry.ID); err != nil {
		t.Errorf("spawned entry not persisted: %v", err)
	}
}
