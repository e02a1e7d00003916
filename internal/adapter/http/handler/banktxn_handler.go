package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// BankTransactionHandler handles bank transaction HTTP requests.
type BankTransactionHandler struct {
	bankUC *usecase.BankTransactionUseCase
}

// NewBankTransactionHandler creates a new BankTransactionHandler.
func NewBankTransactionHandler(bankUC *usecase.BankTransactionUseCase) *BankTransactionHandler {
	return &BankTransactionHandler{bankUC: bankUC}
}

// ListByAccount lists bank transactions for an account, oldest first.
func (h *BankTransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	txns, err := h.bankUC.ListBankTransactions(r.Context(), usecase.ListBankTransactionsInput{
		BusinessID: chi.URLParam(r, "businessID"),
		AccountID:  chi.URLParam(r, "accountID"),
		From:       parseTimeQuery(r, "from"),
		To:         parseTimeQuery(r, "to"),
		Limit:      parseIntQuery(r, "limit", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list bank transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BankTransactionsFromDomain(txns))
}

// Ingest stores one incoming bank record.
func (h *BankTransactionHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestBankTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput(chi.URLParam(r, "businessID"), chi.URLParam(r, "accountID"))
	txn, err := h.bankUC.IngestBankTransaction(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to ingest bank transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BankTransactionFromDomain(txn))
}

// SpawnEntry creates a ledger entry mirroring a bank transaction.
func (h *BankTransactionHandler) SpawnEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing bank transaction ID", "")
		return
	}

	var req dto.SpawnEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.bankUC.SpawnEntry(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create entry from bank transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}
