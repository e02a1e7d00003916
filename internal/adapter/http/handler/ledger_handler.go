package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// LedgerHandler serves the assembled ledger view.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// View builds the display-ready ledger page: rows with running balances,
// issue flags, match status and totals.
func (h *LedgerHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.ledgerUC.BuildView(r.Context(), usecase.LedgerViewInput{
		BusinessID:     chi.URLParam(r, "businessID"),
		AccountID:      chi.URLParam(r, "accountID"),
		Limit:          parseIntQuery(r, "limit", 0),
		IncludeDeleted: parseBoolQuery(r, "include_deleted"),
		AsOf:           parseTimeQuery(r, "as_of"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build ledger view", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerViewFromUseCase(view))
}
