package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// AuditHandler serves the reconciliation history view and its CSV
// exports.
type AuditHandler struct {
	auditUC *usecase.AuditUseCase
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditUC *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{auditUC: auditUC}
}

func listEventsInput(r *http.Request) usecase.ListEventsInput {
	return usecase.ListEventsInput{
		BusinessID:        chi.URLParam(r, "businessID"),
		AccountID:         chi.URLParam(r, "accountID"),
		Kind:              domain.AuditEventKind(r.URL.Query().Get("kind")),
		BankTransactionID: r.URL.Query().Get("bank_transaction_id"),
		Search:            r.URL.Query().Get("search"),
	}
}

// ListEvents lists audit trail events, newest first.
func (h *AuditHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.auditUC.ListEvents(r.Context(), listEventsInput(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list audit events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditEventsFromDomain(events))
}

// ExportEvents exports the filtered audit trail as CSV.
func (h *AuditHandler) ExportEvents(w http.ResponseWriter, r *http.Request) {
	data, err := h.auditUC.ExportEventsCSV(r.Context(), listEventsInput(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to export audit events", err.Error())
		return
	}

	writeCSV(w, "audit_events.csv", data)
}

// ExportActiveMatches exports the active match groups as CSV.
func (h *AuditHandler) ExportActiveMatches(w http.ResponseWriter, r *http.Request) {
	data, err := h.auditUC.ExportActiveMatchesCSV(r.Context(), chi.URLParam(r, "businessID"), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to export matches", err.Error())
		return
	}

	writeCSV(w, "active_matches.csv", data)
}

// ExportBankTransactions exports bank transactions with match status as
// CSV.
func (h *AuditHandler) ExportBankTransactions(w http.ResponseWriter, r *http.Request) {
	data, err := h.auditUC.ExportBankTransactionsCSV(r.Context(), chi.URLParam(r, "businessID"), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to export bank transactions", err.Error())
		return
	}

	writeCSV(w, "bank_transactions.csv", data)
}
