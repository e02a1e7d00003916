package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// IssueHandler handles advisory issue scan requests.
type IssueHandler struct {
	issueUC *usecase.IssueUseCase
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issueUC *usecase.IssueUseCase) *IssueHandler {
	return &IssueHandler{issueUC: issueUC}
}

// Scan runs all detectors over the account's current snapshot.
func (h *IssueHandler) Scan(w http.ResponseWriter, r *http.Request) {
	result, err := h.issueUC.Scan(r.Context(), usecase.ScanInput{
		BusinessID: chi.URLParam(r, "businessID"),
		AccountID:  chi.URLParam(r, "accountID"),
		AsOf:       parseTimeQuery(r, "as_of"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to scan for issues", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ScanResultFromUseCase(result))
}

// LastScan returns the last recorded scan hint for the account.
func (h *IssueHandler) LastScan(w http.ResponseWriter, r *http.Request) {
	at, count, err := h.issueUC.LastScan(r.Context(), chi.URLParam(r, "businessID"), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read last scan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LastScanResponse{
		ScannedAt:      at,
		AttentionCount: count,
	})
}
