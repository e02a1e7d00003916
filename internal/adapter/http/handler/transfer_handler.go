package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// TransferHandler handles transfer HTTP requests. Every operation acts
// on both legs atomically.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC *usecase.TransferUseCase) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create creates both legs of a new transfer.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	legs, err := h.transferUC.CreateTransfer(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "businessID")))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntriesFromDomain(legs))
}

// Update mutates both legs of a transfer.
func (h *TransferHandler) Update(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")
	if transferID == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	var req dto.UpdateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	legs, err := h.transferUC.UpdateTransfer(r.Context(), req.ToUseCaseInput(transferID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(legs))
}

// SoftDelete soft-deletes both legs of a transfer.
func (h *TransferHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")
	if transferID == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	if err := h.transferUC.SoftDeleteTransfer(r.Context(), transferID); err != nil {
		writeError(w, mapDomainError(err), "failed to delete transfer", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore restores both legs of a soft-deleted transfer.
func (h *TransferHandler) Restore(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferID")
	if transferID == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	if err := h.transferUC.RestoreTransfer(r.Context(), transferID); err != nil {
		writeError(w, mapDomainError(err), "failed to restore transfer", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
