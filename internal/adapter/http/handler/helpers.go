package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeCSV writes a CSV export response.
func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrBankTransactionNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrItemAlreadyMatched),
		errors.Is(err, domain.ErrGroupAlreadyVoided),
		errors.Is(err, domain.ErrPendingEntry),
		errors.Is(err, domain.ErrNotDeleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOpeningEntryImmutable),
		errors.Is(err, domain.ErrPeriodClosed):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrPayeeRequired),
		errors.Is(err, domain.ErrZeroAmount),
		errors.Is(err, domain.ErrAmountSignMismatch),
		errors.Is(err, domain.ErrTransferLegMissing),
		errors.Is(err, domain.ErrEmptyProposal),
		errors.Is(err, domain.ErrMixedSigns),
		errors.Is(err, domain.ErrUnbalancedProposal),
		errors.Is(err, domain.ErrVoidReasonRequired),
		errors.Is(err, domain.ErrCategoryNameRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseBoolQuery parses a boolean query parameter.
func parseBoolQuery(r *http.Request, key string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && b
}

// parseTimeQuery parses an RFC 3339 or date-only query parameter. Absent
// or malformed values come back nil.
func parseTimeQuery(r *http.Request, key string) *time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return &t
	}
	return nil
}
