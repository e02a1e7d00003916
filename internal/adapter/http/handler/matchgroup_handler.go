package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/adapter/http/middleware"
	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// MatchGroupService defines the behavior needed by MatchGroupHandler.
type MatchGroupService interface {
	CreateGroups(ctx context.Context, input usecase.CreateGroupsInput) []usecase.GroupResult
	ListGroups(ctx context.Context, input usecase.ListGroupsInput) ([]*domain.MatchGroup, error)
	VoidGroup(ctx context.Context, input usecase.VoidGroupInput) (*domain.MatchGroup, error)
	MatchState(ctx context.Context, businessID, accountID, bankTransactionID string) (domain.MatchState, error)
	SuggestMatches(ctx context.Context, input usecase.SuggestMatchesInput) ([]*domain.Entry, error)
}

// MatchGroupHandler handles reconciliation match group HTTP requests.
type MatchGroupHandler struct {
	matchUC MatchGroupService
}

// NewMatchGroupHandler creates a new MatchGroupHandler.
func NewMatchGroupHandler(matchUC MatchGroupService) *MatchGroupHandler {
	return &MatchGroupHandler{matchUC: matchUC}
}

// CreateBatch creates match groups from a batch of proposals. Each
// proposal succeeds or fails independently; the response carries one
// result per proposal in request order.
func (h *MatchGroupHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchGroupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput(chi.URLParam(r, "businessID"), chi.URLParam(r, "accountID"))
	// The authenticated actor owns the attribution; the body value is a
	// fallback for deployments running without auth.
	if actor, ok := middleware.GetActorFromContext(r.Context()); ok {
		input.CreatedBy = actor.Name
	}
	results := h.matchUC.CreateGroups(r.Context(), input)

	status := http.StatusCreated
	for _, res := range results {
		if res.Err != nil {
			status = http.StatusMultiStatus
			break
		}
	}

	writeJSON(w, status, dto.GroupResultsFromUseCase(results))
}

// List lists match groups for an account.
func (h *MatchGroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.matchUC.ListGroups(r.Context(), usecase.ListGroupsInput{
		BusinessID: chi.URLParam(r, "businessID"),
		AccountID:  chi.URLParam(r, "accountID"),
		ActiveOnly: parseBoolQuery(r, "active"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list match groups", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MatchGroupsFromDomain(groups))
}

// Void marks a match group voided, freeing its items for re-matching.
func (h *MatchGroupHandler) Void(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "missing group ID", "")
		return
	}

	var req dto.VoidMatchGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput(groupID)
	if actor, ok := middleware.GetActorFromContext(r.Context()); ok {
		input.VoidedBy = actor.Name
	}
	group, err := h.matchUC.VoidGroup(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to void match group", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MatchGroupFromDomain(group))
}

// MatchState reports the matched and remaining amount for one bank
// transaction.
func (h *MatchGroupHandler) MatchState(w http.ResponseWriter, r *http.Request) {
	state, err := h.matchUC.MatchState(
		r.Context(),
		chi.URLParam(r, "businessID"),
		chi.URLParam(r, "accountID"),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get match state", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MatchStateFromDomain(state))
}

// Suggest ranks unmatched entries as candidate counterparts for a bank
// transaction.
func (h *MatchGroupHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	entries, err := h.matchUC.SuggestMatches(r.Context(), usecase.SuggestMatchesInput{
		BusinessID:        chi.URLParam(r, "businessID"),
		AccountID:         chi.URLParam(r, "accountID"),
		BankTransactionID: chi.URLParam(r, "id"),
		Limit:             parseIntQuery(r, "limit", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to suggest matches", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
