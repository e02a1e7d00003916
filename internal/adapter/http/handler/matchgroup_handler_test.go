package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/dto"
	"github.com/abbaskhatri/bynkbook/internal/adapter/http/middleware"
	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

type matchGroupServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateGroupsInput) []usecase.GroupResult
	listFn       func(ctx context.Context, input usecase.ListGroupsInput) ([]*domain.MatchGroup, error)
	voidFn       func(ctx context.Context, input usecase.VoidGroupInput) (*domain.MatchGroup, error)
	matchStateFn func(ctx context.Context, businessID, accountID, bankTransactionID string) (domain.MatchState, error)
	suggestFn    func(ctx context.Context, input usecase.SuggestMatchesInput) ([]*domain.Entry, error)
}

func (s *matchGroupServiceStub) CreateGroups(ctx context.Context, input usecase.CreateGroupsInput) []usecase.GroupResult {
	return s.createFn(ctx, input)
}

func (s *matchGroupServiceStub) ListGroups(ctx context.Context, input usecase.ListGroupsInput) ([]*domain.MatchGroup, error) {
	return s.listFn(ctx, input)
}

func (s *matchGroupServiceStub) VoidGroup(ctx context.Context, input usecase.VoidGroupInput) (*domain.MatchGroup, error) {
	return s.voidFn(ctx, input)
}

func (s *matchGroupServiceStub) MatchState(ctx context.Context, businessID, accountID, bankTransactionID string) (domain.MatchState, error) {
	return s.matchStateFn(ctx, businessID, accountID, bankTransactionID)
}

func (s *matchGroupServiceStub) SuggestMatches(ctx context.Context, input usecase.SuggestMatchesInput) ([]*domain.Entry, error) {
	return s.suggestFn(ctx, input)
}

func TestMatchGroupHandler_CreateBatch_AllSucceed(t *testing.T) {
	group := &domain.MatchGroup{
		ID:       "g-1",
		Status:   domain.MatchGroupActive,
		BankTxns: []domain.BankTxnRef{{BankTransactionID: "b1", AmountCents: -7500}},
		Entries:  []domain.EntryRef{{EntryID: "e1", AmountCents: -7500}},
	}

	h := NewMatchGroupHandler(&matchGroupServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateGroupsInput) []usecase.GroupResult {
			return []usecase.GroupResult{{Group: group}}
		},
	})

	body, _ := json.Marshal(dto.CreateMatchGroupsRequest{
		CreatedBy: "dana",
		Proposals: []dto.GroupProposalItem{
			{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1"}},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/match-groups", bytes.NewReader(body))
	req = withURLParams(req, map[string]string{"businessID": "biz-1", "accountID": "acc-1"})
	rec := httptest.NewRecorder()

	h.CreateBatch(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp []dto.GroupResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Group == nil || resp[0].Group.ID != "g-1" {
		t.Fatalf("unexpected results: %+v", resp)
	}
}

func TestMatchGroupHandler_CreateBatch_PartialFailure(t *testing.T) {
	group := &domain.MatchGroup{ID: "g-1", Status: domain.MatchGroupActive}

	h := NewMatchGroupHandler(&matchGroupServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateGroupsInput) []usecase.GroupResult {
			return []usecase.GroupResult{
				{Err: domain.ErrUnbalancedProposal},
				{Group: group},
			}
		},
	})

	body, _ := json.Marshal(dto.CreateMatchGroupsRequest{
		Proposals: []dto.GroupProposalItem{
			{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1"}},
			{BankTransactionIDs: []string{"b2"}, EntryIDs: []string{"e2"}},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/match-groups", bytes.NewReader(body))
	req = withURLParams(req, map[string]string{"businessID": "biz-1", "accountID": "acc-1"})
	rec := httptest.NewRecorder()

	h.CreateBatch(rec, req)

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207 for partial failure, got %d", rec.Code)
	}

	var resp []dto.GroupResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected one result per proposal, got %d", len(resp))
	}
	if resp[0].Error == "" || resp[0].Group != nil {
		t.Errorf("expected first result to carry the error, got %+v", resp[0])
	}
	if resp[1].Group == nil || resp[1].Group.ID != "g-1" {
		t.Errorf("expected second result to carry the group, got %+v", resp[1])
	}
}

func TestMatchGroupHandler_Void(t *testing.T) {
	var captured usecase.VoidGroupInput

	h := NewMatchGroupHandler(&matchGroupServiceStub{
		voidFn: func(ctx context.Context, input usecase.VoidGroupInput) (*domain.MatchGroup, error) {
			captured = input
			return &domain.MatchGroup{ID: input.GroupID, Status: domain.MatchGroupVoided, VoidReason: input.Reason}, nil
		},
	})

	body, _ := json.Marshal(dto.VoidMatchGroupRequest{VoidedBy: "dana", Reason: "matched wrong receipt"})
	req := httptest.NewRequest(http.MethodPost, "/match-groups/g-1/void", bytes.NewReader(body))
	req = withURLParams(req, map[string]string{"groupID": "g-1"})
	rec := httptest.NewRecorder()

	h.Void(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.GroupID != "g-1" || captured.Reason != "matched wrong receipt" {
		t.Fatalf("expected input from request, got %+v", captured)
	}
}

func TestMatchGroupHandler_AuthenticatedActorOwnsAttribution(t *testing.T) {
	var capturedCreate usecase.CreateGroupsInput
	var capturedVoid usecase.VoidGroupInput

	h := NewMatchGroupHandler(&matchGroupServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateGroupsInput) []usecase.GroupResult {
			capturedCreate = input
			return []usecase.GroupResult{{Group: &domain.MatchGroup{ID: "g-1", Status: domain.MatchGroupActive}}}
		},
		voidFn: func(ctx context.Context, input usecase.VoidGroupInput) (*domain.MatchGroup, error) {
			capturedVoid = input
			return &domain.MatchGroup{ID: input.GroupID, Status: domain.MatchGroupVoided}, nil
		},
	})

	actor := &middleware.Actor{Name: "jwt-user", BusinessID: "biz-1"}

	createBody, _ := json.Marshal(dto.CreateMatchGroupsRequest{
		CreatedBy: "spoofed",
		Proposals: []dto.GroupProposalItem{
			{BankTransactionIDs: []string{"b1"}, EntryIDs: []string{"e1"}},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/match-groups", bytes.NewReader(createBody))
	req = withURLParams(req, map[string]string{"businessID": "biz-1", "accountID": "acc-1"})
	req = req.WithContext(context.WithValue(req.Context(), middleware.ActorContextKey, actor))
	rec := httptest.NewRecorder()

	h.CreateBatch(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if capturedCreate.CreatedBy != "jwt-user" {
		t.Fatalf("expected created_by from actor, got %q", capturedCreate.CreatedBy)
	}

	voidBody, _ := json.Marshal(dto.VoidMatchGroupRequest{VoidedBy: "spoofed", Reason: "duplicate"})
	req = httptest.NewRequest(http.MethodPost, "/match-groups/g-1/void", bytes.NewReader(voidBody))
	req = withURLParams(req, map[string]string{"groupID": "g-1"})
	req = req.WithContext(context.WithValue(req.Context(), middleware.ActorContextKey, actor))
	rec = httptest.NewRecorder()

	h.Void(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if capturedVoid.VoidedBy != "jwt-user" {
		t.Fatalf("expected voided_by from actor, got %q", capturedVoid.VoidedBy)
	}
}

func TestMatchGroupHandler_Void_ErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no reason", domain.ErrVoidReasonRequired, http.StatusBadRequest},
		{"missing group", domain.ErrGroupNotFound, http.StatusNotFound},
		{"already voided", domain.ErrGroupAlreadyVoided, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMatchGroupHandler(&matchGroupServiceStub{
				voidFn: func(ctx context.Context, input usecase.VoidGroupInput) (*domain.MatchGroup, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/match-groups/g-1/void", bytes.NewReader([]byte(`{"reason":"x"}`)))
			req = withURLParams(req, map[string]string{"groupID": "g-1"})
			rec := httptest.NewRecorder()

			h.Void(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestMatchGroupHandler_MatchState(t *testing.T) {
	h := NewMatchGroupHandler(&matchGroupServiceStub{
		matchStateFn: func(ctx context.Context, businessID, accountID, bankTransactionID string) (domain.MatchState, error) {
			return domain.MatchState{MatchedCents: 7500, RemainingCents: 0, GroupID: "g-1"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/bank-transactions/b1/match-state", nil)
	req = withURLParams(req, map[string]string{"businessID": "biz-1", "accountID": "acc-1", "id": "b1"})
	rec := httptest.NewRecorder()

	h.MatchState(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.MatchStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.MatchedCents != 7500 || resp.GroupID != "g-1" {
		t.Fatalf("unexpected match state: %+v", resp)
	}
}
