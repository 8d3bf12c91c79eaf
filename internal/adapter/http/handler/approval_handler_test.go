package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

type fakeApprovalService struct {
	decideFn   func(ctx context.Context, input usecase.RecordDecisionInput) (*usecase.DecisionResult, error)
	escalateFn func(ctx context.Context, input usecase.EscalateInput) (*domain.Approval, error)
}

func (f *fakeApprovalService) RecordDecision(ctx context.Context, input usecase.RecordDecisionInput) (*usecase.DecisionResult, error) {
	if f.decideFn != nil {
		return f.decideFn(ctx, input)
	}
	return &usecase.DecisionResult{
		Approval: &domain.Approval{ID: input.ApprovalID, ClaimID: input.ClaimID},
		Outcome:  domain.OutcomeStillPending,
		Claim:    &domain.ExpenseClaim{ID: input.ClaimID, Status: domain.ClaimStatusPendingApproval},
	}, nil
}

func (f *fakeApprovalService) Escalate(ctx context.Context, input usecase.EscalateInput) (*domain.Approval, error) {
	if f.escalateFn != nil {
		return f.escalateFn(ctx, input)
	}
	return &domain.Approval{ID: "appr-2", ClaimID: input.ClaimID, ApproverID: input.NewApproverID}, nil
}

func (f *fakeApprovalService) ListPending(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error) {
	return []*domain.Approval{{ID: "appr-1", ApproverID: approverID}}, nil
}

func (f *fakeApprovalService) GetPlan(ctx context.Context, claimID string) ([]*domain.Approval, domain.PlanOutcome, error) {
	return []*domain.Approval{{ID: "appr-1", ClaimID: claimID}}, domain.OutcomeStillPending, nil
}

func serveApproval(h *ApprovalHandler, method, target, body string, route func(chi.Router, *ApprovalHandler)) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	route(r, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestApprovalHandler_Decide(t *testing.T) {
	var captured usecase.RecordDecisionInput
	h := NewApprovalHandler(&fakeApprovalService{
		decideFn: func(ctx context.Context, input usecase.RecordDecisionInput) (*usecase.DecisionResult, error) {
			captured = input
			return &usecase.DecisionResult{
				Approval: &domain.Approval{ID: input.ApprovalID, Status: domain.ApprovalStatusApproved},
				Outcome:  domain.OutcomeFullyApproved,
				Claim:    &domain.ExpenseClaim{ID: input.ClaimID, Status: domain.ClaimStatusApproved},
			}, nil
		},
	})

	body := `{"approval_id":"appr-1","approver_id":"mgr-1","decision":"APPROVE","comment":"ok"}`
	rec := serveApproval(h, http.MethodPost, "/claims/claim-1/decisions", body,
		func(r chi.Router, h *ApprovalHandler) { r.Post("/claims/{id}/decisions", h.Decide) })

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.ClaimID != "claim-1" || captured.Decision != domain.DecisionApprove {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp struct {
		Outcome string `json:"outcome"`
		Claim   struct {
			Status string `json:"status"`
		} `json:"claim"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Outcome != string(domain.OutcomeFullyApproved) || resp.Claim.Status != "APPROVED" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestApprovalHandler_Decide_AlreadyDecided(t *testing.T) {
	h := NewApprovalHandler(&fakeApprovalService{
		decideFn: func(ctx context.Context, input usecase.RecordDecisionInput) (*usecase.DecisionResult, error) {
			return nil, domain.ErrAlreadyDecided
		},
	})

	body := `{"approval_id":"appr-1","approver_id":"mgr-1","decision":"APPROVE"}`
	rec := serveApproval(h, http.MethodPost, "/claims/claim-1/decisions", body,
		func(r chi.Router, h *ApprovalHandler) { r.Post("/claims/{id}/decisions", h.Decide) })

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestApprovalHandler_Decide_InvalidDecision(t *testing.T) {
	h := NewApprovalHandler(&fakeApprovalService{
		decideFn: func(ctx context.Context, input usecase.RecordDecisionInput) (*usecase.DecisionResult, error) {
			return nil, domain.ErrInvalidDecision
		},
	})

	body := `{"approval_id":"appr-1","approver_id":"mgr-1","decision":"MAYBE"}`
	rec := serveApproval(h, http.MethodPost, "/claims/claim-1/decisions", body,
		func(r chi.Router, h *ApprovalHandler) { r.Post("/claims/{id}/decisions", h.Decide) })

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestApprovalHandler_Escalate(t *testing.T) {
	h := NewApprovalHandler(&fakeApprovalService{})

	body := `{"approval_id":"appr-1","new_approver_id":"dir-1","new_role":"director"}`
	rec := serveApproval(h, http.MethodPost, "/claims/claim-1/escalate", body,
		func(r chi.Router, h *ApprovalHandler) { r.Post("/claims/{id}/escalate", h.Escalate) })

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["approver_id"] != "dir-1" {
		t.Fatalf("expected replacement assigned to dir-1, got %v", resp["approver_id"])
	}
}

func TestApprovalHandler_ListPending_RequiresApprover(t *testing.T) {
	h := NewApprovalHandler(&fakeApprovalService{})

	rec := serveApproval(h, http.MethodGet, "/approvals/pending", "",
		func(r chi.Router, h *ApprovalHandler) { r.Get("/approvals/pending", h.ListPending) })

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without approver_id, got %d", rec.Code)
	}
}

func TestApprovalHandler_Plan(t *testing.T) {
	h := NewApprovalHandler(&fakeApprovalService{})

	rec := serveApproval(h, http.MethodGet, "/claims/claim-1/approvals", "",
		func(r chi.Router, h *ApprovalHandler) { r.Get("/claims/{id}/approvals", h.Plan) })

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		ClaimID   string           `json:"claim_id"`
		Outcome   string           `json:"outcome"`
		Approvals []map[string]any `json:"approvals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ClaimID != "claim-1" || len(resp.Approvals) != 1 {
		t.Fatalf("unexpected plan response: %+v", resp)
	}
}
