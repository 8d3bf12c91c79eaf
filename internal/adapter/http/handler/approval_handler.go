package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintally/claimcore/internal/adapter/http/dto"
	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

// ApprovalService defines the behavior needed by ApprovalHandler.
type ApprovalService interface {
	RecordDecision(ctx context.Context, input usecase.RecordDecisionInput) (*usecase.DecisionResult, error)
	Escalate(ctx context.Context, input usecase.EscalateInput) (*domain.Approval, error)
	ListPending(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error)
	GetPlan(ctx context.Context, claimID string) ([]*domain.Approval, domain.PlanOutcome, error)
}

// ApprovalHandler handles approval workflow HTTP requests.
type ApprovalHandler struct {
	approvalUC ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(approvalUC ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalUC: approvalUC}
}

// Decide records one approver's decision on a pending claim.
func (h *ApprovalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	var req dto.RecordDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.approvalUC.RecordDecision(r.Context(), req.ToUseCaseInput(claimID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record decision", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DecisionFromResult(result))
}

// Escalate reassigns a pending decision point to another approver.
func (h *ApprovalHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	var req dto.EscalateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	replacement, err := h.approvalUC.Escalate(r.Context(), req.ToUseCaseInput(claimID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to escalate approval", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ApprovalFromDomain(replacement))
}

// Plan returns a claim's full approval plan with its aggregate outcome.
func (h *ApprovalHandler) Plan(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	approvals, outcome, err := h.approvalUC.GetPlan(r.Context(), claimID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get approval plan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PlanResponse{
		ClaimID:   claimID,
		Outcome:   string(outcome),
		Approvals: dto.ApprovalsFromDomain(approvals),
	})
}

// ListPending lists an approver's pending decision points.
func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	approverID := r.URL.Query().Get("approver_id")
	if approverID == "" {
		writeError(w, http.StatusBadRequest, "missing approver_id", "")
		return
	}

	approvals, err := h.approvalUC.ListPending(r.Context(), approverID,
		parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pending approvals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListApprovalsResponse{
		Approvals: dto.ApprovalsFromDomain(approvals),
		Total:     int64(len(approvals)),
	})
}
