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

// ReimbursementService defines the behavior needed by ReimbursementHandler.
type ReimbursementService interface {
	Process(ctx context.Context, input usecase.ProcessInput) (*domain.Reimbursement, error)
	Get(ctx context.Context, id string) (*domain.Reimbursement, error)
	GetByClaim(ctx context.Context, claimID string) ([]*domain.Reimbursement, error)
	AttachToBatch(ctx context.Context, id, batchID string) error
}

// ReimbursementHandler handles payout HTTP requests.
type ReimbursementHandler struct {
	reimbursementUC ReimbursementService
}

// NewReimbursementHandler creates a new ReimbursementHandler.
func NewReimbursementHandler(reimbursementUC ReimbursementService) *ReimbursementHandler {
	return &ReimbursementHandler{reimbursementUC: reimbursementUC}
}

// Process pays out an approved claim. Repeating the call for a claim whose
// payout already went through returns the existing reimbursement.
func (h *ReimbursementHandler) Process(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	var req dto.ProcessReimbursementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reimbursement, err := h.reimbursementUC.Process(r.Context(), req.ToUseCaseInput(claimID))
	if err != nil {
		if reimbursement != nil {
			// Payment rail failure: the FAILED record is part of the answer.
			writeJSON(w, http.StatusBadGateway, dto.ReimbursementFromDomain(reimbursement))
			return
		}

		writeError(w, mapDomainError(err), "failed to process reimbursement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReimbursementFromDomain(reimbursement))
}

// Get retrieves a reimbursement by ID.
func (h *ReimbursementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing reimbursement ID", "")
		return
	}

	reimbursement, err := h.reimbursementUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get reimbursement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReimbursementFromDomain(reimbursement))
}

// ListByClaim lists a claim's reimbursement attempts.
func (h *ReimbursementHandler) ListByClaim(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	reimbursements, err := h.reimbursementUC.GetByClaim(r.Context(), claimID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list reimbursements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReimbursementsFromDomain(reimbursements))
}

// AttachBatch tags a processed reimbursement with a settlement batch.
func (h *ReimbursementHandler) AttachBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing reimbursement ID", "")
		return
	}

	var req dto.AttachBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.BatchID == "" {
		writeError(w, http.StatusBadRequest, "missing batch_id", "")
		return
	}

	if err := h.reimbursementUC.AttachToBatch(r.Context(), id, req.BatchID); err != nil {
		writeError(w, mapDomainError(err), "failed to attach batch", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
