package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintally/claimcore/internal/adapter/http/dto"
	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

// ClaimService defines the behavior needed by ClaimHandler.
type ClaimService interface {
	CreateClaim(ctx context.Context, input usecase.CreateClaimInput) (*domain.ExpenseClaim, error)
	AddItem(ctx context.Context, input usecase.AddItemInput) (*domain.ExpenseItem, error)
	RemoveItem(ctx context.Context, claimID, itemID, employeeID string) error
	SubmitClaim(ctx context.Context, claimID, submitterID string) (*usecase.SubmitResult, error)
	GetClaim(ctx context.Context, id string) (*domain.ExpenseClaim, error)
	ListClaimsByEmployee(ctx context.Context, input usecase.ListClaimsByEmployeeInput) ([]*domain.ExpenseClaim, error)
	ClaimEvents(ctx context.Context, claimID string, limit, offset int) ([]*domain.OutboxEvent, error)
	Stats(ctx context.Context) (*usecase.ClaimStats, error)
}

// ClaimHandler handles claim lifecycle HTTP requests.
type ClaimHandler struct {
	claimUC ClaimService
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(claimUC ClaimService) *ClaimHandler {
	return &ClaimHandler{claimUC: claimUC}
}

// Create opens a new draft claim.
func (h *ClaimHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	claim, err := h.claimUC.CreateClaim(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create claim", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ClaimFromDomain(claim))
}

// Get retrieves a claim by ID.
func (h *ClaimHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	claim, err := h.claimUC.GetClaim(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get claim", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ClaimFromDomain(claim))
}

// List lists an employee's claims.
func (h *ClaimHandler) List(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee_id", "")
		return
	}

	claims, err := h.claimUC.ListClaimsByEmployee(r.Context(), usecase.ListClaimsByEmployeeInput{
		EmployeeID: employeeID,
		Limit:      parseIntQuery(r, "limit", 20),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list claims", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListClaimsResponse{
		Claims: dto.ClaimsFromDomain(claims),
		Total:  int64(len(claims)),
	})
}

// AddItem attaches an expense item to a draft claim.
func (h *ClaimHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	var req dto.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.claimUC.AddItem(r.Context(), req.ToUseCaseInput(claimID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add item", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ItemFromDomain(item))
}

// RemoveItem detaches an expense item from a draft claim.
func (h *ClaimHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")
	employeeID := r.URL.Query().Get("employee_id")

	if claimID == "" || itemID == "" {
		writeError(w, http.StatusBadRequest, "missing claim or item ID", "")
		return
	}

	if err := h.claimUC.RemoveItem(r.Context(), claimID, itemID, employeeID); err != nil {
		writeError(w, mapDomainError(err), "failed to remove item", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit runs the atomic submission transition. A claim held because no rule
// matched is reported with 422 alongside its persisted state.
func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	var req dto.SubmitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.claimUC.SubmitClaim(r.Context(), claimID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNoApplicableRule) && result != nil {
			writeJSON(w, http.StatusUnprocessableEntity, dto.SubmitFromResult(result))
			return
		}

		writeError(w, mapDomainError(err), "failed to submit claim", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SubmitFromResult(result))
}

// Events lists a claim's event log.
func (h *ClaimHandler) Events(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "id")
	if claimID == "" {
		writeError(w, http.StatusBadRequest, "missing claim ID", "")
		return
	}

	events, err := h.claimUC.ClaimEvents(r.Context(), claimID,
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list claim events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEventsResponse{
		Events: dto.EventsFromDomain(events),
		Total:  int64(len(events)),
	})
}

// Stats reports per-status claim counts.
func (h *ClaimHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.claimUC.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromUseCase(stats))
}
