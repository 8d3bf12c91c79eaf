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

// RuleService defines the behavior needed by RuleHandler.
type RuleService interface {
	CreateRule(ctx context.Context, input usecase.CreateRuleInput) (*domain.ApprovalRule, error)
	GetRule(ctx context.Context, id string) (*domain.ApprovalRule, error)
	ListRules(ctx context.Context, limit, offset int) ([]*domain.ApprovalRule, error)
	ListActiveRules(ctx context.Context) ([]*domain.ApprovalRule, error)
	DeactivateRule(ctx context.Context, id string) error
}

// RuleHandler handles approval rule HTTP requests.
type RuleHandler struct {
	ruleUC RuleService
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleUC RuleService) *RuleHandler {
	return &RuleHandler{ruleUC: ruleUC}
}

// Create creates a new active rule.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rule, err := h.ruleUC.CreateRule(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create rule", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RuleFromDomain(rule))
}

// Get retrieves a rule by ID.
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing rule ID", "")
		return
	}

	rule, err := h.ruleUC.GetRule(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get rule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// List lists rules. With active=true, returns the active snapshot in
// matching order.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		rules []*domain.ApprovalRule
		err   error
	)

	if r.URL.Query().Get("active") == "true" {
		rules, err = h.ruleUC.ListActiveRules(r.Context())
	} else {
		rules, err = h.ruleUC.ListRules(r.Context(),
			parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRulesResponse{
		Rules: dto.RulesFromDomain(rules),
		Total: int64(len(rules)),
	})
}

// Deactivate retires a rule from the active snapshot.
func (h *RuleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing rule ID", "")
		return
	}

	if err := h.ruleUC.DeactivateRule(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate rule", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
