package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fintally/claimcore/internal/adapter/http/dto"
	"github.com/fintally/claimcore/internal/domain"
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

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrClaimNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrRuleNotFound),
		errors.Is(err, domain.ErrApprovalNotFound),
		errors.Is(err, domain.ErrReimbursementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotClaimOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrClaimNotEditable),
		errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrDuplicatePriority):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoApplicableRule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEmptyClaim),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidConditions),
		errors.Is(err, domain.ErrInvalidPlanConfig),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrSameCurrencyPair),
		errors.Is(err, domain.ErrInvalidBudgetWindow),
		errors.Is(err, domain.ErrRateNotFound):
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
