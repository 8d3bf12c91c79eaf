package domain

import "errors"

var (
	// Claim errors
	ErrClaimNotFound    = errors.New("claim not found")
	ErrClaimNotEditable = errors.New("claim items are frozen after submission")
	ErrEmptyClaim       = errors.New("claim has no items")
	ErrNotClaimOwner    = errors.New("claim does not belong to this employee")
	ErrItemNotFound     = errors.New("expense item not found")
	ErrCategoryNotFound = errors.New("expense category not found")

	// State machine errors
	ErrInvalidTransition = errors.New("invalid claim status transition")

	// Rule errors
	ErrRuleNotFound      = errors.New("approval rule not found")
	ErrNoApplicableRule  = errors.New("no approval rule configured for this claim")
	ErrInvalidConditions = errors.New("rule conditions do not match rule type")
	ErrInvalidPlanConfig = errors.New("invalid approval plan configuration")
	ErrDuplicatePriority = errors.New("an active rule with this priority already exists")

	// Approval errors
	ErrApprovalNotFound = errors.New("no pending approval assigned at this level")
	ErrAlreadyDecided   = errors.New("approval decision already recorded")
	ErrInvalidDecision  = errors.New("decision must be approve or reject")
	ErrInvalidApprover  = errors.New("escalation requires a target approver")

	// Reimbursement errors
	ErrReimbursementNotFound = errors.New("reimbursement not found")
	ErrAlreadyProcessed      = errors.New("reimbursement already processed for this claim")
	ErrInvalidMethod         = errors.New("unknown payment method")

	// Currency errors
	ErrRateNotFound  = errors.New("no exchange rate found for currency pair")
	ErrInvalidAmount = errors.New("amount must be positive")

	// Budget errors
	ErrInvalidBudgetWindow = errors.New("budget end date must be after start date")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
