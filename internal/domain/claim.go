package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the lifecycle state of an expense claim.
type ClaimStatus string

const (
	ClaimStatusDraft           ClaimStatus = "DRAFT"
	ClaimStatusSubmitted       ClaimStatus = "SUBMITTED"
	ClaimStatusPendingApproval ClaimStatus = "PENDING_APPROVAL"
	ClaimStatusApproved        ClaimStatus = "APPROVED"
	ClaimStatusRejected        ClaimStatus = "REJECTED"
	ClaimStatusPaid            ClaimStatus = "PAID"
)

// claimTransitions is the full transition table. REJECTED and PAID are
// terminal: they have no outgoing edges.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusDraft:           {ClaimStatusSubmitted},
	ClaimStatusSubmitted:       {ClaimStatusPendingApproval, ClaimStatusApproved, ClaimStatusRejected},
	ClaimStatusPendingApproval: {ClaimStatusApproved, ClaimStatusRejected},
	ClaimStatusApproved:        {ClaimStatusPaid},
}

// CanTransitionTo reports whether the edge s -> next exists in the transition table.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s ClaimStatus) IsTerminal() bool {
	return len(claimTransitions[s]) == 0
}

// ExpenseClaim is an employee's bundled request for reimbursement of one or
// more expense items.
type ExpenseClaim struct {
	ID                string
	EmployeeID        string
	DepartmentID      string
	EmployeeLevel     string
	Description       string
	TotalAmount       decimal.Decimal
	Currency          string
	Status            ClaimStatus
	AutoApproveReason *string
	SubmittedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Items             []*ExpenseItem
}

// Transition moves the claim to the next status, or fails without mutating
// the claim if the edge is not in the transition table.
func (c *ExpenseClaim) Transition(next ClaimStatus) error {
	if !c.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}

	c.Status = next

	return nil
}

// Editable reports whether items may still be added or removed.
func (c *ExpenseClaim) Editable() bool {
	return c.Status == ClaimStatusDraft
}

// ValidateSubmit checks the DRAFT -> SUBMITTED guard: the claim must belong
// to the submitter, carry at least one item, and total to a positive amount.
// TotalAmount is expected to be computed by the caller before this check.
func (c *ExpenseClaim) ValidateSubmit(submitterID string) error {
	if c.EmployeeID != submitterID {
		return ErrNotClaimOwner
	}

	if c.Status != ClaimStatusDraft {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, ClaimStatusSubmitted)
	}

	if len(c.Items) == 0 {
		return ErrEmptyClaim
	}

	if c.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// CategoryTypes returns the distinct category types present on the claim's items.
func (c *ExpenseClaim) CategoryTypes() []string {
	seen := make(map[string]bool)

	var types []string
	for _, item := range c.Items {
		if !seen[item.CategoryType] {
			seen[item.CategoryType] = true
			types = append(types, item.CategoryType)
		}
	}

	return types
}

// ExpenseItem belongs to exactly one claim and references an expense category.
type ExpenseItem struct {
	ID                string
	ClaimID           string
	CategoryID        string
	CategoryType      string
	Amount            decimal.Decimal
	Currency          string
	ExpenseDate       time.Time
	Vendor            *string
	ReceiptRef        *string
	OverCategoryLimit bool
	CreatedAt         time.Time
}

// Validate checks item-level invariants.
func (i *ExpenseItem) Validate() error {
	if i.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return ValidateCurrency(i.Currency)
}
