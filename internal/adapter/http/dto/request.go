package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

// CreateClaimRequest represents a request to open a draft claim.
type CreateClaimRequest struct {
	EmployeeID    string `json:"employee_id"`
	DepartmentID  string `json:"department_id"`
	EmployeeLevel string `json:"employee_level"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateClaimRequest) ToUseCaseInput() usecase.CreateClaimInput {
	return usecase.CreateClaimInput{
		EmployeeID:    r.EmployeeID,
		DepartmentID:  r.DepartmentID,
		EmployeeLevel: r.EmployeeLevel,
		Currency:      r.Currency,
		Description:   r.Description,
	}
}

// AddItemRequest represents a request to attach an expense item to a draft.
type AddItemRequest struct {
	EmployeeID  string          `json:"employee_id"`
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ExpenseDate time.Time       `json:"expense_date"`
	Vendor      *string         `json:"vendor,omitempty"`
	ReceiptRef  *string         `json:"receipt_ref,omitempty"`
}

// ToUseCaseInput converts to use case input for the given claim.
func (r *AddItemRequest) ToUseCaseInput(claimID string) usecase.AddItemInput {
	return usecase.AddItemInput{
		ClaimID:     claimID,
		EmployeeID:  r.EmployeeID,
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		ExpenseDate: r.ExpenseDate,
		Vendor:      r.Vendor,
		ReceiptRef:  r.ReceiptRef,
	}
}

// SubmitClaimRequest represents a request to submit a draft for approval.
type SubmitClaimRequest struct {
	EmployeeID string `json:"employee_id"`
}

// RecordDecisionRequest represents one approver's verdict on a pending
// decision point.
type RecordDecisionRequest struct {
	ApprovalID string  `json:"approval_id"`
	ApproverID string  `json:"approver_id"`
	Decision   string  `json:"decision"`
	Comment    *string `json:"comment,omitempty"`
}

// ToUseCaseInput converts to use case input for the given claim.
func (r *RecordDecisionRequest) ToUseCaseInput(claimID string) usecase.RecordDecisionInput {
	return usecase.RecordDecisionInput{
		ClaimID:    claimID,
		ApprovalID: r.ApprovalID,
		ApproverID: r.ApproverID,
		Decision:   domain.Decision(r.Decision),
		Comment:    r.Comment,
	}
}

// EscalateRequest represents a request to reassign a pending decision point.
type EscalateRequest struct {
	ApprovalID    string `json:"approval_id"`
	NewApproverID string `json:"new_approver_id"`
	NewRole       string `json:"new_role"`
}

// ToUseCaseInput converts to use case input for the given claim.
func (r *EscalateRequest) ToUseCaseInput(claimID string) usecase.EscalateInput {
	return usecase.EscalateInput{
		ClaimID:       claimID,
		ApprovalID:    r.ApprovalID,
		NewApproverID: r.NewApproverID,
		NewRole:       r.NewRole,
	}
}

// CreateRuleRequest represents a request to create an approval rule. The
// conditions and approval_config shapes reuse the domain JSON schema that is
// also persisted.
type CreateRuleRequest struct {
	Name           string                `json:"name"`
	RuleType       string                `json:"rule_type"`
	Conditions     domain.RuleConditions `json:"conditions"`
	Action         string                `json:"action"`
	ApprovalConfig domain.ApprovalConfig `json:"approval_config"`
	Priority       int                   `json:"priority"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRuleRequest) ToUseCaseInput() usecase.CreateRuleInput {
	return usecase.CreateRuleInput{
		Name:           r.Name,
		RuleType:       domain.RuleType(r.RuleType),
		Conditions:     r.Conditions,
		Action:         domain.RuleAction(r.Action),
		ApprovalConfig: r.ApprovalConfig,
		Priority:       r.Priority,
	}
}

// ProcessReimbursementRequest represents a request to pay out an approved
// claim.
type ProcessReimbursementRequest struct {
	Method          string `json:"method"`
	ProcessedBy     string `json:"processed_by,omitempty"`
	PaymentCurrency string `json:"payment_currency,omitempty"`
}

// ToUseCaseInput converts to use case input for the given claim.
func (r *ProcessReimbursementRequest) ToUseCaseInput(claimID string) usecase.ProcessInput {
	return usecase.ProcessInput{
		ClaimID:         claimID,
		Method:          domain.ReimbursementMethod(r.Method),
		ProcessedBy:     r.ProcessedBy,
		PaymentCurrency: r.PaymentCurrency,
	}
}

// AttachBatchRequest represents a request to tag a processed reimbursement
// with a settlement batch.
type AttachBatchRequest struct {
	BatchID string `json:"batch_id"`
}

// IngestRateRequest represents a request to record an exchange rate.
type IngestRateRequest struct {
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// ToUseCaseInput converts to use case input.
func (r *IngestRateRequest) ToUseCaseInput() usecase.IngestRateInput {
	return usecase.IngestRateInput{
		FromCurrency:  r.FromCurrency,
		ToCurrency:    r.ToCurrency,
		Rate:          r.Rate,
		EffectiveDate: r.EffectiveDate,
	}
}

// CreateBudgetRequest represents a request to record a budget envelope.
// A null department_id makes the envelope apply to every department.
type CreateBudgetRequest struct {
	DepartmentID *string         `json:"department_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBudgetRequest) ToUseCaseInput() usecase.CreateBudgetInput {
	return usecase.CreateBudgetInput{
		DepartmentID: r.DepartmentID,
		Amount:       r.Amount,
		Currency:     r.Currency,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
