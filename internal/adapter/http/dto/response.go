package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

// ClaimResponse represents an expense claim in API responses.
type ClaimResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	DepartmentID      string          `json:"department_id"`
	EmployeeLevel     string          `json:"employee_level,omitempty"`
	Description       string          `json:"description,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	AutoApproveReason *string         `json:"auto_approve_reason,omitempty"`
	SubmittedAt       *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Items             []*ItemResponse `json:"items,omitempty"`
}

// ClaimFromDomain converts a domain claim to a response.
func ClaimFromDomain(c *domain.ExpenseClaim) *ClaimResponse {
	return &ClaimResponse{
		ID:                c.ID,
		EmployeeID:        c.EmployeeID,
		DepartmentID:      c.DepartmentID,
		EmployeeLevel:     c.EmployeeLevel,
		Description:       c.Description,
		TotalAmount:       c.TotalAmount,
		Currency:          c.Currency,
		Status:            string(c.Status),
		AutoApproveReason: c.AutoApproveReason,
		SubmittedAt:       c.SubmittedAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Items:             ItemsFromDomain(c.Items),
	}
}

// ClaimsFromDomain converts domain claims to responses.
func ClaimsFromDomain(claims []*domain.ExpenseClaim) []*ClaimResponse {
	result := make([]*ClaimResponse, len(claims))
	for i, c := range claims {
		result[i] = ClaimFromDomain(c)
	}
	return result
}

// ItemResponse represents an expense item in API responses.
type ItemResponse struct {
	ID                string          `json:"id"`
	ClaimID           string          `json:"claim_id"`
	CategoryID        string          `json:"category_id"`
	CategoryType      string          `json:"category_type,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	ExpenseDate       time.Time       `json:"expense_date"`
	Vendor            *string         `json:"vendor,omitempty"`
	ReceiptRef        *string         `json:"receipt_ref,omitempty"`
	OverCategoryLimit bool            `json:"over_category_limit"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ItemFromDomain converts a domain item to a response.
func ItemFromDomain(i *domain.ExpenseItem) *ItemResponse {
	return &ItemResponse{
		ID:                i.ID,
		ClaimID:           i.ClaimID,
		CategoryID:        i.CategoryID,
		CategoryType:      i.CategoryType,
		Amount:            i.Amount,
		Currency:          i.Currency,
		ExpenseDate:       i.ExpenseDate,
		Vendor:            i.Vendor,
		ReceiptRef:        i.ReceiptRef,
		OverCategoryLimit: i.OverCategoryLimit,
		CreatedAt:         i.CreatedAt,
	}
}

// ItemsFromDomain converts domain items to responses.
func ItemsFromDomain(items []*domain.ExpenseItem) []*ItemResponse {
	if len(items) == 0 {
		return nil
	}
	result := make([]*ItemResponse, len(items))
	for i, item := range items {
		result[i] = ItemFromDomain(item)
	}
	return result
}

// ApprovalResponse represents one decision point in API responses.
type ApprovalResponse struct {
	ID                string     `json:"id"`
	ClaimID           string     `json:"claim_id"`
	ApproverID        string     `json:"approver_id"`
	Role              string     `json:"role,omitempty"`
	Level             int        `json:"level"`
	RequiredApprovals int        `json:"required_approvals"`
	Status            string     `json:"status"`
	Comment           *string    `json:"comment,omitempty"`
	Superseded        bool       `json:"superseded"`
	SupersededBy      *string    `json:"superseded_by,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ApprovalFromDomain converts a domain approval to a response.
func ApprovalFromDomain(a *domain.Approval) *ApprovalResponse {
	return &ApprovalResponse{
		ID:                a.ID,
		ClaimID:           a.ClaimID,
		ApproverID:        a.ApproverID,
		Role:              a.Role,
		Level:             a.Level,
		RequiredApprovals: a.RequiredApprovals,
		Status:            string(a.Status),
		Comment:           a.Comment,
		Superseded:        a.Superseded,
		SupersededBy:      a.SupersededBy,
		DecidedAt:         a.DecidedAt,
		CreatedAt:         a.CreatedAt,
	}
}

// ApprovalsFromDomain converts domain approvals to responses.
func ApprovalsFromDomain(approvals []*domain.Approval) []*ApprovalResponse {
	result := make([]*ApprovalResponse, len(approvals))
	for i, a := range approvals {
		result[i] = ApprovalFromDomain(a)
	}
	return result
}

// SubmitResponse reports how the rule engine routed a submitted claim.
type SubmitResponse struct {
	Claim       *ClaimResponse      `json:"claim"`
	MatchedRule *RuleResponse       `json:"matched_rule,omitempty"`
	Action      string              `json:"action,omitempty"`
	Approvals   []*ApprovalResponse `json:"approvals,omitempty"`
}

// SubmitFromResult converts a submission result to a response.
func SubmitFromResult(res *usecase.SubmitResult) *SubmitResponse {
	resp := &SubmitResponse{
		Claim:  ClaimFromDomain(res.Claim),
		Action: string(res.Action),
	}
	if res.MatchedRule != nil {
		resp.MatchedRule = RuleFromDomain(res.MatchedRule)
	}
	if len(res.Approvals) > 0 {
		resp.Approvals = ApprovalsFromDomain(res.Approvals)
	}
	return resp
}

// DecisionResponse reports the plan state after a recorded decision.
type DecisionResponse struct {
	Approval *ApprovalResponse `json:"approval"`
	Outcome  string            `json:"outcome"`
	Claim    *ClaimResponse    `json:"claim"`
}

// DecisionFromResult converts a decision result to a response.
func DecisionFromResult(res *usecase.DecisionResult) *DecisionResponse {
	return &DecisionResponse{
		Approval: ApprovalFromDomain(res.Approval),
		Outcome:  string(res.Outcome),
		Claim:    ClaimFromDomain(res.Claim),
	}
}

// PlanResponse is a claim's full approval plan with its aggregate outcome.
type PlanResponse struct {
	ClaimID   string              `json:"claim_id"`
	Outcome   string              `json:"outcome"`
	Approvals []*ApprovalResponse `json:"approvals"`
}

// RuleResponse represents an approval rule in API responses.
type RuleResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	RuleType       string                `json:"rule_type"`
	Action         string                `json:"action"`
	Priority       int                   `json:"priority"`
	IsActive       bool                  `json:"is_active"`
	Conditions     domain.RuleConditions `json:"conditions"`
	ApprovalConfig domain.ApprovalConfig `json:"approval_config"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// RuleFromDomain converts a domain rule to a response.
func RuleFromDomain(r *domain.ApprovalRule) *RuleResponse {
	return &RuleResponse{
		ID:             r.ID,
		Name:           r.Name,
		RuleType:       string(r.Type),
		Action:         string(r.Action),
		Priority:       r.Priority,
		IsActive:       r.IsActive,
		Conditions:     r.Conditions,
		ApprovalConfig: r.ApprovalConfig,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RulesFromDomain converts domain rules to responses.
func RulesFromDomain(rules []*domain.ApprovalRule) []*RuleResponse {
	result := make([]*RuleResponse, len(rules))
	for i, r := range rules {
		result[i] = RuleFromDomain(r)
	}
	return result
}

// ReimbursementResponse represents a reimbursement in API responses.
type ReimbursementResponse struct {
	ID          string          `json:"id"`
	ClaimID     string          `json:"claim_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"method"`
	ProcessedBy string          `json:"processed_by,omitempty"`
	BatchID     *string         `json:"batch_id,omitempty"`
	Status      string          `json:"status"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReimbursementFromDomain converts a domain reimbursement to a response.
func ReimbursementFromDomain(r *domain.Reimbursement) *ReimbursementResponse {
	return &ReimbursementResponse{
		ID:          r.ID,
		ClaimID:     r.ClaimID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Method:      string(r.Method),
		ProcessedBy: r.ProcessedBy,
		BatchID:     r.BatchID,
		Status:      string(r.Status),
		ProcessedAt: r.ProcessedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// ReimbursementsFromDomain converts domain reimbursements to responses.
func ReimbursementsFromDomain(rs []*domain.Reimbursement) []*ReimbursementResponse {
	result := make([]*ReimbursementResponse, len(rs))
	for i, r := range rs {
		result[i] = ReimbursementFromDomain(r)
	}
	return result
}

// RateResponse represents an exchange rate in API responses.
type RateResponse struct {
	ID            string          `json:"id"`
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate time.Time       `json:"effective_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RateFromDomain converts a domain rate to a response.
func RateFromDomain(r *domain.ExchangeRate) *RateResponse {
	return &RateResponse{
		ID:            r.ID,
		FromCurrency:  r.FromCurrency,
		ToCurrency:    r.ToCurrency,
		Rate:          r.Rate,
		EffectiveDate: r.EffectiveDate,
		CreatedAt:     r.CreatedAt,
	}
}

// BudgetResponse represents a budget envelope in API responses.
type BudgetResponse struct {
	ID           string          `json:"id"`
	DepartmentID *string         `json:"department_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BudgetFromDomain converts a domain budget to a response.
func BudgetFromDomain(b *domain.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:           b.ID,
		DepartmentID: b.DepartmentID,
		Amount:       b.Amount,
		Currency:     b.Currency,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		CreatedAt:    b.CreatedAt,
	}
}

// EventResponse represents one entry of a claim's event log.
type EventResponse struct {
	ID            string    `json:"id"`
	AggregateID   string    `json:"aggregate_id"`
	AggregateType string    `json:"aggregate_type"`
	EventType     string    `json:"event_type"`
	Payload       any       `json:"payload"`
	CreatedAt     time.Time `json:"created_at"`
	Published     bool      `json:"published"`
}

// EventFromDomain converts a domain outbox event to a response.
func EventFromDomain(e *domain.OutboxEvent) *EventResponse {
	return &EventResponse{
		ID:            e.ID,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		EventType:     e.EventType,
		Payload:       e.Payload,
		CreatedAt:     e.CreatedAt,
		Published:     e.Published,
	}
}

// EventsFromDomain converts domain outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = EventFromDomain(e)
	}
	return result
}

// StatsResponse represents per-status claim counts.
type StatsResponse struct {
	ByStatus map[string]int64 `json:"by_status"`
	Total    int64            `json:"total"`
}

// StatsFromUseCase converts claim stats to a response.
func StatsFromUseCase(s *usecase.ClaimStats) *StatsResponse {
	byStatus := make(map[string]int64, len(s.ByStatus))
	for status, n := range s.ByStatus {
		byStatus[string(status)] = n
	}
	return &StatsResponse{ByStatus: byStatus, Total: s.Total}
}

// ListClaimsResponse wraps a page of claims.
type ListClaimsResponse struct {
	Claims []*ClaimResponse `json:"claims"`
	Total  int64            `json:"total"`
}

// ListRulesResponse wraps a page of rules.
type ListRulesResponse struct {
	Rules []*RuleResponse `json:"rules"`
	Total int64           `json:"total"`
}

// ListApprovalsResponse wraps a page of approvals.
type ListApprovalsResponse struct {
	Approvals []*ApprovalResponse `json:"approvals"`
	Total     int64               `json:"total"`
}

// ListEventsResponse wraps a page of claim events.
type ListEventsResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int64            `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
