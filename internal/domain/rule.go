package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RuleType selects which condition variant a rule carries.
type RuleType string

const (
	RuleTypeAmountThreshold RuleType = "AMOUNT_THRESHOLD"
	RuleTypeCategory        RuleType = "CATEGORY"
	RuleTypeDepartment      RuleType = "DEPARTMENT"
	RuleTypeEmployeeLevel   RuleType = "EMPLOYEE_LEVEL"
	RuleTypeProject         RuleType = "PROJECT"
	RuleTypeCustom          RuleType = "CUSTOM"
)

// RuleAction is the routing decision a matched rule assigns to a claim.
type RuleAction string

const (
	ActionAutoApprove       RuleAction = "AUTO_APPROVE"
	ActionRequireApproval   RuleAction = "REQUIRE_APPROVAL"
	ActionRequireMultiLevel RuleAction = "REQUIRE_MULTI_LEVEL"
	ActionEscalate          RuleAction = "ESCALATE"
	ActionReject            RuleAction = "REJECT"
)

// RuleConditions is the typed predicate of an approval rule. Which fields may
// be set is fixed per RuleType and validated at rule creation, never at
// evaluation time. All set fields are AND-combined when matching.
type RuleConditions struct {
	// Amount bounds are inclusive and compared in Currency. Empty Currency
	// means the bounds are compared in the fact's reference currency.
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
	Currency  string           `json:"currency,omitempty"`

	// CategoryTypes uses any-match semantics: the claim must contain at least
	// one item whose category type is in the set.
	CategoryTypes []string `json:"category_types,omitempty"`

	DepartmentIDs  []string `json:"department_ids,omitempty"`
	EmployeeLevels []string `json:"employee_levels,omitempty"`
	ProjectIDs     []string `json:"project_ids,omitempty"`

	// ExceedsBudget, when set, requires the claim's over-budget computation
	// to equal the given value. Budget rows are consumed read-only.
	ExceedsBudget *bool `json:"exceeds_budget,omitempty"`
}

// Validate enforces the fixed schema per rule type.
func (c *RuleConditions) Validate(ruleType RuleType) error {
	hasAmount := c.MinAmount != nil || c.MaxAmount != nil

	if c.MinAmount != nil && c.MaxAmount != nil && c.MinAmount.GreaterThan(*c.MaxAmount) {
		return fmt.Errorf("%w: min_amount exceeds max_amount", ErrInvalidConditions)
	}

	if c.Currency != "" {
		if err := ValidateCurrency(c.Currency); err != nil {
			return err
		}
	}

	switch ruleType {
	case RuleTypeAmountThreshold:
		if !hasAmount {
			return fmt.Errorf("%w: %s requires min_amount or max_amount", ErrInvalidConditions, ruleType)
		}
	case RuleTypeCategory:
		if len(c.CategoryTypes) == 0 {
			return fmt.Errorf("%w: %s requires category_types", ErrInvalidConditions, ruleType)
		}
	case RuleTypeDepartment:
		if len(c.DepartmentIDs) == 0 {
			return fmt.Errorf("%w: %s requires department_ids", ErrInvalidConditions, ruleType)
		}
	case RuleTypeEmployeeLevel:
		if len(c.EmployeeLevels) == 0 {
			return fmt.Errorf("%w: %s requires employee_levels", ErrInvalidConditions, ruleType)
		}
	case RuleTypeProject:
		if len(c.ProjectIDs) == 0 {
			return fmt.Errorf("%w: %s requires project_ids", ErrInvalidConditions, ruleType)
		}
	case RuleTypeCustom:
		// Any combination is allowed.
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidConditions, ruleType)
	}

	return nil
}

// Fact is the normalized, read-only snapshot of claim attributes fed into
// rule evaluation. Amount is expressed in the reference currency.
type Fact struct {
	ClaimID       string
	EmployeeID    string
	EmployeeLevel string
	DepartmentID  string
	ProjectID     string
	Amount        decimal.Decimal
	Currency      string
	CategoryTypes []string
	ExceedsBudget bool
}

// Matches evaluates every set condition against the fact. amountInRuleCurrency
// is the fact amount already converted into the rule's comparison currency;
// the conversion is the caller's concern because it needs rate lookups.
func (c *RuleConditions) Matches(f *Fact, amountInRuleCurrency decimal.Decimal) bool {
	if c.MinAmount != nil && amountInRuleCurrency.LessThan(*c.MinAmount) {
		return false
	}

	if c.MaxAmount != nil && amountInRuleCurrency.GreaterThan(*c.MaxAmount) {
		return false
	}

	if len(c.CategoryTypes) > 0 && !containsAny(c.CategoryTypes, f.CategoryTypes) {
		return false
	}

	if len(c.DepartmentIDs) > 0 && !contains(c.DepartmentIDs, f.DepartmentID) {
		return false
	}

	if len(c.EmployeeLevels) > 0 && !contains(c.EmployeeLevels, f.EmployeeLevel) {
		return false
	}

	if len(c.ProjectIDs) > 0 && !contains(c.ProjectIDs, f.ProjectID) {
		return false
	}

	if c.ExceedsBudget != nil && *c.ExceedsBudget != f.ExceedsBudget {
		return false
	}

	return true
}

// ApprovalLevel is one stage of a multi-stage plan.
type ApprovalLevel struct {
	Level             int      `json:"level"`
	Role              string   `json:"role"`
	ApproverIDs       []string `json:"approver_ids"`
	RequiredApprovals int      `json:"required_approvals"`
}

// ApprovalConfig is what a matched rule's action expands into.
type ApprovalConfig struct {
	Levels            []ApprovalLevel `json:"levels,omitempty"`
	AutoApproveReason string          `json:"auto_approve_reason,omitempty"`
}

// Validate checks the config is materializable for the given action.
func (cfg *ApprovalConfig) Validate(action RuleAction) error {
	switch action {
	case ActionAutoApprove, ActionReject:
		return nil
	case ActionRequireApproval, ActionRequireMultiLevel, ActionEscalate:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidPlanConfig, action)
	}

	if len(cfg.Levels) == 0 {
		return fmt.Errorf("%w: action %s requires at least one level", ErrInvalidPlanConfig, action)
	}

	if action == ActionRequireApproval && len(cfg.Levels) > 1 {
		return fmt.Errorf("%w: %s allows exactly one level", ErrInvalidPlanConfig, action)
	}

	for i, lvl := range cfg.Levels {
		if lvl.Level != i+1 {
			return fmt.Errorf("%w: levels must be contiguous starting at 1", ErrInvalidPlanConfig)
		}

		if lvl.RequiredApprovals < 1 {
			return fmt.Errorf("%w: level %d requires at least one approval", ErrInvalidPlanConfig, lvl.Level)
		}

		if len(lvl.ApproverIDs) < lvl.RequiredApprovals {
			return fmt.Errorf("%w: level %d has fewer approvers than required approvals", ErrInvalidPlanConfig, lvl.Level)
		}
	}

	return nil
}

// ApprovalRule routes submitted claims. Rules are immutable at evaluation
// time: the matcher reads a snapshot of active rules ordered by priority
// ascending, creation time as tie-break.
type ApprovalRule struct {
	ID             string
	Name           string
	Type           RuleType
	Action         RuleAction
	Priority       int
	IsActive       bool
	Conditions     RuleConditions
	ApprovalConfig ApprovalConfig
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the rule is internally consistent.
func (r *ApprovalRule) Validate() error {
	if err := r.Conditions.Validate(r.Type); err != nil {
		return err
	}

	return r.ApprovalConfig.Validate(r.Action)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}

	return false
}

func containsAny(set, values []string) bool {
	for _, v := range values {
		if contains(set, v) {
			return true
		}
	}

	return false
}
