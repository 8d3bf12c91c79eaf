package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
	"github.com/fintally/claimcore/internal/usecase/mocks"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// matcherFixture wires a matcher over an in-memory rule catalog modeled on a
// small-company policy: cheap claims auto-approve, travel always needs a
// manager, large claims need two levels, everything else needs one approval.
func matcherFixture(t *testing.T) (*usecase.RuleMatcher, *mocks.MockBudgetRepository) {
	t.Helper()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ruleRepo := mocks.NewMockRuleRepository()
	rules := []*domain.ApprovalRule{
		{
			ID:       "rule-auto",
			Name:     "auto approve small claims",
			Type:     domain.RuleTypeAmountThreshold,
			Action:   domain.ActionAutoApprove,
			Priority: 10,
			IsActive: true,
			Conditions: domain.RuleConditions{
				MaxAmount: decPtr("50"),
			},
			ApprovalConfig: domain.ApprovalConfig{AutoApproveReason: "under small-claim threshold"},
			CreatedAt:      base,
		},
		{
			ID:       "rule-travel",
			Name:     "travel needs a manager",
			Type:     domain.RuleTypeCategory,
			Action:   domain.ActionRequireApproval,
			Priority: 20,
			IsActive: true,
			Conditions: domain.RuleConditions{
				CategoryTypes: []string{domain.CategoryTravel},
			},
			ApprovalConfig: domain.ApprovalConfig{
				Levels: []domain.ApprovalLevel{
					{Level: 1, Role: "manager", ApproverIDs: []string{"mgr-1"}, RequiredApprovals: 1},
				},
			},
			CreatedAt: base,
		},
		{
			ID:       "rule-large",
			Name:     "large claims need two levels",
			Type:     domain.RuleTypeAmountThreshold,
			Action:   domain.ActionRequireMultiLevel,
			Priority: 30,
			IsActive: true,
			Conditions: domain.RuleConditions{
				MinAmount: decPtr("1000"),
			},
			ApprovalConfig: domain.ApprovalConfig{
				Levels: []domain.ApprovalLevel{
					{Level: 1, Role: "manager", ApproverIDs: []string{"mgr-1"}, RequiredApprovals: 1},
					{Level: 2, Role: "finance", ApproverIDs: []string{"fin-1", "fin-2"}, RequiredApprovals: 2},
				},
			},
			CreatedAt: base,
		},
		{
			ID:       "rule-default",
			Name:     "everything else needs one approval",
			Type:     domain.RuleTypeAmountThreshold,
			Action:   domain.ActionRequireApproval,
			Priority: 40,
			IsActive: true,
			Conditions: domain.RuleConditions{
				MinAmount: decPtr("50.01"),
				MaxAmount: decPtr("999.99"),
			},
			ApprovalConfig: domain.ApprovalConfig{
				Levels: []domain.ApprovalLevel{
					{Level: 1, Role: "manager", ApproverIDs: []string{"mgr-1"}, RequiredApprovals: 1},
				},
			},
			CreatedAt: base,
		},
	}
	for _, r := range rules {
		if err := ruleRepo.Create(context.Background(), r); err != nil {
			t.Fatalf("seeding rules: %v", err)
		}
	}

	rateRepo := mocks.NewMockRateRepository()
	budgetRepo := mocks.NewMockBudgetRepository()

	return usecase.NewRuleMatcher(ruleRepo, budgetRepo, usecase.NewCurrencyConverter(rateRepo)), budgetRepo
}

func TestRuleMatcher_Match(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		fact           *domain.Fact
		expectedRuleID string
		expectedAction domain.RuleAction
		expectErr      error
	}{
		{
			name: "small meal auto-approves",
			fact: &domain.Fact{
				Amount:        decimal.RequireFromString("45"),
				Currency:      "GBP",
				CategoryTypes: []string{domain.CategoryMeals},
			},
			expectedRuleID: "rule-auto",
			expectedAction: domain.ActionAutoApprove,
		},
		{
			name: "large claim routes to multi-level",
			fact: &domain.Fact{
				Amount:        decimal.RequireFromString("1200"),
				Currency:      "GBP",
				CategoryTypes: []string{domain.CategoryEquipment},
			},
			expectedRuleID: "rule-large",
			expectedAction: domain.ActionRequireMultiLevel,
		},
		{
			name: "travel claim matches travel rule before default amount rule",
			fact: &domain.Fact{
				Amount:        decimal.RequireFromString("450"),
				Currency:      "GBP",
				CategoryTypes: []string{domain.CategoryTravel},
			},
			expectedRuleID: "rule-travel",
			expectedAction: domain.ActionRequireApproval,
		},
		{
			name: "boundary amount is inclusive",
			fact: &domain.Fact{
				Amount:        decimal.RequireFromString("50"),
				Currency:      "GBP",
				CategoryTypes: []string{domain.CategoryMeals},
			},
			expectedRuleID: "rule-auto",
			expectedAction: domain.ActionAutoApprove,
		},
		{
			name: "mid-range claim falls through to default rule",
			fact: &domain.Fact{
				Amount:        decimal.RequireFromString("450"),
				Currency:      "GBP",
				CategoryTypes: []string{domain.CategoryOffice},
			},
			expectedRuleID: "rule-default",
			expectedAction: domain.ActionRequireApproval,
		},
		{
			name: "no matching rule fails closed",
			fact: &domain.Fact{
				Amount:   decimal.RequireFromString("50.005"),
				Currency: "GBP",
			},
			expectErr: domain.ErrNoApplicableRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher, _ := matcherFixture(t)

			rule, action, err := matcher.Match(context.Background(), nil, tt.fact, asOf)

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rule.ID != tt.expectedRuleID {
				t.Errorf("expected rule %s, got %s", tt.expectedRuleID, rule.ID)
			}
			if action != tt.expectedAction {
				t.Errorf("expected action %s, got %s", tt.expectedAction, action)
			}
		})
	}
}

func TestRuleMatcher_PriorityTieBreak(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ruleRepo := mocks.NewMockRuleRepository()

	// Same priority, different creation times. The older rule wins.
	older := &domain.ApprovalRule{
		ID:             "rule-older",
		Type:           domain.RuleTypeAmountThreshold,
		Action:         domain.ActionAutoApprove,
		Priority:       10,
		IsActive:       true,
		Conditions:     domain.RuleConditions{MaxAmount: decPtr("100")},
		ApprovalConfig: domain.ApprovalConfig{},
		CreatedAt:      base,
	}
	newer := &domain.ApprovalRule{
		ID:             "rule-newer",
		Type:           domain.RuleTypeAmountThreshold,
		Action:         domain.ActionReject,
		Priority:       10,
		IsActive:       true,
		Conditions:     domain.RuleConditions{MaxAmount: decPtr("100")},
		ApprovalConfig: domain.ApprovalConfig{},
		CreatedAt:      base.Add(time.Hour),
	}
	ruleRepo.Create(context.Background(), newer)
	ruleRepo.Create(context.Background(), older)

	matcher := usecase.NewRuleMatcher(ruleRepo, mocks.NewMockBudgetRepository(), usecase.NewCurrencyConverter(mocks.NewMockRateRepository()))

	rule, _, err := matcher.Match(context.Background(), nil, &domain.Fact{
		Amount:   decimal.NewFromInt(50),
		Currency: "GBP",
	}, base.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.ID != "rule-older" {
		t.Errorf("expected rule-older to win the tie-break, got %s", rule.ID)
	}
}

func TestRuleMatcher_ConvertsAmountIntoRuleCurrency(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ruleRepo := mocks.NewMockRuleRepository()
	ruleRepo.Create(context.Background(), &domain.ApprovalRule{
		ID:       "rule-usd-cap",
		Type:     domain.RuleTypeAmountThreshold,
		Action:   domain.ActionAutoApprove,
		Priority: 10,
		IsActive: true,
		Conditions: domain.RuleConditions{
			MaxAmount: decPtr("60"),
			Currency:  "USD",
		},
		CreatedAt: asOf.AddDate(0, -1, 0),
	})

	rateRepo := mocks.NewMockRateRepository()
	rateRepo.Create(context.Background(), &domain.ExchangeRate{
		ID:            "rate-1",
		FromCurrency:  "GBP",
		ToCurrency:    "USD",
		Rate:          decimal.RequireFromString("1.30"),
		EffectiveDate: asOf.AddDate(0, 0, -5),
	})

	matcher := usecase.NewRuleMatcher(ruleRepo, mocks.NewMockBudgetRepository(), usecase.NewCurrencyConverter(rateRepo))

	// 45 GBP = 58.50 USD, inside the 60 USD cap.
	rule, _, err := matcher.Match(context.Background(), nil, &domain.Fact{
		Amount:   decimal.RequireFromString("45"),
		Currency: "GBP",
	}, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.ID != "rule-usd-cap" {
		t.Errorf("expected rule-usd-cap, got %s", rule.ID)
	}

	// 50 GBP = 65 USD, over the cap.
	_, _, err = matcher.Match(context.Background(), nil, &domain.Fact{
		Amount:   decimal.RequireFromString("50"),
		Currency: "GBP",
	}, asOf)
	if !errors.Is(err, domain.ErrNoApplicableRule) {
		t.Errorf("expected ErrNoApplicableRule, got %v", err)
	}
}

func TestRuleMatcher_ExceedsBudget(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dept := "dept-eng"

	tests := []struct {
		name     string
		budgets  []*domain.Budget
		amount   string
		expected bool
	}{
		{
			name:     "no budget rows means not over budget",
			amount:   "100000",
			expected: false,
		},
		{
			name: "claim under envelope",
			budgets: []*domain.Budget{
				{ID: "b1", DepartmentID: &dept, Amount: decimal.NewFromInt(1000), Currency: "GBP", StartDate: asOf.AddDate(0, -1, 0), EndDate: asOf.AddDate(0, 1, 0)},
			},
			amount:   "800",
			expected: false,
		},
		{
			name: "claim over envelope",
			budgets: []*domain.Budget{
				{ID: "b1", DepartmentID: &dept, Amount: decimal.NewFromInt(1000), Currency: "GBP", StartDate: asOf.AddDate(0, -1, 0), EndDate: asOf.AddDate(0, 1, 0)},
			},
			amount:   "1200",
			expected: true,
		},
		{
			name: "expired budget window is ignored",
			budgets: []*domain.Budget{
				{ID: "b1", DepartmentID: &dept, Amount: decimal.NewFromInt(1000), Currency: "GBP", StartDate: asOf.AddDate(-1, 0, 0), EndDate: asOf.AddDate(0, -6, 0)},
			},
			amount:   "1200",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budgetRepo := mocks.NewMockBudgetRepository()
			for _, b := range tt.budgets {
				budgetRepo.Create(context.Background(), b)
			}

			matcher := usecase.NewRuleMatcher(mocks.NewMockRuleRepository(), budgetRepo, usecase.NewCurrencyConverter(mocks.NewMockRateRepository()))

			got, err := matcher.ExceedsBudget(context.Background(), &domain.Fact{
				DepartmentID: dept,
				Amount:       decimal.RequireFromString(tt.amount),
				Currency:     "GBP",
			}, asOf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
