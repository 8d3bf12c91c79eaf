package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
)

// RuleMatcher evaluates the active-rule snapshot against a claim fact and
// returns the first matching rule. First-match-wins: rule authors order
// specificity through priority values, the matcher never infers it.
type RuleMatcher struct {
	ruleRepo   RuleRepository
	budgetRepo BudgetRepository
	converter  *CurrencyConverter
}

// NewRuleMatcher creates a new RuleMatcher.
func NewRuleMatcher(ruleRepo RuleRepository, budgetRepo BudgetRepository, converter *CurrencyConverter) *RuleMatcher {
	return &RuleMatcher{
		ruleRepo:   ruleRepo,
		budgetRepo: budgetRepo,
		converter:  converter,
	}
}

// Match evaluates active rules in (priority, creation-time) order and returns
// the first rule whose conditions all hold, along with its resolved action.
// A non-nil tx reads the rule snapshot inside the caller's transaction so a
// concurrent rule edit cannot produce a mixed snapshot. No match is a
// configuration error: domain.ErrNoApplicableRule is returned and the caller
// holds the claim rather than guessing a route.
func (m *RuleMatcher) Match(ctx context.Context, tx Transaction, fact *domain.Fact, asOf time.Time) (*domain.ApprovalRule, domain.RuleAction, error) {
	rules, err := m.ruleRepo.ListActive(ctx, tx)
	if err != nil {
		return nil, "", err
	}

	for _, rule := range rules {
		matched, err := m.evaluate(ctx, rule, fact, asOf)
		if err != nil {
			return nil, "", err
		}

		if matched {
			return rule, rule.Action, nil
		}
	}

	return nil, "", domain.ErrNoApplicableRule
}

func (m *RuleMatcher) evaluate(ctx context.Context, rule *domain.ApprovalRule, fact *domain.Fact, asOf time.Time) (bool, error) {
	amount := fact.Amount

	// Amount bounds are compared in the rule's declared currency.
	if cur := rule.Conditions.Currency; cur != "" && cur != fact.Currency {
		converted, err := m.converter.Convert(ctx, fact.Amount, fact.Currency, cur, asOf)
		if err != nil {
			return false, err
		}

		amount = converted
	}

	return rule.Conditions.Matches(fact, amount), nil
}

// ExceedsBudget reports whether the claim amount exceeds the department's
// active budget envelope at the given instant. Budgets are read-only inputs
// here; when no budget row covers the department the answer is false.
func (m *RuleMatcher) ExceedsBudget(ctx context.Context, fact *domain.Fact, asOf time.Time) (bool, error) {
	if fact.DepartmentID == "" {
		return false, nil
	}

	budgets, err := m.budgetRepo.GetActiveForDepartment(ctx, fact.DepartmentID, asOf)
	if err != nil {
		return false, err
	}

	if len(budgets) == 0 {
		return false, nil
	}

	available := decimal.Zero
	currency := budgets[0].Currency

	for _, b := range budgets {
		if b.Currency == currency {
			available = available.Add(b.Amount)
		}
	}

	amount, err := m.converter.Convert(ctx, fact.Amount, fact.Currency, currency, asOf)
	if err != nil {
		return false, err
	}

	return amount.GreaterThan(available), nil
}
