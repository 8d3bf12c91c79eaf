package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
)

// BudgetUseCase ingests the budget envelopes the rule engine reads when a
// rule conditions on budget pressure.
type BudgetUseCase struct {
	budgetRepo BudgetRepository
	idGen      IDGenerator
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(budgetRepo BudgetRepository, idGen IDGenerator) *BudgetUseCase {
	return &BudgetUseCase{
		budgetRepo: budgetRepo,
		idGen:      idGen,
	}
}

// CreateBudgetInput represents input for recording a budget envelope.
type CreateBudgetInput struct {
	DepartmentID *string
	Amount       decimal.Decimal
	Currency     string
	StartDate    time.Time
	EndDate      time.Time
}

// CreateBudget records a budget envelope.
func (uc *BudgetUseCase) CreateBudget(ctx context.Context, input CreateBudgetInput) (*domain.Budget, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if !input.EndDate.After(input.StartDate) {
		return nil, domain.ErrInvalidBudgetWindow
	}

	budget := &domain.Budget{
		ID:           uc.idGen.Generate(),
		DepartmentID: input.DepartmentID,
		Amount:       input.Amount,
		Currency:     input.Currency,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.budgetRepo.Create(ctx, budget); err != nil {
		return nil, err
	}

	return budget, nil
}
