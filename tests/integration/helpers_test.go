package integration

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/adapter/paymentrail"
	"github.com/fintally/claimcore/internal/adapter/repository/postgres"
	"github.com/fintally/claimcore/internal/usecase"
)

// stack wires the full use case layer over a real database, the way the
// server binary does.
type stack struct {
	claimUC         *usecase.ClaimUseCase
	approvalUC      *usecase.ApprovalUseCase
	ruleUC          *usecase.RuleUseCase
	rateUC          *usecase.RateUseCase
	reimbursementUC *usecase.ReimbursementUseCase
	outboxRepo      *postgres.OutboxRepository
}

func newStack(pool *pgxpool.Pool) *stack {
	claimRepo := postgres.NewClaimRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	ruleRepo := postgres.NewRuleRepository(pool)
	approvalRepo := postgres.NewApprovalRepository(pool)
	reimbursementRepo := postgres.NewReimbursementRepository(pool)
	rateRepo := postgres.NewRateRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()

	converter := usecase.NewCurrencyConverter(rateRepo)
	matcher := usecase.NewRuleMatcher(ruleRepo, budgetRepo, converter)

	return &stack{
		claimUC: usecase.NewClaimUseCase(txManager, claimRepo, itemRepo, categoryRepo,
			approvalRepo, outboxRepo, matcher, converter, idGen, "USD", nil),
		approvalUC:      usecase.NewApprovalUseCase(txManager, claimRepo, approvalRepo, outboxRepo, idGen, nil),
		ruleUC:          usecase.NewRuleUseCase(ruleRepo, idGen, nil),
		rateUC:          usecase.NewRateUseCase(rateRepo, converter, idGen),
		reimbursementUC: usecase.NewReimbursementUseCase(txManager, claimRepo, reimbursementRepo, outboxRepo, paymentrail.NewLogRail(nil), converter, idGen, nil),
		outboxRepo:      outboxRepo,
	}
}
