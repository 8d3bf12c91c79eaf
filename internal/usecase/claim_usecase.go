package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/infrastructure/metrics"
)

// ClaimUseCase owns the expense claim lifecycle: drafting, item editing and
// the submission transaction that runs the rule engine.
type ClaimUseCase struct {
	txManager    TransactionManager
	claimRepo    ClaimRepository
	itemRepo     ItemRepository
	categoryRepo CategoryRepository
	approvalRepo ApprovalRepository
	outboxRepo   OutboxRepository
	matcher      *RuleMatcher
	converter    *CurrencyConverter
	idGen        IDGenerator
	refCurrency  string
	metrics      *metrics.Metrics
	retrier      Retrier
}

// NewClaimUseCase creates a new ClaimUseCase.
func NewClaimUseCase(
	txManager TransactionManager,
	claimRepo ClaimRepository,
	itemRepo ItemRepository,
	categoryRepo CategoryRepository,
	approvalRepo ApprovalRepository,
	outboxRepo OutboxRepository,
	matcher *RuleMatcher,
	converter *CurrencyConverter,
	idGen IDGenerator,
	refCurrency string,
	metrics *metrics.Metrics,
) *ClaimUseCase {
	if refCurrency == "" {
		refCurrency = DefaultReferenceCurrency
	}

	return &ClaimUseCase{
		txManager:    txManager,
		claimRepo:    claimRepo,
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		approvalRepo: approvalRepo,
		outboxRepo:   outboxRepo,
		matcher:      matcher,
		converter:    converter,
		idGen:        idGen,
		refCurrency:  refCurrency,
		metrics:      metrics,
	}
}

// WithRetrier re-runs the submission transaction on transient database
// errors. Submissions contend with decisions and item edits on the claim row
// lock, so deadlocks and serialization failures are expected under load.
func (uc *ClaimUseCase) WithRetrier(retrier Retrier) *ClaimUseCase {
	uc.retrier = retrier
	return uc
}

// CreateClaimInput represents input for creating a draft claim.
type CreateClaimInput struct {
	EmployeeID    string
	DepartmentID  string
	EmployeeLevel string
	Currency      string
	Description   string
}

// CreateClaim creates a new claim in DRAFT.
func (uc *ClaimUseCase) CreateClaim(ctx context.Context, input CreateClaimInput) (*domain.ExpenseClaim, error) {
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claim := &domain.ExpenseClaim{
		ID:            uc.idGen.Generate(),
		EmployeeID:    input.EmployeeID,
		DepartmentID:  input.DepartmentID,
		EmployeeLevel: input.EmployeeLevel,
		Description:   input.Description,
		TotalAmount:   decimal.Zero,
		Currency:      input.Currency,
		Status:        domain.ClaimStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.claimRepo.Create(ctx, claim); err != nil {
		return nil, err
	}

	return claim, nil
}

// AddItemInput represents input for adding an expense item to a draft claim.
type AddItemInput struct {
	ClaimID     string
	EmployeeID  string
	CategoryID  string
	Amount      decimal.Decimal
	Currency    string
	ExpenseDate time.Time
	Vendor      *string
	ReceiptRef  *string
}

// AddItem adds an expense item to a DRAFT claim. The draft check and the
// insert run under the claim row lock, so an item cannot slip in between a
// concurrent submission's status flip and its item snapshot.
func (uc *ClaimUseCase) AddItem(ctx context.Context, input AddItemInput) (*domain.ExpenseItem, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	category, err := uc.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	claim, err := uc.claimRepo.GetByIDForUpdate(txCtx, tx, input.ClaimID)
	if err != nil {
		return nil, err
	}

	if claim.EmployeeID != input.EmployeeID {
		return nil, domain.ErrNotClaimOwner
	}

	if !claim.Editable() {
		return nil, domain.ErrClaimNotEditable
	}

	item := &domain.ExpenseItem{
		ID:                uc.idGen.Generate(),
		ClaimID:           claim.ID,
		CategoryID:        category.ID,
		CategoryType:      category.Type,
		Amount:            input.Amount,
		Currency:          input.Currency,
		ExpenseDate:       input.ExpenseDate,
		Vendor:            input.Vendor,
		ReceiptRef:        input.ReceiptRef,
		OverCategoryLimit: category.OverLimit(input.Amount),
		CreatedAt:         time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := uc.itemRepo.Create(txCtx, tx, item); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return item, nil
}

// RemoveItem removes an item from a DRAFT claim, under the same claim lock
// discipline as AddItem.
func (uc *ClaimUseCase) RemoveItem(ctx context.Context, claimID, itemID, employeeID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	claim, err := uc.claimRepo.GetByIDForUpdate(txCtx, tx, claimID)
	if err != nil {
		return err
	}

	if claim.EmployeeID != employeeID {
		return domain.ErrNotClaimOwner
	}

	if !claim.Editable() {
		return domain.ErrClaimNotEditable
	}

	if err := uc.itemRepo.Delete(txCtx, tx, itemID, claimID); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// SubmitResult reports how the rule engine routed a submitted claim.
type SubmitResult struct {
	Claim       *domain.ExpenseClaim
	MatchedRule *domain.ApprovalRule
	Action      domain.RuleAction
	Approvals   []*domain.Approval
}

// SubmitClaim runs the single atomic submission transition: it freezes the
// claim's items, totals them in the claim currency, evaluates the rule
// snapshot and routes the claim. When no rule matches, the claim is left in
// SUBMITTED for manual intervention and domain.ErrNoApplicableRule is
// returned alongside the held claim.
func (uc *ClaimUseCase) SubmitClaim(ctx context.Context, claimID, submitterID string) (*SubmitResult, error) {
	if uc.retrier == nil {
		return uc.submitClaim(ctx, claimID, submitterID)
	}

	var result *SubmitResult

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.submitClaim(ctx, claimID, submitterID)
		return err
	})

	return result, err
}

func (uc *ClaimUseCase) submitClaim(ctx context.Context, claimID, submitterID string) (*SubmitResult, error) {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	claim, err := uc.claimRepo.GetByIDForUpdate(txCtx, tx, claimID)
	if err != nil {
		return nil, err
	}

	items, err := uc.itemRepo.ListByClaim(txCtx, tx, claimID)
	if err != nil {
		return nil, err
	}

	claim.Items = items

	now := time.Now().UTC()

	total, err := uc.totalInClaimCurrency(txCtx, claim, now)
	if err != nil {
		return nil, err
	}

	claim.TotalAmount = total

	if err := claim.ValidateSubmit(submitterID); err != nil {
		return nil, err
	}

	if err := claim.Transition(domain.ClaimStatusSubmitted); err != nil {
		return nil, err
	}

	claim.SubmittedAt = &now

	if err := uc.claimRepo.MarkSubmitted(txCtx, tx, claim.ID, total, now); err != nil {
		return nil, err
	}

	fact, err := uc.buildFact(txCtx, claim, now)
	if err != nil {
		return nil, err
	}

	matchStart := time.Now()
	rule, action, err := uc.matcher.Match(txCtx, tx, fact, now)
	if uc.metrics != nil {
		uc.metrics.MatchDuration.Observe(time.Since(matchStart).Seconds())
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoApplicableRule) {
			// Fail closed: commit the SUBMITTED claim so operators can route
			// it manually, then surface the configuration error.
			if heldErr := uc.emitEvent(txCtx, tx, domain.EventTypeClaimHeld, claim, nil, ""); heldErr != nil {
				return nil, heldErr
			}

			if commitErr := tx.Commit(txCtx); commitErr != nil {
				return nil, commitErr
			}

			if uc.metrics != nil {
				uc.metrics.ClaimsHeld.Inc()
			}

			return &SubmitResult{Claim: claim}, err
		}

		return nil, err
	}

	if err := uc.emitEvent(txCtx, tx, domain.EventTypeClaimSubmitted, claim, rule, action); err != nil {
		return nil, err
	}

	result := &SubmitResult{Claim: claim, MatchedRule: rule, Action: action}

	switch action {
	case domain.ActionAutoApprove:
		if err := uc.autoApprove(txCtx, tx, claim, rule, now); err != nil {
			return nil, err
		}

	case domain.ActionReject:
		if err := claim.Transition(domain.ClaimStatusRejected); err != nil {
			return nil, err
		}

		if err := uc.claimRepo.UpdateStatus(txCtx, tx, claim.ID, domain.ClaimStatusRejected, now); err != nil {
			return nil, err
		}

		if err := uc.emitEvent(txCtx, tx, domain.EventTypeClaimRejected, claim, rule, action); err != nil {
			return nil, err
		}

	case domain.ActionRequireApproval, domain.ActionRequireMultiLevel, domain.ActionEscalate:
		approvals, err := uc.materializePlan(txCtx, tx, claim, rule, now)
		if err != nil {
			return nil, err
		}

		result.Approvals = approvals
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ClaimsSubmitted.Inc()
		uc.metrics.RuleMatches.WithLabelValues(string(action)).Inc()
		uc.metrics.SubmitDuration.Observe(time.Since(start).Seconds())

		amount, _ := fact.Amount.Float64()
		uc.metrics.ClaimAmount.Observe(amount)
	}

	return result, nil
}

// totalInClaimCurrency sums item amounts converted into the claim currency
// at submission time, so the claim total invariant holds for mixed-currency
// items.
func (uc *ClaimUseCase) totalInClaimCurrency(ctx context.Context, claim *domain.ExpenseClaim, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, item := range claim.Items {
		amount, err := uc.converter.Convert(ctx, item.Amount, item.Currency, claim.Currency, asOf)
		if err != nil {
			return decimal.Zero, err
		}

		total = total.Add(amount)
	}

	return total, nil
}

// buildFact normalizes the claim into the read-only snapshot rules evaluate.
func (uc *ClaimUseCase) buildFact(ctx context.Context, claim *domain.ExpenseClaim, asOf time.Time) (*domain.Fact, error) {
	amount, err := uc.converter.Convert(ctx, claim.TotalAmount, claim.Currency, uc.refCurrency, asOf)
	if err != nil {
		return nil, err
	}

	fact := &domain.Fact{
		ClaimID:       claim.ID,
		EmployeeID:    claim.EmployeeID,
		EmployeeLevel: claim.EmployeeLevel,
		DepartmentID:  claim.DepartmentID,
		Amount:        amount,
		Currency:      uc.refCurrency,
		CategoryTypes: claim.CategoryTypes(),
	}

	exceeds, err := uc.matcher.ExceedsBudget(ctx, fact, asOf)
	if err != nil {
		return nil, err
	}

	fact.ExceedsBudget = exceeds

	return fact, nil
}

func (uc *ClaimUseCase) autoApprove(ctx context.Context, tx Transaction, claim *domain.ExpenseClaim, rule *domain.ApprovalRule, now time.Time) error {
	if err := claim.Transition(domain.ClaimStatusApproved); err != nil {
		return err
	}

	if err := uc.claimRepo.UpdateStatus(ctx, tx, claim.ID, domain.ClaimStatusApproved, now); err != nil {
		return err
	}

	reason := rule.ApprovalConfig.AutoApproveReason
	if reason == "" {
		reason = "matched auto-approve rule " + rule.ID
	}

	claim.AutoApproveReason = &reason

	if err := uc.claimRepo.SetAutoApproveReason(ctx, tx, claim.ID, reason, now); err != nil {
		return err
	}

	return uc.emitEvent(ctx, tx, domain.EventTypeClaimApproved, claim, rule, rule.Action)
}

// materializePlan expands the matched rule's approval config into one
// Approval row per required decision slot and moves the claim to
// PENDING_APPROVAL.
func (uc *ClaimUseCase) materializePlan(ctx context.Context, tx Transaction, claim *domain.ExpenseClaim, rule *domain.ApprovalRule, now time.Time) ([]*domain.Approval, error) {
	if err := claim.Transition(domain.ClaimStatusPendingApproval); err != nil {
		return nil, err
	}

	if err := uc.claimRepo.UpdateStatus(ctx, tx, claim.ID, domain.ClaimStatusPendingApproval, now); err != nil {
		return nil, err
	}

	var approvals []*domain.Approval

	for _, level := range rule.ApprovalConfig.Levels {
		for slot := 0; slot < level.RequiredApprovals; slot++ {
			approvals = append(approvals, &domain.Approval{
				ID:                uc.idGen.Generate(),
				ClaimID:           claim.ID,
				ApproverID:        level.ApproverIDs[slot],
				Role:              level.Role,
				Level:             level.Level,
				RequiredApprovals: level.RequiredApprovals,
				Status:            domain.ApprovalStatusPending,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
		}
	}

	if err := uc.approvalRepo.CreateBatch(ctx, tx, approvals); err != nil {
		return nil, err
	}

	return approvals, nil
}

func (uc *ClaimUseCase) emitEvent(ctx context.Context, tx Transaction, eventType string, claim *domain.ExpenseClaim, rule *domain.ApprovalRule, action domain.RuleAction) error {
	payload := domain.ClaimEventPayload{
		ClaimID:     claim.ID,
		EmployeeID:  claim.EmployeeID,
		TotalAmount: claim.TotalAmount.String(),
		Currency:    claim.Currency,
	}

	if rule != nil {
		payload.RuleID = rule.ID
		payload.Action = string(action)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   claim.ID,
		AggregateType: domain.AggregateTypeClaim,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
		Published:     false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

// GetClaim retrieves a claim with its items and per-claim event history.
func (uc *ClaimUseCase) GetClaim(ctx context.Context, id string) (*domain.ExpenseClaim, error) {
	claim, err := uc.claimRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := uc.itemRepo.ListByClaim(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	claim.Items = items

	return claim, nil
}

// ClaimEvents returns the claim's event history, oldest first.
func (uc *ClaimUseCase) ClaimEvents(ctx context.Context, claimID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if _, err := uc.claimRepo.GetByID(ctx, claimID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeClaim, claimID, limit, offset)
}

// ListClaimsByEmployeeInput represents input for listing claims.
type ListClaimsByEmployeeInput struct {
	EmployeeID string
	Limit      int
	Offset     int
}

// ListClaimsByEmployee lists an employee's claims.
func (uc *ClaimUseCase) ListClaimsByEmployee(ctx context.Context, input ListClaimsByEmployeeInput) ([]*domain.ExpenseClaim, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.claimRepo.ListByEmployee(ctx, input.EmployeeID, limit, offset)
}

// ClaimStats is the per-status claim count report. Escalated claims are not
// a distinct bucket: they stay in PENDING_APPROVAL until decided.
type ClaimStats struct {
	ByStatus map[domain.ClaimStatus]int64
	Total    int64
}

// Stats aggregates claim counts per status.
func (uc *ClaimUseCase) Stats(ctx context.Context) (*ClaimStats, error) {
	counts, err := uc.claimRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ClaimStats{ByStatus: counts}
	for status, n := range counts {
		stats.Total += n
		if uc.metrics != nil {
			uc.metrics.ClaimsByStatus.WithLabelValues(string(status)).Set(float64(n))
		}
	}

	return stats, nil
}
