package usecase

import (
	"context"
	"time"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/infrastructure/metrics"
)

// ApprovalUseCase owns approval plan progress: recording decisions and
// escalating stalled decision points.
type ApprovalUseCase struct {
	txManager    TransactionManager
	claimRepo    ClaimRepository
	approvalRepo ApprovalRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
	retrier      Retrier
}

// NewApprovalUseCase creates a new ApprovalUseCase.
func NewApprovalUseCase(
	txManager TransactionManager,
	claimRepo ClaimRepository,
	approvalRepo ApprovalRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ApprovalUseCase {
	return &ApprovalUseCase{
		txManager:    txManager,
		claimRepo:    claimRepo,
		approvalRepo: approvalRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// WithRetrier re-runs the decision transaction on transient database errors.
// Concurrent decisions on one claim serialize on the claim row lock, which
// can deadlock against a submission or item edit holding locks the other way.
func (uc *ApprovalUseCase) WithRetrier(retrier Retrier) *ApprovalUseCase {
	uc.retrier = retrier
	return uc
}

// RecordDecisionInput represents input for recording an approval decision.
type RecordDecisionInput struct {
	ClaimID    string
	ApprovalID string
	ApproverID string
	Decision   domain.Decision
	Comment    *string
}

// DecisionResult reports the plan state after a recorded decision.
type DecisionResult struct {
	Approval *domain.Approval
	Outcome  domain.PlanOutcome
	Claim    *domain.ExpenseClaim
}

// RecordDecision records one approver's decision inside a single transaction
// that locks the claim and its approval rows, then re-evaluates the plan and
// transitions the claim when the plan resolved. The claim row is always
// locked before the approval rows so concurrent decisions on one claim
// serialize instead of deadlocking.
func (uc *ApprovalUseCase) RecordDecision(ctx context.Context, input RecordDecisionInput) (*DecisionResult, error) {
	if !input.Decision.Valid() {
		return nil, domain.ErrInvalidDecision
	}

	if uc.retrier == nil {
		return uc.recordDecision(ctx, input)
	}

	var result *DecisionResult

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.recordDecision(ctx, input)
		return err
	})

	return result, err
}

func (uc *ApprovalUseCase) recordDecision(ctx context.Context, input RecordDecisionInput) (*DecisionResult, error) {
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

	if claim.Status != domain.ClaimStatusPendingApproval {
		return nil, domain.ErrInvalidTransition
	}

	approvals, err := uc.approvalRepo.GetByClaimForUpdate(txCtx, tx, input.ClaimID)
	if err != nil {
		return nil, err
	}

	approval := findApproval(approvals, input.ApprovalID)
	if approval == nil {
		return nil, domain.ErrApprovalNotFound
	}

	if approval.ApproverID != input.ApproverID {
		return nil, domain.ErrApprovalNotFound
	}

	if approval.Superseded || approval.Status != domain.ApprovalStatusPending {
		return nil, domain.ErrAlreadyDecided
	}

	now := time.Now().UTC()
	status := input.Decision.Status()

	if err := uc.approvalRepo.UpdateDecision(txCtx, tx, approval.ID, status, input.Comment, now); err != nil {
		return nil, err
	}

	approval.Status = status
	approval.Comment = input.Comment
	approval.DecidedAt = &now
	approval.UpdatedAt = now

	outcome := domain.EvaluatePlan(approvals)

	if err := uc.emitDecisionEvent(txCtx, tx, claim, approval, input.Decision, outcome, now); err != nil {
		return nil, err
	}

	switch outcome {
	case domain.OutcomeRejected:
		if err := uc.resolveClaim(txCtx, tx, claim, domain.ClaimStatusRejected, domain.EventTypeClaimRejected, now); err != nil {
			return nil, err
		}

	case domain.OutcomeFullyApproved:
		if err := uc.resolveClaim(txCtx, tx, claim, domain.ClaimStatusApproved, domain.EventTypeClaimApproved, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DecisionsRecorded.WithLabelValues(string(input.Decision)).Inc()
	}

	return &DecisionResult{Approval: approval, Outcome: outcome, Claim: claim}, nil
}

// EscalateInput represents input for reassigning a pending decision point.
type EscalateInput struct {
	ClaimID       string
	ApprovalID    string
	NewApproverID string
	NewRole       string
}

// Escalate supersedes a pending approval row and creates a replacement
// assigned to another approver. The plan shape is unchanged: the replacement
// inherits the level and required-approvals count, and superseded rows no
// longer count toward the plan outcome.
func (uc *ApprovalUseCase) Escalate(ctx context.Context, input EscalateInput) (*domain.Approval, error) {
	if input.NewApproverID == "" {
		return nil, domain.ErrInvalidApprover
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

	if claim.Status != domain.ClaimStatusPendingApproval {
		return nil, domain.ErrInvalidTransition
	}

	approvals, err := uc.approvalRepo.GetByClaimForUpdate(txCtx, tx, input.ClaimID)
	if err != nil {
		return nil, err
	}

	approval := findApproval(approvals, input.ApprovalID)
	if approval == nil {
		return nil, domain.ErrApprovalNotFound
	}

	if approval.Superseded || approval.Status != domain.ApprovalStatusPending {
		return nil, domain.ErrAlreadyDecided
	}

	now := time.Now().UTC()

	role := approval.Role
	if input.NewRole != "" {
		role = input.NewRole
	}

	replacement := &domain.Approval{
		ID:                uc.idGen.Generate(),
		ClaimID:           approval.ClaimID,
		ApproverID:        input.NewApproverID,
		Role:              role,
		Level:             approval.Level,
		RequiredApprovals: approval.RequiredApprovals,
		Status:            domain.ApprovalStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.approvalRepo.Create(txCtx, tx, replacement); err != nil {
		return nil, err
	}

	if err := uc.approvalRepo.MarkSuperseded(txCtx, tx, approval.ID, replacement.ID, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   claim.ID,
		AggregateType: domain.AggregateTypeApproval,
		EventType:     domain.EventTypeApprovalEscalated,
		Payload: domain.EscalationEventPayload{
			ClaimID:        claim.ID,
			Level:          approval.Level,
			FromApproverID: approval.ApproverID,
			ToApproverID:   input.NewApproverID,
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Escalations.Inc()
	}

	return replacement, nil
}

// ListPending lists an approver's open decision points.
func (uc *ApprovalUseCase) ListPending(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.approvalRepo.ListPendingByApprover(ctx, approverID, limit, offset)
}

// GetPlan returns the full approval plan for a claim, superseded rows
// included.
func (uc *ApprovalUseCase) GetPlan(ctx context.Context, claimID string) ([]*domain.Approval, domain.PlanOutcome, error) {
	approvals, err := uc.approvalRepo.GetByClaim(ctx, claimID)
	if err != nil {
		return nil, "", err
	}

	return approvals, domain.EvaluatePlan(approvals), nil
}

func (uc *ApprovalUseCase) resolveClaim(ctx context.Context, tx Transaction, claim *domain.ExpenseClaim, status domain.ClaimStatus, eventType string, now time.Time) error {
	if err := claim.Transition(status); err != nil {
		return err
	}

	if err := uc.claimRepo.UpdateStatus(ctx, tx, claim.ID, status, now); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   claim.ID,
		AggregateType: domain.AggregateTypeClaim,
		EventType:     eventType,
		Payload: domain.ClaimEventPayload{
			ClaimID:     claim.ID,
			EmployeeID:  claim.EmployeeID,
			TotalAmount: claim.TotalAmount.String(),
			Currency:    claim.Currency,
		},
		CreatedAt: now,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *ApprovalUseCase) emitDecisionEvent(ctx context.Context, tx Transaction, claim *domain.ExpenseClaim, approval *domain.Approval, decision domain.Decision, outcome domain.PlanOutcome, now time.Time) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   claim.ID,
		AggregateType: domain.AggregateTypeApproval,
		EventType:     domain.EventTypeApprovalRecorded,
		Payload: domain.DecisionEventPayload{
			ClaimID:    claim.ID,
			ApprovalID: approval.ID,
			ApproverID: approval.ApproverID,
			Level:      approval.Level,
			Decision:   string(decision),
			Outcome:    string(outcome),
		},
		CreatedAt: now,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func findApproval(approvals []*domain.Approval, id string) *domain.Approval {
	for _, a := range approvals {
		if a.ID == id {
			return a
		}
	}

	return nil
}
