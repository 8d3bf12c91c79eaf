package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/infrastructure/metrics"
)

// ReimbursementUseCase pays out approved claims through a payment rail and
// drives the final APPROVED -> PAID transition.
type ReimbursementUseCase struct {
	txManager   TransactionManager
	claimRepo   ClaimRepository
	reimbRepo   ReimbursementRepository
	outboxRepo  OutboxRepository
	paymentRail PaymentRail
	converter   *CurrencyConverter
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewReimbursementUseCase creates a new ReimbursementUseCase.
func NewReimbursementUseCase(
	txManager TransactionManager,
	claimRepo ClaimRepository,
	reimbRepo ReimbursementRepository,
	outboxRepo OutboxRepository,
	paymentRail PaymentRail,
	converter *CurrencyConverter,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ReimbursementUseCase {
	return &ReimbursementUseCase{
		txManager:   txManager,
		claimRepo:   claimRepo,
		reimbRepo:   reimbRepo,
		outboxRepo:  outboxRepo,
		paymentRail: paymentRail,
		converter:   converter,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// ProcessInput represents input for processing a reimbursement.
// PaymentCurrency selects the currency the payout is made in; empty means the
// claim currency.
type ProcessInput struct {
	ClaimID         string
	Method          domain.ReimbursementMethod
	ProcessedBy     string
	PaymentCurrency string
}

// Process pays out an approved claim. When a payment currency other than the
// claim currency is requested, the claim total is converted at the rate in
// effect at processing time; a missing rate fails the payout before any money
// moves. The operation is idempotent: if a non-failed reimbursement already
// exists for the claim it is returned as-is, whatever currency it was paid
// in, and no second payment is attempted. A payment rail failure marks the
// reimbursement FAILED and leaves the claim in APPROVED so the payout can be
// retried.
//
// The payment call itself runs outside any transaction; the reimbursement row
// is created first so a crash mid-payment leaves a PENDING row rather than a
// silent double-payment window.
func (uc *ReimbursementUseCase) Process(ctx context.Context, input ProcessInput) (*domain.Reimbursement, error) {
	if !input.Method.Valid() {
		return nil, domain.ErrInvalidMethod
	}

	if input.PaymentCurrency != "" {
		if err := domain.ValidateCurrency(input.PaymentCurrency); err != nil {
			return nil, err
		}
	}

	reimbursement, existing, err := uc.reserve(ctx, input)
	if err != nil {
		return nil, err
	}

	if existing {
		return reimbursement, nil
	}

	payErr := uc.paymentRail.Pay(ctx, reimbursement)

	if err := uc.settle(ctx, reimbursement, payErr); err != nil {
		return nil, err
	}

	if payErr != nil {
		if uc.metrics != nil {
			uc.metrics.ReimbursementsProcessed.WithLabelValues("failed").Inc()
		}

		return reimbursement, fmt.Errorf("payment rail: %w", payErr)
	}

	if uc.metrics != nil {
		uc.metrics.ReimbursementsProcessed.WithLabelValues("processed").Inc()
	}

	return reimbursement, nil
}

// reserve creates the PENDING reimbursement row, or returns the existing
// non-failed one for the claim.
func (uc *ReimbursementUseCase) reserve(ctx context.Context, input ProcessInput) (*domain.Reimbursement, bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	claim, err := uc.claimRepo.GetByIDForUpdate(txCtx, tx, input.ClaimID)
	if err != nil {
		return nil, false, err
	}

	if claim.Status != domain.ClaimStatusApproved && claim.Status != domain.ClaimStatusPaid {
		return nil, false, domain.ErrInvalidTransition
	}

	existing, err := uc.reimbRepo.GetByClaimForUpdate(txCtx, tx, input.ClaimID)
	if err != nil {
		return nil, false, err
	}

	for _, r := range existing {
		if r.Status != domain.ReimbursementStatusFailed {
			return r, true, nil
		}
	}

	processedBy := input.ProcessedBy
	if processedBy == "" {
		if identity, ok := domain.IdentityFromContext(ctx); ok {
			processedBy = identity.ID
		}
	}

	now := time.Now().UTC()

	currency := input.PaymentCurrency
	if currency == "" {
		currency = claim.Currency
	}

	amount, err := uc.converter.Convert(txCtx, claim.TotalAmount, claim.Currency, currency, now)
	if err != nil {
		return nil, false, err
	}

	reimbursement := &domain.Reimbursement{
		ID:          uc.idGen.Generate(),
		ClaimID:     claim.ID,
		Amount:      amount,
		Currency:    currency,
		Method:      input.Method,
		ProcessedBy: processedBy,
		Status:      domain.ReimbursementStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.reimbRepo.Create(txCtx, tx, reimbursement); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, false, err
	}

	return reimbursement, false, nil
}

// settle records the payment rail outcome and, on success, finalizes the
// claim as PAID.
func (uc *ReimbursementUseCase) settle(ctx context.Context, reimbursement *domain.Reimbursement, payErr error) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	claim, err := uc.claimRepo.GetByIDForUpdate(txCtx, tx, reimbursement.ClaimID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if payErr != nil {
		if err := uc.reimbRepo.UpdateStatus(txCtx, tx, reimbursement.ID, domain.ReimbursementStatusFailed, nil, now); err != nil {
			return err
		}

		reimbursement.Status = domain.ReimbursementStatusFailed
		reimbursement.UpdatedAt = now

		if err := uc.emitReimbursementEvent(txCtx, tx, domain.EventTypeReimbursementFailed, reimbursement, now); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if err := uc.reimbRepo.UpdateStatus(txCtx, tx, reimbursement.ID, domain.ReimbursementStatusProcessed, &now, now); err != nil {
		return err
	}

	reimbursement.Status = domain.ReimbursementStatusProcessed
	reimbursement.ProcessedAt = &now
	reimbursement.UpdatedAt = now

	if err := claim.Transition(domain.ClaimStatusPaid); err != nil {
		return err
	}

	if err := uc.claimRepo.UpdateStatus(txCtx, tx, claim.ID, domain.ClaimStatusPaid, now); err != nil {
		return err
	}

	if err := uc.emitReimbursementEvent(txCtx, tx, domain.EventTypeReimbursementProcessed, reimbursement, now); err != nil {
		return err
	}

	paidEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   claim.ID,
		AggregateType: domain.AggregateTypeClaim,
		EventType:     domain.EventTypeClaimPaid,
		Payload: domain.ClaimEventPayload{
			ClaimID:     claim.ID,
			EmployeeID:  claim.EmployeeID,
			TotalAmount: claim.TotalAmount.String(),
			Currency:    claim.Currency,
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(txCtx, tx, paidEvent); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

func (uc *ReimbursementUseCase) emitReimbursementEvent(ctx context.Context, tx Transaction, eventType string, r *domain.Reimbursement, now time.Time) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   r.ID,
		AggregateType: domain.AggregateTypeReimbursement,
		EventType:     eventType,
		Payload: domain.ReimbursementEventPayload{
			ReimbursementID: r.ID,
			ClaimID:         r.ClaimID,
			Amount:          r.Amount.String(),
			Currency:        r.Currency,
			Method:          string(r.Method),
		},
		CreatedAt: now,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

// Get retrieves a reimbursement by ID.
func (uc *ReimbursementUseCase) Get(ctx context.Context, id string) (*domain.Reimbursement, error) {
	return uc.reimbRepo.GetByID(ctx, id)
}

// GetByClaim retrieves all reimbursement attempts for a claim, failed ones
// included.
func (uc *ReimbursementUseCase) GetByClaim(ctx context.Context, claimID string) ([]*domain.Reimbursement, error) {
	return uc.reimbRepo.GetByClaim(ctx, claimID)
}

// AttachToBatch assigns a processed reimbursement to a payout batch.
func (uc *ReimbursementUseCase) AttachToBatch(ctx context.Context, id, batchID string) error {
	r, err := uc.reimbRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if r.Status != domain.ReimbursementStatusProcessed {
		return domain.ErrInvalidTransition
	}

	return uc.reimbRepo.AttachToBatch(ctx, id, batchID, time.Now().UTC())
}
