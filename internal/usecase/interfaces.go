package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
)

// ClaimRepository defines data access for expense claims.
type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.ExpenseClaim) error
	GetByID(ctx context.Context, id string) (*domain.ExpenseClaim, error)
	// GetByIDForUpdate locks the claim row for the duration of the transaction.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ExpenseClaim, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.ClaimStatus, updatedAt time.Time) error
	MarkSubmitted(ctx context.Context, tx Transaction, id string, total decimal.Decimal, submittedAt time.Time) error
	SetAutoApproveReason(ctx context.Context, tx Transaction, id string, reason string, updatedAt time.Time) error
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.ExpenseClaim, error)
	CountByStatus(ctx context.Context) (map[domain.ClaimStatus]int64, error)
}

// ItemRepository defines data access for expense items. A non-nil tx runs the
// operation inside that transaction; item writes always happen under the
// parent claim's row lock so submission cannot race item edits.
type ItemRepository interface {
	Create(ctx context.Context, tx Transaction, item *domain.ExpenseItem) error
	Delete(ctx context.Context, tx Transaction, id, claimID string) error
	ListByClaim(ctx context.Context, tx Transaction, claimID string) ([]*domain.ExpenseItem, error)
}

// CategoryRepository defines read access to collaborator-supplied categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ExpenseCategory, error)
}

// RuleRepository defines data access for approval rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.ApprovalRule) error
	GetByID(ctx context.Context, id string) (*domain.ApprovalRule, error)
	// ListActive returns the active-rule snapshot ordered by priority
	// ascending, creation time ascending as tie-break. A non-nil tx reads the
	// snapshot inside that transaction.
	ListActive(ctx context.Context, tx Transaction) ([]*domain.ApprovalRule, error)
	List(ctx context.Context, limit, offset int) ([]*domain.ApprovalRule, error)
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	ActivePriorityExists(ctx context.Context, priority int) (bool, error)
}

// ApprovalRepository defines data access for approval decision points.
type ApprovalRepository interface {
	Create(ctx context.Context, tx Transaction, approval *domain.Approval) error
	CreateBatch(ctx context.Context, tx Transaction, approvals []*domain.Approval) error
	// GetByClaimForUpdate locks all approval rows of the claim, ordered by id.
	GetByClaimForUpdate(ctx context.Context, tx Transaction, claimID string) ([]*domain.Approval, error)
	GetByClaim(ctx context.Context, claimID string) ([]*domain.Approval, error)
	UpdateDecision(ctx context.Context, tx Transaction, id string, status domain.ApprovalStatus, comment *string, decidedAt time.Time) error
	MarkSuperseded(ctx context.Context, tx Transaction, id, supersededBy string, updatedAt time.Time) error
	ListPendingByApprover(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error)
}

// ReimbursementRepository defines data access for reimbursements.
type ReimbursementRepository interface {
	Create(ctx context.Context, tx Transaction, r *domain.Reimbursement) error
	GetByID(ctx context.Context, id string) (*domain.Reimbursement, error)
	// GetByClaimForUpdate locks the claim's reimbursement rows; used by the
	// idempotency guard.
	GetByClaimForUpdate(ctx context.Context, tx Transaction, claimID string) ([]*domain.Reimbursement, error)
	GetByClaim(ctx context.Context, claimID string) ([]*domain.Reimbursement, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.ReimbursementStatus, processedAt *time.Time, updatedAt time.Time) error
	AttachToBatch(ctx context.Context, id, batchID string, updatedAt time.Time) error
}

// RateRepository defines data access for effective-dated exchange rates.
type RateRepository interface {
	Create(ctx context.Context, rate *domain.ExchangeRate) error
	// GetLatest returns the most recent rate for the direct pair with
	// EffectiveDate <= asOf, or domain.ErrRateNotFound.
	GetLatest(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error)
}

// BudgetRepository defines read access to budget rows.
type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) error
	GetActiveForDepartment(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Budget, error)
}

// OutboxRepository defines data access for the append-only event log.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation when it failed with a transient database
// error, such as a deadlock between two transactions locking the same claim.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// PaymentRail executes the actual payout. A failure marks the reimbursement
// FAILED and leaves the claim APPROVED so a retry stays safe.
type PaymentRail interface {
	Pay(ctx context.Context, r *domain.Reimbursement) error
}
