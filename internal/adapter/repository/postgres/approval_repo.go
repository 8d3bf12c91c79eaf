package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

const approvalColumns = `id, claim_id, approver_id, role, level, required_approvals,
	status, comment, superseded, superseded_by, decided_at, created_at, updated_at`

// ApprovalRepository implements usecase.ApprovalRepository.
type ApprovalRepository struct {
	pool *pgxpool.Pool
}

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository(pool *pgxpool.Pool) *ApprovalRepository {
	return &ApprovalRepository{pool: pool}
}

// Create inserts one approval row within a transaction.
func (r *ApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, approval *domain.Approval) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, insertApprovalSQL, approvalArgs(approval)...)

	return err
}

// CreateBatch inserts a materialized plan's rows within a transaction.
func (r *ApprovalRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, approvals []*domain.Approval) error {
	pgxTx := tx.(*Tx).PgxTx()

	batch := &pgx.Batch{}
	for _, a := range approvals {
		batch.Queue(insertApprovalSQL, approvalArgs(a)...)
	}

	return pgxTx.SendBatch(ctx, batch).Close()
}

const insertApprovalSQL = `
	INSERT INTO approvals (` + approvalColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func approvalArgs(a *domain.Approval) []any {
	return []any{
		a.ID,
		a.ClaimID,
		a.ApproverID,
		a.Role,
		a.Level,
		a.RequiredApprovals,
		string(a.Status),
		ptrToPgText(a.Comment),
		a.Superseded,
		ptrToPgText(a.SupersededBy),
		ptrToPgTimestamptz(a.DecidedAt),
		timeToPgTimestamptz(a.CreatedAt),
		timeToPgTimestamptz(a.UpdatedAt),
	}
}

// GetByClaimForUpdate locks all of the claim's approval rows. The fixed id
// ordering keeps concurrent decisions on one claim deadlock-free.
func (r *ApprovalRepository) GetByClaimForUpdate(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.Approval, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, `
		SELECT `+approvalColumns+` FROM approvals
		WHERE claim_id = $1
		ORDER BY id
		FOR UPDATE`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApprovals(rows)
}

// GetByClaim lists all of the claim's approval rows, superseded included.
func (r *ApprovalRepository) GetByClaim(ctx context.Context, claimID string) ([]*domain.Approval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+approvalColumns+` FROM approvals
		WHERE claim_id = $1
		ORDER BY level, id`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApprovals(rows)
}

// UpdateDecision records an approver's verdict on their row.
func (r *ApprovalRepository) UpdateDecision(ctx context.Context, tx usecase.Transaction, id string, status domain.ApprovalStatus, comment *string, decidedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE approvals
		SET status = $2, comment = $3, decided_at = $4, updated_at = $4
		WHERE id = $1`,
		id, string(status), ptrToPgText(comment), timeToPgTimestamptz(decidedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrApprovalNotFound
	}

	return nil
}

// MarkSuperseded retires a row in favor of its escalation replacement.
func (r *ApprovalRepository) MarkSuperseded(ctx context.Context, tx usecase.Transaction, id, supersededBy string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE approvals
		SET superseded = TRUE, superseded_by = $2, updated_at = $3
		WHERE id = $1`,
		id, supersededBy, timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrApprovalNotFound
	}

	return nil
}

// ListPendingByApprover lists an approver's open decision points.
func (r *ApprovalRepository) ListPendingByApprover(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+approvalColumns+` FROM approvals
		WHERE approver_id = $1 AND status = $2 AND NOT superseded
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`,
		approverID, string(domain.ApprovalStatusPending), int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApprovals(rows)
}

func collectApprovals(rows pgx.Rows) ([]*domain.Approval, error) {
	var approvals []*domain.Approval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}

		approvals = append(approvals, approval)
	}

	return approvals, rows.Err()
}

func scanApproval(row pgx.Row) (*domain.Approval, error) {
	var (
		approval     domain.Approval
		status       string
		comment      pgtype.Text
		supersededBy pgtype.Text
		decidedAt    pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&approval.ID,
		&approval.ClaimID,
		&approval.ApproverID,
		&approval.Role,
		&approval.Level,
		&approval.RequiredApprovals,
		&status,
		&comment,
		&approval.Superseded,
		&supersededBy,
		&decidedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	approval.Status = domain.ApprovalStatus(status)
	approval.Comment = pgTextToPtr(comment)
	approval.SupersededBy = pgTextToPtr(supersededBy)
	approval.DecidedAt = pgTimestamptzToPtr(decidedAt)
	approval.CreatedAt = createdAt.Time
	approval.UpdatedAt = updatedAt.Time

	return &approval, nil
}
