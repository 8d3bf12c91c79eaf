package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

const claimColumns = `id, employee_id, department_id, employee_level, description,
	total_amount, currency, status, auto_approve_reason, submitted_at, created_at, updated_at`

// ClaimRepository implements usecase.ClaimRepository.
type ClaimRepository struct {
	pool *pgxpool.Pool
}

// NewClaimRepository creates a new ClaimRepository.
func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

// Create inserts a new claim.
func (r *ClaimRepository) Create(ctx context.Context, claim *domain.ExpenseClaim) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO expense_claims (`+claimColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		claim.ID,
		claim.EmployeeID,
		claim.DepartmentID,
		claim.EmployeeLevel,
		claim.Description,
		decimalToNumeric(claim.TotalAmount),
		claim.Currency,
		string(claim.Status),
		ptrToPgText(claim.AutoApproveReason),
		ptrToPgTimestamptz(claim.SubmittedAt),
		timeToPgTimestamptz(claim.CreatedAt),
		timeToPgTimestamptz(claim.UpdatedAt),
	)

	return err
}

// GetByID retrieves a claim by ID.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseClaim, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+claimColumns+` FROM expense_claims WHERE id = $1`, id)

	return scanClaim(row)
}

// GetByIDForUpdate retrieves a claim by ID with a FOR UPDATE lock.
func (r *ClaimRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ExpenseClaim, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `SELECT `+claimColumns+` FROM expense_claims WHERE id = $1 FOR UPDATE`, id)

	return scanClaim(row)
}

// UpdateStatus updates the claim status.
func (r *ClaimRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ClaimStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE expense_claims SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrClaimNotFound
	}

	return nil
}

// MarkSubmitted freezes the claim total and moves it to SUBMITTED.
func (r *ClaimRepository) MarkSubmitted(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, submittedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE expense_claims
		SET status = $2, total_amount = $3, submitted_at = $4, updated_at = $4
		WHERE id = $1`,
		id, string(domain.ClaimStatusSubmitted), decimalToNumeric(total), timeToPgTimestamptz(submittedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrClaimNotFound
	}

	return nil
}

// SetAutoApproveReason records why the rule engine approved without a plan.
func (r *ClaimRepository) SetAutoApproveReason(ctx context.Context, tx usecase.Transaction, id string, reason string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE expense_claims SET auto_approve_reason = $2, updated_at = $3 WHERE id = $1`,
		id, reason, timeToPgTimestamptz(updatedAt),
	)

	return err
}

// ListByEmployee lists an employee's claims, newest first.
func (r *ClaimRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.ExpenseClaim, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+claimColumns+` FROM expense_claims
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		employeeID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []*domain.ExpenseClaim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}

		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

// CountByStatus aggregates claim counts per status.
func (r *ClaimRepository) CountByStatus(ctx context.Context) (map[domain.ClaimStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM expense_claims GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ClaimStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}

		counts[domain.ClaimStatus(status)] = n
	}

	return counts, rows.Err()
}

func scanClaim(row pgx.Row) (*domain.ExpenseClaim, error) {
	var (
		claim             domain.ExpenseClaim
		status            string
		totalAmount       pgtype.Numeric
		autoApproveReason pgtype.Text
		submittedAt       pgtype.Timestamptz
		createdAt         pgtype.Timestamptz
		updatedAt         pgtype.Timestamptz
	)

	err := row.Scan(
		&claim.ID,
		&claim.EmployeeID,
		&claim.DepartmentID,
		&claim.EmployeeLevel,
		&claim.Description,
		&totalAmount,
		&claim.Currency,
		&status,
		&autoApproveReason,
		&submittedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}

		return nil, err
	}

	claim.Status = domain.ClaimStatus(status)
	claim.TotalAmount = numericToDecimal(totalAmount)
	claim.AutoApproveReason = pgTextToPtr(autoApproveReason)
	claim.SubmittedAt = pgTimestamptzToPtr(submittedAt)
	claim.CreatedAt = createdAt.Time
	claim.UpdatedAt = updatedAt.Time

	return &claim, nil
}
