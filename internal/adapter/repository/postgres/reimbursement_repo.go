package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

const reimbursementColumns = `id, claim_id, amount, currency, method, processed_by,
	batch_id, status, processed_at, created_at, updated_at`

// ReimbursementRepository implements usecase.ReimbursementRepository.
type ReimbursementRepository struct {
	pool *pgxpool.Pool
}

// NewReimbursementRepository creates a new ReimbursementRepository.
func NewReimbursementRepository(pool *pgxpool.Pool) *ReimbursementRepository {
	return &ReimbursementRepository{pool: pool}
}

// Create inserts a new reimbursement within a transaction.
func (r *ReimbursementRepository) Create(ctx context.Context, tx usecase.Transaction, reimbursement *domain.Reimbursement) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO reimbursements (`+reimbursementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		reimbursement.ID,
		reimbursement.ClaimID,
		decimalToNumeric(reimbursement.Amount),
		reimbursement.Currency,
		string(reimbursement.Method),
		reimbursement.ProcessedBy,
		ptrToPgText(reimbursement.BatchID),
		string(reimbursement.Status),
		ptrToPgTimestamptz(reimbursement.ProcessedAt),
		timeToPgTimestamptz(reimbursement.CreatedAt),
		timeToPgTimestamptz(reimbursement.UpdatedAt),
	)

	return err
}

// GetByID retrieves a reimbursement by ID.
func (r *ReimbursementRepository) GetByID(ctx context.Context, id string) (*domain.Reimbursement, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reimbursementColumns+` FROM reimbursements WHERE id = $1`, id)

	reimbursement, err := scanReimbursement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReimbursementNotFound
		}

		return nil, err
	}

	return reimbursement, nil
}

// GetByClaimForUpdate locks the claim's reimbursement rows for the
// idempotency check.
func (r *ReimbursementRepository) GetByClaimForUpdate(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.Reimbursement, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, `
		SELECT `+reimbursementColumns+` FROM reimbursements
		WHERE claim_id = $1
		ORDER BY id
		FOR UPDATE`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReimbursements(rows)
}

// GetByClaim lists all reimbursement attempts for a claim.
func (r *ReimbursementRepository) GetByClaim(ctx context.Context, claimID string) ([]*domain.Reimbursement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reimbursementColumns+` FROM reimbursements
		WHERE claim_id = $1
		ORDER BY created_at, id`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReimbursements(rows)
}

// UpdateStatus records the payment outcome.
func (r *ReimbursementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ReimbursementStatus, processedAt *time.Time, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE reimbursements
		SET status = $2, processed_at = $3, updated_at = $4
		WHERE id = $1`,
		id, string(status), ptrToPgTimestamptz(processedAt), timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrReimbursementNotFound
	}

	return nil
}

// AttachToBatch assigns a reimbursement to a payout batch.
func (r *ReimbursementRepository) AttachToBatch(ctx context.Context, id, batchID string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reimbursements SET batch_id = $2, updated_at = $3 WHERE id = $1`,
		id, batchID, timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrReimbursementNotFound
	}

	return nil
}

func collectReimbursements(rows pgx.Rows) ([]*domain.Reimbursement, error) {
	var reimbursements []*domain.Reimbursement
	for rows.Next() {
		reimbursement, err := scanReimbursement(rows)
		if err != nil {
			return nil, err
		}

		reimbursements = append(reimbursements, reimbursement)
	}

	return reimbursements, rows.Err()
}

func scanReimbursement(row pgx.Row) (*domain.Reimbursement, error) {
	var (
		reimbursement domain.Reimbursement
		amount        pgtype.Numeric
		method        string
		batchID       pgtype.Text
		status        string
		processedAt   pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&reimbursement.ID,
		&reimbursement.ClaimID,
		&amount,
		&reimbursement.Currency,
		&method,
		&reimbursement.ProcessedBy,
		&batchID,
		&status,
		&processedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reimbursement.Amount = numericToDecimal(amount)
	reimbursement.Method = domain.ReimbursementMethod(method)
	reimbursement.BatchID = pgTextToPtr(batchID)
	reimbursement.Status = domain.ReimbursementStatus(status)
	reimbursement.ProcessedAt = pgTimestamptzToPtr(processedAt)
	reimbursement.CreatedAt = createdAt.Time
	reimbursement.UpdatedAt = updatedAt.Time

	return &reimbursement, nil
}
