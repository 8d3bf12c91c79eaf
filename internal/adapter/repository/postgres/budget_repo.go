package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/domain"
)

// BudgetRepository implements usecase.BudgetRepository. Budget rows are
// read-only inputs to rule evaluation; a NULL department means the envelope
// applies to every department.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create inserts a new budget envelope.
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO budgets (id, department_id, amount, currency, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		budget.ID,
		ptrToPgText(budget.DepartmentID),
		decimalToNumeric(budget.Amount),
		budget.Currency,
		timeToPgTimestamptz(budget.StartDate),
		timeToPgTimestamptz(budget.EndDate),
		timeToPgTimestamptz(budget.CreatedAt),
	)

	return err
}

// GetActiveForDepartment lists envelopes whose window covers asOf and which
// apply to the department.
func (r *BudgetRepository) GetActiveForDepartment(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, department_id, amount, currency, start_date, end_date, created_at
		FROM budgets
		WHERE (department_id = $1 OR department_id IS NULL)
		  AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date, id`,
		departmentID, timeToPgTimestamptz(asOf),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		var (
			budget       domain.Budget
			departmentID pgtype.Text
			amount       pgtype.Numeric
			startDate    pgtype.Timestamptz
			endDate      pgtype.Timestamptz
			createdAt    pgtype.Timestamptz
		)

		err := rows.Scan(&budget.ID, &departmentID, &amount, &budget.Currency, &startDate, &endDate, &createdAt)
		if err != nil {
			return nil, err
		}

		budget.DepartmentID = pgTextToPtr(departmentID)
		budget.Amount = numericToDecimal(amount)
		budget.StartDate = startDate.Time
		budget.EndDate = endDate.Time
		budget.CreatedAt = createdAt.Time

		budgets = append(budgets, &budget)
	}

	return budgets, rows.Err()
}
