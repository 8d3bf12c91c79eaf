package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/domain"
)

// CategoryRepository implements usecase.CategoryRepository over the
// collaborator-maintained category table.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseCategory, error) {
	var (
		category  domain.ExpenseCategory
		maxAmount pgtype.Numeric
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, type, max_amount, requires_receipt
		FROM expense_categories WHERE id = $1`, id,
	).Scan(&category.ID, &category.Name, &category.Type, &maxAmount, &category.RequiresReceipt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id, domain.ErrCategoryNotFound)
		}

		return nil, err
	}

	category.MaxAmount = numericToDecimal(maxAmount)

	return &category, nil
}
