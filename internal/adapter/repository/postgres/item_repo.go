package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

const itemColumns = `id, claim_id, category_id, category_type, amount, currency,
	expense_date, vendor, receipt_ref, over_category_limit, created_at`

// ItemRepository implements usecase.ItemRepository.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) querier(tx usecase.Transaction) querier {
	if tx != nil {
		return tx.(*Tx).PgxTx()
	}

	return r.pool
}

// Create inserts a new expense item. Callers hold the parent claim's row lock
// in tx while draft membership is checked.
func (r *ItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.ExpenseItem) error {
	_, err := r.querier(tx).Exec(ctx, `
		INSERT INTO expense_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID,
		item.ClaimID,
		item.CategoryID,
		item.CategoryType,
		decimalToNumeric(item.Amount),
		item.Currency,
		timeToPgTimestamptz(item.ExpenseDate),
		ptrToPgText(item.Vendor),
		ptrToPgText(item.ReceiptRef),
		item.OverCategoryLimit,
		timeToPgTimestamptz(item.CreatedAt),
	)

	return err
}

// Delete removes an item; the claim ID guards against cross-claim deletes.
func (r *ItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id, claimID string) error {
	tag, err := r.querier(tx).Exec(ctx, `DELETE FROM expense_items WHERE id = $1 AND claim_id = $2`, id, claimID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// ListByClaim lists a claim's items in insertion order. With a non-nil tx the
// snapshot is read inside that transaction, so a submission totals exactly
// the items that were frozen.
func (r *ItemRepository) ListByClaim(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.ExpenseItem, error) {
	rows, err := r.querier(tx).Query(ctx, `
		SELECT `+itemColumns+` FROM expense_items WHERE claim_id = $1 ORDER BY created_at, id`,
		claimID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ExpenseItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

func scanItem(row pgx.Row) (*domain.ExpenseItem, error) {
	var (
		item        domain.ExpenseItem
		amount      pgtype.Numeric
		expenseDate pgtype.Timestamptz
		vendor      pgtype.Text
		receiptRef  pgtype.Text
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&item.ID,
		&item.ClaimID,
		&item.CategoryID,
		&item.CategoryType,
		&amount,
		&item.Currency,
		&expenseDate,
		&vendor,
		&receiptRef,
		&item.OverCategoryLimit,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	item.Amount = numericToDecimal(amount)
	item.ExpenseDate = expenseDate.Time
	item.Vendor = pgTextToPtr(vendor)
	item.ReceiptRef = pgTextToPtr(receiptRef)
	item.CreatedAt = createdAt.Time

	return &item, nil
}
