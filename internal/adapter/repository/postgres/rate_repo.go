package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/domain"
)

// RateRepository implements usecase.RateRepository over the append-only
// exchange rate time series.
type RateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

// Create inserts a new rate row.
func (r *RateRepository) Create(ctx context.Context, rate *domain.ExchangeRate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exchange_rates (id, from_currency, to_currency, rate, effective_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rate.ID,
		rate.FromCurrency,
		rate.ToCurrency,
		decimalToNumeric(rate.Rate),
		timeToPgTimestamptz(rate.EffectiveDate),
		timeToPgTimestamptz(rate.CreatedAt),
	)

	return err
}

// GetLatest returns the most recent rate for the direct pair in effect at asOf.
func (r *RateRepository) GetLatest(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	var (
		rate          domain.ExchangeRate
		value         pgtype.Numeric
		effectiveDate pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, from_currency, to_currency, rate, effective_date, created_at
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND effective_date <= $3
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1`,
		fromCurrency, toCurrency, timeToPgTimestamptz(asOf),
	).Scan(&rate.ID, &rate.FromCurrency, &rate.ToCurrency, &value, &effectiveDate, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRateNotFound
		}

		return nil, err
	}

	rate.Rate = numericToDecimal(value)
	rate.EffectiveDate = effectiveDate.Time
	rate.CreatedAt = createdAt.Time

	return &rate, nil
}
