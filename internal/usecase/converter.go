package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
)

// CurrencyConverter normalizes monetary amounts between currencies using
// effective-dated exchange rates. Only direct pairs are supported: callers
// must ensure a rate row exists, there is no triangulation through a base
// currency.
type CurrencyConverter struct {
	rateRepo RateRepository
}

// NewCurrencyConverter creates a new CurrencyConverter.
func NewCurrencyConverter(rateRepo RateRepository) *CurrencyConverter {
	return &CurrencyConverter{rateRepo: rateRepo}
}

// Convert converts amount from one currency to another as of the given
// instant. Same-currency conversions return the amount unchanged with no
// rate lookup. The result is rounded to 2 decimal places, round-half-up,
// exactly once at the final multiplication so repeated conversions cannot
// compound rounding drift. A missing rate propagates domain.ErrRateNotFound
// rather than silently defaulting to 1.
func (c *CurrencyConverter) Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	if fromCurrency == toCurrency {
		return amount, nil
	}

	rate, err := c.rateRepo.GetLatest(ctx, fromCurrency, toCurrency, asOf)
	if err != nil {
		if errors.Is(err, domain.ErrRateNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s -> %s as of %s", domain.ErrRateNotFound, fromCurrency, toCurrency, asOf.Format(time.RFC3339))
		}

		return decimal.Zero, err
	}

	// decimal.Round is round half away from zero, which is round-half-up for
	// the positive amounts this engine handles.
	return amount.Mul(rate.Rate).Round(2), nil
}
