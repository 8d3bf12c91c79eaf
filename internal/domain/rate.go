package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRate      = errors.New("exchange rate must be positive")
	ErrSameCurrencyPair = errors.New("exchange rate currencies must differ")
)

// ExchangeRate is one row of the effective-dated rate time series for a
// direct currency pair. The converter always selects the most recent row
// with EffectiveDate <= asOf.
type ExchangeRate struct {
	ID            string
	FromCurrency  string
	ToCurrency    string
	Rate          decimal.Decimal
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// Validate checks rate invariants.
func (r *ExchangeRate) Validate() error {
	if r.FromCurrency == r.ToCurrency {
		return ErrSameCurrencyPair
	}

	if err := ValidateCurrency(r.FromCurrency); err != nil {
		return err
	}

	if err := ValidateCurrency(r.ToCurrency); err != nil {
		return err
	}

	if r.Rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	return nil
}
