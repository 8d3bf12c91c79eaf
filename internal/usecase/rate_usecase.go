package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
)

// RateUseCase ingests effective-dated exchange rates. Rates are append-only:
// a correction is a new row with a later effective date.
type RateUseCase struct {
	rateRepo  RateRepository
	converter *CurrencyConverter
	idGen     IDGenerator
}

// NewRateUseCase creates a new RateUseCase.
func NewRateUseCase(rateRepo RateRepository, converter *CurrencyConverter, idGen IDGenerator) *RateUseCase {
	return &RateUseCase{
		rateRepo:  rateRepo,
		converter: converter,
		idGen:     idGen,
	}
}

// IngestRateInput represents input for recording an exchange rate.
type IngestRateInput struct {
	FromCurrency  string
	ToCurrency    string
	Rate          decimal.Decimal
	EffectiveDate time.Time
}

// IngestRate records a new exchange rate for a direct currency pair.
func (uc *RateUseCase) IngestRate(ctx context.Context, input IngestRateInput) (*domain.ExchangeRate, error) {
	rate := &domain.ExchangeRate{
		ID:            uc.idGen.Generate(),
		FromCurrency:  input.FromCurrency,
		ToCurrency:    input.ToCurrency,
		Rate:          input.Rate,
		EffectiveDate: input.EffectiveDate,
		CreatedAt:     time.Now().UTC(),
	}

	if err := rate.Validate(); err != nil {
		return nil, err
	}

	if err := uc.rateRepo.Create(ctx, rate); err != nil {
		return nil, err
	}

	return rate, nil
}

// Convert converts an amount between currencies using the rate in effect at
// asOf.
func (uc *RateUseCase) Convert(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	return uc.converter.Convert(ctx, amount, from, to, asOf)
}
