package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
	"github.com/fintally/claimcore/internal/usecase/mocks"
)

func newRateUseCase() (*usecase.RateUseCase, *mocks.MockRateRepository) {
	rateRepo := mocks.NewMockRateRepository()
	converter := usecase.NewCurrencyConverter(rateRepo)

	return usecase.NewRateUseCase(rateRepo, converter, mocks.NewMockIDGenerator()), rateRepo
}

func TestRateUseCase_IngestRate(t *testing.T) {
	t.Run("stores a valid rate", func(t *testing.T) {
		uc, _ := newRateUseCase()

		rate, err := uc.IngestRate(context.Background(), usecase.IngestRateInput{
			FromCurrency:  "EUR",
			ToCurrency:    "USD",
			Rate:          decimal.RequireFromString("1.0845"),
			EffectiveDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rate.ID)
		assert.Equal(t, "EUR", rate.FromCurrency)
		assert.False(t, rate.CreatedAt.IsZero())
	})

	t.Run("rejects a non-positive rate", func(t *testing.T) {
		uc, _ := newRateUseCase()

		_, err := uc.IngestRate(context.Background(), usecase.IngestRateInput{
			FromCurrency: "EUR",
			ToCurrency:   "USD",
			Rate:         decimal.Zero,
		})
		require.ErrorIs(t, err, domain.ErrInvalidRate)
	})

	t.Run("rejects a degenerate pair", func(t *testing.T) {
		uc, _ := newRateUseCase()

		_, err := uc.IngestRate(context.Background(), usecase.IngestRateInput{
			FromCurrency: "USD",
			ToCurrency:   "USD",
			Rate:         decimal.NewFromInt(1),
		})
		require.ErrorIs(t, err, domain.ErrSameCurrencyPair)
	})

	t.Run("rejects an unknown currency", func(t *testing.T) {
		uc, _ := newRateUseCase()

		_, err := uc.IngestRate(context.Background(), usecase.IngestRateInput{
			FromCurrency: "XXX",
			ToCurrency:   "USD",
			Rate:         decimal.NewFromInt(2),
		})
		require.ErrorIs(t, err, domain.ErrInvalidCurrency)
	})
}

func TestRateUseCase_Convert(t *testing.T) {
	uc, _ := newRateUseCase()

	asOf := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := uc.IngestRate(context.Background(), usecase.IngestRateInput{
		FromCurrency:  "EUR",
		ToCurrency:    "USD",
		Rate:          decimal.RequireFromString("1.10"),
		EffectiveDate: asOf.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	converted, err := uc.Convert(context.Background(), decimal.NewFromInt(200), "EUR", "USD", asOf)
	require.NoError(t, err)
	assert.True(t, converted.Equal(decimal.NewFromInt(220)), "got %s", converted)

	t.Run("same currency is the identity", func(t *testing.T) {
		converted, err := uc.Convert(context.Background(), decimal.NewFromInt(42), "USD", "USD", asOf)
		require.NoError(t, err)
		assert.True(t, converted.Equal(decimal.NewFromInt(42)))
	})

	t.Run("missing pair fails", func(t *testing.T) {
		_, err := uc.Convert(context.Background(), decimal.NewFromInt(10), "JPY", "CHF", asOf)
		require.ErrorIs(t, err, domain.ErrRateNotFound)
	})
}
