package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
	"github.com/fintally/claimcore/internal/usecase/mocks"
)

func TestCurrencyConverter_Convert(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	rateRepo := mocks.NewMockRateRepository()
	rateRepo.Create(context.Background(), &domain.ExchangeRate{
		ID:            "rate-1",
		FromCurrency:  "GBP",
		ToCurrency:    "USD",
		Rate:          decimal.RequireFromString("1.30"),
		EffectiveDate: asOf.AddDate(0, 0, -10),
	})
	rateRepo.Create(context.Background(), &domain.ExchangeRate{
		ID:            "rate-2",
		FromCurrency:  "EUR",
		ToCurrency:    "USD",
		Rate:          decimal.RequireFromString("1.2345"),
		EffectiveDate: asOf.AddDate(0, 0, -1),
	})

	converter := usecase.NewCurrencyConverter(rateRepo)

	tests := []struct {
		name     string
		amount   string
		from     string
		to       string
		expected string
	}{
		{
			name:     "same currency returns amount unchanged",
			amount:   "45.678",
			from:     "GBP",
			to:       "GBP",
			expected: "45.678",
		},
		{
			name:     "converts with direct rate",
			amount:   "100",
			from:     "GBP",
			to:       "USD",
			expected: "130",
		},
		{
			name:     "rounds half up at final multiplication",
			amount:   "10",
			from:     "EUR",
			to:       "USD",
			expected: "12.35",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := converter.Convert(context.Background(), decimal.RequireFromString(tt.amount), tt.from, tt.to, asOf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}

	t.Run("missing rate returns ErrRateNotFound", func(t *testing.T) {
		_, err := converter.Convert(context.Background(), decimal.NewFromInt(100), "JPY", "USD", asOf)
		if !errors.Is(err, domain.ErrRateNotFound) {
			t.Errorf("expected ErrRateNotFound, got %v", err)
		}
	})

	t.Run("no triangulation through reverse pair", func(t *testing.T) {
		_, err := converter.Convert(context.Background(), decimal.NewFromInt(100), "USD", "GBP", asOf)
		if !errors.Is(err, domain.ErrRateNotFound) {
			t.Errorf("expected ErrRateNotFound, got %v", err)
		}
	})
}

func TestCurrencyConverter_EffectiveDating(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	rateRepo := mocks.NewMockRateRepository()

	// Three rows for the same pair; the middle one is in effect at asOf.
	rateRepo.Create(context.Background(), &domain.ExchangeRate{
		ID:            "old",
		FromCurrency:  "GBP",
		ToCurrency:    "USD",
		Rate:          decimal.RequireFromString("1.10"),
		EffectiveDate: asOf.AddDate(0, -2, 0),
	})
	rateRepo.Create(context.Background(), &domain.ExchangeRate{
		ID:            "current",
		FromCurrency:  "GBP",
		ToCurrency:    "USD",
		Rate:          decimal.RequireFromString("1.25"),
		EffectiveDate: asOf.AddDate(0, 0, -3),
	})
	rateRepo.Create(context.Background(), &domain.ExchangeRate{
		ID:            "future",
		FromCurrency:  "GBP",
		ToCurrency:    "USD",
		Rate:          decimal.RequireFromString("1.99"),
		EffectiveDate: asOf.AddDate(0, 0, 5),
	})

	converter := usecase.NewCurrencyConverter(rateRepo)

	got, err := converter.Convert(context.Background(), decimal.NewFromInt(100), "GBP", "USD", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(125)) {
		t.Errorf("expected 125, got %s", got)
	}
}
