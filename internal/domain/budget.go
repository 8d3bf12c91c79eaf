package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending envelope consumed read-only as an optional rule
// condition input. Consumption bookkeeping lives elsewhere.
type Budget struct {
	ID           string
	DepartmentID *string
	Amount       decimal.Decimal
	Currency     string
	StartDate    time.Time
	EndDate      time.Time
	CreatedAt    time.Time
}

// Covers reports whether the budget window contains the given instant.
func (b *Budget) Covers(at time.Time) bool {
	return !at.Before(b.StartDate) && !at.After(b.EndDate)
}
