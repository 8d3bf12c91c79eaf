package domain

import "github.com/shopspring/decimal"

// Category types observed on expense items.
const (
	CategoryTravel        = "TRAVEL"
	CategoryMeals         = "MEALS"
	CategoryOffice        = "OFFICE"
	CategoryEquipment     = "EQUIPMENT"
	CategoryAccommodation = "ACCOMMODATION"
	CategoryOther         = "OTHER"
)

// ExpenseCategory is collaborator-supplied category metadata. MaxAmount and
// RequiresReceipt are informational here: the over-limit flag feeds the rule
// engine as a fact, it is not enforced as a hard guard.
type ExpenseCategory struct {
	ID              string
	Name            string
	Type            string
	MaxAmount       decimal.Decimal
	RequiresReceipt bool
}

// OverLimit reports whether the amount exceeds the category ceiling. A zero
// ceiling means the category is uncapped.
func (c *ExpenseCategory) OverLimit(amount decimal.Decimal) bool {
	return c.MaxAmount.IsPositive() && amount.GreaterThan(c.MaxAmount)
}
