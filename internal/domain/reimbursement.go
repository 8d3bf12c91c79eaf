package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReimbursementStatus is the payment state of a reimbursement.
type ReimbursementStatus string

const (
	ReimbursementStatusPending   ReimbursementStatus = "PENDING"
	ReimbursementStatusProcessed ReimbursementStatus = "PROCESSED"
	ReimbursementStatusFailed    ReimbursementStatus = "FAILED"
)

// ReimbursementMethod is the payment rail a reimbursement goes out on.
type ReimbursementMethod string

const (
	MethodBankTransfer ReimbursementMethod = "BANK_TRANSFER"
	MethodPayroll      ReimbursementMethod = "PAYROLL"
	MethodCash         ReimbursementMethod = "CASH"
)

// Valid reports whether the method is a known payment rail.
func (m ReimbursementMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodPayroll, MethodCash:
		return true
	}

	return false
}

// Reimbursement pays out an approved claim. Amount is in the payment
// currency, which may differ from the claim currency. Immutable once
// PROCESSED; a FAILED record may be superseded by a retry.
type Reimbursement struct {
	ID          string
	ClaimID     string
	Amount      decimal.Decimal
	Currency    string
	Method      ReimbursementMethod
	ProcessedBy string
	BatchID     *string
	Status      ReimbursementStatus
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
