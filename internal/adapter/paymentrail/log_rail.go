package paymentrail

import (
	"context"
	"log/slog"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/infrastructure/logging"
)

// LogRail is a payment rail that records payouts to the log instead of
// moving money. It stands in for the bank integration in development and
// test environments.
type LogRail struct {
	logger *logging.Logger
}

// NewLogRail creates a new LogRail. A nil logger falls back to the default
// slog handler.
func NewLogRail(logger *logging.Logger) *LogRail {
	if logger == nil {
		logger = &logging.Logger{Logger: slog.Default()}
	}
	return &LogRail{logger: logger}
}

// Pay logs the payout and reports success. The log line carries the caller's
// identity from the request context.
func (r *LogRail) Pay(ctx context.Context, reimbursement *domain.Reimbursement) error {
	r.logger.InfoCtx(ctx, "PAYOUT",
		slog.String("reimbursement_id", reimbursement.ID),
		slog.String("claim_id", reimbursement.ClaimID),
		slog.String("amount", reimbursement.Amount.String()),
		slog.String("currency", reimbursement.Currency),
		slog.String("method", string(reimbursement.Method)))

	return nil
}
