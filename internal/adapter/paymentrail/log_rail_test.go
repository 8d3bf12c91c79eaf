package paymentrail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/infrastructure/logging"
)

func TestLogRailPay(t *testing.T) {
	var buf bytes.Buffer
	rail := NewLogRail(&logging.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))})

	ctx := domain.WithIdentity(context.Background(), domain.Identity{ID: "fin-1"})

	err := rail.Pay(ctx, &domain.Reimbursement{
		ID:       "reimb-1",
		ClaimID:  "claim-1",
		Amount:   decimal.RequireFromString("563.13"),
		Currency: "USD",
		Method:   domain.MethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := buf.String()
	for _, want := range []string{
		`"reimbursement_id":"reimb-1"`,
		`"amount":"563.13"`,
		`"currency":"USD"`,
		`"subject_id":"fin-1"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %s in payout log, got %q", want, line)
		}
	}
}

func TestLogRailNilLogger(t *testing.T) {
	rail := NewLogRail(nil)

	err := rail.Pay(context.Background(), &domain.Reimbursement{
		ID:       "reimb-1",
		ClaimID:  "claim-1",
		Amount:   decimal.NewFromInt(100),
		Currency: "GBP",
		Method:   domain.MethodPayroll,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
