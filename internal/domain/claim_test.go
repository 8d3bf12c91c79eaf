package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClaimStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ClaimStatus
		to      ClaimStatus
		allowed bool
	}{
		{"draft to submitted", ClaimStatusDraft, ClaimStatusSubmitted, true},
		{"submitted to pending approval", ClaimStatusSubmitted, ClaimStatusPendingApproval, true},
		{"submitted to approved (auto-approve)", ClaimStatusSubmitted, ClaimStatusApproved, true},
		{"submitted to rejected (reject action)", ClaimStatusSubmitted, ClaimStatusRejected, true},
		{"pending approval to approved", ClaimStatusPendingApproval, ClaimStatusApproved, true},
		{"pending approval to rejected", ClaimStatusPendingApproval, ClaimStatusRejected, true},
		{"approved to paid", ClaimStatusApproved, ClaimStatusPaid, true},
		{"draft cannot skip to approved", ClaimStatusDraft, ClaimStatusApproved, false},
		{"draft cannot skip to pending approval", ClaimStatusDraft, ClaimStatusPendingApproval, false},
		{"submitted cannot go back to draft", ClaimStatusSubmitted, ClaimStatusDraft, false},
		{"submitted cannot jump to paid", ClaimStatusSubmitted, ClaimStatusPaid, false},
		{"rejected is terminal", ClaimStatusRejected, ClaimStatusSubmitted, false},
		{"rejected cannot be paid", ClaimStatusRejected, ClaimStatusPaid, false},
		{"paid is terminal", ClaimStatusPaid, ClaimStatusApproved, false},
		{"approved cannot be rejected", ClaimStatusApproved, ClaimStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestClaimStatus_IsTerminal(t *testing.T) {
	if !ClaimStatusRejected.IsTerminal() {
		t.Error("REJECTED should be terminal")
	}
	if !ClaimStatusPaid.IsTerminal() {
		t.Error("PAID should be terminal")
	}
	if ClaimStatusApproved.IsTerminal() {
		t.Error("APPROVED should not be terminal")
	}
}

func TestExpenseClaim_Transition(t *testing.T) {
	claim := &ExpenseClaim{Status: ClaimStatusDraft}

	if err := claim.Transition(ClaimStatusSubmitted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claim.Status != ClaimStatusSubmitted {
		t.Errorf("expected SUBMITTED, got %s", claim.Status)
	}

	err := claim.Transition(ClaimStatusPaid)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	// Failed transition must leave state unchanged
	if claim.Status != ClaimStatusSubmitted {
		t.Errorf("status mutated on failed transition: %s", claim.Status)
	}
}

func TestExpenseClaim_ValidateSubmit(t *testing.T) {
	item := &ExpenseItem{Amount: decimal.NewFromInt(45), Currency: "GBP"}

	tests := []struct {
		name      string
		claim     *ExpenseClaim
		submitter string
		wantErr   error
	}{
		{
			name: "valid",
			claim: &ExpenseClaim{
				EmployeeID:  "emp-1",
				Status:      ClaimStatusDraft,
				TotalAmount: decimal.NewFromInt(45),
				Items:       []*ExpenseItem{item},
			},
			submitter: "emp-1",
		},
		{
			name: "wrong owner",
			claim: &ExpenseClaim{
				EmployeeID:  "emp-1",
				Status:      ClaimStatusDraft,
				TotalAmount: decimal.NewFromInt(45),
				Items:       []*ExpenseItem{item},
			},
			submitter: "emp-2",
			wantErr:   ErrNotClaimOwner,
		},
		{
			name: "no items",
			claim: &ExpenseClaim{
				EmployeeID:  "emp-1",
				Status:      ClaimStatusDraft,
				TotalAmount: decimal.NewFromInt(45),
			},
			submitter: "emp-1",
			wantErr:   ErrEmptyClaim,
		},
		{
			name: "zero total",
			claim: &ExpenseClaim{
				EmployeeID: "emp-1",
				Status:     ClaimStatusDraft,
				Items:      []*ExpenseItem{item},
			},
			submitter: "emp-1",
			wantErr:   ErrInvalidAmount,
		},
		{
			name: "already submitted",
			claim: &ExpenseClaim{
				EmployeeID:  "emp-1",
				Status:      ClaimStatusSubmitted,
				TotalAmount: decimal.NewFromInt(45),
				Items:       []*ExpenseItem{item},
			},
			submitter: "emp-1",
			wantErr:   ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.claim.ValidateSubmit(tt.submitter)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpenseClaim_CategoryTypes(t *testing.T) {
	claim := &ExpenseClaim{
		Items: []*ExpenseItem{
			{CategoryType: CategoryTravel},
			{CategoryType: CategoryMeals},
			{CategoryType: CategoryTravel},
		},
	}

	types := claim.CategoryTypes()
	if len(types) != 2 {
		t.Fatalf("expected 2 distinct types, got %d: %v", len(types), types)
	}
}
