package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestRuleConditions_Validate(t *testing.T) {
	tests := []struct {
		name       string
		ruleType   RuleType
		conditions RuleConditions
		wantErr    error
	}{
		{
			name:       "amount threshold with max",
			ruleType:   RuleTypeAmountThreshold,
			conditions: RuleConditions{MaxAmount: dec("50"), Currency: "GBP"},
		},
		{
			name:       "amount threshold without bounds",
			ruleType:   RuleTypeAmountThreshold,
			conditions: RuleConditions{Currency: "GBP"},
			wantErr:    ErrInvalidConditions,
		},
		{
			name:       "min above max",
			ruleType:   RuleTypeAmountThreshold,
			conditions: RuleConditions{MinAmount: dec("100"), MaxAmount: dec("50")},
			wantErr:    ErrInvalidConditions,
		},
		{
			name:       "category requires types",
			ruleType:   RuleTypeCategory,
			conditions: RuleConditions{},
			wantErr:    ErrInvalidConditions,
		},
		{
			name:       "category with types",
			ruleType:   RuleTypeCategory,
			conditions: RuleConditions{CategoryTypes: []string{CategoryTravel}},
		},
		{
			name:       "department requires ids",
			ruleType:   RuleTypeDepartment,
			conditions: RuleConditions{},
			wantErr:    ErrInvalidConditions,
		},
		{
			name:       "custom allows anything",
			ruleType:   RuleTypeCustom,
			conditions: RuleConditions{},
		},
		{
			name:       "bad currency",
			ruleType:   RuleTypeAmountThreshold,
			conditions: RuleConditions{MaxAmount: dec("50"), Currency: "XXX"},
			wantErr:    ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conditions.Validate(tt.ruleType)
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

func TestRuleConditions_Matches(t *testing.T) {
	fact := &Fact{
		ClaimID:       "claim-1",
		DepartmentID:  "dept-eng",
		EmployeeLevel: "L4",
		Amount:        decimal.NewFromInt(450),
		Currency:      "GBP",
		CategoryTypes: []string{CategoryTravel, CategoryMeals},
	}

	tests := []struct {
		name       string
		conditions RuleConditions
		amount     decimal.Decimal
		want       bool
	}{
		{
			name:       "max bound inclusive",
			conditions: RuleConditions{MaxAmount: dec("450")},
			amount:     decimal.NewFromInt(450),
			want:       true,
		},
		{
			name:       "above max",
			conditions: RuleConditions{MaxAmount: dec("449.99")},
			amount:     decimal.NewFromInt(450),
			want:       false,
		},
		{
			name:       "min bound inclusive",
			conditions: RuleConditions{MinAmount: dec("450")},
			amount:     decimal.NewFromInt(450),
			want:       true,
		},
		{
			name:       "category any-match",
			conditions: RuleConditions{CategoryTypes: []string{CategoryTravel, CategoryEquipment}},
			amount:     fact.Amount,
			want:       true,
		},
		{
			name:       "category no overlap",
			conditions: RuleConditions{CategoryTypes: []string{CategoryEquipment}},
			amount:     fact.Amount,
			want:       false,
		},
		{
			name:       "department member",
			conditions: RuleConditions{DepartmentIDs: []string{"dept-eng", "dept-ops"}},
			amount:     fact.Amount,
			want:       true,
		},
		{
			name:       "department not member",
			conditions: RuleConditions{DepartmentIDs: []string{"dept-ops"}},
			amount:     fact.Amount,
			want:       false,
		},
		{
			name: "and-combined: amount ok but category missing",
			conditions: RuleConditions{
				MaxAmount:     dec("500"),
				CategoryTypes: []string{CategoryEquipment},
			},
			amount: fact.Amount,
			want:   false,
		},
		{
			name:       "exceeds budget condition",
			conditions: RuleConditions{ExceedsBudget: boolPtr(true)},
			amount:     fact.Amount,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conditions.Matches(fact, tt.amount); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApprovalConfig_Validate(t *testing.T) {
	twoLevel := ApprovalConfig{
		Levels: []ApprovalLevel{
			{Level: 1, Role: RoleManager, ApproverIDs: []string{"mgr-1"}, RequiredApprovals: 1},
			{Level: 2, Role: RoleFinance, ApproverIDs: []string{"fin-1", "fin-2"}, RequiredApprovals: 2},
		},
	}

	if err := twoLevel.Validate(ActionRequireMultiLevel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := twoLevel.Validate(ActionRequireApproval); !errors.Is(err, ErrInvalidPlanConfig) {
		t.Errorf("REQUIRE_APPROVAL with two levels should fail, got %v", err)
	}

	empty := ApprovalConfig{}
	if err := empty.Validate(ActionRequireApproval); !errors.Is(err, ErrInvalidPlanConfig) {
		t.Errorf("empty config should fail, got %v", err)
	}
	if err := empty.Validate(ActionAutoApprove); err != nil {
		t.Errorf("AUTO_APPROVE needs no levels, got %v", err)
	}

	gap := ApprovalConfig{
		Levels: []ApprovalLevel{
			{Level: 1, ApproverIDs: []string{"a"}, RequiredApprovals: 1},
			{Level: 3, ApproverIDs: []string{"b"}, RequiredApprovals: 1},
		},
	}
	if err := gap.Validate(ActionRequireMultiLevel); !errors.Is(err, ErrInvalidPlanConfig) {
		t.Errorf("non-contiguous levels should fail, got %v", err)
	}

	short := ApprovalConfig{
		Levels: []ApprovalLevel{
			{Level: 1, ApproverIDs: []string{"a"}, RequiredApprovals: 2},
		},
	}
	if err := short.Validate(ActionRequireMultiLevel); !errors.Is(err, ErrInvalidPlanConfig) {
		t.Errorf("fewer approvers than required should fail, got %v", err)
	}
}

func boolPtr(b bool) *bool { return &b }
