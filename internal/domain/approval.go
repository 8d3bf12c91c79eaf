package domain

import "time"

// ApprovalStatus is the state of a single required decision point.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// Decision is one approver's verdict.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Valid reports whether the decision is one of the two verdicts.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Status maps a decision onto the approval status it produces.
func (d Decision) Status() ApprovalStatus {
	if d == DecisionApprove {
		return ApprovalStatusApproved
	}

	return ApprovalStatusRejected
}

// Approval is one required decision point of a claim's approval plan. Rows
// are created when the plan materializes, mutated exactly once by the
// assigned approver, and never deleted. Escalation marks a row superseded
// and adds a replacement at the same level; that is the only way rows are
// added after materialization.
type Approval struct {
	ID                string
	ClaimID           string
	ApproverID        string
	Role              string
	Level             int
	RequiredApprovals int
	Status            ApprovalStatus
	Comment           *string
	Superseded        bool
	SupersededBy      *string
	DecidedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PlanOutcome is the aggregate verdict over all of a claim's approvals.
type PlanOutcome string

const (
	OutcomeStillPending  PlanOutcome = "STILL_PENDING"
	OutcomeFullyApproved PlanOutcome = "FULLY_APPROVED"
	OutcomeRejected      PlanOutcome = "REJECTED"
)

// EvaluatePlan folds the current approval rows into a PlanOutcome.
// Superseded rows are ignored. A single rejection anywhere rejects the whole
// plan. The plan is fully approved only when every level's approved count
// reaches that level's required threshold. The result is independent of the
// order decisions arrived in.
func EvaluatePlan(approvals []*Approval) PlanOutcome {
	type levelProgress struct {
		required int
		approved int
	}

	levels := make(map[int]*levelProgress)

	for _, a := range approvals {
		if a.Superseded {
			continue
		}

		if a.Status == ApprovalStatusRejected {
			return OutcomeRejected
		}

		lp := levels[a.Level]
		if lp == nil {
			lp = &levelProgress{}
			levels[a.Level] = lp
		}

		if a.RequiredApprovals > lp.required {
			lp.required = a.RequiredApprovals
		}

		if a.Status == ApprovalStatusApproved {
			lp.approved++
		}
	}

	if len(levels) == 0 {
		return OutcomeStillPending
	}

	for _, lp := range levels {
		if lp.approved < lp.required {
			return OutcomeStillPending
		}
	}

	return OutcomeFullyApproved
}
