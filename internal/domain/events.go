package domain

import "time"

// Event types
const (
	EventTypeClaimSubmitted         = "claim.submitted"
	EventTypeClaimHeld              = "claim.held"
	EventTypeClaimApproved          = "claim.approved"
	EventTypeClaimRejected          = "claim.rejected"
	EventTypeClaimPaid              = "claim.paid"
	EventTypeApprovalRecorded       = "approval.recorded"
	EventTypeApprovalEscalated      = "approval.escalated"
	EventTypeReimbursementProcessed = "reimbursement.processed"
	EventTypeReimbursementFailed    = "reimbursement.failed"
)

// Aggregate types
const (
	AggregateTypeClaim         = "claim"
	AggregateTypeApproval      = "approval"
	AggregateTypeReimbursement = "reimbursement"
)

// OutboxEvent is one row of the append-only per-claim event log. Events are
// written in the same transaction as the state change they describe and
// dispatched to notification channels only after commit. Payload holds one of
// the *EventPayload structs below on the write path; rows read back from
// storage carry the decoded JSON object instead.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ClaimEventPayload is the payload of every claim-aggregate event. RuleID and
// Action are set only when the rule engine routed the claim.
type ClaimEventPayload struct {
	ClaimID     string `json:"claim_id"`
	EmployeeID  string `json:"employee_id"`
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
	RuleID      string `json:"rule_id,omitempty"`
	Action      string `json:"action,omitempty"`
}

// DecisionEventPayload is the payload of approval.recorded events.
type DecisionEventPayload struct {
	ClaimID    string `json:"claim_id"`
	ApprovalID string `json:"approval_id"`
	ApproverID string `json:"approver_id"`
	Level      int    `json:"level"`
	Decision   string `json:"decision"`
	Outcome    string `json:"outcome"`
}

// EscalationEventPayload is the payload of approval.escalated events.
type EscalationEventPayload struct {
	ClaimID        string `json:"claim_id"`
	Level          int    `json:"level"`
	FromApproverID string `json:"from_approver_id"`
	ToApproverID   string `json:"to_approver_id"`
}

// ReimbursementEventPayload is the payload of reimbursement.processed and
// reimbursement.failed events.
type ReimbursementEventPayload struct {
	ReimbursementID string `json:"reimbursement_id"`
	ClaimID         string `json:"claim_id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Method          string `json:"method"`
}
