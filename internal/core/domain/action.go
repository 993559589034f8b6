package domain

import "time"

// Action is a terminal follow-up dispatched against an external system.
type Action string

const (
	ActionEscalate         Action = "escalate"
	ActionRespond          Action = "respond"
	ActionReviewInvoice    Action = "review_invoice"
	ActionComplianceReview Action = "compliance_review"
	ActionTechnicalReview  Action = "technical_review"
	ActionProcess          Action = "process"
	ActionArchive          Action = "archive"
	ActionLog              Action = "log"
)

// DispatchAck is the acknowledgement returned by the (simulated) external
// system for a dispatched action.
type DispatchAck struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActionRecord documents one routed action and its outcome.
type ActionRecord struct {
	Action     Action      `json:"action"`
	DocumentID string      `json:"document_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Details    DispatchAck `json:"details"`
}

func (ActionRecord) Kind() RecordKind { return RecordAction }
