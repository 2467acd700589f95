package entity

import "time"

// RequestSummary is the minimal view of an underlying request the engine
// needs for display and finalization. The request itself is owned by the
// surrounding HR application; the engine only reads this projection and
// writes back a coarse status.
type RequestSummary struct {
	RequestID   int64       `json:"request_id"`
	RequestType RequestType `json:"request_type"`
	EmployeeID  int64       `json:"employee_id"`
	Title       string      `json:"title"`
	Status      string      `json:"status"`

	// Time-off only
	LeaveTypeID int64   `json:"leave_type_id,omitempty"`
	Days        float64 `json:"days,omitempty"`

	// Loan only
	AmountCents int64 `json:"amount_cents,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// PendingApproval is a row in an approver's work queue: the active step
// joined with its request summary.
type PendingApproval struct {
	Step    *ApprovalStep   `json:"step"`
	Request *RequestSummary `json:"request"`
}

// RequestWithSteps is a requester's view of one submission with its full
// step history. Outcome is empty while the chain is still in flight.
type RequestWithSteps struct {
	Request *RequestSummary `json:"request"`
	Steps   []*ApprovalStep `json:"steps"`
	Outcome Outcome         `json:"outcome,omitempty"`
}

// Notification is a persisted record of an outbound notification event.
// Delivery itself happens outside the engine; this is the outbox.
type Notification struct {
	ID        int64     `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
