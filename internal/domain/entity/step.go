package entity

import "time"

// ApprovalStep is one position in the ordered approval chain of a request.
// Step numbers are contiguous and 1-based within (RequestID, RequestType).
// Steps are never deleted; the chain doubles as the audit trail.
type ApprovalStep struct {
	ID             int64       `json:"id"`
	RequestID      int64       `json:"request_id"`
	RequestType    RequestType `json:"request_type"`
	StepNumber     int         `json:"step_number"`
	ApproverRole   string      `json:"approver_role"`
	ApproverUserID int64       `json:"approver_user_id,omitempty"` // 0 until resolvable
	Status         StepStatus  `json:"status"`
	Comment        string      `json:"comment,omitempty"`
	ActedBy        int64       `json:"acted_by,omitempty"`
	ActedAt        *time.Time  `json:"acted_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsActive returns true when this is the chain's single pending step
func (s *ApprovalStep) IsActive() bool {
	return s.Status == StepStatusPending
}
