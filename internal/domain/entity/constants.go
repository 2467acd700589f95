package entity

// RequestType identifies the kind of underlying request an approval chain
// belongs to.
type RequestType string

const (
	RequestTypeTimeOff      RequestType = "time_off"
	RequestTypeBusinessTrip RequestType = "business_trip"
	RequestTypeLoan         RequestType = "loan"
)

var validRequestTypes = map[RequestType]bool{
	RequestTypeTimeOff:      true,
	RequestTypeBusinessTrip: true,
	RequestTypeLoan:         true,
}

// IsValid returns true if the request type is known
func (t RequestType) IsValid() bool {
	return validRequestTypes[t]
}

func (t RequestType) String() string {
	return string(t)
}

// StepStatus represents the lifecycle state of a single approval step
type StepStatus string

const (
	StepStatusQueued    StepStatus = "queued"
	StepStatusPending   StepStatus = "pending"
	StepStatusApproved  StepStatus = "approved"
	StepStatusRejected  StepStatus = "rejected"
	StepStatusCancelled StepStatus = "cancelled"
)

// IsResolved returns true once the step can never change again
func (s StepStatus) IsResolved() bool {
	switch s {
	case StepStatusApproved, StepStatusRejected, StepStatusCancelled:
		return true
	}
	return false
}

func (s StepStatus) String() string {
	return string(s)
}

// Decision is an approver's verdict on a pending step
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// IsValid returns true if the decision is known
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// StepStatus maps a decision to the step status it produces
func (d Decision) StepStatus() StepStatus {
	if d == DecisionReject {
		return StepStatusRejected
	}
	return StepStatusApproved
}

// Outcome is the terminal result of a whole approval chain
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// RequestStatus values written back to the underlying request
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Approver roles used by the routing configuration
const (
	RoleManager = "manager"
	RoleHR      = "hr"
)

// Notification kinds emitted by the engine
const (
	NotificationActionRequired  = "approval_action_required"
	NotificationRequestApproved = "request_approved"
	NotificationRequestRejected = "request_rejected"
)
