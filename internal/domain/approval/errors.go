package approval

import (
	"errors"
	"fmt"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

var (
	// ErrStepNotFound is returned when the referenced step does not exist
	ErrStepNotFound = errors.New("approval step not found")

	// ErrAlreadyProcessed is returned when the step is no longer pending.
	// It covers replays, double-clicks and races lost to a concurrent
	// decision, and is benign from the caller's point of view.
	ErrAlreadyProcessed = errors.New("approval step already processed")

	// ErrInvalidToken is returned when no token matches the presented value
	ErrInvalidToken = errors.New("action token not found")

	// ErrTokenExpired is returned when the token is past its expiry
	ErrTokenExpired = errors.New("action token expired")

	// ErrTokenUsed is returned when the token was already consumed
	ErrTokenUsed = errors.New("action token already used")

	// ErrReasonRequired is returned when a reject token is redeemed without
	// a rejection reason. A bare link click must never finalize a rejection.
	ErrReasonRequired = errors.New("rejection reason required")
)

// RoutingError means no approver could be resolved for a required role.
// It blocks chain creation or next-step activation and must reach an
// operator rather than being silently skipped.
type RoutingError struct {
	RequestType entity.RequestType
	Role        string
	EmployeeID  int64
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("no approver resolvable for role %q (request_type=%s, employee=%d)",
		e.Role, e.RequestType, e.EmployeeID)
}

// SideEffectError means a terminal side effect (underlying request update,
// balance adjustment or notification) failed after the step transition had
// already committed. The step ledger stays authoritative; the wrapped
// transition result is still valid and the failure must be re-driven
// manually.
type SideEffectError struct {
	RequestID   int64
	RequestType entity.RequestType
	Outcome     entity.Outcome
	Err         error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("side effect failed for %s request %d (outcome=%s): %v",
		e.RequestType, e.RequestID, e.Outcome, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}
