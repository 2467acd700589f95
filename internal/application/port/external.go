package port

import (
	"context"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// RequestDirectory is the narrow view of the surrounding HR application's
// request records. The engine reads summaries and writes back a coarse
// status; it never owns the request data.
type RequestDirectory interface {
	// GetSummary returns the minimal projection of a request, or nil when
	// the request no longer exists
	GetSummary(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.RequestSummary, error)

	// SetStatus propagates a terminal chain outcome to the request
	SetStatus(ctx context.Context, requestID int64, requestType entity.RequestType, status string) error

	// ListByEmployee returns summaries of every request the employee has
	// submitted, newest first
	ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.RequestSummary, error)
}

// ApproverResolver resolves a routing role to a concrete principal for the
// submitting employee. A nil result with no error means nobody holds the
// role (e.g. the employee has no manager).
type ApproverResolver interface {
	ResolveApprover(ctx context.Context, requestType entity.RequestType, role string, employeeID int64) (int64, error)
}

// BalanceLedger adjusts leave balances. Both operations must be single
// atomic increments on the stored balance; an overlapping rejection and a
// fresh submission may race on the same row.
type BalanceLedger interface {
	// ReleasePending returns reserved days to the available balance
	ReleasePending(ctx context.Context, employeeID, leaveTypeID int64, days float64) error

	// CommitUsed converts reserved days into used days
	CommitUsed(ctx context.Context, employeeID, leaveTypeID int64, days float64) error
}

// NotificationSink emits a notification event. Fire-and-forget from the
// engine's perspective; delivery is someone else's job.
type NotificationSink interface {
	Notify(ctx context.Context, userID int64, kind string, payload map[string]interface{}) error
}
