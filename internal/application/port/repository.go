package port

import (
	"context"
	"time"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// StepRepository defines persistence operations for ApprovalStep.
// Mutations are conditional single-statement updates so concurrent callers
// race on the database row, not on application state.
type StepRepository interface {
	// CreateBatch inserts all steps of a new chain
	CreateBatch(ctx context.Context, steps []*entity.ApprovalStep) error

	// GetByID retrieves a step by its ID (nil when absent)
	GetByID(ctx context.Context, id int64) (*entity.ApprovalStep, error)

	// GetChain retrieves all steps of a chain ordered by step number
	GetChain(ctx context.Context, requestID int64, requestType entity.RequestType) ([]*entity.ApprovalStep, error)

	// TransitionIfPending atomically resolves a step: the update applies
	// only while the step is still pending, and the return value reports
	// whether this caller won.
	TransitionIfPending(ctx context.Context, id int64, status entity.StepStatus, actedBy int64, comment string, actedAt time.Time) (bool, error)

	// ActivateIfQueued atomically moves a queued step to pending
	ActivateIfQueued(ctx context.Context, id int64, approverUserID int64) (bool, error)

	// CancelQueued cancels every still-queued step of a chain
	CancelQueued(ctx context.Context, requestID int64, requestType entity.RequestType) error

	// NextQueued returns the queued step with the lowest step number, or nil
	NextQueued(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.ApprovalStep, error)

	// ListPendingForUser returns all pending steps assigned to a user
	ListPendingForUser(ctx context.Context, userID int64) ([]*entity.ApprovalStep, error)
}

// TokenRepository defines persistence operations for ActionToken
type TokenRepository interface {
	// CreatePair inserts the sibling approve/reject tokens of a step
	CreatePair(ctx context.Context, pair *entity.TokenPair) error

	// GetByValue retrieves a token by its secret value (nil when absent)
	GetByValue(ctx context.Context, token string) (*entity.ActionToken, error)

	// MarkPairUsed retires every unconsumed token of a step. Single
	// statement, so whichever path settles the decision first wins and the
	// sibling can never fire afterwards.
	MarkPairUsed(ctx context.Context, stepID int64, usedAt time.Time) error
}

// NotificationRepository persists the notification outbox
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error)
}

// TransactionManager runs a function within a database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
