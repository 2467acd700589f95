package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
	"github.com/bamin2/dgc-hr-sub004/pkg/database"
)

const stepColumns = `id, request_id, request_type, step_number, approver_role,
	approver_user_id, status, comment, acted_by, acted_at, created_at, updated_at`

// StepRepository implements port.StepRepository on sqlite
type StepRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *database.DB, logger *zap.Logger) port.StepRepository {
	return &StepRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts all steps of a new chain
func (r *StepRepository) CreateBatch(ctx context.Context, steps []*entity.ApprovalStep) error {
	query := `
		INSERT INTO approval_steps (
			request_id, request_type, step_number, approver_role,
			approver_user_id, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := r.db.Executor(ctx)
	for _, step := range steps {
		var approverID sql.NullInt64
		if step.ApproverUserID != 0 {
			approverID = sql.NullInt64{Int64: step.ApproverUserID, Valid: true}
		}

		result, err := exec.ExecContext(ctx, query,
			step.RequestID,
			string(step.RequestType),
			step.StepNumber,
			step.ApproverRole,
			approverID,
			string(step.Status),
			step.CreatedAt,
			step.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create approval step",
				zap.Int64("request_id", step.RequestID),
				zap.Int("step_number", step.StepNumber),
				zap.Error(err))
			return fmt.Errorf("failed to create approval step: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		step.ID = id
	}
	return nil
}

// GetByID retrieves a step by its ID
func (r *StepRepository) GetByID(ctx context.Context, id int64) (*entity.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps WHERE id = ?`

	step, err := r.scanStep(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approval step", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval step: %w", err)
	}
	return step, nil
}

// GetChain retrieves all steps of a chain ordered by step number
func (r *StepRepository) GetChain(ctx context.Context, requestID int64, requestType entity.RequestType) ([]*entity.ApprovalStep, error) {
	query := `
		SELECT ` + stepColumns + `
		FROM approval_steps
		WHERE request_id = ? AND request_type = ?
		ORDER BY step_number
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, requestID, string(requestType))
	if err != nil {
		r.logger.Error("Failed to get approval chain",
			zap.Int64("request_id", requestID),
			zap.String("request_type", string(requestType)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get approval chain: %w", err)
	}
	defer rows.Close()

	return r.scanSteps(rows)
}

// TransitionIfPending atomically resolves a step. The WHERE clause carries
// the concurrency contract: only a still-pending row is updated, so of two
// racing callers exactly one sees rows-affected 1.
func (r *StepRepository) TransitionIfPending(ctx context.Context, id int64, status entity.StepStatus, actedBy int64, comment string, actedAt time.Time) (bool, error) {
	query := `
		UPDATE approval_steps
		SET status = ?, acted_by = ?, acted_at = ?, comment = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'
	`

	var commentVal sql.NullString
	if comment != "" {
		commentVal = sql.NullString{String: comment, Valid: true}
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		string(status), actedBy, actedAt, commentVal, id)
	if err != nil {
		r.logger.Error("Failed to transition approval step",
			zap.Int64("id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return false, fmt.Errorf("failed to transition approval step: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// ActivateIfQueued atomically moves a queued step to pending
func (r *StepRepository) ActivateIfQueued(ctx context.Context, id int64, approverUserID int64) (bool, error) {
	query := `
		UPDATE approval_steps
		SET status = 'pending', approver_user_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'queued'
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, approverUserID, id)
	if err != nil {
		r.logger.Error("Failed to activate approval step", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to activate approval step: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// CancelQueued cancels every still-queued step of a chain
func (r *StepRepository) CancelQueued(ctx context.Context, requestID int64, requestType entity.RequestType) error {
	query := `
		UPDATE approval_steps
		SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
		WHERE request_id = ? AND request_type = ? AND status = 'queued'
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, requestID, string(requestType))
	if err != nil {
		r.logger.Error("Failed to cancel queued steps",
			zap.Int64("request_id", requestID),
			zap.String("request_type", string(requestType)),
			zap.Error(err))
		return fmt.Errorf("failed to cancel queued steps: %w", err)
	}
	return nil
}

// NextQueued returns the queued step with the lowest step number
func (r *StepRepository) NextQueued(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.ApprovalStep, error) {
	query := `
		SELECT ` + stepColumns + `
		FROM approval_steps
		WHERE request_id = ? AND request_type = ? AND status = 'queued'
		ORDER BY step_number
		LIMIT 1
	`

	step, err := r.scanStep(r.db.Executor(ctx).QueryRowContext(ctx, query, requestID, string(requestType)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get next queued step",
			zap.Int64("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get next queued step: %w", err)
	}
	return step, nil
}

// ListPendingForUser returns all pending steps assigned to a user
func (r *StepRepository) ListPendingForUser(ctx context.Context, userID int64) ([]*entity.ApprovalStep, error) {
	query := `
		SELECT ` + stepColumns + `
		FROM approval_steps
		WHERE approver_user_id = ? AND status = 'pending'
		ORDER BY created_at
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list pending steps",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list pending steps: %w", err)
	}
	defer rows.Close()

	return r.scanSteps(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStepRow(row rowScanner) (*entity.ApprovalStep, error) {
	var step entity.ApprovalStep
	var requestType string
	var status string
	var approverID, actedBy sql.NullInt64
	var comment sql.NullString
	var actedAt sql.NullTime

	err := row.Scan(
		&step.ID,
		&step.RequestID,
		&requestType,
		&step.StepNumber,
		&step.ApproverRole,
		&approverID,
		&status,
		&comment,
		&actedBy,
		&actedAt,
		&step.CreatedAt,
		&step.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	step.RequestType = entity.RequestType(requestType)
	step.Status = entity.StepStatus(status)
	if approverID.Valid {
		step.ApproverUserID = approverID.Int64
	}
	if comment.Valid {
		step.Comment = comment.String
	}
	if actedBy.Valid {
		step.ActedBy = actedBy.Int64
	}
	if actedAt.Valid {
		t := actedAt.Time
		step.ActedAt = &t
	}
	return &step, nil
}

func (r *StepRepository) scanStep(row *sql.Row) (*entity.ApprovalStep, error) {
	return scanStepRow(row)
}

func (r *StepRepository) scanSteps(rows *sql.Rows) ([]*entity.ApprovalStep, error) {
	var steps []*entity.ApprovalStep
	for rows.Next() {
		step, err := scanStepRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Verify interface compliance
var _ port.StepRepository = (*StepRepository)(nil)
