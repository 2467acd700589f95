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

const tokenColumns = `id, token, action_type, step_id, request_id, request_type,
	user_id, expires_at, used_at, created_at`

// TokenRepository implements port.TokenRepository on sqlite
type TokenRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.DB, logger *zap.Logger) port.TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

// CreatePair inserts the sibling approve/reject tokens of a step
func (r *TokenRepository) CreatePair(ctx context.Context, pair *entity.TokenPair) error {
	query := `
		INSERT INTO approval_action_tokens (
			token, action_type, step_id, request_id, request_type,
			user_id, expires_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := r.db.Executor(ctx)
	for _, tok := range []*entity.ActionToken{pair.Approve, pair.Reject} {
		result, err := exec.ExecContext(ctx, query,
			tok.Token,
			string(tok.ActionType),
			tok.StepID,
			tok.RequestID,
			string(tok.RequestType),
			tok.UserID,
			tok.ExpiresAt,
			tok.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create action token",
				zap.Int64("step_id", tok.StepID),
				zap.String("action_type", string(tok.ActionType)),
				zap.Error(err))
			return fmt.Errorf("failed to create action token: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		tok.ID = id
	}
	return nil
}

// GetByValue retrieves a token by its secret value
func (r *TokenRepository) GetByValue(ctx context.Context, token string) (*entity.ActionToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM approval_action_tokens WHERE token = ?`

	tok, err := scanToken(r.db.Executor(ctx).QueryRowContext(ctx, query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get action token", zap.Error(err))
		return nil, fmt.Errorf("failed to get action token: %w", err)
	}
	return tok, nil
}

// MarkPairUsed retires every unconsumed token of a step in one statement
func (r *TokenRepository) MarkPairUsed(ctx context.Context, stepID int64, usedAt time.Time) error {
	query := `
		UPDATE approval_action_tokens
		SET used_at = ?
		WHERE step_id = ? AND used_at IS NULL
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query, usedAt, stepID)
	if err != nil {
		r.logger.Error("Failed to mark token pair used",
			zap.Int64("step_id", stepID),
			zap.Error(err))
		return fmt.Errorf("failed to mark token pair used: %w", err)
	}
	return nil
}

func scanToken(row *sql.Row) (*entity.ActionToken, error) {
	var tok entity.ActionToken
	var actionType, requestType string
	var usedAt sql.NullTime

	err := row.Scan(
		&tok.ID,
		&tok.Token,
		&actionType,
		&tok.StepID,
		&tok.RequestID,
		&requestType,
		&tok.UserID,
		&tok.ExpiresAt,
		&usedAt,
		&tok.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	tok.ActionType = entity.Decision(actionType)
	tok.RequestType = entity.RequestType(requestType)
	if usedAt.Valid {
		t := usedAt.Time
		tok.UsedAt = &t
	}
	return &tok, nil
}

// Verify interface compliance
var _ port.TokenRepository = (*TokenRepository)(nil)
