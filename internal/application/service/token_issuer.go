package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// TokenIssuer mints the sibling approve/reject action tokens for a step
// that just became pending.
type TokenIssuer interface {
	IssuePair(ctx context.Context, step *entity.ApprovalStep) (*entity.TokenPair, error)
}

type tokenIssuerImpl struct {
	tokenRepo port.TokenRepository
	ttl       time.Duration
	logger    Logger
}

// NewTokenIssuer creates a new TokenIssuer with the given token lifetime
func NewTokenIssuer(tokenRepo port.TokenRepository, ttl time.Duration, logger Logger) TokenIssuer {
	return &tokenIssuerImpl{
		tokenRepo: tokenRepo,
		ttl:       ttl,
		logger:    logger,
	}
}

// IssuePair mints and persists the approve and reject tokens for a step
func (i *tokenIssuerImpl) IssuePair(ctx context.Context, step *entity.ApprovalStep) (*entity.TokenPair, error) {
	if step.ApproverUserID == 0 {
		return nil, fmt.Errorf("cannot issue tokens for step %d: no approver assigned", step.ID)
	}

	now := time.Now()
	expiresAt := now.Add(i.ttl)

	pair := &entity.TokenPair{}
	for _, action := range []entity.Decision{entity.DecisionApprove, entity.DecisionReject} {
		secret, err := newTokenSecret()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		tok := &entity.ActionToken{
			Token:       secret,
			ActionType:  action,
			StepID:      step.ID,
			RequestID:   step.RequestID,
			RequestType: step.RequestType,
			UserID:      step.ApproverUserID,
			ExpiresAt:   expiresAt,
			CreatedAt:   now,
		}
		if action == entity.DecisionApprove {
			pair.Approve = tok
		} else {
			pair.Reject = tok
		}
	}

	if err := i.tokenRepo.CreatePair(ctx, pair); err != nil {
		i.logger.Error("Failed to persist action tokens", "error", err, "step_id", step.ID)
		return nil, fmt.Errorf("create token pair: %w", err)
	}

	i.logger.Info("Action tokens issued",
		"step_id", step.ID,
		"approver_user_id", step.ApproverUserID,
		"expires_at", expiresAt,
	)
	return pair, nil
}

// newTokenSecret returns a 256-bit random value, hex encoded. The token is
// the sole credential on the unauthenticated path, so it comes from the
// CSPRNG.
func newTokenSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
