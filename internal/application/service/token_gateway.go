package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// ActionTokenGateway redeems single-use email action tokens. It is a thin
// adapter in front of the TransitionService: it validates token state and
// delegates the actual decision, so the two entry points can never drift.
type ActionTokenGateway interface {
	// Inspect validates a token without consuming it, so the rejection
	// reason form can render before anything is committed.
	Inspect(ctx context.Context, tokenValue string) (*entity.ActionToken, error)

	// Redeem consumes the token and drives the decision. comment is
	// required for reject tokens (a bare link click never finalizes a
	// rejection) and optional for approve tokens.
	Redeem(ctx context.Context, tokenValue, comment string) (*TransitionResult, error)
}

type tokenGatewayImpl struct {
	tokenRepo port.TokenRepository
	stepRepo  port.StepRepository
	decider   TransitionService
	logger    Logger
}

// NewActionTokenGateway creates a new ActionTokenGateway
func NewActionTokenGateway(
	tokenRepo port.TokenRepository,
	stepRepo port.StepRepository,
	decider TransitionService,
	logger Logger,
) ActionTokenGateway {
	return &tokenGatewayImpl{
		tokenRepo: tokenRepo,
		stepRepo:  stepRepo,
		decider:   decider,
		logger:    logger,
	}
}

// Inspect validates token existence, expiry and prior use
func (g *tokenGatewayImpl) Inspect(ctx context.Context, tokenValue string) (*entity.ActionToken, error) {
	tok, err := g.tokenRepo.GetByValue(ctx, tokenValue)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, approval.ErrInvalidToken
	}
	if tok.IsExpired(time.Now()) {
		return nil, approval.ErrTokenExpired
	}
	if tok.IsUsed() {
		return nil, approval.ErrTokenUsed
	}
	return tok, nil
}

// Redeem consumes a token and resolves its step
func (g *tokenGatewayImpl) Redeem(ctx context.Context, tokenValue, comment string) (*TransitionResult, error) {
	tok, err := g.Inspect(ctx, tokenValue)
	if err != nil {
		return nil, err
	}

	if tok.ActionType == entity.DecisionReject && strings.TrimSpace(comment) == "" {
		return nil, approval.ErrReasonRequired
	}

	// Defense in depth: Decide re-checks this atomically, but a settled
	// step lets us retire the pair without touching the engine.
	step, err := g.stepRepo.GetByID(ctx, tok.StepID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		g.logger.Error("Action token references missing step",
			"step_id", tok.StepID, "token_id", tok.ID)
		return nil, approval.ErrInvalidToken
	}
	if step.Status != entity.StepStatusPending {
		g.retirePair(ctx, tok.StepID)
		return nil, approval.ErrAlreadyProcessed
	}

	res, err := g.decider.Decide(ctx, tok.StepID, tok.UserID, tok.ActionType, comment)

	// Once Decide has run the step is settled no matter who won, so both
	// siblings are retired either way. A successful Decide already did this
	// inside its transaction.
	if err != nil && errors.Is(err, approval.ErrAlreadyProcessed) {
		g.retirePair(ctx, tok.StepID)
		return nil, approval.ErrAlreadyProcessed
	}
	if err != nil {
		var sideEffect *approval.SideEffectError
		if errors.As(err, &sideEffect) {
			// Decision recorded; surface the downstream failure with it.
			return res, err
		}
		return nil, err
	}

	g.logger.Info("Action token redeemed",
		"step_id", tok.StepID,
		"action", string(tok.ActionType),
		"user_id", tok.UserID,
	)
	return res, nil
}

func (g *tokenGatewayImpl) retirePair(ctx context.Context, stepID int64) {
	if err := g.tokenRepo.MarkPairUsed(ctx, stepID, time.Now()); err != nil {
		g.logger.Error("Failed to retire token pair", "error", err, "step_id", stepID)
	}
}
