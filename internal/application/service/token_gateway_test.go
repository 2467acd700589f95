package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

type gatewayFixture struct {
	tokenRepo *mockTokenRepo
	stepRepo  *mockStepRepo
	decider   *mockDecider
	gateway   ActionTokenGateway
}

func newGatewayFixture() *gatewayFixture {
	f := &gatewayFixture{
		tokenRepo: &mockTokenRepo{},
		stepRepo:  &mockStepRepo{},
		decider:   &mockDecider{},
	}
	f.gateway = NewActionTokenGateway(f.tokenRepo, f.stepRepo, f.decider, &mockLogger{})
	return f
}

func liveToken(action entity.Decision) *entity.ActionToken {
	return &entity.ActionToken{
		ID:          1,
		Token:       "secret-value",
		ActionType:  action,
		StepID:      5,
		RequestID:   42,
		RequestType: entity.RequestTypeTimeOff,
		UserID:      200,
		ExpiresAt:   time.Now().Add(time.Hour),
		CreatedAt:   time.Now().Add(-time.Hour),
	}
}

func TestActionTokenGateway_Inspect(t *testing.T) {
	usedAt := time.Now().Add(-time.Minute)

	tests := []struct {
		name    string
		token   *entity.ActionToken
		wantErr error
	}{
		{
			name:    "unknown token",
			token:   nil,
			wantErr: approval.ErrInvalidToken,
		},
		{
			name: "expired token",
			token: func() *entity.ActionToken {
				tok := liveToken(entity.DecisionApprove)
				tok.ExpiresAt = time.Now().Add(-time.Hour)
				return tok
			}(),
			wantErr: approval.ErrTokenExpired,
		},
		{
			name: "consumed token",
			token: func() *entity.ActionToken {
				tok := liveToken(entity.DecisionApprove)
				tok.UsedAt = &usedAt
				return tok
			}(),
			wantErr: approval.ErrTokenUsed,
		},
		{
			name:    "live token",
			token:   liveToken(entity.DecisionApprove),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGatewayFixture()
			f.tokenRepo.getByValueFunc = func(ctx context.Context, token string) (*entity.ActionToken, error) {
				return tt.token, nil
			}

			_, err := f.gateway.Inspect(context.Background(), "secret-value")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Inspect() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestActionTokenGateway_Redeem_RejectNeedsReason(t *testing.T) {
	f := newGatewayFixture()
	f.tokenRepo.getByValueFunc = func(ctx context.Context, token string) (*entity.ActionToken, error) {
		return liveToken(entity.DecisionReject), nil
	}
	f.decider.decideFunc = func(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error) {
		t.Error("Decide called without a rejection reason")
		return nil, nil
	}

	for _, comment := range []string{"", "   ", "\t\n"} {
		_, err := f.gateway.Redeem(context.Background(), "secret-value", comment)
		if !errors.Is(err, approval.ErrReasonRequired) {
			t.Errorf("Redeem(%q) error = %v, want ErrReasonRequired", comment, err)
		}
	}
}

func TestActionTokenGateway_Redeem_DelegatesToDecider(t *testing.T) {
	f := newGatewayFixture()
	f.tokenRepo.getByValueFunc = func(ctx context.Context, token string) (*entity.ActionToken, error) {
		return liveToken(entity.DecisionApprove), nil
	}
	f.stepRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ApprovalStep, error) {
		return &entity.ApprovalStep{ID: id, Status: entity.StepStatusPending}, nil
	}

	var gotStep, gotActor int64
	var gotDecision entity.Decision
	f.decider.decideFunc = func(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error) {
		gotStep, gotActor, gotDecision = stepID, actorID, decision
		return &TransitionResult{Outcome: entity.OutcomeApproved}, nil
	}

	res, err := f.gateway.Redeem(context.Background(), "secret-value", "")
	if err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}
	if res.Outcome != entity.OutcomeApproved {
		t.Errorf("Redeem() outcome = %v, want approved", res.Outcome)
	}
	if gotStep != 5 || gotActor != 200 || gotDecision != entity.DecisionApprove {
		t.Errorf("Decide(%d, %d, %v), want (5, 200, approve)", gotStep, gotActor, gotDecision)
	}
}

func TestActionTokenGateway_Redeem_SettledStepRetiresPair(t *testing.T) {
	f := newGatewayFixture()
	f.tokenRepo.getByValueFunc = func(ctx context.Context, token string) (*entity.ActionToken, error) {
		return liveToken(entity.DecisionApprove), nil
	}
	f.stepRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ApprovalStep, error) {
		return &entity.ApprovalStep{ID: id, Status: entity.StepStatusApproved}, nil
	}

	var retiredStep int64
	f.tokenRepo.markPairUsedFunc = func(ctx context.Context, stepID int64, usedAt time.Time) error {
		retiredStep = stepID
		return nil
	}
	f.decider.decideFunc = func(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error) {
		t.Error("Decide called for a settled step")
		return nil, nil
	}

	_, err := f.gateway.Redeem(context.Background(), "secret-value", "")
	if !errors.Is(err, approval.ErrAlreadyProcessed) {
		t.Errorf("Redeem() error = %v, want ErrAlreadyProcessed", err)
	}
	if retiredStep != 5 {
		t.Errorf("retired tokens for step %d, want 5", retiredStep)
	}
}

func TestActionTokenGateway_Redeem_LostRaceRetiresPair(t *testing.T) {
	f := newGatewayFixture()
	f.tokenRepo.getByValueFunc = func(ctx context.Context, token string) (*entity.ActionToken, error) {
		return liveToken(entity.DecisionApprove), nil
	}
	f.stepRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ApprovalStep, error) {
		return &entity.ApprovalStep{ID: id, Status: entity.StepStatusPending}, nil
	}
	f.decider.decideFunc = func(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error) {
		return nil, approval.ErrAlreadyProcessed
	}

	var retiredStep int64
	f.tokenRepo.markPairUsedFunc = func(ctx context.Context, stepID int64, usedAt time.Time) error {
		retiredStep = stepID
		return nil
	}

	_, err := f.gateway.Redeem(context.Background(), "secret-value", "")
	if !errors.Is(err, approval.ErrAlreadyProcessed) {
		t.Errorf("Redeem() error = %v, want ErrAlreadyProcessed", err)
	}
	if retiredStep != 5 {
		t.Errorf("retired tokens for step %d, want 5", retiredStep)
	}
}

func TestActionTokenGateway_Redeem_SideEffectFailureKeepsResult(t *testing.T) {
	f := newGatewayFixture()
	f.tokenRepo.getByValueFunc = func(ctx context.Context, token string) (*entity.ActionToken, error) {
		return liveToken(entity.DecisionApprove), nil
	}
	f.stepRepo.getByIDFunc = func(ctx context.Context, id int64) (*entity.ApprovalStep, error) {
		return &entity.ApprovalStep{ID: id, Status: entity.StepStatusPending}, nil
	}
	f.decider.decideFunc = func(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error) {
		res := &TransitionResult{Outcome: entity.OutcomeApproved}
		return res, &approval.SideEffectError{
			RequestID:   42,
			RequestType: entity.RequestTypeTimeOff,
			Outcome:     entity.OutcomeApproved,
			Err:         errors.New("notification channel down"),
		}
	}

	res, err := f.gateway.Redeem(context.Background(), "secret-value", "")

	var sideEffect *approval.SideEffectError
	if !errors.As(err, &sideEffect) {
		t.Fatalf("Redeem() error = %v, want SideEffectError", err)
	}
	if res == nil || res.Outcome != entity.OutcomeApproved {
		t.Errorf("Redeem() result = %+v, want recorded outcome alongside the error", res)
	}
}
