package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// TransitionResult reports what a decision did to the chain. Step is the
// resolved step; Activated is the next step if one was promoted; Outcome is
// set only when the decision was terminal for the chain.
type TransitionResult struct {
	Step      *entity.ApprovalStep `json:"step"`
	Activated *entity.ApprovalStep `json:"activated,omitempty"`
	Outcome   entity.Outcome       `json:"outcome,omitempty"`
}

// TransitionService is the state machine core. Both the authenticated UI
// path and the email-token gateway funnel through Decide, so the transition
// logic exists exactly once.
type TransitionService interface {
	// Decide resolves a pending step with an approve/reject decision.
	//
	// Exactly one caller wins under concurrency: the commit point is a
	// conditional "transition only if still pending" update, and the loser
	// deterministically receives ErrAlreadyProcessed. A returned
	// *approval.SideEffectError means the decision itself was recorded but
	// a downstream effect failed; the accompanying result is still valid.
	Decide(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error)
}

type transitionServiceImpl struct {
	stepRepo  port.StepRepository
	tokenRepo port.TokenRepository
	issuer    TokenIssuer
	resolver  port.ApproverResolver
	requests  port.RequestDirectory
	finalizer *FinalizerRegistry
	notifier  *ApproverNotifier
	txManager port.TransactionManager
	logger    Logger
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(
	stepRepo port.StepRepository,
	tokenRepo port.TokenRepository,
	issuer TokenIssuer,
	resolver port.ApproverResolver,
	requests port.RequestDirectory,
	finalizer *FinalizerRegistry,
	notifier *ApproverNotifier,
	txManager port.TransactionManager,
	logger Logger,
) TransitionService {
	return &transitionServiceImpl{
		stepRepo:  stepRepo,
		tokenRepo: tokenRepo,
		issuer:    issuer,
		resolver:  resolver,
		requests:  requests,
		finalizer: finalizer,
		notifier:  notifier,
		txManager: txManager,
		logger:    logger,
	}
}

// Decide resolves a pending step and advances or terminates its chain
func (s *transitionServiceImpl) Decide(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error) {
	if !decision.IsValid() {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	res := &TransitionResult{}
	var mintedPair *entity.TokenPair

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		step, err := s.stepRepo.GetByID(txCtx, stepID)
		if err != nil {
			return fmt.Errorf("get step: %w", err)
		}
		if step == nil {
			return approval.ErrStepNotFound
		}

		now := time.Now()

		// The single commit point: transition only if still pending.
		won, err := s.stepRepo.TransitionIfPending(txCtx, stepID, decision.StepStatus(), actorID, comment, now)
		if err != nil {
			return fmt.Errorf("transition step: %w", err)
		}
		if !won {
			return approval.ErrAlreadyProcessed
		}

		step.Status = decision.StepStatus()
		step.ActedBy = actorID
		step.ActedAt = &now
		step.Comment = comment
		res.Step = step

		// The decision is settled; any outstanding magic links for this
		// step are dead from here on.
		if err := s.tokenRepo.MarkPairUsed(txCtx, stepID, now); err != nil {
			return fmt.Errorf("retire tokens: %w", err)
		}

		if decision == entity.DecisionReject {
			if err := s.stepRepo.CancelQueued(txCtx, step.RequestID, step.RequestType); err != nil {
				return fmt.Errorf("cancel queued steps: %w", err)
			}
			res.Outcome = entity.OutcomeRejected
			return nil
		}

		next, err := s.stepRepo.NextQueued(txCtx, step.RequestID, step.RequestType)
		if err != nil {
			return fmt.Errorf("next queued step: %w", err)
		}
		if next == nil {
			res.Outcome = entity.OutcomeApproved
			return nil
		}

		approverID := next.ApproverUserID
		if approverID == 0 {
			// Approver was unresolvable at build time; try again now.
			// Still nobody means the whole decision aborts: committing the
			// approve would strand the chain with queued steps and no
			// pending one.
			summary, err := s.requests.GetSummary(txCtx, step.RequestID, step.RequestType)
			if err != nil {
				return fmt.Errorf("get request summary: %w", err)
			}
			if summary == nil {
				return &approval.RoutingError{RequestType: step.RequestType, Role: next.ApproverRole}
			}
			approverID, err = s.resolver.ResolveApprover(txCtx, step.RequestType, next.ApproverRole, summary.EmployeeID)
			if err != nil {
				return fmt.Errorf("resolve approver: %w", err)
			}
			if approverID == 0 {
				return &approval.RoutingError{
					RequestType: step.RequestType,
					Role:        next.ApproverRole,
					EmployeeID:  summary.EmployeeID,
				}
			}
		}

		activated, err := s.stepRepo.ActivateIfQueued(txCtx, next.ID, approverID)
		if err != nil {
			return fmt.Errorf("activate step: %w", err)
		}
		if !activated {
			// Only this transaction can promote the step, so a failed
			// activation is a broken chain, not a race.
			return fmt.Errorf("step %d no longer queued", next.ID)
		}
		next.Status = entity.StepStatusPending
		next.ApproverUserID = approverID

		mintedPair, err = s.issuer.IssuePair(txCtx, next)
		if err != nil {
			return err
		}
		res.Activated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Step decided",
		"step_id", stepID,
		"decision", string(decision),
		"actor_id", actorID,
		"outcome", string(res.Outcome),
	)

	if res.Activated != nil {
		s.notifier.NotifyActionRequired(ctx, res.Activated, mintedPair)
	}

	// Terminal side effects run after the ledger commit on purpose: the
	// step record is the source of truth and is never reverted for the
	// sake of a downstream failure.
	if res.Outcome != "" {
		if err := s.finalizer.Finalize(ctx, res.Step.RequestID, res.Step.RequestType, res.Outcome); err != nil {
			s.logger.Error("Side effects failed after committed transition",
				"error", err,
				"request_id", res.Step.RequestID,
				"request_type", string(res.Step.RequestType),
			)
			return res, err
		}
	}

	return res, nil
}
