package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/config"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// ChainService builds the approval chain for a newly submitted request:
// resolves the configured role sequence to concrete approvers, seeds the
// step store (step 1 pending, rest queued) and mints step 1's action
// tokens. It never mutates the underlying request.
type ChainService interface {
	InitiateApproval(ctx context.Context, requestID int64, requestType entity.RequestType, employeeID int64) ([]*entity.ApprovalStep, error)
}

type chainServiceImpl struct {
	stepRepo  port.StepRepository
	issuer    TokenIssuer
	resolver  port.ApproverResolver
	notifier  *ApproverNotifier
	txManager port.TransactionManager
	routing   config.ApprovalConfig
	logger    Logger
}

// NewChainService creates a new ChainService
func NewChainService(
	stepRepo port.StepRepository,
	issuer TokenIssuer,
	resolver port.ApproverResolver,
	notifier *ApproverNotifier,
	txManager port.TransactionManager,
	routing config.ApprovalConfig,
	logger Logger,
) ChainService {
	return &chainServiceImpl{
		stepRepo:  stepRepo,
		issuer:    issuer,
		resolver:  resolver,
		notifier:  notifier,
		txManager: txManager,
		routing:   routing,
		logger:    logger,
	}
}

// InitiateApproval creates the approval chain for a request
func (s *chainServiceImpl) InitiateApproval(ctx context.Context, requestID int64, requestType entity.RequestType, employeeID int64) ([]*entity.ApprovalStep, error) {
	if !requestType.IsValid() {
		return nil, fmt.Errorf("unknown request type %q", requestType)
	}

	// Re-submission of the same request reuses the existing chain (idempotency)
	existing, err := s.stepRepo.GetChain(ctx, requestID, requestType)
	if err != nil {
		return nil, fmt.Errorf("get chain: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("Approval chain already exists",
			"request_id", requestID, "request_type", requestType)
		return existing, nil
	}

	roles := s.routing.RoleSequence(requestType)
	if len(roles) == 0 {
		return nil, fmt.Errorf("no routing configured for request type %q", requestType)
	}

	now := time.Now()
	steps := make([]*entity.ApprovalStep, 0, len(roles))
	for i, role := range roles {
		approverID, err := s.resolver.ResolveApprover(ctx, requestType, role, employeeID)
		if err != nil {
			return nil, fmt.Errorf("resolve approver for role %q: %w", role, err)
		}
		if approverID == 0 {
			return nil, &approval.RoutingError{
				RequestType: requestType,
				Role:        role,
				EmployeeID:  employeeID,
			}
		}

		status := entity.StepStatusQueued
		if i == 0 {
			status = entity.StepStatusPending
		}
		steps = append(steps, &entity.ApprovalStep{
			RequestID:      requestID,
			RequestType:    requestType,
			StepNumber:     i + 1,
			ApproverRole:   role,
			ApproverUserID: approverID,
			Status:         status,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if !approval.Validate(steps) {
		return nil, fmt.Errorf("built malformed chain for request %d (%s)", requestID, requestType)
	}

	var pair *entity.TokenPair
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.stepRepo.CreateBatch(txCtx, steps); err != nil {
			return fmt.Errorf("create steps: %w", err)
		}
		pair, err = s.issuer.IssuePair(txCtx, steps[0])
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to initiate approval",
			"error", err, "request_id", requestID, "request_type", requestType)
		return nil, err
	}

	s.logger.Info("Approval chain created",
		"request_id", requestID,
		"request_type", requestType,
		"total_steps", len(steps),
		"first_approver", steps[0].ApproverUserID,
	)

	// Activation notification is fire-and-forget; the chain is already durable
	s.notifier.NotifyActionRequired(ctx, steps[0], pair)

	return steps, nil
}
