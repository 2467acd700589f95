package service

import (
	"context"
	"fmt"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// QueryService is the read side: "what is waiting on me" and "where are my
// submissions". It never mutates state.
type QueryService interface {
	ListPendingFor(ctx context.Context, userID int64) ([]*entity.PendingApproval, error)
	ListMine(ctx context.Context, userID int64) ([]*entity.RequestWithSteps, error)
}

type queryServiceImpl struct {
	stepRepo port.StepRepository
	requests port.RequestDirectory
	logger   Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(stepRepo port.StepRepository, requests port.RequestDirectory, logger Logger) QueryService {
	return &queryServiceImpl{
		stepRepo: stepRepo,
		requests: requests,
		logger:   logger,
	}
}

// ListPendingFor returns every pending step assigned to the user, joined
// with its request summary. A step whose request record has vanished is
// excluded rather than treated as an error; request deletion is outside
// this engine's control.
func (s *queryServiceImpl) ListPendingFor(ctx context.Context, userID int64) ([]*entity.PendingApproval, error) {
	steps, err := s.stepRepo.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending steps: %w", err)
	}

	result := make([]*entity.PendingApproval, 0, len(steps))
	for _, step := range steps {
		summary, err := s.requests.GetSummary(ctx, step.RequestID, step.RequestType)
		if err != nil {
			return nil, fmt.Errorf("get request summary: %w", err)
		}
		if summary == nil {
			s.logger.Info("Skipping pending step with missing request",
				"step_id", step.ID,
				"request_id", step.RequestID,
				"request_type", string(step.RequestType),
			)
			continue
		}
		result = append(result, &entity.PendingApproval{Step: step, Request: summary})
	}
	return result, nil
}

// ListMine returns the user's own submissions with their full step history
func (s *queryServiceImpl) ListMine(ctx context.Context, userID int64) ([]*entity.RequestWithSteps, error) {
	summaries, err := s.requests.ListByEmployee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	result := make([]*entity.RequestWithSteps, 0, len(summaries))
	for _, summary := range summaries {
		steps, err := s.stepRepo.GetChain(ctx, summary.RequestID, summary.RequestType)
		if err != nil {
			return nil, fmt.Errorf("get chain: %w", err)
		}
		item := &entity.RequestWithSteps{Request: summary, Steps: steps}
		if outcome, done := approval.Outcome(steps); done {
			item.Outcome = outcome
		}
		result = append(result, item)
	}
	return result, nil
}
