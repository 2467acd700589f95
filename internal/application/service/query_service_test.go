package service

import (
	"context"
	"testing"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

func TestQueryService_ListPendingFor(t *testing.T) {
	stepRepo := &mockStepRepo{
		listPendingForUserFunc: func(ctx context.Context, userID int64) ([]*entity.ApprovalStep, error) {
			return []*entity.ApprovalStep{
				{ID: 1, RequestID: 42, RequestType: entity.RequestTypeTimeOff, Status: entity.StepStatusPending, ApproverUserID: userID},
				{ID: 2, RequestID: 77, RequestType: entity.RequestTypeLoan, Status: entity.StepStatusPending, ApproverUserID: userID},
			}, nil
		},
	}
	requests := &mockRequestDirectory{
		getSummaryFunc: func(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.RequestSummary, error) {
			// Request 77 was deleted out from under its chain
			if requestID == 77 {
				return nil, nil
			}
			return &entity.RequestSummary{RequestID: requestID, RequestType: requestType, EmployeeID: 100}, nil
		},
	}

	service := NewQueryService(stepRepo, requests, &mockLogger{})

	pending, err := service.ListPendingFor(context.Background(), 200)
	if err != nil {
		t.Fatalf("ListPendingFor() error = %v", err)
	}

	if len(pending) != 1 {
		t.Fatalf("ListPendingFor() returned %d items, want 1 (missing request skipped)", len(pending))
	}
	if pending[0].Step.ID != 1 || pending[0].Request.RequestID != 42 {
		t.Errorf("ListPendingFor()[0] = %+v, want step 1 joined with request 42", pending[0])
	}
}

func TestQueryService_ListMine(t *testing.T) {
	requests := &mockRequestDirectory{
		listByEmployeeFunc: func(ctx context.Context, employeeID int64) ([]*entity.RequestSummary, error) {
			return []*entity.RequestSummary{
				{RequestID: 42, RequestType: entity.RequestTypeTimeOff, EmployeeID: employeeID},
			}, nil
		},
	}
	stepRepo := &mockStepRepo{
		getChainFunc: func(ctx context.Context, requestID int64, requestType entity.RequestType) ([]*entity.ApprovalStep, error) {
			return []*entity.ApprovalStep{
				{ID: 1, RequestID: requestID, RequestType: requestType, StepNumber: 1, Status: entity.StepStatusApproved},
				{ID: 2, RequestID: requestID, RequestType: requestType, StepNumber: 2, Status: entity.StepStatusPending},
			}, nil
		},
	}

	service := NewQueryService(stepRepo, requests, &mockLogger{})

	mine, err := service.ListMine(context.Background(), 100)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}

	if len(mine) != 1 {
		t.Fatalf("ListMine() returned %d items, want 1", len(mine))
	}
	if mine[0].Request.RequestID != 42 {
		t.Errorf("ListMine()[0].Request.RequestID = %d, want 42", mine[0].Request.RequestID)
	}
	if len(mine[0].Steps) != 2 {
		t.Errorf("ListMine()[0] has %d steps, want 2", len(mine[0].Steps))
	}
	if mine[0].Outcome != "" {
		t.Errorf("ListMine()[0].Outcome = %v, want empty while in flight", mine[0].Outcome)
	}
}

func TestQueryService_ListMine_TerminalOutcome(t *testing.T) {
	requests := &mockRequestDirectory{
		listByEmployeeFunc: func(ctx context.Context, employeeID int64) ([]*entity.RequestSummary, error) {
			return []*entity.RequestSummary{
				{RequestID: 42, RequestType: entity.RequestTypeTimeOff, EmployeeID: employeeID},
			}, nil
		},
	}
	stepRepo := &mockStepRepo{
		getChainFunc: func(ctx context.Context, requestID int64, requestType entity.RequestType) ([]*entity.ApprovalStep, error) {
			return []*entity.ApprovalStep{
				{ID: 1, StepNumber: 1, Status: entity.StepStatusApproved},
				{ID: 2, StepNumber: 2, Status: entity.StepStatusRejected},
			}, nil
		},
	}

	service := NewQueryService(stepRepo, requests, &mockLogger{})

	mine, err := service.ListMine(context.Background(), 100)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if len(mine) != 1 || mine[0].Outcome != entity.OutcomeRejected {
		t.Errorf("ListMine() outcome = %v, want rejected", mine[0].Outcome)
	}
}
