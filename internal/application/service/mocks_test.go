package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// Mock repositories and adapters shared by the service tests

type mockStepRepo struct {
	createBatchFunc         func(ctx context.Context, steps []*entity.ApprovalStep) error
	getByIDFunc             func(ctx context.Context, id int64) (*entity.ApprovalStep, error)
	getChainFunc            func(ctx context.Context, requestID int64, requestType entity.RequestType) ([]*entity.ApprovalStep, error)
	transitionIfPendingFunc func(ctx context.Context, id int64, status entity.StepStatus, actedBy int64, comment string, actedAt time.Time) (bool, error)
	activateIfQueuedFunc    func(ctx context.Context, id int64, approverUserID int64) (bool, error)
	cancelQueuedFunc        func(ctx context.Context, requestID int64, requestType entity.RequestType) error
	nextQueuedFunc          func(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.ApprovalStep, error)
	listPendingForUserFunc  func(ctx context.Context, userID int64) ([]*entity.ApprovalStep, error)
}

func (m *mockStepRepo) CreateBatch(ctx context.Context, steps []*entity.ApprovalStep) error {
	if m.createBatchFunc != nil {
		return m.createBatchFunc(ctx, steps)
	}
	for i, step := range steps {
		step.ID = int64(i + 1)
	}
	return nil
}

func (m *mockStepRepo) GetByID(ctx context.Context, id int64) (*entity.ApprovalStep, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStepRepo) GetChain(ctx context.Context, requestID int64, requestType entity.RequestType) ([]*entity.ApprovalStep, error) {
	if m.getChainFunc != nil {
		return m.getChainFunc(ctx, requestID, requestType)
	}
	return nil, nil
}

func (m *mockStepRepo) TransitionIfPending(ctx context.Context, id int64, status entity.StepStatus, actedBy int64, comment string, actedAt time.Time) (bool, error) {
	if m.transitionIfPendingFunc != nil {
		return m.transitionIfPendingFunc(ctx, id, status, actedBy, comment, actedAt)
	}
	return true, nil
}

func (m *mockStepRepo) ActivateIfQueued(ctx context.Context, id int64, approverUserID int64) (bool, error) {
	if m.activateIfQueuedFunc != nil {
		return m.activateIfQueuedFunc(ctx, id, approverUserID)
	}
	return true, nil
}

func (m *mockStepRepo) CancelQueued(ctx context.Context, requestID int64, requestType entity.RequestType) error {
	if m.cancelQueuedFunc != nil {
		return m.cancelQueuedFunc(ctx, requestID, requestType)
	}
	return nil
}

func (m *mockStepRepo) NextQueued(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.ApprovalStep, error) {
	if m.nextQueuedFunc != nil {
		return m.nextQueuedFunc(ctx, requestID, requestType)
	}
	return nil, nil
}

func (m *mockStepRepo) ListPendingForUser(ctx context.Context, userID int64) ([]*entity.ApprovalStep, error) {
	if m.listPendingForUserFunc != nil {
		return m.listPendingForUserFunc(ctx, userID)
	}
	return []*entity.ApprovalStep{}, nil
}

type mockTokenRepo struct {
	createPairFunc   func(ctx context.Context, pair *entity.TokenPair) error
	getByValueFunc   func(ctx context.Context, token string) (*entity.ActionToken, error)
	markPairUsedFunc func(ctx context.Context, stepID int64, usedAt time.Time) error
}

func (m *mockTokenRepo) CreatePair(ctx context.Context, pair *entity.TokenPair) error {
	if m.createPairFunc != nil {
		return m.createPairFunc(ctx, pair)
	}
	pair.Approve.ID = 1
	pair.Reject.ID = 2
	return nil
}

func (m *mockTokenRepo) GetByValue(ctx context.Context, token string) (*entity.ActionToken, error) {
	if m.getByValueFunc != nil {
		return m.getByValueFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockTokenRepo) MarkPairUsed(ctx context.Context, stepID int64, usedAt time.Time) error {
	if m.markPairUsedFunc != nil {
		return m.markPairUsedFunc(ctx, stepID, usedAt)
	}
	return nil
}

type mockRequestDirectory struct {
	getSummaryFunc     func(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.RequestSummary, error)
	setStatusFunc      func(ctx context.Context, requestID int64, requestType entity.RequestType, status string) error
	listByEmployeeFunc func(ctx context.Context, employeeID int64) ([]*entity.RequestSummary, error)
}

func (m *mockRequestDirectory) GetSummary(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.RequestSummary, error) {
	if m.getSummaryFunc != nil {
		return m.getSummaryFunc(ctx, requestID, requestType)
	}
	return &entity.RequestSummary{
		RequestID:   requestID,
		RequestType: requestType,
		EmployeeID:  100,
		Status:      entity.RequestStatusPending,
	}, nil
}

func (m *mockRequestDirectory) SetStatus(ctx context.Context, requestID int64, requestType entity.RequestType, status string) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, requestID, requestType, status)
	}
	return nil
}

func (m *mockRequestDirectory) ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.RequestSummary, error) {
	if m.listByEmployeeFunc != nil {
		return m.listByEmployeeFunc(ctx, employeeID)
	}
	return []*entity.RequestSummary{}, nil
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, requestType entity.RequestType, role string, employeeID int64) (int64, error)
}

func (m *mockResolver) ResolveApprover(ctx context.Context, requestType entity.RequestType, role string, employeeID int64) (int64, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, requestType, role, employeeID)
	}
	return 0, nil
}

type mockLedger struct {
	releasePendingFunc func(ctx context.Context, employeeID, leaveTypeID int64, days float64) error
	commitUsedFunc     func(ctx context.Context, employeeID, leaveTypeID int64, days float64) error
}

func (m *mockLedger) ReleasePending(ctx context.Context, employeeID, leaveTypeID int64, days float64) error {
	if m.releasePendingFunc != nil {
		return m.releasePendingFunc(ctx, employeeID, leaveTypeID, days)
	}
	return nil
}

func (m *mockLedger) CommitUsed(ctx context.Context, employeeID, leaveTypeID int64, days float64) error {
	if m.commitUsedFunc != nil {
		return m.commitUsedFunc(ctx, employeeID, leaveTypeID, days)
	}
	return nil
}

// mockSink records every emitted notification
type mockSink struct {
	notifyFunc func(ctx context.Context, userID int64, kind string, payload map[string]interface{}) error
	emitted    []emittedNotification
}

type emittedNotification struct {
	userID  int64
	kind    string
	payload map[string]interface{}
}

func (m *mockSink) Notify(ctx context.Context, userID int64, kind string, payload map[string]interface{}) error {
	m.emitted = append(m.emitted, emittedNotification{userID: userID, kind: kind, payload: payload})
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, userID, kind, payload)
	}
	return nil
}

type mockIssuer struct {
	issuePairFunc func(ctx context.Context, step *entity.ApprovalStep) (*entity.TokenPair, error)
	issued        []int64
}

func (m *mockIssuer) IssuePair(ctx context.Context, step *entity.ApprovalStep) (*entity.TokenPair, error) {
	m.issued = append(m.issued, step.ID)
	if m.issuePairFunc != nil {
		return m.issuePairFunc(ctx, step)
	}
	return &entity.TokenPair{
		Approve: &entity.ActionToken{Token: fmt.Sprintf("approve-%d", step.ID), ActionType: entity.DecisionApprove, StepID: step.ID},
		Reject:  &entity.ActionToken{Token: fmt.Sprintf("reject-%d", step.ID), ActionType: entity.DecisionReject, StepID: step.ID},
	}, nil
}

type mockDecider struct {
	decideFunc func(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error)
}

func (m *mockDecider) Decide(ctx context.Context, stepID, actorID int64, decision entity.Decision, comment string) (*TransitionResult, error) {
	if m.decideFunc != nil {
		return m.decideFunc(ctx, stepID, actorID, decision, comment)
	}
	return &TransitionResult{}, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
