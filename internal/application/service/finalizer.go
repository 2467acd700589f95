package service

import (
	"context"
	"fmt"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// Finalizer applies the per-request-type side effects of a terminal chain
// outcome: coarse request status, reserved-resource reconciliation and the
// requester notification.
type Finalizer interface {
	FinalizeApproved(ctx context.Context, summary *entity.RequestSummary) error
	FinalizeRejected(ctx context.Context, summary *entity.RequestSummary) error
}

// FinalizerRegistry dispatches a terminal outcome to the handler registered
// for the request type. A dispatch table rather than a shared base type:
// time-off, trips and loans are unrelated aggregates that happen to share a
// capability set.
type FinalizerRegistry struct {
	requests port.RequestDirectory
	byType   map[entity.RequestType]Finalizer
	logger   Logger
}

// NewFinalizerRegistry creates a registry with the standard three handlers
func NewFinalizerRegistry(
	requests port.RequestDirectory,
	ledger port.BalanceLedger,
	sink port.NotificationSink,
	logger Logger,
) *FinalizerRegistry {
	return &FinalizerRegistry{
		requests: requests,
		byType: map[entity.RequestType]Finalizer{
			entity.RequestTypeTimeOff:      &timeOffFinalizer{requests: requests, ledger: ledger, sink: sink},
			entity.RequestTypeBusinessTrip: &businessTripFinalizer{requests: requests, sink: sink},
			entity.RequestTypeLoan:         &loanFinalizer{requests: requests, sink: sink},
		},
		logger: logger,
	}
}

// Finalize looks up the request summary and dispatches to the type handler.
// Every failure is wrapped as a SideEffectError: the step transition has
// already committed and stays authoritative.
func (r *FinalizerRegistry) Finalize(ctx context.Context, requestID int64, requestType entity.RequestType, outcome entity.Outcome) error {
	wrap := func(err error) error {
		return &approval.SideEffectError{
			RequestID:   requestID,
			RequestType: requestType,
			Outcome:     outcome,
			Err:         err,
		}
	}

	f, ok := r.byType[requestType]
	if !ok {
		return wrap(fmt.Errorf("no finalizer registered for request type %q", requestType))
	}

	summary, err := r.requests.GetSummary(ctx, requestID, requestType)
	if err != nil {
		return wrap(fmt.Errorf("get request summary: %w", err))
	}
	if summary == nil {
		return wrap(fmt.Errorf("request no longer exists"))
	}

	if outcome == entity.OutcomeApproved {
		err = f.FinalizeApproved(ctx, summary)
	} else {
		err = f.FinalizeRejected(ctx, summary)
	}
	if err != nil {
		return wrap(err)
	}

	r.logger.Info("Request finalized",
		"request_id", requestID,
		"request_type", string(requestType),
		"outcome", string(outcome),
	)
	return nil
}

// timeOffFinalizer reconciles the leave balance hold alongside the status
// flip: approval converts the pending days to used, rejection releases them
// back to available.
type timeOffFinalizer struct {
	requests port.RequestDirectory
	ledger   port.BalanceLedger
	sink     port.NotificationSink
}

func (f *timeOffFinalizer) FinalizeApproved(ctx context.Context, summary *entity.RequestSummary) error {
	if err := f.requests.SetStatus(ctx, summary.RequestID, summary.RequestType, entity.RequestStatusApproved); err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	if err := f.ledger.CommitUsed(ctx, summary.EmployeeID, summary.LeaveTypeID, summary.Days); err != nil {
		return fmt.Errorf("commit leave balance: %w", err)
	}
	return notifyRequester(ctx, f.sink, summary, entity.NotificationRequestApproved)
}

func (f *timeOffFinalizer) FinalizeRejected(ctx context.Context, summary *entity.RequestSummary) error {
	if err := f.requests.SetStatus(ctx, summary.RequestID, summary.RequestType, entity.RequestStatusRejected); err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	if err := f.ledger.ReleasePending(ctx, summary.EmployeeID, summary.LeaveTypeID, summary.Days); err != nil {
		return fmt.Errorf("release leave balance: %w", err)
	}
	return notifyRequester(ctx, f.sink, summary, entity.NotificationRequestRejected)
}

type businessTripFinalizer struct {
	requests port.RequestDirectory
	sink     port.NotificationSink
}

func (f *businessTripFinalizer) FinalizeApproved(ctx context.Context, summary *entity.RequestSummary) error {
	if err := f.requests.SetStatus(ctx, summary.RequestID, summary.RequestType, entity.RequestStatusApproved); err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	return notifyRequester(ctx, f.sink, summary, entity.NotificationRequestApproved)
}

func (f *businessTripFinalizer) FinalizeRejected(ctx context.Context, summary *entity.RequestSummary) error {
	if err := f.requests.SetStatus(ctx, summary.RequestID, summary.RequestType, entity.RequestStatusRejected); err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	return notifyRequester(ctx, f.sink, summary, entity.NotificationRequestRejected)
}

type loanFinalizer struct {
	requests port.RequestDirectory
	sink     port.NotificationSink
}

func (f *loanFinalizer) FinalizeApproved(ctx context.Context, summary *entity.RequestSummary) error {
	if err := f.requests.SetStatus(ctx, summary.RequestID, summary.RequestType, entity.RequestStatusApproved); err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	return notifyRequester(ctx, f.sink, summary, entity.NotificationRequestApproved)
}

func (f *loanFinalizer) FinalizeRejected(ctx context.Context, summary *entity.RequestSummary) error {
	if err := f.requests.SetStatus(ctx, summary.RequestID, summary.RequestType, entity.RequestStatusRejected); err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	return notifyRequester(ctx, f.sink, summary, entity.NotificationRequestRejected)
}

func notifyRequester(ctx context.Context, sink port.NotificationSink, summary *entity.RequestSummary, kind string) error {
	payload := map[string]interface{}{
		"request_id":   summary.RequestID,
		"request_type": string(summary.RequestType),
		"title":        summary.Title,
	}
	if err := sink.Notify(ctx, summary.EmployeeID, kind, payload); err != nil {
		return fmt.Errorf("notify requester: %w", err)
	}
	return nil
}
