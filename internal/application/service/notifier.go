package service

import (
	"context"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// ApproverNotifier tells an approver that a step is waiting on them. The
// payload carries the freshly minted token pair so the delivery channel can
// render the approve/reject magic links. Notification failures are logged,
// never returned: by the time we notify, the activation is already durable
// and the step can still be acted on from the app.
type ApproverNotifier struct {
	sink   port.NotificationSink
	logger Logger
}

// NewApproverNotifier creates a new ApproverNotifier
func NewApproverNotifier(sink port.NotificationSink, logger Logger) *ApproverNotifier {
	return &ApproverNotifier{sink: sink, logger: logger}
}

// NotifyActionRequired emits the action-required event for a newly pending step
func (n *ApproverNotifier) NotifyActionRequired(ctx context.Context, step *entity.ApprovalStep, pair *entity.TokenPair) {
	payload := map[string]interface{}{
		"request_id":   step.RequestID,
		"request_type": string(step.RequestType),
		"step_id":      step.ID,
		"step_number":  step.StepNumber,
		"role":         step.ApproverRole,
	}
	if pair != nil {
		payload["approve_token"] = pair.Approve.Token
		payload["reject_token"] = pair.Reject.Token
	}

	if err := n.sink.Notify(ctx, step.ApproverUserID, entity.NotificationActionRequired, payload); err != nil {
		n.logger.Error("Failed to notify approver",
			"error", err,
			"step_id", step.ID,
			"approver_user_id", step.ApproverUserID,
		)
	}
}
