// Package notification implements the engine's NotificationSink. Events
// are persisted to the outbox table and logged; actual delivery (email,
// chat) is owned by the surrounding application.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// Sink implements port.NotificationSink
type Sink struct {
	repo        port.NotificationRepository
	linkBaseURL string
	logger      *zap.Logger
}

// NewSink creates a new notification sink. linkBaseURL is used to turn
// action tokens in the payload into clickable magic links.
func NewSink(repo port.NotificationRepository, linkBaseURL string, logger *zap.Logger) *Sink {
	return &Sink{
		repo:        repo,
		linkBaseURL: linkBaseURL,
		logger:      logger,
	}
}

// Notify records the event in the outbox and logs it
func (s *Sink) Notify(ctx context.Context, userID int64, kind string, payload map[string]interface{}) error {
	enriched := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		enriched[k] = v
	}

	// Raw token values become ready-to-click magic links for the
	// delivery channel.
	if tok, ok := enriched["approve_token"].(string); ok {
		enriched["approve_url"] = s.actionURL(tok)
		delete(enriched, "approve_token")
	}
	if tok, ok := enriched["reject_token"].(string); ok {
		enriched["reject_url"] = s.actionURL(tok)
		delete(enriched, "reject_token")
	}

	body, err := json.Marshal(enriched)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	n := &entity.Notification{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Payload:   string(body),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	s.logger.Info("Notification emitted",
		zap.String("event_id", n.EventID),
		zap.Int64("user_id", userID),
		zap.String("kind", kind),
	)
	return nil
}

func (s *Sink) actionURL(token string) string {
	return fmt.Sprintf("%s/approval/action/%s", s.linkBaseURL, token)
}

// Verify interface compliance
var _ port.NotificationSink = (*Sink)(nil)
