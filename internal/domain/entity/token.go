package entity

import "time"

// ActionToken lets an approver act on one specific step from an email link
// without an authenticated session. Tokens are minted in sibling pairs
// (approve + reject) when a step becomes pending, and the pair is retired
// together once the step is decided, whichever path wins.
type ActionToken struct {
	ID          int64       `json:"id"`
	Token       string      `json:"-"` // opaque secret, never serialized
	ActionType  Decision    `json:"action_type"`
	StepID      int64       `json:"step_id"`
	RequestID   int64       `json:"request_id"`
	RequestType RequestType `json:"request_type"`
	UserID      int64       `json:"user_id"`
	ExpiresAt   time.Time   `json:"expires_at"`
	UsedAt      *time.Time  `json:"used_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IsExpired reports whether the token has passed its expiry at the given time
func (t *ActionToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsUsed reports whether the token has already been consumed
func (t *ActionToken) IsUsed() bool {
	return t.UsedAt != nil
}

// TokenPair holds the sibling approve/reject tokens minted for one step
type TokenPair struct {
	Approve *ActionToken
	Reject  *ActionToken
}
