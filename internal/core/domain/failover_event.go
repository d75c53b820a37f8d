package domain

import "time"

// FailoverEvent is published after every registry rotation attempt that changed state.
type FailoverEvent struct {
	EventID     string    `json:"eventId"`
	Deactivated string    `json:"deactivated"`
	Activated   string    `json:"activated,omitempty"`
	Reason      string    `json:"reason"`
	Outcome     string    `json:"outcome"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Failover outcomes.
const (
	FailoverOutcomeRotated    = "rotated"
	FailoverOutcomeNoFallback = "no_fallback"
)
