// Package notify defines the outbound escalation notification contract and a
// default zerolog-backed implementation.
//
// Delivery is best effort: the status transition in the store is
// the durable record of truth, and a failed notification must never roll it
// back. Callers log delivery errors and move on.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-commitment-engine/internal/domain"
)

// Escalation describes a commitment that crossed the escalation threshold.
type Escalation struct {
	Commitment domain.Commitment
	// Level is the escalation level after the transition.
	Level int
	// At is the sweep instant that raised the escalation.
	At time.Time
}

// Notifier delivers escalation events to an external collaborator, e.g. a
// supervisor alerting channel.
type Notifier interface {
	// NotifyEscalation sends a notification. Implementations should respect
	// context cancellation and return an error only for delivery failures.
	NotifyEscalation(ctx context.Context, e Escalation) error

	// Name identifies the notifier type for logging.
	Name() string
}

// LogNotifier writes escalations to the structured log. It is the default
// sink in deployments without an alerting integration, and doubles as the
// fallback when one is configured but unreachable.
type LogNotifier struct {
	Logger zerolog.Logger
}

// NotifyEscalation implements Notifier.
func (n LogNotifier) NotifyEscalation(_ context.Context, e Escalation) error {
	n.Logger.Warn().
		Str("commitment_id", e.Commitment.ID).
		Str("channel_id", e.Commitment.ChannelID).
		Str("assignee_id", e.Commitment.AssigneeID).
		Str("matched_text", e.Commitment.MatchedText).
		Time("deadline", e.Commitment.Deadline).
		Int("escalation_level", e.Level).
		Msg("commitment escalated")
	return nil
}

// Name implements Notifier.
func (n LogNotifier) Name() string { return "log" }
