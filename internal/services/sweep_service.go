// Package services – SweepService
//
// This file implements the escalation sweeper and the reconciler. Both are
// trigger-driven: the engine owns no goroutines of its own, it is invoked by
// the binary's scheduler (or the manual /sweep endpoint) and races safely
// with inline ingestion, because every mutation is a guarded single-row
// update and every create is an upsert on the source message id.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-commitment-engine/internal/domain"
	"github.com/tbourn/go-commitment-engine/internal/notify"
	"github.com/tbourn/go-commitment-engine/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SweepService ages commitments past their deadlines and backfills
// commitments for historical messages that were never classified.
type SweepService struct {
	DB       *gorm.DB
	Svc      *CommitmentService
	Notifier notify.Notifier
	Logger   zerolog.Logger

	// Grace policy: a commitment's grace period is its original window
	// (deadline minus creation), clamped into [GraceMin, GraceMax]. Each
	// full grace period elapsed while overdue is one escalation level.
	GraceMin time.Duration
	GraceMax time.Duration
	// EscalateLevel is the level at which status flips to escalated and a
	// notification is emitted.
	EscalateLevel int

	// Reconciliation bounds: how far back to scan and how many messages to
	// examine per pass. Remaining history is picked up by the next run.
	ReconcileWindow time.Duration
	ReconcileLimit  int

	// EscalatableBatch caps the rows examined by one escalation pass.
	EscalatableBatch int
}

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	MarkedOverdue    int64 `json:"marked_overdue"`
	LevelsRaised     int   `json:"levels_raised"`
	Escalated        int   `json:"escalated"`
	NotifyFailures   int   `json:"notify_failures"`
	ReconcileScanned int   `json:"reconcile_scanned"`
	ReconcileCreated int   `json:"reconcile_created"`
}

// Sweep advances commitment status based on elapsed time: active past the
// deadline becomes overdue, and overdue commitments gain one escalation
// level per elapsed grace period, flipping to escalated (with a best-effort
// notification) once the level threshold is crossed.
//
// Idempotent and safe to run concurrently with itself: the overdue predicate
// is exact, and each level step is guarded on the level the pass observed,
// so a racing sweep's duplicate step matches zero rows.
func (s *SweepService) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	tr := otel.Tracer("services/SweepService")
	ctx, span := tr.Start(ctx, "Sweep", trace.WithAttributes(attribute.String("now", now.Format(time.RFC3339))))
	defer span.End()

	var rep SweepReport

	n, err := repo.MarkOverdue(ctx, s.DB, now)
	if err != nil {
		return rep, err
	}
	rep.MarkedOverdue = n
	if n > 0 {
		sweepTransitionsTotal.WithLabelValues("overdue").Add(float64(n))
	}

	candidates, err := repo.ListEscalatable(ctx, s.DB, now, s.EscalatableBatch)
	if err != nil {
		return rep, err
	}
	for i := range candidates {
		c := &candidates[i]
		target := s.targetLevel(c, now)
		if target <= c.EscalationLevel {
			continue
		}

		escalate := c.Status != domain.StatusEscalated && c.EscalationLevel+1 >= s.EscalateLevel
		applied, err := repo.StepEscalation(ctx, s.DB, c, escalate, now)
		if err != nil {
			return rep, err
		}
		if !applied {
			// Lost the race to a concurrent sweep or an operator action.
			continue
		}
		rep.LevelsRaised++
		if escalate {
			rep.Escalated++
			sweepTransitionsTotal.WithLabelValues("escalated").Inc()
			s.notifyEscalation(ctx, *c, c.EscalationLevel+1, now, &rep)
		}
	}
	return rep, nil
}

// Reconcile backfills commitments for support-authored messages inside the
// configured window that were never classified, running the classify and
// resolve pipeline over each. Re-running over overlapping windows is safe
// because creation is idempotent on the source message id and every scanned
// message is watermarked.
func (s *SweepService) Reconcile(ctx context.Context, now time.Time) (scanned, created int, err error) {
	tr := otel.Tracer("services/SweepService")
	ctx, span := tr.Start(ctx, "Reconcile")
	defer span.End()

	since := now.Add(-s.ReconcileWindow)
	msgs, err := repo.ListUnreconciled(ctx, s.DB, since, s.ReconcileLimit)
	if err != nil {
		return 0, 0, err
	}

	for i := range msgs {
		m := &msgs[i]
		scanned++

		d := s.Svc.Classifier.Classify(m.Text)
		observeDetection(d)
		if d.HasCommitment {
			_, fresh, cerr := s.Svc.CreateFromMessage(ctx, m, d, "reconcile")
			if cerr != nil {
				return scanned, created, cerr
			}
			if fresh {
				created++
			}
		}
		if merr := repo.MarkMessageProcessed(ctx, s.DB, m.ID, now); merr != nil {
			return scanned, created, merr
		}
	}
	return scanned, created, nil
}

// Run executes a full pass: sweep, then reconcile. Used by the scheduler
// and the manual trigger endpoint.
func (s *SweepService) Run(ctx context.Context, now time.Time) (SweepReport, error) {
	rep, err := s.Sweep(ctx, now)
	if err != nil {
		return rep, err
	}
	rep.ReconcileScanned, rep.ReconcileCreated, err = s.Reconcile(ctx, now)
	if err != nil {
		return rep, err
	}
	s.Logger.Info().
		Int64("marked_overdue", rep.MarkedOverdue).
		Int("levels_raised", rep.LevelsRaised).
		Int("escalated", rep.Escalated).
		Int("reconcile_scanned", rep.ReconcileScanned).
		Int("reconcile_created", rep.ReconcileCreated).
		Msg("sweep pass")
	return rep, nil
}

// targetLevel computes how many full grace periods the commitment has spent
// overdue at instant now.
func (s *SweepService) targetLevel(c *domain.Commitment, now time.Time) int {
	grace := c.Deadline.Sub(c.CreatedAt)
	if grace < s.GraceMin {
		grace = s.GraceMin
	}
	if grace > s.GraceMax {
		grace = s.GraceMax
	}
	overdueFor := now.Sub(c.Deadline)
	if overdueFor <= 0 {
		return 0
	}
	return int(overdueFor / grace)
}

// notifyEscalation emits the escalation event. Fire and forget: the status
// transition is the durable record of truth, a delivery failure is logged
// and never propagated.
func (s *SweepService) notifyEscalation(ctx context.Context, c domain.Commitment, level int, now time.Time, rep *SweepReport) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.NotifyEscalation(ctx, notify.Escalation{
		Commitment: c,
		Level:      level,
		At:         now,
	})
	if err != nil {
		rep.NotifyFailures++
		notificationsTotal.WithLabelValues("failed").Inc()
		s.Logger.Error().Err(err).
			Str("notifier", s.Notifier.Name()).
			Str("commitment_id", c.ID).
			Msg("escalation notification failed")
		return
	}
	notificationsTotal.WithLabelValues("sent").Inc()
}
