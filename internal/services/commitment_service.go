// Package services – CommitmentService
//
// This file implements CommitmentService, the application-level component
// that owns the commitment lifecycle. It runs the ingest pipeline
// (classify, resolve, persist), derives priority and reminder policy at
// creation, and exposes the operator actions (complete, extend, dismiss,
// reassign, delete) with the engine's idempotent-retry semantics: illegal
// transitions are absorbed as no-ops, while references to missing records
// surface as ErrCommitmentNotFound.
//
// Observability: the public methods are OpenTelemetry-instrumented; spans
// include commitment/channel identifiers where applicable.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/google/uuid"

	"github.com/tbourn/go-commitment-engine/internal/deadline"
	"github.com/tbourn/go-commitment-engine/internal/detect"
	"github.com/tbourn/go-commitment-engine/internal/domain"
	"github.com/tbourn/go-commitment-engine/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// highPriorityHorizon is the time-to-deadline at or below which a concrete
// time promise is created as high priority.
const highPriorityHorizon = 2 * time.Hour

// MessageEvent is the inbound message contract used by the surrounding
// inbox system: one recorded utterance from the chat channel.
type MessageEvent struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	CaseID     string    `json:"case_id,omitempty"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// IngestResult is the outcome of feeding one message event to the engine.
type IngestResult struct {
	Message    *domain.InboundMessage
	Detection  detect.Detection
	Commitment *domain.Commitment
	// Created is false when the commitment already existed (idempotent
	// replay) or no commitment was detected.
	Created bool
}

// CommitmentService coordinates the detection pipeline and the persisted
// commitment lifecycle.
type CommitmentService struct {
	DB         *gorm.DB
	Classifier *detect.Classifier
	Resolver   *deadline.Resolver

	// Reminder policy: lead time subtracted from the deadline, clamped so
	// reminderAt never precedes the commitment's creation.
	ReminderLead      time.Duration
	VagueReminderLead time.Duration

	// MaxTextRunes guards against unbounded pasted transcripts; 0 disables.
	MaxTextRunes int
}

// NewCommitmentService constructs a CommitmentService with the default
// reminder policy.
func NewCommitmentService(db *gorm.DB, cls *detect.Classifier, res *deadline.Resolver) *CommitmentService {
	return &CommitmentService{
		DB:                db,
		Classifier:        cls,
		Resolver:          res,
		ReminderLead:      60 * time.Minute,
		VagueReminderLead: 30 * time.Minute,
		MaxTextRunes:      4000,
	}
}

// Detect classifies text and resolves the deadline it would get, without
// persisting anything. Used by the diagnostic endpoint for pattern tuning.
func (s *CommitmentService) Detect(ctx context.Context, text string, ref time.Time) (detect.Detection, deadline.Result, error) {
	_, span := otel.Tracer("services/CommitmentService").Start(ctx, "Detect")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return detect.Detection{}, deadline.Result{}, ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return detect.Detection{}, deadline.Result{}, ErrTooLong
	}

	d := s.Classifier.Classify(text)
	observeDetection(d)
	if !d.HasCommitment {
		return d, deadline.Result{}, nil
	}
	return d, s.Resolver.Resolve(d, ref), nil
}

// Ingest records a message event and, when it is support-authored and the
// classifier finds a promise, persists the commitment. Re-delivery of the
// same event converges to the same state: the message insert and the
// commitment create are both keyed on caller-supplied ids.
func (s *CommitmentService) Ingest(ctx context.Context, ev MessageEvent) (IngestResult, error) {
	tr := otel.Tracer("services/CommitmentService")
	ctx, span := tr.Start(ctx, "Ingest",
		trace.WithAttributes(
			attribute.String("message.id", ev.ID),
			attribute.String("channel.id", ev.ChannelID),
		),
	)
	defer span.End()

	ev.Text = strings.TrimSpace(ev.Text)
	if ev.Text == "" {
		return IngestResult{}, ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(ev.Text) > s.MaxTextRunes {
		return IngestResult{}, ErrTooLong
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	msg := &domain.InboundMessage{
		ID:         ev.ID,
		ChannelID:  ev.ChannelID,
		CaseID:     ev.CaseID,
		SenderID:   ev.SenderID,
		SenderName: ev.SenderName,
		SenderRole: ev.SenderRole,
		Text:       ev.Text,
		SentAt:     ev.Timestamp.UTC(),
	}
	if _, err := repo.CreateInboundMessage(ctx, s.DB, msg); err != nil {
		return IngestResult{}, err
	}

	out := IngestResult{Message: msg}

	// Customer-side messages are stored for context but never classified.
	if !domain.SupportRole(ev.SenderRole) {
		return out, nil
	}

	d := s.Classifier.Classify(ev.Text)
	observeDetection(d)
	out.Detection = d
	if d.HasCommitment {
		c, created, err := s.CreateFromMessage(ctx, msg, d, "inline")
		if err != nil {
			return out, err
		}
		out.Commitment = c
		out.Created = created
	}

	// Watermark regardless of outcome so reconciliation can skip this row.
	if err := repo.MarkMessageProcessed(ctx, s.DB, msg.ID, time.Now().UTC()); err != nil {
		return out, err
	}
	return out, nil
}

// CreateFromMessage resolves the deadline for a positive detection and
// persists the commitment. Idempotent on the message id: when a commitment
// already exists for msg, the existing record is returned and created is
// false. origin tags the creation metric ("inline", "reconcile", "manual").
func (s *CommitmentService) CreateFromMessage(ctx context.Context, msg *domain.InboundMessage, d detect.Detection, origin string) (*domain.Commitment, bool, error) {
	tr := otel.Tracer("services/CommitmentService")
	ctx, span := tr.Start(ctx, "CreateFromMessage",
		trace.WithAttributes(attribute.String("message.id", msg.ID)),
	)
	defer span.End()

	createdAt := msg.SentAt.UTC()
	res := s.Resolver.Resolve(d, createdAt)

	c := &domain.Commitment{
		ID:               uuid.NewString(),
		SourceMessageID:  msg.ID,
		ChannelID:        msg.ChannelID,
		CaseID:           msg.CaseID,
		AgentID:          msg.SenderID,
		AgentName:        msg.SenderName,
		AgentRole:        msg.SenderRole,
		AssigneeID:       msg.SenderID,
		AssigneeName:     msg.SenderName,
		MatchedText:      d.MatchedText,
		MessageText:      msg.Text,
		Type:             domain.CommitmentType(d.Type),
		IsVague:          d.IsVague,
		Status:           domain.StatusActive,
		Deadline:         res.Deadline,
		DeadlineExplicit: res.Explicit,
		CreatedAt:        createdAt,
	}
	c.Priority = derivePriority(c.Type, c.IsVague, createdAt, c.Deadline)
	c.ReminderAt = s.reminderAt(c.IsVague, createdAt, c.Deadline)

	out, created, err := repo.CreateCommitment(ctx, s.DB, c)
	if err != nil {
		return nil, false, err
	}
	if created {
		createdTotal.WithLabelValues(origin).Inc()
	}
	return out, created, nil
}

// Get fetches a commitment by id.
func (s *CommitmentService) Get(ctx context.Context, id string) (*domain.Commitment, error) {
	c, err := repo.GetCommitment(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCommitmentNotFound
	}
	return c, err
}

// List returns a page of commitments matching the filter, plus the total
// count for pagination metadata.
func (s *CommitmentService) List(ctx context.Context, f repo.CommitmentFilter, page, pageSize int) ([]domain.Commitment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if f.Now.IsZero() {
		f.Now = time.Now().UTC()
	}
	f.Offset = (page - 1) * pageSize
	f.Limit = pageSize

	total, err := repo.CountCommitments(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Commitment{}, 0, nil
	}
	items, err := repo.ListCommitments(ctx, s.DB, f)
	return items, total, err
}

// Complete marks a commitment completed. Completing a record that is already
// terminal is an idempotent no-op returning the current state; a missing id
// is ErrCommitmentNotFound.
func (s *CommitmentService) Complete(ctx context.Context, id string) (*domain.Commitment, error) {
	return s.transition(ctx, id, func(c *domain.Commitment) (bool, error) {
		return repo.MarkCompleted(ctx, s.DB, id, time.Now().UTC())
	})
}

// Dismiss marks a commitment dismissed (terminal). Idempotent like Complete.
func (s *CommitmentService) Dismiss(ctx context.Context, id string) (*domain.Commitment, error) {
	return s.transition(ctx, id, func(c *domain.Commitment) (bool, error) {
		return repo.MarkDismissed(ctx, s.DB, id)
	})
}

// Cancel marks a commitment cancelled (terminal). The preferred removal
// path; see Delete for the administrative hard removal.
func (s *CommitmentService) Cancel(ctx context.Context, id string) (*domain.Commitment, error) {
	return s.transition(ctx, id, func(c *domain.Commitment) (bool, error) {
		return repo.MarkCancelled(ctx, s.DB, id)
	})
}

// Extend shifts the deadline and reminder forward by minutes and steps the
// escalation level down by one (floor 0). Legal only while the commitment is
// non-terminal; on a terminal record it is a no-op returning current state.
func (s *CommitmentService) Extend(ctx context.Context, id string, minutes int) (*domain.Commitment, error) {
	if minutes <= 0 {
		return nil, ErrInvalidExtend
	}
	return s.transition(ctx, id, func(c *domain.Commitment) (bool, error) {
		return repo.ExtendCommitment(ctx, s.DB, c, time.Duration(minutes)*time.Minute)
	})
}

// Reassign updates the assignee fields only; status and escalation level are
// untouched.
func (s *CommitmentService) Reassign(ctx context.Context, id, assigneeID, assigneeName string) (*domain.Commitment, error) {
	return s.transition(ctx, id, func(c *domain.Commitment) (bool, error) {
		return repo.ReassignCommitment(ctx, s.DB, id, assigneeID, assigneeName)
	})
}

// Delete performs the administrative (soft) delete. Missing ids surface as
// ErrCommitmentNotFound.
func (s *CommitmentService) Delete(ctx context.Context, id string) error {
	ok, err := repo.DeleteCommitment(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCommitmentNotFound
	}
	return nil
}

// transition runs a guarded mutation and re-reads the row, translating the
// repo's not-found into the service sentinel. A mutation that matched no row
// on an existing record is the idempotent no-op case: the current state is
// returned unchanged.
func (s *CommitmentService) transition(ctx context.Context, id string, mutate func(*domain.Commitment) (bool, error)) (*domain.Commitment, error) {
	c, err := repo.GetCommitment(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCommitmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := mutate(c); err != nil {
		return nil, err
	}
	out, err := repo.GetCommitment(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCommitmentNotFound
	}
	return out, err
}

// derivePriority applies the creation-time priority rule: high for concrete
// time promises due within two hours, low for vague deferrals, medium
// otherwise.
func derivePriority(t domain.CommitmentType, vague bool, createdAt, dl time.Time) domain.CommitmentPriority {
	switch {
	case t == domain.CommitmentTypeTime && dl.Sub(createdAt) <= highPriorityHorizon:
		return domain.PriorityHigh
	case vague:
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

// reminderAt subtracts the reminder lead from the deadline, clamped so the
// reminder never precedes creation.
func (s *CommitmentService) reminderAt(vague bool, createdAt, dl time.Time) time.Time {
	lead := s.ReminderLead
	if vague {
		lead = s.VagueReminderLead
	}
	at := dl.Add(-lead)
	if at.Before(createdAt) {
		return createdAt
	}
	return at
}

// observeDetection feeds the detection counter.
func observeDetection(d detect.Detection) {
	if !d.HasCommitment {
		detectionsTotal.WithLabelValues("none").Inc()
		return
	}
	detectionsTotal.WithLabelValues(string(d.Type)).Inc()
}
