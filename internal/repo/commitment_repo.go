// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Commitment
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Concurrency model: every mutation is a single-row, condition-bearing
// statement. Creation is an upsert on the unique source_message_id index;
// status transitions carry their legal from-states in the WHERE clause. Two
// concurrent invocations therefore converge to the same final state without
// explicit locking, and the caller can distinguish "applied" from "was a
// no-op" by the reported row count.
//
// Error semantics:
//   - When a commitment is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Guarded updates that match no row are NOT errors; they return applied
//     == false so the service layer can decide between no-op and not-found.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-commitment-engine/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// nonTerminalStates are the from-states in which sweeps and operator actions
// may still mutate a commitment.
var nonTerminalStates = []domain.CommitmentStatus{
	domain.StatusActive, domain.StatusOverdue, domain.StatusEscalated,
}

// CreateCommitment inserts c, treating source_message_id as the idempotency
// key: when a commitment already exists for the same source message the
// insert is silently skipped and the existing row is returned.
//
// The second return value reports whether a new row was created.
func CreateCommitment(ctx context.Context, db *gorm.DB, c *domain.Commitment) (*domain.Commitment, bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_message_id"}},
			DoNothing: true,
		}).
		Create(c)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := GetCommitmentByMessage(ctx, db, c.SourceMessageID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return c, true, nil
}

// GetCommitment fetches a commitment by ID, or ErrNotFound.
func GetCommitment(ctx context.Context, db *gorm.DB, id string) (*domain.Commitment, error) {
	var c domain.Commitment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCommitmentByMessage fetches the commitment derived from a source
// message, or ErrNotFound. Soft-deleted rows are included because the unique
// index still holds them: a deleted commitment keeps blocking re-creation.
func GetCommitmentByMessage(ctx context.Context, db *gorm.DB, sourceMessageID string) (*domain.Commitment, error) {
	var c domain.Commitment
	err := db.WithContext(ctx).Unscoped().
		Where("source_message_id = ?", sourceMessageID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CommitmentFilter narrows ListCommitments and CountCommitments.
//
// Status semantics: "" and "active" both mean the working set, i.e. the union
// of active and overdue; "all" disables the status predicate; any other value
// filters for that status exactly.
type CommitmentFilter struct {
	Status     string
	ChannelID  string
	AssigneeID string
	// DueWithin keeps only commitments whose deadline falls inside
	// [Now, Now+DueWithin). Zero disables the predicate.
	DueWithin time.Duration
	Now       time.Time

	Offset int
	Limit  int
}

func (f CommitmentFilter) apply(q *gorm.DB) *gorm.DB {
	switch f.Status {
	case "", string(domain.StatusActive):
		q = q.Where("status IN ?", []string{string(domain.StatusActive), string(domain.StatusOverdue)})
	case "all":
	default:
		q = q.Where("status = ?", f.Status)
	}
	if f.ChannelID != "" {
		q = q.Where("channel_id = ?", f.ChannelID)
	}
	if f.AssigneeID != "" {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.DueWithin > 0 {
		q = q.Where("deadline >= ? AND deadline < ?", f.Now, f.Now.Add(f.DueWithin))
	}
	return q
}

// ListCommitments returns a filtered page, ordered vague-first and then by
// ascending deadline (ID as the deterministic tiebreaker).
func ListCommitments(ctx context.Context, db *gorm.DB, f CommitmentFilter) ([]domain.Commitment, error) {
	var out []domain.Commitment
	q := f.apply(db.WithContext(ctx).Model(&domain.Commitment{})).
		Order("is_vague DESC, deadline ASC, id ASC")
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountCommitments returns the number of rows the filter matches (ignoring
// Offset/Limit), for pagination metadata.
func CountCommitments(ctx context.Context, db *gorm.DB, f CommitmentFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Commitment{})).Count(&total).Error
	return total, err
}

// MarkCompleted transitions a commitment to completed. The guard restricts
// the update to non-terminal states, so retries and races collapse into a
// single effective transition. Reports whether the row was updated.
func MarkCompleted(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Commitment{}).
		Where("id = ? AND status IN ?", id, statusStrings(nonTerminalStates)).
		Updates(map[string]any{
			"status":       domain.StatusCompleted,
			"completed_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkDismissed transitions a commitment to dismissed (terminal).
func MarkDismissed(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Commitment{}).
		Where("id = ? AND status IN ?", id, statusStrings(nonTerminalStates)).
		Updates(map[string]any{"status": domain.StatusDismissed})
	return res.RowsAffected > 0, res.Error
}

// MarkCancelled transitions a commitment to cancelled (terminal). Logical
// cancellation is the preferred removal path; see DeleteCommitment for the
// administrative hard delete.
func MarkCancelled(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Commitment{}).
		Where("id = ? AND status IN ?", id, statusStrings(nonTerminalStates)).
		Updates(map[string]any{"status": domain.StatusCancelled})
	return res.RowsAffected > 0, res.Error
}

// ExtendCommitment moves deadline and reminder forward and steps the
// escalation level down by one (floor 0). Legal only from non-terminal
// states; the escalation_level guard makes concurrent extends apply at most
// once per observed level.
func ExtendCommitment(ctx context.Context, db *gorm.DB, c *domain.Commitment, by time.Duration) (bool, error) {
	level := c.EscalationLevel
	newLevel := level - 1
	if newLevel < 0 {
		newLevel = 0
	}
	res := db.WithContext(ctx).Model(&domain.Commitment{}).
		Where("id = ? AND status IN ? AND escalation_level = ?",
			c.ID, statusStrings(nonTerminalStates), level).
		Updates(map[string]any{
			"deadline":         c.Deadline.Add(by),
			"reminder_at":      c.ReminderAt.Add(by),
			"escalation_level": newLevel,
		})
	return res.RowsAffected > 0, res.Error
}

// ReassignCommitment updates the assignee fields only; status and escalation
// are untouched, and terminal commitments may still be reassigned for
// bookkeeping. Reports whether a row matched.
func ReassignCommitment(ctx context.Context, db *gorm.DB, id, assigneeID, assigneeName string) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Commitment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"assignee_id":   assigneeID,
			"assignee_name": assigneeName,
		})
	return res.RowsAffected > 0, res.Error
}

// DeleteCommitment soft-deletes a commitment (administrative delete). The
// row stays in the table, so the source-message idempotency key keeps
// blocking re-creation by later reconciliation passes.
func DeleteCommitment(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Commitment{})
	return res.RowsAffected > 0, res.Error
}

// MarkOverdue flips every active commitment whose deadline has passed to
// overdue in one conditional statement. Safe to run concurrently with itself:
// the exact predicate means a second immediate pass matches zero rows.
func MarkOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.Commitment{}).
		Where("status = ? AND deadline < ?", domain.StatusActive, now).
		Updates(map[string]any{"status": domain.StatusOverdue})
	return res.RowsAffected, res.Error
}

// ListEscalatable returns overdue and escalated commitments, oldest deadline
// first, for the escalation pass of a sweep.
func ListEscalatable(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Commitment, error) {
	var out []domain.Commitment
	q := db.WithContext(ctx).
		Where("status IN ? AND deadline < ?",
			[]string{string(domain.StatusOverdue), string(domain.StatusEscalated)}, now).
		Order("deadline ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// StepEscalation raises a commitment's escalation level by exactly one step,
// from the level the caller observed. The escalation_level guard means two
// concurrent sweeps over the same row cannot double-increment: the second
// UPDATE sees a level that no longer matches and affects zero rows.
//
// When escalate is true the status is also flipped to escalated and the
// escalated_at watermark set.
func StepEscalation(ctx context.Context, db *gorm.DB, c *domain.Commitment, escalate bool, now time.Time) (bool, error) {
	updates := map[string]any{
		"escalation_level": c.EscalationLevel + 1,
	}
	if escalate {
		updates["status"] = domain.StatusEscalated
		updates["escalated_at"] = now
	}
	res := db.WithContext(ctx).Model(&domain.Commitment{}).
		Where("id = ? AND status IN ? AND escalation_level = ?",
			c.ID,
			[]string{string(domain.StatusOverdue), string(domain.StatusEscalated)},
			c.EscalationLevel).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func statusStrings(in []domain.CommitmentStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
