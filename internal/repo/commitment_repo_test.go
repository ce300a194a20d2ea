package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-commitment-engine/internal/domain"
)

func newEngineDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("commitment_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// seedCommitment builds a minimally valid commitment for tests.
func seedCommitment(id, msgID string, status domain.CommitmentStatus, deadline time.Time) domain.Commitment {
	created := deadline.Add(-30 * time.Minute)
	return domain.Commitment{
		ID:              id,
		SourceMessageID: msgID,
		ChannelID:       "ch1",
		AgentID:         "agent-1",
		AssigneeID:      "agent-1",
		MatchedText:     "через 10 минут",
		MessageText:     "отвечу через 10 минут",
		Type:            domain.CommitmentTypeTime,
		Priority:        domain.PriorityMedium,
		Status:          status,
		Deadline:        deadline,
		ReminderAt:      deadline.Add(-10 * time.Minute),
		CreatedAt:       created,
	}
}

func TestCreateCommitment_Error_NoTable(t *testing.T) {
	db := newEngineDB(t /* no migrations */)
	c := seedCommitment("c1", "m1", domain.StatusActive, time.Now().UTC())
	got, created, err := CreateCommitment(context.Background(), db, &c)
	if err == nil || got != nil || created {
		t.Fatalf("expected error creating without table, got c=%v created=%v err=%v", got, created, err)
	}
}

func TestCreateCommitment_IdempotentOnSourceMessage(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})

	dl := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	first := seedCommitment("c1", "m1", domain.StatusActive, dl)
	got, created, err := CreateCommitment(context.Background(), db, &first)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	if got.ID != "c1" {
		t.Fatalf("unexpected id: %q", got.ID)
	}

	// Same source message, new candidate row: must return the existing record.
	dup := seedCommitment("c2", "m1", domain.StatusActive, dl.Add(time.Hour))
	got2, created2, err := CreateCommitment(context.Background(), db, &dup)
	if err != nil {
		t.Fatalf("replay create: %v", err)
	}
	if created2 {
		t.Fatalf("replay must not create a second row")
	}
	if got2.ID != "c1" {
		t.Fatalf("replay must return the original row, got %q", got2.ID)
	}

	var total int64
	if err := db.Model(&domain.Commitment{}).Count(&total).Error; err != nil || total != 1 {
		t.Fatalf("expected exactly 1 row, got %d (err=%v)", total, err)
	}
}

func TestDeleteCommitment_KeepsIdempotencyKey(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})

	dl := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	c := seedCommitment("c1", "m1", domain.StatusActive, dl)
	if _, _, err := CreateCommitment(context.Background(), db, &c); err != nil {
		t.Fatalf("create: %v", err)
	}

	okDel, err := DeleteCommitment(context.Background(), db, "c1")
	if err != nil || !okDel {
		t.Fatalf("delete: ok=%v err=%v", okDel, err)
	}

	// Gone from normal reads.
	if _, err := GetCommitment(context.Background(), db, "c1"); err == nil {
		t.Fatalf("expected not-found after delete")
	}

	// Re-ingesting the same message must NOT resurrect a commitment.
	again := seedCommitment("c9", "m1", domain.StatusActive, dl)
	got, created, err := CreateCommitment(context.Background(), db, &again)
	if err != nil {
		t.Fatalf("create after delete: %v", err)
	}
	if created {
		t.Fatalf("deleted commitment must keep blocking re-creation")
	}
	if got.ID != "c1" {
		t.Fatalf("expected the (soft-deleted) original row, got %q", got.ID)
	}
}

func TestMarkCompleted_GuardedAndIdempotent(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	c := seedCommitment("c1", "m1", domain.StatusOverdue, now.Add(-time.Hour))
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	applied, err := MarkCompleted(context.Background(), db, "c1", now)
	if err != nil || !applied {
		t.Fatalf("complete: applied=%v err=%v", applied, err)
	}

	var got domain.Commitment
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.CompletedAt == nil {
		t.Fatalf("unexpected state after complete: %+v", got)
	}

	// Terminal record: further transitions are no-ops, never errors.
	applied, err = MarkDismissed(context.Background(), db, "c1")
	if err != nil {
		t.Fatalf("dismiss on terminal: %v", err)
	}
	if applied {
		t.Fatalf("dismiss on completed must match zero rows")
	}
	applied, err = MarkCompleted(context.Background(), db, "c1", now.Add(time.Minute))
	if err != nil || applied {
		t.Fatalf("double complete must be a no-op, applied=%v err=%v", applied, err)
	}
}

func TestExtendCommitment_MovesDeadlineAndStepsLevelDown(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	dl := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	c := seedCommitment("c1", "m1", domain.StatusEscalated, dl)
	c.EscalationLevel = 2
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	applied, err := ExtendCommitment(context.Background(), db, &c, 30*time.Minute)
	if err != nil || !applied {
		t.Fatalf("extend: applied=%v err=%v", applied, err)
	}

	var got domain.Commitment
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Deadline.Equal(dl.Add(30 * time.Minute)) {
		t.Fatalf("deadline not moved: %v", got.Deadline)
	}
	if !got.ReminderAt.Equal(c.ReminderAt.Add(30 * time.Minute)) {
		t.Fatalf("reminder not moved: %v", got.ReminderAt)
	}
	if got.EscalationLevel != 1 {
		t.Fatalf("expected level 1 after extend, got %d", got.EscalationLevel)
	}

	// Stale snapshot (level 2 no longer matches): guarded update is a no-op.
	applied, err = ExtendCommitment(context.Background(), db, &c, 30*time.Minute)
	if err != nil || applied {
		t.Fatalf("stale extend must be a no-op, applied=%v err=%v", applied, err)
	}
}

func TestExtendCommitment_LevelFloorZero(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	dl := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	c := seedCommitment("c1", "m1", domain.StatusActive, dl)
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := ExtendCommitment(context.Background(), db, &c, time.Hour); err != nil {
		t.Fatalf("extend: %v", err)
	}
	var got domain.Commitment
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.EscalationLevel != 0 {
		t.Fatalf("level must not go below zero, got %d", got.EscalationLevel)
	}
}

func TestMarkOverdue_ExactPredicate(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	past := seedCommitment("past", "m1", domain.StatusActive, now.Add(-time.Minute))
	future := seedCommitment("future", "m2", domain.StatusActive, now.Add(time.Hour))
	done := seedCommitment("done", "m3", domain.StatusCompleted, now.Add(-time.Hour))
	for _, c := range []domain.Commitment{past, future, done} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed %s: %v", c.ID, err)
		}
	}

	n, err := MarkOverdue(context.Background(), db, now)
	if err != nil {
		t.Fatalf("MarkOverdue: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 transition, got %d", n)
	}

	var got domain.Commitment
	if err := db.First(&got, "id = ?", "past").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != domain.StatusOverdue {
		t.Fatalf("expected overdue, got %s", got.Status)
	}

	// Immediate second pass: nothing left to flip.
	n, err = MarkOverdue(context.Background(), db, now)
	if err != nil || n != 0 {
		t.Fatalf("second pass must be a no-op, n=%d err=%v", n, err)
	}
}

func TestStepEscalation_GuardedOnObservedLevel(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	c := seedCommitment("c1", "m1", domain.StatusOverdue, now.Add(-2*time.Hour))
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	applied, err := StepEscalation(context.Background(), db, &c, false, now)
	if err != nil || !applied {
		t.Fatalf("first step: applied=%v err=%v", applied, err)
	}

	// A concurrent sweep holding the same snapshot (level 0) loses the race.
	applied, err = StepEscalation(context.Background(), db, &c, false, now)
	if err != nil || applied {
		t.Fatalf("stale step must be a no-op, applied=%v err=%v", applied, err)
	}

	var got domain.Commitment
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.EscalationLevel != 1 || got.Status != domain.StatusOverdue {
		t.Fatalf("unexpected state: level=%d status=%s", got.EscalationLevel, got.Status)
	}

	// Step again from the fresh snapshot, this time flipping to escalated.
	applied, err = StepEscalation(context.Background(), db, &got, true, now)
	if err != nil || !applied {
		t.Fatalf("escalating step: applied=%v err=%v", applied, err)
	}
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.StatusEscalated || got.EscalationLevel != 2 || got.EscalatedAt == nil {
		t.Fatalf("unexpected escalated state: %+v", got)
	}
}

func TestListCommitments_OrderAndDefaultStatus(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	early := seedCommitment("early", "m1", domain.StatusActive, now.Add(time.Hour))
	late := seedCommitment("late", "m2", domain.StatusOverdue, now.Add(3*time.Hour))
	vague := seedCommitment("vague", "m3", domain.StatusActive, now.Add(2*time.Hour))
	vague.Type = domain.CommitmentTypeVague
	vague.IsVague = true
	done := seedCommitment("done", "m4", domain.StatusCompleted, now.Add(time.Minute))
	for _, c := range []domain.Commitment{early, late, vague, done} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed %s: %v", c.ID, err)
		}
	}

	// Default filter: active ∪ overdue, vague first, then deadline asc.
	list, err := ListCommitments(context.Background(), db, CommitmentFilter{})
	if err != nil {
		t.Fatalf("ListCommitments: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(list))
	}
	if list[0].ID != "vague" || list[1].ID != "early" || list[2].ID != "late" {
		t.Fatalf("unexpected order: %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
	}

	// Explicit terminal status.
	list, err = ListCommitments(context.Background(), db, CommitmentFilter{Status: "completed"})
	if err != nil || len(list) != 1 || list[0].ID != "done" {
		t.Fatalf("completed filter: %v (err=%v)", list, err)
	}

	// "all" disables the status predicate.
	total, err := CountCommitments(context.Background(), db, CommitmentFilter{Status: "all"})
	if err != nil || total != 4 {
		t.Fatalf("all filter count: %d (err=%v)", total, err)
	}
}

func TestListCommitments_DueWithinAndAssignee(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	soon := seedCommitment("soon", "m1", domain.StatusActive, now.Add(2*time.Hour))
	far := seedCommitment("far", "m2", domain.StatusActive, now.Add(48*time.Hour))
	other := seedCommitment("other", "m3", domain.StatusActive, now.Add(time.Hour))
	other.AssigneeID = "agent-2"
	for _, c := range []domain.Commitment{soon, far, other} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed %s: %v", c.ID, err)
		}
	}

	list, err := ListCommitments(context.Background(), db, CommitmentFilter{
		DueWithin: 24 * time.Hour,
		Now:       now,
	})
	if err != nil {
		t.Fatalf("due-within list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "other" || list[1].ID != "soon" {
		t.Fatalf("unexpected due-within result: %+v", list)
	}

	list, err = ListCommitments(context.Background(), db, CommitmentFilter{AssigneeID: "agent-2"})
	if err != nil || len(list) != 1 || list[0].ID != "other" {
		t.Fatalf("assignee filter: %+v (err=%v)", list, err)
	}
}

func TestCommitmentsStats_CountAndMaxTimestamp(t *testing.T) {
	db := newEngineDB(t, &domain.Commitment{})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// Empty scope.
	count, maxTS, err := CommitmentsStats(context.Background(), db, "")
	if err != nil || count != 0 || maxTS != nil {
		t.Fatalf("empty stats: count=%d max=%v err=%v", count, maxTS, err)
	}

	a := seedCommitment("a", "m1", domain.StatusActive, now)
	b := seedCommitment("b", "m2", domain.StatusActive, now)
	b.ChannelID = "ch2"
	for _, c := range []domain.Commitment{a, b} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed %s: %v", c.ID, err)
		}
	}

	count, maxTS, err = CommitmentsStats(context.Background(), db, "")
	if err != nil || count != 2 || maxTS == nil {
		t.Fatalf("stats: count=%d max=%v err=%v", count, maxTS, err)
	}
	count, _, err = CommitmentsStats(context.Background(), db, "ch2")
	if err != nil || count != 1 {
		t.Fatalf("channel stats: count=%d err=%v", count, err)
	}
}
