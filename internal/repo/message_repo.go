// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// InboundMessage model: the engine's own copy of channel message events,
// kept so reconciliation has history to scan.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-commitment-engine/internal/domain"
)

// supportRoles mirrors domain.SupportRole for SQL predicates.
var supportRoles = []string{"agent", "operator", "supervisor", "support"}

// CreateInboundMessage records a message event. The message ID comes from the
// upstream channel, so re-delivery of the same event is absorbed as a no-op.
// Reports whether a new row was created.
func CreateInboundMessage(ctx context.Context, db *gorm.DB, m *domain.InboundMessage) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(m)
	return res.RowsAffected > 0, res.Error
}

// GetInboundMessage fetches a message by ID, or ErrNotFound.
func GetInboundMessage(ctx context.Context, db *gorm.DB, id string) (*domain.InboundMessage, error) {
	var m domain.InboundMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkMessageProcessed stamps the classifier watermark. Idempotent; the
// processed_at guard keeps the first stamp.
func MarkMessageProcessed(ctx context.Context, db *gorm.DB, id string, now time.Time) error {
	return db.WithContext(ctx).Model(&domain.InboundMessage{}).
		Where("id = ? AND processed_at IS NULL", id).
		Update("processed_at", now).Error
}

// ListUnreconciled returns support-authored messages sent at or after since
// that carry no classifier watermark and no commitment row, oldest first,
// capped at limit.
//
// The NOT EXISTS spans soft-deleted commitments too: a deleted commitment
// still occupies the source-message idempotency key, so offering its message
// for reconciliation again would only produce no-op creates.
func ListUnreconciled(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]domain.InboundMessage, error) {
	var out []domain.InboundMessage
	q := db.WithContext(ctx).
		Where("sent_at >= ?", since).
		Where("sender_role IN ?", supportRoles).
		Where("processed_at IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM commitments WHERE commitments.source_message_id = inbound_messages.id)").
		Order("sent_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountMessages returns the number of stored message events for a channel
// (all channels when channelID is empty).
func CountMessages(ctx context.Context, db *gorm.DB, channelID string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.InboundMessage{})
	if channelID != "" {
		q = q.Where("channel_id = ?", channelID)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}
