// Package domain defines the persistence models for commitments and the
// inbound support messages they are derived from. These types are mapped
// with GORM and form the core data layer of the commitment engine.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// CommitmentType classifies what kind of promise was detected in a message.
type CommitmentType string

const (
	// CommitmentTypeTime is a promise carrying a concrete time expression
	// ("in 10 minutes", "tomorrow morning").
	CommitmentTypeTime CommitmentType = "time"
	// CommitmentTypeAction is a future-tense action promise with no explicit
	// timeframe ("I will check").
	CommitmentTypeAction CommitmentType = "action"
	// CommitmentTypeVague is a deferral with no resolvable timeframe
	// ("one moment", "hold on").
	CommitmentTypeVague CommitmentType = "vague"
)

// CommitmentStatus enumerates the lifecycle states of a commitment.
type CommitmentStatus string

const (
	StatusActive    CommitmentStatus = "active"
	StatusOverdue   CommitmentStatus = "overdue"
	StatusEscalated CommitmentStatus = "escalated"
	StatusCompleted CommitmentStatus = "completed"
	StatusDismissed CommitmentStatus = "dismissed"
	StatusCancelled CommitmentStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
// Escalation level and deadlines are frozen once a commitment is terminal.
func (s CommitmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDismissed, StatusCancelled:
		return true
	}
	return false
}

// CommitmentPriority is derived at creation from the detection type and the
// time remaining until the deadline.
type CommitmentPriority string

const (
	PriorityLow    CommitmentPriority = "low"
	PriorityMedium CommitmentPriority = "medium"
	PriorityHigh   CommitmentPriority = "high"
)

// Commitment represents a detected promise by a support agent to perform an
// action by some time. At most one commitment exists per source message
// (enforced by a unique index, which also makes creation an idempotent upsert).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - SourceMessageID: id of the message that produced the commitment; unique.
//   - ChannelID / CaseID: conversation context; CaseID is optional.
//   - AgentID / AgentName / AgentRole: sender identity at detection time.
//   - AssigneeID / AssigneeName: current owner (reassignable).
//   - MatchedText: the sub-string that triggered detection.
//   - MessageText: full message context for operator display.
//   - Type / IsVague / Priority: classification outcome.
//   - CreatedAt: the message timestamp, not the processing timestamp.
//   - Deadline / ReminderAt: resolved absolute instants.
//   - DeadlineExplicit: false when the deadline is a policy-default fallback.
//   - EscalationLevel: grace periods the commitment has remained overdue.
//   - Status + CompletedAt/EscalatedAt: lifecycle state and transition marks.
type Commitment struct {
	ID              string         `json:"id"                gorm:"type:char(36);primaryKey"`
	SourceMessageID string         `json:"source_message_id" gorm:"type:char(36);not null;uniqueIndex:ux_commitment_source_msg"`
	ChannelID       string         `json:"channel_id"        gorm:"type:varchar(64);not null;index:idx_channel_commitments"`
	CaseID          string         `json:"case_id,omitempty" gorm:"type:varchar(64);index"`
	AgentID         string         `json:"agent_id"          gorm:"type:varchar(64)"`
	AgentName       string         `json:"agent_name"        gorm:"type:varchar(255)"`
	AgentRole       string         `json:"agent_role"        gorm:"type:varchar(32)"`
	AssigneeID      string         `json:"assignee_id"       gorm:"type:varchar(64);index"`
	AssigneeName    string         `json:"assignee_name"     gorm:"type:varchar(255)"`
	MatchedText     string         `json:"matched_text"      gorm:"type:text;not null"`
	MessageText     string         `json:"message_text"      gorm:"type:text;not null"`
	Type            CommitmentType `json:"type"              gorm:"type:varchar(16);not null;check:type IN ('time','action','vague')"`
	IsVague         bool           `json:"is_vague"          gorm:"not null"`

	Priority         CommitmentPriority `json:"priority"          gorm:"type:varchar(16);not null;check:priority IN ('low','medium','high')"`
	Status           CommitmentStatus   `json:"status"            gorm:"type:varchar(16);not null;index:idx_status_deadline,priority:1;check:status IN ('active','overdue','escalated','completed','dismissed','cancelled')"`
	EscalationLevel  int                `json:"escalation_level"  gorm:"not null;default:0"`
	Deadline         time.Time          `json:"deadline"          gorm:"not null;index:idx_status_deadline,priority:2"`
	DeadlineExplicit bool               `json:"deadline_explicit" gorm:"not null"`
	ReminderAt       time.Time          `json:"reminder_at"       gorm:"not null"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	EscalatedAt      *time.Time         `json:"escalated_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Commitment.
func (Commitment) TableName() string { return "commitments" }

// InboundMessage is a recorded message event from the chat channel. The engine
// keeps its own copy of the events it is fed so the reconciler can re-scan a
// historical window for promises that were missed at ingestion time.
//
// ProcessedAt marks messages already run through the classifier (inline or by
// a previous reconciliation pass). It is advisory only; commitment creation
// stays idempotent on SourceMessageID regardless.
type InboundMessage struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ChannelID  string    `json:"channel_id"  gorm:"type:varchar(64);not null;index:idx_channel_msgs,priority:1"`
	CaseID     string    `json:"case_id,omitempty" gorm:"type:varchar(64)"`
	SenderID   string    `json:"sender_id"   gorm:"type:varchar(64)"`
	SenderName string    `json:"sender_name" gorm:"type:varchar(255)"`
	SenderRole string    `json:"sender_role" gorm:"type:varchar(32);not null;index"`
	Text       string    `json:"text"        gorm:"type:text;not null"`
	SentAt     time.Time `json:"sent_at"     gorm:"not null;index:idx_channel_msgs,priority:2"`

	ProcessedAt *time.Time `json:"processed_at,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for InboundMessage.
func (InboundMessage) TableName() string { return "inbound_messages" }

// SupportRole reports whether a sender role belongs to the support side of a
// conversation. Only support-authored messages can carry commitments.
func SupportRole(role string) bool {
	switch role {
	case "agent", "operator", "supervisor", "support":
		return true
	}
	return false
}
