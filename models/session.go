package models

import "time"

// SessionStatus is the lifecycle state of a chat session.
type SessionStatus string

const (
	SessionOpen      SessionStatus = "open"
	SessionEscalated SessionStatus = "escalated"
	SessionResolved  SessionStatus = "resolved"
)

// CanTransition reports whether a session may move from s to next.
// Transitions are forward-only: open -> escalated -> resolved, with
// open -> resolved allowed for sessions closed without a hand-off.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch s {
	case SessionOpen:
		return next == SessionEscalated || next == SessionResolved
	case SessionEscalated:
		return next == SessionResolved
	default:
		return false
	}
}

// ChatSession represents one continuous conversation between an end user
// and the system.
type ChatSession struct {
	ID                string        `gorm:"primaryKey;size:36" json:"session_id"`
	UserID            *string       `gorm:"column:user_id;size:36;index" json:"user_id,omitempty"` // null for anonymous visitors
	StartTime         time.Time     `gorm:"column:start_time" json:"start_time"`
	LastActivity      time.Time     `gorm:"column:last_activity" json:"last_activity"`
	Context           []string      `gorm:"type:text;serializer:json" json:"context"`
	Status            SessionStatus `gorm:"size:16;default:'open';index" json:"status"`
	EscalatedAt       *time.Time    `gorm:"column:escalated_at" json:"escalated_at,omitempty"`
	AssignedAgent     *string       `gorm:"column:assigned_agent;size:36" json:"assigned_agent,omitempty"`
	SatisfactionScore *int          `gorm:"column:satisfaction_score" json:"satisfaction_score,omitempty"`
}

func (ChatSession) TableName() string {
	return "sessions"
}
