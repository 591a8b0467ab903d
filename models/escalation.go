package models

import "time"

// EscalationStatus tracks how far a hand-off has progressed.
type EscalationStatus string

const (
	EscalationOpen       EscalationStatus = "open"
	EscalationInProgress EscalationStatus = "in_progress"
	EscalationResolved   EscalationStatus = "resolved"
)

// CanTransition reports whether an escalation may advance from s to next.
func (s EscalationStatus) CanTransition(next EscalationStatus) bool {
	switch s {
	case EscalationOpen:
		return next == EscalationInProgress || next == EscalationResolved
	case EscalationInProgress:
		return next == EscalationResolved
	default:
		return false
	}
}

// Escalation marks that a session requires human handling. Created exactly
// once per hand-off event; status advances only via explicit agent action.
type Escalation struct {
	ID            string           `gorm:"primaryKey;size:36" json:"id"`
	SessionID     string           `gorm:"column:session_id;size:36;not null;index" json:"session_id"`
	Reason        string           `gorm:"size:255" json:"reason"`
	AIConfidence  float64          `gorm:"column:ai_confidence" json:"ai_confidence"`
	Timestamp     time.Time        `json:"timestamp"`
	Status        EscalationStatus `gorm:"size:16;default:'open';index" json:"status"`
	AssignedAgent *string          `gorm:"column:assigned_agent;size:36" json:"assigned_agent,omitempty"`
}

func (Escalation) TableName() string {
	return "escalations"
}
