package models

import "time"

// ShiftStatus is the state of an agent work session.
type ShiftStatus string

const (
	ShiftActive    ShiftStatus = "active"
	ShiftCompleted ShiftStatus = "completed"
	ShiftPaused    ShiftStatus = "paused"
)

// ShiftSession is a contiguous interval during which an agent was online
// and available. At most one active session exists per agent per date.
// Date is the UTC calendar bucket in YYYY-MM-DD form.
type ShiftSession struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	AgentID    string      `gorm:"column:agent_id;size:36;not null;index:idx_shift_agent_date" json:"agent_id"`
	Date       string      `gorm:"size:10;not null;index:idx_shift_agent_date" json:"date"`
	StartTime  time.Time   `gorm:"column:start_time" json:"start_time"`
	EndTime    *time.Time  `gorm:"column:end_time" json:"end_time,omitempty"`
	TotalHours float64     `gorm:"column:total_hours;default:0" json:"total_hours"`
	Status     ShiftStatus `gorm:"size:16;default:'active'" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (ShiftSession) TableName() string {
	return "shift_sessions"
}

// AgentPerformance is a date-bucketed rollup of hours and completed shift
// sessions, used for reporting.
type AgentPerformance struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	AgentID       string    `gorm:"column:agent_id;size:36;not null;uniqueIndex:idx_perf_agent_date" json:"agent_id"`
	Date          string    `gorm:"size:10;not null;uniqueIndex:idx_perf_agent_date" json:"date"`
	TotalHours    float64   `gorm:"column:total_hours;default:0" json:"total_hours"`
	TotalSessions int       `gorm:"column:total_sessions;default:0" json:"total_sessions"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (AgentPerformance) TableName() string {
	return "agent_performance"
}
