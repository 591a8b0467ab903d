package models

import "time"

// AgentStatus is the agent's online/offline state.
type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentOffline AgentStatus = "offline"
)

// AgentAvailability is the agent's readiness for customer queries.
type AgentAvailability string

const (
	AgentAvailable   AgentAvailability = "available"
	AgentUnavailable AgentAvailability = "unavailable"
	AgentBusy        AgentAvailability = "busy"
	AgentBreak       AgentAvailability = "break"
)

// ParseAgentStatus validates a wire value against the closed status set.
func ParseAgentStatus(s string) (AgentStatus, bool) {
	switch AgentStatus(s) {
	case AgentOnline, AgentOffline:
		return AgentStatus(s), true
	}
	return "", false
}

// ParseAgentAvailability validates a wire value against the closed
// availability set.
func ParseAgentAvailability(s string) (AgentAvailability, bool) {
	switch AgentAvailability(s) {
	case AgentAvailable, AgentUnavailable, AgentBusy, AgentBreak:
		return AgentAvailability(s), true
	}
	return "", false
}

// Agent is a human support agent profile. Status fields are mutated only
// through the directory's status-update operation; hours and rating are
// maintained by shift close and feedback recording respectively.
type Agent struct {
	ID               string            `gorm:"primaryKey;size:36" json:"id"`
	Username         string            `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email            string            `gorm:"size:255" json:"email"`
	FirstName        string            `gorm:"column:first_name;size:100" json:"first_name"`
	LastName         string            `gorm:"column:last_name;size:100" json:"last_name"`
	Status           AgentStatus       `gorm:"size:16;default:'offline'" json:"status"`
	Availability     AgentAvailability `gorm:"size:16;default:'unavailable'" json:"availability"`
	Skills           []string          `gorm:"type:text;serializer:json" json:"skills"`
	TotalHoursWorked float64           `gorm:"column:total_hours_worked;default:0" json:"total_hours_worked"`
	AvgRating        float64           `gorm:"column:avg_rating;default:0" json:"avg_rating"`
	TotalFeedback    int               `gorm:"column:total_feedback;default:0" json:"total_feedback"`
	IsActive         bool              `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	LastStatusChange time.Time         `gorm:"column:last_status_change" json:"last_status_change"`
}

func (Agent) TableName() string {
	return "agents"
}
