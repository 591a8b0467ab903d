package models

import "time"

// Rating bounds for customer feedback (1 = poor, 5 = excellent).
const (
	RatingMin = 1
	RatingMax = 5
)

// Feedback is a customer rating of an agent interaction. Immutable once
// created; recording one triggers a recomputation of the agent's average.
type Feedback struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID    string    `gorm:"column:session_id;size:36;not null;index" json:"session_id"`
	AgentID      string    `gorm:"column:agent_id;size:36;not null;index" json:"agent_id"`
	CustomerID   string    `gorm:"column:customer_id;size:36;default:'anonymous'" json:"customer_id"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comment      string    `gorm:"type:text" json:"comment"`
	FeedbackType string    `gorm:"column:feedback_type;size:50;default:'general'" json:"feedback_type"`
	IsResolved   bool      `gorm:"column:is_resolved;default:false" json:"is_resolved"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Feedback) TableName() string {
	return "customer_feedback"
}
