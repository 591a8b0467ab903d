package models

import "time"

// MessageType describes what kind of payload a message carries.
type MessageType string

const (
	MessageText       MessageType = "text"
	MessageSystem     MessageType = "system"
	MessageEscalation MessageType = "escalation"
)

// Sender tags for messages. Agent messages use "agent_<id>".
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is a single turn in a chat session. Immutable once persisted.
type Message struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	SessionID   string      `gorm:"column:session_id;size:36;not null;index" json:"session_id"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	Sender      string      `gorm:"size:50;not null" json:"sender"`
	MessageType MessageType `gorm:"column:message_type;size:16;default:'text'" json:"message_type"`
	Timestamp   time.Time   `gorm:"index" json:"timestamp"`
	Confidence  *float64    `json:"confidence,omitempty"`
	Intent      *string     `gorm:"size:50" json:"intent,omitempty"`
	IsEscalated bool        `gorm:"column:is_escalated;default:false" json:"is_escalated"`
}

func (Message) TableName() string {
	return "messages"
}
