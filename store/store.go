package store

import (
	"context"
	"errors"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// IntentCount is one row of the daily intent distribution.
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int    `json:"count"`
}

// DailyStats aggregates message and escalation activity for one UTC date.
type DailyStats struct {
	TotalMessages  int           `json:"total_messages"`
	AvgConfidence  float64       `json:"avg_confidence"`
	IntentCounts   []IntentCount `json:"intent_distribution"`
	EscalatedCount int           `json:"escalated_count"`
}

// Store is the persistence gateway for sessions, messages, escalations,
// agents, shift sessions and feedback. Implementations hold no business
// rules; all decisions live in the chat and agents packages.
//
// Session writes use replace semantics (upsert), so a concurrent duplicate
// create resolves to last-writer-wins rather than an error. Messages and
// escalations are append-only.
type Store interface {
	// Sessions
	SaveSession(ctx context.Context, s *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)

	// Messages
	AppendMessage(ctx context.Context, m *models.Message) error
	MessagesBySession(ctx context.Context, sessionID string, ascending bool) ([]models.Message, error)

	// Escalations
	CreateEscalation(ctx context.Context, e *models.Escalation) error
	GetEscalation(ctx context.Context, id string) (*models.Escalation, error)
	UpdateEscalationStatus(ctx context.Context, id string, status models.EscalationStatus, assignedAgent *string) error
	ListOpenEscalations(ctx context.Context) ([]models.Escalation, error)

	// Agents
	CreateAgent(ctx context.Context, a *models.Agent) error
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
	ListAgents(ctx context.Context, onlyActive bool) ([]models.Agent, error)
	ListAvailableAgents(ctx context.Context) ([]models.Agent, error)
	UpdateAgentStatus(ctx context.Context, id string, status models.AgentStatus, availability models.AgentAvailability, at time.Time) error
	IncrementAgentHours(ctx context.Context, id string, hours float64) error

	// Shift sessions and performance rollups
	CreateShiftSession(ctx context.Context, s *models.ShiftSession) error
	ActiveShiftSession(ctx context.Context, agentID, date string) (*models.ShiftSession, error)
	CompleteShiftSession(ctx context.Context, id string, endTime time.Time, hours float64) error
	SumShiftHours(ctx context.Context, agentID, startDate, endDate string) (float64, error)
	UpsertPerformanceRollup(ctx context.Context, agentID, date string, hoursDelta float64, sessionsDelta int) error
	PerformanceInRange(ctx context.Context, agentID, startDate, endDate string) ([]models.AgentPerformance, error)

	// Feedback
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	FeedbackByAgent(ctx context.Context, agentID string, limit int) ([]models.Feedback, error)
	RecomputeAgentRating(ctx context.Context, agentID string) (avg float64, count int, err error)

	// Operator accounts
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// Analytics
	StatsForDate(ctx context.Context, date string) (*DailyStats, error)
}
