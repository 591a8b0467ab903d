package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// Analytics is the per-agent dashboard payload.
type Analytics struct {
	AgentID             string            `json:"agent_id"`
	TodayHours          float64           `json:"today_hours"`
	WeekHours           float64           `json:"week_hours"`
	MonthHours          float64           `json:"month_hours"`
	TotalHours          float64           `json:"total_hours"`
	AvgRating           float64           `json:"avg_rating"`
	TotalFeedback       int               `json:"total_feedback"`
	RecentFeedback      []models.Feedback `json:"recent_feedback"`
	CurrentStatus       string            `json:"current_status"`
	CurrentAvailability string            `json:"current_availability"`
}

// Summary is one row of the all-agents admin overview.
type Summary struct {
	ID               string            `json:"id"`
	Username         string            `json:"username"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Status           string            `json:"status"`
	Availability     string            `json:"availability"`
	TodayHours       float64           `json:"today_hours"`
	TotalHours       float64           `json:"total_hours"`
	AvgRating        float64           `json:"avg_rating"`
	TotalFeedback    int               `json:"total_feedback"`
	RecentFeedback   []models.Feedback `json:"recent_feedback"`
	LastStatusChange time.Time         `json:"last_status_change"`
}

// Analytics assembles today/week/month hours, totals and recent feedback
// for one agent.
func (d *Directory) Analytics(ctx context.Context, agentID string) (*Analytics, error) {
	agent, err := d.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentID, err)
	}

	now := time.Now().UTC()
	today := DateBucket(now)
	weekAgo := DateBucket(now.AddDate(0, 0, -7))
	monthAgo := DateBucket(now.AddDate(0, 0, -30))

	todayHours, err := d.shifts.HoursOn(ctx, agentID, today)
	if err != nil {
		return nil, err
	}
	weekHours, err := d.shifts.HoursInRange(ctx, agentID, weekAgo, today)
	if err != nil {
		return nil, err
	}
	monthHours, err := d.shifts.HoursInRange(ctx, agentID, monthAgo, today)
	if err != nil {
		return nil, err
	}
	recent, err := d.store.FeedbackByAgent(ctx, agentID, 10)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		AgentID:             agentID,
		TodayHours:          utils.RoundFloat(todayHours, 2),
		WeekHours:           utils.RoundFloat(weekHours, 2),
		MonthHours:          utils.RoundFloat(monthHours, 2),
		TotalHours:          utils.RoundFloat(agent.TotalHoursWorked, 2),
		AvgRating:           utils.RoundFloat(agent.AvgRating, 2),
		TotalFeedback:       agent.TotalFeedback,
		RecentFeedback:      recent,
		CurrentStatus:       string(agent.Status),
		CurrentAvailability: string(agent.Availability),
	}, nil
}

// Summaries builds the admin overview of every active agent.
func (d *Directory) Summaries(ctx context.Context) ([]Summary, error) {
	list, err := d.store.ListAgents(ctx, true)
	if err != nil {
		return nil, err
	}
	today := DateBucket(time.Now().UTC())

	summaries := make([]Summary, 0, len(list))
	for _, agent := range list {
		todayHours, err := d.shifts.HoursOn(ctx, agent.ID, today)
		if err != nil {
			return nil, err
		}
		recent, err := d.store.FeedbackByAgent(ctx, agent.ID, 5)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{
			ID:               agent.ID,
			Username:         agent.Username,
			FirstName:        agent.FirstName,
			LastName:         agent.LastName,
			Status:           string(agent.Status),
			Availability:     string(agent.Availability),
			TodayHours:       utils.RoundFloat(todayHours, 2),
			TotalHours:       utils.RoundFloat(agent.TotalHoursWorked, 2),
			AvgRating:        utils.RoundFloat(agent.AvgRating, 2),
			TotalFeedback:    agent.TotalFeedback,
			RecentFeedback:   recent,
			LastStatusChange: agent.LastStatusChange,
		})
	}
	return summaries, nil
}
