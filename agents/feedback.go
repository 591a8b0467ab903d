package agents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// ErrInvalidRating is returned for ratings outside the 1-5 scale.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// FeedbackAggregator records customer feedback and keeps the owning
// agent's running average in sync. The average is always a full
// recomputation over every feedback row for the agent, so insertion order
// can never make it drift.
type FeedbackAggregator struct {
	store store.Store
}

// NewFeedbackAggregator builds an aggregator over the store.
func NewFeedbackAggregator(st store.Store) *FeedbackAggregator {
	return &FeedbackAggregator{store: st}
}

// Record persists the feedback, recomputes the agent's average rating and
// count, and stamps the session's satisfaction score. The feedback id is
// minted here when absent.
func (f *FeedbackAggregator) Record(ctx context.Context, fb *models.Feedback) error {
	if fb.Rating < models.RatingMin || fb.Rating > models.RatingMax {
		return ErrInvalidRating
	}
	if fb.SessionID == "" || fb.AgentID == "" {
		return errors.New("session id and agent id are required")
	}
	if _, err := f.store.GetAgent(ctx, fb.AgentID); err != nil {
		return fmt.Errorf("agent %s: %w", fb.AgentID, err)
	}

	if fb.ID == "" {
		fb.ID = utils.NewID()
	}
	if fb.CustomerID == "" {
		fb.CustomerID = "anonymous"
	}
	if fb.FeedbackType == "" {
		fb.FeedbackType = "general"
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	if err := f.store.CreateFeedback(ctx, fb); err != nil {
		return fmt.Errorf("persist feedback: %w", err)
	}

	avg, count, err := f.store.RecomputeAgentRating(ctx, fb.AgentID)
	if err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	log.Printf("[Feedback] agent %s now %.2f over %d ratings", fb.AgentID, avg, count)

	// Best effort: stamp the satisfaction score on the rated session.
	if sess, err := f.store.GetSession(ctx, fb.SessionID); err == nil {
		score := fb.Rating
		sess.SatisfactionScore = &score
		if err := f.store.SaveSession(ctx, sess); err != nil {
			log.Printf("[Feedback] could not stamp session %s: %v", fb.SessionID, err)
		}
	}
	return nil
}

// ByAgent returns the most recent feedback entries for an agent.
func (f *FeedbackAggregator) ByAgent(ctx context.Context, agentID string, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	return f.store.FeedbackByAgent(ctx, agentID, limit)
}
