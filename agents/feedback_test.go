package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
)

func record(t *testing.T, agg *FeedbackAggregator, agentID string, rating int) {
	t.Helper()
	err := agg.Record(context.Background(), &models.Feedback{
		SessionID: "sess-1",
		AgentID:   agentID,
		Rating:    rating,
		Comment:   "test",
	})
	if err != nil {
		t.Fatalf("Record(rating=%d): %v", rating, err)
	}
}

func TestRecord_ValidatesRating(t *testing.T) {
	st := store.NewMemoryStore()
	agg := NewFeedbackAggregator(st)
	seedAgent(t, st, "agent-1")

	for _, rating := range []int{0, -1, 6, 100} {
		err := agg.Record(context.Background(), &models.Feedback{
			SessionID: "sess-1",
			AgentID:   "agent-1",
			Rating:    rating,
			Comment:   "bad",
		})
		if !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("Record(rating=%d) = %v, want ErrInvalidRating", rating, err)
		}
	}
}

func TestRecord_UnknownAgent(t *testing.T) {
	st := store.NewMemoryStore()
	agg := NewFeedbackAggregator(st)

	err := agg.Record(context.Background(), &models.Feedback{
		SessionID: "sess-1",
		AgentID:   "ghost",
		Rating:    5,
		Comment:   "great",
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecord_FillsDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	agg := NewFeedbackAggregator(st)
	seedAgent(t, st, "agent-1")

	fb := &models.Feedback{
		SessionID: "sess-1",
		AgentID:   "agent-1",
		Rating:    4,
		Comment:   "good",
	}
	if err := agg.Record(context.Background(), fb); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if fb.ID == "" {
		t.Fatal("expected minted feedback id")
	}
	if fb.CustomerID != "anonymous" {
		t.Fatalf("expected anonymous customer, got %q", fb.CustomerID)
	}
	if fb.FeedbackType != "general" {
		t.Fatalf("expected general feedback type, got %q", fb.FeedbackType)
	}
	if fb.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt stamped")
	}
}

func TestRecord_RecomputesAverage(t *testing.T) {
	st := store.NewMemoryStore()
	agg := NewFeedbackAggregator(st)
	seedAgent(t, st, "agent-1")

	record(t, agg, "agent-1", 5)
	record(t, agg, "agent-1", 4)
	record(t, agg, "agent-1", 4)

	agent, err := st.GetAgent(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if agent.AvgRating != 4.33 {
		t.Fatalf("expected average 4.33, got %v", agent.AvgRating)
	}
	if agent.TotalFeedback != 3 {
		t.Fatalf("expected 3 feedback entries, got %d", agent.TotalFeedback)
	}
}

func TestRecord_AverageIndependentOfOrder(t *testing.T) {
	orders := [][]int{
		{1, 3, 5, 2, 4},
		{5, 4, 3, 2, 1},
		{3, 3, 3, 3, 3},
	}
	expected := []float64{3, 3, 3}

	for i, ratings := range orders {
		st := store.NewMemoryStore()
		agg := NewFeedbackAggregator(st)
		seedAgent(t, st, "agent-1")
		for _, r := range ratings {
			record(t, agg, "agent-1", r)
		}
		agent, err := st.GetAgent(context.Background(), "agent-1")
		if err != nil {
			t.Fatalf("GetAgent: %v", err)
		}
		if agent.AvgRating != expected[i] {
			t.Fatalf("order %v: average = %v, want %v", ratings, agent.AvgRating, expected[i])
		}
	}
}

func TestRecord_StampsSessionScore(t *testing.T) {
	st := store.NewMemoryStore()
	agg := NewFeedbackAggregator(st)
	seedAgent(t, st, "agent-1")

	now := time.Now().UTC()
	if err := st.SaveSession(context.Background(), &models.ChatSession{
		ID:           "sess-1",
		StartTime:    now,
		LastActivity: now,
		Status:       models.SessionResolved,
	}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	record(t, agg, "agent-1", 5)

	sess, err := st.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.SatisfactionScore == nil || *sess.SatisfactionScore != 5 {
		t.Fatal("expected satisfaction score 5 stamped on session")
	}
}

func TestByAgent_Limit(t *testing.T) {
	st := store.NewMemoryStore()
	agg := NewFeedbackAggregator(st)
	seedAgent(t, st, "agent-1")

	for i := 0; i < 8; i++ {
		record(t, agg, "agent-1", 4)
	}
	list, err := agg.ByAgent(context.Background(), "agent-1", 5)
	if err != nil {
		t.Fatalf("ByAgent: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(list))
	}
}
