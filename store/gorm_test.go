package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := NewGormStore(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func testSession(id string) *models.ChatSession {
	now := time.Now().UTC()
	return &models.ChatSession{
		ID:           id,
		StartTime:    now,
		LastActivity: now,
		Context:      []string{},
		Status:       models.SessionOpen,
	}
}

func TestGormStore_SessionRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sess := testSession("sess-1")
	sess.Context = []string{"User: hello", "Bot: hi"}
	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := st.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != models.SessionOpen {
		t.Fatalf("expected open status, got %s", got.Status)
	}
	if len(got.Context) != 2 || got.Context[0] != "User: hello" {
		t.Fatalf("context not preserved: %v", got.Context)
	}
}

func TestGormStore_SaveSessionReplaces(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sess := testSession("sess-1")
	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatalf("first save: %v", err)
	}
	sess.Status = models.SessionEscalated
	now := time.Now().UTC()
	sess.EscalatedAt = &now
	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := st.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != models.SessionEscalated {
		t.Fatalf("expected escalated after replace, got %s", got.Status)
	}
}

func TestGormStore_GetSessionNotFound(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.GetSession(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGormStore_MessagesOrdered(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		msg := &models.Message{
			ID:          utils.NewID(),
			SessionID:   "sess-1",
			Content:     "msg",
			Sender:      models.SenderUser,
			MessageType: models.MessageText,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := st.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	asc, err := st.MessagesBySession(ctx, "sess-1", true)
	if err != nil {
		t.Fatalf("MessagesBySession asc: %v", err)
	}
	if len(asc) != 3 || !asc[0].Timestamp.Before(asc[2].Timestamp) {
		t.Fatalf("ascending order broken: %v", asc)
	}

	desc, err := st.MessagesBySession(ctx, "sess-1", false)
	if err != nil {
		t.Fatalf("MessagesBySession desc: %v", err)
	}
	if !desc[0].Timestamp.After(desc[2].Timestamp) {
		t.Fatalf("descending order broken")
	}
}

func TestGormStore_EscalationLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	esc := &models.Escalation{
		ID:           utils.NewID(),
		SessionID:    "sess-1",
		Reason:       "Intent: human_agent, Confidence: 0.90",
		AIConfidence: 0.9,
		Timestamp:    time.Now().UTC(),
		Status:       models.EscalationOpen,
	}
	if err := st.CreateEscalation(ctx, esc); err != nil {
		t.Fatalf("CreateEscalation: %v", err)
	}

	open, err := st.ListOpenEscalations(ctx)
	if err != nil {
		t.Fatalf("ListOpenEscalations: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open escalation, got %d", len(open))
	}

	agent := "agent-1"
	if err := st.UpdateEscalationStatus(ctx, esc.ID, models.EscalationInProgress, &agent); err != nil {
		t.Fatalf("UpdateEscalationStatus: %v", err)
	}
	got, err := st.GetEscalation(ctx, esc.ID)
	if err != nil {
		t.Fatalf("GetEscalation: %v", err)
	}
	if got.Status != models.EscalationInProgress || got.AssignedAgent == nil || *got.AssignedAgent != "agent-1" {
		t.Fatalf("assignment not persisted: %+v", got)
	}

	// in_progress still counts as the agent queue.
	open, err = st.ListOpenEscalations(ctx)
	if err != nil {
		t.Fatalf("ListOpenEscalations: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("in_progress should stay listed, got %d", len(open))
	}

	if err := st.UpdateEscalationStatus(ctx, esc.ID, models.EscalationResolved, nil); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	open, err = st.ListOpenEscalations(ctx)
	if err != nil {
		t.Fatalf("ListOpenEscalations: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("resolved escalation should drop off the queue, got %d", len(open))
	}

	if err := st.UpdateEscalationStatus(ctx, "missing", models.EscalationResolved, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func seedGormAgent(t *testing.T, st *GormStore, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := st.CreateAgent(context.Background(), &models.Agent{
		ID:               id,
		Username:         id,
		Email:            id + "@example.com",
		Status:           models.AgentOffline,
		Availability:     models.AgentUnavailable,
		Skills:           []string{"billing"},
		IsActive:         true,
		CreatedAt:        now,
		LastStatusChange: now,
	})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
}

func TestGormStore_AvailableAgentsFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedGormAgent(t, st, "a1")
	seedGormAgent(t, st, "a2")
	if err := st.UpdateAgentStatus(ctx, "a2", models.AgentOnline, models.AgentAvailable, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateAgentStatus: %v", err)
	}

	available, err := st.ListAvailableAgents(ctx)
	if err != nil {
		t.Fatalf("ListAvailableAgents: %v", err)
	}
	if len(available) != 1 || available[0].ID != "a2" {
		t.Fatalf("expected only a2 available, got %+v", available)
	}
	if len(available[0].Skills) != 1 || available[0].Skills[0] != "billing" {
		t.Fatalf("skills not round-tripped: %v", available[0].Skills)
	}
}

func TestGormStore_ShiftHoursAndRollup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedGormAgent(t, st, "a1")

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sh := &models.ShiftSession{
		ID:        utils.NewID(),
		AgentID:   "a1",
		Date:      "2026-03-10",
		StartTime: start,
		Status:    models.ShiftActive,
		CreatedAt: start,
	}
	if err := st.CreateShiftSession(ctx, sh); err != nil {
		t.Fatalf("CreateShiftSession: %v", err)
	}

	active, err := st.ActiveShiftSession(ctx, "a1", "2026-03-10")
	if err != nil {
		t.Fatalf("ActiveShiftSession: %v", err)
	}
	if active.ID != sh.ID {
		t.Fatalf("wrong active session %s", active.ID)
	}

	if err := st.CompleteShiftSession(ctx, sh.ID, start.Add(90*time.Minute), 1.5); err != nil {
		t.Fatalf("CompleteShiftSession: %v", err)
	}
	// Completing again must report not found (no longer active).
	if err := st.CompleteShiftSession(ctx, sh.ID, start.Add(2*time.Hour), 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double complete, got %v", err)
	}

	total, err := st.SumShiftHours(ctx, "a1", "2026-03-10", "2026-03-10")
	if err != nil {
		t.Fatalf("SumShiftHours: %v", err)
	}
	if total != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", total)
	}

	if err := st.UpsertPerformanceRollup(ctx, "a1", "2026-03-10", 1.5, 1); err != nil {
		t.Fatalf("first rollup: %v", err)
	}
	if err := st.UpsertPerformanceRollup(ctx, "a1", "2026-03-10", 0.5, 1); err != nil {
		t.Fatalf("second rollup: %v", err)
	}
	perf, err := st.PerformanceInRange(ctx, "a1", "2026-03-10", "2026-03-10")
	if err != nil {
		t.Fatalf("PerformanceInRange: %v", err)
	}
	if len(perf) != 1 {
		t.Fatalf("upsert must keep one row per agent+date, got %d", len(perf))
	}
	if perf[0].TotalHours != 2 || perf[0].TotalSessions != 2 {
		t.Fatalf("rollup = %.2fh/%d, want 2h/2", perf[0].TotalHours, perf[0].TotalSessions)
	}
}

func TestGormStore_RecomputeAgentRating(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedGormAgent(t, st, "a1")

	for _, rating := range []int{5, 4, 4} {
		fb := &models.Feedback{
			ID:           utils.NewID(),
			SessionID:    "sess-1",
			AgentID:      "a1",
			CustomerID:   "anonymous",
			Rating:       rating,
			Comment:      "test",
			FeedbackType: "general",
			CreatedAt:    time.Now().UTC(),
		}
		if err := st.CreateFeedback(ctx, fb); err != nil {
			t.Fatalf("CreateFeedback: %v", err)
		}
	}

	avg, count, err := st.RecomputeAgentRating(ctx, "a1")
	if err != nil {
		t.Fatalf("RecomputeAgentRating: %v", err)
	}
	if avg != 4.33 || count != 3 {
		t.Fatalf("got avg=%v count=%d, want 4.33/3", avg, count)
	}

	agent, err := st.GetAgent(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if agent.AvgRating != 4.33 || agent.TotalFeedback != 3 {
		t.Fatalf("agent not updated: %+v", agent)
	}
}

func TestGormStore_StatsForDate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	intents := []string{"greeting", "greeting", "billing"}
	for i, intent := range intents {
		conf := 0.9
		in := intent
		msg := &models.Message{
			ID:          utils.NewID(),
			SessionID:   "sess-1",
			Content:     "reply",
			Sender:      models.SenderBot,
			MessageType: models.MessageText,
			Timestamp:   day.Add(time.Duration(i) * time.Minute),
			Confidence:  &conf,
			Intent:      &in,
		}
		if err := st.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}
	// A user message the same day must not count.
	if err := st.AppendMessage(ctx, &models.Message{
		ID:          utils.NewID(),
		SessionID:   "sess-1",
		Content:     "hi",
		Sender:      models.SenderUser,
		MessageType: models.MessageText,
		Timestamp:   day,
	}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := st.CreateEscalation(ctx, &models.Escalation{
		ID:           utils.NewID(),
		SessionID:    "sess-1",
		Reason:       "low confidence",
		AIConfidence: 0.5,
		Timestamp:    day,
		Status:       models.EscalationOpen,
	}); err != nil {
		t.Fatalf("CreateEscalation: %v", err)
	}

	stats, err := st.StatsForDate(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("StatsForDate: %v", err)
	}
	if stats.TotalMessages != 3 {
		t.Fatalf("expected 3 bot messages, got %d", stats.TotalMessages)
	}
	if stats.AvgConfidence != 0.9 {
		t.Fatalf("expected avg confidence 0.9, got %v", stats.AvgConfidence)
	}
	if stats.EscalatedCount != 1 {
		t.Fatalf("expected 1 escalation, got %d", stats.EscalatedCount)
	}
	found := map[string]int{}
	for _, ic := range stats.IntentCounts {
		found[ic.Intent] = ic.Count
	}
	if found["greeting"] != 2 || found["billing"] != 1 {
		t.Fatalf("intent distribution wrong: %v", found)
	}

	// Other days are empty.
	empty, err := st.StatsForDate(ctx, "2026-03-11")
	if err != nil {
		t.Fatalf("StatsForDate empty day: %v", err)
	}
	if empty.TotalMessages != 0 || empty.EscalatedCount != 0 {
		t.Fatalf("expected empty stats, got %+v", empty)
	}
}

func TestGormStore_Users(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := &models.User{
		ID:        utils.NewID(),
		Username:  "supervisor",
		Email:     "supervisor@example.com",
		Role:      models.RoleSuperAdmin,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.HashPassword("s3cret-pass"); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := st.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := st.GetUserByUsername(ctx, "supervisor")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if !got.ValidatePassword("s3cret-pass") {
		t.Fatal("password hash does not validate")
	}
	if got.ValidatePassword("wrong") {
		t.Fatal("wrong password accepted")
	}

	at := time.Now().UTC()
	if err := st.UpdateLastLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}
	got, err = st.GetUserByUsername(ctx, "supervisor")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.LastLogin == nil {
		t.Fatal("expected last login recorded")
	}
}
