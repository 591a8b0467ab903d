package agents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
)

func seedAgent(t *testing.T, st store.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := st.CreateAgent(context.Background(), &models.Agent{
		ID:               id,
		Username:         id,
		Email:            id + "@example.com",
		Status:           models.AgentOffline,
		Availability:     models.AgentUnavailable,
		IsActive:         true,
		CreatedAt:        now,
		LastStatusChange: now,
	})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
}

func TestShiftTracker_OpenCloseComputesHours(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewShiftTracker(st)
	seedAgent(t, st, "agent-1")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return base }
	date := DateBucket(base)

	if err := tracker.Open(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// 90 minutes later.
	tracker.now = func() time.Time { return base.Add(90 * time.Minute) }
	closed, err := tracker.Close(context.Background(), "agent-1", date)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closed {
		t.Fatal("expected a session to be closed")
	}

	hours, err := tracker.HoursOn(context.Background(), "agent-1", date)
	if err != nil {
		t.Fatalf("HoursOn: %v", err)
	}
	if hours != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", hours)
	}

	agent, err := st.GetAgent(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if agent.TotalHoursWorked != 1.5 {
		t.Fatalf("expected cumulative 1.5 hours, got %v", agent.TotalHoursWorked)
	}

	perf, err := st.PerformanceInRange(context.Background(), "agent-1", date, date)
	if err != nil {
		t.Fatalf("PerformanceInRange: %v", err)
	}
	if len(perf) != 1 {
		t.Fatalf("expected 1 rollup row, got %d", len(perf))
	}
	if perf[0].TotalHours != 1.5 || perf[0].TotalSessions != 1 {
		t.Fatalf("rollup = %.2fh/%d sessions, want 1.5h/1", perf[0].TotalHours, perf[0].TotalSessions)
	}
}

func TestShiftTracker_OpenIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewShiftTracker(st)
	seedAgent(t, st, "agent-1")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return base }
	date := DateBucket(base)

	if err := tracker.Open(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	// Second open an hour later must not reset the start time.
	tracker.now = func() time.Time { return base.Add(time.Hour) }
	if err := tracker.Open(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("second Open: %v", err)
	}

	tracker.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := tracker.Close(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("Close: %v", err)
	}

	hours, err := tracker.HoursOn(context.Background(), "agent-1", date)
	if err != nil {
		t.Fatalf("HoursOn: %v", err)
	}
	if hours != 2 {
		t.Fatalf("expected 2 hours from original start, got %v", hours)
	}
}

func TestShiftTracker_DoubleCloseIsNoop(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewShiftTracker(st)
	seedAgent(t, st, "agent-1")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return base }
	date := DateBucket(base)

	if err := tracker.Open(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("Open: %v", err)
	}
	tracker.now = func() time.Time { return base.Add(time.Hour) }
	if closed, err := tracker.Close(context.Background(), "agent-1", date); err != nil || !closed {
		t.Fatalf("first Close = (%v, %v), want (true, nil)", closed, err)
	}
	if closed, err := tracker.Close(context.Background(), "agent-1", date); err != nil || closed {
		t.Fatalf("second Close = (%v, %v), want (false, nil)", closed, err)
	}

	agent, err := st.GetAgent(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if agent.TotalHoursWorked != 1 {
		t.Fatalf("double close must not double-count, got %v hours", agent.TotalHoursWorked)
	}
}

func TestShiftTracker_CloseWithoutOpen(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewShiftTracker(st)
	seedAgent(t, st, "agent-1")

	closed, err := tracker.Close(context.Background(), "agent-1", "2026-03-10")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed {
		t.Fatal("expected nothing to close")
	}
}

func TestShiftTracker_MultipleSessionsSameDaySum(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewShiftTracker(st)
	seedAgent(t, st, "agent-1")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	date := DateBucket(base)

	// Morning: 2h. Afternoon: 30m.
	tracker.now = func() time.Time { return base }
	if err := tracker.Open(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("Open: %v", err)
	}
	tracker.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := tracker.Close(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("Close: %v", err)
	}
	tracker.now = func() time.Time { return base.Add(5 * time.Hour) }
	if err := tracker.Open(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("Open: %v", err)
	}
	tracker.now = func() time.Time { return base.Add(5*time.Hour + 30*time.Minute) }
	if _, err := tracker.Close(context.Background(), "agent-1", date); err != nil {
		t.Fatalf("Close: %v", err)
	}

	hours, err := tracker.HoursOn(context.Background(), "agent-1", date)
	if err != nil {
		t.Fatalf("HoursOn: %v", err)
	}
	if hours != 2.5 {
		t.Fatalf("expected 2.5 hours total, got %v", hours)
	}

	perf, err := st.PerformanceInRange(context.Background(), "agent-1", date, date)
	if err != nil {
		t.Fatalf("PerformanceInRange: %v", err)
	}
	if len(perf) != 1 || perf[0].TotalSessions != 2 {
		t.Fatalf("expected single rollup with 2 sessions, got %+v", perf)
	}
}

func TestDirectory_SetStatusDrivesShifts(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewShiftTracker(st)
	dir := NewDirectory(st, tracker)
	seedAgent(t, st, "agent-1")

	ctx := context.Background()
	date := DateBucket(time.Now().UTC())

	if err := dir.SetStatus(ctx, "agent-1", models.AgentOnline, models.AgentAvailable, ""); err != nil {
		t.Fatalf("SetStatus online: %v", err)
	}
	if _, err := st.ActiveShiftSession(ctx, "agent-1", date); err != nil {
		t.Fatalf("expected active shift after going online: %v", err)
	}

	if err := dir.SetStatus(ctx, "agent-1", models.AgentOffline, models.AgentUnavailable, "end of day"); err != nil {
		t.Fatalf("SetStatus offline: %v", err)
	}
	if _, err := st.ActiveShiftSession(ctx, "agent-1", date); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no active shift after going offline, got %v", err)
	}

	agent, err := st.GetAgent(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if agent.Status != models.AgentOffline || agent.Availability != models.AgentUnavailable {
		t.Fatalf("status not updated: %s/%s", agent.Status, agent.Availability)
	}
}

func TestDirectory_SetStatusConcurrentSingleActiveShift(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewShiftTracker(st)
	dir := NewDirectory(st, tracker)
	seedAgent(t, st, "agent-1")

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = dir.SetStatus(ctx, "agent-1", models.AgentOnline, models.AgentAvailable, "")
		}()
	}
	wg.Wait()

	date := DateBucket(time.Now().UTC())
	hours, err := st.SumShiftHours(ctx, "agent-1", date, date)
	if err != nil {
		t.Fatalf("SumShiftHours: %v", err)
	}
	if hours != 0 {
		t.Fatalf("no shift closed yet, hours should be 0, got %v", hours)
	}

	// Exactly one active session regardless of racing opens.
	if _, err := st.ActiveShiftSession(ctx, "agent-1", date); err != nil {
		t.Fatalf("expected an active shift: %v", err)
	}
	if _, err := tracker.Close(ctx, "agent-1", date); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed, err := tracker.Close(ctx, "agent-1", date); err != nil || closed {
		t.Fatalf("expected single active session, second close = (%v, %v)", closed, err)
	}
}
