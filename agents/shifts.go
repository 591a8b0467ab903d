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

// DateBucket returns the UTC calendar bucket for shift accounting.
func DateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ShiftTracker opens and closes agent work sessions and folds completed
// durations into the agent's cumulative hours and the per-date performance
// rollup. Callers (the directory) serialize per-agent access.
type ShiftTracker struct {
	store store.Store
	// now is swappable in tests
	now func() time.Time
}

// NewShiftTracker builds a tracker over the given store.
func NewShiftTracker(st store.Store) *ShiftTracker {
	return &ShiftTracker{store: st, now: time.Now}
}

// Open starts a work session for the agent on the given date bucket. It is
// idempotent: an existing active session for that agent+date is left alone.
func (t *ShiftTracker) Open(ctx context.Context, agentID, date string) error {
	_, err := t.store.ActiveShiftSession(ctx, agentID, date)
	if err == nil {
		return nil // already clocked in
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check active shift: %w", err)
	}

	now := t.now().UTC()
	sh := &models.ShiftSession{
		ID:        utils.NewID(),
		AgentID:   agentID,
		Date:      date,
		StartTime: now,
		Status:    models.ShiftActive,
		CreatedAt: now,
	}
	if err := t.store.CreateShiftSession(ctx, sh); err != nil {
		return fmt.Errorf("open shift: %w", err)
	}
	log.Printf("[Shifts] agent %s clocked in (%s)", agentID, date)
	return nil
}

// Close ends the active work session for the agent on the given date
// bucket, computes the worked duration and updates the agent's cumulative
// hours and the performance rollup. Closing when nothing is open is not an
// error; the returned bool reports whether a session was actually closed.
func (t *ShiftTracker) Close(ctx context.Context, agentID, date string) (bool, error) {
	sh, err := t.store.ActiveShiftSession(ctx, agentID, date)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil // nothing to close
	}
	if err != nil {
		return false, fmt.Errorf("find active shift: %w", err)
	}

	end := t.now().UTC()
	hours := end.Sub(sh.StartTime).Hours()
	if hours < 0 {
		hours = 0
	}

	if err := t.store.CompleteShiftSession(ctx, sh.ID, end, hours); err != nil {
		// A concurrent close already completed it; treat as closed-by-other.
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("complete shift: %w", err)
	}
	if err := t.store.IncrementAgentHours(ctx, agentID, hours); err != nil {
		return false, fmt.Errorf("increment agent hours: %w", err)
	}
	if err := t.store.UpsertPerformanceRollup(ctx, agentID, date, hours, 1); err != nil {
		return false, fmt.Errorf("update performance rollup: %w", err)
	}
	log.Printf("[Shifts] agent %s clocked out (%s, %.2fh)", agentID, date, hours)
	return true, nil
}

// HoursOn sums the hours of all shift sessions for agent+date. Pure read.
func (t *ShiftTracker) HoursOn(ctx context.Context, agentID, date string) (float64, error) {
	return t.store.SumShiftHours(ctx, agentID, date, date)
}

// HoursInRange sums session hours over an inclusive date range. Pure read.
func (t *ShiftTracker) HoursInRange(ctx context.Context, agentID, startDate, endDate string) (float64, error) {
	return t.store.SumShiftHours(ctx, agentID, startDate, endDate)
}
