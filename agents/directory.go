package agents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
)

// ErrNoAgentsAvailable signals an empty availability pool. Callers treat
// it as retryable: the escalation stays queued as open.
var ErrNoAgentsAvailable = errors.New("no agents available")

// ErrInvalidTransition is returned when an escalation status change would
// move backwards.
var ErrInvalidTransition = errors.New("invalid status transition")

// Directory tracks agent availability, selects candidates for escalations
// and drives shift accounting on status changes. Status updates for the
// same agent are serialized so a shift open/close decision is never
// observably split.
type Directory struct {
	store  store.Store
	shifts *ShiftTracker

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewDirectory wires a directory over the store and shift tracker.
func NewDirectory(st store.Store, shifts *ShiftTracker) *Directory {
	return &Directory{
		store:  st,
		shifts: shifts,
		locks:  make(map[string]*sync.Mutex),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *Directory) agentLock(id string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[id]
	if !ok {
		l = &sync.Mutex{}
		d.locks[id] = l
	}
	return l
}

// ListAvailable returns agents that are online, available and active, in
// storage order.
func (d *Directory) ListAvailable(ctx context.Context) ([]models.Agent, error) {
	return d.store.ListAvailableAgents(ctx)
}

// PickRandom chooses uniformly among available agents. Returns
// ErrNoAgentsAvailable on an empty pool.
func (d *Directory) PickRandom(ctx context.Context) (*models.Agent, error) {
	available, err := d.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, ErrNoAgentsAvailable
	}
	d.rngMu.Lock()
	idx := d.rng.Intn(len(available))
	d.rngMu.Unlock()
	agent := available[idx]
	return &agent, nil
}

// Assign hands an open escalation to an agent: the escalation advances to
// in_progress and the session records the assignee. Shift state is not
// touched here.
func (d *Directory) Assign(ctx context.Context, escalationID, agentID string) error {
	if _, err := d.store.GetAgent(ctx, agentID); err != nil {
		return fmt.Errorf("agent %s: %w", agentID, err)
	}
	esc, err := d.store.GetEscalation(ctx, escalationID)
	if err != nil {
		return fmt.Errorf("escalation %s: %w", escalationID, err)
	}
	if !esc.Status.CanTransition(models.EscalationInProgress) {
		return fmt.Errorf("escalation %s is %s: %w", escalationID, esc.Status, ErrInvalidTransition)
	}

	if err := d.store.UpdateEscalationStatus(ctx, escalationID, models.EscalationInProgress, &agentID); err != nil {
		return fmt.Errorf("assign escalation: %w", err)
	}

	sess, err := d.store.GetSession(ctx, esc.SessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", esc.SessionID, err)
	}
	sess.AssignedAgent = &agentID
	if err := d.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("persist session assignment: %w", err)
	}
	log.Printf("[Agents] escalation %s assigned to %s", escalationID, agentID)
	return nil
}

// Resolve closes out an escalation and its session.
func (d *Directory) Resolve(ctx context.Context, escalationID string) error {
	esc, err := d.store.GetEscalation(ctx, escalationID)
	if err != nil {
		return fmt.Errorf("escalation %s: %w", escalationID, err)
	}
	if !esc.Status.CanTransition(models.EscalationResolved) {
		return fmt.Errorf("escalation %s is %s: %w", escalationID, esc.Status, ErrInvalidTransition)
	}
	if err := d.store.UpdateEscalationStatus(ctx, escalationID, models.EscalationResolved, nil); err != nil {
		return fmt.Errorf("resolve escalation: %w", err)
	}

	sess, err := d.store.GetSession(ctx, esc.SessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", esc.SessionID, err)
	}
	if sess.Status.CanTransition(models.SessionResolved) {
		sess.Status = models.SessionResolved
		if err := d.store.SaveSession(ctx, sess); err != nil {
			return fmt.Errorf("persist session resolution: %w", err)
		}
	}
	return nil
}

// SetStatus updates the agent's status and availability and drives shift
// accounting: going online+available clocks the agent in for today's date
// bucket, going offline or unavailable clocks them out. The whole
// transition is atomic per agent.
func (d *Directory) SetStatus(ctx context.Context, agentID string, status models.AgentStatus, availability models.AgentAvailability, reason string) error {
	lock := d.agentLock(agentID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := d.store.GetAgent(ctx, agentID); err != nil {
		return fmt.Errorf("agent %s: %w", agentID, err)
	}

	now := time.Now().UTC()
	if err := d.store.UpdateAgentStatus(ctx, agentID, status, availability, now); err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}
	if reason != "" {
		log.Printf("[Agents] %s -> %s/%s (%s)", agentID, status, availability, reason)
	} else {
		log.Printf("[Agents] %s -> %s/%s", agentID, status, availability)
	}

	date := DateBucket(now)
	switch {
	case status == models.AgentOnline && availability == models.AgentAvailable:
		return d.shifts.Open(ctx, agentID, date)
	case status == models.AgentOffline || availability == models.AgentUnavailable:
		_, err := d.shifts.Close(ctx, agentID, date)
		return err
	}
	return nil
}
