package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// MemoryStore is an in-process Store used by tests and by the storage-free
// development mode. All methods copy on read so callers never share the
// backing structs.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]models.ChatSession
	messages    []models.Message
	escalations map[string]models.Escalation
	agents      map[string]models.Agent
	shifts      map[string]models.ShiftSession
	rollups     map[string]models.AgentPerformance // key agentID|date
	feedback    []models.Feedback
	users       map[string]models.User
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]models.ChatSession),
		escalations: make(map[string]models.Escalation),
		agents:      make(map[string]models.Agent),
		shifts:      make(map[string]models.ShiftSession),
		rollups:     make(map[string]models.AgentPerformance),
		users:       make(map[string]models.User),
	}
}

func (s *MemoryStore) SaveSession(_ context.Context, sess *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	cp.Context = append([]string(nil), sess.Context...)
	s.sessions[sess.ID] = cp
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := sess
	cp.Context = append([]string(nil), sess.Context...)
	return &cp, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *m)
	return nil
}

func (s *MemoryStore) MessagesBySession(_ context.Context, sessionID string, ascending bool) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var msgs []models.Message
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			msgs = append(msgs, m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if ascending {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		}
		return msgs[j].Timestamp.Before(msgs[i].Timestamp)
	})
	return msgs, nil
}

func (s *MemoryStore) CreateEscalation(_ context.Context, e *models.Escalation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.escalations[e.ID] = *e
	return nil
}

func (s *MemoryStore) GetEscalation(_ context.Context, id string) (*models.Escalation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.escalations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := e
	return &cp, nil
}

func (s *MemoryStore) UpdateEscalationStatus(_ context.Context, id string, status models.EscalationStatus, assignedAgent *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.escalations[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	if assignedAgent != nil {
		agent := *assignedAgent
		e.AssignedAgent = &agent
	}
	s.escalations[id] = e
	return nil
}

func (s *MemoryStore) ListOpenEscalations(_ context.Context) ([]models.Escalation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Escalation
	for _, e := range s.escalations {
		if e.Status == models.EscalationOpen || e.Status == models.EscalationInProgress {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[j].Timestamp.Before(list[i].Timestamp)
	})
	return list, nil
}

func (s *MemoryStore) CreateAgent(_ context.Context, a *models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.Skills = append([]string(nil), a.Skills...)
	s.agents[a.ID] = cp
	return nil
}

func (s *MemoryStore) GetAgent(_ context.Context, id string) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := a
	cp.Skills = append([]string(nil), a.Skills...)
	return &cp, nil
}

func (s *MemoryStore) ListAgents(_ context.Context, onlyActive bool) ([]models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var agents []models.Agent
	for _, a := range s.agents {
		if onlyActive && !a.IsActive {
			continue
		}
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents, nil
}

func (s *MemoryStore) ListAvailableAgents(_ context.Context) ([]models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var agents []models.Agent
	for _, a := range s.agents {
		if a.Status == models.AgentOnline && a.Availability == models.AgentAvailable && a.IsActive {
			agents = append(agents, a)
		}
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents, nil
}

func (s *MemoryStore) UpdateAgentStatus(_ context.Context, id string, status models.AgentStatus, availability models.AgentAvailability, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	a.Availability = availability
	a.LastStatusChange = at
	s.agents[id] = a
	return nil
}

func (s *MemoryStore) IncrementAgentHours(_ context.Context, id string, hours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return ErrNotFound
	}
	a.TotalHoursWorked += hours
	s.agents[id] = a
	return nil
}

func (s *MemoryStore) CreateShiftSession(_ context.Context, sh *models.ShiftSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts[sh.ID] = *sh
	return nil
}

func (s *MemoryStore) ActiveShiftSession(_ context.Context, agentID, date string) (*models.ShiftSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shifts {
		if sh.AgentID == agentID && sh.Date == date && sh.Status == models.ShiftActive {
			cp := sh
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CompleteShiftSession(_ context.Context, id string, endTime time.Time, hours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shifts[id]
	if !ok || sh.Status != models.ShiftActive {
		return ErrNotFound
	}
	end := endTime
	sh.EndTime = &end
	sh.TotalHours = hours
	sh.Status = models.ShiftCompleted
	s.shifts[id] = sh
	return nil
}

func (s *MemoryStore) SumShiftHours(_ context.Context, agentID, startDate, endDate string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, sh := range s.shifts {
		if sh.AgentID == agentID && sh.Date >= startDate && sh.Date <= endDate {
			total += sh.TotalHours
		}
	}
	return total, nil
}

func (s *MemoryStore) UpsertPerformanceRollup(_ context.Context, agentID, date string, hoursDelta float64, sessionsDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := agentID + "|" + date
	now := time.Now().UTC()
	p, ok := s.rollups[key]
	if !ok {
		p = models.AgentPerformance{
			ID:        utils.NewID(),
			AgentID:   agentID,
			Date:      date,
			CreatedAt: now,
		}
	}
	p.TotalHours += hoursDelta
	p.TotalSessions += sessionsDelta
	p.UpdatedAt = now
	s.rollups[key] = p
	return nil
}

func (s *MemoryStore) PerformanceInRange(_ context.Context, agentID, startDate, endDate string) ([]models.AgentPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var perf []models.AgentPerformance
	for _, p := range s.rollups {
		if p.AgentID == agentID && p.Date >= startDate && p.Date <= endDate {
			perf = append(perf, p)
		}
	}
	sort.Slice(perf, func(i, j int) bool { return perf[i].Date < perf[j].Date })
	return perf, nil
}

func (s *MemoryStore) CreateFeedback(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, *f)
	return nil
}

func (s *MemoryStore) FeedbackByAgent(_ context.Context, agentID string, limit int) ([]models.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Feedback
	for _, f := range s.feedback {
		if f.AgentID == agentID {
			list = append(list, f)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[j].CreatedAt.Before(list[i].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) RecomputeAgentRating(_ context.Context, agentID string) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[agentID]
	if !ok {
		return 0, 0, ErrNotFound
	}
	var sum float64
	var count int
	for _, f := range s.feedback {
		if f.AgentID == agentID {
			sum += float64(f.Rating)
			count++
		}
	}
	avg := 0.0
	if count > 0 {
		avg = utils.RoundFloat(sum/float64(count), 2)
	}
	a.AvgRating = avg
	a.TotalFeedback = count
	s.agents[agentID] = a
	return avg, count, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []models.User
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *MemoryStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	t := at
	u.LastLogin = &t
	s.users[id] = u
	return nil
}

func (s *MemoryStore) StatsForDate(_ context.Context, date string) (*DailyStats, error) {
	start, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, err
	}
	end := start.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &DailyStats{IntentCounts: []IntentCount{}}
	counts := make(map[string]int)
	var confSum float64
	var confN int
	for _, m := range s.messages {
		if m.Timestamp.Before(start) || !m.Timestamp.Before(end) {
			continue
		}
		if m.Sender != models.SenderBot {
			continue
		}
		stats.TotalMessages++
		if m.Confidence != nil {
			confSum += *m.Confidence
			confN++
		}
		if m.Intent != nil {
			counts[*m.Intent]++
		}
	}
	if confN > 0 {
		stats.AvgConfidence = utils.RoundFloat(confSum/float64(confN), 2)
	}
	intents := make([]string, 0, len(counts))
	for in := range counts {
		intents = append(intents, in)
	}
	sort.Strings(intents)
	for _, in := range intents {
		stats.IntentCounts = append(stats.IntentCounts, IntentCount{Intent: in, Count: counts[in]})
	}
	for _, e := range s.escalations {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			stats.EscalatedCount++
		}
	}
	return stats, nil
}
