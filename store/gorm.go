package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// GormStore implements Store on top of a relational database via GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates all tables owned by this store.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.ChatSession{},
		&models.Message{},
		&models.Escalation{},
		&models.Agent{},
		&models.ShiftSession{},
		&models.AgentPerformance{},
		&models.Feedback{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) SaveSession(ctx context.Context, sess *models.ChatSession) error {
	// Replace semantics: a concurrent create of the same id resolves to
	// last-writer-wins instead of a duplicate-key error.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(sess).Error
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *GormStore) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var sess models.ChatSession
	if err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

func (s *GormStore) AppendMessage(ctx context.Context, m *models.Message) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *GormStore) MessagesBySession(ctx context.Context, sessionID string, ascending bool) ([]models.Message, error) {
	order := "timestamp ASC"
	if !ascending {
		order = "timestamp DESC"
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order(order).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *GormStore) CreateEscalation(ctx context.Context, e *models.Escalation) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create escalation: %w", err)
	}
	return nil
}

func (s *GormStore) GetEscalation(ctx context.Context, id string) (*models.Escalation, error) {
	var e models.Escalation
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *GormStore) UpdateEscalationStatus(ctx context.Context, id string, status models.EscalationStatus, assignedAgent *string) error {
	updates := map[string]interface{}{"status": status}
	if assignedAgent != nil {
		updates["assigned_agent"] = *assignedAgent
	}
	res := s.db.WithContext(ctx).Model(&models.Escalation{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListOpenEscalations(ctx context.Context) ([]models.Escalation, error) {
	var list []models.Escalation
	err := s.db.WithContext(ctx).
		Where("status IN ?", []models.EscalationStatus{models.EscalationOpen, models.EscalationInProgress}).
		Order("timestamp DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) CreateAgent(ctx context.Context, a *models.Agent) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

func (s *GormStore) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	var a models.Agent
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *GormStore) ListAgents(ctx context.Context, onlyActive bool) ([]models.Agent, error) {
	q := s.db.WithContext(ctx)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var agents []models.Agent
	if err := q.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *GormStore) ListAvailableAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db.WithContext(ctx).
		Where("status = ? AND availability = ? AND is_active = ?",
			models.AgentOnline, models.AgentAvailable, true).
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *GormStore) UpdateAgentStatus(ctx context.Context, id string, status models.AgentStatus, availability models.AgentAvailability, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Agent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":             status,
		"availability":       availability,
		"last_status_change": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) IncrementAgentHours(ctx context.Context, id string, hours float64) error {
	res := s.db.WithContext(ctx).Model(&models.Agent{}).Where("id = ?", id).
		Update("total_hours_worked", gorm.Expr("total_hours_worked + ?", hours))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateShiftSession(ctx context.Context, sh *models.ShiftSession) error {
	if err := s.db.WithContext(ctx).Create(sh).Error; err != nil {
		return fmt.Errorf("create shift session: %w", err)
	}
	return nil
}

func (s *GormStore) ActiveShiftSession(ctx context.Context, agentID, date string) (*models.ShiftSession, error) {
	var sh models.ShiftSession
	err := s.db.WithContext(ctx).
		Where("agent_id = ? AND date = ? AND status = ?", agentID, date, models.ShiftActive).
		First(&sh).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &sh, nil
}

func (s *GormStore) CompleteShiftSession(ctx context.Context, id string, endTime time.Time, hours float64) error {
	res := s.db.WithContext(ctx).Model(&models.ShiftSession{}).
		Where("id = ? AND status = ?", id, models.ShiftActive).
		Updates(map[string]interface{}{
			"end_time":    endTime,
			"total_hours": hours,
			"status":      models.ShiftCompleted,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SumShiftHours(ctx context.Context, agentID, startDate, endDate string) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&models.ShiftSession{}).
		Select("COALESCE(SUM(total_hours), 0)").
		Where("agent_id = ? AND date >= ? AND date <= ?", agentID, startDate, endDate).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *GormStore) UpsertPerformanceRollup(ctx context.Context, agentID, date string, hoursDelta float64, sessionsDelta int) error {
	now := time.Now().UTC()
	rollup := models.AgentPerformance{
		ID:            utils.NewID(),
		AgentID:       agentID,
		Date:          date,
		TotalHours:    hoursDelta,
		TotalSessions: sessionsDelta,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "agent_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_hours":    gorm.Expr("total_hours + ?", hoursDelta),
			"total_sessions": gorm.Expr("total_sessions + ?", sessionsDelta),
			"updated_at":     now,
		}),
	}).Create(&rollup).Error
}

func (s *GormStore) PerformanceInRange(ctx context.Context, agentID, startDate, endDate string) ([]models.AgentPerformance, error) {
	var perf []models.AgentPerformance
	err := s.db.WithContext(ctx).
		Where("agent_id = ? AND date >= ? AND date <= ?", agentID, startDate, endDate).
		Order("date ASC").
		Find(&perf).Error
	if err != nil {
		return nil, err
	}
	return perf, nil
}

func (s *GormStore) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (s *GormStore) FeedbackByAgent(ctx context.Context, agentID string, limit int) ([]models.Feedback, error) {
	var list []models.Feedback
	q := s.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) RecomputeAgentRating(ctx context.Context, agentID string) (float64, int, error) {
	var row struct {
		Avg   float64
		Count int
	}
	err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("agent_id = ?", agentID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	avg := utils.RoundFloat(row.Avg, 2)
	res := s.db.WithContext(ctx).Model(&models.Agent{}).Where("id = ?", agentID).
		Updates(map[string]interface{}{
			"avg_rating":     avg,
			"total_feedback": row.Count,
		})
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, ErrNotFound
	}
	return avg, row.Count, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("last_login", at).Error
}

func (s *GormStore) StatsForDate(ctx context.Context, date string) (*DailyStats, error) {
	start, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", date, err)
	}
	end := start.Add(24 * time.Hour)

	stats := &DailyStats{IntentCounts: []IntentCount{}}

	var row struct {
		Total int
		Avg   float64
	}
	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Select("COUNT(*) AS total, COALESCE(AVG(confidence), 0) AS avg").
		Where("timestamp >= ? AND timestamp < ? AND sender = ?", start, end, models.SenderBot).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	stats.TotalMessages = row.Total
	stats.AvgConfidence = utils.RoundFloat(row.Avg, 2)

	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Select("intent, COUNT(*) AS count").
		Where("timestamp >= ? AND timestamp < ? AND sender = ? AND intent IS NOT NULL",
			start, end, models.SenderBot).
		Group("intent").
		Scan(&stats.IntentCounts).Error
	if err != nil {
		return nil, err
	}

	var escalated int64
	err = s.db.WithContext(ctx).Model(&models.Escalation{}).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Count(&escalated).Error
	if err != nil {
		return nil, err
	}
	stats.EscalatedCount = int(escalated)

	return stats, nil
}
