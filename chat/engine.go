package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// Validation errors surfaced to callers before any state is mutated.
var (
	ErrEmptyMessage     = errors.New("message text is empty")
	ErrMissingSessionID = errors.New("session id is required")
)

// HandoffMessage is the fixed notification returned when a session escalates.
const HandoffMessage = "I'm connecting you with a human agent who will be able to help you better " +
	"with this request. Please wait a moment while I transfer you."

// Config holds the escalation policy knobs.
type Config struct {
	// EscalationThreshold is the confidence below which a message is
	// handed to a human.
	EscalationThreshold float64
	// ContextWindow bounds how many turns a session keeps.
	ContextWindow int
	// ComplexityMarkers are case-insensitive substrings that force a
	// hand-off regardless of confidence.
	ComplexityMarkers []string
}

// DefaultConfig returns the standard policy settings.
func DefaultConfig() Config {
	return Config{
		EscalationThreshold: 0.7,
		ContextWindow:       20,
		ComplexityMarkers:   []string{"complex", "advanced", "detailed", "complicated", "specific"},
	}
}

// Engine owns the per-session state machine. On each inbound message it
// scores intent, applies the escalation policy and emits either a bot
// reply or a hand-off event, persisting every transition through the store.
type Engine struct {
	store  store.Store
	scorer *Scorer
	gen    ResponseGenerator // may be nil: fallback replies only
	cfg    Config

	// Per-session locks serialize Handle calls for the same session so
	// context entries stay ordered and escalations are not double
	// created. Lock entries live for the process lifetime; session
	// retention itself is an external concern.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine wires the conversation engine. gen may be nil when no
// generation service is configured.
func NewEngine(st store.Store, scorer *Scorer, gen ResponseGenerator, cfg Config) *Engine {
	if cfg.EscalationThreshold <= 0 {
		cfg.EscalationThreshold = DefaultConfig().EscalationThreshold
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = DefaultConfig().ContextWindow
	}
	return &Engine{
		store:  st,
		scorer: scorer,
		gen:    gen,
		cfg:    cfg,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (e *Engine) sessionLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// CreateSession opens a new session and returns its id. When sessionID is
// empty a fresh one is minted; supplying one makes creation idempotent
// against the store's replace semantics.
func (e *Engine) CreateSession(ctx context.Context, sessionID string, userID *string) (*models.ChatSession, error) {
	if sessionID == "" {
		sessionID = utils.NewID()
	}
	now := time.Now().UTC()
	sess := &models.ChatSession{
		ID:           sessionID,
		UserID:       userID,
		StartTime:    now,
		LastActivity: now,
		Context:      []string{},
		Status:       models.SessionOpen,
	}
	if err := e.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ShouldEscalate is the escalation policy: a pure predicate over the
// scored intent, its confidence and the raw text.
func (e *Engine) ShouldEscalate(intent string, confidence float64, text string) bool {
	if intent == IntentHumanAgent {
		return true
	}
	if confidence < e.cfg.EscalationThreshold {
		return true
	}
	lower := strings.ToLower(text)
	for _, marker := range e.cfg.ComplexityMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// Handle processes one inbound user message for a session and returns the
// outbound message: either a bot reply or the hand-off notification.
// Unknown but well-formed session ids are recovered by creating the
// session. Concurrent calls for the same session are serialized.
func (e *Engine) Handle(ctx context.Context, sessionID, text string) (*models.Message, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		sess, err = e.CreateSession(ctx, sessionID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session %s: %w", sessionID, err)
	}

	// Persist the inbound message before any decision is made. A failed
	// write here must surface: messages are never fire-and-forget.
	now := time.Now().UTC()
	userMsg := &models.Message{
		ID:          utils.NewID(),
		SessionID:   sessionID,
		Content:     text,
		Sender:      models.SenderUser,
		MessageType: models.MessageText,
		Timestamp:   now,
	}
	if err := e.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	intent, confidence := e.scorer.Score(text)

	if e.ShouldEscalate(intent, confidence, text) {
		sess.Context = append(sess.Context, "User: "+text)
		sess.Context = truncateContext(sess.Context, e.cfg.ContextWindow)
		sess.LastActivity = time.Now().UTC()
		return e.escalate(ctx, sess, intent, confidence)
	}

	replyText := e.generateReply(ctx, text, sess.Context, intent)

	reply := &models.Message{
		ID:          utils.NewID(),
		SessionID:   sessionID,
		Content:     replyText,
		Sender:      models.SenderBot,
		MessageType: models.MessageText,
		Timestamp:   time.Now().UTC(),
		Confidence:  &confidence,
		Intent:      &intent,
	}

	sess.Context = append(sess.Context, "User: "+text, "Bot: "+replyText)
	sess.Context = truncateContext(sess.Context, e.cfg.ContextWindow)
	sess.LastActivity = time.Now().UTC()

	if err := e.store.AppendMessage(ctx, reply); err != nil {
		return nil, fmt.Errorf("persist bot reply: %w", err)
	}
	if err := e.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return reply, nil
}

// generateReply calls the generation collaborator when configured and falls
// back to the canned response for the intent on any failure. The user is
// never left without an answer.
func (e *Engine) generateReply(ctx context.Context, text string, priorTurns []string, intent string) string {
	if e.gen != nil {
		reply, err := e.gen.Generate(ctx, text, priorTurns)
		if err == nil && strings.TrimSpace(reply) != "" {
			return strings.TrimSpace(reply)
		}
		if err != nil {
			log.Printf("[Chat] generation failed, using fallback: %v", err)
		}
	}
	return e.scorer.CannedResponse(intent)
}

// escalate moves the session to escalated, records the hand-off and
// returns the fixed notification message. Agent selection happens later
// through the directory, not here. A session that is already escalated
// does not get a second escalation record.
func (e *Engine) escalate(ctx context.Context, sess *models.ChatSession, intent string, confidence float64) (*models.Message, error) {
	now := time.Now().UTC()

	if sess.Status.CanTransition(models.SessionEscalated) {
		sess.Status = models.SessionEscalated
		sess.EscalatedAt = &now

		esc := &models.Escalation{
			ID:           utils.NewID(),
			SessionID:    sess.ID,
			Reason:       fmt.Sprintf("Intent: %s, Confidence: %.2f", intent, confidence),
			AIConfidence: confidence,
			Timestamp:    now,
			Status:       models.EscalationOpen,
		}
		if err := e.store.CreateEscalation(ctx, esc); err != nil {
			return nil, fmt.Errorf("persist escalation: %w", err)
		}
		log.Printf("[Chat] session %s escalated (%s)", sess.ID, esc.Reason)
	}

	if err := e.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	escalationMsg := &models.Message{
		ID:          utils.NewID(),
		SessionID:   sess.ID,
		Content:     HandoffMessage,
		Sender:      models.SenderBot,
		MessageType: models.MessageEscalation,
		Timestamp:   time.Now().UTC(),
		Confidence:  &confidence,
		Intent:      &intent,
		IsEscalated: true,
	}
	if err := e.store.AppendMessage(ctx, escalationMsg); err != nil {
		return nil, fmt.Errorf("persist escalation message: %w", err)
	}
	return escalationMsg, nil
}

func truncateContext(turns []string, window int) []string {
	if len(turns) <= window {
		return turns
	}
	return turns[len(turns)-window:]
}
