package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, text string, priorTurns []string) (string, error) {
	g.calls++
	return g.reply, g.err
}

func newTestEngine(t *testing.T, gen ResponseGenerator) (*Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	scorer := NewScorer(DefaultRules(), 1)
	return NewEngine(st, scorer, gen, DefaultConfig()), st
}

func openEscalations(t *testing.T, st *store.MemoryStore) []models.Escalation {
	t.Helper()
	list, err := st.ListOpenEscalations(context.Background())
	if err != nil {
		t.Fatalf("ListOpenEscalations: %v", err)
	}
	return list
}

func TestHandle_RejectsInvalidInput(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	if _, err := e.Handle(context.Background(), "", "hello"); !errors.Is(err, ErrMissingSessionID) {
		t.Fatalf("expected ErrMissingSessionID, got %v", err)
	}
	if _, err := e.Handle(context.Background(), "s1", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestHandle_CreatesSessionOnUnknownID(t *testing.T) {
	e, st := newTestEngine(t, nil)

	reply, err := e.Handle(context.Background(), "fresh-session", "hello")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Sender != models.SenderBot {
		t.Fatalf("expected bot reply, got sender %s", reply.Sender)
	}

	sess, err := st.GetSession(context.Background(), "fresh-session")
	if err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if sess.Status != models.SessionOpen {
		t.Fatalf("expected open session, got %s", sess.Status)
	}
}

func TestHandle_HumanRequestAlwaysEscalates(t *testing.T) {
	e, st := newTestEngine(t, nil)

	reply, err := e.Handle(context.Background(), "s1", "I want to talk to human")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !reply.IsEscalated {
		t.Fatal("expected escalated reply")
	}
	if reply.Content != HandoffMessage {
		t.Fatalf("expected hand-off message, got %q", reply.Content)
	}
	if reply.MessageType != models.MessageEscalation {
		t.Fatalf("expected escalation message type, got %s", reply.MessageType)
	}

	sess, err := st.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.Status != models.SessionEscalated {
		t.Fatalf("expected escalated session, got %s", sess.Status)
	}
	if sess.EscalatedAt == nil {
		t.Fatal("expected EscalatedAt to be set")
	}

	escs := openEscalations(t, st)
	if len(escs) != 1 {
		t.Fatalf("expected 1 escalation record, got %d", len(escs))
	}
	if escs[0].Status != models.EscalationOpen {
		t.Fatalf("expected open escalation, got %s", escs[0].Status)
	}
	if escs[0].SessionID != "s1" {
		t.Fatalf("escalation bound to wrong session %s", escs[0].SessionID)
	}
}

func TestHandle_LowConfidenceEscalates(t *testing.T) {
	e, st := newTestEngine(t, nil)

	// Nothing in the rule table matches, so confidence is 0.5 < 0.7.
	reply, err := e.Handle(context.Background(), "s1", "qwerty zxcvb")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !reply.IsEscalated {
		t.Fatal("expected escalation for low-confidence message")
	}
	if len(openEscalations(t, st)) != 1 {
		t.Fatal("expected escalation record")
	}
}

func TestHandle_ComplexityMarkerEscalates(t *testing.T) {
	e, st := newTestEngine(t, nil)

	// "help" scores 0.9 but the marker word forces the hand-off.
	reply, err := e.Handle(context.Background(), "s1", "help me with a complex integration")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !reply.IsEscalated {
		t.Fatal("expected escalation for complexity marker")
	}
	if len(openEscalations(t, st)) != 1 {
		t.Fatal("expected escalation record")
	}
}

func TestHandle_SecondEscalationDoesNotDuplicate(t *testing.T) {
	e, st := newTestEngine(t, nil)

	if _, err := e.Handle(context.Background(), "s1", "talk to human"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	reply, err := e.Handle(context.Background(), "s1", "talk to human please")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Content != HandoffMessage {
		t.Fatalf("expected hand-off message again, got %q", reply.Content)
	}
	if got := len(openEscalations(t, st)); got != 1 {
		t.Fatalf("expected exactly 1 escalation record, got %d", got)
	}
}

func TestHandle_GeneratorReplyUsed(t *testing.T) {
	gen := &stubGenerator{reply: "Generated answer."}
	e, _ := newTestEngine(t, gen)

	reply, err := e.Handle(context.Background(), "s1", "hello there")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Content != "Generated answer." {
		t.Fatalf("expected generated reply, got %q", reply.Content)
	}
	if gen.calls != 1 {
		t.Fatalf("expected 1 generator call, got %d", gen.calls)
	}
}

func TestHandle_FailingGeneratorFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("backend down")}
	e, _ := newTestEngine(t, gen)
	scorer := NewScorer(DefaultRules(), 1)

	reply, err := e.Handle(context.Background(), "s1", "hello there")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	valid := map[string]bool{}
	for _, r := range scorer.Responses("greeting") {
		valid[r] = true
	}
	if !valid[reply.Content] {
		t.Fatalf("expected canned greeting fallback, got %q", reply.Content)
	}
}

func TestHandle_ContextWindowBounded(t *testing.T) {
	e, st := newTestEngine(t, nil)

	for i := 0; i < 15; i++ {
		if _, err := e.Handle(context.Background(), "s1", fmt.Sprintf("hello number %d", i)); err != nil {
			t.Fatalf("Handle %d: %v", i, err)
		}
	}

	sess, err := st.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(sess.Context) != DefaultConfig().ContextWindow {
		t.Fatalf("expected context capped at %d, got %d", DefaultConfig().ContextWindow, len(sess.Context))
	}
	// Most recent turn must be retained.
	last := sess.Context[len(sess.Context)-2]
	if last != "User: hello number 14" {
		t.Fatalf("expected most recent user turn kept, got %q", last)
	}
}

func TestHandle_PersistsBothSidesOfExchange(t *testing.T) {
	e, st := newTestEngine(t, nil)

	if _, err := e.Handle(context.Background(), "s1", "hello"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	msgs, err := st.MessagesBySession(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("MessagesBySession: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user + bot messages, got %d", len(msgs))
	}
	if msgs[0].Sender != models.SenderUser || msgs[1].Sender != models.SenderBot {
		t.Fatalf("unexpected sender order: %s, %s", msgs[0].Sender, msgs[1].Sender)
	}
	if msgs[1].Intent == nil || *msgs[1].Intent != "greeting" {
		t.Fatal("expected bot reply stamped with greeting intent")
	}
	if msgs[1].Confidence == nil || *msgs[1].Confidence != ConfidenceExact {
		t.Fatal("expected bot reply stamped with confidence")
	}
}

func TestShouldEscalate(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	cases := []struct {
		intent     string
		confidence float64
		text       string
		want       bool
	}{
		{IntentHumanAgent, 0.9, "talk to human", true},
		{"support", 0.5, "anything", true},
		{"support", 0.9, "a very complicated request", true},
		{"greeting", 0.9, "hello", false},
		{"support", 0.7, "help me", false},
	}
	for _, c := range cases {
		if got := e.ShouldEscalate(c.intent, c.confidence, c.text); got != c.want {
			t.Fatalf("ShouldEscalate(%s, %.1f, %q) = %v, want %v", c.intent, c.confidence, c.text, got, c.want)
		}
	}
}
