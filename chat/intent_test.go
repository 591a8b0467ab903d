package chat

import "testing"

func TestScore_PhraseMatch(t *testing.T) {
	s := NewScorer(DefaultRules(), 1)

	intent, conf := s.Score("I need help with my account")
	if intent != "support" {
		t.Fatalf("expected support intent, got %s", intent)
	}
	if conf != ConfidenceExact {
		t.Fatalf("expected confidence %.1f, got %.1f", ConfidenceExact, conf)
	}
}

func TestScore_HumanAgentRequest(t *testing.T) {
	s := NewScorer(DefaultRules(), 1)

	for _, text := range []string{
		"I want to talk to human",
		"can I speak to someone",
		"give me a real person",
	} {
		intent, conf := s.Score(text)
		if intent != IntentHumanAgent {
			t.Fatalf("Score(%q) intent = %s, want %s", text, intent, IntentHumanAgent)
		}
		if conf != ConfidenceExact {
			t.Fatalf("Score(%q) confidence = %.1f, want %.1f", text, conf, ConfidenceExact)
		}
	}
}

func TestScore_TokenMatch(t *testing.T) {
	s := NewScorer(DefaultRules(), 1)

	// "morning" is a word of the "good morning" pattern; the full phrase
	// never appears, so only the token stage can match.
	intent, conf := s.Score("morning, everyone.")
	if intent != "greeting" {
		t.Fatalf("expected greeting intent, got %s", intent)
	}
	if conf != ConfidencePartial {
		t.Fatalf("expected confidence %.1f, got %.1f", ConfidencePartial, conf)
	}
}

func TestScore_DefaultIntent(t *testing.T) {
	s := NewScorer(DefaultRules(), 1)

	intent, conf := s.Score("zxqv wvut")
	if intent != IntentDefault {
		t.Fatalf("expected %s intent, got %s", IntentDefault, intent)
	}
	if conf != ConfidenceNone {
		t.Fatalf("expected confidence %.1f, got %.1f", ConfidenceNone, conf)
	}
}

func TestScore_TableOrderFirstMatchWins(t *testing.T) {
	s := NewScorer(DefaultRules(), 1)

	// "problem" is listed under support ("i have a problem") and technical.
	// Phrase scan runs in table order, so support wins.
	intent, _ := s.Score("i have a problem")
	if intent != "support" {
		t.Fatalf("expected support intent, got %s", intent)
	}
}

func TestCannedResponse_FromRuleSet(t *testing.T) {
	s := NewScorer(DefaultRules(), 42)

	valid := map[string]bool{}
	for _, r := range s.Responses("greeting") {
		valid[r] = true
	}
	for i := 0; i < 20; i++ {
		reply := s.CannedResponse("greeting")
		if !valid[reply] {
			t.Fatalf("CannedResponse returned %q, not in greeting set", reply)
		}
	}
}

func TestCannedResponse_UnknownIntent(t *testing.T) {
	s := NewScorer(DefaultRules(), 1)
	reply := s.CannedResponse("nonexistent")
	if reply == "" {
		t.Fatal("expected generic fallback reply for unknown intent")
	}
}
