package chat

import (
	"math/rand"
	"strings"
	"sync"
)

// Confidence levels produced by the scorer.
const (
	ConfidenceExact   = 0.9
	ConfidencePartial = 0.7
	ConfidenceNone    = 0.5
)

// IntentHumanAgent is the explicit request for a human; it always escalates.
const IntentHumanAgent = "human_agent"

// IntentDefault is returned when nothing in the rule table matches.
const IntentDefault = "support"

// IntentRule maps one intent to its trigger phrases and canned replies.
// Rules are evaluated in slice order and the first match wins, so the
// table order is part of the contract.
type IntentRule struct {
	Name      string
	Patterns  []string
	Responses []string
}

// DefaultRules is the built-in intent table.
func DefaultRules() []IntentRule {
	return []IntentRule{
		{
			Name:     "greeting",
			Patterns: []string{"hi", "hello", "good morning", "good afternoon", "hey", "howdy"},
			Responses: []string{
				"Hello! How can I help you today?",
				"Hi there! What can I assist you with?",
				"Welcome! How may I help you?",
			},
		},
		{
			Name:     "goodbye",
			Patterns: []string{"bye", "goodbye", "see you later", "thanks bye", "good night"},
			Responses: []string{
				"Goodbye! Have a great day!",
				"Thanks for chatting. Take care!",
				"See you later! Feel free to return if you need help.",
			},
		},
		{
			Name:     "support",
			Patterns: []string{"help", "i need help", "can you help me", "support", "i have a problem", "assist"},
			Responses: []string{
				"I'm here to help! What seems to be the issue?",
				"Of course! Please describe your problem.",
				"I'd be happy to help. What do you need assistance with?",
			},
		},
		{
			Name:     "billing",
			Patterns: []string{"billing", "payment", "invoice", "charge", "bill", "cost", "price"},
			Responses: []string{
				"I can help with billing questions. Let me look into that for you.",
				"For billing inquiries, I'll need some details. What specific billing issue are you experiencing?",
			},
		},
		{
			Name:     "technical",
			Patterns: []string{"technical", "bug", "not working", "error", "broken", "issue", "problem"},
			Responses: []string{
				"I'll help you resolve this technical issue. Can you provide more details?",
				"Let me help you troubleshoot this. What exactly isn't working?",
			},
		},
		{
			Name:     IntentHumanAgent,
			Patterns: []string{"human", "agent", "person", "real person", "speak to someone", "talk to human"},
			Responses: []string{
				"I understand you'd like to speak with a human agent. Let me connect you with one of our specialists.",
			},
		},
		{
			Name:     "thanks",
			Patterns: []string{"thank you", "thanks", "appreciate it", "grateful"},
			Responses: []string{
				"You're welcome! Is there anything else I can help you with?",
				"Happy to help! Let me know if you need anything else.",
			},
		},
	}
}

// Scorer maps free text to an (intent, confidence) pair using the ordered
// rule table. Scoring is a pure function of the text and the table.
type Scorer struct {
	rules []IntentRule

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScorer builds a scorer over the given rules. Pass DefaultRules() for
// the standard table.
func NewScorer(rules []IntentRule, seed int64) *Scorer {
	return &Scorer{
		rules: rules,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Score evaluates text against the rule table:
//  1. whole-phrase substring match, table order, confidence 0.9
//  2. single-token match, table order, confidence 0.7
//  3. no match: IntentDefault with confidence 0.5
func (s *Scorer) Score(text string) (string, float64) {
	lower := strings.ToLower(text)

	for _, rule := range s.rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(lower, pattern) {
				return rule.Name, ConfidenceExact
			}
		}
	}

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(lower) {
		tokens[strings.Trim(tok, ".,!?;:'\"")] = true
	}
	for _, rule := range s.rules {
		for _, pattern := range rule.Patterns {
			for _, word := range strings.Fields(pattern) {
				if tokens[word] {
					return rule.Name, ConfidencePartial
				}
			}
		}
	}

	return IntentDefault, ConfidenceNone
}

// CannedResponse picks one of the predefined replies for the intent.
func (s *Scorer) CannedResponse(intent string) string {
	for _, rule := range s.rules {
		if rule.Name != intent || len(rule.Responses) == 0 {
			continue
		}
		s.mu.Lock()
		reply := rule.Responses[s.rng.Intn(len(rule.Responses))]
		s.mu.Unlock()
		return reply
	}
	return "I understand you're asking about that. Let me help you with more information."
}

// Responses returns the canned reply set for an intent, used by tests and
// by callers that render the full choice list.
func (s *Scorer) Responses(intent string) []string {
	for _, rule := range s.rules {
		if rule.Name == intent {
			return rule.Responses
		}
	}
	return nil
}
