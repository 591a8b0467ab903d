package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ResponseGenerator produces reply text for a user message given the prior
// turns of the conversation. Implementations may be slow and may fail; the
// engine always has a canned fallback and never surfaces generator errors
// to the end user.
type ResponseGenerator interface {
	Generate(ctx context.Context, text string, priorTurns []string) (string, error)
}

const supportSystemPrompt = "You are a helpful and professional customer support AI assistant. " +
	"You help customers with their inquiries in a friendly, knowledgeable, and efficient manner. " +
	"Keep responses concise but helpful. If you don't know something, be honest about it and " +
	"offer to help find the right person or resource."

// How many prior turns are forwarded to the model.
const generatorHistoryTurns = 6

// OpenAIResponder generates replies through the OpenAI chat-completions API.
type OpenAIResponder struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIResponder builds a responder. Model defaults to gpt-3.5-turbo
// and timeout to 5 seconds when zero values are passed.
func NewOpenAIResponder(apiKey, model string, timeout time.Duration) *OpenAIResponder {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OpenAIResponder{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Generate builds the conversation from the session context and calls the
// completion API. The call is bounded by the configured timeout so a stalled
// upstream degrades to the engine's fallback instead of blocking the caller.
func (o *OpenAIResponder) Generate(ctx context.Context, text string, priorTurns []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: supportSystemPrompt},
	}

	turns := priorTurns
	if len(turns) > generatorHistoryTurns {
		turns = turns[len(turns)-generatorHistoryTurns:]
	}
	for _, turn := range turns {
		switch {
		case strings.HasPrefix(turn, "User: "):
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: strings.TrimPrefix(turn, "User: "),
			})
		case strings.HasPrefix(turn, "Bot: "):
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: strings.TrimPrefix(turn, "Bot: "),
			})
		}
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choice list")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
