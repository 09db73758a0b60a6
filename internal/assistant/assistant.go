// Package assistant answers health questions through a chat completion
// model. It is optional: without an API key every call reports
// ErrUnavailable.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	maxHistory  = 10
	maxTokens   = 500
	temperature = 0.7
)

var (
	ErrUnavailable     = errors.New("assistant not configured")
	ErrInvalidCategory = errors.New("invalid tips category")
)

// Categories lists the tip categories in the order they are offered.
var Categories = []string{"general", "medication", "exercise", "nutrition", "sleep", "stress"}

var tipPrompts = map[string]string{
	"general":    "Provide 3 practical daily health tips for general wellness.",
	"medication": "Provide 3 tips for proper medication management and adherence.",
	"exercise":   "Provide 3 tips for maintaining regular physical activity.",
	"nutrition":  "Provide 3 tips for healthy eating and nutrition.",
	"sleep":      "Provide 3 tips for better sleep hygiene and quality rest.",
	"stress":     "Provide 3 tips for managing stress and mental wellness.",
}

const systemPrompt = `You are a helpful health management assistant integrated into a health tracking application.

Your role is to provide general health information and wellness tips, help users understand their health data, suggest healthy lifestyle practices, answer questions about medications, appointments and health tracking, and offer support for health goals.

Always recommend consulting healthcare professionals for medical advice. Never provide specific medical diagnoses or treatment recommendations. Keep responses concise and practical.

The app tracks medications and dosages, health metrics (blood pressure, glucose, weight), medical appointments, and health reminders.

Current date and time: %s`

// Message is one chat turn sent to the model.
type Message struct {
	Role    string
	Content string
}

// Completion is the model's reply to a list of messages.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Completer sends one chat completion request.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message, maxTokens int, temperature float32) (Completion, error)
}

// Exchange is one earlier question and answer supplied by the client.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Reply is returned to the client for a successful chat.
type Reply struct {
	Response   string    `json:"response"`
	TokensUsed int       `json:"tokens_used"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
}

type Option func(*Service)

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

type Service struct {
	completer Completer
	model     string
	clock     clockwork.Clock
	log       *slog.Logger
}

// NewService builds the assistant. A nil completer leaves it unavailable.
func NewService(completer Completer, model string, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		model:     model,
		clock:     clockwork.NewRealClock(),
		log:       log.With("service", "assistant"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Available() bool {
	return s.completer != nil
}

func (s *Service) Model() string {
	return s.model
}

// Chat answers message given the client's recent history. Only the last
// ten exchanges are forwarded.
func (s *Service) Chat(ctx context.Context, message string, history []Exchange) (Reply, error) {
	if !s.Available() {
		return Reply{}, ErrUnavailable
	}

	now := s.clock.Now()
	messages := []Message{{Role: "system", Content: fmt.Sprintf(systemPrompt, now.Format("2006-01-02 15:04:05"))}}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	for _, ex := range history {
		if ex.User != "" {
			messages = append(messages, Message{Role: "user", Content: ex.User})
		}
		if ex.Assistant != "" {
			messages = append(messages, Message{Role: "assistant", Content: ex.Assistant})
		}
	}
	messages = append(messages, Message{Role: "user", Content: strings.TrimSpace(message)})

	completion, err := s.completer.Complete(ctx, s.model, messages, maxTokens, temperature)
	if err != nil {
		s.log.Error("chat completion", "error", err)
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}

	return Reply{
		Response:   completion.Content,
		TokensUsed: completion.PromptTokens + completion.CompletionTokens,
		Model:      s.model,
		Timestamp:  now,
	}, nil
}

// Tips asks for three short tips in category; an empty category means general.
func (s *Service) Tips(ctx context.Context, category string) (Reply, error) {
	if category == "" {
		category = "general"
	}
	prompt, ok := tipPrompts[category]
	if !ok {
		return Reply{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return s.Chat(ctx, prompt+" Keep each tip concise (1-2 sentences) and actionable.", nil)
}
