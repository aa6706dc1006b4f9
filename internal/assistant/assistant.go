// Package assistant wraps the generative model used for product copy and the
// shopping chat. Every failure degrades to a fixed placeholder text.
package assistant

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrMissingAPIKey is returned by NewGemini when no key is configured.
var ErrMissingAPIKey = errors.New("assistant: API key is missing")

// Placeholder replies.
const (
	OfflineText           = "I'm offline right now (API Key missing)."
	ConnectionTroubleText = "Sorry, I'm having trouble connecting to the server right now."
	DescriptionFailedText = "Failed to generate description. Please try again."
)

const DefaultTimeout = 30 * time.Second

// Speaker roles in a chat transcript.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a chat transcript.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Model is a text generator. Gemini is the production implementation.
type Model interface {
	GenerateDescription(ctx context.Context, title, category, features string) (string, error)
	Chat(ctx context.Context, history []Message, message string) (string, error)
}

// Reply is what the caller shows to the user. Fallback is set when Text is a
// placeholder rather than model output.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// Service calls a Model with a deadline and never fails. A nil Model means
// the assistant is offline.
type Service struct {
	model   Model
	timeout time.Duration
	log     *zap.Logger
}

func NewService(model Model, timeout time.Duration, log *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{model: model, timeout: timeout, log: log}
}

// Online reports whether a model is configured.
func (s *Service) Online() bool { return s.model != nil }

func (s *Service) Describe(ctx context.Context, title, category, features string) Reply {
	if s.model == nil {
		return Reply{Text: DescriptionFailedText, Fallback: true}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.model.GenerateDescription(ctx, title, category, features)
	if err != nil || text == "" {
		s.log.Warn("description generation failed", zap.String("title", title), zap.Error(err))
		return Reply{Text: DescriptionFailedText, Fallback: true}
	}
	return Reply{Text: text}
}

// Chat sends message after history. The history is passed to the model as is;
// the caller appends both turns afterwards.
func (s *Service) Chat(ctx context.Context, history []Message, message string) Reply {
	if s.model == nil {
		return Reply{Text: OfflineText, Fallback: true}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.model.Chat(ctx, history, message)
	if err != nil || text == "" {
		s.log.Warn("chat failed", zap.Int("history", len(history)), zap.Error(err))
		return Reply{Text: ConnectionTroubleText, Fallback: true}
	}
	return Reply{Text: text}
}
