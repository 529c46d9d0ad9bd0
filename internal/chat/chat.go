// Package chat answers follow-up questions grounded in a briefing.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"morningbrief/internal/core"
	"morningbrief/internal/llm"
	"morningbrief/internal/logger"
	"morningbrief/internal/observability"
	"morningbrief/internal/persistence"
	"morningbrief/internal/prompts"
	"morningbrief/internal/sections"
)

const (
	DefaultTemperature = float32(0.7)
	DefaultMaxTokens   = int32(1000)
)

// ErrInvalidRequest marks requests that cannot be answered as sent.
var ErrInvalidRequest = errors.New("invalid chat request")

// Request is a chat turn. The briefing is given either inline or by ID;
// inline content wins. Section narrows the context when SectionContext is
// empty.
type Request struct {
	BriefingID      string         `json:"briefingId"`
	BriefingContent string         `json:"briefingContent"`
	SectionContext  string         `json:"sectionContext"`
	Section         core.SectionID `json:"section"`
	Messages        []llm.Message  `json:"messages"`
}

// Reply is the assistant answer.
type Reply struct {
	Content            string   `json:"content"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// Options configures the chat service.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
	Analytics   *observability.PostHogClient
}

// Service answers chat requests.
type Service struct {
	store    persistence.Store
	provider llm.Provider
	opts     Options
	log      *slog.Logger
}

// NewService creates a chat service. store may be nil when every request
// carries its briefing content.
func NewService(store persistence.Store, provider llm.Provider, opts Options) *Service {
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Analytics == nil {
		opts.Analytics = observability.Disabled()
	}
	return &Service{store: store, provider: provider, opts: opts, log: logger.Get()}
}

// Reply answers the last user message of req.
func (s *Service) Reply(ctx context.Context, req Request) (*Reply, error) {
	if err := validateMessages(req.Messages); err != nil {
		return nil, err
	}

	content := req.BriefingContent
	if strings.TrimSpace(content) == "" && req.BriefingID != "" {
		if s.store == nil {
			return nil, fmt.Errorf("%w: briefing lookup is not available", ErrInvalidRequest)
		}
		b, err := s.store.GetBriefingByID(ctx, req.BriefingID)
		if err != nil {
			return nil, err
		}
		content = b.Content
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: briefing content is required", ErrInvalidRequest)
	}

	sectionContext := req.SectionContext
	if strings.TrimSpace(sectionContext) == "" && req.Section != "" {
		if text, ok := sections.Content(content, req.Section); ok {
			sectionContext = text
		}
	}

	start := time.Now()
	answer, err := s.provider.Chat(ctx, llm.ChatRequest{
		SystemPrompt: prompts.ChatSystemPrompt(content, sectionContext),
		Messages:     req.Messages,
		Model:        s.opts.Model,
		Temperature:  s.opts.Temperature,
		MaxTokens:    s.opts.MaxTokens,
	})
	if err != nil {
		s.log.Error("Chat reply failed", "error", err, "briefing_id", req.BriefingID)
		return nil, err
	}
	latency := time.Since(start).Milliseconds()
	_ = s.opts.Analytics.TrackChatMessage(ctx, req.BriefingID, string(req.Section), latency)
	s.log.Debug("Chat reply", "briefing_id", req.BriefingID, "section", req.Section, "latency_ms", latency)

	return &Reply{
		Content:            answer,
		SuggestedQuestions: sections.SuggestedQuestions(req.Section),
	}, nil
}

func validateMessages(messages []llm.Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("%w: at least one message is required", ErrInvalidRequest)
	}
	for i, m := range messages {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidRequest, i, m.Role)
		}
	}
	if last := messages[len(messages)-1]; last.Role != llm.RoleUser || strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: the last message must be a non-empty user message", ErrInvalidRequest)
	}
	return nil
}
