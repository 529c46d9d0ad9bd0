// Package observability sends product analytics events to PostHog.
package observability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/posthog/posthog-go"

	"morningbrief/internal/config"
	"morningbrief/internal/logger"
)

// SystemDistinctID identifies server-side events of the single-user app.
const SystemDistinctID = "system"

// EventProperties contains properties for an event
type EventProperties map[string]interface{}

// Enqueuer is the part of the PostHog SDK client used here.
type Enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// PostHogClient wraps the PostHog SDK. A disabled client accepts every
// call and sends nothing.
type PostHogClient struct {
	client  Enqueuer
	enabled bool
	log     *slog.Logger
}

// NewPostHogClient creates an analytics client from configuration.
func NewPostHogClient(cfg config.PostHogConfig) (*PostHogClient, error) {
	if !cfg.Enabled {
		return Disabled(), nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PostHog enabled but missing API key")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return &PostHogClient{client: client, enabled: true, log: logger.Get()}, nil
}

// NewWithEnqueuer creates an enabled client that sends through e.
func NewWithEnqueuer(e Enqueuer) *PostHogClient {
	return &PostHogClient{client: e, enabled: true, log: logger.Get()}
}

// Disabled returns a client that drops every event.
func Disabled() *PostHogClient {
	return &PostHogClient{log: logger.Get()}
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p != nil && p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(ctx context.Context, distinctID, event string, properties EventProperties) error {
	if !p.IsEnabled() {
		return nil
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	if err := p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	}); err != nil {
		p.log.Warn("Failed to enqueue analytics event", "event", event, "error", err)
		return fmt.Errorf("failed to enqueue %s: %w", event, err)
	}
	return nil
}

// TrackBriefingGenerated records a persisted briefing.
func (p *PostHogClient) TrackBriefingGenerated(ctx context.Context, e GenerationEvent) error {
	return p.Capture(ctx, SystemDistinctID, "briefing_generated", EventProperties{
		"briefing_id":    e.BriefingID,
		"report_date":    e.ReportDate,
		"model":          e.Model,
		"input_tokens":   e.InputTokens,
		"output_tokens":  e.OutputTokens,
		"cost_usd":       e.CostUSD,
		"duration_ms":    e.DurationMs,
		"sources_ok":     e.SourcesFetched,
		"sources_failed": e.SourcesFailed,
		"sections":       e.Sections,
	})
}

// TrackValidation records the outcome of the hallucination scan.
func (p *PostHogClient) TrackValidation(ctx context.Context, e ValidationEvent) error {
	return p.Capture(ctx, SystemDistinctID, "briefing_validation", EventProperties{
		"report_date":         e.ReportDate,
		"valid":               e.Valid,
		"errors":              e.Errors,
		"warnings":            e.Warnings,
		"corrections_applied": e.CorrectionsApplied,
	})
}

// TrackChatMessage records a follow-up question.
func (p *PostHogClient) TrackChatMessage(ctx context.Context, briefingID, section string, latencyMs int64) error {
	return p.Capture(ctx, SystemDistinctID, "chat_message", EventProperties{
		"briefing_id": briefingID,
		"section":     section,
		"latency_ms":  latencyMs,
	})
}

// TrackLLMCall tracks model calls for cost and performance monitoring
func (p *PostHogClient) TrackLLMCall(ctx context.Context, model, operation string, tokens int, latencyMs int64, cost float64) error {
	return p.Capture(ctx, SystemDistinctID, "llm_call", EventProperties{
		"model":      model,
		"operation":  operation, // "generate", "chat"
		"tokens":     tokens,
		"latency_ms": latencyMs,
		"cost":       cost,
	})
}

// TrackError tracks when an error occurs
func (p *PostHogClient) TrackError(ctx context.Context, errorType, errorMessage, component string) error {
	return p.Capture(ctx, SystemDistinctID, "error_occurred", EventProperties{
		"error_type":    errorType,
		"error_message": errorMessage,
		"component":     component,
	})
}

// Shutdown flushes pending events and closes the client.
func (p *PostHogClient) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}
	return p.client.Close()
}

// GenerationEvent describes a successful briefing generation.
type GenerationEvent struct {
	BriefingID     string
	ReportDate     string
	Model          string
	InputTokens    int
	OutputTokens   int
	CostUSD        float64
	DurationMs     int64
	SourcesFetched int
	SourcesFailed  int
	Sections       int
}

// ValidationEvent describes one validation pass.
type ValidationEvent struct {
	ReportDate         string
	Valid              bool
	Errors             int
	Warnings           int
	CorrectionsApplied int
}
