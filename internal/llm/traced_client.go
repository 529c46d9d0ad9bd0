package llm

import (
	"context"
	"log/slog"
	"time"

	"morningbrief/internal/cost"
	"morningbrief/internal/logger"
	"morningbrief/internal/observability"
)

// TracedClient wraps a Provider with analytics and cost logging.
type TracedClient struct {
	provider Provider
	model    string
	posthog  *observability.PostHogClient
	log      *slog.Logger
}

// NewTracedClient decorates provider. model names the default model for
// cost lookup when a call does not set one.
func NewTracedClient(provider Provider, model string, posthog *observability.PostHogClient) *TracedClient {
	if posthog == nil {
		posthog = observability.Disabled()
	}
	return &TracedClient{provider: provider, model: model, posthog: posthog, log: logger.Get()}
}

// Complete generates text and records the call
func (tc *TracedClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	start := time.Now()
	result, err := tc.provider.Complete(ctx, req)
	latencyMs := time.Since(start).Milliseconds()

	if err != nil {
		// The briefing service reports the failure once it is classified.
		tc.log.Warn("LLM call failed", "operation", "generate", "latency_ms", latencyMs, "error", err)
		return nil, err
	}

	in, out := EstimateUsage(req.SystemPrompt+req.UserPrompt, result.Text)
	if result.Usage != nil {
		in, out = result.Usage.InputTokens, result.Usage.OutputTokens
	}
	estimate := cost.EstimateCost(firstNonEmpty(result.ModelID, req.Model, tc.model), in, out)
	tc.log.Info("LLM call",
		"operation", "generate",
		"model", estimate.Model,
		"input_tokens", in,
		"output_tokens", out,
		"cost_usd", estimate.USD,
		"latency_ms", latencyMs)
	_ = tc.posthog.TrackLLMCall(ctx, estimate.Model, "generate", in+out, latencyMs, estimate.USD)
	return result, nil
}

// Chat answers a conversation and records the call
func (tc *TracedClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	start := time.Now()
	reply, err := tc.provider.Chat(ctx, req)
	latencyMs := time.Since(start).Milliseconds()

	if err != nil {
		_ = tc.posthog.TrackError(ctx, "chat_error", err.Error(), "llm")
		return "", err
	}

	prompt := req.SystemPrompt
	for _, m := range req.Messages {
		prompt += m.Content
	}
	in, out := EstimateUsage(prompt, reply)
	estimate := cost.EstimateCost(firstNonEmpty(req.Model, tc.model), in, out)
	_ = tc.posthog.TrackLLMCall(ctx, estimate.Model, "chat", in+out, latencyMs, estimate.USD)
	return reply, nil
}

// EstimateUsage approximates token counts when the provider reports none.
func EstimateUsage(prompt, completion string) (int, int) {
	return cost.EstimateTokenCount(prompt), cost.EstimateTokenCount(completion)
}
