// Package llm talks to the generative model that writes briefings and
// answers chat questions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"morningbrief/internal/core"
	"morningbrief/internal/logger"
)

const (
	// DefaultModel is the Gemini model used for briefing generation.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTemperature applies to generation and chat.
	DefaultTemperature = float32(0.7)
	// DefaultMaxTokens bounds a briefing.
	DefaultMaxTokens = int32(16384)
	// DefaultChatMaxTokens bounds a chat reply.
	DefaultChatMaxTokens = int32(1000)
	// DefaultTimeout is the deadline of a single model call.
	DefaultTimeout = 120 * time.Second

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider generates text. Implementations must not retry on their own.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// CompletionRequest is a single-shot generation. Zero values fall back to
// the provider defaults.
type CompletionRequest struct {
	SystemPrompt    string
	UserPrompt      string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	SearchEnabled   bool // Ground the answer with web search
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Completion is the generated text and its metadata.
type Completion struct {
	Text    string
	Usage   *Usage // Nil when the provider reported no usage
	ModelID string
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is a multi-turn conversation under a system prompt.
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	Model        string
	Temperature  float32
	MaxTokens    int32
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures a Gemini client.
type Options struct {
	APIKey        string
	Model         string
	ChatModel     string
	Temperature   float32
	MaxTokens     int32
	ChatMaxTokens int32
	Timeout       time.Duration
	Logger        *slog.Logger
}

// Client is the Gemini implementation of Provider.
type Client struct {
	models        generator
	model         string
	chatModel     string
	temperature   float32
	maxTokens     int32
	chatMaxTokens int32
	timeout       time.Duration
	log           *slog.Logger
}

// NewClient creates a Gemini client for the Gemini API backend.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newClient(gClient.Models, opts), nil
}

func newClient(models generator, opts Options) *Client {
	c := &Client{
		models:        models,
		model:         opts.Model,
		chatModel:     opts.ChatModel,
		temperature:   opts.Temperature,
		maxTokens:     opts.MaxTokens,
		chatMaxTokens: opts.ChatMaxTokens,
		timeout:       opts.Timeout,
		log:           opts.Logger,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.chatModel == "" {
		c.chatModel = c.model
	}
	if c.temperature <= 0 {
		c.temperature = DefaultTemperature
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.chatMaxTokens <= 0 {
		c.chatMaxTokens = DefaultChatMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	return c
}

// Model returns the configured generation model.
func (c *Client) Model() string { return c.model }

// Complete runs one generation call. Any failure, including an empty
// answer, is returned as a *core.GenerationError.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := firstNonEmpty(req.Model, c.model)
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if req.SearchEnabled {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: req.UserPrompt}},
		Role:  RoleUser,
	}}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, generationError(err, c.timeout)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, &core.GenerationError{Message: "o modelo retornou uma resposta vazia"}
	}

	completion := &Completion{
		Text:    text,
		Usage:   usageOf(resp),
		ModelID: firstNonEmpty(resp.ModelVersion, model),
	}
	c.log.Info("Generation completed",
		"model", completion.ModelID,
		"search", req.SearchEnabled,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds())
	return completion, nil
}

// Chat answers the last user message of a conversation.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("chat requires at least one message")
	}

	model := firstNonEmpty(req.Model, c.chatModel)
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.chatMaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := RoleUser
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: m.Content}},
			Role:  role,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", generationError(err, c.timeout)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &core.GenerationError{Message: "o modelo retornou uma resposta vazia"}
	}
	return text, nil
}

func generationError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.GenerationError{Message: fmt.Sprintf("tempo limite de %s excedido", timeout), Err: err}
	}
	return &core.GenerationError{Message: "falha na chamada ao modelo", Err: err}
}

func usageOf(resp *genai.GenerateContentResponse) *Usage {
	if resp.UsageMetadata == nil {
		return nil
	}
	return &Usage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
