package core

import (
	"errors"
	"fmt"
)

// UserFacing is implemented by errors that carry a Portuguese message safe
// to show to the user.
type UserFacing interface {
	error
	UserMessage() string
}

// ConfigurationError reports missing or invalid farm economics. It is raised
// before any external call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) UserMessage() string {
	return "Configure o custo base da fazenda primeiro."
}

// RateLimitError reports that a briefing already exists for the locale date.
type RateLimitError struct {
	Date Date
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("briefing already generated for %s", e.Date)
}

func (e *RateLimitError) UserMessage() string {
	return "Você já gerou o briefing de hoje. Volte amanhã!"
}

// GenerationError reports a model provider failure or unusable output. It is
// never retried automatically.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Err)
	}
	return "generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) UserMessage() string {
	return "Erro ao gerar briefing: " + e.Message
}

// PreFetchError reports that grounding sources could not be retrieved.
// Generation proceeds without them.
type PreFetchError struct {
	Failed map[string]string // source key -> error
}

func (e *PreFetchError) Error() string {
	return fmt.Sprintf("pre-fetch failed for %d source(s)", len(e.Failed))
}

func (e *PreFetchError) UserMessage() string {
	return "Não foi possível carregar as fontes diretas; o briefing usará apenas a pesquisa web."
}

// UserMessage extracts a user-facing message from err, or returns fallback.
func UserMessage(err error, fallback string) string {
	var uf UserFacing
	if errors.As(err, &uf) {
		return uf.UserMessage()
	}
	return fallback
}
