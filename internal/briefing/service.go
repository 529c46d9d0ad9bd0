// Package briefing runs the daily generation pipeline: policy check,
// orchestration, pre-fetch, prompting, generation, validation and
// persistence.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"morningbrief/internal/calendar"
	"morningbrief/internal/core"
	"morningbrief/internal/cost"
	"morningbrief/internal/llm"
	"morningbrief/internal/logger"
	"morningbrief/internal/observability"
	"morningbrief/internal/orchestrator"
	"morningbrief/internal/persistence"
	"morningbrief/internal/prefetch"
	"morningbrief/internal/prompts"
	"morningbrief/internal/sections"
	"morningbrief/internal/validation"
)

// SummaryLength is the number of leading characters kept as summary.
const SummaryLength = 300

// PrefetchMode selects which sources are fetched before generation.
type PrefetchMode string

const (
	PrefetchQuick PrefetchMode = "quick"
	PrefetchFull  PrefetchMode = "full"
	PrefetchOff   PrefetchMode = "off"
)

// Fetcher retrieves grounding sources.
type Fetcher interface {
	QuickPreFetch(ctx context.Context) map[string]prefetch.FetchResult
	FullPreFetch(ctx context.Context, extra ...prefetch.Source) map[string]prefetch.FetchResult
}

// Options wires the service dependencies.
type Options struct {
	Store        persistence.Store
	Provider     llm.Provider
	Orchestrator *orchestrator.Orchestrator
	Fetcher      Fetcher // Nil disables pre-fetch
	Analytics    *observability.PostHogClient
	Locale       calendar.Locale
	Clock        calendar.Clock
	Logger       *slog.Logger

	PrefetchMode    PrefetchMode
	ExtraSources    []prefetch.Source
	MaxContentChars int

	Model           string
	Temperature     float32
	MaxOutputTokens int32
	SearchEnabled   bool
}

// Service generates and reports on briefings.
type Service struct {
	opts Options
	log  *slog.Logger
}

// Status is the generation state for the current locale day.
type Status struct {
	Today          core.Date      `json:"today"`
	CanGenerate    bool           `json:"canGenerate"`
	IsConfigured   bool           `json:"isConfigured"`
	LatestBriefing *core.Briefing `json:"latestBriefing"`
}

// Prepared holds the prompts for a day before the model is called.
type Prepared struct {
	Date         core.Date
	Farm         core.FarmEconomics
	Plan         *orchestrator.Result
	SystemPrompt string
	UserPrompt   string
	Fetched      int
	PreFetch     *core.PreFetchError // Nil when every source succeeded
	Estimate     cost.Estimate       // Projected cost at the configured output budget
}

// NewService creates a service. Zero options fall back to defaults.
func NewService(opts Options) *Service {
	if opts.Orchestrator == nil {
		opts.Orchestrator = orchestrator.New(nil, nil)
	}
	if opts.Analytics == nil {
		opts.Analytics = observability.Disabled()
	}
	if opts.Clock == nil {
		opts.Clock = calendar.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	if opts.PrefetchMode == "" {
		opts.PrefetchMode = PrefetchQuick
	}
	if opts.MaxContentChars <= 0 {
		opts.MaxContentChars = prefetch.DefaultMaxContentChars
	}
	if opts.Model == "" {
		opts.Model = llm.DefaultModel
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = llm.DefaultMaxTokens
	}
	return &Service{opts: opts, log: opts.Logger}
}

// Today returns the current date in the service locale.
func (s *Service) Today() core.Date {
	return s.opts.Locale.Today(s.opts.Clock)
}

// CanGenerateToday reports whether no briefing exists for the locale day.
func (s *Service) CanGenerateToday(ctx context.Context) (bool, error) {
	has, err := s.opts.Store.HasBriefingOn(ctx, s.Today())
	if err != nil {
		return false, err
	}
	return !has, nil
}

// Status reports whether today's briefing can be generated.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	today := s.Today()
	has, err := s.opts.Store.HasBriefingOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check today's briefing: %w", err)
	}
	settings, err := s.opts.Store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	latest, err := s.opts.Store.GetLatestBriefing(ctx)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return nil, fmt.Errorf("failed to load latest briefing: %w", err)
	}
	return &Status{
		Today:          today,
		CanGenerate:    !has,
		IsConfigured:   settings.IsConfigured,
		LatestBriefing: latest,
	}, nil
}

// Prepare loads the farm economics, orchestrates the day, optionally
// pre-fetches sources and builds both prompts. Pre-fetch failures are
// reported in the result and never returned as an error.
func (s *Service) Prepare(ctx context.Context, today core.Date, withPrefetch bool) (*Prepared, error) {
	settings, err := s.opts.Store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	farm, err := settings.FarmEconomics()
	if err != nil {
		return nil, err
	}

	plan, err := s.opts.Orchestrator.Orchestrate(today, farm)
	if err != nil {
		return nil, err
	}

	p := &Prepared{Date: today, Farm: farm, Plan: plan}
	var formatted []prefetch.Formatted
	if withPrefetch {
		formatted, p.Fetched, p.PreFetch = s.prefetch(ctx)
	}

	p.SystemPrompt = prompts.SystemPrompt(today)
	p.UserPrompt = prompts.BuildUserPrompt(prompts.UserPromptInput{
		Today:      today,
		Farm:       farm,
		Plan:       plan,
		PreFetched: formatted,
	})
	p.Estimate = cost.EstimatePrompt(s.opts.Model, p.SystemPrompt, p.UserPrompt, int(s.opts.MaxOutputTokens))
	return p, nil
}

func (s *Service) prefetch(ctx context.Context) ([]prefetch.Formatted, int, *core.PreFetchError) {
	if s.opts.Fetcher == nil || s.opts.PrefetchMode == PrefetchOff {
		return nil, 0, nil
	}

	var results map[string]prefetch.FetchResult
	if s.opts.PrefetchMode == PrefetchFull {
		results = s.opts.Fetcher.FullPreFetch(ctx, s.opts.ExtraSources...)
	} else {
		results = s.opts.Fetcher.QuickPreFetch(ctx)
	}

	formatted := prefetch.FormatForPrompt(results, s.opts.MaxContentChars, s.opts.Locale)
	var pfErr *core.PreFetchError
	if failed := prefetch.Failures(results); len(failed) > 0 {
		pfErr = &core.PreFetchError{Failed: failed}
		s.log.Warn("Pre-fetch incomplete, continuing with web search only",
			"failed", len(failed), "succeeded", len(formatted), "sources", failed)
	}
	return formatted, len(formatted), pfErr
}

// Generate produces, validates and stores today's briefing.
//
// It fails fast with *core.RateLimitError when today's briefing exists and
// with *core.ConfigurationError when the farm economics are unusable, both
// before any network call. Model failures are *core.GenerationError and
// leave nothing persisted. Corrections are applied only when validation
// found hard errors.
func (s *Service) Generate(ctx context.Context) (*core.Briefing, *validation.Result, error) {
	start := time.Now()
	today := s.Today()

	has, err := s.opts.Store.HasBriefingOn(ctx, today)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check today's briefing: %w", err)
	}
	if has {
		return nil, nil, &core.RateLimitError{Date: today}
	}

	prepared, err := s.Prepare(ctx, today, true)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("Generating briefing",
		"date", today.String(),
		"model", s.opts.Model,
		"prefetched", prepared.Fetched,
		"system_chars", utf8.RuneCountInString(prepared.SystemPrompt),
		"user_chars", utf8.RuneCountInString(prepared.UserPrompt))

	completion, err := s.opts.Provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt:    prepared.SystemPrompt,
		UserPrompt:      prepared.UserPrompt,
		Model:           s.opts.Model,
		Temperature:     s.opts.Temperature,
		MaxOutputTokens: s.opts.MaxOutputTokens,
		SearchEnabled:   s.opts.SearchEnabled,
	})
	if err != nil {
		var genErr *core.GenerationError
		if !errors.As(err, &genErr) {
			err = &core.GenerationError{Message: "falha na chamada ao modelo", Err: err}
		}
		_ = s.opts.Analytics.TrackError(ctx, "generation_error", err.Error(), "briefing")
		return nil, nil, err
	}

	content := completion.Text
	result := validation.ValidateOn(content, today)
	s.log.Info("Briefing validated",
		"valid", result.Valid,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
		"future_dates", result.Stats.FutureDates,
		"prices_out_of_range", result.Stats.PricesOutOfRange)
	s.log.Debug("Validation report", "report", validation.Report(result))

	corrected := 0
	if !result.Valid && len(result.Corrections) > 0 {
		content = validation.ApplyCorrections(content, result.Corrections)
		corrected = len(result.Corrections)
		s.log.Info("Applied automatic corrections", "count", corrected)
	}

	b := &core.Briefing{
		ID:         uuid.New().String(),
		Title:      Title(today),
		Content:    content,
		Summary:    Summary(content),
		ReportDate: today,
		ModelID:    completion.ModelID,
		Sections:   sections.Detect(content),
		CreatedAt:  s.opts.Clock.Now().UTC(),
	}
	if completion.Usage != nil {
		in, out := completion.Usage.InputTokens, completion.Usage.OutputTokens
		b.InputTokens, b.OutputTokens = &in, &out
	}

	if err := s.opts.Store.SaveBriefing(ctx, b); err != nil {
		if errors.Is(err, persistence.ErrBriefingExists) {
			return nil, nil, &core.RateLimitError{Date: today}
		}
		return nil, nil, fmt.Errorf("failed to save briefing: %w", err)
	}

	s.track(ctx, b, prepared, result, corrected, time.Since(start))
	s.log.Info("Briefing generated",
		"id", b.ID,
		"date", today.String(),
		"sections", len(b.Sections),
		"duration_ms", time.Since(start).Milliseconds())
	return b, &result, nil
}

func (s *Service) track(ctx context.Context, b *core.Briefing, p *Prepared, result validation.Result, corrected int, elapsed time.Duration) {
	event := observability.GenerationEvent{
		BriefingID:     b.ID,
		ReportDate:     b.ReportDate.String(),
		Model:          b.ModelID,
		DurationMs:     elapsed.Milliseconds(),
		SourcesFetched: p.Fetched,
		Sections:       len(b.Sections),
	}
	if p.PreFetch != nil {
		event.SourcesFailed = len(p.PreFetch.Failed)
	}
	if b.InputTokens != nil && b.OutputTokens != nil {
		event.InputTokens, event.OutputTokens = *b.InputTokens, *b.OutputTokens
		event.CostUSD = cost.EstimateCost(b.ModelID, *b.InputTokens, *b.OutputTokens).USD
	}
	if err := s.opts.Analytics.TrackBriefingGenerated(ctx, event); err != nil {
		s.log.Warn("Failed to track briefing", "error", err)
	}
	_ = s.opts.Analytics.TrackValidation(ctx, observability.ValidationEvent{
		ReportDate:         b.ReportDate.String(),
		Valid:              result.Valid,
		Errors:             len(result.Errors),
		Warnings:           len(result.Warnings),
		CorrectionsApplied: corrected,
	})
}

// Title names the briefing of a report date.
func Title(date core.Date) string {
	return "Briefing Diário - " + date.String()
}

// Summary returns the first SummaryLength characters of content.
func Summary(content string) string {
	if utf8.RuneCountInString(content) <= SummaryLength {
		return content
	}
	return string([]rune(content)[:SummaryLength])
}
