package handlers

import (
	"context"
	"fmt"
	"time"

	"morningbrief/internal/briefing"
	"morningbrief/internal/calendar"
	"morningbrief/internal/chat"
	"morningbrief/internal/config"
	"morningbrief/internal/llm"
	"morningbrief/internal/logger"
	"morningbrief/internal/observability"
	"morningbrief/internal/orchestrator"
	"morningbrief/internal/persistence"
	"morningbrief/internal/prefetch"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	locale    calendar.Locale
	store     persistence.Store
	analytics *observability.PostHogClient
	provider  llm.Provider // Nil unless the command needs the model
	briefings *briefing.Service
	chat      *chat.Service
	closers   []func()
}

// appOptions selects which parts of the stack a command needs.
type appOptions struct {
	withModel bool
	prefetch  string // Overrides prefetch.mode when set
}

// newApp loads configuration and wires the store, pre-fetch client, model
// provider and services. Call Close when done.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.Get()

	locale, err := calendar.LoadLocale(cfg.App.Timezone)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, locale: locale}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, func() { _ = store.Close() })

	analytics, err := observability.NewPostHogClient(cfg.Analytics.PostHog)
	if err != nil {
		log.Warn("Analytics disabled", "error", err)
		analytics = observability.Disabled()
	}
	a.analytics = analytics
	a.closers = append(a.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = analytics.Shutdown(shutdownCtx)
	})

	gemini := cfg.AI.Gemini
	if opts.withModel {
		if err := cfg.RequireGemini(); err != nil {
			a.Close()
			return nil, err
		}
		client, err := llm.NewClient(ctx, llm.Options{
			APIKey:        gemini.APIKey,
			Model:         gemini.Model,
			ChatModel:     gemini.ChatModel,
			Temperature:   gemini.Temperature,
			MaxTokens:     gemini.MaxTokens,
			ChatMaxTokens: gemini.ChatMaxTokens,
			Timeout:       duration(gemini.Timeout, llm.DefaultTimeout),
			Logger:        log,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.provider = llm.NewTracedClient(client, client.Model(), analytics)
	}

	oracle, err := calendar.NewScheduleOracle(
		cfg.Calendar.PolicyDecisionDates,
		cfg.Calendar.InflationReleaseDates,
		cfg.Calendar.ClubMatchDates,
		cfg.Calendar.NationalTeamDates,
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid calendar configuration: %w", err)
	}

	extra, err := prefetch.SourcesFromConfig(cfg.Prefetch.Extra)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid prefetch sources: %w", err)
	}

	mode := cfg.Prefetch.Mode
	if opts.prefetch != "" {
		mode = opts.prefetch
	}

	a.briefings = briefing.NewService(briefing.Options{
		Store:           store,
		Provider:        a.provider,
		Orchestrator:    orchestrator.New(nil, oracle),
		Fetcher:         a.newFetcher(ctx, locale),
		Analytics:       analytics,
		Locale:          locale,
		Logger:          log,
		PrefetchMode:    briefing.PrefetchMode(mode),
		ExtraSources:    extra,
		MaxContentChars: cfg.Prefetch.MaxContentChars,
		Model:           gemini.Model,
		Temperature:     gemini.Temperature,
		MaxOutputTokens: gemini.MaxTokens,
		SearchEnabled:   gemini.SearchEnabled,
	})

	if a.provider != nil {
		a.chat = chat.NewService(store, a.provider, chat.Options{
			Model:     gemini.ChatModel,
			MaxTokens: gemini.ChatMaxTokens,
			Analytics: analytics,
		})
	}

	return a, nil
}

// newFetcher builds the pre-fetch client, backed by Redis when configured.
// A Redis outage only costs the cache.
func (a *app) newFetcher(ctx context.Context, locale calendar.Locale) *prefetch.Client {
	pf := a.cfg.Prefetch
	opts := prefetch.Options{
		ReaderBaseURL: pf.ReaderBaseURL,
		APIKey:        pf.APIKey,
		UserAgent:     pf.UserAgent,
		Timeout:       duration(pf.Timeout, prefetch.DefaultTimeout),
		CacheTTL:      duration(pf.Cache.TTL, 6*time.Hour),
		Locale:        locale,
	}

	if pf.Cache.RedisURL != "" {
		cache, err := prefetch.NewRedisCache(ctx, pf.Cache.RedisURL)
		if err != nil {
			logger.Warn("Pre-fetch cache unavailable", "error", err)
		} else {
			opts.Cache = cache
			a.closers = append(a.closers, func() { _ = cache.Close() })
		}
	}

	return prefetch.NewClient(opts)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openStore opens the configured store and applies pending migrations to
// SQL backends.
func openStore(ctx context.Context, cfg *config.Config) (persistence.Store, error) {
	store, err := openStoreNoMigrate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlStore, ok := store.(*persistence.SQLStore); ok {
		if err := persistence.NewMigrationManager(sqlStore).Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return store, nil
}

func openStoreNoMigrate(ctx context.Context, cfg *config.Config) (persistence.Store, error) {
	store, err := persistence.Open(ctx, cfg.Database, persistence.DefaultsFromConfig(cfg.Farm))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func duration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}
