package briefing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/posthog/posthog-go"

	"morningbrief/internal/calendar"
	"morningbrief/internal/core"
	"morningbrief/internal/llm"
	"morningbrief/internal/observability"
	"morningbrief/internal/persistence"
	"morningbrief/internal/prefetch"
)

const generated = `## ABERTURA PERSONALIZADA

Bom dia, Dr. Orestes.

## MERCADO DE CAFÉ

CEPEA Arábica R$ 2.225,39/saca (fechamento 09/01/2026, Fonte: CEPEA).
Próxima colheita prevista para 15/03/2099.

## FONTES

- cepea.org.br
`

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	requests []llm.CompletionRequest
	text     string
	err      error
	usage    *llm.Usage
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.text, Usage: f.usage, ModelID: "gemini-2.5-flash-001"}, nil
}

func (f *fakeProvider) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	return "", errors.New("not used")
}

type fakeFetcher struct {
	quick, full int
	results     map[string]prefetch.FetchResult
}

func (f *fakeFetcher) QuickPreFetch(ctx context.Context) map[string]prefetch.FetchResult {
	f.quick++
	return f.results
}

func (f *fakeFetcher) FullPreFetch(ctx context.Context, extra ...prefetch.Source) map[string]prefetch.FetchResult {
	f.full++
	return f.results
}

func saoPaulo(t *testing.T) calendar.Locale {
	t.Helper()
	locale, err := calendar.LoadLocale("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocale failed: %v", err)
	}
	return locale
}

// monday is 2026-01-12 09:00 in São Paulo.
func monday(t *testing.T) calendar.FixedClock {
	return calendar.FixedClock{T: time.Date(2026, time.January, 12, 12, 0, 0, 0, time.UTC)}
}

func configuredStore(t *testing.T) *persistence.MemoryStore {
	t.Helper()
	store := persistence.NewMemoryStore(persistence.Defaults{LogisticsCost: 80})
	production := 1520.0
	if _, err := store.SaveSettings(context.Background(), core.SettingsUpdate{ProductionCost: &production}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	return store
}

func newTestService(t *testing.T, store persistence.Store, provider llm.Provider, fetcher Fetcher) *Service {
	t.Helper()
	opts := Options{
		Store:         store,
		Provider:      provider,
		Locale:        saoPaulo(t),
		Clock:         monday(t),
		SearchEnabled: true,
	}
	if fetcher != nil {
		opts.Fetcher = fetcher
	}
	return NewService(opts)
}

func TestGenerateHappyPath(t *testing.T) {
	store := configuredStore(t)
	provider := &fakeProvider{text: generated, usage: &llm.Usage{InputTokens: 9000, OutputTokens: 4000}}
	fetcher := &fakeFetcher{results: map[string]prefetch.FetchResult{
		"cepea_coffee": {Key: "cepea_coffee", URL: "https://cepea.org.br/cafe", Content: "Indicador: R$ 2.225,39", Success: true},
		"spfc_news":    {Key: "spfc_news", URL: "https://saopaulofc.net", Success: false, Error: "HTTP 503: Service Unavailable"},
	}}
	svc := newTestService(t, store, provider, fetcher)

	b, result, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if b.Title != "Briefing Diário - 2026-01-12" {
		t.Errorf("Unexpected title %q", b.Title)
	}
	if b.ReportDate != core.NewDate(2026, time.January, 12) {
		t.Errorf("Expected report date 2026-01-12, got %s", b.ReportDate)
	}
	if b.ModelID != "gemini-2.5-flash-001" {
		t.Errorf("Unexpected model %s", b.ModelID)
	}
	if b.InputTokens == nil || *b.InputTokens != 9000 || b.OutputTokens == nil || *b.OutputTokens != 4000 {
		t.Error("Expected usage to be recorded")
	}
	if len(b.Sections) != 3 || b.Sections[1] != core.SectionCoffee {
		t.Errorf("Unexpected sections %v", b.Sections)
	}

	if result.Valid || result.Stats.FutureDates != 1 {
		t.Errorf("Expected one future date error, got %+v", result)
	}
	if strings.Contains(b.Content, "15/03/2099") || !strings.Contains(b.Content, "prevista para 12/01/2026") {
		t.Error("Expected the future date to be corrected to the last business day")
	}

	if fetcher.quick != 1 || fetcher.full != 0 {
		t.Errorf("Expected one quick pre-fetch, got quick=%d full=%d", fetcher.quick, fetcher.full)
	}
	req := provider.requests[0]
	if !strings.Contains(req.UserPrompt, "### CEPEA_COFFEE") {
		t.Error("Expected pre-fetched content in the user prompt")
	}
	if strings.Contains(req.UserPrompt, "### SPFC_NEWS") {
		t.Error("Expected failed sources to be left out of the prompt")
	}
	if !req.SearchEnabled || req.SystemPrompt == "" {
		t.Error("Expected search grounding and a system prompt")
	}

	stored, err := store.GetBriefingByID(context.Background(), b.ID)
	if err != nil || stored.Content != b.Content {
		t.Errorf("Expected the corrected briefing to be persisted, got %v", err)
	}
}

func TestGenerateKeepsValidContent(t *testing.T) {
	text := strings.Replace(generated, "Próxima colheita prevista para 15/03/2099.\n", "", 1)
	provider := &fakeProvider{text: text}
	svc := newTestService(t, configuredStore(t), provider, nil)

	b, result, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("Expected valid result, got errors %v", result.Errors)
	}
	if b.Content != text {
		t.Error("Expected content to be stored unchanged")
	}
	if b.InputTokens != nil || b.OutputTokens != nil {
		t.Error("Expected nil usage when the provider reports none")
	}
}

func TestGenerateRateLimit(t *testing.T) {
	store := configuredStore(t)
	provider := &fakeProvider{text: generated}
	svc := newTestService(t, store, provider, nil)

	if _, _, err := svc.Generate(context.Background()); err != nil {
		t.Fatalf("First Generate failed: %v", err)
	}
	_, _, err := svc.Generate(context.Background())
	var rlErr *core.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("Expected RateLimitError, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("Expected the model to be called once, got %d", provider.calls)
	}

	ok, err := svc.CanGenerateToday(context.Background())
	if err != nil || ok {
		t.Errorf("Expected CanGenerateToday false, got %v (%v)", ok, err)
	}

	tomorrow := NewService(Options{
		Store:    store,
		Provider: provider,
		Locale:   saoPaulo(t),
		Clock:    calendar.FixedClock{T: time.Date(2026, time.January, 13, 3, 30, 0, 0, time.UTC)},
	})
	ok, _ = tomorrow.CanGenerateToday(context.Background())
	if !ok {
		t.Error("Expected generation to be allowed after the locale day rolls over")
	}
}

func TestGenerateLateEveningUsesLocaleDay(t *testing.T) {
	store := configuredStore(t)
	// 2026-01-13 01:00 UTC is still the 12th in São Paulo.
	svc := NewService(Options{
		Store:    store,
		Provider: &fakeProvider{text: generated},
		Locale:   saoPaulo(t),
		Clock:    calendar.FixedClock{T: time.Date(2026, time.January, 13, 1, 0, 0, 0, time.UTC)},
	})
	b, _, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if b.ReportDate != core.NewDate(2026, time.January, 12) {
		t.Errorf("Expected locale date 2026-01-12, got %s", b.ReportDate)
	}
}

func TestGenerateRequiresConfiguration(t *testing.T) {
	provider := &fakeProvider{text: generated}
	fetcher := &fakeFetcher{}
	store := persistence.NewMemoryStore(persistence.Defaults{LogisticsCost: 80})
	svc := newTestService(t, store, provider, fetcher)

	_, _, err := svc.Generate(context.Background())
	var cfgErr *core.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if provider.calls != 0 || fetcher.quick != 0 {
		t.Error("Expected no external call before configuration is valid")
	}
}

func TestGenerateProviderFailurePersistsNothing(t *testing.T) {
	store := configuredStore(t)
	provider := &fakeProvider{err: errors.New("503 overloaded")}
	svc := newTestService(t, store, provider, nil)

	_, _, err := svc.Generate(context.Background())
	var genErr *core.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "503 overloaded") {
		t.Errorf("Expected provider message to be kept, got %v", err)
	}
	history, _ := store.GetBriefingHistory(context.Background(), 0)
	if len(history) != 0 {
		t.Errorf("Expected nothing persisted, got %d briefings", len(history))
	}
	if ok, _ := svc.CanGenerateToday(context.Background()); !ok {
		t.Error("Expected a retry to be allowed after a failed generation")
	}
}

type recordingEnqueuer struct {
	events []posthog.Capture
}

func (r *recordingEnqueuer) Enqueue(m posthog.Message) error {
	if c, ok := m.(posthog.Capture); ok {
		r.events = append(r.events, c)
	}
	return nil
}

func (r *recordingEnqueuer) Close() error { return nil }

func (r *recordingEnqueuer) errorsOfType(errorType string) int {
	n := 0
	for _, e := range r.events {
		if e.Event == "error_occurred" && e.Properties["error_type"] == errorType {
			n++
		}
	}
	return n
}

func TestGenerateProviderFailureTrackedOnce(t *testing.T) {
	recorder := &recordingEnqueuer{}
	analytics := observability.NewWithEnqueuer(recorder)
	provider := llm.NewTracedClient(&fakeProvider{err: errors.New("503 overloaded")}, "gemini-2.5-flash", analytics)

	svc := NewService(Options{
		Store:     configuredStore(t),
		Provider:  provider,
		Analytics: analytics,
		Locale:    saoPaulo(t),
		Clock:     monday(t),
	})

	if _, _, err := svc.Generate(context.Background()); err == nil {
		t.Fatal("Expected generation to fail")
	}
	if got := recorder.errorsOfType("generation_error"); got != 1 {
		t.Errorf("Expected 1 generation_error event, got %d", got)
	}
}

type racingStore struct {
	*persistence.MemoryStore
}

// HasBriefingOn always answers false so both callers reach SaveBriefing.
func (racingStore) HasBriefingOn(ctx context.Context, date core.Date) (bool, error) {
	return false, nil
}

func TestGenerateConcurrentSaveBecomesRateLimit(t *testing.T) {
	store := racingStore{configuredStore(t)}
	svc := newTestService(t, store, &fakeProvider{text: generated}, nil)

	if _, _, err := svc.Generate(context.Background()); err != nil {
		t.Fatalf("First Generate failed: %v", err)
	}
	_, _, err := svc.Generate(context.Background())
	var rlErr *core.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Errorf("Expected RateLimitError from the unique report date, got %v", err)
	}
}

func TestPrefetchModes(t *testing.T) {
	results := map[string]prefetch.FetchResult{
		"cepea_coffee": {Key: "cepea_coffee", URL: "u", Content: "c", Success: true},
	}

	full := &fakeFetcher{results: results}
	svc := NewService(Options{Store: configuredStore(t), Fetcher: full, PrefetchMode: PrefetchFull, Locale: saoPaulo(t), Clock: monday(t)})
	p, err := svc.Prepare(context.Background(), svc.Today(), true)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if full.full != 1 || p.Fetched != 1 || p.PreFetch != nil {
		t.Errorf("Expected one full pre-fetch, got full=%d fetched=%d", full.full, p.Fetched)
	}

	off := &fakeFetcher{results: results}
	svc = NewService(Options{Store: configuredStore(t), Fetcher: off, PrefetchMode: PrefetchOff, Locale: saoPaulo(t), Clock: monday(t)})
	if _, err := svc.Prepare(context.Background(), svc.Today(), true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if off.quick+off.full != 0 {
		t.Error("Expected no pre-fetch when mode is off")
	}
}

func TestPrepareEstimatesCost(t *testing.T) {
	svc := NewService(Options{Store: configuredStore(t), Locale: saoPaulo(t), Clock: monday(t)})
	p, err := svc.Prepare(context.Background(), svc.Today(), false)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if !p.Estimate.Known || p.Estimate.InputTokens == 0 || p.Estimate.OutputTokens != 16384 {
		t.Errorf("Unexpected estimate %+v", p.Estimate)
	}
	if !strings.Contains(p.UserPrompt, "R$ 1.600,00") {
		t.Error("Expected farm total cost in the user prompt")
	}
}

func TestStatus(t *testing.T) {
	store := configuredStore(t)
	svc := newTestService(t, store, &fakeProvider{text: generated}, nil)

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !st.CanGenerate || !st.IsConfigured || st.LatestBriefing != nil {
		t.Errorf("Unexpected status before generation: %+v", st)
	}

	b, _, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	st, _ = svc.Status(context.Background())
	if st.CanGenerate || st.LatestBriefing == nil || st.LatestBriefing.ID != b.ID {
		t.Errorf("Unexpected status after generation: %+v", st)
	}
}

func TestSummary(t *testing.T) {
	long := strings.Repeat("ç", 400)
	if got := Summary(long); len([]rune(got)) != SummaryLength {
		t.Errorf("Expected %d runes, got %d", SummaryLength, len([]rune(got)))
	}
	if Summary("curto") != "curto" {
		t.Error("Expected short content unchanged")
	}
}
