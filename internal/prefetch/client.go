// Package prefetch retrieves primary-source text ahead of generation so the
// model can be grounded on it rather than on its own search alone.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"morningbrief/internal/calendar"
	"morningbrief/internal/logger"
)

const (
	DefaultReaderBaseURL = "https://r.jina.ai/"
	DefaultTimeout       = 15 * time.Second
	DefaultUserAgent     = "MorningBrief/1.0"

	maxBodyBytes   = 4 << 20
	maxConcurrency = 8
)

// FetchResult is the outcome of fetching one source. Failures are data:
// Success is false and Error describes the cause.
type FetchResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	ReaderBaseURL string
	APIKey        string
	UserAgent     string
	Timeout       time.Duration
	HTTPClient    *http.Client
	Cache         Cache
	CacheTTL      time.Duration
	Locale        calendar.Locale
	Clock         calendar.Clock
	Logger        *slog.Logger
}

// Client fetches sources concurrently, each bounded by its own timeout.
type Client struct {
	httpClient    *http.Client
	readerBaseURL string
	apiKey        string
	userAgent     string
	timeout       time.Duration
	cache         Cache
	cacheTTL      time.Duration
	locale        calendar.Locale
	clock         calendar.Clock
	log           *slog.Logger
}

// NewClient creates a pre-fetch client.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:    opts.HTTPClient,
		readerBaseURL: opts.ReaderBaseURL,
		apiKey:        opts.APIKey,
		userAgent:     opts.UserAgent,
		timeout:       opts.Timeout,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		locale:        opts.Locale,
		clock:         opts.Clock,
		log:           opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.readerBaseURL == "" {
		c.readerBaseURL = DefaultReaderBaseURL
	}
	if !strings.HasSuffix(c.readerBaseURL, "/") {
		c.readerBaseURL += "/"
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = 6 * time.Hour
	}
	if c.clock == nil {
		c.clock = calendar.SystemClock{}
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	return c
}

// FetchSource performs a single read of src and converts it to text.
// A timeout of zero uses the client default. It never returns an error;
// failures are reported in the result.
func (c *Client) FetchSource(ctx context.Context, src Source, timeout time.Duration) FetchResult {
	if timeout <= 0 {
		timeout = c.timeout
	}

	cacheKey := c.cacheKey(src)
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, cacheKey); err != nil {
			c.log.Warn("Pre-fetch cache read failed", "key", src.Key, "error", err)
		} else if ok {
			c.log.Debug("Pre-fetch cache hit", "key", src.Key)
			return cached
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := FetchResult{Key: src.Key, URL: src.URL}
	content, err := c.fetch(ctx, src)
	result.FetchedAt = c.clock.Now()
	if err != nil {
		result.Error = describeError(ctx, err)
		c.log.Warn("Pre-fetch failed", "key", src.Key, "url", src.URL, "error", result.Error)
		return result
	}
	if strings.TrimSpace(content) == "" {
		result.Error = "Empty content"
		return result
	}

	result.Content = content
	result.Success = true

	if c.cache != nil {
		if err := c.cache.Set(context.WithoutCancel(ctx), cacheKey, result, c.cacheTTL); err != nil {
			c.log.Warn("Pre-fetch cache write failed", "key", src.Key, "error", err)
		}
	}
	return result
}

// FetchAll fetches every source concurrently. A failed source yields a
// failed result for its key only and never cancels its siblings.
func (c *Client) FetchAll(ctx context.Context, sources []Source) map[string]FetchResult {
	results := make(map[string]FetchResult, len(sources))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(maxConcurrency)
	for _, src := range sources {
		g.Go(func() error {
			r := c.FetchSource(ctx, src, 0)
			mu.Lock()
			results[src.Key] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// QuickPreFetch fetches only QuickSources.
func (c *Client) QuickPreFetch(ctx context.Context) map[string]FetchResult {
	return c.FetchAll(ctx, QuickSources())
}

// FullPreFetch fetches the full catalog followed by any extra sources.
func (c *Client) FullPreFetch(ctx context.Context, extra ...Source) map[string]FetchResult {
	return c.FetchAll(ctx, append(CriticalSources(), extra...))
}

func (c *Client) fetch(ctx context.Context, src Source) (string, error) {
	target := src.URL
	accept := "text/html,application/xhtml+xml"
	switch src.Kind {
	case KindReader, "":
		target = c.readerBaseURL + src.URL
		accept = "text/markdown"
	case KindFeed:
		accept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" && (src.Kind == KindReader || src.Kind == "") {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	switch src.Kind {
	case KindDirect:
		return extractArticle(body, resp.Request.URL)
	case KindFeed:
		return feedToText(body, c.locale)
	default:
		return string(body), nil
	}
}

func (c *Client) cacheKey(src Source) string {
	return fmt.Sprintf("prefetch:%s:%s", src.Key, c.locale.Today(c.clock))
}

// describeError maps deadline expiry to a stable message.
func describeError(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "Request timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "Request canceled"
	}
	return err.Error()
}
