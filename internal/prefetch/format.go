package prefetch

import (
	"sort"
	"strings"

	"morningbrief/internal/calendar"
)

const (
	// DefaultMaxContentChars bounds each source's content in the prompt.
	DefaultMaxContentChars = 2000
	// TruncationMarker is appended to content clipped at the limit.
	TruncationMarker = "\n\n[... conteúdo truncado ...]"
)

// Formatted is a successful source rendered for the prompt.
type Formatted struct {
	Key  string
	Text string
}

// FormatForPrompt renders the successful results, sorted by key, each with
// its URL, capture time and content truncated to maxChars characters.
func FormatForPrompt(results map[string]FetchResult, maxChars int, locale calendar.Locale) []Formatted {
	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}

	keys := make([]string, 0, len(results))
	for k, r := range results {
		if r.Success && r.Content != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]Formatted, 0, len(keys))
	for _, k := range keys {
		r := results[k]
		var b strings.Builder
		b.WriteString("Fonte: " + r.URL + "\n")
		b.WriteString("Capturado em: " + locale.FormatTimestamp(r.FetchedAt) + "\n\n")
		b.WriteString(Truncate(r.Content, maxChars))
		out = append(out, Formatted{Key: k, Text: b.String()})
	}
	return out
}

// Truncate clips s to max characters and appends TruncationMarker when
// anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + TruncationMarker
}

// Failures returns the error of every failed result keyed by source.
func Failures(results map[string]FetchResult) map[string]string {
	failed := map[string]string{}
	for k, r := range results {
		if !r.Success {
			failed[k] = r.Error
		}
	}
	return failed
}
