package prefetch

import (
	"fmt"

	"morningbrief/internal/config"
)

// Kind selects how a source is retrieved and turned into text.
type Kind string

const (
	// KindReader fetches through the reader service, which returns markdown.
	KindReader Kind = "reader"
	// KindDirect fetches the page itself and extracts its main content.
	KindDirect Kind = "direct"
	// KindFeed fetches an RSS or Atom feed and lists its latest items.
	KindFeed Kind = "feed"
)

// Source is a known authoritative page used to ground generation.
type Source struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
}

var criticalSources = []Source{
	{Key: "cepea_coffee", URL: "https://www.cepea.org.br/en/indicator/coffee.aspx", Kind: KindReader},
	{Key: "cepea_soy", URL: "https://www.cepea.org.br/en/indicator/soybean.aspx", Kind: KindReader},
	{Key: "cepea_corn", URL: "https://www.cepea.org.br/en/indicator/corn.aspx", Kind: KindReader},
	{Key: "cepea_cattle", URL: "https://www.cepea.org.br/en/indicator/cattle.aspx", Kind: KindReader},
	{Key: "spfc_news", URL: "https://ge.globo.com/futebol/times/sao-paulo/", Kind: KindReader},
	{Key: "atp_rankings", URL: "https://www.atptour.com/en/rankings/singles", Kind: KindReader},
	{Key: "bcb_selic", URL: "https://www.bcb.gov.br/en/monetarypolicy/selicrate", Kind: KindReader},
}

// CriticalSources returns the full built-in catalog.
func CriticalSources() []Source {
	out := make([]Source, len(criticalSources))
	copy(out, criticalSources)
	return out
}

// QuickSources returns the latency-friendly subset: coffee prices and club news.
func QuickSources() []Source {
	var out []Source
	for _, s := range criticalSources {
		if s.Key == "cepea_coffee" || s.Key == "spfc_news" {
			out = append(out, s)
		}
	}
	return out
}

// SourcesFromConfig converts configured extra sources. An empty kind means
// the reader service. Keys must be unique and must not shadow the catalog,
// since fetch results are keyed by source.
func SourcesFromConfig(extra []config.SourceConfig) ([]Source, error) {
	seen := make(map[string]bool, len(criticalSources)+len(extra))
	for _, s := range criticalSources {
		seen[s.Key] = true
	}

	out := make([]Source, 0, len(extra))
	for _, e := range extra {
		if e.Key == "" {
			return nil, fmt.Errorf("source %s: missing key", e.URL)
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("source %s: duplicate key", e.Key)
		}
		seen[e.Key] = true

		kind := Kind(e.Kind)
		switch kind {
		case "":
			kind = KindReader
		case KindReader, KindDirect, KindFeed:
		default:
			return nil, fmt.Errorf("source %s: unknown kind %q", e.Key, e.Kind)
		}
		out = append(out, Source{Key: e.Key, URL: e.URL, Kind: kind})
	}
	return out, nil
}
