// Package validation scans generated briefings for hallucination
// signatures and applies the suggested corrections.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"morningbrief/internal/calendar"
	"morningbrief/internal/core"
)

// Result is the outcome of one validation pass. Valid is true iff Errors
// is empty; warnings never affect validity.
type Result struct {
	Valid       bool              `json:"valid" yaml:"valid"`
	Errors      []string          `json:"errors" yaml:"errors"`
	Warnings    []string          `json:"warnings" yaml:"warnings"`
	Corrections map[string]string `json:"corrections" yaml:"corrections"`
	Stats       Stats             `json:"stats" yaml:"stats"`
}

// Stats counts findings per scan.
type Stats struct {
	FutureDates             int `json:"futureDatesFound" yaml:"future_dates_found"`
	WeekendMarketReferences int `json:"weekendMarketReferences" yaml:"weekend_market_references"`
	PricesOutOfRange        int `json:"pricesOutOfRange" yaml:"prices_out_of_range"`
	MissingDates            int `json:"missingDates" yaml:"missing_dates"`
}

// Price is a value extracted for a named indicator.
type Price struct {
	Indicator string
	Value     float64
	Raw       string
}

var (
	datePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

	pricePatterns = []struct {
		indicator string
		re        *regexp.Regexp
	}{
		{"coffee_cepea", regexp.MustCompile(`(?i)CEPEA.*?R\$\s*([\d.,]+)/saca`)},
		{"ice_coffee", regexp.MustCompile(`(?i)ICE.*?(\d{2,3}[,.]?\d{0,2})\s*[¢c]/lb`)},
		{"ibovespa", regexp.MustCompile(`(?i)IBOVESPA.*?(\d{2,3}\.?\d{3})\s*pontos`)},
		{"usd_brl", regexp.MustCompile(`(?i)(?:dólar|USD/BRL|câmbio).*?R\$\s*(\d{1,2}[,.]?\d{2})`)},
		{"soy_cepea", regexp.MustCompile(`(?i)soja.*?R\$\s*([\d.,]+)/saca`)},
		{"corn_cepea", regexp.MustCompile(`(?i)milho.*?R\$\s*([\d.,]+)/saca`)},
		{"cattle", regexp.MustCompile(`(?i)boi.*?R\$\s*([\d.,]+)/@`)},
	}

	weekendMarketTerms = []string{
		"fechamento de hoje",
		"cotação de hoje",
		"hoje o IBOVESPA",
		"hoje a bolsa",
		"mercado hoje",
		"S&P 500 hoje",
		"Nasdaq hoje",
	}

	financialTerms = []string{"CEPEA", "IBOVESPA", "Selic", "IPCA", "ICE KC"}
	financialLines = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(financialTerms))
		for i, term := range financialTerms {
			out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term) + `[^\n]*`)
		}
		return out
	}()
	valuePattern    = regexp.MustCompile(`R\$|pontos|%`)
	citationPattern = regexp.MustCompile(`(?i)fonte:|source:|não disponível`)
)

const citationExcerptRunes = 80

// Validator checks generated text against the locale's current date.
type Validator struct {
	locale calendar.Locale
	clock  calendar.Clock
}

// New creates a validator. A nil clock uses the system clock.
func New(locale calendar.Locale, clock calendar.Clock) *Validator {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	return &Validator{locale: locale, clock: clock}
}

// Validate runs every scan with today taken from the validator's clock.
func (v *Validator) Validate(text string) Result {
	return ValidateOn(text, v.locale.Today(v.clock))
}

// ValidateOn runs the future-date, weekend-market, price-range and
// missing-citation scans against the reference date today.
func ValidateOn(text string, today core.Date) Result {
	r := Result{
		Errors:      []string{},
		Warnings:    []string{},
		Corrections: map[string]string{},
	}
	lastBusinessDay := calendar.FormatShort(calendar.LastBusinessDay(today))

	for _, raw := range FutureDates(text, today) {
		r.Stats.FutureDates++
		r.Errors = append(r.Errors, fmt.Sprintf(
			"Data futura detectada: %s - Hoje é %s. Dados do futuro são impossíveis.",
			raw, calendar.FormatShort(today)))
		r.Corrections[raw] = lastBusinessDay
	}

	weekend := weekendWarnings(text, today)
	r.Stats.WeekendMarketReferences = len(weekend)
	r.Warnings = append(r.Warnings, weekend...)

	for _, p := range ExtractPrices(text) {
		rng, ok := RangeFor(p.Indicator)
		if !ok || rng.Contains(p.Value) {
			continue
		}
		r.Stats.PricesOutOfRange++
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"%s: %s %s está fora da faixa esperada (%s - %s %s). Verifique a fonte.",
			rng.Name, formatValue(p.Value), rng.Unit, formatValue(rng.Min), formatValue(rng.Max), rng.Unit))
	}

	for _, line := range uncitedLines(text) {
		r.Stats.MissingDates++
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"Dado financeiro sem data de referência: \"%s...\". Inclua a data do dado para transparência.",
			excerpt(line, citationExcerptRunes)))
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// FutureDates returns the distinct DD/MM/YYYY substrings of text, in order
// of first appearance, that fall strictly after today. Strings that are
// not calendar dates are ignored.
func FutureDates(text string, today core.Date) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range datePattern.FindAllStringSubmatch(text, -1) {
		raw := m[0]
		if seen[raw] {
			continue
		}
		seen[raw] = true

		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		d := core.NewDate(year, time.Month(month), day)
		if d.Day != day || d.Month != time.Month(month) {
			continue // 31/02 and the like
		}
		if d.After(today) {
			out = append(out, raw)
		}
	}
	return out
}

// ExtractPrices finds indicator values using indicator-specific patterns.
func ExtractPrices(text string) []Price {
	var prices []Price
	for _, p := range pricePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			v, err := ParseBRNumber(m[1])
			if err != nil {
				continue
			}
			prices = append(prices, Price{Indicator: p.indicator, Value: v, Raw: m[0]})
		}
	}
	return prices
}

func weekendWarnings(text string, today core.Date) []string {
	if !calendar.IsWeekend(today) {
		return nil
	}
	lower := strings.ToLower(text)
	lbd := calendar.FormatShort(calendar.LastBusinessDay(today))

	var warnings []string
	for _, term := range weekendMarketTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			warnings = append(warnings, fmt.Sprintf(
				"\"%s\" mencionado em fim de semana - mercados estão fechados. Use dados de %s.", term, lbd))
		}
	}
	return warnings
}

// uncitedLines returns the line tails starting at a financial keyword that
// carry a value but neither a date nor a source marker.
func uncitedLines(text string) []string {
	var out []string
	for _, re := range financialLines {
		for _, m := range re.FindAllString(text, -1) {
			if datePattern.MatchString(m) {
				continue
			}
			if valuePattern.MatchString(m) && !citationPattern.MatchString(m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
