package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is the plausible band for a named market indicator.
type Range struct {
	Key  string  `json:"key" yaml:"key"`
	Name string  `json:"name" yaml:"name"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Unit string  `json:"unit" yaml:"unit"`
}

// Contains reports whether v lies within the band, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var expectedRanges = []Range{
	{Key: "coffee_cepea", Name: "Café CEPEA", Min: 1800, Max: 3200, Unit: "R$/saca"},
	{Key: "soy_cepea", Name: "Soja CEPEA", Min: 100, Max: 180, Unit: "R$/saca"},
	{Key: "corn_cepea", Name: "Milho CEPEA", Min: 50, Max: 100, Unit: "R$/saca"},
	{Key: "cattle", Name: "Boi Gordo", Min: 280, Max: 400, Unit: "R$/@"},
	{Key: "ibovespa", Name: "IBOVESPA", Min: 100000, Max: 180000, Unit: "pontos"},
	{Key: "usd_brl", Name: "USD/BRL", Min: 4.5, Max: 7.0, Unit: "R$"},
	{Key: "ice_coffee", Name: "ICE KC", Min: 200, Max: 500, Unit: "¢/lb"},
}

// ExpectedRanges returns the indicator bands used by the price scan.
func ExpectedRanges() []Range {
	out := make([]Range, len(expectedRanges))
	copy(out, expectedRanges)
	return out
}

// RangeFor returns the band for an indicator key.
func RangeFor(key string) (Range, bool) {
	for _, r := range expectedRanges {
		if r.Key == key {
			return r, true
		}
	}
	return Range{}, false
}

// ParseBRNumber parses a number written with either Brazilian (2.200,50)
// or English (2,200.50) separators. When both separators appear the last
// one is the decimal point. A lone dot followed by exactly three digits is
// a thousands separator; a lone comma is always decimal.
func ParseBRNumber(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), ".,")
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}
