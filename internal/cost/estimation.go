// Package cost estimates the USD cost of model calls from token usage.
package cost

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// GeminiPricing represents the current pricing for Gemini models
type GeminiPricing struct {
	Model                 string
	InputCostPer1MTokens  float64 // Cost per 1M input tokens in USD
	OutputCostPer1MTokens float64 // Cost per 1M output tokens in USD
}

// PricingTable contains Gemini paid-tier text pricing
var PricingTable = map[string]GeminiPricing{
	"gemini-2.5-pro": {
		Model:                 "gemini-2.5-pro",
		InputCostPer1MTokens:  1.25,
		OutputCostPer1MTokens: 10.00,
	},
	"gemini-2.5-flash": {
		Model:                 "gemini-2.5-flash",
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 2.50,
	},
	"gemini-2.5-flash-lite": {
		Model:                 "gemini-2.5-flash-lite",
		InputCostPer1MTokens:  0.10,
		OutputCostPer1MTokens: 0.40,
	},
	"gemini-2.0-flash": {
		Model:                 "gemini-2.0-flash",
		InputCostPer1MTokens:  0.10,
		OutputCostPer1MTokens: 0.40,
	},
}

// Estimate is the cost of one call.
type Estimate struct {
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	USD          float64 `json:"usd"`
	Known        bool    `json:"known"` // false when the model has no pricing entry
}

// Lookup finds pricing for a model identifier. Versioned ids such as
// "gemini-2.5-flash-001" or "models/gemini-2.5-flash" resolve to the
// longest matching table entry.
func Lookup(model string) (GeminiPricing, bool) {
	model = strings.TrimPrefix(strings.ToLower(model), "models/")
	if p, ok := PricingTable[model]; ok {
		return p, true
	}

	keys := make([]string, 0, len(PricingTable))
	for k := range PricingTable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		if strings.HasPrefix(model, k+"-") {
			return PricingTable[k], true
		}
	}
	return GeminiPricing{}, false
}

// EstimateCost prices a call. Unknown models cost zero with Known false.
func EstimateCost(model string, inputTokens, outputTokens int) Estimate {
	e := Estimate{Model: model, InputTokens: inputTokens, OutputTokens: outputTokens}
	pricing, ok := Lookup(model)
	if !ok {
		return e
	}
	e.Known = true
	e.InputCost = float64(inputTokens) / 1_000_000 * pricing.InputCostPer1MTokens
	e.OutputCost = float64(outputTokens) / 1_000_000 * pricing.OutputCostPer1MTokens
	e.USD = e.InputCost + e.OutputCost
	return e
}

// EstimatePrompt prices a call before it is made, from the prompt text and
// an expected output size.
func EstimatePrompt(model, systemPrompt, userPrompt string, expectedOutputTokens int) Estimate {
	return EstimateCost(model, EstimateTokenCount(systemPrompt)+EstimateTokenCount(userPrompt), expectedOutputTokens)
}

// EstimateTokenCount provides a rough estimation of token count for text
// This is a simplified approximation: 1 token ≈ 3.5 characters
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	charCount := utf8.RuneCountInString(text)
	return int(math.Ceil(float64(charCount) / 3.5))
}

// Format renders the estimate for CLI output.
func (e Estimate) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model: %s\n", e.Model)
	fmt.Fprintf(&b, "Tokens: %d input, %d output\n", e.InputTokens, e.OutputTokens)
	if !e.Known {
		b.WriteString("Cost: unknown (no pricing for model)\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Cost: $%.4f (input $%.4f, output $%.4f)\n", e.USD, e.InputCost, e.OutputCost)
	return b.String()
}
