package core

import (
	"fmt"
	"math"
	"time"
)

// Priority is a category importance tier. Lower values sort first.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// Priorities lists every tier from highest to lowest.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// MarshalText encodes the tier by name.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// DayContext holds the flags derived from a locale date.
type DayContext struct {
	Date                  Date `json:"date"`                     // Reference date in the briefing locale
	DayOfWeek             int  `json:"day_of_week"`              // 0 = Sunday .. 6 = Saturday
	IsMonday              bool `json:"is_monday"`                // Weekday is Monday
	IsFriday              bool `json:"is_friday"`                // Weekday is Friday
	IsWeekend             bool `json:"is_weekend"`               // Saturday or Sunday
	IsPolicyDecisionDay   bool `json:"is_policy_decision_day"`   // COPOM interest-rate decision
	IsInflationReleaseDay bool `json:"is_inflation_release_day"` // IPCA release
	ClubPlayedRecently    bool `json:"club_played_recently"`     // São Paulo FC played in the last days
	NationalTeamMatchDay  bool `json:"national_team_match_day"`  // Seleção plays today
}

// Category is one topic domain of the briefing.
type Category struct {
	ID            string                          `json:"id"`             // Stable identifier (e.g. "coffee")
	Name          string                          `json:"name"`           // Portuguese display name
	NameEn        string                          `json:"name_en"`        // English display name
	Icon          string                          `json:"icon"`           // Emoji tag
	Priority      Priority                        `json:"priority"`       // Base priority tier
	Queries       []string                        `json:"queries"`        // Search templates, may contain {date} and {month}
	AlwaysInclude bool                            `json:"always_include"` // Category is never dropped
	Boost         func(ctx DayContext) Priority   `json:"-"`              // Optional day-dependent priority
}

// EffectivePriority returns the boosted tier for the day, or the base tier.
func (c Category) EffectivePriority(ctx DayContext) Priority {
	if c.Boost != nil {
		return c.Boost(ctx)
	}
	return c.Priority
}

// FarmEconomics carries the per-saca cost figures used for margin analysis.
type FarmEconomics struct {
	ProductionCost float64 `json:"production_cost"` // R$/saca, must be positive
	LogisticsCost  float64 `json:"logistics_cost"`  // R$/saca freight to Santos
}

// NewFarmEconomics builds farm economics, using defaultLogistics when no
// logistics cost was supplied.
func NewFarmEconomics(production float64, logistics *float64, defaultLogistics float64) FarmEconomics {
	f := FarmEconomics{ProductionCost: production, LogisticsCost: defaultLogistics}
	if logistics != nil {
		f.LogisticsCost = *logistics
	}
	return f
}

// TotalCost is always derived from its inputs.
func (f FarmEconomics) TotalCost() float64 {
	return f.ProductionCost + f.LogisticsCost
}

// Validate returns a ConfigurationError when the figures cannot produce a
// meaningful margin.
func (f FarmEconomics) Validate() error {
	if math.IsNaN(f.ProductionCost) || math.IsInf(f.ProductionCost, 0) || f.ProductionCost <= 0 {
		return &ConfigurationError{Field: "production_cost", Reason: "must be a positive number"}
	}
	if math.IsNaN(f.LogisticsCost) || math.IsInf(f.LogisticsCost, 0) || f.LogisticsCost < 0 {
		return &ConfigurationError{Field: "logistics_cost", Reason: "must be zero or a positive number"}
	}
	return nil
}

// Settings is the single-row user configuration.
type Settings struct {
	ProductionCost *float64  `json:"costBasis"`     // R$/saca, nil until configured
	LogisticsCost  float64   `json:"logisticsCost"` // R$/saca
	TaxRate        float64   `json:"taxRate"`       // Stored but not used by generation
	IsConfigured   bool      `json:"isConfigured"`  // Gates generation
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FarmEconomics extracts the cost figures, failing with a ConfigurationError
// when the settings do not allow generation.
func (s *Settings) FarmEconomics() (FarmEconomics, error) {
	if s == nil || !s.IsConfigured || s.ProductionCost == nil {
		return FarmEconomics{}, &ConfigurationError{Field: "production_cost", Reason: "not configured"}
	}
	f := FarmEconomics{ProductionCost: *s.ProductionCost, LogisticsCost: s.LogisticsCost}
	if err := f.Validate(); err != nil {
		return FarmEconomics{}, err
	}
	return f, nil
}

// SettingsUpdate is a partial settings write. Nil fields keep their
// current value.
type SettingsUpdate struct {
	ProductionCost *float64 `json:"costBasis"`
	LogisticsCost  *float64 `json:"logisticsCost"`
	TaxRate        *float64 `json:"taxRate"`
}

// Briefing is a persisted, generated report. One exists per report date.
type Briefing struct {
	ID           string      `json:"id"`           // UUID
	Title        string      `json:"title"`        // "Briefing Diário - YYYY-MM-DD"
	Content      string      `json:"content"`      // Full markdown
	Summary      string      `json:"summary"`      // Leading excerpt
	ReportDate   Date        `json:"reportDate"`   // Locale date the briefing covers
	ModelID      string      `json:"modelId"`      // Model that produced the text
	InputTokens  *int        `json:"inputTokens"`  // Nil when the provider did not report usage
	OutputTokens *int        `json:"outputTokens"` // Nil when the provider did not report usage
	Sections     []SectionID `json:"sections"`     // Section identifiers detected in Content
	CreatedAt    time.Time   `json:"createdAt"`
}
