package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func TestFarmEconomicsTotalCost(t *testing.T) {
	f := NewFarmEconomics(1520, nil, 80)
	if f.TotalCost() != 1600 {
		t.Errorf("Expected total cost 1600, got %v", f.TotalCost())
	}

	logistics := 120.0
	f = NewFarmEconomics(1520, &logistics, 80)
	if f.TotalCost() != 1640 {
		t.Errorf("Expected total cost 1640, got %v", f.TotalCost())
	}

	f.ProductionCost = 1000
	if f.TotalCost() != 1120 {
		t.Errorf("Expected total cost to follow inputs, got %v", f.TotalCost())
	}
}

func TestFarmEconomicsValidate(t *testing.T) {
	tests := []struct {
		name    string
		farm    FarmEconomics
		wantErr bool
	}{
		{"valid", FarmEconomics{ProductionCost: 1520, LogisticsCost: 80}, false},
		{"zero logistics", FarmEconomics{ProductionCost: 1520}, false},
		{"zero production", FarmEconomics{ProductionCost: 0, LogisticsCost: 80}, true},
		{"negative production", FarmEconomics{ProductionCost: -5, LogisticsCost: 80}, true},
		{"NaN production", FarmEconomics{ProductionCost: math.NaN()}, true},
		{"infinite production", FarmEconomics{ProductionCost: math.Inf(1)}, true},
		{"negative logistics", FarmEconomics{ProductionCost: 1520, LogisticsCost: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.farm.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Expected ConfigurationError, got %T", err)
				}
			}
		})
	}
}

func TestSettingsFarmEconomics(t *testing.T) {
	var nilSettings *Settings
	if _, err := nilSettings.FarmEconomics(); err == nil {
		t.Error("Expected error for nil settings")
	}

	cost := 1520.0
	s := &Settings{ProductionCost: &cost, LogisticsCost: 80, IsConfigured: false}
	if _, err := s.FarmEconomics(); err == nil {
		t.Error("Expected error when not configured")
	}

	s.IsConfigured = true
	f, err := s.FarmEconomics()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if f.TotalCost() != 1600 {
		t.Errorf("Expected total cost 1600, got %v", f.TotalCost())
	}
}

func TestEffectivePriority(t *testing.T) {
	c := Category{ID: "spfc", Priority: PriorityHigh}
	if got := c.EffectivePriority(DayContext{}); got != PriorityHigh {
		t.Errorf("Expected base priority, got %v", got)
	}

	c.Boost = func(ctx DayContext) Priority {
		if ctx.IsMonday {
			return PriorityCritical
		}
		return PriorityHigh
	}
	if got := c.EffectivePriority(DayContext{IsMonday: true}); got != PriorityCritical {
		t.Errorf("Expected boosted priority, got %v", got)
	}
}

func TestDate(t *testing.T) {
	d := NewDate(2026, time.January, 11)
	if d.String() != "2026-01-11" {
		t.Errorf("Expected 2026-01-11, got %s", d)
	}
	if d.Weekday() != time.Sunday {
		t.Errorf("Expected Sunday, got %s", d.Weekday())
	}
	if got := d.AddDays(-2); got != NewDate(2026, time.January, 9) {
		t.Errorf("Expected 2026-01-09, got %s", got)
	}
	if got := NewDate(2026, time.January, 32); got != NewDate(2026, time.February, 1) {
		t.Errorf("Expected normalization to 2026-02-01, got %s", got)
	}
	if !NewDate(2099, time.March, 15).After(d) {
		t.Error("Expected 2099-03-15 to be after 2026-01-11")
	}
	if d.After(d) || d.Before(d) {
		t.Error("Expected a date to be neither before nor after itself")
	}

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	late := time.Date(2026, time.January, 12, 2, 30, 0, 0, time.UTC)
	if got := DateOf(late.In(loc)); got != d {
		t.Errorf("Expected 02:30 UTC on the 12th to be the 11th in São Paulo, got %s", got)
	}
}

func TestDateJSONAndScan(t *testing.T) {
	d := NewDate(2026, time.March, 2)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `"2026-03-02"` {
		t.Errorf("Expected \"2026-03-02\", got %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil || back != d {
		t.Errorf("Expected %s, got %s (err %v)", d, back, err)
	}

	sources := []any{
		"2026-03-02",
		[]byte("2026-03-02"),
		"2026-03-02T00:00:00Z",
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
	}
	for _, src := range sources {
		var scanned Date
		if err := scanned.Scan(src); err != nil {
			t.Errorf("Scan(%v) failed: %v", src, err)
			continue
		}
		if scanned != d {
			t.Errorf("Scan(%v) = %s, want %s", src, scanned, d)
		}
	}

	var bad Date
	if err := bad.Scan(42); err == nil {
		t.Error("Expected error scanning an int")
	}
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &RateLimitError{Date: NewDate(2026, 1, 12)})
	if got := UserMessage(err, "fallback"); got != "Você já gerou o briefing de hoje. Volte amanhã!" {
		t.Errorf("Unexpected message: %s", got)
	}
	if got := UserMessage(errors.New("boom"), "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}

	genErr := &GenerationError{Message: "quota exceeded", Err: errors.New("429")}
	if !errors.Is(genErr, genErr.Err) {
		t.Error("Expected GenerationError to unwrap to provider error")
	}
}

func TestSections(t *testing.T) {
	specs := Sections()
	if len(specs) != 14 {
		t.Fatalf("Expected 14 sections, got %d", len(specs))
	}
	if specs[0].ID != SectionOpening || specs[len(specs)-1].ID != SectionSources {
		t.Errorf("Unexpected section order: first %s, last %s", specs[0].ID, specs[len(specs)-1].ID)
	}

	s, ok := SectionByID(SectionNationalPolitics)
	if !ok {
		t.Fatal("Expected national politics section")
	}
	if s.Heading() != "### Política Nacional" {
		t.Errorf("Unexpected heading: %s", s.Heading())
	}

	seen := map[SectionID]bool{}
	for _, spec := range specs {
		if seen[spec.ID] {
			t.Errorf("Duplicate section id %s", spec.ID)
		}
		seen[spec.ID] = true
	}
}
