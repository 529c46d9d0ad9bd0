// Package calendar resolves locale dates and the per-day context that drives
// category priorities and search hints.
package calendar

import (
	"fmt"
	"time"

	"morningbrief/internal/core"
)

// DefaultTimezone is the locale every briefing date is computed in.
const DefaultTimezone = "America/Sao_Paulo"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Locale converts instants to calendar dates in a fixed timezone.
type Locale struct {
	loc *time.Location
}

// NewLocale wraps loc. A nil location means UTC.
func NewLocale(loc *time.Location) Locale {
	if loc == nil {
		loc = time.UTC
	}
	return Locale{loc: loc}
}

// LoadLocale loads a locale by IANA timezone name.
func LoadLocale(name string) (Locale, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Locale{}, fmt.Errorf("failed to load timezone %s: %w", name, err)
	}
	return NewLocale(loc), nil
}

// Location returns the timezone of the locale.
func (l Locale) Location() *time.Location {
	if l.loc == nil {
		return time.UTC
	}
	return l.loc
}

// DateOf returns the locale date of t.
func (l Locale) DateOf(t time.Time) core.Date {
	return core.DateOf(t.In(l.Location()))
}

// Today returns the current locale date according to clock.
func (l Locale) Today(clock Clock) core.Date {
	return l.DateOf(clock.Now())
}

// LastBusinessDay steps back from a weekend to the preceding Friday:
// Saturday by one day, Sunday by two. Weekdays are returned unchanged.
func LastBusinessDay(d core.Date) core.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(-2)
	default:
		return d
	}
}

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d core.Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ResolveContext derives the day flags for d. The caller must pass a date
// already expressed in the briefing locale.
func ResolveContext(d core.Date, oracle Oracle) core.DayContext {
	if oracle == nil {
		oracle = NoopOracle{}
	}
	wd := d.Weekday()
	return core.DayContext{
		Date:                  d,
		DayOfWeek:             int(wd),
		IsMonday:              wd == time.Monday,
		IsFriday:              wd == time.Friday,
		IsWeekend:             wd == time.Saturday || wd == time.Sunday,
		IsPolicyDecisionDay:   oracle.IsPolicyDecisionDay(d),
		IsInflationReleaseDay: oracle.IsInflationReleaseDay(d),
		ClubPlayedRecently:    oracle.ClubPlayedRecently(d),
		NationalTeamMatchDay:  oracle.NationalTeamMatchDay(d),
	}
}
