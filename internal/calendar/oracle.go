package calendar

import (
	"fmt"

	"morningbrief/internal/core"
)

// Oracle answers economic and sports calendar questions for a date.
type Oracle interface {
	IsPolicyDecisionDay(d core.Date) bool
	IsInflationReleaseDay(d core.Date) bool
	ClubPlayedRecently(d core.Date) bool
	NationalTeamMatchDay(d core.Date) bool
}

// NoopOracle knows no events; every flag resolves false.
type NoopOracle struct{}

func (NoopOracle) IsPolicyDecisionDay(core.Date) bool   { return false }
func (NoopOracle) IsInflationReleaseDay(core.Date) bool { return false }
func (NoopOracle) ClubPlayedRecently(core.Date) bool    { return false }
func (NoopOracle) NationalTeamMatchDay(core.Date) bool  { return false }

// ClubRecencyDays is how far back a club match still counts as recent.
const ClubRecencyDays = 3

// ScheduleOracle answers from fixed lists of event dates.
type ScheduleOracle struct {
	PolicyDecisions   map[core.Date]bool
	InflationReleases map[core.Date]bool
	ClubMatches       map[core.Date]bool
	NationalTeam      map[core.Date]bool
}

// NewScheduleOracle parses YYYY-MM-DD lists into a ScheduleOracle.
func NewScheduleOracle(policy, inflation, club, nationalTeam []string) (*ScheduleOracle, error) {
	o := &ScheduleOracle{}
	var err error
	if o.PolicyDecisions, err = dateSet(policy); err != nil {
		return nil, fmt.Errorf("policy decision dates: %w", err)
	}
	if o.InflationReleases, err = dateSet(inflation); err != nil {
		return nil, fmt.Errorf("inflation release dates: %w", err)
	}
	if o.ClubMatches, err = dateSet(club); err != nil {
		return nil, fmt.Errorf("club match dates: %w", err)
	}
	if o.NationalTeam, err = dateSet(nationalTeam); err != nil {
		return nil, fmt.Errorf("national team dates: %w", err)
	}
	return o, nil
}

// Empty reports whether no dates are known.
func (o *ScheduleOracle) Empty() bool {
	return len(o.PolicyDecisions)+len(o.InflationReleases)+len(o.ClubMatches)+len(o.NationalTeam) == 0
}

func (o *ScheduleOracle) IsPolicyDecisionDay(d core.Date) bool   { return o.PolicyDecisions[d] }
func (o *ScheduleOracle) IsInflationReleaseDay(d core.Date) bool { return o.InflationReleases[d] }
func (o *ScheduleOracle) NationalTeamMatchDay(d core.Date) bool  { return o.NationalTeam[d] }

// ClubPlayedRecently is true when a match happened within the last
// ClubRecencyDays days, not counting d itself.
func (o *ScheduleOracle) ClubPlayedRecently(d core.Date) bool {
	for i := 1; i <= ClubRecencyDays; i++ {
		if o.ClubMatches[d.AddDays(-i)] {
			return true
		}
	}
	return false
}

func dateSet(values []string) (map[core.Date]bool, error) {
	set := make(map[core.Date]bool, len(values))
	for _, v := range values {
		d, err := core.ParseDate(v)
		if err != nil {
			return nil, err
		}
		set[d] = true
	}
	return set, nil
}
