package award

import "github.com/shopspring/decimal"

// =============================================================================
// ROSTER RULE PARAMETERS - Thresholds for roster compliance rules
// =============================================================================

// RosterParameters exposes the roster-side thresholds of the modeled
// Awards. Like RateTable this is pure data; the roster rule engine owns
// all evaluation logic.
type RosterParameters struct{}

func NewRosterParameters() *RosterParameters { return &RosterParameters{} }

// MinimumShiftHours returns the minimum engagement length in hours for an
// employment type, or false when no minimum applies (full-time).
func (p *RosterParameters) MinimumShiftHours(et EmploymentType) (decimal.Decimal, bool) {
	switch et {
	case PartTime, Casual:
		return decimal.NewFromInt(3), true
	default:
		return decimal.Zero, false
	}
}

// MealBreakMinutes returns the required meal-break minutes for a shift of
// the given duration in hours. Tiers: <=5h none, >5h and <=9h 30 minutes,
// >9h 60 minutes.
func (p *RosterParameters) MealBreakMinutes(shiftHours decimal.Decimal) int {
	five := decimal.NewFromInt(5)
	nine := decimal.NewFromInt(9)
	switch {
	case shiftHours.LessThanOrEqual(five):
		return 0
	case shiftHours.LessThanOrEqual(nine):
		return 30
	default:
		return 60
	}
}

// Rest-period thresholds between consecutive shifts, in hours.
// Below the minimum is an award breach; between minimum and preferred is
// flagged as a warning.
func (p *RosterParameters) RestPeriodMinimumHours() int   { return 10 }
func (p *RosterParameters) RestPeriodPreferredHours() int { return 12 }

// WeeklyHoursCap returns the ordinary weekly-hours cap for an employment
// type, or false when the Award imposes none (casuals under Retail).
// Part-time caps are per-employee (guaranteed hours), so they are not
// answered here.
func (p *RosterParameters) WeeklyHoursCap(et EmploymentType) (decimal.Decimal, bool) {
	if et == FullTime || et == FixedTerm {
		return decimal.NewFromInt(38), true
	}
	return decimal.Zero, false
}

// MaxConsecutiveDays is the longest permitted run of consecutive rostered
// calendar days.
func (p *RosterParameters) MaxConsecutiveDays() int { return 6 }
