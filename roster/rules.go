/*
rules.go - The six roster compliance rules

EVALUATION MODEL:
  Each rule receives the whole roster, not one shift: rest gaps, weekly
  buckets and consecutive-day runs are inherently cross-shift. Rules use
  the grouping pass in types.go and keep no state of their own.

BOUNDARIES (all verified by tests):
  Minimum shift:    exactly 3h passes, below 3h fails (exclusive)
  Meal break:       exactly 5h needs none; >5h..9h needs 30m; >9h needs 60m
  Rest period:      >=12h clean, >=10h warning (expected 12), <10h error
  Consecutive days: runs of <=6 pass; each longer run is one warning
  Weekly hours:     full-time 38h cap is informational, not a failure
*/
package roster

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
)

// Rule is one roster compliance check over a full shift collection.
type Rule interface {
	CheckType() compliance.CheckType
	Evaluate(r *Roster, params *award.RosterParameters) ([]compliance.Issue, error)
}

func dec(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// =============================================================================
// DATA QUALITY
// =============================================================================

// DataQualityRule flags shifts whose linked employee record is absent
// (one Error per employee, however many shifts are affected) and shifts
// whose recorded break time exceeds the shift itself.
type DataQualityRule struct{}

func (DataQualityRule) CheckType() compliance.CheckType { return compliance.CheckDataQuality }

func (r DataQualityRule) Evaluate(ro *Roster, _ *award.RosterParameters) ([]compliance.Issue, error) {
	var issues []compliance.Issue

	// (a) Missing employee records, deduplicated per employee.
	grouped := GroupShiftsByEmployee(ro.Shifts)
	for employeeID, shifts := range grouped {
		if _, ok := ro.Employee(employeeID); ok {
			continue
		}
		dates := make([]time.Time, len(shifts))
		for i, s := range shifts {
			dates[i] = shiftDay(s)
		}
		issues = append(issues, compliance.Issue{
			CheckType:           r.CheckType(),
			Severity:            compliance.SeverityError,
			EmployeeID:          employeeID,
			AffectedDates:       dates,
			AffectedShiftsCount: len(shifts),
			ContextLabel:        "Missing Employee",
			Description:         fmt.Sprintf("No employee record found for id %q referenced by %d shift(s)", employeeID, len(shifts)),
		})
	}

	// (b) Break time longer than the shift.
	for _, s := range ro.Shifts {
		duration := s.DurationMinutes()
		breaks := s.BreakMinutes()
		if breaks <= duration {
			continue
		}
		issues = append(issues, compliance.Issue{
			CheckType:           r.CheckType(),
			Severity:            compliance.SeverityWarning,
			EmployeeID:          s.EmployeeID,
			ShiftID:             s.ID,
			Expected:            dec(duration),
			Actual:              dec(breaks),
			AffectedDates:       []time.Time{shiftDay(s)},
			AffectedShiftsCount: 1,
			ContextLabel:        "Break Minutes",
			Description:         fmt.Sprintf("Recorded breaks (%d min) exceed the shift length (%d min)", breaks, duration),
		})
	}

	return issues, nil
}

// =============================================================================
// MINIMUM SHIFT HOURS
// =============================================================================

// MinimumShiftHoursRule enforces the 3-hour minimum engagement for
// part-time and casual employees. Exactly 3 hours passes. Full-time
// employees have no minimum; shifts without a linked employee are
// skipped (DataQualityRule owns those).
type MinimumShiftHoursRule struct{}

func (MinimumShiftHoursRule) CheckType() compliance.CheckType {
	return compliance.CheckMinimumShiftHours
}

func (r MinimumShiftHoursRule) Evaluate(ro *Roster, params *award.RosterParameters) ([]compliance.Issue, error) {
	var issues []compliance.Issue
	for _, s := range ro.Shifts {
		emp, ok := ro.Employee(s.EmployeeID)
		if !ok {
			continue
		}
		minimum, required := params.MinimumShiftHours(emp.EmploymentType)
		if !required {
			continue
		}
		duration := s.DurationHours()
		if duration.GreaterThanOrEqual(minimum) {
			continue
		}
		issues = append(issues, compliance.Issue{
			CheckType:           r.CheckType(),
			Severity:            compliance.SeverityError,
			EmployeeID:          s.EmployeeID,
			ShiftID:             s.ID,
			Expected:            minimum,
			Actual:              duration,
			AffectedDates:       []time.Time{shiftDay(s)},
			AffectedShiftsCount: 1,
			ContextLabel:        "Shift Hours",
			Description: fmt.Sprintf("%s shift of %s hours is below the %s-hour minimum engagement",
				emp.EmploymentType, duration, minimum),
		})
	}
	return issues, nil
}

// =============================================================================
// MEAL BREAK
// =============================================================================

// MealBreakRule enforces the tiered meal-break minimums: no break up to
// 5 hours, 30 minutes over 5 and up to 9, 60 minutes over 9.
type MealBreakRule struct{}

func (MealBreakRule) CheckType() compliance.CheckType { return compliance.CheckMealBreak }

func (r MealBreakRule) Evaluate(ro *Roster, params *award.RosterParameters) ([]compliance.Issue, error) {
	var issues []compliance.Issue
	for _, s := range ro.Shifts {
		required := params.MealBreakMinutes(s.DurationHours())
		if required == 0 {
			continue
		}

		taken := 0
		if s.MealBreakTaken {
			taken = s.MealBreakMinutes
		}
		if taken >= required {
			continue
		}

		issues = append(issues, compliance.Issue{
			CheckType:           r.CheckType(),
			Severity:            compliance.SeverityError,
			EmployeeID:          s.EmployeeID,
			ShiftID:             s.ID,
			Expected:            dec(required),
			Actual:              dec(taken),
			AffectedDates:       []time.Time{shiftDay(s)},
			AffectedShiftsCount: 1,
			ContextLabel:        "Meal Break Minutes",
			Description: fmt.Sprintf("Shift of %s hours requires a %d-minute meal break; %d minutes taken",
				s.DurationHours(), required, taken),
		})
	}
	return issues, nil
}

// =============================================================================
// REST PERIOD BETWEEN SHIFTS
// =============================================================================

// RestPeriodRule checks the gap between each employee's adjacent shifts.
// Under 10 hours is an Error; 10 to under 12 hours is a Warning with the
// preferred 12-hour gap as the expectation; 12 hours or more is clean.
type RestPeriodRule struct{}

func (RestPeriodRule) CheckType() compliance.CheckType {
	return compliance.CheckRestPeriodBetweenShifts
}

func (r RestPeriodRule) Evaluate(ro *Roster, params *award.RosterParameters) ([]compliance.Issue, error) {
	minimum := params.RestPeriodMinimumHours()
	preferred := params.RestPeriodPreferredHours()

	var issues []compliance.Issue
	for employeeID, shifts := range GroupShiftsByEmployee(ro.Shifts) {
		for i := 1; i < len(shifts); i++ {
			prev, next := shifts[i-1], shifts[i]
			gap := next.Start.Sub(prev.End)
			gapHours := decimal.NewFromInt(int64(gap / time.Minute)).Div(decimal.NewFromInt(60))

			var severity compliance.Severity
			var expected int
			switch {
			case gap < time.Duration(minimum)*time.Hour:
				severity, expected = compliance.SeverityError, minimum
			case gap < time.Duration(preferred)*time.Hour:
				severity, expected = compliance.SeverityWarning, preferred
			default:
				continue
			}

			issues = append(issues, compliance.Issue{
				CheckType:           r.CheckType(),
				Severity:            severity,
				EmployeeID:          employeeID,
				ShiftID:             next.ID,
				Expected:            dec(expected),
				Actual:              gapHours.Round(2),
				AffectedDates:       []time.Time{shiftDay(prev), shiftDay(next)},
				AffectedShiftsCount: 2,
				ContextLabel:        "Rest Hours",
				Description: fmt.Sprintf("Only %s hours rest between shifts ending %s and starting %s (expected %d)",
					gapHours.Round(2), prev.End.Format("2006-01-02 15:04"), next.Start.Format("2006-01-02 15:04"), expected),
			})
		}
	}
	return issues, nil
}

// =============================================================================
// MAXIMUM CONSECUTIVE DAYS
// =============================================================================

// MaxConsecutiveDaysRule flags every maximal run of more than six
// consecutive rostered calendar days - one Warning per run, so two
// separate violating runs for one employee produce two issues.
type MaxConsecutiveDaysRule struct{}

func (MaxConsecutiveDaysRule) CheckType() compliance.CheckType {
	return compliance.CheckMaximumConsecutiveDays
}

func (r MaxConsecutiveDaysRule) Evaluate(ro *Roster, params *award.RosterParameters) ([]compliance.Issue, error) {
	maxDays := params.MaxConsecutiveDays()

	var issues []compliance.Issue
	for employeeID, shifts := range GroupShiftsByEmployee(ro.Shifts) {
		for _, run := range ConsecutiveDayRuns(shifts) {
			if len(run.Days) <= maxDays {
				continue
			}
			issues = append(issues, compliance.Issue{
				CheckType:           r.CheckType(),
				Severity:            compliance.SeverityWarning,
				EmployeeID:          employeeID,
				Expected:            dec(maxDays),
				Actual:              dec(len(run.Days)),
				AffectedDates:       run.Days,
				AffectedShiftsCount: len(run.Shifts),
				ContextLabel:        "Consecutive Days",
				Description: fmt.Sprintf("Rostered %d consecutive days from %s; the Award permits at most %d",
					len(run.Days), run.Days[0].Format("2006-01-02"), maxDays),
			})
		}
	}
	return issues, nil
}

// =============================================================================
// WEEKLY HOURS LIMIT
// =============================================================================

// WeeklyHoursRule sums each employee's shift hours per ISO week.
// Full-time over 38h is informational; casuals have no cap under the
// Retail policy; part-timers are checked against their guaranteed hours,
// or flagged as a DataQuality warning when no guarantee is recorded.
type WeeklyHoursRule struct{}

func (WeeklyHoursRule) CheckType() compliance.CheckType { return compliance.CheckWeeklyHoursLimit }

func (r WeeklyHoursRule) Evaluate(ro *Roster, params *award.RosterParameters) ([]compliance.Issue, error) {
	var issues []compliance.Issue

	for employeeID, shifts := range GroupShiftsByEmployee(ro.Shifts) {
		emp, ok := ro.Employee(employeeID)
		if !ok {
			continue
		}
		if emp.EmploymentType == award.Casual {
			continue // no weekly cap for casuals
		}

		// Part-timers without a recorded guarantee cannot be
		// evaluated; surface that as a data-quality finding instead.
		if emp.EmploymentType == award.PartTime && emp.GuaranteedHours == nil {
			issues = append(issues, compliance.Issue{
				CheckType:           compliance.CheckDataQuality,
				Severity:            compliance.SeverityWarning,
				EmployeeID:          employeeID,
				AffectedShiftsCount: len(shifts),
				ContextLabel:        "Missing Guaranteed Hours",
				Description:         fmt.Sprintf("Part-time employee %q has no guaranteed weekly hours recorded; weekly cap not evaluated", employeeID),
			})
			continue
		}

		weeks := make(map[string][]Shift)
		for _, s := range shifts {
			key := ISOWeekKey(shiftDay(s))
			weeks[key] = append(weeks[key], s)
		}

		for _, weekShifts := range weeks {
			total := decimal.Zero
			dates := make([]time.Time, 0, len(weekShifts))
			for _, s := range weekShifts {
				total = total.Add(s.DurationHours())
				dates = append(dates, shiftDay(s))
			}

			var limit decimal.Decimal
			var severity compliance.Severity
			switch emp.EmploymentType {
			case award.PartTime:
				// Rostering above the guarantee is a lesser
				// violation than underpaying, hence Warning.
				limit, severity = *emp.GuaranteedHours, compliance.SeverityWarning
			default:
				weekly, _ := params.WeeklyHoursCap(emp.EmploymentType)
				limit, severity = weekly, compliance.SeverityInfo
			}

			if total.LessThanOrEqual(limit) {
				continue
			}
			issues = append(issues, compliance.Issue{
				CheckType:           r.CheckType(),
				Severity:            severity,
				EmployeeID:          employeeID,
				Expected:            limit,
				Actual:              total,
				AffectedDates:       dates,
				AffectedShiftsCount: len(weekShifts),
				ContextLabel:        "Weekly Hours",
				Description: fmt.Sprintf("%s hours rostered in one week against a limit of %s",
					total, limit),
			})
		}
	}
	return issues, nil
}
