/*
Package roster checks rostered shifts against Award working-time rules.

PURPOSE:
  The roster engine evaluates the full shift collection of one roster.
  Several rules need cross-shift context (rest gaps, weekly buckets,
  consecutive-day runs), so this file also provides the explicit
  grouping pass rules build on: shifts grouped per employee and sorted
  by actual start instant, ISO-week bucketing, and consecutive-day run
  detection.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: One rostered work period, with optional meal/rest breaks
  - Employee: Roster-side employee record (employment type, optional
    guaranteed weekly hours for part-timers)
  - Roster: The shift collection plus employee lookup for one week

SEE ALSO:
  - rules.go: The six roster rules
  - engine.go: The registered rule set
*/
package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/award"
)

// =============================================================================
// MODELS
// =============================================================================

// Employee is the roster-side employee record.
type Employee struct {
	ID             string
	Name           string
	Number         string
	EmploymentType award.EmploymentType
	// GuaranteedHours is the contracted weekly hours for part-time
	// employees. Nil means the roster data never recorded one.
	GuaranteedHours *decimal.Decimal
}

// Shift is one rostered work period for one employee.
// Start and End are full instants (date + time); an overnight shift
// simply ends on the next calendar day.
type Shift struct {
	ID         string
	RosterID   string
	EmployeeID string

	// Date is the rostered calendar day (midnight UTC).
	Date  time.Time
	Start time.Time
	End   time.Time

	MealBreakTaken   bool
	MealBreakMinutes int
	RestBreakTaken   bool
	RestBreakMinutes int
}

// DurationMinutes is the total rostered length of the shift.
func (s *Shift) DurationMinutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// DurationHours returns the shift length in fractional hours
// (e.g. 2.5 for a 2h30m shift).
func (s *Shift) DurationHours() decimal.Decimal {
	return decimal.NewFromInt(int64(s.DurationMinutes())).Div(decimal.NewFromInt(60))
}

// BreakMinutes is the combined meal and rest break time taken.
func (s *Shift) BreakMinutes() int {
	total := 0
	if s.MealBreakTaken {
		total += s.MealBreakMinutes
	}
	if s.RestBreakTaken {
		total += s.RestBreakMinutes
	}
	return total
}

// Roster is one week's shift collection for one organization.
type Roster struct {
	ID        string
	Name      string
	Award     award.Award
	WeekStart time.Time
	WeekEnd   time.Time

	Shifts    []Shift
	Employees map[string]*Employee
}

// Employee resolves a shift's employee record; ok is false when the
// linked record is absent (a data-quality finding, not a panic).
func (r *Roster) Employee(id string) (*Employee, bool) {
	e, ok := r.Employees[id]
	return e, ok
}

// =============================================================================
// GROUPING PASS
// =============================================================================

// GroupShiftsByEmployee returns each employee's shifts sorted by actual
// start instant. Cross-shift rules iterate this map instead of keeping
// ad hoc per-shift state.
func GroupShiftsByEmployee(shifts []Shift) map[string][]Shift {
	grouped := make(map[string][]Shift)
	for _, s := range shifts {
		grouped[s.EmployeeID] = append(grouped[s.EmployeeID], s)
	}
	for id := range grouped {
		sort.Slice(grouped[id], func(i, j int) bool {
			return grouped[id][i].Start.Before(grouped[id][j].Start)
		})
	}
	return grouped
}

// ISOWeekKey buckets a date into its ISO-8601 week (Monday start).
func ISOWeekKey(date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// shiftDay truncates to the calendar day.
func shiftDay(s Shift) time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRun is one maximal run of consecutive rostered calendar days.
type DayRun struct {
	Days   []time.Time
	Shifts []Shift
}

// ConsecutiveDayRuns collapses same-day multi-shift entries to one
// calendar day, then returns the maximal runs of consecutive days with
// the shifts belonging to each run.
func ConsecutiveDayRuns(shifts []Shift) []DayRun {
	if len(shifts) == 0 {
		return nil
	}

	byDay := make(map[time.Time][]Shift)
	for _, s := range shifts {
		day := shiftDay(s)
		byDay[day] = append(byDay[day], s)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var runs []DayRun
	current := DayRun{Days: []time.Time{days[0]}, Shifts: byDay[days[0]]}
	for _, day := range days[1:] {
		prev := current.Days[len(current.Days)-1]
		if day.Sub(prev) == 24*time.Hour {
			current.Days = append(current.Days, day)
			current.Shifts = append(current.Shifts, byDay[day]...)
			continue
		}
		runs = append(runs, current)
		current = DayRun{Days: []time.Time{day}, Shifts: byDay[day]}
	}
	return append(runs, current)
}
