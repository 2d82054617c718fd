package roster_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/roster"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func params() *award.RosterParameters { return award.NewRosterParameters() }

func employee(id string, et award.EmploymentType) *roster.Employee {
	return &roster.Employee{ID: id, Name: "Employee " + id, Number: "N-" + id, EmploymentType: et}
}

func partTimer(id string, guaranteed string) *roster.Employee {
	e := employee(id, award.PartTime)
	if guaranteed != "" {
		hours := decimal.RequireFromString(guaranteed)
		e.GuaranteedHours = &hours
	}
	return e
}

func makeRoster(employees []*roster.Employee, shifts ...roster.Shift) *roster.Roster {
	ro := &roster.Roster{
		ID:        "roster-1",
		Name:      "Week 2",
		Award:     award.AwardRetail,
		WeekStart: day(5),
		WeekEnd:   day(11),
		Shifts:    shifts,
		Employees: make(map[string]*roster.Employee),
	}
	for _, e := range employees {
		ro.Employees[e.ID] = e
	}
	return ro
}

// shiftAt allows minute precision for break and rest boundaries.
func shiftAt(id, employeeID string, d, startHour, startMin, endHour, endMin int) roster.Shift {
	return roster.Shift{
		ID:         id,
		EmployeeID: employeeID,
		Date:       day(d),
		Start:      time.Date(2026, 1, d, startHour, startMin, 0, 0, time.UTC),
		End:        time.Date(2026, 1, d, endHour, endMin, 0, 0, time.UTC),
	}
}

// =============================================================================
// DATA QUALITY
// =============================================================================

func TestDataQuality_MissingEmployeeRecord(t *testing.T) {
	// GIVEN: Two shifts referencing an id with no employee record
	ro := makeRoster(nil,
		shiftOn("s1", "GHOST", 5, 9, 17),
		shiftOn("s2", "GHOST", 6, 9, 17))

	// WHEN: Evaluating
	issues, err := roster.DataQualityRule{}.Evaluate(ro, params())
	require.NoError(t, err)

	// THEN: One error for the employee, covering both shifts
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.CheckDataQuality, issues[0].CheckType)
	assert.Equal(t, compliance.SeverityError, issues[0].Severity)
	assert.Equal(t, "GHOST", issues[0].EmployeeID)
	assert.Equal(t, 2, issues[0].AffectedShiftsCount)
	assert.Len(t, issues[0].AffectedDates, 2)
}

func TestDataQuality_BreaksExceedShift(t *testing.T) {
	s := shiftOn("s1", "A", 5, 9, 11) // 120 minutes
	s.MealBreakTaken = true
	s.MealBreakMinutes = 90
	s.RestBreakTaken = true
	s.RestBreakMinutes = 45
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)}, s)

	issues, err := roster.DataQualityRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "s1", issues[0].ShiftID)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(120)))
	assert.True(t, issues[0].Actual.Equal(decimal.NewFromInt(135)))
}

// =============================================================================
// MINIMUM SHIFT HOURS
// =============================================================================

func TestMinimumShift_CasualBelowThreeHours(t *testing.T) {
	ro := makeRoster([]*roster.Employee{employee("A", award.Casual)},
		shiftOn("s1", "A", 5, 9, 11)) // 2 hours

	issues, err := roster.MinimumShiftHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.SeverityError, issues[0].Severity)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(3)))
	assert.True(t, issues[0].Actual.Equal(decimal.NewFromInt(2)))
}

func TestMinimumShift_ExactlyThreeHoursPasses(t *testing.T) {
	ro := makeRoster([]*roster.Employee{employee("A", award.PartTime)},
		shiftOn("s1", "A", 5, 9, 12))

	issues, err := roster.MinimumShiftHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestMinimumShift_FullTimeExempt(t *testing.T) {
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)},
		shiftOn("s1", "A", 5, 9, 10)) // 1 hour, but full-time

	issues, err := roster.MinimumShiftHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestMinimumShift_MissingEmployeeSkipped(t *testing.T) {
	// DataQualityRule owns the missing record; no double-reporting.
	ro := makeRoster(nil, shiftOn("s1", "GHOST", 5, 9, 10))

	issues, err := roster.MinimumShiftHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// =============================================================================
// MEAL BREAK
// =============================================================================

func TestMealBreak_Tiers(t *testing.T) {
	emp := []*roster.Employee{employee("A", award.FullTime)}

	// Exactly 5 hours: no break required.
	ro := makeRoster(emp, shiftOn("s1", "A", 5, 9, 14))
	issues, err := roster.MealBreakRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)

	// 5h01m: 30 minutes required.
	ro = makeRoster(emp, shiftAt("s2", "A", 5, 9, 0, 14, 1))
	issues, err = roster.MealBreakRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(30)))
	assert.True(t, issues[0].Actual.Equal(decimal.Zero))

	// 9.5 hours with only 45 minutes taken: 60 required.
	long := shiftAt("s3", "A", 5, 8, 0, 17, 30)
	long.MealBreakTaken = true
	long.MealBreakMinutes = 45
	ro = makeRoster(emp, long)
	issues, err = roster.MealBreakRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(60)))
	assert.True(t, issues[0].Actual.Equal(decimal.NewFromInt(45)))
}

func TestMealBreak_MinutesWithoutTakenFlagIgnored(t *testing.T) {
	// Recorded minutes only count when the break was actually taken.
	s := shiftOn("s1", "A", 5, 9, 17) // 8 hours
	s.MealBreakMinutes = 30           // taken flag not set
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)}, s)

	issues, err := roster.MealBreakRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Actual.Equal(decimal.Zero))
}

// =============================================================================
// REST PERIOD
// =============================================================================

func TestRestPeriod_Bands(t *testing.T) {
	emp := []*roster.Employee{employee("A", award.FullTime)}

	// 9 hours rest: Error against the 10-hour minimum.
	ro := makeRoster(emp,
		shiftOn("s1", "A", 5, 13, 22),
		shiftOn("s2", "A", 6, 7, 15))
	issues, err := roster.RestPeriodRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.SeverityError, issues[0].Severity)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(10)))
	assert.True(t, issues[0].Actual.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, "s2", issues[0].ShiftID)
	assert.Equal(t, 2, issues[0].AffectedShiftsCount)

	// 11 hours rest: Warning against the preferred 12.
	ro = makeRoster(emp,
		shiftOn("s1", "A", 5, 13, 22),
		shiftOn("s2", "A", 6, 9, 17))
	issues, err = roster.RestPeriodRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.SeverityWarning, issues[0].Severity)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(12)))

	// Exactly 12 hours: clean.
	ro = makeRoster(emp,
		shiftOn("s1", "A", 5, 13, 21),
		shiftOn("s2", "A", 6, 9, 17))
	issues, err = roster.RestPeriodRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRestPeriod_JustUnderPreferred(t *testing.T) {
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)},
		shiftAt("s1", "A", 5, 13, 0, 21, 1), // ends 21:01
		shiftOn("s2", "A", 6, 9, 17))        // 11h59m rest

	issues, err := roster.RestPeriodRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.SeverityWarning, issues[0].Severity)
}

// =============================================================================
// MAXIMUM CONSECUTIVE DAYS
// =============================================================================

func sixDayWeek(employeeID string, firstDay int) []roster.Shift {
	shifts := make([]roster.Shift, 0, 6)
	for i := 0; i < 6; i++ {
		shifts = append(shifts, shiftOn("", employeeID, firstDay+i, 9, 17))
	}
	return shifts
}

func TestConsecutiveDays_SixIsLegal(t *testing.T) {
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)},
		sixDayWeek("A", 5)...)

	issues, err := roster.MaxConsecutiveDaysRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestConsecutiveDays_SevenIsFlagged(t *testing.T) {
	shifts := append(sixDayWeek("A", 5), shiftOn("s7", "A", 11, 9, 17))
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)}, shifts...)

	issues, err := roster.MaxConsecutiveDaysRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.SeverityWarning, issues[0].Severity)
	assert.True(t, issues[0].Actual.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, 7, issues[0].AffectedShiftsCount)
}

func TestConsecutiveDays_TwoSeparateRuns(t *testing.T) {
	// 7 days, a day off, then 7 more: two distinct warnings.
	shifts := append(sixDayWeek("A", 5), shiftOn("", "A", 11, 9, 17))
	shifts = append(shifts, sixDayWeek("A", 13)...)
	shifts = append(shifts, shiftOn("", "A", 19, 9, 17))
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)}, shifts...)

	issues, err := roster.MaxConsecutiveDaysRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Len(t, issues, 2)
}

// =============================================================================
// WEEKLY HOURS
// =============================================================================

func TestWeeklyHours_FullTimeOverCapIsInfo(t *testing.T) {
	// Five 9-hour days in one ISO week = 45h against the 38h cap.
	var shifts []roster.Shift
	for i := 0; i < 5; i++ {
		shifts = append(shifts, shiftOn("", "A", 5+i, 8, 17))
	}
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)}, shifts...)

	issues, err := roster.WeeklyHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.SeverityInfo, issues[0].Severity)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(38)))
	assert.True(t, issues[0].Actual.Equal(decimal.NewFromInt(45)))
}

func TestWeeklyHours_CasualUncapped(t *testing.T) {
	var shifts []roster.Shift
	for i := 0; i < 6; i++ {
		shifts = append(shifts, shiftOn("", "A", 5+i, 8, 18))
	}
	ro := makeRoster([]*roster.Employee{employee("A", award.Casual)}, shifts...)

	issues, err := roster.WeeklyHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestWeeklyHours_PartTimeOverGuarantee(t *testing.T) {
	ro := makeRoster([]*roster.Employee{partTimer("A", "20")},
		shiftOn("", "A", 5, 9, 17),
		shiftOn("", "A", 6, 9, 17),
		shiftOn("", "A", 7, 9, 17)) // 24h against 20 guaranteed

	issues, err := roster.WeeklyHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.CheckWeeklyHoursLimit, issues[0].CheckType)
	assert.Equal(t, compliance.SeverityWarning, issues[0].Severity)
	assert.True(t, issues[0].Expected.Equal(decimal.NewFromInt(20)))
}

func TestWeeklyHours_PartTimeWithoutGuarantee(t *testing.T) {
	ro := makeRoster([]*roster.Employee{partTimer("A", "")},
		shiftOn("", "A", 5, 9, 17),
		shiftOn("", "A", 6, 9, 17))

	issues, err := roster.WeeklyHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, compliance.CheckDataQuality, issues[0].CheckType)
	assert.Equal(t, compliance.SeverityWarning, issues[0].Severity)
	assert.Equal(t, 2, issues[0].AffectedShiftsCount)
}

func TestWeeklyHours_SplitAcrossISOWeeks(t *testing.T) {
	// 24h in week 2 plus 16h in week 3: neither bucket crosses 38.
	var shifts []roster.Shift
	for i := 0; i < 3; i++ {
		shifts = append(shifts, shiftOn("", "A", 9+i, 9, 17)) // Fri-Sun week 2
	}
	shifts = append(shifts,
		shiftOn("", "A", 12, 9, 17), // Monday week 3
		shiftOn("", "A", 13, 9, 17))
	ro := makeRoster([]*roster.Employee{employee("A", award.FullTime)}, shifts...)

	issues, err := roster.WeeklyHoursRule{}.Evaluate(ro, params())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// =============================================================================
// ENGINE
// =============================================================================

func TestRosterEngine_StampsOwnership(t *testing.T) {
	engine := roster.NewEngine(params())
	ro := makeRoster(nil, shiftOn("s1", "GHOST", 5, 9, 17))

	issues, err := engine.Evaluate(context.Background(), ro, "validation-9")
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	for _, issue := range issues {
		assert.NotEmpty(t, issue.ID)
		assert.Equal(t, "validation-9", issue.ValidationID)
	}
}

func TestRosterEngine_ExecutedCheckTypes(t *testing.T) {
	engine := roster.NewEngine(params())
	assert.ElementsMatch(t, []compliance.CheckType{
		compliance.CheckDataQuality,
		compliance.CheckMinimumShiftHours,
		compliance.CheckMealBreak,
		compliance.CheckRestPeriodBetweenShifts,
		compliance.CheckWeeklyHoursLimit,
		compliance.CheckMaximumConsecutiveDays,
	}, engine.ExecutedCheckTypes())
}
