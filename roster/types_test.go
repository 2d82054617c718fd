package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwork/compliance-engine/roster"
)

func day(d int) time.Time {
	// January 2026: the 5th is a Monday.
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func shiftOn(id, employeeID string, d int, startHour, endHour int) roster.Shift {
	return roster.Shift{
		ID:         id,
		EmployeeID: employeeID,
		Date:       day(d),
		Start:      time.Date(2026, 1, d, startHour, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 1, d, endHour, 0, 0, 0, time.UTC),
	}
}

func TestGroupShiftsByEmployee_SortedByStart(t *testing.T) {
	shifts := []roster.Shift{
		shiftOn("s3", "A", 7, 9, 17),
		shiftOn("s1", "A", 5, 9, 17),
		shiftOn("s2", "A", 6, 9, 17),
		shiftOn("s4", "B", 5, 9, 17),
	}

	grouped := roster.GroupShiftsByEmployee(shifts)
	require.Len(t, grouped, 2)
	require.Len(t, grouped["A"], 3)
	assert.Equal(t, "s1", grouped["A"][0].ID)
	assert.Equal(t, "s2", grouped["A"][1].ID)
	assert.Equal(t, "s3", grouped["A"][2].ID)
}

func TestISOWeekKey_MondayStart(t *testing.T) {
	// Sunday Jan 4 2026 closes week 1; Monday Jan 5 opens week 2.
	assert.Equal(t, "2026-W01", roster.ISOWeekKey(day(4)))
	assert.Equal(t, "2026-W02", roster.ISOWeekKey(day(5)))
	assert.Equal(t, "2026-W02", roster.ISOWeekKey(day(11)))
	assert.Equal(t, "2026-W03", roster.ISOWeekKey(day(12)))
}

func TestConsecutiveDayRuns_SplitsOnGap(t *testing.T) {
	shifts := []roster.Shift{
		shiftOn("s1", "A", 5, 9, 17),
		shiftOn("s2", "A", 6, 9, 17),
		// gap on the 7th
		shiftOn("s3", "A", 8, 9, 17),
	}

	runs := roster.ConsecutiveDayRuns(shifts)
	require.Len(t, runs, 2)
	assert.Len(t, runs[0].Days, 2)
	assert.Len(t, runs[1].Days, 1)
}

func TestConsecutiveDayRuns_CollapsesSameDay(t *testing.T) {
	// Split shift: two entries on one calendar day count one day.
	shifts := []roster.Shift{
		shiftOn("s1", "A", 5, 9, 12),
		shiftOn("s2", "A", 5, 17, 21),
		shiftOn("s3", "A", 6, 9, 17),
	}

	runs := roster.ConsecutiveDayRuns(shifts)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].Days, 2)
	assert.Len(t, runs[0].Shifts, 3)
}

func TestShiftDuration(t *testing.T) {
	s := shiftOn("s1", "A", 5, 9, 17)
	assert.Equal(t, 480, s.DurationMinutes())
	assert.Equal(t, "8", s.DurationHours().String())

	s.MealBreakTaken = true
	s.MealBreakMinutes = 30
	s.RestBreakTaken = true
	s.RestBreakMinutes = 10
	assert.Equal(t, 40, s.BreakMinutes())
}
