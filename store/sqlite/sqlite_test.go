package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/ingest"
	"github.com/fairwork/compliance-engine/roster"
	"github.com/fairwork/compliance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployeeRoundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	guaranteed := decimal.RequireFromString("20.5")
	require.NoError(t, st.SaveEmployee(ctx, roster.Employee{
		ID: "A", Name: "Alex Chen", Number: "N-1",
		EmploymentType: award.PartTime, GuaranteedHours: &guaranteed,
	}))
	require.NoError(t, st.SaveEmployee(ctx, roster.Employee{
		ID: "B", Name: "Billie Quinn", EmploymentType: award.Casual,
	}))

	employees, err := st.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	// Ordered by name.
	assert.Equal(t, "A", employees[0].ID)
	require.NotNil(t, employees[0].GuaranteedHours)
	assert.True(t, employees[0].GuaranteedHours.Equal(guaranteed))
	assert.Equal(t, award.PartTime, employees[0].EmploymentType)
	assert.Nil(t, employees[1].GuaranteedHours)
}

func TestSaveEmployee_Upserts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	e := roster.Employee{ID: "A", Name: "Alex Chen", EmploymentType: award.FullTime}
	require.NoError(t, st.SaveEmployee(ctx, e))
	e.Name = "Alex C. Chen"
	require.NoError(t, st.SaveEmployee(ctx, e))

	employees, err := st.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Alex C. Chen", employees[0].Name)
}

// =============================================================================
// ROSTERS
// =============================================================================

func fixtureRoster() *roster.Roster {
	return &roster.Roster{
		ID:        "roster-1",
		Name:      "Week 2",
		Award:     award.AwardRetail,
		WeekStart: day(5),
		WeekEnd:   day(11),
		Shifts: []roster.Shift{
			{ID: "s2", RosterID: "roster-1", EmployeeID: "A", Date: day(6),
				Start: day(6).Add(9 * time.Hour), End: day(6).Add(17 * time.Hour),
				MealBreakTaken: true, MealBreakMinutes: 30},
			{ID: "s1", RosterID: "roster-1", EmployeeID: "A", Date: day(5),
				Start: day(5).Add(9 * time.Hour), End: day(5).Add(17 * time.Hour)},
			{ID: "s3", RosterID: "roster-1", EmployeeID: "GHOST", Date: day(7),
				Start: day(7).Add(9 * time.Hour), End: day(7).Add(12 * time.Hour)},
		},
	}
}

func TestRosterRoundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveEmployee(ctx, roster.Employee{
		ID: "A", Name: "Alex Chen", EmploymentType: award.FullTime,
	}))
	require.NoError(t, st.SaveRoster(ctx, fixtureRoster()))

	got, err := st.GetRoster(ctx, "roster-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Week 2", got.Name)
	assert.Equal(t, award.AwardRetail, got.Award)
	assert.True(t, got.WeekStart.Equal(day(5)))

	// Shifts come back ordered by start instant.
	require.Len(t, got.Shifts, 3)
	assert.Equal(t, "s1", got.Shifts[0].ID)
	assert.Equal(t, "s2", got.Shifts[1].ID)
	assert.True(t, got.Shifts[1].MealBreakTaken)
	assert.Equal(t, 30, got.Shifts[1].MealBreakMinutes)

	// Known employee attached; missing record simply absent.
	_, ok := got.Employee("A")
	assert.True(t, ok)
	_, ok = got.Employee("GHOST")
	assert.False(t, ok)
}

func TestGetRoster_Absent(t *testing.T) {
	st := newTestStore(t)

	got, err := st.GetRoster(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveRoster_ReplacesShifts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ro := fixtureRoster()
	require.NoError(t, st.SaveRoster(ctx, ro))

	ro.Shifts = ro.Shifts[:1]
	require.NoError(t, st.SaveRoster(ctx, ro))

	got, err := st.GetRoster(ctx, "roster-1")
	require.NoError(t, err)
	assert.Len(t, got.Shifts, 1)
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func TestPayslipRoundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	row := ingest.ValidatedPayrollRow{
		RowNumber:      2,
		EmployeeID:     "EMP001",
		FirstName:      "Jordan",
		LastName:       "Lee",
		PayPeriodStart: day(5),
		PayPeriodEnd:   day(11),
		PayDate:        day(15),
		Award:          award.AwardRetail,
		Classification: 3,
		EmploymentType: award.Casual,
		HourlyRate:     decimal.RequireFromString("34.49"),
		OrdinaryHours:  decimal.RequireFromString("20"),
		OrdinaryPay:    decimal.RequireFromString("689.80"),
		SaturdayHours:  decimal.RequireFromString("4"),
		SaturdayPay:    decimal.RequireFromString("206.94"),
		GrossPay:       decimal.RequireFromString("896.74"),
		SuperPaid:      decimal.RequireFromString("107.61"),
	}

	n := 0
	newID := func() string { n++; return fmt.Sprintf("slip-%d", n) }
	require.NoError(t, st.SavePayslipsFromRows(ctx, "run-1", []ingest.ValidatedPayrollRow{row}, newID))

	slips, err := st.GetPayslips(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, slips, 1)

	slip := slips[0]
	assert.Equal(t, "slip-1", slip.ID)
	assert.Equal(t, "run-1", slip.PayRunID)
	assert.Equal(t, "Jordan Lee", slip.EmployeeName)
	assert.Equal(t, award.Classification(3), slip.Classification)
	assert.Equal(t, award.Casual, slip.EmploymentType)
	assert.True(t, slip.HourlyRate.Equal(row.HourlyRate))
	assert.True(t, slip.SaturdayPay.Equal(row.SaturdayPay))
	assert.True(t, slip.SundayHours.IsZero())
	assert.True(t, slip.PayDate.Equal(day(15)))
}

func TestGetPayslips_UnknownRunIsEmpty(t *testing.T) {
	st := newTestStore(t)
	slips, err := st.GetPayslips(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, slips)
}

// =============================================================================
// VALIDATIONS
// =============================================================================

func fixtureValidation(id string) *compliance.Validation {
	return &compliance.Validation{
		ID:                 id,
		Kind:               compliance.KindRoster,
		SubjectID:          "roster-1",
		Status:             compliance.StatusInProgress,
		TotalShifts:        3,
		TotalEmployees:     2,
		WeekStart:          day(5),
		WeekEnd:            day(11),
		ExecutedCheckTypes: []compliance.CheckType{compliance.CheckMealBreak, compliance.CheckDataQuality},
		CreatedAt:          time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidationRoundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	v := fixtureValidation("v1")
	require.NoError(t, st.SaveValidation(ctx, v))

	got, err := st.GetValidation(ctx, compliance.KindRoster, "roster-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v1", got.ID)
	assert.Equal(t, compliance.StatusInProgress, got.Status)
	assert.Equal(t, compliance.FailureNone, got.FailureKind)
	assert.ElementsMatch(t, v.ExecutedCheckTypes, got.ExecutedCheckTypes)
	assert.True(t, got.WeekStart.Equal(day(5)))
	assert.True(t, got.ValidatedAt.IsZero(), "in-progress run has no validated timestamp")
}

func TestSaveValidation_ConvergesOnSubject(t *testing.T) {
	// Two racing saves for one subject collapse into one record; the
	// unique index keeps the first id.
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveValidation(ctx, fixtureValidation("v1")))

	second := fixtureValidation("v2")
	second.Status = compliance.StatusFailed
	second.FailureKind = compliance.FailureCompliance
	second.ValidatedAt = time.Date(2026, 1, 12, 10, 5, 0, 0, time.UTC)
	require.NoError(t, st.SaveValidation(ctx, second))

	got, err := st.GetValidation(ctx, compliance.KindRoster, "roster-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.ID, "original record id survives the upsert")
	assert.Equal(t, compliance.StatusFailed, got.Status)
	assert.Equal(t, compliance.FailureCompliance, got.FailureKind)
	assert.False(t, got.ValidatedAt.IsZero())
}

func TestGetValidation_KindsAreSeparate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveValidation(ctx, fixtureValidation("v1")))

	got, err := st.GetValidation(ctx, compliance.KindPayroll, "roster-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// ISSUES
// =============================================================================

func TestIssueLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveValidation(ctx, fixtureValidation("v1")))

	issue := compliance.Issue{
		ID:                  "i1",
		ValidationID:        "v1",
		CheckType:           compliance.CheckMealBreak,
		Severity:            compliance.SeverityError,
		EmployeeID:          "A",
		ShiftID:             "s1",
		Expected:            decimal.NewFromInt(30),
		Actual:              decimal.Zero,
		AffectedDates:       []time.Time{day(5), day(6)},
		AffectedShiftsCount: 1,
		ContextLabel:        "Meal Break Minutes",
		Description:         "missing meal break",
		CreatedAt:           time.Date(2026, 1, 12, 10, 1, 0, 0, time.UTC),
	}
	require.NoError(t, st.SaveIssues(ctx, []compliance.Issue{issue}))

	active, err := st.ActiveIssues(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	got := active[0]
	assert.Equal(t, compliance.CheckMealBreak, got.CheckType)
	assert.True(t, got.Expected.Equal(decimal.NewFromInt(30)))
	require.Len(t, got.AffectedDates, 2)
	assert.True(t, got.AffectedDates[0].Equal(day(5)))
	assert.Nil(t, got.RetiredAt)

	// Retire and verify the tombstone sticks.
	retireAt := time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.RetireIssues(ctx, "v1", retireAt))

	active, err = st.ActiveIssues(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := st.AllIssues(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].RetiredAt)
	assert.True(t, all[0].RetiredAt.Equal(retireAt))
}

func TestRetireIssues_LeavesNewIssuesActive(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveValidation(ctx, fixtureValidation("v1")))
	old := compliance.Issue{ID: "i1", ValidationID: "v1",
		CheckType: compliance.CheckMealBreak, Severity: compliance.SeverityError,
		Expected: decimal.Zero, Actual: decimal.Zero,
		CreatedAt: time.Date(2026, 1, 12, 10, 1, 0, 0, time.UTC)}
	require.NoError(t, st.SaveIssues(ctx, []compliance.Issue{old}))
	require.NoError(t, st.RetireIssues(ctx, "v1", time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC)))

	fresh := old
	fresh.ID = "i2"
	fresh.CreatedAt = time.Date(2026, 1, 13, 9, 1, 0, 0, time.UTC)
	require.NoError(t, st.SaveIssues(ctx, []compliance.Issue{fresh}))

	active, err := st.ActiveIssues(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "i2", active[0].ID)
}
