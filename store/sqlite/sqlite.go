/*
Package sqlite provides the SQLite-backed implementation of the
validation storage contracts.

PURPOSE:
  Implements validation.Store plus the employee/roster/payslip
  persistence the API layer needs. The same patterns apply to
  PostgreSQL in production - only minor SQL dialect differences.

KEY TABLES:
  employees:   Roster-side employee records
  rosters:     One roster per week per organization
  shifts:      Rostered work periods, owned by a roster
  payslips:    Ingested pay records, owned by a pay run
  validations: One row per (kind, subject) - the unique index IS the
               concurrency story: two racing validate calls collapse
               into one record via upsert, no locking in the core
  issues:      Findings; soft-deleted via retired_at, never removed

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer, better crash recovery.

USAGE:
  st, err := sqlite.New(":memory:")
  ...
  orch := validation.NewOrchestrator(st, rosterEngine, payrollEngine)

SEE ALSO:
  - validation/store.go: Interface definitions
  - validation/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/ingest"
	"github.com/fairwork/compliance-engine/payroll"
	"github.com/fairwork/compliance-engine/roster"
)

// Store implements the storage contracts using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		employment_type TEXT NOT NULL,
		guaranteed_hours TEXT
	);

	CREATE TABLE IF NOT EXISTS rosters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		award TEXT NOT NULL,
		week_start TEXT NOT NULL,
		week_end TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		roster_id TEXT NOT NULL REFERENCES rosters(id),
		employee_id TEXT NOT NULL,
		shift_date TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		meal_break_taken INTEGER NOT NULL DEFAULT 0,
		meal_break_minutes INTEGER NOT NULL DEFAULT 0,
		rest_break_taken INTEGER NOT NULL DEFAULT 0,
		rest_break_minutes INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_shifts_roster ON shifts(roster_id);

	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		pay_run_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL,
		award TEXT NOT NULL,
		classification INTEGER NOT NULL,
		employment_type TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		pay_date TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		ordinary_hours TEXT NOT NULL,
		ordinary_pay TEXT NOT NULL,
		saturday_hours TEXT NOT NULL,
		saturday_pay TEXT NOT NULL,
		sunday_hours TEXT NOT NULL,
		sunday_pay TEXT NOT NULL,
		public_holiday_hours TEXT NOT NULL,
		public_holiday_pay TEXT NOT NULL,
		gross_pay TEXT NOT NULL,
		super_paid TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_payslips_run ON payslips(pay_run_id);

	CREATE TABLE IF NOT EXISTS validations (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		status TEXT NOT NULL,
		failure_kind TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		total_shifts INTEGER NOT NULL DEFAULT 0,
		passed_shifts INTEGER NOT NULL DEFAULT 0,
		failed_shifts INTEGER NOT NULL DEFAULT 0,
		total_issues INTEGER NOT NULL DEFAULT 0,
		critical_issues INTEGER NOT NULL DEFAULT 0,
		affected_employees INTEGER NOT NULL DEFAULT 0,
		total_employees INTEGER NOT NULL DEFAULT 0,
		week_start TEXT NOT NULL DEFAULT '',
		week_end TEXT NOT NULL DEFAULT '',
		executed_check_types TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		validated_at TEXT NOT NULL DEFAULT ''
	);
	-- One validation per subject; racing creates collapse here.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_validations_subject
		ON validations(kind, subject_id);

	CREATE TABLE IF NOT EXISTS issues (
		id TEXT PRIMARY KEY,
		validation_id TEXT NOT NULL REFERENCES validations(id),
		check_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		employee_id TEXT NOT NULL DEFAULT '',
		shift_id TEXT NOT NULL DEFAULT '',
		expected TEXT NOT NULL DEFAULT '0',
		actual TEXT NOT NULL DEFAULT '0',
		affected_dates TEXT NOT NULL DEFAULT '',
		affected_shifts INTEGER NOT NULL DEFAULT 0,
		context_label TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		retired_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_issues_validation ON issues(validation_id, retired_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const timeLayout = time.RFC3339
const dateLayout = "2006-01-02"

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e roster.Employee) error {
	var guaranteed sql.NullString
	if e.GuaranteedHours != nil {
		guaranteed = sql.NullString{String: e.GuaranteedHours.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, number, employment_type, guaranteed_hours)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			number = excluded.number,
			employment_type = excluded.employment_type,
			guaranteed_hours = excluded.guaranteed_hours`,
		e.ID, e.Name, e.Number, string(e.EmploymentType), guaranteed)
	return err
}

func (s *Store) ListEmployees(ctx context.Context) ([]roster.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, number, employment_type, guaranteed_hours FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []roster.Employee
	for rows.Next() {
		var e roster.Employee
		var et string
		var guaranteed sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Number, &et, &guaranteed); err != nil {
			return nil, err
		}
		e.EmploymentType = award.EmploymentType(et)
		if guaranteed.Valid {
			v, err := decimal.NewFromString(guaranteed.String)
			if err != nil {
				return nil, fmt.Errorf("employee %s: bad guaranteed hours: %w", e.ID, err)
			}
			e.GuaranteedHours = &v
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// ROSTERS AND SHIFTS
// =============================================================================

// SaveRoster persists a roster and replaces its shift set.
func (s *Store) SaveRoster(ctx context.Context, ro *roster.Roster) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rosters (id, name, award, week_start, week_end)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			award = excluded.award,
			week_start = excluded.week_start,
			week_end = excluded.week_end`,
		ro.ID, ro.Name, string(ro.Award),
		ro.WeekStart.Format(dateLayout), ro.WeekEnd.Format(dateLayout))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shifts WHERE roster_id = ?`, ro.ID); err != nil {
		return err
	}
	for _, sh := range ro.Shifts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shifts (id, roster_id, employee_id, shift_date, start_at, end_at,
				meal_break_taken, meal_break_minutes, rest_break_taken, rest_break_minutes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sh.ID, ro.ID, sh.EmployeeID,
			sh.Date.Format(dateLayout),
			sh.Start.UTC().Format(timeLayout), sh.End.UTC().Format(timeLayout),
			boolToInt(sh.MealBreakTaken), sh.MealBreakMinutes,
			boolToInt(sh.RestBreakTaken), sh.RestBreakMinutes)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRoster loads a roster with its shifts and the employee records
// referenced by them. Returns (nil, nil) when the roster is absent.
func (s *Store) GetRoster(ctx context.Context, id string) (*roster.Roster, error) {
	ro := &roster.Roster{ID: id, Employees: make(map[string]*roster.Employee)}
	var awardName, weekStart, weekEnd string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, award, week_start, week_end FROM rosters WHERE id = ?`, id).
		Scan(&ro.Name, &awardName, &weekStart, &weekEnd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ro.Award = award.Award(awardName)
	if ro.WeekStart, err = time.Parse(dateLayout, weekStart); err != nil {
		return nil, err
	}
	if ro.WeekEnd, err = time.Parse(dateLayout, weekEnd); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, shift_date, start_at, end_at,
			meal_break_taken, meal_break_minutes, rest_break_taken, rest_break_minutes
		FROM shifts WHERE roster_id = ? ORDER BY start_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sh roster.Shift
		var date, start, end string
		var mealTaken, restTaken int
		if err := rows.Scan(&sh.ID, &sh.EmployeeID, &date, &start, &end,
			&mealTaken, &sh.MealBreakMinutes, &restTaken, &sh.RestBreakMinutes); err != nil {
			return nil, err
		}
		sh.RosterID = id
		sh.MealBreakTaken = mealTaken != 0
		sh.RestBreakTaken = restTaken != 0
		if sh.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, err
		}
		if sh.Start, err = time.Parse(timeLayout, start); err != nil {
			return nil, err
		}
		if sh.End, err = time.Parse(timeLayout, end); err != nil {
			return nil, err
		}
		ro.Shifts = append(ro.Shifts, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ro, s.attachEmployees(ctx, ro)
}

func (s *Store) attachEmployees(ctx context.Context, ro *roster.Roster) error {
	seen := make(map[string]bool)
	for _, sh := range ro.Shifts {
		if seen[sh.EmployeeID] {
			continue
		}
		seen[sh.EmployeeID] = true

		var e roster.Employee
		var et string
		var guaranteed sql.NullString
		err := s.db.QueryRowContext(ctx,
			`SELECT id, name, number, employment_type, guaranteed_hours FROM employees WHERE id = ?`,
			sh.EmployeeID).Scan(&e.ID, &e.Name, &e.Number, &et, &guaranteed)
		if err == sql.ErrNoRows {
			continue // missing record: DataQualityRule's finding, not ours
		}
		if err != nil {
			return err
		}
		e.EmploymentType = award.EmploymentType(et)
		if guaranteed.Valid {
			v, err := decimal.NewFromString(guaranteed.String)
			if err != nil {
				return fmt.Errorf("employee %s: bad guaranteed hours: %w", e.ID, err)
			}
			e.GuaranteedHours = &v
		}
		ro.Employees[e.ID] = &e
	}
	return nil
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// SavePayslipsFromRows persists one payslip per validated CSV row under
// the given pay run id.
func (s *Store) SavePayslipsFromRows(ctx context.Context, payRunID string, rows []ingest.ValidatedPayrollRow, newID func() string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payslips (id, pay_run_id, employee_id, employee_name,
				award, classification, employment_type,
				period_start, period_end, pay_date,
				hourly_rate, ordinary_hours, ordinary_pay,
				saturday_hours, saturday_pay, sunday_hours, sunday_pay,
				public_holiday_hours, public_holiday_pay, gross_pay, super_paid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			newID(), payRunID, row.EmployeeID,
			strings.TrimSpace(row.FirstName+" "+row.LastName),
			string(row.Award), int(row.Classification), string(row.EmploymentType),
			row.PayPeriodStart.Format(dateLayout), row.PayPeriodEnd.Format(dateLayout),
			row.PayDate.Format(dateLayout),
			row.HourlyRate.String(), row.OrdinaryHours.String(), row.OrdinaryPay.String(),
			row.SaturdayHours.String(), row.SaturdayPay.String(),
			row.SundayHours.String(), row.SundayPay.String(),
			row.PublicHolidayHours.String(), row.PublicHolidayPay.String(),
			row.GrossPay.String(), row.SuperPaid.String())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetPayslips(ctx context.Context, payRunID string) ([]payroll.Payslip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pay_run_id, employee_id, employee_name,
			award, classification, employment_type,
			period_start, period_end, pay_date,
			hourly_rate, ordinary_hours, ordinary_pay,
			saturday_hours, saturday_pay, sunday_hours, sunday_pay,
			public_holiday_hours, public_holiday_pay, gross_pay, super_paid
		FROM payslips WHERE pay_run_id = ? ORDER BY employee_id`, payRunID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slips []payroll.Payslip
	for rows.Next() {
		var p payslipRow
		if err := rows.Scan(&p.id, &p.payRunID, &p.employeeID, &p.employeeName,
			&p.award, &p.classification, &p.employmentType,
			&p.periodStart, &p.periodEnd, &p.payDate,
			&p.hourlyRate, &p.ordinaryHours, &p.ordinaryPay,
			&p.saturdayHours, &p.saturdayPay, &p.sundayHours, &p.sundayPay,
			&p.phHours, &p.phPay, &p.grossPay, &p.superPaid); err != nil {
			return nil, err
		}
		slip, err := p.toPayslip()
		if err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}
	return slips, rows.Err()
}

type payslipRow struct {
	id, payRunID, employeeID, employeeName string
	award, employmentType                  string
	classification                         int
	periodStart, periodEnd, payDate        string
	hourlyRate, ordinaryHours, ordinaryPay string
	saturdayHours, saturdayPay             string
	sundayHours, sundayPay, phHours, phPay string
	grossPay, superPaid                    string
}

func (p payslipRow) toPayslip() (payroll.Payslip, error) {
	slip := payroll.Payslip{
		ID:             p.id,
		PayRunID:       p.payRunID,
		EmployeeID:     p.employeeID,
		EmployeeName:   p.employeeName,
		Award:          award.Award(p.award),
		Classification: award.Classification(p.classification),
		EmploymentType: award.EmploymentType(p.employmentType),
	}

	var err error
	if slip.PeriodStart, err = time.Parse(dateLayout, p.periodStart); err != nil {
		return slip, err
	}
	if slip.PeriodEnd, err = time.Parse(dateLayout, p.periodEnd); err != nil {
		return slip, err
	}
	if slip.PayDate, err = time.Parse(dateLayout, p.payDate); err != nil {
		return slip, err
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&slip.HourlyRate, p.hourlyRate},
		{&slip.OrdinaryHours, p.ordinaryHours},
		{&slip.OrdinaryPay, p.ordinaryPay},
		{&slip.SaturdayHours, p.saturdayHours},
		{&slip.SaturdayPay, p.saturdayPay},
		{&slip.SundayHours, p.sundayHours},
		{&slip.SundayPay, p.sundayPay},
		{&slip.PublicHolidayHours, p.phHours},
		{&slip.PublicHolidayPay, p.phPay},
		{&slip.GrossPay, p.grossPay},
		{&slip.SuperPaid, p.superPaid},
	} {
		if *field.dst, err = decimal.NewFromString(field.src); err != nil {
			return slip, fmt.Errorf("payslip %s: %w", p.id, err)
		}
	}
	return slip, nil
}

// =============================================================================
// VALIDATIONS
// =============================================================================

func (s *Store) GetValidation(ctx context.Context, kind compliance.Kind, subjectID string) (*compliance.Validation, error) {
	var v compliance.Validation
	var kindStr, status, failureKind, weekStart, weekEnd, checkTypes, createdAt, validatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, subject_id, status, failure_kind, notes,
			total_shifts, passed_shifts, failed_shifts,
			total_issues, critical_issues, affected_employees, total_employees,
			week_start, week_end, executed_check_types, created_at, validated_at
		FROM validations WHERE kind = ? AND subject_id = ?`,
		string(kind), subjectID).
		Scan(&v.ID, &kindStr, &v.SubjectID, &status, &failureKind, &v.Notes,
			&v.TotalShifts, &v.PassedShifts, &v.FailedShifts,
			&v.TotalIssues, &v.CriticalIssues, &v.AffectedEmployees, &v.TotalEmployees,
			&weekStart, &weekEnd, &checkTypes, &createdAt, &validatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	v.Kind = compliance.Kind(kindStr)
	v.Status = compliance.Status(status)
	v.FailureKind = compliance.FailureKind(failureKind)
	for _, ct := range strings.Split(checkTypes, ",") {
		if ct != "" {
			v.ExecutedCheckTypes = append(v.ExecutedCheckTypes, compliance.CheckType(ct))
		}
	}
	if weekStart != "" {
		if v.WeekStart, err = time.Parse(dateLayout, weekStart); err != nil {
			return nil, err
		}
	}
	if weekEnd != "" {
		if v.WeekEnd, err = time.Parse(dateLayout, weekEnd); err != nil {
			return nil, err
		}
	}
	if v.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, err
	}
	if validatedAt != "" {
		if v.ValidatedAt, err = time.Parse(timeLayout, validatedAt); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

// SaveValidation upserts on (kind, subject_id). The unique index makes
// concurrent validates for one subject converge on a single record.
func (s *Store) SaveValidation(ctx context.Context, v *compliance.Validation) error {
	checkTypes := make([]string, len(v.ExecutedCheckTypes))
	for i, ct := range v.ExecutedCheckTypes {
		checkTypes[i] = string(ct)
	}
	validatedAt := ""
	if !v.ValidatedAt.IsZero() {
		validatedAt = v.ValidatedAt.UTC().Format(timeLayout)
	}
	weekStart, weekEnd := "", ""
	if !v.WeekStart.IsZero() {
		weekStart = v.WeekStart.Format(dateLayout)
	}
	if !v.WeekEnd.IsZero() {
		weekEnd = v.WeekEnd.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO validations (id, kind, subject_id, status, failure_kind, notes,
			total_shifts, passed_shifts, failed_shifts,
			total_issues, critical_issues, affected_employees, total_employees,
			week_start, week_end, executed_check_types, created_at, validated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, subject_id) DO UPDATE SET
			status = excluded.status,
			failure_kind = excluded.failure_kind,
			notes = excluded.notes,
			total_shifts = excluded.total_shifts,
			passed_shifts = excluded.passed_shifts,
			failed_shifts = excluded.failed_shifts,
			total_issues = excluded.total_issues,
			critical_issues = excluded.critical_issues,
			affected_employees = excluded.affected_employees,
			total_employees = excluded.total_employees,
			week_start = excluded.week_start,
			week_end = excluded.week_end,
			executed_check_types = excluded.executed_check_types,
			validated_at = excluded.validated_at`,
		v.ID, string(v.Kind), v.SubjectID, string(v.Status), string(v.FailureKind), v.Notes,
		v.TotalShifts, v.PassedShifts, v.FailedShifts,
		v.TotalIssues, v.CriticalIssues, v.AffectedEmployees, v.TotalEmployees,
		weekStart, weekEnd, strings.Join(checkTypes, ","),
		v.CreatedAt.UTC().Format(timeLayout), validatedAt)
	return err
}

// =============================================================================
// ISSUES
// =============================================================================

func (s *Store) SaveIssues(ctx context.Context, issues []compliance.Issue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, issue := range issues {
		dates := make([]string, len(issue.AffectedDates))
		for i, d := range issue.AffectedDates {
			dates[i] = d.Format(dateLayout)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issues (id, validation_id, check_type, severity,
				employee_id, shift_id, expected, actual,
				affected_dates, affected_shifts, context_label, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			issue.ID, issue.ValidationID, string(issue.CheckType), string(issue.Severity),
			issue.EmployeeID, issue.ShiftID,
			issue.Expected.String(), issue.Actual.String(),
			strings.Join(dates, ","), issue.AffectedShiftsCount,
			issue.ContextLabel, issue.Description,
			issue.CreatedAt.UTC().Format(timeLayout))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RetireIssues soft-deletes; retired rows stay for audit history.
func (s *Store) RetireIssues(ctx context.Context, validationID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE issues SET retired_at = ? WHERE validation_id = ? AND retired_at IS NULL`,
		at.UTC().Format(timeLayout), validationID)
	return err
}

func (s *Store) ActiveIssues(ctx context.Context, validationID string) ([]compliance.Issue, error) {
	return s.queryIssues(ctx, `
		SELECT id, validation_id, check_type, severity, employee_id, shift_id,
			expected, actual, affected_dates, affected_shifts,
			context_label, description, created_at, retired_at
		FROM issues WHERE validation_id = ? AND retired_at IS NULL
		ORDER BY created_at, id`, validationID)
}

// AllIssues includes retired issues; used for audit inspection.
func (s *Store) AllIssues(ctx context.Context, validationID string) ([]compliance.Issue, error) {
	return s.queryIssues(ctx, `
		SELECT id, validation_id, check_type, severity, employee_id, shift_id,
			expected, actual, affected_dates, affected_shifts,
			context_label, description, created_at, retired_at
		FROM issues WHERE validation_id = ? ORDER BY created_at, id`, validationID)
}

func (s *Store) queryIssues(ctx context.Context, query string, args ...any) ([]compliance.Issue, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []compliance.Issue
	for rows.Next() {
		var issue compliance.Issue
		var checkType, severity, expected, actual, dates, createdAt string
		var retiredAt sql.NullString
		if err := rows.Scan(&issue.ID, &issue.ValidationID, &checkType, &severity,
			&issue.EmployeeID, &issue.ShiftID, &expected, &actual,
			&dates, &issue.AffectedShiftsCount,
			&issue.ContextLabel, &issue.Description, &createdAt, &retiredAt); err != nil {
			return nil, err
		}
		issue.CheckType = compliance.CheckType(checkType)
		issue.Severity = compliance.Severity(severity)
		if issue.Expected, err = decimal.NewFromString(expected); err != nil {
			return nil, err
		}
		if issue.Actual, err = decimal.NewFromString(actual); err != nil {
			return nil, err
		}
		for _, d := range strings.Split(dates, ",") {
			if d == "" {
				continue
			}
			parsed, err := time.Parse(dateLayout, d)
			if err != nil {
				return nil, err
			}
			issue.AffectedDates = append(issue.AffectedDates, parsed)
		}
		if issue.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, err
		}
		if retiredAt.Valid {
			parsed, err := time.Parse(timeLayout, retiredAt.String)
			if err != nil {
				return nil, err
			}
			issue.RetiredAt = &parsed
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
