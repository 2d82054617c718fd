/*
validator.go - Three-stage semantic validation of parsed payroll rows

PURPOSE:
  Turns RawRows into ValidatedPayrollRows, or a complete error list.
  A row either passes every check and becomes a typed row, or contributes
  only errors - there is no partially validated state.

STAGES:
  1. Header:      Exact ordinal match against the 20-column header vector.
                  Count mismatch short-circuits with one error; name
                  mismatches accumulate, one per divergent column.
  2. File-level:  (only if stage 1 passed) Pay-period strings identical
                  across all rows; employee IDs unique among non-blank
                  values; then (only if both held) the shared period must
                  parse as YYYY-MM-DD with start <= end.
  3. Field-level: (only if stages 1-2 passed) Every data row checked
                  independently; ALL applicable errors for a row are
                  collected before moving on - no short-circuit.

ROW NUMBERING:
  0 = file-level, 1 = header, N >= 2 = data row N.

ERROR CONTRACT:
  Any error anywhere means the whole file is rejected (422): the caller
  gets the error list and no rows. Semantic failures are user-actionable,
  never a server error.

SEE ALSO:
  - parser.go: The structural layer feeding this one
*/
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/award"
)

// =============================================================================
// HEADER CONTRACT
// =============================================================================

// ExpectedHeader is the exact 20-column payroll export header, in order.
var ExpectedHeader = []string{
	"Employee ID", "First Name", "Last Name",
	"Pay Period Start", "Pay Period End", "Pay Date",
	"Award Type", "Classification", "Employment Type",
	"Hourly Rate", "Ordinary Hours", "Ordinary Pay",
	"Saturday Hours", "Saturday Pay",
	"Sunday Hours", "Sunday Pay",
	"Public Holiday Hours", "Public Holiday Pay",
	"Gross Pay", "Superannuation Paid",
}

// Column indexes into ExpectedHeader.
const (
	colEmployeeID = iota
	colFirstName
	colLastName
	colPeriodStart
	colPeriodEnd
	colPayDate
	colAwardType
	colClassification
	colEmploymentType
	colHourlyRate
	colOrdinaryHours
	colOrdinaryPay
	colSaturdayHours
	colSaturdayPay
	colSundayHours
	colSundayPay
	colPublicHolidayHours
	colPublicHolidayPay
	colGrossPay
	colSuperPaid
)

const dateLayout = "2006-01-02"

// =============================================================================
// RESULT TYPES
// =============================================================================

// RowError is one field-addressable validation error.
// RowNumber 0 is file-level, 1 the header, N >= 2 a data row.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// ValidationFailure is the caller-facing 422 payload.
type ValidationFailure struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Errors  []RowError `json:"errors"`
}

func NewValidationFailure(errs []RowError) *ValidationFailure {
	return &ValidationFailure{
		Code:    422,
		Message: "CSV format validation failed",
		Errors:  errs,
	}
}

// ValidatedPayrollRow is one payslip record that passed all three stages.
// Only fully valid rows exist as this type.
type ValidatedPayrollRow struct {
	RowNumber int

	EmployeeID string
	FirstName  string
	LastName   string

	PayPeriodStart time.Time
	PayPeriodEnd   time.Time
	PayDate        time.Time

	Award          award.Award
	Classification award.Classification
	EmploymentType award.EmploymentType

	HourlyRate    decimal.Decimal
	OrdinaryHours decimal.Decimal
	OrdinaryPay   decimal.Decimal

	SaturdayHours      decimal.Decimal
	SaturdayPay        decimal.Decimal
	SundayHours        decimal.Decimal
	SundayPay          decimal.Decimal
	PublicHolidayHours decimal.Decimal
	PublicHolidayPay   decimal.Decimal

	GrossPay  decimal.Decimal
	SuperPaid decimal.Decimal
}

// =============================================================================
// VALIDATOR
// =============================================================================

// PayrollValidator runs the three-stage pipeline for one upload, bound to
// the Award selected for the validation run (the Award Type cell must
// match its short name).
type PayrollValidator struct {
	award award.Award
}

func NewPayrollValidator(a award.Award) *PayrollValidator {
	return &PayrollValidator{award: a}
}

// Validate runs all three stages. It returns either the validated rows
// (errs nil) or the full error list (rows nil) - never both. The error
// return is reserved for cancellation.
func (v *PayrollValidator) Validate(ctx context.Context, rows []RawRow) ([]ValidatedPayrollRow, []RowError, error) {
	if len(rows) == 0 {
		return nil, []RowError{{RowNumber: 0, Field: "File", Message: "File contains no rows"}}, nil
	}

	if errs := validateHeader(rows[0]); len(errs) > 0 {
		return nil, errs, nil
	}

	data := rows[1:]
	if len(data) == 0 {
		return nil, []RowError{{RowNumber: 0, Field: "File", Message: "File contains no data rows"}}, nil
	}

	if errs := validateFileLevel(data); len(errs) > 0 {
		return nil, errs, nil
	}

	return v.validateFields(ctx, data)
}

// =============================================================================
// STAGE 1 - HEADER
// =============================================================================

func validateHeader(header RawRow) []RowError {
	if len(header) != len(ExpectedHeader) {
		return []RowError{{
			RowNumber: 1,
			Field:     "Header",
			Message:   fmt.Sprintf("Expected %d columns, found %d", len(ExpectedHeader), len(header)),
		}}
	}

	var errs []RowError
	for i, want := range ExpectedHeader {
		if got := strings.TrimSpace(header[i]); got != want {
			errs = append(errs, RowError{
				RowNumber: 1,
				Field:     want,
				Message:   fmt.Sprintf("Column %d must be %q, found %q", i+1, want, got),
			})
		}
	}
	return errs
}

// =============================================================================
// STAGE 2 - FILE LEVEL
// =============================================================================

func validateFileLevel(data []RawRow) []RowError {
	var errs []RowError

	// (a) Pay-period strings identical across the file. String equality
	// after trim, not date equality - date parsing comes later.
	refStart := cell(data, 0, colPeriodStart)
	refEnd := cell(data, 0, colPeriodEnd)
	consistent := true
	for i := range data {
		if cell(data, i, colPeriodStart) != refStart || cell(data, i, colPeriodEnd) != refEnd {
			consistent = false
			errs = append(errs, RowError{
				RowNumber: 0,
				Field:     "Pay Period",
				Message:   "Pay Period Start and Pay Period End must be identical for every row in the file",
			})
			break
		}
	}

	// (b) Employee IDs unique among non-blank values, one error per
	// duplicate group listing all affected rows.
	rowsByID := make(map[string][]int)
	var idOrder []string
	for i := range data {
		id := cell(data, i, colEmployeeID)
		if id == "" {
			continue
		}
		if len(rowsByID[id]) == 0 {
			idOrder = append(idOrder, id)
		}
		rowsByID[id] = append(rowsByID[id], i+2)
	}
	unique := true
	for _, id := range idOrder {
		if nums := rowsByID[id]; len(nums) > 1 {
			unique = false
			errs = append(errs, RowError{
				RowNumber: 0,
				Field:     "Employee ID",
				Message:   fmt.Sprintf("Duplicate Employee ID %q in rows %s", id, joinRowNumbers(nums)),
			})
		}
	}

	// (c) Only when (a) and (b) both held: the shared period must parse
	// and be ordered. No point parsing dates known to be inconsistent.
	if consistent && unique {
		start, errStart := time.Parse(dateLayout, refStart)
		end, errEnd := time.Parse(dateLayout, refEnd)
		switch {
		case errStart != nil || errEnd != nil:
			errs = append(errs, RowError{
				RowNumber: 0,
				Field:     "Pay Period",
				Message:   "Pay Period Start and Pay Period End must be valid dates in YYYY-MM-DD format",
			})
		case start.After(end):
			errs = append(errs, RowError{
				RowNumber: 0,
				Field:     "Pay Period",
				Message:   "Pay Period Start must be on or before Pay Period End",
			})
		}
	}

	return errs
}

func joinRowNumbers(nums []int) string {
	sort.Ints(nums)
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// STAGE 3 - FIELD LEVEL
// =============================================================================

func (v *PayrollValidator) validateFields(ctx context.Context, data []RawRow) ([]ValidatedPayrollRow, []RowError, error) {
	var (
		validated []ValidatedPayrollRow
		errs      []RowError
	)

	// The period strings already passed stage 2; parse the shared values
	// once rather than per row.
	periodStart, _ := time.Parse(dateLayout, cell(data, 0, colPeriodStart))
	periodEnd, _ := time.Parse(dateLayout, cell(data, 0, colPeriodEnd))

	for i := range data {
		// Field validation iterates every row; stay responsive to
		// cancellation between rows.
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, rowErrs := v.validateRow(data, i, periodStart, periodEnd)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		validated = append(validated, row)
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}
	return validated, nil, nil
}

// validateRow collects every applicable error for one data row before
// returning; nothing short-circuits inside a row.
func (v *PayrollValidator) validateRow(data []RawRow, i int, periodStart, periodEnd time.Time) (ValidatedPayrollRow, []RowError) {
	rowNum := i + 2
	var errs []RowError
	fail := func(field, message string) {
		errs = append(errs, RowError{RowNumber: rowNum, Field: field, Message: message})
	}

	row := ValidatedPayrollRow{
		RowNumber:      rowNum,
		PayPeriodStart: periodStart,
		PayPeriodEnd:   periodEnd,
		Award:          v.award,
	}

	// Required text fields.
	row.EmployeeID = cell(data, i, colEmployeeID)
	row.FirstName = cell(data, i, colFirstName)
	row.LastName = cell(data, i, colLastName)
	for _, f := range []struct {
		name  string
		value string
	}{
		{"Employee ID", row.EmployeeID},
		{"First Name", row.FirstName},
		{"Last Name", row.LastName},
	} {
		if f.value == "" {
			fail(f.name, f.name+" is required")
		}
	}

	// Pay Date.
	if raw := cell(data, i, colPayDate); raw == "" {
		fail("Pay Date", "Pay Date is required")
	} else if payDate, err := time.Parse(dateLayout, raw); err != nil {
		fail("Pay Date", "Pay Date must be a valid date in YYYY-MM-DD format")
	} else {
		row.PayDate = payDate
	}

	// Award Type must match the Award selected for this run.
	if raw := cell(data, i, colAwardType); !strings.EqualFold(raw, v.award.ShortName()) {
		fail("Award Type", fmt.Sprintf("Award Type must be %q for this validation", v.award.ShortName()))
	}

	// Classification.
	if c, err := award.ParseClassification(cell(data, i, colClassification)); err != nil {
		fail("Classification", "Classification must be one of Level 1 to Level 8")
	} else {
		row.Classification = c
	}

	// Employment type token vocabulary.
	if et, err := award.ParseEmploymentType(cell(data, i, colEmploymentType)); err != nil {
		fail("Employment Type", "Employment Type must be Full-time, Part-time, Casual or Fixed-term")
	} else {
		row.EmploymentType = et
	}

	// Hourly rate: positive number.
	if rate, ok := parseMoney(cell(data, i, colHourlyRate), "Hourly Rate", true, fail); ok {
		if rate.Sign() <= 0 {
			fail("Hourly Rate", "Hourly Rate must be a positive number")
		} else {
			row.HourlyRate = rate
		}
	}

	// Ordinary hours: >= 0.
	if hours, ok := parseMoney(cell(data, i, colOrdinaryHours), "Ordinary Hours", true, fail); ok {
		if hours.Sign() < 0 {
			fail("Ordinary Hours", "Ordinary Hours cannot be negative")
		} else {
			row.OrdinaryHours = hours
		}
	}

	// Pay totals: must parse, no sign constraint. Negative values are
	// legal correction entries; the rule engine flags them, the
	// validator does not reject them.
	if pay, ok := parseMoney(cell(data, i, colOrdinaryPay), "Ordinary Pay", true, fail); ok {
		row.OrdinaryPay = pay
	}
	if pay, ok := parseMoney(cell(data, i, colGrossPay), "Gross Pay", true, fail); ok {
		row.GrossPay = pay
	}
	if pay, ok := parseMoney(cell(data, i, colSuperPaid), "Superannuation Paid", true, fail); ok {
		row.SuperPaid = pay
	}

	// Penalty buckets: hours optional (default 0, >= 0 when present);
	// pay required whenever that bucket's hours > 0, otherwise optional
	// but must parse when present.
	row.SaturdayHours, row.SaturdayPay = v.validateBucket(data, i, "Saturday", colSaturdayHours, colSaturdayPay, fail)
	row.SundayHours, row.SundayPay = v.validateBucket(data, i, "Sunday", colSundayHours, colSundayPay, fail)
	row.PublicHolidayHours, row.PublicHolidayPay = v.validateBucket(data, i, "Public Holiday", colPublicHolidayHours, colPublicHolidayPay, fail)

	return row, errs
}

func (v *PayrollValidator) validateBucket(data []RawRow, i int, label string, hoursCol, payCol int, fail func(field, message string)) (decimal.Decimal, decimal.Decimal) {
	hoursField := label + " Hours"
	payField := label + " Pay"

	hours := decimal.Zero
	if raw := cell(data, i, hoursCol); raw != "" {
		if parsed, ok := parseMoney(raw, hoursField, true, fail); ok {
			if parsed.Sign() < 0 {
				fail(hoursField, hoursField+" cannot be negative")
			} else {
				hours = parsed
			}
		}
	}

	pay := decimal.Zero
	rawPay := cell(data, i, payCol)
	switch {
	case rawPay != "":
		if parsed, ok := parseMoney(rawPay, payField, true, fail); ok {
			pay = parsed
		}
	case hours.Sign() > 0:
		fail(payField, fmt.Sprintf("%s is required when %s is greater than zero", payField, hoursField))
	}

	return hours, pay
}

// =============================================================================
// CELL HELPERS
// =============================================================================

// cell returns the trimmed value at (row, col), tolerating short rows so
// a ragged row surfaces as missing-field errors rather than a panic.
func cell(data []RawRow, row, col int) string {
	if col >= len(data[row]) {
		return ""
	}
	return strings.TrimSpace(data[row][col])
}

func parseMoney(raw, field string, required bool, fail func(field, message string)) (decimal.Decimal, bool) {
	if raw == "" {
		if required {
			fail(field, field+" is required")
		}
		return decimal.Zero, false
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		fail(field, field+" must be a number")
		return decimal.Zero, false
	}
	return parsed, true
}
