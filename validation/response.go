/*
response.go - Projection of persisted state into the caller-facing shape

PURPOSE:
  Pure mapping from (subject, validation, issues) to the result payload.
  Employee names are resolved best-effort: an id with no matching record
  yields null name/number rather than failing the whole response.
*/
package validation

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/payroll"
	"github.com/fairwork/compliance-engine/roster"
)

// =============================================================================
// RESULT SHAPE
// =============================================================================

// Result is the caller-facing validation outcome.
type Result struct {
	ValidationID string `json:"validationId"`
	Status       string `json:"status"`

	TotalShifts  int `json:"totalShifts"`
	PassedShifts int `json:"passedShifts"`
	FailedShifts int `json:"failedShifts"`

	TotalIssues    int `json:"totalIssues"`
	CriticalIssues int `json:"criticalIssues"`

	AffectedEmployees int `json:"affectedEmployees"`
	TotalEmployees    int `json:"totalEmployees"`

	WeekStartDate string `json:"weekStartDate"`
	WeekEndDate   string `json:"weekEndDate"`
	ValidatedAt   string `json:"validatedAt"`

	// FailureType is "Execution", "Compliance" or null; Retriable is
	// true only for execution failures, null for non-failed runs.
	FailureType *string `json:"failureType"`
	Retriable   *bool   `json:"retriable"`

	Issues []IssueResult `json:"issues"`
}

// IssueResult is one finding in the result payload.
type IssueResult struct {
	EmployeeID     string          `json:"employeeId"`
	EmployeeName   *string         `json:"employeeName"`
	EmployeeNumber *string         `json:"employeeNumber"`
	ShiftID        *string         `json:"shiftId"`
	CheckType      string          `json:"checkType"`
	Severity       string          `json:"severity"`
	Description    string          `json:"description"`
	ExpectedValue  decimal.Decimal `json:"expectedValue"`
	ActualValue    decimal.Decimal `json:"actualValue"`
	AffectedDates  string          `json:"affectedDates"`
}

// =============================================================================
// BUILDER
// =============================================================================

// ResponseBuilder projects persisted validation state. It holds no
// state and performs no I/O.
type ResponseBuilder struct{}

func NewResponseBuilder() *ResponseBuilder { return &ResponseBuilder{} }

// RosterResult builds the result for a roster run, resolving employee
// names from the roster's employee records.
func (b *ResponseBuilder) RosterResult(ro *roster.Roster, v *compliance.Validation, issues []compliance.Issue) *Result {
	lookup := func(employeeID string) (name, number *string) {
		if emp, ok := ro.Employee(employeeID); ok {
			return strPtr(emp.Name), strPtr(emp.Number)
		}
		return nil, nil
	}
	return b.build(v, issues, lookup)
}

// PayrollResult builds the result for a pay-run validation, resolving
// employee names from the payslips themselves.
func (b *ResponseBuilder) PayrollResult(slips []payroll.Payslip, v *compliance.Validation, issues []compliance.Issue) *Result {
	names := make(map[string]string, len(slips))
	for _, s := range slips {
		names[s.EmployeeID] = s.EmployeeName
	}
	lookup := func(employeeID string) (name, number *string) {
		if n, ok := names[employeeID]; ok {
			return strPtr(n), strPtr(employeeID)
		}
		return nil, nil
	}
	return b.build(v, issues, lookup)
}

func (b *ResponseBuilder) build(v *compliance.Validation, issues []compliance.Issue, lookup func(string) (*string, *string)) *Result {
	result := &Result{
		ValidationID:      v.ID,
		Status:            string(v.Status),
		TotalShifts:       v.TotalShifts,
		PassedShifts:      v.PassedShifts,
		FailedShifts:      v.FailedShifts,
		TotalIssues:       v.TotalIssues,
		CriticalIssues:    v.CriticalIssues,
		AffectedEmployees: v.AffectedEmployees,
		TotalEmployees:    v.TotalEmployees,
		WeekStartDate:     formatDate(v.WeekStart),
		WeekEndDate:       formatDate(v.WeekEnd),
		ValidatedAt:       v.ValidatedAt.UTC().Format(time.RFC3339),
		Issues:            make([]IssueResult, 0, len(issues)),
	}

	switch v.FailureKind {
	case compliance.FailureExecution:
		result.FailureType = strPtr("Execution")
		result.Retriable = boolPtr(true)
	case compliance.FailureCompliance:
		result.FailureType = strPtr("Compliance")
		result.Retriable = boolPtr(false)
	}

	for _, issue := range issues {
		name, number := lookup(issue.EmployeeID)
		ir := IssueResult{
			EmployeeID:     issue.EmployeeID,
			EmployeeName:   name,
			EmployeeNumber: number,
			CheckType:      string(issue.CheckType),
			Severity:       string(issue.Severity),
			Description:    issue.Description,
			ExpectedValue:  issue.Expected,
			ActualValue:    issue.Actual,
			AffectedDates:  compactDates(issue.AffectedDates),
		}
		if issue.ShiftID != "" {
			ir.ShiftID = strPtr(issue.ShiftID)
		}
		result.Issues = append(result.Issues, ir)
	}
	return result
}

// =============================================================================
// HELPERS
// =============================================================================

// compactDates renders an ordered, deduplicated date set as
// "2026-01-05, 2026-01-06".
func compactDates(dates []time.Time) string {
	if len(dates) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(dates))
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		s := formatDate(d)
		if !seen[s] {
			seen[s] = true
			formatted = append(formatted, s)
		}
	}
	sort.Strings(formatted)
	return strings.Join(formatted, ", ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
