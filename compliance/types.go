/*
Package compliance defines the shared value types of the compliance core.

PURPOSE:
  Both rule engines (payroll and roster) and the validation orchestrator
  speak in these types: Severity, CheckType, Issue, and the Validation
  record with its explicit state machine.

KEY CONCEPTS IN THIS FILE (types.go):
  - CheckType: Which rule produced a finding. The serialized names are a
    durable storage contract - issues referencing them are persisted, so
    existing names must never be renamed or removed. Adding names is safe.
  - Severity: Closed enumeration Info < Warning < Error < Critical.
    Error and Critical fail a run; Info and Warning are reported only.
  - Issue: One finding, soft-deletable via RetiredAt to preserve audit
    history across re-runs.
  - Validation: One run for one subject (roster or pay run), with an
    explicit FailureKind instead of a magic notes prefix.

DESIGN PRINCIPLES:
  1. Immutability during evaluation: rules never mutate their subject
  2. Precision: expected/actual values are decimal.Decimal
  3. String-backed enums: the names ARE the wire and storage format
*/
package compliance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SEVERITY
// =============================================================================

type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityError    Severity = "Error"
	SeverityCritical Severity = "Critical"
)

// Fails reports whether this severity counts toward run failure.
func (s Severity) Fails() bool {
	return s == SeverityError || s == SeverityCritical
}

// =============================================================================
// CHECK TYPE
// =============================================================================

// CheckType names the rule that produced an issue.
// STORAGE CONTRACT: never rename or remove existing values.
type CheckType string

const (
	// Payroll engine
	CheckBaseRate       CheckType = "BaseRate"
	CheckPenaltyRate    CheckType = "PenaltyRate"
	CheckCasualLoading  CheckType = "CasualLoading"
	CheckSuperannuation CheckType = "Superannuation"

	// Roster engine
	CheckDataQuality             CheckType = "DataQuality"
	CheckMinimumShiftHours       CheckType = "MinimumShiftHours"
	CheckMealBreak               CheckType = "MealBreak"
	CheckRestPeriodBetweenShifts CheckType = "RestPeriodBetweenShifts"
	CheckWeeklyHoursLimit        CheckType = "WeeklyHoursLimit"
	CheckMaximumConsecutiveDays  CheckType = "MaximumConsecutiveDays"
)

// =============================================================================
// ISSUE
// =============================================================================

// Issue is one compliance finding, owned by a Validation.
//
// Issues are never hard-deleted: a re-run retires the previous set by
// stamping RetiredAt, keeping the audit trail intact.
type Issue struct {
	ID           string
	ValidationID string
	CheckType    CheckType
	Severity     Severity
	EmployeeID   string
	ShiftID      string // empty for payroll / cross-shift findings
	Expected     decimal.Decimal
	Actual       decimal.Decimal
	// AffectedDates is the ordered set of calendar dates the finding
	// spans. One date for most rules, the full run for consecutive-day
	// findings, both days for a rest-period pair.
	AffectedDates []time.Time
	// AffectedShiftsCount is how many shifts back the finding
	// (2 for a rest-period pair, run length in shifts for a
	// consecutive-day run, 0/1 elsewhere).
	AffectedShiftsCount int
	// ContextLabel qualifies Expected/Actual for display
	// ("Hourly Rate", "Saturday", "Data Issue", ...).
	ContextLabel string
	Description  string
	CreatedAt    time.Time
	RetiredAt    *time.Time
}

// Retired reports whether this issue belongs to a superseded run.
func (i *Issue) Retired() bool { return i.RetiredAt != nil }

// =============================================================================
// VALIDATION - One run for one subject
// =============================================================================

// Status is the validation lifecycle state. A record only exists once a
// run has started, so NotStarted is represented by absence.
type Status string

const (
	StatusInProgress Status = "InProgress"
	StatusPassed     Status = "Passed"
	StatusFailed     Status = "Failed"
)

func (s Status) Terminal() bool { return s == StatusPassed || s == StatusFailed }

// FailureKind sub-classifies a Failed run.
//
// Execution failures (the engine errored before completing) are
// retriable; compliance failures (rules completed and found violations)
// are authoritative and cacheable.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureExecution  FailureKind = "Execution"
	FailureCompliance FailureKind = "Compliance"
)

// Kind distinguishes what a validation run evaluated.
type Kind string

const (
	KindRoster  Kind = "roster"
	KindPayroll Kind = "payroll"
)

// Validation is one validation run. Exactly one exists per (kind,
// subject); re-runs update in place rather than inserting.
type Validation struct {
	ID        string
	Kind      Kind
	SubjectID string // roster id or pay-run id

	Status      Status
	FailureKind FailureKind
	// Notes carries the engine error message for execution failures,
	// free text otherwise.
	Notes string

	TotalShifts    int
	PassedShifts   int
	FailedShifts   int
	TotalIssues    int
	CriticalIssues int

	AffectedEmployees int
	TotalEmployees    int

	WeekStart time.Time
	WeekEnd   time.Time

	// ExecutedCheckTypes records which checks the run's rule set could
	// produce; a later, larger rule set makes the cached result stale.
	ExecutedCheckTypes []CheckType

	CreatedAt   time.Time
	ValidatedAt time.Time
}

// Retriable reports whether a new validate request should re-run the
// engine rather than return this record verbatim.
func (v *Validation) Retriable() bool {
	return v.Status == StatusFailed && v.FailureKind == FailureExecution
}

// CoversCheckTypes reports whether every given check type was executed by
// this run. A run that covers fewer checks than the current rule set is
// stale and must be re-run.
func (v *Validation) CoversCheckTypes(required []CheckType) bool {
	executed := make(map[CheckType]bool, len(v.ExecutedCheckTypes))
	for _, ct := range v.ExecutedCheckTypes {
		executed[ct] = true
	}
	for _, ct := range required {
		if !executed[ct] {
			return false
		}
	}
	return true
}

// =============================================================================
// AGGREGATION HELPERS
// =============================================================================

// CountCritical returns how many issues count toward failure
// (Error and Critical severities).
func CountCritical(issues []Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity.Fails() {
			n++
		}
	}
	return n
}

// AffectedEmployees returns the number of distinct employees referenced
// by the issue set.
func AffectedEmployees(issues []Issue) int {
	seen := make(map[string]bool)
	for _, issue := range issues {
		if issue.EmployeeID != "" {
			seen[issue.EmployeeID] = true
		}
	}
	return len(seen)
}
