/*
orchestrator.go - The re-validation state machine

DECISION TABLE (new validate request, prior validation present):
  Passed or Failed/Compliance  -> return the cached result verbatim,
                                  engine not invoked (idempotent, cheap)
  Failed/Execution             -> retire prior issues, re-run the full
                                  rule set, update the record IN PLACE
  stale check-type coverage    -> treated like Failed/Execution: the
                                  rule set grew, the cached run is stale
  none                         -> create InProgress, run, persist

ERROR BOUNDARY:
  Engine errors (and panics) are caught exactly once here and converted
  into the Execution failure state - never left to propagate as a raw
  fault. Compliance failures are not errors at all: they are the
  correct, terminal, cacheable outcome.
*/
package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/payroll"
	"github.com/fairwork/compliance-engine/roster"
)

// Orchestrator coordinates validation runs. Safe for concurrent use
// across different subjects; same-subject races are resolved by the
// store's upsert key, not by locking here.
type Orchestrator struct {
	store    Store
	rosters  RosterEngine
	payrolls PayrollEngine
	builder  *ResponseBuilder

	now func() time.Time
}

func NewOrchestrator(store Store, rosters RosterEngine, payrolls PayrollEngine) *Orchestrator {
	return &Orchestrator{
		store:    store,
		rosters:  rosters,
		payrolls: payrolls,
		builder:  NewResponseBuilder(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// =============================================================================
// ROSTER VALIDATION
// =============================================================================

// ValidateRoster runs (or reuses) the validation for one roster.
func (o *Orchestrator) ValidateRoster(ctx context.Context, rosterID string) (*Result, error) {
	ro, err := o.store.GetRoster(ctx, rosterID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if ro == nil {
		return nil, ErrRosterNotFound
	}

	v, cached, err := o.prepare(ctx, compliance.KindRoster, rosterID, o.rosters.ExecutedCheckTypes())
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return o.builder.RosterResult(ro, cached.validation, cached.issues), nil
	}

	v.TotalShifts = len(ro.Shifts)
	v.TotalEmployees = len(ro.Employees)
	v.WeekStart = ro.WeekStart
	v.WeekEnd = ro.WeekEnd
	if err := o.store.SaveValidation(ctx, v); err != nil {
		return nil, fmt.Errorf("persist in-progress validation: %w", err)
	}

	issues, evalErr := o.evaluateRoster(ctx, ro, v.ID)
	if evalErr != nil {
		return nil, o.recordExecutionFailure(ctx, v, evalErr)
	}

	o.finalizeRoster(v, ro, issues)
	if err := o.persistOutcome(ctx, v, issues); err != nil {
		return nil, err
	}
	return o.builder.RosterResult(ro, v, issues), nil
}

// evaluateRoster shields the orchestrator from engine panics; any panic
// surfaces as an ordinary execution error.
func (o *Orchestrator) evaluateRoster(ctx context.Context, ro *roster.Roster, validationID string) (issues []compliance.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return o.rosters.Evaluate(ctx, ro, validationID)
}

// finalizeRoster derives the terminal state and aggregate counts.
func (o *Orchestrator) finalizeRoster(v *compliance.Validation, ro *roster.Roster, issues []compliance.Issue) {
	// A shift fails when a failing issue references it directly, or
	// references its employee without naming a shift (e.g. a missing
	// employee record covers every shift of that employee).
	failedShifts := make(map[string]bool)
	failedEmployees := make(map[string]bool)
	for _, issue := range issues {
		if !issue.Severity.Fails() {
			continue
		}
		if issue.ShiftID != "" {
			failedShifts[issue.ShiftID] = true
		} else if issue.EmployeeID != "" {
			failedEmployees[issue.EmployeeID] = true
		}
	}
	failed := 0
	for _, s := range ro.Shifts {
		if failedShifts[s.ID] || failedEmployees[s.EmployeeID] {
			failed++
		}
	}

	v.FailedShifts = failed
	v.PassedShifts = len(ro.Shifts) - failed
	o.finalizeCommon(v, issues)
}

// =============================================================================
// PAYROLL VALIDATION
// =============================================================================

// ValidatePayroll runs (or reuses) the validation for one pay run.
func (o *Orchestrator) ValidatePayroll(ctx context.Context, payRunID string) (*Result, error) {
	slips, err := o.store.GetPayslips(ctx, payRunID)
	if err != nil {
		return nil, fmt.Errorf("load payslips: %w", err)
	}
	if len(slips) == 0 {
		return nil, ErrPayRunNotFound
	}

	v, cached, err := o.prepare(ctx, compliance.KindPayroll, payRunID, o.payrolls.ExecutedCheckTypes())
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return o.builder.PayrollResult(slips, cached.validation, cached.issues), nil
	}

	employees := make(map[string]bool)
	for _, s := range slips {
		employees[s.EmployeeID] = true
	}
	v.TotalShifts = len(slips)
	v.TotalEmployees = len(employees)
	v.WeekStart = slips[0].PeriodStart
	v.WeekEnd = slips[0].PeriodEnd
	if err := o.store.SaveValidation(ctx, v); err != nil {
		return nil, fmt.Errorf("persist in-progress validation: %w", err)
	}

	issues, evalErr := o.evaluatePayroll(ctx, slips, v.ID)
	if evalErr != nil {
		return nil, o.recordExecutionFailure(ctx, v, evalErr)
	}

	o.finalizePayroll(v, slips, issues)
	if err := o.persistOutcome(ctx, v, issues); err != nil {
		return nil, err
	}
	return o.builder.PayrollResult(slips, v, issues), nil
}

func (o *Orchestrator) evaluatePayroll(ctx context.Context, slips []payroll.Payslip, validationID string) (issues []compliance.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return o.payrolls.Evaluate(ctx, slips, validationID)
}

func (o *Orchestrator) finalizePayroll(v *compliance.Validation, slips []payroll.Payslip, issues []compliance.Issue) {
	failedEmployees := make(map[string]bool)
	for _, issue := range issues {
		if issue.Severity.Fails() && issue.EmployeeID != "" {
			failedEmployees[issue.EmployeeID] = true
		}
	}
	failed := 0
	for _, s := range slips {
		if failedEmployees[s.EmployeeID] {
			failed++
		}
	}

	v.FailedShifts = failed
	v.PassedShifts = len(slips) - failed
	o.finalizeCommon(v, issues)
}

// =============================================================================
// SHARED STATE TRANSITIONS
// =============================================================================

type cachedRun struct {
	validation *compliance.Validation
	issues     []compliance.Issue
}

// prepare resolves the decision table: reuse a cached terminal run,
// reset a retriable one in place, or create a fresh record.
func (o *Orchestrator) prepare(ctx context.Context, kind compliance.Kind, subjectID string, checkTypes []compliance.CheckType) (*compliance.Validation, *cachedRun, error) {
	existing, err := o.store.GetValidation(ctx, kind, subjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("load validation: %w", err)
	}

	now := o.now()

	if existing == nil {
		return &compliance.Validation{
			ID:                 uuid.NewString(),
			Kind:               kind,
			SubjectID:          subjectID,
			Status:             compliance.StatusInProgress,
			ExecutedCheckTypes: checkTypes,
			CreatedAt:          now,
		}, nil, nil
	}

	reusable := existing.Status.Terminal() &&
		!existing.Retriable() &&
		existing.CoversCheckTypes(checkTypes)
	if reusable {
		issues, err := o.store.ActiveIssues(ctx, existing.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("load cached issues: %w", err)
		}
		return nil, &cachedRun{validation: existing, issues: issues}, nil
	}

	// Retriable (or stale) run: retire its issues and reuse the record
	// in place. Never insert a second validation for the same subject.
	if err := o.store.RetireIssues(ctx, existing.ID, now); err != nil {
		return nil, nil, fmt.Errorf("retire previous issues: %w", err)
	}

	existing.Status = compliance.StatusInProgress
	existing.FailureKind = compliance.FailureNone
	existing.Notes = ""
	existing.ExecutedCheckTypes = checkTypes
	existing.TotalIssues = 0
	existing.CriticalIssues = 0
	existing.AffectedEmployees = 0
	existing.PassedShifts = 0
	existing.FailedShifts = 0
	return existing, nil, nil
}

func (o *Orchestrator) finalizeCommon(v *compliance.Validation, issues []compliance.Issue) {
	v.TotalIssues = len(issues)
	v.CriticalIssues = compliance.CountCritical(issues)
	v.AffectedEmployees = compliance.AffectedEmployees(issues)
	v.ValidatedAt = o.now()

	if v.CriticalIssues > 0 {
		v.Status = compliance.StatusFailed
		v.FailureKind = compliance.FailureCompliance
	} else {
		v.Status = compliance.StatusPassed
		v.FailureKind = compliance.FailureNone
	}
}

func (o *Orchestrator) persistOutcome(ctx context.Context, v *compliance.Validation, issues []compliance.Issue) error {
	if err := o.store.SaveIssues(ctx, issues); err != nil {
		return fmt.Errorf("persist issues: %w", err)
	}
	if err := o.store.SaveValidation(ctx, v); err != nil {
		return fmt.Errorf("persist validation: %w", err)
	}
	return nil
}

// recordExecutionFailure marks the run Failed/Execution so the next
// validate call retries, then surfaces a retriable error to the caller.
func (o *Orchestrator) recordExecutionFailure(ctx context.Context, v *compliance.Validation, evalErr error) error {
	v.Status = compliance.StatusFailed
	v.FailureKind = compliance.FailureExecution
	v.Notes = evalErr.Error()
	v.ValidatedAt = o.now()

	if saveErr := o.store.SaveValidation(ctx, v); saveErr != nil {
		return fmt.Errorf("%w: %v (state not persisted: %v)", ErrExecutionFailure, evalErr, saveErr)
	}
	return fmt.Errorf("%w: %v", ErrExecutionFailure, evalErr)
}
