/*
Package validation coordinates compliance runs end to end.

PURPOSE:
  The orchestrator owns one validation run: load the subject (roster or
  pay run), decide whether a previous run can be reused, invoke the
  engine, persist results, and classify the outcome. The response
  builder then projects the persisted state into the caller-facing
  result shape - pure mapping, no business logic.

RE-VALIDATION STATE MACHINE:
  (absent) -> InProgress -> Passed | Failed
  A Failed run carries an explicit FailureKind: Execution (the engine
  errored - retriable) or Compliance (rules completed and found
  violations - authoritative and cached). Repeat validate calls on a
  terminal non-retriable run return the cached result without touching
  the engine.

KEY CONCEPTS IN THIS FILE (store.go):
  - Store: The load/save contracts the orchestrator consumes. The core
    never talks to a storage engine directly; SQLite and the in-memory
    store both implement this.
  - Upsert semantics: SaveValidation is an upsert keyed on (kind,
    subject id). Concurrent validates for the same roster must collapse
    to one record at the persistence layer, not via locking here.

SEE ALSO:
  - orchestrator.go: The state machine
  - response.go: Result projection
  - store/memory.go: In-memory Store for tests and dev mode
*/
package validation

import (
	"context"
	"errors"
	"time"

	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/payroll"
	"github.com/fairwork/compliance-engine/roster"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrRosterNotFound is returned when the subject roster does not exist.
	ErrRosterNotFound = errors.New("roster not found")

	// ErrPayRunNotFound is returned when no payslips exist for a pay run.
	ErrPayRunNotFound = errors.New("pay run not found")

	// ErrExecutionFailure wraps engine/infrastructure errors caught at
	// the orchestrator boundary. The caller should retry; the persisted
	// validation is marked retriable.
	ErrExecutionFailure = errors.New("validation execution failed")
)

// =============================================================================
// STORE CONTRACTS
// =============================================================================

// Store is the persistence contract the orchestrator consumes.
type Store interface {
	// GetRoster loads a roster with its shifts and employee records.
	// Returns (nil, nil) when the roster does not exist.
	GetRoster(ctx context.Context, id string) (*roster.Roster, error)

	// GetPayslips loads all payslips of a pay run, empty when none exist.
	GetPayslips(ctx context.Context, payRunID string) ([]payroll.Payslip, error)

	// GetValidation loads the single validation for a subject, or
	// (nil, nil) when none has been persisted yet.
	GetValidation(ctx context.Context, kind compliance.Kind, subjectID string) (*compliance.Validation, error)

	// SaveValidation upserts keyed on (kind, subject id). A second
	// record for the same subject must never be created.
	SaveValidation(ctx context.Context, v *compliance.Validation) error

	// SaveIssues persists a fresh issue set.
	SaveIssues(ctx context.Context, issues []compliance.Issue) error

	// RetireIssues soft-deletes every active issue of a validation,
	// preserving the audit trail.
	RetireIssues(ctx context.Context, validationID string, at time.Time) error

	// ActiveIssues returns a validation's non-retired issues.
	ActiveIssues(ctx context.Context, validationID string) ([]compliance.Issue, error)
}

// RosterEngine is the roster rule engine contract.
type RosterEngine interface {
	Evaluate(ctx context.Context, ro *roster.Roster, validationID string) ([]compliance.Issue, error)
	ExecutedCheckTypes() []compliance.CheckType
}

// PayrollEngine is the payroll rule engine contract.
type PayrollEngine interface {
	Evaluate(ctx context.Context, slips []payroll.Payslip, validationID string) ([]compliance.Issue, error)
	ExecutedCheckTypes() []compliance.CheckType
}
