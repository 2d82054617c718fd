/*
handlers.go - HTTP API handlers for the compliance engine

PURPOSE:
  Exposes the award compliance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                List all employees
    POST   /api/employees                Create or update an employee

  Rosters:
    POST   /api/rosters                  Create or replace a roster
    GET    /api/rosters/{id}             Get a roster with its shifts
    POST   /api/rosters/{id}/validate    Run (or reuse) roster validation
    GET    /api/rosters/{id}/validation  Latest roster validation result

  Pay runs:
    POST   /api/payruns/upload           Upload a payroll CSV/XLSX file
    POST   /api/payruns/{id}/validate    Run (or reuse) payroll validation
    GET    /api/payruns/{id}/validation  Latest payroll validation result

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (ingest pipeline, orchestrator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, corrupt upload
  - 404: Resource not found
  - 422: File content failed format validation (structured row errors)
  - 500: Internal errors, rule execution failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - validation/orchestrator.go: Validation lifecycle
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/ingest"
	"github.com/fairwork/compliance-engine/payroll"
	"github.com/fairwork/compliance-engine/roster"
	"github.com/fairwork/compliance-engine/store/sqlite"
	"github.com/fairwork/compliance-engine/validation"
)

// maxUploadBytes caps payroll file uploads at 8 MiB.
const maxUploadBytes = 8 << 20

const dateLayout = "2006-01-02"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Orchestrator *validation.Orchestrator

	builder *validation.ResponseBuilder
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	rosters := roster.NewEngine(award.NewRosterParameters())
	payrolls := payroll.NewEngine()
	return &Handler{
		Store:        store,
		Orchestrator: validation.NewOrchestrator(store, rosters, payrolls),
		builder:      validation.NewResponseBuilder(),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	et, err := award.ParseEmploymentType(req.EmploymentType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employment_type", err)
		return
	}

	e := roster.Employee{
		ID:             req.ID,
		Name:           req.Name,
		Number:         req.Number,
		EmploymentType: et,
	}
	if req.GuaranteedHours != "" {
		hours, err := decimal.NewFromString(req.GuaranteedHours)
		if err != nil || hours.Sign() < 0 {
			writeError(w, http.StatusBadRequest, "Invalid guaranteed_hours", err)
			return
		}
		e.GuaranteedHours = &hours
	}

	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

func toEmployeeDTO(e roster.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:             e.ID,
		Name:           e.Name,
		Number:         e.Number,
		EmploymentType: string(e.EmploymentType),
	}
	if e.GuaranteedHours != nil {
		dto.GuaranteedHours = e.GuaranteedHours.String()
	}
	return dto
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// CreateRoster stores a roster and its shifts, replacing any prior
// shift set for the same roster id.
func (h *Handler) CreateRoster(w http.ResponseWriter, r *http.Request) {
	var req CreateRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ro, err := rosterFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid roster", err)
		return
	}

	if err := h.Store.SaveRoster(r.Context(), ro); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save roster", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRosterDTO(ro))
}

// GetRoster returns a roster with its shifts.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ro, err := h.Store.GetRoster(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get roster", err)
		return
	}
	if ro == nil {
		writeError(w, http.StatusNotFound, "Roster not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRosterDTO(ro))
}

// ValidateRoster runs the roster validation (or returns the cached
// terminal result for an unchanged rule set).
func (h *Handler) ValidateRoster(w http.ResponseWriter, r *http.Request) {
	result, err := h.Orchestrator.ValidateRoster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "roster", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetRosterValidation returns the stored validation result for a roster
// without triggering a new run.
func (h *Handler) GetRosterValidation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ro, err := h.Store.GetRoster(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get roster", err)
		return
	}
	if ro == nil {
		writeError(w, http.StatusNotFound, "Roster not found", nil)
		return
	}

	v, err := h.Store.GetValidation(ctx, compliance.KindRoster, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get validation", err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Roster has not been validated", nil)
		return
	}

	issues, err := h.Store.ActiveIssues(ctx, v.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get issues", err)
		return
	}
	writeJSON(w, http.StatusOK, h.builder.RosterResult(ro, v, issues))
}

func rosterFromRequest(req CreateRosterRequest) (*roster.Roster, error) {
	a, err := award.ParseAward(req.Award)
	if err != nil {
		return nil, err
	}
	weekStart, err := time.Parse(dateLayout, req.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("week_start: %w", err)
	}
	weekEnd, err := time.Parse(dateLayout, req.WeekEnd)
	if err != nil {
		return nil, fmt.Errorf("week_end: %w", err)
	}
	if weekEnd.Before(weekStart) {
		return nil, errors.New("week_end is before week_start")
	}

	ro := &roster.Roster{
		ID:        req.ID,
		Name:      req.Name,
		Award:     a,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Employees: make(map[string]*roster.Employee),
	}
	if ro.ID == "" {
		ro.ID = uuid.NewString()
	}

	for i, sr := range req.Shifts {
		if sr.EmployeeID == "" {
			return nil, fmt.Errorf("shift %d: employee_id is required", i+1)
		}
		date, err := time.Parse(dateLayout, sr.Date)
		if err != nil {
			return nil, fmt.Errorf("shift %d: date: %w", i+1, err)
		}
		start, err := time.Parse(time.RFC3339, sr.Start)
		if err != nil {
			return nil, fmt.Errorf("shift %d: start: %w", i+1, err)
		}
		end, err := time.Parse(time.RFC3339, sr.End)
		if err != nil {
			return nil, fmt.Errorf("shift %d: end: %w", i+1, err)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("shift %d: end must be after start", i+1)
		}

		sh := roster.Shift{
			ID:               sr.ID,
			RosterID:         ro.ID,
			EmployeeID:       sr.EmployeeID,
			Date:             date,
			Start:            start,
			End:              end,
			MealBreakTaken:   sr.MealBreakTaken,
			MealBreakMinutes: sr.MealBreakMinutes,
			RestBreakTaken:   sr.RestBreakTaken,
			RestBreakMinutes: sr.RestBreakMinutes,
		}
		if sh.ID == "" {
			sh.ID = uuid.NewString()
		}
		ro.Shifts = append(ro.Shifts, sh)
	}
	return ro, nil
}

func toRosterDTO(ro *roster.Roster) RosterDTO {
	dto := RosterDTO{
		ID:        ro.ID,
		Name:      ro.Name,
		Award:     string(ro.Award),
		WeekStart: ro.WeekStart.Format(dateLayout),
		WeekEnd:   ro.WeekEnd.Format(dateLayout),
		Shifts:    make([]ShiftDTO, len(ro.Shifts)),
	}
	for i, sh := range ro.Shifts {
		dto.Shifts[i] = ShiftDTO{
			ID:               sh.ID,
			EmployeeID:       sh.EmployeeID,
			Date:             sh.Date.Format(dateLayout),
			Start:            sh.Start.Format(time.RFC3339),
			End:              sh.End.Format(time.RFC3339),
			MealBreakTaken:   sh.MealBreakTaken,
			MealBreakMinutes: sh.MealBreakMinutes,
			RestBreakTaken:   sh.RestBreakTaken,
			RestBreakMinutes: sh.RestBreakMinutes,
		}
	}
	return dto
}

// =============================================================================
// PAY RUN HANDLERS
// =============================================================================

// UploadPayRun ingests a payroll file (multipart field "file"), runs
// the three-stage format validation, and persists payslips only when
// every row passes. The "award" form value selects the award the file
// is validated against.
func (h *Handler) UploadPayRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart request", err)
		return
	}

	a, err := award.ParseAward(r.FormValue("award"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid award", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file upload", err)
		return
	}
	defer file.Close()

	var raw []ingest.RawRow
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		raw, err = ingest.ParseXLSX(file)
	default:
		raw, err = ingest.ParseCSV(file)
	}
	if err != nil {
		// Structural failure: the caller gets no row detail on purpose.
		writeError(w, http.StatusBadRequest, ingest.ErrCorruptFile.Error(), nil)
		return
	}

	rows, rowErrs, err := ingest.NewPayrollValidator(a).Validate(r.Context(), raw)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Validation aborted", err)
		return
	}
	if len(rowErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, ingest.NewValidationFailure(rowErrs))
		return
	}

	payRunID := uuid.NewString()
	if err := h.Store.SavePayslipsFromRows(r.Context(), payRunID, rows, uuid.NewString); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payslips", err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{PayRunID: payRunID, Rows: len(rows)})
}

// ValidatePayRun runs the payroll validation (or returns the cached
// terminal result for an unchanged rule set).
func (h *Handler) ValidatePayRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.Orchestrator.ValidatePayroll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "pay run", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetPayRunValidation returns the stored validation result for a pay
// run without triggering a new run.
func (h *Handler) GetPayRunValidation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	slips, err := h.Store.GetPayslips(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payslips", err)
		return
	}
	if len(slips) == 0 {
		writeError(w, http.StatusNotFound, "Pay run not found", nil)
		return
	}

	v, err := h.Store.GetValidation(ctx, compliance.KindPayroll, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get validation", err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Pay run has not been validated", nil)
		return
	}

	issues, err := h.Store.ActiveIssues(ctx, v.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get issues", err)
		return
	}
	writeJSON(w, http.StatusOK, h.builder.PayrollResult(slips, v, issues))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeValidationError(w http.ResponseWriter, subject string, err error) {
	switch {
	case errors.Is(err, validation.ErrRosterNotFound),
		errors.Is(err, validation.ErrPayRunNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown %s", subject), nil)
	case errors.Is(err, validation.ErrExecutionFailure):
		// Recorded as a failed validation; a retry may succeed.
		writeError(w, http.StatusInternalServerError, "Validation execution failed", err)
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to validate %s", subject), err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
