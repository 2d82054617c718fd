/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers. The compliance payloads themselves (validation.Result,
  ingest.ValidationFailure) already carry their JSON contract and are
  returned directly.

SEE ALSO:
  - handlers.go: Uses these types
  - validation/response.go: Result and IssueResult payloads
*/
package api

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Number          string `json:"number,omitempty"`
	EmploymentType  string `json:"employment_type"`
	GuaranteedHours string `json:"guaranteed_hours,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Number          string `json:"number"`
	EmploymentType  string `json:"employment_type"`
	GuaranteedHours string `json:"guaranteed_hours,omitempty"`
}

// ShiftRequest is one rostered shift in a roster submission.
type ShiftRequest struct {
	ID               string `json:"id,omitempty"`
	EmployeeID       string `json:"employee_id"`
	Date             string `json:"date"`
	Start            string `json:"start"`
	End              string `json:"end"`
	MealBreakTaken   bool   `json:"meal_break_taken"`
	MealBreakMinutes int    `json:"meal_break_minutes"`
	RestBreakTaken   bool   `json:"rest_break_taken"`
	RestBreakMinutes int    `json:"rest_break_minutes"`
}

// CreateRosterRequest is the request to create or replace a roster.
type CreateRosterRequest struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Award     string         `json:"award"`
	WeekStart string         `json:"week_start"`
	WeekEnd   string         `json:"week_end"`
	Shifts    []ShiftRequest `json:"shifts"`
}

// RosterDTO represents a stored roster in API responses.
type RosterDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Award     string     `json:"award"`
	WeekStart string     `json:"week_start"`
	WeekEnd   string     `json:"week_end"`
	Shifts    []ShiftDTO `json:"shifts"`
}

// ShiftDTO represents one shift in API responses.
type ShiftDTO struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	Date             string `json:"date"`
	Start            string `json:"start"`
	End              string `json:"end"`
	MealBreakTaken   bool   `json:"meal_break_taken"`
	MealBreakMinutes int    `json:"meal_break_minutes"`
	RestBreakTaken   bool   `json:"rest_break_taken"`
	RestBreakMinutes int    `json:"rest_break_minutes"`
}

// UploadResponse acknowledges an accepted pay run upload.
type UploadResponse struct {
	PayRunID string `json:"pay_run_id"`
	Rows     int    `json:"rows"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
