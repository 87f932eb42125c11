/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Evaluation:
    EvaluateRequest, DeterminationDTO, BatchRequest, BatchResponse

  Employee:
    EmployeeDTO (request body is factory.EmployeeJSON)

  History:
    DeterminationRecordDTO

  Reference:
    MRADTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
  Dates are strings here and go through generic.ParseDate in the handlers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/employee.go: EmployeeJSON type
*/
package api

import (
	"time"

	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/factory"
	"github.com/warp/retirement-engine/store/sqlite"
)

// =============================================================================
// EVALUATION
// =============================================================================

// EvaluateRequest is an ad-hoc record to evaluate. BasisDate is optional
// and defaults to the server's current date.
type EvaluateRequest struct {
	factory.EmployeeJSON
	BasisDate string `json:"basis_date,omitempty"`
}

// DeterminationDTO is a person's projection plus every outcome.
type DeterminationDTO struct {
	EmployeeID       string                    `json:"employee_id,omitempty"`
	Person           eligibility.Projection    `json:"person"`
	Determination    eligibility.Determination `json:"determination"`
	EligibleBenefits []eligibility.Benefit     `json:"eligible_benefits"`
}

// BatchRequest evaluates many records. A record's own basis_date wins
// over the request-level one.
type BatchRequest struct {
	BasisDate string            `json:"basis_date,omitempty"`
	Records   []EvaluateRequest `json:"records"`
}

// BatchItemDTO is one record's result: a determination or an error.
type BatchItemDTO struct {
	Index         int               `json:"index"`
	ID            string            `json:"id,omitempty"`
	Determination *DeterminationDTO `json:"result,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// BatchResponse wraps every item plus counts.
type BatchResponse struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []BatchItemDTO `json:"results"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	DateOfBirth      string   `json:"date_of_birth"`
	ServiceStartDate string   `json:"service_start_date"`
	AppointmentType  string   `json:"appointment_type,omitempty"`
	ServiceClasses   []string `json:"service_classes,omitempty"`
	Regime           string   `json:"regime"`
	CreatedAt        string   `json:"created_at,omitempty"`
}

// DeterminationRecordDTO is one entry of an employee's recorded history.
type DeterminationRecordDTO struct {
	ID             string                    `json:"id"`
	EmployeeID     string                    `json:"employee_id"`
	Source         string                    `json:"source,omitempty"`
	IdempotencyKey string                    `json:"idempotency_key,omitempty"`
	RecordedAt     string                    `json:"recorded_at"`
	Determination  eligibility.Determination `json:"determination"`
}

// RecordDeterminationRequest optionally pins the basis date of a recording.
type RecordDeterminationRequest struct {
	BasisDate string `json:"basis_date,omitempty"`
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

// MRADTO is one row of the minimum retirement age table.
type MRADTO struct {
	BirthYear            int             `json:"birth_year"`
	MinimumRetirementAge eligibility.MRA `json:"minimum_retirement_age"`
	Display              string          `json:"display"`
}

// HealthDTO reports store reachability and row counts.
type HealthDTO struct {
	Status         string `json:"status"`
	Employees      int    `json:"employees"`
	Determinations int    `json:"determinations"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:               string(e.ID),
		Name:             e.Name,
		DateOfBirth:      e.DateOfBirth.String(),
		ServiceStartDate: e.ServiceStartDate.String(),
		AppointmentType:  e.AppointmentType,
		Regime:           string(eligibility.RegimeFor(e.ServiceStartDate)),
	}
	for _, c := range e.ServiceClasses {
		dto.ServiceClasses = append(dto.ServiceClasses, string(c))
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toDeterminationDTO(employeeID string, p *eligibility.Person, d eligibility.Determination) DeterminationDTO {
	benefits := d.EligibleBenefits()
	if benefits == nil {
		benefits = []eligibility.Benefit{}
	}
	return DeterminationDTO{
		EmployeeID:       employeeID,
		Person:           p.Projection(),
		Determination:    d,
		EligibleBenefits: benefits,
	}
}

func toRecordDTO(rec sqlite.DeterminationRecord) DeterminationRecordDTO {
	return DeterminationRecordDTO{
		ID:             string(rec.ID),
		EmployeeID:     string(rec.EmployeeID),
		Source:         rec.Source,
		IdempotencyKey: rec.IdempotencyKey,
		RecordedAt:     rec.CreatedAt.Format(time.RFC3339),
		Determination:  rec.Determination,
	}
}
