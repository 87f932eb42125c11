/*
handlers.go - HTTP API handlers for the retirement eligibility engine

PURPOSE:
  Exposes the eligibility engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Evaluation:
    POST   /api/eligibility                        Evaluate an ad-hoc record
    POST   /api/eligibility/batch                  Evaluate many records
    GET    /api/mra/{birthYear}                    Minimum retirement age lookup

  Employees:
    GET    /api/employees                          List all employees
    POST   /api/employees                          Create or replace employee
    GET    /api/employees/{id}                     Get employee details
    DELETE /api/employees/{id}                     Delete employee
    GET    /api/employees/{id}/eligibility?as_of=  Evaluate as of a date
    POST   /api/employees/{id}/determinations      Evaluate and record
    GET    /api/employees/{id}/determinations      Recorded history

  Scenarios:
    GET    /api/scenarios                          List demo scenarios
    GET    /api/scenarios/current                  Currently loaded scenario
    POST   /api/scenarios/load                     Load a demo scenario
    POST   /api/scenarios/reset                    Clear every table

  Operations:
    GET    /api/health                             Store reachability
    POST   /api/admin/sweep                        Run one sweep pass (scheduler.go)
    GET    /metrics                                Prometheus (metrics.go)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - EmployeeFactory: JSON to eligibility.Input conversion
  - Metrics: Prometheus counters
  - Clock: The only source of "today" (injected for tests)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (dates, service classes)
  3. Build eligibility.Person and call eligibility.Evaluate
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed dates, basis before birth/service, unknown tags
  - 404: Employee not found
  - 409: Determination already recorded for that basis date
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/hlog"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/factory"
	"github.com/warp/retirement-engine/generic"
	"github.com/warp/retirement-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           *sqlite.Store
	EmployeeFactory *factory.EmployeeFactory
	Metrics         *Metrics

	// Clock supplies the basis date when a request doesn't name one.
	Clock func() generic.TimePoint

	// BatchWorkers bounds concurrent evaluation in batch requests.
	BatchWorkers int

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, metrics *Metrics) *Handler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handler{
		Store:           store,
		EmployeeFactory: factory.NewEmployeeFactory(),
		Metrics:         metrics,
		Clock:           generic.Today,
		BatchWorkers:    eligibility.DefaultBatchWorkers,
	}
}

// basis resolves an optional YYYY-MM-DD parameter, falling back to Clock.
func (h *Handler) basis(s string) (generic.TimePoint, error) {
	if s == "" {
		return h.Clock(), nil
	}
	return generic.ParseDate(s)
}

// =============================================================================
// EVALUATION HANDLERS
// =============================================================================

// Evaluate evaluates an ad-hoc record.
// POST /api/eligibility
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	basis, err := h.basis(req.BasisDate)
	if err != nil {
		h.Metrics.ObserveInvalid(err)
		writeError(w, http.StatusBadRequest, "Invalid basis_date", err)
		return
	}

	p, d, err := h.evaluate(req.EmployeeJSON, basis)
	if err != nil {
		h.Metrics.ObserveInvalid(err)
		writeDomainError(w, "Cannot evaluate record", err)
		return
	}

	hlog.FromRequest(r).Debug().
		Str("regime", string(d.Regime)).
		Stringer("basis", basis).
		Msg("evaluated ad-hoc record")

	writeJSON(w, http.StatusOK, toDeterminationDTO(req.ID, p, d))
}

// EvaluateBatch evaluates many records concurrently. Bad records are
// reported per item; the request itself only fails on a malformed body.
// POST /api/eligibility/batch
func (h *Handler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	defaultBasis, err := h.basis(req.BasisDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid basis_date", err)
		return
	}

	// Records that fail conversion never reach the worker pool.
	resp := BatchResponse{Total: len(req.Records), Results: make([]BatchItemDTO, len(req.Records))}
	inputs := make([]eligibility.Input, 0, len(req.Records))
	positions := make([]int, 0, len(req.Records))
	for i, rec := range req.Records {
		resp.Results[i] = BatchItemDTO{Index: i, ID: rec.ID}

		basis := defaultBasis
		if rec.BasisDate != "" {
			if basis, err = generic.ParseDate(rec.BasisDate); err != nil {
				resp.Results[i].Error = err.Error()
				h.Metrics.ObserveInvalid(err)
				continue
			}
		}
		in, err := h.EmployeeFactory.ToInput(rec.EmployeeJSON, basis)
		if err != nil {
			resp.Results[i].Error = err.Error()
			h.Metrics.ObserveInvalid(err)
			continue
		}
		inputs = append(inputs, in)
		positions = append(positions, i)
	}

	h.Metrics.BatchSize.Observe(float64(len(req.Records)))

	results, err := eligibility.EvaluateBatch(r.Context(), inputs, h.BatchWorkers)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Batch evaluation interrupted", err)
		return
	}

	for _, res := range results {
		i := positions[res.Index]
		if res.Err != nil {
			resp.Results[i].Error = res.Err.Error()
			h.Metrics.ObserveInvalid(res.Err)
			continue
		}
		h.Metrics.ObserveDetermination(res.Determination)
		dto := toDeterminationDTO(req.Records[i].ID, res.Person, res.Determination)
		resp.Results[i].Determination = &dto
	}
	for _, item := range resp.Results {
		if item.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	hlog.FromRequest(r).Info().
		Int("total", resp.Total).
		Int("failed", resp.Failed).
		Msg("evaluated batch")

	writeJSON(w, http.StatusOK, resp)
}

// GetMRA looks up the minimum retirement age for a birth year.
// GET /api/mra/{birthYear}
func (h *Handler) GetMRA(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "birthYear"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid birth year", err)
		return
	}
	mra := eligibility.MinimumRetirementAge(year)
	writeJSON(w, http.StatusOK, MRADTO{
		BirthYear:            year,
		MinimumRetirementAge: mra,
		Display:              mra.String(),
	})
}

// evaluate converts a document and runs the person's regime rules.
func (h *Handler) evaluate(ej factory.EmployeeJSON, basis generic.TimePoint) (*eligibility.Person, eligibility.Determination, error) {
	in, err := h.EmployeeFactory.ToInput(ej, basis)
	if err != nil {
		return nil, eligibility.Determination{}, err
	}
	return h.evaluateInput(in)
}

func (h *Handler) evaluateInput(in eligibility.Input) (*eligibility.Person, eligibility.Determination, error) {
	p, err := eligibility.NewPerson(in)
	if err != nil {
		return nil, eligibility.Determination{}, err
	}
	d := eligibility.Evaluate(p)
	h.Metrics.ObserveDetermination(d)
	return p, d, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
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

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeID(r))
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or replaces an employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req factory.EmployeeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	emp, err := h.employeeFromJSON(req)
	if err != nil {
		writeDomainError(w, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	hlog.FromRequest(r).Info().Str("employee", string(emp.ID)).Msg("saved employee")
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee. Recorded determinations are kept.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), employeeID(r)); err != nil {
		writeDomainError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEligibility evaluates a stored employee as of a date.
// GET /api/employees/{id}/eligibility?as_of=YYYY-MM-DD
func (h *Handler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeID(r))
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}

	basis, err := h.basis(r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date", err)
		return
	}

	p, d, err := h.evaluateInput(emp.Input(basis))
	if err != nil {
		h.Metrics.ObserveInvalid(err)
		writeDomainError(w, "Cannot evaluate employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toDeterminationDTO(string(emp.ID), p, d))
}

// RecordDetermination evaluates a stored employee and appends the result
// to the determination log.
// POST /api/employees/{id}/determinations
func (h *Handler) RecordDetermination(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeID(r))
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}

	var req RecordDeterminationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	basis, err := h.basis(req.BasisDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid basis_date", err)
		return
	}

	_, d, err := h.evaluateInput(emp.Input(basis))
	if err != nil {
		h.Metrics.ObserveInvalid(err)
		writeDomainError(w, "Cannot evaluate employee", err)
		return
	}

	rec := sqlite.NewDeterminationRecord(emp.ID, d, "api")
	if err := h.Store.AppendDetermination(r.Context(), rec); err != nil {
		writeDomainError(w, "Failed to record determination", err)
		return
	}

	hlog.FromRequest(r).Info().
		Str("employee", string(emp.ID)).
		Stringer("basis", basis).
		Msg("recorded determination")

	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// ListDeterminations returns an employee's recorded history.
// GET /api/employees/{id}/determinations
func (h *Handler) ListDeterminations(w http.ResponseWriter, r *http.Request) {
	id := employeeID(r)
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}

	records, err := h.Store.ListDeterminations(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list determinations", err)
		return
	}

	dtos := make([]DeterminationRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health pings the store and reports row counts.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Store unreachable", err)
		return
	}
	employees, determinations, err := h.Store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", Employees: employees, Determinations: determinations})
}

// employeeFromJSON validates a document and converts it to a store record.
func (h *Handler) employeeFromJSON(ej factory.EmployeeJSON) (sqlite.Employee, error) {
	// The stored fields don't depend on the basis.
	in, err := h.EmployeeFactory.ToInput(ej, generic.TimePoint{})
	if err != nil {
		return sqlite.Employee{}, err
	}

	id := generic.EmployeeID(ej.ID)
	if id == "" {
		id = generic.NewEmployeeID()
	}
	return sqlite.Employee{
		ID:               id,
		Name:             ej.Name,
		DateOfBirth:      in.DateOfBirth,
		ServiceStartDate: in.ServiceStartDate,
		AppointmentType:  in.AppointmentType,
		ServiceClasses:   in.ServiceClasses,
	}, nil
}

func employeeID(r *http.Request) generic.EmployeeID {
	return generic.EmployeeID(chi.URLParam(r, "id"))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

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

// writeDomainError picks the status from the error's class.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
