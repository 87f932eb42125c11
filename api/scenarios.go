/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built employee sets that populate the database with
	realistic records for testing and demos. Each scenario exercises a
	different corner of the eligibility rules.

AVAILABLE SCENARIOS:

	fers-career:         Newer-regime employees at different career stages
	csrs-veterans:       Older-regime employees hired before the cutover
	regime-cutover:      Two employees hired either side of 1987-01-01
	historical-fixtures: Birth/service pairs from the legacy verification data

HOW SCENARIOS WORK:
 1. Reset database (clear employees and recorded determinations)
 2. Convert each employee document via the factory
 3. Save employees

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "regime-cutover"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add its employee documents to 'scenarioEmployees'

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Employee handlers
  - factory/employee.go: Employee JSON definitions
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/warp/retirement-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fers-career",
		Name:        "FERS Careers",
		Description: "Newer-regime employees before, at and past their minimum retirement age",
		Category:    "fers",
	},
	{
		ID:          "csrs-veterans",
		Name:        "CSRS Veterans",
		Description: "Older-regime employees with long service records",
		Category:    "csrs",
	},
	{
		ID:          "regime-cutover",
		Name:        "Regime Cutover",
		Description: "Identical birth dates, service starting the day before and the day of 1987-01-01",
		Category:    "regime",
	},
	{
		ID:          "historical-fixtures",
		Name:        "Historical Fixtures",
		Description: "Birth and service dates from the legacy verification data, in its mixed date formats",
		Category:    "verification",
	},
}

var scenarioEmployees = map[string][]factory.EmployeeJSON{
	"fers-career": {
		{ID: "emp-alice", Name: "Alice Johnson", DateOfBirth: "1966-08-07", ServiceStartDate: "1991-09-01", AppointmentType: "career"},
		{ID: "emp-bob", Name: "Bob Martinez", DateOfBirth: "1970-03-15", ServiceStartDate: "2000-06-01", AppointmentType: "career", ServiceClasses: []string{"law_enforcement"}},
		{ID: "emp-dana", Name: "Dana Lee", DateOfBirth: "1985-11-30", ServiceStartDate: "2015-02-01", AppointmentType: "career-conditional"},
		{ID: "emp-eve", Name: "Eve Thompson", DateOfBirth: "1960-01-01", ServiceStartDate: "2010-01-01", AppointmentType: "career"},
	},
	"csrs-veterans": {
		{ID: "emp-carl", Name: "Carl Brooks", DateOfBirth: "1940-01-01", ServiceStartDate: "1970-01-01", AppointmentType: "career"},
		{ID: "emp-gina", Name: "Gina Patel", DateOfBirth: "1950-05-01", ServiceStartDate: "1975-06-01", AppointmentType: "career"},
		{ID: "emp-hank", Name: "Hank Wilson", DateOfBirth: "1958-03-03", ServiceStartDate: "1985-03-03", AppointmentType: "career", ServiceClasses: []string{"firefighter"}},
	},
	"regime-cutover": {
		{ID: "emp-iris", Name: "Iris Day-Before", DateOfBirth: "1960-01-01", ServiceStartDate: "1986-12-31"},
		{ID: "emp-jack", Name: "Jack On-Cutover", DateOfBirth: "1960-01-01", ServiceStartDate: "1987-01-01"},
	},
	"historical-fixtures": {
		{ID: "fixture-1", Name: "Fixture 1", DateOfBirth: "19380303", ServiceStartDate: "1958-0303"},
		{ID: "fixture-2", Name: "Fixture 2", DateOfBirth: "19450102", ServiceStartDate: "19690102"},
		{ID: "fixture-3", Name: "Fixture 3", DateOfBirth: "19500101", ServiceStartDate: "19710101"},
		{ID: "fixture-4", Name: "Fixture 4", DateOfBirth: "19560202", ServiceStartDate: "19790202"},
		{ID: "fixture-5", Name: "Fixture 5", DateOfBirth: "19650101", ServiceStartDate: "19870101"},
		{ID: "fixture-6", Name: "Fixture 6", DateOfBirth: "19690303", ServiceStartDate: "19890303"},
		{ID: "fixture-7", Name: "Fixture 7", DateOfBirth: "19700202", ServiceStartDate: "19900202"},
		{ID: "fixture-8", Name: "Fixture 8", DateOfBirth: "19780908", ServiceStartDate: "19980908"},
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := scenarioEmployees[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears every employee and recorded determination.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	docs, ok := scenarioEmployees[id]
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.currentScenario = ""

	for _, doc := range docs {
		emp, err := h.employeeFromJSON(doc)
		if err != nil {
			return fmt.Errorf("employee %s: %w", doc.ID, err)
		}
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("employee %s: %w", doc.ID, err)
		}
	}

	h.currentScenario = id
	return nil
}
