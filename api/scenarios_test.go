package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retirement-engine/eligibility"
)

func TestScenarios_AllLoad(t *testing.T) {
	// GIVEN: Every published scenario
	// WHEN: Loading each one in turn
	// THEN: The store holds exactly that scenario's employees, all evaluable today

	h := setupTestHandler(t)
	ctx := context.Background()

	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			require.NoError(t, h.loadScenario(ctx, s.ID))

			employees, err := h.Store.ListEmployees(ctx)
			require.NoError(t, err)
			assert.Len(t, employees, len(scenarioEmployees[s.ID]))

			for _, emp := range employees {
				_, _, err := h.evaluateInput(emp.Input(testToday))
				assert.NoError(t, err, emp.ID)
			}
		})
	}
}

func TestScenarios_RegimeCutover(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.loadScenario(ctx, "regime-cutover"))

	iris, err := h.Store.GetEmployee(ctx, "emp-iris")
	require.NoError(t, err)
	jack, err := h.Store.GetEmployee(ctx, "emp-jack")
	require.NoError(t, err)

	assert.Equal(t, eligibility.RegimeCSRS, eligibility.RegimeFor(iris.ServiceStartDate))
	assert.Equal(t, eligibility.RegimeFERS, eligibility.RegimeFor(jack.ServiceStartDate))
}

func TestScenarios_HTTP(t *testing.T) {
	_, router := setupTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), len(scenarios))

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"csrs-veterans"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "csrs-veterans", decode[ScenarioDTO](t, rec).ID)

	rec = do(t, router, http.MethodGet, "/api/employees", "")
	assert.Len(t, decode[[]EmployeeDTO](t, rec), 3)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/employees", "")
	assert.Empty(t, decode[[]EmployeeDTO](t, rec))
}

