/*
scheduler.go - Periodic eligibility sweep

PURPOSE:
  Periodically evaluates every stored employee as of the current date and
  records one determination per employee per basis date. The log then
  shows, day by day, when each employee became eligible for what.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Evaluates all employees through eligibility.EvaluateBatch
  - Idempotency key is "employee:basis", so re-running on the same day
    records nothing new (duplicates are counted as skipped)
  - Employees whose service starts after the basis date are reported as
    failed for that pass and retried on the next one

CONFIGURATION:
  - Interval: How often to sweep (default: 24 hours)
  - Enabled: Whether the sweep is active (cmd/server reads RETIREMENT_SWEEP_ENABLED)

USAGE:
  sweep := NewSweepScheduler(store, metrics, logger)
  sweep.Start()
  // ... later
  sweep.Stop()

SEE ALSO:
  - handlers.go: RecordDetermination endpoint (manual recording)
  - store/sqlite/sqlite.go: AppendDetermination
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/generic"
	"github.com/warp/retirement-engine/store/sqlite"
)

// SweepScheduler records a determination for every employee each interval.
type SweepScheduler struct {
	Store    *sqlite.Store
	Metrics  *Metrics
	Log      zerolog.Logger
	Clock    func() generic.TimePoint
	Interval time.Duration
	Enabled  bool
	Workers  int

	ticker *time.Ticker
	stop   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// SweepResult summarizes one pass.
type SweepResult struct {
	Basis    generic.TimePoint
	Recorded int
	Skipped  int
	Failed   int
}

// NewSweepScheduler creates a new scheduler.
func NewSweepScheduler(store *sqlite.Store, metrics *Metrics, log zerolog.Logger) *SweepScheduler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &SweepScheduler{
		Store:    store,
		Metrics:  metrics,
		Log:      log.With().Str("component", "sweep").Logger(),
		Clock:    generic.Today,
		Interval: 24 * time.Hour,
		Enabled:  true,
		Workers:  eligibility.DefaultBatchWorkers,
	}
}

// Start begins the scheduler. It runs one pass immediately.
func (s *SweepScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info().Msg("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stop = make(chan struct{})
	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)

	go s.run(ctx)

	s.Log.Info().Dur("interval", s.Interval).Msg("started")
}

// Stop stops the scheduler and waits for an in-flight pass to finish.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.cancel()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.Log.Info().Msg("stopped")
}

// Running reports whether the ticker goroutine is active.
func (s *SweepScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

func (s *SweepScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.runLogged(ctx)

	for {
		select {
		case <-s.ticker.C:
			s.runLogged(ctx)
		case <-s.stop:
			return
		}
	}
}

func (s *SweepScheduler) runLogged(ctx context.Context) {
	res, err := s.RunOnce(ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("sweep failed")
		return
	}
	s.Log.Info().
		Stringer("basis", res.Basis).
		Int("recorded", res.Recorded).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("sweep complete")
}

// RunOnce evaluates every employee as of Clock() and records the results.
// Per-employee failures are counted, not returned; the error is non-nil
// only when the store or the context fails.
func (s *SweepScheduler) RunOnce(ctx context.Context) (SweepResult, error) {
	basis := s.Clock()
	res := SweepResult{Basis: basis}

	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		s.Metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("list employees: %w", err)
	}

	inputs := make([]eligibility.Input, len(employees))
	for i, emp := range employees {
		inputs[i] = emp.Input(basis)
	}

	results, err := eligibility.EvaluateBatch(ctx, inputs, s.Workers)
	if err != nil {
		s.Metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("evaluate: %w", err)
	}

	for _, r := range results {
		emp := employees[r.Index]
		if r.Err != nil {
			res.Failed++
			s.Metrics.ObserveInvalid(r.Err)
			s.Log.Warn().Err(r.Err).Str("employee", string(emp.ID)).Msg("cannot evaluate")
			continue
		}

		rec := sqlite.NewDeterminationRecord(emp.ID, r.Determination, "sweep")
		err := s.Store.AppendDetermination(ctx, rec)
		switch {
		case err == nil:
			res.Recorded++
			s.Metrics.ObserveDetermination(r.Determination)
		case generic.IsConflict(err):
			res.Skipped++
		default:
			s.Metrics.SweepRunsTotal.WithLabelValues("error").Inc()
			return res, fmt.Errorf("record %s: %w", emp.ID, err)
		}
	}

	s.Metrics.SweepRunsTotal.WithLabelValues("ok").Inc()
	s.Metrics.SweepRecordedTotal.Add(float64(res.Recorded))
	return res, nil
}

// RunSweep serves an immediate sweep pass.
// POST /api/admin/sweep
func (h *Handler) RunSweep(sweep *SweepScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sweep.RunOnce(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Sweep failed", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"basis_date": res.Basis.String(),
			"recorded":   res.Recorded,
			"skipped":    res.Skipped,
			"failed":     res.Failed,
		})
	}
}
