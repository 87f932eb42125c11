/*
metrics.go - Prometheus metrics for the eligibility API

PURPOSE:
  Counts evaluations and their outcomes, times HTTP requests, and tracks
  the sweep scheduler. Exposed at GET /metrics.

REGISTRY:
  Each Metrics owns a private prometheus.Registry (Go and process
  collectors included); nothing is registered globally.

METRICS:
  retirement_evaluations_total{regime}             Determinations computed
  retirement_eligible_total{regime,benefit}        Outcomes that came out true
  retirement_invalid_inputs_total{reason}          Records rejected before evaluation
  retirement_batch_size                            Records per batch request
  retirement_http_request_duration_seconds{...}    Request latency by route
  retirement_sweep_runs_total{result}              Sweep passes
  retirement_sweep_recorded_total                  Determinations a sweep recorded

SEE ALSO:
  - server.go: /metrics route and middleware
  - scheduler.go: Sweep counters
*/
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/generic"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	Registry *prometheus.Registry

	EvaluationsTotal   *prometheus.CounterVec
	EligibleTotal      *prometheus.CounterVec
	InvalidInputsTotal *prometheus.CounterVec
	BatchSize          prometheus.Histogram

	RequestDuration *prometheus.HistogramVec

	SweepRunsTotal     *prometheus.CounterVec
	SweepRecordedTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retirement_evaluations_total",
				Help: "Total number of eligibility determinations computed",
			},
			[]string{"regime"},
		),
		EligibleTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retirement_eligible_total",
				Help: "Total number of benefit outcomes that were eligible",
			},
			[]string{"regime", "benefit"},
		),
		InvalidInputsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retirement_invalid_inputs_total",
				Help: "Total number of records rejected before evaluation",
			},
			[]string{"reason"},
		),
		BatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retirement_batch_size",
				Help:    "Number of records per batch evaluation request",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retirement_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		SweepRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retirement_sweep_runs_total",
				Help: "Total number of eligibility sweep passes",
			},
			[]string{"result"},
		),
		SweepRecordedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "retirement_sweep_recorded_total",
				Help: "Total number of determinations recorded by the sweep",
			},
		),
	}
}

// ObserveDetermination counts one computed determination.
func (m *Metrics) ObserveDetermination(d eligibility.Determination) {
	regime := string(d.Regime)
	m.EvaluationsTotal.WithLabelValues(regime).Inc()
	for _, b := range d.EligibleBenefits() {
		m.EligibleTotal.WithLabelValues(regime, string(b)).Inc()
	}
}

// ObserveInvalid counts one rejected record, labelled by error class.
func (m *Metrics) ObserveInvalid(err error) {
	m.InvalidInputsTotal.WithLabelValues(invalidReason(err)).Inc()
}

func invalidReason(err error) string {
	switch {
	case errors.Is(err, generic.ErrInvalidDateFormat):
		return "date_format"
	case errors.Is(err, generic.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, generic.ErrUnknownServiceClass):
		return "service_class"
	}
	return "other"
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware times each request under its chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
