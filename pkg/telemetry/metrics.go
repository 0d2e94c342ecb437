package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the searcher and the exploration
// loop. A nil *Metrics, or one created with metrics disabled, records nothing.
type Metrics struct {
	config MetricsConfig

	// Searcher metrics
	selections      *prometheus.CounterVec
	priorities      *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	transitionTime  *prometheus.HistogramVec
	statesAdded     *prometheus.CounterVec
	statesRemoved   *prometheus.CounterVec
	frontierSize    prometheus.Gauge
	distanceRecords prometheus.Gauge

	// Exploration metrics
	runsCompleted *prometheus.CounterVec
	runSteps      *prometheus.HistogramVec
	targetReached *prometheus.CounterVec

	// Error metrics
	errorsByClass *prometheus.CounterVec
	errorsByCode  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Total number of states selected for exploration",
			},
			[]string{"strategy", "reachable"},
		),
		priorities: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "selected_priority",
				Help:      "Finite priorities of selected states",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"strategy"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of frontier transitions applied",
			},
			[]string{"strategy"},
		),
		transitionTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Duration of frontier transitions in seconds",
				Buckets:   buckets,
			},
			[]string{"strategy"},
		),
		statesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "states_added_total",
				Help:      "Total number of states inserted into the frontier",
			},
			[]string{"strategy"},
		),
		statesRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "states_removed_total",
				Help:      "Total number of states removed from the frontier",
			},
			[]string{"strategy"},
		),
		frontierSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "frontier_size",
				Help:      "Current number of states in the frontier",
			},
		),
		distanceRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "distance_records",
				Help:      "Number of records in the loaded distance map",
			},
		),

		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of exploration runs completed",
			},
			[]string{"status"},
		),
		runSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_steps",
				Help:      "Number of exploration steps per run",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"status"},
		),
		targetReached: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "target_reached_total",
				Help:      "Total number of runs that reached the target",
			},
			[]string{"strategy"},
		),

		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),
		errorsByCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_code_total",
				Help:      "Total number of errors by error code",
			},
			[]string{"code"},
		),
	}

	registry.MustRegister(
		m.selections,
		m.priorities,
		m.transitions,
		m.transitionTime,
		m.statesAdded,
		m.statesRemoved,
		m.frontierSize,
		m.distanceRecords,
		m.runsCompleted,
		m.runSteps,
		m.targetReached,
		m.errorsByClass,
		m.errorsByCode,
	)

	return m, nil
}

func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

// Registry returns the registry holding all collectors, or nil when metrics
// are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Searcher Metrics

// RecordSelection records a selected state and its priority. Infinite
// priorities (no path to the target known) are counted but not observed.
func (m *Metrics) RecordSelection(strategy string, priority float64) {
	if !m.enabled() {
		return
	}
	reachable := !math.IsInf(priority, 1)
	m.selections.WithLabelValues(strategy, strconv.FormatBool(reachable)).Inc()
	if reachable {
		m.priorities.WithLabelValues(strategy).Observe(priority)
	}
}

// RecordTransition records one applied frontier transition.
func (m *Metrics) RecordTransition(strategy string, added, removed int, duration time.Duration) {
	if !m.enabled() {
		return
	}
	m.transitions.WithLabelValues(strategy).Inc()
	m.transitionTime.WithLabelValues(strategy).Observe(duration.Seconds())
	m.statesAdded.WithLabelValues(strategy).Add(float64(added))
	m.statesRemoved.WithLabelValues(strategy).Add(float64(removed))
}

// SetFrontierSize sets the current frontier size.
func (m *Metrics) SetFrontierSize(n int) {
	if !m.enabled() {
		return
	}
	m.frontierSize.Set(float64(n))
}

// SetDistanceRecords sets the size of the loaded distance map.
func (m *Metrics) SetDistanceRecords(n int) {
	if !m.enabled() {
		return
	}
	m.distanceRecords.Set(float64(n))
}

// Exploration Metrics

// RecordRunCompleted records a finished exploration run.
func (m *Metrics) RecordRunCompleted(status string, steps int) {
	if !m.enabled() {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runSteps.WithLabelValues(status).Observe(float64(steps))
}

// RecordTargetReached records a run that reached its target.
func (m *Metrics) RecordTargetReached(strategy string) {
	if !m.enabled() {
		return
	}
	m.targetReached.WithLabelValues(strategy).Inc()
}

// Error Metrics

// RecordError records an error by class and optionally by code.
func (m *Metrics) RecordError(errorClass, errorCode string) {
	if !m.enabled() {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
	if errorCode != "" {
		m.errorsByCode.WithLabelValues(errorCode).Inc()
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics. It returns the
// server so the caller can shut it down, or nil when nothing is served.
func (m *Metrics) StartMetricsServer() (*http.Server, error) {
	if !m.enabled() || m.config.ListenAddress == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
		}
	}()

	return server, nil
}
