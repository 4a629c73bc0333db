// Package metrics provides Prometheus metrics for the HTTP surface and
// the optimization runs it launches. All collectors are registered with
// the default registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	OptimizationsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optimizations_started_total",
			Help: "Optimization runs started",
		},
	)

	OptimizationsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizations_finished_total",
			Help: "Optimization runs finished, by outcome",
		},
		[]string{"outcome"},
	)

	OptimizationIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optimization_iterations",
			Help:    "Iterations per optimization run",
			Buckets: []float64{5, 10, 20, 40, 80, 160, 320},
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(OptimizationsStarted)
	prometheus.MustRegister(OptimizationsFinished)
	prometheus.MustRegister(OptimizationIterations)
}
