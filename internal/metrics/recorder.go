// Package metrics records run outcomes as Prometheus metrics and exports them
// in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

const namespace = "apiprobe"

// Label values for the kind label
const (
	kindRequest     = "request"
	kindPerformance = "performance"
)

// Recorder accumulates metrics for one run in its own registry
type Recorder struct {
	registry     *prometheus.Registry
	checks       *prometheus.CounterVec
	assertions   *prometheus.CounterVec
	responseTime *prometheus.HistogramVec
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Checks executed, by kind and terminal status.",
		}, []string{"kind", "status"}),
		assertions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assertions_total",
			Help:      "Assertions recorded on request checks, by name and outcome.",
		}, []string{"name", "passed"}),
		responseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_time_milliseconds",
			Help:      "Observed response times; every sampler attempt is one observation.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000},
		}, []string{"kind"}),
	}

	r.registry.MustRegister(r.checks, r.assertions, r.responseTime)
	return r
}

// Observe records a single result.
func (r *Recorder) Observe(result domain.Result) {
	switch res := result.(type) {
	case *domain.RequestResult:
		r.checks.WithLabelValues(kindRequest, string(res.Status)).Inc()
		for _, a := range res.Assertions {
			r.assertions.WithLabelValues(a.Name, strconv.FormatBool(a.Passed)).Inc()
		}
		r.responseTime.WithLabelValues(kindRequest).Observe(float64(res.ResponseTime))

	case *domain.PerformanceResult:
		r.checks.WithLabelValues(kindPerformance, string(res.Status)).Inc()
		for _, ms := range res.AllTimes {
			r.responseTime.WithLabelValues(kindPerformance).Observe(float64(ms))
		}
	}
}

// ObserveAll records every result in order.
func (r *Recorder) ObserveAll(results []domain.Result) {
	for _, result := range results {
		r.Observe(result)
	}
}

// Registry exposes the underlying registry, e.g. for serving /metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is written to a temporary name and renamed into place.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
