// Package metrics exposes Prometheus collectors for the parse pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	parsePagesTotal           *prometheus.CounterVec
	parseSnippetsTotal        prometheus.Counter
	parseBatchesTotal         *prometheus.CounterVec
	parseActiveWorkers        prometheus.Gauge
	parseBatchDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		parsePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parse_pages_total",
				Help: "Total pages processed, labeled by outcome (stored or skipped).",
			},
			[]string{"outcome"},
		)

		parseSnippetsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "parse_snippets_total",
				Help: "Total snippet rows submitted for insertion.",
			},
		)

		parseBatchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parse_batches_total",
				Help: "Total batches handled, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		parseActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "parse_active_workers",
				Help: "Number of pool workers currently alive.",
			},
		)

		parseBatchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parse_batch_duration_seconds",
				Help:    "Histogram of end-to-end batch processing latency.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one processed page by outcome.
func ObservePage(outcome string) {
	parsePagesTotal.WithLabelValues(outcome).Inc()
}

// AddSnippets counts snippet rows submitted for insertion.
func AddSnippets(n int) {
	if n > 0 {
		parseSnippetsTotal.Add(float64(n))
	}
}

// ObserveBatch counts one handled batch and records its latency.
func ObserveBatch(outcome string, duration time.Duration) {
	parseBatchesTotal.WithLabelValues(outcome).Inc()
	parseBatchDurationSeconds.Observe(duration.Seconds())
}

// IncActiveWorkers increments the live worker gauge.
func IncActiveWorkers() {
	parseActiveWorkers.Inc()
}

// DecActiveWorkers decrements the live worker gauge.
func DecActiveWorkers() {
	parseActiveWorkers.Dec()
}
