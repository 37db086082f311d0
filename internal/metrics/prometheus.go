// Package metrics exposes Prometheus collectors for the pipeline and the HTTP
// surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	/* Pipeline metrics */
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signboard_pipeline_runs_total",
			Help: "Total number of pipeline runs by terminal outcome",
		},
		[]string{"outcome"},
	)

	pipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signboard_pipeline_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage"},
	)

	languageDetectionDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signboard_language_detection_degraded_total",
			Help: "Language detection failures recorded as unknown",
		},
	)

	/* HTTP metrics */
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordRun counts a finished pipeline run. outcome is "done" or a failure
// reason code.
func RecordRun(outcome string) {
	pipelineRunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, d time.Duration) {
	pipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordDetectionDegraded counts a language detection failure.
func RecordDetectionDegraded() {
	languageDetectionDegraded.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
