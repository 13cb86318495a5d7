// Package metrics exports spoilage engine and HTTP telemetry to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stocksense"

// Recorder implements spoilage.MetricsRecorder on a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	operations  *prometheus.HistogramVec
	assessments *prometheus.CounterVec
	issues      *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "spoilage",
			Name:      "operation_duration_seconds",
			Help:      "Duration of spoilage engine operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spoilage",
			Name:      "assessments_total",
			Help:      "Products assessed, by risk level.",
		}, []string{"level"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spoilage",
			Name:      "item_issues_total",
			Help:      "Inventory items skipped or degraded, by kind.",
		}, []string{"kind"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	r.registry.MustRegister(
		r.operations,
		r.assessments,
		r.issues,
		r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	r.operations.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func (r *Recorder) RecordAssessment(level domain.RiskLevel) {
	r.assessments.WithLabelValues(string(level)).Inc()
}

func (r *Recorder) RecordIssue(kind domain.IssueKind) {
	r.issues.WithLabelValues(string(kind)).Inc()
}

// ObserveRequest records one HTTP request. route is the matched pattern, not the raw path.
func (r *Recorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
