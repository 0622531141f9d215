// Package obs exposes Prometheus metrics for the API and the approval
// workflow.
package obs

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
)

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	transitions *prometheus.CounterVec
	submissions prometheus.Counter
	assignments *prometheus.CounterVec
	reassigned  prometheus.Counter
	buildInfo   *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timesheet_transitions_total",
			Help: "Timesheet entries moved out of PENDING, by resulting status.",
		}, []string{"status"}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timesheet_submissions_total",
			Help: "Timesheet entries created.",
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "project_assignment_changes_total",
			Help: "Project assignments created or removed.",
		}, []string{"change"}),
		reassigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "department_manager_reassignments_total",
			Help: "Committed department manager reassignments.",
		}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Timesheet API build information.",
		}, []string{"version", "commit"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.transitions,
		m.submissions,
		m.assignments,
		m.reassigned,
		m.buildInfo,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetBuildInfo(version, commit string) {
	m.buildInfo.WithLabelValues(version, commit).Set(1)
}

// Instrument labels requests by chi route pattern so ids in paths do not
// explode cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Subscriber is satisfied by *events.EventBus.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// Subscribe counts workflow events as they are published.
func (m *Metrics) Subscribe(bus Subscriber) {
	bus.Subscribe(events.EventTypeTimesheetSubmitted, func(_ context.Context, _ events.Event) error {
		m.submissions.Inc()
		return nil
	})
	transition := func(_ context.Context, e events.Event) error {
		status := "REJECTED"
		if e.EventType() == events.EventTypeTimesheetApproved {
			status = "APPROVED"
		}
		m.transitions.WithLabelValues(status).Inc()
		return nil
	}
	bus.Subscribe(events.EventTypeTimesheetApproved, transition)
	bus.Subscribe(events.EventTypeTimesheetRejected, transition)

	bus.Subscribe(events.EventTypeAssignmentCreated, func(_ context.Context, _ events.Event) error {
		m.assignments.WithLabelValues("created").Inc()
		return nil
	})
	bus.Subscribe(events.EventTypeAssignmentRemoved, func(_ context.Context, _ events.Event) error {
		m.assignments.WithLabelValues("removed").Inc()
		return nil
	})
	bus.Subscribe(events.EventTypeManagerReassigned, func(_ context.Context, _ events.Event) error {
		m.reassigned.Inc()
		return nil
	})
}
