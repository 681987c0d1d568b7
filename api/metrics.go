package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Importer re-imports a payload into a hosted calendar.
type Importer interface {
	ImportCalendar(ctx context.Context, id uuid.UUID, payload []byte) (bool, error)
}

// Metrics holds the Prometheus collectors of one server. Each Metrics owns its
// registry, so several servers can live in one process.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	importsTotal      *prometheus.CounterVec
	rendersTotal      *prometheus.CounterVec
	calendars         prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bathtiles_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bathtiles_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		importsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bathtiles_imports_total",
			Help: "Total calendar imports by source and result (applied, unchanged, rejected, failed).",
		}, []string{"source", "result"}),
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bathtiles_renders_total",
			Help: "Total heatmap renders by output format.",
		}, []string{"format"}),
		calendars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bathtiles_calendars",
			Help: "Number of hosted calendars.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.importsTotal,
		m.rendersTotal,
		m.calendars,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveImport counts one import attempt from source.
func (m *Metrics) ObserveImport(source string, changed bool, err error) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(source, importResult(changed, err)).Inc()
}

// ObserveRender counts one render in format.
func (m *Metrics) ObserveRender(format string) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(format).Inc()
}

func (m *Metrics) CalendarCreated() {
	if m == nil {
		return
	}
	m.calendars.Inc()
}

func (m *Metrics) CalendarDeleted() {
	if m == nil {
		return
	}
	m.calendars.Dec()
}

// ObserveImporter wraps next so every import through it is counted under source.
func (m *Metrics) ObserveImporter(source string, next Importer) Importer {
	return &observedImporter{source: source, next: next, metrics: m}
}

type observedImporter struct {
	source  string
	next    Importer
	metrics *Metrics
}

func (o *observedImporter) ImportCalendar(ctx context.Context, id uuid.UUID, payload []byte) (bool, error) {
	changed, err := o.next.ImportCalendar(ctx, id, payload)
	o.metrics.ObserveImport(o.source, changed, err)
	return changed, err
}

func importResult(changed bool, err error) string {
	switch {
	case err != nil && isClientError(err):
		return "rejected"
	case err != nil:
		return "failed"
	case changed:
		return "applied"
	default:
		return "unchanged"
	}
}
