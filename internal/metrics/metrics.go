// Package metrics exposes the service's Prometheus metrics. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	aiCallsTotal *prometheus.CounterVec
	invitesTotal *prometheus.CounterVec
}

// New builds a registry with the runtime collectors and the service metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		reg: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airdemo_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "airdemo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airdemo_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		}),
		aiCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airdemo_ai_calls_total",
			Help: "AI endpoint calls by capability, provider and outcome.",
		}, []string{"capability", "provider", "outcome"}),
		invitesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airdemo_invites_total",
			Help: "Invite lifecycle events.",
		}, []string{"event"}),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.requestsInFlight, m.aiCallsTotal, m.invitesTotal)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. The route label is the chi
// route pattern, not the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unknown"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, route, strconv.Itoa(status)}
		m.requestsTotal.WithLabelValues(labels...).Inc()
		m.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// AICall counts one AI request. outcome is "ok", "error" or "fallback".
func (m *Metrics) AICall(capability, provider, outcome string) {
	if m == nil {
		return
	}
	m.aiCallsTotal.WithLabelValues(capability, provider, outcome).Inc()
}

// Invite counts an invite event such as "created", "email_failed" or "accepted".
func (m *Metrics) Invite(event string) {
	if m == nil {
		return
	}
	m.invitesTotal.WithLabelValues(event).Inc()
}
