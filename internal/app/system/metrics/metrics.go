// Package metrics exposes Prometheus instrumentation for inbound requests
// and for calls to the upstream health API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Circuit breaker states as reported by the cb_state gauge.
const (
	StateClosed   = 0
	StateHalfOpen = 1
	StateOpen     = 2
)

// Metrics holds every collector the service registers.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	upstreamTotal     *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	cbState           *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
// A nil reg uses the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		gatherer: prometheus.DefaultGatherer,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthdash_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthdash_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthdash_upstream_requests_total",
			Help: "Total requests sent to the health API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthdash_upstream_request_duration_seconds",
			Help:    "Histogram of health API request durations by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cbState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "healthdash_cb_state",
			Help: "Circuit breaker state gauge (0 closed, 1 half, 2 open).",
		}, []string{"target"}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.upstreamTotal,
		m.upstreamDuration,
		m.cbState,
	)
	return m
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// UpstreamRequest records one call to the health API.
// outcome is a short label such as "ok", "client_error", "server_error" or "open".
func (m *Metrics) UpstreamRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// SetCircuitBreakerState records the breaker state for target.
func (m *Metrics) SetCircuitBreakerState(target string, state float64) {
	if m == nil {
		return
	}
	m.cbState.WithLabelValues(target).Set(state)
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so /api/chart/hourly?date=... is one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
