package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/chart/hourly", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, q := range []string{"?date=2024-01-01", "?date=2024-01-02"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chart/hourly"+q, nil))
	}

	got := promtest.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/chart/hourly", "418"))
	if got != 2 {
		t.Errorf("request count = %v, want 2", got)
	}
}

func TestUpstreamAndBreaker(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.UpstreamRequest("my_data", "ok", 20*time.Millisecond)
	m.UpstreamRequest("my_data", "server_error", time.Second)
	m.SetCircuitBreakerState("health_api", StateOpen)

	if got := promtest.ToFloat64(m.upstreamTotal.WithLabelValues("my_data", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.cbState.WithLabelValues("health_api")); got != StateOpen {
		t.Errorf("cb_state = %v, want %v", got, StateOpen)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetCircuitBreakerState("health_api", StateClosed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthdash_cb_state") {
		t.Error("exposition missing healthdash_cb_state")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.UpstreamRequest("login", "ok", time.Millisecond)
	m.SetCircuitBreakerState("health_api", StateHalfOpen)

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("nil metrics middleware did not call next")
	}
}
