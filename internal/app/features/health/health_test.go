package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/healthdash/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandler_Check(t *testing.T) {
	db := testutil.SetupTestDB(t)
	api := testutil.NewFakeAPI(t)

	h := NewHandler(db.Client(), testutil.NewBackend(t, api.URL), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decode(t, rec)
	if resp.Status != "ok" {
		t.Errorf("response status = %q, want %q", resp.Status, "ok")
	}
	if resp.Services["mongodb"] != "ok" {
		t.Errorf("mongodb status = %q, want %q", resp.Services["mongodb"], "ok")
	}
	if resp.Services["health_api"] != "ok" {
		t.Errorf("health_api status = %q, want %q", resp.Services["health_api"], "ok")
	}
	if resp.Breaker != "closed" {
		t.Errorf("breaker = %q, want closed", resp.Breaker)
	}
}

func TestHandler_Check_UpstreamDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	api := testutil.NewFakeAPI(t)
	api.SetDown(true)

	h := NewHandler(db.Client(), testutil.NewBackend(t, api.URL), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	resp := decode(t, rec)
	if resp.Status != "degraded" || resp.Services["health_api"] != "unavailable" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandler_Ready(t *testing.T) {
	db := testutil.SetupTestDB(t)
	api := testutil.NewFakeAPI(t)
	h := NewHandler(db.Client(), testutil.NewBackend(t, api.URL), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Ready() status = %d, want %d", rec.Code, http.StatusOK)
	}
	if resp := decode(t, rec); resp.Status != "ready" {
		t.Errorf("Ready() status = %q, want ready", resp.Status)
	}

	api.SetDown(true)
	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Ready() with upstream down status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandler_Live(t *testing.T) {
	// Live touches neither dependency.
	h := NewHandler(nil, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Live() status = %d, want %d", rec.Code, http.StatusOK)
	}
	if resp := decode(t, rec); resp.Status != "alive" {
		t.Errorf("Live() status = %q, want alive", resp.Status)
	}
}

func TestMountRootEndpoints(t *testing.T) {
	h := NewHandler(nil, nil, zap.NewNop())
	r := chi.NewRouter()
	MountRootEndpoints(r, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/livez status = %d, want %d", rec.Code, http.StatusOK)
	}
}
