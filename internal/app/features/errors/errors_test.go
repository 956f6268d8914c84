package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorPages(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
	}{
		{"forbidden", h.Forbidden, http.StatusForbidden},
		{"unauthorized", h.Unauthorized, http.StatusUnauthorized},
		{"not found", h.NotFound, http.StatusNotFound},
		{"internal", h.InternalError, http.StatusInternalServerError},
		{"unavailable", h.Unavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithCSRFToken(httptest.NewRequest(http.MethodGet, "/x", nil))
			rec := httptest.NewRecorder()
			tt.handler(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestErrorLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	errLog := NewErrorLogger(zap.New(core))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	errLog.Log(req, "boom", fmt.Errorf("x"))
	errLog.Warn(req, "upstream down", fmt.Errorf("y"))
	errLog.LogWithFields(req, "with fields", nil, zap.String("extra", "field"))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("Warn level = %v", entries[1].Level)
	}
	if got := entries[0].ContextMap()["path"]; got != "/dashboard" {
		t.Errorf("path field = %v", got)
	}
	if got := entries[2].ContextMap()["extra"]; got != "field" {
		t.Errorf("extra field = %v", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"unauthorized", fmt.Errorf("my_data: %w", backend.ErrUnauthorized), http.StatusUnauthorized, "session_expired"},
		{"forbidden", backend.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"circuit open", backend.ErrCircuitOpen, http.StatusServiceUnavailable, "upstream_unavailable"},
		{"not found", &backend.StatusError{StatusCode: http.StatusNotFound}, http.StatusNotFound, "not_found"},
		{"timeout", fmt.Errorf("my_data: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "upstream_timeout"},
		{"bad request", &backend.StatusError{StatusCode: http.StatusBadRequest}, http.StatusBadGateway, "upstream_rejected"},
		{"server error", fmt.Errorf("my_data: %w", &backend.StatusError{StatusCode: 500}), http.StatusBadGateway, "upstream_error"},
		{"transport", fmt.Errorf("dial tcp: refused"), http.StatusBadGateway, "upstream_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err)
			if f.Status != tt.want || f.Code != tt.code {
				t.Errorf("Classify = %d %q, want %d %q", f.Status, f.Code, tt.want, tt.code)
			}
			if f.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestUpstream_Expired(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	u := NewUpstream(sm, nil, nil)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.ParticipantUser())
	rec := httptest.NewRecorder()
	if u.Expired(rec, req, backend.ErrCircuitOpen) {
		t.Fatal("non-401 errors must not end the session")
	}

	rec = httptest.NewRecorder()
	if !u.Expired(rec, req, fmt.Errorf("my_data: %w", backend.ErrUnauthorized)) {
		t.Fatal("401 should end the session")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != SessionExpiredURL {
		t.Errorf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestUpstream_JSON(t *testing.T) {
	u := NewUpstream(testutil.NewSessionManager(t), nil, nil)
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/chart/daily", testutil.ParticipantUser())
	rec := testutil.NewRecorder()

	u.JSON(rec, req, "chart data", backend.ErrCircuitOpen)

	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, `"upstream_unavailable"`)
}
