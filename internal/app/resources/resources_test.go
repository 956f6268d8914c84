package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssetsHandler(t *testing.T) {
	h := AssetsHandler("/assets")

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/assets/css/app.css", http.StatusOK, ".chart-area"},
		{"/assets/js/charts.js", http.StatusOK, "/api/chart"},
		{"/assets/js/missing.js", http.StatusNotFound, ""},
		{"/assets/css/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestAssetsHandler_CacheHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	AssetsHandler("/assets/").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}
}
