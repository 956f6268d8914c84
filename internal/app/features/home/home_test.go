package home

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/healthdash/internal/testutil"
)

func TestIndex(t *testing.T) {
	router := Routes(NewHandler())

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"anonymous", httptest.NewRequest(http.MethodGet, "/", nil), "/login"},
		{"participant", testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.ParticipantUser()), "/dashboard"},
		{"admin", testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AdminUser()), "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, tt.req)
			rec.AssertRedirect(t, tt.want)
		})
	}
}
