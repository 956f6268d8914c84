package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"go.uber.org/zap"
)

// TestSessionKey is a 32+ character signing key for test session managers.
const TestSessionKey = "healthdash-unit-tests-0123456789abcdef"

// NewSessionManager returns a cookie session manager suitable for handler tests.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(TestSessionKey, "healthdash-test", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return sm
}

// NewBackend returns a health API client pointed at baseURL.
func NewBackend(t *testing.T, baseURL string) *backend.Client {
	t.Helper()
	c, err := backend.New(backend.Config{
		BaseURL:         baseURL,
		Timeout:         2 * time.Second,
		BreakerFailures: 5,
		BreakerOpenFor:  time.Minute,
	}, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	return c
}

// CarryCookies copies the cookies set on rec onto a follow-up request.
func CarryCookies(rec *httptest.ResponseRecorder, to *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		to.AddCookie(c)
	}
	return to
}
