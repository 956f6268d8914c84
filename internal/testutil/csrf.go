package testutil

import (
	"context"
	"net/http"
)

// csrfTokenKey matches the context key gorilla/csrf stores its token under,
// so handlers calling csrf.Token(r) (directly or through viewdata) get a
// value without the CSRF middleware in the chain.
const csrfTokenKey = "gorilla.csrf.Token"

// WithCSRFToken adds a fixed CSRF token to the request context.
func WithCSRFToken(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenKey, "test-csrf-token-12345")
	return r.WithContext(ctx)
}

// NewAuthenticatedRequestWithCSRF creates a request carrying both a user and
// a CSRF token, for handlers that render forms.
func NewAuthenticatedRequestWithCSRF(method, target string, user TestUser) *http.Request {
	return WithCSRFToken(NewAuthenticatedRequest(method, target, user))
}
