// internal/app/system/backend/errors.go
package backend

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredentials is returned by Login when the health API rejects
	// the username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the bearer token was missing, expired or revoked.
	ErrUnauthorized = errors.New("health api: unauthorized")

	// ErrForbidden means the token is valid but lacks the role for the call.
	ErrForbidden = errors.New("health api: forbidden")

	// ErrCircuitOpen is returned without contacting the health API while the
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("health api: circuit open")
)

// bodyPreviewLimit caps how much of an error body is kept for logs.
const bodyPreviewLimit = 512

// StatusError is an unexpected HTTP status from the health API.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("health api %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("health api %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Temporary reports whether retrying later may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// newStatusError reads a short preview of resp's body. The caller closes the body.
func newStatusError(endpoint string, resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, bodyPreviewLimit))
	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(b)),
	}
}

// statusErr maps a non-2xx response to the package's error values.
func statusErr(endpoint string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return newStatusError(endpoint, resp)
}

// IsNotFound reports whether err is a 404 from the health API.
// The API answers 404 for participants that have no processed data yet.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
