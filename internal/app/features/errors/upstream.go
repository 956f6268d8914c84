// internal/app/features/errors/upstream.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/healthdash/internal/app/system/auditlog"
	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/app/system/jsonutil"
)

// SessionExpiredURL is where a user lands after the health API rejects their token.
const SessionExpiredURL = "/login?error=session_expired"

// Failure is the user-facing shape of a health API error.
type Failure struct {
	Status  int
	Code    string
	Message string
}

// Classify maps an error from the backend client to a status, a machine
// code and a message safe to show the user.
func Classify(err error) Failure {
	var se *backend.StatusError
	switch {
	case err == nil:
		return Failure{Status: http.StatusOK}
	case stderrors.Is(err, backend.ErrUnauthorized):
		return Failure{http.StatusUnauthorized, "session_expired", "Your session has expired. Please sign in again."}
	case stderrors.Is(err, backend.ErrForbidden):
		return Failure{http.StatusForbidden, "forbidden", "Your account is not allowed to do that."}
	case stderrors.Is(err, backend.ErrCircuitOpen):
		return Failure{http.StatusServiceUnavailable, "upstream_unavailable", "The health data service is temporarily unavailable. Please try again shortly."}
	case backend.IsNotFound(err):
		return Failure{http.StatusNotFound, "not_found", "The requested record was not found."}
	case stderrors.Is(err, context.DeadlineExceeded):
		return Failure{http.StatusGatewayTimeout, "upstream_timeout", "The health data service took too long to respond."}
	case stderrors.As(err, &se) && se.StatusCode < 500:
		return Failure{http.StatusBadGateway, "upstream_rejected", "The health data service rejected the request."}
	}
	return Failure{http.StatusBadGateway, "upstream_error", "Failed to load data from the health data service."}
}

// Upstream turns health API errors into responses. A 401 from the API means
// the stored token is no longer valid, so the session is ended.
type Upstream struct {
	sessions *auth.SessionManager
	audit    *auditlog.Logger
	errLog   *ErrorLogger
}

// NewUpstream creates an Upstream. audit may be nil.
func NewUpstream(sessions *auth.SessionManager, audit *auditlog.Logger, errLog *ErrorLogger) *Upstream {
	if errLog == nil {
		errLog = NewErrorLogger(nil)
	}
	return &Upstream{sessions: sessions, audit: audit, errLog: errLog}
}

func (u *Upstream) expire(w http.ResponseWriter, r *http.Request) {
	if cu, ok := auth.CurrentUser(r); ok {
		u.audit.SessionExpired(r.Context(), r, cu.Username)
	}
	if u.sessions != nil {
		u.sessions.DestroySession(w, r)
	}
}

// Expired ends the session and redirects to the login page when err says the
// token was rejected. It reports whether it wrote a response.
func (u *Upstream) Expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !stderrors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	u.expire(w, r)
	http.Redirect(w, r, SessionExpiredURL, http.StatusSeeOther)
	return true
}

// Message logs err and returns the inline message for a page.
func (u *Upstream) Message(r *http.Request, msg string, err error) string {
	u.errLog.Warn(r, msg, err)
	return Classify(err).Message
}

// JSON writes err as a jsonutil error body.
func (u *Upstream) JSON(w http.ResponseWriter, r *http.Request, msg string, err error) {
	f := Classify(err)
	if f.Status == http.StatusUnauthorized {
		u.expire(w, r)
	} else {
		u.errLog.Warn(r, msg, err)
	}
	jsonutil.Error(w, f.Status, f.Code, f.Message)
}
