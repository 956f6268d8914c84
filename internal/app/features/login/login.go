// internal/app/features/login/login.go
package login

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/healthdash/internal/app/features/errors"
	loginstore "github.com/dalemusser/healthdash/internal/app/store/logins"
	"github.com/dalemusser/healthdash/internal/app/store/ratelimit"
	"github.com/dalemusser/healthdash/internal/app/system/auditlog"
	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/app/system/inputval"
	"github.com/dalemusser/healthdash/internal/app/system/normalize"
	"github.com/dalemusser/healthdash/internal/app/system/timeouts"
	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the sign-in form and exchanges credentials for a health API token.
type Handler struct {
	api             *backend.Client
	sessions        *auth.SessionManager
	throttle        *ratelimit.Store  // nil disables throttling
	logins          *loginstore.Store // nil disables login history
	audit           *auditlog.Logger
	errLog          *errors.ErrorLogger
	defaultUsername string
	logger          *zap.Logger
}

// NewHandler creates a login Handler.
// throttle and logins can be nil.
func NewHandler(
	api *backend.Client,
	sessions *auth.SessionManager,
	throttle *ratelimit.Store,
	logins *loginstore.Store,
	audit *auditlog.Logger,
	errLog *errors.ErrorLogger,
	defaultUsername string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		api:             api,
		sessions:        sessions,
		throttle:        throttle,
		logins:          logins,
		audit:           audit,
		errLog:          errLog,
		defaultUsername: defaultUsername,
		logger:          logger,
	}
}

// LoginVM is the view model for the sign-in page.
type LoginVM struct {
	viewdata.BaseVM
	Error     string
	Username  string
	ReturnURL string
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)
	return r
}

// errorMessage maps an ?error= code to the text shown above the form.
func errorMessage(code string) string {
	switch code {
	case "":
		return ""
	case "session_expired":
		return "Your session has expired. Please sign in again."
	case "service_unavailable":
		return "Service temporarily unavailable. Please try again."
	}
	return "Login failed"
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, vm LoginVM) {
	vm.Title = "Sign In"
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login/index", vm)
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(query.Get(r, "return"), "", "/dashboard"), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, LoginVM{
		BaseVM:    viewdata.New(r).WithFlashes(w, r, h.sessions),
		Error:     errorMessage(query.Get(r, "error")),
		Username:  h.defaultUsername,
		ReturnURL: query.Get(r, "return"),
	})
}

func lockoutMessage(until *time.Time) string {
	if until == nil {
		return "Too many failed login attempts. Please try again later."
	}
	remaining := time.Until(*until)
	if remaining > time.Minute {
		return fmt.Sprintf("Too many failed login attempts. Please try again in %d minute(s).", int(remaining.Minutes())+1)
	}
	return fmt.Sprintf("Too many failed login attempts. Please try again in %d second(s).", int(remaining.Seconds())+1)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := inputval.LoginInput{
		Username: normalize.Username(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	returnURL := r.FormValue("return")
	vm := LoginVM{
		BaseVM:    viewdata.New(r),
		Username:  in.Username,
		ReturnURL: returnURL,
	}

	if res := inputval.Validate(in); res.HasErrors() {
		vm.Error = res.First()
		h.render(w, r, http.StatusBadRequest, vm)
		return
	}

	if h.throttle != nil {
		if d := h.throttle.Check(r.Context(), in.Username); !d.Allowed {
			h.audit.LoginRateLimited(r.Context(), r, in.Username)
			vm.Error = lockoutMessage(d.RetryAt)
			h.render(w, r, http.StatusTooManyRequests, vm)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "login")
	defer cancel()

	token, err := h.api.Login(ctx, in.Username, in.Password)
	if err != nil {
		if stderrors.Is(err, backend.ErrInvalidCredentials) {
			h.audit.LoginFailed(r.Context(), r, in.Username)
			vm.Error = "Invalid credentials"
			if h.throttle != nil {
				d, terr := h.throttle.Fail(r.Context(), in.Username)
				if terr != nil {
					h.logger.Warn("failed to record login failure", zap.Error(terr))
				} else if !d.Allowed {
					vm.Error = lockoutMessage(d.RetryAt)
				}
			}
			h.render(w, r, http.StatusUnauthorized, vm)
			return
		}

		h.audit.LoginUnavailable(r.Context(), r, in.Username, errors.Classify(err).Code)
		h.errLog.Warn(r, "health api login failed", err)
		vm.Error = errorMessage("service_unavailable")
		h.render(w, r, http.StatusServiceUnavailable, vm)
		return
	}

	// Identity comes from the token itself; an opaque token leaves the role empty.
	claims := auth.ParseTokenClaims(token)
	username := in.Username
	if claims.Username != "" {
		username = claims.Username
	}

	if err := h.sessions.CreateSession(w, r, username, claims.Role, token); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if h.throttle != nil {
		if err := h.throttle.Reset(r.Context(), in.Username); err != nil {
			h.logger.Warn("failed to reset login throttle", zap.Error(err))
		}
	}
	if h.logins != nil {
		if err := h.logins.CreateFrom(r.Context(), r, username, claims.Role); err != nil {
			h.logger.Warn("failed to record login", zap.Error(err))
		}
	}
	h.audit.LoginSuccess(r.Context(), r, username, claims.Role)

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/dashboard"), http.StatusSeeOther)
}
