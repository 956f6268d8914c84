// internal/app/features/adminusers/adminusers.go
package adminusers

import (
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/healthdash/internal/app/features/errors"
	loginstore "github.com/dalemusser/healthdash/internal/app/store/logins"
	preferencesstore "github.com/dalemusser/healthdash/internal/app/store/preferences"
	"github.com/dalemusser/healthdash/internal/app/system/auditlog"
	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/app/system/inputval"
	"github.com/dalemusser/healthdash/internal/app/system/normalize"
	"github.com/dalemusser/healthdash/internal/app/system/timeouts"
	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/healthdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const listPath = "/admin/users"

// Handler serves the admin user list and its password-reset and delete actions.
// Accounts live in the health API; every mutation is forwarded there.
type Handler struct {
	api         *backend.Client
	logins      *loginstore.Store       // optional, for the last sign-in column
	prefs       *preferencesstore.Store // optional, cleared when a user is deleted
	sessionMgr  *auth.SessionManager
	upstream    *errorsfeature.Upstream
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new admin users Handler.
func NewHandler(
	api *backend.Client,
	logins *loginstore.Store,
	prefs *preferencesstore.Store,
	sessionMgr *auth.SessionManager,
	upstream *errorsfeature.Upstream,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		api:         api,
		logins:      logins,
		prefs:       prefs,
		sessionMgr:  sessionMgr,
		upstream:    upstream,
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// userRow represents a user in the list.
type userRow struct {
	Username      string
	ParticipantID string
	Role          string
	CreatedAt     string
	LastLogin     string
	Deletable     bool
}

// ListVM is the view model for the users list.
type ListVM struct {
	viewdata.BaseVM

	Rows  []userRow
	Error string
}

// Routes returns a chi.Router with admin user routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole(models.RoleAdmin))

	r.Get("/", h.list)
	r.Post("/{username}/reset-password", h.resetPassword)
	r.Post("/{username}/delete", h.delete)

	return r
}

// list displays every account the health API reports.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	vm := ListVM{BaseVM: viewdata.NewBaseVM(r, "Admin: Users", "/dashboard").WithFlashes(w, r, h.sessionMgr)}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "list_users")
	defer cancel()

	users, err := h.api.ListUsers(ctx, actor.Token)
	if err != nil {
		if h.upstream.Expired(w, r, err) {
			return
		}
		vm.Error = h.upstream.Message(r, "failed to list users", err)
		templates.Render(w, r, "adminusers/list", vm)
		return
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	last := map[string]time.Time{}
	if h.logins != nil {
		if last, err = h.logins.LastByUser(r.Context(), names); err != nil {
			h.errLog.Warn(r, "failed to load last sign-in times", err)
			last = map[string]time.Time{}
		}
	}

	vm.Rows = make([]userRow, 0, len(users))
	for _, u := range users {
		row := userRow{
			Username:      u.Username,
			ParticipantID: u.ParticipantID,
			Role:          u.Role,
			CreatedAt:     u.CreatedAt,
			Deletable:     u.Username != models.ProtectedUsername,
		}
		if t, ok := last[u.Username]; ok {
			row.LastLogin = t.UTC().Format("2006-01-02 15:04 UTC")
		}
		vm.Rows = append(vm.Rows, row)
	}

	templates.Render(w, r, "adminusers/list", vm)
}

// resetPassword sets a new password for the user through the health API.
func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	username := normalize.Username(chi.URLParam(r, "username"))

	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := inputval.ResetPasswordInput{Username: username, NewPassword: r.FormValue("new_password")}
	if res := inputval.Validate(in); res.HasErrors() {
		h.sessionMgr.AddFlash(w, r, auth.FlashError, res.First())
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "reset_password")
	defer cancel()

	err := h.api.ResetPassword(ctx, actor.Token, in.Username, in.NewPassword)
	h.auditLogger.PasswordReset(r.Context(), r, actor.Username, in.Username, err)
	if err != nil {
		if h.upstream.Expired(w, r, err) {
			return
		}
		h.errLog.Warn(r, "failed to reset password", err)
		h.sessionMgr.AddFlash(w, r, auth.FlashError, "Failed to reset password for "+in.Username+".")
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}

	h.sessionMgr.AddFlash(w, r, auth.FlashSuccess, "Password updated for "+in.Username+".")
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

// delete removes the user from the health API and drops their saved
// dashboard preferences.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	username := normalize.Username(chi.URLParam(r, "username"))

	if username == models.ProtectedUsername {
		h.sessionMgr.AddFlash(w, r, auth.FlashError, "The "+models.ProtectedUsername+" account cannot be deleted.")
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}
	if username == actor.Username {
		h.sessionMgr.AddFlash(w, r, auth.FlashError, "You cannot delete your own account.")
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "delete_user")
	defer cancel()

	err := h.api.DeleteUser(ctx, actor.Token, username)
	h.auditLogger.UserDeleted(r.Context(), r, actor.Username, username, err)
	if err != nil {
		if h.upstream.Expired(w, r, err) {
			return
		}
		h.errLog.Warn(r, "failed to delete user", err)
		h.sessionMgr.AddFlash(w, r, auth.FlashError, "Failed to delete user "+username+".")
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}

	if h.prefs != nil {
		if err := h.prefs.Delete(r.Context(), username); err != nil {
			h.errLog.Warn(r, "failed to delete dashboard preferences", err)
		}
	}

	h.sessionMgr.AddFlash(w, r, auth.FlashSuccess, "User "+username+" deleted.")
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}
