// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"net/http"
	"net/url"

	"github.com/dalemusser/healthdash/internal/app/features/errors"
	preferencesstore "github.com/dalemusser/healthdash/internal/app/store/preferences"
	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/app/system/inputval"
	"github.com/dalemusser/healthdash/internal/app/system/normalize"
	"github.com/dalemusser/healthdash/internal/app/system/timeouts"
	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/healthdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the participant's charts, day drill-down and baseline overview.
type Handler struct {
	api        *backend.Client
	prefs      *preferencesstore.Store // nil keeps preferences in the URL only
	sessionMgr *auth.SessionManager
	upstream   *errors.Upstream
	errLog     *errors.ErrorLogger
	opts       healthdata.Options
	logger     *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(
	api *backend.Client,
	prefs *preferencesstore.Store,
	sessionMgr *auth.SessionManager,
	upstream *errors.Upstream,
	errLog *errors.ErrorLogger,
	opts healthdata.Options,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		api:        api,
		prefs:      prefs,
		sessionMgr: sessionMgr,
		upstream:   upstream,
		errLog:     errLog,
		opts:       opts,
		logger:     logger,
	}
}

// Routes returns a chi.Router with dashboard routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Get("/", h.showDashboard)
	r.Post("/preferences", h.savePreferences)
	r.Get("/baseline", h.showBaseline)
	return r
}

// fetch loads the signed-in user's payload. Every view on a page derives
// from this single call. A participant without an export yet gets an empty payload.
func (h *Handler) fetch(r *http.Request, user *auth.SessionUser) (*healthdata.Payload, error) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "my_data")
	defer cancel()
	return h.api.MyDataOrEmpty(ctx, user.Token)
}

// preferences returns the stored selection with any ?metric= / ?chart= overrides applied.
func (h *Handler) preferences(r *http.Request, username string) models.DashboardPreferences {
	p := preferencesstore.Defaults(username)
	if h.prefs != nil {
		stored, err := h.prefs.Get(r.Context(), username)
		if err != nil {
			h.logger.Warn("failed to load dashboard preferences", zap.Error(err), zap.String("username", username))
		}
		p = stored
	}
	if metrics := r.URL.Query()["metric"]; len(metrics) > 0 {
		p.SelectedMetrics = healthdata.SanitizeSelection(metrics)
	}
	if ct := query.Get(r, "chart"); ct != "" {
		p.ChartType = healthdata.SanitizeChartType(ct)
	}
	return p
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	prefs := h.preferences(r, user.Username)
	cols := columns(prefs.SelectedMetrics)
	vm := DashboardVM{
		BaseVM:    viewdata.NewBaseVM(r, "Health Data", "/dashboard").WithFlashes(w, r, h.sessionMgr),
		Toggles:   toggles(prefs.SelectedMetrics),
		Columns:   cols,
		Metrics:   joinKeys(prefs.SelectedMetrics),
		ChartType: prefs.ChartType,
	}

	if raw := query.Get(r, "date"); raw != "" {
		vm.SelectedDate = normalize.Date(raw)
		if vm.SelectedDate == "" {
			vm.SelectedDate = raw
		}
		vm.SelectedLabel = longDate(vm.SelectedDate)
		vm.SelectedDay = "Selected Day"
		vm.ClearTo = dashboardLink(r.URL.Query(), "")
	}

	p, err := h.fetch(r, user)
	if err != nil {
		if h.upstream.Expired(w, r, err) {
			return
		}
		vm.Error = h.upstream.Message(r, "failed to load health data", err)
		vm.RetryTo = vm.CurrentPath
		templates.Render(w, r, "dashboard/index", vm)
		return
	}

	daily := healthdata.BuildDaily(p, h.opts)
	vm.Rows = dailyRows(daily.Rows, cols, r.URL.Query())
	vm.Stats = statCards(daily.Stats, cols)
	vm.Sleep = sleepSlices(daily.SleepSlice, prefs.SelectedMetrics)
	vm.NoData = len(daily.Rows) == 0

	if vm.SelectedDate != "" {
		m := healthdata.BuildDateMapping(p)
		if info, ok := m.Lookup(vm.SelectedDate); ok {
			vm.SelectedDay = info.DayLabel
		}
		vm.Hourly = hourlyRows(healthdata.ExpandDay(p, m, vm.SelectedDate, h.opts), cols)
		vm.NoHourly = len(vm.Hourly) == 0
	}

	templates.Render(w, r, "dashboard/index", vm)
}

// savePreferences stores the metric toggles and chart type, then returns to
// the dashboard (keeping any drill-down date).
func (h *Handler) savePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := inputval.PreferencesInput{ChartType: r.FormValue("chart_type")}
	if res := inputval.Validate(in); res.HasErrors() {
		h.sessionMgr.AddFlash(w, r, auth.FlashError, res.First())
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	// Unknown metric keys are dropped by SanitizeSelection.
	metrics := r.Form["metric"]

	target := url.Values{}
	if date := normalize.Date(r.FormValue("date")); date != "" {
		target.Set("date", date)
	}

	if h.prefs == nil {
		for _, m := range healthdata.SanitizeSelection(metrics) {
			target.Add("metric", m)
		}
		target.Set("chart", healthdata.SanitizeChartType(in.ChartType))
	} else if _, err := h.prefs.Save(r.Context(), user.Username, metrics, in.ChartType); err != nil {
		h.errLog.Log(r, "failed to save dashboard preferences", err)
		h.sessionMgr.AddFlash(w, r, auth.FlashError, "Your chart settings could not be saved.")
	}

	dest := "/dashboard"
	if len(target) > 0 {
		dest += "?" + target.Encode()
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
