// internal/app/features/chartapi/chartapi.go
package chartapi

import (
	"net/http"

	"github.com/dalemusser/healthdash/internal/app/features/errors"
	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/app/system/jsonutil"
	"github.com/dalemusser/healthdash/internal/app/system/normalize"
	"github.com/dalemusser/healthdash/internal/app/system/timeouts"
	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the JSON the dashboard charts draw from.
type Handler struct {
	api           *backend.Client
	upstream      *errors.Upstream
	opts          healthdata.Options
	summaryRemote bool
	logger        *zap.Logger
}

// NewHandler creates a chart API handler. When summaryRemote is set,
// /my-summary is proxied to the health API instead of computed locally.
func NewHandler(api *backend.Client, upstream *errors.Upstream, opts healthdata.Options, summaryRemote bool, logger *zap.Logger) *Handler {
	return &Handler{
		api:           api,
		upstream:      upstream,
		opts:          opts,
		summaryRemote: summaryRemote,
		logger:        logger,
	}
}

// Routes mounts the chart endpoints. Callers without a session get a bare 401.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/chart/daily", h.daily)
	r.Get("/chart/hourly", h.hourly)
	r.Get("/chart/timeline", h.timeline)
	r.Get("/chart/meals", h.meals)
	r.Get("/chart/baseline", h.baseline)
	r.Get("/my-summary", h.summary)
	return r
}

// DailyResponse is the body of /chart/daily.
type DailyResponse struct {
	healthdata.Daily
	Parameters []healthdata.Parameter `json:"parameters"`
}

// HourlyResponse is the body of /chart/hourly and /chart/timeline.
type HourlyResponse struct {
	Date  string                  `json:"date,omitempty"`
	Day   string                  `json:"day,omitempty"`
	Days  []healthdata.DayInfo    `json:"days,omitempty"`
	Slots []healthdata.HourlySlot `json:"slots"`
}

// payload loads the signed-in user's data. It writes the error response
// itself and returns nil when the fetch failed.
func (h *Handler) payload(w http.ResponseWriter, r *http.Request) *healthdata.Payload {
	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "sign in required")
		return nil
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "my_data")
	defer cancel()

	p, err := h.api.MyDataOrEmpty(ctx, user.Token)
	if err != nil {
		h.upstream.JSON(w, r, "failed to load health data", err)
		return nil
	}
	return p
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	p := h.payload(w, r)
	if p == nil {
		return
	}
	jsonutil.OK(w, DailyResponse{
		Daily:      healthdata.BuildDaily(p, h.opts),
		Parameters: healthdata.Parameters(),
	})
}

func (h *Handler) hourly(w http.ResponseWriter, r *http.Request) {
	date := normalize.Date(query.Get(r, "date"))
	if date == "" {
		jsonutil.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	p := h.payload(w, r)
	if p == nil {
		return
	}
	m := healthdata.BuildDateMapping(p)
	resp := HourlyResponse{
		Date:  date,
		Slots: healthdata.ExpandDay(p, m, date, h.opts),
	}
	if info, ok := m.Lookup(date); ok {
		resp.Day = info.DayLabel
	}
	jsonutil.OK(w, resp)
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	p := h.payload(w, r)
	if p == nil {
		return
	}
	m := healthdata.BuildDateMapping(p)
	jsonutil.OK(w, HourlyResponse{Days: m.Days, Slots: healthdata.ExpandTimeline(p, m, h.opts)})
}

func (h *Handler) meals(w http.ResponseWriter, r *http.Request) {
	p := h.payload(w, r)
	if p == nil {
		return
	}
	jsonutil.OK(w, healthdata.AggregateMeals(p, healthdata.BuildDateMapping(p), h.opts))
}

func (h *Handler) baseline(w http.ResponseWriter, r *http.Request) {
	p := h.payload(w, r)
	if p == nil {
		return
	}
	jsonutil.OK(w, healthdata.BuildBaseline(p, h.opts))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if !h.summaryRemote {
		p := h.payload(w, r)
		if p == nil {
			return
		}
		jsonutil.OK(w, healthdata.BuildSummary(p))
		return
	}

	user, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "sign in required")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "my_summary")
	defer cancel()

	s, err := h.api.MySummary(ctx, user.Token)
	if err != nil {
		h.upstream.JSON(w, r, "failed to load health summary", err)
		return
	}
	jsonutil.OK(w, s)
}
