// internal/app/features/auditlog/auditlog.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	errorsfeature "github.com/dalemusser/healthdash/internal/app/features/errors"
	"github.com/dalemusser/healthdash/internal/app/store/audit"
	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/healthdash/internal/app/system/normalize"
	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/healthdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const pageSize = 50

// Handler serves the admin audit log.
type Handler struct {
	store  *audit.Store
	loc    *time.Location
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates an audit log Handler. Dates in filters and in the
// table are interpreted in loc.
func NewHandler(store *audit.Store, loc *time.Location, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{store: store, loc: loc, errLog: errLog, logger: logger}
}

type listItem struct {
	When      string
	Category  string
	EventType string
	Username  string
	Actor     string
	IP        string
	Success   bool
	Reason    string
}

type categoryOption struct {
	Value string
	Label string
}

// listData is the view model for the audit log page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	Category  string
	EventType string
	Username  string
	StartDate string
	EndDate   string
	Zone      string

	Categories []categoryOption
	EventTypes []string

	Page     int
	Total    int64
	HasPrev  bool
	HasNext  bool
	PrevLink string
	NextLink string
}

func categories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

// eventTypes lists the event types of category, or all of them when
// category is empty.
func eventTypes(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedCredentials,
		audit.EventLoginFailedUpstream,
		audit.EventLoginRateLimited,
		audit.EventLogout,
		audit.EventSessionExpired,
	}
	adminEvents := []string{
		audit.EventPasswordReset,
		audit.EventUserDeleted,
	}
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		return append(append([]string{}, authEvents...), adminEvents...)
	}
	return nil
}

// Routes returns a chi.Router with audit log routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole(models.RoleAdmin))
	r.Get("/", h.list)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	vm := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Admin: Audit Log", "/admin/users"),
		Category:   query.Get(r, "category"),
		EventType:  query.Get(r, "event_type"),
		Username:   normalize.Username(query.Get(r, "username")),
		StartDate:  normalize.Date(query.Get(r, "start_date")),
		EndDate:    normalize.Date(query.Get(r, "end_date")),
		Zone:       h.loc.String(),
		Categories: categories(),
		Page:       1,
	}
	vm.EventTypes = eventTypes(vm.Category)
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		vm.Page = p
	}

	filter := audit.QueryFilter{
		Username:  vm.Username,
		Category:  vm.Category,
		EventType: vm.EventType,
		Limit:     pageSize,
		Offset:    int64((vm.Page - 1) * pageSize),
	}
	if vm.StartDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", vm.StartDate, h.loc); err == nil {
			filter.StartTime = &t
		}
	}
	if vm.EndDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", vm.EndDate, h.loc); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &end
		}
	}

	events, err := h.store.Query(r.Context(), filter)
	if err != nil {
		h.errLog.Log(r, "failed to query audit events", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	vm.Total, err = h.store.CountByFilter(r.Context(), filter)
	if err != nil {
		h.logger.Warn("failed to count audit events", zap.Error(err))
		vm.Total = int64(len(events))
	}

	vm.Items = make([]listItem, 0, len(events))
	for _, e := range events {
		vm.Items = append(vm.Items, listItem{
			When:      e.CreatedAt.In(h.loc).Format("2006-01-02 15:04:05"),
			Category:  e.Category,
			EventType: e.EventType,
			Username:  e.Username,
			Actor:     e.Actor,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
		})
	}

	vm.HasPrev = vm.Page > 1
	vm.HasNext = int64(vm.Page*pageSize) < vm.Total
	vm.PrevLink = pageLink(r, vm.Page-1)
	vm.NextLink = pageLink(r, vm.Page+1)

	templates.Render(w, r, "auditlog/list", vm)
}

// pageLink is the current URL with page replaced.
func pageLink(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return "/admin/audit?" + q.Encode()
}
