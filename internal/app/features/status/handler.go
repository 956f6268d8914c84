// internal/app/features/status/handler.go
package status

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/certcheck"
	"github.com/dalemusser/healthdash/internal/app/system/timeouts"
	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var startTime = time.Now()

// Upstream is the part of the health API client the status page reads.
type Upstream interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

// Handler holds dependencies for the status page.
type Handler struct {
	client   *mongo.Client
	api      Upstream
	jobs     []string
	coreCfg  *config.CoreConfig
	settings Settings
	log      *zap.Logger
}

// Settings mirrors the app configuration shown on the status page.
// Secrets are masked before display.
type Settings struct {
	SiteName string

	BackendURL             string
	BackendTimeout         time.Duration
	BackendBreakerFailures int
	BackendBreakerOpenFor  time.Duration
	BackendSummaryRemote   bool
	BackendProbeInterval   time.Duration

	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration
	CSRFKey       string

	RateLimitEnabled       bool
	RateLimitLoginAttempts int
	RateLimitLoginWindow   time.Duration
	RateLimitLoginLockout  time.Duration

	AuditLogAuth          string
	AuditLogAdmin         string
	AuditRetention        time.Duration
	LoginHistoryRetention time.Duration

	StepsScale      float64
	HourlyWindow    time.Duration
	SleepStartHour  int
	SleepWakeHour   int
	DisplayTimezone string
}

// NewHandler creates a status Handler. jobs lists the background jobs
// that were started.
func NewHandler(client *mongo.Client, api Upstream, jobs []string, coreCfg *config.CoreConfig, settings Settings, logger *zap.Logger) *Handler {
	return &Handler{
		client:   client,
		api:      api,
		jobs:     jobs,
		coreCfg:  coreCfg,
		settings: settings,
		log:      logger,
	}
}

// ConfigItem is a single configuration value for display.
type ConfigItem struct {
	Name  string
	Value string
}

// ConfigGroup is a named group of configuration values.
type ConfigGroup struct {
	Name  string
	Items []ConfigItem
}

type statusVM struct {
	viewdata.BaseVM

	DBConnected bool
	DBError     string
	DBPingMS    int64
	DBVersion   string

	APIReachable bool
	APIError     string
	APIPingMS    int64
	BreakerState string

	Cert        certcheck.CertInfo
	CertWarning bool

	Jobs []string

	GoVersion    string
	Uptime       string
	NumGoroutine int
	MemAlloc     string

	ConfigGroups []ConfigGroup
}

// Serve handles GET /admin/status.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vm := statusVM{
		BaseVM:       viewdata.NewBaseVM(r, "System Status", "/admin/users"),
		Jobs:         h.jobs,
		GoVersion:    runtime.Version(),
		Uptime:       formatDuration(time.Since(startTime)),
		NumGoroutine: runtime.NumGoroutine(),
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	vm.MemAlloc = formatBytes(m.Alloc)

	if h.client != nil {
		start := time.Now()
		if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
			vm.DBError = err.Error()
			h.log.Warn("status page: database ping failed", zap.Error(err))
		} else {
			vm.DBConnected = true
			vm.DBPingMS = time.Since(start).Milliseconds()

			var info bson.M
			if err := h.client.Database("admin").RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info); err == nil {
				vm.DBVersion, _ = info["version"].(string)
			}
		}
	}

	if h.api != nil {
		start := time.Now()
		if err := h.api.Ping(ctx); err != nil {
			vm.APIError = err.Error()
		} else {
			vm.APIReachable = true
			vm.APIPingMS = time.Since(start).Milliseconds()
		}
		vm.BreakerState = h.api.BreakerState()
	}

	vm.Cert = certcheck.Check(ctx, h.settings.BackendURL)
	vm.CertWarning = !vm.Cert.Skipped() && vm.Cert.DaysLeft <= 14

	vm.ConfigGroups = h.configGroups()

	templates.Render(w, r, "status/page", vm)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return plural(days, "day") + " " + plural(hours, "hour")
	}
	if hours > 0 {
		return plural(hours, "hour") + " " + plural(minutes, "min")
	}
	return plural(minutes, "min")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// mask keeps the first and last two characters of a secret.
func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func (h *Handler) configGroups() []ConfigGroup {
	s := h.settings
	str := func(v any) string { return fmt.Sprint(v) }

	var groups []ConfigGroup
	if h.coreCfg != nil {
		groups = append(groups, ConfigGroup{
			Name: "Environment",
			Items: []ConfigItem{
				{Name: "env", Value: h.coreCfg.Env},
				{Name: "log_level", Value: h.coreCfg.LogLevel},
				{Name: "http_port", Value: str(h.coreCfg.HTTP.HTTPPort)},
				{Name: "https_port", Value: str(h.coreCfg.HTTP.HTTPSPort)},
				{Name: "use_https", Value: str(h.coreCfg.HTTP.UseHTTPS)},
				{Name: "db_connect_timeout", Value: h.coreCfg.DBConnectTimeout.String()},
			},
		})
	}

	groups = append(groups,
		ConfigGroup{
			Name: "Health API",
			Items: []ConfigItem{
				{Name: "backend_url", Value: s.BackendURL},
				{Name: "backend_timeout", Value: s.BackendTimeout.String()},
				{Name: "backend_breaker_failures", Value: str(s.BackendBreakerFailures)},
				{Name: "backend_breaker_open_for", Value: s.BackendBreakerOpenFor.String()},
				{Name: "backend_summary_remote", Value: str(s.BackendSummaryRemote)},
				{Name: "backend_probe_interval", Value: s.BackendProbeInterval.String()},
			},
		},
		ConfigGroup{
			Name: "Database",
			Items: []ConfigItem{
				{Name: "mongo_uri", Value: mask(s.MongoURI)},
				{Name: "mongo_database", Value: s.MongoDatabase},
				{Name: "mongo_max_pool_size", Value: str(s.MongoMaxPoolSize)},
				{Name: "mongo_min_pool_size", Value: str(s.MongoMinPoolSize)},
			},
		},
		ConfigGroup{
			Name: "Session & Security",
			Items: []ConfigItem{
				{Name: "session_key", Value: mask(s.SessionKey)},
				{Name: "session_name", Value: s.SessionName},
				{Name: "session_domain", Value: s.SessionDomain},
				{Name: "session_max_age", Value: s.SessionMaxAge.String()},
				{Name: "csrf_key", Value: mask(s.CSRFKey)},
				{Name: "rate_limit_enabled", Value: str(s.RateLimitEnabled)},
				{Name: "rate_limit_login_attempts", Value: str(s.RateLimitLoginAttempts)},
				{Name: "rate_limit_login_window", Value: s.RateLimitLoginWindow.String()},
				{Name: "rate_limit_login_lockout", Value: s.RateLimitLoginLockout.String()},
			},
		},
		ConfigGroup{
			Name: "Audit & Retention",
			Items: []ConfigItem{
				{Name: "audit_log_auth", Value: s.AuditLogAuth},
				{Name: "audit_log_admin", Value: s.AuditLogAdmin},
				{Name: "audit_retention", Value: s.AuditRetention.String()},
				{Name: "login_history_retention", Value: s.LoginHistoryRetention.String()},
			},
		},
		ConfigGroup{
			Name: "Charts",
			Items: []ConfigItem{
				{Name: "site_name", Value: s.SiteName},
				{Name: "steps_scale", Value: str(s.StepsScale)},
				{Name: "hourly_window", Value: s.HourlyWindow.String()},
				{Name: "sleep_start_hour", Value: str(s.SleepStartHour)},
				{Name: "sleep_wake_hour", Value: str(s.SleepWakeHour)},
				{Name: "display_timezone", Value: s.DisplayTimezone},
			},
		},
	)
	return groups
}
