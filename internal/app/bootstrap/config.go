// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/auditlog"
	"github.com/dalemusser/healthdash/internal/app/system/inputval"
	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "HEALTHDASH"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, mongo_uri, session_name, etc.
//   - Environment variables: HEALTHDASH_BACKEND_URL, HEALTHDASH_MONGO_URI, etc.
//   - Command-line flags: --backend_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "site_name", Default: "Health Dashboard", Desc: "Site name shown in page titles"},

	// Health API configuration
	{Name: "backend_url", Default: "http://localhost:5001", Desc: "Health API base URL"},
	{Name: "backend_timeout", Default: "15s", Desc: "Per-request timeout for the health API"},
	{Name: "backend_breaker_failures", Default: 5, Desc: "Consecutive health API failures before the circuit opens"},
	{Name: "backend_breaker_open_for", Default: "30s", Desc: "How long the circuit stays open"},
	{Name: "backend_summary_remote", Default: false, Desc: "Proxy /api/my-summary to the health API instead of computing it"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "healthdash", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "healthdash-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	// Rate limiting configuration
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for login attempts"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Max failed login attempts before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Time window for counting failed attempts"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration after exceeding limit"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Background jobs
	{Name: "audit_retention", Default: "2160h", Desc: "Delete audit events older than this (0 keeps them forever)"},
	{Name: "login_history_retention", Default: "2160h", Desc: "Delete sign-in records older than this (0 keeps them forever)"},
	{Name: "backend_probe_interval", Default: "1m", Desc: "How often the health API is probed in the background (0 disables)"},

	// Chart shaping
	{Name: "steps_scale", Default: 100, Desc: "Divisor applied to daily and hourly step counts"},
	{Name: "hourly_window", Default: "30m", Desc: "Match window around each hour in the day drill-down"},
	{Name: "sleep_start_hour", Default: 22, Desc: "First hour shaded as asleep (0-23)"},
	{Name: "sleep_wake_hour", Default: 6, Desc: "Hour the asleep shading stops at (0-23)"},
	{Name: "display_timezone", Default: "UTC", Desc: "Time zone for timestamps without an offset"},

	{Name: "login_default_username", Default: "", Desc: "Username prefilled on the login form"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HEALTHDASH_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SiteName: appValues.String("site_name"),

		// Health API
		BackendURL:             appValues.String("backend_url"),
		BackendTimeout:         appValues.Duration("backend_timeout", 15*time.Second),
		BackendBreakerFailures: appValues.Int("backend_breaker_failures"),
		BackendBreakerOpenFor:  appValues.Duration("backend_breaker_open_for", 30*time.Second),
		BackendSummaryRemote:   appValues.Bool("backend_summary_remote"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		// Rate limiting
		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		CSRFKey: appValues.String("csrf_key"),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		// Background jobs
		AuditRetention:        appValues.Duration("audit_retention", 90*24*time.Hour),
		LoginHistoryRetention: appValues.Duration("login_history_retention", 90*24*time.Hour),
		BackendProbeInterval:  appValues.Duration("backend_probe_interval", time.Minute),

		// Chart shaping
		StepsScale:      float64(appValues.Int("steps_scale")),
		HourlyWindow:    appValues.Duration("hourly_window", 30*time.Minute),
		SleepStartHour:  appValues.Int("sleep_start_hour"),
		SleepWakeHour:   appValues.Int("sleep_wake_hour"),
		DisplayTimezone: appValues.String("display_timezone"),

		LoginDefaultUsername: appValues.String("login_default_username"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if !inputval.IsValidHTTPURL(appCfg.BackendURL) {
		return fmt.Errorf("backend_url must be an absolute http(s) URL, got %q", appCfg.BackendURL)
	}
	if appCfg.BackendTimeout <= 0 {
		return fmt.Errorf("backend_timeout must be positive")
	}
	if appCfg.BackendBreakerFailures < 1 {
		return fmt.Errorf("backend_breaker_failures must be at least 1")
	}
	if appCfg.BackendBreakerOpenFor <= 0 {
		return fmt.Errorf("backend_breaker_open_for must be positive")
	}

	if appCfg.StepsScale <= 0 {
		return fmt.Errorf("steps_scale must be positive")
	}
	if appCfg.HourlyWindow <= 0 {
		return fmt.Errorf("hourly_window must be positive")
	}
	if appCfg.SleepStartHour < 0 || appCfg.SleepStartHour > 23 {
		return fmt.Errorf("sleep_start_hour must be between 0 and 23, got %d", appCfg.SleepStartHour)
	}
	if appCfg.SleepWakeHour < 0 || appCfg.SleepWakeHour > 23 {
		return fmt.Errorf("sleep_wake_hour must be between 0 and 23, got %d", appCfg.SleepWakeHour)
	}
	if _, err := time.LoadLocation(appCfg.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid display_timezone %q: %w", appCfg.DisplayTimezone, err)
	}

	for name, dest := range map[string]string{
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
	} {
		if dest != "" && !auditlog.ValidDestination(dest) {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", name, dest)
		}
	}

	if appCfg.AuditRetention < 0 || appCfg.LoginHistoryRetention < 0 || appCfg.BackendProbeInterval < 0 {
		return fmt.Errorf("audit_retention, login_history_retention and backend_probe_interval must not be negative")
	}

	if appCfg.RateLimitEnabled {
		if appCfg.RateLimitLoginAttempts < 1 {
			return fmt.Errorf("rate_limit_login_attempts must be at least 1")
		}
		if appCfg.RateLimitLoginWindow <= 0 || appCfg.RateLimitLoginLockout < appCfg.RateLimitLoginWindow {
			return fmt.Errorf("rate_limit_login_lockout must be at least rate_limit_login_window")
		}
	}

	return nil
}

// chartOptions converts the chart-shaping settings into transform options.
// ValidateConfig has already checked the time zone.
func chartOptions(appCfg AppConfig) healthdata.Options {
	opts := healthdata.DefaultOptions()
	opts.StepsScale = appCfg.StepsScale
	opts.Window = appCfg.HourlyWindow
	opts.SleepStartHour = appCfg.SleepStartHour
	opts.SleepWakeHour = appCfg.SleepWakeHour
	if loc, err := time.LoadLocation(appCfg.DisplayTimezone); err == nil {
		opts.Location = loc
	}
	return opts
}
