package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		SiteName:               "Health Dashboard",
		BackendURL:             "http://localhost:5001",
		BackendTimeout:         15 * time.Second,
		BackendBreakerFailures: 5,
		BackendBreakerOpenFor:  30 * time.Second,
		MongoURI:               "mongodb://localhost:27017",
		MongoDatabase:          "healthdash",
		RateLimitEnabled:       true,
		RateLimitLoginAttempts: 5,
		RateLimitLoginWindow:   15 * time.Minute,
		RateLimitLoginLockout:  15 * time.Minute,
		AuditLogAuth:           "all",
		AuditLogAdmin:          "all",
		AuditRetention:         90 * 24 * time.Hour,
		LoginHistoryRetention:  90 * 24 * time.Hour,
		BackendProbeInterval:   time.Minute,
		StepsScale:             100,
		HourlyWindow:           30 * time.Minute,
		SleepStartHour:         22,
		SleepWakeHour:          6,
		DisplayTimezone:        "UTC",
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil, validConfig(), zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig(valid) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"relative backend url", func(c *AppConfig) { c.BackendURL = "/api" }, "backend_url"},
		{"ftp backend url", func(c *AppConfig) { c.BackendURL = "ftp://host" }, "backend_url"},
		{"zero timeout", func(c *AppConfig) { c.BackendTimeout = 0 }, "backend_timeout"},
		{"no breaker failures", func(c *AppConfig) { c.BackendBreakerFailures = 0 }, "backend_breaker_failures"},
		{"zero steps scale", func(c *AppConfig) { c.StepsScale = 0 }, "steps_scale"},
		{"sleep hour out of range", func(c *AppConfig) { c.SleepStartHour = 24 }, "sleep_start_hour"},
		{"wake hour negative", func(c *AppConfig) { c.SleepWakeHour = -1 }, "sleep_wake_hour"},
		{"unknown zone", func(c *AppConfig) { c.DisplayTimezone = "Mars/Olympus" }, "display_timezone"},
		{"bad audit destination", func(c *AppConfig) { c.AuditLogAuth = "syslog" }, "audit_log_auth"},
		{"negative retention", func(c *AppConfig) { c.AuditRetention = -time.Hour }, "must not be negative"},
		{"lockout shorter than window", func(c *AppConfig) { c.RateLimitLoginLockout = time.Minute }, "rate_limit_login_lockout"},
		{"no attempts", func(c *AppConfig) { c.RateLimitLoginAttempts = 0 }, "rate_limit_login_attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, zap.NewNop())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ValidateConfig() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestValidateConfig_RateLimitDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitEnabled = false
	cfg.RateLimitLoginAttempts = 0
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err != nil {
		t.Errorf("throttle settings should be ignored when disabled, got %v", err)
	}
}

func TestChartOptions(t *testing.T) {
	cfg := validConfig()
	cfg.StepsScale = 1000
	cfg.DisplayTimezone = "America/Chicago"

	opts := chartOptions(cfg)

	if opts.StepsScale != 1000 || opts.Window != 30*time.Minute {
		t.Errorf("opts = %+v", opts)
	}
	if opts.SleepStartHour != 22 || opts.SleepWakeHour != 6 {
		t.Errorf("sleep hours = %d..%d", opts.SleepStartHour, opts.SleepWakeHour)
	}
	if opts.Location.String() != "America/Chicago" {
		t.Errorf("Location = %v", opts.Location)
	}
}

func TestCSRFExempt(t *testing.T) {
	tests := map[string]bool{
		"/api/chart/daily":       true,
		"/api/my-summary":        true,
		"/metrics":               true,
		"/health":                true,
		"/readyz":                true,
		"/login":                 false,
		"/dashboard/preferences": false,
		"/admin/users/x/delete":  false,
		"/apikeys":               false,
	}
	for path, want := range tests {
		if got := csrfExempt(path); got != want {
			t.Errorf("csrfExempt(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestNewTaskRunner(t *testing.T) {
	api, err := backend.New(backend.Config{BaseURL: "http://localhost:5001"}, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}

	cfg := validConfig()
	cfg.AuditRetention = 0
	cfg.LoginHistoryRetention = 0

	runner := newTaskRunner(cfg, DBDeps{Backend: api}, zap.NewNop())
	if got := strings.Join(runner.Names(), ","); got != "upstream-probe" {
		t.Errorf("jobs = %q, want upstream-probe", got)
	}

	cfg.BackendProbeInterval = 0
	runner = newTaskRunner(cfg, DBDeps{Backend: api}, zap.NewNop())
	if got := runner.Names(); len(got) != 0 {
		t.Errorf("jobs = %v, want none", got)
	}
}
