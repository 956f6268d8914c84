// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig carries the health API connection, the dashboard's
// display settings and the MongoDB store used for audit events,
// sign-in history and saved chart preferences.
type AppConfig struct {
	// Site name shown in the page title and top bar.
	SiteName string

	// Health API (upstream) configuration
	BackendURL             string        // Base URL of the health API (e.g., http://localhost:5001)
	BackendTimeout         time.Duration // Per-request HTTP timeout (default: 15s)
	BackendBreakerFailures int           // Consecutive failures before the breaker opens (default: 5)
	BackendBreakerOpenFor  time.Duration // How long the breaker stays open (default: 30s)
	BackendSummaryRemote   bool          // Proxy /api/my-summary instead of computing it locally

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: healthdash-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// Login throttling configuration
	RateLimitEnabled       bool          // Lock out a username after repeated failures (default: true)
	RateLimitLoginAttempts int           // Max failed login attempts before lockout (default: 5)
	RateLimitLoginWindow   time.Duration // Time window for counting failed attempts (default: 15m)
	RateLimitLoginLockout  time.Duration // Lockout duration after exceeding limit (default: 15m)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// Audit logging configuration
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditLogAuth  string // Login, logout and session expiry
	AuditLogAdmin string // Password resets and deletions from the admin page

	// Background jobs; zero disables the job
	AuditRetention        time.Duration // Age at which audit events are deleted (default: 90 days)
	LoginHistoryRetention time.Duration // Age at which sign-in records are deleted (default: 90 days)
	BackendProbeInterval  time.Duration // Health API probe interval (default: 1m)

	// Chart shaping
	StepsScale      float64       // Divisor applied to step counts (default: 100)
	HourlyWindow    time.Duration // Match window around each hour in the drill-down (default: 30m)
	SleepStartHour  int           // First hour marked asleep (default: 22)
	SleepWakeHour   int           // Hour the asleep band is clipped at (default: 6)
	DisplayTimezone string        // Zone for timestamps without an offset (default: UTC)

	// Login form
	LoginDefaultUsername string // Prefilled username on the login page
}
