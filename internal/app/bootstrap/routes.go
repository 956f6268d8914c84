// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	adminusersfeature "github.com/dalemusser/healthdash/internal/app/features/adminusers"
	auditlogfeature "github.com/dalemusser/healthdash/internal/app/features/auditlog"
	chartapifeature "github.com/dalemusser/healthdash/internal/app/features/chartapi"
	dashboardfeature "github.com/dalemusser/healthdash/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/healthdash/internal/app/features/errors"
	healthfeature "github.com/dalemusser/healthdash/internal/app/features/health"
	homefeature "github.com/dalemusser/healthdash/internal/app/features/home"
	loginfeature "github.com/dalemusser/healthdash/internal/app/features/login"
	logoutfeature "github.com/dalemusser/healthdash/internal/app/features/logout"
	pagesfeature "github.com/dalemusser/healthdash/internal/app/features/pages"
	statusfeature "github.com/dalemusser/healthdash/internal/app/features/status"
	appresources "github.com/dalemusser/healthdash/internal/app/resources"
	"github.com/dalemusser/healthdash/internal/app/store/audit"
	loginstore "github.com/dalemusser/healthdash/internal/app/store/logins"
	preferencesstore "github.com/dalemusser/healthdash/internal/app/store/preferences"
	"github.com/dalemusser/healthdash/internal/app/store/ratelimit"
	"github.com/dalemusser/healthdash/internal/app/system/auditlog"
	"github.com/dalemusser/healthdash/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// csrfExempt reports whether path skips CSRF checks. The chart API is
// read-only JSON fetched by the dashboard script; probes and metrics are
// scraped by machines.
func csrfExempt(path string) bool {
	switch path {
	case "/metrics", "/ready", "/readyz", "/livez":
		return true
	}
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/health")
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed.
//
// Browser pages use session auth with CSRF protection. The /api chart
// endpoints use the same session but no CSRF, and answer 401 JSON
// instead of redirecting.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	upstream := errorsfeature.NewUpstream(sessionMgr, auditLogger, errLog)

	loginStore := loginstore.New(deps.MongoDatabase)
	prefsStore := preferencesstore.New(deps.MongoDatabase)

	// Rate limiting for login attempts (nil if disabled)
	var rateLimitStore *ratelimit.Store
	if appCfg.RateLimitEnabled {
		rateLimitStore = ratelimit.New(
			deps.MongoDatabase,
			appCfg.RateLimitLoginAttempts,
			appCfg.RateLimitLoginWindow,
			appCfg.RateLimitLoginLockout,
		)
	}

	opts := chartOptions(appCfg)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Slightly longer than one upstream call so the client's own timeout fires first.
	r.Use(chimw.Timeout(appCfg.BackendTimeout + 15*time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(deps.Metrics.Middleware)
	r.Use(sessionMgr.LoadSessionUser)

	// Cookie name is "healthdash_csrf" to avoid collisions with other
	// services on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("healthdash_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
	r.Use(func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if csrfExempt(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}
			protected.ServeHTTP(w, req)
		})
	})

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	// Health checks for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	r.Handle("/metrics", deps.Metrics.Handler())

	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	homeHandler := homefeature.NewHandler()
	r.Mount("/", homefeature.Routes(homeHandler))

	pagesHandler := pagesfeature.NewHandler()
	r.Mount("/disclaimer", pagesHandler.DisclaimerRouter())

	// Authentication
	loginHandler := loginfeature.NewHandler(
		deps.Backend,
		sessionMgr,
		rateLimitStore,
		loginStore,
		auditLogger,
		errLog,
		appCfg.LoginDefaultUsername,
		logger,
	)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Participant dashboard and baseline overview
	dashboardHandler := dashboardfeature.NewHandler(deps.Backend, prefsStore, sessionMgr, upstream, errLog, opts, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Chart data for the dashboard script
	chartHandler := chartapifeature.NewHandler(deps.Backend, upstream, opts, appCfg.BackendSummaryRemote, logger)
	r.Mount("/api", chartapifeature.Routes(chartHandler, sessionMgr))

	// Admin
	adminUsersHandler := adminusersfeature.NewHandler(
		deps.Backend,
		loginStore,
		prefsStore,
		sessionMgr,
		upstream,
		errLog,
		auditLogger,
		logger,
	)
	r.Mount("/admin/users", adminusersfeature.Routes(adminUsersHandler, sessionMgr))

	auditLogHandler := auditlogfeature.NewHandler(auditStore, opts.Location, errLog, logger)
	r.Mount("/admin/audit", auditlogfeature.Routes(auditLogHandler, sessionMgr))

	var jobNames []string
	if taskRunner != nil {
		jobNames = taskRunner.Names()
	}
	statusHandler := statusfeature.NewHandler(deps.MongoClient, deps.Backend, jobNames, coreCfg, statusSettings(appCfg), logger)
	r.Mount("/admin/status", statusfeature.Routes(statusHandler, sessionMgr))

	// 404 catch-all for unmatched routes
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

// statusSettings copies the values shown on /admin/status.
func statusSettings(appCfg AppConfig) statusfeature.Settings {
	return statusfeature.Settings{
		SiteName:               appCfg.SiteName,
		BackendURL:             appCfg.BackendURL,
		BackendTimeout:         appCfg.BackendTimeout,
		BackendBreakerFailures: appCfg.BackendBreakerFailures,
		BackendBreakerOpenFor:  appCfg.BackendBreakerOpenFor,
		BackendSummaryRemote:   appCfg.BackendSummaryRemote,
		BackendProbeInterval:   appCfg.BackendProbeInterval,
		MongoURI:               appCfg.MongoURI,
		MongoDatabase:          appCfg.MongoDatabase,
		MongoMaxPoolSize:       appCfg.MongoMaxPoolSize,
		MongoMinPoolSize:       appCfg.MongoMinPoolSize,
		SessionKey:             appCfg.SessionKey,
		SessionName:            appCfg.SessionName,
		SessionDomain:          appCfg.SessionDomain,
		SessionMaxAge:          appCfg.SessionMaxAge,
		CSRFKey:                appCfg.CSRFKey,
		RateLimitEnabled:       appCfg.RateLimitEnabled,
		RateLimitLoginAttempts: appCfg.RateLimitLoginAttempts,
		RateLimitLoginWindow:   appCfg.RateLimitLoginWindow,
		RateLimitLoginLockout:  appCfg.RateLimitLoginLockout,
		AuditLogAuth:           appCfg.AuditLogAuth,
		AuditLogAdmin:          appCfg.AuditLogAdmin,
		AuditRetention:         appCfg.AuditRetention,
		LoginHistoryRetention:  appCfg.LoginHistoryRetention,
		StepsScale:             appCfg.StepsScale,
		HourlyWindow:           appCfg.HourlyWindow,
		SleepStartHour:         appCfg.SleepStartHour,
		SleepWakeHour:          appCfg.SleepWakeHour,
		DisplayTimezone:        appCfg.DisplayTimezone,
	}
}
