// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/healthdash/internal/app/store/audit"
	"github.com/dalemusser/healthdash/internal/app/system/network"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	DestAll = "all" // MongoDB and zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// ValidDestination reports whether s is a known destination.
func ValidDestination(s string) bool {
	switch s {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls login, logout and session expiry events.
	Auth string
	// Admin controls password resets and deletions done from the admin page.
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when every category
// is routed to "log" or "off".
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Username != "" {
		fields = append(fields, zap.String("username", event.Username))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's destination.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = DestAll
	}
	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}
	if (setting == DestAll || setting == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        network.GetClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, username, role string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.Username = username
	e.Success = true
	if role != "" {
		e.Details = map[string]string{"role": role}
	}
	l.Log(ctx, e)
}

// LoginFailed logs a login the health API rejected.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedCredentials)
	e.Username = username
	e.FailureReason = "invalid credentials"
	l.Log(ctx, e)
}

// LoginUnavailable logs a login that failed because the health API could not be reached.
func (l *Logger) LoginUnavailable(ctx context.Context, r *http.Request, username, reason string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUpstream)
	e.Username = username
	e.FailureReason = reason
	l.Log(ctx, e)
}

// LoginRateLimited logs an attempt refused because the username is locked out.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginRateLimited)
	e.Username = username
	e.FailureReason = "too many failed attempts"
	l.Log(ctx, e)
}

// Logout logs a user-initiated logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLogout)
	e.Username = username
	e.Success = true
	l.Log(ctx, e)
}

// SessionExpired logs a session dropped because the health API refused its token.
func (l *Logger) SessionExpired(ctx context.Context, r *http.Request, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventSessionExpired)
	e.Username = username
	e.Success = true
	l.Log(ctx, e)
}

// --- Admin Events ---

// PasswordReset logs an admin resetting target's password.
func (l *Logger) PasswordReset(ctx context.Context, r *http.Request, actor, target string, err error) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventPasswordReset)
	e.Actor = actor
	e.Username = target
	e.Success = err == nil
	if err != nil {
		e.FailureReason = err.Error()
	}
	l.Log(ctx, e)
}

// UserDeleted logs an admin deleting target.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actor, target string, err error) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventUserDeleted)
	e.Actor = actor
	e.Username = target
	e.Success = err == nil
	if err != nil {
		e.FailureReason = err.Error()
	}
	l.Log(ctx, e)
}
