package auditlog

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/healthdash/internal/app/store/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(cfg Config) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(nil, zap.New(core), cfg), logs
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	r := httptest.NewRequest("POST", "/login", nil)
	assert.NotPanics(t, func() { l.LoginSuccess(context.Background(), r, "p1", "") })
}

func TestLoginEventsGoToZap(t *testing.T) {
	l, logs := newObserved(Config{Auth: DestLog, Admin: DestOff})
	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	r.Header.Set("User-Agent", "test-agent")

	l.LoginSuccess(context.Background(), r, "participant-1", "participant")
	l.LoginFailed(context.Background(), r, "participant-1")

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0]
	assert.Equal(t, zapcore.InfoLevel, ok.Level)
	fields := ok.ContextMap()
	assert.Equal(t, audit.EventLoginSuccess, fields["event_type"])
	assert.Equal(t, "participant-1", fields["username"])
	assert.Equal(t, "10.1.2.3", fields["ip"])
	assert.Equal(t, "participant", fields["detail_role"])

	failed := entries[1]
	assert.Equal(t, zapcore.WarnLevel, failed.Level)
	assert.Equal(t, "invalid credentials", failed.ContextMap()["failure_reason"])
}

func TestCategoryRouting(t *testing.T) {
	l, logs := newObserved(Config{Auth: DestOff, Admin: DestLog})
	r := httptest.NewRequest("POST", "/admin/users/p1/delete", nil)

	l.Logout(context.Background(), r, "p1")
	assert.Zero(t, logs.Len(), "auth events are switched off")

	l.UserDeleted(context.Background(), r, "admin", "p1", errors.New("upstream said no"))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "admin", fields["actor"])
	assert.Equal(t, "p1", fields["username"])
	assert.Equal(t, false, fields["success"])
	assert.Equal(t, "upstream said no", fields["failure_reason"])
}

func TestEmptyDestinationDefaultsToAll(t *testing.T) {
	// No store configured, so "all" only reaches zap.
	l, logs := newObserved(Config{})
	l.PasswordReset(context.Background(), httptest.NewRequest("POST", "/", nil), "admin", "p2", nil)
	assert.Equal(t, 1, logs.Len())
}

func TestValidDestination(t *testing.T) {
	for _, s := range []string{"all", "db", "log", "off"} {
		assert.True(t, ValidDestination(s), s)
	}
	assert.False(t, ValidDestination("everything"))
	assert.False(t, ValidDestination(""))
}
