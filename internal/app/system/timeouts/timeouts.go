// Package timeouts provides centralized timeout values for handler operations.
package timeouts

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultUpstream = 20 * time.Second
)

var (
	ping     atomic.Int64
	short    atomic.Int64
	upstream atomic.Int64
)

func init() { Reset() }

// Ping bounds health checks of MongoDB and the health API.
func Ping() time.Duration { return time.Duration(ping.Load()) }

// Short bounds single MongoDB reads and writes.
func Short() time.Duration { return time.Duration(short.Load()) }

// Upstream bounds a handler's whole exchange with the health API,
// including payload decoding.
func Upstream() time.Duration { return time.Duration(upstream.Load()) }

// Config holds timeout configuration values. Zero fields keep the current value.
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Upstream time.Duration
}

// Configure sets custom timeout values.
func Configure(cfg Config) {
	if cfg.Ping > 0 {
		ping.Store(int64(cfg.Ping))
	}
	if cfg.Short > 0 {
		short.Store(int64(cfg.Short))
	}
	if cfg.Upstream > 0 {
		upstream.Store(int64(cfg.Upstream))
	}
}

// Reset restores all timeouts to defaults.
func Reset() {
	ping.Store(int64(DefaultPing))
	short.Store(int64(DefaultShort))
	upstream.Store(int64(DefaultUpstream))
}

// Current returns the current timeout configuration.
func Current() Config {
	return Config{Ping: Ping(), Short: Short(), Upstream: Upstream()}
}

// WithTimeout derives a context bounded by timeout. The returned cancel
// logs a warning when the deadline was what ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
