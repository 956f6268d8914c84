// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown is invoked after the HTTP server has stopped accepting requests
// and in-flight requests have drained (or the shutdown timeout elapsed).
//
// The health API client holds no connections that need closing; its idle
// keep-alives go away with the process.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var firstErr error

	if taskRunner != nil {
		logger.Info("stopping background jobs")
		if err := taskRunner.Stop(ctx); err != nil {
			logger.Warn("background jobs did not stop cleanly", zap.Error(err))
			firstErr = err
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
