// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/healthdash/internal/app/resources"
	"github.com/dalemusser/healthdash/internal/app/store/audit"
	loginstore "github.com/dalemusser/healthdash/internal/app/store/logins"
	"github.com/dalemusser/healthdash/internal/app/system/tasks"
	"github.com/dalemusser/healthdash/internal/app/system/timeouts"
	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()
	viewdata.SetSiteName(appCfg.SiteName)

	// Handlers bound their upstream calls by the same timeout the
	// client uses for a single request.
	timeouts.Configure(timeouts.Config{Upstream: appCfg.BackendTimeout})

	// An unreachable upstream is not fatal; /health reports it.
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := deps.Backend.Ping(pingCtx); err != nil {
		logger.Warn("health API not reachable at startup", zap.String("url", appCfg.BackendURL), zap.Error(err))
	}

	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner registers the jobs enabled by configuration and starts them.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = newTaskRunner(appCfg, deps, logger)
	taskRunner.Start()
}

func newTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *tasks.Runner {
	runner := tasks.New(logger)

	if appCfg.AuditRetention > 0 {
		runner.Register(tasks.AuditRetentionJob(audit.New(deps.MongoDatabase), appCfg.AuditRetention, logger))
	}
	if appCfg.LoginHistoryRetention > 0 {
		runner.Register(tasks.LoginHistoryRetentionJob(loginstore.New(deps.MongoDatabase), appCfg.LoginHistoryRetention, logger))
	}
	if appCfg.BackendProbeInterval > 0 && deps.Backend != nil {
		runner.Register(tasks.UpstreamProbeJob(deps.Backend, appCfg.BackendProbeInterval, logger))
	}

	return runner
}
