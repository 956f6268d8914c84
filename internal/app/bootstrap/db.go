// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/app/system/indexes"
	"github.com/dalemusser/healthdash/internal/app/system/metrics"
	"github.com/dalemusser/healthdash/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and builds the health API client.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema
// and Startup. The health API is not dialed here; an unreachable upstream
// only degrades /health and the pages that need it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	m := metrics.New(nil)

	api, err := backend.New(backend.Config{
		BaseURL:         appCfg.BackendURL,
		Timeout:         appCfg.BackendTimeout,
		BreakerFailures: uint32(appCfg.BackendBreakerFailures),
		BreakerOpenFor:  appCfg.BackendBreakerOpenFor,
	}, logger, m)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("health api client: %w", err)
	}
	logger.Info("configured health API client",
		zap.String("url", appCfg.BackendURL),
		zap.Duration("timeout", appCfg.BackendTimeout),
		zap.Int("breaker_failures", appCfg.BackendBreakerFailures),
	)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Backend:       api,
		Metrics:       m,
	}, nil
}

// EnsureSchema creates collections, validators and indexes.
//
// The context has a timeout based on coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Collections first so indexes are created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
