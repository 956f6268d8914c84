// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/healthdash/internal/app/system/backend"
	"github.com/dalemusser/healthdash/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to EnsureSchema, Startup,
// BuildHandler, and Shutdown. Shutdown closes what needs closing.
type DBDeps struct {
	// MongoDB client and database. Holds audit events, sign-in history,
	// login throttling counters and saved chart preferences.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Backend is the health API client. Every chart, account and
	// credential check goes through it.
	Backend *backend.Client

	// Metrics is shared by the HTTP middleware and the backend client.
	Metrics *metrics.Metrics
}
