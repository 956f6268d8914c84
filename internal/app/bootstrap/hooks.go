// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle.
// app.Run calls them in order: configuration, DB and upstream setup,
// one-time startup work, HTTP handler construction, and shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "healthdash",   // used only for logging/diagnostics
	LoadConfig:     LoadConfig,     // load core + app config
	ValidateConfig: ValidateConfig, // health API URL, MongoDB URI, chart settings
	ConnectDB:      ConnectDB,      // MongoDB + health API client
	EnsureSchema:   EnsureSchema,   // collections, validators, indexes
	Startup:        Startup,        // shared templates, timeouts, background jobs
	BuildHandler:   BuildHandler,   // router + middleware stack
	Shutdown:       Shutdown,       // stop jobs, disconnect MongoDB
}
