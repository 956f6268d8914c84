// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const probeTimeout = 5 * time.Second

// Upstream is the health API as seen by the probes. *backend.Client satisfies it.
type Upstream interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

// Handler provides health check endpoints.
type Handler struct {
	mongoClient *mongo.Client
	api         Upstream
	logger      *zap.Logger
}

// NewHandler creates a new health check Handler.
func NewHandler(mongoClient *mongo.Client, api Upstream, logger *zap.Logger) *Handler {
	return &Handler{
		mongoClient: mongoClient,
		api:         api,
		logger:      logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
	Breaker  string            `json:"breaker,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /ready and /livez endpoints directly on the root router.
// This is the standard convention for Kubernetes probes:
//   - /ready (or /readyz) - readiness probe
//   - /livez - liveness probe
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// probe pings MongoDB and the health API and reports each one.
func (h *Handler) probe(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp := Response{Status: "ok", Services: make(map[string]string, 2)}

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		resp.Status = "degraded"
		resp.Services["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
	} else {
		resp.Services["mongodb"] = "ok"
	}

	// The probe goes around the circuit breaker so a recovered upstream is
	// reported even while the breaker is still open.
	resp.Breaker = h.api.BreakerState()
	if err := h.api.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Services["health_api"] = "unavailable"
		h.logger.Warn("health check: health api probe failed", zap.Error(err))
	} else {
		resp.Services["health_api"] = "ok"
	}
	return resp
}

// Check performs a full health check of MongoDB and the health API.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := h.probe(r.Context())
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, status, resp)
}

// Ready checks if the service is ready to accept requests.
// Used by Kubernetes readiness probes.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if resp := h.probe(r.Context()); resp.Status != "ok" {
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "not ready", Services: resp.Services})
		return
	}
	jsonutil.OK(w, Response{Status: "ready"})
}

// Live checks if the service is alive.
// Used by Kubernetes liveness probes.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, Response{Status: "alive"})
}
