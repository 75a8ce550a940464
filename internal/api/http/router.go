package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/gatekeeper/internal/logger"
)

// ReadinessChecker reports whether the bot can serve users.
type ReadinessChecker interface {
	Ready() bool
}

// HealthChecker checks a backing dependency such as the ledger storage.
type HealthChecker interface {
	Health(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

// Handler serves the ops endpoints.
type Handler struct {
	gatherer  prometheus.Gatherer
	readiness ReadinessChecker
	checks    []HealthChecker
	logger    *logger.Logger
}

// New creates the ops handler. checks are consulted by /readyz after the
// gateway readiness.
func New(gatherer prometheus.Gatherer, readiness ReadinessChecker, logger *logger.Logger, checks ...HealthChecker) *Handler {
	return &Handler{
		gatherer:  gatherer,
		readiness: readiness,
		checks:    checks,
		logger:    logger,
	}
}

// Register mounts the ops endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleHealthz)
	r.Get("/readyz", h.HandleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// NewRouter builds the ops router with panic recovery.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	h.Register(r)
	return r
}

// HandleHealthz reports liveness.
func (h *Handler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, "ok")
}

// HandleReadyz reports 200 once the chat gateway is connected and every
// dependency check passes.
func (h *Handler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if !h.readiness.Ready() {
		h.logger.Debug("HTTP: readiness check while gateway is down")
		writeStatus(w, http.StatusServiceUnavailable, "not ready")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	for _, c := range h.checks {
		if err := c.Health(ctx); err != nil {
			h.logger.Warn("HTTP: dependency health check failed", "error", err.Error())
			writeStatus(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	writeStatus(w, http.StatusOK, "ready")
}

func writeStatus(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
