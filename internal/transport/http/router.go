// Package httptransport assembles the public HTTP surface: shared middleware,
// CORS, health and metrics endpoints, and the module handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"farmgate/internal/platform/metrics"
	"farmgate/internal/platform/middleware"
	"farmgate/pkg/platform/httputil"
	"farmgate/pkg/platform/middleware/metadata"
	"farmgate/pkg/platform/middleware/requesttime"
)

// Routes is implemented by every module handler.
type Routes interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	ClientOrigin   string
	RequestTimeout time.Duration
	// HealthTimeout bounds all health checks of one /healthz call.
	HealthTimeout time.Duration
	// Middleware runs on module routes only, after the timeout.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter wires the middleware chain and mounts the given module routes.
// Health checks run on /healthz; Prometheus metrics are served on /metrics.
func NewRouter(cfg Config, logger *slog.Logger, m *metrics.Metrics, checks map[string]HealthCheck, routes ...Routes) http.Handler {
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 2 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.LatencyMiddleware(m))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(checks, cfg.HealthTimeout))

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Use(middleware.ContentTypeJSON)
		r.Use(cfg.Middleware...)
		for _, rt := range routes {
			rt.Register(r)
		}
	})

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	return co.Handler(r)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, timeout time.Duration) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
