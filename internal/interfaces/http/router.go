package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chargeview/internal/interfaces/http/handlers"
	"github.com/turtacn/chargeview/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the HTTP route tree.  Nil handlers leave their routes out.
type RouterConfig struct {
	// Handlers
	ViewerHandler *handlers.ViewerHandler
	StreamHandler *handlers.StateStreamHandler
	HealthHandler *handlers.HealthHandler
	CacheHandler  *handlers.CacheHandler

	// Middleware
	CORS    *middleware.CORSConfig
	Logging *middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.ViewerMetrics

	// MetricsPath defaults to /metrics.
	MetricsPath string
}

// NewRouter constructs the route tree: global middleware, probes, /metrics,
// the viewer API under /api/v1/viewer and the download cache under
// /api/v1/cache.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		lc := middleware.DefaultLoggingConfig()
		if cfg.Logging != nil {
			lc = *cfg.Logging
		}
		r.Use(middleware.RequestLogging(cfg.Logger, lc))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1/viewer", func(api chi.Router) {
		registerViewerRoutes(api, cfg.ViewerHandler)
		if cfg.StreamHandler != nil {
			api.Get("/events", cfg.StreamHandler.Stream)
		}
	})
	if h := cfg.CacheHandler; h != nil {
		r.Route("/api/v1/cache", func(api chi.Router) {
			api.Delete("/", h.Purge)
			api.Get("/entry", h.Status)
			api.Delete("/entry", h.Invalidate)
		})
	}
	return r
}

// registerViewerRoutes mounts the control-state, charge and direct viewer
// endpoints.
func registerViewerRoutes(r chi.Router, h *handlers.ViewerHandler) {
	if h == nil {
		return
	}
	// Control state
	r.Post("/load", h.Load)
	r.Get("/state", h.GetState)
	r.Put("/coloring", h.SetColoring)
	r.Put("/max-value", h.SetMaxValue)
	r.Put("/view", h.SetView)
	r.Put("/type-id", h.SetTypeID)

	r.Route("/charges", func(cr chi.Router) {
		cr.Get("/methods", h.ListMethods)
		cr.Get("/type-id", h.GetTypeID)
		cr.Get("/max", h.GetMaxCharge)
	})

	// Direct viewer API
	r.Post("/color/{scheme}", h.SetColor)
	r.Get("/type/default-applicable", h.DefaultApplicable)
	r.Post("/type/{kind}", h.SetType)
	r.Post("/focus", h.Focus)
	r.Post("/focus-range", h.FocusRange)
	r.Get("/scene", h.Scene)
}

//Personal.AI order the ending
