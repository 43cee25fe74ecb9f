package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
	"github.com/guttosm/hr-portal-edge/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route prefixes.
const (
	ControlPrefix = "/sw"
	EventsPath    = ControlPrefix + "/clients/events"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	// RateLimiter limits control plane calls per subject; nil disables it.
	RateLimiter    *middleware.RateLimiter
	Idempotency    middleware.IdempotencyConfig
	RequestTimeout time.Duration
	CORSOrigins    []string
	EnableAuth     bool
	APIKeys        map[string]bool
	// Tokens validates bearer tokens; nil accepts API keys only.
	Tokens  service.TokenService
	Journal *middleware.JournalWriter
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RequestTimeout: 30 * time.Second,
	}
}

// Handlers are the route handlers mounted by NewRouter.
type Handlers struct {
	Proxy  *ProxyHandler
	Health *HealthHandler
	// Control are mounted under ControlPrefix.
	Control []RouteGroup
}

// NewRouter creates the edge router. Infrastructure routes and the control
// plane are matched first; every other request goes to the proxy.
func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	configureGlobalMiddleware(router, &cfg)
	registerInfrastructureRoutes(router, h.Health)
	registerControlRoutes(router, h.Control, &cfg)

	router.NoRoute(h.Proxy.Serve)
	return router
}

// configureGlobalMiddleware sets up middleware applied to all routes,
// proxied ones included.
func configureGlobalMiddleware(router *gin.Engine, cfg *RouterConfig) {
	timeout := middleware.DefaultTimeoutConfig()
	if cfg.RequestTimeout > 0 {
		timeout.Timeout = cfg.RequestTimeout
	}
	timeout.SkipPaths = []string{EventsPath}

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.RequestLogger(cfg.Journal),
		middleware.ErrorHandler(),
		middleware.Timeout(timeout),
	)
}

func registerInfrastructureRoutes(router *gin.Engine, health *HealthHandler) {
	health.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerControlRoutes mounts the /sw group. Proxied portal routes keep the
// origin's own CORS and encoding; only the control plane gets ours.
func registerControlRoutes(router *gin.Engine, groups []RouteGroup, cfg *RouterConfig) {
	sw := router.Group(ControlPrefix)
	sw.Use(
		middleware.CORS(cfg.CORSOrigins),
		middleware.Compression(EventsPath),
	)
	// preflights must not reach the proxy
	sw.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	if cfg.EnableAuth {
		sw.Use(middleware.ControlPlaneAuth(cfg.APIKeys, cfg.Tokens))
	}
	if cfg.RateLimiter != nil {
		sw.Use(cfg.RateLimiter.Limit())
	}
	sw.Use(middleware.Idempotency(cfg.Idempotency))

	read, write := sw, sw
	if cfg.EnableAuth {
		read = sw.Group("", middleware.RequireScope(dto.ScopeRead))
		write = sw.Group("", middleware.RequireScope(dto.ScopeControl))
	}
	for _, g := range groups {
		g.RegisterRoutes(read, write)
	}
}
