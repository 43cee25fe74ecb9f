// Package app provides router configuration.
package app

import (
	"fmt"

	"github.com/guttosm/hr-portal-edge/config"
	"github.com/guttosm/hr-portal-edge/internal/clients"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/http"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
	"github.com/guttosm/hr-portal-edge/internal/service"
	"github.com/guttosm/hr-portal-edge/internal/upstream"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handlers http.Handlers
	Config   http.RouterConfig
}

// Stop releases the rate limiter and idempotency cache goroutines.
func (r *RouterComponents) Stop() {
	if r.Config.RateLimiter != nil {
		r.Config.RateLimiter.Stop()
	}
	r.Config.Idempotency.Stop()
}

// EdgeComponents are the already initialized parts the router serves.
type EdgeComponents struct {
	Controller *controller.Controller
	Hub        *clients.Hub
	Upstream   *upstream.Client
	Journal    *middleware.JournalWriter
	Database   *DatabaseComponents
	Storage    *StorageComponents
}

// InitializeRouter initializes HTTP handlers and router configuration.
func InitializeRouter(cfg config.Config, edge EdgeComponents) (*RouterComponents, error) {
	healthHandler := http.NewHealthHandler(edge.Controller.Lifecycle())

	var journal service.JournalService
	if db := edge.Database; db != nil {
		healthHandler.RegisterChecker("mongodb", db.DB)
		if db.JournalCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_journal", db.JournalCircuitBreaker)
		}
		journal = db.Journal
	}
	if st := edge.Storage; st != nil {
		// the mongo backend shares the connection checked above
		if st.Checker != nil && cfg.Storage.Backend != config.BackendMongo {
			healthHandler.RegisterChecker(cfg.Storage.Backend, st.Checker)
		}
		if st.CircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("cache_storage", st.CircuitBreaker)
		}
	}

	var tokens service.TokenService
	if cfg.Auth.JWTSecretKey != "" {
		ts, err := service.NewTokenService(cfg.Auth.JWTSecretKey, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("token service: %w", err)
		}
		tokens = ts
	}

	idempotency := middleware.DefaultIdempotencyConfig()
	if cfg.Server.IdempotencyTTL > 0 {
		idempotency = middleware.NewIdempotencyConfig(cfg.Server.IdempotencyTTL)
	}

	routerCfg := http.RouterConfig{
		Idempotency:    idempotency,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
		EnableAuth:     cfg.Auth.Enabled,
		APIKeys:        cfg.Auth.APIKeys,
		Tokens:         tokens,
		Journal:        edge.Journal,
	}
	if cfg.Server.RateLimit > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	}

	return &RouterComponents{
		Handlers: http.Handlers{
			Proxy:  http.NewProxyHandler(edge.Controller, edge.Upstream.ReverseProxy()),
			Health: healthHandler,
			Control: []http.RouteGroup{
				http.NewControlHandler(edge.Controller, edge.Hub, edge.Journal),
				http.NewClientsHandler(edge.Hub, http.DefaultHeartbeat),
				http.NewJournalHandler(journal),
			},
		},
		Config: routerCfg,
	}, nil
}
