// Package app wires configuration, storage, the controller and the HTTP server together.
package app

import (
	"github.com/guttosm/hr-portal-edge/config"
	"github.com/guttosm/hr-portal-edge/internal/logger"
)

// InitializeLogger initializes the global logger from configuration.
func InitializeLogger(cfg config.Config) {
	logger.Init(logger.Options{
		Level:        cfg.Server.LogLevel,
		Pretty:       cfg.Server.LogPretty,
		CacheVersion: cfg.Controller.CacheVersion,
	})
}
