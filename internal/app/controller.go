package app

import (
	"context"
	"fmt"

	"github.com/guttosm/hr-portal-edge/config"
	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
	"github.com/guttosm/hr-portal-edge/internal/clients"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
	"github.com/rs/zerolog/log"
)

// ControllerConfig maps the environment onto the controller's configuration.
func ControllerConfig(cfg config.Config) controller.Config {
	c := controller.NewConfig(cfg.Controller.CachePrefix, cfg.Controller.CacheVersion)
	if len(cfg.Controller.PrecacheAssets) > 0 {
		c.PrecacheAssets = append([]string(nil), cfg.Controller.PrecacheAssets...)
	}
	if cfg.Controller.ShellDocument != "" {
		c.ShellDocument = cfg.Controller.ShellDocument
	}
	if cfg.Controller.SettingsPath != "" {
		c.SettingsPath = cfg.Controller.SettingsPath
	}
	if cfg.Controller.SettingsTimeout > 0 {
		c.SettingsTimeout = cfg.Controller.SettingsTimeout
	}
	c.Origin = cfg.Controller.PublicOrigin

	n := cfg.Notification
	if n.Title != "" {
		c.Notification.Title = n.Title
	}
	if n.Body != "" {
		c.Notification.Body = n.Body
	}
	if n.Icon != "" {
		c.Notification.Icon = n.Icon
	}
	if n.Badge != "" {
		c.Notification.Badge = n.Badge
	}
	return c
}

// InitializeController creates the cache controller. Lifecycle events are
// journaled through writer, which may be nil.
func InitializeController(cfg config.Config, storage cachestorage.Storage, fetcher controller.Fetcher, hub *clients.Hub, writer *middleware.JournalWriter) (*controller.Controller, error) {
	ctl, err := controller.New(ControllerConfig(cfg), storage, fetcher, hub, hub,
		controller.WithRecorder(middleware.NewLifecycleRecorder(writer)))
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	return ctl, nil
}

// StartController installs the current version and activates it when no
// window holds on to a previous one.
func StartController(ctx context.Context, ctl *controller.Controller) error {
	if _, err := ctl.Handle(ctx, controller.InstallEvent{}); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	if !ctl.ShouldActivate(ctx) {
		log.Info().Str("version", ctl.Lifecycle().Version()).Msg("Installed version waiting for clients to close")
		return nil
	}
	if _, err := ctl.Handle(ctx, controller.ActivateEvent{}); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	log.Info().Str("version", ctl.Lifecycle().Version()).Msg("Cache controller active")
	return nil
}
