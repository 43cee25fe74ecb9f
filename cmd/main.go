// Package main is the entry point for the HR portal edge.
//
// The edge sits in front of the HR portal origin, serves the app shell and
// static assets from versioned cache partitions, delivers push notifications
// to attached windows, and exposes its control plane under /sw.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/guttosm/hr-portal-edge/config"
	"github.com/guttosm/hr-portal-edge/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	edge, err := app.InitializeApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize edge")
	}

	server := app.NewServer(edge.Router, cfg.Server.Port)
	server.OnShutdown(edge.Close)

	if err := server.Run(ctx); err != nil {
		_ = edge.Close(context.Background())
		log.Fatal().Err(err).Msg("Server error")
	}
}
