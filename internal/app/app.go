// Package app provides application initialization and dependency injection.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/config"
	"github.com/guttosm/hr-portal-edge/internal/clients"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/http"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
	"github.com/guttosm/hr-portal-edge/internal/repository"
	"github.com/guttosm/hr-portal-edge/internal/service"
	"github.com/guttosm/hr-portal-edge/internal/upstream"
)

// startupTimeout bounds the install pre-cache and the first activation.
const startupTimeout = time.Minute

// App is the wired edge.
type App struct {
	Router     *gin.Engine
	Controller *controller.Controller
	Hub        *clients.Hub

	closers []func(context.Context) error
}

// InitializeApp creates and wires all application dependencies.
// This is the main orchestration function that initializes all components.
func InitializeApp(ctx context.Context, cfg config.Config) (*App, error) {
	// Initialize logger first (needed by other components)
	InitializeLogger(cfg)

	a := &App{}
	app, err := a.initialize(ctx, cfg)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return app, nil
}

func (a *App) initialize(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := InitializeDatabase(cfg)
	if err != nil {
		return nil, err
	}
	var (
		mongo   *repository.MongoDB
		journal service.JournalService
	)
	if db != nil {
		mongo = db.DB
		journal = db.Journal
		a.onClose(mongo.Close)
	}

	store, err := InitializeStorage(cfg, mongo)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return store.Close() })

	writer := middleware.NewJournalWriter(journal, middleware.DefaultJournalWriterConfig())
	a.onClose(func(context.Context) error {
		writer.Stop()
		return nil
	})

	fetcher, err := upstream.New(upstream.Config{
		BaseURL:      cfg.Upstream.URL,
		MaxBodyBytes: cfg.Upstream.MaxBodyBytes,
	})
	if err != nil {
		return nil, err
	}

	a.Hub = clients.NewHub()
	a.Controller, err = InitializeController(cfg, store.Storage, fetcher, a.Hub, writer)
	if err != nil {
		return nil, err
	}

	routerComponents, err := InitializeRouter(cfg, EdgeComponents{
		Controller: a.Controller,
		Hub:        a.Hub,
		Upstream:   fetcher,
		Journal:    writer,
		Database:   db,
		Storage:    store,
	})
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error {
		routerComponents.Stop()
		return nil
	})
	a.Router = http.NewRouter(routerComponents.Handlers, routerComponents.Config)

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := StartController(startCtx, a.Controller); err != nil {
		return nil, fmt.Errorf("start controller: %w", err)
	}

	return a, nil
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse initialization order, so buffered
// journal entries are flushed before the database disconnects.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
