// Package controller implements the offline cache controller: request
// classification and caching strategies, the install/activate lifecycle
// that versions cache partitions, push notification display, and
// messages from the application shell.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
)

// ErrNetwork wraps a fetch failure that had no cache or shell fallback.
var ErrNetwork = errors.New("network request failed")

// Fetcher performs a single network attempt. HTTP error statuses are
// responses, not errors; only transport failures return an error.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*model.CachedResponse, error)
}

// ClientType filters window clients.
type ClientType string

const (
	ClientTypeWindow ClientType = "window"
	ClientTypeAll    ClientType = "all"
)

// Client is an open application context.
type Client struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Type       ClientType `json:"type"`
	Focused    bool       `json:"focused"`
	Controlled bool       `json:"controlled"`
}

// MatchOptions filters Clients.MatchAll.
type MatchOptions struct {
	IncludeUncontrolled bool
	Type                ClientType
}

// Clients is the set of application contexts the controller can reach.
type Clients interface {
	MatchAll(ctx context.Context, opts MatchOptions) ([]Client, error)
	Navigate(ctx context.Context, id, url string) error
	Focus(ctx context.Context, id string) error
	OpenWindow(ctx context.Context, url string) (string, error)
	// Claim makes this controller govern every open client.
	Claim(ctx context.Context) error
}

// Notifier displays and dismisses notifications.
type Notifier interface {
	Show(ctx context.Context, n model.NotificationPayload) error
	Close(ctx context.Context, tag string) error
}

// Recorder receives lifecycle events for the journal.
type Recorder interface {
	RecordLifecycle(ctx context.Context, event, version string, fields map[string]interface{})
}

// Controller handles Events for one version of the offline cache.
type Controller struct {
	cfg       Config
	storage   cachestorage.Storage
	fetcher   Fetcher
	clients   Clients
	notifier  Notifier
	recorder  Recorder
	lifecycle *Lifecycle
	now       func() time.Time
	newTag    func() string
}

// Option customises a Controller.
type Option func(*Controller)

// WithRecorder journals lifecycle events.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTagGenerator replaces the notification tag generator.
func WithTagGenerator(fn func() string) Option {
	return func(c *Controller) { c.newTag = fn }
}

// New creates a controller. cfg is copied.
func New(cfg Config, storage cachestorage.Storage, fetcher Fetcher, clients Clients, notifier Notifier, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if storage == nil || fetcher == nil || clients == nil || notifier == nil {
		return nil, fmt.Errorf("%w: storage, fetcher, clients and notifier are required", ErrInvalidConfig)
	}
	c := &Controller{
		cfg:       cfg.clone(),
		storage:   storage,
		fetcher:   fetcher,
		clients:   clients,
		notifier:  notifier,
		lifecycle: NewLifecycle(cfg.Version),
		now:       time.Now,
		newTag:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the configuration.
func (c *Controller) Config() Config {
	return c.cfg.clone()
}

// Lifecycle exposes the lifecycle state.
func (c *Controller) Lifecycle() *Lifecycle {
	return c.lifecycle
}

// Storage returns the cache storage the controller writes to.
func (c *Controller) Storage() cachestorage.Storage {
	return c.storage
}

// Handle dispatches ev to its handler.
func (c *Controller) Handle(ctx context.Context, ev Event) (Action, error) {
	switch e := ev.(type) {
	case InstallEvent:
		return c.install(ctx)
	case ActivateEvent:
		return c.activate(ctx)
	case FetchEvent:
		return c.fetch(ctx, e.Request)
	case PushEvent:
		return c.push(ctx, e)
	case NotificationClickEvent:
		return c.notificationClick(ctx, e)
	case MessageEvent:
		return c.message(ctx, e)
	default:
		return Action{}, fmt.Errorf("unsupported event %T", ev)
	}
}

// ShouldActivate reports whether a waiting version may activate now: either
// SkipWaiting was called or no client is attached.
func (c *Controller) ShouldActivate(ctx context.Context) bool {
	if c.lifecycle.State() != StateWaiting {
		return false
	}
	if c.lifecycle.SkippingWaiting() {
		return true
	}
	clients, err := c.clients.MatchAll(ctx, MatchOptions{IncludeUncontrolled: true, Type: ClientTypeAll})
	return err == nil && len(clients) == 0
}

func (c *Controller) record(ctx context.Context, event string, fields map[string]interface{}) {
	if c.recorder != nil {
		c.recorder.RecordLifecycle(ctx, event, c.cfg.Version, fields)
	}
}
