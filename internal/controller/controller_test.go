package controller_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errOffline = errors.New("dial tcp: connection refused")
	fixedNow   = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
)

type harness struct {
	ctl      *controller.Controller
	storage  *cachestorage.PartitionStorage
	fetcher  *mocks.MockFetcher
	clients  *mocks.MockClients
	notifier *mocks.MockNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, cachestorage.NewMemory())
}

// newHarnessWith builds a harness over storage, for tests that inject a
// misbehaving backend.
func newHarnessWith(t *testing.T, storage *cachestorage.PartitionStorage) *harness {
	t.Helper()
	h := &harness{
		storage:  storage,
		fetcher:  new(mocks.MockFetcher),
		clients:  new(mocks.MockClients),
		notifier: new(mocks.MockNotifier),
	}
	cfg := controller.DefaultConfig()
	cfg.Origin = "https://hr.example.com"
	ctl, err := controller.New(cfg, h.storage, h.fetcher, h.clients, h.notifier,
		controller.WithClock(func() time.Time { return fixedNow }),
		controller.WithTagGenerator(func() string { return "tag-1" }),
	)
	require.NoError(t, err)
	h.ctl = ctl
	return h
}

func path(p string) interface{} {
	return mock.MatchedBy(func(r controller.Request) bool { return r.Path == p })
}

func isAsset() interface{} {
	return mock.MatchedBy(func(r controller.Request) bool {
		return r.Path == "/index.html" || strings.HasPrefix(r.Path, "/icons/")
	})
}

func response(status int, body string) *model.CachedResponse {
	return &model.CachedResponse{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"text/plain"}},
		Body:       []byte(body),
	}
}

// serveAssets answers the shell with "shell" and every icon with "icon".
func (h *harness) serveAssets() {
	h.fetcher.On("Fetch", mock.Anything, path("/index.html")).Return(response(200, "shell"), nil)
	h.fetcher.On("Fetch", mock.Anything, isAsset()).Return(response(200, "icon"), nil)
}

// activate installs with every asset available, then activates.
func (h *harness) activate(t *testing.T) {
	t.Helper()
	h.serveAssets()
	h.clients.On("Claim", mock.Anything).Return(nil)
	_, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})
	require.NoError(t, err)
	_, err = h.ctl.Handle(context.Background(), controller.ActivateEvent{})
	require.NoError(t, err)
	require.Equal(t, controller.StateActive, h.ctl.Lifecycle().State())
}

func (h *harness) keys(t *testing.T, partition string) []string {
	t.Helper()
	c, err := h.storage.Open(context.Background(), partition)
	require.NoError(t, err)
	keys, err := c.Keys(context.Background())
	require.NoError(t, err)
	return keys
}

func (h *harness) partitions(t *testing.T) []string {
	t.Helper()
	names, err := h.storage.Keys(context.Background())
	require.NoError(t, err)
	return names
}

func (h *harness) seed(t *testing.T, partition, target, body string) {
	t.Helper()
	c, err := h.storage.Open(context.Background(), partition)
	require.NoError(t, err)
	require.NoError(t, c.Put(context.Background(), cachestorage.Key(http.MethodGet, target), response(200, body)))
}

func fetch(h *harness, target string, mode controller.RequestMode) (controller.Action, error) {
	return h.ctl.Handle(context.Background(), controller.FetchEvent{Request: controller.NewGetRequest(target, mode)})
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := controller.DefaultConfig()
	cfg.StaticCache = cfg.CacheName

	_, err := controller.New(cfg, cachestorage.NewMemory(), new(mocks.MockFetcher), new(mocks.MockClients), new(mocks.MockNotifier))
	assert.ErrorIs(t, err, controller.ErrInvalidConfig)

	_, err = controller.New(controller.DefaultConfig(), nil, new(mocks.MockFetcher), new(mocks.MockClients), new(mocks.MockNotifier))
	assert.ErrorIs(t, err, controller.ErrInvalidConfig)
}

func TestInstall(t *testing.T) {
	t.Run("repeated installs keep one entry per asset", func(t *testing.T) {
		h := newHarness(t)
		h.serveAssets()

		for i := 0; i < 3; i++ {
			action, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})
			require.NoError(t, err)
			assert.Equal(t, controller.ActionNone, action.Kind)
		}

		keys := h.keys(t, "hr-portal-static-v2")
		assert.Len(t, keys, 10)
		assert.ElementsMatch(t, []string{
			"GET /index.html",
			"GET /icons/icon-72x72.png",
			"GET /icons/icon-96x96.png",
			"GET /icons/icon-128x128.png",
			"GET /icons/icon-144x144.png",
			"GET /icons/icon-152x152.png",
			"GET /icons/icon-192x192.png",
			"GET /icons/icon-384x384.png",
			"GET /icons/icon-512x512.png",
			"GET /icons/apple-touch-icon-180x180.png",
		}, keys)
		assert.Equal(t, controller.StateWaiting, h.ctl.Lifecycle().State())
		assert.True(t, h.ctl.Lifecycle().SkippingWaiting())
		assert.True(t, h.ctl.ShouldActivate(context.Background()))
	})

	t.Run("a missing asset is swallowed and nothing is written", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/icons/icon-512x512.png")).Return(response(404, "missing"), nil)
		h.serveAssets()

		action, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionNone, action.Kind)
		assert.Empty(t, h.keys(t, "hr-portal-static-v2"))
		assert.Equal(t, controller.StateWaiting, h.ctl.Lifecycle().State())
		assert.True(t, h.ctl.Lifecycle().SkippingWaiting())
	})

	t.Run("offline install still completes", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nil, errOffline)

		_, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})

		require.NoError(t, err)
		assert.Equal(t, controller.StateWaiting, h.ctl.Lifecycle().State())
	})

	t.Run("install is journaled", func(t *testing.T) {
		h := newHarness(t)
		recorder := new(mocks.MockRecorder)
		recorder.On("RecordLifecycle", mock.Anything, "install", "v2", mock.Anything).Once()
		ctl, err := controller.New(controller.DefaultConfig(), h.storage, h.fetcher, h.clients, h.notifier, controller.WithRecorder(recorder))
		require.NoError(t, err)
		h.serveAssets()

		_, err = ctl.Handle(context.Background(), controller.InstallEvent{})
		require.NoError(t, err)
		recorder.AssertExpectations(t)
	})
}

func TestActivate(t *testing.T) {
	t.Run("stale partitions are purged", func(t *testing.T) {
		h := newHarness(t)
		for _, name := range []string{"hr-portal-v1", "hr-portal-static-v1", "hr-portal-v2", "hr-portal-static-v2", "hr-portal-dynamic-v2"} {
			_, err := h.storage.Open(context.Background(), name)
			require.NoError(t, err)
		}
		h.serveAssets()
		h.clients.On("Claim", mock.Anything).Return(nil).Once()

		_, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})
		require.NoError(t, err)
		action, err := h.ctl.Handle(context.Background(), controller.ActivateEvent{})

		require.NoError(t, err)
		assert.Equal(t, []string{"hr-portal-v1", "hr-portal-static-v1"}, action.Deleted)
		assert.Equal(t, []string{"hr-portal-v2", "hr-portal-static-v2", "hr-portal-dynamic-v2"}, h.partitions(t))
		assert.Equal(t, controller.StateActive, h.ctl.Lifecycle().State())
		assert.True(t, h.ctl.Lifecycle().Controlling())
		h.clients.AssertExpectations(t)
	})

	t.Run("claim failure does not block activation", func(t *testing.T) {
		h := newHarness(t)
		h.serveAssets()
		h.clients.On("Claim", mock.Anything).Return(errors.New("no clients hub"))

		_, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})
		require.NoError(t, err)
		_, err = h.ctl.Handle(context.Background(), controller.ActivateEvent{})

		require.NoError(t, err)
		assert.Equal(t, controller.StateActive, h.ctl.Lifecycle().State())
	})

	t.Run("activate before install is rejected", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.ctl.Handle(context.Background(), controller.ActivateEvent{})

		assert.ErrorIs(t, err, controller.ErrInvalidTransition)
	})
}

func TestFetch_BeforeActivationPassesThrough(t *testing.T) {
	h := newHarness(t)

	action, err := fetch(h, "/static/app.js", controller.ModeNoCORS)

	require.NoError(t, err)
	assert.Equal(t, controller.ActionPassThrough, action.Kind)
	h.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestFetch_Routing(t *testing.T) {
	t.Run("api requests pass through and are never cached", func(t *testing.T) {
		h := newHarness(t)
		h.activate(t)
		before := h.partitions(t)

		action, err := fetch(h, "/api/settings", controller.ModeCORS)

		require.NoError(t, err)
		assert.Equal(t, controller.ActionPassThrough, action.Kind)
		h.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, path("/api/settings"))
		assert.Equal(t, before, h.partitions(t))
	})

	t.Run("non-GET requests are never intercepted", func(t *testing.T) {
		h := newHarness(t)
		h.activate(t)
		staticBefore := h.keys(t, "hr-portal-static-v2")

		req := controller.NewGetRequest("/api/employees", controller.ModeCORS)
		req.Method = http.MethodPost
		action, err := h.ctl.Handle(context.Background(), controller.FetchEvent{Request: req})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionPassThrough, action.Kind)
		assert.Equal(t, controller.StrategyPassThrough, action.Strategy)
		h.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, path("/api/employees"))
		assert.Equal(t, staticBefore, h.keys(t, "hr-portal-static-v2"))
		assert.Empty(t, h.keys(t, "hr-portal-dynamic-v2"))
	})

	t.Run("branding uploads are written to the dynamic cache", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/uploads/branding/logo.png")).Return(response(200, "png"), nil).Once()
		h.activate(t)

		action, err := fetch(h, "/api/uploads/branding/logo.png", controller.ModeNoCORS)

		require.NoError(t, err)
		assert.Equal(t, controller.StrategyNetworkFirstWrite, action.Strategy)
		assert.Equal(t, controller.SourceNetwork, action.Source)
		assert.Equal(t, []string{"GET /api/uploads/branding/logo.png"}, h.keys(t, "hr-portal-dynamic-v2"))
		assert.NotContains(t, h.keys(t, "hr-portal-static-v2"), "GET /api/uploads/branding/logo.png")
	})

	t.Run("branding uploads fall back to the cache when offline", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/uploads/branding/logo.png")).Return(nil, errOffline)
		h.activate(t)
		h.seed(t, "hr-portal-dynamic-v2", "/api/uploads/branding/logo.png", "old-png")

		action, err := fetch(h, "/api/uploads/branding/logo.png", controller.ModeNoCORS)

		require.NoError(t, err)
		assert.Equal(t, controller.SourceCache, action.Source)
		assert.Equal(t, "old-png", string(action.Response.Body))
	})

	t.Run("branding error statuses are not written", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/uploads/branding/logo.png")).Return(response(500, "boom"), nil)
		h.activate(t)

		action, err := fetch(h, "/api/uploads/branding/logo.png", controller.ModeNoCORS)

		require.NoError(t, err)
		assert.Equal(t, 500, action.Response.StatusCode)
		assert.Empty(t, h.keys(t, "hr-portal-dynamic-v2"))
	})

	t.Run("manifest is always refetched and never written", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/manifest.json")).Return(response(200, "{}"), nil).Twice()
		h.activate(t)

		for i := 0; i < 2; i++ {
			action, err := fetch(h, "/manifest.json", controller.ModeNoCORS)
			require.NoError(t, err)
			assert.Equal(t, controller.StrategyNetworkFirst, action.Strategy)
			assert.Equal(t, controller.SourceNetwork, action.Source)
		}
		h.fetcher.AssertNumberOfCalls(t, "Fetch", 12)
		assert.NotContains(t, h.keys(t, "hr-portal-static-v2"), "GET /manifest.json")
	})

	t.Run("offline manifest uses any cached copy", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/manifest.json")).Return(nil, errOffline)
		h.activate(t)
		h.seed(t, "hr-portal-static-v2", "/manifest.json", `{"name":"HR"}`)

		action, err := fetch(h, "/manifest.json", controller.ModeNoCORS)

		require.NoError(t, err)
		assert.Equal(t, controller.SourceCache, action.Source)
	})

	t.Run("offline manifest without a copy propagates the network error", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/manifest.json")).Return(nil, errOffline)
		h.activate(t)

		_, err := fetch(h, "/manifest.json", controller.ModeNoCORS)

		assert.ErrorIs(t, err, controller.ErrNetwork)
		assert.ErrorIs(t, err, errOffline)
	})
}

func TestFetch_CacheFirst(t *testing.T) {
	t.Run("hit never touches the network", func(t *testing.T) {
		h := newHarness(t)
		h.activate(t)

		action, err := fetch(h, "/icons/icon-72x72.png", controller.ModeNoCORS)

		require.NoError(t, err)
		assert.Equal(t, controller.SourceCache, action.Source)
		assert.Equal(t, "icon", string(action.Response.Body))
		h.fetcher.AssertNumberOfCalls(t, "Fetch", 10)
	})

	t.Run("miss is fetched and written to the static cache", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/static/app.js")).Return(response(200, "js"), nil).Once()
		h.activate(t)

		first, err := fetch(h, "/static/app.js", controller.ModeNoCORS)
		require.NoError(t, err)
		second, err := fetch(h, "/static/app.js", controller.ModeNoCORS)
		require.NoError(t, err)

		assert.Equal(t, controller.SourceNetwork, first.Source)
		assert.Equal(t, controller.SourceCache, second.Source)
		assert.Equal(t, "js", string(second.Response.Body))
		assert.Equal(t, fixedNow, second.Response.StoredAt)
		assert.Contains(t, h.keys(t, "hr-portal-static-v2"), "GET /static/app.js")
	})

	t.Run("error statuses are returned but never written", func(t *testing.T) {
		for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
			h := newHarness(t)
			h.fetcher.On("Fetch", mock.Anything, path("/static/missing.js")).Return(response(status, "nope"), nil)
			h.activate(t)

			action, err := fetch(h, "/static/missing.js", controller.ModeNoCORS)

			require.NoError(t, err)
			assert.Equal(t, status, action.Response.StatusCode)
			assert.Equal(t, "nope", string(action.Response.Body))
			assert.NotContains(t, h.keys(t, "hr-portal-static-v2"), "GET /static/missing.js")
		}
	})

	t.Run("offline miss propagates the network error", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/static/app.js")).Return(nil, errOffline)
		h.activate(t)

		_, err := fetch(h, "/static/app.js", controller.ModeNoCORS)

		assert.ErrorIs(t, err, controller.ErrNetwork)
	})

	t.Run("returned response does not alias the cached copy", func(t *testing.T) {
		h := newHarness(t)
		h.activate(t)

		first, err := fetch(h, "/index.html", controller.ModeNoCORS)
		require.NoError(t, err)
		first.Response.Body[0] = 'X'

		second, err := fetch(h, "/index.html", controller.ModeNoCORS)
		require.NoError(t, err)
		assert.Equal(t, "shell", string(second.Response.Body))
	})
}

func TestFetch_Navigate(t *testing.T) {
	t.Run("online navigation is served from the network and not cached", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/dashboard")).Return(response(200, "page"), nil)
		h.activate(t)

		action, err := fetch(h, "/dashboard", controller.ModeNavigate)

		require.NoError(t, err)
		assert.Equal(t, controller.StrategyNavigate, action.Strategy)
		assert.Equal(t, controller.SourceNetwork, action.Source)
		assert.NotContains(t, h.keys(t, "hr-portal-static-v2"), "GET /dashboard")
	})

	t.Run("offline navigation serves the cached shell", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/dashboard")).Return(nil, errOffline)
		h.fetcher.On("Fetch", mock.Anything, path("/employees/42")).Return(nil, errOffline)
		h.activate(t)

		for _, target := range []string{"/dashboard", "/employees/42"} {
			action, err := fetch(h, target, controller.ModeNavigate)
			require.NoError(t, err)
			assert.Equal(t, controller.SourceShell, action.Source)
			assert.Equal(t, "shell", string(action.Response.Body))
		}
	})

	t.Run("offline first visit without a shell fails", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nil, errOffline)
		h.clients.On("Claim", mock.Anything).Return(nil)
		_, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})
		require.NoError(t, err)
		_, err = h.ctl.Handle(context.Background(), controller.ActivateEvent{})
		require.NoError(t, err)

		_, err = fetch(h, "/dashboard", controller.ModeNavigate)

		assert.ErrorIs(t, err, controller.ErrNetwork)
	})
}

func TestMessages(t *testing.T) {
	t.Run("clear cache removes every partition", func(t *testing.T) {
		h := newHarness(t)
		h.activate(t)
		for _, name := range []string{"hr-portal-v1", "something-else", "hr-portal-dynamic-v2"} {
			_, err := h.storage.Open(context.Background(), name)
			require.NoError(t, err)
		}
		require.NotEmpty(t, h.partitions(t))

		action, err := h.ctl.Handle(context.Background(), controller.MessageEvent{Type: controller.MessageClearCache})

		require.NoError(t, err)
		assert.Empty(t, h.partitions(t))
		assert.ElementsMatch(t, []string{"hr-portal-static-v2", "hr-portal-v1", "something-else", "hr-portal-dynamic-v2"}, action.Deleted)
	})

	t.Run("skip waiting activates a waiting version", func(t *testing.T) {
		h := newHarness(t)
		h.serveAssets()
		h.clients.On("Claim", mock.Anything).Return(nil).Once()
		_, err := h.ctl.Handle(context.Background(), controller.InstallEvent{})
		require.NoError(t, err)

		_, err = h.ctl.Handle(context.Background(), controller.MessageEvent{Type: controller.MessageSkipWaiting})

		require.NoError(t, err)
		assert.Equal(t, controller.StateActive, h.ctl.Lifecycle().State())
		h.clients.AssertExpectations(t)
	})

	t.Run("skip waiting on an active version is a no-op", func(t *testing.T) {
		h := newHarness(t)
		h.activate(t)

		action, err := h.ctl.Handle(context.Background(), controller.MessageEvent{Type: controller.MessageSkipWaiting})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionNone, action.Kind)
		h.clients.AssertNumberOfCalls(t, "Claim", 1)
	})

	t.Run("unknown messages are ignored", func(t *testing.T) {
		h := newHarness(t)

		action, err := h.ctl.Handle(context.Background(), controller.MessageEvent{Type: "PING"})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionNone, action.Kind)
	})
}

func TestPush(t *testing.T) {
	shown := func(h *harness) *model.NotificationPayload {
		var got model.NotificationPayload
		h.notifier.On("Show", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			got = args.Get(1).(model.NotificationPayload)
		}).Return(nil).Once()
		return &got
	}

	t.Run("no data shows the defaults", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/settings")).Return(nil, errOffline)
		got := shown(h)

		action, err := h.ctl.Handle(context.Background(), controller.PushEvent{})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionNotificationShown, action.Kind)
		assert.Equal(t, "HR Portal", got.Title)
		assert.Equal(t, "You have a new notification", got.Body)
		assert.Equal(t, "/icons/icon-192x192.png", got.Icon)
		assert.Equal(t, []int{100, 50, 100}, got.Vibrate)
		assert.Equal(t, "/", got.Data.URL)
		assert.Equal(t, fixedNow.UnixMilli(), got.Data.DateOfArrival)
		assert.Equal(t, "tag-1", got.Tag)
		require.Len(t, got.Actions, 2)
		assert.Equal(t, model.ActionView, got.Actions[0].Action)
		assert.Equal(t, model.ActionDismiss, got.Actions[1].Action)
	})

	t.Run("plain text becomes the body with default branding", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/settings")).Return(response(503, "down"), nil)
		got := shown(h)

		_, err := h.ctl.Handle(context.Background(), controller.PushEvent{Data: []byte("Payroll closes today"), HasData: true})

		require.NoError(t, err)
		assert.Equal(t, "Payroll closes today", got.Body)
		assert.Equal(t, "HR Portal", got.Title)
		assert.Equal(t, "/icons/icon-192x192.png", got.Icon)
	})

	t.Run("plain text keeps the tenant branding", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/settings")).
			Return(response(200, `{"app_name":"Acme People","logo_url":"/api/uploads/branding/acme.png"}`), nil)
		got := shown(h)

		_, err := h.ctl.Handle(context.Background(), controller.PushEvent{Data: []byte("Payroll closes today"), HasData: true})

		require.NoError(t, err)
		assert.Equal(t, "Payroll closes today", got.Body)
		assert.Equal(t, "Acme People", got.Title)
		assert.Equal(t, "/api/uploads/branding/acme.png", got.Icon)
		assert.Equal(t, "/api/uploads/branding/acme.png", got.Badge)
	})

	t.Run("json payload overrides branding", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/settings")).Return(response(200, `{"app_name":"Acme People"}`), nil)
		got := shown(h)

		_, err := h.ctl.Handle(context.Background(), controller.PushEvent{
			Data:    []byte(`{"title":"Leave approved","url":"/leave/7"}`),
			HasData: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "Leave approved", got.Title)
		assert.Equal(t, "/leave/7", got.Data.URL)
	})

	t.Run("malformed settings keep the defaults", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/settings")).Return(response(200, "<html>"), nil)
		got := shown(h)

		_, err := h.ctl.Handle(context.Background(), controller.PushEvent{})

		require.NoError(t, err)
		assert.Equal(t, "HR Portal", got.Title)
	})

	t.Run("notifier failure is reported", func(t *testing.T) {
		h := newHarness(t)
		h.fetcher.On("Fetch", mock.Anything, path("/api/settings")).Return(nil, errOffline)
		h.notifier.On("Show", mock.Anything, mock.Anything).Return(errors.New("no subscribers"))

		_, err := h.ctl.Handle(context.Background(), controller.PushEvent{})

		assert.Error(t, err)
	})
}

func TestNotificationClick(t *testing.T) {
	notification := model.NotificationPayload{Tag: "tag-1", Data: model.NotificationData{URL: "/leave/7"}}
	windows := controller.MatchOptions{IncludeUncontrolled: true, Type: controller.ClientTypeWindow}

	t.Run("view focuses a same-origin window", func(t *testing.T) {
		h := newHarness(t)
		h.notifier.On("Close", mock.Anything, "tag-1").Return(nil).Once()
		h.clients.On("MatchAll", mock.Anything, windows).Return([]controller.Client{
			{ID: "other", URL: "https://elsewhere.example.com/"},
			{ID: "w1", URL: "https://hr.example.com/dashboard"},
		}, nil)
		h.clients.On("Navigate", mock.Anything, "w1", "/leave/7").Return(nil).Once()
		h.clients.On("Focus", mock.Anything, "w1").Return(nil).Once()

		action, err := h.ctl.Handle(context.Background(), controller.NotificationClickEvent{Action: model.ActionView, Notification: notification})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionClientFocused, action.Kind)
		assert.Equal(t, "w1", action.ClientID)
		h.clients.AssertExpectations(t)
		h.notifier.AssertExpectations(t)
	})

	t.Run("body click without windows opens one", func(t *testing.T) {
		h := newHarness(t)
		h.notifier.On("Close", mock.Anything, "tag-1").Return(nil)
		h.clients.On("MatchAll", mock.Anything, windows).Return([]controller.Client{}, nil)
		h.clients.On("OpenWindow", mock.Anything, "/leave/7").Return("w9", nil).Once()

		action, err := h.ctl.Handle(context.Background(), controller.NotificationClickEvent{Notification: notification})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionWindowOpened, action.Kind)
		assert.Equal(t, "w9", action.ClientID)
	})

	t.Run("missing url opens the root", func(t *testing.T) {
		h := newHarness(t)
		h.notifier.On("Close", mock.Anything, "tag-2").Return(nil)
		h.clients.On("MatchAll", mock.Anything, windows).Return([]controller.Client{}, nil)
		h.clients.On("OpenWindow", mock.Anything, "/").Return("w1", nil).Once()

		_, err := h.ctl.Handle(context.Background(), controller.NotificationClickEvent{Notification: model.NotificationPayload{Tag: "tag-2"}})

		require.NoError(t, err)
		h.clients.AssertExpectations(t)
	})

	t.Run("dismiss only closes", func(t *testing.T) {
		h := newHarness(t)
		h.notifier.On("Close", mock.Anything, "tag-1").Return(nil).Once()

		action, err := h.ctl.Handle(context.Background(), controller.NotificationClickEvent{Action: model.ActionDismiss, Notification: notification})

		require.NoError(t, err)
		assert.Equal(t, controller.ActionNone, action.Kind)
		h.notifier.AssertExpectations(t)
		h.clients.AssertNotCalled(t, "MatchAll", mock.Anything, mock.Anything)
	})
}
