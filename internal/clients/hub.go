// Package clients tracks the browser windows attached to the edge and the
// notifications currently displayed to them. Windows attach over
// Server-Sent Events and receive navigation, focus and notification events.
package clients

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrClientNotFound is returned for an id that is not attached.
var ErrClientNotFound = errors.New("client not found")

// Event names sent to attached windows.
const (
	EventHello              = "hello"
	EventNavigate           = "navigate"
	EventFocus              = "focus"
	EventOpenWindow         = "open_window"
	EventControllerChange   = "controllerchange"
	EventNotification       = "notification"
	EventNotificationClosed = "notification_closed"
)

const defaultBufferSize = 32

// Event is one Server-Sent Event.
type Event struct {
	Name string
	Data interface{}
}

// Subscription is an attached window. Events is closed on Detach.
type Subscription struct {
	ID     string
	Events <-chan Event
}

type window struct {
	info   controller.Client
	events chan Event
}

var (
	_ controller.Clients  = (*Hub)(nil)
	_ controller.Notifier = (*Hub)(nil)
)

// Hub implements controller.Clients and controller.Notifier.
type Hub struct {
	mu      sync.RWMutex
	windows map[string]*window
	order   []string
	// pending holds open_window requests made while no window was attached.
	pending []Event

	notifications map[string]model.NotificationPayload
	shown         []string

	bufferSize int
	newID      func() string
}

// Option customises a Hub.
type Option func(*Hub)

// WithBufferSize sets the per-window event buffer. Events that do not fit are dropped.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithIDGenerator replaces uuid.NewString for client and window ids.
func WithIDGenerator(fn func() string) Option {
	return func(h *Hub) { h.newID = fn }
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		windows:       make(map[string]*window),
		notifications: make(map[string]model.NotificationPayload),
		bufferSize:    defaultBufferSize,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach registers a window currently showing url. Pending open_window
// requests are delivered to the first window that attaches.
func (h *Hub) Attach(url string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := &window{
		info: controller.Client{
			ID:   h.newID(),
			URL:  url,
			Type: controller.ClientTypeWindow,
		},
		events: make(chan Event, h.bufferSize),
	}
	h.windows[w.info.ID] = w
	h.order = append(h.order, w.info.ID)

	h.send(w, Event{Name: EventHello, Data: w.info})
	for _, ev := range h.pending {
		h.send(w, ev)
	}
	h.pending = nil

	metrics.SetConnectedClients(len(h.windows))
	log.Debug().Str("client_id", w.info.ID).Str("url", url).Msg("Client attached")
	return &Subscription{ID: w.info.ID, Events: w.events}
}

// Detach removes a window and closes its event channel.
func (h *Hub) Detach(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[id]
	if !ok {
		return
	}
	delete(h.windows, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	close(w.events)

	metrics.SetConnectedClients(len(h.windows))
	log.Debug().Str("client_id", id).Msg("Client detached")
}

// UpdateState records a window's current url and focus as reported by the page.
// An empty url keeps the previous one.
func (h *Hub) UpdateState(id, url string, focused bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[id]
	if !ok {
		return ErrClientNotFound
	}
	if url != "" {
		w.info.URL = url
	}
	if focused {
		h.focusLocked(id)
	} else {
		w.info.Focused = false
	}
	return nil
}

// Client returns a snapshot of one window.
func (h *Hub) Client(id string) (controller.Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	w, ok := h.windows[id]
	if !ok {
		return controller.Client{}, false
	}
	return w.info, true
}

// MatchAll lists attached windows in attach order. Every attached client is a
// window, so ClientTypeWindow and ClientTypeAll match the same set.
func (h *Hub) MatchAll(_ context.Context, opts controller.MatchOptions) ([]controller.Client, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]controller.Client, 0, len(h.order))
	for _, id := range h.order {
		w := h.windows[id]
		if !opts.IncludeUncontrolled && !w.info.Controlled {
			continue
		}
		out = append(out, w.info)
	}
	return out, nil
}

// Navigate points a window at url.
func (h *Hub) Navigate(_ context.Context, id, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[id]
	if !ok {
		return ErrClientNotFound
	}
	w.info.URL = url
	h.send(w, Event{Name: EventNavigate, Data: map[string]string{"url": url}})
	return nil
}

// Focus brings a window to the foreground.
func (h *Hub) Focus(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[id]
	if !ok {
		return ErrClientNotFound
	}
	h.focusLocked(id)
	h.send(w, Event{Name: EventFocus, Data: map[string]string{"id": id}})
	return nil
}

// OpenWindow asks the attached windows to open url and returns the id of the
// requested window. With no window attached the request waits for the next Attach.
func (h *Hub) OpenWindow(_ context.Context, url string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.newID()
	ev := Event{Name: EventOpenWindow, Data: map[string]string{"id": id, "url": url}}
	if len(h.windows) == 0 {
		h.queueLocked(ev)
		return id, nil
	}
	h.broadcast(ev)
	return id, nil
}

// queueLocked holds ev for the next Attach. The queue keeps the newest
// requests that fit in a window's buffer behind its hello event.
func (h *Hub) queueLocked(ev Event) {
	limit := h.bufferSize - 1
	if limit < 1 {
		limit = 1
	}
	if len(h.pending) >= limit {
		dropped := len(h.pending) - limit + 1
		log.Warn().Int("dropped", dropped).Msg("No client attached, dropping oldest open_window requests")
		h.pending = append(h.pending[:0], h.pending[dropped:]...)
	}
	h.pending = append(h.pending, ev)
}

// Claim marks every attached window as controlled.
func (h *Hub) Claim(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, w := range h.windows {
		w.info.Controlled = true
	}
	h.broadcast(Event{Name: EventControllerChange})
	return nil
}

// Show records the notification under its tag, replacing any with the same
// tag, and broadcasts it.
func (h *Hub) Show(_ context.Context, n model.NotificationPayload) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.notifications[n.Tag]; !exists {
		h.shown = append(h.shown, n.Tag)
	}
	h.notifications[n.Tag] = n
	h.broadcast(Event{Name: EventNotification, Data: n})
	return nil
}

// Close removes a displayed notification. Unknown tags are ignored.
func (h *Hub) Close(_ context.Context, tag string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.notifications[tag]; !ok {
		return nil
	}
	delete(h.notifications, tag)
	for i, v := range h.shown {
		if v == tag {
			h.shown = append(h.shown[:i], h.shown[i+1:]...)
			break
		}
	}
	h.broadcast(Event{Name: EventNotificationClosed, Data: map[string]string{"tag": tag}})
	return nil
}

// Notification returns a displayed notification by tag.
func (h *Hub) Notification(tag string) (model.NotificationPayload, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.notifications[tag]
	return n, ok
}

// Notifications lists displayed notifications, oldest first.
func (h *Hub) Notifications() []model.NotificationPayload {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]model.NotificationPayload, 0, len(h.shown))
	for _, tag := range h.shown {
		out = append(out, h.notifications[tag])
	}
	return out
}

func (h *Hub) focusLocked(id string) {
	for wid, w := range h.windows {
		w.info.Focused = wid == id
	}
}

func (h *Hub) broadcast(ev Event) {
	for _, id := range h.order {
		h.send(h.windows[id], ev)
	}
}

// send never blocks; a window that stopped reading loses events.
func (h *Hub) send(w *window, ev Event) {
	select {
	case w.events <- ev:
	default:
		log.Warn().Str("client_id", w.info.ID).Str("event", ev.Name).Msg("Client event buffer full, dropping event")
	}
}
