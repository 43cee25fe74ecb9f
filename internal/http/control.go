package http

import (
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/clients"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
)

// MaxPushPayloadBytes caps the body of POST /sw/push.
const MaxPushPayloadBytes = 64 << 10

// ControlHandler serves the /sw control plane: shell messages, push
// delivery, notification clicks, lifecycle steps and cache inspection.
type ControlHandler struct {
	ctl     *controller.Controller
	hub     *clients.Hub
	journal *middleware.JournalWriter
}

var _ RouteGroup = (*ControlHandler)(nil)

// NewControlHandler creates a control handler. journal may be nil.
func NewControlHandler(ctl *controller.Controller, hub *clients.Hub, journal *middleware.JournalWriter) *ControlHandler {
	return &ControlHandler{ctl: ctl, hub: hub, journal: journal}
}

// RegisterRoutes registers the control routes.
func (h *ControlHandler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("/status", h.Status)
	read.GET("/caches", h.Caches)
	read.GET("/notifications", h.Notifications)

	write.POST("/messages", h.Message)
	write.POST("/push", h.Push)
	write.POST("/notifications/:tag/click", h.NotificationClick)
	write.POST("/lifecycle/install", h.Install)
	write.POST("/lifecycle/activate", h.Activate)
}

// Message handles POST /sw/messages. Unknown types are accepted and ignored.
func (h *ControlHandler) Message(c *gin.Context) {
	req, ok := BindJSON[dto.MessageRequest](c)
	if !ok {
		return
	}

	h.dispatch(c, controller.MessageEvent{Type: req.Type}, i18n.SuccessKeyMessageHandled,
		map[string]interface{}{"type": req.Type})
}

// Push handles POST /sw/push. The raw body is the push payload; an empty
// body is a push without data.
func (h *ControlHandler) Push(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxPushPayloadBytes))
	if err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	h.dispatch(c, controller.PushEvent{Data: body, HasData: len(body) > 0}, "",
		map[string]interface{}{"bytes": len(body)})
}

// NotificationClick handles POST /sw/notifications/:tag/click. The body is
// optional; without one the click is on the notification itself.
func (h *ControlHandler) NotificationClick(c *gin.Context) {
	builder := NewResponseBuilder(c)
	tag := c.Param("tag")

	n, ok := h.hub.Notification(tag)
	if !ok {
		builder.Error(http.StatusNotFound, i18n.ErrKeyNotificationNotFound, nil)
		return
	}

	var req dto.NotificationClickRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			builder.ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err, fieldErrors(err))
			return
		}
	}

	h.dispatch(c, controller.NotificationClickEvent{Action: req.Action, Notification: n}, "",
		map[string]interface{}{"tag": tag, "action": req.Action})
}

// Install handles POST /sw/lifecycle/install.
func (h *ControlHandler) Install(c *gin.Context) {
	h.dispatch(c, controller.InstallEvent{}, i18n.SuccessKeyInstalled, nil)
}

// Activate handles POST /sw/lifecycle/activate.
func (h *ControlHandler) Activate(c *gin.Context) {
	h.dispatch(c, controller.ActivateEvent{}, i18n.SuccessKeyActivated, nil)
}

// Notifications handles GET /sw/notifications.
func (h *ControlHandler) Notifications(c *gin.Context) {
	NewResponseBuilder(c).SuccessOK(h.hub.Notifications())
}

// Status handles GET /sw/status.
func (h *ControlHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	partitions, err := h.ctl.Storage().Keys(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	windows, err := h.hub.MatchAll(ctx, controller.MatchOptions{IncludeUncontrolled: true, Type: controller.ClientTypeAll})
	if err != nil {
		_ = c.Error(err)
		return
	}

	lifecycle := h.ctl.Lifecycle()
	NewResponseBuilder(c).SuccessOK(dto.StatusResponse{
		Version:       lifecycle.Version(),
		State:         lifecycle.State().String(),
		Controlling:   lifecycle.Controlling(),
		CurrentCaches: h.ctl.Config().CurrentCaches(),
		Partitions:    partitions,
		Clients:       len(windows),
		Notifications: len(h.hub.Notifications()),
	})
}

// Caches handles GET /sw/caches. With ?keys=true every entry key is listed.
func (h *ControlHandler) Caches(c *gin.Context) {
	ctx := c.Request.Context()
	storage := h.ctl.Storage()
	withKeys := c.Query("keys") == "true"
	current := h.ctl.Config().CurrentCaches()

	names, err := storage.Keys(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	summaries := make([]dto.CacheSummary, 0, len(names))
	for _, name := range names {
		cache, err := storage.Open(ctx, name)
		if err != nil {
			_ = c.Error(err)
			return
		}
		keys, err := cache.Keys(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		summary := dto.CacheSummary{
			Name:    name,
			Current: slices.Contains(current, name),
			Entries: len(keys),
		}
		if withKeys {
			summary.Keys = keys
		}
		summaries = append(summaries, summary)
	}

	NewResponseBuilder(c).SuccessOK(summaries)
}

// dispatch hands ev to the controller, journals the outcome and answers with
// the resulting action.
func (h *ControlHandler) dispatch(c *gin.Context, ev controller.Event, messageKey string, fields map[string]interface{}) {
	event := string(ev.Kind())
	action, err := h.ctl.Handle(c.Request.Context(), ev)
	if err != nil {
		middleware.AuditLogError(h.journal, c, event, "Control event failed", err, fields)
		_ = c.Error(err)
		return
	}

	middleware.AuditLog(h.journal, c, event, "Control event handled", fields)
	NewResponseBuilder(c).Success(http.StatusOK, dto.NewActionResponse(action, h.ctl.Lifecycle().State()), messageKey)
}
