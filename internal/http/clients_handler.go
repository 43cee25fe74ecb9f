package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/clients"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
)

// DefaultHeartbeat keeps idle event streams open through proxies.
const DefaultHeartbeat = 25 * time.Second

// ClientsHandler attaches browser windows over Server-Sent Events and
// accepts their state reports.
type ClientsHandler struct {
	hub       *clients.Hub
	heartbeat time.Duration
}

var _ RouteGroup = (*ClientsHandler)(nil)

// NewClientsHandler creates a clients handler. A non-positive heartbeat uses DefaultHeartbeat.
func NewClientsHandler(hub *clients.Hub, heartbeat time.Duration) *ClientsHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &ClientsHandler{hub: hub, heartbeat: heartbeat}
}

// RegisterRoutes registers the client routes. Windows only need read access.
func (h *ClientsHandler) RegisterRoutes(read, _ *gin.RouterGroup) {
	read.GET("/clients", h.List)
	read.GET("/clients/events", h.Events)
	read.POST("/clients/:id/state", h.UpdateState)
}

// List handles GET /sw/clients.
func (h *ClientsHandler) List(c *gin.Context) {
	windows, err := h.hub.MatchAll(c.Request.Context(), controller.MatchOptions{IncludeUncontrolled: true, Type: controller.ClientTypeAll})
	if err != nil {
		_ = c.Error(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(windows)
}

// Events handles GET /sw/clients/events?url=<page>. The window stays
// attached until the client disconnects.
func (h *ClientsHandler) Events(c *gin.Context) {
	sub := h.hub.Attach(c.Query("url"))
	defer h.hub.Detach(sub.ID)

	// the stream outlives the server's write timeout
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	done := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-ticker.C:
			_, err := fmt.Fprint(w, ": ping\n\n")
			return err == nil
		case <-done:
			return false
		}
	})
}

// UpdateState handles POST /sw/clients/:id/state.
func (h *ClientsHandler) UpdateState(c *gin.Context) {
	req, ok := BindJSON[dto.ClientStateRequest](c)
	if !ok {
		return
	}
	if err := h.hub.UpdateState(c.Param("id"), req.URL, req.Focused); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
