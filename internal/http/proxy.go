package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
)

// Response headers describing how the edge answered.
const (
	CacheStrategyHeader = "X-Cache-Strategy"
	CacheSourceHeader   = "X-Cache-Source"
)

// EventHandler dispatches controller events.
type EventHandler interface {
	Handle(ctx context.Context, ev controller.Event) (controller.Action, error)
}

// ProxyHandler turns every request outside the control plane into a fetch
// event and answers it from the controller's decision.
type ProxyHandler struct {
	events      EventHandler
	passThrough http.Handler
}

// NewProxyHandler creates a proxy handler. passThrough serves requests the
// controller does not intercept, normally the upstream reverse proxy.
func NewProxyHandler(events EventHandler, passThrough http.Handler) *ProxyHandler {
	return &ProxyHandler{events: events, passThrough: passThrough}
}

// Serve handles one intercepted request.
func (h *ProxyHandler) Serve(c *gin.Context) {
	req := controller.Request{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Mode:     controller.DetectMode(c.Request.Method, c.Request.Header),
		Header:   c.Request.Header,
	}

	action, err := h.events.Handle(c.Request.Context(), controller.FetchEvent{Request: req})
	if err != nil {
		middleware.SetCacheOutcome(c, string(action.Strategy), "error")
		_ = c.Error(err)
		return
	}

	switch action.Kind {
	case controller.ActionRespond:
		middleware.SetCacheOutcome(c, string(action.Strategy), string(action.Source))
		h.respond(c, action)
	default:
		middleware.SetCacheOutcome(c, string(controller.StrategyPassThrough), "upstream")
		h.passThrough.ServeHTTP(c.Writer, c.Request)
	}
}

func (h *ProxyHandler) respond(c *gin.Context, action controller.Action) {
	resp := action.Response
	header := c.Writer.Header()
	for name, values := range resp.Header {
		header[name] = append([]string(nil), values...)
	}
	header.Set(CacheStrategyHeader, string(action.Strategy))
	header.Set(CacheSourceHeader, string(action.Source))

	c.Status(resp.StatusCode)
	_, _ = c.Writer.Write(resp.Body)
}
