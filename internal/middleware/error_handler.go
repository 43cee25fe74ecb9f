package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/circuitbreaker"
	"github.com/guttosm/hr-portal-edge/internal/clients"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
	"github.com/guttosm/hr-portal-edge/internal/logger"
)

// errorMapping translates a sentinel error into a response.
type errorMapping struct {
	target error
	status int
	key    string
}

var errorMappings = []errorMapping{
	{target: controller.ErrNetwork, status: http.StatusBadGateway, key: i18n.ErrKeyUpstreamUnavailable},
	{target: controller.ErrInvalidTransition, status: http.StatusConflict, key: i18n.ErrKeyInvalidTransition},
	{target: clients.ErrClientNotFound, status: http.StatusNotFound, key: i18n.ErrKeyClientNotFound},
	{target: circuitbreaker.ErrCircuitOpen, status: http.StatusServiceUnavailable, key: i18n.ErrKeyInternalError},
	{target: context.DeadlineExceeded, status: http.StatusGatewayTimeout, key: i18n.ErrKeyTimeout},
}

// ErrorHandler returns a middleware that turns errors attached with c.Error
// into a translated JSON error. Known sentinels map to their own status;
// anything else is a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		requestID := GetRequestID(c)
		status, key := classifyError(err)
		written := c.Writer.Written()
		if written {
			// the handler already answered; log what the client actually got
			status = c.Writer.Status()
		}

		log := logger.Logger()
		event := log.Warn()
		if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
			event = log.Error()
		}
		event.
			Str("request_id", requestID).
			Err(err).
			Int("status_code", status).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request error")

		if !written {
			message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
			c.JSON(status, dto.NewError(dto.ErrCodeFromStatus(status), message).WithRequestID(requestID))
		}
	}
}

func classifyError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.key
		}
	}
	return http.StatusInternalServerError, i18n.ErrKeyInternalError
}
