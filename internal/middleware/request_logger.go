package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/logger"
)

// Context keys the proxy handler sets so the request log records how a
// response was produced.
const (
	CacheStrategyKey = "cache_strategy"
	CacheSourceKey   = "cache_source"
)

// SetCacheOutcome records the strategy and source that answered the request.
func SetCacheOutcome(c *gin.Context, strategy, source string) {
	c.Set(CacheStrategyKey, strategy)
	c.Set(CacheSourceKey, source)
}

// RequestLogger returns a middleware that logs HTTP request details in JSON format.
// It logs: request ID, method, path, status code, latency, IP, user agent,
// and the cache strategy and source when the proxy handled the request.
// Entries are also journaled when writer is non-nil.
func RequestLogger(writer *JournalWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		requestID := GetRequestID(c)
		strategy := c.GetString(CacheStrategyKey)
		source := c.GetString(CacheSourceKey)

		log := logger.Logger().With().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", statusCode).
			Int64("duration_ms", latency.Milliseconds()).
			Str("ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Logger()
		if strategy != "" {
			log = log.With().Str("strategy", strategy).Str("source", source).Logger()
		}

		switch {
		case statusCode >= 500:
			log.Error().Msg("HTTP request")
		case statusCode >= 400:
			log.Warn().Msg("HTTP request")
		default:
			log.Info().Msg("HTTP request")
		}

		if writer == nil {
			return
		}
		entry := &model.JournalEntry{
			Timestamp:  time.Now(),
			Kind:       model.JournalKindRequest,
			Level:      getLogLevel(statusCode),
			Message:    "HTTP request",
			RequestID:  requestID,
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: statusCode,
			Duration:   latency.Milliseconds(),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Strategy:   strategy,
			Source:     source,
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.Last().Error()
		}
		if claims := GetClaims(c); claims != nil {
			entry.WithField("subject", claims.Subject)
		}
		writer.Log(entry)
	}
}

// getLogLevel returns the log level based on HTTP status code.
func getLogLevel(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "error"
	case statusCode >= 400:
		return "warn"
	default:
		return "info"
	}
}
