package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
	"github.com/guttosm/hr-portal-edge/internal/service"
)

const (
	// APIKeyHeader is the HTTP header name for API key authentication.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery is the query parameter name for API key authentication.
	APIKeyQuery = "api_key"
	// APIKeySubject is the subject recorded for API key callers.
	APIKeySubject = "api-key"
)

// APIKeyAuth returns a middleware that validates API keys.
// It checks the X-API-Key header first, then falls back to api_key query parameter.
// If validKeys is nil or empty, authentication is disabled.
// A valid key grants the control scope.
func APIKeyAuth(validKeys map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(validKeys) == 0 {
			c.Next()
			return
		}

		key := apiKeyFrom(c)
		if key == "" {
			abortUnauthorized(c, i18n.ErrKeyAPIKeyRequired)
			return
		}
		if !knownKey(validKeys, key) {
			abortUnauthorized(c, i18n.ErrKeyInvalidAPIKey)
			return
		}

		c.Set(ClaimsKey, &dto.Claims{Subject: APIKeySubject, Scopes: []string{dto.ScopeControl}})
		c.Next()
	}
}

// ControlPlaneAuth accepts either an API key or a bearer token. A request
// carrying an API key is checked as one; otherwise a bearer token is
// required. With tokens nil only API keys are accepted.
func ControlPlaneAuth(validKeys map[string]bool, tokens service.TokenService) gin.HandlerFunc {
	apiKey := APIKeyAuth(validKeys)
	if tokens == nil {
		return apiKey
	}
	bearer := JWTAuth(tokens)
	return func(c *gin.Context) {
		if len(validKeys) > 0 && (apiKeyFrom(c) != "" || c.GetHeader("Authorization") == "") {
			apiKey(c)
			return
		}
		bearer(c)
	}
}

// knownKey compares against every configured key in constant time so the
// response time does not depend on how much of a key matched.
func knownKey(validKeys map[string]bool, key string) bool {
	found := 0
	for k, enabled := range validKeys {
		if enabled {
			found |= subtle.ConstantTimeCompare([]byte(k), []byte(key))
		}
	}
	return found == 1
}

func apiKeyFrom(c *gin.Context) string {
	if key := c.GetHeader(APIKeyHeader); key != "" {
		return key
	}
	return c.Query(APIKeyQuery)
}
