package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
)

// RequireScope returns a middleware that checks the authenticated caller has scope.
// This middleware must be used after APIKeyAuth, JWTAuth or ControlPlaneAuth.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortUnauthorized(c, i18n.ErrKeyUnauthorized)
			return
		}
		if !claims.HasScope(scope) {
			message := i18n.GetTranslator().Translate(i18n.ErrKeyForbidden, i18n.GetLocale(c))
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewError(dto.ErrCodeForbidden, message).WithRequestID(GetRequestID(c)))
			return
		}
		c.Next()
	}
}
