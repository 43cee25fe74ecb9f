package http

import (
	"github.com/gin-gonic/gin"
)

// RouteGroup registers a set of control plane routes. Handlers put
// inspection routes on read and state-changing routes on write; the two
// groups differ only in the scope they require.
type RouteGroup interface {
	RegisterRoutes(read, write *gin.RouterGroup)
}
