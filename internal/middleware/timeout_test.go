package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTimeoutConfig(t *testing.T) {
	cfg := DefaultTimeoutConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.SkipPaths)
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "fast request completes", path: "/fast", wantStatus: http.StatusOK},
		{name: "slow request times out", path: "/slow", wantStatus: http.StatusGatewayTimeout, wantBody: "timeout"},
		{name: "skipped stream has no deadline", path: "/stream", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Timeout(TimeoutConfig{Timeout: 20 * time.Millisecond, SkipPaths: []string{"/stream"}}))
			router.GET("/fast", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			router.GET("/slow", func(c *gin.Context) {
				<-c.Request.Context().Done()
			})
			router.GET("/stream", func(c *gin.Context) {
				_, hasDeadline := c.Request.Context().Deadline()
				assert.False(t, hasDeadline)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestTimeoutWithDuration_SetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TimeoutWithDuration(time.Minute))

	var deadline time.Time
	router.GET("/test", func(c *gin.Context) {
		deadline, _ = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	before := time.Now()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.WithinDuration(t, before.Add(time.Minute), deadline, 5*time.Second)
}
