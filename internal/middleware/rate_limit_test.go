package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestLimiter(t *testing.T, rate int, period time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(rate, period)
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func limitedRouter(rl *RateLimiter, subject string) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if subject != "" {
			c.Set(ClaimsKey, &dto.Claims{Subject: subject, Scopes: []string{dto.ScopeControl}})
		}
		c.Next()
	})
	router.Use(rl.Limit())
	router.GET("/sw/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func call(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/sw/status", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Limit(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, time.Minute)
	router := limitedRouter(rl, "")
	resetAt := clock.Now().Add(time.Minute).Unix()

	tests := []struct {
		name          string
		wantCode      int
		wantRemaining string
	}{
		{name: "first call", wantCode: http.StatusOK, wantRemaining: "1"},
		{name: "last call in window", wantCode: http.StatusOK, wantRemaining: "0"},
		{name: "over the limit", wantCode: http.StatusTooManyRequests, wantRemaining: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(router, "10.0.0.1:1234")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "2", w.Header().Get(RateLimitLimitHeader))
			assert.Equal(t, tt.wantRemaining, w.Header().Get(RateLimitRemainingHeader))
			assert.Equal(t, strconv.FormatInt(resetAt, 10), w.Header().Get(RateLimitResetHeader))
		})
	}

	t.Run("rejection carries retry-after and the error body", func(t *testing.T) {
		clock.Advance(45 * time.Second)
		w := call(router, "10.0.0.1:1234")

		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "15", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), dto.ErrCodeRateLimit)
	})

	t.Run("other addresses have their own window", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, call(router, "10.0.0.2:1234").Code)
	})

	t.Run("window resets after the period", func(t *testing.T) {
		clock.Advance(15 * time.Second)
		w := call(router, "10.0.0.1:1234")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get(RateLimitRemainingHeader))
	})
}

func TestRateLimiter_SubjectsShareAcrossAddresses(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	router := limitedRouter(rl, "portal-backend")

	assert.Equal(t, http.StatusOK, call(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(router, "10.0.0.2:1234").Code)
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name   string
		claims *dto.Claims
		want   string
	}{
		{name: "token subject", claims: &dto.Claims{Subject: "portal-backend"}, want: "subject:portal-backend"},
		{name: "empty subject falls back to ip", claims: &dto.Claims{}, want: "ip:192.0.2.7"},
		{name: "anonymous", want: "ip:192.0.2.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/sw/status", nil)
			c.Request.RemoteAddr = "192.0.2.7:5000"
			if tt.claims != nil {
				c.Set(ClaimsKey, tt.claims)
			}

			assert.Equal(t, tt.want, Identity(c))
		})
	}
}

func TestRateLimiter_ForgetIdle(t *testing.T) {
	rl, clock := newTestLimiter(t, 5, time.Minute)
	router := limitedRouter(rl, "")

	call(router, "10.0.0.1:1234")
	clock.Advance(90 * time.Second)
	call(router, "10.0.0.2:1234")
	require.Equal(t, 2, rl.tracked())

	clock.Advance(31 * time.Second)
	rl.forgetIdle()

	assert.Equal(t, 1, rl.tracked())
}

func TestRateLimiter_ConcurrentCallsNeverExceedRate(t *testing.T) {
	rl, _ := newTestLimiter(t, 50, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.take("subject:portal-backend"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
