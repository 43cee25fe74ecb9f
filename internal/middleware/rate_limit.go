package middleware

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
)

const numShards = 16

// Rate limit response headers.
const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
)

// window is one identity's fixed window.
type window struct {
	used    int
	resetAt time.Time
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// RateLimiter is a fixed-window limiter for the control plane. Identities are
// spread over shards by FNV hash so concurrent callers rarely share a lock.
type RateLimiter struct {
	shards [numShards]*shard
	rate   int
	period time.Duration
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

// NewRateLimiter allows rate calls per identity in every period and starts
// the goroutine that forgets idle identities. Call Stop to release it.
func NewRateLimiter(rate int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		rate:   rate,
		period: period,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for i := range rl.shards {
		rl.shards[i] = &shard{windows: make(map[string]*window)}
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) shardFor(identity string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return rl.shards[h.Sum32()%numShards]
}

// take spends one call from identity's window.
func (rl *RateLimiter) take(identity string) (allowed bool, remaining int, resetAt time.Time) {
	s := rl.shardFor(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := rl.now()
	w, ok := s.windows[identity]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(rl.period)}
		s.windows[identity] = w
	}
	if w.used >= rl.rate {
		return false, 0, w.resetAt
	}
	w.used++
	return true, rl.rate - w.used, w.resetAt
}

// Limit returns a middleware that limits calls per token subject, or per
// client IP for callers without claims.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Identity(c)
		allowed, remaining, resetAt := rl.take(identity)

		c.Header(RateLimitLimitHeader, strconv.Itoa(rl.rate))
		c.Header(RateLimitRemainingHeader, strconv.Itoa(remaining))
		c.Header(RateLimitResetHeader, strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retry := int(resetAt.Sub(rl.now()).Round(time.Second).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			metrics.RecordRateLimited(identity[:strings.IndexByte(identity, ':')])

			errorResp := dto.NewError(dto.ErrCodeRateLimit, i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, i18n.GetLocale(c))).
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResp)
			return
		}
		c.Next()
	}
}

// Identity is "subject:<sub>" for authenticated callers and "ip:<addr>" otherwise.
func Identity(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil && claims.Subject != "" {
		return "subject:" + claims.Subject
	}
	return "ip:" + c.ClientIP()
}

// sweep forgets windows that ended more than one period ago.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.forgetIdle()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) forgetIdle() {
	cutoff := rl.now().Add(-rl.period)
	for _, s := range rl.shards {
		s.mu.Lock()
		for id, w := range s.windows {
			if w.resetAt.Before(cutoff) {
				delete(s.windows, id)
			}
		}
		s.mu.Unlock()
	}
}

// tracked reports how many identities currently hold a window.
func (rl *RateLimiter) tracked() int {
	n := 0
	for _, s := range rl.shards {
		s.mu.Lock()
		n += len(s.windows)
		s.mu.Unlock()
	}
	return n
}

// Stop ends the sweep goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}
