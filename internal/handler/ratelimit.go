package handler

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/metrics"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// A per-key bucket is kept at least limiterIdleTTL after its last request,
// longer if it needs more time to refill, but never past maxLimiterIdle.
const (
	limiterIdleTTL = 10 * time.Minute
	maxLimiterIdle = 24 * time.Hour
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// memoryLimiter holds one token bucket per key and drops buckets that have
// been idle long enough to be full again.
type memoryLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	entries   map[string]*limiterEntry
}

func newMemoryLimiter(rps float64, burst int, now func() time.Time) *memoryLimiter {
	idle := limiterIdleTTL
	if rps > 0 {
		refill := math.Min(float64(burst)/rps, maxLimiterIdle.Seconds())
		if d := time.Duration(refill * float64(time.Second)); d > idle {
			idle = d
		}
	}
	return &memoryLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		idle:      idle,
		now:       now,
		lastSweep: now(),
		entries:   make(map[string]*limiterEntry),
	}
}

func (m *memoryLimiter) allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= m.idle {
		m.sweep(now)
	}

	entry, ok := m.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (m *memoryLimiter) sweep(now time.Time) {
	for key, entry := range m.entries {
		if now.Sub(entry.lastSeen) >= m.idle {
			delete(m.entries, key)
		}
	}
	m.lastSweep = now
}

func (m *memoryLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RateLimitMiddleware enforces an in-memory token bucket per client.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return rateLimitWith(newMemoryLimiter(rps, burst, time.Now))
}

func rateLimitWith(limiter *memoryLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(rateLimitKey(c)) {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{Message: "rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

// RedisRateLimitMiddleware is a fixed-window limiter shared by every
// instance using the same Redis. It admits rps*window+burst requests per
// window. When Redis is unreachable requests are let through.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration, log zerolog.Logger) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int(rps*float64(windowSeconds)) + burst

	return func(c *gin.Context) {
		bucket := time.Now().Unix() / int64(windowSeconds)
		redisKey := fmt.Sprintf("rl:%s:%d", rateLimitKey(c), bucket)
		ctx := c.Request.Context()

		cnt, err := client.Incr(ctx, redisKey).Result()
		if err != nil {
			log.Warn().Err(err).Msg("rate limit check failed")
			c.Next()
			return
		}
		if cnt == 1 {
			_ = client.Expire(ctx, redisKey, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if int(cnt) > allowedPerWindow {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSeconds))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{Message: "rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	if employee := GetPrincipal(c); employee != nil {
		return "employee:" + employee.ID
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
