package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/logger"
	"go-placement-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Name labels the limiter in metrics and logs
	Name string
	// Requests per window when Redis is available
	Limit  int
	Window time.Duration
	// Token bucket used when Redis is unavailable
	FallbackRPS   float64
	FallbackBurst int
	// Key prefix for Redis (default: "rl:ip:")
	KeyPrefix string
	// Custom key extractor (default: IP)
	KeyFunc func(*gin.Context) string
	// Whether to fail closed (reject) when Redis errors
	FailClosed bool
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// KeyByIP keys anonymous traffic; it is used before authentication runs.
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// KeyByUser keys by the authenticated user. It must run after
// AuthMiddleware and falls back to the IP otherwise.
func KeyByUser(c *gin.Context) string {
	if userID := c.GetString(string(domain.KeyUserID)); userID != "" {
		return "user:" + userID
	}
	return KeyByIP(c)
}

// DefaultRateLimitConfig returns the API-wide per-IP limits.
func DefaultRateLimitConfig(perWindow int, window time.Duration, rps float64, burst int) RateLimitConfig {
	return RateLimitConfig{
		Name:          "api",
		Limit:         perWindow,
		Window:        window,
		FallbackRPS:   rps,
		FallbackBurst: burst,
		KeyPrefix:     "rl:api:",
		KeyFunc:       KeyByIP,
		FailClosed:    false, // Fail open by default for availability
	}
}

// UserRateLimitConfig returns per-user limits for authenticated routes.
func UserRateLimitConfig(perWindow int, window time.Duration, rps float64, burst int) RateLimitConfig {
	cfg := DefaultRateLimitConfig(perWindow, window, rps, burst)
	cfg.Name = "user"
	cfg.KeyPrefix = "rl:user:"
	cfg.KeyFunc = KeyByUser
	return cfg
}

// visitor holds a single token bucket and the last time it was used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter is the per-key token bucket used without Redis. Idle buckets
// are evicted opportunistically.
type localLimiter struct {
	rps      rate.Limit
	burst    int
	ttl      time.Duration
	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

func newLocalLimiter(rps float64, burst int) *localLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &localLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

func (l *localLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	l.lookups++
	if l.lookups >= 5000 {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.ttl {
				delete(l.visitors, k)
			}
		}
		l.lookups = 0
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	lim := v.limiter
	l.mu.Unlock()

	return lim.AllowN(now, 1)
}

// RateLimitMiddleware uses a shared Redis window counter when Redis is
// connected and a process-local token bucket otherwise.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = KeyByIP
	}
	local := newLocalLimiter(config.FallbackRPS, config.FallbackBurst)

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		if client := redis.Client(); client != nil {
			count, resetAt, err := checkRateLimitRedis(c.Request.Context(), client, config.KeyPrefix+key, config)
			if err == nil {
				if !applyWindowResult(c, config, count, resetAt) {
					return
				}
				c.Next()
				return
			}
			logger.Log.Warn("Redis rate limit failed", "limiter", config.Name, "error", err)
			if config.FailClosed {
				response.Abort(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
				return
			}
		}

		if !local.allow(key, time.Now()) {
			reject(c, config.Name, 1)
			return
		}
		c.Next()
	}
}

// applyWindowResult sets the X-RateLimit headers and rejects when over the
// limit. It reports whether the request may proceed.
func applyWindowResult(c *gin.Context, config RateLimitConfig, count int, resetAt time.Time) bool {
	remaining := config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

	if count <= config.Limit {
		return true
	}
	retryAfter := int(time.Until(resetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	reject(c, config.Name, retryAfter)
	return false
}

func reject(c *gin.Context, limiter string, retryAfter int) {
	rateLimited.WithLabelValues(limiter).Inc()
	logger.Log.Warn("Rate limit exceeded",
		"limiter", limiter,
		"ip", c.ClientIP(),
		"route", c.FullPath(),
		"request_id", c.GetString(RequestIDKey),
	)
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	response.Abort(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// checkRateLimitRedis checks rate limit using Redis with atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	// Parse result [count, ttl]
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}
