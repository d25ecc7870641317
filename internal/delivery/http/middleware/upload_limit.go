package middleware

import (
	"context"
	"fmt"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/logger"
	"go-placement-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// Sliding window limit over a sorted set.
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp (milliseconds)
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2]) * 1000
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('PEXPIRE', key, window)
return 1
`

// UploadLimiter caps uploads per IP per minute and per user per day. It
// fails open when Redis is not connected; the API-wide limiter still applies.
type UploadLimiter struct {
	maxPerMinute int
	maxPerDay    int
}

// NewUploadLimiter defaults to 10 uploads/min per IP and 50/day per user.
func NewUploadLimiter(perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{maxPerMinute: perMin, maxPerDay: perDay}
}

func (ul *UploadLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := redis.Client()
		if client == nil {
			c.Next()
			return
		}

		allowed, retryAfter, err := ul.allow(c.Request.Context(), client, c.ClientIP(), c.GetString(string(domain.KeyUserID)))
		if err != nil {
			logger.Log.Warn("Upload rate limit check failed", "error", err)
			c.Next()
			return
		}
		if !allowed {
			reject(c, "upload", retryAfter)
			return
		}
		c.Next()
	}
}

func (ul *UploadLimiter) allow(ctx context.Context, client *goredis.Client, ip, userID string) (bool, int, error) {
	now := time.Now().UnixMilli()

	ok, err := checkSlidingWindow(ctx, client, "ratelimit:upload:ip:"+ip, ul.maxPerMinute, 60, now)
	if err != nil || !ok {
		return ok, 60, err
	}
	if userID == "" {
		return true, 0, nil
	}
	ok, err = checkSlidingWindow(ctx, client, "ratelimit:upload:user:"+userID, ul.maxPerDay, 86400, now)
	if err != nil || !ok {
		return ok, 3600, err
	}
	return true, 0, nil
}

func checkSlidingWindow(ctx context.Context, client *goredis.Client, key string, limit, windowSeconds int, now int64) (bool, error) {
	result, err := client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, windowSeconds, now).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}
