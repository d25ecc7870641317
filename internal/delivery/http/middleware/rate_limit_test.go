package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLocalLimiterIsPerKey(t *testing.T) {
	l := newLocalLimiter(1, 2)
	now := time.Now()

	assert.True(t, l.allow("a", now))
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	assert.True(t, l.allow("b", now))

	// one token per second refills
	assert.True(t, l.allow("a", now.Add(time.Second)))
}

func TestRateLimitMiddlewareFallsBackToLocalBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultRateLimitConfig(100, time.Minute, 0.001, 2)
	cfg.Name = "test-local"

	r := gin.New()
	r.Use(RateLimitMiddleware(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes[i] = w.Code
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(rateLimited.WithLabelValues("test-local")))
}

func TestUserRateLimitKeysByAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := UserRateLimitConfig(100, time.Minute, 0.001, 1)
	cfg.Name = "test-user"

	r := gin.New()
	// stands in for AuthMiddleware, which runs before the per-user limiter
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(string(domain.KeyUserID), id)
		}
		c.Next()
	})
	r.Use(RateLimitMiddleware(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(user, addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = addr
		req.Header.Set("X-Test-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("Same user from two addresses shares one bucket", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, call("u-1", "198.51.100.1:1000"))
		assert.Equal(t, http.StatusTooManyRequests, call("u-1", "198.51.100.2:1000"))
	})

	t.Run("Users behind one address get separate buckets", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, call("u-2", "198.51.100.3:1000"))
		assert.Equal(t, http.StatusNoContent, call("u-3", "198.51.100.3:1000"))
	})
}

func TestKeyFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.7:5555"

	assert.Equal(t, "ip:192.0.2.7", KeyByUser(c))

	c.Set(string(domain.KeyUserID), "u-9")
	assert.Equal(t, "user:u-9", KeyByUser(c))
	assert.Equal(t, "ip:192.0.2.7", KeyByIP(c))
}

func TestApplyWindowResult(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := RateLimitConfig{Name: "test-window", Limit: 3}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, applyWindowResult(c, cfg, 3, time.Now().Add(30*time.Second)))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, applyWindowResult(c, cfg, 4, time.Now().Add(30*time.Second)))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
