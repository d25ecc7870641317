package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key read by the response envelope.
	RequestIDKey    = string(domain.KeyRequestID)
	requestIDHeader = "X-Request-ID"
)

// RequestID reuses an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(RequestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestLogger writes one structured access log line per request. 5xx are
// logged at error, 4xx at warn.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		attrs := []any{
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"route", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
		}
		if userID := c.GetString(string(domain.KeyUserID)); userID != "" {
			attrs = append(attrs, "user_id", userID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Log.Error("request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Log.Warn("request", attrs...)
		default:
			logger.Log.Info("request", attrs...)
		}
	}
}

// Recovery converts panics into the 500 envelope and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.Error("panic recovered",
					"request_id", c.GetString(RequestIDKey),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				if !c.Writer.Written() {
					response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
