package middleware

import (
	"errors"
	"net/http"

	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Never expose internal error details to clients.
		logger.Log.Error("Request failed",
			"request_id", c.GetString(RequestIDKey),
			"path", c.FullPath(),
			"error", err,
		)
		if appErr != nil && appErr.Code != http.StatusInternalServerError {
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
