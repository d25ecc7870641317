package v1

import (
	"strconv"
	"strings"

	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive int64 path parameter. On failure the error is
// attached to c and ok is false.
func pathID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid " + label))
		return 0, false
	}
	return id, true
}

// bindJSON binds and validates the body, reporting field errors as one
// readable message.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return false
	}
	return true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}
