package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

const invalidIDMessage = "Invalid ID format. ID must be an integer."

// respondError maps a service error to its HTTP status and body.
func respondError(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		conflict   *service.ConflictError
		permission *service.PermissionError
		selfFollow *service.SelfFollowError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, validation.Fields)
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Detail: "Not found."})
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Detail: conflict.Message})
	case errors.As(err, &selfFollow):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Detail: selfFollow.Error()})
	case errors.As(err, &permission):
		c.JSON(http.StatusForbidden, middleware.ErrorResponse{Detail: permission.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{"Unable to log in with provided credentials."}})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{Detail: "Internal Server Error"})
	}
}

// pathID parses the :name path parameter as a positive integer id. It writes
// the 400 response itself and reports false on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": invalidIDMessage})
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into dst, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return false
	}
	return true
}
