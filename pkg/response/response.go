package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/ratelimiter"
	"anoa.com/blogspace/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoginPath is where unauthenticated clients are pointed to.
const LoginPath = "/api/auth/login"

// ParseUUIDParam reads a path parameter as a UUID. Malformed ids are
// reported as not found.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, apperror.ErrNotFound)
	}
	return id, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)
	body := gin.H{
		"error":    err.Error(),
		"category": apperror.Category(err),
	}

	var rateErr *ratelimiter.RateLimitError
	if errors.As(err, &rateErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateErr.RetryAfter.Seconds()))
	}

	switch {
	case code == http.StatusUnauthorized:
		body["redirect"] = LoginPath
	case code >= http.StatusInternalServerError:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("internal error")
		body["error"] = apperror.ErrInternal.Error()
	}

	c.JSON(code, body)
}

// ValidationError reports a request binding failure.
func ValidationError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		ResponseError(c, fmt.Errorf("request body exceeds %d bytes: %w", maxBytesErr.Limit, apperror.ErrPayloadTooLarge))
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":    validator.FormatValidationError(err),
		"category": apperror.CategoryValidation,
	})
}
