package response

import (
	"net/http"

	"anoa.com/moodtracker/pkg/apperror"
	"anoa.com/moodtracker/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var log = logger.Nop()

// UseLogger sets the logger used for internal error reporting.
func UseLogger(l *logger.Logger) {
	if l != nil {
		log = l.With("component", "response")
	}
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	raw, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "status", code, "error", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
