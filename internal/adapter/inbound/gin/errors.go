package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/infra/events"
	"github.com/storefront/server/internal/model"
)

// ErrWebhookSecret is returned when a webhook delivery carries a wrong secret.
var ErrWebhookSecret = errors.New("webhook secret mismatch")

// handleError maps domain errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	var statusCode int
	var errorCode string
	var message string

	switch {
	case errors.Is(err, role.ErrInvalidEvent):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_event"
		message = "Invite accepted event is malformed"

	case errors.Is(err, ErrWebhookSecret):
		statusCode = http.StatusUnauthorized
		errorCode = "invalid_webhook_secret"
		message = "Webhook secret mismatch"

	case errors.Is(err, role.ErrMetadataWrite):
		statusCode = http.StatusInternalServerError
		errorCode = "metadata_write_failed"
		message = "User metadata could not be written"

	case errors.Is(err, events.ErrNoHandlers):
		statusCode = http.StatusInternalServerError
		errorCode = "no_handler"
		message = "No handler registered for event"

	default:
		statusCode = http.StatusInternalServerError
		errorCode = "internal_error"
		message = "Internal server error"
	}

	c.JSON(statusCode, model.ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
}
