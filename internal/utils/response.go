package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/pkg/logger"
)

// Response is the standardized envelope: a status code, a message, and data.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"` // always present, null when empty
}

// NewSuccessResponse creates a success Response with status 200.
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Status:  200,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates an error Response with nil data.
func NewErrorResponse(status int, message string) Response {
	return Response{
		Status:  status,
		Message: message,
		Data:    nil,
	}
}

// RespondError maps a typed engine error to its HTTP status and envelope.
// Internal causes are logged here and never leave the process in a response.
func RespondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError && logger.Log != nil {
		logger.Log.Error("internal error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	var typed *apperr.Error
	if errors.As(err, &typed) {
		c.JSON(status, NewErrorResponse(status, typed.Message))
		return
	}
	c.JSON(status, NewErrorResponse(status, "internal error"))
}
