package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"book-catalog/internal/validation"
)

// APIError es el cuerpo uniforme de toda respuesta de error.
type APIError struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, label, message string) {
	c.JSON(status, APIError{Error: label, Message: message})
}

func respondValidationError(c *gin.Context, details []validation.FieldError) {
	c.JSON(http.StatusBadRequest, APIError{
		Error:   "Validation Error",
		Message: "Invalid input data",
		Details: details,
	})
}
