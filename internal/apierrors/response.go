package apierrors

import (
	"github.com/gin-gonic/gin"
)

// APIError is the body of every error response, wrapped as {"error": ...}.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// New builds the error for a registered code with its default message.
func New(code string) APIError {
	return APIError{Code: code, Message: Registry.Message(code)}
}

// Error aborts the request with the registered status and message of code.
func Error(c *gin.Context, code string) {
	abort(c, New(code))
}

// ErrorWithMessage replaces the default message.
func ErrorWithMessage(c *gin.Context, code, message string) {
	abort(c, APIError{Code: code, Message: message})
}

// ErrorWithDetails attaches structured details, such as the field errors
// of a failed validation, to the default message.
func ErrorWithDetails(c *gin.Context, code string, details any) {
	e := New(code)
	e.Details = details
	abort(c, e)
}

func abort(c *gin.Context, e APIError) {
	c.AbortWithStatusJSON(Registry.HTTPStatus(e.Code), gin.H{"error": e})
}
