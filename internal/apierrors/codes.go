// Package apierrors maps namespaced error codes such as "core:forbidden"
// or "ganttcalendar:invalid_arguments" to HTTP statuses and the JSON error
// body returned by the API.
package apierrors

import "net/http"

// Codes owned by the host.
const (
	CodeUnauthorized       = "core:unauthorized"
	CodeForbidden          = "core:forbidden"
	CodeInvalidToken       = "core:invalid_token"
	CodeTokenExpired       = "core:token_expired"
	CodeInvalidRequest     = "core:invalid_request"
	CodeRequestTooLarge    = "core:request_too_large"
	CodeValidationFailed   = "core:validation_failed"
	CodeNotFound           = "core:not_found"
	CodeInternalError      = "core:internal_error"
	CodeServiceUnavailable = "core:service_unavailable"
)

func init() {
	for code, def := range map[string]struct {
		status int
		msg    string
	}{
		CodeUnauthorized:       {http.StatusUnauthorized, "Authentication required"},
		CodeForbidden:          {http.StatusForbidden, "Permission denied"},
		CodeInvalidToken:       {http.StatusUnauthorized, "Invalid or malformed token"},
		CodeTokenExpired:       {http.StatusUnauthorized, "Token has expired"},
		CodeInvalidRequest:     {http.StatusBadRequest, "Invalid request body"},
		CodeRequestTooLarge:    {http.StatusRequestEntityTooLarge, "Request body too large"},
		CodeValidationFailed:   {http.StatusUnprocessableEntity, "Ticket validation failed"},
		CodeNotFound:           {http.StatusNotFound, "Resource not found"},
		CodeInternalError:      {http.StatusInternalServerError, "Internal server error"},
		CodeServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable"},
	} {
		Registry.Register(ErrorCode{Code: code, Message: def.msg, HTTPStatus: def.status})
	}
}
