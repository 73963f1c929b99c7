package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
)

// Machine-readable error codes surfaced alongside messages.
const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeUpstreamQuery = "UPSTREAM_QUERY_FAILURE"
	CodeInternal      = "INTERNAL_ERROR"
)

// APIError is the JSON error envelope returned by every endpoint.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewUnauthorizedError(message string) *APIError {
	return &APIError{StatusCode: fiber.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func NewForbiddenError(message string) *APIError {
	return &APIError{StatusCode: fiber.StatusForbidden, Code: CodeForbidden, Message: message}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{StatusCode: fiber.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// NewUpstreamError wraps a storage collaborator failure. Not retried here;
// retry policy belongs to the caller.
func NewUpstreamError(err error) *APIError {
	return &APIError{StatusCode: fiber.StatusBadGateway, Code: CodeUpstreamQuery, Message: err.Error()}
}

// ErrorHandler is the app-level fiber error handler: APIErrors pass through
// with their status and code, anything else becomes a 500.
func ErrorHandler(c fiber.Ctx, err error) error {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = &APIError{StatusCode: fiber.StatusInternalServerError, Code: CodeInternal, Message: "an internal error occurred"}
	}
	return c.Status(apiErr.StatusCode).JSON(apiErr)
}
