package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error codes carried by AppError and ErrorResponse.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUnavailable  = "UNAVAILABLE"
	CodeInternal     = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	CodeNotFound:     fiber.StatusNotFound,
	CodeValidation:   fiber.StatusBadRequest,
	CodeUnauthorized: fiber.StatusUnauthorized,
	CodeForbidden:    fiber.StatusForbidden,
	CodeConflict:     fiber.StatusConflict,
	CodeRateLimited:  fiber.StatusTooManyRequests,
	CodeUnavailable:  fiber.StatusServiceUnavailable,
}

// AppError is an error a service wants surfaced to the client with a code.
// Err, when set, is the underlying cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Status is the HTTP status for the error's code; unknown codes are 500s.
func (e *AppError) Status() int {
	if s, ok := codeStatus[e.Code]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

func newAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewNotFoundError(resource string, id any) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s with ID %v not found", resource, id))
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, message)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, message)
}

func NewForbiddenError(message string) *AppError {
	return newAppError(CodeForbidden, message)
}

func NewConflictError(message string) *AppError {
	return newAppError(CodeConflict, message)
}

// NewInternalError hides err behind a generic message; err is only logged.
func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// AsAppError unwraps err into an *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// RespondWithError writes err as an ErrorResponse with the given status.
// Errors that are not AppErrors, and the causes of internal errors, are
// never echoed to the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = NewInternalError(err)
	}

	body := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if appErr.Err != nil && appErr.Code != CodeInternal {
		body.Details = appErr.Err.Error()
	}
	return c.Status(status).JSON(body)
}
