package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrDatabase = errors.New("database error")

	ErrCache = errors.New("cache error")

	ErrUpstream = errors.New("loan api error")

	ErrInternalServer = errors.New("internal server error")

	ErrNotSchedulable = errors.New("loan is not eligible for a payment schedule")

	ErrPublish = errors.New("event publish error")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {

	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

// WrapUpstreamError tags a failed call to the loan API with the HTTP status it returned.
// A zero status means the request never got a response.
func WrapUpstreamError(cause error, status int, message string) error {
	code := "UPSTREAM_UNAVAILABLE"
	if status != 0 {
		code = fmt.Sprintf("UPSTREAM_%d", status)
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrUpstream, cause),
	}
}
