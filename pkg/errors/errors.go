package errors

import (
	"errors"
	"fmt"
	"net/http"

	"ledger-service/internal/domain"
)

// Error codes returned in the "error" field
const (
	CodeInvalidRequest     = "InvalidRequest"
	CodeValidation         = "ValidationError"
	CodeNotFound           = "NotFound"
	CodeInsufficientStock  = "InsufficientStock"
	CodeInvalidTransition  = "InvalidTransition"
	CodeConflict           = "Conflict"
	CodeUnauthorized       = "Unauthorized"
	CodeForbidden          = "Forbidden"
	CodeServiceUnavailable = "ServiceUnavailable"
	CodeInternal           = "InternalError"
)

// StandardError represents a standardized error response
type StandardError struct {
	Code    string `json:"error"`   // Error code/type (e.g., "ValidationError", "NotFound")
	Message string `json:"message"` // Human-readable error message
	Details string `json:"details"` // Additional details (field name, ids, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientStock, CodeInvalidTransition, CodeConflict:
		return http.StatusConflict
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

// FromDomain maps a service error onto the response shape. Errors that are not
// domain errors become InternalError.
func FromDomain(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return NewInternalError("internal server error", err)
	}

	switch domainErr.Kind {
	case domain.KindValidation:
		return NewStandardError(CodeValidation, domainErr.Message, domainErr.Details)
	case domain.KindNotFound:
		return NewStandardError(CodeNotFound, domainErr.Message, domainErr.Details)
	case domain.KindInsufficientStock:
		return NewStandardError(CodeInsufficientStock, domainErr.Message, domainErr.Details)
	case domain.KindInvalidTransition:
		return NewStandardError(CodeInvalidTransition, domainErr.Message, domainErr.Details)
	case domain.KindConflict:
		return NewStandardError(CodeConflict, domainErr.Message, domainErr.Details)
	default:
		return NewInternalError("internal server error", err)
	}
}

func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError(CodeInvalidRequest, message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError(CodeValidation, message, fmt.Sprintf("Field: %s", field))
}

func NewUnauthorized(message, details string) *StandardError {
	return NewStandardError(CodeUnauthorized, message, details)
}

func NewForbidden(role string) *StandardError {
	return NewStandardError(CodeForbidden, "insufficient role", fmt.Sprintf("Role: %s", role))
}

func NewServiceUnavailable(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError(CodeServiceUnavailable, message, details)
}

func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError(CodeInternal, message, details)
}
