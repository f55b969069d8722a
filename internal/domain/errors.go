package domain

import "fmt"

// ErrorKind classifies domain failures so callers can map them without string matching
type ErrorKind string

const (
	KindValidation        ErrorKind = "ValidationError"
	KindNotFound          ErrorKind = "NotFound"
	KindInsufficientStock ErrorKind = "InsufficientStock"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindConflict          ErrorKind = "Conflict"
)

// Domain errors
var (
	ErrValidation        = &DomainError{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound          = &DomainError{Kind: KindNotFound, Message: "resource not found"}
	ErrInsufficientStock = &DomainError{Kind: KindInsufficientStock, Message: "insufficient stock available"}
	ErrInvalidTransition = &DomainError{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrConflict          = &DomainError{Kind: KindConflict, Message: "concurrent modification conflict"}
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind
	Message string
	Details string
}

func (e *DomainError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// Is matches any DomainError of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error regardless of its details.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewValidationError(field, reason string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Message: reason,
		Details: fmt.Sprintf("Field: %s", field),
	}
}

func NewNotFound(resource, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Message: resource + " not found",
		Details: fmt.Sprintf("ID: %s", id),
	}
}

func NewInsufficientStock(productID string, requested int) *DomainError {
	return &DomainError{
		Kind:    KindInsufficientStock,
		Message: "insufficient stock available",
		Details: fmt.Sprintf("Product: %s, Requested: %d", productID, requested),
	}
}

func NewInvalidTransition(from, to OrderStatus) *DomainError {
	return &DomainError{
		Kind:    KindInvalidTransition,
		Message: "invalid status transition",
		Details: fmt.Sprintf("From: %s, To: %s", from, to),
	}
}

func NewConflict(details string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Message: "concurrent modification conflict",
		Details: details,
	}
}
