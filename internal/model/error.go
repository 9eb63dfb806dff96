package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeCartItemNotFound = "CART_ITEM_NOT_FOUND"
	ErrCodeDeliveryNotFound = "DELIVERY_NOT_FOUND"
	ErrCodeAgentNotFound    = "AGENT_NOT_FOUND"
	ErrCodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeEmailTaken       = "EMAIL_TAKEN"
	ErrCodeDeliveryClosed   = "DELIVERY_CLOSED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError is a business error that carries its transport classification.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// ValidationError reports malformed or missing input.
func ValidationError(format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, fmt.Sprintf(format, args...))
}

// MissingFieldError names a required field that was not supplied.
func MissingFieldError(field string) *DomainError {
	return NewDomainError(KindValidation, ErrCodeMissingField, fmt.Sprintf("%s is required", field))
}

// KindOf returns the classification of err, KindInternal for anything that is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrUnauthenticated  = NewDomainError(KindUnauthenticated, ErrCodeUnauthenticated, "authentication required")
	ErrForbidden        = NewDomainError(KindForbidden, ErrCodeForbidden, "access denied")
	ErrInvalidQuantity  = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "quantity must be greater than zero")
	ErrInvalidStatus    = NewDomainError(KindValidation, ErrCodeInvalidStatus, "invalid status value")
	ErrProductNotFound  = NewDomainError(KindNotFound, ErrCodeProductNotFound, "product not found")
	ErrCategoryNotFound = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "category not found")
	ErrCartItemNotFound = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "item not found in cart")
	ErrOrderNotFound    = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "order not found")
	ErrDeliveryNotFound = NewDomainError(KindNotFound, ErrCodeDeliveryNotFound, "delivery not found")
	ErrAgentNotFound    = NewDomainError(KindNotFound, ErrCodeAgentNotFound, "delivery agent not found")
	ErrAccountNotFound  = NewDomainError(KindNotFound, ErrCodeNotFound, "account not found")
	ErrEmailTaken       = NewDomainError(KindConflict, ErrCodeEmailTaken, "email is already registered")
	ErrDeliveryExists   = NewDomainError(KindConflict, ErrCodeConflict, "a delivery already exists for this order")
	ErrDeliveryClosed   = NewDomainError(KindConflict, ErrCodeDeliveryClosed, "delivery is already completed or cancelled")
	ErrInvalidLogin     = NewDomainError(KindUnauthenticated, ErrCodeUnauthenticated, "invalid email or password")
)
