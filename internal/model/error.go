package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeCartEntryNotFound  = "CART_ENTRY_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodeUnavailable        = "NOT_AVAILABLE"
	ErrCodePaymentVerify      = "PAYMENT_VERIFICATION_FAILED"
	ErrCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCartEntryNotFound   = NewDomainError(ErrCodeCartEntryNotFound, "One or more cart entries not found")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidCredentials  = NewDomainError(ErrCodeUnauthorised, "Invalid email or password")
	ErrUnauthorised        = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden           = NewDomainError(ErrCodeForbidden, "You do not have permission to perform this action")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Status transition is not allowed")
	ErrNotAvailable        = NewDomainError(ErrCodeUnavailable, "Product is not available for the selected dates")
	ErrPaymentVerification = NewDomainError(ErrCodePaymentVerify, "Payment verification failed")
	ErrGatewayUnavailable  = NewDomainError(ErrCodeGatewayUnavailable, "Payment gateway is unavailable")
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field problem found in a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator accumulates field errors.
type Validator struct {
	fields []FieldError
}

// Add records a problem with field.
func (v *Validator) Add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// Check records message against field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Required records a problem when value is blank.
func (v *Validator) Required(value, field string) {
	v.Check(strings.TrimSpace(value) != "", field, "This field is required.")
}

// Err returns nil when nothing was recorded.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Unique-constraint violations are reported like any other invalid field.
var (
	ErrEmailExists       = NewValidationError("email", "A user with this email already exists.")
	ErrAlreadyInWishlist = NewValidationError("product_id", "Product is already in the wishlist.")
	ErrDuplicateReview   = NewValidationError("product_id", "You have already reviewed this product.")
	ErrSlugTaken         = NewValidationError("slug", "Slug is already in use.")
)

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
