package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeSignatureMismatch = "SIGNATURE_MISMATCH"
	ErrCodeGatewayFailure    = "GATEWAY_FAILURE"
	ErrCodeOrderNotDeletable = "ORDER_NOT_DELETABLE"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
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

// NewInsufficientStockError reports a failed stock sufficiency check for a
// single product line.
func NewInsufficientStockError(productName string, available, requested int) *DomainError {
	return NewDomainError(
		ErrCodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", productName, available, requested),
	)
}

// Common domain errors
var (
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrSignatureMismatch = NewDomainError(ErrCodeSignatureMismatch, "Invalid signature")
	ErrGatewayFailure    = NewDomainError(ErrCodeGatewayFailure, "Failed to create payment. Please try again.")
	ErrOrderNotDeletable = NewDomainError(ErrCodeOrderNotDeletable, "Only PENDING, FAILED, or CANCELLED orders can be deleted")
)
