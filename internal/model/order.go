package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && s != OrderStatusPending
}

// Order represents one checkout attempt. TotalAmount is fixed at creation
// from the item subtotals and is never recomputed. StockApplied records that
// the exactly-once stock decrement has run; it is persisted but never
// exposed in API responses.
type Order struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	UserID            string      `json:"userId" db:"user_id"`
	OrderNumber       string      `json:"orderNumber" db:"order_number"`
	ExternalSessionID string      `json:"externalSessionId" db:"external_session_id"`
	Status            OrderStatus `json:"status" db:"status"`
	TotalAmount       int64       `json:"totalAmount" db:"total_amount"`
	StockApplied      bool        `json:"-" db:"stock_applied"`
	PaymentURL        *string     `json:"paymentUrl,omitempty" db:"payment_url"`
	CreatedAt         time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem is an immutable snapshot of a cart line at checkout time.
// Name and price are copied from the product so the order does not change
// retroactively when the catalogue does.
type OrderItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   string    `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	UnitPrice   int64     `json:"unitPrice" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Subtotal    int64     `json:"subtotal" db:"subtotal"`
}

// ShippingDetail holds the recipient and address for an order, 1:1 with
// Order and immutable after creation.
type ShippingDetail struct {
	ID            uuid.UUID `json:"-" db:"id"`
	OrderID       uuid.UUID `json:"-" db:"order_id"`
	RecipientName string    `json:"recipientName" db:"recipient_name"`
	PhoneNumber   string    `json:"phoneNumber" db:"phone_number"`
	Address       string    `json:"address" db:"address"`
	City          string    `json:"city" db:"city"`
	Province      string    `json:"province" db:"province"`
	PostalCode    string    `json:"postalCode" db:"postal_code"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
}

// CheckoutRequest is the request payload for POST /api/checkout.
type CheckoutRequest struct {
	RecipientName string  `json:"recipientName"`
	PhoneNumber   string  `json:"phoneNumber"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Province      string  `json:"province"`
	PostalCode    string  `json:"postalCode"`
	Notes         *string `json:"notes,omitempty"`
}

// Validate checks the shipping fields.
func (r *CheckoutRequest) Validate() error {
	if r.RecipientName == "" {
		return NewDomainError(ErrCodeValidation, "recipient name is required")
	}
	if l := len(r.PhoneNumber); l < 10 || l > 15 {
		return NewDomainError(ErrCodeValidation, "phone number must be between 10 and 15 characters")
	}
	if r.Address == "" {
		return NewDomainError(ErrCodeValidation, "address is required")
	}
	if r.City == "" {
		return NewDomainError(ErrCodeValidation, "city is required")
	}
	if r.Province == "" {
		return NewDomainError(ErrCodeValidation, "province is required")
	}
	if l := len(r.PostalCode); l < 5 || l > 6 {
		return NewDomainError(ErrCodeValidation, "postal code must be 5 or 6 characters")
	}
	return nil
}

// OrderResponse is the full order representation returned by the API.
type OrderResponse struct {
	Order
	Items          []OrderItem     `json:"items"`
	ShippingDetail *ShippingDetail `json:"shippingDetail,omitempty"`
}

// PaymentNotification is the webhook body sent by the payment gateway.
// The shape is closed: unrecognized transaction statuses are classified as
// PENDING rather than dropped.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
}

// StatusOverrideRequest is the admin request to force an order status.
type StatusOverrideRequest struct {
	Status OrderStatus `json:"status"`
}
