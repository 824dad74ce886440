package gateway

import "greenkart/internal/model"

// Transaction statuses reported by the gateway. This is the closed set the
// engine recognizes; anything else classifies as PENDING so an unknown code
// can never fail an order outright.
const (
	StatusCapture    = "capture"
	StatusSettlement = "settlement"
	StatusPending    = "pending"
	StatusDeny       = "deny"
	StatusExpire     = "expire"
	StatusCancel     = "cancel"
)

// FraudAccept is the fraud-check verdict that allows a capture to settle.
const FraudAccept = "accept"

// Classify maps a gateway-reported status pair onto the internal order
// status vocabulary. Pure function; PENDING means "no transition".
func Classify(transactionStatus, fraudStatus string) model.OrderStatus {
	switch transactionStatus {
	case StatusCapture:
		if fraudStatus == FraudAccept {
			return model.OrderStatusPaid
		}
		return model.OrderStatusPending
	case StatusSettlement:
		return model.OrderStatusPaid
	case StatusPending:
		return model.OrderStatusPending
	case StatusDeny, StatusExpire, StatusCancel:
		return model.OrderStatusFailed
	}
	return model.OrderStatusPending
}
