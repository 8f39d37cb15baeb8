package adapter

import (
	"context"

	"ppob-settlement/internal/domain/model"
)

// OrderResult is the provider's synchronous answer to an order submission.
// Some providers confirm immediately; others return pending and are resolved
// by polling.
type OrderResult struct {
	Status       model.SettlementStatus
	Message      string
	SerialNumber string
}

// OrderAPI is the hex port for the remote order service.
type OrderAPI interface {
	// SubmitOrder issues the order identified by its reference. Submitting the
	// same reference twice must be rejected server-side.
	SubmitOrder(ctx context.Context, order model.PendingOrder) (OrderResult, error)
	// UpdateOrderStatus marks the remote order row once a terminal outcome is
	// known. Price and serial number are recorded with a success.
	UpdateOrderStatus(ctx context.Context, reference model.TransactionReference, status model.OrderStatus, message, serialNumber string, price int64) error
}
