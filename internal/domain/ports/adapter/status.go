package adapter

import (
	"context"

	"ppob-settlement/internal/domain/model"
)

// StatusResult is the normalized answer of a status check.
type StatusResult struct {
	Status       model.GatewayStatus
	RawStatus    string // provider vocabulary before normalization
	Message      string
	SerialNumber string // voucher/token serial for fulfilled purchases
}

// StatusAPI is the hex port for the remote payment-status endpoint.
type StatusAPI interface {
	// CheckStatus queries the gateway for the current state of one payment
	// attempt. Errors are transport failures; a definite "not paid" answer is
	// not an error.
	CheckStatus(ctx context.Context, reference model.TransactionReference, customerRef, productCode string) (StatusResult, error)
}
