package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOperationFailed = errors.New("operation failed")
	ErrReadDatabaseRow = errors.New("failed to read database row")

	// Settlement engine errors
	ErrSettlementBusy   = errors.New("another settlement is in flight for this reference")
	ErrGatewayRejected  = errors.New("remote gateway rejected the request")
	ErrNoReference      = errors.New("no transaction reference available")
	ErrPinSessionClosed = errors.New("pin session already submitted or cancelled")
	ErrOrderNotFound    = errors.New("no pending order for this session")
)
