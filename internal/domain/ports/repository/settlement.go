package repository

import (
	"context"

	"ppob-settlement/internal/domain/model"
)

// SettlementRecordRepository is the durable idempotency store: one boolean
// per (operation kind, reference), written once, never expired.
type SettlementRecordRepository interface {
	// HasRun reports whether the operation was already applied for the
	// reference.
	HasRun(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (bool, error)
	// MarkRun records the operation as applied. first is true only for the
	// writer that actually inserted the record; a concurrent caller losing
	// the race gets first == false and no error. The record is durable before
	// MarkRun returns.
	MarkRun(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (first bool, err error)
}
