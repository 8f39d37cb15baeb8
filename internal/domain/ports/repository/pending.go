package repository

import (
	"context"
	"time"

	"ppob-settlement/internal/domain/model"
)

// PendingTransactionRepository journals references whose outcome is still
// unknown so the reconciler can re-check them after a restart or after a
// poller exhausted its attempts.
type PendingTransactionRepository interface {
	Upsert(ctx context.Context, tx *model.PendingTransaction) error
	FindByReference(ctx context.Context, ref model.TransactionReference) (*model.PendingTransaction, error)
	// Resolve marks the journal row settled so it is never re-checked.
	Resolve(ctx context.Context, ref model.TransactionReference) error
	// ListUnresolvedOlderThan returns up to limit unresolved rows last touched
	// before cutoff.
	ListUnresolvedOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.PendingTransaction, error)
}
