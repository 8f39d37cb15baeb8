package repository

import (
	"context"

	"ppob-settlement/internal/domain/model"
)

// PendingOrderRepository holds the order awaiting PIN authorization for one
// session. Entries are TTL-bound; an abandoned PIN prompt simply expires.
type PendingOrderRepository interface {
	Set(ctx context.Context, sessionID string, order *model.PendingOrder) error
	Get(ctx context.Context, sessionID string) (*model.PendingOrder, error)
	Delete(ctx context.Context, sessionID string) error
}
