package repository

import (
	"context"
	"time"
)

// Locker serializes settlement of one reference across concurrent pollers.
// It narrows the check-then-set window; the authoritative dedup is the
// settlement store's first-writer-wins MarkRun plus server-side rejection of
// duplicate references.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
