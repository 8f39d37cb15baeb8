package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/repository"
)

// Ensure the adapter implements the port interface.
var _ repository.PendingOrderRepository = (*OrderStateRepo)(nil)

// OrderStateRepo holds the order awaiting PIN authorization for one session.
// Entries expire with the TTL; an abandoned PIN prompt needs no cleanup job.
type OrderStateRepo struct {
	client *redClient
	ttl    time.Duration
}

func NewOrderStateRepo(client *redClient, ttl time.Duration) repository.PendingOrderRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &OrderStateRepo{client: client, ttl: ttl}
}

func (s *OrderStateRepo) orderKey(sessionID string) string {
	return fmt.Sprintf("pending_order:%s", sessionID)
}

func (s *OrderStateRepo) Set(ctx context.Context, sessionID string, order *model.PendingOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.orderKey(sessionID), data, s.ttl)
}

func (s *OrderStateRepo) Get(ctx context.Context, sessionID string) (*model.PendingOrder, error) {
	data, err := s.client.Get(ctx, s.orderKey(sessionID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var order model.PendingOrder
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStateRepo) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.orderKey(sessionID))
}
