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
var _ repository.AgentProfileCache = (*ProfileCacheRepo)(nil)

// ProfileCacheRepo caches the remote agent profile. A cache miss is
// domain.ErrNotFound; the caller decides whether to fall back to the remote.
type ProfileCacheRepo struct {
	client *redClient
	ttl    time.Duration
}

func NewProfileCacheRepo(client *redClient) repository.AgentProfileCache {
	return &ProfileCacheRepo{
		client: client,
		ttl:    6 * time.Hour,
	}
}

func (c *ProfileCacheRepo) profileKey(userID string) string {
	return fmt.Sprintf("agent_profile:%s", userID)
}

func (c *ProfileCacheRepo) Get(ctx context.Context, userID string) (*model.AgentProfile, error) {
	data, err := c.client.Get(ctx, c.profileKey(userID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var profile model.AgentProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *ProfileCacheRepo) Set(ctx context.Context, profile *model.AgentProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.profileKey(profile.UserID), data, c.ttl)
}

func (c *ProfileCacheRepo) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.profileKey(userID))
}
