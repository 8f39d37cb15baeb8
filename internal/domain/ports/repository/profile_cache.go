package repository

import (
	"context"

	"ppob-settlement/internal/domain/model"
)

// AgentProfileCache is the client-side copy of the remote agent profile,
// consulted for tier pricing and refreshed after registration.
type AgentProfileCache interface {
	Get(ctx context.Context, userID string) (*model.AgentProfile, error)
	Set(ctx context.Context, profile *model.AgentProfile) error
	Invalidate(ctx context.Context, userID string) error
}
