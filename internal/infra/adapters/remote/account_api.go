package remote

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
)

var _ adapter.AccountAPI = (*AccountAPI)(nil)

// AccountAPI talks to the remote accounting service.
type AccountAPI struct {
	client
}

func NewAccountAPI(baseURL, apiKey string) *AccountAPI {
	return &AccountAPI{client: newClient(baseURL, apiKey)}
}

func (a *AccountAPI) CreditWallet(ctx context.Context, userID string, amount int64, reference model.TransactionReference, method adapter.CreditMethod) error {
	_, err := a.postJSON(ctx, "/wallet/credit", map[string]any{
		"user_id":   userID,
		"amount":    amount,
		"reference": reference.String(),
		"method":    string(method),
	})
	return err
}

func (a *AccountAPI) DebitWallet(ctx context.Context, userID string, amount int64, reference model.TransactionReference) error {
	_, err := a.postJSON(ctx, "/wallet/debit", map[string]any{
		"user_id":   userID,
		"amount":    amount,
		"reference": reference.String(),
	})
	return err
}

func (a *AccountAPI) GrantPoints(ctx context.Context, userID string, points int, reference model.TransactionReference) error {
	_, err := a.postJSON(ctx, "/loyalty/grant", map[string]any{
		"user_id":   userID,
		"points":    points,
		"reference": reference.String(),
	})
	return err
}

func (a *AccountAPI) CreateAgent(ctx context.Context, profile model.AgentProfile) error {
	_, err := a.postJSON(ctx, "/agent/create", map[string]any{
		"user_id": profile.UserID,
		"tier":    string(profile.Tier),
		"name":    profile.Name,
		"phone":   profile.Phone,
	})
	// An agent record that already exists means a previous attempt got
	// through; the caller proceeds to refresh the profile.
	if err != nil && strings.Contains(err.Error(), "already") {
		return nil
	}
	return err
}

func (a *AccountAPI) FetchProfile(ctx context.Context, userID string) (*model.AgentProfile, error) {
	env, err := a.getJSON(ctx, "/agent/profile?user_id="+userID)
	if err != nil {
		if errors.Is(err, domain.ErrOperationFailed) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var data struct {
		UserID       string    `json:"user_id"`
		Tier         string    `json:"tier"`
		Name         string    `json:"name"`
		Phone        string    `json:"phone"`
		RegisteredAt time.Time `json:"registered_at"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return &model.AgentProfile{
		UserID:       data.UserID,
		Tier:         model.AgentTier(data.Tier),
		Name:         data.Name,
		Phone:        data.Phone,
		RegisteredAt: data.RegisteredAt,
	}, nil
}
