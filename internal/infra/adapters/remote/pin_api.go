package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/ports/adapter"
)

var _ adapter.PinAPI = (*PinAPI)(nil)

// PinAPI talks to the remote transaction-PIN service. PIN material never
// persists on this side; the buffer lives in the use case for the lifetime
// of one entry session.
type PinAPI struct {
	client
}

func NewPinAPI(baseURL, apiKey string) *PinAPI {
	return &PinAPI{client: newClient(baseURL, apiKey)}
}

func (p *PinAPI) Detect(ctx context.Context, userID string) (bool, error) {
	env, err := p.getJSON(ctx, "/pin/detect?user_id="+userID)
	if err != nil {
		return false, err
	}
	var data struct {
		HasPin bool `json:"has_pin"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return false, err
	}
	return data.HasPin, nil
}

func (p *PinAPI) Create(ctx context.Context, userID, pin string) error {
	_, err := p.postJSON(ctx, "/pin/create", map[string]any{
		"user_id": userID,
		"pin":     pin,
	})
	return err
}

func (p *PinAPI) Verify(ctx context.Context, userID, pin string) (adapter.PinVerifyResult, error) {
	env, err := p.postJSON(ctx, "/pin/verify", map[string]any{
		"user_id": userID,
		"pin":     pin,
	})
	if err != nil && !errors.Is(err, domain.ErrOperationFailed) {
		// Transport failure: the caller keeps the session open and lets the
		// user retry.
		return adapter.PinVerifyResult{}, err
	}

	result := adapter.PinVerifyResult{
		OK:                err == nil,
		AttemptsRemaining: -1,
	}
	if env != nil {
		result.Message = env.Message
		var data struct {
			AttemptsRemaining *int       `json:"attempts_remaining"`
			LockedUntil       *time.Time `json:"locked_until"`
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err == nil {
				if data.AttemptsRemaining != nil {
					result.AttemptsRemaining = *data.AttemptsRemaining
				}
				result.LockedUntil = data.LockedUntil
			}
		}
	}
	return result, nil
}
