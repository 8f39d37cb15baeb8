// Package remote holds the HTTP adapters for the upstream account, order,
// and PIN services. All three share the same envelope convention: a JSON
// body with success, message, and an optional data object. The services
// reject a reference they have already applied, which is what makes retrying
// a settlement after a lost acknowledgement safe.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ppob-settlement/internal/domain"
)

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newClient(baseURL, apiKey string) client {
	return client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is the common response wrapper of the upstream services.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// postJSON sends the payload and decodes the envelope. A transport failure
// is returned as-is; an unsuccessful envelope becomes ErrOperationFailed so
// callers can tell the two apart.
func (c client) postJSON(ctx context.Context, path string, payload any) (*envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("upstream %s: http %d", path, resp.StatusCode)
	}
	if !out.Success {
		return &out, fmt.Errorf("%w: %s", domain.ErrOperationFailed, out.Message)
	}
	return &out, nil
}

func (c client) getJSON(ctx context.Context, path string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		return &out, fmt.Errorf("%w: %s", domain.ErrOperationFailed, out.Message)
	}
	return &out, nil
}
