// File: internal/infra/adapters/gateway/tripay_status.go
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
)

var _ adapter.StatusAPI = (*TripayStatusAPI)(nil)

// TripayStatusAPI implements adapter.StatusAPI against the Tripay
// transaction-detail endpoint. Provider status strings are normalized into
// the gateway vocabulary; anything unrecognized comes back as UNKNOWN and is
// treated like a pending poll.
type TripayStatusAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewTripayStatusAPI(baseURL, apiKey string) (*TripayStatusAPI, error) {
	if baseURL == "" {
		return nil, errors.New("gateway base url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid gateway base url: %w", err)
	}
	return &TripayStatusAPI{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (t *TripayStatusAPI) CheckStatus(ctx context.Context, ref model.TransactionReference, customerRef, productCode string) (adapter.StatusResult, error) {
	endpoint := fmt.Sprintf("%s/transaction/detail?reference=%s", t.baseURL, url.QueryEscape(ref.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return adapter.StatusResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return adapter.StatusResult{}, err
	}
	defer resp.Body.Close()

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Reference    string `json:"reference"`
			Status       string `json:"status"`
			Note         string `json:"note"`
			SerialNumber string `json:"serial_number"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.StatusResult{}, fmt.Errorf("decode status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return adapter.StatusResult{}, fmt.Errorf("%w: %s", domain.ErrGatewayRejected, out.Message)
	}

	return adapter.StatusResult{
		Status:       model.ParseGatewayStatus(out.Data.Status),
		RawStatus:    out.Data.Status,
		Message:      out.Message,
		SerialNumber: out.Data.SerialNumber,
	}, nil
}
