package remote

import (
	"context"
	"encoding/json"

	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
)

var _ adapter.OrderAPI = (*OrderAPI)(nil)

// OrderAPI talks to the remote order service.
type OrderAPI struct {
	client
}

func NewOrderAPI(baseURL, apiKey string) *OrderAPI {
	return &OrderAPI{client: newClient(baseURL, apiKey)}
}

func (o *OrderAPI) SubmitOrder(ctx context.Context, order model.PendingOrder) (adapter.OrderResult, error) {
	env, err := o.postJSON(ctx, "/order/submit", map[string]any{
		"reference":    order.Reference.String(),
		"kind":         string(order.Kind),
		"user_id":      order.UserID,
		"customer_ref": order.CustomerRef,
		"product_code": order.ProductCode,
		"amount":       order.Amount,
	})
	if err != nil {
		return adapter.OrderResult{}, err
	}

	var data struct {
		Status       string `json:"status"`
		SerialNumber string `json:"serial_number"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return adapter.OrderResult{}, err
		}
	}
	return adapter.OrderResult{
		// Provider vocabulary (SUKSES, GAGAL, ...) is folded here so nothing
		// upstream ever branches on raw strings.
		Status:       model.NormalizeSettlementStatus(data.Status),
		Message:      env.Message,
		SerialNumber: data.SerialNumber,
	}, nil
}

func (o *OrderAPI) UpdateOrderStatus(ctx context.Context, reference model.TransactionReference, status model.OrderStatus, message, serialNumber string, price int64) error {
	_, err := o.postJSON(ctx, "/order/status", map[string]any{
		"reference":     reference.String(),
		"status":        string(status),
		"message":       message,
		"serial_number": serialNumber,
		"price":         price,
	})
	return err
}
