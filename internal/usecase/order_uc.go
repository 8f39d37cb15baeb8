// File: internal/usecase/order_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
	"ppob-settlement/internal/domain/ports/repository"
)

// Compile-time checks
var (
	_ OrderUseCase   = (*orderUC)(nil)
	_ OrderSubmitter = (*orderUC)(nil)
)

// PlaceOrderRequest describes what the user wants to buy before PIN
// authorization.
type PlaceOrderRequest struct {
	Kind        model.OrderKind
	UserID      string
	CustomerRef string // target phone number / customer id
	ProductCode string
	Amount      int64 // explicit for top-ups; purchases price from the catalog
}

// OrderUseCase creates pending orders, releases them once authorized, and
// (re)starts polling for references recovered from checkout redirects.
type OrderUseCase interface {
	// PlaceOrder stores a pending order under a fresh session id and returns
	// that id. The caller opens a PIN session with it; nothing is submitted
	// yet.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (sessionID string, order *model.PendingOrder, err error)
	// HandleRedirect recovers a reference from a hosted-checkout redirect URL
	// and starts polling it. A URL without a reference is "not yet
	// available", not an error.
	HandleRedirect(ctx context.Context, userID string, amount int64, rawURL string) (model.TransactionReference, bool, error)
}

type orderUC struct {
	settle        SettlementUseCase
	account       adapter.AccountAPI
	orders        adapter.OrderAPI
	pendingOrders repository.PendingOrderRepository
	journal       repository.PendingTransactionRepository
	registry      *PollerRegistry
	log           *zerolog.Logger
}

func NewOrderUseCase(
	settle SettlementUseCase,
	account adapter.AccountAPI,
	orders adapter.OrderAPI,
	pendingOrders repository.PendingOrderRepository,
	journal repository.PendingTransactionRepository,
	registry *PollerRegistry,
	log *zerolog.Logger,
) *orderUC {
	return &orderUC{
		settle:        settle,
		account:       account,
		orders:        orders,
		pendingOrders: pendingOrders,
		journal:       journal,
		registry:      registry,
		log:           log,
	}
}

func (u *orderUC) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (string, *model.PendingOrder, error) {
	if req.UserID == "" || req.CustomerRef == "" {
		return "", nil, domain.ErrInvalidArgument
	}

	amount := req.Amount
	if req.Kind == model.OrderPurchase {
		resolved, err := u.settle.ResolvePrice(ctx, req.UserID, req.ProductCode)
		if err != nil {
			return "", nil, fmt.Errorf("resolve price: %w", err)
		}
		amount = resolved
	}
	if amount <= 0 {
		return "", nil, domain.ErrInvalidArgument
	}

	now := time.Now()
	order := &model.PendingOrder{
		ID:          ulid.Make().String(),
		Kind:        req.Kind,
		UserID:      req.UserID,
		CustomerRef: req.CustomerRef,
		ProductCode: req.ProductCode,
		Amount:      amount,
		// The synthetic reference is the idempotency key from here on; it is
		// generated exactly once and retries reuse it.
		Reference: model.NewSyntheticReference(now),
		CreatedAt: now,
	}

	// Optimistic hold: the order amount leaves the wallet now and is given
	// back by the refund settlement if the transaction fails.
	if err := u.account.DebitWallet(ctx, order.UserID, order.Amount, order.Reference); err != nil {
		return "", nil, fmt.Errorf("wallet hold: %w", err)
	}

	sessionID := ulid.Make().String()
	if err := u.pendingOrders.Set(ctx, sessionID, order); err != nil {
		return "", nil, fmt.Errorf("store pending order: %w", err)
	}

	u.log.Info().
		Str("session_id", sessionID).
		Str("reference", order.Reference.String()).
		Str("kind", string(order.Kind)).
		Int64("amount", order.Amount).
		Msg("order placed, awaiting pin authorization")
	return sessionID, order, nil
}

// SubmitAuthorized releases an order whose PIN authorization succeeded.
// Providers that confirm synchronously are settled right here; everything
// else is journaled and handed to a poller.
func (u *orderUC) SubmitAuthorized(ctx context.Context, order model.PendingOrder) (OrderOutcome, error) {
	res, err := u.orders.SubmitOrder(ctx, order)
	if err != nil {
		return OrderOutcome{}, fmt.Errorf("submit order: %w", err)
	}

	outcome := OrderOutcome{
		Reference:    order.Reference,
		Message:      res.Message,
		SerialNumber: res.SerialNumber,
	}

	switch res.Status {
	case model.SettlementSuccess:
		outcome.Status = model.OrderStatusSuccess
		if err := u.resolveSuccess(ctx, order, res); err != nil {
			return outcome, err
		}
	case model.SettlementFailed:
		outcome.Status = model.OrderStatusFailed
		if err := u.resolveFailure(ctx, order, res); err != nil {
			return outcome, err
		}
	default: // pending: track it
		outcome.Status = model.OrderStatusPending
		outcome.Polling = true
		_, err := u.registry.StartPolling(ctx, model.PendingTransaction{
			Reference:   order.Reference,
			Kind:        order.Kind,
			UserID:      order.UserID,
			CustomerRef: order.CustomerRef,
			ProductCode: order.ProductCode,
			Amount:      order.Amount,
			CreatedAt:   order.CreatedAt,
			UpdatedAt:   time.Now(),
		})
		if err != nil {
			return outcome, fmt.Errorf("start polling: %w", err)
		}
	}
	return outcome, nil
}

// resolveSuccess settles an order the provider confirmed synchronously.
func (u *orderUC) resolveSuccess(ctx context.Context, order model.PendingOrder, res adapter.OrderResult) error {
	switch order.Kind {
	case model.OrderTopUp:
		return u.settle.CreditWallet(ctx, order.UserID, order.Amount, order.Reference)
	case model.OrderAgentTopUp:
		profile := model.AgentProfile{
			UserID: order.UserID,
			Tier:   model.AgentTierStandard,
			Phone:  order.CustomerRef,
		}
		return u.settle.RegisterAgent(ctx, order.UserID, order.Reference, order.Amount, profile)
	default:
		if err := u.orders.UpdateOrderStatus(ctx, order.Reference, model.OrderStatusSuccess, res.Message, res.SerialNumber, order.Amount); err != nil {
			return err
		}
		return u.settle.GrantLoyaltyPoints(ctx, order.UserID, order.Reference, order.ProductCode)
	}
}

func (u *orderUC) resolveFailure(ctx context.Context, order model.PendingOrder, res adapter.OrderResult) error {
	if err := u.settle.RefundWallet(ctx, order.UserID, order.Amount, order.Reference); err != nil {
		return err
	}
	return u.orders.UpdateOrderStatus(ctx, order.Reference, model.OrderStatusFailed, res.Message, "", 0)
}

func (u *orderUC) HandleRedirect(ctx context.Context, userID string, amount int64, rawURL string) (model.TransactionReference, bool, error) {
	ref, ok := model.ResolveReference(rawURL)
	if !ok {
		// No reference yet; polling simply does not start.
		u.log.Debug().Str("user_id", userID).Msg("redirect carried no reference")
		return "", false, nil
	}

	tx, err := u.journal.FindByReference(ctx, ref)
	if err != nil {
		// First sighting of the reference: journal it as a top-up watch.
		now := time.Now()
		tx = &model.PendingTransaction{
			Reference: ref,
			Kind:      model.OrderTopUp,
			UserID:    userID,
			Amount:    amount,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	if _, err := u.registry.StartPolling(ctx, *tx); err != nil {
		return ref, true, fmt.Errorf("start polling: %w", err)
	}
	u.log.Info().Str("reference", ref.String()).Msg("polling started from redirect")
	return ref, true, nil
}
