package model

import "time"

// OrderKind distinguishes what a pending order buys.
type OrderKind string

const (
	OrderPurchase   OrderKind = "purchase"    // product purchase settled by a provider
	OrderTopUp      OrderKind = "topup"       // wallet top-up via hosted checkout
	OrderAgentTopUp OrderKind = "agent_topup" // registration top-up that also creates an agent record
)

// PendingOrder is an in-flight purchase or top-up awaiting PIN authorization.
// It is held in a TTL-bound store while the PIN prompt is open and consumed
// exactly once when authorization succeeds, or discarded on cancel.
type PendingOrder struct {
	ID          string               // ULID
	Kind        OrderKind
	UserID      string
	CustomerRef string               // target phone number / customer id
	ProductCode string               // product or top-up method code
	Amount      int64
	Reference   TransactionReference // synthetic for non-hosted flows, set at creation
	CreatedAt   time.Time
}

// OrderStatus is the remote order row's lifecycle status.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusSuccess OrderStatus = "SUCCESS"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// PendingTransaction is the journal row for a reference whose outcome is not
// yet known. The reconciler re-checks unresolved rows; PollState itself is
// deliberately not persisted.
type PendingTransaction struct {
	Reference   TransactionReference
	Kind        OrderKind
	UserID      string
	CustomerRef string
	ProductCode string
	Amount      int64
	Resolved    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
