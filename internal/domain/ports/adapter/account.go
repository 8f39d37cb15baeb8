package adapter

import (
	"context"

	"ppob-settlement/internal/domain/model"
)

// CreditMethod tags how money entered the wallet.
type CreditMethod string

const (
	CreditMethodGateway CreditMethod = "gateway" // hosted-checkout top-up
	CreditMethodRefund  CreditMethod = "refund"  // reversal of an optimistic hold
	CreditMethodAgent   CreditMethod = "agent"   // agent registration top-up
)

// AccountAPI is the hex port for the remote accounting service. The service
// is required to reject a reference it has already applied; the client-side
// idempotency store is a fast path, not the authoritative guard.
type AccountAPI interface {
	// CreditWallet adds amount to the user's balance, tagged with reference.
	CreditWallet(ctx context.Context, userID string, amount int64, reference model.TransactionReference, method CreditMethod) error
	// DebitWallet takes the optimistic hold when an order is placed against
	// wallet balance.
	DebitWallet(ctx context.Context, userID string, amount int64, reference model.TransactionReference) error
	// GrantPoints adds loyalty points, tagged with reference.
	GrantPoints(ctx context.Context, userID string, points int, reference model.TransactionReference) error
	// CreateAgent creates the remote agent record.
	CreateAgent(ctx context.Context, profile model.AgentProfile) error
	// FetchProfile returns the authoritative agent profile, or
	// domain.ErrNotFound when the user is not an agent.
	FetchProfile(ctx context.Context, userID string) (*model.AgentProfile, error)
}
