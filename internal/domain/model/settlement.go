package model

import "time"

// OperationKind identifies one class of financial side effect. Together with
// a TransactionReference it forms the idempotency key guaranteeing at-most-once
// application of that side effect.
type OperationKind string

const (
	OpCredit            OperationKind = "credit"
	OpRefund            OperationKind = "refund"
	OpLoyaltyPoints     OperationKind = "loyalty_points"
	OpAgentRegistration OperationKind = "agent_registration"
)

// SettlementRecord is the durable marker that an operation has been applied
// for a reference. Records are never deleted and keys are never reused;
// financial safety favors unbounded retention over reuse risk.
type SettlementRecord struct {
	Kind       OperationKind
	Reference  TransactionReference
	RecordedAt time.Time
}
