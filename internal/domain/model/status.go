package model

import "strings"

// GatewayStatus is the closed vocabulary of the hosted-checkout status
// endpoint for wallet top-ups.
type GatewayStatus string

const (
	GatewayStatusPaid    GatewayStatus = "PAID"
	GatewayStatusUnpaid  GatewayStatus = "UNPAID"
	GatewayStatusFailed  GatewayStatus = "FAILED"
	GatewayStatusExpired GatewayStatus = "EXPIRED"
	GatewayStatusUnknown GatewayStatus = "UNKNOWN"
)

// ParseGatewayStatus maps a raw gateway status string onto the closed enum.
// Unrecognized values become GatewayStatusUnknown, which the poller treats
// like UNPAID (keep waiting).
func ParseGatewayStatus(raw string) GatewayStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PAID":
		return GatewayStatusPaid
	case "UNPAID":
		return GatewayStatusUnpaid
	case "FAILED":
		return GatewayStatusFailed
	case "EXPIRED":
		return GatewayStatusExpired
	default:
		return GatewayStatusUnknown
	}
}

// Terminal reports whether no further polling is meaningful for this status.
func (s GatewayStatus) Terminal() bool {
	switch s {
	case GatewayStatusPaid, GatewayStatusFailed, GatewayStatusExpired:
		return true
	}
	return false
}

// SettlementStatus is the internal tri-state every upstream purchase-provider
// vocabulary is normalized to.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSuccess SettlementStatus = "success"
	SettlementFailed  SettlementStatus = "failed"
)

// NormalizeSettlementStatus maps the open set of provider status strings
// (English and Indonesian, any casing) to the internal tri-state. Unknown
// strings normalize to pending: a status we cannot interpret must never
// trigger a settlement.
func NormalizeSettlementStatus(raw string) SettlementStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCESS", "SUKSES", "BERHASIL", "PAID", "SETTLED", "COMPLETED":
		return SettlementSuccess
	case "FAILED", "GAGAL", "EXPIRED", "KADALUARSA", "CANCELED", "CANCELLED", "REFUND", "REFUNDED":
		return SettlementFailed
	case "PENDING", "MENUNGGU", "UNPAID", "PROCESS", "PROSES", "WAITING":
		return SettlementPending
	default:
		return SettlementPending
	}
}
