package model

import "time"

// DefaultRewardPoints is granted when a product's configured reward value
// cannot be resolved.
const DefaultRewardPoints = 1

const (
	ProductTypePrepaid  = "prepaid"
	ProductTypePostpaid = "postpaid"
)

// Product is one sellable item of the catalog with its tiered pricing.
// Amounts are stored in minor units (whole Rupiah) as int64 to avoid float
// errors.
type Product struct {
	Code         string // provider product code, unique
	Name         string
	Type         string // prepaid | postpaid
	BasePrice    int64
	TierTwoPrice int64 // standard resell price; 0 when absent
	AgentPrice   int64 // platinum-agent price; 0 when absent
	RewardPoints int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AgentTier is the loyalty tier of a registered reseller agent.
type AgentTier string

const (
	AgentTierStandard AgentTier = "standard"
	AgentTierPlatinum AgentTier = "platinum"
)

// AgentProfile mirrors the remote account service's agent record. A copy is
// cached client-side and refreshed after registration.
type AgentProfile struct {
	UserID       string
	Tier         AgentTier
	Name         string
	Phone        string
	RegisteredAt time.Time
}

// IsPlatinum reports whether the profile exists and is platinum tier.
func (p *AgentProfile) IsPlatinum() bool {
	return p != nil && p.Tier == AgentTierPlatinum
}

// ResolvePrice applies the tier pricing rule: postpaid products always sell
// at base price; otherwise platinum agents get the agent price, everyone else
// the tier-two price, falling back to base price when a tier is not set.
func ResolvePrice(p *Product, buyer *AgentProfile) int64 {
	if p == nil {
		return 0
	}
	if p.Type == ProductTypePostpaid {
		return p.BasePrice
	}
	if buyer.IsPlatinum() && p.AgentPrice > 0 {
		return p.AgentPrice
	}
	if p.TierTwoPrice > 0 {
		return p.TierTwoPrice
	}
	return p.BasePrice
}
