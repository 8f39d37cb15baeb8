//go:build !integration

package model

import (
	"testing"
	"time"
)

// --- ReferenceResolver Tests ---

func TestResolveReference(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{
			name: "checkout path segment wins",
			url:  "https://gw.example/checkout/TABC1234567890?foo=bar",
			want: "TABC1234567890",
			ok:   true,
		},
		{
			name: "checkout path beats query parameters",
			url:  "https://gw.example/checkout/TXY99?reference=OTHER&tripay_reference=ALSO",
			want: "TXY99",
			ok:   true,
		},
		{
			name: "checkout segment must start with uppercase T",
			url:  "https://gw.example/checkout/xabc123?reference=QREF",
			want: "QREF",
			ok:   true,
		},
		{
			name: "tripay_reference beats reference",
			url:  "https://gw.example/done?tripay_reference=T111&reference=T222",
			want: "T111",
			ok:   true,
		},
		{
			name: "reference query parameter",
			url:  "https://gw.example/done?reference=X42",
			want: "X42",
			ok:   true,
		},
		{
			name: "last path segment heuristic",
			url:  "https://gw.example/pay/redirect/TZZ123456789",
			want: "TZZ123456789",
			ok:   true,
		},
		{
			name: "last segment too short is rejected",
			url:  "https://gw.example/pay/T12345",
			ok:   false,
		},
		{
			name: "locale-looking segment is rejected",
			url:  "https://gw.example/id-ID/terms",
			ok:   false,
		},
		{
			name: "malformed url is no match not an error",
			url:  "ht tp://%%%",
			ok:   false,
		},
		{
			name: "empty url",
			url:  "",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveReference(tc.url)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v (got %q)", ok, tc.ok, got)
			}
			if ok && got.String() != tc.want {
				t.Errorf("resolved %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewSyntheticReference(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ref := NewSyntheticReference(at)
	if ref != TransactionReference("OPAY1714564800000") {
		t.Errorf("unexpected synthetic reference %q", ref)
	}
}

// --- Status Normalization Tests ---

func TestParseGatewayStatus(t *testing.T) {
	cases := map[string]GatewayStatus{
		"PAID":     GatewayStatusPaid,
		"paid":     GatewayStatusPaid,
		" Unpaid ": GatewayStatusUnpaid,
		"FAILED":   GatewayStatusFailed,
		"EXPIRED":  GatewayStatusExpired,
		"REVERSED": GatewayStatusUnknown,
		"":         GatewayStatusUnknown,
	}
	for raw, want := range cases {
		if got := ParseGatewayStatus(raw); got != want {
			t.Errorf("ParseGatewayStatus(%q) = %q, want %q", raw, got, want)
		}
	}

	if !GatewayStatusPaid.Terminal() || !GatewayStatusFailed.Terminal() || !GatewayStatusExpired.Terminal() {
		t.Error("PAID/FAILED/EXPIRED must be terminal")
	}
	if GatewayStatusUnpaid.Terminal() || GatewayStatusUnknown.Terminal() {
		t.Error("UNPAID/UNKNOWN must not be terminal")
	}
}

func TestNormalizeSettlementStatus(t *testing.T) {
	cases := map[string]SettlementStatus{
		"SUCCESS":  SettlementSuccess,
		"Sukses":   SettlementSuccess,
		"BERHASIL": SettlementSuccess,
		"FAILED":   SettlementFailed,
		"gagal":    SettlementFailed,
		"EXPIRED":  SettlementFailed,
		"PENDING":  SettlementPending,
		"Menunggu": SettlementPending,
		"PROSES":   SettlementPending,
		"totally new vocabulary": SettlementPending,
		"": SettlementPending,
	}
	for raw, want := range cases {
		if got := NormalizeSettlementStatus(raw); got != want {
			t.Errorf("NormalizeSettlementStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

// --- Pricing Tests ---

func TestResolvePrice(t *testing.T) {
	prepaid := &Product{Code: "PLN20", Type: ProductTypePrepaid, BasePrice: 20000, TierTwoPrice: 20500, AgentPrice: 20200}
	postpaid := &Product{Code: "BPJS", Type: ProductTypePostpaid, BasePrice: 2500, TierTwoPrice: 3000, AgentPrice: 2700}
	platinum := &AgentProfile{UserID: "u1", Tier: AgentTierPlatinum}
	standard := &AgentProfile{UserID: "u2", Tier: AgentTierStandard}

	t.Run("postpaid always base price", func(t *testing.T) {
		if got := ResolvePrice(postpaid, platinum); got != 2500 {
			t.Errorf("got %d, want 2500", got)
		}
	})
	t.Run("platinum agent gets agent price", func(t *testing.T) {
		if got := ResolvePrice(prepaid, platinum); got != 20200 {
			t.Errorf("got %d, want 20200", got)
		}
	})
	t.Run("standard buyer gets tier-two price", func(t *testing.T) {
		if got := ResolvePrice(prepaid, standard); got != 20500 {
			t.Errorf("got %d, want 20500", got)
		}
		if got := ResolvePrice(prepaid, nil); got != 20500 {
			t.Errorf("nil profile: got %d, want 20500", got)
		}
	})
	t.Run("missing tier-two falls back to base", func(t *testing.T) {
		p := &Product{Code: "X", Type: ProductTypePrepaid, BasePrice: 11000}
		if got := ResolvePrice(p, nil); got != 11000 {
			t.Errorf("got %d, want 11000", got)
		}
	})
	t.Run("nil product resolves to zero", func(t *testing.T) {
		if got := ResolvePrice(nil, platinum); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
	})
}
