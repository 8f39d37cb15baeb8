//go:build !integration

package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
)

func TestTripayStatusAPI_CheckStatus(t *testing.T) {
	t.Run("normalizes the provider status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("reference"); got != "TABC1234567890" {
				t.Errorf("reference query = %q", got)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
				t.Errorf("authorization = %q", got)
			}
			w.Write([]byte(`{"success":true,"message":"ok","data":{"reference":"TABC1234567890","status":"PAID","serial_number":"SN-9"}}`))
		}))
		defer srv.Close()

		api, err := NewTripayStatusAPI(srv.URL, "key-1")
		if err != nil {
			t.Fatalf("constructor failed: %v", err)
		}
		res, err := api.CheckStatus(context.Background(), "TABC1234567890", "", "")
		if err != nil {
			t.Fatalf("CheckStatus failed: %v", err)
		}
		if res.Status != model.GatewayStatusPaid || res.SerialNumber != "SN-9" {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("unknown provider vocabulary stays pending", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"message":"ok","data":{"status":"ON_HOLD"}}`))
		}))
		defer srv.Close()

		api, _ := NewTripayStatusAPI(srv.URL, "key-1")
		res, err := api.CheckStatus(context.Background(), "TABC1234567890", "", "")
		if err != nil {
			t.Fatalf("CheckStatus failed: %v", err)
		}
		if res.Status != model.GatewayStatusUnknown {
			t.Errorf("status = %v, want UNKNOWN", res.Status)
		}
		if res.RawStatus != "ON_HOLD" {
			t.Errorf("raw status lost: %q", res.RawStatus)
		}
	})

	t.Run("rejected lookup surfaces as a gateway error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"message":"invalid reference"}`))
		}))
		defer srv.Close()

		api, _ := NewTripayStatusAPI(srv.URL, "key-1")
		if _, err := api.CheckStatus(context.Background(), "TNOPE", "", ""); !errors.Is(err, domain.ErrGatewayRejected) {
			t.Errorf("expected ErrGatewayRejected, got %v", err)
		}
	})
}
