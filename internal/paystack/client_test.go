package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ORD-1234" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "success", "reference": "ORD-1234"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk_test", 2*time.Second)
	res, err := c.Verify(context.Background(), "ORD-1234")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !res.Success || res.GatewayStatus != "success" || res.Reference != "ORD-1234" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerifyFailedCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "abandoned", "reference": "ORD-9999"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk_test", 2*time.Second)
	res, err := c.Verify(context.Background(), "ORD-9999")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Success {
		t.Fatal("abandoned charge reported as success")
	}
}

func TestVerifyGatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, "sk_test", 500*time.Millisecond)
	_, err := c.Verify(context.Background(), "ORD-1234")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestVerifyGatewayServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "sk_test", 2*time.Second)
	_, err := c.Verify(context.Background(), "ORD-1234")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable on 5xx, got %v", err)
	}
}

func TestInitializeConvertsToSubunits(t *testing.T) {
	var got struct {
		Email     string `json:"email"`
		Amount    int64  `json:"amount"`
		Reference string `json:"reference"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"authorization_url": "https://checkout.example/abc"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk_test", 2*time.Second)
	url, err := c.Initialize(context.Background(), "buyer@example.com",
		decimal.RequireFromString("150.50"), "ORD-4321", "https://shop.example/verify")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if url != "https://checkout.example/abc" {
		t.Fatalf("unexpected redirect url %q", url)
	}
	if got.Amount != 15050 {
		t.Fatalf("amount not converted to subunits: got %d, want 15050", got.Amount)
	}
	if got.Reference != "ORD-4321" {
		t.Fatalf("reference not forwarded: %q", got.Reference)
	}
}
