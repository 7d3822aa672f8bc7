package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mialabs/commerce-core/internal/commerce"
	kafkax "github.com/mialabs/commerce-core/internal/kafka"
	"github.com/mialabs/commerce-core/internal/paystack"
	kafkago "github.com/segmentio/kafka-go"
)

type SettlementStore interface {
	ApplyPayment(ctx context.Context, reference, gateway string) (*commerce.SettlementResult, error)
}

type GatewayVerifier interface {
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

// PaymentsHandler is the reconciliation surface: the gateway pushes webhooks
// at it and the storefront polls it after the checkout redirect. Both paths
// end in the same idempotent apply.
type PaymentsHandler struct {
	Store         SettlementStore
	Gateway       GatewayVerifier
	Producer      *kafkax.Producer
	Cache         StatusCache
	WebhookSecret string
	Service       string
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Post("/payments/webhook", h.webhook)
	r.Post("/payments/verify", h.verify)
}

type webhookEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	// Authenticate before parsing anything. The signature covers the exact
	// raw bytes; a single flipped byte must fail here.
	sig := r.Header.Get(paystack.SignatureHeader)
	if !paystack.VerifySignature(h.WebhookSecret, body, sig) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if ev.EventType != "charge.success" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Store.ApplyPayment(ctx, ev.Data.Reference, paystack.Gateway)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			// Possibly a webhook racing the order-creation commit. Answer 200
			// so the gateway does not hammer us; it has its own redelivery.
			log.Printf("webhook: no order for reference %s", ev.Data.Reference)
			writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
			return
		}
		// Not applied; a redelivery will retry.
		log.Printf("webhook apply reference=%s: %v", ev.Data.Reference, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "webhook processing failed"})
		return
	}

	if res.Applied {
		h.settled(ctx, r, res)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type verifyReq struct {
	Reference string `json:"reference"`
}

func (h *PaymentsHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required field: reference"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vr, err := h.Gateway.Verify(ctx, req.Reference)
	if err != nil {
		if errors.Is(err, paystack.ErrUnavailable) {
			// Transient; the caller may retry and the webhook remains the
			// eventual source of truth. No local state changed.
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment verification failed"})
			return
		}
		writeError(w, err)
		return
	}
	if !vr.Success {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment verification failed"})
		return
	}

	reference := vr.Reference
	if reference == "" {
		reference = req.Reference
	}
	res, err := h.Store.ApplyPayment(ctx, reference, paystack.Gateway)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Applied {
		h.settled(ctx, r, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": res.Order})
}

// settled runs the post-apply side effects for a first-time settlement:
// refresh the status cache and publish order.settled.
func (h *PaymentsHandler) settled(ctx context.Context, r *http.Request, res *commerce.SettlementResult) {
	h.Cache.SetStatus(ctx, res.MerchantID, res.OrderID, fmt.Sprintf(`{"status":%q}`, commerce.StatusPaid))

	ev := commerce.Envelope{
		EventID:       uuid.NewString(),
		EventType:     commerce.EventOrderSettled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: res.OrderID,
		Payload: kafkax.MustMarshal(commerce.OrderSettledPayload{
			OrderID:     res.OrderID,
			MerchantID:  res.MerchantID,
			OrderNumber: res.OrderNumber,
			CustomerID:  res.CustomerID,
			Amount:      res.Amount,
			Gateway:     paystack.Gateway,
		}),
	}
	h.Producer.Publish(commerce.PartitionKey(res.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(commerce.EventOrderSettled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
