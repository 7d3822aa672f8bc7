package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mialabs/commerce-core/internal/commerce"
	kafkax "github.com/mialabs/commerce-core/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, in commerce.CreateOrderInput) (*commerce.OrderView, error)
	GetOrderStatus(ctx context.Context, merchantID, orderID string) (commerce.Status, error)
	ListOrders(ctx context.Context, merchantID string, skip, limit int) ([]commerce.OrderListRow, int, error)
}

// StatusCache caches order status per merchant. The cache answers with the
// same scoping the database would, so a hit can never cross tenants.
type StatusCache interface {
	GetStatus(ctx context.Context, merchantID, orderID string) (string, bool)
	SetStatus(ctx context.Context, merchantID, orderID, value string)
}

type OrdersHandler struct {
	Store    OrderStore
	Producer *kafkax.Producer
	Cache    StatusCache
	Validate *validator.Validate
	Service  string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
}

type listOrdersResp struct {
	Orders []commerce.OrderListRow `json:"orders"`
	Total  int                     `json:"total"`
	Skip   int                     `json:"skip"`
	Limit  int                     `json:"limit"`
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationMessage(err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	in := commerce.CreateOrderInput{
		MerchantID:      MerchantID(ctx),
		OrderNumber:     req.OrderNumber,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		TotalAmount:     *req.TotalAmount,
		Status:          commerce.Status(req.Status),
		ExternalID:      req.ExternalID,
		ShippingAddress: req.ShippingAddress,
		ShippingMethod:  req.ShippingMethod,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, commerce.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	view, err := h.Store.CreateOrder(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, in.MerchantID, view.ID, view.Status)
	h.publishCreated(r, in.MerchantID, view)

	writeJSON(w, http.StatusCreated, view)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	merchantID := MerchantID(ctx)
	if s, ok := h.Cache.GetStatus(ctx, merchantID, orderID); ok {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	status, err := h.Store.GetOrderStatus(ctx, merchantID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, merchantID, orderID, status)
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit == 0 {
		limit = 100
	}

	rows, total, err := h.Store.ListOrders(ctx, MerchantID(ctx), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []commerce.OrderListRow{}
	}
	writeJSON(w, http.StatusOK, listOrdersResp{Orders: rows, Total: total, Skip: skip, Limit: limit})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, merchantID, orderID string, status commerce.Status) {
	h.Cache.SetStatus(ctx, merchantID, orderID, fmt.Sprintf(`{"status":%q}`, status))
}

func (h *OrdersHandler) publishCreated(r *http.Request, merchantID string, view *commerce.OrderView) {
	ev := commerce.Envelope{
		EventID:       uuid.NewString(),
		EventType:     commerce.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: view.ID,
		Payload: kafkax.MustMarshal(commerce.OrderCreatedPayload{
			OrderID:     view.ID,
			MerchantID:  merchantID,
			OrderNumber: view.OrderNumber,
			CustomerID:  view.CustomerID,
			TotalAmount: view.TotalAmount,
			ItemsCount:  view.ItemsCount,
		}),
	}
	h.Producer.Publish(commerce.PartitionKey(view.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(commerce.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "invalid request"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing required field: %s", fe.Field())
	case "total_matches_items":
		return "total_amount does not match the sum of item prices"
	case "non_negative":
		return "total_amount must not be negative"
	default:
		return fmt.Sprintf("invalid field: %s", fe.Field())
	}
}
