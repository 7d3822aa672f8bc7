package commerce

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderSettled = "OrderSettled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string          `json:"order_id"`
	MerchantID  string          `json:"merchant_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  *string         `json:"customer_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemsCount  int             `json:"items_count"`
}

type OrderSettledPayload struct {
	OrderID     string          `json:"order_id"`
	MerchantID  string          `json:"merchant_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  *string         `json:"customer_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Gateway     string          `json:"gateway"`
}
