package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type CustomerSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// OrderView is the denormalized shape handed back after order creation and
// settlement: the order row joined with its customer summary and a
// human-readable one-line item summary. It is derived, never stored.
type OrderView struct {
	ID              string           `json:"id"`
	OrderNumber     string           `json:"order_number"`
	ExternalID      string           `json:"external_id,omitempty"`
	CustomerID      *string          `json:"customer_id,omitempty"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Status          Status           `json:"status"`
	ShippingAddress string           `json:"shipping_address,omitempty"`
	ShippingMethod  string           `json:"shipping_method,omitempty"`
	PaymentMethod   string           `json:"payment_method,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Customer        *CustomerSummary `json:"customer,omitempty"`
	ItemsCount      int              `json:"items_count"`
	ProductName     string           `json:"product_name"`
}

type OrderListRow struct {
	ID          string           `json:"id"`
	OrderNumber string           `json:"order_number"`
	ExternalID  string           `json:"external_id,omitempty"`
	CustomerID  *string          `json:"customer_id,omitempty"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Customer    *CustomerSummary `json:"customer,omitempty"`
}

// ProductSummary renders the one-line item summary for an order view.
func ProductSummary(itemsCount int, firstProduct string) string {
	switch {
	case itemsCount == 0:
		return "No items"
	case itemsCount == 1:
		return firstProduct
	default:
		return fmt.Sprintf("%s (+%d more)", firstProduct, itemsCount-1)
	}
}

// queryRower is satisfied by both pgx.Tx and *pgxpool.Pool, so the view can
// be read inside the creating transaction or after the fact.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func fetchOrderView(ctx context.Context, q queryRower, orderID string) (*OrderView, error) {
	var (
		v      OrderView
		status string
		cust   CustomerSummary
		first  string
	)
	err := q.QueryRow(ctx, `
		SELECT o.id, o.order_number, COALESCE(o.external_id,''), o.customer_id,
		       o.total_amount, o.status,
		       COALESCE(o.shipping_address,''), COALESCE(o.shipping_method,''), COALESCE(o.payment_method,''),
		       o.created_at,
		       COALESCE(c.id,''), COALESCE(c.email,''), COALESCE(c.full_name,''),
		       COUNT(oi.id), COALESCE(MIN(p.name),'')
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.id = $1
		GROUP BY o.id, c.id`, orderID).Scan(
		&v.ID, &v.OrderNumber, &v.ExternalID, &v.CustomerID,
		&v.TotalAmount, &status,
		&v.ShippingAddress, &v.ShippingMethod, &v.PaymentMethod,
		&v.CreatedAt,
		&cust.ID, &cust.Email, &cust.FullName,
		&v.ItemsCount, &first,
	)
	if err != nil {
		return nil, err
	}
	v.Status = Status(status)
	if cust.ID != "" {
		v.Customer = &cust
	}
	v.ProductName = ProductSummary(v.ItemsCount, first)
	return &v, nil
}
