package commerce

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

type ItemInput struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

type CreateOrderInput struct {
	MerchantID      string
	OrderNumber     string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	TotalAmount     decimal.Decimal
	Status          Status
	ExternalID      string
	ShippingAddress string
	ShippingMethod  string
	PaymentMethod   string
	Items           []ItemInput
}

const maxOrderNumberAttempts = 5

// CreateOrder runs customer resolution, the order insert, and all item
// inserts in one transaction. A generated order number that collides retries
// the whole transaction with a fresh number; a caller-supplied one that
// collides is a conflict.
func (r *Repo) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderView, error) {
	if in.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: total_amount must not be negative", ErrValidation)
	}
	if in.Status == "" {
		in.Status = StatusPending
	}

	number := in.OrderNumber
	generated := number == ""
	if generated {
		number = orderNumber()
	}

	return allocateOrder(in, generated, number, func(number string) (*OrderView, error) {
		return r.createOrderOnce(ctx, in, number)
	})
}

// allocateOrder drives the create-retry loop around one transactional
// attempt. Only a generated number that hits the order_number index earns a
// fresh number and a full re-run; every other failure maps to the error
// taxonomy and stops.
func allocateOrder(in CreateOrderInput, generated bool, number string, create func(number string) (*OrderView, error)) (*OrderView, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		view, err := create(number)
		if err == nil {
			return view, nil
		}
		if isUniqueViolation(err, "orders_order_number_key") {
			if !generated {
				return nil, fmt.Errorf("%w: order number %s already exists", ErrConflict, number)
			}
			number = orderNumber()
			continue
		}
		if isUniqueViolation(err, "orders_external_id_key") {
			return nil, fmt.Errorf("%w: external id %s already exists", ErrConflict, in.ExternalID)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: order references an unknown product", ErrNotFound)
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: could not allocate a free order number", ErrConflict)
}

func (r *Repo) createOrderOnce(ctx context.Context, in CreateOrderInput, number string) (*OrderView, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	customerID, err := resolveCustomer(ctx, tx, in)
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, merchant_id, order_number, external_id, customer_id,
		                   total_amount, status, shipping_address, shipping_method, payment_method)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,$9,$10)`,
		orderID, in.MerchantID, number, in.ExternalID, customerID,
		in.TotalAmount, string(in.Status), in.ShippingAddress, in.ShippingMethod, in.PaymentMethod,
	)
	if err != nil {
		return nil, err
	}

	if len(in.Items) > 0 {
		b := &pgx.Batch{}
		for _, it := range in.Items {
			b.Queue(`INSERT INTO order_items(id, order_id, product_id, quantity, price)
			         VALUES ($1,$2,$3,$4,$5)`,
				uuid.NewString(), orderID, it.ProductID, it.Quantity, it.Price)
		}
		br := tx.SendBatch(ctx, b)
		for range in.Items {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return nil, err
			}
		}
		if err := br.Close(); err != nil {
			return nil, err
		}
	}

	view, err := fetchOrderView(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return view, nil
}

// resolveCustomer finds or creates at most one customer row per
// (merchant, email). The unique index is the backstop: a concurrent insert
// losing the race falls through to the winner's row.
func resolveCustomer(ctx context.Context, q queryRower, in CreateOrderInput) (*string, error) {
	if in.CustomerID != "" {
		var id string
		err := q.QueryRow(ctx, `SELECT id FROM customers WHERE id=$1 AND merchant_id=$2`,
			in.CustomerID, in.MerchantID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s not found for merchant", ErrValidation, in.CustomerID)
		}
		if err != nil {
			return nil, err
		}
		return &id, nil
	}

	if in.CustomerName == "" {
		return nil, nil // guest order, no customer linkage
	}

	email := in.CustomerEmail
	if email == "" {
		email = fmt.Sprintf("customer_%d@checkout.local", time.Now().UnixNano())
	}

	var id string
	err := q.QueryRow(ctx, `SELECT id FROM customers WHERE merchant_id=$1 AND email=$2`,
		in.MerchantID, email).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO customers(id, merchant_id, email, full_name, phone, lifetime_value)
		VALUES ($1,$2,$3,$4,$5,0)
		ON CONFLICT (merchant_id, email) DO NOTHING
		RETURNING id`,
		uuid.NewString(), in.MerchantID, email, in.CustomerName, in.CustomerPhone).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// lost the race; the row exists now
		if err := q.QueryRow(ctx, `SELECT id FROM customers WHERE merchant_id=$1 AND email=$2`,
			in.MerchantID, email).Scan(&id); err != nil {
			return nil, err
		}
		return &id, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GetOrderStatus reads the committed status, scoped to the merchant.
func (r *Repo) GetOrderStatus(ctx context.Context, merchantID, orderID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 AND merchant_id=$2`,
		orderID, merchantID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// ListOrders returns a page of orders with their customer summary, newest
// first, plus the total count for pagination.
func (r *Repo) ListOrders(ctx context.Context, merchantID string, skip, limit int) ([]OrderListRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.order_number, COALESCE(o.external_id,''), o.customer_id,
		       o.total_amount, o.status, o.created_at,
		       COALESCE(c.id,''), COALESCE(c.email,''), COALESCE(c.full_name,'')
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE o.merchant_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`, merchantID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []OrderListRow
	for rows.Next() {
		var (
			row    OrderListRow
			status string
			cust   CustomerSummary
		)
		if err := rows.Scan(&row.ID, &row.OrderNumber, &row.ExternalID, &row.CustomerID,
			&row.TotalAmount, &status, &row.CreatedAt,
			&cust.ID, &cust.Email, &cust.FullName); err != nil {
			return nil, 0, err
		}
		row.Status = Status(status)
		if cust.ID != "" {
			row.Customer = &cust
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE merchant_id=$1`,
		merchantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ORD- plus four digits matches what the gateway already has on file for the
// source system; collisions are expected and handled by the caller's retry.
func orderNumber() string {
	return fmt.Sprintf("ORD-%d", 1000+rand.Intn(9000))
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
