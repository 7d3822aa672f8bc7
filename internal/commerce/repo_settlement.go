package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// SettlementResult reports one apply of a payment event. Applied is false
// when the order was already settled, which callers must treat as success.
type SettlementResult struct {
	OrderID     string
	MerchantID  string
	OrderNumber string
	CustomerID  *string
	Amount      decimal.Decimal
	Applied     bool
	Order       *OrderView
}

// settlementDB is the slice of the pool the settlement path needs.
type settlementDB interface {
	queryRower
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ApplyPayment marks the order behind a gateway reference as paid, exactly
// once. The transition is a single conditional write; a concurrent apply that
// loses the race sees zero rows affected and reports a no-op, not an error.
func (r *Repo) ApplyPayment(ctx context.Context, reference, gateway string) (*SettlementResult, error) {
	return applyPayment(ctx, r.DB, reference, gateway)
}

func applyPayment(ctx context.Context, db settlementDB, reference, gateway string) (*SettlementResult, error) {
	ord, err := lookupByReference(ctx, db, reference)
	if err != nil {
		return nil, err
	}

	res := &SettlementResult{
		OrderID:     ord.ID,
		MerchantID:  ord.MerchantID,
		OrderNumber: ord.OrderNumber,
		CustomerID:  ord.CustomerID,
		Amount:      ord.TotalAmount,
	}

	// Settlement only defines pending -> paid. Already-paid is the idempotent
	// no-op; any future out-of-band status is left untouched as well.
	if ord.Status != StatusPaid && CanTransition(ord.Status, StatusPaid) {
		ct, err := db.Exec(ctx, `
			UPDATE orders
			SET status=$2, payment_method=$3, updated_at=now()
			WHERE id=$1 AND status <> $2`,
			ord.ID, string(StatusPaid), gateway)
		if err != nil {
			return nil, err
		}
		res.Applied = ct.RowsAffected() > 0
	}

	view, err := fetchOrderView(ctx, db, ord.ID)
	if err != nil {
		if res.Applied {
			// The transition is committed. Failing the call now would turn
			// the gateway's redelivery into a no-op and the settled event
			// would never go out, so the view stays empty instead.
			return res, nil
		}
		return nil, err
	}
	res.Order = view
	return res, nil
}

// lookupByReference resolves a gateway reference against order_number first,
// then id. Callers have historically sent either value as the reference, so
// both keys stay live until a canonical settlement reference exists. Two
// sequential point lookups, deliberately not a unioned query.
func lookupByReference(ctx context.Context, q queryRower, reference string) (*Order, error) {
	ord, err := scanOrderBy(ctx, q, `order_number`, reference)
	if err == nil {
		return ord, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	ord, err = scanOrderBy(ctx, q, `id`, reference)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: order not found for reference %s", ErrNotFound, reference)
	}
	if err != nil {
		return nil, err
	}
	return ord, nil
}

func scanOrderBy(ctx context.Context, q queryRower, column, value string) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := q.QueryRow(ctx, `
		SELECT id, merchant_id, order_number, customer_id, total_amount, status
		FROM orders WHERE `+column+` = $1`, value).Scan(
		&o.ID, &o.MerchantID, &o.OrderNumber, &o.CustomerID, &o.TotalAmount, &status)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}
