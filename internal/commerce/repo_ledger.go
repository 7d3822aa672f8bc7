package commerce

import (
	"context"

	"github.com/shopspring/decimal"
)

// AddLifetimeValue folds a settled order's amount into the customer's
// lifetime value. Driven asynchronously from order.settled events, never in
// the settlement write path.
func (r *Repo) AddLifetimeValue(ctx context.Context, merchantID, customerID string, amount decimal.Decimal) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE customers
		SET lifetime_value = lifetime_value + $3
		WHERE id = $1 AND merchant_id = $2`,
		customerID, merchantID, amount)
	return err
}
