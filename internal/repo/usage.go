package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CouponUsage reads the redemption ledger: one row per (coupon, user).
// Rows are inserted by Orders.Create inside the order transaction.
type CouponUsage struct {
	Pool *pgxpool.Pool
}

// HasUsed reports whether the user has redeemed the coupon before.
func (r CouponUsage) HasUsed(ctx context.Context, code, userID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM coupon_usage WHERE coupon_code = $1 AND user_id = $2)",
		code, userID).Scan(&exists)
	return exists, err
}
