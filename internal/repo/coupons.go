package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/coupon"
)

// Coupons persists coupon rows in Postgres. Codes are stored uppercase; the
// service normalises before calling in.
type Coupons struct {
	Pool *pgxpool.Pool
}

const couponColumns = `id, code, discount_amount, expires_at, min_order_amount, type, target_username, gift_message, is_active, created_at`

func scanCoupon(row pgx.Row) (coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountAmount, &c.ExpiresAt, &c.MinOrderAmount,
		&c.Type, &c.TargetUsername, &c.GiftMessage, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coupon.Coupon{}, coupon.ErrNotFound
		}
		return coupon.Coupon{}, err
	}
	return c, nil
}

// GetByCode loads one coupon by its canonical code.
func (r Coupons) GetByCode(ctx context.Context, code string) (coupon.Coupon, error) {
	row := r.Pool.QueryRow(ctx, "SELECT "+couponColumns+" FROM coupons WHERE code = $1", code)
	return scanCoupon(row)
}

// ListActive returns every active coupon, targeted ones included; visibility
// filtering happens in the service.
func (r Coupons) ListActive(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.Pool.Query(ctx, "SELECT "+couponColumns+" FROM coupons WHERE is_active ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCoupons(rows)
}

// ListAll returns every coupon for the staff dashboard.
func (r Coupons) ListAll(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.Pool.Query(ctx, "SELECT "+couponColumns+" FROM coupons ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCoupons(rows)
}

func collectCoupons(rows pgx.Rows) ([]coupon.Coupon, error) {
	var coupons []coupon.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// Create inserts a coupon.
func (r Coupons) Create(ctx context.Context, c coupon.Coupon) (coupon.Coupon, error) {
	row := r.Pool.QueryRow(ctx, `
		INSERT INTO coupons (code, discount_amount, expires_at, min_order_amount, type, target_username, gift_message, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+couponColumns,
		c.Code, c.DiscountAmount, c.ExpiresAt, c.MinOrderAmount, c.Type, c.TargetUsername, c.GiftMessage, c.IsActive)
	return scanCoupon(row)
}

// Update rewrites a coupon identified by code.
func (r Coupons) Update(ctx context.Context, c coupon.Coupon) (coupon.Coupon, error) {
	row := r.Pool.QueryRow(ctx, `
		UPDATE coupons
		SET discount_amount = $2, expires_at = $3, min_order_amount = $4, type = $5,
		    target_username = $6, gift_message = $7, is_active = $8
		WHERE code = $1
		RETURNING `+couponColumns,
		c.Code, c.DiscountAmount, c.ExpiresAt, c.MinOrderAmount, c.Type, c.TargetUsername, c.GiftMessage, c.IsActive)
	return scanCoupon(row)
}

// Delete removes a coupon by code.
func (r Coupons) Delete(ctx context.Context, code string) error {
	tag, err := r.Pool.Exec(ctx, "DELETE FROM coupons WHERE code = $1", code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}
