package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/order"
)

// Orders persists orders in Postgres. Creation runs in a single transaction
// covering the conditional stock decrements, the order and item inserts, and
// the coupon-usage ledger writes: any failure rolls the whole thing back.
type Orders struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, user_id, username, mobile_number, total_amount, discount_applied,
	delivery_charge, final_amount, coupon_codes, location_lat, location_lng, location_address, status, created_at`

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Username, &o.MobileNumber, &o.TotalAmount, &o.DiscountApplied,
		&o.DeliveryCharge, &o.FinalAmount, &o.CouponCodes, &o.Location.Lat, &o.Location.Lng,
		&o.Location.Address, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

// Create persists the draft atomically. Stock is decremented with a
// conditional update so two concurrent orders can never drive it negative;
// a zero-row update means insufficient stock and aborts the transaction.
func (r Orders) Create(ctx context.Context, draft order.Draft) (order.Order, error) {
	o := draft.Order
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return order.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, it := range o.Items {
		tag, err := tx.Exec(ctx,
			"UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2",
			it.ProductID, it.Qty)
		if err != nil {
			return order.Order{}, err
		}
		if tag.RowsAffected() == 0 {
			return order.Order{}, fmt.Errorf("product %s: %w", it.ProductID, order.ErrInsufficientStock)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, username, mobile_number, total_amount, discount_applied,
			delivery_charge, final_amount, coupon_codes, location_lat, location_lng, location_address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.UserID, o.Username, o.MobileNumber, o.TotalAmount, o.DiscountApplied,
		o.DeliveryCharge, o.FinalAmount, o.CouponCodes, o.Location.Lat, o.Location.Lng,
		o.Location.Address, o.Status, o.CreatedAt); err != nil {
		return order.Order{}, err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, unit_price, qty)
			VALUES ($1, $2, $3, $4, $5)`,
			o.ID, it.ProductID, it.Name, it.UnitPrice, it.Qty); err != nil {
			return order.Order{}, err
		}
	}

	for _, code := range o.CouponCodes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO coupon_usage (coupon_code, user_id)
			VALUES ($1, $2)
			ON CONFLICT (coupon_code, user_id) DO NOTHING`,
			code, o.UserID); err != nil {
			return order.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

// CountForUser reports the number of orders a user has placed, for the
// first-order coupon gate.
func (r Orders) CountForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, "SELECT count(*) FROM orders WHERE user_id = $1", userID).Scan(&count)
	return count, err
}

// ListForUser returns a user's orders newest first, plus the total count.
func (r Orders) ListForUser(ctx context.Context, userID string, limit, offset int32) ([]order.Order, int64, error) {
	total, err := r.CountForUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.Pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders, err := r.collectWithItems(ctx, rows)
	return orders, total, err
}

// GetForUser loads one order scoped to its owner.
func (r Orders) GetForUser(ctx context.Context, id, userID string) (order.Order, error) {
	row := r.Pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1 AND user_id = $2", id, userID)
	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}
	o.Items, err = r.loadItems(ctx, o.ID)
	return o, err
}

// Get loads one order without ownership scoping, for staff.
func (r Orders) Get(ctx context.Context, id string) (order.Order, error) {
	row := r.Pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}
	o.Items, err = r.loadItems(ctx, o.ID)
	return o, err
}

// ListAll returns every order newest first, for the staff dashboard.
func (r Orders) ListAll(ctx context.Context, limit, offset int32) ([]order.Order, int64, error) {
	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT count(*) FROM orders").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.Pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders, err := r.collectWithItems(ctx, rows)
	return orders, total, err
}

// UpdateStatus mutates the lifecycle state; monetary fields stay immutable.
func (r Orders) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	row := r.Pool.QueryRow(ctx,
		"UPDATE orders SET status = $2 WHERE id = $1 RETURNING "+orderColumns, id, status)
	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}
	o.Items, err = r.loadItems(ctx, o.ID)
	return o, err
}

func (r Orders) collectWithItems(ctx context.Context, rows pgx.Rows) ([]order.Order, error) {
	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r Orders) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.Pool.Query(ctx,
		"SELECT product_id, name, unit_price, qty FROM order_items WHERE order_id = $1", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
