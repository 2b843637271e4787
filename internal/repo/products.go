package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/catalog"
)

// Products persists catalog rows in Postgres.
type Products struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, name, price, original_price, unit, stock, category, bulk_qty, bulk_price, created_at, updated_at`

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var (
		p             catalog.Product
		originalPrice decimal.NullDecimal
		bulkQty       *int32
		bulkPrice     decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &originalPrice, &p.Unit, &p.Stock, &p.Category, &bulkQty, &bulkPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, err
	}
	if originalPrice.Valid {
		v := originalPrice.Decimal
		p.OriginalPrice = &v
	}
	if bulkQty != nil && *bulkQty > 0 && bulkPrice.Valid {
		p.Bulk = &catalog.BulkRule{Qty: int(*bulkQty), Price: bulkPrice.Decimal}
	}
	return p, nil
}

// List returns products matching the filter plus the unpaginated count.
func (r Products) List(ctx context.Context, f catalog.ListFilter) ([]catalog.Product, int64, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if strings.TrimSpace(f.Category) != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if strings.TrimSpace(f.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(f.Search)+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT count(*) FROM products"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY name LIMIT $%d OFFSET $%d",
		productColumns, clause, len(args)-1, len(args))
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]catalog.Product, 0, f.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// GetByID loads one product.
func (r Products) GetByID(ctx context.Context, id uuid.UUID) (catalog.Product, error) {
	row := r.Pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

// Create inserts a product and returns the stored row.
func (r Products) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	var bulkQty *int32
	var bulkPrice decimal.NullDecimal
	if p.Bulk != nil {
		q := int32(p.Bulk.Qty)
		bulkQty = &q
		bulkPrice = decimal.NullDecimal{Decimal: p.Bulk.Price, Valid: true}
	}
	var originalPrice decimal.NullDecimal
	if p.OriginalPrice != nil {
		originalPrice = decimal.NullDecimal{Decimal: *p.OriginalPrice, Valid: true}
	}
	row := r.Pool.QueryRow(ctx, `
		INSERT INTO products (name, price, original_price, unit, stock, category, bulk_qty, bulk_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		p.Name, p.Price, originalPrice, p.Unit, p.Stock, p.Category, bulkQty, bulkPrice)
	return scanProduct(row)
}

// Update rewrites a product's mutable fields.
func (r Products) Update(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	var bulkQty *int32
	var bulkPrice decimal.NullDecimal
	if p.Bulk != nil {
		q := int32(p.Bulk.Qty)
		bulkQty = &q
		bulkPrice = decimal.NullDecimal{Decimal: p.Bulk.Price, Valid: true}
	}
	var originalPrice decimal.NullDecimal
	if p.OriginalPrice != nil {
		originalPrice = decimal.NullDecimal{Decimal: *p.OriginalPrice, Valid: true}
	}
	row := r.Pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, price = $3, original_price = $4, unit = $5, stock = $6,
		    category = $7, bulk_qty = $8, bulk_price = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Price, originalPrice, p.Unit, p.Stock, p.Category, bulkQty, bulkPrice)
	return scanProduct(row)
}

// Delete removes a product by id.
func (r Products) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ListCategories returns the distinct category names in use.
func (r Products) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, "SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReassignCategory moves every product from one category to another.
func (r Products) ReassignCategory(ctx context.Context, from, to string) (int64, error) {
	tag, err := r.Pool.Exec(ctx, "UPDATE products SET category = $2, updated_at = now() WHERE category = $1", from, to)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
