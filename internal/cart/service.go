package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/catalog"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/coupon"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/pricing"
)

// ErrInvalidInput is returned when the quote payload is malformed.
var ErrInvalidInput = errors.New("invalid input")

// ProductGetter loads catalog rows for quoting. Prices and bulk rules come
// from the catalog, never from the client.
type ProductGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

// Service computes cart previews. The cart itself is client-owned and
// ephemeral; this service is stateless and re-derives everything per call,
// which is what makes the preview and the order-time recompute agree.
type Service struct {
	Products ProductGetter
	Coupons  *coupon.Service
}

// Item is one requested cart line.
type Item struct {
	ProductID uuid.UUID
	Qty       int
}

// QuotedLine reports per-line pricing for display.
type QuotedLine struct {
	ProductID    uuid.UUID       `json:"productId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Qty          int             `json:"qty"`
	BulkDiscount decimal.Decimal `json:"bulkDiscount"`
}

// Quote is the full preview for a cart state.
type Quote struct {
	Lines      []QuotedLine       `json:"lines"`
	Summary    pricing.Summary    `json:"summary"`
	Applied    []coupon.Applied   `json:"appliedCoupons"`
	Rejections []coupon.Rejection `json:"rejectedCoupons"`
}

// Evaluate produces a preview for the given items and requested coupon
// codes. Coupon rejections are part of the result, not errors.
func (s *Service) Evaluate(ctx context.Context, userID, username string, items []Item, codes []string) (Quote, error) {
	if s == nil || s.Products == nil || s.Coupons == nil {
		return Quote{}, errors.New("cart service not configured")
	}
	if len(items) == 0 {
		return Quote{}, fmt.Errorf("items are required: %w", ErrInvalidInput)
	}

	lines := make([]pricing.Line, 0, len(items))
	quoted := make([]QuotedLine, 0, len(items))
	for _, it := range items {
		if it.Qty < 1 {
			return Quote{}, fmt.Errorf("qty must be at least 1: %w", ErrInvalidInput)
		}
		product, err := s.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return Quote{}, fmt.Errorf("unknown product %s: %w", it.ProductID, ErrInvalidInput)
			}
			return Quote{}, err
		}
		if it.Qty > product.Stock {
			return Quote{}, fmt.Errorf("qty exceeds stock for %s: %w", product.Name, ErrInvalidInput)
		}
		line := pricing.Line{UnitPrice: product.Price, Qty: it.Qty}
		if product.Bulk != nil {
			line.Bulk = &pricing.BulkRule{Qty: product.Bulk.Qty, Price: product.Bulk.Price}
		}
		lines = append(lines, line)
		quoted = append(quoted, QuotedLine{
			ProductID:    product.ID,
			Name:         product.Name,
			UnitPrice:    product.Price,
			Qty:          it.Qty,
			BulkDiscount: pricing.BulkDiscount(line),
		})
	}

	// Net amount first; the stacking policy evaluates thresholds against it.
	base := pricing.Compute(lines, decimal.Zero)
	resolution, err := s.Coupons.Resolve(ctx, base.Net, codes, userID, username)
	if err != nil {
		return Quote{}, err
	}

	summary := pricing.Compute(lines, resolution.Discount)
	return Quote{
		Lines:      quoted,
		Summary:    summary,
		Applied:    resolution.Applied,
		Rejections: resolution.Rejections,
	}, nil
}
