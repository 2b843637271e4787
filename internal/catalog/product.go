package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UncategorizedName is the fallback category assigned to products when their
// category is deleted.
const UncategorizedName = "Uncategorized"

// BulkRule is the per-product bundle pricing override: Qty units for the
// flat Price.
type BulkRule struct {
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// Product is a storefront item. Stock is decremented transactionally at
// order placement and must never go negative.
type Product struct {
	ID            uuid.UUID
	Name          string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Unit          string
	Stock         int
	Category      string
	Bulk          *BulkRule
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
