package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/catalog"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/coupon"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/events"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/order"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/pricing"
)

// mismatchTolerance absorbs client-side float rounding when comparing
// declared amounts against the recomputed ones.
var mismatchTolerance = decimal.NewFromFloat(0.01)

// ProductStore loads catalog rows for the recompute.
type ProductStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

// OrderStore persists the order atomically: conditional stock decrements,
// order and item inserts, and ledger writes happen in one transaction.
// Insufficient stock surfaces as order.ErrInsufficientStock.
type OrderStore interface {
	Create(ctx context.Context, draft order.Draft) (order.Order, error)
}

// Input is the raw client submission. Totals the client computed are never
// trusted; declared discount and delivery are only checked for agreement.
type Input struct {
	Items          []InputItem    `json:"items" validate:"required,min=1,dive"`
	Discount       *float64       `json:"discount" validate:"omitempty,gte=0"`
	CouponCodes    []string       `json:"couponCodes"`
	DeliveryCharge *float64       `json:"deliveryCharge" validate:"omitempty,gte=0"`
	Location       order.Location `json:"location" validate:"required"`
	MobileNumber   string         `json:"mobileNumber"`
	Username       string         `json:"username"`
}

// InputItem is a client-claimed order line.
type InputItem struct {
	ID       string  `json:"id" validate:"required,uuid"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Quantity int     `json:"quantity" validate:"required,gte=1"`
}

// Output is the creation acknowledgement. CouponCodes echoes what actually
// applied after the recompute, which may differ from what was requested.
type Output struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	CouponCodes []string  `json:"couponCodes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service performs the authoritative recompute and order placement.
type Service struct {
	Products ProductStore
	Orders   OrderStore
	Coupons  *coupon.Service
	Events   *events.Bus
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func reject(code, message string) error {
	return common.NewAppError(code, message, http.StatusUnprocessableEntity, nil)
}

// Create re-derives every monetary figure from the raw item list and the
// coupon catalog, rejects submissions whose declared amounts disagree beyond
// the rounding tolerance, and persists the order in one transaction.
func (s *Service) Create(ctx context.Context, identity common.Identity, in Input) (Output, error) {
	if s == nil || s.Products == nil || s.Orders == nil || s.Coupons == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if identity.UserID == "" {
		return Output{}, common.NewAppError("UNAUTHORIZED", "authentication required", http.StatusUnauthorized, nil)
	}
	if len(in.Items) == 0 {
		return Output{}, reject("BAD_REQUEST", "items are required")
	}

	lines := make([]pricing.Line, 0, len(in.Items))
	orderItems := make([]order.Item, 0, len(in.Items))
	for _, it := range in.Items {
		id, err := uuid.Parse(it.ID)
		if err != nil {
			return Output{}, reject("UNKNOWN_PRODUCT", fmt.Sprintf("invalid product id %q", it.ID))
		}
		product, err := s.Products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return Output{}, reject("UNKNOWN_PRODUCT", fmt.Sprintf("product %s not found", it.ID))
			}
			return Output{}, err
		}
		claimed := decimal.NewFromFloat(it.Price).Round(2)
		if claimed.Sub(product.Price).Abs().GreaterThan(mismatchTolerance) {
			return Output{}, reject("PRICE_MISMATCH", fmt.Sprintf("price for %s does not match catalog", product.Name))
		}
		line := pricing.Line{UnitPrice: product.Price, Qty: it.Quantity}
		if product.Bulk != nil {
			line.Bulk = &pricing.BulkRule{Qty: product.Bulk.Qty, Price: product.Bulk.Price}
		}
		lines = append(lines, line)
		orderItems = append(orderItems, order.Item{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Qty:       it.Quantity,
		})
	}

	base := pricing.Compute(lines, decimal.Zero)
	resolution, err := s.Coupons.Resolve(ctx, base.Net, in.CouponCodes, identity.UserID, identity.Username)
	if err != nil {
		return Output{}, err
	}

	if in.Discount != nil {
		declared := decimal.NewFromFloat(*in.Discount).Round(2)
		if declared.Sub(resolution.Discount).Abs().GreaterThan(mismatchTolerance) {
			return Output{}, reject("DISCOUNT_MISMATCH", "declared discount does not match coupon rules")
		}
	}
	delivery := pricing.DeliveryCharge(base.Net)
	if in.DeliveryCharge != nil {
		declared := decimal.NewFromFloat(*in.DeliveryCharge).Round(2)
		if declared.Sub(delivery).Abs().GreaterThan(mismatchTolerance) {
			return Output{}, reject("DELIVERY_MISMATCH", "declared delivery charge does not match tier table")
		}
	}

	// Persisted identity: finalAmount = totalAmount - discountApplied + deliveryCharge.
	discountApplied := pricing.Round(base.BulkDiscount.Add(resolution.Discount))
	finalAmount := pricing.Round(base.Subtotal.Sub(discountApplied).Add(delivery))

	appliedCodes := make([]string, 0, len(resolution.Applied))
	for _, a := range resolution.Applied {
		appliedCodes = append(appliedCodes, a.Code)
	}

	now := s.now()
	username := identity.Username
	if username == "" {
		username = in.Username
	}
	draft := order.Draft{Order: order.Order{
		ID:              order.NewID(now),
		UserID:          identity.UserID,
		Username:        username,
		MobileNumber:    in.MobileNumber,
		Items:           orderItems,
		TotalAmount:     base.Subtotal,
		DiscountApplied: discountApplied,
		DeliveryCharge:  delivery,
		FinalAmount:     finalAmount,
		CouponCodes:     appliedCodes,
		Location:        in.Location,
		Status:          order.StatusPending,
		CreatedAt:       now,
	}}

	created, err := s.Orders.Create(ctx, draft)
	if err != nil {
		if errors.Is(err, order.ErrInsufficientStock) {
			return Output{}, common.NewAppError("INSUFFICIENT_STOCK", "insufficient stock for one or more items", http.StatusConflict, err)
		}
		return Output{}, err
	}

	if s.Events != nil {
		_ = s.Events.Emit(ctx, events.TopicOrderCreated, events.Payload{
			"orderId":  created.ID,
			"userId":   created.UserID,
			"username": created.Username,
			"total":    created.FinalAmount.InexactFloat64(),
			"coupons":  created.CouponCodes,
		})
	}

	return Output{
		ID:          created.ID,
		Status:      string(created.Status),
		CouponCodes: created.CouponCodes,
		CreatedAt:   created.CreatedAt,
	}, nil
}
