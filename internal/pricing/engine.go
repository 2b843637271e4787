package pricing

import "github.com/shopspring/decimal"

// Amounts are rounded half away from zero to two decimal places at every
// computation step so the client preview and the server recompute agree
// digit for digit.
const moneyScale = 2

// BulkRule describes per-product bundle pricing: buying Qty units costs the
// flat Price instead of Qty times the unit price.
type BulkRule struct {
	Qty   int
	Price decimal.Decimal
}

// Line is a cart line used for pricing calculation.
type Line struct {
	UnitPrice decimal.Decimal
	Qty       int
	Bulk      *BulkRule
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal     decimal.Decimal
	BulkDiscount decimal.Decimal
	Net          decimal.Decimal
	Discount     decimal.Decimal
	Delivery     decimal.Decimal
	Total        decimal.Decimal
}

// Round normalises a monetary amount to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// BulkDiscount computes the bundle saving for a single line: the regular cost
// minus the bundle-optimised cost (full bundles at the bundle price, the
// remainder at the unit price). Never negative; zero without a rule.
func BulkDiscount(line Line) decimal.Decimal {
	if line.Bulk == nil || line.Bulk.Qty <= 0 || line.Qty <= 0 {
		return decimal.Zero
	}
	qty := decimal.NewFromInt(int64(line.Qty))
	regular := line.UnitPrice.Mul(qty)

	bundles := int64(line.Qty / line.Bulk.Qty)
	remainder := int64(line.Qty % line.Bulk.Qty)
	optimised := line.Bulk.Price.Mul(decimal.NewFromInt(bundles)).
		Add(line.UnitPrice.Mul(decimal.NewFromInt(remainder)))

	saving := Round(regular.Sub(optimised))
	if saving.IsNegative() {
		return decimal.Zero
	}
	return saving
}

// Delivery charge tiers keyed on the net amount (after bulk discount, before
// coupon discounts). Boundary-exact: 1000 and 3000 fall in the middle tier.
var (
	deliveryFreeAbove = decimal.NewFromInt(3000)
	deliveryMidFrom   = decimal.NewFromInt(1000)
	deliveryMid       = decimal.NewFromInt(25)
	deliveryFar       = decimal.NewFromInt(50)
)

// DeliveryCharge returns the delivery fee for the given net amount.
func DeliveryCharge(net decimal.Decimal) decimal.Decimal {
	switch {
	case net.GreaterThan(deliveryFreeAbove):
		return decimal.Zero
	case net.GreaterThanOrEqual(deliveryMidFrom):
		return deliveryMid
	default:
		return deliveryFar
	}
}

// Compute derives the full pricing summary for a cart given the coupon
// discount already resolved by the stacking policy. The displayed total is
// floored at zero; persisted components keep their exact values.
func Compute(lines []Line, couponDiscount decimal.Decimal) Summary {
	subtotal := decimal.Zero
	bulk := decimal.Zero
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
		bulk = bulk.Add(BulkDiscount(line))
	}
	subtotal = Round(subtotal)
	net := Round(subtotal.Sub(bulk))
	if net.IsNegative() {
		net = decimal.Zero
	}

	discount := Round(couponDiscount)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	delivery := DeliveryCharge(net)

	total := Round(net.Sub(discount).Add(delivery))
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Summary{
		Subtotal:     subtotal,
		BulkDiscount: bulk,
		Net:          net,
		Discount:     discount,
		Delivery:     delivery,
		Total:        total,
	}
}
