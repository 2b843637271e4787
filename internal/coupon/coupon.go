package coupon

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type discriminates coupon behaviour during validation and auto-apply.
type Type string

const (
	// TypeRegular is a plain flat-amount coupon gated by minimum order value.
	TypeRegular Type = "REGULAR"
	// TypeFirstOrder is valid only for users with zero completed orders.
	TypeFirstOrder Type = "FIRST_ORDER"
	// TypeSpecialGift is a user-targeted gift; the minimum-order check is skipped.
	TypeSpecialGift Type = "SPECIAL_GIFT"
)

// Coupon is a flat-amount discount voucher. Codes are stored uppercase and
// compared case-insensitively at every boundary.
type Coupon struct {
	ID             uuid.UUID
	Code           string
	DiscountAmount decimal.Decimal
	ExpiresAt      time.Time
	MinOrderAmount decimal.Decimal
	Type           Type
	TargetUsername string
	GiftMessage    string
	IsActive       bool
	CreatedAt      time.Time
}

// NormalizeCode canonicalises a coupon code for lookup and storage.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Targeted reports whether the coupon is restricted to a single user.
func (c Coupon) Targeted() bool {
	return strings.TrimSpace(c.TargetUsername) != ""
}

// VisibleTo reports whether the coupon should be listed for the given
// username. Global coupons are visible to everyone; targeted coupons only to
// their exact owner (trimmed, case-insensitive).
func (c Coupon) VisibleTo(username string) bool {
	if !c.Targeted() {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.TargetUsername), strings.TrimSpace(username))
}

// SkipsMinimum reports whether the minimum-order threshold is ignored for
// this coupon. Targeted and gift coupons bypass it regardless of the stated
// MinOrderAmount.
func (c Coupon) SkipsMinimum() bool {
	return c.Targeted() || c.Type == TypeSpecialGift
}
