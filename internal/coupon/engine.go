package coupon

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCode is returned when the code is unknown or inactive.
	ErrInvalidCode = errors.New("invalid coupon code")
	// ErrExpired is returned when the coupon expiry date has passed.
	ErrExpired = errors.New("coupon expired")
	// ErrBelowMinimum indicates the order total did not meet the coupon requirement.
	ErrBelowMinimum = errors.New("order total below coupon minimum")
	// ErrNotYourCoupon is returned when a targeted coupon is used by another user.
	ErrNotYourCoupon = errors.New("coupon reserved for another user")
	// ErrAlreadyRedeemed indicates the caller has redeemed this coupon before.
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")
	// ErrFirstOrderOnly indicates the coupon is limited to a user's first order.
	ErrFirstOrderOnly = errors.New("coupon valid for first order only")
	// ErrAlreadyApplied indicates the code is already in the applied set.
	ErrAlreadyApplied = errors.New("coupon already applied")
)

// ReasonCode maps a validation error to its wire-level reason string.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyApplied):
		return "ALREADY_APPLIED"
	case errors.Is(err, ErrExpired):
		return "EXPIRED"
	case errors.Is(err, ErrBelowMinimum):
		return "BELOW_MINIMUM"
	case errors.Is(err, ErrNotYourCoupon):
		return "NOT_YOUR_COUPON"
	case errors.Is(err, ErrAlreadyRedeemed):
		return "ALREADY_REDEEMED"
	case errors.Is(err, ErrFirstOrderOnly):
		return "FIRST_ORDER_ONLY"
	default:
		return "INVALID_CODE"
	}
}

// Eligibility carries the caller-specific facts a validation needs beyond the
// coupon itself.
type Eligibility struct {
	Username       string
	HasPlacedOrder bool
	Redeemed       bool
}

// Validate checks a coupon against the current net amount and the caller's
// eligibility. Checks run in a fixed order so the surfaced reason is
// deterministic: active, expiry, ownership, prior redemption, first-order
// gate, minimum spend.
func Validate(c Coupon, now time.Time, net decimal.Decimal, el Eligibility) error {
	if !c.IsActive {
		return ErrInvalidCode
	}
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return ErrExpired
	}
	if c.Targeted() && !c.VisibleTo(el.Username) {
		return ErrNotYourCoupon
	}
	if el.Redeemed {
		return ErrAlreadyRedeemed
	}
	if c.Type == TypeFirstOrder && el.HasPlacedOrder {
		return ErrFirstOrderOnly
	}
	if !c.SkipsMinimum() && net.LessThan(c.MinOrderAmount) {
		return ErrBelowMinimum
	}
	return nil
}
