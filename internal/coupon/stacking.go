package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier binds a tiered auto-apply coupon code to its net-amount threshold.
// Members of the tier family are mutually exclusive: at most one may be in
// the applied set at any time.
type Tier struct {
	Code      string
	Threshold decimal.Decimal
}

// DefaultTiers is the fixed, priority-ordered tier table, highest threshold
// first. The highest satisfied threshold wins.
var DefaultTiers = []Tier{
	{Code: "NEPAL100", Threshold: decimal.NewFromInt(8000)},
	{Code: "ABOVE2500", Threshold: decimal.NewFromInt(2500)},
	{Code: "ABOVE2000", Threshold: decimal.NewFromInt(2000)},
}

// Applied is one entry of the applied-coupon set.
type Applied struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// Rejection reports why a requested code was not applied. Never fatal.
type Rejection struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// EvalInput is the complete state the stacking policy evaluates against.
// Catalog must already be filtered to active coupons visible to the caller.
// Redeemed holds ledger membership for the requested codes.
type EvalInput struct {
	Net            decimal.Decimal
	Catalog        []Coupon
	Username       string
	HasPlacedOrder bool
	Requested      []string
	Redeemed       map[string]bool
	Now            time.Time
}

// Policy decides which coupons end up applied for a given cart state. It is
// a pure function of its input: every cart mutation clears the applied set
// and the caller re-runs Evaluate from scratch, which also re-populates the
// automatic first-order and tiered coupons.
type Policy struct {
	Tiers []Tier
}

func (p Policy) tiers() []Tier {
	if len(p.Tiers) > 0 {
		return p.Tiers
	}
	return DefaultTiers
}

// Evaluate runs the rule pipeline in its fixed order: explicit requests,
// first-order auto-apply, then tier reconciliation. The returned applied set
// holds each code at most once and at most one tier-family member.
func (p Policy) Evaluate(in EvalInput) ([]Applied, []Rejection) {
	byCode := make(map[string]Coupon, len(in.Catalog))
	for _, c := range in.Catalog {
		byCode[NormalizeCode(c.Code)] = c
	}
	tierCodes := make(map[string]bool, len(p.tiers()))
	for _, t := range p.tiers() {
		tierCodes[NormalizeCode(t.Code)] = true
	}

	applied := make([]Applied, 0, len(in.Requested)+2)
	rejections := make([]Rejection, 0)
	inSet := make(map[string]bool)

	// Rule 1: explicit applies, re-validated against the current net amount.
	for _, raw := range in.Requested {
		code := NormalizeCode(raw)
		if code == "" {
			continue
		}
		if inSet[code] {
			rejections = append(rejections, Rejection{Code: code, Reason: ReasonCode(ErrAlreadyApplied)})
			continue
		}
		c, ok := byCode[code]
		if !ok {
			rejections = append(rejections, Rejection{Code: code, Reason: ReasonCode(ErrInvalidCode)})
			continue
		}
		err := Validate(c, in.Now, in.Net, Eligibility{
			Username:       in.Username,
			HasPlacedOrder: in.HasPlacedOrder,
			Redeemed:       in.Redeemed[code],
		})
		if err != nil {
			rejections = append(rejections, Rejection{Code: code, Reason: ReasonCode(err)})
			continue
		}
		applied = append(applied, Applied{Code: code, Discount: c.DiscountAmount})
		inSet[code] = true
	}

	// Rule 2: first-order auto-apply. Independent of the tier family; a
	// first-order coupon and a tiered coupon may coexist.
	if !in.HasPlacedOrder {
		for _, c := range in.Catalog {
			if c.Type != TypeFirstOrder || c.Targeted() {
				continue
			}
			code := NormalizeCode(c.Code)
			if inSet[code] {
				continue
			}
			err := Validate(c, in.Now, in.Net, Eligibility{
				Username:       in.Username,
				HasPlacedOrder: in.HasPlacedOrder,
			})
			if err != nil {
				continue
			}
			applied = append(applied, Applied{Code: code, Discount: c.DiscountAmount})
			inSet[code] = true
			break
		}
	}

	// Rule 3: tier reconciliation. Drop every tier-family member currently in
	// the set, then apply the single highest tier the net amount satisfies.
	kept := applied[:0]
	for _, a := range applied {
		if tierCodes[a.Code] {
			delete(inSet, a.Code)
			continue
		}
		kept = append(kept, a)
	}
	applied = kept

	for _, t := range p.tiers() {
		if in.Net.LessThan(t.Threshold) {
			continue
		}
		code := NormalizeCode(t.Code)
		c, ok := byCode[code]
		if !ok {
			continue
		}
		if Validate(c, in.Now, in.Net, Eligibility{Username: in.Username, HasPlacedOrder: in.HasPlacedOrder}) != nil {
			continue
		}
		applied = append(applied, Applied{Code: code, Discount: c.DiscountAmount})
		inSet[code] = true
		break
	}

	return applied, rejections
}

// TotalDiscount sums the applied set, rounded to two decimals.
func TotalDiscount(applied []Applied) decimal.Decimal {
	total := decimal.Zero
	for _, a := range applied {
		total = total.Add(a.Discount)
	}
	return total.Round(2)
}
