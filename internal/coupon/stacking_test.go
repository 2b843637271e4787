package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func tierCatalog() []Coupon {
	expiry := testNow.Add(30 * 24 * time.Hour)
	mk := func(code string, discount int64, typ Type, minimum int64) Coupon {
		return Coupon{
			Code:           code,
			DiscountAmount: decimal.NewFromInt(discount),
			MinOrderAmount: decimal.NewFromInt(minimum),
			ExpiresAt:      expiry,
			Type:           typ,
			IsActive:       true,
		}
	}
	return []Coupon{
		mk("NEPAL100", 100, TypeRegular, 8000),
		mk("ABOVE2500", 50, TypeRegular, 2500),
		mk("ABOVE2000", 30, TypeRegular, 2000),
		mk("FIRST50", 50, TypeFirstOrder, 0),
		mk("SAVE50", 50, TypeRegular, 1000),
	}
}

func evalAt(t *testing.T, net int64, requested []string, placedOrder bool) ([]Applied, []Rejection) {
	t.Helper()
	return Policy{}.Evaluate(EvalInput{
		Net:            decimal.NewFromInt(net),
		Catalog:        tierCatalog(),
		Username:       "asha",
		HasPlacedOrder: placedOrder,
		Requested:      requested,
		Now:            testNow,
	})
}

func appliedCodes(applied []Applied) []string {
	codes := make([]string, 0, len(applied))
	for _, a := range applied {
		codes = append(codes, a.Code)
	}
	return codes
}

func assertCodes(t *testing.T, applied []Applied, want ...string) {
	t.Helper()
	got := appliedCodes(applied)
	if len(got) != len(want) {
		t.Fatalf("applied %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("applied %v, want %v", got, want)
		}
	}
}

func TestTierAutoApplyHighestThresholdWins(t *testing.T) {
	applied, _ := evalAt(t, 2400, nil, true)
	assertCodes(t, applied, "ABOVE2000")

	applied, _ = evalAt(t, 2600, nil, true)
	assertCodes(t, applied, "ABOVE2500")

	applied, _ = evalAt(t, 9000, nil, true)
	assertCodes(t, applied, "NEPAL100")
}

func TestTierRemovedWhenNetDrops(t *testing.T) {
	// The previously applied tier arrives as an explicit request; a lower net
	// strips it and installs the tier that now qualifies.
	applied, _ := evalAt(t, 2100, []string{"ABOVE2500"}, true)
	assertCodes(t, applied, "ABOVE2000")

	applied, _ = evalAt(t, 1500, []string{"ABOVE2000"}, true)
	assertCodes(t, applied)
}

func TestTierMutualExclusion(t *testing.T) {
	// Requesting a lower tier at a high net never yields two tier coupons.
	applied, _ := evalAt(t, 9000, []string{"ABOVE2000"}, true)
	assertCodes(t, applied, "NEPAL100")
}

func TestFirstOrderCoexistsWithTier(t *testing.T) {
	applied, _ := evalAt(t, 9000, nil, false)
	assertCodes(t, applied, "FIRST50", "NEPAL100")
}

func TestFirstOrderNotAppliedAfterFirstOrder(t *testing.T) {
	applied, _ := evalAt(t, 1500, nil, true)
	assertCodes(t, applied)
}

func TestExplicitCouponStacksWithTier(t *testing.T) {
	applied, _ := evalAt(t, 2600, []string{"SAVE50"}, true)
	assertCodes(t, applied, "SAVE50", "ABOVE2500")
	if got := TotalDiscount(applied); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total discount %s, want 100", got)
	}
}

func TestDuplicateRequestRejected(t *testing.T) {
	applied, rejections := evalAt(t, 1500, []string{"SAVE50", "save50"}, true)
	assertCodes(t, applied, "SAVE50")
	if len(rejections) != 1 || rejections[0].Reason != "ALREADY_APPLIED" {
		t.Fatalf("rejections %v", rejections)
	}
}

func TestUnknownCodeRejectedOthersSurvive(t *testing.T) {
	applied, rejections := evalAt(t, 1500, []string{"NOPE", "SAVE50"}, true)
	assertCodes(t, applied, "SAVE50")
	if len(rejections) != 1 || rejections[0].Code != "NOPE" || rejections[0].Reason != "INVALID_CODE" {
		t.Fatalf("rejections %v", rejections)
	}
}

func TestRedeemedExplicitCouponRejected(t *testing.T) {
	applied, rejections := Policy{}.Evaluate(EvalInput{
		Net:            decimal.NewFromInt(1500),
		Catalog:        tierCatalog(),
		Username:       "asha",
		HasPlacedOrder: true,
		Requested:      []string{"SAVE50"},
		Redeemed:       map[string]bool{"SAVE50": true},
		Now:            testNow,
	})
	assertCodes(t, applied)
	if len(rejections) != 1 || rejections[0].Reason != "ALREADY_REDEEMED" {
		t.Fatalf("rejections %v", rejections)
	}
}

func TestTierSkippedWhenMissingFromCatalog(t *testing.T) {
	catalog := tierCatalog()[1:] // drop NEPAL100
	applied, _ := Policy{}.Evaluate(EvalInput{
		Net:            decimal.NewFromInt(9000),
		Catalog:        catalog,
		Username:       "asha",
		HasPlacedOrder: true,
		Now:            testNow,
	})
	// The next qualifying tier takes its place.
	assertCodes(t, applied, "ABOVE2500")
}

func TestEvaluateIsPure(t *testing.T) {
	in := EvalInput{
		Net:            decimal.NewFromInt(2600),
		Catalog:        tierCatalog(),
		Username:       "asha",
		HasPlacedOrder: true,
		Requested:      []string{"SAVE50"},
		Now:            testNow,
	}
	first, _ := Policy{}.Evaluate(in)
	second, _ := Policy{}.Evaluate(in)
	assertCodes(t, first, appliedCodes(second)...)
}
