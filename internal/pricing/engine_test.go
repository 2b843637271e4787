package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func money(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBulkDiscountBundle(t *testing.T) {
	// 6 units at 20 with a 6-for-100 bundle saves 20.
	line := Line{UnitPrice: money("20"), Qty: 6, Bulk: &BulkRule{Qty: 6, Price: money("100")}}
	got := BulkDiscount(line)
	if !got.Equal(money("20")) {
		t.Fatalf("expected discount 20, got %s", got)
	}
}

func TestBulkDiscountPartialBundle(t *testing.T) {
	// 8 units: one full bundle plus 2 at unit price. 160 - (100 + 40) = 20.
	line := Line{UnitPrice: money("20"), Qty: 8, Bulk: &BulkRule{Qty: 6, Price: money("100")}}
	got := BulkDiscount(line)
	if !got.Equal(money("20")) {
		t.Fatalf("expected discount 20, got %s", got)
	}
}

func TestBulkDiscountNeverNegative(t *testing.T) {
	// Bundle priced above the regular cost must not produce a negative saving.
	line := Line{UnitPrice: money("10"), Qty: 6, Bulk: &BulkRule{Qty: 6, Price: money("100")}}
	if got := BulkDiscount(line); !got.IsZero() {
		t.Fatalf("expected zero discount, got %s", got)
	}
}

func TestBulkDiscountWithoutRule(t *testing.T) {
	line := Line{UnitPrice: money("20"), Qty: 6}
	if got := BulkDiscount(line); !got.IsZero() {
		t.Fatalf("expected zero discount, got %s", got)
	}
}

func TestDeliveryChargeTiers(t *testing.T) {
	cases := []struct {
		net  string
		want string
	}{
		{"999.99", "50"},
		{"1000", "25"},
		{"1500", "25"},
		{"3000", "25"},
		{"3000.01", "0"},
		{"8200", "0"},
	}
	for _, tc := range cases {
		got := DeliveryCharge(money(tc.net))
		if !got.Equal(money(tc.want)) {
			t.Fatalf("net %s: expected delivery %s, got %s", tc.net, tc.want, got)
		}
	}
}

func TestComputeNoCoupons(t *testing.T) {
	// Subtotal 1500 and no coupons yields the mid delivery tier.
	lines := []Line{{UnitPrice: money("750"), Qty: 2}}
	s := Compute(lines, decimal.Zero)
	if !s.Subtotal.Equal(money("1500")) {
		t.Fatalf("subtotal = %s", s.Subtotal)
	}
	if !s.Delivery.Equal(money("25")) {
		t.Fatalf("delivery = %s", s.Delivery)
	}
	if !s.Total.Equal(money("1525")) {
		t.Fatalf("total = %s", s.Total)
	}
}

func TestComputeFloorsDisplayedTotal(t *testing.T) {
	lines := []Line{{UnitPrice: money("100"), Qty: 1}}
	s := Compute(lines, money("500"))
	if !s.Total.IsZero() {
		t.Fatalf("expected total floored at 0, got %s", s.Total)
	}
}

func TestComputeRoundTripIdentity(t *testing.T) {
	// finalAmount == net - discount + delivery at 2-decimal precision.
	lines := []Line{
		{UnitPrice: money("33.33"), Qty: 3},
		{UnitPrice: money("20"), Qty: 6, Bulk: &BulkRule{Qty: 6, Price: money("100")}},
	}
	s := Compute(lines, money("50"))
	want := Round(s.Net.Sub(s.Discount).Add(s.Delivery))
	if !s.Total.Equal(want) {
		t.Fatalf("total %s != net-discount+delivery %s", s.Total, want)
	}
}
