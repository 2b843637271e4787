package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/catalog"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/coupon"
)

var quoteNow = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

type stubProducts struct {
	byID map[uuid.UUID]catalog.Product
}

func (s stubProducts) GetByID(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type stubCouponStore struct {
	coupons map[string]coupon.Coupon
}

func (s stubCouponStore) GetByCode(_ context.Context, code string) (coupon.Coupon, error) {
	c, ok := s.coupons[code]
	if !ok {
		return coupon.Coupon{}, coupon.ErrNotFound
	}
	return c, nil
}

func (s stubCouponStore) ListActive(context.Context) ([]coupon.Coupon, error) {
	out := make([]coupon.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, c)
	}
	return out, nil
}

type stubLedger struct{}

func (stubLedger) HasUsed(context.Context, string, string) (bool, error) { return false, nil }

type stubCounter struct{ placed bool }

func (s stubCounter) CountForUser(context.Context, string) (int64, error) {
	if s.placed {
		return 1, nil
	}
	return 0, nil
}

func fixtureService(t *testing.T) (*Service, uuid.UUID, uuid.UUID) {
	t.Helper()
	riceID := uuid.New()
	oilID := uuid.New()
	bulkPrice := decimal.NewFromInt(100)
	products := stubProducts{byID: map[uuid.UUID]catalog.Product{
		riceID: {
			ID:    riceID,
			Name:  "Basmati Rice 1kg",
			Price: decimal.NewFromInt(20),
			Stock: 50,
			Bulk:  &catalog.BulkRule{Qty: 6, Price: bulkPrice},
		},
		oilID: {
			ID:    oilID,
			Name:  "Sunflower Oil 1L",
			Price: decimal.NewFromInt(300),
			Stock: 10,
		},
	}}

	expiry := quoteNow.Add(30 * 24 * time.Hour)
	coupons := map[string]coupon.Coupon{
		"SAVE50": {
			Code:           "SAVE50",
			DiscountAmount: decimal.NewFromInt(50),
			MinOrderAmount: decimal.NewFromInt(1000),
			ExpiresAt:      expiry,
			Type:           coupon.TypeRegular,
			IsActive:       true,
		},
		"ABOVE2000": {
			Code:           "ABOVE2000",
			DiscountAmount: decimal.NewFromInt(30),
			MinOrderAmount: decimal.NewFromInt(2000),
			ExpiresAt:      expiry,
			Type:           coupon.TypeRegular,
			IsActive:       true,
		},
	}

	couponSvc := &coupon.Service{
		Store:  stubCouponStore{coupons: coupons},
		Ledger: stubLedger{},
		Orders: stubCounter{placed: true},
		Now:    func() time.Time { return quoteNow },
	}
	return &Service{Products: products, Coupons: couponSvc}, riceID, oilID
}

func TestEvaluateBulkPricing(t *testing.T) {
	svc, riceID, _ := fixtureService(t)

	quote, err := svc.Evaluate(context.Background(), "u-1", "asha", []Item{{ProductID: riceID, Qty: 6}}, nil)
	require.NoError(t, err)

	require.True(t, quote.Summary.Subtotal.Equal(decimal.NewFromInt(120)), "subtotal %s", quote.Summary.Subtotal)
	require.True(t, quote.Summary.BulkDiscount.Equal(decimal.NewFromInt(20)), "bulk %s", quote.Summary.BulkDiscount)
	require.True(t, quote.Summary.Net.Equal(decimal.NewFromInt(100)), "net %s", quote.Summary.Net)
	require.True(t, quote.Summary.Delivery.Equal(decimal.NewFromInt(50)), "delivery %s", quote.Summary.Delivery)
	require.True(t, quote.Summary.Total.Equal(decimal.NewFromInt(150)), "total %s", quote.Summary.Total)

	require.Len(t, quote.Lines, 1)
	require.True(t, quote.Lines[0].BulkDiscount.Equal(decimal.NewFromInt(20)))
}

func TestEvaluateCouponStacking(t *testing.T) {
	svc, _, oilID := fixtureService(t)

	// 8 x 300 = 2400 net; SAVE50 requested, ABOVE2000 auto-applies.
	quote, err := svc.Evaluate(context.Background(), "u-1", "asha", []Item{{ProductID: oilID, Qty: 8}}, []string{"save50"})
	require.NoError(t, err)

	codes := make([]string, 0, len(quote.Applied))
	for _, a := range quote.Applied {
		codes = append(codes, a.Code)
	}
	require.Equal(t, []string{"SAVE50", "ABOVE2000"}, codes)
	require.True(t, quote.Summary.Discount.Equal(decimal.NewFromInt(80)), "discount %s", quote.Summary.Discount)
	require.True(t, quote.Summary.Delivery.Equal(decimal.NewFromInt(25)))
	require.True(t, quote.Summary.Total.Equal(decimal.NewFromInt(2345)), "total %s", quote.Summary.Total)
}

func TestEvaluateRejectionsAreNotErrors(t *testing.T) {
	svc, riceID, _ := fixtureService(t)

	quote, err := svc.Evaluate(context.Background(), "u-1", "asha", []Item{{ProductID: riceID, Qty: 2}}, []string{"NOPE"})
	require.NoError(t, err)
	require.Empty(t, quote.Applied)
	require.Len(t, quote.Rejections, 1)
	require.Equal(t, "INVALID_CODE", quote.Rejections[0].Reason)
}

func TestEvaluateInputValidation(t *testing.T) {
	svc, riceID, _ := fixtureService(t)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, "u-1", "asha", nil, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Evaluate(ctx, "u-1", "asha", []Item{{ProductID: riceID, Qty: 0}}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Evaluate(ctx, "u-1", "asha", []Item{{ProductID: riceID, Qty: 51}}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Evaluate(ctx, "u-1", "asha", []Item{{ProductID: uuid.New(), Qty: 1}}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}
