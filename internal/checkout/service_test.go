package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/catalog"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/coupon"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/events"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/order"
)

var checkoutNow = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

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

type stubOrders struct {
	created []order.Draft
	err     error
}

func (s *stubOrders) Create(_ context.Context, draft order.Draft) (order.Order, error) {
	if s.err != nil {
		return order.Order{}, s.err
	}
	s.created = append(s.created, draft)
	return draft.Order, nil
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

type stubCounter struct{}

func (stubCounter) CountForUser(context.Context, string) (int64, error) { return 1, nil }

type recordingNotifier struct {
	events []events.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev events.Event) error {
	r.events = append(r.events, ev)
	return nil
}

type fixture struct {
	svc      *Service
	orders   *stubOrders
	notifier *recordingNotifier
	oilID    uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	oilID := uuid.New()
	products := stubProducts{byID: map[uuid.UUID]catalog.Product{
		oilID: {
			ID:    oilID,
			Name:  "Sunflower Oil 1L",
			Price: decimal.NewFromInt(300),
			Stock: 20,
		},
	}}

	expiry := checkoutNow.Add(30 * 24 * time.Hour)
	couponSvc := &coupon.Service{
		Store: stubCouponStore{coupons: map[string]coupon.Coupon{
			"ABOVE2000": {
				Code:           "ABOVE2000",
				DiscountAmount: decimal.NewFromInt(30),
				MinOrderAmount: decimal.NewFromInt(2000),
				ExpiresAt:      expiry,
				Type:           coupon.TypeRegular,
				IsActive:       true,
			},
		}},
		Ledger: stubLedger{},
		Orders: stubCounter{},
		Now:    func() time.Time { return checkoutNow },
	}

	orders := &stubOrders{}
	notifier := &recordingNotifier{}
	svc := &Service{
		Products: products,
		Orders:   orders,
		Coupons:  couponSvc,
		Events:   &events.Bus{Logger: zerolog.Nop(), Notifiers: []events.Notifier{notifier}},
		Now:      func() time.Time { return checkoutNow },
	}
	return fixture{svc: svc, orders: orders, notifier: notifier, oilID: oilID}
}

func floatPtr(f float64) *float64 { return &f }

func oilInput(f fixture, qty int) Input {
	return Input{
		Items:        []InputItem{{ID: f.oilID.String(), Name: "Sunflower Oil 1L", Price: 300, Quantity: qty}},
		Location:     order.Location{Lat: 27.7, Lng: 85.3, Address: "Kathmandu"},
		MobileNumber: "9800000000",
	}
}

func TestCreateRecomputesAuthoritatively(t *testing.T) {
	f := newFixture(t)
	identity := common.Identity{UserID: "u-1", Username: "asha"}

	// 8 x 300 = 2400; ABOVE2000 auto-applies for 30 off; delivery 25.
	in := oilInput(f, 8)
	in.CouponCodes = []string{"ABOVE2000"}
	out, err := f.svc.Create(context.Background(), identity, in)
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	require.Equal(t, string(order.StatusPending), out.Status)
	require.Equal(t, []string{"ABOVE2000"}, out.CouponCodes)

	require.Len(t, f.orders.created, 1)
	persisted := f.orders.created[0].Order
	require.True(t, persisted.TotalAmount.Equal(decimal.NewFromInt(2400)), "total %s", persisted.TotalAmount)
	require.True(t, persisted.DiscountApplied.Equal(decimal.NewFromInt(30)), "discount %s", persisted.DiscountApplied)
	require.True(t, persisted.DeliveryCharge.Equal(decimal.NewFromInt(25)), "delivery %s", persisted.DeliveryCharge)
	require.True(t, persisted.FinalAmount.Equal(decimal.NewFromInt(2395)), "final %s", persisted.FinalAmount)
	require.Equal(t, []string{"ABOVE2000"}, persisted.CouponCodes)

	// finalAmount = totalAmount - discountApplied + deliveryCharge
	identitySum := persisted.TotalAmount.Sub(persisted.DiscountApplied).Add(persisted.DeliveryCharge)
	require.True(t, persisted.FinalAmount.Equal(identitySum))

	require.Len(t, f.notifier.events, 1)
	require.Equal(t, events.TopicOrderCreated, f.notifier.events[0].Topic)
}

func TestCreateRejectsTamperedDiscount(t *testing.T) {
	f := newFixture(t)
	in := oilInput(f, 8)
	in.Discount = floatPtr(500) // claims far more than the rules allow

	_, err := f.svc.Create(context.Background(), common.Identity{UserID: "u-1", Username: "asha"}, in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "DISCOUNT_MISMATCH", appErr.Code)
	require.Equal(t, 422, appErr.HTTPStatus)
	require.Empty(t, f.orders.created)
	require.Empty(t, f.notifier.events)
}

func TestCreateAcceptsDeclaredAmountsWithinTolerance(t *testing.T) {
	f := newFixture(t)
	in := oilInput(f, 8)
	in.Discount = floatPtr(30.004)
	in.DeliveryCharge = floatPtr(25)

	_, err := f.svc.Create(context.Background(), common.Identity{UserID: "u-1", Username: "asha"}, in)
	require.NoError(t, err)
}

func TestCreateRejectsTamperedDelivery(t *testing.T) {
	f := newFixture(t)
	in := oilInput(f, 8)
	in.DeliveryCharge = floatPtr(0)

	_, err := f.svc.Create(context.Background(), common.Identity{UserID: "u-1", Username: "asha"}, in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "DELIVERY_MISMATCH", appErr.Code)
}

func TestCreateRejectsPriceDrift(t *testing.T) {
	f := newFixture(t)
	in := oilInput(f, 2)
	in.Items[0].Price = 250 // catalog says 300

	_, err := f.svc.Create(context.Background(), common.Identity{UserID: "u-1", Username: "asha"}, in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "PRICE_MISMATCH", appErr.Code)
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	f := newFixture(t)
	in := oilInput(f, 2)
	in.Items[0].ID = uuid.NewString()

	_, err := f.svc.Create(context.Background(), common.Identity{UserID: "u-1", Username: "asha"}, in)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNKNOWN_PRODUCT", appErr.Code)
}

func TestCreateSurfacesInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.orders.err = order.ErrInsufficientStock

	_, err := f.svc.Create(context.Background(), common.Identity{UserID: "u-1", Username: "asha"}, oilInput(f, 2))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INSUFFICIENT_STOCK", appErr.Code)
	require.Equal(t, 409, appErr.HTTPStatus)
	require.Empty(t, f.notifier.events)
}

func TestCreateRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), common.Identity{}, oilInput(f, 1))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNAUTHORIZED", appErr.Code)
}
