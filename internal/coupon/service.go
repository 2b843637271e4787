package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by stores when no coupon matches the code.
var ErrNotFound = errors.New("coupon not found")

// Store captures the persistence methods required by the coupon service.
type Store interface {
	GetByCode(ctx context.Context, code string) (Coupon, error)
	ListActive(ctx context.Context) ([]Coupon, error)
}

// Ledger reports which users have redeemed which coupons. Redemption rows
// are written inside the order placement transaction, not through this
// service.
type Ledger interface {
	HasUsed(ctx context.Context, code, userID string) (bool, error)
}

// OrderCounter reports how many orders a user has placed, for the
// first-order gate.
type OrderCounter interface {
	CountForUser(ctx context.Context, userID string) (int64, error)
}

// Service exposes coupon catalog access and stacking resolution.
type Service struct {
	Store  Store
	Ledger Ledger
	Orders OrderCounter
	Policy Policy
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Validate answers the coupon validation query: is this code applicable for
// this user at this order total. Validation failures come back as the
// sentinel errors from the engine; callers surface the reason verbatim.
func (s *Service) Validate(ctx context.Context, code string, orderTotal decimal.Decimal, userID, username string) (Coupon, error) {
	if s == nil || s.Store == nil {
		return Coupon{}, errors.New("coupon service not configured")
	}
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Coupon{}, ErrInvalidCode
	}
	c, err := s.Store.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Coupon{}, ErrInvalidCode
		}
		return Coupon{}, err
	}

	el := Eligibility{Username: username}
	if s.Ledger != nil && userID != "" {
		used, err := s.Ledger.HasUsed(ctx, normalized, userID)
		if err != nil {
			return Coupon{}, err
		}
		el.Redeemed = used
	}
	if c.Type == TypeFirstOrder {
		placed, err := s.hasPlacedOrder(ctx, userID)
		if err != nil {
			return Coupon{}, err
		}
		el.HasPlacedOrder = placed
	}
	if err := Validate(c, s.now(), orderTotal, el); err != nil {
		return Coupon{}, err
	}
	return c, nil
}

// ListVisible returns active coupons the user may see: all global coupons
// plus gifts targeted at them.
func (s *Service) ListVisible(ctx context.Context, username string) ([]Coupon, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("coupon service not configured")
	}
	all, err := s.Store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]Coupon, 0, len(all))
	for _, c := range all {
		if c.VisibleTo(username) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Resolution is the authoritative outcome of running the stacking policy for
// a cart: which coupons apply, which requests were refused, and the summed
// discount.
type Resolution struct {
	Applied    []Applied
	Rejections []Rejection
	Discount   decimal.Decimal
}

// Resolve runs the full stacking policy for the given net amount and
// explicitly requested codes. Both the cart preview and the order-submission
// recompute go through this single path so they cannot disagree.
func (s *Service) Resolve(ctx context.Context, net decimal.Decimal, requested []string, userID, username string) (Resolution, error) {
	if s == nil || s.Store == nil {
		return Resolution{}, errors.New("coupon service not configured")
	}
	catalog, err := s.ListVisible(ctx, username)
	if err != nil {
		return Resolution{}, err
	}
	placed, err := s.hasPlacedOrder(ctx, userID)
	if err != nil {
		return Resolution{}, err
	}

	redeemed := make(map[string]bool, len(requested))
	if s.Ledger != nil && userID != "" {
		for _, raw := range requested {
			code := NormalizeCode(raw)
			if code == "" || redeemed[code] {
				continue
			}
			used, err := s.Ledger.HasUsed(ctx, code, userID)
			if err != nil {
				return Resolution{}, err
			}
			redeemed[code] = used
		}
	}

	applied, rejections := s.Policy.Evaluate(EvalInput{
		Net:            net,
		Catalog:        catalog,
		Username:       username,
		HasPlacedOrder: placed,
		Requested:      requested,
		Redeemed:       redeemed,
		Now:            s.now(),
	})
	return Resolution{
		Applied:    applied,
		Rejections: rejections,
		Discount:   TotalDiscount(applied),
	}, nil
}

func (s *Service) hasPlacedOrder(ctx context.Context, userID string) (bool, error) {
	if s.Orders == nil || userID == "" {
		return false, nil
	}
	count, err := s.Orders.CountForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
