package coupon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/obs"
)

// AdminStore extends Store with the mutations used by staff screens.
type AdminStore interface {
	Store
	Create(ctx context.Context, c Coupon) (Coupon, error)
	Update(ctx context.Context, c Coupon) (Coupon, error)
	Delete(ctx context.Context, code string) error
	ListAll(ctx context.Context) ([]Coupon, error)
}

// Handler exposes coupon endpoints for shoppers and staff.
type Handler struct {
	Svc      *Service
	Admin    AdminStore
	Validate *validator.Validate
}

type validateRequest struct {
	Code       string  `json:"code" validate:"required"`
	OrderTotal float64 `json:"orderTotal" validate:"gte=0"`
}

type couponJSON struct {
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	Expiry         string  `json:"expiry"`
	MinOrderAmount float64 `json:"minOrderAmount"`
	Type           Type    `json:"type"`
	TargetUsername string  `json:"targetUsername,omitempty"`
	GiftMessage    string  `json:"giftMessage,omitempty"`
	IsActive       bool    `json:"isActive"`
}

func toJSON(c Coupon) couponJSON {
	return couponJSON{
		Code:           c.Code,
		DiscountAmount: c.DiscountAmount.InexactFloat64(),
		Expiry:         c.ExpiresAt.UTC().Format(time.RFC3339),
		MinOrderAmount: c.MinOrderAmount.InexactFloat64(),
		Type:           c.Type,
		TargetUsername: c.TargetUsername,
		GiftMessage:    c.GiftMessage,
		IsActive:       c.IsActive,
	}
}

// ValidateCode answers {code, orderTotal} with validity and the coupon or a
// reason string. Validation failures are user-visible outcomes, not server
// errors, so they come back with 200 and isValid=false.
func (h *Handler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	identity, _ := common.IdentityFrom(r.Context())
	total := decimal.NewFromFloat(req.OrderTotal)
	c, err := h.Svc.Validate(r.Context(), req.Code, total, identity.UserID, identity.Username)
	if err != nil {
		if isValidationReason(err) {
			obs.CouponValidationTotal.WithLabelValues(ReasonCode(err)).Inc()
			common.JSON(w, http.StatusOK, map[string]any{
				"isValid": false,
				"error":   err.Error(),
				"reason":  ReasonCode(err),
			})
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to validate coupon", nil)
		return
	}
	obs.CouponValidationTotal.WithLabelValues("VALID").Inc()
	common.JSON(w, http.StatusOK, map[string]any{
		"isValid": true,
		"coupon":  toJSON(c),
	})
}

// List returns the active coupons visible to the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return
	}
	identity, _ := common.IdentityFrom(r.Context())
	coupons, err := h.Svc.ListVisible(r.Context(), identity.Username)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list coupons", nil)
		return
	}
	out := make([]couponJSON, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, toJSON(c))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

type adminCouponPayload struct {
	Code           string     `json:"code" validate:"required,min=3,max=32"`
	DiscountAmount float64    `json:"discountAmount" validate:"required,gt=0"`
	Expiry         *time.Time `json:"expiry" validate:"required"`
	MinOrderAmount float64    `json:"minOrderAmount" validate:"gte=0"`
	Type           string     `json:"type" validate:"omitempty,oneof=REGULAR FIRST_ORDER SPECIAL_GIFT"`
	TargetUsername string     `json:"targetUsername"`
	GiftMessage    string     `json:"giftMessage"`
	IsActive       *bool      `json:"isActive"`
}

func (p adminCouponPayload) toCoupon() Coupon {
	c := Coupon{
		Code:           NormalizeCode(p.Code),
		DiscountAmount: decimal.NewFromFloat(p.DiscountAmount).Round(2),
		MinOrderAmount: decimal.NewFromFloat(p.MinOrderAmount).Round(2),
		Type:           TypeRegular,
		TargetUsername: p.TargetUsername,
		GiftMessage:    p.GiftMessage,
		IsActive:       true,
	}
	if p.Expiry != nil {
		c.ExpiresAt = *p.Expiry
	}
	if p.Type != "" {
		c.Type = Type(p.Type)
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	return c
}

// AdminList returns every coupon including inactive ones.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon store not configured", nil)
		return
	}
	coupons, err := h.Admin.ListAll(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list coupons", nil)
		return
	}
	out := make([]couponJSON, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, toJSON(c))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Create inserts a new coupon.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon store not configured", nil)
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	created, err := h.Admin.Create(r.Context(), payload.toCoupon())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "coupon code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create coupon", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": toJSON(created)})
}

// Update mutates an existing coupon identified by code.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon store not configured", nil)
		return
	}
	code := NormalizeCode(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	c := payload.toCoupon()
	c.Code = code
	updated, err := h.Admin.Update(r.Context(), c)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "coupon not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update coupon", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toJSON(updated)})
}

// Delete removes a coupon by code.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Admin == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon store not configured", nil)
		return
	}
	code := NormalizeCode(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	if err := h.Admin.Delete(r.Context(), code); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "coupon not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete coupon", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"code": code}})
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (adminCouponPayload, bool) {
	var payload adminCouponPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return payload, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return payload, false
		}
	}
	return payload, true
}

func isValidationReason(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidCode, ErrExpired, ErrBelowMinimum,
		ErrNotYourCoupon, ErrAlreadyRedeemed, ErrFirstOrderOnly, ErrAlreadyApplied,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
