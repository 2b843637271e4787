package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/events"
)

// Store captures the persistence methods required by order handlers.
type Store interface {
	ListForUser(ctx context.Context, userID string, limit, offset int32) ([]Order, int64, error)
	GetForUser(ctx context.Context, id, userID string) (Order, error)
	ListAll(ctx context.Context, limit, offset int32) ([]Order, int64, error)
	Get(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Order, error)
}

// Handler exposes order history and staff order management.
type Handler struct {
	Store  Store
	Events *events.Bus
}

type orderJSON struct {
	ID              string     `json:"id"`
	Username        string     `json:"username,omitempty"`
	MobileNumber    string     `json:"mobileNumber,omitempty"`
	Items           []itemJSON `json:"items"`
	TotalAmount     float64    `json:"totalAmount"`
	DiscountApplied float64    `json:"discountApplied"`
	DeliveryCharge  float64    `json:"deliveryCharge"`
	FinalAmount     float64    `json:"finalAmount"`
	CouponCodes     []string   `json:"couponCodes,omitempty"`
	Location        Location   `json:"location"`
	Status          Status     `json:"status"`
	CreatedAt       string     `json:"createdAt"`
}

type itemJSON struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func toJSON(o Order) orderJSON {
	out := orderJSON{
		ID:              o.ID,
		Username:        o.Username,
		MobileNumber:    o.MobileNumber,
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		DiscountApplied: o.DiscountApplied.InexactFloat64(),
		DeliveryCharge:  o.DeliveryCharge.InexactFloat64(),
		FinalAmount:     o.FinalAmount.InexactFloat64(),
		CouponCodes:     o.CouponCodes,
		Location:        o.Location,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
	out.Items = make([]itemJSON, 0, len(o.Items))
	for _, it := range o.Items {
		out.Items = append(out.Items, itemJSON{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Price:     it.UnitPrice.InexactFloat64(),
			Quantity:  it.Qty,
		})
	}
	return out
}

// List returns the caller's orders, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	identity, ok := common.IdentityFrom(r.Context())
	if !ok || identity.UserID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	orders, total, err := h.Store.ListForUser(r.Context(), identity.UserID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, toJSON(o))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": out,
		"pagination": common.NewPagination(page, perPage, int(total)),
	})
}

// Get returns one of the caller's orders.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	identity, ok := common.IdentityFrom(r.Context())
	if !ok || identity.UserID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	o, err := h.Store.GetForUser(r.Context(), chi.URLParam(r, "orderId"), identity.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toJSON(o)})
}

// AdminList returns every order for the staff dashboard.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	orders, total, err := h.Store.ListAll(r.Context(), int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, toJSON(o))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": out,
		"pagination": common.NewPagination(page, perPage, int(total)),
	})
}

type statusPayload struct {
	Status Status `json:"status"`
}

// UpdateStatus mutates an order's lifecycle state. Status is the only field
// staff may change after creation.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if !ValidStatus(payload.Status) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown status", nil)
		return
	}
	updated, err := h.Store.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), payload.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update order", nil)
		return
	}
	if h.Events != nil {
		_ = h.Events.Emit(r.Context(), events.TopicOrderStatusChanged, events.Payload{
			"orderId":  updated.ID,
			"userId":   updated.UserID,
			"username": updated.Username,
			"status":   string(updated.Status),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toJSON(updated)})
}
