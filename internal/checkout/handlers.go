package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/obs"
)

// Handler exposes the order submission endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Create handles POST /orders. Recompute failures map to client errors; the
// transaction itself either fully commits or leaves no trace.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	identity, ok := common.IdentityFrom(r.Context())
	if !ok || identity.UserID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	out, err := h.Svc.Create(r.Context(), identity, in)
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok {
			obs.OrdersRejectedTotal.WithLabelValues(appErr.Code).Inc()
			status := appErr.StatusOr(http.StatusUnprocessableEntity)
			common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		obs.OrdersRejectedTotal.WithLabelValues("INTERNAL").Inc()
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order failed, try again", nil)
		return
	}
	obs.OrdersCreatedTotal.Inc()
	if n := len(out.CouponCodes); n > 0 {
		obs.CouponRedemptionsTotal.Add(float64(n))
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}
