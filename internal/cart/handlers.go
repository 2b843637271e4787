package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/obs"
)

// Handler exposes the stateless cart quote endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type quoteRequest struct {
	Items []quoteRequestItem `json:"items" validate:"required,min=1,dive"`
	Codes []string           `json:"couponCodes"`
}

type quoteRequestItem struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gte=1"`
}

type quoteResponse struct {
	Lines      []lineJSON      `json:"lines"`
	Subtotal   float64         `json:"subtotal"`
	Bulk       float64         `json:"bulkDiscount"`
	Net        float64         `json:"netAmount"`
	Discount   float64         `json:"discount"`
	Delivery   float64         `json:"deliveryCharge"`
	Total      float64         `json:"total"`
	Applied    []appliedJSON   `json:"appliedCoupons"`
	Rejections []rejectionJSON `json:"rejectedCoupons"`
}

type lineJSON struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	Qty          int     `json:"qty"`
	BulkDiscount float64 `json:"bulkDiscount"`
}

type appliedJSON struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

type rejectionJSON struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Quote evaluates the submitted cart and returns the full pricing preview.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req quoteRequest
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
	items := make([]Item, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
			return
		}
		items = append(items, Item{ProductID: id, Qty: it.Qty})
	}

	identity, _ := common.IdentityFrom(r.Context())
	obs.StackingEvaluationsTotal.Inc()
	quote, err := h.Svc.Evaluate(r.Context(), identity.UserID, identity.Username, items, req.Codes)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to evaluate cart", nil)
		return
	}

	out := quoteResponse{
		Subtotal: quote.Summary.Subtotal.InexactFloat64(),
		Bulk:     quote.Summary.BulkDiscount.InexactFloat64(),
		Net:      quote.Summary.Net.InexactFloat64(),
		Discount: quote.Summary.Discount.InexactFloat64(),
		Delivery: quote.Summary.Delivery.InexactFloat64(),
		Total:    quote.Summary.Total.InexactFloat64(),
	}
	for _, line := range quote.Lines {
		out.Lines = append(out.Lines, lineJSON{
			ProductID:    line.ProductID.String(),
			Name:         line.Name,
			UnitPrice:    line.UnitPrice.InexactFloat64(),
			Qty:          line.Qty,
			BulkDiscount: line.BulkDiscount.InexactFloat64(),
		})
	}
	out.Applied = make([]appliedJSON, 0, len(quote.Applied))
	for _, a := range quote.Applied {
		out.Applied = append(out.Applied, appliedJSON{Code: a.Code, Discount: a.Discount.InexactFloat64()})
	}
	out.Rejections = make([]rejectionJSON, 0, len(quote.Rejections))
	for _, rej := range quote.Rejections {
		out.Rejections = append(out.Rejections, rejectionJSON{Code: rej.Code, Reason: rej.Reason})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
