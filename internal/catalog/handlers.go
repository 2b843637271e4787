package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
)

// Handler exposes catalog endpoints for shoppers and staff.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type productJSON struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Unit          string    `json:"unit"`
	Stock         int       `json:"stock"`
	Category      string    `json:"category"`
	Bulk          *bulkJSON `json:"bulk,omitempty"`
}

type bulkJSON struct {
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

func toJSON(p Product) productJSON {
	out := productJSON{
		ID:       p.ID.String(),
		Name:     p.Name,
		Price:    p.Price.InexactFloat64(),
		Unit:     p.Unit,
		Stock:    p.Stock,
		Category: p.Category,
	}
	if p.OriginalPrice != nil {
		v := p.OriginalPrice.InexactFloat64()
		out.OriginalPrice = &v
	}
	if p.Bulk != nil {
		out.Bulk = &bulkJSON{Qty: p.Bulk.Qty, Price: p.Bulk.Price.InexactFloat64()}
	}
	return out
}

// List returns the public product listing with optional category and search filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	filter := ListFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Limit:    int32(perPage),
		Offset:   int32((page - 1) * perPage),
	}
	products, total, err := h.Svc.List(r.Context(), filter)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list products", nil)
		return
	}
	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toJSON(p))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": out,
		"pagination": common.NewPagination(page, perPage, int(total)),
	})
}

// Get returns a single product by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toJSON(p)})
}

// Categories lists distinct category names.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	names, err := h.Svc.Categories(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list categories", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": names})
}

type productPayload struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitempty,gt=0"`
	Unit          string   `json:"unit" validate:"required"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Category      string   `json:"category"`
	BulkQty       *int     `json:"bulkQty" validate:"omitempty,gt=0"`
	BulkPrice     *float64 `json:"bulkPrice" validate:"omitempty,gt=0"`
}

func (p productPayload) toProduct() (Product, error) {
	prod := Product{
		Name:     p.Name,
		Price:    decimal.NewFromFloat(p.Price).Round(2),
		Unit:     p.Unit,
		Stock:    p.Stock,
		Category: p.Category,
	}
	if p.OriginalPrice != nil {
		v := decimal.NewFromFloat(*p.OriginalPrice).Round(2)
		prod.OriginalPrice = &v
	}
	if (p.BulkQty == nil) != (p.BulkPrice == nil) {
		return Product{}, errors.New("bulkQty and bulkPrice must be provided together")
	}
	if p.BulkQty != nil {
		prod.Bulk = &BulkRule{Qty: *p.BulkQty, Price: decimal.NewFromFloat(*p.BulkPrice).Round(2)}
	}
	return prod, nil
}

// Create inserts a product (staff only; routing enforces the role).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	prod, err := payload.toProduct()
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	created, err := h.Svc.Create(r.Context(), prod)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create product", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": toJSON(created)})
}

// Update replaces a product's mutable fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	prod, err := payload.toProduct()
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	prod.ID = id
	updated, err := h.Svc.Update(r.Context(), prod)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toJSON(updated)})
}

// Delete removes a product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"id": id.String()}})
}

// DeleteCategory reassigns the category's products to Uncategorized.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	moved, err := h.Svc.DeleteCategory(r.Context(), name)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"reassigned": moved}})
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (productPayload, bool) {
	var payload productPayload
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
