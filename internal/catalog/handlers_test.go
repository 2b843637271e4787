package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type productStore struct {
	Store
	product Product
	gotID   uuid.UUID
	deleted uuid.UUID
}

func (s *productStore) GetByID(_ context.Context, id uuid.UUID) (Product, error) {
	s.gotID = id
	if id != s.product.ID {
		return Product{}, ErrNotFound
	}
	return s.product, nil
}

func (s *productStore) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	if id != s.product.ID {
		return ErrNotFound
	}
	return nil
}

func TestGetResolvesProductIDFromRoute(t *testing.T) {
	id := uuid.New()
	store := &productStore{product: Product{
		ID:       id,
		Name:     "Basmati Rice",
		Price:    decimal.NewFromInt(20),
		Unit:     "kg",
		Stock:    50,
		Category: "Grains",
	}}
	h := &Handler{Svc: &Service{Store: store}}

	r := chi.NewRouter()
	r.Get("/api/v1/products/{productId}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, id, store.gotID)
	require.Contains(t, rec.Body.String(), "Basmati Rice")
}

func TestDeleteResolvesProductIDFromRoute(t *testing.T) {
	id := uuid.New()
	store := &productStore{product: Product{ID: id, Name: "Oil", Price: decimal.NewFromInt(300)}}
	h := &Handler{Svc: &Service{Store: store}}

	r := chi.NewRouter()
	r.Delete("/api/v1/admin/products/{productId}", h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, id, store.deleted)
}
