package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

// ListFilter narrows the public product listing.
type ListFilter struct {
	Category string
	Search   string
	Limit    int32
	Offset   int32
}

// Store captures the persistence methods required by the catalog service.
type Store interface {
	List(ctx context.Context, f ListFilter) ([]Product, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]string, error)
	ReassignCategory(ctx context.Context, from, to string) (int64, error)
}

// Service wraps catalog reads and staff mutations.
type Service struct {
	Store Store
}

// List returns products matching the filter along with the total count.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Product, int64, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("catalog service not configured")
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.Store.List(ctx, f)
}

// Get loads one product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	return s.Store.GetByID(ctx, id)
}

// Create inserts a product after normalising its category.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	if p.Category == "" {
		p.Category = UncategorizedName
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	return s.Store.Create(ctx, p)
}

// Update mutates an existing product.
func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	if p.Category == "" {
		p.Category = UncategorizedName
	}
	return s.Store.Update(ctx, p)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("catalog service not configured")
	}
	return s.Store.Delete(ctx, id)
}

// Categories lists the distinct category names in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	return s.Store.ListCategories(ctx)
}

// DeleteCategory reassigns every product in the category to Uncategorized.
// The category itself is only a label on products, so reassignment is the
// whole operation.
func (s *Service) DeleteCategory(ctx context.Context, name string) (int64, error) {
	if s == nil || s.Store == nil {
		return 0, errors.New("catalog service not configured")
	}
	if name == "" || name == UncategorizedName {
		return 0, errors.New("category cannot be removed")
	}
	return s.Store.ReassignCategory(ctx, name, UncategorizedName)
}
