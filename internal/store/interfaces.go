package store

import (
	"context"

	"catalog-service/internal/domain"
)

// ListParams holds limit/offset pagination and sorting for list queries.
// SortBy is validated against a per-table whitelist inside the store.
type ListParams struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, params ListParams) ([]domain.Category, int, error) // Returns categories and total count for pagination
	CategoryExists(ctx context.Context, id int64) (bool, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// ProductStorer defines the database operations for products, including
// maintenance of the product/category association set.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, params ListParams) ([]domain.Product, int, error) // Returns products and total count
	ProductExists(ctx context.Context, id int64) (bool, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}
