package service

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/internal/domain"
	"catalog-service/internal/dto"
	"catalog-service/internal/store"
)

// ProductService orchestrates product store operations. It also consults the
// category store to resolve the category references carried by incoming DTOs.
type ProductService struct {
	products   store.ProductStorer
	categories store.CategoryStorer
}

// NewProductService creates a new ProductService backed by the given stores.
func NewProductService(products store.ProductStorer, categories store.CategoryStorer) *ProductService {
	return &ProductService{products: products, categories: categories}
}

// FindAllPaged returns one page of products with page metadata preserved
// from the store's total count.
func (s *ProductService) FindAllPaged(ctx context.Context, req dto.PageRequest) (*dto.Page[dto.ProductDTO], error) {
	products, totalCount, err := s.products.ListProducts(ctx, store.ListParams{
		Limit:     req.Size,
		Offset:    req.Offset(),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		items = append(items, dto.NewProductDTO(p))
	}
	page := dto.NewPage(items, req, totalCount)
	return &page, nil
}

// FindByID returns the product with the given id or ErrNotFound.
func (s *ProductService) FindByID(ctx context.Context, id int64) (*dto.ProductDTO, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	out := dto.NewProductDTO(*product)
	return &out, nil
}

// Insert creates a new product from the scalar fields in the DTO. Every
// referenced category is resolved through the category store before the
// write; a missing one fails with ErrNotFound. Any caller-supplied product id
// is ignored.
func (s *ProductService) Insert(ctx context.Context, in dto.ProductDTO) (*dto.ProductDTO, error) {
	categories, err := s.resolveCategories(ctx, in.Categories)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Categories:  categories,
	}
	created, err := s.products.CreateProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	out := dto.NewProductDTO(*created)
	return &out, nil
}

// Update overwrites the scalar fields of an existing product and rebuilds its
// category association set from the DTO. The id and creation date never
// change.
func (s *ProductService) Update(ctx context.Context, id int64, in dto.ProductDTO) (*dto.ProductDTO, error) {
	exists, err := s.products.ProductExists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check product %d: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	categories, err := s.resolveCategories(ctx, in.Categories)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Categories:  categories,
	}
	updated, err := s.products.UpdateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	out := dto.NewProductDTO(*updated)
	return &out, nil
}

// Delete removes the product with the given id. The three-way outcome
// mirrors category delete: ErrNotFound for a missing id, ErrConflict when a
// dependent record blocks the delete, nil otherwise.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	exists, err := s.products.ProductExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check product %d: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrIntegrityViolation):
			return fmt.Errorf("product %d: %w", id, ErrConflict)
		case errors.Is(err, store.ErrProductNotFound):
			return nil
		default:
			return fmt.Errorf("delete product %d: %w", id, err)
		}
	}
	return nil
}

// resolveCategories looks up every referenced category eagerly, deduplicating
// by id. A reference to a nonexistent category fails with ErrNotFound instead
// of surfacing later as a store-level constraint failure.
func (s *ProductService) resolveCategories(ctx context.Context, refs []dto.CategoryDTO) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, len(refs))
	seen := make(map[int64]bool, len(refs))
	for _, ref := range refs {
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true

		category, err := s.categories.GetCategoryByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, store.ErrCategoryNotFound) {
				return nil, fmt.Errorf("category %d: %w", ref.ID, ErrNotFound)
			}
			return nil, fmt.Errorf("resolve category %d: %w", ref.ID, err)
		}
		categories = append(categories, *category)
	}
	return categories, nil
}
