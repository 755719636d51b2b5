package service

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/internal/domain"
	"catalog-service/internal/dto"
	"catalog-service/internal/store"
)

// CategoryService orchestrates category store operations and maps entities
// to and from their wire shapes. It holds no cross-call state.
type CategoryService struct {
	store store.CategoryStorer
}

// NewCategoryService creates a new CategoryService backed by the given store.
func NewCategoryService(s store.CategoryStorer) *CategoryService {
	return &CategoryService{store: s}
}

// FindAll returns one page of categories. An empty result is a valid page,
// not an error.
func (s *CategoryService) FindAll(ctx context.Context, req dto.PageRequest) (*dto.Page[dto.CategoryDTO], error) {
	categories, totalCount, err := s.store.ListCategories(ctx, store.ListParams{
		Limit:     req.Size,
		Offset:    req.Offset(),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	items := make([]dto.CategoryDTO, 0, len(categories))
	for _, c := range categories {
		items = append(items, dto.NewCategoryDTO(c))
	}
	page := dto.NewPage(items, req, totalCount)
	return &page, nil
}

// FindByID returns the category with the given id or ErrNotFound.
func (s *CategoryService) FindByID(ctx context.Context, id int64) (*dto.CategoryDTO, error) {
	category, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	out := dto.NewCategoryDTO(*category)
	return &out, nil
}

// Insert creates a new category. Any id supplied by the caller is ignored;
// the store assigns one.
func (s *CategoryService) Insert(ctx context.Context, in dto.CategoryDTO) (*dto.CategoryDTO, error) {
	created, err := s.store.CreateCategory(ctx, &domain.Category{Name: in.Name})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	out := dto.NewCategoryDTO(*created)
	return &out, nil
}

// Update overwrites the name of an existing category. The existence check is
// eager so a missing id surfaces as a clean ErrNotFound rather than a
// deferred store failure.
func (s *CategoryService) Update(ctx context.Context, id int64, in dto.CategoryDTO) (*dto.CategoryDTO, error) {
	exists, err := s.store.CategoryExists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check category %d: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}

	updated, err := s.store.UpdateCategory(ctx, &domain.Category{ID: id, Name: in.Name})
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	out := dto.NewCategoryDTO(*updated)
	return &out, nil
}

// Delete removes the category with the given id. A missing id yields
// ErrNotFound; a category still referenced by a product yields ErrConflict.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	exists, err := s.store.CategoryExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check category %d: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrIntegrityViolation):
			return fmt.Errorf("category %d: %w", id, ErrConflict)
		case errors.Is(err, store.ErrCategoryNotFound):
			// The row vanished between the existence check and the delete;
			// the existence check alone governs NotFound, so this is a no-op.
			return nil
		default:
			return fmt.Errorf("delete category %d: %w", id, err)
		}
	}
	return nil
}
