package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"catalog-service/internal/domain"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// CategoryDTO is the wire representation of a category. It doubles as the
// minimal category summary embedded in ProductDTO.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductDTO is the wire representation of a product. The category set is
// flattened to id/name summaries.
type ProductDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	Categories  []CategoryDTO   `json:"categories"`
}

// NewCategoryDTO projects a category entity onto its wire shape.
func NewCategoryDTO(c domain.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

// NewProductDTO projects a product entity onto its wire shape. The category
// summaries are filled from the relations already loaded on the entity; no
// store access happens here.
func NewProductDTO(p domain.Product) ProductDTO {
	categories := make([]CategoryDTO, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, NewCategoryDTO(c))
	}
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		Categories:  categories,
	}
}
