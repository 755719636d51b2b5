package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category represents a product category. The id is assigned by the store on
// insert and never changes afterwards.
type Category struct {
	ID   int64
	Name string
}

// Product represents a catalog product. Categories holds the categories the
// product belongs to, unique by id; order is not significant. Price uses a
// decimal type so monetary values survive round-trips exactly.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	CreatedAt   time.Time
	Categories  []Category
}
