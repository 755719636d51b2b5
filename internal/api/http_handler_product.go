package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"catalog-service/internal/dto"
)

// --- Product Handlers ---

// ProductCategoryRef is a category reference carried in a product payload.
// Only the id matters; the name is resolved server-side.
type ProductCategoryRef struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// ProductInput defines the expected input for creating or updating a product.
type ProductInput struct {
	Name        string               `json:"name" validate:"required,max=255"`
	Description string               `json:"description" validate:"omitempty"`
	Price       decimal.Decimal      `json:"price"`
	ImageURL    string               `json:"imageUrl" validate:"omitempty,url,max=2048"`
	Categories  []ProductCategoryRef `json:"categories" validate:"omitempty,dive"`
}

// toDTO maps the validated input onto the service-facing DTO. The caller can
// never smuggle in an id or creation date this way.
func (in ProductInput) toDTO() dto.ProductDTO {
	categories := make([]dto.CategoryDTO, 0, len(in.Categories))
	for _, ref := range in.Categories {
		categories = append(categories, dto.CategoryDTO{ID: ref.ID})
	}
	return dto.ProductDTO{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Categories:  categories,
	}
}

var productSortFields = map[string]bool{
	"id": true, "name": true, "price": true, "created_at": true, "": true, // "" for default
}

func (h *HTTPHandler) decodeProductInput(w http.ResponseWriter, r *http.Request) (ProductInput, bool) {
	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return input, false
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return input, false
	}
	if input.Price.IsNegative() {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: price must not be negative")
		return input, false
	}
	return input, true
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	req, err := h.parsePageRequest(r, productSortFields)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.products.FindAllPaged(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to retrieve products")
		return
	}
	h.respondWithJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productId")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.products.FindByID(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to retrieve product")
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	created, err := h.products.Insert(r.Context(), input.toDTO())
	if err != nil {
		h.respondServiceError(w, err, "Failed to create product")
		return
	}
	h.respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productId")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	updated, err := h.products.Update(r.Context(), productID, input.toDTO())
	if err != nil {
		h.respondServiceError(w, err, "Failed to update product")
		return
	}
	h.respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r, "productId")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.products.Delete(r.Context(), productID); err != nil {
		h.respondServiceError(w, err, "Failed to delete product")
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}
