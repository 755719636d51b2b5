package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"catalog-service/internal/dto"
	"catalog-service/internal/service"
)

// CategoryService is the category use-case surface consumed by the HTTP layer.
type CategoryService interface {
	FindAll(ctx context.Context, req dto.PageRequest) (*dto.Page[dto.CategoryDTO], error)
	FindByID(ctx context.Context, id int64) (*dto.CategoryDTO, error)
	Insert(ctx context.Context, in dto.CategoryDTO) (*dto.CategoryDTO, error)
	Update(ctx context.Context, id int64, in dto.CategoryDTO) (*dto.CategoryDTO, error)
	Delete(ctx context.Context, id int64) error
}

// ProductService is the product use-case surface consumed by the HTTP layer.
type ProductService interface {
	FindAllPaged(ctx context.Context, req dto.PageRequest) (*dto.Page[dto.ProductDTO], error)
	FindByID(ctx context.Context, id int64) (*dto.ProductDTO, error)
	Insert(ctx context.Context, in dto.ProductDTO) (*dto.ProductDTO, error)
	Update(ctx context.Context, id int64, in dto.ProductDTO) (*dto.ProductDTO, error)
	Delete(ctx context.Context, id int64) error
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	categories CategoryService
	products   ProductService
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(cs CategoryService, ps ProductService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		categories: cs,
		products:   ps,
		validate:   validator.New(),
		logger:     logger,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("Failed to encode JSON response", zap.Error(err))
		}
	}
}

// respondServiceError maps the service's domain error kinds onto status
// codes: NotFound -> 404, Conflict -> 409, anything else -> 500.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		h.respondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(message, zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, message)
	}
}

// parseID extracts a positive int64 id from the named chi URL parameter.
func parseID(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", idStr)
	}
	return id, nil
}

// parsePageRequest reads page (zero-based), size and sort parameters from the
// query string. Sort fields are whitelisted per resource.
func (h *HTTPHandler) parsePageRequest(r *http.Request, allowedSortFields map[string]bool) (dto.PageRequest, error) {
	qParams := r.URL.Query()

	page := 0
	if pageStr := qParams.Get("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 0 {
			return dto.PageRequest{}, fmt.Errorf("invalid page value %q", pageStr)
		}
		page = p
	}

	size := 10
	if sizeStr := qParams.Get("size"); sizeStr != "" {
		s, err := strconv.Atoi(sizeStr)
		if err != nil || s <= 0 {
			return dto.PageRequest{}, fmt.Errorf("invalid size value %q", sizeStr)
		}
		size = s
	}
	if size > 100 {
		size = 100
	}

	sortBy := qParams.Get("sort_by")
	if !allowedSortFields[sortBy] {
		return dto.PageRequest{}, fmt.Errorf("invalid sort_by field. Allowed: %v", getMapKeys(allowedSortFields))
	}
	sortOrder := qParams.Get("sort_order")
	if sortOrder != "" && strings.ToLower(sortOrder) != "asc" && strings.ToLower(sortOrder) != "desc" {
		return dto.PageRequest{}, errors.New("invalid sort_order value. Allowed: asc, desc")
	}

	return dto.PageRequest{Page: page, Size: size, SortBy: sortBy, SortOrder: sortOrder}, nil
}

// Helper to get keys from a map for error messages
func getMapKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "" { // Don't list empty string default in error message
			keys = append(keys, k)
		}
	}
	return keys
}

// --- Category Handlers ---

// CategoryInput defines the expected input for creating or updating a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

var categorySortFields = map[string]bool{"id": true, "name": true, "": true} // "" for default

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	req, err := h.parsePageRequest(r, categorySortFields)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.categories.FindAll(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to retrieve categories")
		return
	}
	h.respondWithJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r, "categoryId")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	category, err := h.categories.FindByID(r.Context(), categoryID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to retrieve category")
		return
	}
	h.respondWithJSON(w, http.StatusOK, category)
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.categories.Insert(r.Context(), dto.CategoryDTO{Name: input.Name})
	if err != nil {
		h.respondServiceError(w, err, "Failed to create category")
		return
	}
	h.respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r, "categoryId")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	var input CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.categories.Update(r.Context(), categoryID, dto.CategoryDTO{Name: input.Name})
	if err != nil {
		h.respondServiceError(w, err, "Failed to update category")
		return
	}
	h.respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r, "categoryId")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	if err := h.categories.Delete(r.Context(), categoryID); err != nil {
		h.respondServiceError(w, err, "Failed to delete category")
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Post("/", h.CreateCategory)
		r.Get("/", h.ListCategories)
		r.Route("/{categoryId}", func(r chi.Router) {
			r.Get("/", h.GetCategoryByID)
			r.Put("/", h.UpdateCategory)
			r.Delete("/", h.DeleteCategory)
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/", h.CreateProduct)
		r.Get("/", h.ListProducts)
		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
		})
	})
}
