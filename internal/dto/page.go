package dto

// PageRequest describes one page of a paginated listing. Page is zero-based.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
}

// Offset returns the row offset corresponding to the request.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// PaginationInfo carries the page metadata returned alongside a page of data.
type PaginationInfo struct {
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Page is a bounded slice of a larger result set plus its metadata.
type Page[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// NewPage builds a page envelope from the items of one page and the total
// item count reported by the store.
func NewPage[T any](data []T, req PageRequest, totalItems int) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if totalItems > 0 && req.Size > 0 {
		totalPages = (totalItems + req.Size - 1) / req.Size
	}
	return Page[T]{
		Data: data,
		Pagination: PaginationInfo{
			Page:       req.Page,
			Size:       req.Size,
			TotalItems: totalItems,
			TotalPages: totalPages,
		},
	}
}
