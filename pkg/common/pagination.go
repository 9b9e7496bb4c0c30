package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PaginationParams selects one page of a listing
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// DefaultPaginationParams is the first page at the default size
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Page: 1, PageSize: defaultPageSize}
}

// ExtractPaginationParams reads page and page_size from the query
// string. Missing or malformed values fall back to the defaults, and
// page_size is capped at 200.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	params := DefaultPaginationParams()
	q := r.URL.Query()

	if n, ok := positiveInt(q.Get("page")); ok {
		params.Page = n
	}
	if n, ok := positiveInt(q.Get("page_size")); ok {
		if n > maxPageSize {
			n = maxPageSize
		}
		params.PageSize = n
	}
	return params
}

func positiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Offset returns the zero-based offset of the first item on the page
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Slice returns the [start, end) bounds of the page within a list of n items
func (p PaginationParams) Slice(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.PageSize
	if end > n {
		end = n
	}
	return start, end
}
