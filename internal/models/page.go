package models

// PageQuery carries pagination and sorting parsed from request query params
type PageQuery struct {
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
}

// Page is the standard pagination envelope for list endpoints
type Page[T any] struct {
	PagesCount int
	Page       int
	PageSize   int
	TotalCount int
	Items      []T
}

// NewPage calculates pagesCount from the total row count
func NewPage[T any](items []T, q PageQuery, total int) Page[T] {
	pagesCount := total / q.PageSize
	if total%q.PageSize != 0 {
		pagesCount++
	}

	return Page[T]{
		PagesCount: pagesCount,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: total,
		Items:      items,
	}
}
