// internal/domain/common/repository_common.go
package common

import "time"

// TimeRange is a shared period filter.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Sort is the shared sort specification.
// Each domain validates its own allowed columns.
type Sort struct {
	Column string
	Order  SortOrder
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Page is an offset paging request. Number is 1-based; PerPage <= 0
// falls back to the adapter default.
type Page struct {
	Number  int
	PerPage int
}

// PageResult is a paged listing result.
type PageResult[T any] struct {
	Items      []T
	TotalCount int
	TotalPages int
	Page       int
	PerPage    int
}
