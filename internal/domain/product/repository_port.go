// internal/domain/product/repository_port.go
package product

import (
	"context"

	common "farmlink/internal/domain/common"
)

// Filter narrows listings. Zero values mean "no constraint".
type Filter struct {
	FarmerID    string
	Category    string
	SearchQuery string // substring match on name/description
	Statuses    []Status
	OrganicOnly bool
}

type Sort = common.Sort
type SortOrder = common.SortOrder

const (
	SortAsc  SortOrder = common.SortAsc
	SortDesc SortOrder = common.SortDesc
)

// Allowed sort columns
const (
	SortByCreatedAt = "createdAt"
	SortByPrice     = "price"
	SortByName      = "name"
	SortBySold      = "sold"
)

type Page = common.Page
type PageResult = common.PageResult[Product]

// Repository is the persistence port for product listings.
type Repository interface {
	// NextID returns a fresh document id (client-side, no I/O).
	NextID() string

	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, filter Filter, sort Sort, page Page) (PageResult, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]Product, error)

	Create(ctx context.Context, p Product) error
	Save(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error

	// IncrementViews bumps the view counter without racing edits.
	IncrementViews(ctx context.Context, id string) error
}
