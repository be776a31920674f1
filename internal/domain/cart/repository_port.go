// internal/domain/cart/repository_port.go
package cart

import "context"

// Subscription is a live feed of a buyer's pending line items.
// The consumer owns the handle: it must call Stop when no longer
// interested, after which Updates is closed.
type Subscription struct {
	Updates <-chan []LineItem
	Stop    func()
}

// Repository is the persistence port for cart line items.
// Add/update/remove are single-document operations; only checkout
// needs multi-document atomicity, and that lives behind the
// usecase.CheckoutTx port instead.
type Repository interface {
	// NextID returns a fresh document id (client-side, no I/O).
	NextID() string

	GetByID(ctx context.Context, id string) (LineItem, error)

	// FindPendingByProduct returns the buyer's pending item for the
	// product, or (LineItem{}, ErrNotFound) when there is none.
	FindPendingByProduct(ctx context.Context, buyerID, productID string) (LineItem, error)

	// ListPending returns the buyer's pending items, newest first.
	ListPending(ctx context.Context, buyerID string) ([]LineItem, error)

	Create(ctx context.Context, it LineItem) (LineItem, error)
	Save(ctx context.Context, it LineItem) (LineItem, error)
	Delete(ctx context.Context, id string) error

	// WatchPending emits the buyer's pending items on every change
	// until ctx is cancelled or Stop is called.
	WatchPending(ctx context.Context, buyerID string) (*Subscription, error)
}
