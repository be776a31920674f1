// internal/domain/order/repository_port.go
package order

import "context"

// Repository is the read/update port for orders.
// Orders are CREATED only inside the checkout transaction (the
// usecase.CheckoutTx port); this port never inserts.
type Repository interface {
	GetByID(ctx context.Context, id string) (Order, error)

	// Listings are newest-first.
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]Order, error)

	Save(ctx context.Context, o Order) (Order, error)
}
