// internal/domain/stock/guard.go
package stock

import "fmt"

// InsufficientStockError reports that a requested quantity exceeds what
// is currently available. Available carries the live quantity so the
// caller can surface it to the buyer.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock: insufficient (available=%d)", e.Available)
}

// Validate checks requested against available.
// Pure function, no state: it is called when an item is added to or
// updated in a cart, and again inside the checkout transaction against
// the transactional product reads. Nothing is reserved while an item
// sits in a cart, so availability can shrink between the two checks;
// the transaction-time check is the authoritative one.
func Validate(requested, available int) error {
	if requested <= 0 {
		return fmt.Errorf("stock: requested quantity must be positive (got %d)", requested)
	}
	if available < 0 {
		available = 0
	}
	if requested > available {
		return &InsufficientStockError{Available: available}
	}
	return nil
}
