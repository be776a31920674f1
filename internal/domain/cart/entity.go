// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"

	"farmlink/internal/domain/product"
	"farmlink/internal/domain/stock"
)

// Status of a cart line item.
// pending -(checkout success)-> ordered. "ordered" is terminal; an item
// that left the cart is never mutated again.
type Status string

const (
	StatusPending Status = "pending"
	StatusOrdered Status = "ordered"
)

var (
	ErrInvalidID       = errors.New("cart: invalid id")
	ErrInvalidBuyer    = errors.New("cart: invalid buyerId")
	ErrInvalidProduct  = errors.New("cart: invalid productId")
	ErrInvalidQuantity = errors.New("cart: quantity must be >= 1")
	ErrNotPending      = errors.New("cart: line item is no longer pending")

	ErrNotFound = errors.New("cart: line item not found")
)

// LineItem is one product+quantity entry in a buyer's cart.
//
// Product fields are a snapshot captured when the item was added:
// orders must reflect the price at the time of purchase, not the live
// price, so the snapshot is stored here rather than joined on read.
// ProductQuantity is the availability seen at snapshot time; it bounds
// quantity updates until checkout re-validates against live stock.
type LineItem struct {
	ID         string `json:"id"`
	BuyerID    string `json:"buyerId"`
	BuyerEmail string `json:"buyerEmail"`

	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	ProductPrice    float64 `json:"productPrice"`
	ProductUnit     string  `json:"productUnit"`
	ProductImage    string  `json:"productImage,omitempty"`
	ProductQuantity int     `json:"productQuantity"`
	FarmerID        string  `json:"farmerId"`
	FarmerEmail     string  `json:"farmerEmail"`

	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
	Status     Status  `json:"status"`

	AddedAt   time.Time  `json:"addedAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	OrderedAt *time.Time `json:"orderedAt,omitempty"`
}

// New snapshots p into a fresh pending line item for the buyer.
// qty is validated against the product's current availability.
func New(id, buyerID, buyerEmail string, p product.Product, qty int, now time.Time) (LineItem, error) {
	if err := stock.Validate(qty, p.Quantity); err != nil {
		return LineItem{}, err
	}

	it := LineItem{
		ID:         strings.TrimSpace(id),
		BuyerID:    strings.TrimSpace(buyerID),
		BuyerEmail: strings.TrimSpace(buyerEmail),

		ProductID:       strings.TrimSpace(p.ID),
		ProductName:     p.Name,
		ProductPrice:    p.Price,
		ProductUnit:     p.Unit,
		ProductImage:    p.ImageURL,
		ProductQuantity: p.Quantity,
		FarmerID:        p.FarmerID,
		FarmerEmail:     p.FarmerEmail,

		Quantity:   qty,
		TotalPrice: float64(qty) * p.Price,
		Status:     StatusPending,

		AddedAt:   now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := it.Validate(); err != nil {
		return LineItem{}, err
	}
	return it, nil
}

func (it *LineItem) Validate() error {
	if it == nil || strings.TrimSpace(it.ID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(it.BuyerID) == "" {
		return ErrInvalidBuyer
	}
	if strings.TrimSpace(it.ProductID) == "" {
		return ErrInvalidProduct
	}
	if it.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if it.Status != StatusPending && it.Status != StatusOrdered {
		return errors.New("cart: invalid status")
	}
	return nil
}

// Merge folds an additional qty of the same product into this item.
// The combined quantity is re-validated against availability; on
// rejection the item is left unchanged. available is the product's
// current (live) quantity, which may differ from the snapshot.
func (it *LineItem) Merge(qty, available int, now time.Time) error {
	if it.Status != StatusPending {
		return ErrNotPending
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	next := it.Quantity + qty
	if err := stock.Validate(next, available); err != nil {
		return err
	}
	it.Quantity = next
	it.TotalPrice = float64(next) * it.ProductPrice
	it.ProductQuantity = available
	it.UpdatedAt = now.UTC()
	return nil
}

// SetQuantity replaces the quantity. qty must be >= 1 and within the
// snapshotted availability; the line total is recomputed from the
// snapshot price.
func (it *LineItem) SetQuantity(qty int, now time.Time) error {
	if it.Status != StatusPending {
		return ErrNotPending
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if err := stock.Validate(qty, it.ProductQuantity); err != nil {
		return err
	}
	it.Quantity = qty
	it.TotalPrice = float64(qty) * it.ProductPrice
	it.UpdatedAt = now.UTC()
	return nil
}

// MarkOrdered transitions pending -> ordered. The transition happens
// exactly once, inside the checkout transaction.
func (it *LineItem) MarkOrdered(now time.Time) error {
	if it.Status != StatusPending {
		return ErrNotPending
	}
	t := now.UTC()
	it.Status = StatusOrdered
	it.OrderedAt = &t
	it.UpdatedAt = t
	return nil
}

// Total sums the line totals of items (cart display total).
func Total(items []LineItem) float64 {
	var sum float64
	for i := range items {
		sum += items[i].TotalPrice
	}
	return sum
}
