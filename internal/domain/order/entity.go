// internal/domain/order/entity.go
package order

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Status is the seller-driven order status.
// pending -> processing -> delivered, forward only. There is no
// cancelled state in this workflow.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
)

// PaymentStatus tracks payment separately from fulfillment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

var (
	ErrInvalidID         = errors.New("order: invalid id")
	ErrInvalidBuyer      = errors.New("order: invalid buyerId")
	ErrInvalidFarmer     = errors.New("order: invalid farmerId")
	ErrInvalidItems      = errors.New("order: at least one item is required")
	ErrInvalidTotal      = errors.New("order: totalAmount does not match item totals")
	ErrInvalidStatus     = errors.New("order: invalid status")
	ErrInvalidTransition = errors.New("order: invalid status transition")

	ErrNotFound = errors.New("order: not found")
)

// ItemSnapshot is one ordered line, frozen at checkout time.
type ItemSnapshot struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	ProductUnit  string  `json:"productUnit"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"totalPrice"`
}

// Order is one buyer's purchase from one seller. A checkout with items
// from k distinct sellers produces k orders in a single transaction.
// Everything inside is a snapshot; later product edits never reach it.
type Order struct {
	ID          string `json:"id"`
	BuyerID     string `json:"buyerId"`
	BuyerEmail  string `json:"buyerEmail"`
	FarmerID    string `json:"farmerId"`
	FarmerEmail string `json:"farmerEmail"`

	Items       []ItemSnapshot `json:"items"`
	TotalAmount float64        `json:"totalAmount"`

	DeliveryInfo DeliveryInfo `json:"deliveryInfo"`

	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New builds an order in the initial pending/pending state.
// TotalAmount is computed from the items, never taken from the caller.
func New(id, buyerID, buyerEmail, farmerID, farmerEmail string, items []ItemSnapshot, delivery DeliveryInfo, now time.Time) (Order, error) {
	o := Order{
		ID:          strings.TrimSpace(id),
		BuyerID:     strings.TrimSpace(buyerID),
		BuyerEmail:  strings.TrimSpace(buyerEmail),
		FarmerID:    strings.TrimSpace(farmerID),
		FarmerEmail: strings.TrimSpace(farmerEmail),

		Items:       append([]ItemSnapshot(nil), items...),
		TotalAmount: SumItems(items),

		DeliveryInfo: delivery.normalize(),

		Status:        StatusPending,
		PaymentStatus: PaymentPending,

		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || strings.TrimSpace(o.ID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(o.BuyerID) == "" {
		return ErrInvalidBuyer
	}
	if strings.TrimSpace(o.FarmerID) == "" {
		return ErrInvalidFarmer
	}
	if len(o.Items) == 0 {
		return ErrInvalidItems
	}
	for i := range o.Items {
		if strings.TrimSpace(o.Items[i].ProductID) == "" || o.Items[i].Quantity < 1 {
			return ErrInvalidItems
		}
	}
	if !amountsEqual(o.TotalAmount, SumItems(o.Items)) {
		return ErrInvalidTotal
	}
	switch o.Status {
	case StatusPending, StatusProcessing, StatusDelivered:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// Advance moves the status one step forward. Only the owning farmer
// calls this (enforced in the usecase); delivered is terminal.
func (o *Order) Advance(next Status, now time.Time) error {
	allowed := map[Status]Status{
		StatusPending:    StatusProcessing,
		StatusProcessing: StatusDelivered,
	}
	want, ok := allowed[o.Status]
	if !ok || next != want {
		return ErrInvalidTransition
	}
	o.Status = next
	o.UpdatedAt = now.UTC()
	return nil
}

// SumItems adds up line totals.
func SumItems(items []ItemSnapshot) float64 {
	var sum float64
	for i := range items {
		sum += items[i].TotalPrice
	}
	return sum
}

// amountsEqual compares money values with a small epsilon; totals are
// products of a float price and an int quantity, so drift stays tiny.
func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
