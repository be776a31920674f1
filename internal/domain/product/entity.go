// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"
)

// Status is the product listing status. Products are never hard-deleted
// by the shopping flow; sellers retire a listing by flipping the status.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	ErrInvalidID       = errors.New("product: invalid id")
	ErrInvalidFarmer   = errors.New("product: invalid farmerId")
	ErrInvalidName     = errors.New("product: invalid name")
	ErrInvalidPrice    = errors.New("product: price must be >= 0")
	ErrInvalidQuantity = errors.New("product: quantity must be >= 0")
	ErrInvalidUnit     = errors.New("product: invalid unit")
	ErrInvalidStatus   = errors.New("product: invalid status")

	ErrNotFound = errors.New("product: not found")
)

// Product is one listing owned by a farmer.
// Quantity is the live availability; Sold and Views are cumulative
// counters. Quantity is decremented only inside the checkout
// transaction (see the firestore checkout tx adapter).
type Product struct {
	ID          string    `json:"id"`
	FarmerID    string    `json:"farmerId"`
	FarmerEmail string    `json:"farmerEmail"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Unit        string    `json:"unit"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category,omitempty"`
	Location    string    `json:"location,omitempty"`
	HarvestDate string    `json:"harvestDate,omitempty"`
	ExpiryDate  string    `json:"expiryDate,omitempty"`
	Organic     bool      `json:"organic"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      Status    `json:"status"`
	Sold        int       `json:"sold"`
	Views       int       `json:"views"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Attrs carries the listing form fields for New.
type Attrs struct {
	Name        string
	Description string
	Price       float64
	Unit        string
	Quantity    int
	Category    string
	Location    string
	HarvestDate string
	ExpiryDate  string
	Organic     bool
	ImageURL    string
}

// New creates an active listing with zeroed counters.
func New(id, farmerID, farmerEmail string, a Attrs, now time.Time) (Product, error) {
	p := Product{
		ID:          strings.TrimSpace(id),
		FarmerID:    strings.TrimSpace(farmerID),
		FarmerEmail: strings.TrimSpace(farmerEmail),
		Name:        strings.TrimSpace(a.Name),
		Description: strings.TrimSpace(a.Description),
		Price:       a.Price,
		Unit:        strings.TrimSpace(a.Unit),
		Quantity:    a.Quantity,
		Category:    strings.TrimSpace(a.Category),
		Location:    strings.TrimSpace(a.Location),
		HarvestDate: strings.TrimSpace(a.HarvestDate),
		ExpiryDate:  strings.TrimSpace(a.ExpiryDate),
		Organic:     a.Organic,
		ImageURL:    strings.TrimSpace(a.ImageURL),
		Status:      StatusActive,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.FarmerID) == "" {
		return ErrInvalidFarmer
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if strings.TrimSpace(p.Unit) == "" {
		return ErrInvalidUnit
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// Active reports whether the listing can be bought.
func (p *Product) Active() bool {
	return p != nil && p.Status == StatusActive
}

// Deactivate soft-removes the listing.
func (p *Product) Deactivate(now time.Time) {
	p.Status = StatusInactive
	p.UpdatedAt = now.UTC()
}

// RecordSale applies a fulfilled order line to the counters:
// availability drops by qty (floored at zero) and the cumulative sold
// count grows by the same amount.
func (p *Product) RecordSale(qty int, now time.Time) {
	if qty <= 0 {
		return
	}
	p.Quantity -= qty
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	p.Sold += qty
	p.UpdatedAt = now.UTC()
}
