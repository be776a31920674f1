// internal/application/usecase/fakes_test.go
package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	cartdom "farmlink/internal/domain/cart"
	"farmlink/internal/domain/common"
	orderdom "farmlink/internal/domain/order"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/stock"
	userdom "farmlink/internal/domain/user"
)

var testNow = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// -----------------------------------------
// products
// -----------------------------------------

type memProductRepo struct {
	mu      sync.Mutex
	byID    map[string]productdom.Product
	views   map[string]int
	viewErr error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		byID:  map[string]productdom.Product{},
		views: map[string]int{},
	}
}

func (r *memProductRepo) put(p productdom.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
}

func (r *memProductRepo) NextID() string { return uuid.NewString() }

func (r *memProductRepo) GetByID(_ context.Context, id string) (productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) List(_ context.Context, f productdom.Filter, s productdom.Sort, page common.Page) (productdom.PageResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []productdom.Product
	for _, p := range r.byID {
		if f.FarmerID != "" && p.FarmerID != f.FarmerID {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.OrganicOnly && !p.Organic {
			continue
		}
		if len(f.Statuses) > 0 {
			ok := false
			for _, st := range f.Statuses {
				if p.Status == st {
					ok = true
				}
			}
			if !ok {
				continue
			}
		}
		if q := strings.ToLower(strings.TrimSpace(f.SearchQuery)); q != "" {
			if !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
		}
		out = append(out, p)
	}

	// empty order defaults to descending, like the store adapter
	asc := s.Order == productdom.SortAsc
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch s.Column {
		case productdom.SortByPrice:
			less = out[i].Price < out[j].Price
		case productdom.SortByName:
			less = out[i].Name < out[j].Name
		case productdom.SortBySold:
			less = out[i].Sold < out[j].Sold
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	perPage := page.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	number := page.Number
	if number <= 0 {
		number = 1
	}
	total := len(out)
	start := (number - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	totalPages := (total + perPage - 1) / perPage

	return productdom.PageResult{
		Items:      out[start:end],
		TotalCount: total,
		TotalPages: totalPages,
		Page:       number,
		PerPage:    perPage,
	}, nil
}

func (r *memProductRepo) ListByFarmer(_ context.Context, farmerID string) ([]productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []productdom.Product
	for _, p := range r.byID {
		if p.FarmerID == farmerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProductRepo) Create(_ context.Context, p productdom.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *memProductRepo) Save(_ context.Context, p productdom.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return productdom.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memProductRepo) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewErr != nil {
		return r.viewErr
	}
	r.views[id]++
	return nil
}

// -----------------------------------------
// cart items
// -----------------------------------------

type memCartRepo struct {
	mu   sync.Mutex
	byID map[string]cartdom.LineItem

	listErr error
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{byID: map[string]cartdom.LineItem{}}
}

func (r *memCartRepo) put(it cartdom.LineItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[it.ID] = it
}

func (r *memCartRepo) NextID() string { return uuid.NewString() }

func (r *memCartRepo) GetByID(_ context.Context, id string) (cartdom.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.byID[id]
	if !ok {
		return cartdom.LineItem{}, cartdom.ErrNotFound
	}
	return it, nil
}

func (r *memCartRepo) FindPendingByProduct(_ context.Context, buyerID, productID string) (cartdom.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.byID {
		if it.BuyerID == buyerID && it.ProductID == productID && it.Status == cartdom.StatusPending {
			return it, nil
		}
	}
	return cartdom.LineItem{}, cartdom.ErrNotFound
}

func (r *memCartRepo) ListPending(_ context.Context, buyerID string) ([]cartdom.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []cartdom.LineItem
	for _, it := range r.byID {
		if it.BuyerID == buyerID && it.Status == cartdom.StatusPending {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (r *memCartRepo) Create(_ context.Context, it cartdom.LineItem) (cartdom.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[it.ID] = it
	return it, nil
}

func (r *memCartRepo) Save(_ context.Context, it cartdom.LineItem) (cartdom.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[it.ID]; !ok {
		return cartdom.LineItem{}, cartdom.ErrNotFound
	}
	r.byID[it.ID] = it
	return it, nil
}

func (r *memCartRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memCartRepo) WatchPending(ctx context.Context, buyerID string) (*cartdom.Subscription, error) {
	items, _ := r.ListPending(ctx, buyerID)
	ch := make(chan []cartdom.LineItem, 1)
	ch <- items
	var once sync.Once
	return &cartdom.Subscription{
		Updates: ch,
		Stop:    func() { once.Do(func() { close(ch) }) },
	}, nil
}

// -----------------------------------------
// orders
// -----------------------------------------

type memOrderRepo struct {
	mu   sync.Mutex
	byID map[string]orderdom.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{byID: map[string]orderdom.Order{}}
}

func (r *memOrderRepo) put(o orderdom.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = o
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) listBy(match func(orderdom.Order) bool) []orderdom.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orderdom.Order
	for _, o := range r.byID {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memOrderRepo) ListByBuyer(_ context.Context, buyerID string) ([]orderdom.Order, error) {
	return r.listBy(func(o orderdom.Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *memOrderRepo) ListByFarmer(_ context.Context, farmerID string) ([]orderdom.Order, error) {
	return r.listBy(func(o orderdom.Order) bool { return o.FarmerID == farmerID }), nil
}

func (r *memOrderRepo) Save(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = o
	return o, nil
}

// -----------------------------------------
// users
// -----------------------------------------

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]userdom.Profile
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]userdom.Profile{}}
}

func (r *memUserRepo) GetByUID(_ context.Context, uid string) (userdom.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[uid]
	if !ok {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	return p, nil
}

func (r *memUserRepo) Create(_ context.Context, p userdom.Profile) (userdom.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.UID] = p
	return p, nil
}

// -----------------------------------------
// checkout transaction
// -----------------------------------------

// fakeCheckoutTx mimics the real transactional adapter against the
// in-memory repos. With err set it fails without touching anything,
// which is exactly the atomicity contract.
type fakeCheckoutTx struct {
	carts    *memCartRepo
	products *memProductRepo
	orders   *memOrderRepo

	err  error
	plan *CheckoutPlan
}

func (tx *fakeCheckoutTx) Execute(ctx context.Context, plan CheckoutPlan) ([]orderdom.Order, error) {
	tx.plan = &plan
	if tx.err != nil {
		return nil, tx.err
	}

	// Re-validate every line against live product state before any
	// write, like the real transaction: availability may have shrunk
	// since the item went into the cart.
	if tx.products != nil {
		for _, g := range plan.Groups {
			for _, it := range g.Items {
				p, err := tx.products.GetByID(ctx, it.ProductID)
				if err != nil {
					return nil, err
				}
				if !p.Active() {
					return nil, fmt.Errorf("product %s is not available", it.ProductID)
				}
				if err := stock.Validate(it.Quantity, p.Quantity); err != nil {
					return nil, fmt.Errorf("product %s: %w", it.ProductID, err)
				}
			}
		}
	}

	var created []orderdom.Order
	for _, g := range plan.Groups {
		o, err := orderdom.New(uuid.NewString(), plan.Buyer.UID, plan.Buyer.Email,
			g.FarmerID, g.FarmerEmail, SnapshotItems(g.Items), plan.Delivery, plan.Now)
		if err != nil {
			return nil, err
		}
		if tx.orders != nil {
			tx.orders.put(o)
		}
		for _, it := range g.Items {
			if err := it.MarkOrdered(plan.Now); err != nil {
				return nil, err
			}
			if tx.carts != nil {
				tx.carts.put(it)
			}
			if tx.products != nil {
				if p, err := tx.products.GetByID(ctx, it.ProductID); err == nil {
					p.RecordSale(it.Quantity, plan.Now)
					tx.products.put(p)
				}
			}
		}
		created = append(created, o)
	}
	return created, nil
}

type fakeMailer struct {
	err    error
	calls  int
	to     string
	orders int
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, toEmail string, orders []orderdom.Order) error {
	m.calls++
	m.to = toEmail
	m.orders = len(orders)
	return m.err
}

type fakeArchive struct {
	err   error
	calls int
}

func (a *fakeArchive) Archive(_ context.Context, orders []orderdom.Order) error {
	a.calls++
	return a.err
}
