// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	cartdom "farmlink/internal/domain/cart"
	productdom "farmlink/internal/domain/product"
	"farmlink/internal/domain/session"
	"farmlink/internal/domain/stock"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrProductUnavailable  = errors.New("cart_usecase: product is not available")
)

// CartUsecase coordinates the buyer's pending line items.
// Stock is never reserved here; the guard only checks the quantity
// against availability as seen at call time, and checkout re-validates
// inside its transaction.
type CartUsecase struct {
	items    cartdom.Repository
	products productdom.Repository
	clock    Clock
}

func NewCartUsecase(items cartdom.Repository, products productdom.Repository) *CartUsecase {
	return &CartUsecase{items: items, products: products, clock: systemClock{}}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(items cartdom.Repository, products productdom.Repository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{items: items, products: products, clock: clock}
}

// AddItem puts qty of productID into the buyer's cart.
// If a pending line item for the same product already exists, the
// quantities merge into it; otherwise a new item snapshots the product
// as it is right now. Product stock is untouched either way.
func (uc *CartUsecase) AddItem(ctx context.Context, sess session.Session, productID string, qty int) (cartdom.LineItem, error) {
	if err := sess.RequireBuyer(); err != nil {
		return cartdom.LineItem{}, err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" || qty < 1 {
		return cartdom.LineItem{}, ErrCartInvalidArgument
	}

	p, err := uc.products.GetByID(ctx, pid)
	if err != nil {
		return cartdom.LineItem{}, err
	}
	if !p.Active() {
		return cartdom.LineItem{}, ErrProductUnavailable
	}

	now := uc.clock.Now()

	existing, err := uc.items.FindPendingByProduct(ctx, sess.UID, pid)
	switch {
	case err == nil:
		if err := existing.Merge(qty, p.Quantity, now); err != nil {
			return cartdom.LineItem{}, err
		}
		saved, err := uc.items.Save(ctx, existing)
		if err != nil {
			return cartdom.LineItem{}, err
		}
		uc.bumpViews(ctx, pid)
		return saved, nil

	case errors.Is(err, cartdom.ErrNotFound):
		if err := stock.Validate(qty, p.Quantity); err != nil {
			return cartdom.LineItem{}, err
		}
		it, err := cartdom.New(uc.items.NextID(), sess.UID, sess.Email, p, qty, now)
		if err != nil {
			return cartdom.LineItem{}, err
		}
		created, err := uc.items.Create(ctx, it)
		if err != nil {
			return cartdom.LineItem{}, err
		}
		uc.bumpViews(ctx, pid)
		return created, nil

	default:
		return cartdom.LineItem{}, err
	}
}

// UpdateQuantity replaces the quantity of one pending line item.
// The new quantity must stay within the availability snapshotted on the
// item; on rejection nothing is persisted.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, sess session.Session, itemID string, qty int) (cartdom.LineItem, error) {
	if err := sess.RequireBuyer(); err != nil {
		return cartdom.LineItem{}, err
	}
	id := strings.TrimSpace(itemID)
	if id == "" {
		return cartdom.LineItem{}, ErrCartInvalidArgument
	}

	it, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return cartdom.LineItem{}, err
	}
	if it.BuyerID != sess.UID {
		return cartdom.LineItem{}, session.ErrNotAuthorized
	}

	if err := it.SetQuantity(qty, uc.clock.Now()); err != nil {
		return cartdom.LineItem{}, err
	}
	return uc.items.Save(ctx, it)
}

// RemoveItem deletes a line item unconditionally.
func (uc *CartUsecase) RemoveItem(ctx context.Context, sess session.Session, itemID string) error {
	if err := sess.RequireBuyer(); err != nil {
		return err
	}
	id := strings.TrimSpace(itemID)
	if id == "" {
		return ErrCartInvalidArgument
	}

	it, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it.BuyerID != sess.UID {
		return session.ErrNotAuthorized
	}
	return uc.items.Delete(ctx, id)
}

// ListItems returns the buyer's pending items (newest first) and the
// cart total.
func (uc *CartUsecase) ListItems(ctx context.Context, sess session.Session) ([]cartdom.LineItem, float64, error) {
	if err := sess.RequireBuyer(); err != nil {
		return nil, 0, err
	}
	items, err := uc.items.ListPending(ctx, sess.UID)
	if err != nil {
		return nil, 0, err
	}
	return items, cartdom.Total(items), nil
}

// WatchItems opens a live feed of the buyer's pending items (cart
// badge / cart view). The caller owns the returned subscription and
// must stop it.
func (uc *CartUsecase) WatchItems(ctx context.Context, sess session.Session) (*cartdom.Subscription, error) {
	if err := sess.RequireBuyer(); err != nil {
		return nil, err
	}
	return uc.items.WatchPending(ctx, sess.UID)
}

// bumpViews is best-effort; a lost view count never fails a cart write.
func (uc *CartUsecase) bumpViews(ctx context.Context, productID string) {
	if err := uc.products.IncrementViews(ctx, productID); err != nil {
		log.Printf("[cart_uc] WARN: view increment failed productId=%s err=%v", productID, err)
	}
}
