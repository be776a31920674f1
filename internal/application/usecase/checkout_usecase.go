// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	cartdom "farmlink/internal/domain/cart"
	orderdom "farmlink/internal/domain/order"
	"farmlink/internal/domain/session"
	"farmlink/internal/domain/stock"
)

var (
	ErrCartEmpty       = errors.New("checkout_usecase: cart has no pending items")
	ErrCheckoutAborted = errors.New("checkout_usecase: transaction aborted")
)

// SellerGroup is one seller's slice of the buyer's cart; each group
// becomes exactly one order.
type SellerGroup struct {
	FarmerID    string
	FarmerEmail string
	Items       []cartdom.LineItem
	Total       float64
}

// CheckoutPlan is everything the atomic transaction needs.
type CheckoutPlan struct {
	Buyer    session.Session
	Groups   []SellerGroup
	Delivery orderdom.DeliveryInfo
	Now      time.Time
}

// CheckoutTx executes a checkout plan as one atomic unit: per group it
// creates an order, marks the group's cart items ordered, decrements
// product stock and bumps sold counts. Either every group commits or
// none does. It re-validates requested quantities against the product reads
// made inside the transaction; those are the authoritative ones.
type CheckoutTx interface {
	Execute(ctx context.Context, plan CheckoutPlan) ([]orderdom.Order, error)
}

// OrderMailer sends the buyer a confirmation after a committed
// checkout. Failures are logged, never surfaced.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, toEmail string, orders []orderdom.Order) error
}

// OrderArchive mirrors committed orders into the relational reporting
// store. Optional; failures are logged, never surfaced.
type OrderArchive interface {
	Archive(ctx context.Context, orders []orderdom.Order) error
}

// CheckoutUsecase turns the buyer's pending cart plus delivery info
// into one order per distinct seller, atomically.
type CheckoutUsecase struct {
	items   cartdom.Repository
	tx      CheckoutTx
	mailer  OrderMailer  // optional
	archive OrderArchive // optional
	clock   Clock
}

func NewCheckoutUsecase(items cartdom.Repository, tx CheckoutTx) *CheckoutUsecase {
	return &CheckoutUsecase{items: items, tx: tx, clock: systemClock{}}
}

func (uc *CheckoutUsecase) WithMailer(m OrderMailer) *CheckoutUsecase {
	uc.mailer = m
	return uc
}

func (uc *CheckoutUsecase) WithArchive(a OrderArchive) *CheckoutUsecase {
	uc.archive = a
	return uc
}

func (uc *CheckoutUsecase) WithClock(c Clock) *CheckoutUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// Checkout validates delivery info, partitions the buyer's pending
// items by seller and hands the plan to the atomic transaction. On any
// transaction failure no order exists, every cart item is still
// pending and no stock moved; the buyer simply retries.
func (uc *CheckoutUsecase) Checkout(ctx context.Context, sess session.Session, delivery orderdom.DeliveryInfo) ([]orderdom.Order, error) {
	if err := sess.RequireBuyer(); err != nil {
		return nil, err
	}

	// Field validation happens before any store call.
	if err := delivery.Validate(); err != nil {
		return nil, err
	}

	items, err := uc.items.ListPending(ctx, sess.UID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	plan := CheckoutPlan{
		Buyer:    sess,
		Groups:   GroupBySeller(items),
		Delivery: delivery,
		Now:      uc.clock.Now(),
	}

	orders, err := uc.tx.Execute(ctx, plan)
	if err != nil {
		// Insufficient stock discovered inside the transaction keeps
		// its payload so the buyer sees the real availability.
		var ise *stock.InsufficientStockError
		if errors.As(err, &ise) {
			return nil, err
		}
		log.Printf("[checkout_uc] checkout aborted buyerId=%s groups=%d err=%v", sess.UID, len(plan.Groups), err)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutAborted, err)
	}

	log.Printf("[checkout_uc] OK: checkout committed buyerId=%s orders=%d items=%d", sess.UID, len(orders), len(items))

	// Post-commit side effects: confirmation mail and reporting mirror.
	// Both best-effort; the orders are already durable.
	if uc.mailer != nil {
		if mErr := uc.mailer.SendOrderConfirmation(ctx, sess.Email, orders); mErr != nil {
			log.Printf("[checkout_uc] WARN: confirmation mail failed buyerId=%s err=%v", sess.UID, mErr)
		}
	}
	if uc.archive != nil {
		if aErr := uc.archive.Archive(ctx, orders); aErr != nil {
			log.Printf("[checkout_uc] WARN: order archive failed buyerId=%s err=%v", sess.UID, aErr)
		}
	}

	return orders, nil
}

// GroupBySeller partitions line items by farmer, preserving the order
// in which sellers first appear in the item list (deterministic for a
// given cart).
func GroupBySeller(items []cartdom.LineItem) []SellerGroup {
	index := map[string]int{}
	var groups []SellerGroup

	for _, it := range items {
		i, ok := index[it.FarmerID]
		if !ok {
			i = len(groups)
			index[it.FarmerID] = i
			groups = append(groups, SellerGroup{
				FarmerID:    it.FarmerID,
				FarmerEmail: it.FarmerEmail,
			})
		}
		groups[i].Items = append(groups[i].Items, it)
		groups[i].Total += it.TotalPrice
	}
	return groups
}

// SnapshotItems freezes a group's line items into order item snapshots.
func SnapshotItems(items []cartdom.LineItem) []orderdom.ItemSnapshot {
	out := make([]orderdom.ItemSnapshot, 0, len(items))
	for _, it := range items {
		out = append(out, orderdom.ItemSnapshot{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			ProductUnit:  it.ProductUnit,
			Quantity:     it.Quantity,
			TotalPrice:   it.TotalPrice,
		})
	}
	return out
}
